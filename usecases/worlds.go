package usecases

import (
	"context"
	"errors"
	"strings"

	"eudaimonia/entities"
	"eudaimonia/repositories"

	"gorm.io/datatypes"
)

type WorldInput struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Theme       string            `json:"theme"`
	ThemeData   datatypes.JSONMap `json:"theme_data"`
}

// WorldPatch carries the fields an owner may change; nil leaves a field
// untouched.
type WorldPatch struct {
	Name        *string            `json:"name"`
	Description *string            `json:"description"`
	Theme       *string            `json:"theme"`
	ThemeData   *datatypes.JSONMap `json:"theme_data"`
}

type WorldUseCase struct {
	repos *repositories.Repositories
	pub   Publisher
}

func NewWorldUseCase(repos *repositories.Repositories, pub Publisher) *WorldUseCase {
	return &WorldUseCase{repos: repos, pub: orNop(pub)}
}

func (uc *WorldUseCase) hydrate(ctx context.Context, users *userLookup, w *entities.LivingWorld) error {
	owner, err := users.get(ctx, w.OwnerID)
	if err != nil {
		return err
	}
	w.Owner = owner
	w.MemberCount, err = uc.repos.Memberships.CountByWorldID(ctx, w.ID)
	return err
}

// List returns worlds newest first, optionally restricted to one theme.
func (uc *WorldUseCase) List(ctx context.Context, theme string) ([]entities.LivingWorld, error) {
	if theme != "" && !entities.ValidTheme(theme) {
		return nil, newError(ErrValidation, "Select a valid choice. %s is not one of the available choices.", theme)
	}
	worlds, err := uc.repos.Worlds.GetAll(ctx, theme)
	if err != nil {
		return nil, err
	}
	users := newUserLookup(uc.repos.Users)
	for i := range worlds {
		if err := uc.hydrate(ctx, users, &worlds[i]); err != nil {
			return nil, err
		}
	}
	return worlds, nil
}

func (uc *WorldUseCase) Get(ctx context.Context, id string) (*entities.LivingWorld, error) {
	world, err := uc.repos.Worlds.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Living World not found")
	}
	if err := uc.hydrate(ctx, newUserLookup(uc.repos.Users), world); err != nil {
		return nil, err
	}
	return world, nil
}

// Create stores a new world owned by userID and makes the owner its first
// member with the admin role.
func (uc *WorldUseCase) Create(ctx context.Context, userID string, in WorldInput) (*entities.LivingWorld, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, newError(ErrValidation, "name is required")
	}
	if in.Theme != "" && !entities.ValidTheme(in.Theme) {
		return nil, newError(ErrValidation, "\"%s\" is not a valid theme.", in.Theme)
	}

	world := &entities.LivingWorld{
		Name:        name,
		Description: in.Description,
		Theme:       in.Theme,
		ThemeData:   in.ThemeData,
		OwnerID:     userID,
	}
	admin := &entities.Membership{UserID: userID, Role: entities.RoleAdmin}
	if err := uc.repos.Worlds.CreateWithAdmin(ctx, world, admin); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, newError(ErrConflict, "living world with this name already exists.")
		}
		return nil, err
	}

	uc.pub.Publish("worlds")
	uc.pub.Publish("memberships")
	return uc.Get(ctx, world.ID)
}

func (uc *WorldUseCase) ownedWorld(ctx context.Context, userID, id string) (*entities.LivingWorld, error) {
	world, err := uc.repos.Worlds.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Living World not found")
	}
	if world.OwnerID != userID {
		return nil, newError(ErrForbidden, "Only the owner can modify this Living World")
	}
	return world, nil
}

// Update applies patch to a world owned by userID.
func (uc *WorldUseCase) Update(ctx context.Context, userID, id string, patch WorldPatch) (*entities.LivingWorld, error) {
	world, err := uc.ownedWorld(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, newError(ErrValidation, "name may not be blank")
		}
		world.Name = name
	}
	if patch.Description != nil {
		world.Description = *patch.Description
	}
	if patch.Theme != nil {
		if !entities.ValidTheme(*patch.Theme) {
			return nil, newError(ErrValidation, "\"%s\" is not a valid theme.", *patch.Theme)
		}
		world.Theme = *patch.Theme
	}
	if patch.ThemeData != nil {
		world.ThemeData = *patch.ThemeData
	}

	if err := uc.repos.Worlds.Update(ctx, world); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, newError(ErrConflict, "living world with this name already exists.")
		}
		return nil, err
	}

	uc.pub.Publish("worlds")
	uc.pub.Publish("world", id)
	return uc.Get(ctx, id)
}

// Delete removes a world owned by userID together with everything in it.
func (uc *WorldUseCase) Delete(ctx context.Context, userID, id string) error {
	if _, err := uc.ownedWorld(ctx, userID, id); err != nil {
		return err
	}
	if err := uc.repos.Worlds.Delete(ctx, id); err != nil {
		return err
	}

	for _, key := range [][]string{{"worlds"}, {"world", id}, {"posts", id}, {"feed"}, {"members", id}, {"memberships"}, {"proposals", id}} {
		uc.pub.Publish(key...)
	}
	return nil
}

// Join adds userID to the world, optionally presenting one of the caller's
// smart profiles.
func (uc *WorldUseCase) Join(ctx context.Context, userID, worldID, profileID string) (*entities.Membership, error) {
	world, err := uc.repos.Worlds.GetByID(ctx, worldID)
	if err != nil {
		return nil, notFound(err, "Living World not found")
	}

	if profileID != "" {
		profile, err := uc.repos.Profiles.GetByID(ctx, profileID)
		if err != nil || profile.UserID != userID {
			if err != nil && !errors.Is(err, repositories.ErrNotFound) {
				return nil, err
			}
			return nil, newError(ErrValidation, "Smart profile not found")
		}
	}

	if _, err := uc.repos.Memberships.GetByUserAndWorld(ctx, userID, worldID); err == nil {
		return nil, newError(ErrConflict, "Already a member of this world")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	membership := &entities.Membership{UserID: userID, WorldID: worldID, ProfileID: profileID, Role: entities.RoleMember}
	if err := uc.repos.Memberships.Create(ctx, membership); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, newError(ErrConflict, "Already a member of this world")
		}
		return nil, err
	}
	membership.World = world

	uc.pub.Publish("members", worldID)
	uc.pub.Publish("memberships")
	uc.pub.Publish("world", worldID)
	uc.pub.Publish("worlds")
	return membership, nil
}

// Posts returns the posts of one world, newest first.
func (uc *WorldUseCase) Posts(ctx context.Context, worldID string) ([]entities.Post, error) {
	if _, err := uc.repos.Worlds.GetByID(ctx, worldID); err != nil {
		return nil, notFound(err, "Living World not found")
	}
	posts, err := uc.repos.Posts.GetByWorldID(ctx, worldID)
	if err != nil {
		return nil, err
	}
	return hydratePosts(ctx, uc.repos, posts)
}

// Members returns the memberships of one world with their users attached.
func (uc *WorldUseCase) Members(ctx context.Context, worldID string) ([]entities.Membership, error) {
	if _, err := uc.repos.Worlds.GetByID(ctx, worldID); err != nil {
		return nil, notFound(err, "Living World not found")
	}
	memberships, err := uc.repos.Memberships.GetByWorldID(ctx, worldID)
	if err != nil {
		return nil, err
	}
	users := newUserLookup(uc.repos.Users)
	for i := range memberships {
		if memberships[i].User, err = users.get(ctx, memberships[i].UserID); err != nil {
			return nil, err
		}
	}
	return memberships, nil
}

// Memberships returns the caller's memberships with their worlds attached.
func (uc *WorldUseCase) Memberships(ctx context.Context, userID string) ([]entities.Membership, error) {
	memberships, err := uc.repos.Memberships.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	worlds := newWorldLookup(uc.repos.Worlds)
	out := make([]entities.Membership, 0, len(memberships))
	for _, m := range memberships {
		w, err := worlds.get(ctx, m.WorldID)
		if err != nil {
			return nil, err
		}
		if w == nil {
			continue
		}
		m.World = w
		out = append(out, m)
	}
	return out, nil
}
