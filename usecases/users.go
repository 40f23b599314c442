package usecases

import (
	"context"
	"time"

	"eudaimonia/entities"
	"eudaimonia/repositories"
)

// MembershipFacet is one community a user takes part in, as shown on their
// profile.
type MembershipFacet struct {
	WorldID          string    `json:"world_id"`
	WorldName        string    `json:"world_name"`
	WorldDescription string    `json:"world_description"`
	Role             string    `json:"role"`
	Reputation       int       `json:"reputation"`
	JoinedAt         time.Time `json:"joined_at"`
}

// FacetedProfile is a user's identity as the sum of their smart profiles
// and community memberships.
type FacetedProfile struct {
	User          entities.User           `json:"user"`
	SmartProfiles []entities.SmartProfile `json:"smart_profiles"`
	Memberships   []MembershipFacet       `json:"memberships"`
}

type UserUseCase struct {
	repos *repositories.Repositories
}

func NewUserUseCase(repos *repositories.Repositories) *UserUseCase {
	return &UserUseCase{repos: repos}
}

func (uc *UserUseCase) List(ctx context.Context) ([]entities.User, error) {
	return uc.repos.Users.GetAll(ctx)
}

func (uc *UserUseCase) Get(ctx context.Context, id string) (*entities.User, error) {
	user, err := uc.repos.Users.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "User not found")
	}
	return user, nil
}

// Profile assembles the faceted profile of the given user.
func (uc *UserUseCase) Profile(ctx context.Context, id string) (*FacetedProfile, error) {
	user, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	profiles, err := uc.repos.Profiles.GetByUserID(ctx, id)
	if err != nil {
		return nil, err
	}
	memberships, err := uc.repos.Memberships.GetByUserID(ctx, id)
	if err != nil {
		return nil, err
	}

	worlds := newWorldLookup(uc.repos.Worlds)
	facets := make([]MembershipFacet, 0, len(memberships))
	for _, m := range memberships {
		w, err := worlds.get(ctx, m.WorldID)
		if err != nil {
			return nil, err
		}
		if w == nil {
			continue
		}
		facets = append(facets, MembershipFacet{
			WorldID:          w.ID,
			WorldName:        w.Name,
			WorldDescription: w.Description,
			Role:             m.Role,
			Reputation:       m.Reputation,
			JoinedAt:         m.JoinedAt,
		})
	}

	if profiles == nil {
		profiles = []entities.SmartProfile{}
	}
	return &FacetedProfile{User: *user, SmartProfiles: profiles, Memberships: facets}, nil
}

// Friends returns the users in an accepted friendship with id.
func (uc *UserUseCase) Friends(ctx context.Context, id string) ([]entities.User, error) {
	if _, err := uc.Get(ctx, id); err != nil {
		return nil, err
	}
	friendships, err := uc.repos.Friendships.GetAccepted(ctx, id)
	if err != nil {
		return nil, err
	}

	users := newUserLookup(uc.repos.Users)
	friends := make([]entities.User, 0, len(friendships))
	for _, f := range friendships {
		u, err := users.get(ctx, f.Other(id))
		if err != nil {
			return nil, err
		}
		if u != nil {
			friends = append(friends, *u)
		}
	}
	return friends, nil
}
