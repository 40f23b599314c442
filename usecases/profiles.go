package usecases

import (
	"context"
	"errors"
	"strings"

	"eudaimonia/entities"
	"eudaimonia/repositories"
)

type ProfileInput struct {
	Name string `json:"name"`
}

// ProfileUseCase manages the caller's own smart profiles. Profiles of other
// accounts are reported as missing.
type ProfileUseCase struct {
	repos *repositories.Repositories
	pub   Publisher
}

func NewProfileUseCase(repos *repositories.Repositories, pub Publisher) *ProfileUseCase {
	return &ProfileUseCase{repos: repos, pub: orNop(pub)}
}

func (uc *ProfileUseCase) List(ctx context.Context, userID string) ([]entities.SmartProfile, error) {
	return uc.repos.Profiles.GetByUserID(ctx, userID)
}

func (uc *ProfileUseCase) Get(ctx context.Context, userID, id string) (*entities.SmartProfile, error) {
	profile, err := uc.repos.Profiles.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Smart profile not found")
	}
	if profile.UserID != userID {
		return nil, newError(ErrNotFound, "Smart profile not found")
	}
	return profile, nil
}

func (uc *ProfileUseCase) Create(ctx context.Context, userID string, in ProfileInput) (*entities.SmartProfile, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, newError(ErrValidation, "name is required")
	}
	profile := &entities.SmartProfile{UserID: userID, Name: name}
	if err := uc.repos.Profiles.Create(ctx, profile); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, newError(ErrConflict, "You already have a profile named %q", name)
		}
		return nil, err
	}
	uc.pub.Publish("smart-profiles")
	return profile, nil
}

func (uc *ProfileUseCase) Update(ctx context.Context, userID, id string, in ProfileInput) (*entities.SmartProfile, error) {
	profile, err := uc.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, newError(ErrValidation, "name may not be blank")
	}
	profile.Name = name
	if err := uc.repos.Profiles.Update(ctx, profile); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, newError(ErrConflict, "You already have a profile named %q", name)
		}
		return nil, err
	}
	uc.pub.Publish("smart-profiles")
	return profile, nil
}

func (uc *ProfileUseCase) Delete(ctx context.Context, userID, id string) error {
	if _, err := uc.Get(ctx, userID, id); err != nil {
		return err
	}
	if err := uc.repos.Profiles.Delete(ctx, id); err != nil {
		return err
	}
	uc.pub.Publish("smart-profiles")
	return nil
}
