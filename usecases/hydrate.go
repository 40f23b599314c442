package usecases

import (
	"context"
	"errors"

	"eudaimonia/entities"
	"eudaimonia/repositories"
)

// userLookup memoises user reads for the duration of one request.
type userLookup struct {
	repo  repositories.UserRepository
	users map[string]*entities.User
}

func newUserLookup(repo repositories.UserRepository) *userLookup {
	return &userLookup{repo: repo, users: make(map[string]*entities.User)}
}

// get returns nil for accounts that no longer exist.
func (l *userLookup) get(ctx context.Context, id string) (*entities.User, error) {
	if id == "" {
		return nil, nil
	}
	if u, ok := l.users[id]; ok {
		return u, nil
	}
	u, err := l.repo.GetByID(ctx, id)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}
	l.users[id] = u
	return u, nil
}

type worldLookup struct {
	repo   repositories.WorldRepository
	worlds map[string]*entities.LivingWorld
}

func newWorldLookup(repo repositories.WorldRepository) *worldLookup {
	return &worldLookup{repo: repo, worlds: make(map[string]*entities.LivingWorld)}
}

func (l *worldLookup) get(ctx context.Context, id string) (*entities.LivingWorld, error) {
	if w, ok := l.worlds[id]; ok {
		return w, nil
	}
	w, err := l.repo.GetByID(ctx, id)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}
	l.worlds[id] = w
	return w, nil
}
