package usecases

import (
	"context"
	"errors"
	"strings"

	"eudaimonia/entities"
	"eudaimonia/repositories"
)

type FriendshipUseCase struct {
	repos *repositories.Repositories
	pub   Publisher
}

func NewFriendshipUseCase(repos *repositories.Repositories, pub Publisher) *FriendshipUseCase {
	return &FriendshipUseCase{repos: repos, pub: orNop(pub)}
}

func (uc *FriendshipUseCase) hydrate(ctx context.Context, friendships []entities.Friendship) ([]entities.Friendship, error) {
	users := newUserLookup(uc.repos.Users)
	var err error
	for i := range friendships {
		if friendships[i].User1, err = users.get(ctx, friendships[i].User1ID); err != nil {
			return nil, err
		}
		if friendships[i].User2, err = users.get(ctx, friendships[i].User2ID); err != nil {
			return nil, err
		}
	}
	return friendships, nil
}

// List returns every friendship the caller takes part in.
func (uc *FriendshipUseCase) List(ctx context.Context, userID string) ([]entities.Friendship, error) {
	friendships, err := uc.repos.Friendships.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return uc.hydrate(ctx, friendships)
}

// Pending returns requests addressed to the caller that await an answer.
func (uc *FriendshipUseCase) Pending(ctx context.Context, userID string) ([]entities.Friendship, error) {
	friendships, err := uc.repos.Friendships.GetPendingFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	return uc.hydrate(ctx, friendships)
}

// Request sends a friend request from userID to the account named username.
func (uc *FriendshipUseCase) Request(ctx context.Context, userID, username string) (*entities.Friendship, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, newError(ErrValidation, "user2_username is required")
	}
	target, err := uc.repos.Users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, newError(ErrValidation, "User not found")
		}
		return nil, err
	}
	if target.ID == userID {
		return nil, newError(ErrValidation, "You cannot send a friend request to yourself")
	}

	for _, pair := range [][2]string{{userID, target.ID}, {target.ID, userID}} {
		if _, err := uc.repos.Friendships.GetByPair(ctx, pair[0], pair[1]); err == nil {
			return nil, newError(ErrConflict, "Friendship request already exists")
		} else if !errors.Is(err, repositories.ErrNotFound) {
			return nil, err
		}
	}

	friendship := &entities.Friendship{User1ID: userID, User2ID: target.ID, Status: entities.FriendshipPending}
	if err := uc.repos.Friendships.Create(ctx, friendship); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, newError(ErrConflict, "Friendship request already exists")
		}
		return nil, err
	}

	uc.pub.Publish("friendships")
	hydrated, err := uc.hydrate(ctx, []entities.Friendship{*friendship})
	if err != nil {
		return nil, err
	}
	return &hydrated[0], nil
}

func (uc *FriendshipUseCase) Accept(ctx context.Context, userID, id string) (*entities.Friendship, error) {
	return uc.answer(ctx, userID, id, entities.FriendshipAccepted)
}

func (uc *FriendshipUseCase) Reject(ctx context.Context, userID, id string) (*entities.Friendship, error) {
	return uc.answer(ctx, userID, id, entities.FriendshipRejected)
}

// answer moves a pending request to status. Only the recipient may answer.
func (uc *FriendshipUseCase) answer(ctx context.Context, userID, id, status string) (*entities.Friendship, error) {
	friendship, err := uc.repos.Friendships.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Friendship not found")
	}
	if friendship.User1ID != userID && friendship.User2ID != userID {
		return nil, newError(ErrNotFound, "Friendship not found")
	}
	if friendship.User2ID != userID {
		return nil, newError(ErrValidation, "Only the recipient can answer this request")
	}
	if friendship.Status != entities.FriendshipPending {
		return nil, newError(ErrValidation, "This request is already %s", friendship.Status)
	}

	if err := uc.repos.Friendships.UpdateStatus(ctx, id, status); err != nil {
		return nil, notFound(err, "Friendship not found")
	}
	friendship.Status = status

	uc.pub.Publish("friendships")
	if status == entities.FriendshipAccepted {
		uc.pub.Publish("friends", friendship.User1ID)
		uc.pub.Publish("friends", friendship.User2ID)
	}
	hydrated, err := uc.hydrate(ctx, []entities.Friendship{*friendship})
	if err != nil {
		return nil, err
	}
	return &hydrated[0], nil
}
