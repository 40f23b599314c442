package repositories

import (
	"context"
	"time"

	"eudaimonia/db"
	"eudaimonia/entities"
)

type friendshipPgRepository struct {
	db db.Database
}

func NewFriendshipPgRepository(database db.Database) FriendshipRepository {
	return &friendshipPgRepository{db: database}
}

func (r *friendshipPgRepository) Create(ctx context.Context, friendship *entities.Friendship) error {
	return translate(r.db.GetDB().WithContext(ctx).Create(friendship).Error)
}

func (r *friendshipPgRepository) GetByID(ctx context.Context, id string) (*entities.Friendship, error) {
	var friendship entities.Friendship
	if err := r.db.GetDB().WithContext(ctx).Where("id = ?", id).First(&friendship).Error; err != nil {
		return nil, translate(err)
	}
	return &friendship, nil
}

func (r *friendshipPgRepository) GetByPair(ctx context.Context, user1ID, user2ID string) (*entities.Friendship, error) {
	var friendship entities.Friendship
	err := r.db.GetDB().WithContext(ctx).Where("user1_id = ? AND user2_id = ?", user1ID, user2ID).First(&friendship).Error
	if err != nil {
		return nil, translate(err)
	}
	return &friendship, nil
}

func (r *friendshipPgRepository) GetByUserID(ctx context.Context, userID string) ([]entities.Friendship, error) {
	var friendships []entities.Friendship
	err := r.db.GetDB().WithContext(ctx).
		Where("user1_id = ? OR user2_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&friendships).Error
	return friendships, translate(err)
}

func (r *friendshipPgRepository) GetAccepted(ctx context.Context, userID string) ([]entities.Friendship, error) {
	var friendships []entities.Friendship
	err := r.db.GetDB().WithContext(ctx).
		Where("(user1_id = ? OR user2_id = ?) AND status = ?", userID, userID, entities.FriendshipAccepted).
		Order("updated_at DESC").
		Find(&friendships).Error
	return friendships, translate(err)
}

func (r *friendshipPgRepository) GetPendingFor(ctx context.Context, recipientID string) ([]entities.Friendship, error) {
	var friendships []entities.Friendship
	err := r.db.GetDB().WithContext(ctx).
		Where("user2_id = ? AND status = ?", recipientID, entities.FriendshipPending).
		Order("created_at ASC").
		Find(&friendships).Error
	return friendships, translate(err)
}

func (r *friendshipPgRepository) UpdateStatus(ctx context.Context, id, status string) error {
	res := r.db.GetDB().WithContext(ctx).Model(&entities.Friendship{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":     status,
		"updated_at": time.Now().UTC(),
	})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
