package repositories

import (
	"context"

	"eudaimonia/db"
	"eudaimonia/entities"
)

type membershipPgRepository struct {
	db db.Database
}

func NewMembershipPgRepository(database db.Database) MembershipRepository {
	return &membershipPgRepository{db: database}
}

func (r *membershipPgRepository) Create(ctx context.Context, membership *entities.Membership) error {
	return translate(r.db.GetDB().WithContext(ctx).Create(membership).Error)
}

func (r *membershipPgRepository) GetByUserAndWorld(ctx context.Context, userID, worldID string) (*entities.Membership, error) {
	var membership entities.Membership
	err := r.db.GetDB().WithContext(ctx).Where("user_id = ? AND world_id = ?", userID, worldID).First(&membership).Error
	if err != nil {
		return nil, translate(err)
	}
	return &membership, nil
}

func (r *membershipPgRepository) GetByUserID(ctx context.Context, userID string) ([]entities.Membership, error) {
	var memberships []entities.Membership
	err := r.db.GetDB().WithContext(ctx).Where("user_id = ?", userID).Order("joined_at DESC").Find(&memberships).Error
	return memberships, translate(err)
}

func (r *membershipPgRepository) GetByWorldID(ctx context.Context, worldID string) ([]entities.Membership, error) {
	var memberships []entities.Membership
	err := r.db.GetDB().WithContext(ctx).Where("world_id = ?", worldID).Order("joined_at ASC").Find(&memberships).Error
	return memberships, translate(err)
}

func (r *membershipPgRepository) CountByWorldID(ctx context.Context, worldID string) (int64, error) {
	var count int64
	err := r.db.GetDB().WithContext(ctx).Model(&entities.Membership{}).Where("world_id = ?", worldID).Count(&count).Error
	return count, translate(err)
}
