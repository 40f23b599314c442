package repositories

import (
	"context"
	"time"

	"eudaimonia/db"
	"eudaimonia/entities"
)

type profilePgRepository struct {
	db db.Database
}

func NewProfilePgRepository(database db.Database) ProfileRepository {
	return &profilePgRepository{db: database}
}

func (r *profilePgRepository) Create(ctx context.Context, profile *entities.SmartProfile) error {
	return translate(r.db.GetDB().WithContext(ctx).Create(profile).Error)
}

func (r *profilePgRepository) GetByID(ctx context.Context, id string) (*entities.SmartProfile, error) {
	var profile entities.SmartProfile
	if err := r.db.GetDB().WithContext(ctx).Where("id = ?", id).First(&profile).Error; err != nil {
		return nil, translate(err)
	}
	return &profile, nil
}

func (r *profilePgRepository) GetByUserID(ctx context.Context, userID string) ([]entities.SmartProfile, error) {
	var profiles []entities.SmartProfile
	err := r.db.GetDB().WithContext(ctx).Where("user_id = ?", userID).Order("created_at ASC").Find(&profiles).Error
	return profiles, translate(err)
}

func (r *profilePgRepository) Update(ctx context.Context, profile *entities.SmartProfile) error {
	profile.UpdatedAt = time.Now().UTC()
	return translate(r.db.GetDB().WithContext(ctx).Save(profile).Error)
}

func (r *profilePgRepository) Delete(ctx context.Context, id string) error {
	return translate(r.db.GetDB().WithContext(ctx).Where("id = ?", id).Delete(&entities.SmartProfile{}).Error)
}
