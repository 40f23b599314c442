package repositories

import (
	"context"
	"time"

	"eudaimonia/db"
	"eudaimonia/entities"

	"gorm.io/gorm"
)

type worldPgRepository struct {
	db db.Database
}

func NewWorldPgRepository(database db.Database) WorldRepository {
	return &worldPgRepository{db: database}
}

func (r *worldPgRepository) Create(ctx context.Context, world *entities.LivingWorld) error {
	return translate(r.db.GetDB().WithContext(ctx).Create(world).Error)
}

func (r *worldPgRepository) CreateWithAdmin(ctx context.Context, world *entities.LivingWorld, admin *entities.Membership) error {
	return translate(r.db.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(world).Error; err != nil {
			return err
		}
		admin.WorldID = world.ID
		return tx.Create(admin).Error
	}))
}

func (r *worldPgRepository) GetByID(ctx context.Context, id string) (*entities.LivingWorld, error) {
	var world entities.LivingWorld
	if err := r.db.GetDB().WithContext(ctx).Where("id = ?", id).First(&world).Error; err != nil {
		return nil, translate(err)
	}
	return &world, nil
}

func (r *worldPgRepository) GetByName(ctx context.Context, name string) (*entities.LivingWorld, error) {
	var world entities.LivingWorld
	if err := r.db.GetDB().WithContext(ctx).Where("name = ?", name).First(&world).Error; err != nil {
		return nil, translate(err)
	}
	return &world, nil
}

func (r *worldPgRepository) GetAll(ctx context.Context, theme string) ([]entities.LivingWorld, error) {
	var worlds []entities.LivingWorld
	q := r.db.GetDB().WithContext(ctx)
	if theme != "" {
		q = q.Where("theme = ?", theme)
	}
	err := q.Order("created_at DESC").Find(&worlds).Error
	return worlds, translate(err)
}

func (r *worldPgRepository) Update(ctx context.Context, world *entities.LivingWorld) error {
	world.UpdatedAt = time.Now().UTC()
	return translate(r.db.GetDB().WithContext(ctx).Save(world).Error)
}

func (r *worldPgRepository) Delete(ctx context.Context, id string) error {
	return translate(r.db.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		proposals := tx.Model(&entities.Proposal{}).Select("id").Where("world_id = ?", id)
		if err := tx.Where("proposal_id IN (?)", proposals).Delete(&entities.Vote{}).Error; err != nil {
			return err
		}
		for _, model := range []interface{}{&entities.Proposal{}, &entities.Post{}, &entities.Membership{}} {
			if err := tx.Where("world_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Where("id = ?", id).Delete(&entities.LivingWorld{}).Error
	}))
}
