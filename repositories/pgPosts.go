package repositories

import (
	"context"

	"eudaimonia/db"
	"eudaimonia/entities"
)

type postPgRepository struct {
	db db.Database
}

func NewPostPgRepository(database db.Database) PostRepository {
	return &postPgRepository{db: database}
}

func (r *postPgRepository) Create(ctx context.Context, post *entities.Post) error {
	return translate(r.db.GetDB().WithContext(ctx).Create(post).Error)
}

func (r *postPgRepository) GetByID(ctx context.Context, id string) (*entities.Post, error) {
	var post entities.Post
	if err := r.db.GetDB().WithContext(ctx).Where("id = ?", id).First(&post).Error; err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

func (r *postPgRepository) GetAll(ctx context.Context) ([]entities.Post, error) {
	var posts []entities.Post
	err := r.db.GetDB().WithContext(ctx).Order("created_at DESC").Find(&posts).Error
	return posts, translate(err)
}

func (r *postPgRepository) GetByWorldID(ctx context.Context, worldID string) ([]entities.Post, error) {
	var posts []entities.Post
	err := r.db.GetDB().WithContext(ctx).Where("world_id = ?", worldID).Order("created_at DESC").Find(&posts).Error
	return posts, translate(err)
}
