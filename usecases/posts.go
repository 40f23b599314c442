package usecases

import (
	"context"
	"errors"
	"strings"

	"eudaimonia/entities"
	"eudaimonia/repositories"
)

type PostInput struct {
	Content string `json:"content"`
	WorldID string `json:"world_id"`
}

type PostUseCase struct {
	repos *repositories.Repositories
	pub   Publisher
}

func NewPostUseCase(repos *repositories.Repositories, pub Publisher) *PostUseCase {
	return &PostUseCase{repos: repos, pub: orNop(pub)}
}

func hydratePosts(ctx context.Context, repos *repositories.Repositories, posts []entities.Post) ([]entities.Post, error) {
	users := newUserLookup(repos.Users)
	worlds := newWorldLookup(repos.Worlds)
	var err error
	for i := range posts {
		if posts[i].Author, err = users.get(ctx, posts[i].AuthorID); err != nil {
			return nil, err
		}
		if posts[i].World, err = worlds.get(ctx, posts[i].WorldID); err != nil {
			return nil, err
		}
	}
	return posts, nil
}

// List returns posts newest first; a non-empty worldID restricts the list
// to that world.
func (uc *PostUseCase) List(ctx context.Context, worldID string) ([]entities.Post, error) {
	var (
		posts []entities.Post
		err   error
	)
	if worldID != "" {
		posts, err = uc.repos.Posts.GetByWorldID(ctx, worldID)
	} else {
		posts, err = uc.repos.Posts.GetAll(ctx)
	}
	if err != nil {
		return nil, err
	}
	return hydratePosts(ctx, uc.repos, posts)
}

func (uc *PostUseCase) Get(ctx context.Context, id string) (*entities.Post, error) {
	post, err := uc.repos.Posts.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Post not found")
	}
	hydrated, err := hydratePosts(ctx, uc.repos, []entities.Post{*post})
	if err != nil {
		return nil, err
	}
	return &hydrated[0], nil
}

// Create publishes a post by userID into an existing world.
func (uc *PostUseCase) Create(ctx context.Context, userID string, in PostInput) (*entities.Post, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, newError(ErrValidation, "content may not be blank")
	}
	if in.WorldID == "" {
		return nil, newError(ErrValidation, "world_id is required")
	}
	if _, err := uc.repos.Worlds.GetByID(ctx, in.WorldID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, newError(ErrValidation, "Invalid world \"%s\" - object does not exist.", in.WorldID)
		}
		return nil, err
	}

	post := &entities.Post{Content: content, AuthorID: userID, WorldID: in.WorldID}
	if err := uc.repos.Posts.Create(ctx, post); err != nil {
		return nil, err
	}

	uc.pub.Publish("posts", in.WorldID)
	uc.pub.Publish("feed")
	return uc.Get(ctx, post.ID)
}
