package repositories

import (
	"context"
	"errors"

	"eudaimonia/entities"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a write violates a unique constraint.
	ErrDuplicate = errors.New("duplicate record")
)

type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id string) (*entities.User, error)
	GetByUsername(ctx context.Context, username string) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	GetAll(ctx context.Context) ([]entities.User, error)
}

type ProfileRepository interface {
	Create(ctx context.Context, profile *entities.SmartProfile) error
	GetByID(ctx context.Context, id string) (*entities.SmartProfile, error)
	GetByUserID(ctx context.Context, userID string) ([]entities.SmartProfile, error)
	Update(ctx context.Context, profile *entities.SmartProfile) error
	Delete(ctx context.Context, id string) error
}

type WorldRepository interface {
	Create(ctx context.Context, world *entities.LivingWorld) error
	// CreateWithAdmin stores world and its first admin membership together;
	// neither is kept if either insert fails.
	CreateWithAdmin(ctx context.Context, world *entities.LivingWorld, admin *entities.Membership) error
	GetByID(ctx context.Context, id string) (*entities.LivingWorld, error)
	GetByName(ctx context.Context, name string) (*entities.LivingWorld, error)
	// GetAll lists worlds newest first; an empty theme matches every world.
	GetAll(ctx context.Context, theme string) ([]entities.LivingWorld, error)
	Update(ctx context.Context, world *entities.LivingWorld) error
	// Delete removes the world together with its posts, memberships,
	// proposals and their votes.
	Delete(ctx context.Context, id string) error
}

type MembershipRepository interface {
	Create(ctx context.Context, membership *entities.Membership) error
	GetByUserAndWorld(ctx context.Context, userID, worldID string) (*entities.Membership, error)
	GetByUserID(ctx context.Context, userID string) ([]entities.Membership, error)
	GetByWorldID(ctx context.Context, worldID string) ([]entities.Membership, error)
	CountByWorldID(ctx context.Context, worldID string) (int64, error)
}

type PostRepository interface {
	Create(ctx context.Context, post *entities.Post) error
	GetByID(ctx context.Context, id string) (*entities.Post, error)
	GetAll(ctx context.Context) ([]entities.Post, error)
	GetByWorldID(ctx context.Context, worldID string) ([]entities.Post, error)
}

type FriendshipRepository interface {
	Create(ctx context.Context, friendship *entities.Friendship) error
	GetByID(ctx context.Context, id string) (*entities.Friendship, error)
	GetByPair(ctx context.Context, user1ID, user2ID string) (*entities.Friendship, error)
	// GetByUserID returns friendships where userID is either participant.
	GetByUserID(ctx context.Context, userID string) ([]entities.Friendship, error)
	GetAccepted(ctx context.Context, userID string) ([]entities.Friendship, error)
	GetPendingFor(ctx context.Context, recipientID string) ([]entities.Friendship, error)
	UpdateStatus(ctx context.Context, id, status string) error
}

type ProposalRepository interface {
	Create(ctx context.Context, proposal *entities.Proposal) error
	GetByID(ctx context.Context, id string) (*entities.Proposal, error)
	GetAll(ctx context.Context) ([]entities.Proposal, error)
	GetByWorldID(ctx context.Context, worldID string) ([]entities.Proposal, error)
}

type VoteRepository interface {
	Create(ctx context.Context, vote *entities.Vote) error
	GetByProposalAndVoter(ctx context.Context, proposalID, voterID string) (*entities.Vote, error)
	GetByProposalID(ctx context.Context, proposalID string) ([]entities.Vote, error)
	GetByVoterID(ctx context.Context, voterID string) ([]entities.Vote, error)
	CountByProposalID(ctx context.Context, proposalID string) (int64, error)
}

// Repositories bundles one implementation of every repository so the server
// can be wired against either storage backend.
type Repositories struct {
	Users       UserRepository
	Profiles    ProfileRepository
	Worlds      WorldRepository
	Memberships MembershipRepository
	Posts       PostRepository
	Friendships FriendshipRepository
	Proposals   ProposalRepository
	Votes       VoteRepository
}
