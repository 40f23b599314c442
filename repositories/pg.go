package repositories

import (
	"errors"

	"eudaimonia/db"

	"gorm.io/gorm"
)

// NewPgRepositories wires every repository to the same gorm database.
func NewPgRepositories(database db.Database) *Repositories {
	return &Repositories{
		Users:       NewUserPgRepository(database),
		Profiles:    NewProfilePgRepository(database),
		Worlds:      NewWorldPgRepository(database),
		Memberships: NewMembershipPgRepository(database),
		Posts:       NewPostPgRepository(database),
		Friendships: NewFriendshipPgRepository(database),
		Proposals:   NewProposalPgRepository(database),
		Votes:       NewVotePgRepository(database),
	}
}

// translate maps gorm errors onto the package sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return err
}
