package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"eudaimonia/db"
	"eudaimonia/entities"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (db.Database, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return &db.GormDatabase{DB: gdb}, mock
}

func TestUserPgRepository_GetByUsername(t *testing.T) {
	database, mock := newMockDB(t)
	repo := NewUserPgRepository(database)

	joined := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE username = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "date_joined"}).
			AddRow("u-1", "alice", "alice@example.com", "hash", joined))

	user, err := repo.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "u-1", user.ID)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPgRepository_GetByIDNotFound(t *testing.T) {
	database, mock := newMockDB(t)
	repo := NewUserPgRepository(database)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorldPgRepository_GetAllFiltersByTheme(t *testing.T) {
	database, mock := newMockDB(t)
	repo := NewWorldPgRepository(database)

	mock.ExpectQuery(`SELECT \* FROM "living_worlds" WHERE theme = \$1 ORDER BY created_at DESC`).
		WithArgs(entities.ThemeTechnology).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "theme", "owner_id"}).
			AddRow("w-1", "Builders", entities.ThemeTechnology, "u-1").
			AddRow("w-2", "Makers", entities.ThemeTechnology, "u-2"))

	worlds, err := repo.GetAll(context.Background(), entities.ThemeTechnology)
	require.NoError(t, err)
	require.Len(t, worlds, 2)
	assert.Equal(t, "Builders", worlds[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorldPgRepository_DeleteCascades(t *testing.T) {
	database, mock := newMockDB(t)
	repo := NewWorldPgRepository(database)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "votes" WHERE proposal_id IN \(SELECT "id" FROM "proposals" WHERE world_id = \$1\)`).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`DELETE FROM "proposals" WHERE world_id = \$1`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM "posts" WHERE world_id = \$1`).WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec(`DELETE FROM "memberships" WHERE world_id = \$1`).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM "living_worlds" WHERE id = \$1`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), "w-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorldPgRepository_CreateWithAdminRollsBack(t *testing.T) {
	database, mock := newMockDB(t)
	repo := NewWorldPgRepository(database)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "living_worlds"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "memberships"`).WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	world := &entities.LivingWorld{Name: "Gardeners", OwnerID: "u-1"}
	admin := &entities.Membership{UserID: "u-1", Role: entities.RoleAdmin}
	err := repo.CreateWithAdmin(context.Background(), world, admin)
	assert.EqualError(t, err, "connection reset")
	assert.Equal(t, world.ID, admin.WorldID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorldPgRepository_CreateWithAdminCommits(t *testing.T) {
	database, mock := newMockDB(t)
	repo := NewWorldPgRepository(database)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "living_worlds"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "memberships"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	world := &entities.LivingWorld{Name: "Gardeners", OwnerID: "u-1"}
	admin := &entities.Membership{UserID: "u-1", Role: entities.RoleAdmin}
	require.NoError(t, repo.CreateWithAdmin(context.Background(), world, admin))
	assert.NotEmpty(t, admin.WorldID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFriendshipPgRepository_UpdateStatus(t *testing.T) {
	database, mock := newMockDB(t)
	repo := NewFriendshipPgRepository(database)

	mock.ExpectExec(`UPDATE "friendships" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.UpdateStatus(context.Background(), "f-1", entities.FriendshipAccepted))

	mock.ExpectExec(`UPDATE "friendships" SET`).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.UpdateStatus(context.Background(), "f-2", entities.FriendshipAccepted), ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVotePgRepository_CountByProposalID(t *testing.T) {
	database, mock := newMockDB(t)
	repo := NewVotePgRepository(database)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "votes" WHERE proposal_id = \$1`).
		WithArgs("p-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	n, err := repo.CountByProposalID(context.Background(), "p-1")
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostPgRepository_GetByWorldID(t *testing.T) {
	database, mock := newMockDB(t)
	repo := NewPostPgRepository(database)

	mock.ExpectQuery(`SELECT \* FROM "posts" WHERE world_id = \$1 ORDER BY created_at DESC`).
		WithArgs("w-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "content", "author_id", "world_id"}).
			AddRow("p-2", "second", "u-1", "w-1").
			AddRow("p-1", "first", "u-1", "w-1"))

	posts, err := repo.GetByWorldID(context.Background(), "w-1")
	require.NoError(t, err)
	require.Len(t, posts, 2)
	for _, p := range posts {
		assert.Equal(t, "w-1", p.WorldID)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}
