package usecases

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"eudaimonia/auth"
	"eudaimonia/entities"
	"eudaimonia/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type recordingPublisher struct {
	mu   sync.Mutex
	keys []string
}

func (p *recordingPublisher) Publish(key ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, strings.Join(key, "/"))
}

func (p *recordingPublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.keys...)
}

type fixture struct {
	repos      *repositories.Repositories
	pub        *recordingPublisher
	auth       *AuthUseCase
	users      *UserUseCase
	worlds     *WorldUseCase
	posts      *PostUseCase
	friends    *FriendshipUseCase
	governance *GovernanceUseCase
	profiles   *ProfileUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repos := repositories.NewMemoryRepositories()
	pub := &recordingPublisher{}
	authUC := NewAuthUseCase(repos.Users, auth.NewTokenManager("test-secret", time.Hour, 24*time.Hour))
	authUC.cost = bcrypt.MinCost
	return &fixture{
		repos:      repos,
		pub:        pub,
		auth:       authUC,
		users:      NewUserUseCase(repos),
		worlds:     NewWorldUseCase(repos, pub),
		posts:      NewPostUseCase(repos, pub),
		friends:    NewFriendshipUseCase(repos, pub),
		governance: NewGovernanceUseCase(repos, pub),
		profiles:   NewProfileUseCase(repos, pub),
	}
}

func (f *fixture) register(t *testing.T, username string) *entities.User {
	t.Helper()
	user, err := f.auth.Register(context.Background(), RegisterInput{
		Username:        username,
		Email:           username + "@example.com",
		Password:        "correct-horse",
		PasswordConfirm: "correct-horse",
	})
	require.NoError(t, err)
	return user
}

func (f *fixture) world(t *testing.T, ownerID, name string) *entities.LivingWorld {
	t.Helper()
	world, err := f.worlds.Create(context.Background(), ownerID, WorldInput{Name: name, Theme: entities.ThemeTechnology})
	require.NoError(t, err)
	return world
}

func TestAuthUseCase_Register(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   RegisterInput
		kind error
		msg  string
	}{
		{"short password", RegisterInput{Username: "bob", Email: "bob@example.com", Password: "short", PasswordConfirm: "short"}, ErrValidation, "at least 8"},
		{"mismatch", RegisterInput{Username: "bob", Email: "bob@example.com", Password: "longenough", PasswordConfirm: "different1"}, ErrValidation, "Passwords don't match"},
		{"bad email", RegisterInput{Username: "bob", Email: "nope", Password: "longenough", PasswordConfirm: "longenough"}, ErrValidation, "email"},
		{"missing username", RegisterInput{Email: "bob@example.com", Password: "longenough", PasswordConfirm: "longenough"}, ErrValidation, "username"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.auth.Register(ctx, tt.in)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}

	user := f.register(t, "alice")
	assert.NotEqual(t, "correct-horse", user.PasswordHash)

	_, err := f.auth.Register(ctx, RegisterInput{Username: "alice", Email: "x@example.com", Password: "longenough", PasswordConfirm: "longenough"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestAuthUseCase_LoginAndRefresh(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")

	_, err := f.auth.Login(ctx, "alice", "wrong-password")
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = f.auth.Login(ctx, "nobody", "correct-horse")
	assert.ErrorIs(t, err, ErrUnauthorized)

	pair, err := f.auth.Login(ctx, "alice", "correct-horse")
	require.NoError(t, err)

	access, err := f.auth.Refresh(ctx, pair.Refresh)
	require.NoError(t, err)
	claims, err := f.auth.Tokens.Parse(access, auth.TypeAccess)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, claims.UserID)

	_, err = f.auth.Refresh(ctx, pair.Access)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestWorldUseCase_CreateMakesOwnerAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")

	world := f.world(t, alice.ID, "Builders")
	assert.Equal(t, int64(1), world.MemberCount)
	require.NotNil(t, world.Owner)
	assert.Equal(t, "alice", world.Owner.Username)

	members, err := f.worlds.Members(ctx, world.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, entities.RoleAdmin, members[0].Role)

	_, err = f.worlds.Create(ctx, alice.ID, WorldInput{Name: "Builders"})
	assert.ErrorIs(t, err, ErrConflict)
	_, err = f.worlds.Create(ctx, alice.ID, WorldInput{Name: "Odd", Theme: "astrology"})
	assert.ErrorIs(t, err, ErrValidation)

	assert.Contains(t, f.pub.published(), "worlds")
}

func TestWorldUseCase_Join(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	world := f.world(t, alice.ID, "Gardeners")

	profile, err := f.profiles.Create(ctx, bob.ID, ProfileInput{Name: "Green thumb"})
	require.NoError(t, err)

	_, err = f.worlds.Join(ctx, alice.ID, world.ID, profile.ID)
	assert.ErrorIs(t, err, ErrValidation, "cannot present someone else's profile")

	m, err := f.worlds.Join(ctx, bob.ID, world.ID, profile.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.RoleMember, m.Role)
	assert.Equal(t, profile.ID, m.ProfileID)

	_, err = f.worlds.Join(ctx, bob.ID, world.ID, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, "Already a member of this world", err.Error())

	_, err = f.worlds.Join(ctx, bob.ID, "missing", "")
	assert.ErrorIs(t, err, ErrNotFound)

	mine, err := f.worlds.Memberships(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Gardeners", mine[0].World.Name)

	assert.Contains(t, f.pub.published(), "members/"+world.ID)
}

func TestWorldUseCase_OwnerOnlyWrites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	world := f.world(t, alice.ID, "Makers")

	desc := "hardware people"
	_, err := f.worlds.Update(ctx, bob.ID, world.ID, WorldPatch{Description: &desc})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, f.worlds.Delete(ctx, bob.ID, world.ID), ErrForbidden)

	updated, err := f.worlds.Update(ctx, alice.ID, world.ID, WorldPatch{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, desc, updated.Description)
	assert.Equal(t, "Makers", updated.Name)

	require.NoError(t, f.worlds.Delete(ctx, alice.ID, world.ID))
	_, err = f.worlds.Get(ctx, world.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostUseCase_PostsStayInTheirWorld(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	w1 := f.world(t, alice.ID, "One")
	w2 := f.world(t, alice.ID, "Two")

	for i, worldID := range []string{w1.ID, w2.ID, w1.ID} {
		_, err := f.posts.Create(ctx, alice.ID, PostInput{Content: "post " + string(rune('a'+i)), WorldID: worldID})
		require.NoError(t, err)
	}

	posts, err := f.worlds.Posts(ctx, w1.ID)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	for _, p := range posts {
		assert.Equal(t, w1.ID, p.WorldID)
		require.NotNil(t, p.Author)
		assert.Equal(t, "alice", p.Author.Username)
	}

	filtered, err := f.posts.List(ctx, w2.ID)
	require.NoError(t, err)
	assert.Len(t, filtered, 1)

	all, err := f.posts.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestPostUseCase_CreatedPostAppearsInWorld(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	world := f.world(t, alice.ID, "Writers")

	post, err := f.posts.Create(ctx, alice.ID, PostInput{Content: "hello world", WorldID: world.ID})
	require.NoError(t, err)

	posts, err := f.worlds.Posts(ctx, world.ID)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, post.ID, posts[0].ID)
	assert.Contains(t, f.pub.published(), "posts/"+world.ID)

	_, err = f.posts.Create(ctx, alice.ID, PostInput{Content: "   ", WorldID: world.ID})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.posts.Create(ctx, alice.ID, PostInput{Content: "lost", WorldID: "missing"})
	assert.ErrorIs(t, err, ErrValidation)

	padded, err := f.posts.Create(ctx, alice.ID, PostInput{Content: "  \n hi there \t", WorldID: world.ID})
	require.NoError(t, err)
	assert.Equal(t, "hi there", padded.Content)
}

func TestGovernanceUseCase_OneVotePerVoter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	world := f.world(t, alice.ID, "Council")

	proposal, err := f.governance.CreateProposal(ctx, alice.ID, ProposalInput{Title: "Adopt a charter", WorldID: world.ID})
	require.NoError(t, err)
	assert.Zero(t, proposal.VoteCount)

	_, err = f.governance.Cast(ctx, alice.ID, VoteInput{ProposalID: proposal.ID, Choice: entities.VoteAgree})
	require.NoError(t, err)
	got, err := f.governance.GetProposal(ctx, proposal.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.VoteCount)

	_, err = f.governance.Cast(ctx, alice.ID, VoteInput{ProposalID: proposal.ID, Choice: entities.VoteDisagree})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, "Already voted on this proposal", err.Error())

	_, err = f.governance.Cast(ctx, bob.ID, VoteInput{ProposalID: proposal.ID, Choice: entities.VoteAbstain})
	require.NoError(t, err)
	got, err = f.governance.GetProposal(ctx, proposal.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.VoteCount)

	_, err = f.governance.Cast(ctx, bob.ID, VoteInput{ProposalID: proposal.ID, Choice: "maybe"})
	assert.ErrorIs(t, err, ErrValidation)

	votes, err := f.governance.Votes(ctx, proposal.ID)
	require.NoError(t, err)
	assert.Len(t, votes, 2)

	published := f.pub.published()
	assert.Contains(t, published, "votes/"+proposal.ID)
	assert.Contains(t, published, "proposals/"+world.ID)
}

func TestFriendshipUseCase_Rules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	carol := f.register(t, "carol")

	_, err := f.friends.Request(ctx, alice.ID, "nobody")
	require.Error(t, err)
	assert.Equal(t, "User not found", err.Error())
	_, err = f.friends.Request(ctx, alice.ID, "alice")
	assert.ErrorIs(t, err, ErrValidation)

	req, err := f.friends.Request(ctx, alice.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, entities.FriendshipPending, req.Status)

	_, err = f.friends.Request(ctx, bob.ID, "alice")
	require.Error(t, err)
	assert.Equal(t, "Friendship request already exists", err.Error())

	_, err = f.friends.Accept(ctx, alice.ID, req.ID)
	assert.ErrorIs(t, err, ErrValidation, "requester cannot accept")
	_, err = f.friends.Accept(ctx, carol.ID, req.ID)
	assert.ErrorIs(t, err, ErrNotFound, "outsiders do not see the request")

	pending, err := f.friends.Pending(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	accepted, err := f.friends.Accept(ctx, bob.ID, req.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.FriendshipAccepted, accepted.Status)

	_, err = f.friends.Reject(ctx, bob.ID, req.ID)
	assert.ErrorIs(t, err, ErrValidation, "no longer pending")

	friends, err := f.users.Friends(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, "bob", friends[0].Username)
}

func TestUserUseCase_Profile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	world := f.world(t, alice.ID, "Scientists")
	_, err := f.profiles.Create(ctx, alice.ID, ProfileInput{Name: "Researcher"})
	require.NoError(t, err)

	profile, err := f.users.Profile(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.User.Username)
	require.Len(t, profile.SmartProfiles, 1)
	require.Len(t, profile.Memberships, 1)
	assert.Equal(t, world.Name, profile.Memberships[0].WorldName)
	assert.Equal(t, entities.RoleAdmin, profile.Memberships[0].Role)

	_, err = f.users.Profile(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProfileUseCase_OwnOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")

	p, err := f.profiles.Create(ctx, alice.ID, ProfileInput{Name: "Artist"})
	require.NoError(t, err)
	_, err = f.profiles.Create(ctx, alice.ID, ProfileInput{Name: "Artist"})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = f.profiles.Get(ctx, bob.ID, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.profiles.Update(ctx, bob.ID, p.ID, ProfileInput{Name: "Thief"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, f.profiles.Delete(ctx, bob.ID, p.ID), ErrNotFound)

	updated, err := f.profiles.Update(ctx, alice.ID, p.ID, ProfileInput{Name: "Painter"})
	require.NoError(t, err)
	assert.Equal(t, "Painter", updated.Name)
	require.NoError(t, f.profiles.Delete(ctx, alice.ID, p.ID))

	list, err := f.profiles.List(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}
