// Package api binds the backend's resources to typed, cached reads and
// key-invalidating mutations.
package api

import (
	"context"
	"net/url"

	"eudaimonia/cache"
	"eudaimonia/client/apiclient"
)

type API struct {
	Client *apiclient.Client
	Cache  *cache.Cache
}

func New(client *apiclient.Client, c *cache.Cache) *API {
	return &API{Client: client, Cache: c}
}

func get[T any](ctx context.Context, a *API, key cache.Key, path string) (T, error) {
	return cache.Get(ctx, a.Cache, key, func(ctx context.Context) (T, error) {
		var out T
		err := a.Client.Get(ctx, path, &out)
		return out, err
	})
}

func withQuery(path, name, value string) string {
	if value == "" {
		return path
	}
	return path + "?" + url.Values{name: {value}}.Encode()
}

func seg(id string) string { return url.PathEscape(id) }

// Auth

// Login exchanges credentials for a token pair. It bypasses the cache.
func (a *API) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	var pair TokenPair
	body := map[string]string{"username": username, "password": password}
	if err := a.Client.Post(ctx, "/api/auth/login", body, &pair); err != nil {
		return nil, err
	}
	return &pair, nil
}

func (a *API) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	var user User
	if err := a.Client.Post(ctx, "/api/auth/register", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout drops every cached entry so nothing from the previous session
// stays readable.
func (a *API) Logout() {
	a.Cache.Clear()
}

func (a *API) Me(ctx context.Context) (User, error) {
	return get[User](ctx, a, KeyMe(), "/api/auth/me")
}

func (a *API) MyProfile(ctx context.Context) (FacetedProfile, error) {
	return get[FacetedProfile](ctx, a, KeyMyProfile(), "/api/auth/me/profile")
}

// Worlds

func (a *API) Worlds(ctx context.Context, theme string) ([]World, error) {
	return get[[]World](ctx, a, KeyWorlds(theme), withQuery("/api/worlds", "theme", theme))
}

func (a *API) World(ctx context.Context, id string) (World, error) {
	return get[World](ctx, a, KeyWorld(id), "/api/worlds/"+seg(id))
}

func (a *API) WorldPosts(ctx context.Context, worldID string) ([]Post, error) {
	return get[[]Post](ctx, a, KeyPosts(worldID), "/api/worlds/"+seg(worldID)+"/posts")
}

func (a *API) Members(ctx context.Context, worldID string) ([]Membership, error) {
	return get[[]Membership](ctx, a, KeyMembers(worldID), "/api/worlds/"+seg(worldID)+"/members")
}

func (a *API) Memberships(ctx context.Context) ([]Membership, error) {
	return get[[]Membership](ctx, a, KeyMemberships(), "/api/memberships")
}

// Feed is every post across worlds, newest first.
func (a *API) Feed(ctx context.Context) ([]Post, error) {
	return get[[]Post](ctx, a, KeyFeed(), "/api/posts")
}

// Social

func (a *API) SmartProfiles(ctx context.Context) ([]SmartProfile, error) {
	return get[[]SmartProfile](ctx, a, KeySmartProfiles(), "/api/smart-profiles")
}

func (a *API) Friendships(ctx context.Context) ([]Friendship, error) {
	return get[[]Friendship](ctx, a, KeyFriendships(), "/api/friendships")
}

func (a *API) PendingFriendships(ctx context.Context) ([]Friendship, error) {
	return get[[]Friendship](ctx, a, KeyPendingFriendships(), "/api/friendships/pending")
}

func (a *API) Friends(ctx context.Context, userID string) ([]User, error) {
	return get[[]User](ctx, a, KeyFriends(userID), "/api/users/"+seg(userID)+"/friends")
}

// Governance

func (a *API) Proposals(ctx context.Context, worldID string) ([]Proposal, error) {
	return get[[]Proposal](ctx, a, KeyProposals(worldID), withQuery("/api/proposals", "world_id", worldID))
}

func (a *API) Proposal(ctx context.Context, id string) (Proposal, error) {
	return get[Proposal](ctx, a, KeyProposal(id), "/api/proposals/"+seg(id))
}

func (a *API) Votes(ctx context.Context, proposalID string) ([]Vote, error) {
	return get[[]Vote](ctx, a, KeyVotes(proposalID), "/api/proposals/"+seg(proposalID)+"/votes")
}

func (a *API) MyVotes(ctx context.Context) ([]Vote, error) {
	return get[[]Vote](ctx, a, KeyMyVotes(), "/api/votes")
}
