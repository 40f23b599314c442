package api

import (
	"context"

	"eudaimonia/cache"
	"eudaimonia/client/mutation"
)

// Each constructor returns a fresh mutation so views can track their own
// pending and error state.

func (a *API) CreateWorld() *mutation.Mutation[WorldRequest, World] {
	return mutation.New(a.Cache, func(ctx context.Context, in WorldRequest) (World, error) {
		var out World
		err := a.Client.Post(ctx, "/api/worlds", in, &out)
		return out, err
	},
		mutation.Static[WorldRequest, World]("worlds"),
		mutation.Static[WorldRequest, World]("memberships"),
		mutation.Static[WorldRequest, World]("me", "profile"),
	)
}

func (a *API) JoinWorld() *mutation.Mutation[JoinRequest, Membership] {
	return mutation.New(a.Cache, func(ctx context.Context, in JoinRequest) (Membership, error) {
		var out Membership
		err := a.Client.Post(ctx, "/api/worlds/"+seg(in.WorldID)+"/join", in, &out)
		return out, err
	},
		mutation.Static[JoinRequest, Membership]("memberships"),
		mutation.Static[JoinRequest, Membership]("worlds"),
		mutation.Static[JoinRequest, Membership]("me", "profile"),
		func(in JoinRequest, _ Membership) cache.Key { return KeyMembers(in.WorldID) },
		func(in JoinRequest, _ Membership) cache.Key { return KeyWorld(in.WorldID) },
	)
}

func (a *API) CreatePost() *mutation.Mutation[PostRequest, Post] {
	return mutation.New(a.Cache, func(ctx context.Context, in PostRequest) (Post, error) {
		var out Post
		err := a.Client.Post(ctx, "/api/posts", in, &out)
		return out, err
	},
		func(in PostRequest, _ Post) cache.Key { return KeyPosts(in.WorldID) },
		mutation.Static[PostRequest, Post]("feed"),
	)
}

func (a *API) CreateProposal() *mutation.Mutation[ProposalRequest, Proposal] {
	return mutation.New(a.Cache, func(ctx context.Context, in ProposalRequest) (Proposal, error) {
		var out Proposal
		err := a.Client.Post(ctx, "/api/proposals", in, &out)
		return out, err
	},
		func(in ProposalRequest, _ Proposal) cache.Key { return KeyProposals(in.WorldID) },
	)
}

func (a *API) CastVote() *mutation.Mutation[VoteRequest, Vote] {
	return mutation.New(a.Cache, func(ctx context.Context, in VoteRequest) (Vote, error) {
		var out Vote
		err := a.Client.Post(ctx, "/api/votes", in, &out)
		return out, err
	},
		func(in VoteRequest, _ Vote) cache.Key { return KeyProposals(in.WorldID) },
		func(in VoteRequest, _ Vote) cache.Key { return KeyProposal(in.ProposalID) },
		func(in VoteRequest, _ Vote) cache.Key { return KeyVotes(in.ProposalID) },
		mutation.Static[VoteRequest, Vote]("my-votes"),
	)
}

func (a *API) RequestFriend() *mutation.Mutation[FriendRequest, Friendship] {
	return mutation.New(a.Cache, func(ctx context.Context, in FriendRequest) (Friendship, error) {
		var out Friendship
		err := a.Client.Post(ctx, "/api/friendships", in, &out)
		return out, err
	},
		mutation.Static[FriendRequest, Friendship]("friendships"),
	)
}

// AnswerFriend accepts or rejects a pending request by id.
func (a *API) AnswerFriend(accept bool) *mutation.Mutation[string, Friendship] {
	action := "reject"
	if accept {
		action = "accept"
	}
	return mutation.New(a.Cache, func(ctx context.Context, id string) (Friendship, error) {
		var out Friendship
		err := a.Client.Post(ctx, "/api/friendships/"+seg(id)+"/"+action, nil, &out)
		return out, err
	},
		mutation.Static[string, Friendship]("friendships"),
		func(_ string, out Friendship) cache.Key { return KeyFriends(out.User1ID) },
		func(_ string, out Friendship) cache.Key { return KeyFriends(out.User2ID) },
	)
}

func (a *API) CreateSmartProfile() *mutation.Mutation[SmartProfileRequest, SmartProfile] {
	return mutation.New(a.Cache, func(ctx context.Context, in SmartProfileRequest) (SmartProfile, error) {
		var out SmartProfile
		err := a.Client.Post(ctx, "/api/smart-profiles", in, &out)
		return out, err
	},
		mutation.Static[SmartProfileRequest, SmartProfile]("smart-profiles"),
		mutation.Static[SmartProfileRequest, SmartProfile]("me", "profile"),
	)
}
