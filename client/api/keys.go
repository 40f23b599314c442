package api

import "eudaimonia/cache"

// Query keys. The server's invalidation events use the same tuples.
func KeyMe() cache.Key { return cache.Key{"me"} }
func KeyMyProfile() cache.Key { return cache.Key{"me", "profile"} }
func KeyWorlds(theme string) cache.Key { return cache.Key{"worlds", theme} }
func KeyWorld(id string) cache.Key { return cache.Key{"world", id} }
func KeyPosts(worldID string) cache.Key { return cache.Key{"posts", worldID} }
func KeyFeed() cache.Key { return cache.Key{"feed"} }
func KeyMemberships() cache.Key { return cache.Key{"memberships"} }
func KeyMembers(worldID string) cache.Key { return cache.Key{"members", worldID} }
func KeySmartProfiles() cache.Key { return cache.Key{"smart-profiles"} }
func KeyFriendships() cache.Key { return cache.Key{"friendships"} }
func KeyPendingFriendships() cache.Key { return cache.Key{"friendships", "pending"} }
func KeyFriends(userID string) cache.Key { return cache.Key{"friends", userID} }
func KeyProposals(worldID string) cache.Key { return cache.Key{"proposals", worldID} }
func KeyProposal(id string) cache.Key { return cache.Key{"proposal", id} }
func KeyVotes(proposalID string) cache.Key { return cache.Key{"votes", proposalID} }
func KeyMyVotes() cache.Key { return cache.Key{"my-votes"} }
