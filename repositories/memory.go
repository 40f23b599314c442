package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"eudaimonia/entities"
)

// memoryStore keeps every table in process memory. It backs STORAGE=memory
// and the tests; it is lost on restart.
type memoryStore struct {
	mu          sync.RWMutex
	users       map[string]entities.User
	profiles    map[string]entities.SmartProfile
	worlds      map[string]entities.LivingWorld
	memberships map[string]entities.Membership
	posts       map[string]entities.Post
	friendships map[string]entities.Friendship
	proposals   map[string]entities.Proposal
	votes       map[string]entities.Vote
}

// NewMemoryRepositories returns repositories sharing one in-memory store.
func NewMemoryRepositories() *Repositories {
	s := &memoryStore{
		users:       make(map[string]entities.User),
		profiles:    make(map[string]entities.SmartProfile),
		worlds:      make(map[string]entities.LivingWorld),
		memberships: make(map[string]entities.Membership),
		posts:       make(map[string]entities.Post),
		friendships: make(map[string]entities.Friendship),
		proposals:   make(map[string]entities.Proposal),
		votes:       make(map[string]entities.Vote),
	}
	return &Repositories{
		Users:       memUsers{s},
		Profiles:    memProfiles{s},
		Worlds:      memWorlds{s},
		Memberships: memMemberships{s},
		Posts:       memPosts{s},
		Friendships: memFriendships{s},
		Proposals:   memProposals{s},
		Votes:       memVotes{s},
	}
}

// collect returns the values of m accepted by keep, ordered by less.
func collect[T any](m map[string]T, keep func(T) bool, less func(a, b T) bool) []T {
	out := make([]T, 0)
	for _, v := range m {
		if keep == nil || keep(v) {
			out = append(out, v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// ============= Users =============

type memUsers struct{ s *memoryStore }

func (r memUsers) Create(_ context.Context, user *entities.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == user.Username || u.Email == user.Email {
			return ErrDuplicate
		}
	}
	_ = user.BeforeCreate(nil)
	r.s.users[user.ID] = *user
	return nil
}

func (r memUsers) GetByID(_ context.Context, id string) (*entities.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (r memUsers) find(match func(entities.User) bool) (*entities.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (r memUsers) GetByUsername(_ context.Context, username string) (*entities.User, error) {
	return r.find(func(u entities.User) bool { return u.Username == username })
}

func (r memUsers) GetByEmail(_ context.Context, email string) (*entities.User, error) {
	return r.find(func(u entities.User) bool { return u.Email == email })
}

func (r memUsers) GetAll(_ context.Context) ([]entities.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return collect(r.s.users, nil, func(a, b entities.User) bool { return a.Username < b.Username }), nil
}

// ============= Smart profiles =============

type memProfiles struct{ s *memoryStore }

func (r memProfiles) Create(_ context.Context, profile *entities.SmartProfile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.profiles {
		if p.UserID == profile.UserID && p.Name == profile.Name {
			return ErrDuplicate
		}
	}
	_ = profile.BeforeCreate(nil)
	r.s.profiles[profile.ID] = *profile
	return nil
}

func (r memProfiles) GetByID(_ context.Context, id string) (*entities.SmartProfile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.profiles[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (r memProfiles) GetByUserID(_ context.Context, userID string) ([]entities.SmartProfile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return collect(r.s.profiles,
		func(p entities.SmartProfile) bool { return p.UserID == userID },
		func(a, b entities.SmartProfile) bool { return a.CreatedAt.Before(b.CreatedAt) }), nil
}

func (r memProfiles) Update(_ context.Context, profile *entities.SmartProfile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.profiles[profile.ID]; !ok {
		return ErrNotFound
	}
	for _, p := range r.s.profiles {
		if p.ID != profile.ID && p.UserID == profile.UserID && p.Name == profile.Name {
			return ErrDuplicate
		}
	}
	profile.UpdatedAt = time.Now().UTC()
	r.s.profiles[profile.ID] = *profile
	return nil
}

func (r memProfiles) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.profiles, id)
	return nil
}

// ============= Worlds =============

type memWorlds struct{ s *memoryStore }

func (r memWorlds) Create(_ context.Context, world *entities.LivingWorld) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, w := range r.s.worlds {
		if w.Name == world.Name {
			return ErrDuplicate
		}
	}
	_ = world.BeforeCreate(nil)
	r.s.worlds[world.ID] = *world
	return nil
}

func (r memWorlds) CreateWithAdmin(_ context.Context, world *entities.LivingWorld, admin *entities.Membership) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, w := range r.s.worlds {
		if w.Name == world.Name {
			return ErrDuplicate
		}
	}
	_ = world.BeforeCreate(nil)
	admin.WorldID = world.ID
	_ = admin.BeforeCreate(nil)
	r.s.worlds[world.ID] = *world
	r.s.memberships[admin.ID] = *admin
	return nil
}

func (r memWorlds) GetByID(_ context.Context, id string) (*entities.LivingWorld, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	w, ok := r.s.worlds[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &w, nil
}

func (r memWorlds) GetByName(_ context.Context, name string) (*entities.LivingWorld, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, w := range r.s.worlds {
		if w.Name == name {
			return &w, nil
		}
	}
	return nil, ErrNotFound
}

func (r memWorlds) GetAll(_ context.Context, theme string) ([]entities.LivingWorld, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return collect(r.s.worlds,
		func(w entities.LivingWorld) bool { return theme == "" || w.Theme == theme },
		func(a, b entities.LivingWorld) bool { return a.CreatedAt.After(b.CreatedAt) }), nil
}

func (r memWorlds) Update(_ context.Context, world *entities.LivingWorld) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.worlds[world.ID]; !ok {
		return ErrNotFound
	}
	for _, w := range r.s.worlds {
		if w.ID != world.ID && w.Name == world.Name {
			return ErrDuplicate
		}
	}
	world.UpdatedAt = time.Now().UTC()
	stored := *world
	stored.Owner = nil
	stored.MemberCount = 0
	r.s.worlds[world.ID] = stored
	return nil
}

func (r memWorlds) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for pid, p := range r.s.proposals {
		if p.WorldID != id {
			continue
		}
		for vid, v := range r.s.votes {
			if v.ProposalID == pid {
				delete(r.s.votes, vid)
			}
		}
		delete(r.s.proposals, pid)
	}
	for pid, p := range r.s.posts {
		if p.WorldID == id {
			delete(r.s.posts, pid)
		}
	}
	for mid, m := range r.s.memberships {
		if m.WorldID == id {
			delete(r.s.memberships, mid)
		}
	}
	delete(r.s.worlds, id)
	return nil
}

// ============= Memberships =============

type memMemberships struct{ s *memoryStore }

func (r memMemberships) Create(_ context.Context, membership *entities.Membership) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.memberships {
		if m.UserID == membership.UserID && m.WorldID == membership.WorldID {
			return ErrDuplicate
		}
	}
	_ = membership.BeforeCreate(nil)
	r.s.memberships[membership.ID] = *membership
	return nil
}

func (r memMemberships) GetByUserAndWorld(_ context.Context, userID, worldID string) (*entities.Membership, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, m := range r.s.memberships {
		if m.UserID == userID && m.WorldID == worldID {
			return &m, nil
		}
	}
	return nil, ErrNotFound
}

func (r memMemberships) GetByUserID(_ context.Context, userID string) ([]entities.Membership, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return collect(r.s.memberships,
		func(m entities.Membership) bool { return m.UserID == userID },
		func(a, b entities.Membership) bool { return a.JoinedAt.After(b.JoinedAt) }), nil
}

func (r memMemberships) GetByWorldID(_ context.Context, worldID string) ([]entities.Membership, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return collect(r.s.memberships,
		func(m entities.Membership) bool { return m.WorldID == worldID },
		func(a, b entities.Membership) bool { return a.JoinedAt.Before(b.JoinedAt) }), nil
}

func (r memMemberships) CountByWorldID(_ context.Context, worldID string) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var n int64
	for _, m := range r.s.memberships {
		if m.WorldID == worldID {
			n++
		}
	}
	return n, nil
}

// ============= Posts =============

type memPosts struct{ s *memoryStore }

func newestPost(a, b entities.Post) bool { return a.CreatedAt.After(b.CreatedAt) }

func (r memPosts) Create(_ context.Context, post *entities.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_ = post.BeforeCreate(nil)
	r.s.posts[post.ID] = *post
	return nil
}

func (r memPosts) GetByID(_ context.Context, id string) (*entities.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (r memPosts) GetAll(_ context.Context) ([]entities.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return collect(r.s.posts, nil, newestPost), nil
}

func (r memPosts) GetByWorldID(_ context.Context, worldID string) ([]entities.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return collect(r.s.posts, func(p entities.Post) bool { return p.WorldID == worldID }, newestPost), nil
}

// ============= Friendships =============

type memFriendships struct{ s *memoryStore }

func (r memFriendships) Create(_ context.Context, friendship *entities.Friendship) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, f := range r.s.friendships {
		if f.User1ID == friendship.User1ID && f.User2ID == friendship.User2ID {
			return ErrDuplicate
		}
	}
	_ = friendship.BeforeCreate(nil)
	r.s.friendships[friendship.ID] = *friendship
	return nil
}

func (r memFriendships) GetByID(_ context.Context, id string) (*entities.Friendship, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	f, ok := r.s.friendships[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &f, nil
}

func (r memFriendships) GetByPair(_ context.Context, user1ID, user2ID string) (*entities.Friendship, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, f := range r.s.friendships {
		if f.User1ID == user1ID && f.User2ID == user2ID {
			return &f, nil
		}
	}
	return nil, ErrNotFound
}

func (r memFriendships) GetByUserID(_ context.Context, userID string) ([]entities.Friendship, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return collect(r.s.friendships,
		func(f entities.Friendship) bool { return f.User1ID == userID || f.User2ID == userID },
		func(a, b entities.Friendship) bool { return a.CreatedAt.After(b.CreatedAt) }), nil
}

func (r memFriendships) GetAccepted(_ context.Context, userID string) ([]entities.Friendship, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return collect(r.s.friendships,
		func(f entities.Friendship) bool {
			return (f.User1ID == userID || f.User2ID == userID) && f.Status == entities.FriendshipAccepted
		},
		func(a, b entities.Friendship) bool { return a.UpdatedAt.After(b.UpdatedAt) }), nil
}

func (r memFriendships) GetPendingFor(_ context.Context, recipientID string) ([]entities.Friendship, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return collect(r.s.friendships,
		func(f entities.Friendship) bool {
			return f.User2ID == recipientID && f.Status == entities.FriendshipPending
		},
		func(a, b entities.Friendship) bool { return a.CreatedAt.Before(b.CreatedAt) }), nil
}

func (r memFriendships) UpdateStatus(_ context.Context, id, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f, ok := r.s.friendships[id]
	if !ok {
		return ErrNotFound
	}
	f.Status = status
	f.UpdatedAt = time.Now().UTC()
	r.s.friendships[id] = f
	return nil
}

// ============= Proposals & votes =============

type memProposals struct{ s *memoryStore }

func newestProposal(a, b entities.Proposal) bool { return a.CreatedAt.After(b.CreatedAt) }

func (r memProposals) Create(_ context.Context, proposal *entities.Proposal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_ = proposal.BeforeCreate(nil)
	r.s.proposals[proposal.ID] = *proposal
	return nil
}

func (r memProposals) GetByID(_ context.Context, id string) (*entities.Proposal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.proposals[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (r memProposals) GetAll(_ context.Context) ([]entities.Proposal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return collect(r.s.proposals, nil, newestProposal), nil
}

func (r memProposals) GetByWorldID(_ context.Context, worldID string) ([]entities.Proposal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return collect(r.s.proposals, func(p entities.Proposal) bool { return p.WorldID == worldID }, newestProposal), nil
}

type memVotes struct{ s *memoryStore }

func (r memVotes) Create(_ context.Context, vote *entities.Vote) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, v := range r.s.votes {
		if v.ProposalID == vote.ProposalID && v.VoterID == vote.VoterID {
			return ErrDuplicate
		}
	}
	_ = vote.BeforeCreate(nil)
	r.s.votes[vote.ID] = *vote
	return nil
}

func (r memVotes) GetByProposalAndVoter(_ context.Context, proposalID, voterID string) (*entities.Vote, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, v := range r.s.votes {
		if v.ProposalID == proposalID && v.VoterID == voterID {
			return &v, nil
		}
	}
	return nil, ErrNotFound
}

func (r memVotes) GetByProposalID(_ context.Context, proposalID string) ([]entities.Vote, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return collect(r.s.votes,
		func(v entities.Vote) bool { return v.ProposalID == proposalID },
		func(a, b entities.Vote) bool { return a.CreatedAt.Before(b.CreatedAt) }), nil
}

func (r memVotes) GetByVoterID(_ context.Context, voterID string) ([]entities.Vote, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return collect(r.s.votes,
		func(v entities.Vote) bool { return v.VoterID == voterID },
		func(a, b entities.Vote) bool { return a.CreatedAt.After(b.CreatedAt) }), nil
}

func (r memVotes) CountByProposalID(_ context.Context, proposalID string) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var n int64
	for _, v := range r.s.votes {
		if v.ProposalID == proposalID {
			n++
		}
	}
	return n, nil
}
