package api

import "time"

type User struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	DateJoined time.Time `json:"date_joined"`
}

type World struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Theme       string                 `json:"theme"`
	ThemeData   map[string]interface{} `json:"theme_data"`
	OwnerID     string                 `json:"owner_id"`
	Owner       *User                  `json:"owner,omitempty"`
	MemberCount int64                  `json:"member_count"`
	CreatedAt   time.Time              `json:"created_at"`
}

type Membership struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	WorldID    string    `json:"world_id"`
	ProfileID  string    `json:"profile_id,omitempty"`
	Role       string    `json:"role"`
	Reputation int       `json:"reputation"`
	User       *User     `json:"user,omitempty"`
	World      *World    `json:"world,omitempty"`
	JoinedAt   time.Time `json:"joined_at"`
}

type Post struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	AuthorID  string    `json:"author_id"`
	WorldID   string    `json:"world_id"`
	Author    *User     `json:"author,omitempty"`
	World     *World    `json:"world,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Friendship struct {
	ID        string    `json:"id"`
	User1ID   string    `json:"user1_id"`
	User2ID   string    `json:"user2_id"`
	Status    string    `json:"status"`
	User1     *User     `json:"user1,omitempty"`
	User2     *User     `json:"user2,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Proposal struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	WorldID     string    `json:"world_id"`
	CreatorID   string    `json:"creator_id"`
	Creator     *User     `json:"creator,omitempty"`
	VoteCount   int64     `json:"vote_count"`
	CreatedAt   time.Time `json:"created_at"`
}

type Vote struct {
	ID         string    `json:"id"`
	ProposalID string    `json:"proposal_id"`
	VoterID    string    `json:"voter_id"`
	Choice     string    `json:"choice"`
	Voter      *User     `json:"voter,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type SmartProfile struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	DID       string    `json:"did"`
	CreatedAt time.Time `json:"created_at"`
}

type MembershipFacet struct {
	WorldID          string    `json:"world_id"`
	WorldName        string    `json:"world_name"`
	WorldDescription string    `json:"world_description"`
	Role             string    `json:"role"`
	Reputation       int       `json:"reputation"`
	JoinedAt         time.Time `json:"joined_at"`
}

type FacetedProfile struct {
	User          User              `json:"user"`
	SmartProfiles []SmartProfile    `json:"smart_profiles"`
	Memberships   []MembershipFacet `json:"memberships"`
}

type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type RegisterRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

type WorldRequest struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Theme       string                 `json:"theme,omitempty"`
	ThemeData   map[string]interface{} `json:"theme_data,omitempty"`
}

type JoinRequest struct {
	WorldID   string `json:"-"`
	ProfileID string `json:"profile_id,omitempty"`
}

type PostRequest struct {
	Content string `json:"content"`
	WorldID string `json:"world_id"`
}

type ProposalRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	WorldID     string `json:"world_id"`
}

// VoteRequest carries the proposal's world so the world's proposal list can
// be invalidated; it is not sent.
type VoteRequest struct {
	ProposalID string `json:"proposal_id"`
	Choice     string `json:"choice"`
	WorldID    string `json:"-"`
}

type FriendRequest struct {
	Username string `json:"user2_username"`
}

type SmartProfileRequest struct {
	Name string `json:"name"`
}
