package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	VoteAgree    = "agree"
	VoteDisagree = "disagree"
	VoteAbstain  = "abstain"
)

func ValidChoice(choice string) bool {
	return choice == VoteAgree || choice == VoteDisagree || choice == VoteAbstain
}

type Proposal struct {
	ID          string       `gorm:"type:varchar(36);primaryKey" json:"id"`
	Title       string       `gorm:"size:200;not null" json:"title"`
	Description string       `gorm:"type:text" json:"description"`
	WorldID     string       `gorm:"type:varchar(36);index;not null" json:"world_id"`
	CreatorID   string       `gorm:"type:varchar(36);index;not null" json:"creator_id"`
	Creator     *User        `gorm:"-" json:"creator,omitempty"`
	World       *LivingWorld `gorm:"-" json:"world,omitempty"`
	VoteCount   int64        `gorm:"-" json:"vote_count"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

func (p *Proposal) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt
	return nil
}

// Vote is one account's choice on a proposal. An account votes at most once
// per proposal.
type Vote struct {
	ID         string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	ProposalID string    `gorm:"type:varchar(36);uniqueIndex:idx_vote_proposal_voter;not null" json:"proposal_id"`
	VoterID    string    `gorm:"type:varchar(36);uniqueIndex:idx_vote_proposal_voter;index;not null" json:"voter_id"`
	Choice     string    `gorm:"size:10;not null" json:"choice"`
	Voter      *User     `gorm:"-" json:"voter,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func (v *Vote) BeforeCreate(tx *gorm.DB) (err error) {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	v.CreatedAt = time.Now().UTC()
	return nil
}
