package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleMember    = "member"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

const MaxReputation = 1000

type Membership struct {
	ID         string       `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID     string       `gorm:"type:varchar(36);uniqueIndex:idx_membership_user_world;not null" json:"user_id"`
	WorldID    string       `gorm:"type:varchar(36);uniqueIndex:idx_membership_user_world;index;not null" json:"world_id"`
	ProfileID  string       `gorm:"type:varchar(36);index" json:"profile_id,omitempty"`
	Role       string       `gorm:"size:10;default:member" json:"role"`
	Reputation int          `gorm:"default:0;check:reputation >= 0 AND reputation <= 1000" json:"reputation"`
	User       *User        `gorm:"-" json:"user,omitempty"`
	World      *LivingWorld `gorm:"-" json:"world,omitempty"`
	JoinedAt   time.Time    `json:"joined_at"`
	UpdatedAt  time.Time    `json:"-"`
}

func (m *Membership) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.Role == "" {
		m.Role = RoleMember
	}
	m.JoinedAt = time.Now().UTC()
	m.UpdatedAt = m.JoinedAt
	return nil
}
