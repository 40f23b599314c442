package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SmartProfile is one named facet of a user's identity. DID is reserved for a
// decentralized identifier and is not populated by any flow yet.
type SmartProfile struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID    string    `gorm:"type:varchar(36);uniqueIndex:idx_profile_user_name;not null" json:"user_id"`
	Name      string    `gorm:"size:100;uniqueIndex:idx_profile_user_name;not null" json:"name"`
	DID       string    `gorm:"size:255" json:"did"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *SmartProfile) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt
	return nil
}
