package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Post is content inside a world. Posts are never edited once created.
type Post struct {
	ID        string       `gorm:"type:varchar(36);primaryKey" json:"id"`
	Content   string       `gorm:"type:text;not null" json:"content"`
	AuthorID  string       `gorm:"type:varchar(36);index;not null" json:"author_id"`
	WorldID   string       `gorm:"type:varchar(36);index;not null" json:"world_id"`
	Author    *User        `gorm:"-" json:"author,omitempty"`
	World     *LivingWorld `gorm:"-" json:"world,omitempty"`
	CreatedAt time.Time    `gorm:"index" json:"created_at"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	p.CreatedAt = time.Now().UTC()
	return nil
}
