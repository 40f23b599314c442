package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ThemeDecentralizedScience = "decentralized_science"
	ThemeArtAndCulture        = "art_and_culture"
	ThemeTechnology           = "technology_and_startups"
	ThemeSocialAndPolitical   = "social_and_political_issues"
	ThemeOther                = "other"
)

// ValidTheme reports whether theme is one of the known world themes.
func ValidTheme(theme string) bool {
	switch theme {
	case ThemeDecentralizedScience, ThemeArtAndCulture, ThemeTechnology, ThemeSocialAndPolitical, ThemeOther:
		return true
	}
	return false
}

// LivingWorld is a community. Posts, memberships and proposals all live
// inside exactly one world.
type LivingWorld struct {
	ID          string            `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name        string            `gorm:"size:200;uniqueIndex;not null" json:"name"`
	Description string            `gorm:"type:text" json:"description"`
	Theme       string            `gorm:"size:50;default:other" json:"theme"`
	ThemeData   datatypes.JSONMap `json:"theme_data"`
	OwnerID     string            `gorm:"type:varchar(36);index;not null" json:"owner_id"`
	Owner       *User             `gorm:"-" json:"owner,omitempty"`
	MemberCount int64             `gorm:"-" json:"member_count"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func (w *LivingWorld) BeforeCreate(tx *gorm.DB) (err error) {
	if w.ID == "" {
		w.ID = uuid.New().String()
	}
	if w.Theme == "" {
		w.Theme = ThemeOther
	}
	if w.ThemeData == nil {
		w.ThemeData = datatypes.JSONMap{}
	}
	w.CreatedAt = time.Now().UTC()
	w.UpdatedAt = w.CreatedAt
	return nil
}
