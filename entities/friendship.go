package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	FriendshipPending  = "pending"
	FriendshipAccepted = "accepted"
	FriendshipRejected = "rejected"
)

// Friendship is a directed request from User1 to User2 that User2 may accept
// or reject while it is pending.
type Friendship struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	User1ID   string    `gorm:"type:varchar(36);uniqueIndex:idx_friendship_pair;not null" json:"user1_id"`
	User2ID   string    `gorm:"type:varchar(36);uniqueIndex:idx_friendship_pair;index;not null" json:"user2_id"`
	Status    string    `gorm:"size:10;default:pending" json:"status"`
	User1     *User     `gorm:"-" json:"user1,omitempty"`
	User2     *User     `gorm:"-" json:"user2,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (f *Friendship) BeforeCreate(tx *gorm.DB) (err error) {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	if f.Status == "" {
		f.Status = FriendshipPending
	}
	f.CreatedAt = time.Now().UTC()
	f.UpdatedAt = f.CreatedAt
	return nil
}

// Other returns the participant that is not userID.
func (f *Friendship) Other(userID string) string {
	if f.User1ID == userID {
		return f.User2ID
	}
	return f.User1ID
}
