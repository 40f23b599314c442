package db

import (
	"eudaimonia/entities"

	"gorm.io/gorm"
)

type Database interface {
	GetDB() *gorm.DB
}

type GormDatabase struct {
	DB *gorm.DB
}

func (g *GormDatabase) GetDB() *gorm.DB { return g.DB }

// Models lists every table the service owns, in migration order.
func Models() []interface{} {
	return []interface{}{
		&entities.User{},
		&entities.SmartProfile{},
		&entities.LivingWorld{},
		&entities.Membership{},
		&entities.Post{},
		&entities.Friendship{},
		&entities.Proposal{},
		&entities.Vote{},
	}
}
