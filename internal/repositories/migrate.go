package repositories

import (
	"github.com/anonto42/campus-social/backend/internal/models"
	"gorm.io/gorm"
)

// AutoMigrate creates or updates every relational table.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Persona{},
		&models.Actor{},
		&models.FriendRequest{},
		&models.Friendship{},
		&models.Like{},
		&models.Repost{},
		&models.SavedPost{},
		&models.Comment{},
		&models.Notification{},
	)
}
