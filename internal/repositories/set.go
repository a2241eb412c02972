package repositories

import (
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// Set bundles every repository the server needs.
type Set struct {
	Users         UserRepository
	Personas      PersonaRepository
	Actors        ActorRepository
	Friendships   FriendshipRepository
	Posts         PostRepository
	Engagements   EngagementRepository
	Comments      CommentRepository
	Notifications NotificationRepository
}

// NewStoreSet wires the PostgreSQL and MongoDB implementations.
func NewStoreSet(pg *gorm.DB, mongoDB *mongo.Database) Set {
	return Set{
		Users:         NewPostgresUserRepository(pg),
		Personas:      NewPostgresPersonaRepository(pg),
		Actors:        NewPostgresActorRepository(pg),
		Friendships:   NewPostgresFriendshipRepository(pg),
		Posts:         NewMongoPostRepository(mongoDB),
		Engagements:   NewPostgresEngagementRepository(pg),
		Comments:      NewPostgresCommentRepository(pg),
		Notifications: NewPostgresNotificationRepository(pg),
	}
}
