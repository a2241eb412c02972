package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityFriends Visibility = "friends"
)

// Post represents a post stored in MongoDB. The author is referenced by
// actor id only and is rendered through an AuthorView, never directly.
type Post struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	AuthorActorID uint               `json:"-" bson:"author_actor_id"`
	Content       string             `json:"content" bson:"content"`
	ImageURL      string             `json:"image_url,omitempty" bson:"image_url,omitempty"`
	Location      string             `json:"location,omitempty" bson:"location,omitempty"`
	Visibility    Visibility         `json:"visibility" bson:"visibility"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" bson:"updated_at"`
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Content    string `json:"content" validate:"required,min=1,max=500"`
	ImageURL   string `json:"image_url,omitempty" validate:"omitempty,url"`
	Location   string `json:"location,omitempty" validate:"omitempty,max=100"`
	Visibility string `json:"visibility,omitempty" validate:"omitempty,oneof=public friends"`
	ActorID    uint   `json:"actor_id,omitempty"`
	AsPersona  bool   `json:"as_persona,omitempty"`
}

// UpdatePostRequest defines the request body for updating an existing post
type UpdatePostRequest struct {
	Content    string  `json:"content,omitempty" validate:"omitempty,min=1,max=500"`
	ImageURL   *string `json:"image_url,omitempty" validate:"omitempty,url"`
	Location   *string `json:"location,omitempty" validate:"omitempty,max=100"`
	Visibility string  `json:"visibility,omitempty" validate:"omitempty,oneof=public friends"`
	ActorID    uint    `json:"actor_id,omitempty"`
	AsPersona  bool    `json:"as_persona,omitempty"`
}

// PostView is a post annotated with its author view, live engagement
// counts and the viewer's own engagement flags.
type PostView struct {
	ID            string     `json:"id"`
	Content       string     `json:"content"`
	ImageURL      string     `json:"image_url,omitempty"`
	Location      string     `json:"location,omitempty"`
	Visibility    Visibility `json:"visibility"`
	Author        AuthorView `json:"author"`
	LikesCount    int64      `json:"likes_count"`
	RepostsCount  int64      `json:"reposts_count"`
	CommentsCount int64      `json:"comments_count"`
	IsLiked       bool       `json:"is_liked"`
	IsReposted    bool       `json:"is_reposted"`
	IsSaved       bool       `json:"is_saved"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
