package models

import "time"

// Comment represents a comment on a post
type Comment struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	PostID        string    `json:"post_id" gorm:"size:24;index"` // MongoDB ObjectID as string
	AuthorActorID uint      `json:"-" gorm:"index"`
	Content       string    `json:"content"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CreateCommentRequest defines the request body for creating a new comment
type CreateCommentRequest struct {
	Content   string `json:"content" validate:"required,min=1,max=500"`
	ActorID   uint   `json:"actor_id,omitempty"`
	AsPersona bool   `json:"as_persona,omitempty"`
}

// UpdateCommentRequest defines the request body for updating an existing comment
type UpdateCommentRequest struct {
	Content   string `json:"content" validate:"required,min=1,max=500"`
	ActorID   uint   `json:"actor_id,omitempty"`
	AsPersona bool   `json:"as_persona,omitempty"`
}

type CommentView struct {
	ID        uint       `json:"id"`
	PostID    string     `json:"post_id"`
	Content   string     `json:"content"`
	Author    AuthorView `json:"author"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
