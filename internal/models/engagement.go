package models

import "time"

// EngagementKind names one of the three actor/post relations.
type EngagementKind string

const (
	EngagementLike   EngagementKind = "like"
	EngagementRepost EngagementKind = "repost"
	EngagementSave   EngagementKind = "save"
)

var EngagementKinds = []EngagementKind{EngagementLike, EngagementRepost, EngagementSave}

func (k EngagementKind) Valid() bool {
	switch k {
	case EngagementLike, EngagementRepost, EngagementSave:
		return true
	}
	return false
}

// Table returns the table backing the relation.
func (k EngagementKind) Table() string {
	switch k {
	case EngagementRepost:
		return "reposts"
	case EngagementSave:
		return "saved_posts"
	default:
		return "likes"
	}
}

// EngagementRecord is the row shape shared by the three relation tables.
type EngagementRecord struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ActorID   uint      `json:"actor_id"`
	PostID    string    `json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Like represents a like on a post
type Like struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ActorID   uint      `json:"actor_id" gorm:"not null;uniqueIndex:idx_like_actor_post"`
	PostID    string    `json:"post_id" gorm:"size:24;not null;index;uniqueIndex:idx_like_actor_post"`
	CreatedAt time.Time `json:"created_at"`
}

// Repost represents a repost of a post
type Repost struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ActorID   uint      `json:"actor_id" gorm:"not null;uniqueIndex:idx_repost_actor_post"`
	PostID    string    `json:"post_id" gorm:"size:24;not null;index;uniqueIndex:idx_repost_actor_post"`
	CreatedAt time.Time `json:"created_at"`
}

// SavedPost represents a bookmarked/saved post by an actor
type SavedPost struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ActorID   uint      `json:"actor_id" gorm:"not null;uniqueIndex:idx_saved_actor_post"`
	PostID    string    `json:"post_id" gorm:"size:24;not null;index;uniqueIndex:idx_saved_actor_post"`
	CreatedAt time.Time `json:"created_at"`
}

// EngagementState is the per-post summary returned by the engagement endpoint.
type EngagementState struct {
	PostID       string `json:"post_id"`
	LikesCount   int64  `json:"likes_count"`
	RepostsCount int64  `json:"reposts_count"`
	IsLiked      bool   `json:"is_liked"`
	IsReposted   bool   `json:"is_reposted"`
	IsSaved      bool   `json:"is_saved"`
}
