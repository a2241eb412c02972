package models

import "time"

type NotificationType string

const (
	NotificationFriendRequest NotificationType = "friend_request"
	NotificationFriendAccept  NotificationType = "friend_accept"
	NotificationLike          NotificationType = "like"
	NotificationRepost        NotificationType = "repost"
	NotificationComment       NotificationType = "comment"
)

// Notification is addressed from one actor to another. Both ends are actor
// ids so a persona's activity is never attributed to its owner.
type Notification struct {
	ID               uint             `json:"id" gorm:"primaryKey"`
	Type             NotificationType `json:"type" gorm:"size:30;index"`
	ActorID          uint             `json:"-" gorm:"index"`
	RecipientActorID uint             `json:"-" gorm:"index"`
	TargetID         string           `json:"target_id"`                  // post ID, request ID, etc.
	TargetType       string           `json:"target_type" gorm:"size:20"` // post, comment, friend_request
	Message          string           `json:"message"`
	IsRead           bool             `json:"is_read" gorm:"default:false;index"`
	CreatedAt        time.Time        `json:"created_at" gorm:"index"`
}

// NotificationView includes the acting actor's author view
type NotificationView struct {
	Notification
	Actor AuthorView `json:"actor"`
}
