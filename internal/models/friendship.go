package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

type FriendRequestStatus string

const (
	FriendRequestPending   FriendRequestStatus = "pending"
	FriendRequestAccepted  FriendRequestStatus = "accepted"
	FriendRequestDeclined  FriendRequestStatus = "declined"
	FriendRequestCancelled FriendRequestStatus = "cancelled"
)

// PairKey is the canonical key of the unordered pair {a, b}.
func PairKey(a, b uint) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d:%d", a, b)
}

// FriendRequest is a request between two actors. PendingKey holds the
// canonical pair while the request is pending and is cleared once it
// reaches a terminal state; its unique index allows one pending request per
// pair in either direction.
type FriendRequest struct {
	ID          uint                `json:"id" gorm:"primaryKey"`
	FromActorID uint                `json:"from_actor_id" gorm:"not null;index"`
	ToActorID   uint                `json:"to_actor_id" gorm:"not null;index"`
	Status      FriendRequestStatus `json:"status" gorm:"type:varchar(20);default:'pending'"`
	PendingKey  *string             `json:"-" gorm:"size:64;uniqueIndex"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// BeforeCreate stamps the pending key for new pending requests.
func (r *FriendRequest) BeforeCreate(_ *gorm.DB) error {
	if r.Status == "" {
		r.Status = FriendRequestPending
	}
	if r.Status == FriendRequestPending {
		key := PairKey(r.FromActorID, r.ToActorID)
		r.PendingKey = &key
	}
	return nil
}

// Friendship is a confirmed edge stored once per unordered pair with
// ActorLowID < ActorHighID.
type Friendship struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	ActorLowID  uint      `json:"actor_low_id" gorm:"not null;uniqueIndex:idx_friendship_pair;index"`
	ActorHighID uint      `json:"actor_high_id" gorm:"not null;uniqueIndex:idx_friendship_pair;index"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewFriendship(a, b uint) *Friendship {
	f := &Friendship{ActorLowID: a, ActorHighID: b}
	f.canonicalize()
	return f
}

// BeforeCreate ensures ActorLowID < ActorHighID for consistent ordering
func (f *Friendship) BeforeCreate(_ *gorm.DB) error {
	f.canonicalize()
	return nil
}

func (f *Friendship) canonicalize() {
	if f.ActorLowID > f.ActorHighID {
		f.ActorLowID, f.ActorHighID = f.ActorHighID, f.ActorLowID
	}
}

// Other returns the opposite end of the edge.
func (f *Friendship) Other(actorID uint) uint {
	if f.ActorLowID == actorID {
		return f.ActorHighID
	}
	return f.ActorLowID
}

// CreateFriendRequest defines the request body for sending a friend request
type CreateFriendRequest struct {
	ToActorID uint `json:"to_actor_id" validate:"required"`
	ActorID   uint `json:"actor_id,omitempty"`
	AsPersona bool `json:"as_persona,omitempty"`
}

// RespondFriendRequest defines the request body for accepting/declining a friend request
type RespondFriendRequest struct {
	Action    string `json:"action" validate:"required,oneof=accept decline"`
	ActorID   uint   `json:"actor_id,omitempty"`
	AsPersona bool   `json:"as_persona,omitempty"`
}

// FriendRequestView is a request with both ends rendered as author views.
type FriendRequestView struct {
	ID        uint                `json:"id"`
	Status    FriendRequestStatus `json:"status"`
	Direction string              `json:"direction"` // "sent" or "received"
	From      AuthorView          `json:"from"`
	To        AuthorView          `json:"to"`
	CreatedAt time.Time           `json:"created_at"`
}
