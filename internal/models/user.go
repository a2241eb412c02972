package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// User is a real campus identity. It is never serialized next to content
// authored by its persona.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"size:100;index"`
	Email        string    `json:"email" gorm:"uniqueIndex"`
	Password     string    `json:"-"`
	FirebaseUID  *string   `json:"-" gorm:"uniqueIndex"` // nullable so local accounts don't collide
	ProfileImage string    `json:"profile_image,omitempty"`
	IsAdmin      bool      `json:"is_admin" gorm:"default:false"`
	IsBanned     bool      `json:"is_banned" gorm:"default:false"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type CreateLocalUserRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateUserRequest struct {
	Name         string `json:"name,omitempty" validate:"omitempty,min=2,max=50"`
	ProfileImage string `json:"profile_image,omitempty" validate:"omitempty,url"`
}

// UserProfile is the public shape of a user together with its actor id.
type UserProfile struct {
	ID           uint   `json:"id"`
	ActorID      uint   `json:"actor_id"`
	Name         string `json:"name"`
	ProfileImage string `json:"profile_image,omitempty"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
