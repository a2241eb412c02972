package models

import "time"

// Persona is the pseudonymous identity of a user. UserID links it to its
// owner and must never reach a non-admin caller, hence no json tag.
type Persona struct {
	ID            uint       `json:"id" gorm:"primaryKey"`
	UserID        uint       `json:"-" gorm:"not null;uniqueIndex"`
	DisplayName   string     `json:"display_name" gorm:"size:50;not null;uniqueIndex"`
	Avatar        string     `json:"avatar,omitempty"`
	IsBanned      bool       `json:"is_banned" gorm:"default:false"`
	ChangeCount   int        `json:"-" gorm:"default:0"`
	LastChangedAt *time.Time `json:"-"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type CreatePersonaRequest struct {
	DisplayName string `json:"display_name" validate:"required,min=3,max=30"`
	Avatar      string `json:"avatar,omitempty" validate:"omitempty,url"`
}

type UpdatePersonaRequest struct {
	DisplayName string `json:"display_name,omitempty" validate:"omitempty,min=3,max=30"`
	Avatar      string `json:"avatar,omitempty" validate:"omitempty,url"`
}

// PersonaProfile is what the owner sees about their own persona.
type PersonaProfile struct {
	Persona
	ActorID          uint `json:"actor_id"`
	ChangesRemaining int  `json:"changes_remaining"`
}
