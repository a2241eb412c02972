package models

import "time"

// ActorKind tags which record backs an Actor.
type ActorKind string

const (
	ActorKindUser    ActorKind = "user"
	ActorKindPersona ActorKind = "persona"
)

// Actor is the identity every post, friendship and engagement refers to.
// Exactly one of UserID and PersonaID is set. A persona-backed actor row
// holds no reference to the owning user.
type Actor struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Kind      ActorKind `json:"kind" gorm:"type:varchar(10);not null"`
	UserID    *uint     `json:"-" gorm:"uniqueIndex"`
	PersonaID *uint     `json:"-" gorm:"uniqueIndex"`
	CreatedAt time.Time `json:"created_at"`
}

func NewUserActor(userID uint) *Actor {
	return &Actor{Kind: ActorKindUser, UserID: &userID}
}

func NewPersonaActor(personaID uint) *Actor {
	return &Actor{Kind: ActorKindPersona, PersonaID: &personaID}
}

func (a *Actor) IsPersona() bool { return a.Kind == ActorKindPersona }

// BackingUserID returns the user id for user-backed actors.
func (a *Actor) BackingUserID() (uint, bool) {
	if a.Kind != ActorKindUser || a.UserID == nil {
		return 0, false
	}
	return *a.UserID, true
}

// BackingPersonaID returns the persona id for persona-backed actors.
func (a *Actor) BackingPersonaID() (uint, bool) {
	if a.Kind != ActorKindPersona || a.PersonaID == nil {
		return 0, false
	}
	return *a.PersonaID, true
}

// ActorIdentity bundles an actor with its backing record. It is only used
// inside the server and has no JSON form.
type ActorIdentity struct {
	Actor   Actor    `json:"-"`
	User    *User    `json:"-"`
	Persona *Persona `json:"-"`
}

// AuthorView is the only representation of an actor that is ever
// serialized. RealUserID is filled for admin viewers only.
type AuthorView struct {
	ActorID    uint   `json:"actor_id"`
	Name       string `json:"name"`
	Avatar     string `json:"avatar,omitempty"`
	IsPersona  bool   `json:"is_persona"`
	RealUserID *uint  `json:"real_user_id,omitempty"`
}
