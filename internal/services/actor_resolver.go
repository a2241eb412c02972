package services

import (
	"context"
	"errors"

	"github.com/anonto42/campus-social/backend/internal/apperr"
	"github.com/anonto42/campus-social/backend/internal/models"
	"github.com/anonto42/campus-social/backend/internal/repositories"
)

// ActorResolver maps an authenticated user to the actor it acts as.
// It only reads; ban checks belong to the caller.
type ActorResolver struct {
	users    repositories.UserRepository
	personas repositories.PersonaRepository
	actors   repositories.ActorRepository
}

func NewActorResolver(users repositories.UserRepository, personas repositories.PersonaRepository, actors repositories.ActorRepository) *ActorResolver {
	return &ActorResolver{users: users, personas: personas, actors: actors}
}

// RealActor returns the user-backed actor of userID.
func (r *ActorResolver) RealActor(ctx context.Context, userID uint) (*models.Actor, error) {
	actor, err := r.actors.GetActorByUserID(ctx, userID)
	if err != nil {
		return nil, storeErr(err, apperr.NotFound("user"))
	}
	return actor, nil
}

// PersonaActor returns the persona-backed actor of userID, ErrNoPersona if
// the user never created one.
func (r *ActorResolver) PersonaActor(ctx context.Context, userID uint) (*models.Actor, error) {
	persona, err := r.personas.GetPersonaByUserID(ctx, userID)
	if err != nil {
		return nil, storeErr(err, apperr.ErrNoPersona)
	}
	actor, err := r.actors.GetActorByPersonaID(ctx, persona.ID)
	if err != nil {
		return nil, storeErr(err, apperr.ErrNoPersona)
	}
	return actor, nil
}

// Resolve picks the real or persona actor by caller intent.
func (r *ActorResolver) Resolve(ctx context.Context, userID uint, asPersona bool) (*models.Actor, error) {
	if asPersona {
		if _, err := r.RealActor(ctx, userID); err != nil {
			return nil, err
		}
		return r.PersonaActor(ctx, userID)
	}
	return r.RealActor(ctx, userID)
}

// ResolveOwned returns actorID when it belongs to userID. Unknown ids fail
// the same way as foreign ones so existence is not revealed.
func (r *ActorResolver) ResolveOwned(ctx context.Context, userID, actorID uint) (*models.Actor, error) {
	actor, err := r.actors.GetActorByID(ctx, actorID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperr.ErrActorNotOwned
	}
	if err != nil {
		return nil, storeErr(err, nil)
	}
	owner, err := r.OwnerUserID(ctx, actor)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.ErrActorNotOwned
	}
	if err != nil {
		return nil, err
	}
	if owner != userID {
		return nil, apperr.ErrActorNotOwned
	}
	return actor, nil
}

// OwnerUserID returns the user behind an actor, following the persona link
// when needed.
func (r *ActorResolver) OwnerUserID(ctx context.Context, actor *models.Actor) (uint, error) {
	if id, ok := actor.BackingUserID(); ok {
		return id, nil
	}
	personaID, ok := actor.BackingPersonaID()
	if !ok {
		return 0, apperr.NotFound("actor")
	}
	persona, err := r.personas.GetPersonaByID(ctx, personaID)
	if err != nil {
		return 0, storeErr(err, apperr.NotFound("actor"))
	}
	return persona.UserID, nil
}

// IsBanned reports whether the actor may not act. A persona is blocked when
// either it or its owner is banned.
func (r *ActorResolver) IsBanned(ctx context.Context, actor *models.Actor) (bool, error) {
	if personaID, ok := actor.BackingPersonaID(); ok {
		persona, err := r.personas.GetPersonaByID(ctx, personaID)
		if err != nil {
			return false, storeErr(err, apperr.NotFound("actor"))
		}
		if persona.IsBanned {
			return true, nil
		}
		return r.userBanned(ctx, persona.UserID)
	}
	userID, _ := actor.BackingUserID()
	return r.userBanned(ctx, userID)
}

func (r *ActorResolver) userBanned(ctx context.Context, userID uint) (bool, error) {
	user, err := r.users.GetUserByID(ctx, userID)
	if err != nil {
		return false, storeErr(err, apperr.NotFound("user"))
	}
	return user.IsBanned, nil
}
