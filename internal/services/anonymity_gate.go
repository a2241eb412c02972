package services

import (
	"context"
	"errors"

	"github.com/anonto42/campus-social/backend/internal/apperr"
	"github.com/anonto42/campus-social/backend/internal/models"
	"github.com/anonto42/campus-social/backend/internal/repositories"
)

const DefaultAnonMinFriends = 10

// AnonymityGate decides whether a user may post through their persona.
// Eligibility is read from storage on every call.
type AnonymityGate struct {
	resolver    *ActorResolver
	friendships repositories.FriendshipRepository
	minFriends  int
}

func NewAnonymityGate(resolver *ActorResolver, friendships repositories.FriendshipRepository, minFriends int) *AnonymityGate {
	if minFriends <= 0 {
		minFriends = DefaultAnonMinFriends
	}
	return &AnonymityGate{resolver: resolver, friendships: friendships, minFriends: minFriends}
}

// Eligibility describes where a user stands against the gate.
type Eligibility struct {
	HasPersona  bool  `json:"has_persona"`
	FriendCount int64 `json:"friend_count"`
	Required    int   `json:"required"`
	Eligible    bool  `json:"eligible"`
}

func (g *AnonymityGate) MinFriends() int { return g.minFriends }

// Eligibility reports the persona and friend count requirements. The count
// is that of the user's real actor, never the persona's.
func (g *AnonymityGate) Eligibility(ctx context.Context, userID uint) (Eligibility, error) {
	realActor, err := g.resolver.RealActor(ctx, userID)
	if err != nil {
		return Eligibility{}, err
	}
	e := Eligibility{Required: g.minFriends}
	if _, err := g.resolver.PersonaActor(ctx, userID); err == nil {
		e.HasPersona = true
	} else if !errors.Is(err, apperr.ErrNoPersona) {
		return Eligibility{}, err
	}
	e.FriendCount, err = g.friendships.CountFriends(ctx, realActor.ID)
	if err != nil {
		return Eligibility{}, storeErr(err, nil)
	}
	e.Eligible = e.HasPersona && e.FriendCount >= int64(g.minFriends)
	return e, nil
}

func (g *AnonymityGate) CanPostAnonymously(ctx context.Context, userID uint) (bool, error) {
	e, err := g.Eligibility(ctx, userID)
	if err != nil {
		return false, err
	}
	return e.Eligible, nil
}

// AuthorizeAnonymousPost returns the persona actor to post as, or
// ErrNoPersona / ErrInsufficientFriends.
func (g *AnonymityGate) AuthorizeAnonymousPost(ctx context.Context, userID uint) (*models.Actor, error) {
	persona, err := g.resolver.PersonaActor(ctx, userID)
	if err != nil {
		return nil, err
	}
	realActor, err := g.resolver.RealActor(ctx, userID)
	if err != nil {
		return nil, err
	}
	count, err := g.friendships.CountFriends(ctx, realActor.ID)
	if err != nil {
		return nil, storeErr(err, nil)
	}
	if count < int64(g.minFriends) {
		return nil, apperr.ErrInsufficientFriends.WithMessage(
			"at least %d friends are required to post anonymously, you have %d", g.minFriends, count)
	}
	return persona, nil
}
