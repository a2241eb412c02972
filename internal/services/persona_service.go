package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/anonto42/campus-social/backend/internal/apperr"
	"github.com/anonto42/campus-social/backend/internal/models"
	"github.com/anonto42/campus-social/backend/internal/repositories"
)

const (
	DefaultPersonaMaxChanges   = 3
	DefaultPersonaChangeWindow = 30 * 24 * time.Hour
)

// PersonaService manages a user's single persona. Creation and edits share
// one budget of changes per window, counted from the most recent change.
type PersonaService struct {
	personas   repositories.PersonaRepository
	resolver   *ActorResolver
	gate       *AnonymityGate
	maxChanges int
	window     time.Duration
	now        func() time.Time
}

func NewPersonaService(personas repositories.PersonaRepository, resolver *ActorResolver, gate *AnonymityGate, maxChanges int, window time.Duration, now func() time.Time) *PersonaService {
	if maxChanges <= 0 {
		maxChanges = DefaultPersonaMaxChanges
	}
	if window <= 0 {
		window = DefaultPersonaChangeWindow
	}
	if now == nil {
		now = time.Now
	}
	return &PersonaService{personas: personas, resolver: resolver, gate: gate, maxChanges: maxChanges, window: window, now: now}
}

// Create gives the user a persona. A user holds at most one and display
// names are unique.
func (s *PersonaService) Create(ctx context.Context, userID uint, req models.CreatePersonaRequest) (*models.PersonaProfile, error) {
	if _, err := s.resolver.RealActor(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := s.personas.GetPersonaByUserID(ctx, userID); err == nil {
		return nil, apperr.ErrAlreadyExists.WithMessage("user already has a persona")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, storeErr(err, nil)
	}

	now := s.now()
	persona := &models.Persona{
		UserID:        userID,
		DisplayName:   strings.TrimSpace(req.DisplayName),
		Avatar:        req.Avatar,
		ChangeCount:   1,
		LastChangedAt: &now,
	}
	if persona.DisplayName == "" {
		return nil, apperr.Validation("display name is required")
	}
	actor, err := s.personas.CreatePersona(ctx, persona)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperr.ErrAlreadyExists.WithMessage("display name is taken")
		}
		return nil, storeErr(err, nil)
	}
	return s.profile(persona, actor.ID), nil
}

// Update changes the display name or avatar, subject to the change budget.
func (s *PersonaService) Update(ctx context.Context, userID uint, req models.UpdatePersonaRequest) (*models.PersonaProfile, error) {
	persona, err := s.personas.GetPersonaByUserID(ctx, userID)
	if err != nil {
		return nil, storeErr(err, apperr.ErrNoPersona)
	}
	now := s.now()
	if s.remaining(persona, now) <= 0 {
		return nil, apperr.ErrRateLimited.WithMessage(
			"persona can be changed at most %d times per %s", s.maxChanges, s.window)
	}
	if s.windowElapsed(persona, now) {
		persona.ChangeCount = 0
	}

	if name := strings.TrimSpace(req.DisplayName); name != "" {
		persona.DisplayName = name
	}
	if req.Avatar != "" {
		persona.Avatar = req.Avatar
	}
	persona.ChangeCount++
	persona.LastChangedAt = &now

	if err := s.personas.UpdatePersona(ctx, persona); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperr.ErrAlreadyExists.WithMessage("display name is taken")
		}
		return nil, storeErr(err, apperr.ErrNoPersona)
	}
	actor, err := s.resolver.PersonaActor(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.profile(persona, actor.ID), nil
}

// Get returns the caller's own persona.
func (s *PersonaService) Get(ctx context.Context, userID uint) (*models.PersonaProfile, error) {
	persona, err := s.personas.GetPersonaByUserID(ctx, userID)
	if err != nil {
		return nil, storeErr(err, apperr.ErrNoPersona)
	}
	actor, err := s.resolver.PersonaActor(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.profile(persona, actor.ID), nil
}

// Eligibility reports whether the user may currently post anonymously.
func (s *PersonaService) Eligibility(ctx context.Context, userID uint) (Eligibility, error) {
	return s.gate.Eligibility(ctx, userID)
}

func (s *PersonaService) windowElapsed(p *models.Persona, now time.Time) bool {
	return p.LastChangedAt == nil || now.Sub(*p.LastChangedAt) >= s.window
}

func (s *PersonaService) remaining(p *models.Persona, now time.Time) int {
	if s.windowElapsed(p, now) {
		return s.maxChanges
	}
	return max(s.maxChanges-p.ChangeCount, 0)
}

func (s *PersonaService) profile(p *models.Persona, actorID uint) *models.PersonaProfile {
	return &models.PersonaProfile{Persona: *p, ActorID: actorID, ChangesRemaining: s.remaining(p, s.now())}
}
