// Package services holds the identity, friend graph, visibility and
// engagement rules. Handlers call into it; it talks to storage only
// through the repository interfaces.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/anonto42/campus-social/backend/internal/apperr"
	"github.com/anonto42/campus-social/backend/internal/models"
	"github.com/anonto42/campus-social/backend/internal/repositories"
)

// Viewer is whoever is looking at content. A nil Actor is an anonymous
// visitor.
type Viewer struct {
	Actor   *models.Actor
	IsAdmin bool
}

// ActorID returns the viewing actor's id, or 0 for anonymous visitors.
func (v Viewer) ActorID() uint {
	if v.Actor == nil {
		return 0
	}
	return v.Actor.ID
}

// AsViewer wraps an acting actor as a non-admin viewer.
func AsViewer(actor *models.Actor) Viewer {
	return Viewer{Actor: actor}
}

// PairLocker serializes work on an unordered actor pair across instances.
type PairLocker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

type nopLocker struct{}

func (nopLocker) Lock(context.Context, string) (func(), error) { return func() {}, nil }

// Config tunes the services. Zero thresholds fall back to the package
// defaults; pkg/config refuses zero so an operator cannot set one.
type Config struct {
	AnonMinFriends      int
	PersonaMaxChanges   int
	PersonaChangeWindow time.Duration
	// Locker is optional; without it friend requests rely on storage
	// constraints alone.
	Locker PairLocker
	// Now defaults to time.Now.
	Now func() time.Time
}

// Services is the assembled service graph.
type Services struct {
	Resolver      *ActorResolver
	Authors       *AuthorDirectory
	Visibility    *VisibilityEngine
	Notifications *NotificationService
	Friends       *FriendGraph
	Gate          *AnonymityGate
	Personas      *PersonaService
	Feed          *FeedAssembler
	Posts         *PostService
	Ledger        *EngagementLedger
	Comments      *CommentService
	Admin         *AdminService
}

func New(repos repositories.Set, cfg Config) *Services {
	if cfg.Locker == nil {
		cfg.Locker = nopLocker{}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	s := &Services{}
	s.Resolver = NewActorResolver(repos.Users, repos.Personas, repos.Actors)
	s.Authors = NewAuthorDirectory(repos.Actors)
	s.Visibility = NewVisibilityEngine(repos.Friendships, s.Authors)
	s.Notifications = NewNotificationService(repos.Notifications, s.Authors)
	s.Friends = NewFriendGraph(s.Resolver, repos.Friendships, repos.Actors, s.Authors, s.Notifications, cfg.Locker)
	s.Gate = NewAnonymityGate(s.Resolver, repos.Friendships, cfg.AnonMinFriends)
	s.Personas = NewPersonaService(repos.Personas, s.Resolver, s.Gate, cfg.PersonaMaxChanges, cfg.PersonaChangeWindow, cfg.Now)
	s.Feed = NewFeedAssembler(repos, s.Visibility)
	s.Posts = NewPostService(repos, s.Resolver, s.Gate, s.Visibility)
	s.Ledger = NewEngagementLedger(repos, s.Visibility, s.Feed, s.Notifications)
	s.Comments = NewCommentService(repos, s.Visibility, s.Notifications)
	s.Admin = NewAdminService(repos, s.Posts)
	return s
}

// storeErr converts a repository error. ErrNotFound becomes notFound and
// anything unexpected becomes an internal error.
func storeErr(err error, notFound *apperr.Error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrNotFound) && notFound != nil:
		return notFound
	}
	if _, ok := apperr.As(err); ok {
		return err
	}
	return apperr.Internal(err)
}
