package services

import (
	"context"
	"errors"

	"github.com/anonto42/campus-social/backend/internal/apperr"
	"github.com/anonto42/campus-social/backend/internal/models"
	"github.com/anonto42/campus-social/backend/internal/repositories"
)

// EngagementLedger records likes, reposts and saves. Each (actor, post)
// pair appears at most once per kind; counts are always read live.
type EngagementLedger struct {
	engagements repositories.EngagementRepository
	posts       repositories.PostRepository
	actors      repositories.ActorRepository
	visibility  *VisibilityEngine
	feed        *FeedAssembler
	notifier    *NotificationService
}

func NewEngagementLedger(repos repositories.Set, visibility *VisibilityEngine, feed *FeedAssembler, notifier *NotificationService) *EngagementLedger {
	return &EngagementLedger{
		engagements: repos.Engagements,
		posts:       repos.Posts,
		actors:      repos.Actors,
		visibility:  visibility,
		feed:        feed,
		notifier:    notifier,
	}
}

func checkKind(kind models.EngagementKind) error {
	if !kind.Valid() {
		return apperr.Validation("unknown engagement kind")
	}
	return nil
}

// visiblePost loads a post the viewer may see, NotFound otherwise.
func (l *EngagementLedger) visiblePost(ctx context.Context, postID string, viewer Viewer) (*models.Post, error) {
	post, err := l.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, storeErr(err, apperr.NotFound("post"))
	}
	ok, err := l.visibility.IsVisible(ctx, post, viewer)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.NotFound("post")
	}
	return post, nil
}

// Engage adds the pair. A second call for the same pair fails with
// ErrAlreadyEngaged.
func (l *EngagementLedger) Engage(ctx context.Context, kind models.EngagementKind, actor *models.Actor, postID string) error {
	if err := checkKind(kind); err != nil {
		return err
	}
	if _, err := l.actors.GetActorByID(ctx, actor.ID); err != nil {
		return storeErr(err, apperr.NotFound("actor"))
	}
	post, err := l.visiblePost(ctx, postID, AsViewer(actor))
	if err != nil {
		return err
	}
	if err := l.engagements.CreateEngagement(ctx, kind, actor.ID, postID); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return apperr.ErrAlreadyEngaged.WithMessage("post already %s", pastTense(kind))
		}
		return storeErr(err, nil)
	}

	switch kind {
	case models.EngagementLike:
		l.notifier.Notify(ctx, models.NotificationLike, actor.ID, post.AuthorActorID, postID, "post", "liked your post")
	case models.EngagementRepost:
		l.notifier.Notify(ctx, models.NotificationRepost, actor.ID, post.AuthorActorID, postID, "post", "reposted your post")
	}
	return nil
}

// Disengage removes the pair. Removing an absent pair succeeds.
func (l *EngagementLedger) Disengage(ctx context.Context, kind models.EngagementKind, actor *models.Actor, postID string) error {
	if err := checkKind(kind); err != nil {
		return err
	}
	return storeErr(l.engagements.DeleteEngagement(ctx, kind, actor.ID, postID), nil)
}

func (l *EngagementLedger) HasEngaged(ctx context.Context, kind models.EngagementKind, actorID uint, postID string) (bool, error) {
	if err := checkKind(kind); err != nil {
		return false, err
	}
	ok, err := l.engagements.HasEngagement(ctx, kind, actorID, postID)
	return ok, storeErr(err, nil)
}

func (l *EngagementLedger) CountFor(ctx context.Context, kind models.EngagementKind, postID string) (int64, error) {
	if err := checkKind(kind); err != nil {
		return 0, err
	}
	n, err := l.engagements.CountEngagements(ctx, kind, postID)
	return n, storeErr(err, nil)
}

// ListEngagers lists who engaged with a post, newest first. Saves are
// private to the post's author actor.
func (l *EngagementLedger) ListEngagers(ctx context.Context, kind models.EngagementKind, viewer Viewer, postID string) ([]models.AuthorView, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	post, err := l.visiblePost(ctx, postID, viewer)
	if err != nil {
		return nil, err
	}
	if kind == models.EngagementSave && (viewer.Actor == nil || viewer.Actor.ID != post.AuthorActorID) {
		return nil, apperr.ErrForbidden.WithMessage("only the author can see who saved this post")
	}
	ids, err := l.engagements.ListEngagedActorIDs(ctx, kind, postID)
	if err != nil {
		return nil, storeErr(err, nil)
	}
	return l.visibility.authors.List(ctx, ids, viewer)
}

// State summarizes a post's engagement for the viewer.
func (l *EngagementLedger) State(ctx context.Context, viewer Viewer, postID string) (*models.EngagementState, error) {
	if _, err := l.visiblePost(ctx, postID, viewer); err != nil {
		return nil, err
	}
	state := &models.EngagementState{PostID: postID}
	var err error
	if state.LikesCount, err = l.CountFor(ctx, models.EngagementLike, postID); err != nil {
		return nil, err
	}
	if state.RepostsCount, err = l.CountFor(ctx, models.EngagementRepost, postID); err != nil {
		return nil, err
	}
	if viewer.Actor == nil {
		return state, nil
	}
	id := viewer.Actor.ID
	if state.IsLiked, err = l.HasEngaged(ctx, models.EngagementLike, id, postID); err != nil {
		return nil, err
	}
	if state.IsReposted, err = l.HasEngaged(ctx, models.EngagementRepost, id, postID); err != nil {
		return nil, err
	}
	if state.IsSaved, err = l.HasEngaged(ctx, models.EngagementSave, id, postID); err != nil {
		return nil, err
	}
	return state, nil
}

// SavedPosts pages through the actor's own bookmarks.
func (l *EngagementLedger) SavedPosts(ctx context.Context, actor *models.Actor, p models.Pagination) (*models.FeedPage, error) {
	return l.feed.SavedFeed(ctx, actor, p)
}

func pastTense(kind models.EngagementKind) string {
	switch kind {
	case models.EngagementLike:
		return "liked"
	case models.EngagementRepost:
		return "reposted"
	default:
		return "saved"
	}
}
