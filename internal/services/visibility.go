package services

import (
	"context"

	"github.com/anonto42/campus-social/backend/internal/models"
	"github.com/anonto42/campus-social/backend/internal/repositories"
)

// VisibilityEngine answers who may see a post and how its author appears.
type VisibilityEngine struct {
	friendships repositories.FriendshipRepository
	authors     *AuthorDirectory
}

func NewVisibilityEngine(friendships repositories.FriendshipRepository, authors *AuthorDirectory) *VisibilityEngine {
	return &VisibilityEngine{friendships: friendships, authors: authors}
}

// IsVisible: public posts are visible to everyone, friends-only posts to the
// author actor and its direct friends.
func (v *VisibilityEngine) IsVisible(ctx context.Context, post *models.Post, viewer Viewer) (bool, error) {
	if post.Visibility == models.VisibilityPublic {
		return true, nil
	}
	if viewer.Actor == nil {
		return false, nil
	}
	if viewer.Actor.ID == post.AuthorActorID {
		return true, nil
	}
	ok, err := v.friendships.AreFriends(ctx, viewer.Actor.ID, post.AuthorActorID)
	return ok, storeErr(err, nil)
}

// Circle returns the authors whose friends-only posts the viewer may see.
func (v *VisibilityEngine) Circle(ctx context.Context, viewer Viewer) ([]uint, error) {
	if viewer.Actor == nil {
		return nil, nil
	}
	friends, err := v.friendships.GetFriendIDs(ctx, viewer.Actor.ID)
	if err != nil {
		return nil, storeErr(err, nil)
	}
	return append([]uint{viewer.Actor.ID}, friends...), nil
}

// Filter builds a store filter applying the viewer's visibility.
func (v *VisibilityEngine) Filter(ctx context.Context, viewer Viewer) (repositories.PostFilter, error) {
	circle, err := v.Circle(ctx, viewer)
	if err != nil {
		return repositories.PostFilter{}, err
	}
	return repositories.PostFilter{CircleIDs: circle, PublicOnly: viewer.Actor == nil}, nil
}

func (v *VisibilityEngine) ResolveAuthorView(ctx context.Context, actorID uint, viewer Viewer) (models.AuthorView, error) {
	return v.authors.View(ctx, actorID, viewer)
}

func (v *VisibilityEngine) ResolveAuthorViews(ctx context.Context, actorIDs []uint, viewer Viewer) (map[uint]models.AuthorView, error) {
	return v.authors.Views(ctx, actorIDs, viewer)
}
