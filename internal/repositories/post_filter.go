package repositories

import (
	"slices"

	"github.com/anonto42/campus-social/backend/internal/models"
)

// PostFilter selects posts for feed queries. Visibility is part of the
// filter so it is applied before skip/limit, never after.
type PostFilter struct {
	// AuthorIDs restricts authors when non-nil. An empty non-nil slice
	// matches nothing.
	AuthorIDs []uint
	// PostIDs restricts posts when non-nil, same convention as AuthorIDs.
	PostIDs []string
	// CircleIDs are the actors whose friends-only posts the viewer may see:
	// the viewer itself and its direct friends. Public posts always pass.
	CircleIDs []uint
	// PublicOnly drops friends-only posts regardless of CircleIDs.
	PublicOnly bool
}

// Matches reports whether post satisfies the filter.
func (f PostFilter) Matches(post *models.Post) bool {
	if f.AuthorIDs != nil && !slices.Contains(f.AuthorIDs, post.AuthorActorID) {
		return false
	}
	if f.PostIDs != nil && !slices.Contains(f.PostIDs, post.ID.Hex()) {
		return false
	}
	if post.Visibility == models.VisibilityPublic {
		return true
	}
	if f.PublicOnly {
		return false
	}
	return slices.Contains(f.CircleIDs, post.AuthorActorID)
}
