package services

import (
	"context"

	"github.com/anonto42/campus-social/backend/internal/models"
	"github.com/anonto42/campus-social/backend/internal/repositories"
)

const deletedAuthorName = "[deleted]"

// AuthorDirectory renders actors as AuthorViews. It is the single place
// where a persona's link to its owner may be exposed, and only to admins.
type AuthorDirectory struct {
	actors repositories.ActorRepository
}

func NewAuthorDirectory(actors repositories.ActorRepository) *AuthorDirectory {
	return &AuthorDirectory{actors: actors}
}

// View renders a single actor.
func (d *AuthorDirectory) View(ctx context.Context, actorID uint, viewer Viewer) (models.AuthorView, error) {
	views, err := d.Views(ctx, []uint{actorID}, viewer)
	if err != nil {
		return models.AuthorView{}, err
	}
	return views[actorID], nil
}

// Views renders every id in one batch. Unknown actors render as deleted.
func (d *AuthorDirectory) Views(ctx context.Context, ids []uint, viewer Viewer) (map[uint]models.AuthorView, error) {
	identities, err := d.actors.GetIdentities(ctx, uniqueIDs(ids))
	if err != nil {
		return nil, storeErr(err, nil)
	}
	views := make(map[uint]models.AuthorView, len(ids))
	for _, id := range ids {
		identity, ok := identities[id]
		if !ok {
			views[id] = models.AuthorView{ActorID: id, Name: deletedAuthorName}
			continue
		}
		views[id] = renderAuthor(identity, viewer)
	}
	return views, nil
}

// List renders ids preserving their order.
func (d *AuthorDirectory) List(ctx context.Context, ids []uint, viewer Viewer) ([]models.AuthorView, error) {
	views, err := d.Views(ctx, ids, viewer)
	if err != nil {
		return nil, err
	}
	out := make([]models.AuthorView, 0, len(ids))
	for _, id := range ids {
		out = append(out, views[id])
	}
	return out, nil
}

func renderAuthor(identity models.ActorIdentity, viewer Viewer) models.AuthorView {
	view := models.AuthorView{ActorID: identity.Actor.ID}
	switch {
	case identity.Persona != nil:
		view.IsPersona = true
		view.Name = identity.Persona.DisplayName
		view.Avatar = identity.Persona.Avatar
		if viewer.IsAdmin {
			owner := identity.Persona.UserID
			view.RealUserID = &owner
		}
	case identity.User != nil:
		view.Name = identity.User.Name
		view.Avatar = identity.User.ProfileImage
	default:
		view.Name = deletedAuthorName
		view.IsPersona = identity.Actor.IsPersona()
	}
	return view
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
