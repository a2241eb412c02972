package services

import (
	"testing"

	"github.com/anonto42/campus-social/backend/internal/apperr"
	"github.com/anonto42/campus-social/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentLifecycle(t *testing.T) {
	e := newTestEnv(t)
	_, author := e.user("alice")
	u, b := e.user("bob")
	persona := e.persona(u.ID, "nightowl")
	_, stranger := e.user("carol")
	id := e.post(author, models.VisibilityPublic, "discuss").ID.Hex()

	first, err := e.svc.Comments.Create(e.ctx, b, id, "real me")
	require.NoError(t, err)
	second, err := e.svc.Comments.Create(e.ctx, persona, id, "masked me")
	require.NoError(t, err)

	list, err := e.svc.Comments.List(e.ctx, id, Viewer{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "bob", list[0].Author.Name)
	assert.Equal(t, "nightowl", list[1].Author.Name)
	assert.Nil(t, list[1].Author.RealUserID)

	_, err = e.svc.Comments.Update(e.ctx, persona, first.ID, "edited by mask")
	assert.ErrorIs(t, err, apperr.ErrNotAuthorized)
	edited, err := e.svc.Comments.Update(e.ctx, b, first.ID, "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", edited.Content)

	assert.ErrorIs(t, e.svc.Comments.Delete(e.ctx, AsViewer(stranger), second.ID), apperr.ErrNotAuthorized)
	require.NoError(t, e.svc.Comments.Delete(e.ctx, AsViewer(author), second.ID))
	require.NoError(t, e.svc.Comments.Delete(e.ctx, AsViewer(b), first.ID))

	list, err = e.svc.Comments.List(e.ctx, id, Viewer{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCommentOnHiddenPost(t *testing.T) {
	e := newTestEnv(t)
	_, author := e.user("alice")
	_, stranger := e.user("bob")
	id := e.post(author, models.VisibilityFriends, "private").ID.Hex()

	_, err := e.svc.Comments.Create(e.ctx, stranger, id, "let me in")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = e.svc.Comments.List(e.ctx, id, AsViewer(stranger))
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
