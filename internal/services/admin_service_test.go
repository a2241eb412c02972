package services

import (
	"testing"

	"github.com/anonto42/campus-social/backend/internal/apperr"
	"github.com/anonto42/campus-social/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealAuthor(t *testing.T) {
	e := newTestEnv(t)
	u, realActor := e.user("alice")
	persona := e.persona(u.ID, "nightowl")
	id := e.post(persona, models.VisibilityFriends, "who wrote this").ID.Hex()

	got, err := e.svc.Admin.RealAuthor(e.ctx, id)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.User.ID)
	assert.Equal(t, realActor.ID, got.User.ActorID)
	assert.Equal(t, "nightowl", got.Author.Name)
	require.NotNil(t, got.Persona)
	require.NotNil(t, got.Author.RealUserID)
	assert.Equal(t, u.ID, *got.Author.RealUserID)

	_, err = e.svc.Admin.RealAuthor(e.ctx, "000000000000000000000000")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestTakeDown(t *testing.T) {
	e := newTestEnv(t)
	_, a := e.user("alice")
	_, admin := e.user("root")
	id := e.post(a, models.VisibilityFriends, "takedown").ID.Hex()

	require.NoError(t, e.svc.Admin.TakeDown(e.ctx, admin, id))
	err := e.svc.Admin.TakeDown(e.ctx, admin, id)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(e.svc.Admin.SetUserBanned(e.ctx, 999, true)))
}
