package services

import (
	"testing"

	"github.com/anonto42/campus-social/backend/internal/apperr"
	"github.com/anonto42/campus-social/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	e := newTestEnv(t)
	u, realActor := e.user("alice")

	got, err := e.svc.Resolver.Resolve(e.ctx, u.ID, false)
	require.NoError(t, err)
	assert.Equal(t, realActor.ID, got.ID)
	assert.Equal(t, models.ActorKindUser, got.Kind)

	_, err = e.svc.Resolver.Resolve(e.ctx, u.ID, true)
	assert.ErrorIs(t, err, apperr.ErrNoPersona)

	persona := e.persona(u.ID, "nightowl")
	got, err = e.svc.Resolver.Resolve(e.ctx, u.ID, true)
	require.NoError(t, err)
	assert.Equal(t, persona.ID, got.ID)
	assert.True(t, got.IsPersona())
	assert.Nil(t, got.UserID, "persona actor must not carry the owner")

	_, err = e.svc.Resolver.Resolve(e.ctx, 9999, false)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestResolveOwned(t *testing.T) {
	e := newTestEnv(t)
	alice, aliceReal := e.user("alice")
	alicePersona := e.persona(alice.ID, "nightowl")
	_, bobReal := e.user("bob")

	tests := []struct {
		name    string
		actorID uint
		wantErr error
	}{
		{"own real actor", aliceReal.ID, nil},
		{"own persona actor", alicePersona.ID, nil},
		{"someone else's actor", bobReal.ID, apperr.ErrActorNotOwned},
		{"unknown actor", 4242, apperr.ErrActorNotOwned},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.svc.Resolver.ResolveOwned(e.ctx, alice.ID, tt.actorID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.actorID, got.ID)
		})
	}
}

func TestIsBanned(t *testing.T) {
	e := newTestEnv(t)
	alice, aliceReal := e.user("alice")
	persona := e.persona(alice.ID, "nightowl")

	banned, err := e.svc.Resolver.IsBanned(e.ctx, persona)
	require.NoError(t, err)
	assert.False(t, banned)

	personaID, _ := persona.BackingPersonaID()
	require.NoError(t, e.svc.Admin.SetPersonaBanned(e.ctx, personaID, true))
	banned, err = e.svc.Resolver.IsBanned(e.ctx, persona)
	require.NoError(t, err)
	assert.True(t, banned)

	banned, err = e.svc.Resolver.IsBanned(e.ctx, aliceReal)
	require.NoError(t, err)
	assert.False(t, banned, "persona ban does not ban the owner")

	require.NoError(t, e.svc.Admin.SetPersonaBanned(e.ctx, personaID, false))
	require.NoError(t, e.svc.Admin.SetUserBanned(e.ctx, alice.ID, true))
	banned, err = e.svc.Resolver.IsBanned(e.ctx, persona)
	require.NoError(t, err)
	assert.True(t, banned, "owner ban carries over to the persona")
}
