package services

import (
	"testing"

	"github.com/anonto42/campus-social/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsVisible(t *testing.T) {
	e := newTestEnv(t)
	_, author := e.user("alice")
	_, friend := e.user("bob")
	_, stranger := e.user("carol")
	e.befriend(author, friend)

	public := e.post(author, models.VisibilityPublic, "hello campus")
	private := e.post(author, models.VisibilityFriends, "friends only")

	tests := []struct {
		name   string
		post   *models.Post
		viewer Viewer
		want   bool
	}{
		{"public to anonymous", public, Viewer{}, true},
		{"public to stranger", public, AsViewer(stranger), true},
		{"friends-only to author", private, AsViewer(author), true},
		{"friends-only to friend", private, AsViewer(friend), true},
		{"friends-only to stranger", private, AsViewer(stranger), false},
		{"friends-only to anonymous", private, Viewer{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.svc.Visibility.IsVisible(e.ctx, tt.post, tt.viewer)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPersonaAuthorViewHidesOwner(t *testing.T) {
	e := newTestEnv(t)
	u, _ := e.user("alice")
	persona := e.persona(u.ID, "nightowl")
	_, viewer := e.user("bob")

	view, err := e.svc.Visibility.ResolveAuthorView(e.ctx, persona.ID, AsViewer(viewer))
	require.NoError(t, err)
	assert.Equal(t, models.AuthorView{ActorID: persona.ID, Name: "nightowl", IsPersona: true}, view)

	adminView, err := e.svc.Visibility.ResolveAuthorView(e.ctx, persona.ID, Viewer{Actor: viewer, IsAdmin: true})
	require.NoError(t, err)
	require.NotNil(t, adminView.RealUserID)
	assert.Equal(t, u.ID, *adminView.RealUserID)
	assert.Equal(t, "nightowl", adminView.Name)
}

func TestUserAuthorView(t *testing.T) {
	e := newTestEnv(t)
	u, actor := e.user("alice")
	u.ProfileImage = "https://img.campus.test/alice.png"
	require.NoError(t, e.store.UpdateUser(e.ctx, u))

	view, err := e.svc.Visibility.ResolveAuthorView(e.ctx, actor.ID, Viewer{})
	require.NoError(t, err)
	assert.Equal(t, "alice", view.Name)
	assert.Equal(t, u.ProfileImage, view.Avatar)
	assert.False(t, view.IsPersona)
	assert.Nil(t, view.RealUserID)
}

func TestCircle(t *testing.T) {
	e := newTestEnv(t)
	_, a := e.user("alice")
	_, b := e.user("bob")
	e.befriend(a, b)

	circle, err := e.svc.Visibility.Circle(e.ctx, AsViewer(a))
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{a.ID, b.ID}, circle)

	circle, err = e.svc.Visibility.Circle(e.ctx, Viewer{})
	require.NoError(t, err)
	assert.Empty(t, circle)
}
