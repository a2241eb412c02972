package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/anonto42/campus-social/backend/internal/models"
	"github.com/anonto42/campus-social/backend/internal/repositories/memory"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	t     *testing.T
	ctx   context.Context
	store *memory.Store
	svc   *Services

	mu    sync.Mutex
	clock time.Time
	seq   int
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithConfig(t, Config{})
}

func newTestEnvWithConfig(t *testing.T, cfg Config) *testEnv {
	t.Helper()
	e := &testEnv{
		t:     t,
		ctx:   context.Background(),
		store: memory.NewStore(),
		clock: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC),
	}
	// Every stored record gets a distinct, increasing timestamp.
	e.store.Now = e.tick
	if cfg.Now == nil {
		cfg.Now = e.now
	}
	e.svc = New(e.store.Set(), cfg)
	return e
}

func (e *testEnv) tick() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.clock = e.clock.Add(time.Second)
	return e.clock
}

func (e *testEnv) now() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clock
}

func (e *testEnv) advance(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.clock = e.clock.Add(d)
}

// user creates a user and returns its real actor.
func (e *testEnv) user(name string) (*models.User, *models.Actor) {
	e.t.Helper()
	u := &models.User{Name: name, Email: fmt.Sprintf("%s@campus.test", name)}
	actor, err := e.store.CreateUser(e.ctx, u)
	require.NoError(e.t, err)
	return u, actor
}

// persona gives the user a persona and returns its actor.
func (e *testEnv) persona(userID uint, displayName string) *models.Actor {
	e.t.Helper()
	_, err := e.svc.Personas.Create(e.ctx, userID, models.CreatePersonaRequest{DisplayName: displayName})
	require.NoError(e.t, err)
	actor, err := e.svc.Resolver.PersonaActor(e.ctx, userID)
	require.NoError(e.t, err)
	return actor
}

func (e *testEnv) befriend(a, b *models.Actor) {
	e.t.Helper()
	req, err := e.svc.Friends.SendRequest(e.ctx, a, b.ID)
	require.NoError(e.t, err)
	_, err = e.svc.Friends.Respond(e.ctx, req.ID, b, ActionAccept)
	require.NoError(e.t, err)
}

// friends gives actor n fresh friends.
func (e *testEnv) friends(actor *models.Actor, n int) {
	e.t.Helper()
	for i := 0; i < n; i++ {
		e.seq++
		_, other := e.user(fmt.Sprintf("friend%d", e.seq))
		e.befriend(actor, other)
	}
}

// post stores a post directly, bypassing the anonymity gate.
func (e *testEnv) post(author *models.Actor, visibility models.Visibility, content string) *models.Post {
	e.t.Helper()
	p := &models.Post{AuthorActorID: author.ID, Content: content, Visibility: visibility}
	require.NoError(e.t, e.store.CreatePost(e.ctx, p))
	return p
}
