package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/anonto42/campus-social/backend/internal/apperr"
	"github.com/anonto42/campus-social/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendRequestValidation(t *testing.T) {
	e := newTestEnv(t)
	_, a := e.user("alice")

	_, err := e.svc.Friends.SendRequest(e.ctx, a, a.ID)
	assert.ErrorIs(t, err, apperr.ErrSelfFriend)

	_, err = e.svc.Friends.SendRequest(e.ctx, a, 777)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestDuplicateRequestEitherDirection(t *testing.T) {
	e := newTestEnv(t)
	_, a := e.user("alice")
	_, b := e.user("bob")

	_, err := e.svc.Friends.SendRequest(e.ctx, a, b.ID)
	require.NoError(t, err)

	_, err = e.svc.Friends.SendRequest(e.ctx, a, b.ID)
	assert.ErrorIs(t, err, apperr.ErrDuplicateRequest)

	_, err = e.svc.Friends.SendRequest(e.ctx, b, a.ID)
	assert.ErrorIs(t, err, apperr.ErrDuplicateRequest)
}

func TestAcceptCreatesSymmetricFriendship(t *testing.T) {
	e := newTestEnv(t)
	_, a := e.user("alice")
	_, b := e.user("bob")

	req, err := e.svc.Friends.SendRequest(e.ctx, a, b.ID)
	require.NoError(t, err)
	accepted, err := e.svc.Friends.Respond(e.ctx, req.ID, b, ActionAccept)
	require.NoError(t, err)
	assert.Equal(t, models.FriendRequestAccepted, accepted.Status)

	ab, err := e.svc.Friends.AreFriends(e.ctx, a.ID, b.ID)
	require.NoError(t, err)
	ba, err := e.svc.Friends.AreFriends(e.ctx, b.ID, a.ID)
	require.NoError(t, err)
	assert.True(t, ab)
	assert.True(t, ba)

	for _, actor := range []*models.Actor{a, b} {
		n, err := e.svc.Friends.FriendCount(e.ctx, actor.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)
	}

	_, err = e.svc.Friends.SendRequest(e.ctx, b, a.ID)
	assert.ErrorIs(t, err, apperr.ErrAlreadyFriends)

	// A settled request cannot be answered twice.
	_, err = e.svc.Friends.Respond(e.ctx, req.ID, b, ActionAccept)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestRespondOnlyByRecipient(t *testing.T) {
	e := newTestEnv(t)
	_, a := e.user("alice")
	_, b := e.user("bob")
	_, c := e.user("carol")

	req, err := e.svc.Friends.SendRequest(e.ctx, a, b.ID)
	require.NoError(t, err)

	_, err = e.svc.Friends.Respond(e.ctx, req.ID, a, ActionAccept)
	assert.ErrorIs(t, err, apperr.ErrNotAuthorized)

	_, err = e.svc.Friends.Respond(e.ctx, req.ID, c, ActionDecline)
	assert.ErrorIs(t, err, apperr.ErrNotAuthorized)

	_, err = e.svc.Friends.Respond(e.ctx, req.ID, b, "ignore")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = e.svc.Friends.Respond(e.ctx, 999, b, ActionAccept)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestResendAfterDecline(t *testing.T) {
	e := newTestEnv(t)
	_, a := e.user("alice")
	_, b := e.user("bob")

	req, err := e.svc.Friends.SendRequest(e.ctx, a, b.ID)
	require.NoError(t, err)
	declined, err := e.svc.Friends.Respond(e.ctx, req.ID, b, ActionDecline)
	require.NoError(t, err)
	assert.Equal(t, models.FriendRequestDeclined, declined.Status)

	friends, err := e.svc.Friends.AreFriends(e.ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, friends)

	again, err := e.svc.Friends.SendRequest(e.ctx, a, b.ID)
	require.NoError(t, err)
	assert.NotEqual(t, req.ID, again.ID)
}

func TestCancel(t *testing.T) {
	e := newTestEnv(t)
	_, a := e.user("alice")
	_, b := e.user("bob")

	req, err := e.svc.Friends.SendRequest(e.ctx, a, b.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, e.svc.Friends.Cancel(e.ctx, req.ID, b), apperr.ErrNotAuthorized)
	require.NoError(t, e.svc.Friends.Cancel(e.ctx, req.ID, a))

	_, err = e.svc.Friends.Respond(e.ctx, req.ID, b, ActionAccept)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = e.svc.Friends.SendRequest(e.ctx, b, a.ID)
	assert.NoError(t, err)
}

func TestRemoveFriendIsIdempotent(t *testing.T) {
	e := newTestEnv(t)
	_, a := e.user("alice")
	_, b := e.user("bob")
	e.befriend(a, b)

	require.NoError(t, e.svc.Friends.RemoveFriend(e.ctx, b, a.ID))
	require.NoError(t, e.svc.Friends.RemoveFriend(e.ctx, a, b.ID))

	friends, err := e.svc.Friends.AreFriends(e.ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, friends)

	assert.ErrorIs(t, e.svc.Friends.RemoveFriend(e.ctx, a, a.ID), apperr.ErrSelfFriend)
}

func TestPersonaGraphIsSeparate(t *testing.T) {
	e := newTestEnv(t)
	alice, aliceReal := e.user("alice")
	alicePersona := e.persona(alice.ID, "nightowl")
	_, b := e.user("bob")
	e.befriend(aliceReal, b)

	friends, err := e.svc.Friends.AreFriends(e.ctx, alicePersona.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, friends)

	_, err = e.svc.Friends.SendRequest(e.ctx, alicePersona, b.ID)
	assert.NoError(t, err)
}

func TestListFriendRequestsAndFriends(t *testing.T) {
	e := newTestEnv(t)
	_, a := e.user("alice")
	_, b := e.user("bob")
	_, c := e.user("carol")
	_, d := e.user("dave")

	_, err := e.svc.Friends.SendRequest(e.ctx, a, b.ID)
	require.NoError(t, err)
	_, err = e.svc.Friends.SendRequest(e.ctx, c, a.ID)
	require.NoError(t, err)
	e.befriend(a, d)

	requests, err := e.svc.Friends.ListFriendRequests(e.ctx, a)
	require.NoError(t, err)
	require.Len(t, requests, 2)
	directions := map[string]string{}
	for _, r := range requests {
		directions[r.Direction] = r.From.Name + "->" + r.To.Name
	}
	assert.Equal(t, "alice->bob", directions["sent"])
	assert.Equal(t, "carol->alice", directions["received"])

	friends, err := e.svc.Friends.ListFriends(e.ctx, a, AsViewer(a))
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, d.ID, friends[0].ActorID)
	assert.Equal(t, "dave", friends[0].Name)
}

func TestFriendRequestNotifies(t *testing.T) {
	e := newTestEnv(t)
	_, a := e.user("alice")
	_, b := e.user("bob")
	e.befriend(a, b)

	received, _, err := e.svc.Notifications.List(e.ctx, b, models.NewPagination(1, 10))
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, models.NotificationFriendRequest, received[0].Type)
	assert.Equal(t, "alice", received[0].Actor.Name)

	accepted, _, err := e.svc.Notifications.List(e.ctx, a, models.NewPagination(1, 10))
	require.NoError(t, err)
	require.Len(t, accepted, 1)
	assert.Equal(t, models.NotificationFriendAccept, accepted[0].Type)
}

type countingLocker struct{ keys []string }

func (l *countingLocker) Lock(_ context.Context, key string) (func(), error) {
	l.keys = append(l.keys, key)
	return func() {}, nil
}

func TestSendRequestLocksCanonicalPair(t *testing.T) {
	locker := &countingLocker{}
	e := newTestEnvWithConfig(t, Config{Locker: locker})
	_, a := e.user("alice")
	_, b := e.user("bob")

	_, err := e.svc.Friends.SendRequest(e.ctx, b, a.ID)
	require.NoError(t, err)
	_, _ = e.svc.Friends.SendRequest(e.ctx, a, b.ID)

	require.Len(t, locker.keys, 2)
	assert.Equal(t, locker.keys[0], locker.keys[1])
}

func TestOwnActorsCannotBefriendEachOther(t *testing.T) {
	e := newTestEnv(t)
	u, self := e.user("alice")
	p := e.persona(u.ID, "NightOwl")
	e.friends(self, DefaultAnonMinFriends-1)

	_, err := e.svc.Friends.SendRequest(e.ctx, self, p.ID)
	assert.ErrorIs(t, err, apperr.ErrSelfFriend)
	_, err = e.svc.Friends.SendRequest(e.ctx, p, self.ID)
	assert.ErrorIs(t, err, apperr.ErrSelfFriend)

	pending, err := e.svc.Friends.ListFriendRequests(e.ctx, p)
	require.NoError(t, err)
	assert.Empty(t, pending)

	n, err := e.svc.Friends.FriendCount(e.ctx, self.ID)
	require.NoError(t, err)
	assert.EqualValues(t, DefaultAnonMinFriends-1, n)
	_, err = e.svc.Gate.AuthorizeAnonymousPost(e.ctx, u.ID)
	assert.ErrorIs(t, err, apperr.ErrInsufficientFriends)
}

type unavailableLocker struct{}

func (unavailableLocker) Lock(context.Context, string) (func(), error) {
	return nil, errors.New("lock not acquired")
}

func TestSendRequestWithoutLockFallsBackToStorage(t *testing.T) {
	e := newTestEnvWithConfig(t, Config{Locker: unavailableLocker{}})
	_, a := e.user("alice")
	_, b := e.user("bob")

	_, err := e.svc.Friends.SendRequest(e.ctx, a, b.ID)
	require.NoError(t, err)
	_, err = e.svc.Friends.SendRequest(e.ctx, b, a.ID)
	assert.ErrorIs(t, err, apperr.ErrDuplicateRequest)
}

func TestConcurrentOppositeRequestsLeaveOnePending(t *testing.T) {
	e := newTestEnv(t)
	_, a := e.user("alice")
	_, b := e.user("bob")

	const n = 20
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		dups    int
	)
	send := func(from, to *models.Actor) {
		defer wg.Done()
		_, err := e.svc.Friends.SendRequest(e.ctx, from, to.ID)
		mu.Lock()
		defer mu.Unlock()
		switch {
		case err == nil:
			created++
		case errors.Is(err, apperr.ErrDuplicateRequest):
			dups++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	for i := 0; i < n; i++ {
		wg.Add(2)
		go send(a, b)
		go send(b, a)
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, 2*n-1, dups)
	pending, err := e.svc.Friends.ListFriendRequests(e.ctx, a)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}
