package services

import (
	"context"
	"errors"
	"log"
	"strconv"

	"github.com/anonto42/campus-social/backend/internal/apperr"
	"github.com/anonto42/campus-social/backend/internal/models"
	"github.com/anonto42/campus-social/backend/internal/repositories"
)

const (
	ActionAccept  = "accept"
	ActionDecline = "decline"
)

// FriendGraph manages requests and the undirected friendship edges between
// actors. Real and persona actors of one user have separate graphs.
type FriendGraph struct {
	resolver    *ActorResolver
	friendships repositories.FriendshipRepository
	actors      repositories.ActorRepository
	authors     *AuthorDirectory
	notifier    *NotificationService
	locker      PairLocker
}

func NewFriendGraph(resolver *ActorResolver, friendships repositories.FriendshipRepository, actors repositories.ActorRepository, authors *AuthorDirectory, notifier *NotificationService, locker PairLocker) *FriendGraph {
	if locker == nil {
		locker = nopLocker{}
	}
	return &FriendGraph{resolver: resolver, friendships: friendships, actors: actors, authors: authors, notifier: notifier, locker: locker}
}

func pairLockKey(a, b uint) string {
	return "lock:friend_request:" + models.PairKey(a, b)
}

// SendRequest creates a pending request from one actor to another. Two
// actors of the same user never befriend each other; that case fails like
// a request to oneself so the persona link stays hidden.
func (g *FriendGraph) SendRequest(ctx context.Context, from *models.Actor, toActorID uint) (*models.FriendRequest, error) {
	if from.ID == toActorID {
		return nil, apperr.ErrSelfFriend
	}
	to, err := g.actors.GetActorByID(ctx, toActorID)
	if err != nil {
		return nil, storeErr(err, apperr.NotFound("actor"))
	}
	same, err := g.sameOwner(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if same {
		return nil, apperr.ErrSelfFriend
	}

	// The lock only narrows races; the pending_key index decides.
	unlock, err := g.locker.Lock(ctx, pairLockKey(from.ID, toActorID))
	if err != nil {
		log.Printf("Friend request pair lock unavailable, relying on storage constraint: %v", err)
		unlock = func() {}
	}
	defer unlock()

	friends, err := g.friendships.AreFriends(ctx, from.ID, toActorID)
	if err != nil {
		return nil, storeErr(err, nil)
	}
	if friends {
		return nil, apperr.ErrAlreadyFriends
	}
	if _, err := g.friendships.GetPendingFriendRequestBetween(ctx, from.ID, toActorID); err == nil {
		return nil, apperr.ErrDuplicateRequest
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, storeErr(err, nil)
	}

	req := &models.FriendRequest{FromActorID: from.ID, ToActorID: toActorID}
	if err := g.friendships.CreateFriendRequest(ctx, req); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperr.ErrDuplicateRequest
		}
		return nil, storeErr(err, nil)
	}

	g.notifier.Notify(ctx, models.NotificationFriendRequest, from.ID, toActorID,
		strconv.FormatUint(uint64(req.ID), 10), "friend_request", "sent you a friend request")
	return req, nil
}

func (g *FriendGraph) sameOwner(ctx context.Context, a, b *models.Actor) (bool, error) {
	ownerA, err := g.resolver.OwnerUserID(ctx, a)
	if err != nil {
		return false, err
	}
	ownerB, err := g.resolver.OwnerUserID(ctx, b)
	if err != nil {
		return false, err
	}
	return ownerA == ownerB, nil
}

// pending loads a request that is still pending.
func (g *FriendGraph) pending(ctx context.Context, requestID uint) (*models.FriendRequest, error) {
	req, err := g.friendships.GetFriendRequestByID(ctx, requestID)
	if err != nil {
		return nil, storeErr(err, apperr.NotFound("friend request"))
	}
	if req.Status != models.FriendRequestPending {
		return nil, apperr.NotFound("friend request")
	}
	return req, nil
}

// Respond accepts or declines a pending request. Only the recipient may
// respond; the sender withdraws with Cancel.
func (g *FriendGraph) Respond(ctx context.Context, requestID uint, actor *models.Actor, action string) (*models.FriendRequest, error) {
	req, err := g.pending(ctx, requestID)
	if err != nil {
		return nil, err
	}
	switch {
	case req.ToActorID == actor.ID:
	case req.FromActorID == actor.ID:
		return nil, apperr.ErrNotAuthorized.WithMessage("only the recipient can respond to a friend request")
	default:
		return nil, apperr.ErrNotAuthorized
	}

	switch action {
	case ActionAccept:
		accepted, err := g.friendships.AcceptFriendRequest(ctx, req.ID)
		if err != nil {
			return nil, storeErr(err, apperr.NotFound("friend request"))
		}
		g.notifier.Notify(ctx, models.NotificationFriendAccept, actor.ID, req.FromActorID,
			strconv.FormatUint(uint64(req.ID), 10), "friend_request", "accepted your friend request")
		return accepted, nil
	case ActionDecline:
		if err := g.friendships.CloseFriendRequest(ctx, req.ID, models.FriendRequestDeclined); err != nil {
			return nil, storeErr(err, apperr.NotFound("friend request"))
		}
		req.Status = models.FriendRequestDeclined
		req.PendingKey = nil
		return req, nil
	default:
		return nil, apperr.Validation("action must be accept or decline")
	}
}

// Cancel withdraws a pending request. Only its sender may cancel.
func (g *FriendGraph) Cancel(ctx context.Context, requestID uint, actor *models.Actor) error {
	req, err := g.pending(ctx, requestID)
	if err != nil {
		return err
	}
	if req.FromActorID != actor.ID {
		return apperr.ErrNotAuthorized
	}
	return storeErr(g.friendships.CloseFriendRequest(ctx, req.ID, models.FriendRequestCancelled), apperr.NotFound("friend request"))
}

// RemoveFriend deletes the edge between actor and other. Removing a
// friendship that does not exist succeeds.
func (g *FriendGraph) RemoveFriend(ctx context.Context, actor *models.Actor, otherActorID uint) error {
	if actor.ID == otherActorID {
		return apperr.ErrSelfFriend.WithMessage("cannot unfriend yourself")
	}
	return storeErr(g.friendships.DeleteFriendship(ctx, actor.ID, otherActorID), nil)
}

// ListFriends renders the actor's friends for the given viewer.
func (g *FriendGraph) ListFriends(ctx context.Context, actor *models.Actor, viewer Viewer) ([]models.AuthorView, error) {
	ids, err := g.FriendIDs(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return g.authors.List(ctx, ids, viewer)
}

// ListFriendRequests returns pending requests the actor sent or received.
func (g *FriendGraph) ListFriendRequests(ctx context.Context, actor *models.Actor) ([]models.FriendRequestView, error) {
	requests, err := g.friendships.GetPendingFriendRequests(ctx, actor.ID)
	if err != nil {
		return nil, storeErr(err, nil)
	}
	ids := make([]uint, 0, 2*len(requests))
	for _, r := range requests {
		ids = append(ids, r.FromActorID, r.ToActorID)
	}
	authors, err := g.authors.Views(ctx, ids, AsViewer(actor))
	if err != nil {
		return nil, err
	}
	views := make([]models.FriendRequestView, 0, len(requests))
	for _, r := range requests {
		direction := "received"
		if r.FromActorID == actor.ID {
			direction = "sent"
		}
		views = append(views, models.FriendRequestView{
			ID:        r.ID,
			Status:    r.Status,
			Direction: direction,
			From:      authors[r.FromActorID],
			To:        authors[r.ToActorID],
			CreatedAt: r.CreatedAt,
		})
	}
	return views, nil
}

func (g *FriendGraph) AreFriends(ctx context.Context, a, b uint) (bool, error) {
	ok, err := g.friendships.AreFriends(ctx, a, b)
	return ok, storeErr(err, nil)
}

func (g *FriendGraph) FriendCount(ctx context.Context, actorID uint) (int64, error) {
	n, err := g.friendships.CountFriends(ctx, actorID)
	return n, storeErr(err, nil)
}

func (g *FriendGraph) FriendIDs(ctx context.Context, actorID uint) ([]uint, error) {
	ids, err := g.friendships.GetFriendIDs(ctx, actorID)
	return ids, storeErr(err, nil)
}
