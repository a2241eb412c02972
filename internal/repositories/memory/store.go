// Package memory is an in-process implementation of every repository
// interface. It enforces the same uniqueness rules as the PostgreSQL schema
// and backs the test suites and the STORAGE=memory development mode.
package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/anonto42/campus-social/backend/internal/models"
	"github.com/anonto42/campus-social/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type engagementKey struct {
	kind    models.EngagementKind
	actorID uint
	postID  string
}

// Store holds all records behind one mutex.
type Store struct {
	mu sync.Mutex

	// Now stamps created/updated times. Tests may replace it.
	Now func() time.Time

	nextID uint

	users         map[uint]*models.User
	personas      map[uint]*models.Persona
	actors        map[uint]*models.Actor
	requests      map[uint]*models.FriendRequest
	friendships   map[string]*models.Friendship
	posts         map[string]*models.Post
	engagements   map[engagementKey]time.Time
	comments      map[uint]*models.Comment
	notifications map[uint]*models.Notification
}

func NewStore() *Store {
	return &Store{
		Now:           time.Now,
		users:         make(map[uint]*models.User),
		personas:      make(map[uint]*models.Persona),
		actors:        make(map[uint]*models.Actor),
		requests:      make(map[uint]*models.FriendRequest),
		friendships:   make(map[string]*models.Friendship),
		posts:         make(map[string]*models.Post),
		engagements:   make(map[engagementKey]time.Time),
		comments:      make(map[uint]*models.Comment),
		notifications: make(map[uint]*models.Notification),
	}
}

// Set returns a repositories.Set backed entirely by s.
func (s *Store) Set() repositories.Set {
	return repositories.Set{
		Users:         s,
		Personas:      s,
		Actors:        s,
		Friendships:   s,
		Posts:         s,
		Engagements:   s,
		Comments:      s,
		Notifications: s,
	}
}

func (s *Store) id() uint {
	s.nextID++
	return s.nextID
}

// --- users ---

func (s *Store) CreateUser(_ context.Context, user *models.User) (*models.Actor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email {
			return nil, repositories.ErrDuplicate
		}
		if user.FirebaseUID != nil && u.FirebaseUID != nil && *u.FirebaseUID == *user.FirebaseUID {
			return nil, repositories.ErrDuplicate
		}
	}
	now := s.Now()
	user.ID = s.id()
	user.CreatedAt, user.UpdatedAt = now, now
	cp := *user
	s.users[user.ID] = &cp

	actor := models.NewUserActor(user.ID)
	actor.ID = s.id()
	actor.CreatedAt = now
	acp := *actor
	s.actors[actor.ID] = &acp
	return actor, nil
}

func (s *Store) GetUserByID(_ context.Context, id uint) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *Store) GetUserByFirebaseUID(_ context.Context, firebaseUID string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.FirebaseUID != nil && *u.FirebaseUID == firebaseUID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *Store) UpdateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return repositories.ErrNotFound
	}
	for _, u := range s.users {
		if u.ID != user.ID && u.Email == user.Email {
			return repositories.ErrDuplicate
		}
	}
	user.UpdatedAt = s.Now()
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *Store) SetUserBanned(_ context.Context, id uint, banned bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	u.IsBanned = banned
	return nil
}

// --- personas ---

func (s *Store) CreatePersona(_ context.Context, persona *models.Persona) (*models.Actor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.personas {
		if p.UserID == persona.UserID || strings.EqualFold(p.DisplayName, persona.DisplayName) {
			return nil, repositories.ErrDuplicate
		}
	}
	now := s.Now()
	persona.ID = s.id()
	persona.CreatedAt, persona.UpdatedAt = now, now
	cp := *persona
	s.personas[persona.ID] = &cp

	actor := models.NewPersonaActor(persona.ID)
	actor.ID = s.id()
	actor.CreatedAt = now
	acp := *actor
	s.actors[actor.ID] = &acp
	return actor, nil
}

func (s *Store) GetPersonaByID(_ context.Context, id uint) (*models.Persona, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.personas[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *Store) GetPersonaByUserID(_ context.Context, userID uint) (*models.Persona, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.personas {
		if p.UserID == userID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *Store) UpdatePersona(_ context.Context, persona *models.Persona) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.personas[persona.ID]; !ok {
		return repositories.ErrNotFound
	}
	for _, p := range s.personas {
		if p.ID != persona.ID && strings.EqualFold(p.DisplayName, persona.DisplayName) {
			return repositories.ErrDuplicate
		}
	}
	persona.UpdatedAt = s.Now()
	cp := *persona
	s.personas[persona.ID] = &cp
	return nil
}

func (s *Store) SetPersonaBanned(_ context.Context, id uint, banned bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.personas[id]
	if !ok {
		return repositories.ErrNotFound
	}
	p.IsBanned = banned
	return nil
}

// --- actors ---

func (s *Store) GetActorByID(_ context.Context, id uint) (*models.Actor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.actors[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *Store) GetActorByUserID(_ context.Context, userID uint) (*models.Actor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.actors {
		if id, ok := a.BackingUserID(); ok && id == userID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *Store) GetActorByPersonaID(_ context.Context, personaID uint) (*models.Actor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.actors {
		if id, ok := a.BackingPersonaID(); ok && id == personaID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *Store) GetIdentities(_ context.Context, ids []uint) (map[uint]models.ActorIdentity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make(map[uint]models.ActorIdentity, len(ids))
	for _, id := range ids {
		a, ok := s.actors[id]
		if !ok {
			continue
		}
		identity := models.ActorIdentity{Actor: *a}
		if uid, ok := a.BackingUserID(); ok {
			if u, ok := s.users[uid]; ok {
				cp := *u
				identity.User = &cp
			}
		}
		if pid, ok := a.BackingPersonaID(); ok {
			if p, ok := s.personas[pid]; ok {
				cp := *p
				identity.Persona = &cp
			}
		}
		result[id] = identity
	}
	return result, nil
}

func (s *Store) FindActorIDsByName(_ context.Context, name string) ([]uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	needle := strings.ToLower(name)
	var ids []uint
	for _, a := range s.actors {
		switch a.Kind {
		case models.ActorKindUser:
			if u, ok := s.users[*a.UserID]; ok && strings.Contains(strings.ToLower(u.Name), needle) {
				ids = append(ids, a.ID)
			}
		case models.ActorKindPersona:
			if p, ok := s.personas[*a.PersonaID]; ok && strings.Contains(strings.ToLower(p.DisplayName), needle) {
				ids = append(ids, a.ID)
			}
		}
	}
	slices.Sort(ids)
	return ids, nil
}

// --- friendships ---

func (s *Store) CreateFriendRequest(_ context.Context, req *models.FriendRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := models.PairKey(req.FromActorID, req.ToActorID)
	for _, r := range s.requests {
		if r.PendingKey != nil && *r.PendingKey == key {
			return repositories.ErrDuplicate
		}
	}
	now := s.Now()
	req.ID = s.id()
	req.Status = models.FriendRequestPending
	req.PendingKey = &key
	req.CreatedAt, req.UpdatedAt = now, now
	cp := *req
	s.requests[req.ID] = &cp
	return nil
}

func (s *Store) GetFriendRequestByID(_ context.Context, id uint) (*models.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *Store) GetPendingFriendRequestBetween(_ context.Context, a, b uint) (*models.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := models.PairKey(a, b)
	for _, r := range s.requests {
		if r.PendingKey != nil && *r.PendingKey == key {
			cp := *r
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *Store) GetPendingFriendRequests(_ context.Context, actorID uint) ([]models.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.FriendRequest
	for _, r := range s.requests {
		if r.Status == models.FriendRequestPending && (r.FromActorID == actorID || r.ToActorID == actorID) {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *Store) AcceptFriendRequest(_ context.Context, id uint) (*models.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[id]
	if !ok || r.Status != models.FriendRequestPending {
		return nil, repositories.ErrNotFound
	}
	r.Status = models.FriendRequestAccepted
	r.PendingKey = nil
	r.UpdatedAt = s.Now()

	key := models.PairKey(r.FromActorID, r.ToActorID)
	if _, exists := s.friendships[key]; !exists {
		edge := models.NewFriendship(r.FromActorID, r.ToActorID)
		edge.ID = s.id()
		edge.CreatedAt = r.UpdatedAt
		s.friendships[key] = edge
	}
	cp := *r
	return &cp, nil
}

func (s *Store) CloseFriendRequest(_ context.Context, id uint, status models.FriendRequestStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[id]
	if !ok || r.Status != models.FriendRequestPending {
		return repositories.ErrNotFound
	}
	r.Status = status
	r.PendingKey = nil
	r.UpdatedAt = s.Now()
	return nil
}

func (s *Store) AreFriends(_ context.Context, a, b uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.friendships[models.PairKey(a, b)]
	return ok, nil
}

func (s *Store) CountFriends(_ context.Context, actorID uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, f := range s.friendships {
		if f.ActorLowID == actorID || f.ActorHighID == actorID {
			n++
		}
	}
	return n, nil
}

func (s *Store) GetFriendIDs(_ context.Context, actorID uint) ([]uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := []uint{}
	for _, f := range s.friendships {
		if f.ActorLowID == actorID || f.ActorHighID == actorID {
			ids = append(ids, f.Other(actorID))
		}
	}
	slices.Sort(ids)
	return ids, nil
}

func (s *Store) DeleteFriendship(_ context.Context, a, b uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.friendships, models.PairKey(a, b))
	return nil
}

// --- posts ---

func (s *Store) CreatePost(_ context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.Now()
	post.ID = primitive.NewObjectID()
	post.CreatedAt, post.UpdatedAt = now, now
	cp := *post
	s.posts[post.ID.Hex()] = &cp
	return nil
}

func (s *Store) GetPostByID(_ context.Context, id string) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *Store) UpdatePost(_ context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.posts[post.ID.Hex()]
	if !ok {
		return repositories.ErrNotFound
	}
	post.UpdatedAt = s.Now()
	existing.Content = post.Content
	existing.ImageURL = post.ImageURL
	existing.Location = post.Location
	existing.Visibility = post.Visibility
	existing.UpdatedAt = post.UpdatedAt
	return nil
}

func (s *Store) DeletePost(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.posts, id)
	return nil
}

func (s *Store) matchingPosts(filter repositories.PostFilter) []models.Post {
	var out []models.Post
	for _, p := range s.posts {
		if filter.Matches(p) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.Hex() > out[j].ID.Hex()
	})
	return out
}

func (s *Store) FindPosts(_ context.Context, filter repositories.PostFilter, skip, limit int64) ([]models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.matchingPosts(filter)
	if skip >= int64(len(all)) {
		return []models.Post{}, nil
	}
	end := skip + limit
	if limit <= 0 || end > int64(len(all)) {
		end = int64(len(all))
	}
	return all[skip:end], nil
}

func (s *Store) CountPosts(_ context.Context, filter repositories.PostFilter) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.matchingPosts(filter))), nil
}

// --- engagements ---

func (s *Store) CreateEngagement(_ context.Context, kind models.EngagementKind, actorID uint, postID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := engagementKey{kind, actorID, postID}
	if _, ok := s.engagements[key]; ok {
		return repositories.ErrDuplicate
	}
	s.engagements[key] = s.Now()
	return nil
}

func (s *Store) DeleteEngagement(_ context.Context, kind models.EngagementKind, actorID uint, postID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.engagements, engagementKey{kind, actorID, postID})
	return nil
}

func (s *Store) HasEngagement(_ context.Context, kind models.EngagementKind, actorID uint, postID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.engagements[engagementKey{kind, actorID, postID}]
	return ok, nil
}

func (s *Store) CountEngagements(_ context.Context, kind models.EngagementKind, postID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for k := range s.engagements {
		if k.kind == kind && k.postID == postID {
			n++
		}
	}
	return n, nil
}

func (s *Store) CountEngagementsByPosts(_ context.Context, kind models.EngagementKind, postIDs []string) (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make(map[string]int64, len(postIDs))
	for k := range s.engagements {
		if k.kind == kind && slices.Contains(postIDs, k.postID) {
			result[k.postID]++
		}
	}
	return result, nil
}

func (s *Store) EngagedPostIDs(_ context.Context, kind models.EngagementKind, actorID uint, postIDs []string) (map[string]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make(map[string]bool)
	for _, id := range postIDs {
		if _, ok := s.engagements[engagementKey{kind, actorID, id}]; ok {
			result[id] = true
		}
	}
	return result, nil
}

func (s *Store) ListEngagedActorIDs(_ context.Context, kind models.EngagementKind, postID string) ([]uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	type row struct {
		actorID uint
		at      time.Time
	}
	var rows []row
	for k, at := range s.engagements {
		if k.kind == kind && k.postID == postID {
			rows = append(rows, row{k.actorID, at})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].at.Equal(rows[j].at) {
			return rows[i].at.After(rows[j].at)
		}
		return rows[i].actorID > rows[j].actorID
	})
	ids := make([]uint, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.actorID)
	}
	return ids, nil
}

func (s *Store) ListEngagedPostIDs(_ context.Context, kind models.EngagementKind, actorID uint) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := []string{}
	for k := range s.engagements {
		if k.kind == kind && k.actorID == actorID {
			ids = append(ids, k.postID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *Store) DeleteEngagementsByPost(_ context.Context, postID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.engagements {
		if k.postID == postID {
			delete(s.engagements, k)
		}
	}
	return nil
}

// --- comments ---

func (s *Store) CreateComment(_ context.Context, comment *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.Now()
	comment.ID = s.id()
	comment.CreatedAt, comment.UpdatedAt = now, now
	cp := *comment
	s.comments[comment.ID] = &cp
	return nil
}

func (s *Store) GetCommentByID(_ context.Context, id uint) (*models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comments[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *Store) GetCommentsByPostID(_ context.Context, postID string) ([]models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Comment
	for _, c := range s.comments {
		if c.PostID == postID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) UpdateComment(_ context.Context, comment *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.comments[comment.ID]; !ok {
		return repositories.ErrNotFound
	}
	comment.UpdatedAt = s.Now()
	cp := *comment
	s.comments[comment.ID] = &cp
	return nil
}

func (s *Store) DeleteComment(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.comments, id)
	return nil
}

func (s *Store) CountCommentsByPosts(_ context.Context, postIDs []string) (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make(map[string]int64, len(postIDs))
	for _, c := range s.comments {
		if slices.Contains(postIDs, c.PostID) {
			result[c.PostID]++
		}
	}
	return result, nil
}

func (s *Store) DeleteCommentsByPost(_ context.Context, postID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, c := range s.comments {
		if c.PostID == postID {
			delete(s.comments, id)
		}
	}
	return nil
}

// --- notifications ---

func (s *Store) CreateNotification(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n.ID = s.id()
	n.CreatedAt = s.Now()
	cp := *n
	s.notifications[n.ID] = &cp
	return nil
}

func (s *Store) GetByRecipient(_ context.Context, recipientActorID uint, page, limit int) ([]models.Notification, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []models.Notification
	for _, n := range s.notifications {
		if n.RecipientActorID == recipientActorID {
			all = append(all, *n)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	total := int64(len(all))
	offset := (page - 1) * limit
	if offset >= len(all) {
		return []models.Notification{}, total, nil
	}
	end := min(offset+limit, len(all))
	return all[offset:end], total, nil
}

func (s *Store) GetUnreadCount(_ context.Context, recipientActorID uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, notif := range s.notifications {
		if notif.RecipientActorID == recipientActorID && !notif.IsRead {
			n++
		}
	}
	return n, nil
}

func (s *Store) MarkAsRead(_ context.Context, notificationID, recipientActorID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[notificationID]
	if !ok || n.RecipientActorID != recipientActorID {
		return repositories.ErrNotFound
	}
	n.IsRead = true
	return nil
}

func (s *Store) MarkAllAsRead(_ context.Context, recipientActorID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.notifications {
		if n.RecipientActorID == recipientActorID {
			n.IsRead = true
		}
	}
	return nil
}
