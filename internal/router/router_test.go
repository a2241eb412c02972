package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/anonto42/campus-social/backend/internal/middleware"
	"github.com/anonto42/campus-social/backend/internal/repositories/memory"
	"github.com/anonto42/campus-social/backend/internal/services"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Meta    json.RawMessage `json:"meta"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type apiEnv struct {
	t     *testing.T
	e     *echo.Echo
	store *memory.Store
}

func newAPI(t *testing.T) *apiEnv {
	t.Helper()
	store := memory.NewStore()
	e := echo.New()
	SetupRoutes(e, store.Set(), Options{
		Tokens:   middleware.NewJWTVerifier("test-secret", time.Hour),
		Services: services.Config{AnonMinFriends: 1},
	})
	return &apiEnv{t: t, e: e, store: store}
}

func (a *apiEnv) do(method, path, token string, body any) (int, envelope) {
	a.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec.Code, env
}

// raw returns the undecoded body, for leak checks.
func (a *apiEnv) raw(method, path, token string) (int, string) {
	a.t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec.Code, rec.Body.String()
}

type session struct {
	Token   string
	UserID  uint
	ActorID uint
}

func (a *apiEnv) signup(name string) session {
	a.t.Helper()
	code, env := a.do(http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"name":     name,
		"email":    strings.ToLower(name) + "@campus.test",
		"password": "password123",
	})
	require.Equal(a.t, http.StatusCreated, code, env.Error.Message)
	var out struct {
		Token string `json:"token"`
		User  struct {
			ID      uint `json:"id"`
			ActorID uint `json:"actor_id"`
		} `json:"user"`
	}
	require.NoError(a.t, json.Unmarshal(env.Data, &out))
	return session{Token: out.Token, UserID: out.User.ID, ActorID: out.User.ActorID}
}

func (a *apiEnv) befriend(from, to session) {
	a.t.Helper()
	code, env := a.do(http.MethodPost, "/api/v1/friends/requests", from.Token, map[string]any{"to_actor_id": to.ActorID})
	require.Equal(a.t, http.StatusCreated, code, env.Error.Message)
	var fr struct {
		ID uint `json:"id"`
	}
	require.NoError(a.t, json.Unmarshal(env.Data, &fr))

	code, env = a.do(http.MethodPut, fmt.Sprintf("/api/v1/friends/requests/%d", fr.ID), to.Token, map[string]any{"action": "accept"})
	require.Equal(a.t, http.StatusOK, code, env.Error.Message)
}

func (a *apiEnv) createPost(s session, body map[string]any) string {
	a.t.Helper()
	code, env := a.do(http.MethodPost, "/api/v1/posts", s.Token, body)
	require.Equal(a.t, http.StatusCreated, code, env.Error.Message)
	var post struct {
		ID string `json:"id"`
	}
	require.NoError(a.t, json.Unmarshal(env.Data, &post))
	return post.ID
}

func TestSignupSigninAndProfile(t *testing.T) {
	api := newAPI(t)
	alice := api.signup("Alice")
	assert.NotEmpty(t, alice.Token)
	assert.NotZero(t, alice.ActorID)

	code, env := api.do(http.MethodPost, "/api/v1/auth/signin", "", map[string]string{
		"email": "alice@campus.test", "password": "password123",
	})
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)

	code, env = api.do(http.MethodPost, "/api/v1/auth/signin", "", map[string]string{
		"email": "alice@campus.test", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, env.Success)
	assert.Equal(t, "unauthorized", env.Error.Code)

	code, env = api.do(http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"name": "Alice", "email": "alice@campus.test", "password": "password123",
	})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "already_exists", env.Error.Code)

	code, env = api.do(http.MethodGet, "/api/v1/profile", alice.Token, nil)
	require.Equal(t, http.StatusOK, code)
	var profile struct {
		Name    string `json:"name"`
		ActorID uint   `json:"actor_id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &profile))
	assert.Equal(t, "Alice", profile.Name)
	assert.Equal(t, alice.ActorID, profile.ActorID)
}

func TestValidationAndAuthErrors(t *testing.T) {
	api := newAPI(t)

	code, env := api.do(http.MethodPost, "/api/v1/auth/signup", "", map[string]string{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "validation", env.Error.Code)

	code, env = api.do(http.MethodGet, "/api/v1/feed/public", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "unauthorized", env.Error.Code)

	code, env = api.do(http.MethodGet, "/api/v1/public/feed", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)

	code, env = api.do(http.MethodPost, "/api/v1/auth/firebase-login", "", map[string]string{"idToken": "x"})
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "http_error", env.Error.Code)
}

func TestPersonaPostNeverRevealsOwner(t *testing.T) {
	api := newAPI(t)
	alice := api.signup("Alice")
	bob := api.signup("Bob")

	code, env := api.do(http.MethodPost, "/api/v1/persona", alice.Token, map[string]string{"display_name": "NightOwl"})
	require.Equal(t, http.StatusCreated, code, env.Error.Message)

	// Without a friend the gate refuses.
	code, env = api.do(http.MethodPost, "/api/v1/posts", alice.Token, map[string]any{"content": "hi", "as_persona": true})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "insufficient_friends", env.Error.Code)

	api.befriend(alice, bob)
	postID := api.createPost(alice, map[string]any{"content": "the library closes too early", "as_persona": true})

	code, body := api.raw(http.MethodGet, "/api/v1/feed/public", bob.Token)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "NightOwl")
	assert.Contains(t, body, `"is_persona":true`)
	assert.NotContains(t, body, "Alice")
	assert.NotContains(t, body, "real_user_id")

	code, body = api.raw(http.MethodGet, "/api/v1/posts/"+postID, bob.Token)
	require.Equal(t, http.StatusOK, code)
	assert.NotContains(t, body, "Alice")

	code, body = api.raw(http.MethodGet, "/api/v1/public/feed", "")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "NightOwl")
	assert.NotContains(t, body, "Alice")

	code, body = api.raw(http.MethodGet, "/api/v1/feed/search?name=alice", bob.Token)
	require.Equal(t, http.StatusOK, code)
	assert.NotContains(t, body, postID)
}

func TestFriendsOnlyPostsAndActorFeed(t *testing.T) {
	api := newAPI(t)
	alice := api.signup("Alice")
	bob := api.signup("Bob")
	carol := api.signup("Carol")
	api.befriend(alice, bob)

	postID := api.createPost(alice, map[string]any{"content": "friends only", "visibility": "friends"})

	code, _ := api.do(http.MethodGet, "/api/v1/posts/"+postID, bob.Token, nil)
	assert.Equal(t, http.StatusOK, code)

	code, env := api.do(http.MethodGet, "/api/v1/posts/"+postID, carol.Token, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "not_found", env.Error.Code)

	code, env = api.do(http.MethodGet, fmt.Sprintf("/api/v1/feed/actors/%d", alice.ActorID), bob.Token, nil)
	require.Equal(t, http.StatusOK, code)
	var page struct {
		Posts []struct {
			ID string `json:"id"`
		} `json:"posts"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	require.Len(t, page.Posts, 1)
	assert.Equal(t, postID, page.Posts[0].ID)

	code, env = api.do(http.MethodGet, fmt.Sprintf("/api/v1/feed/actors/%d", alice.ActorID), carol.Token, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "not_authorized", env.Error.Code)
}

func TestEngagementEndpoints(t *testing.T) {
	api := newAPI(t)
	alice := api.signup("Alice")
	bob := api.signup("Bob")
	postID := api.createPost(alice, map[string]any{"content": "hello campus"})

	code, env := api.do(http.MethodPost, "/api/v1/posts/"+postID+"/likes", bob.Token, nil)
	require.Equal(t, http.StatusCreated, code, env.Error.Message)
	var state struct {
		LikesCount int64 `json:"likes_count"`
		IsLiked    bool  `json:"is_liked"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &state))
	assert.Equal(t, int64(1), state.LikesCount)
	assert.True(t, state.IsLiked)

	code, env = api.do(http.MethodPost, "/api/v1/posts/"+postID+"/likes", bob.Token, nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "already_engaged", env.Error.Code)

	code, _ = api.do(http.MethodPost, "/api/v1/posts/"+postID+"/save", bob.Token, nil)
	require.Equal(t, http.StatusCreated, code)

	code, env = api.do(http.MethodGet, "/api/v1/posts/"+postID+"/saves", bob.Token, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "forbidden", env.Error.Code)

	code, _ = api.do(http.MethodGet, "/api/v1/posts/"+postID+"/saves", alice.Token, nil)
	assert.Equal(t, http.StatusOK, code)

	code, env = api.do(http.MethodGet, "/api/v1/saved", bob.Token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), postID)
	assert.Contains(t, string(env.Meta), `"totalItems":1`)

	code, _ = api.do(http.MethodDelete, "/api/v1/posts/"+postID+"/likes", bob.Token, nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = api.do(http.MethodDelete, "/api/v1/posts/"+postID+"/likes", bob.Token, nil)
	assert.Equal(t, http.StatusOK, code)

	code, env = api.do(http.MethodGet, "/api/v1/notifications/unread-count", alice.Token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"unread_count":1}`, string(env.Data))
}

func TestActingAsForeignActorIsRefused(t *testing.T) {
	api := newAPI(t)
	alice := api.signup("Alice")
	bob := api.signup("Bob")

	code, env := api.do(http.MethodPost, "/api/v1/posts", alice.Token, map[string]any{
		"content": "impersonation", "actor_id": bob.ActorID,
	})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "actor_not_owned", env.Error.Code)
}

func TestAdminRoutes(t *testing.T) {
	api := newAPI(t)
	alice := api.signup("Alice")
	bob := api.signup("Bob")
	admin := api.signup("Admin")

	ctx := context.Background()
	u, err := api.store.GetUserByID(ctx, admin.UserID)
	require.NoError(t, err)
	u.IsAdmin = true
	require.NoError(t, api.store.UpdateUser(ctx, u))

	code, _ := api.do(http.MethodPost, "/api/v1/persona", alice.Token, map[string]string{"display_name": "NightOwl"})
	require.Equal(t, http.StatusCreated, code)
	api.befriend(alice, bob)
	postID := api.createPost(alice, map[string]any{"content": "anonymous", "as_persona": true})

	code, env := api.do(http.MethodGet, "/api/v1/admin/posts/"+postID+"/author", bob.Token, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "forbidden", env.Error.Code)

	code, env = api.do(http.MethodGet, "/api/v1/admin/posts/"+postID+"/author", admin.Token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), "Alice")

	code, _ = api.do(http.MethodPut, fmt.Sprintf("/api/v1/admin/users/%d/ban", bob.UserID), admin.Token, nil)
	require.Equal(t, http.StatusOK, code)
	code, env = api.do(http.MethodGet, "/api/v1/profile", bob.Token, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "forbidden", env.Error.Code)

	code, _ = api.do(http.MethodDelete, "/api/v1/admin/posts/"+postID, admin.Token, nil)
	require.Equal(t, http.StatusOK, code)
	code, _ = api.do(http.MethodGet, "/api/v1/posts/"+postID, alice.Token, nil)
	assert.Equal(t, http.StatusNotFound, code)
}
