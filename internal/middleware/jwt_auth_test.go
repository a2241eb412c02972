package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anonto42/campus-social/backend/internal/apperr"
	"github.com/anonto42/campus-social/backend/internal/models"
	"github.com/anonto42/campus-social/backend/internal/repositories/memory"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTIssueAndVerify(t *testing.T) {
	v := NewJWTVerifier("test-secret", time.Hour)
	token, err := v.Issue(&models.User{ID: 7, Email: "a@campus.test"})
	require.NoError(t, err)

	p, err := v.VerifyToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, &Principal{UserID: 7, Email: "a@campus.test"}, p)

	_, err = NewJWTVerifier("other-secret", time.Hour).VerifyToken(context.Background(), token)
	assert.Error(t, err)
}

func TestJWTExpired(t *testing.T) {
	v := NewJWTVerifier("test-secret", time.Minute)
	v.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, err := v.Issue(&models.User{ID: 7})
	require.NoError(t, err)

	_, err = v.VerifyToken(context.Background(), token)
	assert.Error(t, err)
}

type staticVerifier struct {
	p   *Principal
	err error
}

func (s staticVerifier) VerifyToken(context.Context, string) (*Principal, error) { return s.p, s.err }

func TestChainVerifier(t *testing.T) {
	want := &Principal{UserID: 3}
	chain := ChainVerifier{
		staticVerifier{err: assert.AnError},
		staticVerifier{p: want},
	}
	got, err := chain.VerifyToken(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = ChainVerifier{staticVerifier{err: assert.AnError}}.VerifyToken(context.Background(), "x")
	assert.ErrorIs(t, err, assert.AnError)
}

func run(mw []echo.MiddlewareFunc, header string) (echo.Context, error) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	c := e.NewContext(req, httptest.NewRecorder())
	h := func(echo.Context) error { return nil }
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	return c, h(c)
}

func TestAuthenticate(t *testing.T) {
	v := NewJWTVerifier("test-secret", time.Hour)
	token, err := v.Issue(&models.User{ID: 9})
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		ok     bool
	}{
		{"missing header", "", false},
		{"wrong scheme", "Basic abc", false},
		{"garbage token", "Bearer nope", false},
		{"valid token", "Bearer " + token, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := run([]echo.MiddlewareFunc{Authenticate(v)}, tt.header)
			if !tt.ok {
				assert.ErrorIs(t, err, apperr.ErrUnauthorized)
				return
			}
			require.NoError(t, err)
			p, ok := PrincipalFrom(c)
			require.True(t, ok)
			assert.EqualValues(t, 9, p.UserID)
		})
	}

	_, err = run([]echo.MiddlewareFunc{OptionalAuthenticate(v)}, "")
	assert.NoError(t, err)
}

func TestRequireActiveUserAndAdmin(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	v := NewJWTVerifier("test-secret", time.Hour)

	member := &models.User{Name: "member", Email: "m@campus.test"}
	_, err := store.CreateUser(ctx, member)
	require.NoError(t, err)
	admin := &models.User{Name: "admin", Email: "root@campus.test", IsAdmin: true}
	_, err = store.CreateUser(ctx, admin)
	require.NoError(t, err)

	bearer := func(u *models.User) string {
		token, err := v.Issue(u)
		require.NoError(t, err)
		return "Bearer " + token
	}
	chain := []echo.MiddlewareFunc{Authenticate(v), RequireActiveUser(store), RequireAdmin()}

	_, err = run(chain, bearer(admin))
	assert.NoError(t, err)

	_, err = run(chain, bearer(member))
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	require.NoError(t, store.SetUserBanned(ctx, member.ID, true))
	c, err := run(chain[:2], bearer(member))
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	_, ok := CurrentUser(c)
	assert.False(t, ok)

	_, err = run(chain[:2], bearer(&models.User{ID: 999}))
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}
