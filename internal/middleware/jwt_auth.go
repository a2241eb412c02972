package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anonto42/campus-social/backend/internal/apperr"
	"github.com/anonto42/campus-social/backend/internal/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

const (
	principalKey = "principal"
	userKey      = "user"
)

// Principal is the identity proven by a bearer token.
type Principal struct {
	UserID uint
	Email  string
}

// TokenVerifier turns a bearer token into a Principal.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*Principal, error)
}

// JWTVerifier issues and verifies the server's own HS256 tokens.
type JWTVerifier struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTVerifier(secret string, ttl time.Duration) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for user.
func (v *JWTVerifier) Issue(user *models.User) (string, error) {
	now := v.now()
	claims := &models.JwtCustomClaims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(v.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

func (v *JWTVerifier) VerifyToken(_ context.Context, tokenString string) (*Principal, error) {
	claims := &models.JwtCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.UserID == 0 {
		return nil, errors.New("invalid token")
	}
	return &Principal{UserID: claims.UserID, Email: claims.Email}, nil
}

// ChainVerifier tries each verifier in order and returns the first success.
type ChainVerifier []TokenVerifier

func (c ChainVerifier) VerifyToken(ctx context.Context, token string) (*Principal, error) {
	var errs []error
	for _, v := range c {
		p, err := v.VerifyToken(ctx, token)
		if err == nil {
			return p, nil
		}
		errs = append(errs, err)
	}
	return nil, errors.Join(errs...)
}

func bearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		return "", apperr.ErrUnauthorized.WithMessage("missing Authorization header")
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", apperr.ErrUnauthorized.WithMessage("authorization header must be in Bearer format")
	}
	return parts[1], nil
}

// Authenticate rejects requests without a valid bearer token and stores
// the Principal in the context.
func Authenticate(verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := bearerToken(c)
			if err != nil {
				return err
			}
			principal, err := verifier.VerifyToken(c.Request().Context(), token)
			if err != nil {
				return apperr.ErrUnauthorized.WithMessage("invalid or expired token").Wrap(err)
			}
			c.Set(principalKey, principal)
			return next(c)
		}
	}
}

// OptionalAuthenticate stores a Principal when a valid token is present and
// lets anonymous requests through.
func OptionalAuthenticate(verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Header.Get(echo.HeaderAuthorization) == "" {
				return next(c)
			}
			return Authenticate(verifier)(next)(c)
		}
	}
}

// PrincipalFrom returns the authenticated principal, if any.
func PrincipalFrom(c echo.Context) (*Principal, bool) {
	p, ok := c.Get(principalKey).(*Principal)
	return p, ok
}

// CurrentUser returns the user loaded by RequireActiveUser.
func CurrentUser(c echo.Context) (*models.User, bool) {
	u, ok := c.Get(userKey).(*models.User)
	return u, ok
}
