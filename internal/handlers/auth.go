package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/anonto42/campus-social/backend/internal/apperr"
	"github.com/anonto42/campus-social/backend/internal/middleware"
	"github.com/anonto42/campus-social/backend/internal/models"
	"github.com/anonto42/campus-social/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

// FirebaseIdentifier verifies Firebase ID tokens for login.
type FirebaseIdentifier interface {
	Identify(ctx context.Context, idToken string) (*middleware.FirebaseIdentity, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	userRepository  repositories.UserRepository
	actorRepository repositories.ActorRepository
	tokens          *middleware.JWTVerifier
	firebase        FirebaseIdentifier
}

// NewAuthHandler creates a new AuthHandler. firebase may be nil, which
// disables /firebase-login.
func NewAuthHandler(userRepo repositories.UserRepository, actorRepo repositories.ActorRepository, tokens *middleware.JWTVerifier, firebase FirebaseIdentifier) *AuthHandler {
	return &AuthHandler{userRepository: userRepo, actorRepository: actorRepo, tokens: tokens, firebase: firebase}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/signup", h.Signup)
	g.POST("/signin", h.SignIn)
	g.POST("/firebase-login", h.FirebaseLogin)
}

type authResponse struct {
	Token string             `json:"token"`
	User  models.UserProfile `json:"user"`
}

func (h *AuthHandler) issue(c echo.Context, status int, user *models.User, actorID uint) error {
	token, err := h.tokens.Issue(user)
	if err != nil {
		return apperr.Internal(err)
	}
	return success(c, status, authResponse{
		Token: token,
		User:  models.UserProfile{ID: user.ID, ActorID: actorID, Name: user.Name, ProfileImage: user.ProfileImage},
	})
}

// Signup handles local user registration with email and password
func (h *AuthHandler) Signup(c echo.Context) error {
	var req models.CreateLocalUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return apperr.Internal(err)
	}
	user := &models.User{
		Name:     strings.TrimSpace(req.Name),
		Email:    email,
		Password: string(hashedPassword),
	}
	actor, err := h.userRepository.CreateUser(c.Request().Context(), user)
	if errors.Is(err, repositories.ErrDuplicate) {
		return apperr.ErrAlreadyExists.WithMessage("user with this email already registered")
	}
	if err != nil {
		return apperr.Internal(err)
	}
	return h.issue(c, http.StatusCreated, user, actor.ID)
}

// SignIn handles local user authentication with email and password
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req models.SignInRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	invalid := apperr.ErrUnauthorized.WithMessage("invalid email or password")
	user, err := h.userRepository.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if errors.Is(err, repositories.ErrNotFound) {
		return invalid
	}
	if err != nil {
		return apperr.Internal(err)
	}
	if user.Password == "" || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return invalid
	}
	if user.IsBanned {
		return apperr.ErrForbidden.WithMessage("account is banned")
	}
	return h.loggedIn(c, user)
}

func (h *AuthHandler) loggedIn(c echo.Context, user *models.User) error {
	actor, err := h.actorRepository.GetActorByUserID(c.Request().Context(), user.ID)
	if err != nil {
		return apperr.Internal(err)
	}
	return h.issue(c, http.StatusOK, user, actor.ID)
}

// FirebaseLoginRequest defines the request body for Firebase login
type FirebaseLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// FirebaseLogin verifies a Firebase ID token, links or creates the local
// user and issues a local JWT.
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	if h.firebase == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "firebase login is not configured")
	}
	var req FirebaseLoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	id, err := h.firebase.Identify(ctx, req.IDToken)
	if err != nil {
		return apperr.ErrUnauthorized.WithMessage("invalid Firebase ID token").Wrap(err)
	}
	email := strings.ToLower(id.Email)

	user, err := h.userRepository.GetUserByFirebaseUID(ctx, id.UID)
	switch {
	case err == nil:
		if id.Name != "" {
			user.Name = id.Name
		}
		if err := h.userRepository.UpdateUser(ctx, user); err != nil {
			return apperr.Internal(err)
		}
	case errors.Is(err, repositories.ErrNotFound):
		user, err = h.linkOrCreate(ctx, id, email)
		if err != nil {
			return err
		}
	default:
		return apperr.Internal(err)
	}

	if user.IsBanned {
		return apperr.ErrForbidden.WithMessage("account is banned")
	}
	return h.loggedIn(c, user)
}

func (h *AuthHandler) linkOrCreate(ctx context.Context, id *middleware.FirebaseIdentity, email string) (*models.User, error) {
	uid := id.UID
	if email != "" {
		user, err := h.userRepository.GetUserByEmail(ctx, email)
		if err == nil {
			user.FirebaseUID = &uid
			if err := h.userRepository.UpdateUser(ctx, user); err != nil {
				return nil, apperr.Internal(err)
			}
			return user, nil
		}
		if !errors.Is(err, repositories.ErrNotFound) {
			return nil, apperr.Internal(err)
		}
	}

	name := id.Name
	if name == "" {
		name = strings.Split(email, "@")[0]
	}
	user := &models.User{Name: name, Email: email, FirebaseUID: &uid, ProfileImage: id.Picture}
	if user.Email == "" {
		user.Email = uid + "@firebase.local"
	}
	if _, err := h.userRepository.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperr.ErrAlreadyExists.WithMessage("account already exists")
		}
		return nil, apperr.Internal(err)
	}
	return user, nil
}
