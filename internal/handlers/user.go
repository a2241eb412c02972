package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/anonto42/campus-social/backend/internal/apperr"
	"github.com/anonto42/campus-social/backend/internal/models"
	"github.com/anonto42/campus-social/backend/internal/repositories"
	"github.com/anonto42/campus-social/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// UserHandler handles HTTP requests related to users
type UserHandler struct {
	userRepository repositories.UserRepository
	resolver       *services.ActorResolver
	personas       *services.PersonaService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository, resolver *services.ActorResolver, personas *services.PersonaService) *UserHandler {
	return &UserHandler{userRepository: userRepo, resolver: resolver, personas: personas}
}

// RegisterProfileRoutes registers user profile-related routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/profile", h.GetProfile)
	g.PUT("/profile", h.UpdateProfile)
	g.GET("/users/:id", h.GetUser)
	g.GET("/actors/me", h.MyActors)
}

type profileResponse struct {
	*models.User
	ActorID uint `json:"actor_id"`
}

// GetUser returns the public profile of another user. Persona links are
// never part of it.
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	user, err := h.userRepository.GetUserByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return apperr.NotFound("user")
	}
	if err != nil {
		return apperr.Internal(err)
	}
	actor, err := h.resolver.RealActor(ctx, user.ID)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, models.UserProfile{
		ID:           user.ID,
		ActorID:      actor.ID,
		Name:         user.Name,
		ProfileImage: user.ProfileImage,
	})
}

// GetProfile retrieves the authenticated user's profile
func (h *UserHandler) GetProfile(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	actor, err := h.resolver.RealActor(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, profileResponse{User: user, ActorID: actor.ID})
}

// UpdateProfile updates the authenticated user's profile
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req models.UpdateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		user.Name = name
	}
	if req.ProfileImage != "" {
		user.ProfileImage = req.ProfileImage
	}
	ctx := c.Request().Context()
	if err := h.userRepository.UpdateUser(ctx, user); err != nil {
		return apperr.Internal(err)
	}
	actor, err := h.resolver.RealActor(ctx, user.ID)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, profileResponse{User: user, ActorID: actor.ID})
}

type ownedActor struct {
	ActorID  uint             `json:"actor_id"`
	Kind     models.ActorKind `json:"kind"`
	Name     string           `json:"name"`
	IsBanned bool             `json:"is_banned"`
}

// MyActors lists the identities the caller can act as. Only the owner
// ever sees the two side by side.
func (h *UserHandler) MyActors(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	self, err := h.resolver.RealActor(ctx, user.ID)
	if err != nil {
		return err
	}
	actors := []ownedActor{{ActorID: self.ID, Kind: self.Kind, Name: user.Name, IsBanned: user.IsBanned}}

	persona, err := h.personas.Get(ctx, user.ID)
	switch {
	case err == nil:
		actors = append(actors, ownedActor{
			ActorID:  persona.ActorID,
			Kind:     models.ActorKindPersona,
			Name:     persona.DisplayName,
			IsBanned: persona.IsBanned,
		})
	case errors.Is(err, apperr.ErrNoPersona):
	default:
		return err
	}
	return success(c, http.StatusOK, actors)
}
