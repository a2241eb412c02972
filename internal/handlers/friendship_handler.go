package handlers

import (
	"net/http"

	"github.com/anonto42/campus-social/backend/internal/models"
	"github.com/anonto42/campus-social/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FriendshipHandler handles HTTP requests related to friendships
type FriendshipHandler struct {
	actors actorResolver
	graph  *services.FriendGraph
}

// NewFriendshipHandler creates a new FriendshipHandler
func NewFriendshipHandler(resolver *services.ActorResolver, graph *services.FriendGraph) *FriendshipHandler {
	return &FriendshipHandler{actors: actorResolver{resolver}, graph: graph}
}

// RegisterFriendshipRoutes registers friendship-related routes
func (h *FriendshipHandler) RegisterFriendshipRoutes(g *echo.Group) {
	g.POST("/friends/requests", h.SendFriendRequest)
	g.GET("/friends/requests", h.GetFriendRequests)
	g.PUT("/friends/requests/:id", h.RespondFriendRequest)
	g.DELETE("/friends/requests/:id", h.CancelFriendRequest)
	g.GET("/friends", h.GetFriends)
	g.DELETE("/friends/:actor_id", h.DeleteFriend)
}

// SendFriendRequest handles sending a friend request
func (h *FriendshipHandler) SendFriendRequest(c echo.Context) error {
	var req models.CreateFriendRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	_, actor, err := h.actors.acting(c, req.ActorID, req.AsPersona)
	if err != nil {
		return err
	}
	fr, err := h.graph.SendRequest(c.Request().Context(), actor, req.ToActorID)
	if err != nil {
		return err
	}
	return success(c, http.StatusCreated, fr)
}

// GetFriendRequests lists pending requests sent or received by the acting actor
func (h *FriendshipHandler) GetFriendRequests(c echo.Context) error {
	_, actor, err := h.actors.actingFromQuery(c)
	if err != nil {
		return err
	}
	requests, err := h.graph.ListFriendRequests(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, requests)
}

// RespondFriendRequest accepts or declines a request addressed to the acting actor
func (h *FriendshipHandler) RespondFriendRequest(c echo.Context) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}
	var req models.RespondFriendRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	_, actor, err := h.actors.acting(c, req.ActorID, req.AsPersona)
	if err != nil {
		return err
	}
	fr, err := h.graph.Respond(c.Request().Context(), id, actor, req.Action)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, fr)
}

// CancelFriendRequest withdraws a pending request sent by the acting actor
func (h *FriendshipHandler) CancelFriendRequest(c echo.Context) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}
	_, actor, err := h.actors.actingFromQuery(c)
	if err != nil {
		return err
	}
	if err := h.graph.Cancel(c.Request().Context(), id, actor); err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"message": "friend request cancelled"})
}

// GetFriends lists the acting actor's friends
func (h *FriendshipHandler) GetFriends(c echo.Context) error {
	user, actor, err := h.actors.actingFromQuery(c)
	if err != nil {
		return err
	}
	viewer := services.Viewer{Actor: actor, IsAdmin: user.IsAdmin}
	friends, err := h.graph.ListFriends(c.Request().Context(), actor, viewer)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, friends)
}

// DeleteFriend removes the friendship between the acting actor and actor_id
func (h *FriendshipHandler) DeleteFriend(c echo.Context) error {
	otherID, err := parseUintParam(c, "actor_id")
	if err != nil {
		return err
	}
	_, actor, err := h.actors.actingFromQuery(c)
	if err != nil {
		return err
	}
	if err := h.graph.RemoveFriend(c.Request().Context(), actor, otherID); err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"message": "friend removed"})
}
