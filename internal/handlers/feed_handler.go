package handlers

import (
	"github.com/anonto42/campus-social/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FeedHandler handles feed-related HTTP requests
type FeedHandler struct {
	actors actorResolver
	feed   *services.FeedAssembler
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(resolver *services.ActorResolver, feed *services.FeedAssembler) *FeedHandler {
	return &FeedHandler{actors: actorResolver{resolver}, feed: feed}
}

// RegisterFeedRoutes registers feed-related routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed/public", h.GetPublicFeed)
	g.GET("/feed/actors/:actor_id", h.GetActorFeed)
	g.GET("/feed/search", h.SearchFeed)
}

// RegisterPublicRoutes registers routes reachable without a token
func (h *FeedHandler) RegisterPublicRoutes(g *echo.Group) {
	g.GET("/feed", h.GetPublicFeed)
}

// GetPublicFeed lists public posts, newest first
func (h *FeedHandler) GetPublicFeed(c echo.Context) error {
	viewer, err := h.actors.viewer(c)
	if err != nil {
		return err
	}
	page, err := h.feed.PublicFeed(c.Request().Context(), viewer, pagination(c))
	if err != nil {
		return err
	}
	return feedPage(c, page)
}

// GetActorFeed lists posts by an actor and its friends, as seen by the caller
func (h *FeedHandler) GetActorFeed(c echo.Context) error {
	targetID, err := parseUintParam(c, "actor_id")
	if err != nil {
		return err
	}
	viewer, err := h.actors.viewer(c)
	if err != nil {
		return err
	}
	page, err := h.feed.ActorFeed(c.Request().Context(), viewer, targetID, pagination(c))
	if err != nil {
		return err
	}
	return feedPage(c, page)
}

// SearchFeed lists visible posts whose shown author name matches ?name=
func (h *FeedHandler) SearchFeed(c echo.Context) error {
	viewer, err := h.actors.viewer(c)
	if err != nil {
		return err
	}
	page, err := h.feed.SearchByAuthorName(c.Request().Context(), viewer, c.QueryParam("name"), pagination(c))
	if err != nil {
		return err
	}
	return feedPage(c, page)
}
