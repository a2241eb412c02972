package handlers

import (
	"net/http"

	"github.com/anonto42/campus-social/backend/internal/models"
	"github.com/anonto42/campus-social/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	actors actorResolver
	posts  *services.PostService
	feed   *services.FeedAssembler
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(resolver *services.ActorResolver, posts *services.PostService, feed *services.FeedAssembler) *PostHandler {
	return &PostHandler{actors: actorResolver{resolver}, posts: posts, feed: feed}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.GET("/posts/:id", h.GetPost)
	g.PUT("/posts/:id", h.UpdatePost)
	g.DELETE("/posts/:id", h.DeletePost)
}

// CreatePost publishes a post as the real identity or, with as_persona,
// as the caller's persona.
func (h *PostHandler) CreatePost(c echo.Context) error {
	var req models.CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	user, actor, err := h.actors.acting(c, req.ActorID, req.AsPersona)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	post, err := h.posts.CreatePost(ctx, actor, req)
	if err != nil {
		return err
	}
	view, err := h.feed.PostDetail(ctx, post.ID.Hex(), services.Viewer{Actor: actor, IsAdmin: user.IsAdmin})
	if err != nil {
		return err
	}
	return success(c, http.StatusCreated, view)
}

// GetPost retrieves a single post by ID
func (h *PostHandler) GetPost(c echo.Context) error {
	viewer, err := h.actors.viewer(c)
	if err != nil {
		return err
	}
	view, err := h.feed.PostDetail(c.Request().Context(), c.Param("id"), viewer)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, view)
}

// UpdatePost edits a post authored by the acting actor
func (h *PostHandler) UpdatePost(c echo.Context) error {
	var req models.UpdatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	user, actor, err := h.actors.acting(c, req.ActorID, req.AsPersona)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	post, err := h.posts.UpdatePost(ctx, c.Param("id"), actor, req)
	if err != nil {
		return err
	}
	view, err := h.feed.PostDetail(ctx, post.ID.Hex(), services.Viewer{Actor: actor, IsAdmin: user.IsAdmin})
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, view)
}

// DeletePost removes a post authored by the acting actor
func (h *PostHandler) DeletePost(c echo.Context) error {
	user, actor, err := h.actors.actingFromQuery(c)
	if err != nil {
		return err
	}
	viewer := services.Viewer{Actor: actor, IsAdmin: user.IsAdmin}
	if err := h.posts.DeletePost(c.Request().Context(), c.Param("id"), viewer); err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"message": "post deleted"})
}
