package handlers

import (
	"net/http"

	"github.com/anonto42/campus-social/backend/internal/models"
	"github.com/anonto42/campus-social/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	actors   actorResolver
	comments *services.CommentService
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(resolver *services.ActorResolver, comments *services.CommentService) *CommentHandler {
	return &CommentHandler{actors: actorResolver{resolver}, comments: comments}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/posts/:id/comments", h.CreateComment)
	g.GET("/posts/:id/comments", h.GetComments)
	g.PUT("/comments/:id", h.UpdateComment)
	g.DELETE("/comments/:id", h.DeleteComment)
}

// CreateComment creates a new comment on a post
func (h *CommentHandler) CreateComment(c echo.Context) error {
	var req models.CreateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	_, actor, err := h.actors.acting(c, req.ActorID, req.AsPersona)
	if err != nil {
		return err
	}
	comment, err := h.comments.Create(c.Request().Context(), actor, c.Param("id"), req.Content)
	if err != nil {
		return err
	}
	return success(c, http.StatusCreated, comment)
}

// GetComments retrieves all comments on a visible post
func (h *CommentHandler) GetComments(c echo.Context) error {
	viewer, err := h.actors.viewer(c)
	if err != nil {
		return err
	}
	comments, err := h.comments.List(c.Request().Context(), c.Param("id"), viewer)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, comments)
}

// UpdateComment edits a comment written by the acting actor
func (h *CommentHandler) UpdateComment(c echo.Context) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}
	var req models.UpdateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	_, actor, err := h.actors.acting(c, req.ActorID, req.AsPersona)
	if err != nil {
		return err
	}
	comment, err := h.comments.Update(c.Request().Context(), actor, id, req.Content)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, comment)
}

// DeleteComment removes a comment. The comment's author, the post's author
// or an admin may do so.
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}
	user, actor, err := h.actors.actingFromQuery(c)
	if err != nil {
		return err
	}
	viewer := services.Viewer{Actor: actor, IsAdmin: user.IsAdmin}
	if err := h.comments.Delete(c.Request().Context(), viewer, id); err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"message": "comment deleted"})
}
