package handlers

import (
	"net/http"

	"github.com/anonto42/campus-social/backend/internal/models"
	"github.com/anonto42/campus-social/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// EngagementHandler serves likes, reposts and saves. The three relations
// share handlers parameterized by kind.
type EngagementHandler struct {
	actors actorResolver
	ledger *services.EngagementLedger
}

func NewEngagementHandler(resolver *services.ActorResolver, ledger *services.EngagementLedger) *EngagementHandler {
	return &EngagementHandler{actors: actorResolver{resolver}, ledger: ledger}
}

func (h *EngagementHandler) RegisterEngagementRoutes(g *echo.Group) {
	g.POST("/posts/:id/likes", h.engage(models.EngagementLike))
	g.DELETE("/posts/:id/likes", h.disengage(models.EngagementLike))
	g.GET("/posts/:id/likes", h.listEngagers(models.EngagementLike))

	g.POST("/posts/:id/reposts", h.engage(models.EngagementRepost))
	g.DELETE("/posts/:id/reposts", h.disengage(models.EngagementRepost))
	g.GET("/posts/:id/reposts", h.listEngagers(models.EngagementRepost))

	g.POST("/posts/:id/save", h.engage(models.EngagementSave))
	g.DELETE("/posts/:id/save", h.disengage(models.EngagementSave))
	g.GET("/posts/:id/saves", h.listEngagers(models.EngagementSave))

	g.GET("/posts/:id/engagement", h.GetEngagement)
	g.GET("/saved", h.GetSavedPosts)
}

func (h *EngagementHandler) engage(kind models.EngagementKind) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, actor, err := h.actors.actingFromRequest(c)
		if err != nil {
			return err
		}
		ctx := c.Request().Context()
		postID := c.Param("id")
		if err := h.ledger.Engage(ctx, kind, actor, postID); err != nil {
			return err
		}
		state, err := h.ledger.State(ctx, services.Viewer{Actor: actor, IsAdmin: user.IsAdmin}, postID)
		if err != nil {
			return err
		}
		return success(c, http.StatusCreated, state)
	}
}

func (h *EngagementHandler) disengage(kind models.EngagementKind) echo.HandlerFunc {
	return func(c echo.Context) error {
		_, actor, err := h.actors.actingFromRequest(c)
		if err != nil {
			return err
		}
		if err := h.ledger.Disengage(c.Request().Context(), kind, actor, c.Param("id")); err != nil {
			return err
		}
		return success(c, http.StatusOK, echo.Map{"message": string(kind) + " removed"})
	}
}

func (h *EngagementHandler) listEngagers(kind models.EngagementKind) echo.HandlerFunc {
	return func(c echo.Context) error {
		viewer, err := h.actors.viewer(c)
		if err != nil {
			return err
		}
		authors, err := h.ledger.ListEngagers(c.Request().Context(), kind, viewer, c.Param("id"))
		if err != nil {
			return err
		}
		return success(c, http.StatusOK, authors)
	}
}

// GetEngagement returns counts and the viewer's own flags for a post.
func (h *EngagementHandler) GetEngagement(c echo.Context) error {
	viewer, err := h.actors.viewer(c)
	if err != nil {
		return err
	}
	state, err := h.ledger.State(c.Request().Context(), viewer, c.Param("id"))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, state)
}

// GetSavedPosts pages through the acting actor's saved posts.
func (h *EngagementHandler) GetSavedPosts(c echo.Context) error {
	_, actor, err := h.actors.actingFromQuery(c)
	if err != nil {
		return err
	}
	page, err := h.ledger.SavedPosts(c.Request().Context(), actor, pagination(c))
	if err != nil {
		return err
	}
	return feedPage(c, page)
}
