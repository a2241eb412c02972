package handlers

import (
	"net/http"

	"github.com/anonto42/campus-social/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// AdminHandler serves moderation endpoints. Routes are mounted behind
// middleware.RequireAdmin.
type AdminHandler struct {
	resolver *services.ActorResolver
	admin    *services.AdminService
}

func NewAdminHandler(resolver *services.ActorResolver, admin *services.AdminService) *AdminHandler {
	return &AdminHandler{resolver: resolver, admin: admin}
}

func (h *AdminHandler) RegisterAdminRoutes(g *echo.Group) {
	g.PUT("/users/:id/ban", h.BanUser)
	g.PUT("/personas/:id/ban", h.BanPersona)
	g.DELETE("/posts/:id", h.TakeDownPost)
	g.GET("/posts/:id/author", h.GetPostAuthor)
}

// BanRequest toggles a ban; an empty body bans.
type BanRequest struct {
	Banned *bool `json:"banned,omitempty"`
}

func (r BanRequest) value() bool {
	return r.Banned == nil || *r.Banned
}

func bindBan(c echo.Context) (bool, error) {
	var req BanRequest
	if c.Request().ContentLength > 0 {
		if err := bindAndValidate(c, &req); err != nil {
			return false, err
		}
	}
	return req.value(), nil
}

func (h *AdminHandler) BanUser(c echo.Context) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}
	banned, err := bindBan(c)
	if err != nil {
		return err
	}
	if err := h.admin.SetUserBanned(c.Request().Context(), id, banned); err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"user_id": id, "banned": banned})
}

func (h *AdminHandler) BanPersona(c echo.Context) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}
	banned, err := bindBan(c)
	if err != nil {
		return err
	}
	if err := h.admin.SetPersonaBanned(c.Request().Context(), id, banned); err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"persona_id": id, "banned": banned})
}

func (h *AdminHandler) TakeDownPost(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	actor, err := h.resolver.RealActor(ctx, user.ID)
	if err != nil {
		return err
	}
	if err := h.admin.TakeDown(ctx, actor, c.Param("id")); err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"message": "post removed"})
}

// GetPostAuthor reveals the user behind a post, persona or not.
func (h *AdminHandler) GetPostAuthor(c echo.Context) error {
	author, err := h.admin.RealAuthor(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, author)
}
