package handlers

import (
	"net/http"

	"github.com/anonto42/campus-social/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// NotificationHandler serves the acting actor's notifications. A persona's
// inbox is separate from its owner's.
type NotificationHandler struct {
	actors        actorResolver
	notifications *services.NotificationService
}

func NewNotificationHandler(resolver *services.ActorResolver, notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{actors: actorResolver{resolver}, notifications: notifications}
}

func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/unread-count", h.GetUnreadCount)
	g.PUT("/notifications/read-all", h.MarkAllAsRead)
	g.PUT("/notifications/:id/read", h.MarkAsRead)
}

func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	_, actor, err := h.actors.actingFromQuery(c)
	if err != nil {
		return err
	}
	items, meta, err := h.notifications.List(c.Request().Context(), actor, pagination(c))
	if err != nil {
		return err
	}
	return successPage(c, items, meta)
}

func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	_, actor, err := h.actors.actingFromQuery(c)
	if err != nil {
		return err
	}
	count, err := h.notifications.UnreadCount(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"unread_count": count})
}

func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}
	_, actor, err := h.actors.actingFromQuery(c)
	if err != nil {
		return err
	}
	if err := h.notifications.MarkRead(c.Request().Context(), actor, id); err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"message": "notification marked as read"})
}

func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	_, actor, err := h.actors.actingFromQuery(c)
	if err != nil {
		return err
	}
	if err := h.notifications.MarkAllRead(c.Request().Context(), actor); err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"message": "all notifications marked as read"})
}
