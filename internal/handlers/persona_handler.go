package handlers

import (
	"net/http"

	"github.com/anonto42/campus-social/backend/internal/models"
	"github.com/anonto42/campus-social/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// PersonaHandler manages the caller's own persona. Every response is
// addressed to the owner only.
type PersonaHandler struct {
	personas *services.PersonaService
}

func NewPersonaHandler(personas *services.PersonaService) *PersonaHandler {
	return &PersonaHandler{personas: personas}
}

func (h *PersonaHandler) RegisterPersonaRoutes(g *echo.Group) {
	g.POST("/persona", h.CreatePersona)
	g.PUT("/persona", h.UpdatePersona)
	g.GET("/persona", h.GetPersona)
	g.GET("/persona/eligibility", h.GetEligibility)
}

func (h *PersonaHandler) CreatePersona(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req models.CreatePersonaRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	profile, err := h.personas.Create(c.Request().Context(), user.ID, req)
	if err != nil {
		return err
	}
	return success(c, http.StatusCreated, profile)
}

func (h *PersonaHandler) UpdatePersona(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req models.UpdatePersonaRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	profile, err := h.personas.Update(c.Request().Context(), user.ID, req)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, profile)
}

func (h *PersonaHandler) GetPersona(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	profile, err := h.personas.Get(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, profile)
}

// GetEligibility reports whether the caller may post as their persona.
func (h *PersonaHandler) GetEligibility(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	eligibility, err := h.personas.Eligibility(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, eligibility)
}
