package handlers

import (
	"net/http"
	"strconv"

	"github.com/anonto42/campus-social/backend/internal/apperr"
	"github.com/anonto42/campus-social/backend/internal/middleware"
	"github.com/anonto42/campus-social/backend/internal/models"
	"github.com/anonto42/campus-social/backend/internal/services"
	"github.com/labstack/echo/v4"
)

func success(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, echo.Map{"success": true, "data": data})
}

func successPage(c echo.Context, data interface{}, meta models.PageMeta) error {
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": data, "meta": meta})
}

func feedPage(c echo.Context, page *models.FeedPage) error {
	return successPage(c, echo.Map{"posts": page.Posts}, page.Meta)
}

// ErrorHandler renders every error as {success:false,error:{code,message}}.
// Internal causes are logged and never returned.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status, code, message := http.StatusInternalServerError, "internal", "internal server error"

	if ae, ok := apperr.As(err); ok {
		status, code, message = statusFor(ae.Kind), ae.Code, ae.Message
		if ae.Kind == apperr.KindInternal {
			c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Request().URL.Path, err)
		}
	} else if he, ok := err.(*echo.HTTPError); ok {
		status, code = he.Code, "http_error"
		message = http.StatusText(he.Code)
		if m, ok := he.Message.(string); ok {
			message = m
		}
	} else {
		c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Request().URL.Path, err)
	}

	body := echo.Map{"success": false, "error": echo.Map{"code": code, "message": message}}
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		c.Logger().Error(err)
	}
}

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindRateLimited:
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

// bindAndValidate decodes the body into req and runs the echo validator.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return apperr.Validation("invalid request payload")
	}
	return c.Validate(req)
}

func currentUser(c echo.Context) (*models.User, error) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return nil, apperr.ErrUnauthorized
	}
	return user, nil
}

func parseUintParam(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validation("invalid " + name)
	}
	return uint(id), nil
}

func pagination(c echo.Context) models.Pagination {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	return models.NewPagination(page, limit)
}

// actorResolver picks the acting identity for a request.
type actorResolver struct {
	resolver *services.ActorResolver
}

// acting resolves the actor the caller acts as: an explicit actor id wins,
// then as_persona, then the real identity. Banned actors are refused.
func (a actorResolver) acting(c echo.Context, actorID uint, asPersona bool) (*models.User, *models.Actor, error) {
	user, err := currentUser(c)
	if err != nil {
		return nil, nil, err
	}
	ctx := c.Request().Context()
	var actor *models.Actor
	if actorID != 0 {
		actor, err = a.resolver.ResolveOwned(ctx, user.ID, actorID)
	} else {
		actor, err = a.resolver.Resolve(ctx, user.ID, asPersona)
	}
	if err != nil {
		return nil, nil, err
	}
	banned, err := a.resolver.IsBanned(ctx, actor)
	if err != nil {
		return nil, nil, err
	}
	if banned {
		return nil, nil, apperr.ErrForbidden.WithMessage("this identity is banned")
	}
	return user, actor, nil
}

// actingFromQuery reads actor_id / as_persona from the query string.
func (a actorResolver) actingFromQuery(c echo.Context) (*models.User, *models.Actor, error) {
	var actorID uint
	if raw := c.QueryParam("actor_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, nil, apperr.Validation("invalid actor_id")
		}
		actorID = uint(id)
	}
	asPersona, _ := strconv.ParseBool(c.QueryParam("as_persona"))
	return a.acting(c, actorID, asPersona)
}

// viewer builds the viewer for read endpoints. Anonymous requests get an
// empty viewer.
func (a actorResolver) viewer(c echo.Context) (services.Viewer, error) {
	if _, ok := middleware.CurrentUser(c); !ok {
		return services.Viewer{}, nil
	}
	user, actor, err := a.actingFromQuery(c)
	if err != nil {
		return services.Viewer{}, err
	}
	return services.Viewer{Actor: actor, IsAdmin: user.IsAdmin}, nil
}

type actingBody struct {
	ActorID   uint `json:"actor_id,omitempty"`
	AsPersona bool `json:"as_persona,omitempty"`
}

// actingFromRequest reads the acting identity from an optional JSON body,
// falling back to the query string.
func (a actorResolver) actingFromRequest(c echo.Context) (*models.User, *models.Actor, error) {
	var body actingBody
	if c.Request().ContentLength > 0 {
		if err := c.Bind(&body); err != nil {
			return nil, nil, apperr.Validation("invalid request payload")
		}
	}
	if body.ActorID != 0 || body.AsPersona {
		return a.acting(c, body.ActorID, body.AsPersona)
	}
	return a.actingFromQuery(c)
}
