package identity

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/careconnect/careconnect-api/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	me := api.Group("/me", auth.RequireRole(auth.RolePatient))
	me.GET("/profile", h.GetProfile)
	me.PUT("/profile", h.UpdateProfile)
}

func (h *Handler) GetProfile(c echo.Context) error {
	actor := auth.ActorFromContext(c.Request().Context())
	p, err := h.svc.GetProfile(c.Request().Context(), actor)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "profile not found")
		case errors.Is(err, ErrStoreUnavailable):
			return echo.NewHTTPError(http.StatusServiceUnavailable, "patient store unavailable")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) UpdateProfile(c echo.Context) error {
	actor := auth.ActorFromContext(c.Request().Context())

	var p Patient
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.UpdateProfile(c.Request().Context(), actor, &p); err != nil {
		if errors.Is(err, ErrStoreUnavailable) {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "patient store unavailable")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, p)
}
