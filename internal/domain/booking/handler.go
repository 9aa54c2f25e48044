package booking

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/careconnect/careconnect-api/internal/platform/auth"
	"github.com/careconnect/careconnect-api/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/bookings", h.Create, auth.RequireRole(auth.RolePatient))
	api.GET("/bookings", h.List, auth.RequireRole(auth.RolePatient, auth.RoleDoctor))
	api.GET("/bookings/:id", h.Get)
	api.POST("/bookings/:id/respond", h.Respond, auth.RequireRole(auth.RoleDoctor))
	api.POST("/bookings/:id/complete", h.Complete, auth.RequireRole(auth.RoleDoctor))
	api.POST("/bookings/:id/cancel", h.Cancel, auth.RequireRole(auth.RolePatient))
}

func (h *Handler) Create(c echo.Context) error {
	actor := auth.ActorFromContext(c.Request().Context())

	var req CreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	b, err := h.svc.Create(c.Request().Context(), actor, &req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, b)
}

// listResponse adds derived per-status counts to the standard page
// envelope.
type listResponse struct {
	*pagination.Response
	Counts map[Status]int `json:"counts"`
}

func (h *Handler) List(c echo.Context) error {
	actor := auth.ActorFromContext(c.Request().Context())
	pg := pagination.FromContext(c)

	var filter *Status
	if raw := c.QueryParam("status"); raw != "" {
		st := Status(raw)
		filter = &st
	}

	var (
		items []*Booking
		total int
		err   error
	)
	switch actor.Role {
	case auth.RolePatient:
		items, total, err = h.svc.ListForPatient(c.Request().Context(), actor, filter, pg.Limit, pg.Offset)
	case auth.RoleDoctor:
		items, total, err = h.svc.ListForDoctor(c.Request().Context(), actor, filter, pg.Limit, pg.Offset)
	default:
		return echo.NewHTTPError(http.StatusForbidden, "no booking view for this role")
	}
	if err != nil {
		return httpError(err)
	}

	counts, err := h.svc.StatusCounts(c.Request().Context(), actor)
	if err != nil {
		return httpError(err)
	}

	if items == nil {
		items = []*Booking{}
	}
	return c.JSON(http.StatusOK, listResponse{
		Response: pagination.NewResponse(items, total, pg),
		Counts:   counts,
	})
}

func (h *Handler) Get(c echo.Context) error {
	actor := auth.ActorFromContext(c.Request().Context())
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	b, err := h.svc.Get(c.Request().Context(), actor, id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, b)
}

type respondRequest struct {
	Status         string `json:"status"`
	DoctorResponse string `json:"doctor_response"`
	MeetingLink    string `json:"meeting_link"`
}

func (h *Handler) Respond(c echo.Context) error {
	actor := auth.ActorFromContext(c.Request().Context())
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req respondRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	b, err := h.svc.Respond(c.Request().Context(), actor, id, Status(req.Status), req.DoctorResponse, req.MeetingLink)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *Handler) Complete(c echo.Context) error {
	actor := auth.ActorFromContext(c.Request().Context())
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	b, err := h.svc.Complete(c.Request().Context(), actor, id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, b)
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) Cancel(c echo.Context) error {
	actor := auth.ActorFromContext(c.Request().Context())
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req cancelRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	b, err := h.svc.Cancel(c.Request().Context(), actor, id, req.Reason)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, b)
}

// httpError maps domain errors onto HTTP statuses so clients can tell "fix
// your input" (422) from "try again later" (503) from "not allowed" (403).
func httpError(err error) error {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, map[string]interface{}{
			"message": ve.Error(),
			"reasons": ve.Reasons,
		})
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "booking not found")
	case errors.Is(err, ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, "not permitted for this caller")
	case errors.Is(err, ErrInvalidTransition):
		return echo.NewHTTPError(http.StatusConflict, "transition not permitted from current status")
	case errors.Is(err, ErrStoreUnavailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "booking store unavailable, retry later")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
