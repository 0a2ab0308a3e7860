package vitals

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinicore/clinicore/internal/platform/auth"
	"github.com/clinicore/clinicore/pkg/pagination"
)

type Handler struct {
	svc     *Service
	denials auth.DenialRecorder
}

func NewHandler(svc *Service, denials auth.DenialRecorder) *Handler {
	return &Handler{svc: svc, denials: denials}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/patients/:patientId/vitals", h.ListForPatient, auth.RequirePermission("vitals.read", h.denials))
	api.GET("/vitals/:id", h.Get, auth.RequirePermission("vitals.read", h.denials))
	api.POST("/vitals", h.Record, auth.RequirePermission("vitals.write", h.denials))
}

func (h *Handler) Record(c echo.Context) error {
	var v Reading
	if err := c.Bind(&v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if v.PatientID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "patientId is required")
	}

	recordedBy, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	created, err := h.svc.Record(c.Request().Context(), &v, recordedBy)
	if err != nil {
		if errors.Is(err, ErrUnknownPatient) {
			return echo.NewHTTPError(http.StatusNotFound, "patient not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	v, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "vitals reading not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "could not load vitals")
	}
	return c.JSON(http.StatusOK, v)
}

func (h *Handler) ListForPatient(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patientId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	pg := pagination.FromContext(c)
	readings, total, err := h.svc.ListForPatient(c.Request().Context(), patientID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not list vitals")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(readings, total, pg.Limit, pg.Offset))
}
