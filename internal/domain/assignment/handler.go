package assignment

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medilab/lims/internal/platform/auth"
	"github.com/medilab/lims/pkg/apperror"
	"github.com/medilab/lims/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	manage := api.Group("", auth.RequireRole("admin", "receptionist"))
	manage.POST("/patients/:patientId/assignments/auto", h.AutoAssign)
	manage.POST("/patients/:patientId/assignments", h.ManualAssign)
	manage.POST("/assignments/:id/reassign", h.Reassign)

	read := api.Group("", auth.RequireRole("admin", "technician", "doctor", "receptionist"))
	read.GET("/assignments/:id", h.Get)
	read.GET("/patients/:patientId/assignments", h.ListByPatient)
	read.GET("/technicians/:adminId/assignments", h.ListByTechnician)

	work := api.Group("", auth.RequireRole("admin", "technician"))
	work.PATCH("/assignments/:id/status", h.UpdateStatus)
}

type autoAssignRequest struct {
	// Overrides maps a test id to an explicitly chosen technician id.
	Overrides map[string]string `json:"overrides" validate:"omitempty,dive,keys,uuid,endkeys,uuid"`
}

func (h *Handler) AutoAssign(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patientId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	var req autoAssignRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	overrides := make(map[uuid.UUID]uuid.UUID, len(req.Overrides))
	for rawTestID, rawAdminID := range req.Overrides {
		testID, err := uuid.Parse(rawTestID)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid override test id")
		}
		adminID, err := uuid.Parse(rawAdminID)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid override technician id")
		}
		overrides[testID] = adminID
	}

	created, err := h.svc.AutoAssign(c.Request().Context(), patientID, overrides, actorID(c))
	if err != nil {
		return apperror.ToHTTP(err)
	}
	if created == nil {
		created = []*Assignment{}
	}
	return c.JSON(http.StatusCreated, created)
}

type manualAssignRequest struct {
	TestID  string  `json:"test_id" validate:"required,uuid"`
	AdminID *string `json:"admin_id" validate:"omitempty,uuid"`
}

func (h *Handler) ManualAssign(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patientId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	var req manualAssignRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	testID, err := uuid.Parse(req.TestID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid test id")
	}
	var adminID *uuid.UUID
	if req.AdminID != nil {
		id, err := uuid.Parse(*req.AdminID)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid technician id")
		}
		adminID = &id
	}

	a, err := h.svc.ManualAssign(c.Request().Context(), patientID, testID, adminID, actorID(c))
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, a)
}

type reassignRequest struct {
	AdminID string `json:"admin_id" validate:"required,uuid"`
}

func (h *Handler) Reassign(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req reassignRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	adminID, err := uuid.Parse(req.AdminID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid technician id")
	}

	a, err := h.svc.Reassign(c.Request().Context(), id, adminID, actorID(c))
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, a)
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending assigned in_progress completed submitted"`
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	actor, err := uuid.Parse(actorID(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unknown actor")
	}

	a, err := h.svc.UpdateStatus(c.Request().Context(), id, req.Status, actor)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	a, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) ListByPatient(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patientId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	items, err := h.svc.ListByPatient(c.Request().Context(), patientID)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	if items == nil {
		items = []*Assignment{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) ListByTechnician(c echo.Context) error {
	adminID, err := uuid.Parse(c.Param("adminId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid technician id")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByTechnician(c.Request().Context(), adminID, c.QueryParam("status"), pg.Limit, pg.Offset)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func actorID(c echo.Context) string {
	return auth.UserIDFromContext(c.Request().Context())
}
