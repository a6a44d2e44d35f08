package result

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medilab/lims/internal/platform/auth"
	"github.com/medilab/lims/pkg/apperror"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	submit := api.Group("", auth.RequireRole("admin", "technician"))
	submit.POST("/assignments/:assignmentId/result", h.SubmitResult)

	read := api.Group("", auth.RequireRole("admin", "technician", "doctor"))
	read.GET("/assignments/:assignmentId/result", h.GetByAssignment)

	review := api.Group("", auth.RequireRole("admin", "doctor"))
	review.POST("/results/:id/review", h.ReviewResult)
}

type submitResultRequest struct {
	Values map[string]interface{} `json:"values" validate:"required"`
}

func (h *Handler) SubmitResult(c echo.Context) error {
	assignmentID, err := uuid.Parse(c.Param("assignmentId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid assignment id")
	}
	var req submitResultRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	actor, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unknown actor")
	}

	tr, err := h.svc.SubmitResult(c.Request().Context(), assignmentID, req.Values, actor)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, tr)
}

func (h *Handler) GetByAssignment(c echo.Context) error {
	assignmentID, err := uuid.Parse(c.Param("assignmentId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid assignment id")
	}
	tr, err := h.svc.GetByAssignment(c.Request().Context(), assignmentID)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, tr)
}

type reviewResultRequest struct {
	Notes *string `json:"notes" validate:"omitempty,max=2000"`
}

func (h *Handler) ReviewResult(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req reviewResultRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	reviewer, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unknown actor")
	}

	tr, err := h.svc.ReviewResult(c.Request().Context(), id, req.Notes, reviewer)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, tr)
}
