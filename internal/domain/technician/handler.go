package technician

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medilab/lims/internal/platform/auth"
	"github.com/medilab/lims/pkg/apperror"
)

type Handler struct {
	selector *Selector
}

func NewHandler(selector *Selector) *Handler {
	return &Handler{selector: selector}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole("admin", "receptionist"))
	read.GET("/technicians/ranked", h.RankTechnicians)
}

// RankTechnicians previews selection: the full candidate list for a
// capability, least-loaded first, for manual-assignment UIs.
func (h *Handler) RankTechnicians(c echo.Context) error {
	adminRole := c.QueryParam("admin_role")
	if adminRole == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "admin_role is required")
	}

	var scope *uuid.UUID
	if raw := c.QueryParam("project_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid project_id")
		}
		scope = &id
	}

	ranked, err := h.selector.RankTechnicians(c.Request().Context(), adminRole, scope)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	if ranked == nil {
		ranked = []*RankedTechnician{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"data": ranked})
}
