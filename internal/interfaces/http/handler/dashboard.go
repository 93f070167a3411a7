package handler

import (
	"github.com/doorsets/backend/internal/application/reporting"
	"github.com/gin-gonic/gin"
)

// DashboardHandler serves the dashboard figures
type DashboardHandler struct {
	BaseHandler
	dashboardService *reporting.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService *reporting.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Summary godoc
// @Summary      Dashboard figures
// @Description  Item and low stock counts, open pick lists and how many have stock warnings, open purchase orders and the inventory value.
// @Tags         dashboard
// @Produce      json
// @Success      200 {object} dto.Response{data=reporting.SummaryResponse}
// @Security     BearerAuth
// @Router       /Dashboard/Summary [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	summary, err := h.dashboardService.Summary(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}
