package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// PnLReport serves the profit-and-loss report for one period key:
// "month", "quarter", "year", or a specific "YYYY-MM".
func (h *Handler) PnLReport(c *gin.Context) {
	period := c.DefaultQuery("period", "month")

	report, err := h.reports.PnL(c.Request.Context(), pathCompanyID(c), period)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
