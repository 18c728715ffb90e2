package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ListAnomalies returns the company's anomaly alerts, newest first.
func (h *Handler) ListAnomalies(c *gin.Context) {
	anomalies, err := h.anomalies.ListByCompany(c.Request.Context(), pathCompanyID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, anomalies)
}

// DismissAnomaly hard-deletes a single alert. The extra company match
// guards against a crafted anomaly id belonging to another tenant.
func (h *Handler) DismissAnomaly(c *gin.Context) {
	anomalyID, err := strconv.ParseInt(c.Param("anomalyId"), 10, 64)
	if err != nil {
		c.Status(http.StatusNoContent)
		return
	}

	companyID := pathCompanyID(c)
	anomaly, err := h.anomalies.FindByID(c.Request.Context(), anomalyID)
	if err != nil {
		respondError(c, err)
		return
	}
	if anomaly != nil && anomaly.CompanyID == companyID {
		if err := h.anomalies.Delete(c.Request.Context(), anomalyID); err != nil {
			respondError(c, err)
			return
		}
	}
	c.Status(http.StatusNoContent)
}
