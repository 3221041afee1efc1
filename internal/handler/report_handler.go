package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"firescribe/internal/service"
)

// ReportHandler handles report endpoints.
type ReportHandler struct {
	reportService service.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// Completeness handles GET /api/v1/reports/completeness
// @Summary      Completeness audit report
// @Description  Aggregates per-field fill rates and the average completeness score over stored incidents
// @Tags         reports
// @Produce      json
// @Param        since query string false "Start date (YYYY-MM-DD); default covers all incidents"
// @Success      200 {object} APIResponse{data=domain.CompletenessReport}
// @Failure      400 {object} APIResponse
// @Failure      500 {object} APIResponse
// @Security     BearerAuth
// @Router       /reports/completeness [get]
func (h *ReportHandler) Completeness(c *gin.Context) {
	var since time.Time
	if s := c.Query("since"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid 'since' date: must be YYYY-MM-DD")
			return
		}
		since = t
	}

	report, err := h.reportService.CompletenessReport(c.Request.Context(), since)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, report)
}
