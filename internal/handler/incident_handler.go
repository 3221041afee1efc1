package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"firescribe/internal/csvexport"
	"firescribe/internal/domain"
	"firescribe/internal/fieldset"
	"firescribe/internal/service"
	"firescribe/internal/xlsxexport"
)

// IncidentDetail is an incident plus optional display annotations.
type IncidentDetail struct {
	*domain.Incident
	// Annotated maps field names to values with missing fields replaced by a
	// visible placeholder. Display only, never stored.
	Annotated map[string]string `json:"annotated,omitempty"`
}

// IncidentHandler handles incident read, delete, and export endpoints.
type IncidentHandler struct {
	incidentService service.IncidentService
	profiles        *fieldset.Registry
}

// NewIncidentHandler creates a new IncidentHandler.
func NewIncidentHandler(incidentService service.IncidentService, profiles *fieldset.Registry) *IncidentHandler {
	return &IncidentHandler{incidentService: incidentService, profiles: profiles}
}

// List handles GET /api/v1/incidents
// @Summary      List incidents
// @Description  Lists stored incidents, newest first
// @Tags         incidents
// @Produce      json
// @Param        offset query int false "Pagination offset" default(0)
// @Param        limit query int false "Pagination limit" default(20)
// @Success      200 {object} APIResponse{data=[]domain.Incident,meta=PagMeta}
// @Failure      400 {object} APIResponse
// @Security     BearerAuth
// @Router       /incidents [get]
func (h *IncidentHandler) List(c *gin.Context) {
	offset, limit, err := parsePagination(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	incidents, total, err := h.incidentService.List(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, incidents, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/incidents/:id
// @Summary      Get an incident
// @Description  Returns one incident; annotate=true adds placeholder-marked values for missing fields
// @Tags         incidents
// @Produce      json
// @Param        id path string true "Incident UUID"
// @Param        annotate query bool false "Include annotated field values"
// @Success      200 {object} APIResponse{data=IncidentDetail}
// @Failure      404 {object} APIResponse
// @Security     BearerAuth
// @Router       /incidents/{id} [get]
func (h *IncidentHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid incident id")
		return
	}

	incident, err := h.incidentService.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	detail := IncidentDetail{Incident: incident}
	if c.Query("annotate") == "true" {
		detail.Annotated = domain.AnnotatedValues(incident)
	}

	RespondOK(c, detail)
}

// Delete handles DELETE /api/v1/incidents/:id
// @Summary      Delete an incident
// @Description  Removes an incident and its archived audio
// @Tags         incidents
// @Produce      json
// @Param        id path string true "Incident UUID"
// @Success      200 {object} APIResponse
// @Failure      403 {object} APIResponse
// @Failure      404 {object} APIResponse
// @Security     BearerAuth
// @Router       /incidents/{id} [delete]
func (h *IncidentHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid incident id")
		return
	}

	if err := h.incidentService.Delete(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "incident deleted"})
}

// AudioURL handles GET /api/v1/incidents/:id/audio
// @Summary      Get a playback URL for archived audio
// @Description  Returns a time-limited URL for the incident's source recording
// @Tags         incidents
// @Produce      json
// @Param        id path string true "Incident UUID"
// @Success      200 {object} APIResponse
// @Failure      404 {object} APIResponse
// @Security     BearerAuth
// @Router       /incidents/{id}/audio [get]
func (h *IncidentHandler) AudioURL(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid incident id")
		return
	}

	url, err := h.incidentService.AudioURL(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"url": url})
}

// Export handles GET /api/v1/incidents/export
// @Summary      Download an incident export
// @Description  Streams all stored incidents as CSV or XLSX
// @Tags         incidents
// @Produce      text/csv
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        format query string false "Export format" Enums(csv, xlsx) default(csv)
// @Param        profile query string false "Field profile for the exported columns"
// @Success      200 {file} file
// @Failure      400 {object} APIResponse
// @Security     BearerAuth
// @Router       /incidents/export [get]
func (h *IncidentHandler) Export(c *gin.Context) {
	format := domain.ExportFormat(c.DefaultQuery("format", string(domain.ExportCSV)))
	if format != domain.ExportCSV && format != domain.ExportXLSX {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "format must be csv or xlsx")
		return
	}

	profile, err := h.profiles.Get(c.Query("profile"))
	if err != nil {
		HandleError(c, err)
		return
	}

	incidents, err := h.incidentService.ListAll(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}

	fileName := csvexport.BuildFilename("incident_export", string(format))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))

	if format == domain.ExportXLSX {
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		if err := xlsxexport.Write(c.Writer, incidents, profile.Fields); err != nil {
			HandleError(c, err)
		}
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	if _, err := c.Writer.Write(csvexport.BOM); err != nil {
		return
	}
	w := csvexport.NewWriter(c.Writer)
	if err := w.WriteHeader(profile.Fields); err != nil {
		return
	}
	if err := w.WriteIncidents(incidents, profile.Fields); err != nil {
		return
	}
	w.Flush()
}

// parsePagination reads offset and limit query parameters with defaults.
func parsePagination(c *gin.Context) (offset, limit int, err error) {
	offset, limit = 0, 20

	if s := c.Query("offset"); s != "" {
		offset, err = strconv.Atoi(s)
		if err != nil || offset < 0 {
			return 0, 0, fmt.Errorf("invalid 'offset': must be a non-negative integer")
		}
	}
	if s := c.Query("limit"); s != "" {
		limit, err = strconv.Atoi(s)
		if err != nil || limit < 1 || limit > 200 {
			return 0, 0, fmt.Errorf("invalid 'limit': must be between 1 and 200")
		}
	}
	return offset, limit, nil
}
