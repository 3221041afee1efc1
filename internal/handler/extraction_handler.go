package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"firescribe/internal/service"
)

// ExtractRequest is the body for a text-narrative extraction. Fields wins
// over Profile when both are set; with neither, the default profile applies.
type ExtractRequest struct {
	Transcript string   `json:"transcript" binding:"required"`
	Fields     []string `json:"fields"`
	Profile    string   `json:"profile"`
}

// ExtractionHandler handles extraction endpoints.
type ExtractionHandler struct {
	extractionService service.ExtractionService
}

// NewExtractionHandler creates a new ExtractionHandler.
func NewExtractionHandler(extractionService service.ExtractionService) *ExtractionHandler {
	return &ExtractionHandler{extractionService: extractionService}
}

// ExtractText handles POST /api/v1/extractions
// @Summary      Extract fields from a narrative
// @Description  Runs the extraction pipeline on a dispatch narrative and stores the resulting incident
// @Tags         extractions
// @Accept       json
// @Produce      json
// @Param        request body ExtractRequest true "Narrative and requested fields"
// @Success      201 {object} APIResponse{data=domain.Incident}
// @Failure      400 {object} APIResponse
// @Failure      422 {object} APIResponse "Model output could not be parsed"
// @Failure      502 {object} APIResponse "Generation backend unavailable"
// @Failure      504 {object} APIResponse "Generation backend timed out"
// @Security     BearerAuth
// @Router       /extractions [post]
func (h *ExtractionHandler) ExtractText(c *gin.Context) {
	var req ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	incident, err := h.extractionService.ExtractFromText(c.Request.Context(), &service.ExtractTextInput{
		Narrative: req.Transcript,
		Fields:    req.Fields,
		Profile:   req.Profile,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, incident)
}

// ExtractAudio handles POST /api/v1/extractions/audio
// @Summary      Extract fields from an audio recording
// @Description  Transcribes an uploaded dispatch recording, then runs the extraction pipeline
// @Tags         extractions
// @Accept       multipart/form-data
// @Produce      json
// @Param        audio formData file true "Audio recording (wav, mp3, m4a, ogg, webm, flac)"
// @Param        fields formData []string false "Requested field names" collectionFormat(multi)
// @Param        profile formData string false "Field profile name"
// @Success      201 {object} APIResponse{data=domain.Incident}
// @Failure      400 {object} APIResponse
// @Failure      413 {object} APIResponse "Audio too large"
// @Failure      502 {object} APIResponse "Transcription or generation backend unavailable"
// @Security     BearerAuth
// @Router       /extractions/audio [post]
func (h *ExtractionHandler) ExtractAudio(c *gin.Context) {
	file, header, err := c.Request.FormFile("audio")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_AUDIO", "audio field is required")
		return
	}
	defer func() { _ = file.Close() }()

	audio, err := io.ReadAll(file)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_AUDIO", "could not read audio upload")
		return
	}

	contentType := header.Header.Get("Content-Type")

	incident, err := h.extractionService.ExtractFromAudio(c.Request.Context(), &service.ExtractAudioInput{
		Audio:       audio,
		ContentType: contentType,
		FileName:    header.Filename,
		Fields:      c.PostFormArray("fields"),
		Profile:     c.PostForm("profile"),
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, incident)
}
