package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"firescribe/internal/domain"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PagMeta holds pagination metadata.
type PagMeta struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondCreated sends a 201 success response.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// RespondPaginated sends a 200 success response with pagination metadata.
func RespondPaginated(c *gin.Context, data interface{}, meta PagMeta) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: &meta})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, domain.ErrNoArchivedAudio):
		return http.StatusNotFound, "NO_ARCHIVED_AUDIO", "incident has no archived audio"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "FORBIDDEN", "forbidden"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid credentials"
	case errors.Is(err, domain.ErrNoFieldsRequested):
		return http.StatusBadRequest, "NO_FIELDS_REQUESTED", "at least one field must be requested"
	case errors.Is(err, domain.ErrDuplicateField):
		return http.StatusBadRequest, "DUPLICATE_FIELD", "requested field list contains a duplicate name"
	case errors.Is(err, domain.ErrUnknownProfile):
		return http.StatusBadRequest, "UNKNOWN_PROFILE", "unknown field profile"
	case errors.Is(err, domain.ErrEmptyNarrative):
		return http.StatusBadRequest, "EMPTY_NARRATIVE", "narrative text is empty"
	case errors.Is(err, domain.ErrEmptyAudio):
		return http.StatusBadRequest, "EMPTY_AUDIO", "audio upload is empty"
	case errors.Is(err, domain.ErrUnsupportedAudio):
		return http.StatusBadRequest, "UNSUPPORTED_AUDIO_TYPE", "unsupported audio content type"
	case errors.Is(err, domain.ErrAudioTooLarge):
		return http.StatusRequestEntityTooLarge, "AUDIO_TOO_LARGE", "audio exceeds maximum allowed size"
	case errors.Is(err, domain.ErrBackendTimeout):
		return http.StatusGatewayTimeout, "BACKEND_TIMEOUT", "generation backend timed out"
	case errors.Is(err, domain.ErrBackendUnavailable):
		return http.StatusBadGateway, "BACKEND_UNAVAILABLE", "generation backend unavailable"
	case errors.Is(err, domain.ErrUnrecoverableOutput):
		return http.StatusUnprocessableEntity, "UNRECOVERABLE_OUTPUT", "model output could not be parsed as a JSON object"
	case errors.Is(err, domain.ErrTranscriptionFailed):
		return http.StatusBadGateway, "TRANSCRIPTION_FAILED", "audio transcription failed"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		requestID, _ := c.Get("request_id")
		log.Printf("[%s] internal error: %v", requestID, err)
	}
	RespondError(c, status, code, msg)
}
