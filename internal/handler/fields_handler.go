package handler

import (
	"github.com/gin-gonic/gin"

	"firescribe/internal/fieldset"
)

// FieldsHandler handles field profile endpoints.
type FieldsHandler struct {
	profiles *fieldset.Registry
}

// NewFieldsHandler creates a new FieldsHandler.
func NewFieldsHandler(profiles *fieldset.Registry) *FieldsHandler {
	return &FieldsHandler{profiles: profiles}
}

// List handles GET /api/v1/fields
// @Summary      List field profiles
// @Description  Returns the builtin and file-provided field profiles with their field names in order
// @Tags         fields
// @Produce      json
// @Success      200 {object} APIResponse{data=[]domain.FieldProfile}
// @Security     BearerAuth
// @Router       /fields [get]
func (h *FieldsHandler) List(c *gin.Context) {
	RespondOK(c, h.profiles.List())
}
