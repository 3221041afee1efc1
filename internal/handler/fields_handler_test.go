package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firescribe/internal/domain"
	"firescribe/internal/fieldset"
	"firescribe/internal/handler"
)

func TestFieldsHandler_List_BuiltinOnly(t *testing.T) {
	registry, err := fieldset.NewRegistry("")
	require.NoError(t, err)
	h := handler.NewFieldsHandler(registry)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/fields", http.NoBody)

	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool                  `json:"success"`
		Data    []domain.FieldProfile `json:"data"`
	}
	err = json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, fieldset.DefaultProfileName, resp.Data[0].Name)
	assert.Equal(t, fieldset.NERISFields, resp.Data[0].Fields)
}

func TestFieldsHandler_List_IncludesFileProfiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	yaml := "profiles:\n  - name: quicklook\n    fields:\n      - incident_final_type\n      - unit_response\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	registry, err := fieldset.NewRegistry(path)
	require.NoError(t, err)
	h := handler.NewFieldsHandler(registry)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/fields", http.NoBody)

	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []domain.FieldProfile `json:"data"`
	}
	err = json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, fieldset.DefaultProfileName, resp.Data[0].Name)
	assert.Equal(t, "quicklook", resp.Data[1].Name)
	assert.Equal(t, []string{"incident_final_type", "unit_response"}, resp.Data[1].Fields)
}
