package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shefo-AMI/PropertyPro-UAE/internal/error/apperr"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/error/code"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func render(t *testing.T, err error) (int, Response) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/units/u-1", nil)

	Error(c, err)

	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    int
		message string
	}{
		{"validation", apperr.Validation("rent must be non-negative"), http.StatusBadRequest, code.ErrValidation, "rent must be non-negative"},
		{"not found", apperr.NotFound("unit", "u-1"), http.StatusNotFound, code.ErrNotFound, "unit not found"},
		{"forbidden looks like not found", apperr.Forbidden("unit", "u-1"), http.StatusNotFound, code.ErrNotFound, "unit not found"},
		{"storage", apperr.Storage("get", "unit", "u-1", errors.New("disk full")), http.StatusInternalServerError, code.ErrDatabase, "storage error"},
		{"blob storage", apperr.BlobStorage("put", "unit/u-1/a.pdf", errors.New("disk full")), http.StatusInternalServerError, code.ErrBlobStorage, "file storage error"},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, code.ErrUnknown, "unknown error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := render(t, tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, body.Code)
			assert.Equal(t, tt.message, body.Message)
			assert.NotContains(t, body.Message, "disk full")
		})
	}
}
