package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		development bool
		wantStatus  int
		wantCode    string
		wantMessage string
		wantDetails bool
	}{
		{
			name:        "api error",
			err:         NewValidationError("No file part"),
			wantStatus:  http.StatusBadRequest,
			wantCode:    "VALIDATION_ERROR",
			wantMessage: "No file part",
		},
		{
			name:        "echo error",
			err:         echo.ErrStatusRequestEntityTooLarge,
			wantStatus:  http.StatusRequestEntityTooLarge,
			wantCode:    "HTTP_ERROR",
			wantMessage: "Request Entity Too Large",
		},
		{
			name:        "unknown error in production",
			err:         errors.New("disk on fire"),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    "UNKNOWN_ERROR",
			wantMessage: "Internal server error",
		},
		{
			name:        "unknown error in development",
			err:         errors.New("disk on fire"),
			development: true,
			wantStatus:  http.StatusInternalServerError,
			wantCode:    "UNKNOWN_ERROR",
			wantMessage: "Internal server error",
			wantDetails: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			NewErrorHandler(discardLogger(), tt.development)(tt.err, c)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body["code"])
			assert.Equal(t, tt.wantMessage, body["error"])
			if tt.wantDetails {
				assert.Equal(t, "disk on fire", body["details"])
			} else {
				assert.NotContains(t, body, "details")
			}
		})
	}
}

func TestAPIError_Error(t *testing.T) {
	err := NewStorageError("Failed to upload to S3", errors.New("timeout"))
	assert.Equal(t, "STORAGE_ERROR: Failed to upload to S3", err.Error())
	assert.Equal(t, "timeout", err.Details)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
}
