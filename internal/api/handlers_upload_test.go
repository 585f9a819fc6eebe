// handlers_upload_test.go - Tests for the upload handler
package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/filechat/backend/internal/models"
	"github.com/filechat/backend/internal/storage"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadHandler_HandleUpload(t *testing.T) {
	tests := []struct {
		name       string
		field      string
		filename   string
		wantStatus int
		wantErr    string
		wantName   string
	}{
		{name: "image", field: "file", filename: "cat.png", wantStatus: http.StatusOK, wantName: "cat.png"},
		{name: "sanitized name", field: "file", filename: "../../My Photo.JPG", wantStatus: http.StatusOK, wantName: "My_Photo.JPG"},
		{name: "video", field: "file", filename: "clip.mov", wantStatus: http.StatusOK, wantName: "clip.mov"},
		{name: "disallowed extension", field: "file", filename: "evil.exe", wantStatus: http.StatusBadRequest, wantErr: "File type not allowed"},
		{name: "no extension", field: "file", filename: "README", wantStatus: http.StatusBadRequest, wantErr: "File type not allowed"},
		{name: "wrong field", field: "upload", filename: "cat.png", wantStatus: http.StatusBadRequest, wantErr: "No file part"},
		{name: "empty filename", field: "file", filename: "", wantStatus: http.StatusBadRequest, wantErr: "No selected file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files, store := newMockDispatcher(models.BackendLocal)
			handler := NewUploadHandler(files, discardLogger())

			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(newUploadRequest(t, tt.field, tt.filename, []byte("content")), rec)

			err := handler.HandleUpload(c)

			if tt.wantErr != "" {
				requireAPIError(t, err, tt.wantStatus, tt.wantErr)
				assert.Zero(t, store.Count(), "nothing written on rejection")
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, rec.Code)

			var resp models.UploadResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, "File uploaded successfully", resp.Message)
			assert.Equal(t, tt.wantName, resp.Filename)
			assert.Nil(t, resp.S3URL)
			assert.Contains(t, rec.Body.String(), `"s3_url":null`)

			data, ok := store.Data(tt.wantName)
			require.True(t, ok)
			assert.Equal(t, "content", string(data))
		})
	}
}

func TestUploadHandler_NotMultipart(t *testing.T) {
	files, _ := newMockDispatcher(models.BackendLocal)
	handler := NewUploadHandler(files, discardLogger())

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(`{"file":"x"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())

	requireAPIError(t, handler.HandleUpload(c), http.StatusBadRequest, "No file part")
}

func TestUploadHandler_RemoteMode(t *testing.T) {
	files, store := newMockDispatcher(models.BackendRemote)
	handler := NewUploadHandler(files, discardLogger())

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(newUploadRequest(t, "file", "doc.pdf", []byte("%PDF")), rec)

	require.NoError(t, handler.HandleUpload(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp models.UploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.S3URL)
	assert.Equal(t, store.ResolveURL("doc.pdf"), *resp.S3URL)
}

func TestUploadHandler_StorageFailure(t *testing.T) {
	tests := []struct {
		name    string
		kind    models.BackendKind
		wantMsg string
	}{
		{name: "remote", kind: models.BackendRemote, wantMsg: "Failed to upload to S3"},
		{name: "local", kind: models.BackendLocal, wantMsg: "Failed to save file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files, store := newMockDispatcher(tt.kind)
			store.FailSave = true
			handler := NewUploadHandler(files, discardLogger())

			e := echo.New()
			c := e.NewContext(newUploadRequest(t, "file", "cat.png", []byte("meow")), httptest.NewRecorder())

			err := handler.HandleUpload(c)
			requireAPIError(t, err, http.StatusInternalServerError, tt.wantMsg)
			assert.Equal(t, "STORAGE_ERROR", err.(*APIError).Code)
		})
	}
}

func TestUploadHandler_LocalStore_ListedAfterUpload(t *testing.T) {
	dir := t.TempDir()
	local, err := storage.NewLocalStore(dir)
	require.NoError(t, err)
	files := storage.NewDispatcher(local, allowedExtensions, discardLogger())

	e := echo.New()
	c := e.NewContext(newUploadRequest(t, "file", "cat.png", []byte("meow")), httptest.NewRecorder())
	require.NoError(t, NewUploadHandler(files, discardLogger()).HandleUpload(c))

	listed, err := files.List(c.Request().Context())
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "cat.png", listed[0].Name)
	assert.Equal(t, filepath.Join(dir, "cat.png"), listed[0].Location)

	data, err := os.ReadFile(filepath.Join(dir, "cat.png"))
	require.NoError(t, err)
	assert.Equal(t, "meow", string(data))
}
