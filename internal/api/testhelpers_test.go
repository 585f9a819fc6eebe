package api

import (
	"bytes"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/filechat/backend/internal/models"
	"github.com/filechat/backend/internal/storage"
	"github.com/filechat/backend/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

var allowedExtensions = []string{"pdf", "png", "jpg", "jpeg", "gif", "mp4", "mov"}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newMockDispatcher(kind models.BackendKind) (*storage.Dispatcher, *testutil.MockStore) {
	store := testutil.NewMockStoreOfKind(kind)
	return storage.NewDispatcher(store, allowedExtensions, discardLogger()), store
}

// newUploadRequest builds a multipart request with a single file part.
func newUploadRequest(t *testing.T, field, filename string, content []byte) *http.Request {
	t.Helper()
	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	return req
}

func requireAPIError(t *testing.T, err error, status int, message string) {
	t.Helper()
	apiErr, ok := err.(*APIError)
	require.True(t, ok, "expected APIError, got %T (%v)", err, err)
	require.Equal(t, status, apiErr.Status)
	require.Equal(t, message, apiErr.Message)
}
