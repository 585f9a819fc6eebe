package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/filechat/backend/internal/chat"
	"github.com/filechat/backend/internal/models"
	"github.com/filechat/backend/internal/web"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, kind models.BackendKind) (*echo.Echo, *Dependencies) {
	t.Helper()
	files, store := newMockDispatcher(kind)
	store.AddFile("cat.png", make([]byte, 2048), time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))

	deps := &Dependencies{
		Files:     files,
		Responder: chat.NewResponder(files, nil, discardLogger()),
		Version:   "test",
		Logger:    discardLogger(),
	}

	renderer, err := web.NewRenderer()
	require.NoError(t, err)

	e := echo.New()
	e.Renderer = renderer
	SetupMiddleware(e, MiddlewareOptions{Logger: discardLogger(), BodyLimit: "1K"})
	RegisterRoutes(e, NewHandlers(deps))
	RegisterMetricsRoute(e, "/metrics")
	return e, deps
}

func TestRoutes_EndToEnd(t *testing.T) {
	e, _ := newTestServer(t, models.BackendLocal)

	t.Run("health", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok","version":"test","backend":"local","ai":false}`, rec.Body.String())
		assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
	})

	t.Run("index", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "cat.png")
	})

	t.Run("chat", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":"Tell me about CAT.PNG"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp models.ChatResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Contains(t, resp.Response, "Size: 2.00 KB")
		assert.Contains(t, resp.Response, "Last modified: 2024-01-02 03:04:05")
	})

	t.Run("rejected upload", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, newUploadRequest(t, "file", "evil.exe", []byte("MZ")))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"code":"VALIDATION_ERROR","error":"File type not allowed"}`, rec.Body.String())
	})

	t.Run("oversized upload", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, newUploadRequest(t, "file", "big.png", bytes.Repeat([]byte("x"), 4096)))

		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		assert.Contains(t, rec.Body.String(), `"error"`)
	})

	t.Run("oversized chunked upload", func(t *testing.T) {
		req := newUploadRequest(t, "file", "big.png", bytes.Repeat([]byte("x"), 4096))
		req.Body = io.NopCloser(io.MultiReader(req.Body))
		req.ContentLength = -1
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		assert.NotContains(t, rec.Body.String(), "No file part")
	})

	t.Run("metrics", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "filechat_uploads_total")
	})
}

func TestRoutes_RemoteRedirect(t *testing.T) {
	e, deps := newTestServer(t, models.BackendRemote)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/cat.png", nil))

	assert.Equal(t, http.StatusFound, rec.Code)
	url, err := deps.Files.Locate("cat.png")
	require.NoError(t, err)
	assert.Equal(t, url, rec.Header().Get(echo.HeaderLocation))
}
