// handlers_files.go - Page, listing and file serving handlers
package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/filechat/backend/internal/models"
	"github.com/filechat/backend/internal/storage"
	"github.com/filechat/backend/internal/web"
	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"
)

// MIMEApplicationMsgpack selects the msgpack encoding of /api/files.
const MIMEApplicationMsgpack = "application/msgpack"

// FilesHandlerImpl implements PageHandler and FilesHandler
type FilesHandlerImpl struct {
	files  FileStore
	logger *slog.Logger
}

// NewFilesHandler creates a new files handler
func NewFilesHandler(files FileStore, logger *slog.Logger) *FilesHandlerImpl {
	return &FilesHandlerImpl{
		files:  files,
		logger: logger.With("handler", "files"),
	}
}

// HandleIndex renders the gallery page. A listing failure renders an empty gallery.
func (h *FilesHandlerImpl) HandleIndex(c echo.Context) error {
	files, err := h.files.List(c.Request().Context())
	if err != nil {
		h.logger.Error("error listing files", "error", err)
		files = nil
	}
	h.logger.Debug("found files to display", "count", len(files))

	return c.Render(http.StatusOK, web.IndexTemplate, web.PageData{
		Files: files,
		UseS3: h.files.Kind() == models.BackendRemote,
	})
}

// HandleListFiles returns the stored files as JSON, or msgpack when asked for
func (h *FilesHandlerImpl) HandleListFiles(c echo.Context) error {
	files, err := h.files.List(c.Request().Context())
	if err != nil {
		return NewStorageError("Failed to list files", err)
	}
	if files == nil {
		files = []*models.StoredFile{}
	}

	if strings.Contains(c.Request().Header.Get(echo.HeaderAccept), MIMEApplicationMsgpack) {
		data, err := msgpack.Marshal(files)
		if err != nil {
			return NewInternalError("failed to encode msgpack", err)
		}
		return c.Blob(http.StatusOK, MIMEApplicationMsgpack, data)
	}
	return c.JSON(http.StatusOK, files)
}

// HandleServeUpload redirects to the object URL in remote mode and streams
// the local file otherwise
func (h *FilesHandlerImpl) HandleServeUpload(c echo.Context) error {
	name := c.Param("filename")
	location, err := h.files.Locate(name)
	if err != nil {
		return NewNotFoundError("file", name)
	}

	if h.files.Kind() == models.BackendRemote {
		return c.Redirect(http.StatusFound, location)
	}

	if _, err := h.files.Stat(c.Request().Context(), name); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return NewNotFoundError("file", name)
		}
		return NewStorageError("Failed to read file", err)
	}
	return c.File(location)
}
