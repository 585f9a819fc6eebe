// handlers_upload.go - File upload handler
package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/filechat/backend/internal/models"
	"github.com/filechat/backend/internal/storage"
	"github.com/labstack/echo/v4"
)

// UploadHandlerImpl implements the UploadHandler interface
type UploadHandlerImpl struct {
	files  FileStore
	logger *slog.Logger
}

// NewUploadHandler creates a new upload handler instance
func NewUploadHandler(files FileStore, logger *slog.Logger) UploadHandler {
	return &UploadHandlerImpl{
		files:  files,
		logger: logger.With("handler", "upload"),
	}
}

// HandleUpload accepts a single multipart part named "file"
func (h *UploadHandlerImpl) HandleUpload(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) && httpErr.Code == http.StatusRequestEntityTooLarge {
			h.logger.Warn("upload exceeds body limit")
			return httpErr
		}
		// A part sent without a filename is parsed as a plain form value.
		if form, ferr := c.MultipartForm(); ferr == nil && len(form.Value["file"]) > 0 {
			h.logger.Warn("no selected file")
			return NewValidationError("No selected file")
		}
		h.logger.Warn("no file part in request", "error", err)
		return NewValidationError("No file part")
	}
	if file.Filename == "" {
		h.logger.Warn("no selected file")
		return NewValidationError("No selected file")
	}

	src, err := file.Open()
	if err != nil {
		return NewInternalError("Internal server error", err)
	}
	defer src.Close()

	stored, err := h.files.Store(c.Request().Context(), file.Filename, src)
	if err != nil {
		if storage.IsValidationError(err) {
			h.logger.Warn("invalid file type", "filename", file.Filename)
			return NewValidationError("File type not allowed")
		}
		if h.files.Kind() == models.BackendRemote {
			return NewStorageError("Failed to upload to S3", err)
		}
		return NewStorageError("Failed to save file", err)
	}

	h.logger.Info("file uploaded successfully", "filename", stored.Name)

	resp := models.UploadResponse{
		Message:  "File uploaded successfully",
		Filename: stored.Name,
	}
	if stored.Remote() {
		url := stored.Location
		resp.S3URL = &url
	}
	return c.JSON(http.StatusOK, resp)
}
