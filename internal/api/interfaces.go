// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"context"
	"io"

	"github.com/filechat/backend/internal/models"
	"github.com/labstack/echo/v4"
)

// PageHandler serves the HTML page and the stored files themselves
type PageHandler interface {
	HandleIndex(c echo.Context) error
	HandleServeUpload(c echo.Context) error
}

// UploadHandler handles file upload operations
type UploadHandler interface {
	HandleUpload(c echo.Context) error
}

// FilesHandler handles file listing
type FilesHandler interface {
	HandleListFiles(c echo.Context) error
}

// ChatHandler handles chat messages
type ChatHandler interface {
	HandleChat(c echo.Context) error
}

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// FileStore is the storage dispatcher as seen by the handlers.
// *storage.Dispatcher implements it.
type FileStore interface {
	Store(ctx context.Context, filename string, r io.Reader) (*models.StoredFile, error)
	List(ctx context.Context) ([]*models.StoredFile, error)
	Stat(ctx context.Context, name string) (*models.FileMetadata, error)
	Locate(name string) (string, error)
	Kind() models.BackendKind
}

// Responder produces chat replies. *chat.Responder implements it.
type Responder interface {
	Respond(ctx context.Context, message string) string
}
