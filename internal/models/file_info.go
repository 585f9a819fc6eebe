package models

import "time"

// BackendKind identifies where a stored file lives.
type BackendKind string

const (
	BackendLocal  BackendKind = "local"
	BackendRemote BackendKind = "s3"
)

// StoredFile is a logical record of an uploaded file.
type StoredFile struct {
	Name     string      `json:"name" msgpack:"name"`
	Location string      `json:"path" msgpack:"path"` // local path or object URL
	Backend  BackendKind `json:"backend" msgpack:"backend"`
}

// Remote reports whether the file lives in object storage.
func (f *StoredFile) Remote() bool {
	return f.Backend == BackendRemote
}

// FileMetadata is what the active backend reports about a single file.
type FileMetadata struct {
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"modTime"`
}

// UploadResponse is returned by a successful upload.
type UploadResponse struct {
	Message  string  `json:"message"`
	Filename string  `json:"filename"`
	S3URL    *string `json:"s3_url"`
}
