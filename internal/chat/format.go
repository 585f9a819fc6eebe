package chat

import (
	"fmt"
	"path/filepath"
	"strings"
)

// FileType is the human-readable kind of an uploaded file.
type FileType string

const (
	TypeImage FileType = "Image"
	TypePDF   FileType = "PDF document"
	TypeVideo FileType = "Video"
	TypeOther FileType = "File"
)

// TimestampLayout formats last-modified times in detail replies.
const TimestampLayout = "2006-01-02 15:04:05"

// Classify maps a filename to its type by extension, case-insensitively.
func Classify(name string) FileType {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png", ".gif":
		return TypeImage
	case ".pdf":
		return TypePDF
	case ".mp4", ".mov":
		return TypeVideo
	default:
		return TypeOther
	}
}

// FormatSize renders n as bytes below 1 KB, otherwise KB or MB with two
// decimals.
func FormatSize(n int64) string {
	switch {
	case n < 1024:
		return fmt.Sprintf("%d bytes", n)
	case n < 1024*1024:
		return fmt.Sprintf("%.2f KB", float64(n)/1024)
	default:
		return fmt.Sprintf("%.2f MB", float64(n)/(1024*1024))
	}
}
