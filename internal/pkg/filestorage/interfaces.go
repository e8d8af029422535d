package filestorage

import (
	"errors"
	"mime/multipart"
)

// Upload errors
var (
	ErrNoFile             = errors.New("no file uploaded")
	ErrFileTooLarge       = errors.New("file exceeds the maximum upload size")
	ErrUnsupportedFileExt = errors.New("file type is not allowed")
)

// FileStorage defines the interface for file storage operations
type FileStorage interface {
	// SaveFileWithPath stores the upload under subPath and returns its public URL
	SaveFileWithPath(fileHeader *multipart.FileHeader, subPath string) (string, error)

	// DeleteFile removes a file previously returned by SaveFileWithPath
	DeleteFile(fileURL string) error

	// GetFullPath returns the filesystem path for a public URL
	GetFullPath(fileURL string) string
}
