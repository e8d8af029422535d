package filestorage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/fitdesk/gymadmin/internal/pkg/logger"
)

// LocalStorage handles saving files to the local filesystem.
type LocalStorage struct {
	basePath    string // root directory where files are stored
	baseURL     string // public URL prefix the files are served under
	maxBytes    int64
	allowedExts map[string]bool
}

// Option customizes LocalStorage
type Option func(*LocalStorage)

// WithMaxBytes limits the accepted upload size; zero disables the check
func WithMaxBytes(n int64) Option {
	return func(ls *LocalStorage) { ls.maxBytes = n }
}

// WithAllowedExtensions restricts uploads to the given extensions (".mp4", ".jpg" ...)
func WithAllowedExtensions(exts ...string) Option {
	return func(ls *LocalStorage) {
		ls.allowedExts = make(map[string]bool, len(exts))
		for _, ext := range exts {
			ls.allowedExts[strings.ToLower(ext)] = true
		}
	}
}

// NewLocalStorage creates a new LocalStorage instance.
func NewLocalStorage(basePath, baseURL string, opts ...Option) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	ls := &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}
	for _, opt := range opts {
		opt(ls)
	}
	return ls, nil
}

// SaveFileWithPath saves a file to a specified subdirectory
func (ls *LocalStorage) SaveFileWithPath(fileHeader *multipart.FileHeader, subPath string) (string, error) {
	if fileHeader == nil {
		return "", ErrNoFile
	}
	if ls.maxBytes > 0 && fileHeader.Size > ls.maxBytes {
		return "", ErrFileTooLarge
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if len(ls.allowedExts) > 0 && !ls.allowedExts[ext] {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFileExt, ext)
	}

	file, err := fileHeader.Open()
	if err != nil {
		logger.Error().Err(err).Str("filename", fileHeader.Filename).Msg("Failed to open uploaded file")
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	subPath = strings.Trim(filepath.ToSlash(filepath.Clean("/"+subPath)), "/")
	fullDirPath := filepath.Join(ls.basePath, filepath.FromSlash(subPath))
	if err := os.MkdirAll(fullDirPath, 0o755); err != nil {
		logger.Error().Err(err).Str("path", fullDirPath).Msg("Failed to create subdirectory")
		return "", fmt.Errorf("failed to create subdirectory: %w", err)
	}

	uniqueFilename := uuid.New().String() + ext
	dstPath := filepath.Join(fullDirPath, uniqueFilename)

	dst, err := os.Create(dstPath)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err = io.Copy(dst, file); err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to copy uploaded file content")
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("failed to save file content: %w", err)
	}

	rel := uniqueFilename
	if subPath != "" {
		rel = subPath + "/" + uniqueFilename
	}
	url := ls.baseURL + "/" + rel

	logger.Info().Str("filename", fileHeader.Filename).Str("saved_as", rel).Str("url", url).Msg("File saved successfully")
	return url, nil
}

// DeleteFile removes a file from the storage filesystem.
// Missing files are not an error.
func (ls *LocalStorage) DeleteFile(fileURL string) error {
	if fileURL == "" {
		return nil
	}

	physicalPath := ls.GetFullPath(fileURL)
	if physicalPath == "" {
		return fmt.Errorf("invalid file path: %s", fileURL)
	}

	if err := os.Remove(physicalPath); err != nil {
		if os.IsNotExist(err) {
			logger.Warn().Str("path", physicalPath).Msg("File to delete does not exist")
			return nil
		}
		logger.Error().Err(err).Str("path", physicalPath).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}

	logger.Info().Str("path", physicalPath).Msg("File deleted successfully")
	return nil
}

// GetFullPath maps a public URL back to its location under basePath.
// URLs that would escape basePath yield "".
func (ls *LocalStorage) GetFullPath(fileURL string) string {
	rel := strings.TrimPrefix(fileURL, ls.baseURL)
	rel = strings.Trim(filepath.ToSlash(filepath.Clean("/"+rel)), "/")
	if rel == "" || rel == "." {
		return ""
	}
	return filepath.Join(ls.basePath, filepath.FromSlash(rel))
}
