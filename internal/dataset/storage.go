package dataset

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tabml/adapters/excel"
	"tabml/domain/core"

	"github.com/google/uuid"
)

// StorageConfig holds configuration for file storage
type StorageConfig struct {
	BasePath    string // Directory datasets are stored in and loaded from
	MaxFileSize int64  // Maximum upload size in bytes
	ChunkSize   int    // Copy buffer size
}

// DefaultStorageConfig returns sensible defaults
func DefaultStorageConfig() *StorageConfig {
	return &StorageConfig{
		BasePath:    "uploads",
		MaxFileSize: 32 * 1024 * 1024, // 32MB
		ChunkSize:   1024 * 1024,      // 1MB
	}
}

// LocalFileStorage stores uploaded datasets on the local filesystem
type LocalFileStorage struct {
	config *StorageConfig
}

// NewLocalFileStorage creates a new local file storage instance
func NewLocalFileStorage(config *StorageConfig) *LocalFileStorage {
	if config == nil {
		config = DefaultStorageConfig()
	}
	if config.ChunkSize <= 0 {
		config.ChunkSize = 1024 * 1024
	}
	return &LocalFileStorage{config: config}
}

// NewLocalFileStorageWithPath creates a new local file storage with a simple path
func NewLocalFileStorageWithPath(basePath string) *LocalFileStorage {
	config := DefaultStorageConfig()
	config.BasePath = basePath
	return NewLocalFileStorage(config)
}

// BasePath returns the storage directory
func (s *LocalFileStorage) BasePath() string {
	return s.config.BasePath
}

// Store saves an uploaded dataset under a unique name and returns that name.
// Only CSV and spreadsheet extensions are accepted.
func (s *LocalFileStorage) Store(ctx context.Context, file io.Reader, filename string) (string, error) {
	filename = filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	if excel.FileTypeFor(filename) == "" {
		return "", core.NewUnsupportedFormatError(filename)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.config.BasePath, 0755); err != nil {
		return "", fmt.Errorf("failed to create storage directory: %w", err)
	}

	// Generate unique filename to prevent conflicts
	ext := filepath.Ext(filename)
	baseName := filename[:len(filename)-len(ext)]
	timestamp := time.Now().Format("20060102_150405")
	uniqueName := fmt.Sprintf("%s_%s_%s%s", baseName, timestamp, uuid.New().String()[:8], ext)

	filePath := filepath.Join(s.config.BasePath, uniqueName)

	destFile, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer destFile.Close()

	src := file
	if s.config.MaxFileSize > 0 {
		src = io.LimitReader(file, s.config.MaxFileSize+1)
	}
	buf := make([]byte, s.config.ChunkSize)
	written, err := io.CopyBuffer(destFile, src, buf)
	if err != nil {
		os.Remove(filePath) // Clean up on failure
		return "", fmt.Errorf("failed to copy file contents: %w", err)
	}
	if s.config.MaxFileSize > 0 && written > s.config.MaxFileSize {
		os.Remove(filePath)
		return "", core.NewValidationError("dataset", fmt.Sprintf("file exceeds %d bytes", s.config.MaxFileSize))
	}

	return uniqueName, nil
}

// Resolve maps a dataset reference to a path inside the storage directory.
// References must be plain file names; anything else is reported as not found.
func (s *LocalFileStorage) Resolve(ref string) (string, error) {
	if ref == "" || ref == "." || ref == ".." || ref != filepath.Base(ref) || strings.ContainsAny(ref, `/\`) {
		return "", core.NewDatasetNotFoundError(ref)
	}
	return filepath.Join(s.config.BasePath, ref), nil
}

// Exists checks if a dataset exists in storage
func (s *LocalFileStorage) Exists(ctx context.Context, ref string) (bool, error) {
	path, err := s.Resolve(ref)
	if err != nil {
		return false, nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check file existence: %w", err)
	}
	return !info.IsDir(), nil
}

// Delete removes a dataset from storage
func (s *LocalFileStorage) Delete(ctx context.Context, ref string) error {
	path, err := s.Resolve(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
