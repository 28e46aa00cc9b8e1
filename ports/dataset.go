package ports

import (
	"context"
	"io"

	"tabml/domain/dataset"
)

// DatasetLoader defines the interface for turning a stored dataset reference into a table
type DatasetLoader interface {
	// Load parses the referenced file; missing files are NotFound errors
	Load(ctx context.Context, ref string) (*dataset.Table, error)
}

// DatasetStore defines the interface for the upload area
type DatasetStore interface {
	// Store saves an uploaded file and returns the reference it can be loaded by
	Store(ctx context.Context, file io.Reader, filename string) (string, error)

	// Exists reports whether a reference points at a stored file
	Exists(ctx context.Context, ref string) (bool, error)
}
