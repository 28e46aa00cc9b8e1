package dataset

import (
	"context"
	"log"
	"os"
	"time"

	"tabml/adapters/datareadiness/coercer"
	"tabml/adapters/excel"
	"tabml/domain/core"
	"tabml/domain/dataset"
)

// Loader resolves dataset references in a storage directory and parses them into tables
type Loader struct {
	storage *LocalFileStorage
	coercer *coercer.TypeCoercer
}

// NewLoader creates a loader reading from storageDir
func NewLoader(storageDir string) *Loader {
	return NewLoaderWithStorage(NewLocalFileStorageWithPath(storageDir))
}

// NewLoaderWithStorage creates a loader sharing an existing storage
func NewLoaderWithStorage(storage *LocalFileStorage) *Loader {
	return &Loader{
		storage: storage,
		coercer: coercer.NewTypeCoercer(coercer.DefaultCoercionConfig()),
	}
}

// Load reads the referenced dataset.
// Errors: NotFound for absent files or references escaping the storage
// directory, UnsupportedFormat for unknown extensions, InvalidDataset for
// files that cannot be parsed.
func (l *Loader) Load(ctx context.Context, ref string) (*dataset.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := l.storage.Resolve(ref)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return nil, core.NewDatasetNotFoundError(ref)
	}

	reader := excel.NewDataReader(path)
	if reader.FileType() == "" {
		return nil, core.NewUnsupportedFormatError(ref)
	}

	start := time.Now()
	raw, err := reader.ReadData()
	if err != nil {
		return nil, core.NewInvalidDatasetError(ref, err)
	}

	table, err := l.buildTable(raw)
	if err != nil {
		return nil, core.NewInvalidDatasetError(ref, err)
	}

	log.Printf("[Loader] Loaded %s: %d rows x %d columns in %.2fms",
		ref, table.RowCount(), len(table.Columns), float64(time.Since(start).Nanoseconds())/1e6)
	return table, nil
}

func (l *Loader) buildTable(raw *excel.RawData) (*dataset.Table, error) {
	columns := make([]*dataset.Column, len(raw.Headers))
	for j, header := range raw.Headers {
		columns[j] = l.coercer.CoerceColumn(header, raw.Column(j))
	}
	return dataset.NewTable(columns...)
}
