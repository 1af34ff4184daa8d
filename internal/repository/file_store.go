package repository

import (
	"context"
	"fmt"

	"github.com/listen-stream/catalog/internal/catalog"
	"github.com/listen-stream/catalog/internal/codec"
)

// FileStore keeps the catalog on local disk as a single document or a
// directory of per-collection files.
type FileStore struct {
	path   string
	layout codec.Layout
}

// NewFileStore creates a file store at path. LayoutAuto follows whatever
// is on disk.
func NewFileStore(path string, layout codec.Layout) *FileStore {
	if layout == "" {
		layout = codec.LayoutAuto
	}
	return &FileStore{path: path, layout: layout}
}

// Load implements Store.
func (s *FileStore) Load(ctx context.Context) (*catalog.Catalog, error) {
	return codec.LoadLayout(ctx, s.path, s.layout)
}

// Save implements Store.
func (s *FileStore) Save(ctx context.Context, c *catalog.Catalog) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return codec.Save(c, s.path, s.layout)
}

// Describe implements Store.
func (s *FileStore) Describe() string {
	return fmt.Sprintf("file:%s (%s)", s.path, s.layout)
}

// Path returns the location on disk.
func (s *FileStore) Path() string { return s.path }
