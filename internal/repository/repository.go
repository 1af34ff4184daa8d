// Package repository persists catalog snapshots. Every store writes the
// whole catalog at once and reads it back into a fresh value; callers swap
// on success.
package repository

import (
	"context"

	"github.com/listen-stream/catalog/internal/catalog"
)

// Store loads and saves whole-catalog snapshots.
type Store interface {
	// Load decodes the stored snapshot. A store with nothing saved yet
	// returns a NOT_FOUND error.
	Load(ctx context.Context) (*catalog.Catalog, error)
	// Save replaces the stored snapshot.
	Save(ctx context.Context, c *catalog.Catalog) error
	// Describe names the backend and location for logs.
	Describe() string
}
