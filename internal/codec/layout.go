package codec

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/listen-stream/catalog/internal/catalog"
	"github.com/listen-stream/catalog/internal/domain"
	apperrors "github.com/listen-stream/catalog/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Layout selects the on-disk shape of a catalog.
type Layout string

const (
	// LayoutAuto picks directory when the path is an existing directory,
	// file otherwise.
	LayoutAuto Layout = "auto"
	// LayoutFile is a single JSON document with albums, users and playlists.
	LayoutFile Layout = "file"
	// LayoutDirectory is albums.json, users.json and playlists.json side by
	// side.
	LayoutDirectory Layout = "directory"
)

// ParseLayout maps a config string to a Layout. Empty means auto.
func ParseLayout(s string) (Layout, error) {
	switch Layout(s) {
	case "", LayoutAuto:
		return LayoutAuto, nil
	case LayoutFile, LayoutDirectory:
		return Layout(s), nil
	default:
		return "", apperrors.Invalid("unknown catalog layout %q", s)
	}
}

// DetectLayout reports LayoutDirectory when path names an existing
// directory and LayoutFile otherwise.
func DetectLayout(path string) Layout {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return LayoutDirectory
	}
	return LayoutFile
}

func resolve(path string, layout Layout) Layout {
	if layout == "" || layout == LayoutAuto {
		return DetectLayout(path)
	}
	return layout
}

// FileName returns the directory-layout file for a collection.
func FileName(collection string) string {
	return collection + ".json"
}

// Load reads the catalog at path, detecting the layout. A missing path is
// NotFound.
func Load(ctx context.Context, path string, opts ...catalog.Option) (*catalog.Catalog, error) {
	return LoadLayout(ctx, path, LayoutAuto, opts...)
}

// LoadLayout reads the catalog at path in the given layout.
func LoadLayout(ctx context.Context, path string, layout Layout, opts ...catalog.Option) (*catalog.Catalog, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.NotFound("catalog", path)
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCodeStorage, "stat catalog")
	}

	switch resolve(path, layout) {
	case LayoutDirectory:
		return loadDirectory(ctx, path, opts...)
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeStorage, "read catalog")
		}
		return DecodeDocument(data, opts...)
	}
}

// loadDirectory decodes the three files concurrently into independent
// slices and assembles the catalog once all succeed. A missing file is an
// empty collection.
func loadDirectory(ctx context.Context, dir string, opts ...catalog.Option) (*catalog.Catalog, error) {
	var (
		albums    []*domain.Album
		users     []*domain.User
		playlists []*domain.Playlist
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		data, err := readCollection(ctx, dir, CollectionAlbums)
		if err != nil {
			return err
		}
		albums, err = DecodeAlbums(data)
		return err
	})
	g.Go(func() error {
		data, err := readCollection(ctx, dir, CollectionUsers)
		if err != nil {
			return err
		}
		users, err = DecodeUsers(data)
		return err
	})
	g.Go(func() error {
		data, err := readCollection(ctx, dir, CollectionPlaylists)
		if err != nil {
			return err
		}
		playlists, err = DecodePlaylists(data)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return Assemble(albums, users, playlists, opts...)
}

func readCollection(ctx context.Context, dir, collection string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, FileName(collection)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeStorage, "read "+collection)
	}
	return data, nil
}

// Save writes the catalog to path. LayoutAuto keeps the layout already on
// disk and defaults to a single file.
func Save(c *catalog.Catalog, path string, layout Layout) error {
	switch resolve(path, layout) {
	case LayoutDirectory:
		return saveDirectory(c, path)
	case LayoutFile:
		data, err := EncodeDocument(c)
		if err != nil {
			return err
		}
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return apperrors.Wrap(err, apperrors.ErrCodeStorage, "create catalog dir")
			}
		}
		return writeFileAtomic(path, data)
	default:
		return apperrors.Invalid("unknown catalog layout %q", layout)
	}
}

func saveDirectory(c *catalog.Catalog, dir string) error {
	enc, err := EncodeCollections(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeStorage, "create catalog dir")
	}
	for _, name := range Collections {
		if err := writeFileAtomic(filepath.Join(dir, FileName(name)), enc.Get(name)); err != nil {
			return err
		}
	}
	return nil
}

// writeFileAtomic writes through a temp file in the same directory and
// renames it over path.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeStorage, "create temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return apperrors.Wrap(err, apperrors.ErrCodeStorage, fmt.Sprintf("write %s", path))
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return apperrors.Wrap(err, apperrors.ErrCodeStorage, fmt.Sprintf("sync %s", path))
	}
	if err := tmp.Close(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeStorage, fmt.Sprintf("close %s", path))
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeStorage, fmt.Sprintf("chmod %s", path))
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeStorage, fmt.Sprintf("rename %s", path))
	}
	return nil
}
