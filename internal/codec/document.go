// Package codec encodes a catalog to JSON and back. Song and plan variants
// are stored as tagged unions; the three collections are written either as
// one document or as three sibling files.
package codec

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/listen-stream/catalog/internal/catalog"
	"github.com/listen-stream/catalog/internal/domain"
	apperrors "github.com/listen-stream/catalog/pkg/errors"
)

// Collection names, used as document keys, file stems and error context.
const (
	CollectionAlbums    = "albums"
	CollectionUsers     = "users"
	CollectionPlaylists = "playlists"
)

// Collections lists the collection names in write order.
var Collections = []string{CollectionAlbums, CollectionUsers, CollectionPlaylists}

// EncodedCollections holds one encoded JSON object per collection.
type EncodedCollections struct {
	Albums    []byte
	Users     []byte
	Playlists []byte
}

// Get returns the document for the named collection.
func (e EncodedCollections) Get(name string) []byte {
	switch name {
	case CollectionAlbums:
		return e.Albums
	case CollectionUsers:
		return e.Users
	case CollectionPlaylists:
		return e.Playlists
	default:
		return nil
	}
}

// Set stores the document for the named collection.
func (e *EncodedCollections) Set(name string, doc []byte) {
	switch name {
	case CollectionAlbums:
		e.Albums = doc
	case CollectionUsers:
		e.Users = doc
	case CollectionPlaylists:
		e.Playlists = doc
	}
}

// document is the single-file layout.
type document struct {
	Albums    map[string]albumRecord    `json:"albums"`
	Users     map[string]userRecord     `json:"users"`
	Playlists map[string]playlistRecord `json:"playlists"`
}

// DecodeError builds a DECODE_ERROR naming the collection and key at fault.
// key is empty when the whole collection is unreadable.
func DecodeError(collection, key string, err error) error {
	msg := fmt.Sprintf("malformed %s", collection)
	if key != "" {
		msg = fmt.Sprintf("malformed %s entry %q", collection, key)
	}
	return apperrors.ErrDecode.WithMessage("%s", msg).
		WithDetails(map[string]string{"collection": collection, "key": key}).
		WithError(err)
}

func encodeDocument(c *catalog.Catalog) document {
	doc := document{
		Albums:    make(map[string]albumRecord),
		Users:     make(map[string]userRecord),
		Playlists: make(map[string]playlistRecord),
	}
	for _, a := range c.Albums() {
		doc.Albums[a.Title] = encodeAlbum(a)
	}
	for _, u := range c.Users() {
		doc.Users[u.Name] = encodeUser(u)
	}
	for _, p := range c.Playlists() {
		doc.Playlists[p.Name] = encodePlaylist(p)
	}
	return doc
}

// EncodeDocument renders the single-document layout.
func EncodeDocument(c *catalog.Catalog) ([]byte, error) {
	data, err := json.MarshalIndent(encodeDocument(c), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode catalog: %w", err)
	}
	return data, nil
}

var errNullDocument = errors.New("document is null")

// DecodeDocument parses the single-document layout into a fresh catalog.
// Missing collections are empty; a null document is rejected.
func DecodeDocument(data []byte, opts ...catalog.Option) (*catalog.Catalog, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, DecodeError("catalog", "", err)
	}
	if raw == nil {
		return nil, DecodeError("catalog", "", errNullDocument)
	}
	return DecodeCollections(EncodedCollections{
		Albums:    raw[CollectionAlbums],
		Users:     raw[CollectionUsers],
		Playlists: raw[CollectionPlaylists],
	}, opts...)
}

// EncodeCollections renders each collection as its own JSON object.
func EncodeCollections(c *catalog.Catalog) (EncodedCollections, error) {
	doc := encodeDocument(c)
	var (
		out EncodedCollections
		err error
	)
	if out.Albums, err = json.MarshalIndent(doc.Albums, "", "  "); err != nil {
		return EncodedCollections{}, fmt.Errorf("encode albums: %w", err)
	}
	if out.Users, err = json.MarshalIndent(doc.Users, "", "  "); err != nil {
		return EncodedCollections{}, fmt.Errorf("encode users: %w", err)
	}
	if out.Playlists, err = json.MarshalIndent(doc.Playlists, "", "  "); err != nil {
		return EncodedCollections{}, fmt.Errorf("encode playlists: %w", err)
	}
	return out, nil
}

// DecodeCollections builds a fresh catalog from per-collection documents.
// An empty or null document is an empty collection.
func DecodeCollections(enc EncodedCollections, opts ...catalog.Option) (*catalog.Catalog, error) {
	albums, err := DecodeAlbums(enc.Albums)
	if err != nil {
		return nil, err
	}
	users, err := DecodeUsers(enc.Users)
	if err != nil {
		return nil, err
	}
	playlists, err := DecodePlaylists(enc.Playlists)
	if err != nil {
		return nil, err
	}
	return Assemble(albums, users, playlists, opts...)
}

// Assemble builds the catalog from decoded collections.
func Assemble(albums []*domain.Album, users []*domain.User, playlists []*domain.Playlist, opts ...catalog.Option) (*catalog.Catalog, error) {
	c, err := catalog.FromCollections(albums, users, playlists, opts...)
	if err != nil {
		return nil, DecodeError("catalog", "", err)
	}
	return c, nil
}

// DecodeAlbums parses an albums object keyed by title.
func DecodeAlbums(data []byte) ([]*domain.Album, error) {
	var recs map[string]albumRecord
	if err := unmarshalCollection(CollectionAlbums, data, &recs); err != nil {
		return nil, err
	}
	out := make([]*domain.Album, 0, len(recs))
	for key, r := range recs {
		if r.Title != key {
			return nil, DecodeError(CollectionAlbums, key, fmt.Errorf("title %q does not match key", r.Title))
		}
		a, err := decodeAlbum(r)
		if err != nil {
			return nil, DecodeError(CollectionAlbums, key, err)
		}
		out = append(out, a)
	}
	return out, nil
}

// DecodeUsers parses a users object keyed by name.
func DecodeUsers(data []byte) ([]*domain.User, error) {
	var recs map[string]userRecord
	if err := unmarshalCollection(CollectionUsers, data, &recs); err != nil {
		return nil, err
	}
	out := make([]*domain.User, 0, len(recs))
	for key, r := range recs {
		if r.Name != key {
			return nil, DecodeError(CollectionUsers, key, fmt.Errorf("name %q does not match key", r.Name))
		}
		u, err := decodeUser(r)
		if err != nil {
			return nil, DecodeError(CollectionUsers, key, err)
		}
		out = append(out, u)
	}
	return out, nil
}

// DecodePlaylists parses a playlists object keyed by name.
func DecodePlaylists(data []byte) ([]*domain.Playlist, error) {
	var recs map[string]playlistRecord
	if err := unmarshalCollection(CollectionPlaylists, data, &recs); err != nil {
		return nil, err
	}
	out := make([]*domain.Playlist, 0, len(recs))
	for key, r := range recs {
		if r.Name != key {
			return nil, DecodeError(CollectionPlaylists, key, fmt.Errorf("name %q does not match key", r.Name))
		}
		p, err := decodePlaylist(r)
		if err != nil {
			return nil, DecodeError(CollectionPlaylists, key, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// unmarshalCollection decodes a keyed object. When the object as a whole is
// malformed, each entry is retried so the error can name the key.
func unmarshalCollection[T any](collection string, data []byte, out *map[string]T) error {
	if len(data) == 0 {
		return nil
	}
	err := json.Unmarshal(data, out)
	if err == nil {
		return nil
	}

	var raw map[string]json.RawMessage
	if json.Unmarshal(data, &raw) != nil {
		return DecodeError(collection, "", err)
	}
	for key, entry := range raw {
		var v T
		if entryErr := json.Unmarshal(entry, &v); entryErr != nil {
			return DecodeError(collection, key, entryErr)
		}
	}
	return DecodeError(collection, "", err)
}
