// Package catalog holds the three keyed collections (albums by title,
// users by name, playlists by name) and routes playback through the
// entitlement-gated engine. A Catalog is not safe for concurrent use.
package catalog

import (
	"sort"

	"github.com/listen-stream/catalog/internal/domain"
	"github.com/listen-stream/catalog/internal/playback"
	apperrors "github.com/listen-stream/catalog/pkg/errors"
)

// Option configures a Catalog.
type Option func(*Catalog)

// WithEngine sets the playback engine.
func WithEngine(e *playback.Engine) Option {
	return func(c *Catalog) { c.engine = e }
}

// Catalog owns every album, user and playlist. Lookups hand out the owned
// pointers; callers mutate through Catalog methods.
type Catalog struct {
	albums    map[string]*domain.Album
	users     map[string]*domain.User
	playlists map[string]*domain.Playlist
	engine    *playback.Engine
}

// New creates an empty catalog.
func New(opts ...Option) *Catalog {
	c := &Catalog{
		albums:    make(map[string]*domain.Album),
		users:     make(map[string]*domain.User),
		playlists: make(map[string]*domain.Playlist),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.engine == nil {
		c.engine = playback.NewEngine(nil)
	}
	return c
}

// FromCollections builds a catalog from already decoded entities. Keys are
// taken from the entities; a repeated key fails with AlreadyExists.
func FromCollections(albums []*domain.Album, users []*domain.User, playlists []*domain.Playlist, opts ...Option) (*Catalog, error) {
	c := New(opts...)
	for _, a := range albums {
		if err := c.AddAlbum(a); err != nil {
			return nil, err
		}
	}
	for _, u := range users {
		if err := c.AddUser(u); err != nil {
			return nil, err
		}
	}
	// playlists whose creator is gone are kept; edits on them fail with NotFound
	for _, p := range playlists {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if _, ok := c.playlists[p.Name]; ok {
			return nil, apperrors.AlreadyExists(domain.KindPlaylist, p.Name)
		}
		c.playlists[p.Name] = p
	}
	return c, nil
}

// SetEngine swaps the playback engine.
func (c *Catalog) SetEngine(e *playback.Engine) {
	if e != nil {
		c.engine = e
	}
}

// Engine returns the playback engine in use.
func (c *Catalog) Engine() *playback.Engine { return c.engine }

// Len returns the sizes of the three collections.
func (c *Catalog) Len() (albums, users, playlists int) {
	return len(c.albums), len(c.users), len(c.playlists)
}

// ---- albums ----

// Album returns the album keyed by title.
func (c *Catalog) Album(title string) (*domain.Album, error) {
	a, ok := c.albums[title]
	if !ok {
		return nil, apperrors.NotFound(domain.KindAlbum, title)
	}
	return a, nil
}

// HasAlbum reports whether an album is keyed by title.
func (c *Catalog) HasAlbum(title string) bool {
	_, ok := c.albums[title]
	return ok
}

// AddAlbum inserts a.
func (c *Catalog) AddAlbum(a *domain.Album) error {
	if a == nil {
		return apperrors.Invalid("album is required")
	}
	if err := a.Validate(); err != nil {
		return err
	}
	if _, ok := c.albums[a.Title]; ok {
		return apperrors.AlreadyExists(domain.KindAlbum, a.Title)
	}
	c.albums[a.Title] = a
	return nil
}

// RemoveAlbum deletes the album and evicts its songs the way
// RemoveAlbumSong does.
func (c *Catalog) RemoveAlbum(title string) error {
	a, ok := c.albums[title]
	if !ok {
		return apperrors.NotFound(domain.KindAlbum, title)
	}
	delete(c.albums, title)
	for _, s := range a.Tracks.Songs() {
		c.evict(title, s)
	}
	return nil
}

// Albums returns every album ordered by title.
func (c *Catalog) Albums() []*domain.Album {
	out := make([]*domain.Album, 0, len(c.albums))
	for _, a := range c.albums {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out
}

// AddAlbumSong appends song to the album on the admin path. Names are
// unique within an album, ignoring case.
func (c *Catalog) AddAlbumSong(title string, song domain.Song) error {
	a, err := c.Album(title)
	if err != nil {
		return err
	}
	return a.AddSong(song)
}

// RemoveAlbumSong deletes the named song from the album and its favourites.
// Equal playlist tracks go too unless another album still holds the track.
func (c *Catalog) RemoveAlbumSong(title, songName string) error {
	a, err := c.Album(title)
	if err != nil {
		return err
	}
	removed, err := a.RemoveSong(songName)
	if err != nil {
		return err
	}
	c.evict(title, removed)
	return nil
}

// evict drops favourites of the removed album song and, unless another
// album still carries an equal track, drops it from every playlist.
func (c *Catalog) evict(albumTitle string, song domain.Song) {
	if !c.inAnyAlbum(song) {
		for _, p := range c.playlists {
			p.EvictTrack(song)
		}
	}
	ref := domain.FavouriteRef{Album: albumTitle, Song: song.Name}
	for _, u := range c.users {
		if u.HasFavourite(ref) {
			_ = u.RemoveFavourite(ref)
		}
	}
}

func (c *Catalog) inAnyAlbum(song domain.Song) bool {
	for _, a := range c.albums {
		if a.Tracks.IndexOf(song) >= 0 {
			return true
		}
	}
	return false
}

// ---- users ----

// User returns the user keyed by name.
func (c *Catalog) User(name string) (*domain.User, error) {
	u, ok := c.users[name]
	if !ok {
		return nil, apperrors.NotFound(domain.KindUser, name)
	}
	return u, nil
}

// HasUser reports whether a user is keyed by name.
func (c *Catalog) HasUser(name string) bool {
	_, ok := c.users[name]
	return ok
}

// AddUser inserts u.
func (c *Catalog) AddUser(u *domain.User) error {
	if u == nil {
		return apperrors.Invalid("user is required")
	}
	if err := u.Validate(); err != nil {
		return err
	}
	if _, ok := c.users[u.Name]; ok {
		return apperrors.AlreadyExists(domain.KindUser, u.Name)
	}
	c.users[u.Name] = u
	return nil
}

// RemoveUser deletes the user along with the playlists they created.
func (c *Catalog) RemoveUser(name string) error {
	if _, ok := c.users[name]; !ok {
		return apperrors.NotFound(domain.KindUser, name)
	}
	delete(c.users, name)
	for key, p := range c.playlists {
		if p.CreatedBy(name) {
			delete(c.playlists, key)
		}
	}
	return nil
}

// Users returns every user ordered by name.
func (c *Catalog) Users() []*domain.User {
	out := make([]*domain.User, 0, len(c.users))
	for _, u := range c.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ---- playlists ----

// Playlist returns the playlist keyed by name regardless of visibility.
func (c *Catalog) Playlist(name string) (*domain.Playlist, error) {
	p, ok := c.playlists[name]
	if !ok {
		return nil, apperrors.NotFound(domain.KindPlaylist, name)
	}
	return p, nil
}

// HasPlaylist reports whether a playlist is keyed by name.
func (c *Catalog) HasPlaylist(name string) bool {
	_, ok := c.playlists[name]
	return ok
}

// AddPlaylist inserts p. Its creator must be a known user.
func (c *Catalog) AddPlaylist(p *domain.Playlist) error {
	if p == nil {
		return apperrors.Invalid("playlist is required")
	}
	if err := p.Validate(); err != nil {
		return err
	}
	if !c.HasUser(p.Creator) {
		return apperrors.NotFound(domain.KindUser, p.Creator)
	}
	if _, ok := c.playlists[p.Name]; ok {
		return apperrors.AlreadyExists(domain.KindPlaylist, p.Name)
	}
	c.playlists[p.Name] = p
	return nil
}

// RemovePlaylist deletes the playlist keyed by name.
func (c *Catalog) RemovePlaylist(name string) error {
	if _, ok := c.playlists[name]; !ok {
		return apperrors.NotFound(domain.KindPlaylist, name)
	}
	delete(c.playlists, name)
	return nil
}

// Playlists returns every playlist ordered by name.
func (c *Catalog) Playlists() []*domain.Playlist {
	return c.filterPlaylists(func(*domain.Playlist) bool { return true })
}

// PlaylistsByCreator returns the user's playlists ordered by name.
func (c *Catalog) PlaylistsByCreator(username string) []*domain.Playlist {
	return c.filterPlaylists(func(p *domain.Playlist) bool { return p.CreatedBy(username) })
}

// PublicPlaylists returns the public playlists ordered by name.
func (c *Catalog) PublicPlaylists() []*domain.Playlist {
	return c.filterPlaylists((*domain.Playlist).IsPublic)
}

func (c *Catalog) filterPlaylists(keep func(*domain.Playlist) bool) []*domain.Playlist {
	out := make([]*domain.Playlist, 0, len(c.playlists))
	for _, p := range c.playlists {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// PublicPlaylist returns the playlist only if it is public. A private
// playlist is reported as NotFound.
func (c *Catalog) PublicPlaylist(name string) (*domain.Playlist, error) {
	p, ok := c.playlists[name]
	if !ok || !p.IsPublic() {
		return nil, apperrors.NotFound(domain.KindPlaylist, name)
	}
	return p, nil
}

// VisiblePlaylist returns the playlist if it is public or viewer created
// it.
func (c *Catalog) VisiblePlaylist(name, viewer string) (*domain.Playlist, error) {
	p, ok := c.playlists[name]
	if !ok || !(p.IsPublic() || p.CreatedBy(viewer)) {
		return nil, apperrors.NotFound(domain.KindPlaylist, name)
	}
	return p, nil
}
