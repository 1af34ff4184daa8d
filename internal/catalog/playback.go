package catalog

import (
	"github.com/listen-stream/catalog/internal/domain"
)

// PlayAlbum plays the album's current song for the listener.
func (c *Catalog) PlayAlbum(title, listener string) error {
	a, u, err := c.albumAndUser(title, listener)
	if err != nil {
		return err
	}
	return c.engine.Play(a, u)
}

// NextAlbum advances the album for the listener.
func (c *Catalog) NextAlbum(title, listener string) error {
	a, u, err := c.albumAndUser(title, listener)
	if err != nil {
		return err
	}
	return c.engine.Next(a, u)
}

// PreviousAlbum moves the album back for the listener.
func (c *Catalog) PreviousAlbum(title, listener string) error {
	a, u, err := c.albumAndUser(title, listener)
	if err != nil {
		return err
	}
	return c.engine.Previous(a, u)
}

// ShuffleAlbum jumps to a random other song on the album.
func (c *Catalog) ShuffleAlbum(title string) error {
	a, err := c.Album(title)
	if err != nil {
		return err
	}
	c.engine.Shuffle(a)
	return nil
}

// AddAlbumTrack appends song to the album on the actor's behalf, gated by
// the actor's plan.
func (c *Catalog) AddAlbumTrack(title string, song domain.Song, actor string) error {
	a, u, err := c.albumAndUser(title, actor)
	if err != nil {
		return err
	}
	return c.engine.AddTrack(a, song, u)
}

// RemoveAlbumTrack removes song from the album on the actor's behalf and
// evicts it from playlists and favourites.
func (c *Catalog) RemoveAlbumTrack(title string, song domain.Song, actor string) error {
	a, u, err := c.albumAndUser(title, actor)
	if err != nil {
		return err
	}
	if err := c.engine.RemoveTrack(a, song, u); err != nil {
		return err
	}
	c.evict(title, song)
	return nil
}

// PlayPlaylist plays the playlist's current song. The listener must be
// able to see the playlist.
func (c *Catalog) PlayPlaylist(name, listener string) error {
	p, u, err := c.visiblePlaylistAndUser(name, listener)
	if err != nil {
		return err
	}
	return c.engine.Play(p, u)
}

// NextPlaylist advances the playlist for the listener.
func (c *Catalog) NextPlaylist(name, listener string) error {
	p, u, err := c.visiblePlaylistAndUser(name, listener)
	if err != nil {
		return err
	}
	return c.engine.Next(p, u)
}

// PreviousPlaylist moves the playlist back for the listener.
func (c *Catalog) PreviousPlaylist(name, listener string) error {
	p, u, err := c.visiblePlaylistAndUser(name, listener)
	if err != nil {
		return err
	}
	return c.engine.Previous(p, u)
}

// ShufflePlaylist jumps to a random other song on the playlist.
func (c *Catalog) ShufflePlaylist(name string) error {
	p, err := c.Playlist(name)
	if err != nil {
		return err
	}
	c.engine.Shuffle(p)
	return nil
}

// AddPlaylistTrack appends song to the playlist. The gate is the creator's
// plan at the time of the call.
func (c *Catalog) AddPlaylistTrack(name string, song domain.Song) error {
	p, creator, err := c.playlistAndCreator(name)
	if err != nil {
		return err
	}
	return c.engine.AddTrack(p, song, creator)
}

// RemovePlaylistTrack removes song from the playlist, gated like
// AddPlaylistTrack.
func (c *Catalog) RemovePlaylistTrack(name string, song domain.Song) error {
	p, creator, err := c.playlistAndCreator(name)
	if err != nil {
		return err
	}
	return c.engine.RemoveTrack(p, song, creator)
}

func (c *Catalog) albumAndUser(title, username string) (*domain.Album, *domain.User, error) {
	a, err := c.Album(title)
	if err != nil {
		return nil, nil, err
	}
	u, err := c.User(username)
	if err != nil {
		return nil, nil, err
	}
	return a, u, nil
}

func (c *Catalog) visiblePlaylistAndUser(name, username string) (*domain.Playlist, *domain.User, error) {
	u, err := c.User(username)
	if err != nil {
		return nil, nil, err
	}
	p, err := c.VisiblePlaylist(name, username)
	if err != nil {
		return nil, nil, err
	}
	return p, u, nil
}

func (c *Catalog) playlistAndCreator(name string) (*domain.Playlist, *domain.User, error) {
	p, err := c.Playlist(name)
	if err != nil {
		return nil, nil, err
	}
	creator, err := c.User(p.Creator)
	if err != nil {
		return nil, nil, err
	}
	return p, creator, nil
}
