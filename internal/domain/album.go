package domain

import "strings"

// Album is a catalog album keyed by Title.
type Album struct {
	Title       string
	Artist      string
	ReleaseYear int
	Genre       string
	Tracks      Tracklist
}

// NewAlbum creates an album. The first song becomes current.
func NewAlbum(title, artist string, releaseYear int, genre string, songs []Song) (*Album, error) {
	a := &Album{
		Title:       title,
		Artist:      artist,
		ReleaseYear: releaseYear,
		Genre:       genre,
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	for _, s := range songs {
		if err := a.AddSong(s); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Validate checks the album's own fields.
func (a *Album) Validate() error {
	if strings.TrimSpace(a.Title) == "" {
		return ErrInvalidAlbumTitle
	}
	return nil
}

// Tracklist implements the playable capability.
func (a *Album) Tracklist() *Tracklist { return &a.Tracks }

// AddSong appends a song on the admin path. Song names are unique within an
// album, ignoring case.
func (a *Album) AddSong(song Song) error {
	if err := song.Validate(); err != nil {
		return err
	}
	if err := a.Admit(song); err != nil {
		return err
	}
	a.Tracks.Append(song)
	return nil
}

// Admit rejects a song whose name (ignoring case) is already on the album.
func (a *Album) Admit(song Song) error {
	if a.Tracks.IndexByName(song.Name) >= 0 {
		return alreadyExists(KindSong, song.Name)
	}
	return nil
}

// Song returns a copy of the song called name (ignoring case).
func (a *Album) Song(name string) (Song, error) {
	i := a.Tracks.IndexByName(name)
	if i < 0 {
		return Song{}, notFound(KindSong, name)
	}
	s, _ := a.Tracks.At(i)
	return s, nil
}

// RemoveSong deletes the song called name (ignoring case) and returns it.
func (a *Album) RemoveSong(name string) (Song, error) {
	i := a.Tracks.IndexByName(name)
	if i < 0 {
		return Song{}, notFound(KindSong, name)
	}
	s, _ := a.Tracks.RemoveAt(i)
	return s, nil
}

// TotalDuration returns the album length in seconds.
func (a *Album) TotalDuration() int {
	return a.Tracks.TotalDuration()
}
