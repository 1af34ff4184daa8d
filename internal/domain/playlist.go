package domain

import "strings"

// Visibility of a playlist.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// ParseVisibility accepts "public" or "private" in any case.
func ParseVisibility(s string) (Visibility, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(VisibilityPublic):
		return VisibilityPublic, nil
	case string(VisibilityPrivate):
		return VisibilityPrivate, nil
	default:
		return "", ErrInvalidVisibility
	}
}

// Playlist is a user-curated track list keyed by Name. Creator holds the
// owning user's name; the user itself is resolved through the catalog so a
// plan change is seen on the next edit.
type Playlist struct {
	Creator     string
	Name        string
	Description string
	Followers   int
	Visibility  Visibility
	Tracks      Tracklist
}

// Validate checks the playlist's own fields.
func (p *Playlist) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrInvalidPlaylistName
	}
	if strings.TrimSpace(p.Creator) == "" {
		return ErrInvalidUserName
	}
	if p.Followers < 0 {
		return ErrInvalidFollowers
	}
	switch p.Visibility {
	case VisibilityPublic, VisibilityPrivate:
	default:
		return ErrInvalidVisibility
	}
	return nil
}

// Tracklist implements the playable capability.
func (p *Playlist) Tracklist() *Tracklist { return &p.Tracks }

// IsPublic reports whether anyone may look the playlist up.
func (p *Playlist) IsPublic() bool { return p.Visibility == VisibilityPublic }

// IsPrivate reports whether only the creator may look the playlist up.
func (p *Playlist) IsPrivate() bool { return p.Visibility == VisibilityPrivate }

// CreatedBy reports whether username owns the playlist.
func (p *Playlist) CreatedBy(username string) bool { return p.Creator == username }

// EvictTrack removes every song that is the same track as song, ignoring the
// entitlement gate. It returns how many were removed.
func (p *Playlist) EvictTrack(song Song) int {
	n := 0
	for i := p.Tracks.IndexOf(song); i >= 0; i = p.Tracks.IndexOf(song) {
		p.Tracks.RemoveAt(i)
		n++
	}
	return n
}
