package domain

import (
	"fmt"
	"strings"
)

// SongKind tags the closed set of song variants.
type SongKind uint8

const (
	// SongStandard is a plain song.
	SongStandard SongKind = iota
	// SongExplicit flags explicit content; it carries no extra fields.
	SongExplicit
	// SongMultimedia adds a video link.
	SongMultimedia
)

// String returns the variant name.
func (k SongKind) String() string {
	switch k {
	case SongStandard:
		return "standard"
	case SongExplicit:
		return "explicit"
	case SongMultimedia:
		return "multimedia"
	default:
		return fmt.Sprintf("SongKind(%d)", uint8(k))
	}
}

// Song is a track. Songs are held by value: an album, a playlist and a
// history entry each own their own copy.
type Song struct {
	Name         string
	Artist       string
	Publisher    string
	Lyrics       string
	MusicalNotes string
	Genre        string
	Duration     int // seconds
	TimesPlayed  int

	Kind SongKind
	// VideoLink must be empty unless Kind is SongMultimedia.
	VideoLink string
}

// NewSong creates a standard song with a zero play count.
func NewSong(name, artist, publisher, lyrics, notes, genre string, duration int) Song {
	return Song{
		Name:         name,
		Artist:       artist,
		Publisher:    publisher,
		Lyrics:       lyrics,
		MusicalNotes: notes,
		Genre:        genre,
		Duration:     duration,
		Kind:         SongStandard,
	}
}

// NewExplicitSong creates an explicit song.
func NewExplicitSong(name, artist, publisher, lyrics, notes, genre string, duration int) Song {
	s := NewSong(name, artist, publisher, lyrics, notes, genre, duration)
	s.Kind = SongExplicit
	return s
}

// NewMultimediaSong creates a multimedia song with a video link.
func NewMultimediaSong(name, artist, publisher, lyrics, notes, genre string, duration int, videoLink string) Song {
	s := NewSong(name, artist, publisher, lyrics, notes, genre, duration)
	s.Kind = SongMultimedia
	s.VideoLink = videoLink
	return s
}

// Validate checks name, duration and play count, and that only the
// multimedia variant has a video link.
func (s *Song) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrInvalidSongName
	}
	if s.Duration <= 0 {
		return ErrInvalidDuration
	}
	if s.TimesPlayed < 0 {
		return ErrInvalidPlayCount
	}
	if s.VideoLink != "" && s.Kind != SongMultimedia {
		return ErrInvalidVideoLink
	}
	return nil
}

// IsExplicit reports whether the song is the explicit variant.
func (s *Song) IsExplicit() bool { return s.Kind == SongExplicit }

// IsMultimedia reports whether the song is the multimedia variant.
func (s *Song) IsMultimedia() bool { return s.Kind == SongMultimedia }

// HasName reports whether the song is called name, ignoring case.
func (s *Song) HasName(name string) bool {
	return strings.EqualFold(s.Name, name)
}

// SameTrack reports whether two songs denote the same track: equal names
// (ignoring case), equal artists and equal durations. Play counts and
// variant-specific fields are not part of the identity.
func (s *Song) SameTrack(other Song) bool {
	return s.HasName(other.Name) &&
		strings.EqualFold(s.Artist, other.Artist) &&
		s.Duration == other.Duration
}

// IncrementTimesPlayed bumps the play counter.
func (s *Song) IncrementTimesPlayed() {
	s.TimesPlayed++
}
