package domain

// noCurrent marks an unset current pointer.
const noCurrent = -1

// Tracklist is the ordered song sequence plus current-song pointer shared by
// albums and playlists.
//
// Invariant: when the list is non-empty the current index references one of
// its elements; when empty the current index is unset. Every method keeps
// the invariant, so the fields stay unexported. The zero value is an empty
// list, and an emptied list compares equal to it.
type Tracklist struct {
	songs   []Song
	current int
}

// NewTracklist builds a tracklist from songs with the given current index.
// A negative current on a non-empty list selects the first song.
func NewTracklist(songs []Song, current int) (Tracklist, error) {
	t := Tracklist{songs: append([]Song(nil), songs...)}
	if len(t.songs) == 0 {
		if current >= 0 {
			return Tracklist{}, ErrInvalidCurrent
		}
		return t, nil
	}
	switch {
	case current < 0:
		t.current = 0
	case current < len(t.songs):
		t.current = current
	default:
		return Tracklist{}, ErrInvalidCurrent
	}
	return t, nil
}

// Len returns the number of songs.
func (t *Tracklist) Len() int { return len(t.songs) }

// IsEmpty reports whether the list holds no songs.
func (t *Tracklist) IsEmpty() bool { return len(t.songs) == 0 }

// Songs returns a copy of the songs in order.
func (t *Tracklist) Songs() []Song {
	return append([]Song(nil), t.songs...)
}

// At returns a copy of the i-th song.
func (t *Tracklist) At(i int) (Song, bool) {
	if i < 0 || i >= len(t.songs) {
		return Song{}, false
	}
	return t.songs[i], true
}

// CurrentIndex returns the current index, or -1 when the list is empty.
func (t *Tracklist) CurrentIndex() int {
	if len(t.songs) == 0 {
		return noCurrent
	}
	return t.current
}

// Current returns a copy of the current song.
func (t *Tracklist) Current() (Song, bool) {
	return t.At(t.CurrentIndex())
}

// IndexOf returns the index of the first song that is the same track as
// song, or -1.
func (t *Tracklist) IndexOf(song Song) int {
	for i := range t.songs {
		if t.songs[i].SameTrack(song) {
			return i
		}
	}
	return noCurrent
}

// IndexByName returns the index of the first song called name (ignoring
// case), or -1.
func (t *Tracklist) IndexByName(name string) int {
	for i := range t.songs {
		if t.songs[i].HasName(name) {
			return i
		}
	}
	return noCurrent
}

// Seek moves the current pointer to i. It reports false, leaving the
// pointer unchanged, when i is out of range.
func (t *Tracklist) Seek(i int) bool {
	if i < 0 || i >= len(t.songs) {
		return false
	}
	t.current = i
	return true
}

// Append adds song at the end. The first song appended becomes current.
func (t *Tracklist) Append(song Song) {
	t.songs = append(t.songs, song)
	if len(t.songs) == 1 {
		t.current = 0
	}
}

// RemoveAt deletes the i-th song. Removing the current song moves the
// pointer to the first remaining song, or unsets it when the list empties;
// removing an earlier song shifts the pointer so it keeps its song.
func (t *Tracklist) RemoveAt(i int) (Song, bool) {
	if i < 0 || i >= len(t.songs) {
		return Song{}, false
	}
	removed := t.songs[i]
	t.songs = append(t.songs[:i], t.songs[i+1:]...)

	switch {
	case len(t.songs) == 0:
		t.songs = nil
		t.current = 0
	case i == t.current:
		t.current = 0
	case i < t.current:
		t.current--
	}
	return removed, true
}

// IncrementCurrent bumps the current song's play count and returns a copy
// of it after the increment.
func (t *Tracklist) IncrementCurrent() (Song, bool) {
	i := t.CurrentIndex()
	if i < 0 {
		return Song{}, false
	}
	t.songs[i].IncrementTimesPlayed()
	return t.songs[i], true
}

// TotalDuration sums the song durations in seconds.
func (t *Tracklist) TotalDuration() int {
	total := 0
	for i := range t.songs {
		total += t.songs[i].Duration
	}
	return total
}
