package domain

import (
	"sort"
	"strings"
	"time"
)

// History is an immutable record of one play: a snapshot of the song as it
// was when played, and when.
type History struct {
	ID       string
	Song     Song
	PlayedAt time.Time
}

// FavouriteRef points at a song in an album.
type FavouriteRef struct {
	Album string
	Song  string
}

// User is a catalog account keyed by Name.
type User struct {
	Name     string
	Email    string
	Address  string
	Password string
	Plan     Plan
	Points   float64
	// History is append-only; use RecordPlay.
	History    []History
	Favourites []FavouriteRef
}

// Validate checks the user's own fields.
func (u *User) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return ErrInvalidUserName
	}
	return nil
}

// SetPlan switches the user to another subscription variant.
func (u *User) SetPlan(p Plan) {
	u.Plan = p
}

// RecordPlay appends a history entry.
func (u *User) RecordPlay(h History) {
	u.History = append(u.History, h)
}

// HasFavourite reports whether ref is in the favourites list.
func (u *User) HasFavourite(ref FavouriteRef) bool {
	return u.favouriteIndex(ref) >= 0
}

// AddFavourite appends ref, failing with AlreadyExists on a repeat.
func (u *User) AddFavourite(ref FavouriteRef) error {
	if u.HasFavourite(ref) {
		return alreadyExists(KindFavourite, ref.Album+"/"+ref.Song)
	}
	u.Favourites = append(u.Favourites, ref)
	return nil
}

// RemoveFavourite deletes ref, failing with NotFound when absent.
func (u *User) RemoveFavourite(ref FavouriteRef) error {
	i := u.favouriteIndex(ref)
	if i < 0 {
		return notFound(KindFavourite, ref.Album+"/"+ref.Song)
	}
	u.Favourites = append(u.Favourites[:i], u.Favourites[i+1:]...)
	if len(u.Favourites) == 0 {
		u.Favourites = nil
	}
	return nil
}

func (u *User) favouriteIndex(ref FavouriteRef) int {
	for i, f := range u.Favourites {
		if f.Album == ref.Album && strings.EqualFold(f.Song, ref.Song) {
			return i
		}
	}
	return -1
}

// TopGenre returns the genre appearing most often in the history. Ties go
// to the alphabetically first genre. It reports false for an empty history.
func (u *User) TopGenre() (string, bool) {
	counts := make(map[string]int)
	for _, h := range u.History {
		if h.Song.Genre != "" {
			counts[h.Song.Genre]++
		}
	}
	if len(counts) == 0 {
		return "", false
	}

	genres := make([]string, 0, len(counts))
	for g := range counts {
		genres = append(genres, g)
	}
	sort.Strings(genres)

	top := genres[0]
	for _, g := range genres[1:] {
		if counts[g] > counts[top] {
			top = g
		}
	}
	return top, true
}
