package catalog

import (
	"fmt"

	"github.com/listen-stream/catalog/internal/domain"
	"github.com/listen-stream/catalog/internal/entitlement"
	apperrors "github.com/listen-stream/catalog/pkg/errors"
)

// SetPlan switches the user's subscription. Existing playlists are not
// touched; the new plan gates the next edit.
func (c *Catalog) SetPlan(username string, plan domain.Plan) error {
	u, err := c.User(username)
	if err != nil {
		return err
	}
	u.SetPlan(plan)
	return nil
}

// UpgradeToPremiumTop moves the user to PremiumTop and grants the one-time
// bonus. Users already on PremiumTop fail with InvalidArgument.
func (c *Catalog) UpgradeToPremiumTop(username string) error {
	u, err := c.User(username)
	if err != nil {
		return err
	}
	if u.Plan == domain.PlanPremiumTop {
		return apperrors.Invalid("user %q is already on %s", username, domain.PlanPremiumTop)
	}
	u.SetPlan(domain.PlanPremiumTop)
	u.Points = entitlement.Upgrade(u.Points)
	return nil
}

// CreatePlaylist creates a playlist owned by creator with the given songs.
// The creator's plan must allow playlist creation.
func (c *Catalog) CreatePlaylist(creator, name, description string, visibility domain.Visibility, songs []domain.Song) (*domain.Playlist, error) {
	u, err := c.User(creator)
	if err != nil {
		return nil, err
	}
	if !entitlement.For(u.Plan).CanCreatePlaylist() {
		return nil, apperrors.Denied("creating playlists")
	}
	if c.HasPlaylist(name) {
		return nil, apperrors.AlreadyExists(domain.KindPlaylist, name)
	}

	p := &domain.Playlist{
		Creator:     creator,
		Name:        name,
		Description: description,
		Visibility:  visibility,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	for _, s := range songs {
		if err := c.engine.AddTrack(p, s, u); err != nil {
			return nil, err
		}
	}
	c.playlists[name] = p
	return p, nil
}

// ---- favourites ----

// Favourites returns the user's favourites list.
func (c *Catalog) Favourites(username string) ([]domain.FavouriteRef, error) {
	u, err := c.favouritesUser(username)
	if err != nil {
		return nil, err
	}
	return append([]domain.FavouriteRef(nil), u.Favourites...), nil
}

// AddFavourite marks an album song as a favourite.
func (c *Catalog) AddFavourite(username, albumTitle, songName string) error {
	u, err := c.favouritesUser(username)
	if err != nil {
		return err
	}
	a, err := c.Album(albumTitle)
	if err != nil {
		return err
	}
	s, err := a.Song(songName)
	if err != nil {
		return err
	}
	return u.AddFavourite(domain.FavouriteRef{Album: a.Title, Song: s.Name})
}

// RemoveFavourite unmarks a favourite.
func (c *Catalog) RemoveFavourite(username, albumTitle, songName string) error {
	u, err := c.favouritesUser(username)
	if err != nil {
		return err
	}
	return u.RemoveFavourite(domain.FavouriteRef{Album: albumTitle, Song: songName})
}

func (c *Catalog) favouritesUser(username string) (*domain.User, error) {
	u, err := c.User(username)
	if err != nil {
		return nil, err
	}
	if !entitlement.For(u.Plan).CanAccessFavourites() {
		return nil, apperrors.Denied("the favourites list")
	}
	return u, nil
}

// ---- recommendations ----

// TopGenreOptions narrows TopGenreSongs.
type TopGenreOptions struct {
	// MaxSeconds caps the total duration. Songs are taken in order and
	// collection stops at the first one that would overflow. Zero means no
	// cap.
	MaxSeconds int
	// ExplicitOnly keeps explicit songs only.
	ExplicitOnly bool
}

// TopGenreSongs collects songs of the user's most played genre, walking
// albums in title order. Recommendations share the favourites gate.
func (c *Catalog) TopGenreSongs(username string, opts TopGenreOptions) ([]domain.Song, error) {
	u, err := c.favouritesUser(username)
	if err != nil {
		return nil, err
	}
	genre, ok := u.TopGenre()
	if !ok {
		return nil, nil
	}

	var (
		out   []domain.Song
		total int
	)
	for _, a := range c.Albums() {
		for _, s := range a.Tracks.Songs() {
			if s.Genre != genre || (opts.ExplicitOnly && !s.IsExplicit()) || containsTrack(out, s) {
				continue
			}
			if opts.MaxSeconds > 0 && total+s.Duration > opts.MaxSeconds {
				return out, nil
			}
			out = append(out, s)
			total += s.Duration
		}
	}
	return out, nil
}

func containsTrack(songs []domain.Song, s domain.Song) bool {
	for i := range songs {
		if songs[i].SameTrack(s) {
			return true
		}
	}
	return false
}

// CreateTopGenrePlaylist stores the TopGenreSongs selection as a private
// playlist owned by the user.
func (c *Catalog) CreateTopGenrePlaylist(username, name string, opts TopGenreOptions) (*domain.Playlist, error) {
	songs, err := c.TopGenreSongs(username, opts)
	if err != nil {
		return nil, err
	}
	if len(songs) == 0 {
		return nil, apperrors.NotFound("top genre songs", username)
	}
	desc := fmt.Sprintf("Top genre playlist created automatically for %s.", username)
	return c.CreatePlaylist(username, name, desc, domain.VisibilityPrivate, songs)
}
