package domain

import (
	"testing"

	apperrors "github.com/listen-stream/catalog/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSongValidate(t *testing.T) {
	tests := []struct {
		name    string
		song    Song
		wantErr error
	}{
		{"valid", NewSong("Nutshell", "Alice In Chains", "", "", "", "Grunge", 259), nil},
		{"empty name", NewSong("  ", "x", "", "", "", "", 10), ErrInvalidSongName},
		{"zero duration", NewSong("x", "x", "", "", "", "", 0), ErrInvalidDuration},
		{"negative plays", Song{Name: "x", Duration: 1, TimesPlayed: -1}, ErrInvalidPlayCount},
		{"standard with video", Song{Name: "x", Duration: 1, VideoLink: "http://v"}, ErrInvalidVideoLink},
		{"explicit with video", Song{Name: "x", Duration: 1, Kind: SongExplicit, VideoLink: "http://v"}, ErrInvalidVideoLink},
		{"multimedia with video", NewMultimediaSong("x", "y", "", "", "", "", 1, "http://v"), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.song.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
		})
	}
}

func TestSongVariants(t *testing.T) {
	std := NewSong("a", "b", "", "", "", "", 1)
	exp := NewExplicitSong("a", "b", "", "", "", "", 1)
	mm := NewMultimediaSong("a", "b", "", "", "", "", 1, "https://video.example/a")

	assert.False(t, std.IsExplicit())
	assert.True(t, exp.IsExplicit())
	assert.True(t, mm.IsMultimedia())
	assert.Equal(t, "https://video.example/a", mm.VideoLink)
	assert.Equal(t, "multimedia", mm.Kind.String())

	// variant fields are not part of track identity
	assert.True(t, std.SameTrack(mm))
}

func TestPlanTags(t *testing.T) {
	for _, p := range Plans {
		assert.Equal(t, p, ParsePlanTag(p.Tag()))
	}
	assert.Equal(t, PlanFree, ParsePlanTag(""))
	assert.Equal(t, PlanFree, ParsePlanTag("GoldPlan"))
	assert.Equal(t, "PremiumTop", PlanPremiumTop.String())

	var zero Plan
	assert.Equal(t, PlanFree, zero)
}

func TestAlbumAddSong(t *testing.T) {
	album, err := NewAlbum("Jar Of Flies", "Alice In Chains", 1994, "Grunge", nil)
	require.NoError(t, err)

	require.NoError(t, album.AddSong(songNamed("Halo")))

	err = album.AddSong(songNamed("Halo"))
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)

	err = album.AddSong(songNamed("halo"))
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)

	err = album.AddSong(NewSong("", "x", "", "", "", "", 10))
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)

	assert.Equal(t, 1, album.Tracks.Len())
}

func TestNewAlbum(t *testing.T) {
	_, err := NewAlbum(" ", "x", 2000, "", nil)
	assert.ErrorIs(t, err, ErrInvalidAlbumTitle)

	album, err := NewAlbum("Dirt", "Alice In Chains", 1992, "Grunge",
		[]Song{songNamed("Rain When I Die"), songNamed("Rooster")})
	require.NoError(t, err)
	cur, ok := album.Tracklist().Current()
	require.True(t, ok)
	assert.Equal(t, "Rain When I Die", cur.Name)
	assert.Equal(t, 400, album.TotalDuration())
}

func TestAlbumRemoveSong(t *testing.T) {
	album, err := NewAlbum("Dirt", "Alice In Chains", 1992, "Grunge",
		[]Song{songNamed("Rain When I Die"), songNamed("Rooster")})
	require.NoError(t, err)

	s, err := album.Song("ROOSTER")
	require.NoError(t, err)
	assert.Equal(t, "Rooster", s.Name)

	removed, err := album.RemoveSong("rooster")
	require.NoError(t, err)
	assert.Equal(t, "Rooster", removed.Name)

	_, err = album.RemoveSong("rooster")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestParseVisibility(t *testing.T) {
	v, err := ParseVisibility("Public")
	require.NoError(t, err)
	assert.Equal(t, VisibilityPublic, v)

	v, err = ParseVisibility(" PRIVATE ")
	require.NoError(t, err)
	assert.Equal(t, VisibilityPrivate, v)

	_, err = ParseVisibility("friends")
	assert.ErrorIs(t, err, ErrInvalidVisibility)
}

func TestPlaylistValidate(t *testing.T) {
	p := Playlist{Creator: "layne", Name: "grunge", Visibility: VisibilityPublic}
	assert.NoError(t, p.Validate())
	assert.True(t, p.IsPublic())
	assert.True(t, p.CreatedBy("layne"))

	p.Followers = -1
	assert.ErrorIs(t, p.Validate(), ErrInvalidFollowers)

	p = Playlist{Creator: "layne", Name: "grunge"}
	assert.ErrorIs(t, p.Validate(), ErrInvalidVisibility)

	p = Playlist{Name: "grunge", Visibility: VisibilityPrivate}
	assert.ErrorIs(t, p.Validate(), ErrInvalidUserName)
}

func TestPlaylistEvictTrack(t *testing.T) {
	p := Playlist{Creator: "layne", Name: "mix", Visibility: VisibilityPrivate}
	p.Tracks.Append(songNamed("a"))
	p.Tracks.Append(songNamed("b"))
	p.Tracks.Append(songNamed("a"))

	assert.Equal(t, 2, p.EvictTrack(songNamed("A")))
	assert.Equal(t, 1, p.Tracks.Len())
	assert.Equal(t, 0, p.EvictTrack(songNamed("zzz")))
}

func TestUserFavourites(t *testing.T) {
	u := User{Name: "jerry"}
	ref := FavouriteRef{Album: "Dirt", Song: "Rooster"}

	require.NoError(t, u.AddFavourite(ref))
	assert.True(t, u.HasFavourite(FavouriteRef{Album: "Dirt", Song: "rooster"}))
	assert.ErrorIs(t, u.AddFavourite(ref), apperrors.ErrAlreadyExists)

	require.NoError(t, u.RemoveFavourite(ref))
	assert.Nil(t, u.Favourites)
	assert.ErrorIs(t, u.RemoveFavourite(ref), apperrors.ErrNotFound)
}

func TestUserTopGenre(t *testing.T) {
	u := User{Name: "jerry"}
	_, ok := u.TopGenre()
	assert.False(t, ok)

	for _, g := range []string{"Rock", "Grunge", "Rock", "Grunge", "Metal"} {
		s := songNamed("x")
		s.Genre = g
		u.RecordPlay(History{ID: g, Song: s})
	}

	genre, ok := u.TopGenre()
	require.True(t, ok)
	assert.Equal(t, "Grunge", genre)
	assert.Len(t, u.History, 5)
}
