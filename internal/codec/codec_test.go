package codec

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/listen-stream/catalog/internal/catalog"
	"github.com/listen-stream/catalog/internal/domain"
	apperrors "github.com/listen-stream/catalog/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var genres = []string{"Grunge", "Metal", "Rock", "Jazz"}

func randomSong(rnd *rand.Rand, name string) domain.Song {
	s := domain.NewSong(name,
		fmt.Sprintf("artist-%d", rnd.IntN(5)),
		"publisher", "la la la", "C D E", genres[rnd.IntN(len(genres))],
		1+rnd.IntN(600))
	s.TimesPlayed = rnd.IntN(50)
	switch rnd.IntN(3) {
	case 1:
		s.Kind = domain.SongExplicit
	case 2:
		s.Kind = domain.SongMultimedia
		if rnd.IntN(2) == 0 {
			s.VideoLink = "https://video.example/" + name
		}
	}
	return s
}

// generateCatalog builds a catalog mixing every song variant and plan.
func generateCatalog(t *testing.T, seed uint64) *catalog.Catalog {
	t.Helper()
	rnd := rand.New(rand.NewPCG(seed, seed+1))
	c := catalog.New()

	for i := 0; i < 4; i++ {
		a := &domain.Album{
			Title:       fmt.Sprintf("album-%d", i),
			Artist:      "artist",
			ReleaseYear: 1990 + i,
			Genre:       genres[i%len(genres)],
		}
		for j := 0; j < rnd.IntN(5); j++ {
			require.NoError(t, a.AddSong(randomSong(rnd, fmt.Sprintf("song-%d-%d", i, j))))
		}
		if n := a.Tracks.Len(); n > 0 {
			a.Tracks.Seek(rnd.IntN(n))
		}
		require.NoError(t, c.AddAlbum(a))
	}

	for i := 0; i < 6; i++ {
		u := &domain.User{
			Name:     fmt.Sprintf("user-%d", i),
			Email:    fmt.Sprintf("user-%d@example.com", i),
			Address:  "Braga",
			Password: "secret",
			Plan:     domain.Plans[i%len(domain.Plans)],
			Points:   rnd.Float64() * 1000,
		}
		for j := 0; j < rnd.IntN(4); j++ {
			u.RecordPlay(domain.History{
				ID:       fmt.Sprintf("h-%d-%d", i, j),
				Song:     randomSong(rnd, fmt.Sprintf("played-%d", j)),
				PlayedAt: time.Unix(1_600_000_000+rnd.Int64N(100_000_000), rnd.Int64N(1e9)).UTC(),
			})
		}
		if rnd.IntN(2) == 0 {
			require.NoError(t, u.AddFavourite(domain.FavouriteRef{Album: "album-0", Song: "song-0-0"}))
		}
		require.NoError(t, c.AddUser(u))
	}

	for i := 0; i < 5; i++ {
		p := &domain.Playlist{
			Creator:     fmt.Sprintf("user-%d", i),
			Name:        fmt.Sprintf("playlist-%d", i),
			Description: "generated",
			Followers:   rnd.IntN(1000),
			Visibility:  []domain.Visibility{domain.VisibilityPublic, domain.VisibilityPrivate}[i%2],
		}
		for j := 0; j < rnd.IntN(5); j++ {
			p.Tracks.Append(randomSong(rnd, fmt.Sprintf("track-%d", j)))
		}
		if n := p.Tracks.Len(); n > 0 {
			p.Tracks.Seek(rnd.IntN(n))
		}
		require.NoError(t, c.AddPlaylist(p))
	}
	return c
}

func assertCatalogEqual(t *testing.T, want, got *catalog.Catalog) {
	t.Helper()
	assert.Equal(t, want.Albums(), got.Albums())
	assert.Equal(t, want.Users(), got.Users())
	assert.Equal(t, want.Playlists(), got.Playlists())
}

func TestRoundTripDocument(t *testing.T) {
	for seed := uint64(0); seed < 20; seed++ {
		c := generateCatalog(t, seed)

		data, err := EncodeDocument(c)
		require.NoError(t, err)

		got, err := DecodeDocument(data)
		require.NoError(t, err, "seed %d", seed)
		assertCatalogEqual(t, c, got)
	}
}

func TestRoundTripCollections(t *testing.T) {
	c := generateCatalog(t, 42)

	enc, err := EncodeCollections(c)
	require.NoError(t, err)
	for _, name := range Collections {
		assert.NotEmpty(t, enc.Get(name), name)
	}

	got, err := DecodeCollections(enc)
	require.NoError(t, err)
	assertCatalogEqual(t, c, got)
}

func TestRoundTripEmpty(t *testing.T) {
	c := catalog.New()
	data, err := EncodeDocument(c)
	require.NoError(t, err)

	got, err := DecodeDocument(data)
	require.NoError(t, err)
	a, u, p := got.Len()
	assert.Zero(t, a+u+p)
}

func TestSongDiscriminators(t *testing.T) {
	mm := encodeSong(domain.NewMultimediaSong("a", "b", "", "", "", "", 1, "http://v"))
	data, err := json.Marshal(mm)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.Equal(t, true, fields["multimedia"])
	assert.Equal(t, "http://v", fields["videoLink"])
	assert.NotContains(t, fields, "explicit")

	std, err := json.Marshal(encodeSong(domain.NewSong("a", "b", "", "", "", "", 1)))
	require.NoError(t, err)
	assert.NotContains(t, string(std), "explicit")
	assert.NotContains(t, string(std), "multimedia")

	// multimedia wins over explicit
	both, err := decodeSong(songRecord{Name: "x", Duration: 1, Explicit: true, Multimedia: true})
	require.NoError(t, err)
	assert.Equal(t, domain.SongMultimedia, both.Kind)
	assert.Empty(t, both.VideoLink)

	// a video link off the multimedia variant never reaches a document
	stray := domain.NewSong("a", "b", "", "", "", "", 1)
	stray.VideoLink = "http://v"
	_, err = domain.NewAlbum("A", "b", 2000, "", []domain.Song{stray})
	assert.ErrorIs(t, err, domain.ErrInvalidVideoLink)

	album, err := domain.NewAlbum("A", "b", 2000, "", []domain.Song{domain.NewMultimediaSong("a", "b", "", "", "", "", 1, "http://v")})
	require.NoError(t, err)
	c := catalog.New()
	require.NoError(t, c.AddAlbum(album))
	data, err = EncodeDocument(c)
	require.NoError(t, err)
	got, err := DecodeDocument(data)
	require.NoError(t, err)
	assertCatalogEqual(t, c, got)
}

const legacyDocument = `{
  "albums": {
    "Jar Of Flies": {
      "title": "Jar Of Flies",
      "artist": "Alice In Chains",
      "releaseYear": 1994,
      "genre": "Grunge",
      "songs": [
        {"name": "Rotten Apple", "artist": "Alice In Chains", "publisher": "Columbia", "lyrics": "", "musicalNotes": "", "genre": "Grunge", "durationInSeconds": 418, "timesPlayed": 3},
        {"name": "Nutshell", "artist": "Alice In Chains", "publisher": "Columbia", "lyrics": "", "musicalNotes": "", "genre": "Grunge", "durationInSeconds": 259, "timesPlayed": 0, "explicit": true}
      ]
    }
  },
  "users": {
    "layne": {
      "name": "layne", "email": "layne@example.com", "address": "Seattle",
      "subscriptionplan": {"type": "PremiumTop"},
      "password": "pw", "pontos": 12.5,
      "history": [
        {"song": {"name": "Would?", "artist": "Alice In Chains", "genre": "Grunge", "durationInSeconds": 205, "timesPlayed": 1, "multimedia": true, "videoLink": "http://v/would"}, "time": "2024-05-01T10:20:30.123"}
      ]
    },
    "jerry": {"name": "jerry", "subscriptionplan": {}, "pontos": 0, "history": []},
    "sean": {"name": "sean", "subscriptionplan": {"type": "GoldPlan"}, "history": []},
    "mike": {"name": "mike", "history": [], "shoeSize": 44}
  },
  "playlists": {
    "mix": {
      "creator": {"name": "layne", "email": "layne@example.com", "subscriptionplan": {"type": "PremiumTop"}, "history": []},
      "playlistName": "mix",
      "playlistDescription": "late night",
      "numberOfFollowers": 4,
      "status": "Public",
      "songs": [
        {"name": "Rooster", "artist": "Alice In Chains", "genre": "Metal", "durationInSeconds": 375, "timesPlayed": 0},
        {"name": "Down In A Hole", "artist": "Alice In Chains", "genre": "Grunge", "durationInSeconds": 338, "timesPlayed": 2}
      ],
      "currentSong": {"name": "Down In A Hole", "artist": "Alice In Chains", "genre": "Grunge", "durationInSeconds": 338, "timesPlayed": 0}
    }
  }
}`

func TestDecodeLegacyDocument(t *testing.T) {
	c, err := DecodeDocument([]byte(legacyDocument))
	require.NoError(t, err)

	album, err := c.Album("Jar Of Flies")
	require.NoError(t, err)
	cur, ok := album.Tracks.Current()
	require.True(t, ok)
	assert.Equal(t, "Rotten Apple", cur.Name)
	nutshell, _ := album.Tracks.At(1)
	assert.True(t, nutshell.IsExplicit())

	layne, err := c.User("layne")
	require.NoError(t, err)
	assert.Equal(t, domain.PlanPremiumTop, layne.Plan)
	assert.Equal(t, 12.5, layne.Points)
	require.Len(t, layne.History, 1)
	h := layne.History[0]
	assert.Empty(t, h.ID)
	assert.True(t, h.Song.IsMultimedia())
	assert.Equal(t, "http://v/would", h.Song.VideoLink)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 20, 30, 123_000_000, time.UTC), h.PlayedAt)

	for _, name := range []string{"jerry", "sean", "mike"} {
		u, err := c.User(name)
		require.NoError(t, err)
		assert.Equal(t, domain.PlanFree, u.Plan, name)
	}

	mix, err := c.Playlist("mix")
	require.NoError(t, err)
	assert.Equal(t, "layne", mix.Creator)
	assert.Equal(t, domain.VisibilityPublic, mix.Visibility)
	assert.Equal(t, 4, mix.Followers)
	assert.Equal(t, 1, mix.Tracks.CurrentIndex())
}

func TestDecodeCreatorAsUsername(t *testing.T) {
	doc := `{"playlists": {"p": {"creator": "layne", "playlistName": "p", "status": "private", "songs": []}}}`
	c, err := DecodeDocument([]byte(doc))
	require.NoError(t, err)

	p, err := c.Playlist("p")
	require.NoError(t, err)
	assert.Equal(t, "layne", p.Creator)
	assert.True(t, p.IsPrivate())
	assert.True(t, p.Tracks.IsEmpty())
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name       string
		doc        string
		collection string
		key        string
	}{
		{"not json", `{"albums": `, "catalog", ""},
		{"null document", `null`, "catalog", ""},
		{"bad album entry", `{"albums": {"Dirt": {"title": "Dirt", "releaseYear": "1992"}}}`, CollectionAlbums, "Dirt"},
		{"key mismatch", `{"albums": {"Dirt": {"title": "Facelift"}}}`, CollectionAlbums, "Dirt"},
		{"zero duration", `{"albums": {"Dirt": {"title": "Dirt", "songs": [{"name": "Rooster", "durationInSeconds": 0}]}}}`, CollectionAlbums, "Dirt"},
		{"bad time", `{"users": {"u": {"name": "u", "history": [{"song": {"name": "x", "durationInSeconds": 1}, "time": "yesterday"}]}}}`, CollectionUsers, "u"},
		{"bad status", `{"playlists": {"p": {"creator": "u", "playlistName": "p", "status": "friends"}}}`, CollectionPlaylists, "p"},
		{"bad creator", `{"playlists": {"p": {"creator": 7, "playlistName": "p", "status": "public"}}}`, CollectionPlaylists, "p"},
		{"collection not object", `{"users": [1, 2]}`, CollectionUsers, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeDocument([]byte(tt.doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrDecode)

			var appErr *apperrors.Error
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, map[string]string{"collection": tt.collection, "key": tt.key}, appErr.Details)
		})
	}
}

func TestParseTime(t *testing.T) {
	want := time.Date(2024, 5, 1, 10, 20, 30, 0, time.UTC)

	got, err := parseTime("2024-05-01T10:20:30Z")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = parseTime("2024-05-01T12:20:30+02:00")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = parseTime("2024-05-01T10:20:30")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = parseTime("")
	assert.Error(t, err)
}

func TestDetectLayout(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, LayoutDirectory, DetectLayout(dir))
	assert.Equal(t, LayoutFile, DetectLayout(filepath.Join(dir, "catalog.json")))

	l, err := ParseLayout("")
	require.NoError(t, err)
	assert.Equal(t, LayoutAuto, l)
	_, err = ParseLayout("zip")
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
}

func TestSaveLoadFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "catalog.json")
	c := generateCatalog(t, 7)

	require.NoError(t, Save(c, path, LayoutAuto))
	assert.Equal(t, LayoutFile, DetectLayout(path))

	got, err := Load(ctx, path)
	require.NoError(t, err)
	assertCatalogEqual(t, c, got)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestSaveLoadDirectory(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "data")
	c := generateCatalog(t, 8)

	require.NoError(t, Save(c, dir, LayoutDirectory))
	for _, name := range Collections {
		assert.FileExists(t, filepath.Join(dir, FileName(name)))
	}

	got, err := Load(ctx, dir)
	require.NoError(t, err)
	assertCatalogEqual(t, c, got)

	// auto keeps the directory layout on the next save
	require.NoError(t, Save(got, dir, LayoutAuto))
	assert.Equal(t, LayoutDirectory, DetectLayout(dir))
}

func TestLoadDirectoryMissingFiles(t *testing.T) {
	dir := t.TempDir()
	users := `{"u": {"name": "u", "subscriptionplan": {"type": "PremiumBase"}, "history": []}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName(CollectionUsers)), []byte(users), 0o644))

	c, err := Load(context.Background(), dir)
	require.NoError(t, err)
	a, u, p := c.Len()
	assert.Equal(t, [3]int{0, 1, 0}, [3]int{a, u, p})
}

func TestLoadDirectoryMalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName(CollectionPlaylists)), []byte(`{"p": 1}`), 0o644))

	_, err := Load(context.Background(), dir)
	assert.ErrorIs(t, err, apperrors.ErrDecode)
}

func TestLoadMissingPath(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
