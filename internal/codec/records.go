package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/listen-stream/catalog/internal/domain"
)

// legacyTimeLayout is the zone-less ISO local date-time older snapshots
// wrote. It is read as UTC.
const legacyTimeLayout = "2006-01-02T15:04:05.999999999"

// songRecord is the persisted song. Variants are flattened boolean
// discriminators, not a nested tag object.
type songRecord struct {
	Name         string `json:"name"`
	Artist       string `json:"artist"`
	Publisher    string `json:"publisher"`
	Lyrics       string `json:"lyrics"`
	MusicalNotes string `json:"musicalNotes"`
	Genre        string `json:"genre"`
	Duration     int    `json:"durationInSeconds"`
	TimesPlayed  int    `json:"timesPlayed"`
	Explicit     bool   `json:"explicit,omitempty"`
	Multimedia   bool   `json:"multimedia,omitempty"`
	VideoLink    string `json:"videoLink,omitempty"`
}

func encodeSong(s domain.Song) songRecord {
	r := songRecord{
		Name:         s.Name,
		Artist:       s.Artist,
		Publisher:    s.Publisher,
		Lyrics:       s.Lyrics,
		MusicalNotes: s.MusicalNotes,
		Genre:        s.Genre,
		Duration:     s.Duration,
		TimesPlayed:  s.TimesPlayed,
	}
	switch s.Kind {
	case domain.SongExplicit:
		r.Explicit = true
	case domain.SongMultimedia:
		r.Multimedia = true
		r.VideoLink = s.VideoLink
	}
	return r
}

// decodeSong checks multimedia before explicit.
func decodeSong(r songRecord) (domain.Song, error) {
	s := domain.Song{
		Name:         r.Name,
		Artist:       r.Artist,
		Publisher:    r.Publisher,
		Lyrics:       r.Lyrics,
		MusicalNotes: r.MusicalNotes,
		Genre:        r.Genre,
		Duration:     r.Duration,
		TimesPlayed:  r.TimesPlayed,
	}
	switch {
	case r.Multimedia:
		s.Kind = domain.SongMultimedia
		s.VideoLink = r.VideoLink
	case r.Explicit:
		s.Kind = domain.SongExplicit
	default:
		s.Kind = domain.SongStandard
	}
	if err := s.Validate(); err != nil {
		return domain.Song{}, err
	}
	return s, nil
}

// planRecord is the persisted subscription plan.
type planRecord struct {
	Type string `json:"type"`
}

func encodePlan(p domain.Plan) *planRecord {
	return &planRecord{Type: p.Tag()}
}

// decodePlan maps a missing, null or unknown tag to Free.
func decodePlan(r *planRecord) domain.Plan {
	if r == nil {
		return domain.PlanFree
	}
	return domain.ParsePlanTag(r.Type)
}

type historyRecord struct {
	ID   string     `json:"id"`
	Song songRecord `json:"song"`
	Time string     `json:"time"`
}

func encodeHistory(h domain.History) historyRecord {
	return historyRecord{
		ID:   h.ID,
		Song: encodeSong(h.Song),
		Time: h.PlayedAt.UTC().Format(time.RFC3339Nano),
	}
}

func decodeHistory(r historyRecord) (domain.History, error) {
	song, err := decodeSong(r.Song)
	if err != nil {
		return domain.History{}, fmt.Errorf("history %q: %w", r.ID, err)
	}
	at, err := parseTime(r.Time)
	if err != nil {
		return domain.History{}, fmt.Errorf("history %q: %w", r.ID, err)
	}
	return domain.History{ID: r.ID, Song: song, PlayedAt: at}, nil
}

func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.ParseInLocation(legacyTimeLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q", s)
	}
	return t, nil
}

type favouriteRecord struct {
	Album string `json:"album"`
	Song  string `json:"song"`
}

type userRecord struct {
	Name       string            `json:"name"`
	Email      string            `json:"email"`
	Address    string            `json:"address"`
	Plan       *planRecord       `json:"subscriptionplan"`
	Password   string            `json:"password"`
	Points     float64           `json:"pontos"`
	History    []historyRecord   `json:"history"`
	Favourites []favouriteRecord `json:"favourites,omitempty"`
}

func encodeUser(u *domain.User) userRecord {
	r := userRecord{
		Name:     u.Name,
		Email:    u.Email,
		Address:  u.Address,
		Plan:     encodePlan(u.Plan),
		Password: u.Password,
		Points:   u.Points,
		History:  make([]historyRecord, 0, len(u.History)),
	}
	for _, h := range u.History {
		r.History = append(r.History, encodeHistory(h))
	}
	for _, f := range u.Favourites {
		r.Favourites = append(r.Favourites, favouriteRecord{Album: f.Album, Song: f.Song})
	}
	return r
}

func decodeUser(r userRecord) (*domain.User, error) {
	u := &domain.User{
		Name:     r.Name,
		Email:    r.Email,
		Address:  r.Address,
		Plan:     decodePlan(r.Plan),
		Password: r.Password,
		Points:   r.Points,
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	for _, hr := range r.History {
		h, err := decodeHistory(hr)
		if err != nil {
			return nil, err
		}
		u.History = append(u.History, h)
	}
	for _, f := range r.Favourites {
		u.Favourites = append(u.Favourites, domain.FavouriteRef{Album: f.Album, Song: f.Song})
	}
	return u, nil
}

// trackRecord holds the song sequence and current pointer shared by album
// and playlist records. currentSong is the full song object older snapshots
// carry; currentIndex disambiguates when equal tracks repeat.
type trackRecord struct {
	Songs        []songRecord `json:"songs"`
	CurrentSong  *songRecord  `json:"currentSong,omitempty"`
	CurrentIndex *int         `json:"currentIndex,omitempty"`
}

func encodeTracks(t *domain.Tracklist) trackRecord {
	r := trackRecord{Songs: make([]songRecord, 0, t.Len())}
	for _, s := range t.Songs() {
		r.Songs = append(r.Songs, encodeSong(s))
	}
	if cur, ok := t.Current(); ok {
		rec := encodeSong(cur)
		idx := t.CurrentIndex()
		r.CurrentSong = &rec
		r.CurrentIndex = &idx
	}
	return r
}

// decodeTracks resolves the current pointer from currentIndex, then
// currentSong, then falls back to the first song.
func decodeTracks(r trackRecord) (domain.Tracklist, error) {
	songs := make([]domain.Song, 0, len(r.Songs))
	for i, sr := range r.Songs {
		s, err := decodeSong(sr)
		if err != nil {
			return domain.Tracklist{}, fmt.Errorf("song %d: %w", i, err)
		}
		songs = append(songs, s)
	}
	if len(songs) == 0 {
		return domain.Tracklist{}, nil
	}

	current := -1
	if r.CurrentIndex != nil && *r.CurrentIndex >= 0 && *r.CurrentIndex < len(songs) {
		current = *r.CurrentIndex
	} else if r.CurrentSong != nil {
		probe := domain.Song{Name: r.CurrentSong.Name, Artist: r.CurrentSong.Artist, Duration: r.CurrentSong.Duration}
		for i := range songs {
			if songs[i].SameTrack(probe) {
				current = i
				break
			}
		}
	}
	return domain.NewTracklist(songs, current)
}

type albumRecord struct {
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	ReleaseYear int    `json:"releaseYear"`
	Genre       string `json:"genre"`
	trackRecord
}

func encodeAlbum(a *domain.Album) albumRecord {
	return albumRecord{
		Title:       a.Title,
		Artist:      a.Artist,
		ReleaseYear: a.ReleaseYear,
		Genre:       a.Genre,
		trackRecord: encodeTracks(&a.Tracks),
	}
}

func decodeAlbum(r albumRecord) (*domain.Album, error) {
	a := &domain.Album{
		Title:       r.Title,
		Artist:      r.Artist,
		ReleaseYear: r.ReleaseYear,
		Genre:       r.Genre,
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	tracks, err := decodeTracks(r.trackRecord)
	if err != nil {
		return nil, err
	}
	a.Tracks = tracks
	return a, nil
}

// creatorRef is a playlist creator: a username, or a legacy embedded user
// object of which only the name is kept.
type creatorRef string

func (c creatorRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(c))
}

func (c *creatorRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = ""
		return nil
	}
	if len(data) > 0 && data[0] == '{' {
		var legacy struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(data, &legacy); err != nil {
			return err
		}
		*c = creatorRef(legacy.Name)
		return nil
	}
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("creator must be a username or user object: %w", err)
	}
	*c = creatorRef(name)
	return nil
}

type playlistRecord struct {
	Creator     creatorRef `json:"creator"`
	Name        string     `json:"playlistName"`
	Description string     `json:"playlistDescription"`
	Followers   int        `json:"numberOfFollowers"`
	Status      string     `json:"status"`
	trackRecord
}

func encodePlaylist(p *domain.Playlist) playlistRecord {
	return playlistRecord{
		Creator:     creatorRef(p.Creator),
		Name:        p.Name,
		Description: p.Description,
		Followers:   p.Followers,
		Status:      string(p.Visibility),
		trackRecord: encodeTracks(&p.Tracks),
	}
}

func decodePlaylist(r playlistRecord) (*domain.Playlist, error) {
	vis, err := domain.ParseVisibility(r.Status)
	if err != nil {
		return nil, err
	}
	p := &domain.Playlist{
		Creator:     string(r.Creator),
		Name:        r.Name,
		Description: r.Description,
		Followers:   r.Followers,
		Visibility:  vis,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	tracks, err := decodeTracks(r.trackRecord)
	if err != nil {
		return nil, err
	}
	p.Tracks = tracks
	return p, nil
}
