// Package playback implements the navigation state machine shared by albums
// and playlists, gated by the listener's subscription plan.
package playback

import (
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/listen-stream/catalog/internal/domain"
	"github.com/listen-stream/catalog/internal/entitlement"
	apperrors "github.com/listen-stream/catalog/pkg/errors"
)

// Playable is anything with a track sequence and current pointer.
// *domain.Album and *domain.Playlist implement it.
type Playable interface {
	Tracklist() *domain.Tracklist
}

// Source draws random indexes. *rand.Rand satisfies it.
type Source interface {
	// IntN returns a uniform int in [0, n). n > 0.
	IntN(n int) int
}

var (
	errNilListener = apperrors.Invalid("listener is required")
	errNilActor    = apperrors.Invalid("actor is required")
)

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the clock used for history timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDGenerator sets the history id generator.
func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) { e.newID = newID }
}

// Engine drives play/next/previous/shuffle/addTrack/removeTrack. It holds
// no catalog state and is not safe for concurrent use when its Source is
// not.
type Engine struct {
	rnd   Source
	now   func() time.Time
	newID func() string
}

// NewEngine creates an engine drawing from rnd. A nil rnd uses an
// unseeded PCG source.
func NewEngine(rnd Source, opts ...Option) *Engine {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	e := &Engine{
		rnd:   rnd,
		now:   func() time.Time { return time.Now().UTC().Round(0) },
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewSeededEngine creates an engine with a deterministic PCG source.
func NewSeededEngine(seed uint64, opts ...Option) *Engine {
	return NewEngine(rand.New(rand.NewPCG(seed, seed)), opts...)
}

// Play counts one play of the current song, credits the listener's points
// and appends a history snapshot. Empty sequences are a no-op.
func (e *Engine) Play(p Playable, listener *domain.User) error {
	if listener == nil {
		return errNilListener
	}
	song, ok := p.Tracklist().IncrementCurrent()
	if !ok {
		return nil
	}

	listener.Points = entitlement.For(listener.Plan).AddPoints(listener.Points)
	listener.RecordPlay(domain.History{
		ID:       e.newID(),
		Song:     song,
		PlayedAt: e.now(),
	})
	return nil
}

// Next advances circularly when the listener may browse, otherwise jumps
// to a random other song.
func (e *Engine) Next(p Playable, listener *domain.User) error {
	if listener == nil {
		return errNilListener
	}
	t := p.Tracklist()
	n := t.Len()
	if n == 0 {
		return nil
	}
	if !entitlement.For(listener.Plan).CanBrowsePlaylist() {
		e.jump(t)
		return nil
	}
	t.Seek((t.CurrentIndex() + 1) % n)
	return nil
}

// Previous moves back circularly. Listeners who may not browse get
// EntitlementDenied and the pointer stays put.
func (e *Engine) Previous(p Playable, listener *domain.User) error {
	if listener == nil {
		return errNilListener
	}
	t := p.Tracklist()
	n := t.Len()
	if n == 0 {
		return nil
	}
	if !entitlement.For(listener.Plan).CanBrowsePlaylist() {
		return apperrors.Denied("browsing to the previous song")
	}
	t.Seek((t.CurrentIndex() - 1 + n) % n)
	return nil
}

// Shuffle jumps to a random song other than the current one, regardless
// of plan.
func (e *Engine) Shuffle(p Playable) {
	e.jump(p.Tracklist())
}

// jump picks uniformly among the indexes other than current.
func (e *Engine) jump(t *domain.Tracklist) {
	n := t.Len()
	if n <= 1 {
		return
	}
	cur := t.CurrentIndex()
	r := e.rnd.IntN(n - 1)
	if r >= cur {
		r++
	}
	t.Seek(r)
}

// Admitter is implemented by playables with a stricter membership rule
// than track identity, such as albums keyed by song name.
type Admitter interface {
	Admit(song domain.Song) error
}

// AddTrack appends song when the actor may edit playlists. An equal track
// (same name ignoring case, artist and duration) is rejected, as is any song
// the playable's Admit refuses.
func (e *Engine) AddTrack(p Playable, song domain.Song, actor *domain.User) error {
	if actor == nil {
		return errNilActor
	}
	if !entitlement.For(actor.Plan).CanCreatePlaylist() {
		return apperrors.Denied("editing tracks")
	}
	if err := song.Validate(); err != nil {
		return err
	}
	t := p.Tracklist()
	if t.IndexOf(song) >= 0 {
		return apperrors.AlreadyExists(domain.KindSong, song.Name)
	}
	if a, ok := p.(Admitter); ok {
		if err := a.Admit(song); err != nil {
			return err
		}
	}
	t.Append(song)
	return nil
}

// RemoveTrack deletes the first equal track when the actor may edit
// playlists.
func (e *Engine) RemoveTrack(p Playable, song domain.Song, actor *domain.User) error {
	if actor == nil {
		return errNilActor
	}
	if !entitlement.For(actor.Plan).CanCreatePlaylist() {
		return apperrors.Denied("editing tracks")
	}
	t := p.Tracklist()
	i := t.IndexOf(song)
	if i < 0 {
		return apperrors.NotFound(domain.KindSong, song.Name)
	}
	t.RemoveAt(i)
	return nil
}
