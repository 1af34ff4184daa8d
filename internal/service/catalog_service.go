// Package service owns the live catalog and moves it to and from a store.
package service

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/listen-stream/catalog/internal/catalog"
	"github.com/listen-stream/catalog/internal/codec"
	"github.com/listen-stream/catalog/internal/playback"
	"github.com/listen-stream/catalog/internal/repository"
	apperrors "github.com/listen-stream/catalog/pkg/errors"
	"github.com/listen-stream/catalog/pkg/logger"
)

// BackupPrefix starts every backup directory name.
const BackupPrefix = "backup_"

// backupStamp is appended to BackupPrefix, e.g. backup_20240501_102030.
const backupStamp = "20060102_150405"

// Config controls CatalogService.
type Config struct {
	// AllowEmpty starts from an empty catalog when the store has nothing.
	AllowEmpty bool
	// BackupDir receives timestamped directory-layout backups.
	BackupDir string
	// Timeout bounds each store call. Zero means no bound.
	Timeout time.Duration
}

// SnapshotStats summarizes one load, save or backup.
type SnapshotStats struct {
	Albums    int
	Users     int
	Playlists int
	Duration  time.Duration
}

func (s SnapshotStats) fields() []logger.Field {
	return []logger.Field{
		logger.Int("albums", s.Albums),
		logger.Int("users", s.Users),
		logger.Int("playlists", s.Playlists),
		logger.Duration("duration", s.Duration),
	}
}

// CatalogService serializes access to the catalog. The scheduler runs on
// its own goroutine, so every read goes through View and every mutation
// through Update.
type CatalogService struct {
	mu      sync.RWMutex
	current *catalog.Catalog
	dirty   atomic.Bool

	store  repository.Store
	engine *playback.Engine
	log    logger.Logger
	cfg    Config
	now    func() time.Time
}

// NewCatalogService creates a service holding an empty catalog until Load
// succeeds.
func NewCatalogService(store repository.Store, engine *playback.Engine, log logger.Logger, cfg Config) *CatalogService {
	if engine == nil {
		engine = playback.NewEngine(nil)
	}
	if log == nil {
		log = logger.Nop()
	}
	return &CatalogService{
		current: catalog.New(catalog.WithEngine(engine)),
		store:   store,
		engine:  engine,
		log:     log.WithFields(logger.String("store", store.Describe())),
		cfg:     cfg,
		now:     time.Now,
	}
}

func (s *CatalogService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.Timeout > 0 {
		return context.WithTimeout(ctx, s.cfg.Timeout)
	}
	return context.WithCancel(ctx)
}

func statsOf(c *catalog.Catalog, start time.Time) SnapshotStats {
	a, u, p := c.Len()
	return SnapshotStats{Albums: a, Users: u, Playlists: p, Duration: time.Since(start)}
}

// Load replaces the live catalog with the stored one. The live catalog is
// untouched when decoding fails.
func (s *CatalogService) Load(ctx context.Context) (SnapshotStats, error) {
	start := time.Now()
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	c, err := s.store.Load(ctx)
	switch {
	case err == nil:
	case s.cfg.AllowEmpty && apperrors.IsError(err, apperrors.ErrNotFound):
		s.log.Warn("No stored catalog, starting empty")
		c = catalog.New()
	default:
		s.log.Error("Failed to load catalog", logger.Error(err))
		return SnapshotStats{}, err
	}
	c.SetEngine(s.engine)

	s.mu.Lock()
	s.current = c
	s.mu.Unlock()
	s.dirty.Store(false)

	stats := statsOf(c, start)
	s.log.Info("Catalog loaded", stats.fields()...)
	return stats, nil
}

// Save writes the live catalog to the store.
func (s *CatalogService) Save(ctx context.Context) (SnapshotStats, error) {
	start := time.Now()
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.store.Save(ctx, s.current); err != nil {
		s.log.Error("Failed to save catalog", logger.Error(err))
		return SnapshotStats{}, err
	}
	s.dirty.Store(false)

	stats := statsOf(s.current, start)
	s.log.Info("Catalog saved", stats.fields()...)
	return stats, nil
}

// SaveIfDirty saves only when Update ran since the last load or save. It
// reports whether a save happened.
func (s *CatalogService) SaveIfDirty(ctx context.Context) (bool, error) {
	if !s.dirty.Load() {
		s.log.Debug("Catalog unchanged, skipping save")
		return false, nil
	}
	if _, err := s.Save(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// Backup writes the live catalog as a directory layout under
// BackupDir/backup_YYYYMMDD_HHMMSS and returns that path.
func (s *CatalogService) Backup(ctx context.Context) (string, error) {
	if s.cfg.BackupDir == "" {
		return "", apperrors.Invalid("backup directory is not configured")
	}
	start := time.Now()
	dir := filepath.Join(s.cfg.BackupDir, BackupPrefix+s.now().Format(backupStamp))
	target := repository.NewFileStore(dir, codec.LayoutDirectory)

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := target.Save(ctx, s.current); err != nil {
		s.log.Error("Failed to back up catalog", logger.String("dir", dir), logger.Error(err))
		return "", err
	}

	stats := statsOf(s.current, start)
	s.log.Info("Catalog backed up", append(stats.fields(), logger.String("dir", dir))...)
	return dir, nil
}

// View runs fn with shared access to the catalog. fn must not mutate it.
func (s *CatalogService) View(fn func(c *catalog.Catalog) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.current)
}

// Update runs fn with exclusive access to the catalog and marks it dirty.
func (s *CatalogService) Update(fn func(c *catalog.Catalog) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirty.Store(true)
	return fn(s.current)
}

// Dirty reports whether the catalog changed since the last load or save.
func (s *CatalogService) Dirty() bool {
	return s.dirty.Load()
}
