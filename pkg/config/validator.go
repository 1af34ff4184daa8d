package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/robfig/cron/v3"

	"github.com/listen-stream/catalog/pkg/logger"
)

// Validator checks a decoded Config.
type Validator struct {
	parser cron.Parser
}

// NewValidator creates a new validator.
func NewValidator() *Validator {
	return &Validator{
		parser: cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
	}
}

// Validate returns every problem found, joined.
func (v *Validator) Validate(cfg *Config) error {
	var errs []error

	switch cfg.Storage.Backend {
	case BackendFile:
		if strings.TrimSpace(cfg.Storage.Path) == "" {
			errs = append(errs, errors.New("storage.path is required for the file backend"))
		}
		switch cfg.Storage.Layout {
		case LayoutAuto, LayoutFile, LayoutDirectory:
		default:
			errs = append(errs, fmt.Errorf("storage.layout %q must be one of auto, file, directory", cfg.Storage.Layout))
		}
		// A single-file catalog cannot have a backup directory below it.
		if cfg.Storage.Layout != LayoutDirectory && cfg.Backup.Dir != "" && within(cfg.Backup.Dir, cfg.Storage.Path) {
			errs = append(errs, fmt.Errorf("backup.dir %q must not be inside storage.path %q unless storage.layout is directory", cfg.Backup.Dir, cfg.Storage.Path))
		}
	case BackendRedis:
		if cfg.Redis.Host == "" || cfg.Redis.Port <= 0 {
			errs = append(errs, errors.New("redis.host and redis.port are required for the redis backend"))
		}
	case BackendPostgres:
		if cfg.Postgres.Host == "" || cfg.Postgres.Database == "" {
			errs = append(errs, errors.New("postgres.host and postgres.database are required for the postgres backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.backend %q must be one of file, redis, postgres", cfg.Storage.Backend))
	}

	if _, err := logger.ParseLevel(cfg.Log.Level); err != nil {
		errs = append(errs, err)
	}

	if cfg.Autosave.Schedule != "" {
		if _, err := v.parser.Parse(cfg.Autosave.Schedule); err != nil {
			errs = append(errs, fmt.Errorf("autosave.schedule: %w", err))
		}
	}
	if cfg.Backup.Schedule != "" {
		if _, err := v.parser.Parse(cfg.Backup.Schedule); err != nil {
			errs = append(errs, fmt.Errorf("backup.schedule: %w", err))
		}
		if cfg.Backup.Dir == "" {
			errs = append(errs, errors.New("backup.dir is required when backup.schedule is set"))
		}
	}

	return errors.Join(errs...)
}

// within reports whether path is root or lies below it.
func within(path, root string) bool {
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
