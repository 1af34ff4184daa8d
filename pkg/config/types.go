// Package config loads catalog configuration from a YAML file and CATALOG_*
// environment variables.
//
// Example usage:
//
//	cfg, err := config.NewFileLoader("config/catalog.yaml").Load()
//	if err != nil {
//		log.Fatal(err)
//	}
package config

import "time"

// Storage backends.
const (
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// File layouts.
const (
	LayoutAuto      = "auto"
	LayoutFile      = "file"
	LayoutDirectory = "directory"
)

// Config represents the application configuration.
type Config struct {
	Storage  StorageConfig  `mapstructure:"storage"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Backup   BackupConfig   `mapstructure:"backup"`
	Autosave AutosaveConfig `mapstructure:"autosave"`
	Log      LogConfig      `mapstructure:"log"`
	Playback PlaybackConfig `mapstructure:"playback"`
}

// StorageConfig selects where the catalog snapshot lives.
type StorageConfig struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`   // file backend only
	Layout  string `mapstructure:"layout"` // file backend only
	// AllowEmpty starts from an empty catalog when no snapshot exists yet.
	AllowEmpty bool          `mapstructure:"allow_empty"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// PostgresConfig holds PostgreSQL connection settings.
type PostgresConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// BackupConfig controls timestamped directory backups.
type BackupConfig struct {
	Dir      string `mapstructure:"dir"`
	Schedule string `mapstructure:"schedule"` // cron spec, empty disables
}

// AutosaveConfig controls periodic saves to the configured store.
type AutosaveConfig struct {
	Schedule string `mapstructure:"schedule"` // cron spec, empty disables
}

// LogConfig controls the logger.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"` // empty logs to stdout
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	Caller     bool   `mapstructure:"caller"`
}

// PlaybackConfig controls the playback engine.
type PlaybackConfig struct {
	// Seed for the shuffle source; 0 seeds from the clock.
	Seed uint64 `mapstructure:"seed"`
}
