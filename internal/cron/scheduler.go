// Package cron runs periodic catalog autosaves and backups.
package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/listen-stream/catalog/pkg/logger"
	"github.com/robfig/cron/v3"
)

// Snapshotter is the part of the catalog service the jobs drive.
type Snapshotter interface {
	SaveIfDirty(ctx context.Context) (bool, error)
	Backup(ctx context.Context) (string, error)
}

// Config holds the job schedules in standard five-field cron syntax or a
// descriptor such as "@every 5m". An empty schedule disables the job.
type Config struct {
	AutosaveSchedule string
	BackupSchedule   string
	// JobTimeout bounds a single run.
	JobTimeout time.Duration
}

// Scheduler owns the cron runner.
type Scheduler struct {
	cron *cron.Cron
	svc  Snapshotter
	log  logger.Logger
	cfg  Config
}

// NewScheduler creates a scheduler. Overlapping runs of the same job are
// skipped.
func NewScheduler(svc Snapshotter, log logger.Logger, cfg Config) *Scheduler {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 5 * time.Minute
	}
	adapter := cronLogger{log: log}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.Local),
			cron.WithLogger(adapter),
			cron.WithChain(cron.Recover(adapter), cron.SkipIfStillRunning(adapter)),
		),
		svc: svc,
		log: log,
		cfg: cfg,
	}
}

// Start registers the configured jobs and starts the runner.
func (s *Scheduler) Start() error {
	if s.cfg.AutosaveSchedule != "" {
		if _, err := s.cron.AddFunc(s.cfg.AutosaveSchedule, s.autosaveJob); err != nil {
			return fmt.Errorf("autosave schedule %q: %w", s.cfg.AutosaveSchedule, err)
		}
	}
	if s.cfg.BackupSchedule != "" {
		if _, err := s.cron.AddFunc(s.cfg.BackupSchedule, s.backupJob); err != nil {
			return fmt.Errorf("backup schedule %q: %w", s.cfg.BackupSchedule, err)
		}
	}

	s.cron.Start()
	s.log.Info("Scheduler started",
		logger.String("autosave", s.cfg.AutosaveSchedule),
		logger.String("backup", s.cfg.BackupSchedule),
		logger.Int("jobs", len(s.cron.Entries())),
	)
	return nil
}

// Stop stops the runner and waits for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("Scheduler stopped")
}

// Jobs returns how many jobs are registered.
func (s *Scheduler) Jobs() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) autosaveJob() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.JobTimeout)
	defer cancel()
	_ = s.RunSaveNow(ctx)
}

func (s *Scheduler) backupJob() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.JobTimeout)
	defer cancel()
	_ = s.RunBackupNow(ctx)
}

// RunSaveNow runs the autosave job immediately.
func (s *Scheduler) RunSaveNow(ctx context.Context) error {
	start := time.Now()
	saved, err := s.svc.SaveIfDirty(ctx)
	if err != nil {
		s.log.Error("Autosave failed", logger.Error(err))
		return err
	}
	s.log.Debug("Autosave finished",
		logger.Bool("saved", saved),
		logger.Duration("duration", time.Since(start)),
	)
	return nil
}

// RunBackupNow runs the backup job immediately.
func (s *Scheduler) RunBackupNow(ctx context.Context) error {
	dir, err := s.svc.Backup(ctx)
	if err != nil {
		s.log.Error("Backup failed", logger.Error(err))
		return err
	}
	s.log.Info("Backup finished", logger.String("dir", dir))
	return nil
}

// cronLogger routes robfig/cron's internal logging to the catalog logger.
type cronLogger struct {
	log logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug("cron: "+msg, kvFields(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error("cron: "+msg, append(kvFields(keysAndValues), logger.Error(err))...)
}

func kvFields(kv []interface{}) []logger.Field {
	fields := make([]logger.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		fields = append(fields, logger.Any(fmt.Sprint(kv[i]), kv[i+1]))
	}
	return fields
}
