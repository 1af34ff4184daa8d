package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// RotateWriter is a file writer that rolls the file over once it exceeds
// MaxSize, keeping at most MaxBackups rolled files next to it.
type RotateWriter struct {
	filename    string
	file        *os.File
	mu          sync.Mutex
	maxSize     int64
	maxBackups  int
	currentSize int64
	now         func() time.Time
}

// RotateConfig holds configuration for log rotation.
type RotateConfig struct {
	Filename   string // Log file path
	MaxSize    int64  // Max size in bytes (default: 10MB)
	MaxBackups int    // Max number of rolled files, 0 keeps all
}

// DefaultRotateConfig returns default rotation configuration.
func DefaultRotateConfig(filename string) *RotateConfig {
	return &RotateConfig{
		Filename:   filename,
		MaxSize:    10 * 1024 * 1024,
		MaxBackups: 5,
	}
}

// NewRotateWriter creates a new rotating file writer.
func NewRotateWriter(cfg *RotateConfig) (*RotateWriter, error) {
	if cfg == nil {
		return nil, fmt.Errorf("rotate config cannot be nil")
	}
	if cfg.Filename == "" {
		return nil, fmt.Errorf("filename cannot be empty")
	}
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = 10 * 1024 * 1024
	}
	if cfg.MaxBackups < 0 {
		cfg.MaxBackups = 0
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Filename), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	w := &RotateWriter{
		filename:   cfg.Filename,
		maxSize:    cfg.MaxSize,
		maxBackups: cfg.MaxBackups,
		now:        time.Now,
	}
	if err := w.openFile(); err != nil {
		return nil, err
	}
	return w, nil
}

// Write implements io.Writer.
func (w *RotateWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return 0, os.ErrClosed
	}
	if w.currentSize > 0 && w.currentSize+int64(len(p)) > w.maxSize {
		if err := w.rotate(); err != nil {
			return 0, err
		}
	}

	n, err := w.file.Write(p)
	w.currentSize += int64(n)
	return n, err
}

// Close closes the log file. It is safe to call more than once.
func (w *RotateWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

func (w *RotateWriter) openFile() error {
	if info, err := os.Stat(w.filename); err == nil {
		w.currentSize = info.Size()
	} else {
		w.currentSize = 0
	}

	file, err := os.OpenFile(w.filename, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	w.file = file
	return nil
}

func (w *RotateWriter) rotate() error {
	if err := w.file.Close(); err != nil {
		return err
	}

	ext := filepath.Ext(w.filename)
	stem := strings.TrimSuffix(w.filename, ext)
	backup := fmt.Sprintf("%s-%s%s", stem, w.now().Format("20060102-150405.000000000"), ext)
	if err := os.Rename(w.filename, backup); err != nil {
		return fmt.Errorf("failed to rename log file: %w", err)
	}

	w.prune()
	return w.openFile()
}

// prune removes the oldest rolled files beyond maxBackups. Backup names embed
// a sortable timestamp, so lexical order is age order.
func (w *RotateWriter) prune() {
	if w.maxBackups == 0 {
		return
	}
	ext := filepath.Ext(w.filename)
	stem := strings.TrimSuffix(w.filename, ext)
	matches, err := filepath.Glob(stem + "-*" + ext)
	if err != nil || len(matches) <= w.maxBackups {
		return
	}
	sort.Strings(matches)
	for _, f := range matches[:len(matches)-w.maxBackups] {
		_ = os.Remove(f)
	}
}
