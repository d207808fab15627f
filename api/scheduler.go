/*
scheduler.go - Periodic JSON backups

PURPOSE:
  Writes an export of the books into a directory on a fixed interval, so
  a server with a broken store still leaves restorable backups behind.

DESIGN:
  - Runs a background goroutine with configurable interval
  - Runs once immediately on Start
  - Files are named like manual exports (business_manager_backup_YYYY-MM-DD.json);
    a second run on the same day overwrites that day's file
  - Writes go to a temp file first and are renamed into place

CONFIGURATION:
  - BOOKS_BACKUP_DIR: target directory (scheduler off when empty)
  - BOOKS_BACKUP_INTERVAL: how often to write (default: 24h)

USAGE:
  scheduler := NewBackupScheduler(books, dir, interval, log)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: Export endpoint (manual backup)
  - bookkeeping/snapshot.go: Backup format
*/
package api

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/warp/books-engine/bookkeeping"
)

// BackupScheduler writes periodic backups of the books.
type BackupScheduler struct {
	Books    *bookkeeping.Books
	Dir      string
	Interval time.Duration
	Log      logrus.FieldLogger

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewBackupScheduler creates a new scheduler.
func NewBackupScheduler(books *bookkeeping.Books, dir string, interval time.Duration, log logrus.FieldLogger) *BackupScheduler {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &BackupScheduler{
		Books:    books,
		Dir:      dir,
		Interval: interval,
		Log:      log.WithField("component", "backup"),
	}
}

// Start begins the scheduler. Calling Start twice is a no-op.
func (s *BackupScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker != nil {
		return
	}
	s.ticker = time.NewTicker(s.Interval)
	s.stop = make(chan struct{})
	s.wg.Add(1)

	go s.run(s.ticker, s.stop)

	s.Log.WithFields(logrus.Fields{"dir": s.Dir, "interval": s.Interval.String()}).Info("backup scheduler started")
}

// Stop stops the scheduler and waits for a running backup to finish.
func (s *BackupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker == nil {
		return
	}
	s.ticker.Stop()
	close(s.stop)
	s.wg.Wait()
	s.ticker = nil
	s.Log.Info("backup scheduler stopped")
}

func (s *BackupScheduler) run(ticker *time.Ticker, stop <-chan struct{}) {
	defer s.wg.Done()

	s.runLogged()
	for {
		select {
		case <-ticker.C:
			s.runLogged()
		case <-stop:
			return
		}
	}
}

func (s *BackupScheduler) runLogged() {
	path, err := s.RunOnce()
	if err != nil {
		s.Log.WithError(err).Error("backup failed")
		return
	}
	s.Log.WithField("path", path).Info("backup written")
}

// RunOnce writes one backup and returns its path.
func (s *BackupScheduler) RunOnce() (string, error) {
	raw, name, err := s.Books.Export()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}

	tmp, err := os.CreateTemp(s.Dir, name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write backup: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close backup: %w", err)
	}

	path := filepath.Join(s.Dir, name)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("rename backup: %w", err)
	}
	return path, nil
}
