package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/tordrt/liteschema/internal/config"
	"github.com/tordrt/liteschema/internal/db"
	"github.com/tordrt/liteschema/internal/errs"
	"github.com/tordrt/liteschema/internal/logger"
)

const debounceDelay = 100 * time.Millisecond

// watchPath extracts the database file from a database URL
func watchPath(databaseURL string) (string, error) {
	path := strings.TrimPrefix(databaseURL, "sqlite://")
	path = strings.TrimPrefix(path, "file:")
	path, _, _ = strings.Cut(path, "?")

	if path == "" || path == ":memory:" || strings.Contains(databaseURL, "mode=memory") {
		return "", errs.Newf(errs.ErrKindInvalidInput, "cannot watch in-memory database %q", databaseURL)
	}
	return filepath.Abs(path)
}

// changeDetector tells file activity caused by commits apart from activity
// caused by readers, including our own regenerations
type changeDetector interface {
	Changed(ctx context.Context) (bool, error)
}

// databaseWatcher reports changes to a database file and its -wal and
// -journal companions. The directory is watched rather than the file
// because SQLite creates and removes the companions as it goes.
type databaseWatcher struct {
	watcher  *fsnotify.Watcher
	names    map[string]bool
	detector changeDetector
	log      *logger.Logger
}

func newDatabaseWatcher(path string, detector changeDetector, log *logger.Logger) (*databaseWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	base := filepath.Base(path)
	return &databaseWatcher{
		watcher: watcher,
		names: map[string]bool{
			base:              true,
			base + "-wal":     true,
			base + "-journal": true,
		},
		detector: detector,
		log:      log,
	}, nil
}

func (w *databaseWatcher) Close() error {
	return w.watcher.Close()
}

// run debounces file events by delay and hands them to a single worker,
// which calls regenerate when a commit happened since its last check.
// It returns when ctx ends.
func (w *databaseWatcher) run(ctx context.Context, delay time.Duration, regenerate func(context.Context) error) error {
	pending := make(chan struct{}, 1)
	stop := make(chan struct{})
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		w.regenerateOnCommit(ctx, stop, pending, regenerate)
	}()

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
		close(stop)
		<-workerDone
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if !w.names[filepath.Base(event.Name)] {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(delay, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.ErrorWith("watcher error", err, nil)
		}
	}
}

func (w *databaseWatcher) regenerateOnCommit(ctx context.Context, stop <-chan struct{}, pending <-chan struct{}, regenerate func(context.Context) error) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-pending:
		}

		changed, err := w.detector.Changed(ctx)
		if err != nil {
			w.log.ErrorWith("failed to check database for changes", err, nil)
			continue
		}
		if !changed {
			w.log.Debug("database files touched without a new commit")
			continue
		}

		w.log.Debug("database changed, regenerating")
		if err := regenerate(ctx); err != nil {
			w.log.ErrorWith("regeneration failed", err, nil)
		}
	}
}

// watch blocks, regenerating the schema after each commit to the database,
// until ctx is cancelled
func watch(ctx context.Context, cfg *config.Config, log *logger.Logger, regenerate func(context.Context) error) error {
	path, err := watchPath(cfg.Database)
	if err != nil {
		return err
	}

	client, err := db.NewSQLiteClient(ctx, path, db.WithDriver(cfg.Driver))
	if err != nil {
		return fmt.Errorf("failed to open database for watching: %w", err)
	}
	defer func() { _ = client.Close() }()

	tracker, err := client.NewChangeTracker(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tracker.Close() }()

	w, err := newDatabaseWatcher(path, tracker, log)
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	log.Infof("watching %s for changes (Ctrl+C to stop)", path)
	return w.run(ctx, debounceDelay, regenerate)
}
