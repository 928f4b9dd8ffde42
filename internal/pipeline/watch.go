package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/backmassage/bitcap/internal/config"
	"github.com/backmassage/bitcap/internal/logging"
)

// Watch runs a batch, then keeps watching cfg.InputDir and runs again once
// new candidate files have stopped changing for cfg.WatchSettle(). It
// returns nil when ctx is cancelled. Files already processed are skipped by
// the output-exists check, so repeated runs are safe.
//
// The returned bool reports whether any run recorded a failed file.
func Watch(ctx context.Context, cfg *config.Config, log *logging.Logger) (bool, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return false, fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	// Subscribe before the first run so files arriving during it trigger
	// a follow-up run.
	if err := w.Add(cfg.InputDir); err != nil {
		return false, fmt.Errorf("watch %s: %w", cfg.InputDir, err)
	}

	var failed bool
	runOnce := func() error {
		stats, err := Run(ctx, cfg, log)
		if err != nil {
			return err
		}
		failed = failed || stats.HasFailures()
		return nil
	}

	if err := runOnce(); err != nil {
		return failed, err
	}
	log.Info("Watching %s for new files (Ctrl+C to stop)", cfg.InputDir)

	settle := cfg.WatchSettle()
	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return failed, nil

		case ev, ok := <-w.Events:
			if !ok {
				return failed, nil
			}
			if !isCandidateEvent(ev, cfg.Extensions) {
				continue
			}
			log.Debug("Change detected: %s", filepath.Base(ev.Name))
			pending = time.After(settle)

		case err, ok := <-w.Errors:
			if !ok {
				return failed, nil
			}
			log.Warn("Watch error: %v", err)

		case <-pending:
			pending = nil
			if err := runOnce(); err != nil {
				if errors.Is(err, ErrLocked) {
					log.Warn("Skipping rerun: %v", err)
					continue
				}
				return failed, err
			}
			if ctx.Err() == nil {
				log.Info("Watching %s for new files (Ctrl+C to stop)", cfg.InputDir)
			}
		}
	}
}

// isCandidateEvent reports whether ev creates or modifies a file whose
// extension is one of exts. Removals and renames away are ignored; the
// batch itself produces those when it moves or replaces sources.
func isCandidateEvent(ev fsnotify.Event, exts []string) bool {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return false
	}
	return slices.Contains(exts, strings.ToLower(filepath.Ext(ev.Name)))
}
