package index

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/srtbspeeds/internal/storage"
)

// Event kinds reported to an EventCallback.
const (
	EventCreated    = "created"
	EventUpdated    = "updated"
	EventDeleted    = "deleted"
	EventIntegrated = "integrated"
)

// EventCallback is called after a watcher-driven change.
// kind is one of the Event* constants; path is library-relative. key names
// the speed-trigger entry written by an integration and is empty otherwise.
type EventCallback func(kind, path, key string)

// SidecarFunc integrates a changed .speeds file (library-relative path) into
// its chart and returns the chart path and the key it was stored under.
type SidecarFunc func(ctx context.Context, path string) (chart, key string, err error)

// WatchOptions tunes Watch.
type WatchOptions struct {
	// Debounce delays rename reconciliation and sidecar integration so
	// bursts of writes collapse into one pass.
	Debounce time.Duration
	// OnSidecar, when non-nil, is called for created or modified .speeds files.
	OnSidecar SidecarFunc
}

// Watch starts an fsnotify watcher on the library root and processes file
// change events until ctx is cancelled. It calls cb (if non-nil) after
// each successful index mutation or sidecar integration.
//
// New directories created at runtime are automatically added to the watch
// list. Rename events trigger a reconciliation pass that removes stale
// index entries whose files no longer exist on disk.
func Watch(ctx context.Context, db ChartIndex, store storage.Provider, logger *slog.Logger, opts WatchOptions, cb EventCallback) error {
	root := store.Root()
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, root); err != nil {
		return err
	}

	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}
	notify := func(kind, path, key string) {
		if cb != nil {
			cb(kind, path, key)
		}
	}

	logger.Info("watcher: started", slog.String("root", root))

	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time
	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(debounce)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(debounce)
		}
	}

	pendingSidecars := make(map[string]struct{})
	var sidecarTimer *time.Timer
	var sidecarCh <-chan time.Time
	scheduleSidecar := func(rel string) {
		pendingSidecars[rel] = struct{}{}
		if sidecarTimer == nil {
			sidecarTimer = time.NewTimer(debounce)
			sidecarCh = sidecarTimer.C
		} else {
			sidecarTimer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			if sidecarTimer != nil {
				sidecarTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			reconcileAfterRename(db, store, logger, notify)

		case <-sidecarCh:
			for rel := range pendingSidecars {
				delete(pendingSidecars, rel)
				chart, key, err := opts.OnSidecar(ctx, rel)
				if err != nil {
					logger.Warn("watcher: sidecar integration failed",
						slog.String("path", rel),
						slog.String("error", err.Error()))
					continue
				}
				logger.Info("watcher: sidecar integrated",
					slog.String("path", rel),
					slog.String("chart", chart),
					slog.String("key", key))
				notify(EventIntegrated, chart, key)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			absPath := ev.Name

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(absPath); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, absPath); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", absPath),
							slog.String("error", addErr.Error()))
					} else {
						logger.Debug("watcher: watching new dir", slog.String("path", absPath))
					}
					indexNewDir(db, store, absPath, logger, notify)
					continue
				}
			}

			rel, relErr := store.Rel(absPath)
			if relErr != nil {
				continue
			}

			if strings.HasSuffix(absPath, storage.SpeedsExt) {
				if opts.OnSidecar != nil && ev.Op&(fsnotify.Create|fsnotify.Write) != 0 {
					scheduleSidecar(rel)
				}
				continue
			}
			if !strings.HasSuffix(absPath, storage.ChartExt) {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				prev, _ := db.GetChecksum(rel)
				data, readErr := store.Read(rel)
				if readErr != nil {
					logger.Warn("watcher: read failed", slog.String("path", rel), slog.String("error", readErr.Error()))
					continue
				}
				if prev == storage.Checksum(data) {
					continue
				}
				if idxErr := IndexChart(db, rel, data, time.Now()); idxErr != nil {
					logger.Warn("watcher: index failed", slog.String("path", rel), slog.String("error", idxErr.Error()))
					continue
				}
				kind := EventUpdated
				if prev == "" {
					kind = EventCreated
				}
				logger.Debug("watcher: indexed", slog.String("path", rel), slog.String("op", kind))
				notify(kind, rel, "")

			case ev.Op&fsnotify.Remove != 0:
				if delErr := db.DeleteChart(rel); delErr != nil {
					logger.Warn("watcher: delete failed", slog.String("path", rel), slog.String("error", delErr.Error()))
					continue
				}
				logger.Debug("watcher: deleted", slog.String("path", rel))
				notify(EventDeleted, rel, "")

			case ev.Op&fsnotify.Rename != 0:
				// fsnotify reports Rename on the old path only; the new path
				// arrives as a separate Create when it stays inside the library.
				if delErr := db.DeleteChart(rel); delErr != nil {
					logger.Warn("watcher: rename delete failed", slog.String("path", rel), slog.String("error", delErr.Error()))
				} else {
					logger.Debug("watcher: rename old deleted", slog.String("path", rel))
					notify(EventDeleted, rel, "")
				}
				scheduleReconcile()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// reconcileAfterRename removes index entries without a chart on disk and
// indexes on-disk charts that are missing or stale.
func reconcileAfterRename(db ChartIndex, store storage.Provider, logger *slog.Logger, notify EventCallback) {
	checksums, err := db.AllChecksums()
	if err != nil {
		logger.Warn("reconcile: all checksums failed", slog.String("error", err.Error()))
		return
	}

	metas, err := store.List("")
	if err != nil {
		logger.Warn("reconcile: list failed", slog.String("error", err.Error()))
		return
	}

	disk := make(map[string]string, len(metas))
	for _, m := range metas {
		disk[m.Path] = m.Checksum
	}

	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if delErr := db.DeleteChart(p); delErr == nil {
				logger.Debug("reconcile: removed stale", slog.String("path", p))
				notify(EventDeleted, p, "")
			}
		}
	}

	for p, cs := range disk {
		if checksums[p] == cs {
			continue
		}
		data, readErr := store.Read(p)
		if readErr != nil {
			continue
		}
		if idxErr := IndexChart(db, p, data, time.Now()); idxErr == nil {
			logger.Debug("reconcile: indexed", slog.String("path", p))
			notify(EventCreated, p, "")
		}
	}
}

// indexNewDir indexes any charts found in a newly created directory.
func indexNewDir(db ChartIndex, store storage.Provider, dirPath string, logger *slog.Logger, notify EventCallback) {
	_ = filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, storage.ChartExt) {
			return nil
		}
		rel, relErr := store.Rel(path)
		if relErr != nil {
			return nil
		}
		data, readErr := store.Read(rel)
		if readErr != nil {
			return nil
		}
		if idxErr := IndexChart(db, rel, data, time.Now()); idxErr == nil {
			logger.Debug("watcher: indexed from new dir", slog.String("path", rel))
			notify(EventCreated, rel, "")
		}
		return nil
	})
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
