package registry

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/gebo/internal/models"
	"github.com/starford/gebo/internal/storage"
)

// EventCallback is called after a watcher-driven registry change.
// event is one of "created", "deleted".
type EventCallback func(event string, artifact models.Artifact)

// Watch starts an fsnotify watcher on the generated root and processes
// file change events until ctx is cancelled. It calls cb (if non-nil)
// after each successful registry mutation.
//
// Externally removed artifact files drop their registry rows. Rename
// events trigger a debounced reconciliation pass. A periodic sweep
// deletes artifacts older than retention that were never downloaded,
// removing both file and row.
func Watch(ctx context.Context, db ArtifactIndex, store storage.Provider, retention time.Duration, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	root := store.Root()
	if err := addDirsRecursive(w, root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", root))

	sweep := time.NewTicker(sweepInterval(retention))
	defer sweep.Stop()

	// reconcileTimer debounces rename reconciliation.
	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time

	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(200 * time.Millisecond)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			if syncErr := Sync(db, store, logger); syncErr != nil {
				logger.Warn("watcher: reconcile failed", slog.String("error", syncErr.Error()))
			}

		case <-sweep.C:
			sweepExpired(db, store, retention, logger, cb)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			absPath := ev.Name

			// New directories are added to the watch list.
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(absPath); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, absPath); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", absPath),
							slog.String("error", addErr.Error()))
					}
					continue
				}
			}

			if !isArtifactFile(absPath) {
				continue
			}

			rel, relErr := filepath.Rel(root, absPath)
			if relErr != nil {
				continue
			}

			switch {
			case ev.Op&fsnotify.Remove != 0:
				dropRow(db, rel, logger, cb)

			case ev.Op&fsnotify.Rename != 0:
				// fsnotify fires Rename on the OLD path only; drop the
				// row now and reconcile shortly in case the file moved
				// within the watched tree.
				dropRow(db, rel, logger, cb)
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

// dropRow removes the registry row for a disk path that no longer exists.
func dropRow(db ArtifactIndex, rel string, logger *slog.Logger, cb EventCallback) {
	known, err := db.AllDiskNames()
	if err != nil {
		logger.Warn("watcher: disk names failed", slog.String("error", err.Error()))
		return
	}
	id, ok := known[rel]
	if !ok {
		return
	}
	if err := db.Delete(id); err != nil {
		logger.Warn("watcher: drop row failed", slog.String("id", id), slog.String("error", err.Error()))
		return
	}
	logger.Debug("watcher: dropped row for removed file", slog.String("disk_name", rel))
	if cb != nil {
		cb("deleted", models.Artifact{ID: id, DiskName: rel})
	}
}

// sweepExpired deletes artifacts past retention that were never downloaded.
func sweepExpired(db ArtifactIndex, store storage.Provider, retention time.Duration, logger *slog.Logger, cb EventCallback) {
	expired, err := db.ExpiredBefore(time.Now().Add(-retention))
	if err != nil {
		logger.Warn("sweep: query failed", slog.String("error", err.Error()))
		return
	}
	for _, a := range expired {
		if delErr := store.Delete(a.DiskName); delErr != nil && !errors.Is(delErr, fs.ErrNotExist) {
			logger.Warn("sweep: delete file failed",
				slog.String("disk_name", a.DiskName),
				slog.String("error", delErr.Error()))
		}
		if delErr := db.Delete(a.ID); delErr != nil {
			logger.Warn("sweep: delete row failed", slog.String("id", a.ID), slog.String("error", delErr.Error()))
			continue
		}
		logger.Info("sweep: expired artifact removed",
			slog.String("id", a.ID),
			slog.String("file_name", a.FileName))
		if cb != nil {
			cb("deleted", a)
		}
	}
}

func sweepInterval(retention time.Duration) time.Duration {
	interval := retention / 10
	if interval < time.Minute {
		interval = time.Minute
	}
	return interval
}

func isArtifactFile(path string) bool {
	return strings.HasSuffix(path, ".docx") || strings.HasSuffix(path, ".pdf")
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
