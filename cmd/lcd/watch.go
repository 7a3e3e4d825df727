package main

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// watch calls run each time one of paths is written, created or renamed,
// until ctx is done. Directories of the paths are watched so editors that
// replace files atomically are followed. "-" and empty paths are skipped.
func watch(ctx context.Context, paths []string, run func()) error {
	w, targets, err := watchPaths(paths)
	if err != nil {
		return err
	}
	defer w.Close()
	return watchLoop(ctx, w, targets, run)
}

// watchPaths registers the parent directory of every path and returns the
// absolute paths to react to.
func watchPaths(paths []string) (*fsnotify.Watcher, map[string]bool, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, err
	}
	targets := map[string]bool{}
	dirs := map[string]bool{}
	for _, p := range paths {
		if p == "" || p == "-" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			w.Close()
			return nil, nil, err
		}
		targets[abs] = true
		dir := filepath.Dir(abs)
		if !dirs[dir] {
			if err := w.Add(dir); err != nil {
				w.Close()
				return nil, nil, err
			}
			dirs[dir] = true
		}
	}
	return w, targets, nil
}

func watchLoop(ctx context.Context, w *fsnotify.Watcher, targets map[string]bool, run func()) error {
	logger.Info("watching", zap.Int("files", len(targets)))
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !targets[filepath.Clean(ev.Name)] {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debug("change detected", zap.String("file", ev.Name), zap.String("op", ev.Op.String()))
			run()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", zap.Error(err))
		}
	}
}
