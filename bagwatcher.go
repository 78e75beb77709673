package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/robolog/nuscenes2bag/internal/rosbag"
)

type onBagComplete = func(ctx context.Context, dir string)

// bagWatcher watches the output directory for finished bags. Bags are
// created as subdirectories of Dir and their metadata file is written
// last, so its appearance marks bag completion.
type bagWatcher struct {
	// Directory the bags are written into. Must exist before Start.
	Dir string

	Log zerolog.Logger
}

// Start begins watching and invokes onBagComplete with the directory of
// every bag that finishes. The returned watcher must be closed by the
// caller.
func (w *bagWatcher) Start(ctx context.Context, onBagComplete onBagComplete) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&fsnotify.Create == fsnotify.Create {
					w.handleCreate(ctx, watcher, onBagComplete, event.Name)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				w.logWatchErr(err)
			case <-ctx.Done():
				return
			}
		}
	}()
	if err = watcher.Add(w.Dir); err != nil {
		watcher.Close()
		return nil, err
	}
	return watcher, nil
}

func (w *bagWatcher) handleCreate(
	ctx context.Context, watcher *fsnotify.Watcher, onBagComplete onBagComplete, name string,
) {
	if filepath.Base(name) == rosbag.MetadataFileName {
		go onBagComplete(ctx, filepath.Dir(name))
		return
	}
	info, err := os.Stat(name)
	if err != nil {
		w.logWatchErr(err)
		return
	}
	if info.IsDir() && filepath.Dir(filepath.Clean(name)) == filepath.Clean(w.Dir) {
		w.logWatchErr(watcher.Add(name))
	}
}

func (w *bagWatcher) logWatchErr(err error) {
	if err != nil {
		w.Log.Warn().Err(err).Msg("an error occurred during file watching")
	}
}
