package fswatch

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/quest4ione/hackmud-cli/pkg/errors"
	"github.com/quest4ione/hackmud-cli/pkg/sync"
)

var fs = afero.NewOsFs()

// ignoredDirs are directories that never contain scripts worth syncing, but
// often contain enough files to exhaust the watch limit.
var ignoredDirs = map[string]struct{}{
	".git":         {},
	"node_modules": {},
}

// Watch watches for changes to the files matched by `patterns`. It sends an
// event on the returned channel whenever a file within the watched
// directories changes.
// Directories created after Watch returns aren't watched, so callers should
// still poll occasionally.
func Watch(patterns []string) (chan struct{}, error) {
	pathsToWatch, err := getPathsToWatch(patterns)
	if err != nil {
		return nil, errors.WithContext(err, "get paths")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.WithContext(err, "create watcher")
	}

	for _, path := range pathsToWatch {
		if err := watcher.Add(path); err != nil {
			// Close the watcher so that we release the file handlers for the
			// previously added paths.
			if err := watcher.Close(); err != nil {
				log.WithError(err).Warn("Failed to close file watcher")
			}

			return nil, errors.WithContext(err, fmt.Sprintf("watch %q", path))
		}
	}
	return combineUpdates(watcher.Events, watcher.Errors), nil
}

func combineUpdates(updates <-chan fsnotify.Event, errs <-chan error) chan struct{} {
	combined := make(chan struct{}, 1)
	go func() {
		for {
			select {
			case _, ok := <-updates:
				if !ok {
					return
				}
				select {
				case combined <- struct{}{}:
				default:
				}
			case err, ok := <-errs:
				if !ok {
					errs = nil
					continue
				}
				log.WithError(err).Warn("File watcher error")
			}
		}
	}()
	return combined
}

// getPathsToWatch returns the directories that may contain files matching
// `patterns`. fsnotify doesn't watch directories recursively, so every
// subdirectory is returned as well.
func getPathsToWatch(patterns []string) (paths []string, err error) {
	seen := map[string]struct{}{}
	for _, pattern := range patterns {
		base, _ := sync.GlobBase(pattern)
		err := afero.Walk(fs, base, func(path string, fi os.FileInfo, err error) error {
			if err != nil {
				if path == base && os.IsNotExist(err) {
					return nil
				}
				return errors.WithContext(err, "walk error")
			}

			if !fi.IsDir() {
				return nil
			}

			if _, ok := ignoredDirs[fi.Name()]; ok && path != base {
				return filepath.SkipDir
			}

			if _, ok := seen[path]; !ok {
				seen[path] = struct{}{}
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return paths, nil
}
