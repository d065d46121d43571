package ingestion

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pterm/pterm"
)

// FileWatcher reports changes to tracked log files. It watches their parent
// directories, so files that do not exist yet and rotated files are covered.
type FileWatcher struct {
	watcher *fsnotify.Watcher
	paths   map[string]struct{}
	dirs    map[string]int // watched directory -> tracked files inside
	events  chan string
	errors  chan error
	logger  *pterm.Logger
	mu      sync.RWMutex
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewFileWatcher creates a new file watcher for the specified paths
func NewFileWatcher(paths []string, logger *pterm.Logger) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.WithCaller().Error("Failed to create file watcher", logger.Args("error", err))
		return nil, err
	}

	fw := &FileWatcher{
		watcher: watcher,
		paths:   make(map[string]struct{}),
		dirs:    make(map[string]int),
		events:  make(chan string, 100),
		errors:  make(chan error, 10),
		logger:  logger,
		stopCh:  make(chan struct{}),
	}

	watched := 0
	for _, path := range paths {
		if err := fw.AddPath(path); err != nil {
			continue
		}
		watched++
	}

	if watched == 0 && len(paths) > 0 {
		logger.Warn("No log directories are currently available to watch, relying on polling")
	}

	fw.wg.Add(1)
	go fw.eventLoop()

	logger.Info("File watcher initialized",
		logger.Args("files_watched", watched, "files_skipped", len(paths)-watched))
	return fw, nil
}

// eventLoop processes file system events
func (fw *FileWatcher) eventLoop() {
	defer fw.wg.Done()

	for {
		select {
		case <-fw.stopCh:
			fw.logger.Debug("File watcher stopped")
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				fw.logger.Warn("File watcher events channel closed")
				return
			}

			path := filepath.Clean(event.Name)
			if !fw.tracked(path) {
				continue
			}

			switch {
			case event.Has(fsnotify.Write):
				fw.logger.Trace("File write detected", fw.logger.Args("file", path))
			case event.Has(fsnotify.Create):
				fw.logger.Debug("File created", fw.logger.Args("file", path))
			case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
				fw.logger.Debug("File moved away (possible rotation)", fw.logger.Args("file", path))
			default:
				continue
			}

			select {
			case fw.events <- path:
			default:
				fw.logger.Trace("Event channel full, dropping event", fw.logger.Args("file", path))
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				fw.logger.Warn("File watcher errors channel closed")
				return
			}
			fw.logger.WithCaller().Error("File watcher error", fw.logger.Args("error", err))
			select {
			case fw.errors <- err:
			default:
				fw.logger.Warn("Error channel full, dropping error")
			}
		}
	}
}

func (fw *FileWatcher) tracked(path string) bool {
	fw.mu.RLock()
	defer fw.mu.RUnlock()
	_, ok := fw.paths[path]
	return ok
}

// Events returns the channel of changed file paths
func (fw *FileWatcher) Events() <-chan string {
	return fw.events
}

// Errors returns the channel for watcher errors
func (fw *FileWatcher) Errors() <-chan error {
	return fw.errors
}

// AddPath starts tracking path
func (fw *FileWatcher) AddPath(path string) error {
	path = filepath.Clean(path)
	dir := filepath.Dir(path)

	fw.mu.Lock()
	defer fw.mu.Unlock()

	if _, ok := fw.paths[path]; ok {
		return nil
	}

	if fw.dirs[dir] == 0 {
		if err := fw.watcher.Add(dir); err != nil {
			fw.logger.WithCaller().Warn("Failed to add watch path", fw.logger.Args("path", path, "error", err))
			return err
		}
	}
	fw.dirs[dir]++
	fw.paths[path] = struct{}{}

	fw.logger.Debug("Started watching file", fw.logger.Args("path", path))
	return nil
}

// RemovePath stops tracking path
func (fw *FileWatcher) RemovePath(path string) error {
	path = filepath.Clean(path)
	dir := filepath.Dir(path)

	fw.mu.Lock()
	defer fw.mu.Unlock()

	if _, ok := fw.paths[path]; !ok {
		return nil
	}
	delete(fw.paths, path)

	fw.dirs[dir]--
	if fw.dirs[dir] > 0 {
		return nil
	}
	delete(fw.dirs, dir)

	if err := fw.watcher.Remove(dir); err != nil {
		fw.logger.WithCaller().Warn("Failed to remove watch path", fw.logger.Args("path", path, "error", err))
		return err
	}
	fw.logger.Info("Removed watch path", fw.logger.Args("path", path))
	return nil
}

// Close stops the file watcher and cleans up resources
func (fw *FileWatcher) Close() error {
	fw.logger.Debug("Closing file watcher...")
	close(fw.stopCh)
	fw.wg.Wait()

	if err := fw.watcher.Close(); err != nil {
		fw.logger.WithCaller().Error("Failed to close file watcher", fw.logger.Args("error", err))
		return err
	}

	close(fw.events)
	close(fw.errors)
	fw.logger.Info("File watcher closed")
	return nil
}
