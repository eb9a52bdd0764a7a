package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"teamplayer/logger"
)

// LocalLibrary serves tracks from a directory on disk. Files are named by
// track number ("7.mp3" is track 7). A watcher keeps the number-to-path
// index current as files are added, renamed or removed.
type LocalLibrary struct {
	dir string

	mu    sync.RWMutex
	index map[int]string // track number -> absolute path

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewLocalLibrary scans dir and starts watching it for changes.
func NewLocalLibrary(dir string) (*LocalLibrary, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve media dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}

	l := &LocalLibrary{
		dir:   abs,
		index: make(map[int]string),
		done:  make(chan struct{}),
	}
	if err := l.rescan(); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create media watcher: %w", err)
	}
	if err := watcher.Add(abs); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch media dir: %w", err)
	}
	l.watcher = watcher
	go l.watch()

	logger.Info("local media library ready",
		logger.String("dir", abs),
		logger.Int("tracks", len(l.index)))
	return l, nil
}

// Open returns the audio data for the given track number. os.ErrNotExist
// is returned when the library has no such track.
func (l *LocalLibrary) Open(ctx context.Context, trackNumber int) (io.ReadCloser, error) {
	l.mu.RLock()
	path, ok := l.index[trackNumber]
	l.mu.RUnlock()
	if !ok {
		return nil, os.ErrNotExist
	}
	return os.Open(path)
}

// Close stops the directory watcher.
func (l *LocalLibrary) Close() error {
	close(l.done)
	if l.watcher != nil {
		return l.watcher.Close()
	}
	return nil
}

func (l *LocalLibrary) rescan() error {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return fmt.Errorf("scan media dir: %w", err)
	}

	index := make(map[int]string, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if n, ok := trackNumberFromName(entry.Name()); ok {
			index[n] = filepath.Join(l.dir, entry.Name())
		}
	}

	l.mu.Lock()
	l.index = index
	l.mu.Unlock()
	return nil
}

func (l *LocalLibrary) watch() {
	for {
		select {
		case <-l.done:
			return
		case event, ok := <-l.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			n, ok := trackNumberFromName(filepath.Base(event.Name))
			if !ok {
				continue
			}
			l.mu.Lock()
			if event.Op&fsnotify.Create != 0 {
				l.index[n] = event.Name
			} else if l.index[n] == event.Name {
				delete(l.index, n)
			}
			l.mu.Unlock()
			logger.Debug("media library updated",
				logger.String("event", event.Op.String()),
				logger.Int("track", n))
		case err, ok := <-l.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("media watcher error", logger.ErrorField(err))
		}
	}
}

// trackNumberFromName parses names like "42.mp3" into 42.
func trackNumberFromName(name string) (int, bool) {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	n, err := strconv.Atoi(base)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
