package replay

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// ErrNotWatchable is returned by Watch when the recording was not loaded from
// a file.
var ErrNotWatchable = errors.New("only a recording loaded from StreamFile can be watched")

// Watch reloads the recording whenever StreamFile is written or replaced,
// until ctx is done. Requests already streaming keep the frames they started
// with. A recording that cannot be read is logged and the previous one kept.
func (s *Server) Watch(ctx context.Context) error {
	path := s.config.StreamFile
	if path == "" || s.config.Stream != nil {
		return ErrNotWatchable
	}
	path = filepath.Clean(path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating recording watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory so editors that replace the file are seen too.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watching recording dir: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			s.reload(path)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("recording watcher error: %w", err)
		}
	}
}

func (s *Server) reload(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		s.logger.Warn("reloading recorded stream", "file", path, "error", err)
		return
	}

	frames := splitFrames(data)
	s.mu.Lock()
	s.frames = frames
	s.mu.Unlock()

	s.logger.Info("reloaded recorded stream", "file", path, "frames", len(frames))
}
