package stores

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/colonyops/docket/internal/core/logging"
)

const debounceDelay = 50 * time.Millisecond

// FileWatcher signals when a FileStore's file changes on disk. It watches
// the parent directory so atomic rename-into-place writes are seen.
type FileWatcher struct {
	path    string
	watcher *fsnotify.Watcher
	log     zerolog.Logger
	changes chan struct{}

	mu       sync.Mutex
	debounce *time.Timer

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewFileWatcher starts watching path. The parent directory is created if it
// doesn't exist.
func NewFileWatcher(path string) (*FileWatcher, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	fw := &FileWatcher{
		path:    filepath.Clean(path),
		watcher: watcher,
		log:     logging.Component("watcher"),
		changes: make(chan struct{}, 1),
		ctx:     ctx,
		cancel:  cancel,
	}

	fw.wg.Add(1)
	go fw.run()

	return fw, nil
}

// Changes receives one value per debounced burst of writes. Bursts that
// arrive while a signal is pending are coalesced into it.
func (fw *FileWatcher) Changes() <-chan struct{} {
	return fw.changes
}

// Close stops watching. The Changes channel is not closed.
func (fw *FileWatcher) Close() error {
	fw.cancel()

	fw.mu.Lock()
	if fw.debounce != nil {
		fw.debounce.Stop()
	}
	fw.mu.Unlock()

	err := fw.watcher.Close()
	fw.wg.Wait()
	return err
}

// run processes filesystem events from fsnotify.
func (fw *FileWatcher) run() {
	defer fw.wg.Done()

	for {
		select {
		case <-fw.ctx.Done():
			return
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handleEvent(event)
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.log.Warn().Err(err).Str("path", fw.path).Msg("watch error")
		}
	}
}

// handleEvent debounces writes, creates and renames of the watched file.
func (fw *FileWatcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}

	if filepath.Clean(event.Name) != fw.path {
		return
	}

	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.debounce != nil {
		fw.debounce.Stop()
	}
	fw.debounce = time.AfterFunc(debounceDelay, fw.notify)
}

func (fw *FileWatcher) notify() {
	select {
	case fw.changes <- struct{}{}:
	default:
		// a signal is already pending
	}
}
