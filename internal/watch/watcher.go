// Package watch monitors a drop directory for recordings and feeds them
// to the transcription engine.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Handler processes one recording. It is called sequentially, oldest
// event first; concurrency lives inside the engine, not here.
type Handler func(ctx context.Context, path string)

// Watcher monitors a directory tree for new .wav files. Rapid
// Create+Write events on the same file are debounced so a recording is
// only handed off once it has stopped growing.
type Watcher struct {
	dir     string
	handler Handler
	log     zerolog.Logger

	watcher *fsnotify.Watcher
	queue   chan string
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	debounceMu     sync.Mutex
	debounceTimers map[string]*time.Timer

	filesProcessed atomic.Int64
	filesSkipped   atomic.Int64
	status         atomic.Value // string: "starting", "watching", "error", "stopped"
}

const debounceDelay = 500 * time.Millisecond

func New(dir string, handler Handler, log zerolog.Logger) *Watcher {
	w := &Watcher{
		dir:            dir,
		handler:        handler,
		log:            log.With().Str("component", "watcher").Logger(),
		queue:          make(chan string, 64),
		debounceTimers: make(map[string]*time.Timer),
	}
	w.status.Store("starting")
	return w
}

// Start adds the directory tree to fsnotify and begins watching. The
// watcher stops when ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.watcher = fsw

	dirCount := 0
	err = filepath.WalkDir(w.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			w.log.Warn().Err(err).Str("path", path).Msg("error walking directory")
			return nil // continue walking
		}
		if d.IsDir() {
			if addErr := fsw.Add(path); addErr != nil {
				w.log.Warn().Err(addErr).Str("path", path).Msg("failed to watch directory")
			} else {
				dirCount++
			}
		}
		return nil
	})
	if err != nil {
		fsw.Close()
		return err
	}

	w.log.Info().
		Int("directories", dirCount).
		Str("watch_dir", w.dir).
		Msg("file watcher initialized")

	w.status.Store("watching")

	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(2)
	go w.eventLoop(ctx)
	go w.workLoop(ctx)

	return nil
}

// Stop closes the fsnotify watcher and waits for in-flight work.
func (w *Watcher) Stop() {
	w.status.Store("stopped")
	if w.cancel != nil {
		w.cancel()
	}
	if w.watcher != nil {
		w.watcher.Close()
	}
	w.wg.Wait()
	w.log.Info().
		Int64("files_processed", w.filesProcessed.Load()).
		Int64("files_skipped", w.filesSkipped.Load()).
		Msg("file watcher stopped")
}

// Status returns the current watcher state for the health endpoint.
func (w *Watcher) Status() string {
	s, _ := w.status.Load().(string)
	return s
}

func (w *Watcher) eventLoop(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}

			// New directory: add it so files landing in freshly
			// created subdirectories are still caught.
			if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
				if err := w.watcher.Add(event.Name); err != nil {
					w.log.Warn().Err(err).Str("path", event.Name).Msg("failed to watch new directory")
				}
				continue
			}

			if !strings.HasSuffix(strings.ToLower(event.Name), ".wav") {
				w.filesSkipped.Add(1)
				continue
			}

			w.scheduleProcess(event.Name)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.status.Store("error")
			w.log.Error().Err(err).Msg("fsnotify error")
		}
	}
}

func (w *Watcher) workLoop(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case path := <-w.queue:
			w.handler(ctx, path)
			w.filesProcessed.Add(1)
		}
	}
}

// scheduleProcess debounces file handoff so partially written
// recordings are not picked up mid-copy.
func (w *Watcher) scheduleProcess(path string) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if t, ok := w.debounceTimers[path]; ok {
		t.Reset(debounceDelay)
		return
	}

	w.debounceTimers[path] = time.AfterFunc(debounceDelay, func() {
		w.debounceMu.Lock()
		delete(w.debounceTimers, path)
		w.debounceMu.Unlock()

		select {
		case w.queue <- path:
		default:
			w.filesSkipped.Add(1)
			w.log.Warn().Str("path", path).Msg("watch queue full, dropping file")
		}
	})
}
