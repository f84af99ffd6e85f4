package watcher

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/rag-backend/internal/entity"
)

// Ingester receives paths of files that appeared or changed in the
// watched directory. Implemented by the ingest usecase.
type Ingester interface {
	Ingest(ctx context.Context, paths []string) (*entity.IngestReport, error)
	SupportedSource(path string) bool
}

// Watcher monitors a directory and feeds new or modified documents into
// the ingestion pipeline. Writes are debounced per file so a document
// copied in several syscalls is ingested once, after it settles.
type Watcher struct {
	dir      string
	debounce time.Duration
	ingester Ingester
	logger   *zap.Logger

	mu      sync.Mutex
	pending map[string]*time.Timer
}

func New(dir string, debounce time.Duration, ingester Ingester, logger *zap.Logger) *Watcher {
	return &Watcher{
		dir:      dir,
		debounce: debounce,
		ingester: ingester,
		logger:   logger,
		pending:  map[string]*time.Timer{},
	}
}

// Run watches the directory until the context is cancelled. It returns
// an error only if the watch cannot be established.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

	ctx = ctxzap.ToContext(ctx, w.logger)
	ctxzap.Info(ctx, "watching directory for documents",
		zap.String("dir", w.dir),
		zap.Duration("debounce", w.debounce),
	)

	for {
		select {
		case <-ctx.Done():
			w.cancelPending()
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !w.ingester.SupportedSource(event.Name) {
				continue
			}
			w.schedule(ctx, event.Name)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			ctxzap.Warn(ctx, "watcher error", zap.Error(err))
		}
	}
}

// schedule (re)arms the debounce timer for the path. Every further event
// on the same file pushes ingestion back by the full debounce window.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[path]; ok {
		timer.Stop()
	}
	w.pending[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()

		if ctx.Err() != nil {
			return
		}

		ctxzap.Info(ctx, "ingesting watched file", zap.String("path", path))
		report, err := w.ingester.Ingest(ctx, []string{path})
		if err != nil {
			ctxzap.Error(ctx, "failed to ingest watched file",
				zap.String("path", path),
				zap.Error(err),
			)
			return
		}
		if len(report.Failures) > 0 {
			ctxzap.Warn(ctx, "watched file could not be loaded",
				zap.String("path", path),
				zap.String("reason", report.Failures[0].Reason),
			)
			return
		}
		ctxzap.Info(ctx, "watched file ingested",
			zap.String("path", path),
			zap.Int("chunks_indexed", report.ChunksIndexed),
		)
	})
}

func (w *Watcher) cancelPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, timer := range w.pending {
		timer.Stop()
		delete(w.pending, path)
	}
}
