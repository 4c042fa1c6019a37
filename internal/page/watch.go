package page

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reloads the page template when it changes on disk and signals
// that a fresh render is wanted.
type Watcher struct {
	fsw     *fsnotify.Watcher
	builder *Builder
	changed chan struct{}
	logger  *zap.Logger
}

// NewWatcher watches dir for template edits.
func NewWatcher(dir string, builder *Builder, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create template watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	return &Watcher{
		fsw:     fsw,
		builder: builder,
		changed: make(chan struct{}, 1),
		logger:  logger,
	}, nil
}

// Changed returns a channel that receives after a template edit has been
// reloaded successfully.
func (w *Watcher) Changed() <-chan struct{} {
	return w.changed
}

// Run consumes filesystem events until the context finishes. Reload errors
// are logged and the previous template stays active.
func (w *Watcher) Run(ctx context.Context) {
	defer w.fsw.Close() //nolint:errcheck // shutdown path

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if filepath.Ext(ev.Name) != ".html" {
				continue
			}
			if err := w.builder.Reload(); err != nil {
				w.logger.Warn("template reload failed", zap.String("file", ev.Name), zap.Error(err))
				continue
			}
			w.logger.Info("template reloaded", zap.String("file", ev.Name))
			select {
			case w.changed <- struct{}{}:
			default:
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("template watch error", zap.Error(err))
		}
	}
}
