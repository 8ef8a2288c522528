package generator

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch runs GenerateDirs once, then again whenever a Go source file under
// roots changes, until ctx is cancelled. Bursts of events within the
// debounce interval trigger a single run. onReport receives the outcome of
// every run and may be nil.
func (g *Generator) Watch(ctx context.Context, roots []string, onReport func(*Report, error)) error {
	dirs, err := g.extractor.Dirs(roots)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	run := func() {
		report, err := g.GenerateDirs(ctx, roots)
		if onReport != nil {
			onReport(report, err)
		}
	}
	run()

	debounce := g.opts.Debounce
	if debounce <= 0 {
		debounce = DefaultOptions().Debounce
	}
	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if g.relevant(ev) {
				g.logger.Debug("Source changed", zap.String("path", filepath.ToSlash(ev.Name)), zap.String("op", ev.Op.String()))
				timer.Reset(debounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			g.logger.Warn("Watcher error", zap.Error(err))
		case <-timer.C:
			run()
		}
	}
}

func (g *Generator) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Base(ev.Name)
	return strings.HasSuffix(name, ".go") &&
		!strings.HasSuffix(name, "_test.go") &&
		!strings.HasSuffix(name, g.opts.FileSuffix)
}
