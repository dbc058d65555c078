package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"waymark/internal/parser"
)

const DefaultDebounce = 100 * time.Millisecond

// Handler receives each re-parse of the watched file. Exactly one of doc and
// err is non-nil.
type Handler func(doc *parser.Document, err error)

type Options struct {
	Debounce time.Duration
}

// Watch parses path once, then again after every burst of writes, until ctx
// is done. The parent directory is watched so editors that save by rename
// keep being followed. Handler calls happen on the calling goroutine, one at
// a time.
func Watch(ctx context.Context, path string, onChange Handler, opts ...Options) error {
	var options Options
	if len(opts) > 0 {
		options = opts[0]
	}
	if options.Debounce <= 0 {
		options.Debounce = DefaultDebounce
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}
	if _, err := parser.FormatFromPath(abs); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	log := zerolog.Ctx(ctx).With().Str("file", path).Logger()
	log.Info().Msg("watching story file")

	onChange(parser.ParseFile(abs))

	timer := time.NewTimer(options.Debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debug().Msg("watch stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !relevant(event, abs) {
				continue
			}
			log.Debug().Str("op", event.Op.String()).Msg("file event")
			timer.Reset(options.Debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			log.Error().Err(err).Msg("watcher error")

		case <-timer.C:
			doc, err := parser.ParseFile(abs)
			if err != nil {
				log.Warn().Err(err).Msg("re-parse failed")
			} else {
				log.Info().Str("story", doc.StoryID).Msg("story reloaded")
			}
			onChange(doc, err)
		}
	}
}

func relevant(event fsnotify.Event, path string) bool {
	if filepath.Clean(event.Name) != path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove)
}
