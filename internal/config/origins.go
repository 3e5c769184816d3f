package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// OriginSink receives the reloaded allow-list entries.
type OriginSink interface {
	SetOrigins(origins []string)
}

// LoadOrigins reads the origins file: a JSON array of origin strings.
func LoadOrigins(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read origins file: %w", err)
	}
	var origins []string
	if err := json.Unmarshal(raw, &origins); err != nil {
		return nil, fmt.Errorf("failed to parse origins file '%s': %w", path, err)
	}
	return origins, nil
}

// WatchOrigins loads the origins file into sink and reloads it whenever
// the file changes. Reloads are debounced because editors commonly emit
// several events per save. Both goroutines stop when the watcher is
// closed.
func WatchOrigins(path string, sink OriginSink, log zerolog.Logger) (*fsnotify.Watcher, error) {
	origins, err := LoadOrigins(path)
	if err != nil {
		return nil, err
	}
	sink.SetOrigins(origins)
	log.Info().Int("count", len(origins)).Str("path", path).Msg("loaded origin allow-list")

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// watch the directory: editors replace files on save, which would
	// otherwise drop a file-level watch
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, err
	}

	reload := make(chan struct{}, 1)
	go scheduleOriginReload(path, sink, reload, log)
	go handleOriginWatcher(watcher, filepath.Base(path), reload, log)

	return watcher, nil
}

func handleOriginWatcher(
	watcher *fsnotify.Watcher,
	filename string,
	reloadC chan<- struct{},
	log zerolog.Logger,
) {
	// closing reloadC stops the reload scheduler with us
	defer close(reloadC)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if event.Has(fsnotify.Write | fsnotify.Remove | fsnotify.Create) {
				select {
				case reloadC <- struct{}{}:
				default:
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("origins watcher error")
		}
	}
}

func scheduleOriginReload(
	path string,
	sink OriginSink,
	reload <-chan struct{},
	log zerolog.Logger,
) {
	var timer *time.Timer = nil
	var c <-chan time.Time = nil
	duration := time.Millisecond * 500
	for {
		select {
		case _, ok := <-reload:
			if !ok {
				if timer != nil {
					timer.Stop()
				}
				return
			}
			if timer != nil {
				timer.Reset(duration)
			} else {
				timer = time.NewTimer(duration)
				c = timer.C
			}

		case <-c:
			c = nil
			timer = nil
			origins, err := LoadOrigins(path)
			if err != nil {
				// keep the last good allow-list on a bad reload
				log.Error().Err(err).Msg("failed to reload origins file")
				continue
			}
			sink.SetOrigins(origins)
			log.Info().Int("count", len(origins)).Msg("reloaded origin allow-list")
		}
	}
}
