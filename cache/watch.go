package cache

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"llmpipe/perr"
)

// WatchCatalog watches the store's catalog file for changes and sends a
// signal on the returned channel when it is written or created. The
// channel buffers one signal; a change that arrives while a signal is
// still unread is dropped. This backs queue's optional catalog watch
// (enabled with LLMPIPE_QUEUE_WATCH_CATALOG=1), not a
// persistent server process: spec.md §1 excludes a persistent server, but
// a foreground process that blocks on filesystem events until interrupted
// is still a single invocation, not a daemon.
//
// The returned stop function must be called to release the underlying
// fsnotify watcher.
func WatchCatalog(s *Store) (events <-chan struct{}, stop func() error, err error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, perr.Internalf(err, "cache: create catalog watcher")
	}

	dir := filepath.Dir(s.catalogPath)
	if dir == "" {
		dir = "."
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, nil, perr.Internalf(err, "cache: watch directory %q", dir)
	}

	ch := make(chan struct{}, 1)
	go func() {
		defer close(ch)
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != s.catalogPath {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				select {
				case ch <- struct{}{}:
				default:
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return ch, watcher.Close, nil
}
