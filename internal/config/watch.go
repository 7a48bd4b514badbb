package config

import (
	"os"
	"time"
)

// Watcher polls config file modification times and reports changes
// through a callback. Polling keeps the dependency surface flat and is
// plenty for config files that change a few times a day.
type Watcher struct {
	paths    []string
	interval time.Duration
	onChange func(path string)

	stop  chan struct{}
	mtime map[string]time.Time
}

// NewWatcher creates a watcher over the given paths. onChange runs on
// the watcher goroutine with the path that changed.
func NewWatcher(paths []string, interval time.Duration, onChange func(string)) *Watcher {
	return &Watcher{
		paths:    paths,
		interval: interval,
		onChange: onChange,
		stop:     make(chan struct{}),
		mtime:    make(map[string]time.Time),
	}
}

// Start records the current mtimes and begins polling in a goroutine.
func (w *Watcher) Start() {
	w.scan(true)
	ticker := time.NewTicker(w.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				w.scan(false)
			case <-w.stop:
				return
			}
		}
	}()
}

// Stop terminates the polling goroutine.
func (w *Watcher) Stop() {
	close(w.stop)
}

// scan stats every path and fires onChange for files whose mtime moved
// forward. The priming pass only records baselines. Files that are
// missing (yet to be created, or mid-rename) are skipped until they
// reappear.
func (w *Watcher) scan(prime bool) {
	for _, p := range w.paths {
		fi, err := os.Stat(p)
		if err != nil {
			continue
		}
		mt := fi.ModTime()
		last, ok := w.mtime[p]
		if !ok {
			w.mtime[p] = mt
			continue
		}
		if mt.After(last) {
			w.mtime[p] = mt
			if !prime && w.onChange != nil {
				w.onChange(p)
			}
		}
	}
}
