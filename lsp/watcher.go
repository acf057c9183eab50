package lsp

import (
	"os"
	"time"
)

// GrammarWatcher polls a grammar file and calls onChange whenever its
// modification time moves forward.
type GrammarWatcher struct {
	path         string
	onChange     func()
	stopCh       chan struct{}
	pollInterval time.Duration
	modTime      time.Time
}

func NewGrammarWatcher(path string, onChange func()) *GrammarWatcher {
	w := &GrammarWatcher{
		path:         path,
		onChange:     onChange,
		stopCh:       make(chan struct{}),
		pollInterval: 1 * time.Second,
	}
	if info, err := os.Stat(path); err == nil {
		w.modTime = info.ModTime()
	}
	return w
}

func (w *GrammarWatcher) Start() {
	go w.run()
}

func (w *GrammarWatcher) Stop() {
	close(w.stopCh)
}

func (w *GrammarWatcher) run() {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.scan()
		}
	}
}

// scan reports whether the file changed since the last scan.
func (w *GrammarWatcher) scan() bool {
	info, err := os.Stat(w.path)
	if err != nil {
		return false
	}
	if !info.ModTime().After(w.modTime) {
		return false
	}
	w.modTime = info.ModTime()
	w.onChange()
	return true
}
