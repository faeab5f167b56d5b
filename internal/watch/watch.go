// Package watch rebuilds units when their files change on disk.
package watch

import (
	"context"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long a burst of writes is coalesced.
const DefaultDebounce = 150 * time.Millisecond

// Watcher reports batches of changed files under a set of directories.
type Watcher struct {
	w        *fsnotify.Watcher
	debounce time.Duration
	match    func(path string) bool
}

// New creates a watcher. match filters paths; nil accepts every file.
func New(debounce time.Duration, match func(path string) bool) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if match == nil {
		match = func(string) bool { return true }
	}
	return &Watcher{w: w, debounce: debounce, match: match}, nil
}

// Add watches dir. Subdirectories are not followed.
func (w *Watcher) Add(dir string) error { return w.w.Add(dir) }

// Close stops the underlying notifier.
func (w *Watcher) Close() error { return w.w.Close() }

// Run delivers changed paths to onChange until ctx is done or onChange
// returns an error. Calls never overlap.
func (w *Watcher) Run(ctx context.Context, onChange func(ctx context.Context, paths []string) error) error {
	var (
		pending batch
		timer   *time.Timer
		fire    <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.w.Events:
			if !ok {
				return nil
			}
			if !relevant(ev) || !w.match(ev.Name) {
				continue
			}
			pending.add(ev.Name)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case err, ok := <-w.w.Errors:
			if !ok {
				return nil
			}
			return err
		case <-fire:
			fire = nil
			if paths := pending.flush(); len(paths) > 0 {
				if err := onChange(ctx, paths); err != nil {
					return err
				}
			}
		}
	}
}

func relevant(ev fsnotify.Event) bool {
	return ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0
}

// batch collects distinct paths between flushes.
type batch struct {
	seen map[string]struct{}
}

func (b *batch) add(path string) {
	if b.seen == nil {
		b.seen = make(map[string]struct{})
	}
	b.seen[filepath.Clean(path)] = struct{}{}
}

// flush returns the collected paths sorted and resets the batch.
func (b *batch) flush() []string {
	out := make([]string, 0, len(b.seen))
	for p := range b.seen {
		out = append(out, p)
	}
	slices.Sort(out)
	b.seen = nil
	return out
}

// MatchPatterns accepts paths whose base name matches one of patterns.
func MatchPatterns(patterns ...string) func(string) bool {
	return func(path string) bool {
		base := filepath.Base(path)
		for _, p := range patterns {
			if ok, _ := filepath.Match(p, base); ok {
				return true
			}
		}
		return false
	}
}
