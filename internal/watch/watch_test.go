package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestBatchDedupsAndSorts(t *testing.T) {
	var b batch
	b.add("b.json")
	b.add("a.json")
	b.add("./b.json")
	got := b.flush()
	if len(got) != 2 || got[0] != "a.json" || got[1] != "b.json" {
		t.Fatalf("unexpected batch %v", got)
	}
	if len(b.flush()) != 0 {
		t.Fatalf("flush must reset the batch")
	}
}

func TestMatchPatterns(t *testing.T) {
	match := MatchPatterns("*.json", "*.mp")
	for path, want := range map[string]bool{
		"dir/unit.json": true,
		"unit.mp":       true,
		"minic.toml":    false,
		"unit.json.swp": false,
	} {
		if match(path) != want {
			t.Errorf("match(%q) = %v, want %v", path, !want, want)
		}
	}
}

var errStop = errors.New("stop")

func TestRunReportsChanges(t *testing.T) {
	dir := t.TempDir()
	w, err := New(20*time.Millisecond, MatchPatterns("*.json"))
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		t.Fatalf("add: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	got := make(chan []string, 1)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(_ context.Context, paths []string) error {
			got <- paths
			return errStop
		})
	}()

	if err := os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	target := filepath.Join(dir, "unit.json")
	if err := os.WriteFile(target, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case paths := <-got:
		if len(paths) != 1 || paths[0] != target {
			t.Fatalf("unexpected paths %v", paths)
		}
	case <-ctx.Done():
		t.Fatalf("no change reported")
	}
	if err := <-done; !errors.Is(err, errStop) {
		t.Fatalf("expected callback error, got %v", err)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	w, err := New(0, nil)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer w.Close()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := w.Run(ctx, func(context.Context, []string) error { return nil }); err != nil {
		t.Fatalf("expected nil on cancel, got %v", err)
	}
}
