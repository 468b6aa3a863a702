// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "zero value", cfg: Config{}},
		{name: "valid patterns", cfg: Config{Patterns: []string{"config.*"}, Ignore: []string{"*.bak"}}},
		{name: "bad watch pattern", cfg: Config{Patterns: []string{"config.[cue"}}, wantErr: true},
		{name: "bad ignore pattern", cfg: Config{Ignore: []string{"[x"}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidPattern) {
				t.Errorf("error should wrap ErrInvalidPattern, got %v", err)
			}
		})
	}
}

func TestNew_MissingDir(t *testing.T) {
	t.Parallel()

	_, err := New(Config{Dir: filepath.Join(t.TempDir(), "missing"), Logger: quietLogger()})
	if err == nil {
		t.Fatal("New() should fail for a directory that does not exist")
	}
}

func TestWatcher_Matching(t *testing.T) {
	t.Parallel()

	w, err := New(Config{
		Dir:      t.TempDir(),
		Patterns: []string{"config.*"},
		Ignore:   []string{"*.bak"},
		Logger:   quietLogger(),
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	t.Cleanup(func() { _ = w.fsw.Close() })

	tests := []struct {
		name string
		want bool
	}{
		{"config.cue", true},
		{"config.yaml", true},
		{"other.cue", false},
		{"config.cue.swp", false},
		{"config.bak", false},
		{"config.cue~", false},
	}
	for _, tt := range tests {
		got := !w.isIgnored(tt.name) && w.matches(tt.name)
		if got != tt.want {
			t.Errorf("match(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestDefaultIgnores_ReturnsCopy(t *testing.T) {
	t.Parallel()

	ignores := DefaultIgnores()
	ignores[0] = "changed"
	if DefaultIgnores()[0] == "changed" {
		t.Error("DefaultIgnores() should return a copy")
	}
}

func TestWatcher_Debounce(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	var (
		mu        sync.Mutex
		calls     int
		collected []string
	)
	done := make(chan struct{})

	w, err := New(Config{
		Dir:      dir,
		Patterns: []string{"config.*"},
		Debounce: 100 * time.Millisecond,
		Logger:   quietLogger(),
		OnChange: func(_ context.Context, changed []string) error {
			mu.Lock()
			defer mu.Unlock()
			calls++
			collected = append(collected, changed...)
			if calls == 1 {
				close(done)
			}
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	for _, name := range []string{"config.cue", "config.yaml", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for callback")
	}

	cancel()
	if err := <-errCh; err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Errorf("callback calls = %d, want 1", calls)
	}
	if slices.Contains(collected, "notes.txt") {
		t.Errorf("non-matching file reported: %v", collected)
	}
	if !slices.Contains(collected, "config.cue") || !slices.Contains(collected, "config.yaml") {
		t.Errorf("changed = %v, want config.cue and config.yaml", collected)
	}
	if !slices.IsSorted(collected) {
		t.Errorf("changed should be sorted: %v", collected)
	}
}

func TestWatcher_RunTwice(t *testing.T) {
	t.Parallel()

	w, err := New(Config{Dir: t.TempDir(), Logger: quietLogger()})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	t.Cleanup(func() { _ = w.fsw.Close() })

	w.started.Store(true)
	if err := w.Run(context.Background()); err == nil {
		t.Error("Run() on a started watcher should fail")
	}
}

func TestWatcher_StopsOnCancel(t *testing.T) {
	t.Parallel()

	w, err := New(Config{Dir: t.TempDir(), Logger: quietLogger()})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := w.Run(ctx); err != nil {
		t.Errorf("Run() with cancelled context = %v, want nil", err)
	}
}
