package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestIgnoredPath(t *testing.T) {
	t.Parallel()

	cases := map[string]bool{
		"/tmp/project/main.go":        false,
		"/tmp/project/.git/index":     true,
		"/tmp/project/Cargo.lock":     true,
		"/tmp/project/.#main.go":      true,
		"/tmp/project/notes.tmp":      true,
		"/tmp/project/editor.swp":     true,
		"/tmp/project/docs/README.md": false,
	}
	for name, want := range cases {
		if got := ignoredPath(name); got != want {
			t.Errorf("ignoredPath(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestStartNotifiesOnWrite(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(file, []byte("one\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	notified := make(chan struct{}, 1)
	w, err := Start([]string{dir}, func() {
		select {
		case notified <- struct{}{}:
		default:
		}
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(file, []byte("two\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-notified:
	case <-time.After(5 * time.Second):
		t.Fatal("no notification after file write")
	}
}

func TestStartMissingRootIsTolerated(t *testing.T) {
	t.Parallel()

	w, err := Start([]string{filepath.Join(t.TempDir(), "nope")}, func() {})
	if err != nil {
		t.Fatalf("Start with missing root: %v", err)
	}
	w.Close()
}
