package loader

import (
	"path/filepath"
	"testing"
	"time"
)

func TestWatcher_Matches(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(filepath.Join(dir, "*.json"), func() {}, nil)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Close()

	tests := []struct {
		path string
		want bool
	}{
		{filepath.Join(dir, "2020-10-12T03:09:18Z.json"), true},
		{filepath.Join(dir, "notes.txt"), false},
		{filepath.Join(dir, ".result.json.swp"), false},
		{"/elsewhere/result.json", true},
	}
	for _, tt := range tests {
		if got := w.Matches(tt.path); got != tt.want {
			t.Errorf("Matches(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestWatcher_DebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	changes := make(chan struct{}, 10)

	w, err := NewWatcher(filepath.Join(dir, "*.json"), func() { changes <- struct{}{} }, nil)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Close()

	for _, name := range []string{"a.json", "b.json", "c.json"} {
		writeFile(t, dir, name, sampleResult)
	}
	writeFile(t, dir, "ignored.txt", "x")

	select {
	case <-changes:
	case <-time.After(2 * time.Second):
		t.Fatal("no change notification")
	}

	select {
	case <-changes:
		t.Error("burst should collapse into one notification")
	case <-time.After(3 * DebounceInterval):
	}
}

func TestWatcher_InvalidPattern(t *testing.T) {
	if _, err := NewWatcher("[", func() {}, nil); err == nil {
		t.Error("expected error for malformed pattern")
	}
	if _, err := NewWatcher(filepath.Join(t.TempDir(), "missing", "*.json"), func() {}, nil); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestWatcher_CloseTwice(t *testing.T) {
	w, err := NewWatcher(filepath.Join(t.TempDir(), "*.json"), func() {}, nil)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
}
