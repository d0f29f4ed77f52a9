package main

import (
	"io"
	"path/filepath"
	"testing"
)

func setupEnv(t *testing.T) {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	t.Chdir(tmpDir)
	for _, key := range []string{"DATA_SOURCE", "TIMEZONE", "RECOVERY_POLICY", "LOG_LEVEL", "LOG_FILE"} {
		t.Setenv(key, "")
	}
	t.Setenv("DATA_PATH", filepath.Join(tmpDir, "data", "*.json"))
	t.Setenv("DATABASE_PATH", filepath.Join(tmpDir, "speed.db"))
	t.Setenv("WATCH_DATA", "true")
}

func TestSetup_Watching(t *testing.T) {
	tests := []struct {
		name  string
		watch bool
	}{
		{"Interactive", true},
		{"OneShot", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupEnv(t)

			cfg, mgr, cleanup, err := setup(io.Discard, tt.watch)
			if err != nil {
				t.Fatalf("setup failed: %v", err)
			}
			defer cleanup()

			if cfg.WatchData != tt.watch {
				t.Errorf("WatchData = %v, want %v", cfg.WatchData, tt.watch)
			}
			if mgr.Watching() != tt.watch {
				t.Errorf("Watching() = %v, want %v", mgr.Watching(), tt.watch)
			}
		})
	}
}
