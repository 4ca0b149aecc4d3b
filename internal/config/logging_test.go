package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOpenLogFile(t *testing.T) {
	t.Run("creates a timestamped depot log file", func(t *testing.T) {
		dir := t.TempDir()

		f, err := OpenLogFile(dir, 5)
		if err != nil {
			t.Fatalf("OpenLogFile() error = %v", err)
		}
		defer f.Close()

		base := filepath.Base(f.Name())
		if !strings.HasPrefix(base, "depot-") || !strings.HasSuffix(base, ".log") {
			t.Errorf("log file name = %s, want depot-<timestamp>.log", base)
		}
	})

	t.Run("prunes oldest files beyond the limit", func(t *testing.T) {
		dir := t.TempDir()
		stale := []string{
			"depot-2026-01-01T00-00-00.log",
			"depot-2026-01-02T00-00-00.log",
			"depot-2026-01-03T00-00-00.log",
		}
		for _, name := range stale {
			if err := os.WriteFile(filepath.Join(dir, name), nil, 0644); err != nil {
				t.Fatal(err)
			}
		}

		f, err := OpenLogFile(dir, 2)
		if err != nil {
			t.Fatalf("OpenLogFile() error = %v", err)
		}
		defer f.Close()

		files, err := filepath.Glob(filepath.Join(dir, "depot-*.log"))
		if err != nil {
			t.Fatal(err)
		}
		if len(files) != 2 {
			t.Fatalf("remaining log files = %d, want 2 (%v)", len(files), files)
		}
		for _, name := range files {
			if filepath.Base(name) == stale[0] || filepath.Base(name) == stale[1] {
				t.Errorf("stale file survived pruning: %s", name)
			}
		}
	})
}
