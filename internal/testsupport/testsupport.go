package testsupport

import (
	"path/filepath"
	"testing"

	"onboard/internal/config"
	"onboard/internal/progress"
)

// NewConfig returns a validated config rooted in a per-test temp dir.
func NewConfig(t *testing.T) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate config: %v", err)
	}
	return &cfg
}

// MustOpenStore opens a progress store in a per-test temp dir and closes
// it on cleanup.
func MustOpenStore(t *testing.T) (*progress.Store, *config.Config) {
	t.Helper()

	cfg := NewConfig(t)
	store, err := progress.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return store, cfg
}
