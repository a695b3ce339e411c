package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// newTestConfigFile writes a config pointing at per-test directories and
// returns its path.
func newTestConfigFile(t *testing.T) string {
	t.Helper()

	base := t.TempDir()
	content := fmt.Sprintf("[paths]\ndata_dir = %q\nlog_dir = %q\n",
		filepath.Join(base, "data"), filepath.Join(base, "logs"))
	path := filepath.Join(base, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write test config: %v", err)
	}
	return path
}

func runCLI(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	if configPath != "" {
		args = append([]string{"--config", configPath}, args...)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func requireContains(t *testing.T, output, want string) {
	t.Helper()
	if !strings.Contains(output, want) {
		t.Fatalf("output missing %q:\n%s", want, output)
	}
}

func TestRootShowsHelp(t *testing.T) {
	out, err := runCLI(t, newTestConfigFile(t))
	if err != nil {
		t.Fatalf("root command: %v", err)
	}
	requireContains(t, out, "onboard")
	requireContains(t, out, "Available Commands")
}
