package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"onboard/internal/engine"
)

func TestInitAndStatusFlow(t *testing.T) {
	configPath := newTestConfigFile(t)

	out, err := runCLI(t, configPath, "init", "prop-9")
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	requireContains(t, out, "Session prop-9 ready")

	out, err = runCLI(t, configPath, "status", "prop-9")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "Session prop-9")
	requireContains(t, out, "Villa Information")
	requireContains(t, out, "Not Started")
}

func TestFieldSetAndStatusJSON(t *testing.T) {
	configPath := newTestConfigFile(t)

	if _, err := runCLI(t, configPath, "init", "prop-9"); err != nil {
		t.Fatalf("init: %v", err)
	}
	out, err := runCLI(t, configPath, "field", "set", "prop-9", "1", "villaName", "Casa Sola", "--actor", "ops")
	if err != nil {
		t.Fatalf("field set: %v", err)
	}
	requireContains(t, out, "Saved villaName")

	out, err = runCLI(t, configPath, "status", "prop-9", "--json")
	if err != nil {
		t.Fatalf("status --json: %v", err)
	}
	var summary engine.Summary
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("decode summary: %v\n%s", err, out)
	}
	if summary.FieldsCompleted != 1 {
		t.Fatalf("FieldsCompleted = %d, want 1", summary.FieldsCompleted)
	}
	if summary.ProgressPercentage <= 0 {
		t.Fatalf("ProgressPercentage = %v, want > 0", summary.ProgressPercentage)
	}
}

func TestStageSubmitValidationFailure(t *testing.T) {
	configPath := newTestConfigFile(t)

	if _, err := runCLI(t, configPath, "init", "prop-9"); err != nil {
		t.Fatalf("init: %v", err)
	}
	out, err := runCLI(t, configPath, "stage", "submit", "prop-9", "2", "--data", `{"firstName":"Ayu","email":"not-an-email"}`)
	if err == nil {
		t.Fatal("expected validation failure")
	}
	requireContains(t, out, "was not completed")
	requireContains(t, out, "email")
}

func TestStageSubmitSuccess(t *testing.T) {
	configPath := newTestConfigFile(t)

	if _, err := runCLI(t, configPath, "init", "prop-9"); err != nil {
		t.Fatalf("init: %v", err)
	}
	out, err := runCLI(t, configPath, "stage", "submit", "prop-9", "2", "--data",
		`{"firstName":"Ayu","lastName":"Prasetyo","email":"ayu@example.com","phone":"+62 812"}`)
	if err != nil {
		t.Fatalf("stage submit: %v", err)
	}
	requireContains(t, out, "Stage 2 submitted")
}

func TestSkipAndUnskipCommands(t *testing.T) {
	configPath := newTestConfigFile(t)

	if _, err := runCLI(t, configPath, "init", "prop-9"); err != nil {
		t.Fatalf("init: %v", err)
	}
	out, err := runCLI(t, configPath, "skip", "field", "prop-9", "1", "maxGuests", "--reason", "unknown capacity")
	if err != nil {
		t.Fatalf("skip field: %v", err)
	}
	requireContains(t, out, "1 active skip(s)")

	out, err = runCLI(t, configPath, "unskip", "field", "prop-9", "1", "maxGuests")
	if err != nil {
		t.Fatalf("unskip field: %v", err)
	}
	requireContains(t, out, "0 active skip(s)")

	out, err = runCLI(t, configPath, "skip", "stage", "prop-9", "5", "--reason", "no listings yet")
	if err != nil {
		t.Fatalf("skip stage: %v", err)
	}
	requireContains(t, out, "Skipped stage 5")
}

func TestSessionsLifecycleCommands(t *testing.T) {
	configPath := newTestConfigFile(t)

	if _, err := runCLI(t, configPath, "init", "prop-1"); err != nil {
		t.Fatalf("init prop-1: %v", err)
	}
	if _, err := runCLI(t, configPath, "init", "prop-2"); err != nil {
		t.Fatalf("init prop-2: %v", err)
	}

	out, err := runCLI(t, configPath, "sessions", "list")
	if err != nil {
		t.Fatalf("sessions list: %v", err)
	}
	requireContains(t, out, "prop-1")
	requireContains(t, out, "prop-2")
	requireContains(t, out, "2 session(s)")

	out, err = runCLI(t, configPath, "sessions", "delete", "prop-2")
	if err != nil {
		t.Fatalf("sessions delete: %v", err)
	}
	requireContains(t, out, "Deleted session prop-2")

	if _, err := runCLI(t, configPath, "sessions", "delete", "prop-2"); err == nil {
		t.Fatal("expected delete of missing session to fail")
	}

	out, err = runCLI(t, configPath, "sessions", "purge")
	if err != nil {
		t.Fatalf("sessions purge: %v", err)
	}
	requireContains(t, out, "Purged 0 sessions")
}

func TestCatalogCommand(t *testing.T) {
	out, err := runCLI(t, "", "catalog")
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	requireContains(t, out, "Villa Information")
	requireContains(t, out, "Review & Submit")
	requireContains(t, out, "10 stages")
}

func TestConfigInitAndValidate(t *testing.T) {
	tmp := t.TempDir()
	target := filepath.Join(tmp, "config.toml")

	out, err := runCLI(t, "", "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	out, err = runCLI(t, "", "config", "validate", "--path", newTestConfigFile(t))
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
}

func TestFieldSetValueParsing(t *testing.T) {
	if got := parseValue("42"); got != float64(42) {
		t.Fatalf("parseValue(42) = %v (%T)", got, got)
	}
	if got := parseValue("true"); got != true {
		t.Fatalf("parseValue(true) = %v", got)
	}
	if got := parseValue("Casa Sola"); got != "Casa Sola" {
		t.Fatalf("parseValue(plain string) = %v", got)
	}
	if got := parseValue(""); got != nil {
		t.Fatalf("parseValue(empty) = %v", got)
	}
	if !strings.Contains(formatValue([]any{"a", "b"}), `["a","b"]`) {
		t.Fatalf("formatValue(list) = %q", formatValue([]any{"a", "b"}))
	}
}

func TestFieldAutosaveCommand(t *testing.T) {
	configPath := newTestConfigFile(t)

	if _, err := runCLI(t, configPath, "init", "prop-9"); err != nil {
		t.Fatalf("init: %v", err)
	}

	out, err := runCLI(t, configPath,
		"field", "autosave", "prop-9", "1", "villaName", "Casa Sola",
		"--actor", "owner", "--at", "2026-08-31T10:00:00Z")
	if err != nil {
		t.Fatalf("field autosave: %v", err)
	}
	requireContains(t, out, "Saved villaName")

	// An edit from a second tab carrying an older client timestamp loses.
	out, err = runCLI(t, configPath,
		"field", "autosave", "prop-9", "1", "villaName", "Casa Vieja",
		"--at", "2026-08-31T09:00:00Z")
	if err != nil {
		t.Fatalf("stale autosave should not error: %v", err)
	}
	requireContains(t, out, "Ignored stale write")

	out, err = runCLI(t, configPath, "status", "prop-9", "--json")
	if err != nil {
		t.Fatalf("status --json: %v", err)
	}
	var summary engine.Summary
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("decode summary: %v\n%s", err, out)
	}
	if summary.FieldsCompleted != 1 {
		t.Fatalf("FieldsCompleted = %d, want 1", summary.FieldsCompleted)
	}

	if _, err := runCLI(t, configPath,
		"field", "autosave", "prop-9", "1", "noSuchField", "x"); err == nil {
		t.Fatal("expected error for unknown field")
	}

	if _, err := runCLI(t, configPath,
		"field", "autosave", "prop-9", "1", "villaName", "x", "--at", "yesterday"); err == nil {
		t.Fatal("expected error for malformed --at")
	}
}
