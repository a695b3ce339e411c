package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.Und)

// writeJSON emits v as indented JSON on the command's stdout. HTML escaping
// is off so free-text field values ("Bed & Breakfast") round-trip verbatim
// through --json output.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// formatStatus renders a snake_case status value for table output.
func formatStatus[T ~string](status T) string {
	return titleCaser.String(strings.ReplaceAll(string(status), "_", " "))
}

// parseValue interprets a CLI value argument. JSON literals (numbers,
// booleans, quoted strings, arrays, objects) are decoded; anything else is
// taken as a plain string.
func parseValue(raw string) any {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	var value any
	if err := json.Unmarshal([]byte(trimmed), &value); err == nil {
		return value
	}
	return raw
}

// parsePayload decodes a JSON object argument for stage submissions.
func parsePayload(raw string) (map[string]any, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return map[string]any{}, nil
	}
	payload := make(map[string]any)
	if err := json.Unmarshal([]byte(trimmed), &payload); err != nil {
		return nil, fmt.Errorf("parse payload: %w", err)
	}
	return payload, nil
}

func formatPercent(value float64) string {
	return fmt.Sprintf("%.1f%%", value)
}

func formatValue(value any) string {
	if value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return v
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(raw)
	}
}

func summarizeValidation(errors map[string]string) string {
	if len(errors) == 0 {
		return ""
	}
	return fmt.Sprintf("%d issue(s)", len(errors))
}
