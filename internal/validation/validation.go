package validation

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"onboard/internal/catalog"
)

// Result is the outcome of evaluating one stage's rules.
type Result struct {
	IsValid  bool
	Errors   map[string]string
	Warnings map[string]string
}

// numericFields lists fields that must parse as numbers when present.
var numericFields = map[string]struct{}{
	"bedrooms":       {},
	"bathrooms":      {},
	"maxGuests":      {},
	"landSize":       {},
	"villaArea":      {},
	"commissionRate": {},
}

// recommendedFields maps optional fields worth flagging when absent.
var recommendedFields = map[string]string{
	"maxGuests":            "guest capacity helps listing sync",
	"insuranceCertificate": "insurance certificate is recommended before go-live",
	"exteriorPhotos":       "exterior photos improve listing quality",
	"cancellationPolicy":   "a cancellation policy is recommended",
}

// ValidateStage evaluates the declared rules for a stage against data.
// Unknown stage numbers yield a single-entry error result rather than a
// panic; the engine rejects out-of-range stages before validation anyway.
func ValidateStage(stageNumber int, data map[string]any) Result {
	result := Result{
		Errors:   make(map[string]string),
		Warnings: make(map[string]string),
	}

	stage, ok := catalog.StageByNumber(stageNumber)
	if !ok {
		result.Errors["stage"] = fmt.Sprintf("unknown stage %d", stageNumber)
		return result
	}

	for _, field := range stage.Fields {
		value, present := data[field.Name]
		if !present || isEmpty(value) {
			if field.Required {
				result.Errors[field.Name] = "required"
			} else if hint, ok := recommendedFields[field.Name]; ok {
				result.Warnings[field.Name] = hint
			}
			continue
		}

		if _, numeric := numericFields[field.Name]; numeric {
			if _, err := numberValue(value); err != nil {
				result.Errors[field.Name] = err.Error()
				continue
			}
		}

		if message := checkFieldRule(stage.Key, field.Name, value); message != "" {
			result.Errors[field.Name] = message
		}
	}

	result.IsValid = len(result.Errors) == 0
	return result
}

// checkFieldRule applies stage-specific shape rules beyond presence/type.
func checkFieldRule(stageKey, fieldName string, value any) string {
	switch stageKey {
	case "owner_details":
		if fieldName == "email" {
			s := stringValue(value)
			if !strings.Contains(s, "@") || strings.Count(s, "@") != 1 {
				return "must be a valid email address"
			}
		}
	case "contractual_details":
		if fieldName == "commissionRate" {
			rate, err := numberValue(value)
			if err == nil && (rate < 0 || rate > 100) {
				return "must be between 0 and 100"
			}
		}
	case "bank_details":
		if fieldName == "swiftCode" {
			code := strings.TrimSpace(stringValue(value))
			if len(code) != 8 && len(code) != 11 {
				return "must be 8 or 11 characters"
			}
		}
	case "review_submit":
		if fieldName == "agreementAccepted" {
			if !boolValue(value) {
				return "agreement must be accepted"
			}
		}
	}
	return ""
}

// numberValue coerces loosely typed numeric input. Numbers and numeric
// strings pass; non-numeric strings fail explicitly instead of becoming 0.
func numberValue(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, fmt.Errorf("must be a number")
		}
		return parsed, nil
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("must be a number")
		}
		return parsed, nil
	default:
		return 0, fmt.Errorf("must be a number")
	}
}

func stringValue(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}

func boolValue(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(v))
		return err == nil && parsed
	default:
		return false
	}
}

func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	default:
		return false
	}
}
