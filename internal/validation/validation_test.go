package validation_test

import (
	"testing"

	"onboard/internal/validation"
)

func TestMissingRequiredFieldIsError(t *testing.T) {
	result := validation.ValidateStage(2, map[string]any{
		"firstName": "Made",
		"lastName":  "Wijaya",
		"phone":     "+62 812 000",
	})
	if result.IsValid {
		t.Fatal("expected invalid result when email missing")
	}
	if result.Errors["email"] != "required" {
		t.Fatalf("expected required error for email, got %q", result.Errors["email"])
	}
}

func TestNumericStringAccepted(t *testing.T) {
	result := validation.ValidateStage(1, map[string]any{
		"villaName":    "Villa Tirta",
		"villaAddress": "Jl. Pantai 12",
		"city":         "Canggu",
		"country":      "Indonesia",
		"propertyType": "villa",
		"bedrooms":     "4",
		"bathrooms":    3.5,
	})
	if !result.IsValid {
		t.Fatalf("expected valid result, errors: %v", result.Errors)
	}
}

func TestNonNumericStringRejected(t *testing.T) {
	result := validation.ValidateStage(1, map[string]any{
		"villaName":    "Villa Tirta",
		"villaAddress": "Jl. Pantai 12",
		"city":         "Canggu",
		"country":      "Indonesia",
		"propertyType": "villa",
		"bedrooms":     "four",
		"bathrooms":    2,
	})
	if result.IsValid {
		t.Fatal("expected invalid result for non-numeric bedrooms")
	}
	if result.Errors["bedrooms"] != "must be a number" {
		t.Fatalf("expected numeric error for bedrooms, got %q", result.Errors["bedrooms"])
	}
}

func TestOptionalAbsenceIsWarningNotError(t *testing.T) {
	result := validation.ValidateStage(1, map[string]any{
		"villaName":    "Villa Tirta",
		"villaAddress": "Jl. Pantai 12",
		"city":         "Canggu",
		"country":      "Indonesia",
		"propertyType": "villa",
		"bedrooms":     4,
		"bathrooms":    3,
	})
	if !result.IsValid {
		t.Fatalf("warnings must not invalidate: %v", result.Errors)
	}
	if _, ok := result.Warnings["maxGuests"]; !ok {
		t.Fatal("expected warning for missing maxGuests")
	}
}

func TestEmailRule(t *testing.T) {
	result := validation.ValidateStage(2, map[string]any{
		"firstName": "Made",
		"lastName":  "Wijaya",
		"email":     "not-an-email",
		"phone":     "+62 812 000",
	})
	if result.IsValid {
		t.Fatal("expected invalid email to fail")
	}
	if result.Errors["email"] == "" {
		t.Fatal("expected email error message")
	}
}

func TestCommissionRateRange(t *testing.T) {
	result := validation.ValidateStage(3, map[string]any{
		"contractStartDate": "2026-09-01",
		"contractType":      "exclusive",
		"commissionRate":    "140",
	})
	if result.IsValid {
		t.Fatal("expected out-of-range commission rate to fail")
	}
}

func TestAgreementMustBeAccepted(t *testing.T) {
	result := validation.ValidateStage(10, map[string]any{"agreementAccepted": false})
	if result.IsValid {
		t.Fatal("expected unaccepted agreement to fail")
	}

	result = validation.ValidateStage(10, map[string]any{"agreementAccepted": true})
	if !result.IsValid {
		t.Fatalf("expected accepted agreement to pass, errors: %v", result.Errors)
	}
}

func TestUnknownStage(t *testing.T) {
	result := validation.ValidateStage(99, nil)
	if result.IsValid {
		t.Fatal("unknown stage should be invalid")
	}
}
