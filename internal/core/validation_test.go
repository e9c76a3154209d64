package core

import (
	"strings"
	"testing"

	"github.com/JonMunkholm/clientimport/internal/csv"
)

func testSpecs() []FieldSpec {
	return []FieldSpec{
		{Name: "name", Type: FieldText, Required: true},
		{Name: "plan", Type: FieldEnum, EnumValues: []string{"basic", "pro", "enterprise"}},
		{Name: "start_date", Type: FieldDate},
		{Name: "seats", Type: FieldInt},
		{Name: "balance", Type: FieldNumeric},
		{Name: "active", Type: FieldBool},
		{Name: "client_id", Type: FieldUUID},
	}
}

func TestValidateRecord(t *testing.T) {
	validator := NewRowValidator(testSpecs())

	tests := []struct {
		name       string
		record     csv.Record
		wantValid  bool
		wantField  string // field expected in the first error
		wantErrMsg string // substring expected in the first error
	}{
		{
			name:      "minimal valid record",
			record:    csv.Record{"name": "Acme"},
			wantValid: true,
		},
		{
			name: "fully populated valid record",
			record: csv.Record{
				"name":       "Acme",
				"plan":       "pro",
				"start_date": "2024-01-15",
				"seats":      "25",
				"balance":    "$1,234.56",
				"active":     "yes",
				"client_id":  "0c0e2f4a-9d1b-4c6f-8a3e-5b7d9e1f2a3b",
			},
			wantValid: true,
		},
		{
			name:       "missing required field",
			record:     csv.Record{"plan": "pro"},
			wantValid:  false,
			wantField:  "name",
			wantErrMsg: "required field is missing",
		},
		{
			name:       "enum value not allowed",
			record:     csv.Record{"name": "Acme", "plan": "platinum"},
			wantValid:  false,
			wantField:  "plan",
			wantErrMsg: "must be one of",
		},
		{
			name:      "enum matches case-insensitively",
			record:    csv.Record{"name": "Acme", "plan": "PRO"},
			wantValid: true,
		},
		{
			name:       "bad date",
			record:     csv.Record{"name": "Acme", "start_date": "not-a-date"},
			wantValid:  false,
			wantField:  "start_date",
			wantErrMsg: "invalid date",
		},
		{
			name:       "fractional seats rejected",
			record:     csv.Record{"name": "Acme", "seats": "2.5"},
			wantValid:  false,
			wantField:  "seats",
			wantErrMsg: "whole number",
		},
		{
			name:       "bad balance",
			record:     csv.Record{"name": "Acme", "balance": "lots"},
			wantValid:  false,
			wantField:  "balance",
			wantErrMsg: "invalid number",
		},
		{
			name:       "bad boolean",
			record:     csv.Record{"name": "Acme", "active": "maybe"},
			wantValid:  false,
			wantField:  "active",
			wantErrMsg: "true/false",
		},
		{
			name:       "bad uuid",
			record:     csv.Record{"name": "Acme", "client_id": "client-7"},
			wantValid:  false,
			wantField:  "client_id",
			wantErrMsg: "invalid identifier",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validator.ValidateRecord(tt.record)

			if result.Valid != tt.wantValid {
				t.Fatalf("Valid = %v, want %v (errors: %s)",
					result.Valid, tt.wantValid, result.Summary())
			}
			if tt.wantValid {
				if len(result.Errors) != 0 {
					t.Errorf("valid result carries errors: %v", result.Errors)
				}
				return
			}

			if len(result.Errors) == 0 {
				t.Fatal("invalid result has no errors")
			}
			first := result.Errors[0]
			if first.Field != tt.wantField {
				t.Errorf("first error field = %q, want %q", first.Field, tt.wantField)
			}
			if !strings.Contains(first.Message, tt.wantErrMsg) {
				t.Errorf("first error message = %q, want substring %q", first.Message, tt.wantErrMsg)
			}
		})
	}
}

func TestValidateRecord_CollectsAllErrors(t *testing.T) {
	validator := NewRowValidator(testSpecs())

	result := validator.ValidateRecord(csv.Record{
		"plan":   "platinum",
		"seats":  "2.5",
		"active": "maybe",
	})

	if result.Valid {
		t.Fatal("record should fail")
	}
	// name missing + three bad values
	if len(result.Errors) != 4 {
		t.Errorf("len(Errors) = %d, want 4: %v", len(result.Errors), result.Errors)
	}

	summary := result.Summary()
	for _, want := range []string{"name", "plan", "seats", "active"} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary missing %q: %s", want, summary)
		}
	}
	if strings.Count(summary, ";") != 3 {
		t.Errorf("summary should join four errors: %s", summary)
	}
}

func TestValidateRecordFirst(t *testing.T) {
	validator := NewRowValidator(testSpecs())

	t.Run("passes clean record", func(t *testing.T) {
		if err := validator.ValidateRecordFirst(csv.Record{"name": "Acme"}); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("returns first error in spec order", func(t *testing.T) {
		err := validator.ValidateRecordFirst(csv.Record{"plan": "platinum", "active": "maybe"})
		if err == nil {
			t.Fatal("expected error")
		}
		// name (missing) precedes plan and active in the specs
		if !strings.Contains(err.Error(), "name") {
			t.Errorf("error = %v, want missing name first", err)
		}
	})

	t.Run("empty required field", func(t *testing.T) {
		err := validator.ValidateRecordFirst(csv.Record{"name": `""`})
		if err == nil || !strings.Contains(err.Error(), "empty required field") {
			t.Errorf("error = %v, want empty required field", err)
		}
	})
}

func TestNormalizedValue(t *testing.T) {
	upper := func(s string) string { return strings.ToUpper(s) }
	validator := NewRowValidator([]FieldSpec{
		{Name: "code", Type: FieldText, Normalizer: upper},
		{Name: "plain", Type: FieldText},
	})

	codeSpec := validator.specs[0]
	plainSpec := validator.specs[1]

	if got := validator.NormalizedValue(csv.Record{"code": "ab12"}, codeSpec); got != "AB12" {
		t.Errorf("normalizer not applied: %q", got)
	}
	// Spreadsheet artifacts are stripped before the normalizer runs
	if got := validator.NormalizedValue(csv.Record{"code": `="ab12"`}, codeSpec); got != "AB12" {
		t.Errorf("artifact cleanup missing: %q", got)
	}
	if got := validator.NormalizedValue(csv.Record{"plain": `"quoted"`}, plainSpec); got != "quoted" {
		t.Errorf("CleanCell not applied: %q", got)
	}
	if got := validator.NormalizedValue(csv.Record{}, codeSpec); got != "" {
		t.Errorf("absent field = %q, want empty", got)
	}
}

func TestValidationError_Error(t *testing.T) {
	withField := ValidationError{Field: "email", Message: "invalid format"}
	if got := withField.Error(); got != "email: invalid format" {
		t.Errorf("Error() = %q", got)
	}

	bare := ValidationError{Message: "row rejected"}
	if got := bare.Error(); got != "row rejected" {
		t.Errorf("Error() = %q", got)
	}
}

func TestValidateCell_EnumWithoutValues(t *testing.T) {
	// An enum spec with no values accepts anything
	if err := ValidateCell("whatever", FieldSpec{Name: "x", Type: FieldEnum}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
