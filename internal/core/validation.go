package core

// validation.go checks mapped records against an operation's field specs
// before they reach the database.
//
// Records arrive from the row mapper with empty cells already omitted, so
// "key absent" is the only form a missing value takes here. The validator
// can return every error at once (for preview output) or just the first
// (for the commit fast path).

import (
	"fmt"
	"strings"

	"github.com/JonMunkholm/clientimport/internal/csv"
)

// ValidationError represents a single validation error for a field.
type ValidationError struct {
	Field   string // column name
	Value   string // the offending value
	Message string // human-readable description
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// ValidationResult contains the result of validating a record.
type ValidationResult struct {
	Valid  bool
	Errors []ValidationError
}

// Summary joins all error messages into one string for a RowOutcome.
func (r ValidationResult) Summary() string {
	if r.Valid {
		return ""
	}
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// RowValidator validates records against an operation's field specs.
type RowValidator struct {
	specs []FieldSpec
}

// NewRowValidator creates a validator for the given field specs.
func NewRowValidator(specs []FieldSpec) *RowValidator {
	return &RowValidator{specs: specs}
}

// ValidateRecord checks every spec and returns all validation errors,
// which suits preview output that shows each problem at once.
func (v *RowValidator) ValidateRecord(rec csv.Record) ValidationResult {
	result := ValidationResult{Valid: true}

	for _, spec := range v.specs {
		raw, ok := rec[spec.Name]
		if !ok {
			if spec.Required {
				result.Valid = false
				result.Errors = append(result.Errors, ValidationError{
					Field:   spec.Name,
					Message: "required field is missing",
				})
			}
			continue
		}

		raw = normalizeValue(raw, spec)
		if raw == "" {
			if spec.Required {
				result.Valid = false
				result.Errors = append(result.Errors, ValidationError{
					Field:   spec.Name,
					Message: "required field is empty",
				})
			}
			continue
		}

		if err := ValidateCell(raw, spec); err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, ValidationError{
				Field:   spec.Name,
				Value:   raw,
				Message: err.Error(),
			})
		}
	}

	return result
}

// ValidateRecordFirst checks specs in order and returns the first error,
// which is cheaper when the caller only needs pass or fail.
func (v *RowValidator) ValidateRecordFirst(rec csv.Record) error {
	for _, spec := range v.specs {
		raw, ok := rec[spec.Name]
		if !ok {
			if spec.Required {
				return fmt.Errorf("missing required field %q", spec.Name)
			}
			continue
		}

		raw = normalizeValue(raw, spec)
		if raw == "" {
			if spec.Required {
				return fmt.Errorf("empty required field %q", spec.Name)
			}
			continue
		}

		if err := ValidateCell(raw, spec); err != nil {
			return fmt.Errorf("%s: %w", spec.Name, err)
		}
	}
	return nil
}

// NormalizedValue returns the record's value for a spec after artifact
// cleanup and the spec's normalizer, or "" when absent. Appliers use it so
// validation and persistence see the same bytes.
func (v *RowValidator) NormalizedValue(rec csv.Record, spec FieldSpec) string {
	raw, ok := rec[spec.Name]
	if !ok {
		return ""
	}
	return normalizeValue(raw, spec)
}

func normalizeValue(raw string, spec FieldSpec) string {
	raw = csv.CleanCell(raw)
	if spec.Normalizer != nil && raw != "" {
		raw = spec.Normalizer(raw)
	}
	return raw
}

// ValidateCell validates a single non-empty value against a field spec.
// Returns nil if valid, or an error describing the problem.
func ValidateCell(value string, spec FieldSpec) error {
	switch spec.Type {
	case FieldNumeric:
		if !ToPgNumeric(value).Valid {
			return fmt.Errorf("invalid number format")
		}
	case FieldInt:
		if !ToPgInt4(value).Valid {
			return fmt.Errorf("invalid number format (expected a whole number)")
		}
	case FieldDate:
		if !ToPgDate(value).Valid {
			return fmt.Errorf("invalid date format (use YYYY-MM-DD or similar)")
		}
	case FieldBool:
		if !ToPgBool(value).Valid {
			return fmt.Errorf("must be true/false, yes/no, or 1/0")
		}
	case FieldUUID:
		if !ToPgUUID(value).Valid {
			return fmt.Errorf("invalid identifier (expected a UUID)")
		}
	case FieldEnum:
		if len(spec.EnumValues) > 0 {
			for _, ev := range spec.EnumValues {
				if strings.EqualFold(ev, value) {
					return nil
				}
			}
			return fmt.Errorf("value must be one of: %s", strings.Join(spec.EnumValues, ", "))
		}
	}
	return nil
}
