package core

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/clientimport/internal/csv"
)

// ImportMode selects whether a batch only previews changes or commits them.
type ImportMode string

const (
	// ModePreview validates records and reports would-be changes without
	// touching the store.
	ModePreview ImportMode = "preview"

	// ModeCommit performs real mutations for rows that pass validation.
	ModeCommit ImportMode = "commit"
)

// ParseMode maps user input to an ImportMode. Empty input means preview,
// so a caller that forgets the flag gets the harmless mode.
func ParseMode(s string) (ImportMode, error) {
	switch s {
	case "", string(ModePreview):
		return ModePreview, nil
	case string(ModeCommit):
		return ModeCommit, nil
	default:
		return "", fmt.Errorf("unknown import mode %q", s)
	}
}

// RowOutcome is the per-row result of validating or applying one record.
//
// RowNumber is the 1-based position within the data rows of the source
// file, header excluded. The orchestrator assigns it; appliers leave it
// zero.
type RowOutcome struct {
	RowNumber int      `json:"row"`
	Success   bool     `json:"success"`
	Error     string   `json:"error,omitempty"`
	RecordID  string   `json:"recordId,omitempty"`
	Preview   *Preview `json:"preview,omitempty"`
}

// Preview describes what applying a record would change, without changing
// it. Current is only present for updates; Changed lists the columns whose
// values differ.
type Preview struct {
	Action   string            `json:"action"`
	Current  map[string]string `json:"current,omitempty"`
	Incoming map[string]string `json:"incoming"`
	Changed  []string          `json:"changed,omitempty"`
}

// BatchResult is the complete outcome of one import run, shaped for direct
// JSON serialization.
//
// Invariant: RequestedCount = SuccessCount + FailedCount = len(Results),
// and Results[i] corresponds to data row i+1 of the source file.
type BatchResult struct {
	Mode           ImportMode   `json:"mode"`
	RequestedCount int          `json:"requestedCount"`
	SuccessCount   int          `json:"successCount"`
	FailedCount    int          `json:"failedCount"`
	Results        []RowOutcome `json:"results"`
}

// Applier is the collaborator that knows how to validate and persist one
// client record.
//
// ValidateAndPreview must never mutate the store and must return the same
// outcome for the same record while the store is unchanged.
// ValidateAndApply mutates exactly once per record when validation passes.
// Both surface every problem, business rejection or infrastructure failure
// alike, as a descriptive Error string on the outcome rather than
// panicking or losing the row.
//
// Appliers are called concurrently when a batch runs with more than one
// worker and own their locking and transaction discipline.
type Applier interface {
	ValidateAndPreview(ctx context.Context, rec csv.Record) RowOutcome
	ValidateAndApply(ctx context.Context, rec csv.Record) RowOutcome
}

// ProgressFunc receives (done, total) row counts as a batch advances.
// It reports activity, never partial success counts.
type ProgressFunc func(done, total int)

// FieldType identifies the validation applied to a column.
type FieldType int

const (
	FieldText FieldType = iota
	FieldEnum
	FieldDate
	FieldNumeric
	FieldInt
	FieldBool
	FieldUUID
)

// FieldSpec describes one recognized column of an import operation.
type FieldSpec struct {
	Name       string    // lower-cased CSV header name
	Column     string    // database column the value lands in
	Type       FieldType // validation applied to the raw value
	Required   bool
	EnumValues []string            // valid values when Type is FieldEnum
	Normalizer func(string) string // optional cleanup before validation
	Example    string              // sample value for the downloadable template
}
