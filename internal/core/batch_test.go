package core

import (
	"context"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/JonMunkholm/clientimport/internal/csv"
)

// ============================================================================
// Test Applier
// ============================================================================

// scriptedApplier is an Applier whose per-record behavior is driven by the
// record's "name" value: entries in failures fail with the given message,
// everything else succeeds. Calls are recorded for mode assertions.
type scriptedApplier struct {
	failures map[string]string
	delay    time.Duration
	stagger  func(name string) time.Duration

	mu           sync.Mutex
	previewCalls []string
	applyCalls   []string
}

func (a *scriptedApplier) delayFor(name string) time.Duration {
	if a.stagger != nil {
		return a.stagger(name)
	}
	return a.delay
}

func (a *scriptedApplier) run(ctx context.Context, rec csv.Record, calls *[]string) RowOutcome {
	name := rec["name"]

	a.mu.Lock()
	*calls = append(*calls, name)
	a.mu.Unlock()

	if d := a.delayFor(name); d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return RowOutcome{Success: false, Error: "cancelled mid-row: " + ctx.Err().Error()}
		}
	}

	if msg, ok := a.failures[name]; ok {
		return RowOutcome{Success: false, Error: msg}
	}
	return RowOutcome{Success: true, RecordID: "id-" + name}
}

func (a *scriptedApplier) ValidateAndPreview(ctx context.Context, rec csv.Record) RowOutcome {
	out := a.run(ctx, rec, &a.previewCalls)
	if out.Success {
		out.RecordID = ""
		out.Preview = &Preview{
			Action:   "create",
			Incoming: map[string]string{"name": rec["name"]},
		}
	}
	return out
}

func (a *scriptedApplier) ValidateAndApply(ctx context.Context, rec csv.Record) RowOutcome {
	return a.run(ctx, rec, &a.applyCalls)
}

func (a *scriptedApplier) previewed() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.previewCalls...)
}

func (a *scriptedApplier) applied() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.applyCalls...)
}

func mkRecords(names ...string) []csv.Record {
	recs := make([]csv.Record, len(names))
	for i, name := range names {
		recs[i] = csv.Record{"name": name}
	}
	return recs
}

// ============================================================================
// Commit Semantics
// ============================================================================

func TestRunner_CommitMidBatchFailure(t *testing.T) {
	applier := &scriptedApplier{
		failures: map[string]string{"bob": "email: invalid email address"},
	}
	runner := NewRunner(applier)

	result := runner.Run(context.Background(), mkRecords("alice", "bob", "carol"), ModeCommit)

	if result.Mode != ModeCommit {
		t.Errorf("Mode = %q, want %q", result.Mode, ModeCommit)
	}
	if result.RequestedCount != 3 || result.SuccessCount != 2 || result.FailedCount != 1 {
		t.Errorf("counts = %d/%d/%d, want 3/2/1",
			result.RequestedCount, result.SuccessCount, result.FailedCount)
	}
	if len(result.Results) != 3 {
		t.Fatalf("len(Results) = %d, want 3", len(result.Results))
	}

	if !result.Results[0].Success || result.Results[0].RecordID != "id-alice" {
		t.Errorf("row 1 = %+v, want success with id-alice", result.Results[0])
	}
	if result.Results[1].Success {
		t.Error("row 2 should have failed")
	}
	if result.Results[1].Error != "email: invalid email address" {
		t.Errorf("row 2 error = %q", result.Results[1].Error)
	}
	if !result.Results[2].Success || result.Results[2].RecordID != "id-carol" {
		t.Errorf("row 3 = %+v, want success with id-carol", result.Results[2])
	}

	// Row numbers are 1-based positions in the input
	for i, outcome := range result.Results {
		if outcome.RowNumber != i+1 {
			t.Errorf("Results[%d].RowNumber = %d, want %d", i, outcome.RowNumber, i+1)
		}
	}

	// The failing row must not stop subsequent rows
	if got := applier.applied(); !reflect.DeepEqual(got, []string{"alice", "bob", "carol"}) {
		t.Errorf("applied calls = %v", got)
	}
	if got := applier.previewed(); len(got) != 0 {
		t.Errorf("commit run made preview calls: %v", got)
	}
}

func TestRunner_NoFailFast(t *testing.T) {
	applier := &scriptedApplier{
		failures: map[string]string{
			"r2": "required field is missing",
			"r4": "invalid date format",
		},
	}
	runner := NewRunner(applier)

	result := runner.Run(context.Background(), mkRecords("r1", "r2", "r3", "r4", "r5"), ModeCommit)

	if result.SuccessCount != 3 || result.FailedCount != 2 {
		t.Errorf("counts = %d/%d, want 3/2", result.SuccessCount, result.FailedCount)
	}
	if got := applier.applied(); len(got) != 5 {
		t.Errorf("attempted %d rows, want all 5: %v", len(got), got)
	}
}

func TestRunner_ZeroRecords(t *testing.T) {
	applier := &scriptedApplier{}
	runner := NewRunner(applier)

	result := runner.Run(context.Background(), nil, ModePreview)

	if result.Mode != ModePreview {
		t.Errorf("Mode = %q, want %q", result.Mode, ModePreview)
	}
	if result.RequestedCount != 0 || result.SuccessCount != 0 || result.FailedCount != 0 {
		t.Errorf("counts = %d/%d/%d, want 0/0/0",
			result.RequestedCount, result.SuccessCount, result.FailedCount)
	}
	if result.Results == nil {
		t.Error("Results should be an empty slice, not nil")
	}
	if len(result.Results) != 0 {
		t.Errorf("len(Results) = %d, want 0", len(result.Results))
	}
	if len(applier.previewed()) != 0 || len(applier.applied()) != 0 {
		t.Error("applier should not be called for an empty batch")
	}
}

// ============================================================================
// Mode Selection
// ============================================================================

func TestRunner_PreviewCallsPreviewOnly(t *testing.T) {
	applier := &scriptedApplier{}
	runner := NewRunner(applier)

	result := runner.Run(context.Background(), mkRecords("a", "b"), ModePreview)

	if got := applier.previewed(); len(got) != 2 {
		t.Errorf("preview calls = %v, want 2", got)
	}
	if got := applier.applied(); len(got) != 0 {
		t.Errorf("preview run made apply calls: %v", got)
	}
	for i, outcome := range result.Results {
		if outcome.Preview == nil {
			t.Errorf("Results[%d].Preview is nil", i)
		}
		if outcome.RecordID != "" {
			t.Errorf("Results[%d] has RecordID %q in preview mode", i, outcome.RecordID)
		}
	}
}

func TestRunner_PreviewIdempotent(t *testing.T) {
	applier := &scriptedApplier{
		failures: map[string]string{"bad": "invalid number format"},
	}
	runner := NewRunner(applier)
	records := mkRecords("a", "bad", "c")

	first := runner.Run(context.Background(), records, ModePreview)
	second := runner.Run(context.Background(), records, ModePreview)

	if !reflect.DeepEqual(first.Results, second.Results) {
		t.Errorf("repeated previews differ:\nfirst:  %+v\nsecond: %+v", first.Results, second.Results)
	}
	if first.SuccessCount != second.SuccessCount || first.FailedCount != second.FailedCount {
		t.Error("repeated previews produced different counts")
	}
	if len(applier.applied()) != 0 {
		t.Error("preview runs must not apply")
	}
}

// ============================================================================
// Ordering Under Concurrency
// ============================================================================

func TestRunner_OrderPreservedWithWorkers(t *testing.T) {
	// Earlier rows sleep longer, so completion order inverts input order.
	names := []string{"r1", "r2", "r3", "r4", "r5", "r6", "r7", "r8"}
	stagger := func(name string) time.Duration {
		for i, n := range names {
			if n == name {
				return time.Duration(len(names)-i) * 5 * time.Millisecond
			}
		}
		return 0
	}

	applier := &scriptedApplier{stagger: stagger}
	runner := NewRunner(applier, WithWorkers(4))

	result := runner.Run(context.Background(), mkRecords(names...), ModeCommit)

	if result.SuccessCount != len(names) {
		t.Fatalf("SuccessCount = %d, want %d", result.SuccessCount, len(names))
	}
	for i, outcome := range result.Results {
		if outcome.RowNumber != i+1 {
			t.Errorf("Results[%d].RowNumber = %d, want %d", i, outcome.RowNumber, i+1)
		}
		if want := "id-" + names[i]; outcome.RecordID != want {
			t.Errorf("Results[%d].RecordID = %q, want %q", i, outcome.RecordID, want)
		}
	}
}

// ============================================================================
// Summary Invariant
// ============================================================================

func TestRunner_SummaryInvariant(t *testing.T) {
	tests := []struct {
		name     string
		names    []string
		failures map[string]string
		workers  int
	}{
		{
			name:  "all pass",
			names: []string{"a", "b", "c", "d"},
		},
		{
			name:     "all fail",
			names:    []string{"a", "b", "c"},
			failures: map[string]string{"a": "x", "b": "x", "c": "x"},
		},
		{
			name:     "alternating",
			names:    []string{"a", "b", "c", "d", "e"},
			failures: map[string]string{"b": "x", "d": "x"},
		},
		{
			name:     "concurrent mixed",
			names:    []string{"a", "b", "c", "d", "e", "f"},
			failures: map[string]string{"c": "x"},
			workers:  3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			applier := &scriptedApplier{failures: tt.failures}
			opts := []RunnerOption{}
			if tt.workers > 0 {
				opts = append(opts, WithWorkers(tt.workers))
			}
			runner := NewRunner(applier, opts...)

			result := runner.Run(context.Background(), mkRecords(tt.names...), ModeCommit)

			if result.RequestedCount != len(tt.names) {
				t.Errorf("RequestedCount = %d, want %d", result.RequestedCount, len(tt.names))
			}
			if got := result.SuccessCount + result.FailedCount; got != result.RequestedCount {
				t.Errorf("SuccessCount+FailedCount = %d, want %d", got, result.RequestedCount)
			}
			if len(result.Results) != result.RequestedCount {
				t.Errorf("len(Results) = %d, want %d", len(result.Results), result.RequestedCount)
			}
			if result.FailedCount != len(tt.failures) {
				t.Errorf("FailedCount = %d, want %d", result.FailedCount, len(tt.failures))
			}
		})
	}
}

// ============================================================================
// Cancellation
// ============================================================================

func TestRunner_CancellationReportsRemainingRows(t *testing.T) {
	names := make([]string, 10)
	for i := range names {
		names[i] = string(rune('a' + i))
	}

	applier := &scriptedApplier{delay: 30 * time.Millisecond}
	runner := NewRunner(applier)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(45 * time.Millisecond)
		cancel()
	}()

	result := runner.Run(ctx, mkRecords(names...), ModeCommit)

	// Every row still gets an outcome and the counts still add up.
	if len(result.Results) != 10 {
		t.Fatalf("len(Results) = %d, want 10", len(result.Results))
	}
	if got := result.SuccessCount + result.FailedCount; got != 10 {
		t.Errorf("SuccessCount+FailedCount = %d, want 10", got)
	}
	if result.SuccessCount >= 10 {
		t.Error("cancellation did not stop the batch")
	}
	for i, outcome := range result.Results {
		if outcome.RowNumber != i+1 {
			t.Errorf("Results[%d].RowNumber = %d, want %d", i, outcome.RowNumber, i+1)
		}
		if !outcome.Success && outcome.Error == "" {
			t.Errorf("Results[%d] failed without an error message", i)
		}
	}
}

// ============================================================================
// Progress Reporting
// ============================================================================

func TestRunner_ProgressCallbacks(t *testing.T) {
	type call struct{ done, total int }
	var mu sync.Mutex
	var calls []call

	applier := &scriptedApplier{}
	runner := NewRunner(applier, WithProgress(func(done, total int) {
		mu.Lock()
		calls = append(calls, call{done, total})
		mu.Unlock()
	}, 100))

	names := make([]string, 250)
	for i := range names {
		names[i] = "r"
	}
	runner.Run(context.Background(), mkRecords(names...), ModePreview)

	mu.Lock()
	defer mu.Unlock()
	if len(calls) != 3 {
		t.Fatalf("progress calls = %v, want 3", calls)
	}
	if calls[0] != (call{100, 250}) || calls[1] != (call{200, 250}) {
		t.Errorf("interval calls = %v", calls[:2])
	}
	if calls[2] != (call{250, 250}) {
		t.Errorf("final call = %v, want {250 250}", calls[2])
	}
}

func TestRunner_ProgressFinalCallForSmallBatch(t *testing.T) {
	var mu sync.Mutex
	var calls [][2]int

	applier := &scriptedApplier{}
	runner := NewRunner(applier, WithProgress(func(done, total int) {
		mu.Lock()
		calls = append(calls, [2]int{done, total})
		mu.Unlock()
	}, 100))

	runner.Run(context.Background(), mkRecords("a", "b", "c"), ModePreview)

	mu.Lock()
	defer mu.Unlock()
	if len(calls) != 1 || calls[0] != [2]int{3, 3} {
		t.Errorf("progress calls = %v, want one final {3 3}", calls)
	}
}

// ============================================================================
// Benchmarks
// ============================================================================

func BenchmarkRunner_Sequential(b *testing.B) {
	applier := &scriptedApplier{}
	runner := NewRunner(applier)
	records := mkRecords(make([]string, 100)...)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		runner.Run(context.Background(), records, ModePreview)
	}
}

func BenchmarkRunner_Workers4(b *testing.B) {
	applier := &scriptedApplier{}
	runner := NewRunner(applier, WithWorkers(4))
	records := mkRecords(make([]string, 100)...)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		runner.Run(context.Background(), records, ModePreview)
	}
}
