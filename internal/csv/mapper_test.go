package csv

import (
	"reflect"
	"testing"
)

// ============================================================================
// MapRecords Tests
// ============================================================================

func TestMapRecords(t *testing.T) {
	tests := []struct {
		name string
		rows [][]string
		want []Record
	}{
		{
			name: "basic mapping",
			rows: [][]string{
				{"name", "plan_id"},
				{"Jane Doe", "2"},
			},
			want: []Record{{"name": "Jane Doe", "plan_id": "2"}},
		},
		{
			name: "header lower-cased",
			rows: [][]string{
				{"Name", "EMAIL"},
				{"Ana", "ana@example.com"},
			},
			want: []Record{{"name": "Ana", "email": "ana@example.com"}},
		},
		{
			name: "empty cell omits the key",
			rows: [][]string{
				{"name", "email", "phone"},
				{"Ana", "", "555-0100"},
			},
			want: []Record{{"name": "Ana", "phone": "555-0100"}},
		},
		{
			name: "whitespace-only cell omits the key",
			rows: [][]string{
				{"name", "email"},
				{"Ana", "   "},
			},
			want: []Record{{"name": "Ana"}},
		},
		{
			name: "empty header name skips the column",
			rows: [][]string{
				{"name", "", "email"},
				{"Ana", "ignored", "ana@example.com"},
			},
			want: []Record{{"name": "Ana", "email": "ana@example.com"}},
		},
		{
			name: "extra data columns ignored",
			rows: [][]string{
				{"name", "email"},
				{"Ana", "ana@example.com", "surplus", "more"},
			},
			want: []Record{{"name": "Ana", "email": "ana@example.com"}},
		},
		{
			name: "short row omits trailing keys",
			rows: [][]string{
				{"name", "email", "phone"},
				{"Ana"},
			},
			want: []Record{{"name": "Ana"}},
		},
		{
			name: "row with zero keys dropped",
			rows: [][]string{
				{"name", "email"},
				{"", ""},
				{"Ana", "ana@example.com"},
			},
			want: []Record{{"name": "Ana", "email": "ana@example.com"}},
		},
		{
			name: "header only yields empty list",
			rows: [][]string{
				{"name", "email"},
			},
			want: []Record{},
		},
		{
			name: "no rows yields nil",
			rows: nil,
			want: nil,
		},
		{
			name: "duplicate header keeps right-most non-empty cell",
			rows: [][]string{
				{"name", "name"},
				{"first", "second"},
				{"only", ""},
			},
			want: []Record{{"name": "second"}, {"name": "only"}},
		},
		{
			name: "multiple rows preserve order",
			rows: [][]string{
				{"name"},
				{"one"},
				{"two"},
				{"three"},
			},
			want: []Record{{"name": "one"}, {"name": "two"}, {"name": "three"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapRecords(tt.rows)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("MapRecords(%v) = %v, want %v", tt.rows, got, tt.want)
			}
		})
	}
}

// TestMapRecords_FromParse covers the parse-then-map sequence end to end.
func TestMapRecords_FromParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Record
	}{
		{
			name:  "comma file",
			input: "name,plan_id\nJane Doe,2",
			want:  []Record{{"name": "Jane Doe", "plan_id": "2"}},
		},
		{
			name:  "semicolon file",
			input: "name;email\nAna;ana@example.com",
			want:  []Record{{"name": "Ana", "email": "ana@example.com"}},
		},
		{
			name:  "quoted comma stays one field",
			input: "name,plan_id\n\"Doe, Jane\",3",
			want:  []Record{{"name": "Doe, Jane", "plan_id": "3"}},
		},
		{
			name:  "trailing blank line adds no record",
			input: "name,plan_id\nJane Doe,2\n\n",
			want:  []Record{{"name": "Jane Doe", "plan_id": "2"}},
		},
		{
			name:  "header only",
			input: "name,plan_id\n",
			want:  []Record{},
		},
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapRecords(Parse(tt.input))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("MapRecords(Parse(%q)) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// ============================================================================
// NormalizeHeader Tests
// ============================================================================

func TestNormalizeHeader(t *testing.T) {
	got := NormalizeHeader([]string{" Name ", "PLAN_ID", "", "\tEmail"})
	want := []string{"name", "plan_id", "", "email"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeHeader() = %v, want %v", got, want)
	}
}

// ============================================================================
// Record Tests
// ============================================================================

func TestRecordHas(t *testing.T) {
	rec := Record{"name": "Ana"}
	if !rec.Has("name") {
		t.Error("Has(name) = false, want true")
	}
	if rec.Has("email") {
		t.Error("Has(email) = true, want false")
	}
}

// ============================================================================
// Benchmark Tests
// ============================================================================

func BenchmarkMapRecords(b *testing.B) {
	rows := make([][]string, 0, 101)
	rows = append(rows, []string{"name", "email", "phone", "plan_id", "active"})
	for i := 0; i < 100; i++ {
		rows = append(rows, []string{"Jane Doe", "jane@example.com", "555-0100", "2", "true"})
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = MapRecords(rows)
	}
}
