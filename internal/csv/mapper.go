package csv

import "strings"

// Record is one data row keyed by lower-cased header name.
//
// A key is present only when its header name is non-empty and the cell
// held a non-empty value after trimming, so an absent key means "field
// not provided", which downstream code treats differently from "field
// provided as empty string".
type Record map[string]string

// Has reports whether the record carries a value for the given key.
func (r Record) Has(key string) bool {
	_, ok := r[key]
	return ok
}

// NormalizeHeader lower-cases and trims header names, preserving column
// positions. Cells that trim to nothing stay as empty names; the mapper
// skips those columns entirely.
func NormalizeHeader(row []string) []string {
	out := make([]string, len(row))
	for i, h := range row {
		out[i] = strings.ToLower(strings.TrimSpace(h))
	}
	return out
}

// MapRecords zips the header row against each data row into Records.
//
// The first row is the header. Each following row is matched by position:
// data columns beyond the header length are ignored, and short rows simply
// omit their trailing keys. Cells mapping to an empty header name or
// holding an empty value are left out. Rows that contribute no keys at all
// are dropped, since an all-blank row supplies nothing actionable.
//
// When two header columns share a name the right-most non-empty cell wins,
// matching how spreadsheet tools resolve the collision.
//
// No business validation happens here; required-field checks belong to the
// caller.
func MapRecords(rows [][]string) []Record {
	if len(rows) == 0 {
		return nil
	}

	header := NormalizeHeader(rows[0])
	records := make([]Record, 0, len(rows)-1)

	for _, row := range rows[1:] {
		rec := make(Record, len(header))
		for i, name := range header {
			if name == "" || i >= len(row) {
				continue
			}
			val := strings.TrimSpace(row[i])
			if val == "" {
				continue
			}
			rec[name] = val
		}
		if len(rec) == 0 {
			continue
		}
		records = append(records, rec)
	}

	return records
}
