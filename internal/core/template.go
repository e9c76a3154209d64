package core

import (
	"bytes"
	"encoding/csv"
)

// TemplateCSV renders a starter file for the operation: the recognized
// header row followed by one example row showing the expected formats.
func (d *OperationDefinition) TemplateCSV() string {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	headers := make([]string, len(d.Specs))
	example := make([]string, len(d.Specs))
	for i, spec := range d.Specs {
		headers[i] = spec.Name
		example[i] = spec.Example
	}

	w.Write(headers)
	w.Write(example)
	w.Flush()

	return buf.String()
}
