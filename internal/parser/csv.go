package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/clausecheck/internal/document"
)

// CSVParser handles CSV exports such as term sheets and fee schedules. Each
// data row becomes one "header: value, ..." paragraph.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*document.Document, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	b := document.NewBuilder(titleFrom(filename), "csv")
	if len(records) == 0 {
		return b.Build(), nil
	}

	headers := records[0]
	for _, row := range records[1:] {
		var line strings.Builder
		for j, cell := range row {
			if j > 0 {
				line.WriteString(", ")
			}
			if j < len(headers) && headers[j] != "" {
				line.WriteString(headers[j] + ": ")
			}
			line.WriteString(cell)
		}
		b.Paragraph(line.String())
	}
	return b.Build(), nil
}
