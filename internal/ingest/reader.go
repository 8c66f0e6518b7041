package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// ReadFile reads a source spreadsheet from a CSV file.
func ReadFile(path string) ([]SourceRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	rows, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return rows, nil
}

// Read parses CSV data with a header row into source rows. The citation
// column is required; all other known columns are optional.
func Read(r io.Reader) ([]SourceRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // tolerate ragged rows
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	// Strip a UTF-8 BOM if the file carries one.
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}

	citationIdx := -1
	for i, h := range header {
		if strings.TrimSpace(h) == colCitation {
			citationIdx = i
			break
		}
	}
	if citationIdx == -1 {
		return nil, fmt.Errorf("missing required column %q", colCitation)
	}

	var rows []SourceRow
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading record: %w", err)
		}

		row := SourceRow{Flags: make(map[string]bool)}
		for i, h := range header {
			if i >= len(record) {
				break
			}
			cell := record[i]
			switch strings.TrimSpace(h) {
			case colCitation:
				row.Citation = strings.TrimSpace(cell)
			case colAffiliation:
				row.AffiliationTW = strings.TrimSpace(cell)
			case colCorresponding:
				row.CorrespondingTW = strings.TrimSpace(cell)
			default:
				if name, ok := flagColumns[strings.TrimSpace(h)]; ok {
					row.Flags[name] = coerceBool(cell)
				}
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}
