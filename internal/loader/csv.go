// Package loader reads universe snapshots into the engine's table type.
// It is the thin data-layer collaborator at the engine boundary; the
// engine itself never touches files.
package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/wonny/factorlab/internal/dataset"
)

// string-typed columns; everything else parses as numeric.
var stringColumns = map[string]bool{
	"code":   true,
	"sector": true,
	"status": true,
	"name":   true,
}

// ReadCSV parses a snapshot with a header row. A "code" column is
// required. Empty or unparseable numeric cells become missing; sparse
// fundamentals are routine, not an error.
func ReadCSV(r io.Reader) (*dataset.Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("loader: read header: %w", err)
	}
	codeIdx := -1
	for i, name := range header {
		header[i] = strings.TrimSpace(name)
		if header[i] == "code" {
			codeIdx = i
		}
	}
	if codeIdx < 0 {
		return nil, fmt.Errorf("loader: snapshot has no code column")
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("loader: read rows: %w", err)
	}

	codes := make([]string, len(records))
	for i, rec := range records {
		codes[i] = rec[codeIdx]
	}
	t := dataset.New(codes)

	for col, name := range header {
		if col == codeIdx {
			continue
		}
		if stringColumns[name] {
			values := make([]string, len(records))
			for i, rec := range records {
				values[i] = strings.TrimSpace(rec[col])
			}
			if err := t.SetString(name, values); err != nil {
				return nil, err
			}
			continue
		}
		values := make([]float64, len(records))
		for i, rec := range records {
			values[i] = parseCell(rec[col])
		}
		if err := t.SetNumeric(name, values); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func parseCell(cell string) float64 {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return dataset.Missing()
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return dataset.Missing()
	}
	return v
}
