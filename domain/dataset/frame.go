package dataset

import (
	"fmt"
	"math"

	"modelrank/domain/core"
)

// Frame is an in-memory rectangular dataset: named numeric columns of equal
// length. Missing cells are NaN.
type Frame struct {
	ID          core.DatasetID          `json:"id"`
	Source      string                  `json:"source,omitempty"`
	Names       []string                `json:"names"`
	Columns     map[string][]float64    `json:"columns"`
	Fingerprint core.DatasetFingerprint `json:"fingerprint"`
}

// NewFrame creates an empty frame
func NewFrame(source string) *Frame {
	return &Frame{
		ID:      core.DatasetID(core.NewID()),
		Source:  source,
		Columns: make(map[string][]float64),
	}
}

// AddColumn appends a named column. The first column fixes the row count.
func (f *Frame) AddColumn(name string, values []float64) error {
	if name == "" {
		return fmt.Errorf("column name cannot be empty")
	}
	if _, exists := f.Columns[name]; exists {
		return fmt.Errorf("duplicate column %q", name)
	}
	if len(f.Names) > 0 && len(values) != f.RowCount() {
		return fmt.Errorf("column %q has %d rows, frame has %d", name, len(values), f.RowCount())
	}
	f.Names = append(f.Names, name)
	f.Columns[name] = values
	f.Fingerprint = core.ComputeDatasetFingerprint(f.Names, len(values))
	return nil
}

// Column returns the values for a named column
func (f *Frame) Column(name string) ([]float64, error) {
	values, ok := f.Columns[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrVariableNotFound, name)
	}
	return values, nil
}

// RowCount returns the number of rows
func (f *Frame) RowCount() int {
	if len(f.Names) == 0 {
		return 0
	}
	return len(f.Columns[f.Names[0]])
}

// ColumnCount returns the number of columns
func (f *Frame) ColumnCount() int {
	return len(f.Names)
}

// CompleteCases returns the frame restricted to the given columns with every
// row containing a NaN in any of them removed. Candidate models compared by
// information criteria must be fit to the identical rows, so callers fit all
// candidates against one complete-case extraction.
func (f *Frame) CompleteCases(names ...string) (*Frame, error) {
	cols := make([][]float64, len(names))
	for i, name := range names {
		values, err := f.Column(name)
		if err != nil {
			return nil, err
		}
		cols[i] = values
	}

	keep := make([]bool, f.RowCount())
	kept := 0
	for row := range keep {
		keep[row] = true
		for _, col := range cols {
			if math.IsNaN(col[row]) {
				keep[row] = false
				break
			}
		}
		if keep[row] {
			kept++
		}
	}

	out := NewFrame(f.Source)
	for i, name := range names {
		values := make([]float64, 0, kept)
		for row, ok := range keep {
			if ok {
				values = append(values, cols[i][row])
			}
		}
		if err := out.AddColumn(name, values); err != nil {
			return nil, err
		}
	}
	return out, nil
}
