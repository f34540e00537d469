package excel

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"modelrank/domain/dataset"

	"github.com/xuri/excelize/v2"
)

// DataReader reads tabular datasets from Excel or CSV files into a frame.
// The first row is the header; cells that do not parse as numbers become NaN
// (treated as missing downstream).
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
}

// NewDataReader creates a reader that handles both Excel and CSV files
func NewDataReader(filePath string) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &DataReader{filePath: filePath, fileType: fileType}
}

// ReadFrame reads the file into a dataset frame
func (r *DataReader) ReadFrame() (*dataset.Frame, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	switch r.fileType {
	case "csv":
		return r.readCSV()
	case "xlsx":
		return r.readExcel()
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
}

// readExcel reads Sheet1 into a frame
func (r *DataReader) readExcel() (*dataset.Frame, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	if err != nil {
		return nil, fmt.Errorf("failed to read Sheet1: %w", err)
	}

	return buildFrame(r.filePath, rows)
}

// readCSV reads a comma-separated file into a frame
func (r *DataReader) readCSV() (*dataset.Frame, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // tolerate ragged rows, they pad with NaN
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}

	return buildFrame(r.filePath, rows)
}

// buildFrame converts header + data rows into a column-oriented frame
func buildFrame(source string, rows [][]string) (*dataset.Frame, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("dataset needs a header row and at least one data row, got %d rows", len(rows))
	}

	header := rows[0]
	names := make([]string, 0, len(header))
	for i, raw := range header {
		name := strings.TrimSpace(raw)
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		names = append(names, name)
	}

	columns := make([][]float64, len(names))
	for i := range columns {
		columns[i] = make([]float64, 0, len(rows)-1)
	}

	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		for i := range names {
			value := math.NaN()
			if i < len(row) {
				if v, err := parseCell(row[i]); err == nil {
					value = v
				}
			}
			columns[i] = append(columns[i], value)
		}
	}

	frame := dataset.NewFrame(source)
	for i, name := range names {
		if err := frame.AddColumn(name, columns[i]); err != nil {
			return nil, err
		}
	}
	return frame, nil
}

func parseCell(raw string) (float64, error) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" || strings.EqualFold(cleaned, "na") || strings.EqualFold(cleaned, "nan") {
		return 0, fmt.Errorf("missing value")
	}
	// Strip thousands separators that spreadsheets like to add
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	return strconv.ParseFloat(cleaned, 64)
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
