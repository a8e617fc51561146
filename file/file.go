// Package file reads datasets and matrices from disk and persists results.
//
// Datasets are CSV-ish text: one observation per line, values separated by
// commas and/or whitespace. Matrices and analysis results are JSON.
package file

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/CK6170/Linviz-go/matrix"
	ui "github.com/CK6170/Linviz-go/ui"
)

var (
	ErrNoRows = errors.New("file: no numeric rows")
	ErrRagged = errors.New("file: rows have different numbers of values")
)

// MaxLineBytes bounds a single dataset line.
const MaxLineBytes = 1 << 20

// ParseCSV reads a numeric table. Cells that are not finite numbers are
// dropped from their row and rows left empty are skipped, so header lines
// and blank lines disappear. The remaining rows must all have the same
// length.
func ParseCSV(r io.Reader) ([][]float64, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), MaxLineBytes)
	var rows [][]float64
	line := 0
	for sc.Scan() {
		line++
		row := parseLine(sc.Text())
		if len(row) == 0 {
			continue
		}
		if len(rows) > 0 && len(row) != len(rows[0]) {
			return nil, fmt.Errorf("line %d has %d values, want %d: %w", line, len(row), len(rows[0]), ErrRagged)
		}
		rows = append(rows, row)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoRows
	}
	return rows, nil
}

func parseLine(s string) []float64 {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\t' || r == '\r'
	})
	var row []float64
	for _, f := range fields {
		v, err := matrix.ParseCell(strings.Trim(f, `"'`))
		if err != nil {
			continue
		}
		row = append(row, v)
	}
	return row
}

// LoadCSV parses the dataset at path.
func LoadCSV(path string) ([][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	rows, err := ParseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

// LoadMatrix reads a matrix from a JSON file holding an array of rows, or
// from any other file as CSV.
func LoadMatrix(path string) (*matrix.Matrix, error) {
	var rows [][]float64
	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := LoadJSON(path, &rows); err != nil {
			return nil, err
		}
	} else {
		var err error
		if rows, err = LoadCSV(path); err != nil {
			return nil, err
		}
	}
	m, err := matrix.FromRows(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// LoadJSON decodes the JSON file at path into v.
func LoadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// SaveJSON writes v as indented JSON, creating parent directories.
func SaveJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return err
	}
	ui.Greenf("%s Saved\n", path)
	return nil
}

// AppendToFile appends content + newline to file, creating it if it does not
// exist. Failures are reported as warnings only.
func AppendToFile(file, content string) {
	f, err := os.OpenFile(file, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		ui.Warningf("Warning: failed to open file for append: %v\n", err)
		return
	}
	defer func() { _ = f.Close() }()
	if _, err := f.WriteString(content + "\n"); err != nil {
		ui.Warningf("Warning: failed to write to file: %v\n", err)
	}
}
