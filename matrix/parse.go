package matrix

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// CellError reports one cell of user input that is not a finite number.
type CellError struct {
	Row, Col int
	Input    string
	Err      error
}

func (e *CellError) Error() string {
	return fmt.Sprintf("cell (%d,%d) %q: %v", e.Row, e.Col, e.Input, e.Err)
}

func (e *CellError) Unwrap() error { return e.Err }

// ParseCell converts a single editor cell into a finite float.
func ParseCell(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty: %w", ErrInvalidCell)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", s, ErrInvalidCell)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q: %w", s, ErrNotFinite)
	}
	return v, nil
}

// ParseGrid parses a grid of editor cells. Every invalid cell is reported;
// the matrix is nil whenever at least one cell fails or the grid is ragged.
func ParseGrid(cells [][]string) (*Matrix, []*CellError) {
	var errs []*CellError
	rows := make([][]float64, len(cells))
	for i, row := range cells {
		rows[i] = make([]float64, len(row))
		for j, s := range row {
			v, err := ParseCell(s)
			if err != nil {
				errs = append(errs, &CellError{Row: i, Col: j, Input: s, Err: err})
				continue
			}
			rows[i][j] = v
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}
	m, err := FromRows(rows)
	if err != nil {
		return nil, []*CellError{{Row: -1, Col: -1, Err: err}}
	}
	return m, nil
}

// CoerceGrid parses cells and silently replaces invalid ones with 0. It only
// exists for callers that explicitly want the lenient editor behaviour;
// ParseGrid is the default.
func CoerceGrid(cells [][]string) (*Matrix, error) {
	rows := make([][]float64, len(cells))
	for i, row := range cells {
		rows[i] = make([]float64, len(row))
		for j, s := range row {
			if v, err := ParseCell(s); err == nil {
				rows[i][j] = v
			}
		}
	}
	return FromRows(rows)
}
