// Package session holds the state of one interactive visualizer session:
// the edited matrix, the viewport, and the three backend-driven operations
// (power method, PCA and rigid transforms), each with its own result and
// error slot.
package session

import (
	"fmt"
	"sync"

	"github.com/CK6170/Linviz-go/grid"
	"github.com/CK6170/Linviz-go/insight"
	"github.com/CK6170/Linviz-go/matrix"
	"github.com/CK6170/Linviz-go/transform"
	"github.com/CK6170/Linviz-go/viewport"
)

// Session is passed explicitly to whatever drives the UI. It is safe for
// concurrent use.
type Session struct {
	mu     sync.Mutex
	matrix *matrix.Matrix
	cells  [][]string
	vp     *viewport.Viewport

	Eigen     *EigenSolver
	PCA       *PCAPipeline
	Transform *Transformer
}

// New starts a session with the identity of the given order and a viewport
// of width×height pixels.
func New(b Backend, order int, width, height float64) (*Session, error) {
	if order < matrix.MinOrder || order > matrix.MaxOrder {
		return nil, fmt.Errorf("order %d: %w", order, matrix.ErrOrder)
	}
	s := &Session{
		vp:        viewport.New(width, height),
		Eigen:     NewEigenSolver(b),
		PCA:       NewPCAPipeline(b),
		Transform: NewTransformer(b),
	}
	s.setMatrixLocked(matrix.Identity(order))
	return s, nil
}

func (s *Session) setMatrixLocked(m *matrix.Matrix) {
	s.matrix = m.Clone()
	s.cells = make([][]string, m.Rows)
	for i, row := range m.Values {
		s.cells[i] = make([]string, len(row))
		for j, v := range row {
			s.cells[i][j] = grid.FormatLabel(v)
		}
	}
}

// Matrix returns a copy of the last valid matrix.
func (s *Session) Matrix() *matrix.Matrix {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.matrix.Clone()
}

// SetMatrix replaces the matrix, e.g. when a preset is chosen.
func (s *Session) SetMatrix(m *matrix.Matrix) error {
	if _, err := m.Order(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setMatrixLocked(m)
	return nil
}

// SetCell records raw editor input for one cell. The matrix only changes
// when every cell parses; otherwise the per-cell errors are returned and
// the last valid matrix is kept.
func (s *Session) SetCell(i, j int, input string) []*matrix.CellError {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.cells) || j < 0 || j >= len(s.cells[i]) {
		return []*matrix.CellError{{Row: i, Col: j, Input: input, Err: matrix.ErrDimensionMismatch}}
	}
	s.cells[i][j] = input
	m, errs := matrix.ParseGrid(s.cells)
	if len(errs) > 0 {
		return errs
	}
	s.matrix = m
	return nil
}

// Resize changes the matrix order, keeping the overlapping entries and
// filling new diagonal entries with 1.
func (s *Session) Resize(order int) error {
	if order < matrix.MinOrder || order > matrix.MaxOrder {
		return fmt.Errorf("order %d: %w", order, matrix.ErrOrder)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m := matrix.Identity(order)
	for i := 0; i < order && i < s.matrix.Rows; i++ {
		for j := 0; j < order && j < s.matrix.Cols; j++ {
			m.Values[i][j] = s.matrix.Values[i][j]
		}
	}
	s.setMatrixLocked(m)
	return nil
}

// Insight analyses the current matrix.
func (s *Session) Insight() (*insight.Report, error) {
	return insight.Analyze(s.Matrix())
}

// BasisImages returns where the standard basis lands under the matrix.
func (s *Session) BasisImages() ([]*matrix.Vector, error) {
	return transform.BasisImages(s.Matrix())
}

// Viewport returns a copy of the viewport state.
func (s *Session) Viewport() viewport.Viewport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.vp
}

// Pan, ZoomAt, SetUnit, ResizeViewport and ResetView mutate the viewport.
func (s *Session) Pan(dx, dy float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vp.Pan(dx, dy)
}

func (s *Session) ZoomAt(factor float64, anchor viewport.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vp.ZoomAt(factor, anchor)
}

func (s *Session) SetUnit(u float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vp.SetUnit(u)
}

func (s *Session) ResizeViewport(width, height float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vp.Resize(width, height)
}

func (s *Session) ResetView() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vp.Reset()
}

// GridLines lays out the grid for the current viewport.
func (s *Session) GridLines() []grid.Line {
	vp := s.Viewport()
	return grid.Lines(&vp, grid.DefaultPixelsPerMajor)
}

// Errors returns the message in each operation's error slot. Empty means no
// error.
func (s *Session) Errors() (eigenErr, pcaErr, transformErr string) {
	return s.Eigen.Snapshot().Err, s.PCA.Snapshot().Err, s.Transform.Snapshot().Err
}
