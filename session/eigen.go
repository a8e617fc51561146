package session

import (
	"context"
	"fmt"

	"github.com/CK6170/Linviz-go/eigen"
	"github.com/CK6170/Linviz-go/matrix"
	"github.com/CK6170/Linviz-go/models"
)

// DefaultVerifyTol is the relative tolerance for the local cross-check of
// the reported dominant eigenvalue.
const DefaultVerifyTol = 1e-6

// EigenResult is one completed power-method run with its convergence
// series. Warning is set when the reported dominant eigenvalue disagrees
// with the local check; the reported value is still used for TrueError.
type EigenResult struct {
	Records           []eigen.Record
	Stats             []eigen.Stat
	TrueMaxEigenvalue float64
	Verified          eigen.Verification
	Warning           string
}

// EigenTicket is a validated request ready to be sent.
type EigenTicket struct {
	Seq    uint64
	matrix *matrix.Matrix
	req    models.PowerMethodRequest
}

// EigenSolver drives power-method requests against a Backend.
type EigenSolver struct {
	backend   Backend
	verifyTol float64
	slot      slot[*EigenResult]
}

func NewEigenSolver(b Backend) *EigenSolver {
	return &EigenSolver{backend: b, verifyTol: DefaultVerifyTol}
}

// Prepare validates the input synchronously. Invalid input never reaches
// the backend: it fails the slot and returns the error.
func (e *EigenSolver) Prepare(m *matrix.Matrix, o eigen.Options) (EigenTicket, error) {
	if err := eigen.Validate(m, o); err != nil {
		e.slot.reject(err)
		return EigenTicket{}, err
	}
	req := models.PowerMethodRequest{Matrix: m.Slice(), InitialVector: o.InitialVector}
	if o.MaxIter > 0 {
		req.MaxIter = &o.MaxIter
	}
	if o.Tol > 0 {
		req.Tol = &o.Tol
	}
	return EigenTicket{Seq: e.slot.begin(), matrix: m.Clone(), req: req}, nil
}

// Run calls the backend and post-processes the response. It holds no lock
// and may run on any goroutine.
func (e *EigenSolver) Run(ctx context.Context, t EigenTicket) Outcome[*EigenResult] {
	res, err := e.run(ctx, t)
	if err != nil {
		err = fmt.Errorf("eigen solver: %w", err)
	}
	return Outcome[*EigenResult]{Seq: t.Seq, Value: res, Err: err}
}

func (e *EigenSolver) run(ctx context.Context, t EigenTicket) (*EigenResult, error) {
	resp, err := e.backend.PowerMethod(ctx, t.req)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, fmt.Errorf("empty response: %w", eigen.ErrRecords)
	}
	records, err := resp.Records()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no iterates: %w", eigen.ErrRecords)
	}
	for _, r := range records {
		if len(r.Eigenvector) != t.matrix.Rows {
			return nil, fmt.Errorf("iterate %d has dimension %d: %w", r.Iteration, len(r.Eigenvector), matrix.ErrDimensionMismatch)
		}
	}
	trueMax := resp.TrueMaxEigenvalue
	stats, err := eigen.Convergence(records, &trueMax)
	if err != nil {
		return nil, err
	}
	res := &EigenResult{Records: records, Stats: stats, TrueMaxEigenvalue: trueMax}
	if v, err := eigen.Verify(t.matrix, trueMax, e.verifyTol); err == nil {
		res.Verified = v
		if !v.Agrees {
			res.Warning = fmt.Sprintf("backend dominant eigenvalue %.6g differs from local %.6g", v.Reported, v.Local)
		}
	} else {
		res.Warning = "dominant eigenvalue could not be checked locally: " + err.Error()
	}
	return res, nil
}

// Apply stores o unless a newer outcome has already been applied.
func (e *EigenSolver) Apply(o Outcome[*EigenResult]) bool { return e.slot.apply(o) }

// Solve is Prepare, Run and Apply on the calling goroutine.
func (e *EigenSolver) Solve(ctx context.Context, m *matrix.Matrix, o eigen.Options) (Outcome[*EigenResult], error) {
	t, err := e.Prepare(m, o)
	if err != nil {
		return Outcome[*EigenResult]{}, err
	}
	out := e.Run(ctx, t)
	e.Apply(out)
	return out, nil
}

func (e *EigenSolver) Snapshot() Snapshot[*EigenResult] { return e.slot.snapshot() }

func (e *EigenSolver) Reset() { e.slot.reset() }
