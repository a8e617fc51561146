package session

import (
	"context"
	"fmt"

	"github.com/CK6170/Linviz-go/matrix"
	"github.com/CK6170/Linviz-go/models"
	"github.com/CK6170/Linviz-go/transform"
)

// TransformTicket is a validated rigid-transform request.
type TransformTicket struct {
	Seq uint64
	req models.TransformRequest
}

// Transformer sends point sets to the backend for rotation and translation.
type Transformer struct {
	backend Backend
	slot    slot[[][]float64]
}

func NewTransformer(b Backend) *Transformer { return &Transformer{backend: b} }

func (t *Transformer) Prepare(points *matrix.Matrix, rot, trans transform.Vec3) (TransformTicket, error) {
	if points == nil || points.Rows == 0 || points.Cols != 3 {
		t.slot.reject(transform.ErrPointSet)
		return TransformTicket{}, transform.ErrPointSet
	}
	return TransformTicket{
		Seq: t.slot.begin(),
		req: models.TransformRequest{Matrix: points.Slice(), Rotation: rot, Translation: trans},
	}, nil
}

func (t *Transformer) Run(ctx context.Context, tk TransformTicket) Outcome[[][]float64] {
	resp, err := t.backend.Transform(ctx, tk.req)
	if err == nil && len(resp.Transformed) != len(tk.req.Matrix) {
		err = fmt.Errorf("%d points in, %d out: %w", len(tk.req.Matrix), len(resp.Transformed), matrix.ErrDimensionMismatch)
	}
	if err != nil {
		return Outcome[[][]float64]{Seq: tk.Seq, Err: fmt.Errorf("transform: %w", err)}
	}
	return Outcome[[][]float64]{Seq: tk.Seq, Value: resp.Transformed}
}

func (t *Transformer) Apply(o Outcome[[][]float64]) bool { return t.slot.apply(o) }

func (t *Transformer) Submit(ctx context.Context, points *matrix.Matrix, rot, trans transform.Vec3) (Outcome[[][]float64], error) {
	tk, err := t.Prepare(points, rot, trans)
	if err != nil {
		return Outcome[[][]float64]{}, err
	}
	out := t.Run(ctx, tk)
	t.Apply(out)
	return out, nil
}

func (t *Transformer) Snapshot() Snapshot[[][]float64] { return t.slot.snapshot() }
