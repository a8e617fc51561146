package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/CK6170/Linviz-go/pca"
)

// PCATicket is a validated dataset ready to be sent.
type PCATicket struct {
	Seq  uint64
	data [][]float64
}

// PCAPipeline drives decompositions and derives the selection-dependent
// view locally.
type PCAPipeline struct {
	backend Backend
	slot    slot[*pca.Result]

	mu       sync.Mutex
	selected int
}

func NewPCAPipeline(b Backend) *PCAPipeline {
	return &PCAPipeline{backend: b, selected: 2}
}

// Prepare validates data synchronously.
func (p *PCAPipeline) Prepare(data [][]float64) (PCATicket, error) {
	if _, _, err := pca.Validate(data); err != nil {
		p.slot.reject(err)
		return PCATicket{}, err
	}
	cp := make([][]float64, len(data))
	for i, row := range data {
		cp[i] = append([]float64(nil), row...)
	}
	return PCATicket{Seq: p.slot.begin(), data: cp}, nil
}

func (p *PCAPipeline) Run(ctx context.Context, t PCATicket) Outcome[*pca.Result] {
	res, err := p.backend.PCA(ctx, t.data)
	if err == nil {
		err = res.Check()
	}
	if err == nil && res.Features() != len(t.data[0]) {
		err = fmt.Errorf("%d ratios for %d features: %w", res.Features(), len(t.data[0]), pca.ErrRagged)
	}
	if err != nil {
		return Outcome[*pca.Result]{Seq: t.Seq, Err: fmt.Errorf("pca: %w", err)}
	}
	return Outcome[*pca.Result]{Seq: t.Seq, Value: res}
}

// Apply stores o unless stale. The selection is clamped to the new
// feature count.
func (p *PCAPipeline) Apply(o Outcome[*pca.Result]) bool {
	if !p.slot.apply(o) {
		return false
	}
	if o.Err == nil {
		p.mu.Lock()
		p.selected = min(max(p.selected, 1), o.Value.Features())
		p.mu.Unlock()
	}
	return true
}

// Submit is Prepare, Run and Apply on the calling goroutine.
func (p *PCAPipeline) Submit(ctx context.Context, data [][]float64) (Outcome[*pca.Result], error) {
	t, err := p.Prepare(data)
	if err != nil {
		return Outcome[*pca.Result]{}, err
	}
	out := p.Run(ctx, t)
	p.Apply(out)
	return out, nil
}

// Select changes how many leading components are retained. It only
// recomputes the view; nothing is re-requested.
func (p *PCAPipeline) Select(k int) error {
	snap := p.slot.snapshot()
	if !snap.HasValue {
		return fmt.Errorf("%w: no decomposition", pca.ErrSelection)
	}
	if n := snap.Value.Features(); k < 1 || k > n {
		return fmt.Errorf("%w: %d not in 1..%d", pca.ErrSelection, k, n)
	}
	p.mu.Lock()
	p.selected = k
	p.mu.Unlock()
	return nil
}

func (p *PCAPipeline) Selected() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selected
}

// View derives cumulative variance, tier, eligibility and the truncated
// projection for the current selection.
func (p *PCAPipeline) View() (pca.View, error) {
	snap := p.slot.snapshot()
	if !snap.HasValue {
		if snap.Err != "" {
			return pca.View{}, fmt.Errorf("%s", snap.Err)
		}
		return pca.View{}, fmt.Errorf("%w: no decomposition", pca.ErrSelection)
	}
	return pca.Derive(snap.Value, p.Selected())
}

func (p *PCAPipeline) Snapshot() Snapshot[*pca.Result] { return p.slot.snapshot() }

func (p *PCAPipeline) Reset() { p.slot.reset() }
