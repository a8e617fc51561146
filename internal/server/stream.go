package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/CK6170/Linviz-go/eigen"
	"github.com/CK6170/Linviz-go/matrix"
	"github.com/CK6170/Linviz-go/models"
)

// MaxTickMS bounds the delay a client may request between streamed
// iterations.
const MaxTickMS = 2000

// StreamRequest starts a streamed power-method job. TickMS paces the events
// so the browser can animate the iteration.
type StreamRequest struct {
	models.PowerMethodRequest
	TickMS int `json:"tickMs,omitempty"`
}

// StreamSession allows one active power-method stream per server. Starting a
// new job cancels the previous one and waits for it to broadcast its last
// event, so events of different jobs never interleave.
type StreamSession struct {
	startMu sync.Mutex

	mu       sync.Mutex
	opCancel context.CancelFunc
	jobID    string
	done     chan struct{}
}

func (st *StreamSession) cancelLocked() {
	if st.opCancel != nil {
		st.opCancel()
		st.opCancel = nil
		st.jobID = ""
	}
}

// Active reports whether a job is running.
func (st *StreamSession) Active() bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.opCancel != nil
}

// Stop cancels the running job, if any, and waits for it to finish.
func (st *StreamSession) Stop() {
	st.mu.Lock()
	done := st.done
	st.cancelLocked()
	st.mu.Unlock()
	if done != nil {
		<-done
	}
}

// begin cancels any running job, waits for it to exit and registers a new
// one. Concurrent calls are serialised.
func (st *StreamSession) begin() (ctx context.Context, jobID string, finish func()) {
	st.startMu.Lock()
	defer st.startMu.Unlock()

	st.mu.Lock()
	prev := st.done
	st.cancelLocked()
	st.mu.Unlock()
	if prev != nil {
		<-prev
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	ctx, cancel := context.WithCancel(context.Background())
	jobID = uuid.NewString()
	done := make(chan struct{})
	st.opCancel = cancel
	st.jobID = jobID
	st.done = done
	return ctx, jobID, func() {
		st.mu.Lock()
		if st.jobID == jobID {
			st.opCancel = nil
			st.jobID = ""
		}
		st.mu.Unlock()
		cancel()
		close(done)
	}
}

func (s *Server) handleStreamStart(w http.ResponseWriter, r *http.Request) {
	if !s.allow(w, r, http.MethodPost) {
		return
	}
	var req StreamRequest
	if err := s.readJSON(r, &req); err != nil {
		s.writeError(w, r, 400, err)
		return
	}
	m, o, trueMax, err := s.powerInput(&req.PowerMethodRequest)
	if err != nil {
		s.writeError(w, r, 0, err)
		return
	}
	tick := time.Duration(min(max(req.TickMS, 0), MaxTickMS)) * time.Millisecond

	ctx, jobID, finish := s.stream.begin()
	go func() {
		defer finish()
		s.runStream(ctx, jobID, m, o, trueMax, tick)
	}()

	s.writeJSON(w, 200, models.StreamStarted{JobID: jobID, Order: m.Rows})
}

// runStream broadcasts started, one iteration event per record with its
// running convergence errors, then done, error or cancelled.
func (s *Server) runStream(ctx context.Context, jobID string, m *matrix.Matrix, o eigen.Options, trueMax float64, tick time.Duration) {
	s.wsPower.Broadcast(WSMessage{
		Type: models.EventStarted.String(),
		Data: models.StreamStarted{JobID: jobID, Order: m.Rows},
	})

	var prev *eigen.Record
	records, err := eigen.Iterate(ctx, m, o, func(rec eigen.Record) error {
		stat, err := eigen.Step(prev, rec, &trueMax)
		if err != nil {
			return err
		}
		prev = &rec
		s.wsPower.Broadcast(WSMessage{
			Type: models.EventIteration.String(),
			Data: models.StreamIteration{JobID: jobID, Stat: stat, IterationRecord: rec},
		})
		if tick > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(tick):
			}
		}
		return nil
	})

	switch {
	case ctx.Err() != nil:
		s.wsPower.Broadcast(WSMessage{
			Type: models.EventCancelled.String(),
			Data: models.StreamError{JobID: jobID, Error: ctx.Err().Error()},
		})
	case err != nil:
		s.wsPower.Broadcast(WSMessage{
			Type: models.EventError.String(),
			Data: models.StreamError{JobID: jobID, Error: err.Error()},
		})
	default:
		s.wsPower.Broadcast(WSMessage{
			Type: models.EventDone.String(),
			Data: models.StreamDone{JobID: jobID, Iterations: len(records), TrueMaxEigenvalue: trueMax},
		})
	}
}

func (s *Server) handleStreamStop(w http.ResponseWriter, r *http.Request) {
	if !s.allow(w, r, http.MethodPost) {
		return
	}
	s.stream.mu.Lock()
	s.stream.cancelLocked()
	s.stream.mu.Unlock()
	s.writeJSON(w, 200, OKResponse{OK: true})
}
