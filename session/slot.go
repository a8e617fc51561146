package session

import (
	"fmt"
	"sync"
)

// State is the lifecycle of one orchestrated backend operation.
type State int

const (
	Idle State = iota
	Requesting
	Completed
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Requesting:
		return "requesting"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Outcome is the result of one request, tagged with the sequence number it
// was issued under.
type Outcome[T any] struct {
	Seq   uint64
	Value T
	Err   error
}

func (o Outcome[T]) OK() bool { return o.Err == nil }

// Snapshot is a consistent view of a slot. Value is only meaningful when
// HasValue is true.
type Snapshot[T any] struct {
	State    State
	Value    T
	HasValue bool
	Err      string
	Seq      uint64
}

// slot holds the latest result and error of one operation. Each request
// takes a fresh sequence number and its outcome is applied only when it is
// newer than the last one applied, so late responses never overwrite newer
// ones.
type slot[T any] struct {
	mu       sync.Mutex
	issued   uint64
	applied  uint64
	state    State
	value    T
	hasValue bool
	err      string
}

func (s *slot[T]) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	s.state = Requesting
	return s.issued
}

// apply stores o unless it is stale and reports whether it was stored. A
// failure clears the previous value.
func (s *slot[T]) apply(o Outcome[T]) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o.Seq <= s.applied || o.Seq > s.issued {
		return false
	}
	s.applied = o.Seq
	if o.Err != nil {
		var zero T
		s.value, s.hasValue = zero, false
		s.err = o.Err.Error()
	} else {
		s.value, s.hasValue = o.Value, true
		s.err = ""
	}
	switch {
	case o.Seq < s.issued:
		s.state = Requesting
	case o.Err != nil:
		s.state = Failed
	default:
		s.state = Completed
	}
	return true
}

// reject records a synchronous validation failure as its own request so
// any response still in flight becomes stale.
func (s *slot[T]) reject(err error) Outcome[T] {
	o := Outcome[T]{Seq: s.begin(), Err: err}
	s.apply(o)
	return o
}

func (s *slot[T]) snapshot() Snapshot[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot[T]{
		State:    s.state,
		Value:    s.value,
		HasValue: s.hasValue,
		Err:      s.err,
		Seq:      s.applied,
	}
}

func (s *slot[T]) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	s.applied = s.issued
	s.state = Idle
	s.value, s.hasValue = zero, false
	s.err = ""
}
