// Package models defines the JSON payloads exchanged between the linviz
// backend and its clients.
//
// Field names follow the backend's snake_case wire contract; the dataset and
// streaming endpoints use the camelCase ids the web UI expects.
package models

import (
	"fmt"
	"time"

	"github.com/CK6170/Linviz-go/eigen"
	"github.com/CK6170/Linviz-go/insight"
	"github.com/CK6170/Linviz-go/pca"
	"github.com/CK6170/Linviz-go/transform"
)

// Re-export result types so clients can decode responses without importing
// every numeric package.
type Vec3 = transform.Vec3
type PCAResponse = pca.Result
type InsightResponse = insight.Report
type IterationRecord = eigen.Record

// TransformRequest rotates then translates a set of 3D points.
// Matrix holds one point per row.
type TransformRequest struct {
	Matrix      [][]float64 `json:"matrix"`
	Rotation    Vec3        `json:"rotation"`
	Translation Vec3        `json:"translation"`
}

type TransformResponse struct {
	Transformed [][]float64 `json:"transformed"`
}

// PowerMethodRequest asks for a power-method run. Nil MaxIter and Tol select
// the backend defaults.
type PowerMethodRequest struct {
	Matrix        [][]float64 `json:"matrix"`
	MaxIter       *int        `json:"max_iter,omitempty"`
	Tol           *float64    `json:"tol,omitempty"`
	InitialVector []float64   `json:"initial_vector,omitempty"`
}

// Options converts the request into solver options.
func (r *PowerMethodRequest) Options() eigen.Options {
	o := eigen.Options{InitialVector: r.InitialVector}
	if r.MaxIter != nil {
		o.MaxIter = *r.MaxIter
		if o.MaxIter == 0 {
			o.MaxIter = -1
		}
	}
	if r.Tol != nil {
		o.Tol = *r.Tol
		if o.Tol == 0 {
			o.Tol = -1
		}
	}
	return o
}

// PowerMethodResponse carries the iterates as parallel series plus the
// reference dominant eigenvalue used for error measurement.
type PowerMethodResponse struct {
	Vectors           [][]float64 `json:"vectors"`
	Eigenvalues       []float64   `json:"eigenvalues"`
	TrueMaxEigenvalue float64     `json:"true_max_eigenvalue"`
}

// NewPowerMethodResponse splits records into the wire series.
func NewPowerMethodResponse(records []eigen.Record, trueMax float64) PowerMethodResponse {
	resp := PowerMethodResponse{
		Vectors:           make([][]float64, len(records)),
		Eigenvalues:       make([]float64, len(records)),
		TrueMaxEigenvalue: trueMax,
	}
	for i, r := range records {
		resp.Vectors[i] = r.Eigenvector
		resp.Eigenvalues[i] = r.Eigenvalue
	}
	return resp
}

// Records zips the response back into iteration records.
func (r *PowerMethodResponse) Records() ([]eigen.Record, error) {
	return eigen.Records(r.Eigenvalues, r.Vectors)
}

type PCARequest struct {
	Matrix [][]float64 `json:"matrix"`
}

type InsightRequest struct {
	Matrix [][]float64 `json:"matrix"`
}

// DatasetUploadResponse is returned by /api/upload/dataset.
type DatasetUploadResponse struct {
	DatasetID string `json:"datasetId"`
	Rows      int    `json:"rows"`
	Cols      int    `json:"cols"`
}

// Dataset is a parsed upload as served by /api/datasets.
type Dataset struct {
	ID       string      `json:"datasetId"`
	Filename string      `json:"filename,omitempty"`
	Created  time.Time   `json:"created"`
	Rows     [][]float64 `json:"rows"`
}

type DatasetPCARequest struct {
	DatasetID string `json:"datasetId"`
}

// EventType tags a message on the power-method stream.
type EventType int

const (
	EventStarted EventType = iota
	EventIteration
	EventDone
	EventError
	EventCancelled
)

// String implements fmt.Stringer.
func (e EventType) String() string {
	switch e {
	case EventStarted:
		return "started"
	case EventIteration:
		return "iteration"
	case EventDone:
		return "done"
	case EventError:
		return "error"
	case EventCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("EventType(%d)", int(e))
	}
}

// StreamStarted is the body of /api/power-method/stream and the first event
// of every job.
type StreamStarted struct {
	JobID string `json:"jobId"`
	Order int    `json:"order"`
}

// StreamIteration carries one iterate with its running convergence errors.
type StreamIteration struct {
	JobID string     `json:"jobId"`
	Stat  eigen.Stat `json:"stat"`
	IterationRecord
}

// StreamDone closes a job.
type StreamDone struct {
	JobID             string  `json:"jobId"`
	Iterations        int     `json:"iterations"`
	TrueMaxEigenvalue float64 `json:"true_max_eigenvalue"`
}

// StreamError closes a failed or cancelled job.
type StreamError struct {
	JobID string `json:"jobId"`
	Error string `json:"error"`
}
