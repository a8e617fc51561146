// Package server is the linviz numerical backend: JSON endpoints for point
// transforms, the power method, PCA and matrix insight, dataset uploads, and
// a WebSocket stream of power-method iterations.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/CK6170/Linviz-go/eigen"
	"github.com/CK6170/Linviz-go/file"
	"github.com/CK6170/Linviz-go/insight"
	"github.com/CK6170/Linviz-go/matrix"
	"github.com/CK6170/Linviz-go/models"
	"github.com/CK6170/Linviz-go/pca"
	"github.com/CK6170/Linviz-go/transform"
)

// DefaultMaxIterCap bounds max_iter on every power-method request.
const DefaultMaxIterCap = 1000

// ErrIterCap is returned when a request asks for more iterations than the
// server allows.
var ErrIterCap = errors.New("server: max_iter exceeds server limit")

// Options configures New. Zero values select the defaults.
type Options struct {
	// WebDir, when set, is served as a static frontend at /.
	WebDir     string
	CacheTTL   time.Duration
	MaxIterCap int
}

type Server struct {
	mux *http.ServeMux

	store  *DatasetStore
	cache  *PCACache
	stream *StreamSession

	wsPower *WSHub

	maxIterCap int
}

func New(opts Options) *Server {
	if opts.MaxIterCap <= 0 {
		opts.MaxIterCap = DefaultMaxIterCap
	}
	s := &Server{
		mux:        http.NewServeMux(),
		store:      NewDatasetStore(),
		cache:      NewPCACache(opts.CacheTTL),
		stream:     &StreamSession{},
		wsPower:    NewWSHub(opts.MaxIterCap + 2),
		maxIterCap: opts.MaxIterCap,
	}

	// Numerical backend
	s.mux.HandleFunc("/transform", s.handleTransform)
	s.mux.HandleFunc("/power-method", s.handlePowerMethod)
	s.mux.HandleFunc("/pca", s.handlePCA)

	// API
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.HandleFunc("/api/insight", s.handleInsight)
	s.mux.HandleFunc("/api/upload/dataset", s.handleUploadDataset)
	s.mux.HandleFunc("/api/datasets", s.handleDataset)
	s.mux.HandleFunc("/api/datasets/pca", s.handleDatasetPCA)
	s.mux.HandleFunc("/api/power-method/stream", s.handleStreamStart)
	s.mux.HandleFunc("/api/power-method/stop", s.handleStreamStop)

	// WS
	s.mux.HandleFunc("/ws/power-method", s.handleWSPower)

	if opts.WebDir != "" {
		fs := http.FileServer(http.Dir(opts.WebDir))
		s.mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Avoid stale UI/assets after updates.
			p := r.URL.Path
			if p == "/" ||
				strings.HasPrefix(p, "/assets/") ||
				strings.HasSuffix(p, ".html") ||
				strings.HasSuffix(p, ".js") ||
				strings.HasSuffix(p, ".css") {
				w.Header().Set("Cache-Control", "no-store")
			}
			fs.ServeHTTP(w, r)
		}))
	}

	return s
}

func (s *Server) Handler() http.Handler { return s.mux }

// Close cancels any running stream job and stops the cache janitor.
func (s *Server) Close() {
	s.stream.Stop()
	s.cache.Stop()
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) readJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	b, err := io.ReadAll(io.LimitReader(r.Body, 2<<20))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// writeError logs the failure and writes the APIError envelope with the
// status matching err.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	if status == 0 {
		status = statusFor(err)
	}
	log.Printf("%s %s: %d %v", r.Method, r.URL.Path, status, err)
	s.writeJSON(w, status, APIError{Error: err.Error()})
}

// allow writes 405 unless r uses method.
func (s *Server) allow(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	s.writeJSON(w, http.StatusMethodNotAllowed, APIError{Error: "method not allowed"})
	return false
}

// statusFor maps package sentinels to HTTP statuses: bad input is 400,
// numerically impossible requests are 422.
func statusFor(err error) int {
	switch {
	case errors.Is(err, matrix.ErrEmpty),
		errors.Is(err, matrix.ErrRagged),
		errors.Is(err, matrix.ErrNonSquare),
		errors.Is(err, matrix.ErrOrder),
		errors.Is(err, matrix.ErrDimensionMismatch),
		errors.Is(err, matrix.ErrNotFinite),
		errors.Is(err, eigen.ErrMaxIter),
		errors.Is(err, eigen.ErrTol),
		errors.Is(err, eigen.ErrInitialVector),
		errors.Is(err, pca.ErrEmptyData),
		errors.Is(err, pca.ErrRagged),
		errors.Is(err, pca.ErrNotFinite),
		errors.Is(err, transform.ErrPointSet),
		errors.Is(err, file.ErrNoRows),
		errors.Is(err, file.ErrRagged),
		errors.Is(err, ErrIterCap):
		return http.StatusBadRequest
	case errors.Is(err, matrix.ErrZeroVector),
		errors.Is(err, matrix.ErrSingular),
		errors.Is(err, eigen.ErrFactorize),
		errors.Is(err, pca.ErrFactorize):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !s.allow(w, r, http.MethodGet) {
		return
	}
	s.writeJSON(w, 200, HealthResponse{
		OK:        true,
		Timestamp: time.Now(),
		Streaming: s.stream.Active(),
		Datasets:  s.store.Len(),
	})
}

func (s *Server) handleTransform(w http.ResponseWriter, r *http.Request) {
	if !s.allow(w, r, http.MethodPost) {
		return
	}
	var req models.TransformRequest
	if err := s.readJSON(r, &req); err != nil {
		s.writeError(w, r, 400, err)
		return
	}
	points, err := matrix.FromRows(req.Matrix)
	if err != nil {
		s.writeError(w, r, 0, err)
		return
	}
	out, err := transform.RotateTranslate(points, req.Rotation, req.Translation)
	if err != nil {
		s.writeError(w, r, 0, err)
		return
	}
	s.writeJSON(w, 200, models.TransformResponse{Transformed: out.Values})
}

// powerInput validates a power-method request and returns the square
// matrix, the solver options and the reference dominant eigenvalue.
func (s *Server) powerInput(req *models.PowerMethodRequest) (*matrix.Matrix, eigen.Options, float64, error) {
	m, err := matrix.Square(req.Matrix)
	if err != nil {
		return nil, eigen.Options{}, 0, err
	}
	o := req.Options()
	if err := eigen.Validate(m, o); err != nil {
		return nil, o, 0, err
	}
	if o.MaxIter > s.maxIterCap {
		return nil, o, 0, fmt.Errorf("%w (%d > %d)", ErrIterCap, o.MaxIter, s.maxIterCap)
	}
	trueMax, err := eigen.DominantEigenvalue(m)
	if err != nil {
		return nil, o, 0, err
	}
	return m, o, trueMax, nil
}

func (s *Server) handlePowerMethod(w http.ResponseWriter, r *http.Request) {
	if !s.allow(w, r, http.MethodPost) {
		return
	}
	var req models.PowerMethodRequest
	if err := s.readJSON(r, &req); err != nil {
		s.writeError(w, r, 400, err)
		return
	}
	m, o, trueMax, err := s.powerInput(&req)
	if err != nil {
		s.writeError(w, r, 0, err)
		return
	}
	records, err := eigen.Iterate(r.Context(), m, o, nil)
	if err != nil {
		s.writeError(w, r, 0, err)
		return
	}
	s.writeJSON(w, 200, models.NewPowerMethodResponse(records, trueMax))
}

func (s *Server) handlePCA(w http.ResponseWriter, r *http.Request) {
	if !s.allow(w, r, http.MethodPost) {
		return
	}
	var req models.PCARequest
	if err := s.readJSON(r, &req); err != nil {
		s.writeError(w, r, 400, err)
		return
	}
	if _, _, err := pca.Validate(req.Matrix); err != nil {
		s.writeError(w, r, 0, err)
		return
	}
	res, _, err := s.cache.Decompose(datasetKey(req.Matrix), req.Matrix)
	if err != nil {
		s.writeError(w, r, 0, err)
		return
	}
	s.writeJSON(w, 200, res)
}

func (s *Server) handleInsight(w http.ResponseWriter, r *http.Request) {
	if !s.allow(w, r, http.MethodPost) {
		return
	}
	var req models.InsightRequest
	if err := s.readJSON(r, &req); err != nil {
		s.writeError(w, r, 400, err)
		return
	}
	m, err := matrix.FromRows(req.Matrix)
	if err != nil {
		s.writeError(w, r, 0, err)
		return
	}
	rep, err := insight.Analyze(m)
	if err != nil {
		s.writeError(w, r, 0, err)
		return
	}
	s.writeJSON(w, 200, rep)
}

func (s *Server) handleUploadDataset(w http.ResponseWriter, r *http.Request) {
	if !s.allow(w, r, http.MethodPost) {
		return
	}
	f, hdr, err := fileFromMultipart(r, "file")
	if err != nil {
		s.writeError(w, r, 400, err)
		return
	}
	defer f.Close()
	rows, err := file.ParseCSV(io.LimitReader(f, 4<<20))
	if err != nil {
		s.writeError(w, r, 0, err)
		return
	}
	origName := ""
	if hdr != nil {
		origName = hdr.Filename
	}
	rec, err := s.store.Put(rows, origName)
	if err != nil {
		s.writeError(w, r, 500, err)
		return
	}
	s.writeJSON(w, 200, models.DatasetUploadResponse{DatasetID: rec.ID, Rows: len(rec.Rows), Cols: rec.Cols()})
}

func fileFromMultipart(r *http.Request, field string) (multipart.File, *multipart.FileHeader, error) {
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		return nil, nil, err
	}
	f, hdr, err := r.FormFile(field)
	if err != nil {
		return nil, nil, err
	}
	return f, hdr, nil
}

func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	if !s.allow(w, r, http.MethodGet) {
		return
	}
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		s.writeError(w, r, 400, errors.New("missing id"))
		return
	}
	rec, ok := s.store.Get(id)
	if !ok {
		s.writeError(w, r, 404, errors.New("datasetId not found (upload a dataset first)"))
		return
	}
	s.writeJSON(w, 200, rec.Model())
}

func (s *Server) handleDatasetPCA(w http.ResponseWriter, r *http.Request) {
	if !s.allow(w, r, http.MethodPost) {
		return
	}
	var req models.DatasetPCARequest
	if err := s.readJSON(r, &req); err != nil {
		s.writeError(w, r, 400, err)
		return
	}
	rec, ok := s.store.Get(req.DatasetID)
	if !ok {
		s.writeError(w, r, 404, errors.New("datasetId not found (upload a dataset first)"))
		return
	}
	res, _, err := s.cache.Decompose(rec.Key, rec.Rows)
	if err != nil {
		s.writeError(w, r, 0, err)
		return
	}
	s.writeJSON(w, 200, res)
}
