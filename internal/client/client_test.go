package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/CK6170/Linviz-go/internal/server"
	"github.com/CK6170/Linviz-go/models"
)

func backend(t *testing.T) *Client {
	t.Helper()
	s := server.New(server.Options{})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		s.Close()
	})
	return New(ts.URL, WithRetry(3, time.Millisecond))
}

func TestRoundTrip(t *testing.T) {
	c := backend(t)
	ctx := context.Background()

	require.NoError(t, c.Health(ctx))

	tr, err := c.Transform(ctx, models.TransformRequest{
		Matrix:      [][]float64{{1, 1, 1}},
		Translation: models.Vec3{X: -1},
	})
	require.NoError(t, err)
	require.Equal(t, [][]float64{{0, 1, 1}}, tr.Transformed)

	pm, err := c.PowerMethod(ctx, models.PowerMethodRequest{Matrix: [][]float64{{3, 0}, {0, 1}}})
	require.NoError(t, err)
	require.InDelta(t, 3, pm.TrueMaxEigenvalue, 1e-12)
	require.NotEmpty(t, pm.Eigenvalues)

	res, err := c.PCA(ctx, [][]float64{{0, 0}, {1, 1}, {2, 2}})
	require.NoError(t, err)
	require.InDelta(t, 1, res.ExplainedVarianceRatio[0], 1e-9)

	rep, err := c.Insight(ctx, [][]float64{{2, 0}, {0, 2}})
	require.NoError(t, err)
	require.Equal(t, 4.0, rep.Determinant)
}

func TestStatusErrorIsNotRetriedOrParsed(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("not json at all"))
	}))
	defer ts.Close()

	c := New(ts.URL, WithRetry(3, time.Millisecond))
	_, err := c.PowerMethod(context.Background(), models.PowerMethodRequest{Matrix: [][]float64{{1}}})
	var se *StatusError
	require.ErrorAs(t, err, &se)
	require.Equal(t, 400, se.Code)
	require.EqualValues(t, 1, hits.Load())
}

func TestTransportErrorsAreRetried(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			conn, _, err := w.(http.Hijacker).Hijack()
			if err == nil {
				_ = conn.Close()
			}
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
	}))
	defer ts.Close()

	c := New(ts.URL, WithRetry(3, time.Millisecond))
	require.NoError(t, c.Health(context.Background()))
	require.EqualValues(t, 3, hits.Load())

	hits.Store(-10)
	err := c.Health(context.Background())
	require.Error(t, err)
	var se *StatusError
	require.False(t, errors.As(err, &se))
}

func TestMalformedJSON(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{"vectors": [`))
	}))
	defer ts.Close()

	c := New(ts.URL, WithRetry(3, time.Millisecond))
	_, err := c.PowerMethod(context.Background(), models.PowerMethodRequest{})
	require.ErrorIs(t, err, ErrDecode)
	require.EqualValues(t, 1, hits.Load())
}

func TestInconsistentSeriesRejected(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"vectors":[[1,0]],"eigenvalues":[1,2],"true_max_eigenvalue":2}`))
	}))
	defer ts.Close()

	_, err := New(ts.URL).PowerMethod(context.Background(), models.PowerMethodRequest{})
	require.ErrorIs(t, err, ErrDecode)
}

func TestEmptySeriesRejected(t *testing.T) {
	for _, body := range []string{`null`, `{"vectors":[],"eigenvalues":[],"true_max_eigenvalue":3}`} {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		}))
		_, err := New(ts.URL).PowerMethod(context.Background(), models.PowerMethodRequest{})
		ts.Close()
		require.ErrorIs(t, err, ErrDecode, body)
	}
}

func TestCancelledContext(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := New(ts.URL, WithRetry(3, time.Millisecond)).Health(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
