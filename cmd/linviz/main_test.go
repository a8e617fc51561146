package main

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/CK6170/Linviz-go/file"
	"github.com/CK6170/Linviz-go/internal/server"
	"github.com/CK6170/Linviz-go/pca"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestRunUsage(t *testing.T) {
	ctx := context.Background()
	require.ErrorIs(t, run(ctx, nil), errUsage)
	require.ErrorIs(t, run(ctx, []string{"nope"}), errUsage)
	require.NoError(t, run(ctx, []string{"--version"}))
	require.Error(t, run(ctx, []string{"insight"}))
}

func TestRunInsight(t *testing.T) {
	in := writeFile(t, "m.json", "[[2,0],[0,3]]")
	out := filepath.Join(t.TempDir(), "r.json")
	require.NoError(t, run(context.Background(), []string{"insight", "-latex", "-out", out, in}))
	var rep map[string]any
	require.NoError(t, file.LoadJSON(out, &rep))
	require.Equal(t, "Diagonal", rep["kind"])
	require.Equal(t, 6.0, rep["determinant"])

	bad := writeFile(t, "bad.json", "[[1,2,3],[4,5,6]]")
	require.Error(t, run(context.Background(), []string{"insight", bad}))
}

func TestRunPowerLocalAndRemote(t *testing.T) {
	in := writeFile(t, "m.csv", "2,1\n1,3\n")
	out := filepath.Join(t.TempDir(), "p.json")
	require.NoError(t, run(context.Background(), []string{"power", "-backend", "", "-max-iter", "40", "-out", out, in}))
	_, err := os.Stat(out)
	require.NoError(t, err)

	s := server.New(server.Options{})
	ts := httptest.NewServer(s.Handler())
	defer func() {
		ts.Close()
		s.Close()
	}()
	require.NoError(t, run(context.Background(), []string{"power", "-backend", ts.URL, in}))
	require.Error(t, run(context.Background(), []string{"power", "-backend", "", "-max-iter", "-1", in}))
}

func TestRunPowerLiveAndHistory(t *testing.T) {
	in := writeFile(t, "m.json", "[[2,1],[1,3]]")
	hist := filepath.Join(t.TempDir(), "history.txt")
	for i := 0; i < 2; i++ {
		require.NoError(t, run(context.Background(), []string{"power", "-backend", "", "-live", "-history", hist, in}))
	}
	b, err := os.ReadFile(hist)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	require.Len(t, lines, 2)
	require.Contains(t, lines[0], "m.json")
	require.Contains(t, lines[0], "reference=3.6180339887")

	require.ErrorIs(t, run(context.Background(), []string{"power", "-backend", "http://127.0.0.1:1", "-live", in}), errLiveRemote)
}

func TestRunPCA(t *testing.T) {
	in := writeFile(t, "d.csv", "x,y,z\n2.5,2.4,0.5\n0.5,0.7,1.9\n2.2,2.9,0.1\n1.9,2.2,1.4\n")
	out := filepath.Join(t.TempDir(), "v.json")
	require.NoError(t, run(context.Background(), []string{"pca", "-backend", "", "-k", "3", "-out", out, in}))
	var v pca.View
	require.NoError(t, file.LoadJSON(out, &v))
	require.Equal(t, 3, v.Selected)
	require.True(t, v.Eligibility.Plot3D)

	require.Error(t, run(context.Background(), []string{"pca", "-backend", "", "-k", "4", in}))
}

func TestRunTransformAndGrid(t *testing.T) {
	in := writeFile(t, "p.csv", "1 0 0\n0 1 0\n")
	out := filepath.Join(t.TempDir(), "t.json")
	require.NoError(t, run(context.Background(), []string{"transform", "-backend", "", "-rz", "90", "-tx", "1", "-out", out, in}))
	var pts [][]float64
	require.NoError(t, file.LoadJSON(out, &pts))
	require.InDeltaSlice(t, []float64{1, 1, 0}, pts[0], 1e-12)

	require.NoError(t, run(context.Background(), []string{"grid", "-unit", "25"}))
	require.Error(t, run(context.Background(), []string{"grid", "extra"}))
}
