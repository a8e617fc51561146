package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/CK6170/Linviz-go/eigen"
	"github.com/CK6170/Linviz-go/file"
	"github.com/CK6170/Linviz-go/grid"
	"github.com/CK6170/Linviz-go/insight"
	"github.com/CK6170/Linviz-go/matrix"
	"github.com/CK6170/Linviz-go/session"
	"github.com/CK6170/Linviz-go/transform"
	"github.com/CK6170/Linviz-go/ui"
	"github.com/CK6170/Linviz-go/viewport"
)

func runInsight(args []string) error {
	fs := flag.NewFlagSet("insight", flag.ContinueOnError)
	out := fs.String("out", "", "write the report as JSON to this file")
	latex := fs.Bool("latex", false, "also print the report as LaTeX")
	files, err := parse(fs, args, 1)
	if err != nil {
		return err
	}
	m, err := file.LoadMatrix(files[0])
	if err != nil {
		return err
	}
	rep, err := insight.Analyze(m)
	if err != nil {
		return err
	}
	ui.PrintMatrix(m, files[0])
	fmt.Println(ui.FormatReport(rep))
	if *latex {
		fmt.Print(ui.ReportLaTeX(m, rep))
	}
	if *out != "" {
		return file.SaveJSON(*out, rep)
	}
	return nil
}

var errLiveRemote = errors.New("power: -live needs local computation; drop -backend")

// powerReport is what `power -out` writes.
type powerReport struct {
	Insight *insight.Report      `json:"insight"`
	Result  *session.EigenResult `json:"result"`
}

func runPower(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("power", flag.ContinueOnError)
	var c common
	c.register(fs)
	maxIter := fs.Int("max-iter", eigen.DefaultMaxIter, "maximum number of iterations")
	tol := fs.Float64("tol", eigen.DefaultTol, "stop when successive eigenvalues differ by less than this")
	live := fs.Bool("live", false, "print every iterate as it is computed (local only)")
	history := fs.String("history", "", "append a one-line summary of the run to this file")
	files, err := parse(fs, args, 1)
	if err != nil {
		return err
	}
	m, err := file.LoadMatrix(files[0])
	if err != nil {
		return err
	}
	if *live {
		if c.remote() {
			return errLiveRemote
		}
		var prev *eigen.Record
		c.progress = func(r eigen.Record) {
			if st, err := eigen.Step(prev, r, nil); err == nil {
				ui.PrintIterationLine(st)
			}
			prev = &r
		}
	}

	solver := session.NewEigenSolver(c.Backend())
	ticket, err := solver.Prepare(m, eigen.Options{MaxIter: *maxIter, Tol: *tol})
	if err != nil {
		return err
	}

	// The insight report is local and independent of the solve.
	var rep *insight.Report
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rep, err = insight.Analyze(m)
		return err
	})
	g.Go(func() error {
		out := solver.Run(gctx, ticket)
		solver.Apply(out)
		return out.Err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	snap := solver.Snapshot()
	if !snap.HasValue {
		return errors.New(snap.Err)
	}
	res := snap.Value
	if *live {
		fmt.Println()
	}
	ui.PrintMatrix(m, files[0])
	fmt.Println(ui.FormatReport(rep))
	fmt.Print(ui.FormatConvergence(res.Stats))
	ui.Greenf("dominant eigenvalue %.10f after %d iterations (reference %.10f)\n",
		res.Records[len(res.Records)-1].Eigenvalue, len(res.Records), res.TrueMaxEigenvalue)
	if res.Warning != "" {
		ui.Warningf("%s\n", res.Warning)
	}
	if *history != "" {
		last := res.Records[len(res.Records)-1]
		file.AppendToFile(*history, fmt.Sprintf("%s\t%s\tlambda=%.10f\titerations=%d\treference=%.10f",
			time.Now().Format(time.RFC3339), files[0], last.Eigenvalue, len(res.Records), res.TrueMaxEigenvalue))
	}
	if c.out != "" {
		return file.SaveJSON(c.out, powerReport{Insight: rep, Result: res})
	}
	return nil
}

func runPCA(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("pca", flag.ContinueOnError)
	var c common
	c.register(fs)
	k := fs.Int("k", 2, "number of leading components to keep")
	files, err := parse(fs, args, 1)
	if err != nil {
		return err
	}
	data, err := file.LoadCSV(files[0])
	if err != nil {
		return err
	}
	p := session.NewPCAPipeline(c.Backend())
	out, err := p.Submit(ctx, data)
	if err != nil {
		return err
	}
	if out.Err != nil {
		return out.Err
	}
	if err := p.Select(*k); err != nil {
		return err
	}
	view, err := p.View()
	if err != nil {
		return err
	}
	ui.Greenf("%s: %d observations, %d features\n", files[0], len(data), len(data[0]))
	fmt.Println(ui.FormatPCAView(view))
	if c.out != "" {
		return file.SaveJSON(c.out, view)
	}
	return nil
}

func runTransform(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("transform", flag.ContinueOnError)
	var c common
	c.register(fs)
	var rot, trans transform.Vec3
	fs.Float64Var(&rot.X, "rx", 0, "rotation about x in degrees")
	fs.Float64Var(&rot.Y, "ry", 0, "rotation about y in degrees")
	fs.Float64Var(&rot.Z, "rz", 0, "rotation about z in degrees")
	fs.Float64Var(&trans.X, "tx", 0, "translation along x")
	fs.Float64Var(&trans.Y, "ty", 0, "translation along y")
	fs.Float64Var(&trans.Z, "tz", 0, "translation along z")
	files, err := parse(fs, args, 1)
	if err != nil {
		return err
	}
	points, err := file.LoadMatrix(files[0])
	if err != nil {
		return err
	}
	t := session.NewTransformer(c.Backend())
	out, err := t.Submit(ctx, points, rot, trans)
	if err != nil {
		return err
	}
	if out.Err != nil {
		return out.Err
	}
	res, err := matrix.FromRows(out.Value)
	if err != nil {
		return err
	}
	ui.PrintMatrix(res, "transformed")
	if c.out != "" {
		return file.SaveJSON(c.out, out.Value)
	}
	return nil
}

func gridFlags(fs *flag.FlagSet) (unit, width, height *float64) {
	unit = fs.Float64("unit", viewport.DefaultUnit, "pixels per world unit")
	width = fs.Float64("width", 800, "canvas width in pixels")
	height = fs.Float64("height", 480, "canvas height in pixels")
	return
}

func runGrid(args []string) error {
	fs := flag.NewFlagSet("grid", flag.ContinueOnError)
	unit, width, height := gridFlags(fs)
	if _, err := parse(fs, args, 0); err != nil {
		return err
	}
	vp := viewport.New(*width, *height)
	vp.SetUnit(*unit)
	step := grid.StepSizes(vp.Unit, grid.DefaultPixelsPerMajor)
	fmt.Println(ui.FormatGrid(vp, int(*width/10), int(*height/20)))
	b := vp.Bounds()
	ui.Greenf("unit %g  major %s  minor %s  x [%s, %s]  y [%s, %s]\n", vp.Unit,
		grid.FormatLabel(step.Major), grid.FormatLabel(step.Minor),
		grid.FormatLabel(b.MinX), grid.FormatLabel(b.MaxX), grid.FormatLabel(b.MinY), grid.FormatLabel(b.MaxY))
	return nil
}

// panStep is how far one key press pans, in pixels.
const panStep = 40

func runView(args []string) error {
	fs := flag.NewFlagSet("view", flag.ContinueOnError)
	unit, width, height := gridFlags(fs)
	if _, err := parse(fs, args, 0); err != nil {
		return err
	}
	s, err := session.New(session.Local{}, 2, *width, *height)
	if err != nil {
		return err
	}
	s.SetUnit(*unit)
	centre := viewport.Point{X: *width / 2, Y: *height / 2}
	ui.DrainKeys()
	for {
		vp := s.Viewport()
		ui.ClearScreen()
		fmt.Println(ui.FormatGrid(&vp, int(vp.Width/10), int(vp.Height/20)))
		fmt.Printf("unit %g  offset (%g, %g)\n", vp.Unit, vp.Offset.X, vp.Offset.Y)
		switch ui.NextViewAction() {
		case ui.ActionPanLeft:
			s.Pan(panStep, 0)
		case ui.ActionPanRight:
			s.Pan(-panStep, 0)
		case ui.ActionPanUp:
			s.Pan(0, panStep)
		case ui.ActionPanDown:
			s.Pan(0, -panStep)
		case ui.ActionZoomIn:
			s.ZoomAt(1.25, centre)
		case ui.ActionZoomOut:
			s.ZoomAt(0.8, centre)
		case ui.ActionReset:
			s.ResetView()
		case ui.ActionQuit:
			return nil
		}
	}
}
