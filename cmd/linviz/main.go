// Command linviz runs the visualizer core from a terminal.
//
// Usage:
//
//	linviz insight   [-latex] [-out report.json] <matrix.json|csv>
//	linviz power     [-backend URL] [-max-iter N] [-tol T] [-live] [-history log.txt] [-out f.json] <matrix>
//	linviz pca       [-backend URL] [-k N] [-out f.json] <data.csv>
//	linviz transform [-backend URL] [-rx deg -ry deg -rz deg] [-tx -ty -tz] <points>
//	linviz grid      [-unit U] [-width W] [-height H]
//	linviz view      [-unit U]
//
// Without -backend (or LINVIZ_BACKEND) power, pca and transform compute in
// process.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/CK6170/Linviz-go/eigen"
	"github.com/CK6170/Linviz-go/internal/client"
	"github.com/CK6170/Linviz-go/session"
	"github.com/CK6170/Linviz-go/ui"
)

// App version variables. Set these at build time with -ldflags if desired.
var (
	AppVersion = "dev"
	AppBuild   = "local"
)

var errUsage = errors.New("usage: linviz <insight|power|pca|transform|grid|view> [flags] [file]")

func main() {
	log.SetFlags(0)
	log.SetOutput(ui.NewRedWriter(os.Stderr))

	if err := run(context.Background(), os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		ui.Errorf("%v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "-v", "--version", "version":
		fmt.Printf("%s [build %s]\n", AppVersion, AppBuild)
		return nil
	case "insight":
		return runInsight(args[1:])
	case "power":
		return runPower(ctx, args[1:])
	case "pca":
		return runPCA(ctx, args[1:])
	case "transform":
		return runTransform(ctx, args[1:])
	case "grid":
		return runGrid(args[1:])
	case "view":
		return runView(args[1:])
	default:
		return fmt.Errorf("unknown command %q: %w", args[0], errUsage)
	}
}

// common holds the flags shared by the backend-driven subcommands.
type common struct {
	backend string
	out     string
	debug   bool
	timeout time.Duration

	// progress is handed to the in-process backend.
	progress func(eigen.Record)
}

func (c *common) register(fs *flag.FlagSet) {
	fs.StringVar(&c.backend, "backend", os.Getenv("LINVIZ_BACKEND"), "backend base URL; empty computes locally")
	fs.StringVar(&c.out, "out", "", "write the result as JSON to this file")
	fs.BoolVar(&c.debug, "debug", false, "log backend retries")
	fs.DurationVar(&c.timeout, "timeout", client.DefaultTimeout, "per-attempt HTTP timeout")
}

func (c *common) remote() bool { return strings.TrimSpace(c.backend) != "" }

// Backend returns the HTTP client for -backend, or the in-process backend.
func (c *common) Backend() session.Backend {
	if !c.remote() {
		ui.Debugf(c.debug, "computing locally\n")
		return session.Local{Progress: c.progress}
	}
	cl := client.New(c.backend,
		client.WithHTTPClient(&http.Client{Timeout: c.timeout}),
		client.WithDebug(c.debug),
	)
	ui.Debugf(c.debug, "backend %s\n", cl.BaseURL())
	return cl
}

// parse parses fs and returns its single positional argument.
func parse(fs *flag.FlagSet, args []string, want int) ([]string, error) {
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != want {
		return nil, fmt.Errorf("%s: expected %d file argument(s), got %d", fs.Name(), want, fs.NArg())
	}
	return fs.Args(), nil
}
