// Command `linviz-server` runs the linviz numerical backend locally.
//
// It exposes the JSON endpoints used by the visualizer (/transform,
// /power-method, /pca and the /api/* extras) plus the power-method
// WebSocket stream, and optionally serves a built frontend from `-web`.
//
// Flags:
//
//	-addr:         TCP address to listen on (default 127.0.0.1:8080)
//	-web:          path to a web root containing index.html (optional)
//	-open:         open the UI URL in your default browser at startup
//	-cache-ttl:    how long PCA results stay cached (default 10m)
//	-max-iter-cap: largest max_iter a request may ask for (default 1000)
//
// Env:
//
//	LINVIZ_ADDR overrides the default listen address.
//	LINVIZ_NO_OPEN=1 disables browser auto-open even when -open is set.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/CK6170/Linviz-go/internal/server"
	"github.com/CK6170/Linviz-go/ui"
)

const shutdownTimeout = 5 * time.Second

func main() {
	var (
		addr       = flag.String("addr", envOr("LINVIZ_ADDR", "127.0.0.1:8080"), "http listen address")
		web        = flag.String("web", "", "path to web root (index.html); empty serves the API only")
		open       = flag.Bool("open", false, "open the web UI in your default browser on startup")
		cacheTTL   = flag.Duration("cache-ttl", server.DefaultCacheTTL, "how long PCA decompositions stay cached")
		maxIterCap = flag.Int("max-iter-cap", server.DefaultMaxIterCap, "largest max_iter accepted by /power-method")
	)
	flag.Parse()

	webDir := ""
	if *web != "" {
		var err error
		if webDir, err = filepath.Abs(*web); err != nil {
			log.Fatalf("Failed to resolve web directory: %v", err)
		}
		if st, err := os.Stat(webDir); err != nil || !st.IsDir() {
			log.Fatalf("Web directory does not exist: %s", webDir)
		}
	}

	s := server.New(server.Options{WebDir: webDir, CacheTTL: *cacheTTL, MaxIterCap: *maxIterCap})
	defer s.Close()

	// Bind early so we fail fast if the port is in use.
	ln, err := net.Listen("tcp", *addr)
	if err != nil {
		log.Fatalf("Failed to listen on %s: %v", *addr, err)
	}

	uiURL := makeUIURL(*addr)
	ui.Greenf("linviz backend on http://%s\n", ln.Addr())
	if webDir != "" {
		log.Printf("UI:        %s (from %s)", uiURL, webDir)
		if *open && os.Getenv("LINVIZ_NO_OPEN") == "" {
			if err := openBrowser(uiURL); err != nil {
				ui.Warningf("WARN: failed to open browser: %v\n", err)
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, ln, s.Handler()); err != nil {
		log.Fatalf("server: %v", err)
	}
	log.Printf("server stopped")
}

// serve runs the HTTP server on ln until ctx is cancelled, then shuts it
// down gracefully.
func serve(ctx context.Context, ln net.Listener, h http.Handler) error {
	srv := &http.Server{Handler: h, ReadHeaderTimeout: 10 * time.Second}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// makeUIURL turns a listen address (host:port) into a browser-friendly URL.
//
// If the server is bound to 0.0.0.0 / ::, the returned URL uses 127.0.0.1
// because wildcard addresses are not reachable targets in browsers.
func makeUIURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Sprintf("http://%s/", strings.TrimSpace(addr))
	}
	if host == "" || host == "0.0.0.0" || host == "::" || host == "[::]" {
		host = "127.0.0.1"
	}
	return fmt.Sprintf("http://%s/", net.JoinHostPort(host, port))
}

// openBrowser tries to open the given URL in the OS default browser without
// blocking.
func openBrowser(url string) error {
	switch runtime.GOOS {
	case "windows":
		// `start` is a cmd.exe built-in. The empty title argument prevents quoting issues.
		return exec.Command("cmd", "/c", "start", "", url).Start()
	case "darwin":
		return exec.Command("open", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}
