package cli

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/nsanches/depcheck/pkg/config"
	pkgerrors "github.com/nsanches/depcheck/pkg/errors"
	"github.com/nsanches/depcheck/pkg/scan"
)

// serveShutdownTimeout bounds graceful shutdown after the context is cancelled.
const serveShutdownTimeout = 5 * time.Second

// newServeCmd creates the serve command, which exposes scans over HTTP.
func newServeCmd(configPath *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve dependency scans over HTTP",
		Long: `Serve dependency scans over HTTP.

Endpoints:
  GET /healthz           liveness probe
  GET /api/scan?path=DIR scan DIR and return the JSON report`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			return runServer(c.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")

	return cmd
}

// runServer starts the HTTP server and shuts it down when ctx is cancelled.
func runServer(ctx context.Context, cfg config.Config) error {
	logger := loggerFromContext(ctx)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: newRouter(ctx, cfg),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Listening on %s", cfg.Server.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), serveShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// newRouter builds the chi router with logging and panic recovery.
func newRouter(ctx context.Context, cfg config.Config) http.Handler {
	logger := loggerFromContext(ctx)
	scanner := newScanner(ctx, cfg, false)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))

	r.Get("/healthz", handleHealthz)
	r.Get("/api/scan", handleScan(scanner))

	return r
}

// requestLogger logs one line per request with method, path and duration.
func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, req)
			logger.Debug("request",
				"method", req.Method,
				"path", req.URL.Path,
				"duration", time.Since(start).Round(time.Millisecond),
			)
		})
	}
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScan runs a scan of the directory named by the path query parameter.
// The path is validated here; the scanner would degrade a bad path to an
// empty report, which for an API caller should read as a 400 instead.
func handleScan(scanner *scan.Scanner) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		dir := req.URL.Query().Get("path")
		if dir == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing path parameter"})
			return
		}
		if err := checkDir(dir); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": pkgerrors.UserMessage(err)})
			return
		}

		writeJSON(w, http.StatusOK, scanner.Scan(req.Context(), dir))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
