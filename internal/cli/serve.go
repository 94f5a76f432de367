package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/stackpin/pkg/config"
	perrors "github.com/matzehuels/stackpin/pkg/errors"
	"github.com/matzehuels/stackpin/pkg/observability"
	"github.com/matzehuels/stackpin/pkg/pipeline"
	"github.com/matzehuels/stackpin/pkg/publish"
	"github.com/matzehuels/stackpin/pkg/versions"
)

// shutdownTimeout bounds graceful shutdown of the HTTP server.
const shutdownTimeout = 10 * time.Second

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		configPath string
		addr       string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve version resolution over HTTP",
		Long: `Serve version resolution over HTTP.

Endpoints:
  GET /v1/versions  resolve and return the outcome; query parameters
                    (timeout, package_version, tool_version, ...) override
                    the server configuration for that request
  GET /healthz      liveness
  GET /metrics      Prometheus metrics

A failed resolution returns 502 with the failure outcome. Invalid query
parameters return 400.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Serve.Addr = addr
			}
			return c.runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "config file (.toml, .yaml)")
	cmd.Flags().StringVar(&addr, "addr", config.DefaultAddr, "listen address")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg config.Config) error {
	logger := loggerFromContext(ctx)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(reg)
	hooks := newLogHooks(logger)
	observability.SetHTTPHooks(observability.HTTPFanout{metrics, hooks})
	observability.SetResolveHooks(observability.ResolveFanout{metrics, hooks})

	sinks, err := publish.OpenAll(ctx, cfg.Publish)
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	defer sinks.Close()

	s := &server{
		cfg:    cfg,
		runner: c.newRunner(logger),
		sinks:  sinks,
		logger: logger,
	}
	srv := &http.Server{
		Addr:              cfg.Serve.Addr,
		Handler:           s.routes(reg),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	printInfo(c.stderr, "Listening on %s", StyleValue.Render(cfg.Serve.Addr))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// server answers resolution requests with a shared runner.
type server struct {
	cfg    config.Config
	runner *pipeline.Runner
	sinks  publish.Sink
	logger *log.Logger
}

func (s *server) routes(reg *prometheus.Registry) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok\n"))
	})
	r.Get("/v1/versions", s.handleVersions)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	return r
}

func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("served request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"request_id", middleware.GetReqID(r.Context()),
			"duration", time.Since(start).Round(time.Millisecond))
	})
}

func (s *server) handleVersions(w http.ResponseWriter, r *http.Request) {
	cfg := s.cfg
	queryTaskArgs(r.URL.Query()).apply(&cfg)

	format, err := publish.ParseFormat(cfg.Format)
	if err == nil && format != publish.FormatJSON && format != publish.FormatYAML {
		err = perrors.New(perrors.ErrCodeUnsupported, "format %q is not served over HTTP (use json or yaml)", format)
	}
	if err != nil {
		writeOutcome(w, publish.FormatJSON, http.StatusBadRequest,
			pipeline.Outcome{Failed: true, Msg: perrors.UserMessage(err)})
		return
	}

	result, err := s.runner.Execute(r.Context(), cfg.Options())
	out := pipeline.NewOutcome(result, err)

	status := http.StatusOK
	var re *versions.ResolutionError
	switch {
	case err == nil:
	case errors.As(err, &re):
		status = http.StatusBadGateway
	case r.Context().Err() != nil:
		return
	case perrors.GetCode(err) != "":
		status = http.StatusBadRequest
		out.Msg = perrors.UserMessage(err)
	default:
		status = http.StatusInternalServerError
	}

	if err == nil && s.sinks != nil {
		if perr := s.sinks.Publish(r.Context(), result.Record()); perr != nil {
			s.logger.Error("publish failed", "run", result.RunID, "err", perr)
		}
	}
	writeOutcome(w, format, status, out)
}

func writeOutcome(w http.ResponseWriter, format publish.Format, status int, out pipeline.Outcome) {
	var (
		data []byte
		err  error
	)
	if format == publish.FormatYAML {
		w.Header().Set("Content-Type", "application/yaml")
		data, err = yaml.Marshal(out)
	} else {
		w.Header().Set("Content-Type", "application/json")
		data, err = json.Marshal(out)
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(status)
	w.Write(data)
}
