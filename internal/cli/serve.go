package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"pinmap/internal/audit"
	"pinmap/internal/auth"
	"pinmap/internal/mapping/application"
	"pinmap/internal/mapping/infrastructure/postgres"
	gridhttp "pinmap/internal/mapping/interfaces/http"
	"pinmap/internal/observability/metrics"
	"pinmap/internal/platform/logger"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(a *app) *cobra.Command {
	var src sourceFlags
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the grid API and event stream",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			broker := gridhttp.NewSSEBroker()
			s, stop, err := a.openSession(ctx, src, &eventLog{log: a.log, next: broker})
			if err != nil {
				return err
			}
			defer stop()

			exportBackend, err := a.dataBackend(ctx, a.cfg.Export)
			if err != nil {
				return err
			}
			trail, err := a.auditLogger(ctx)
			if err != nil {
				return err
			}
			opts := []gridhttp.HandlerOption{}
			if trail != nil {
				opts = append(opts, gridhttp.WithAudit(trail))
			}
			metrics.Init(a.db, postgres.DefaultSessionsTable, a.log)

			handler, err := a.newRouter(s, broker, exportBackend, opts...)
			if err != nil {
				return err
			}
			server := &http.Server{Addr: a.cfg.Server.Addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}

			errCh := make(chan error, 1)
			go func() {
				a.log.Info("http listening", "addr", a.cfg.Server.Addr, "adapter", s.Name())
				errCh <- server.ListenAndServe()
			}()
			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}
			shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancelShutdown()
			a.log.Info("http shutting down")
			return server.Shutdown(shutdownCtx)
		},
	}
	src.register(cmd)
	return cmd
}

// auditLogger opens the audit trail when a database is configured, whatever the data backends.
func (a *app) auditLogger(ctx context.Context) (audit.Logger, error) {
	if a.cfg.DatabaseURL == "" {
		return nil, nil
	}
	db, err := a.database(ctx)
	if err != nil {
		return nil, err
	}
	repo := audit.NewRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("audit schema: %w", err)
	}
	return repo, nil
}

func (a *app) newRouter(s *application.Session, broker *gridhttp.SSEBroker, export application.DataBackend, opts ...gridhttp.HandlerOption) (http.Handler, error) {
	report := a.reportBackend()
	opts = append([]gridhttp.HandlerOption{
		gridhttp.WithExport(export, report, a.cfg.Export.Dir),
		gridhttp.WithHandlerLogger(a.log),
	}, opts...)
	grid, err := gridhttp.NewHandler(s, opts...)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/api/v1/grid", grid)
	mux.Handle("/api/v1/grid/", grid)
	mux.Handle("/api/v1/grid/stream", gridhttp.NewStreamHandler(broker))
	mux.Handle("/api/v1/notes", grid)
	mux.Handle("/api/v1/export", grid)
	mux.Handle("/api/v1/report.pdf", grid)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	var handler http.Handler = mux
	if a.cfg.Server.JWTSecret != "" {
		policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
		handler = auth.NewMiddleware([]byte(a.cfg.Server.JWTSecret), policy).Wrap(mux)
	} else {
		a.log.Warn("AUTH_JWT_SECRET not set, API is unauthenticated")
	}
	return loggingMiddleware(handler, a.log), nil
}

func loggingMiddleware(next http.Handler, log *logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		log.Info("http", "method", r.Method, "path", r.URL.Path, "status", resp.status, "duration", time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Flush keeps the event stream working through the wrapper.
func (w *statusWriter) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}
