package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spendwatch/awardfeed/internal/api"
)

// newServeCmd creates the 'serve' subcommand: the pipeline behind a small
// HTTP surface with health probes, Prometheus metrics, the latest result,
// and an on-demand refresh trigger.
func newServeCmd() *cobra.Command {
	var refreshOnStart bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve award data over HTTP",
		Long: `Starts an HTTP server exposing /healthz, /readyz, /metrics,
GET /v1/awards for the latest filtered result, and POST /v1/refresh to
trigger a new pipeline run.`,

		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := resolveRuntime(cmd.Context())
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			orch := buildOrchestrator(rt.Cfg, false, rt.Logger)
			server := api.NewServer(orch, rt.Logger.Named("api"))

			srv := &http.Server{
				Addr:              fmt.Sprintf(":%d", rt.Cfg.Server.Port),
				Handler:           server.Handler(),
				ReadHeaderTimeout: 5 * time.Second,
			}

			if refreshOnStart {
				server.TriggerRefresh(ctx)
			}

			errCh := make(chan error, 1)
			go func() {
				rt.Logger.Info("http server started", zap.Int("port", rt.Cfg.Server.Port))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			rt.Logger.Info("shutdown initiated")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("server shutdown: %w", err)
			}
			rt.Logger.Info("shutdown complete")
			return nil
		},
	}

	cmd.Flags().BoolVar(&refreshOnStart, "refresh-on-start", false, "trigger a pipeline run as soon as the server starts")
	return cmd
}
