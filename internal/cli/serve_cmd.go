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

	"github.com/alexanderramin/staffplan/internal/httpapi"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.HTTP.Addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, a, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from STAFFPLAN_HTTP_ADDR)")
	return cmd
}

// serve runs the HTTP server until ctx ends, then drains in-flight requests.
func serve(ctx context.Context, a *App, addr string) error {
	logger := a.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           httpapi.NewRouter(a.services(), logger, httpapi.Options{AllowedOrigins: a.HTTP.AllowedOrigins}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.WithField("addr", addr).Info("http_listen")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		logger.Info("http_stopped")
		return nil
	})
	return g.Wait()
}
