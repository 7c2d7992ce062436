package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vilniuscoffee/coffee-finder/internal/api"
)

var (
	servePort         int
	serveWithSchedule bool
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API (optionally with the weekly fetch schedule)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("serve"); err != nil {
			return err
		}
		if serveWithSchedule {
			if err := cfg.Validate("schedule"); err != nil {
				return err
			}
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		deps := api.Deps{Store: st, AllowedOrigins: cfg.Server.AllowedOrigins}
		if err := cfg.Validate("enrich"); err != nil {
			zap.L().Warn("ai enrichment disabled", zap.Error(err))
		} else {
			en, err := newEnricher(st)
			if err != nil {
				return err
			}
			deps.Enricher = en
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return serveHTTP(gctx, port, api.NewRouter(deps))
		})
		if serveWithSchedule {
			g.Go(func() error {
				return runSchedule(gctx, st)
			})
		}
		return g.Wait()
	},
}

// serveHTTP runs the server until ctx is done, then shuts it down.
func serveHTTP(ctx context.Context, port int, h http.Handler) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		<-ctx.Done()
		zap.L().Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			zap.L().Warn("server shutdown", zap.Error(err))
		}
	}()

	zap.L().Info("starting server", zap.Int("port", port))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return eris.Wrap(err, "server listen")
	}
	return nil
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	serveCmd.Flags().BoolVar(&serveWithSchedule, "with-schedule", false, "also run the weekly fetch schedule")
	rootCmd.AddCommand(serveCmd)
}
