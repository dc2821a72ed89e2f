package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/aretw0/quiver"
	"github.com/aretw0/quiver/internal/cli"
	httpAdapter "github.com/aretw0/quiver/pkg/adapters/http"
	"github.com/aretw0/quiver/pkg/domain"
	"github.com/aretw0/quiver/pkg/observability"
	"github.com/aretw0/quiver/pkg/persistence/middleware"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP editing server",
	Long: `Serves editing sessions over HTTP. Each session is an editor driven by
POSTed events; changes stream back over WebSocket or Server-Sent Events.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, _, err := setup(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}

		var (
			handlerOpts []httpAdapter.Option
			editorOpts  []quiver.Option
			storeMws    []middleware.Middleware
		)
		handlerOpts = append(handlerOpts,
			httpAdapter.WithLogger(logger),
			httpAdapter.WithAllowedOrigins(cfg.Server.AllowedOrigins...),
		)
		if cfg.Server.Metrics {
			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			metrics := observability.NewMetrics(reg)
			handlerOpts = append(handlerOpts, httpAdapter.WithMetrics(metrics, promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
			editorOpts = append(editorOpts, quiver.WithMutationHooks(metrics.Hooks(logger, domain.MutationHooks{})))
			storeMws = append(storeMws, middleware.WithMetrics(middleware.NewStoreMetrics(reg)))
		}

		stack, err := cli.OpenStack(cfg, logger, storeMws...)
		if err != nil {
			return err
		}
		defer stack.Close()

		mgr := stack.NewManager(cfg, logger, editorOpts...)
		srv := &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           httpAdapter.NewHandler(mgr, handlerOpts...),
			ReadHeaderTimeout: 10 * time.Second,
		}

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("Starting Quiver Server", "addr", srv.Addr, "store", cfg.Store.Driver)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(shutdown)

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			logger.Info("Start shutdown", "signal", sig.String())

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Warn("Graceful shutdown did not complete", "timeout", 5*time.Second, "error", err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("error killing server: %w", err)
				}
			}
			logger.Info("Quiver Server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Address to listen on (overrides server.addr)")
}
