package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"github.com/yamori/gleaner/pkg/cli/config"
	controller "github.com/yamori/gleaner/pkg/controller/http"
	"github.com/yamori/gleaner/pkg/infra/feed"
	"github.com/yamori/gleaner/pkg/infra/storage"
	"github.com/yamori/gleaner/pkg/usecase"
)

func cmdServe() *cli.Command {
	var (
		serverCfg    config.Server
		feedsCfg     config.Feeds
		collectorCfg config.Collector
	)

	flags := append(serverCfg.Flags(), feedsCfg.Flags()...)
	flags = append(flags, collectorCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			cfg, err := feedsCfg.Load()
			if err != nil {
				return err
			}

			logger.Info("Starting gleaner server",
				slog.String("addr", serverCfg.Addr),
				slog.Int("categories", len(cfg.Categories)),
			)

			fetcher := feed.NewClient(
				feed.WithUserAgent(collectorCfg.UserAgent),
				feed.WithTimeout(collectorCfg.Timeout),
			)
			store := storage.NewJSONStore(cfg.BaseFolder)
			collectUC := usecase.NewCollect(fetcher, store, cfg)

			server, err := controller.NewServer(
				ctx,
				collectUC,
				controller.WithAddr(serverCfg.Addr),
				controller.WithAPIToken(serverCfg.APIToken),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			// Start server in goroutine
			go func() {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("HTTP server error", slog.Any("error", err))
				}
			}()

			// Wait for interrupt signal
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			select {
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
			}

			// Graceful shutdown
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}
