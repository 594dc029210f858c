package cli

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"github.com/yamori/gleaner/pkg/cli/config"
	"github.com/yamori/gleaner/pkg/infra/feed"
	"github.com/yamori/gleaner/pkg/infra/storage"
	"github.com/yamori/gleaner/pkg/usecase"
)

func cmdCollect(loggerCfg *config.Logger) *cli.Command {
	var (
		feedsCfg     config.Feeds
		collectorCfg config.Collector
	)

	flags := append(feedsCfg.Flags(), collectorCfg.Flags()...)

	return &cli.Command{
		Name:    "collect",
		Aliases: []string{"c"},
		Usage:   "Fetch all configured feeds once and update the weekly archive",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := feedsCfg.Load()
			if err != nil {
				return err
			}

			// The configuration file may route logs to a file; rebuild the
			// logger when it does and no --log-file was given explicitly.
			if cfg.LogFile != "" && loggerCfg.File == "" {
				fileCfg := *loggerCfg
				fileCfg.File = cfg.LogFile
				logger, err := fileCfg.Configure()
				if err != nil {
					return err
				}
				slog.SetDefault(logger)
				ctx = ctxlog.With(ctx, logger)
			}

			logger := ctxlog.From(ctx)
			logger.Info("Starting collect",
				slog.String("config", feedsCfg.Path),
				slog.Int("categories", len(cfg.Categories)),
			)

			fetcher := feed.NewClient(
				feed.WithUserAgent(collectorCfg.UserAgent),
				feed.WithTimeout(collectorCfg.Timeout),
			)
			store := storage.NewJSONStore(cfg.BaseFolder)
			collectUC := usecase.NewCollect(fetcher, store, cfg)

			report, err := collectUC.Collect(ctx)
			if err != nil {
				return goerr.Wrap(err, "collect run failed")
			}

			logger.Info("Collect finished",
				slog.String("run_id", report.RunID),
				slog.String("week", report.Week.String()),
				slog.Int("added", report.TotalAdded()),
				slog.Any("failed_categories", report.FailedCategories()),
			)

			return nil
		},
	}
}
