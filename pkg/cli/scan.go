package cli

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"github.com/verdicttrace/verdicttrace/pkg/cli/config"
)

func cmdScan() *cli.Command {
	var (
		firestoreCfg config.Firestore
		esCfg        config.Elasticsearch
		geminiCfg    config.Gemini
		notifyCfg    config.Notify
	)

	flags := joinFlags(
		firestoreCfg.Flags(),
		esCfg.Flags(),
		geminiCfg.Flags(),
		notifyCfg.Flags(),
	)

	return &cli.Command{
		Name:  "scan",
		Usage: "Run a single detection scan over recent complaints",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			logger.Info("Starting scan",
				slog.Any("firestore", firestoreCfg),
				slog.Any("elasticsearch", esCfg),
				slog.Any("gemini", geminiCfg),
				slog.Any("notify", notifyCfg),
			)

			scanUC, _, repo, err := buildUseCases(ctx, &firestoreCfg, &esCfg, &geminiCfg, &notifyCfg)
			if err != nil {
				return err
			}
			defer repo.Close()

			summary, err := scanUC.RunScan(ctx)
			if err != nil {
				return goerr.Wrap(err, "scan failed")
			}

			logger.Info("Scan finished",
				slog.Int("evaluated", summary.ClustersEvaluated),
				slog.Int("above_gate", summary.ClustersAboveGate),
				slog.Int("created", summary.CasesCreated),
				slog.Int("updated", summary.CasesUpdated),
			)
			return nil
		},
	}
}
