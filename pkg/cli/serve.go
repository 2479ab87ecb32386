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
	"github.com/verdicttrace/verdicttrace/pkg/cli/config"
	controller "github.com/verdicttrace/verdicttrace/pkg/controller/http"
)

func cmdServe() *cli.Command {
	var (
		serverCfg    config.Server
		firestoreCfg config.Firestore
		esCfg        config.Elasticsearch
		geminiCfg    config.Gemini
		notifyCfg    config.Notify
	)

	flags := joinFlags(
		serverCfg.Flags(),
		firestoreCfg.Flags(),
		esCfg.Flags(),
		geminiCfg.Flags(),
		notifyCfg.Flags(),
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Start HTTP server",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			logger.Info("Starting verdicttrace server",
				slog.String("addr", serverCfg.Addr),
				slog.Any("firestore", firestoreCfg),
				slog.Any("elasticsearch", esCfg),
				slog.Any("gemini", geminiCfg),
				slog.Any("notify", notifyCfg),
			)

			scanUC, actionUC, repo, err := buildUseCases(ctx, &firestoreCfg, &esCfg, &geminiCfg, &notifyCfg)
			if err != nil {
				return err
			}
			defer repo.Close()

			server := controller.NewServer(ctx, serverCfg.Addr, scanUC, actionUC, repo)

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
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}
