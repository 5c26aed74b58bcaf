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
	"github.com/secmon-lab/weeklydigest/pkg/cli/config"
	controller "github.com/secmon-lab/weeklydigest/pkg/controller/http"
	"github.com/secmon-lab/weeklydigest/pkg/usecase"
	"github.com/secmon-lab/weeklydigest/pkg/utils/async"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var (
		serverCfg   config.Server
		projectsCfg config.Projects
		storageCfg  config.Storage
		llmCfg      config.LLM
		slackCfg    config.Slack
	)

	flags := joinFlags(
		serverCfg.Flags(),
		projectsCfg.Flags(),
		storageCfg.Flags(),
		llmCfg.Flags(),
		slackCfg.Flags(),
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Start HTTP server",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			logger.Info("Starting weeklydigest server",
				slog.Any("server", serverCfg),
				slog.Any("projects", projectsCfg),
				slog.Any("storage", storageCfg),
				slog.Any("llm", llmCfg),
				slog.Any("slack", slackCfg),
			)

			projects, err := projectsCfg.Configure(ctx)
			if err != nil {
				return err
			}

			repo, err := storageCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer repo.Close()

			summarizer, err := llmCfg.Configure(ctx, projects.Required())
			if err != nil {
				return err
			}

			publisher, err := slackCfg.ConfigureOptional(ctx)
			if err != nil {
				return err
			}

			var digestOpts []usecase.DigestOption
			if publisher != nil {
				digestOpts = append(digestOpts, usecase.WithPublisher(publisher))
			}
			digestUC := usecase.NewDigest(repo, projects, digestOpts...)

			dispatcher := async.NewDispatcher()
			var ingestOpts []usecase.IngestOption
			if serverCfg.AutoDispatch {
				ingestOpts = append(ingestOpts, usecase.WithAutoDispatch(dispatcher, digestUC))
			}
			ingestUC := usecase.NewIngest(repo, summarizer, projects, ingestOpts...)

			server := controller.NewServer(ctx, controller.Config{
				Addr:     serverCfg.Addr,
				Passcode: serverCfg.Passcode,
				BaseURL:  serverCfg.BaseURL,
			}, ingestUC, digestUC)

			go func() {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("HTTP server error", slog.Any("error", err))
				}
			}()

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
			// Let in-flight combines finish before the repository is closed
			if err := dispatcher.Wait(shutdownCtx); err != nil {
				logger.Warn("Background combines did not finish", slog.Any("error", err))
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}
