package cli

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/weeklydigest/pkg/cli/config"
	"github.com/secmon-lab/weeklydigest/pkg/domain/model"
	"github.com/secmon-lab/weeklydigest/pkg/domain/types"
	"github.com/secmon-lab/weeklydigest/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdIngest() *cli.Command {
	var (
		projectsCfg config.Projects
		storageCfg  config.Storage
		llmCfg      config.LLM

		projectKey string
		week       string
		dpm        string
		file       string
	)

	flags := joinFlags(
		[]cli.Flag{
			&cli.StringFlag{
				Name:        "project",
				Aliases:     []string{"p"},
				Usage:       "Project key of the update",
				Required:    true,
				Destination: &projectKey,
			},
			&cli.StringFlag{
				Name:        "week",
				Aliases:     []string{"w"},
				Usage:       "Week ending date (YYYY-MM-DD), today in UTC if empty",
				Destination: &week,
			},
			&cli.StringFlag{
				Name:        "dpm",
				Usage:       "Name of the delivery project manager",
				Required:    true,
				Destination: &dpm,
			},
			&cli.StringFlag{
				Name:        "file",
				Aliases:     []string{"f"},
				Usage:       "File holding the raw update, stdin if empty or '-'",
				Destination: &file,
			},
		},
		projectsCfg.Flags(),
		storageCfg.Flags(),
		llmCfg.Flags(),
	)

	return &cli.Command{
		Name:  "ingest",
		Usage: "Summarize and store one raw weekly update",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			raw, err := readInput(file)
			if err != nil {
				return err
			}

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

			if week == "" {
				week = types.WeekOf(time.Now()).String()
			}

			uc := usecase.NewIngest(repo, summarizer, projects)
			result, err := uc.Submit(ctx, &model.IngestRequest{
				ProjectKey: types.ProjectKey(projectKey),
				WeekEnding: types.WeekEnding(week),
				DPM:        dpm,
				RawUpdate:  string(raw),
			})
			if err != nil {
				return err
			}

			ctxlog.From(ctx).Info("Saved submission", "path", result.Path, "receipt_id", result.ReceiptID)
			return printJSON(c.Root().Writer, result)
		},
	}
}

func readInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read stdin")
		}
		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read input file", goerr.V("path", path))
	}
	return data, nil
}
