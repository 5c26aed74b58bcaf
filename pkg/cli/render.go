package cli

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/weeklydigest/pkg/cli/config"
	"github.com/secmon-lab/weeklydigest/pkg/domain/model"
	"github.com/secmon-lab/weeklydigest/pkg/repository"
	"github.com/secmon-lab/weeklydigest/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdRender() *cli.Command {
	var (
		projectsCfg config.Projects

		input     string
		outputDir string
		raw       bool
	)

	flags := joinFlags(
		[]cli.Flag{
			&cli.StringFlag{
				Name:        "input",
				Aliases:     []string{"i"},
				Usage:       "JSON payload with run_metadata and submissions, stdin if empty or '-'",
				Destination: &input,
			},
			&cli.StringFlag{
				Name:        "output-dir",
				Aliases:     []string{"o"},
				Usage:       "Write summaries/<week>.md and summaries/<week>.json under this directory instead of printing",
				Destination: &outputDir,
			},
			&cli.BoolFlag{
				Name:        "raw",
				Usage:       "Print plain Markdown instead of terminal formatting",
				Destination: &raw,
			},
		},
		projectsCfg.Flags(),
	)

	return &cli.Command{
		Name:  "render",
		Usage: "Render a report from an assembled payload without touching storage",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			data, err := readInput(input)
			if err != nil {
				return err
			}
			payload, err := model.ParseAggregateInput(data)
			if err != nil {
				return err
			}

			projects, err := projectsCfg.Configure(ctx)
			if err != nil {
				return err
			}

			uc := usecase.NewDigest(repository.NewMemory(), projects)
			report, err := uc.Aggregate(ctx, payload)
			if err != nil {
				return err
			}

			if outputDir == "" {
				return printReport(c.Root().Writer, report, raw)
			}

			repo, err := repository.NewFileSystem(ctx, outputDir)
			if err != nil {
				return err
			}
			if err := repo.PutReport(ctx, report); err != nil {
				return goerr.Wrap(err, "failed to write report; run_metadata.week_ending must be a valid date")
			}
			ctxlog.From(ctx).Info("Report written", "dir", outputDir, "week", report.WeekEnding)
			return nil
		},
	}
}
