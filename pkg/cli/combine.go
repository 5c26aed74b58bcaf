package cli

import (
	"context"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/secmon-lab/weeklydigest/pkg/cli/config"
	"github.com/secmon-lab/weeklydigest/pkg/domain/types"
	"github.com/secmon-lab/weeklydigest/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdCombine() *cli.Command {
	var (
		projectsCfg config.Projects
		storageCfg  config.Storage
		slackCfg    config.Slack

		week       string
		noHardGate bool
		show       bool
		raw        bool
	)

	flags := joinFlags(
		[]cli.Flag{
			&cli.StringFlag{
				Name:        "week",
				Aliases:     []string{"w"},
				Usage:       "Week ending date (YYYY-MM-DD), today in UTC if empty",
				Destination: &week,
			},
			&cli.BoolFlag{
				Name:        "no-hard-gate",
				Usage:       "Render even when required projects have not submitted",
				Destination: &noHardGate,
			},
			&cli.BoolFlag{
				Name:        "print",
				Usage:       "Print the rendered report",
				Destination: &show,
			},
			&cli.BoolFlag{
				Name:        "raw",
				Usage:       "Print plain Markdown instead of terminal formatting",
				Destination: &raw,
			},
		},
		projectsCfg.Flags(),
		storageCfg.Flags(),
		slackCfg.Flags(),
	)

	return &cli.Command{
		Name:  "combine",
		Usage: "Roll up the stored submissions of a week into the weekly report",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			projects, err := projectsCfg.Configure(ctx)
			if err != nil {
				return err
			}
			repo, err := storageCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer repo.Close()

			publisher, err := slackCfg.ConfigureOptional(ctx)
			if err != nil {
				return err
			}
			var opts []usecase.DigestOption
			if publisher != nil {
				opts = append(opts, usecase.WithPublisher(publisher))
			}

			if week == "" {
				week = types.WeekOf(time.Now()).String()
			}

			uc := usecase.NewDigest(repo, projects, opts...)
			result, err := uc.CombineWeek(ctx, types.WeekEnding(week), usecase.CombineOptions{
				HardGate: !noHardGate,
				Mode:     "cli",
			})
			if err != nil {
				return err
			}

			if result.Waiting {
				logger.Warn("Week is incomplete, report not rendered",
					"week", result.Week,
					"missing", result.Completeness.Missing,
				)
				return printJSON(c.Root().Writer, result.Completeness)
			}

			logger.Info("Combined weekly report",
				"week", result.Week,
				"have", len(result.Completeness.Present),
				"published", result.Published,
			)
			if show {
				return printReport(c.Root().Writer, result.Report, raw)
			}
			return nil
		},
	}
}
