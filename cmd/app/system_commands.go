package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/sealedrecords/cmd/app/commands"
	"github.com/allisson/sealedrecords/internal/app"
	"github.com/allisson/sealedrecords/internal/config"
)

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "server",
			Usage: "Start the HTTP server",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunServer(ctx, version)
			},
		},
		{
			Name:  "migrate",
			Usage: "Run database migrations",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunMigrations(container.Logger(), cfg.DBDriver, cfg.DBConnectionString)
			},
		},
		{
			Name:  "rewrap-records",
			Usage: "Rewrap every stored record's DEK under the latest master key version",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:    "batch-size",
					Aliases: []string{"b"},
					Value:   100,
					Usage:   "Number of records to rewrap per transaction",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				recordUseCase, err := container.RecordUseCase()
				if err != nil {
					return err
				}

				return commands.RunRewrapRecords(
					ctx,
					recordUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					int(cmd.Int("batch-size")),
				)
			},
		},
	}
}
