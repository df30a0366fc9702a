package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/sealedrecords/cmd/app/commands"
	"github.com/allisson/sealedrecords/internal/app"
	"github.com/allisson/sealedrecords/internal/config"
)

func kmsKeyURIFlag(cfg *config.Config) *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "kms-key-uri",
		Value: cfg.KMSKeyURI,
		Usage: "KMS key URI used to wrap master keys (defaults to KMS_KEY_URI)",
	}
}

func getKeyCommands() []*cli.Command {
	cfg := config.Load()

	return []*cli.Command{
		{
			Name:  "create-master-key",
			Usage: "Generate a new master key for envelope encryption",
			Flags: []cli.Flag{
				&cli.UintFlag{
					Name:  "key-version",
					Value: 1,
					Usage: "Master key version written as MASTER_KEY_V<version>",
				},
				kmsKeyURIFlag(cfg),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunCreateMasterKey(
					ctx,
					container.KMSService(),
					container.Logger(),
					commands.DefaultIO().Writer,
					uint(cmd.Uint("key-version")),
					cmd.String("kms-key-uri"),
				)
			},
		},
		{
			Name:  "rotate-master-key",
			Usage: "Generate the next master key version from the configured MASTER_KEY* entries",
			Flags: []cli.Flag{
				kmsKeyURIFlag(cfg),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunRotateMasterKey(
					ctx,
					container.KMSService(),
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("kms-key-uri"),
					cfg.MasterKeys,
				)
			},
		},
		{
			Name:  "list-master-keys",
			Usage: "Validate the configured MASTER_KEY* entries and list their versions",
			Flags: []cli.Flag{
				kmsKeyURIFlag(cfg),
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunListMasterKeys(
					ctx,
					container.KMSService(),
					commands.DefaultIO().Writer,
					cmd.String("kms-key-uri"),
					cfg.MasterKeys,
					cmd.String("format"),
				)
			},
		},
	}
}
