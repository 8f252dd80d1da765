package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/nationalid/cmd/app/commands"
	"github.com/allisson/nationalid/internal/app"
	"github.com/allisson/nationalid/internal/config"
)

func getAPIKeyCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-api-key",
			Usage: "Issue a new API key",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "name",
					Aliases:  []string{"n"},
					Required: true,
					Usage:    "Human-readable key name",
				},
				&cli.StringFlag{
					Name:    "key",
					Aliases: []string{"k"},
					Usage:   "Custom secret (omit to generate one)",
				},
				&cli.BoolFlag{
					Name:  "prompt-key",
					Value: false,
					Usage: "Read the custom secret from the terminal without echo",
				},
				&cli.IntFlag{
					Name:  "quota-per-minute",
					Value: 0,
					Usage: "Requests allowed per minute (0 uses the default)",
				},
				&cli.IntFlag{
					Name:  "quota-per-day",
					Value: 0,
					Usage: "Requests allowed per day (0 uses the default)",
				},
				&cli.StringFlag{
					Name:    "metadata",
					Aliases: []string{"m"},
					Usage:   "JSON object stored with the key",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container := app.NewContainer(config.Load())
				defer func() { _ = container.Shutdown(ctx) }()

				useCase, err := container.APIKeyUseCase()
				if err != nil {
					return err
				}

				var reader commands.SecretReader
				if cmd.Bool("prompt-key") {
					reader = commands.TerminalSecretReader
				}

				return commands.RunCreateAPIKey(
					ctx,
					useCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					commands.CreateAPIKeyParams{
						Name:           cmd.String("name"),
						Key:            cmd.String("key"),
						QuotaPerMinute: int(cmd.Int("quota-per-minute")),
						QuotaPerDay:    int(cmd.Int("quota-per-day")),
						MetadataJSON:   cmd.String("metadata"),
						Format:         cmd.String("format"),
					},
					reader,
				)
			},
		},
		{
			Name:  "revoke-api-key",
			Usage: "Revoke an API key",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "id",
					Aliases:  []string{"i"},
					Required: true,
					Usage:    "API key ID (UUID)",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container := app.NewContainer(config.Load())
				defer func() { _ = container.Shutdown(ctx) }()

				useCase, err := container.APIKeyUseCase()
				if err != nil {
					return err
				}

				return commands.RunRevokeAPIKey(
					ctx,
					useCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("id"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "list-api-keys",
			Usage: "List API keys",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "offset",
					Value: 0,
					Usage: "Number of keys to skip",
				},
				&cli.IntFlag{
					Name:    "limit",
					Aliases: []string{"l"},
					Value:   50,
					Usage:   "Maximum number of keys to show",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container := app.NewContainer(config.Load())
				defer func() { _ = container.Shutdown(ctx) }()

				useCase, err := container.APIKeyUseCase()
				if err != nil {
					return err
				}

				return commands.RunListAPIKeys(
					ctx,
					useCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					int(cmd.Int("offset")),
					int(cmd.Int("limit")),
					cmd.String("format"),
				)
			},
		},
	}
}
