package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	cli "github.com/urfave/cli/v3"

	"github.com/viant/smalltalk"
	"github.com/viant/smalltalk/internal/logger"
)

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		log.Error().Err(err).Msg("smalltalk failed")
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:                  "smalltalk",
		Usage:                 "Weather and tech news small talk workflow",
		Version:               smalltalk.Version,
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Configuration URL (file, mem, s3, gs ...)",
				Sources: cli.EnvVars("SMALLTALK_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error, disabled)",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.BoolFlag{
				Name:  "console",
				Usage: "Human readable log output",
			},
		},
		Commands: []*cli.Command{
			newRunCommand(),
			newServeCommand(),
			newValidateCommand(),
		},
	}
}

// loadConfig reads the configuration and initialises logging; the log level
// flag takes precedence over the configured one.
func loadConfig(ctx context.Context, command *cli.Command) (*smalltalk.Config, error) {
	config, err := smalltalk.LoadConfig(ctx, command.String("config"))
	if err != nil {
		return nil, err
	}
	if level := command.String("log-level"); level != "" {
		config.LogLevel = level
	}
	if err = logger.Init(config.LogLevel, command.Bool("console"), os.Stderr); err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	return config, nil
}
