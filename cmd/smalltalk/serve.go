package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	cli "github.com/urfave/cli/v3"

	"github.com/viant/smalltalk"
	"github.com/viant/smalltalk/service/endpoint"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the workflow over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "addr",
				Usage:   "Listen address overriding the configured one",
				Sources: cli.EnvVars("SMALLTALK_ADDR"),
			},
			&cli.BoolFlag{
				Name:  "access-log",
				Usage: "Log every request",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			config, err := loadConfig(ctx, command)
			if err != nil {
				return err
			}
			if addr := command.String("addr"); addr != "" {
				config.HTTP.Addr = addr
			}
			srv, err := smalltalk.New(smalltalk.WithConfig(config))
			if err != nil {
				return err
			}
			defer srv.Close()
			// fail fast on a broken definition
			if _, err = srv.Runtime().LoadWorkflow(ctx, config.WorkflowURL); err != nil {
				return err
			}

			var options []endpoint.Option
			if command.Bool("access-log") {
				options = append(options, endpoint.WithAccessLog())
			}
			server := endpoint.New(srv, options...)

			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			errs := make(chan error, 1)
			go func() {
				errs <- server.ListenAndServe(config.HTTP.Addr)
			}()
			select {
			case err = <-errs:
				return err
			case <-ctx.Done():
			}
			log.Info().Msg("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	}
}
