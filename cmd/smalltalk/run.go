package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/viant/smalltalk"
	"github.com/viant/smalltalk/runtime/execution"
)

func newRunCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run the workflow once and print the result",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "location",
				Aliases:  []string{"l"},
				Usage:    "Location to report the weather for",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "workflow",
				Usage: "Workflow definition URL overriding the configured one",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			config, err := loadConfig(ctx, command)
			if err != nil {
				return err
			}
			if URL := command.String("workflow"); URL != "" {
				config.WorkflowURL = URL
			}
			srv, err := smalltalk.New(smalltalk.WithConfig(config))
			if err != nil {
				return err
			}
			defer srv.Close()

			input := map[string]interface{}{"body": map[string]interface{}{"location": command.String("location")}}
			result := srv.Run(ctx, input)
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err = encoder.Encode(result); err != nil {
				return err
			}
			if result.Status != execution.StatusSucceeded {
				return fmt.Errorf("execution %s failed: %s", result.ID, result.Error.Type)
			}
			return nil
		},
	}
}
