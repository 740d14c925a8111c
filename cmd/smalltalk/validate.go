package main

import (
	"context"
	"errors"
	"fmt"

	cli "github.com/urfave/cli/v3"

	"github.com/viant/smalltalk/model/types"
	"github.com/viant/smalltalk/service/dao/workflow"
)

func newValidateCommand() *cli.Command {
	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate a workflow definition",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "workflow",
				Usage: "Workflow definition URL",
				Value: workflow.DefaultLocation,
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			URL := command.String("workflow")
			definition, err := workflow.New().Load(ctx, URL)
			if err != nil {
				var definitionErr *types.DefinitionError
				if errors.As(err, &definitionErr) {
					for _, issue := range definitionErr.Issues {
						fmt.Fprintf(command.Root().ErrWriter, "  - %v\n", issue)
					}
				}
				return fmt.Errorf("workflow %s is invalid: %w", URL, err)
			}
			fmt.Fprintf(command.Root().Writer, "workflow %s is valid: %d branches\n", definition.Name, len(definition.Branches))
			return nil
		},
	}
}
