package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
)

func TestValidateCommand(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	collision := "name: collision\nbranches:\n  weather:\n    outputKey: techNews\n    steps:\n      getWeather:\n        action: weather:current\n" +
		"  techNews:\n    steps:\n      getTechNews:\n        action: technews:top\n"
	assert.NoError(t, fs.Upload(ctx, "mem://localhost/cli/collision.yaml", file.DefaultFileOsMode, strings.NewReader(collision)))

	var testCases = []struct {
		description  string
		args         []string
		expectErr    bool
		expectOutput string
	}{
		{description: "embedded definition", args: []string{"smalltalk", "validate"}, expectOutput: "workflow small-talk is valid: 2 branches"},
		{description: "output key collision", args: []string{"smalltalk", "validate", "--workflow", "mem://localhost/cli/collision.yaml"}, expectErr: true, expectOutput: "same output key"},
		{description: "missing definition", args: []string{"smalltalk", "validate", "--workflow", "mem://localhost/cli/missing.yaml"}, expectErr: true},
	}

	for _, testCase := range testCases {
		command := newCommand()
		var stdout, stderr bytes.Buffer
		command.Writer = &stdout
		command.ErrWriter = &stderr
		err := command.Run(ctx, testCase.args)
		assert.Equal(t, testCase.expectErr, err != nil, testCase.description)
		if testCase.expectOutput != "" {
			assert.Contains(t, stdout.String()+stderr.String(), testCase.expectOutput, testCase.description)
		}
	}
}
