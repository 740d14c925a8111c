package workflow

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/viant/smalltalk/internal/yml"
	"github.com/viant/smalltalk/model"
	"github.com/viant/smalltalk/model/graph"
)

// parseWorkflow converts the root mapping into the workflow model
func parseWorkflow(node *yml.Node, workflow *model.Workflow) error {
	return node.Pairs(func(key string, valueNode *yml.Node) error {
		var err error
		switch strings.ToLower(key) {
		case "name":
			workflow.Name, err = valueNode.String()
		case "description":
			workflow.Description, err = valueNode.String()
		case "version":
			workflow.Version, err = valueNode.String()
		case "timeout":
			workflow.Timeout, err = valueNode.Duration()
		case "branches":
			err = valueNode.Pairs(func(id string, branchNode *yml.Node) error {
				branch, err := parseBranch(id, branchNode)
				if err != nil {
					return fmt.Errorf("failed to parse branch %s: %w", id, err)
				}
				workflow.Branches = append(workflow.Branches, branch)
				return nil
			})
		case "merge":
			workflow.Merge, err = parseMerge(valueNode)
		default:
			return fmt.Errorf("unsupported workflow property %q at line %d", key, valueNode.Line)
		}
		return err
	})
}

func parseBranch(id string, node *yml.Node) (*graph.Branch, error) {
	branch := graph.NewBranch(id)
	err := node.Pairs(func(key string, valueNode *yml.Node) error {
		var err error
		switch strings.ToLower(key) {
		case "outputkey":
			branch.OutputKey, err = valueNode.String()
		case "steps":
			err = valueNode.Pairs(func(name string, stepNode *yml.Node) error {
				step, err := parseStep(name, stepNode)
				if err != nil {
					return fmt.Errorf("failed to parse step %s: %w", name, err)
				}
				branch.AddStep(step)
				return nil
			})
		default:
			return fmt.Errorf("unsupported branch property %q at line %d", key, valueNode.Line)
		}
		return err
	})
	return branch, err
}

func parseStep(name string, node *yml.Node) (*graph.Step, error) {
	step := &graph.Step{Name: name}
	err := node.Pairs(func(key string, valueNode *yml.Node) error {
		var err error
		switch strings.ToLower(key) {
		case "action":
			step.Action, err = parseAction(valueNode)
		case "input":
			step.Input = valueNode.Interface()
		case "timeout":
			step.Timeout, err = valueNode.Duration()
		case "outputkey":
			step.OutputKey, err = valueNode.String()
		case "retry":
			step.Retry, err = parseRetry(valueNode)
		case "catch":
			step.Catch, err = parseCatch(valueNode)
		case "value":
			step.Pass = &graph.Pass{Value: valueNode.Interface()}
		case "pass":
			enabled, ok := valueNode.Interface().(bool)
			if !ok {
				return fmt.Errorf("pass should be a boolean at line %d", valueNode.Line)
			}
			if enabled && step.Pass == nil {
				step.Pass = &graph.Pass{}
			}
		default:
			return fmt.Errorf("unsupported step property %q at line %d", key, valueNode.Line)
		}
		return err
	})
	return step, err
}

// parseAction accepts "service:method" or a {service, method} mapping.
func parseAction(node *yml.Node) (*graph.Action, error) {
	if node.Kind == yaml.ScalarNode {
		return graph.ParseAction(node.Value), nil
	}
	action := &graph.Action{}
	err := node.Pairs(func(key string, valueNode *yml.Node) error {
		var err error
		switch strings.ToLower(key) {
		case "service":
			action.Service, err = valueNode.String()
		case "method":
			action.Method, err = valueNode.String()
		default:
			return fmt.Errorf("unsupported action property %q at line %d", key, valueNode.Line)
		}
		return err
	})
	return action, err
}

func parseRetry(node *yml.Node) (*graph.Retry, error) {
	retry := &graph.Retry{MaxAttempts: 3, BackoffRate: 2, Interval: time.Second, Jitter: graph.JitterNone}
	err := node.Pairs(func(key string, valueNode *yml.Node) error {
		var err error
		switch strings.ToLower(key) {
		case "maxattempts":
			retry.MaxAttempts, err = valueNode.Int()
		case "backoffrate":
			retry.BackoffRate, err = valueNode.Float()
		case "interval":
			retry.Interval, err = valueNode.Duration()
		case "maxdelay":
			retry.MaxDelay, err = valueNode.Duration()
		case "jitter":
			var jitter string
			jitter, err = valueNode.String()
			retry.Jitter = strings.ToLower(jitter)
		default:
			return fmt.Errorf("unsupported retry property %q at line %d", key, valueNode.Line)
		}
		return err
	})
	return retry, err
}

func parseCatch(node *yml.Node) (*graph.Catch, error) {
	catch := &graph.Catch{}
	err := node.Pairs(func(key string, valueNode *yml.Node) error {
		var err error
		switch strings.ToLower(key) {
		case "outputkey":
			catch.OutputKey, err = valueNode.String()
		case "fallback":
			catch.Fallback = valueNode.Interface()
		default:
			return fmt.Errorf("unsupported catch property %q at line %d", key, valueNode.Line)
		}
		return err
	})
	return catch, err
}

// parseMerge accepts a {value, outputKey} mapping.
func parseMerge(node *yml.Node) (*graph.Step, error) {
	step, err := parseStep("merge", node)
	if err != nil {
		return nil, fmt.Errorf("failed to parse merge: %w", err)
	}
	if step.Pass == nil && step.Action == nil {
		step.Pass = &graph.Pass{}
	}
	return step, nil
}
