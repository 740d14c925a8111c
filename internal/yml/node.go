package yml

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Node wraps yaml.Node with order preserving accessors. Mapping order matters
// for definitions: branches and steps run in declaration order.
type Node yaml.Node

// Root returns the first content node of a document, or n itself.
func (n *Node) Root() *Node {
	if n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		return (*Node)(n.Content[0])
	}
	return n
}

// Pairs iterates mapping key/value pairs in declaration order.
func (n *Node) Pairs(callback func(key string, node *Node) error) error {
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("expected mapping at line %d, but had %v", n.Line, kindName(n.Kind))
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if err := callback(n.Content[i].Value, (*Node)(n.Content[i+1])); err != nil {
			return err
		}
	}
	return nil
}

// Lookup returns the value node for a case-insensitive key or nil.
func (n *Node) Lookup(name string) *Node {
	if n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if strings.EqualFold(n.Content[i].Value, name) {
			return (*Node)(n.Content[i+1])
		}
	}
	return nil
}

// Interface converts the node into plain Go values: map[string]interface{},
// []interface{}, string, bool, int, float64 or nil.
func (n *Node) Interface() interface{} {
	switch n.Kind {
	case yaml.DocumentNode:
		return n.Root().Interface()
	case yaml.AliasNode:
		if n.Alias != nil {
			return (*Node)(n.Alias).Interface()
		}
		return nil
	case yaml.ScalarNode:
		switch n.Tag {
		case "!!bool":
			return strings.EqualFold(n.Value, "true")
		case "!!null":
			return nil
		case "!!float":
			f, _ := strconv.ParseFloat(n.Value, 64)
			return f
		case "!!int":
			i, _ := strconv.Atoi(n.Value)
			return i
		default:
			return n.Value
		}
	case yaml.MappingNode:
		aMap := make(map[string]interface{}, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			aMap[n.Content[i].Value] = (*Node)(n.Content[i+1]).Interface()
		}
		return aMap
	case yaml.SequenceNode:
		aSlice := make([]interface{}, 0, len(n.Content))
		for _, item := range n.Content {
			aSlice = append(aSlice, (*Node)(item).Interface())
		}
		return aSlice
	}
	return nil
}

// String returns a scalar value or an error for non scalar nodes.
func (n *Node) String() (string, error) {
	if n.Kind != yaml.ScalarNode {
		return "", fmt.Errorf("expected scalar at line %d, but had %v", n.Line, kindName(n.Kind))
	}
	return n.Value, nil
}

// Int returns an integer scalar.
func (n *Node) Int() (int, error) {
	text, err := n.String()
	if err != nil {
		return 0, err
	}
	i, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q at line %d", text, n.Line)
	}
	return i, nil
}

// Float returns a float scalar.
func (n *Node) Float() (float64, error) {
	text, err := n.String()
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q at line %d", text, n.Line)
	}
	return f, nil
}

// Duration returns a duration scalar; bare numbers are read as seconds.
func (n *Node) Duration() (time.Duration, error) {
	text, err := n.String()
	if err != nil {
		return 0, err
	}
	if secs, err := strconv.ParseFloat(text, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(text)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q at line %d", text, n.Line)
	}
	return d, nil
}

func kindName(kind yaml.Kind) string {
	switch kind {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	}
	return "empty node"
}
