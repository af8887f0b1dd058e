// Package compliance loads data-driven JSONPath test-case fixtures,
// shaped after the official JSONPath Compliance Test Suite, and runs
// them against a Path.
package compliance

import (
	"fmt"
	"io"

	"github.com/goccy/go-yaml"
	"github.com/goccy/go-yaml/ast"

	"go.pathkit.dev/jsonpath/internal/value"
)

// Case is one compliance fixture: a query against a document, with
// either an exact expected result or one of several acceptable
// results (RFC 9535 leaves some orderings, e.g. which of several
// equally-valid nodelists an object-wildcard produces, implementation
// defined), or an expectation that the selector string itself is
// invalid.
type Case struct {
	Name            string      `yaml:"name"`
	Selector        string      `yaml:"selector"`
	Document        jsonBlock   `yaml:"document"`
	Result          jsonBlock   `yaml:"result"`
	Results         []jsonBlock `yaml:"results"`
	InvalidSelector bool        `yaml:"invalid_selector"`
}

type suite struct {
	Tests []Case `yaml:"tests"`
}

// jsonBlock decodes a YAML block scalar holding a raw JSON document,
// routing it through internal/value's own decoder so object member
// order is preserved exactly as a real caller's document would be. A
// generic YAML-to-Go-value decode would not make that promise.
type jsonBlock struct {
	set   bool
	value value.Value
}

func (b *jsonBlock) UnmarshalYAML(node ast.Node) error {
	raw, err := nodeToString(node)
	if err != nil {
		return fmt.Errorf("compliance: %w", err)
	}
	v, err := value.DecodeBytes([]byte(raw))
	if err != nil {
		return fmt.Errorf("compliance: decoding embedded JSON: %w", err)
	}
	b.set = true
	b.value = v
	return nil
}

func nodeToString(node ast.Node) (string, error) {
	switch n := node.(type) {
	case *ast.StringNode:
		return n.Value, nil
	case *ast.LiteralNode:
		return n.Value.Value, nil
	default:
		return "", fmt.Errorf("document/result must be a scalar JSON block, got %T", node)
	}
}

// Value returns the decoded document, or nil if the fixture field was
// omitted.
func (b jsonBlock) Value() value.Value { return b.value }

// Present reports whether the fixture supplied this field at all.
func (b jsonBlock) Present() bool { return b.set }

// Load decodes a stream of Cases from r.
func Load(r io.Reader) ([]Case, error) {
	var s suite
	if err := yaml.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("compliance: decoding fixtures: %w", err)
	}
	return s.Tests, nil
}
