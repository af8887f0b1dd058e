// Package jsonpath implements RFC 9535 JSONPath query expressions: given a
// query string and a JSON document, it produces the ordered nodelist of
// (value, normalized-path) pairs the query selects.
//
// An Engine from NewEngine() works for pure RFC 9535 queries; the zero
// Engine value has no registry and must not be used. Use RegisterFunction
// before Parse to extend a particular Engine with additional functions;
// registration never affects other Engines, so tests can add functions
// without global side effects.
package jsonpath

import (
	"time"

	"go.pathkit.dev/jsonpath/internal/ast"
	"go.pathkit.dev/jsonpath/internal/eval"
	"go.pathkit.dev/jsonpath/internal/functions"
	"go.pathkit.dev/jsonpath/internal/parser"
)

// Engine holds a function registry and regex-engine configuration
// shared by every Path it parses. NewEngine with no options registers
// the five RFC 9535 built-in functions only.
type Engine struct {
	registry *functions.Registry
}

// Option configures an Engine at construction time.
type Option func(*engineConfig)

type engineConfig struct {
	regexTimeout time.Duration
	regexRate    float64
}

// WithRegexTimeout bounds how long match()/search() may spend
// evaluating a single pattern against a single subject. Non-positive
// restores the default of one second.
func WithRegexTimeout(d time.Duration) Option {
	return func(c *engineConfig) { c.regexTimeout = d }
}

// WithRegexBudget throttles the combined rate of match()/search()
// calls across every Path this Engine parses. Non-positive means
// unlimited, which is the default.
func WithRegexBudget(requestsPerSecond float64) Option {
	return func(c *engineConfig) { c.regexRate = requestsPerSecond }
}

// NewEngine builds an Engine with the built-in functions registered
// and opts applied.
func NewEngine(opts ...Option) *Engine {
	cfg := engineConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	registry := functions.NewRegistry(
		functions.WithRegexTimeout(cfg.regexTimeout),
		functions.WithRegexBudget(cfg.regexRate),
	)
	return &Engine{registry: registry}
}

// RegisterFunction adds a custom extension function to this Engine,
// or replaces a built-in of the same name. Every Path parsed
// afterwards by this Engine may call it; other Engines are unaffected.
// Call must return a FunctionResult of the declared result Type.
func (e *Engine) RegisterFunction(name string, params []Type, result Type, call func([]FunctionResult) (FunctionResult, error)) {
	e.registry.Register(&functions.Func{
		Name:      name,
		Signature: functions.Signature{Params: params, Result: result},
		Call:      call,
	})
}

// Parse compiles query against this Engine's registered functions.
func (e *Engine) Parse(query string) (*Path, error) {
	q, err := parser.Parse(query, e.registry)
	if err != nil {
		return nil, wrapSyntaxError(err)
	}
	return &Path{source: query, query: q, registry: e.registry}, nil
}

// defaultEngine backs the package-level Parse convenience function.
// It is never mutated after construction, so concurrent package-level
// Parse calls from multiple goroutines are safe.
var defaultEngine = NewEngine()

// Parse compiles query using a shared Engine that has only the RFC
// 9535 built-in functions. Use an Engine directly to register custom
// functions or configure the regex engine.
func Parse(query string) (*Path, error) {
	return defaultEngine.Parse(query)
}

// Path is a compiled, reusable JSONPath query. A Path is immutable
// after Parse returns and is safe for concurrent use: evaluation is
// read-only over the AST and over whatever document it is given.
type Path struct {
	source   string
	query    *ast.Query
	registry *functions.Registry
}

// String returns the original query text.
func (p *Path) String() string { return p.source }

// Select evaluates the query against an already-decoded document,
// returning the nodelist it selects.
func (p *Path) Select(document Value) (Nodelist, error) {
	nl, err := eval.Evaluate(p.query, document, p.registry)
	if err != nil {
		return nil, wrapEvaluationError(err)
	}
	return fromInternalNodelist(nl), nil
}

// Evaluate decodes a JSON document and selects against it in one
// step, preserving object member order as Select requires.
func (p *Path) Evaluate(document []byte) (Nodelist, error) {
	root, err := DecodeBytes(document)
	if err != nil {
		return nil, err
	}
	return p.Select(root)
}
