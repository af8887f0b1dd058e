package functions

import (
	"time"
)

// Func is a registered function: its signature for parse-time
// well-typedness checking, and its implementation for evaluation.
type Func struct {
	Name      string
	Signature Signature
	Call      func(args []Result) (Result, error)
}

// Registry holds the set of functions a Path may call, plus the
// shared regex engine used by the built-in match/search functions.
// Register changes it in place and is not safe to call concurrently
// with Lookup or with evaluation; once registration is done the
// Registry is only read, so multiple Paths (and goroutines) can share
// it.
type Registry struct {
	funcs map[string]*Func
	regex *regexEngine
}

// Option configures a Registry at construction time.
type Option func(*registryConfig)

type registryConfig struct {
	regexTimeout time.Duration
	regexRate    float64
}

// WithRegexTimeout bounds how long match/search may spend evaluating
// a single pattern against a single subject. Non-positive restores
// the default of one second.
func WithRegexTimeout(d time.Duration) Option {
	return func(c *registryConfig) { c.regexTimeout = d }
}

// WithRegexBudget throttles the combined rate of match/search calls
// to requestsPerSecond, across the lifetime of the Registry.
// Non-positive means unlimited (the default).
func WithRegexBudget(requestsPerSecond float64) Option {
	return func(c *registryConfig) { c.regexRate = requestsPerSecond }
}

// NewRegistry builds a Registry with the five RFC 9535 built-in
// functions (length, count, match, search, value) already registered.
func NewRegistry(opts ...Option) *Registry {
	cfg := registryConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	r := &Registry{
		funcs: make(map[string]*Func),
		regex: newRegexEngine(cfg.regexTimeout, cfg.regexRate),
	}
	r.registerBuiltins()
	return r
}

// Register adds a custom function, or replaces a previously
// registered one of the same name. It does not validate the name
// against the FunctionName lexical grammar; callers registering
// functions that queries must actually invoke should stick to
// `[a-z][a-z0-9_]*`.
func (r *Registry) Register(fn *Func) {
	r.funcs[fn.Name] = fn
}

// Lookup returns the named function and true, or (nil, false) if no
// such function is registered.
func (r *Registry) Lookup(name string) (*Func, bool) {
	fn, ok := r.funcs[name]
	return fn, ok
}

func (r *Registry) registerBuiltins() {
	r.Register(&Func{
		Name:      "length",
		Signature: Signature{Params: []Type{ValueType}, Result: ValueType},
		Call:      lengthFunc,
	})
	r.Register(&Func{
		Name:      "count",
		Signature: Signature{Params: []Type{NodesType}, Result: ValueType},
		Call:      countFunc,
	})
	r.Register(&Func{
		Name:      "match",
		Signature: Signature{Params: []Type{ValueType, ValueType}, Result: LogicalType},
		Call:      r.matchFunc,
	})
	r.Register(&Func{
		Name:      "search",
		Signature: Signature{Params: []Type{ValueType, ValueType}, Result: LogicalType},
		Call:      r.searchFunc,
	})
	r.Register(&Func{
		Name:      "value",
		Signature: Signature{Params: []Type{NodesType}, Result: ValueType},
		Call:      valueFunc,
	})
}

func checkArgCount(args []Result, want int) error {
	if len(args) != want {
		return evaluationErrorf("expected %d arguments, got %d", want, len(args))
	}
	return nil
}
