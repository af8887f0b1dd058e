package jsonpath

import "go.pathkit.dev/jsonpath/internal/functions"

// Type is one of the three disjoint result universes a function
// parameter or result can belong to (§4.5.2).
type Type = functions.Type

const (
	ValueType   = functions.ValueType
	NodesType   = functions.NodesType
	LogicalType = functions.LogicalType
)

// FunctionResult is a value in one of the three type universes,
// tagged by Kind. For Kind == ValueType, a nil Value represents
// Nothing; for Kind == NodesType, Nodes may be empty.
type FunctionResult = functions.Result

// NothingResult is the ValueType result representing Nothing.
func NothingResult() FunctionResult { return functions.NothingResult() }

// ValueResult wraps a JSON value as a ValueType result.
func ValueResult(v Value) FunctionResult { return functions.ValueResult(v) }

// LogicalResult wraps a boolean as a LogicalType result.
func LogicalResult(b bool) FunctionResult { return functions.LogicalResult(b) }
