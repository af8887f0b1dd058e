package jsonpath

import "go.pathkit.dev/jsonpath/internal/node"

// Node bundles a JSON value with the normalized path (§6) identifying
// its location in the document it was selected from.
type Node struct {
	Value Value
	Path  string
}

// Nodelist is the ordered result of evaluating a query: §4.4's
// "concatenation in selector/segment order", never deduplicated or
// reordered.
type Nodelist []Node

// Values extracts the JSON values from a Nodelist, in order.
func (nl Nodelist) Values() []Value {
	out := make([]Value, len(nl))
	for i, n := range nl {
		out[i] = n.Value
	}
	return out
}

// Single returns the sole node's value and true if the Nodelist has
// exactly one element, implementing the NodesType -> ValueType
// conversion of §4.5.2 for callers that need it outside a filter.
func (nl Nodelist) Single() (Value, bool) {
	if len(nl) != 1 {
		return nil, false
	}
	return nl[0].Value, true
}

func fromInternalNodelist(nl node.Nodelist) Nodelist {
	if nl == nil {
		return nil
	}
	out := make(Nodelist, len(nl))
	for i, n := range nl {
		out[i] = Node{Value: n.Value, Path: n.Path}
	}
	return out
}
