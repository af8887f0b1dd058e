// Package node defines the Nodelist data structure produced by
// evaluating a query: an ordered sequence of (value, normalized-path)
// pairs.
package node

import "go.pathkit.dev/jsonpath/internal/value"

// Node bundles a JSON value borrowed from the input document with the
// normalized path that identifies its location within that document.
type Node struct {
	Value value.Value
	Path  string
}

// Nodelist is an ordered sequence of Nodes. Nil and empty Nodelists
// are both valid "no results".
type Nodelist []Node

// Values extracts the JSON values from a Nodelist, in order.
func (nl Nodelist) Values() []value.Value {
	out := make([]value.Value, len(nl))
	for i, n := range nl {
		out[i] = n.Value
	}
	return out
}

// Single returns the sole node's value if the Nodelist has exactly
// one element, and true; otherwise it returns nil (Nothing) and
// false. This implements the NodesType -> ValueType conversion.
func (nl Nodelist) Single() (value.Value, bool) {
	if len(nl) != 1 {
		return nil, false
	}
	return nl[0].Value, true
}
