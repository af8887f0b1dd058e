// Package eval applies a parsed query to a JSON value tree, producing
// the Nodelist RFC 9535 §2.1 defines as a query's result: an ordered
// list of (value, normalized-path) pairs. It operates over a
// materialized internal/value.Value tree rather than a flat decoder
// token stream, since queries here may revisit and compare against
// arbitrary parts of the document (filter selectors, function
// arguments).
package eval

import (
	"go.pathkit.dev/jsonpath/internal/ast"
	"go.pathkit.dev/jsonpath/internal/filter"
	"go.pathkit.dev/jsonpath/internal/functions"
	"go.pathkit.dev/jsonpath/internal/node"
	"go.pathkit.dev/jsonpath/internal/stack"
	"go.pathkit.dev/jsonpath/internal/value"
)

// Evaluate resolves query against root, using registry to dispatch any
// function calls inside filter selectors. root is also used as the
// root-node target ($) of absolute queries nested inside filters.
func Evaluate(query *ast.Query, root value.Value, registry *functions.Registry) (node.Nodelist, error) {
	e := &evaluator{registry: registry, root: root}
	start := node.Node{Value: root, Path: "$"}
	return e.run(query.Segments(), node.Nodelist{start})
}

type evaluator struct {
	registry *functions.Registry
	root     value.Value
}

// run applies segments in order, each segment's selectors against
// every node produced by the previous step.
func (e *evaluator) run(segments []ast.Segment, in node.Nodelist) (node.Nodelist, error) {
	current := in
	for _, seg := range segments {
		next, err := e.applySegment(seg, current)
		if err != nil {
			return nil, err
		}
		current = next
	}
	return current, nil
}

func (e *evaluator) applySegment(seg ast.Segment, in node.Nodelist) (node.Nodelist, error) {
	var out node.Nodelist
	for _, n := range in {
		switch seg.Kind() {
		case ast.SegmentChild:
			matched, err := e.applySelectors(seg.Selectors(), n)
			if err != nil {
				return nil, err
			}
			out = append(out, matched...)
		case ast.SegmentDescendant:
			matched, err := e.applyDescendant(seg.Selectors(), n)
			if err != nil {
				return nil, err
			}
			out = append(out, matched...)
		}
	}
	return out, nil
}

// applySelectors applies every selector of one segment to a single
// node and concatenates their results, per §2.3's "nodelists...are
// concatenated in the order the selectors are written" rule.
func (e *evaluator) applySelectors(selectors []ast.Selector, n node.Node) (node.Nodelist, error) {
	var out node.Nodelist
	for _, sel := range selectors {
		matched, err := e.applySelector(sel, n)
		if err != nil {
			return nil, err
		}
		out = append(out, matched...)
	}
	return out, nil
}

// applyDescendant visits n and every descendant of n in depth-first
// pre-order (object members in insertion order, array elements
// left-to-right), applying selectors at every step, per §2.5.2.2.
// Traversal uses an explicit stack rather than recursion to keep
// descendant depth from growing the Go call stack.
func (e *evaluator) applyDescendant(selectors []ast.Selector, n node.Node) (node.Nodelist, error) {
	var out node.Nodelist
	pending := stack.New[node.Node]()
	pending.Push(n)

	for {
		cur, ok := pending.Pop()
		if !ok {
			break
		}

		matched, err := e.applySelectors(selectors, cur)
		if err != nil {
			return nil, err
		}
		out = append(out, matched...)

		switch v := cur.Value.(type) {
		case *value.Object:
			names := v.Names()
			children := make([]node.Node, len(names))
			for i, name := range names {
				child, _ := v.Get(name)
				children[i] = node.Node{Value: child, Path: appendName(cur.Path, name)}
			}
			pushReversed(pending, children)
		case value.Array:
			children := make([]node.Node, len(v))
			for i, child := range v {
				children[i] = node.Node{Value: child, Path: appendIndex(cur.Path, i)}
			}
			pushReversed(pending, children)
		}
	}
	return out, nil
}

// pushReversed pushes children in reverse order so the stack pops
// them in original left-to-right / insertion order.
func pushReversed(s *stack.Stack[node.Node], children []node.Node) {
	for i := len(children) - 1; i >= 0; i-- {
		s.Push(children[i])
	}
}

func (e *evaluator) applySelector(sel ast.Selector, n node.Node) (node.Nodelist, error) {
	switch sel.Kind() {
	case ast.SelectorName:
		return e.applyName(sel.Name(), n), nil
	case ast.SelectorWildcard:
		return e.applyWildcard(n), nil
	case ast.SelectorIndex:
		return e.applyIndex(sel.Index(), n), nil
	case ast.SelectorSlice:
		return e.applySlice(sel, n), nil
	case ast.SelectorFilter:
		return e.applyFilter(sel.Filter(), n)
	default:
		return nil, nil
	}
}

func (e *evaluator) applyName(name string, n node.Node) node.Nodelist {
	obj, ok := n.Value.(*value.Object)
	if !ok {
		return nil
	}
	v, present := obj.Get(name)
	if !present {
		return nil
	}
	return node.Nodelist{{Value: v, Path: appendName(n.Path, name)}}
}

func (e *evaluator) applyWildcard(n node.Node) node.Nodelist {
	switch v := n.Value.(type) {
	case *value.Object:
		var out node.Nodelist
		v.Range(func(name string, child value.Value) bool {
			out = append(out, node.Node{Value: child, Path: appendName(n.Path, name)})
			return true
		})
		return out
	case value.Array:
		out := make(node.Nodelist, len(v))
		for i, child := range v {
			out[i] = node.Node{Value: child, Path: appendIndex(n.Path, i)}
		}
		return out
	default:
		return nil
	}
}

func (e *evaluator) applyIndex(index int, n node.Node) node.Nodelist {
	arr, ok := n.Value.(value.Array)
	if !ok {
		return nil
	}
	resolved := index
	if resolved < 0 {
		resolved += arr.Len()
	}
	if resolved < 0 || resolved >= arr.Len() {
		return nil
	}
	return node.Nodelist{{Value: arr[resolved], Path: appendIndex(n.Path, resolved)}}
}

// applySlice implements the RFC 9535 §2.3.4.2.2 slice selection
// algorithm verbatim, including its asymmetric clamping for positive
// versus negative step.
func (e *evaluator) applySlice(sel ast.Selector, n node.Node) node.Nodelist {
	arr, ok := n.Value.(value.Array)
	if !ok {
		return nil
	}
	length := arr.Len()
	step := 1
	if sel.SliceStep() != nil {
		step = *sel.SliceStep()
	}
	if step == 0 {
		return nil
	}

	lower, upper := sliceBounds(sel.SliceStart(), sel.SliceEnd(), step, length)

	var out node.Nodelist
	if step > 0 {
		for i := lower; i < upper; i += step {
			out = append(out, node.Node{Value: arr[i], Path: appendIndex(n.Path, i)})
		}
	} else {
		for i := upper; i > lower; i += step {
			out = append(out, node.Node{Value: arr[i], Path: appendIndex(n.Path, i)})
		}
	}
	return out
}

func normalizeSliceIndex(i, length int) int {
	if i >= 0 {
		return i
	}
	return length + i
}

// sliceBounds implements the Bounds() procedure of §2.3.4.2.2.
func sliceBounds(start, end *int, step, length int) (lower, upper int) {
	if step >= 0 {
		var s, e int
		if start == nil {
			s = 0
		} else {
			s = normalizeSliceIndex(*start, length)
		}
		if end == nil {
			e = length
		} else {
			e = normalizeSliceIndex(*end, length)
		}
		lower = clamp(s, 0, length)
		upper = clamp(e, 0, length)
		if upper < lower {
			upper = lower
		}
		return lower, upper
	}

	var s, e int
	if start == nil {
		s = length - 1
	} else {
		s = normalizeSliceIndex(*start, length)
	}
	if end == nil {
		e = -1
	} else {
		e = normalizeSliceIndex(*end, length)
	}
	upper = clamp(s, -1, length-1)
	lower = clamp(e, -1, length-1)
	return lower, upper
}

func clamp(i, min, max int) int {
	if i < min {
		return min
	}
	if i > max {
		return max
	}
	return i
}

func (e *evaluator) applyFilter(expr *ast.FilterExpr, n node.Node) (node.Nodelist, error) {
	var candidates []node.Node
	switch v := n.Value.(type) {
	case *value.Object:
		v.Range(func(name string, child value.Value) bool {
			candidates = append(candidates, node.Node{Value: child, Path: appendName(n.Path, name)})
			return true
		})
	case value.Array:
		for i, child := range v {
			candidates = append(candidates, node.Node{Value: child, Path: appendIndex(n.Path, i)})
		}
	default:
		return nil, nil
	}

	var out node.Nodelist
	for _, c := range candidates {
		keep, err := filter.Evaluate(expr, c.Value, e.root, e.registry, e.evalSubquery)
		if err != nil {
			return nil, err
		}
		if keep {
			out = append(out, c)
		}
	}
	return out, nil
}

// evalSubquery is the filter.EvalFunc this evaluator hands to
// internal/filter: a relative query resolves against current, an
// absolute query resolves against root.
func (e *evaluator) evalSubquery(query *ast.Query, current, root value.Value) (node.Nodelist, error) {
	start := node.Node{Value: current, Path: "@"}
	if !query.IsRelative() {
		start = node.Node{Value: root, Path: "$"}
	}
	sub := &evaluator{registry: e.registry, root: root}
	return sub.run(query.Segments(), node.Nodelist{start})
}
