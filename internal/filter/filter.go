// Package filter evaluates the boolean filter-expression tree produced
// by the parser (RFC 9535 §2.3.5) against a candidate node. It knows
// nothing about how a query is resolved to a Nodelist: callers supply
// that as an EvalFunc, which keeps this package independent of
// internal/eval and avoids an import cycle between the two.
package filter

import (
	"go.pathkit.dev/jsonpath/internal/ast"
	"go.pathkit.dev/jsonpath/internal/functions"
	"go.pathkit.dev/jsonpath/internal/node"
	"go.pathkit.dev/jsonpath/internal/value"
)

// EvalFunc resolves a query (relative to current, or absolute against
// root) to the Nodelist it selects. internal/eval supplies the real
// implementation.
type EvalFunc func(query *ast.Query, current, root value.Value) (node.Nodelist, error)

// Evaluate applies expr to the candidate node, returning the boolean
// result of the filter-selector test.
func Evaluate(expr *ast.FilterExpr, current, root value.Value, registry *functions.Registry, evalQuery EvalFunc) (bool, error) {
	switch expr.Kind() {
	case ast.FilterOr:
		left, err := Evaluate(expr.Left(), current, root, registry, evalQuery)
		if err != nil {
			return false, err
		}
		if left {
			return true, nil
		}
		return Evaluate(expr.Right(), current, root, registry, evalQuery)

	case ast.FilterAnd:
		left, err := Evaluate(expr.Left(), current, root, registry, evalQuery)
		if err != nil {
			return false, err
		}
		if !left {
			return false, nil
		}
		return Evaluate(expr.Right(), current, root, registry, evalQuery)

	case ast.FilterNot:
		operand, err := Evaluate(expr.Operand(), current, root, registry, evalQuery)
		if err != nil {
			return false, err
		}
		return !operand, nil

	case ast.FilterParen:
		return Evaluate(expr.Operand(), current, root, registry, evalQuery)

	case ast.FilterExistence:
		nl, err := evalQuery(expr.Existence(), current, root)
		if err != nil {
			return false, err
		}
		return len(nl) > 0, nil

	case ast.FilterComparison:
		left, err := evaluateComparable(expr.CompareLeft(), current, root, registry, evalQuery)
		if err != nil {
			return false, err
		}
		right, err := evaluateComparable(expr.CompareRight(), current, root, registry, evalQuery)
		if err != nil {
			return false, err
		}
		return compare(expr.CompareOp(), left, right), nil

	case ast.FilterFunctionCall:
		result, err := evaluateFunctionCall(expr.Call(), current, root, registry, evalQuery)
		if err != nil {
			return false, err
		}
		return result.AsLogical(), nil

	default:
		return false, nil
	}
}

// compare implements RFC 9535 Table 11: "==" and "<" are primitive,
// the other four operators are derived from them.
func compare(op ast.CompareOp, left, right value.Value) bool {
	eq := value.Equal(left, right)
	lt := value.Less(left, right)
	switch op {
	case ast.CompareEq:
		return eq
	case ast.CompareNe:
		return !eq
	case ast.CompareLt:
		return lt
	case ast.CompareLe:
		return lt || eq
	case ast.CompareGt:
		return !lt && !eq
	case ast.CompareGe:
		return !lt
	default:
		return false
	}
}

func evaluateComparable(c *ast.Comparable, current, root value.Value, registry *functions.Registry, evalQuery EvalFunc) (value.Value, error) {
	switch c.Kind() {
	case ast.ComparableLiteral:
		return c.Literal(), nil
	case ast.ComparableQuery:
		nl, err := evalQuery(c.Query(), current, root)
		if err != nil {
			return nil, err
		}
		v, _ := nl.Single()
		return v, nil
	case ast.ComparableFunctionCall:
		result, err := evaluateFunctionCall(c.Call(), current, root, registry, evalQuery)
		if err != nil {
			return nil, err
		}
		return result.AsValue(), nil
	default:
		return nil, nil
	}
}

func evaluateFunctionCall(call *ast.FunctionCall, current, root value.Value, registry *functions.Registry, evalQuery EvalFunc) (functions.Result, error) {
	fn, ok := registry.Lookup(call.Name())
	if !ok {
		return functions.Result{}, functions.ErrUnknownFunction
	}

	args := make([]functions.Result, len(call.Args()))
	for i, arg := range call.Args() {
		result, err := evaluateFunctionArg(arg, current, root, registry, evalQuery)
		if err != nil {
			return functions.Result{}, err
		}
		want := functions.ValueType
		if i < len(fn.Signature.Params) {
			want = fn.Signature.Params[i]
		}
		args[i] = convertToParam(result, want)
	}

	return fn.Call(args)
}

func evaluateFunctionArg(arg ast.FunctionArg, current, root value.Value, registry *functions.Registry, evalQuery EvalFunc) (functions.Result, error) {
	switch arg.Kind() {
	case ast.FunctionArgLiteral:
		return functions.ValueResult(arg.Literal()), nil
	case ast.FunctionArgQuery:
		nl, err := evalQuery(arg.Query(), current, root)
		if err != nil {
			return functions.Result{}, err
		}
		return functions.NodesResult(nl), nil
	case ast.FunctionArgLogical:
		b, err := Evaluate(arg.Logical(), current, root, registry, evalQuery)
		if err != nil {
			return functions.Result{}, err
		}
		return functions.LogicalResult(b), nil
	case ast.FunctionArgFunctionCall:
		return evaluateFunctionCall(arg.Call(), current, root, registry, evalQuery)
	default:
		return functions.Result{}, nil
	}
}

// convertToParam applies the NodesType -> LogicalType / NodesType ->
// ValueType conversions of §2.4.2 when the argument's produced type
// doesn't already match the parameter's declared type.
func convertToParam(result functions.Result, want functions.Type) functions.Result {
	if result.Kind == want {
		return result
	}
	switch want {
	case functions.LogicalType:
		return functions.LogicalResult(result.AsLogical())
	case functions.ValueType:
		return functions.ValueResult(result.AsValue())
	default:
		return result
	}
}
