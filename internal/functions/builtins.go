package functions

import (
	"unicode/utf8"

	"go.pathkit.dev/jsonpath/internal/value"
)

// lengthFunc implements RFC 9535 §2.4.4: string length in Unicode
// scalar values, array element count, or object member count. Any
// other kind, or Nothing, yields Nothing.
func lengthFunc(args []Result) (Result, error) {
	if err := checkArgCount(args, 1); err != nil {
		return Result{}, err
	}
	v := args[0].AsValue()
	if v == nil {
		return NothingResult(), nil
	}

	switch v.Kind() {
	case value.KindString:
		s, ok := v.(value.String)
		if !ok {
			return NothingResult(), nil
		}
		return ValueResult(value.NumberFromInt64(int64(utf8.RuneCountInString(string(s))))), nil
	case value.KindArray:
		arr, ok := v.(value.Array)
		if !ok {
			return NothingResult(), nil
		}
		return ValueResult(value.NumberFromInt64(int64(arr.Len()))), nil
	case value.KindObject:
		obj, ok := v.(*value.Object)
		if !ok {
			return NothingResult(), nil
		}
		return ValueResult(value.NumberFromInt64(int64(obj.Len()))), nil
	default:
		return NothingResult(), nil
	}
}

// countFunc implements RFC 9535 §2.4.5: the number of nodes in a
// nodelist, as a ValueType integer.
func countFunc(args []Result) (Result, error) {
	if err := checkArgCount(args, 1); err != nil {
		return Result{}, err
	}
	return ValueResult(value.NumberFromInt64(int64(len(args[0].Nodes)))), nil
}

// valueFunc implements RFC 9535 §2.4.8: a singleton nodelist reduces
// to its value; anything else (empty or multi-valued) is Nothing.
func valueFunc(args []Result) (Result, error) {
	if err := checkArgCount(args, 1); err != nil {
		return Result{}, err
	}
	v, ok := args[0].Nodes.Single()
	if !ok {
		return NothingResult(), nil
	}
	return ValueResult(v), nil
}

func asMatchStrings(args []Result) (subject, pattern string, ok bool) {
	sv, pv := args[0].AsValue(), args[1].AsValue()
	if sv == nil || pv == nil {
		return "", "", false
	}
	ss, sok := sv.(value.String)
	ps, pok := pv.(value.String)
	if !sok || !pok {
		return "", "", false
	}
	return string(ss), string(ps), true
}

// matchFunc implements RFC 9535 §2.4.6: anchored full-string match
// against an I-Regexp pattern.
func (r *Registry) matchFunc(args []Result) (Result, error) {
	if err := checkArgCount(args, 2); err != nil {
		return Result{}, err
	}
	subject, pattern, ok := asMatchStrings(args)
	if !ok {
		return LogicalResult(false), nil
	}
	matched, err := r.regex.fullMatch(pattern, subject)
	if err != nil {
		return Result{}, err
	}
	return LogicalResult(matched), nil
}

// searchFunc implements RFC 9535 §2.4.7: substring match against an
// I-Regexp pattern.
func (r *Registry) searchFunc(args []Result) (Result, error) {
	if err := checkArgCount(args, 2); err != nil {
		return Result{}, err
	}
	subject, pattern, ok := asMatchStrings(args)
	if !ok {
		return LogicalResult(false), nil
	}
	matched, err := r.regex.containsMatch(pattern, subject)
	if err != nil {
		return Result{}, err
	}
	return LogicalResult(matched), nil
}
