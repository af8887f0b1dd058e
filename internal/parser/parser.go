// Package parser builds the immutable AST (internal/ast) from a token
// stream (internal/lexer), enforcing RFC 9535's grammar and the
// parse-time well-typedness of function calls.
package parser

import (
	"encoding/json"
	"strconv"

	"go.pathkit.dev/jsonpath/internal/ast"
	"go.pathkit.dev/jsonpath/internal/functions"
	"go.pathkit.dev/jsonpath/internal/lexer"
	"go.pathkit.dev/jsonpath/internal/syntax"
	"go.pathkit.dev/jsonpath/internal/value"
)

// Parse lexes and parses a full JSONPath query, resolving function
// calls against registry for well-typedness checking.
func Parse(input string, registry *functions.Registry) (*ast.Query, error) {
	tokens, err := lexer.Lex(input)
	if err != nil {
		return nil, err
	}

	p := &parserState{tokens: tokens, registry: registry}

	if p.current().Kind != lexer.Root {
		return nil, syntax.Errorf(p.current().Pos, "query must start with '$'")
	}
	p.advance()

	segments, err := p.parseSegments()
	if err != nil {
		return nil, err
	}

	if tok := p.current(); tok.Kind != lexer.EOF {
		return nil, syntax.Errorf(tok.Pos, "unexpected token %q after query", tok.Text)
	}

	return ast.NewQuery(false, segments), nil
}

type parserState struct {
	tokens   []lexer.Token
	pos      int
	registry *functions.Registry
}

func (p *parserState) current() lexer.Token {
	if p.pos >= len(p.tokens) {
		return lexer.Token{Kind: lexer.EOF, Pos: len(p.tokens)}
	}
	return p.tokens[p.pos]
}

func (p *parserState) advance() lexer.Token {
	tok := p.current()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *parserState) check(kind lexer.Kind) bool {
	return p.current().Kind == kind
}

func (p *parserState) match(kind lexer.Kind) bool {
	if p.check(kind) {
		p.advance()
		return true
	}
	return false
}

func (p *parserState) consume(kind lexer.Kind, msg string) (lexer.Token, error) {
	if p.check(kind) {
		return p.advance(), nil
	}
	return lexer.Token{}, syntax.Errorf(p.current().Pos, "%s", msg)
}

// parseSegments parses zero or more Segments until a token that
// cannot start one is reached (EOF, or the closing token of an
// enclosing construct).
func (p *parserState) parseSegments() ([]ast.Segment, error) {
	var segments []ast.Segment
	for {
		switch p.current().Kind {
		case lexer.Dot:
			seg, err := p.parseDotSegment()
			if err != nil {
				return nil, err
			}
			segments = append(segments, seg)
		case lexer.DotDot:
			seg, err := p.parseDescendantSegment()
			if err != nil {
				return nil, err
			}
			segments = append(segments, seg)
		case lexer.LBracket:
			selectors, err := p.parseBracketedSelectors()
			if err != nil {
				return nil, err
			}
			segments = append(segments, ast.NewSegment(ast.SegmentChild, selectors))
		default:
			return segments, nil
		}
	}
}

// parseDotSegment handles '.' name-shorthand or '.' '*'.
func (p *parserState) parseDotSegment() (ast.Segment, error) {
	p.advance() // '.'
	tok := p.current()
	switch tok.Kind {
	case lexer.Star:
		p.advance()
		return ast.NewSegment(ast.SegmentChild, []ast.Selector{ast.NewWildcardSelector()}), nil
	case lexer.Name:
		p.advance()
		return ast.NewSegment(ast.SegmentChild, []ast.Selector{ast.NewNameSelector(tok.Text)}), nil
	default:
		return ast.Segment{}, syntax.Errorf(tok.Pos, "expected member name or '*' after '.'")
	}
}

// parseDescendantSegment handles '..' name, '..' '*', and
// '..' '[' SelectorList ']'.
func (p *parserState) parseDescendantSegment() (ast.Segment, error) {
	p.advance() // '..'
	tok := p.current()
	switch tok.Kind {
	case lexer.Star:
		p.advance()
		return ast.NewSegment(ast.SegmentDescendant, []ast.Selector{ast.NewWildcardSelector()}), nil
	case lexer.Name:
		p.advance()
		return ast.NewSegment(ast.SegmentDescendant, []ast.Selector{ast.NewNameSelector(tok.Text)}), nil
	case lexer.LBracket:
		selectors, err := p.parseBracketedSelectors()
		if err != nil {
			return ast.Segment{}, err
		}
		return ast.NewSegment(ast.SegmentDescendant, selectors), nil
	default:
		return ast.Segment{}, syntax.Errorf(tok.Pos, "expected member name, '*', or '[' after '..'")
	}
}

func (p *parserState) parseBracketedSelectors() ([]ast.Selector, error) {
	p.advance() // '['
	var selectors []ast.Selector
	for {
		sel, err := p.parseSelector()
		if err != nil {
			return nil, err
		}
		selectors = append(selectors, sel)

		if p.match(lexer.Comma) {
			continue
		}
		if _, err := p.consume(lexer.RBracket, "expected ',' or ']'"); err != nil {
			return nil, err
		}
		return selectors, nil
	}
}

func (p *parserState) parseSelector() (ast.Selector, error) {
	tok := p.current()
	switch tok.Kind {
	case lexer.String:
		p.advance()
		name, err := unescapeString(tok.Text, tok.Pos)
		if err != nil {
			return ast.Selector{}, err
		}
		return ast.NewNameSelector(name), nil
	case lexer.Star:
		p.advance()
		return ast.NewWildcardSelector(), nil
	case lexer.Question:
		p.advance()
		expr, err := p.parseLogicalOr()
		if err != nil {
			return ast.Selector{}, err
		}
		return ast.NewFilterSelector(expr), nil
	case lexer.Number:
		return p.parseIndexOrSlice()
	case lexer.Colon:
		return p.parseSliceFrom(nil)
	default:
		return ast.Selector{}, syntax.Errorf(tok.Pos, "expected selector")
	}
}

// parseIndexOrSlice parses a leading signed integer and then decides,
// based on whether a ':' follows, between an Index selector and a
// Slice selector.
func (p *parserState) parseIndexOrSlice() (ast.Selector, error) {
	n, err := p.parseSignedInt()
	if err != nil {
		return ast.Selector{}, err
	}

	if p.check(lexer.Colon) {
		return p.parseSliceFrom(&n)
	}
	return ast.NewIndexSelector(n), nil
}

// parseSliceFrom continues a slice selector after its optional start
// value has already been consumed (start is nil if the slice began
// with a bare ':').
func (p *parserState) parseSliceFrom(start *int) (ast.Selector, error) {
	if _, err := p.consume(lexer.Colon, "expected ':'"); err != nil {
		return ast.Selector{}, err
	}

	var end, step *int

	if p.check(lexer.Number) {
		n, err := p.parseSignedInt()
		if err != nil {
			return ast.Selector{}, err
		}
		end = &n
	}

	if p.match(lexer.Colon) {
		if p.check(lexer.Number) {
			n, err := p.parseSignedInt()
			if err != nil {
				return ast.Selector{}, err
			}
			step = &n
		}
	}

	return ast.NewSliceSelector(start, end, step), nil
}

// parseSignedInt parses a JSON-number-syntax integer token as a Go
// int, rejecting fractional or exponent forms (array indices and
// slice bounds are integers only).
func (p *parserState) parseSignedInt() (int, error) {
	tok := p.current()
	if tok.Kind != lexer.Number {
		return 0, syntax.Errorf(tok.Pos, "expected integer")
	}
	p.advance()

	n, err := strconv.ParseInt(tok.Text, 10, 64)
	if err != nil {
		return 0, syntax.Errorf(tok.Pos, "invalid integer %q", tok.Text)
	}
	return int(n), nil
}

// --- Filter expression grammar -------------------------------------

func (p *parserState) parseLogicalOr() (*ast.FilterExpr, error) {
	left, err := p.parseLogicalAnd()
	if err != nil {
		return nil, err
	}
	for p.match(lexer.Or) {
		right, err := p.parseLogicalAnd()
		if err != nil {
			return nil, err
		}
		left = ast.NewOrExpr(left, right)
	}
	return left, nil
}

func (p *parserState) parseLogicalAnd() (*ast.FilterExpr, error) {
	left, err := p.parseLogicalNot()
	if err != nil {
		return nil, err
	}
	for p.match(lexer.And) {
		right, err := p.parseLogicalNot()
		if err != nil {
			return nil, err
		}
		left = ast.NewAndExpr(left, right)
	}
	return left, nil
}

func (p *parserState) parseLogicalNot() (*ast.FilterExpr, error) {
	if p.match(lexer.Not) {
		operand, err := p.parseLogicalNot()
		if err != nil {
			return nil, err
		}
		return ast.NewNotExpr(operand), nil
	}
	return p.parsePrimary()
}

func (p *parserState) parsePrimary() (*ast.FilterExpr, error) {
	tok := p.current()

	if tok.Kind == lexer.LParen {
		p.advance()
		expr, err := p.parseLogicalOr()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(lexer.RParen, "expected ')'"); err != nil {
			return nil, err
		}
		return ast.NewParenExpr(expr), nil
	}

	if tok.Kind == lexer.Root || tok.Kind == lexer.Current {
		return p.parseQueryOrComparison()
	}

	if tok.Kind == lexer.FuncName {
		return p.parseFunctionCallOrComparison()
	}

	if isComparableLiteralStart(tok.Kind) {
		return p.parseLiteralComparison()
	}

	return nil, syntax.Errorf(tok.Pos, "expected filter expression")
}

func isComparableLiteralStart(k lexer.Kind) bool {
	switch k {
	case lexer.String, lexer.Number, lexer.True, lexer.False, lexer.Null:
		return true
	default:
		return false
	}
}

// parseQueryOrComparison parses a relative or absolute query and
// decides, by lookahead, whether it stands alone as an existence
// test or is the left side of a comparison.
func (p *parserState) parseQueryOrComparison() (*ast.FilterExpr, error) {
	tok := p.current()
	q, err := p.parseQuery()
	if err != nil {
		return nil, err
	}

	if op, ok := p.matchCompareOp(); ok {
		left := ast.NewQueryComparable(q)
		right, err := p.parseComparable()
		if err != nil {
			return nil, err
		}
		if err := checkSingularQuerySide(left, tok.Pos); err != nil {
			return nil, err
		}
		if err := checkSingularQuerySide(right, tok.Pos); err != nil {
			return nil, err
		}
		return ast.NewComparisonExpr(op, left, right), nil
	}

	return ast.NewExistenceExpr(q), nil
}

// parseFunctionCallOrComparison parses a function call and decides,
// by lookahead, whether it is compared against another operand or
// stands alone as a LogicalType/NodesType predicate.
func (p *parserState) parseFunctionCallOrComparison() (*ast.FilterExpr, error) {
	nameTok := p.current()
	call, sig, err := p.parseFunctionCall()
	if err != nil {
		return nil, err
	}

	if op, ok := p.matchCompareOp(); ok {
		if sig.Result != functions.ValueType {
			return nil, syntax.Errorf(nameTok.Pos, "function %q used as a comparison operand must return ValueType", call.Name())
		}
		left := ast.NewFunctionCallComparable(call)
		right, err := p.parseComparable()
		if err != nil {
			return nil, err
		}
		if err := checkSingularQuerySide(right, p.current().Pos); err != nil {
			return nil, err
		}
		return ast.NewComparisonExpr(op, left, right), nil
	}

	if sig.Result == functions.ValueType {
		return nil, syntax.Errorf(nameTok.Pos, "function %q returns ValueType and cannot stand alone as a filter expression", call.Name())
	}
	return ast.NewFunctionCallExpr(call), nil
}

func (p *parserState) parseLiteralComparison() (*ast.FilterExpr, error) {
	left, err := p.parseComparable()
	if err != nil {
		return nil, err
	}
	op, ok := p.matchCompareOp()
	if !ok {
		return nil, syntax.Errorf(p.current().Pos, "expected comparison operator")
	}
	right, err := p.parseComparable()
	if err != nil {
		return nil, err
	}
	if err := checkSingularQuerySide(right, p.current().Pos); err != nil {
		return nil, err
	}
	return ast.NewComparisonExpr(op, left, right), nil
}

func (p *parserState) matchCompareOp() (ast.CompareOp, bool) {
	switch p.current().Kind {
	case lexer.Eq:
		p.advance()
		return ast.CompareEq, true
	case lexer.Ne:
		p.advance()
		return ast.CompareNe, true
	case lexer.Lt:
		p.advance()
		return ast.CompareLt, true
	case lexer.Le:
		p.advance()
		return ast.CompareLe, true
	case lexer.Gt:
		p.advance()
		return ast.CompareGt, true
	case lexer.Ge:
		p.advance()
		return ast.CompareGe, true
	default:
		return 0, false
	}
}

// parseComparable parses one operand of a comparison: a literal, a
// query, or a function call.
func (p *parserState) parseComparable() (*ast.Comparable, error) {
	tok := p.current()
	switch tok.Kind {
	case lexer.Root, lexer.Current:
		q, err := p.parseQuery()
		if err != nil {
			return nil, err
		}
		return ast.NewQueryComparable(q), nil
	case lexer.FuncName:
		call, sig, err := p.parseFunctionCall()
		if err != nil {
			return nil, err
		}
		if sig.Result != functions.ValueType {
			return nil, syntax.Errorf(tok.Pos, "function %q used as a comparison operand must return ValueType", call.Name())
		}
		return ast.NewFunctionCallComparable(call), nil
	case lexer.String:
		p.advance()
		s, err := unescapeString(tok.Text, tok.Pos)
		if err != nil {
			return nil, err
		}
		return ast.NewLiteralComparable(value.String(s)), nil
	case lexer.Number:
		p.advance()
		return ast.NewLiteralComparable(value.NewNumber(json.Number(tok.Text))), nil
	case lexer.True:
		p.advance()
		return ast.NewLiteralComparable(value.Bool(true)), nil
	case lexer.False:
		p.advance()
		return ast.NewLiteralComparable(value.Bool(false)), nil
	case lexer.Null:
		p.advance()
		return ast.NewLiteralComparable(value.Null{}), nil
	default:
		return nil, syntax.Errorf(tok.Pos, "expected literal, query, or function call")
	}
}

// checkSingularQuerySide enforces the invariant that a query used as
// a comparison operand must be singular (Name/Index selectors only).
// Non-query operands (literals, function calls) are always fine.
func checkSingularQuerySide(c *ast.Comparable, pos int) error {
	if c.Kind() != ast.ComparableQuery {
		return nil
	}
	if !c.Query().IsSingular() {
		return syntax.Errorf(pos, "comparison operand must be a singular query")
	}
	return nil
}

// parseQuery parses a relative (@) or absolute ($) query: the leading
// identifier plus zero or more segments.
func (p *parserState) parseQuery() (*ast.Query, error) {
	tok := p.advance()
	relative := tok.Kind == lexer.Current

	segments, err := p.parseSegments()
	if err != nil {
		return nil, err
	}
	return ast.NewQuery(relative, segments), nil
}

// parseFunctionCall parses a function call and validates its
// well-typedness against the registry, returning the call AST node
// and its resolved signature.
func (p *parserState) parseFunctionCall() (*ast.FunctionCall, functions.Signature, error) {
	nameTok := p.advance() // FuncName
	fn, ok := p.registry.Lookup(nameTok.Text)
	if !ok {
		return nil, functions.Signature{}, syntax.Errorf(nameTok.Pos, "unknown function %q", nameTok.Text)
	}

	if _, err := p.consume(lexer.LParen, "expected '(' after function name"); err != nil {
		return nil, functions.Signature{}, err
	}

	var args []ast.FunctionArg
	if !p.check(lexer.RParen) {
		for {
			arg, argType, pos, err := p.parseFunctionArg()
			if err != nil {
				return nil, functions.Signature{}, err
			}
			if len(args) < len(fn.Signature.Params) {
				want := fn.Signature.Params[len(args)]
				if !typeCompatible(want, argType, arg) {
					return nil, functions.Signature{}, syntax.Errorf(pos, "argument %d of function %q must be %s, got %s", len(args)+1, nameTok.Text, want, argType)
				}
			}
			args = append(args, arg)
			if !p.match(lexer.Comma) {
				break
			}
		}
	}

	if _, err := p.consume(lexer.RParen, "expected ')'"); err != nil {
		return nil, functions.Signature{}, err
	}

	if len(args) != len(fn.Signature.Params) {
		return nil, functions.Signature{}, syntax.Errorf(nameTok.Pos, "function %q expects %d arguments, got %d", nameTok.Text, len(fn.Signature.Params), len(args))
	}

	return ast.NewFunctionCall(nameTok.Text, args), fn.Signature, nil
}

// parseFunctionArg parses one function argument and reports its
// inferred type for well-typedness checking by the caller.
func (p *parserState) parseFunctionArg() (ast.FunctionArg, functions.Type, int, error) {
	tok := p.current()
	switch tok.Kind {
	case lexer.Root, lexer.Current:
		q, err := p.parseQuery()
		if err != nil {
			return ast.FunctionArg{}, 0, 0, err
		}
		return ast.NewQueryArg(q), functions.NodesType, tok.Pos, nil
	case lexer.FuncName:
		call, sig, err := p.parseFunctionCall()
		if err != nil {
			return ast.FunctionArg{}, 0, 0, err
		}
		return ast.NewFunctionCallArg(call), sig.Result, tok.Pos, nil
	case lexer.String:
		p.advance()
		s, err := unescapeString(tok.Text, tok.Pos)
		if err != nil {
			return ast.FunctionArg{}, 0, 0, err
		}
		return ast.NewLiteralArg(value.String(s)), functions.ValueType, tok.Pos, nil
	case lexer.Number:
		p.advance()
		return ast.NewLiteralArg(value.NewNumber(json.Number(tok.Text))), functions.ValueType, tok.Pos, nil
	case lexer.True:
		p.advance()
		return ast.NewLiteralArg(value.Bool(true)), functions.ValueType, tok.Pos, nil
	case lexer.False:
		p.advance()
		return ast.NewLiteralArg(value.Bool(false)), functions.ValueType, tok.Pos, nil
	case lexer.Null:
		p.advance()
		return ast.NewLiteralArg(value.Null{}), functions.ValueType, tok.Pos, nil
	case lexer.Not, lexer.LParen:
		expr, err := p.parseLogicalOr()
		if err != nil {
			return ast.FunctionArg{}, 0, 0, err
		}
		return ast.NewLogicalArg(expr), functions.LogicalType, tok.Pos, nil
	default:
		return ast.FunctionArg{}, 0, 0, syntax.Errorf(tok.Pos, "expected function argument")
	}
}

// typeCompatible applies the conversion rules of §4.5.2/§4.5.3 at
// function-call boundaries: a NodesType argument (query) may satisfy
// a LogicalType parameter unconditionally, or a ValueType parameter
// only if the query is singular.
func typeCompatible(want, got functions.Type, arg ast.FunctionArg) bool {
	if want == got {
		return true
	}
	if got == functions.NodesType {
		if want == functions.LogicalType {
			return true
		}
		if want == functions.ValueType && arg.Kind() == ast.FunctionArgQuery && arg.Query().IsSingular() {
			return true
		}
	}
	return false
}
