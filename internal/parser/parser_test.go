package parser

import (
	"testing"

	"go.pathkit.dev/jsonpath/internal/ast"
	"go.pathkit.dev/jsonpath/internal/functions"
	"go.pathkit.dev/jsonpath/internal/value"
)

func mustParse(t *testing.T, query string) *ast.Query {
	t.Helper()
	q, err := Parse(query, functions.NewRegistry())
	if err != nil {
		t.Fatalf("Parse(%q): %v", query, err)
	}
	return q
}

func mustFail(t *testing.T, query string) {
	t.Helper()
	if _, err := Parse(query, functions.NewRegistry()); err == nil {
		t.Fatalf("Parse(%q): expected error, got nil", query)
	}
}

func TestParseRootRequired(t *testing.T) {
	mustFail(t, "a.b")
	mustParse(t, "$")
}

func TestParseDotNameShorthand(t *testing.T) {
	q := mustParse(t, "$.store.book")
	if len(q.Segments()) != 2 {
		t.Fatalf("got %d segments, want 2", len(q.Segments()))
	}
	for i, name := range []string{"store", "book"} {
		seg := q.Segments()[i]
		if seg.Kind() != ast.SegmentChild || len(seg.Selectors()) != 1 || seg.Selectors()[0].Name() != name {
			t.Errorf("segment %d = %+v, want Name(%q)", i, seg, name)
		}
	}
}

func TestParseWildcard(t *testing.T) {
	q := mustParse(t, "$.*")
	sel := q.Segments()[0].Selectors()[0]
	if sel.Kind() != ast.SelectorWildcard {
		t.Errorf("got %v, want SelectorWildcard", sel.Kind())
	}
}

func TestParseBracketedNameSelector(t *testing.T) {
	q := mustParse(t, `$['a','b']`)
	sels := q.Segments()[0].Selectors()
	if len(sels) != 2 || sels[0].Name() != "a" || sels[1].Name() != "b" {
		t.Fatalf("got %+v", sels)
	}
}

func TestParseIndexSelector(t *testing.T) {
	q := mustParse(t, "$[0]")
	sel := q.Segments()[0].Selectors()[0]
	if sel.Kind() != ast.SelectorIndex || sel.Index() != 0 {
		t.Fatalf("got %+v", sel)
	}

	q = mustParse(t, "$[-1]")
	sel = q.Segments()[0].Selectors()[0]
	if sel.Kind() != ast.SelectorIndex || sel.Index() != -1 {
		t.Fatalf("got %+v", sel)
	}
}

func TestParseSliceSelector(t *testing.T) {
	q := mustParse(t, "$[1:5:2]")
	sel := q.Segments()[0].Selectors()[0]
	if sel.Kind() != ast.SelectorSlice {
		t.Fatalf("got %v", sel.Kind())
	}
	if *sel.SliceStart() != 1 || *sel.SliceEnd() != 5 || *sel.SliceStep() != 2 {
		t.Fatalf("got start=%v end=%v step=%v", sel.SliceStart(), sel.SliceEnd(), sel.SliceStep())
	}
}

func TestParseSliceSelectorDefaults(t *testing.T) {
	q := mustParse(t, "$[::-1]")
	sel := q.Segments()[0].Selectors()[0]
	if sel.SliceStart() != nil || sel.SliceEnd() != nil {
		t.Fatalf("expected nil start/end, got start=%v end=%v", sel.SliceStart(), sel.SliceEnd())
	}
	if sel.SliceStep() == nil || *sel.SliceStep() != -1 {
		t.Fatalf("expected step -1, got %v", sel.SliceStep())
	}
}

func TestParseDescendantSegment(t *testing.T) {
	q := mustParse(t, "$..author")
	seg := q.Segments()[0]
	if seg.Kind() != ast.SegmentDescendant || seg.Selectors()[0].Name() != "author" {
		t.Fatalf("got %+v", seg)
	}

	q = mustParse(t, "$..*")
	seg = q.Segments()[0]
	if seg.Kind() != ast.SegmentDescendant || seg.Selectors()[0].Kind() != ast.SelectorWildcard {
		t.Fatalf("got %+v", seg)
	}

	q = mustParse(t, "$..[0]")
	seg = q.Segments()[0]
	if seg.Kind() != ast.SegmentDescendant || seg.Selectors()[0].Kind() != ast.SelectorIndex {
		t.Fatalf("got %+v", seg)
	}
}

func TestParseFilterExistence(t *testing.T) {
	q := mustParse(t, "$[?@.price]")
	sel := q.Segments()[0].Selectors()[0]
	if sel.Kind() != ast.SelectorFilter {
		t.Fatalf("got %v", sel.Kind())
	}
	if sel.Filter().Kind() != ast.FilterExistence {
		t.Fatalf("got %v, want FilterExistence", sel.Filter().Kind())
	}
}

func TestParseFilterComparison(t *testing.T) {
	q := mustParse(t, "$[?@.price<10]")
	expr := q.Segments()[0].Selectors()[0].Filter()
	if expr.Kind() != ast.FilterComparison {
		t.Fatalf("got %v", expr.Kind())
	}
	if expr.CompareOp() != ast.CompareLt {
		t.Fatalf("got %v, want CompareLt", expr.CompareOp())
	}
}

func TestParseFilterLogicalPrecedence(t *testing.T) {
	// !a && b || c  =>  ((!a) && b) || c
	q := mustParse(t, "$[?!@.a && @.b || @.c]")
	expr := q.Segments()[0].Selectors()[0].Filter()
	if expr.Kind() != ast.FilterOr {
		t.Fatalf("top-level = %v, want FilterOr", expr.Kind())
	}
	left := expr.Left()
	if left.Kind() != ast.FilterAnd {
		t.Fatalf("left of Or = %v, want FilterAnd", left.Kind())
	}
	if left.Left().Kind() != ast.FilterNot {
		t.Fatalf("left of And = %v, want FilterNot", left.Left().Kind())
	}
}

func TestParseFilterParens(t *testing.T) {
	q := mustParse(t, "$[?(@.a || @.b) && @.c]")
	expr := q.Segments()[0].Selectors()[0].Filter()
	if expr.Kind() != ast.FilterAnd {
		t.Fatalf("got %v, want FilterAnd", expr.Kind())
	}
	if expr.Left().Kind() != ast.FilterParen {
		t.Fatalf("got %v, want FilterParen", expr.Left().Kind())
	}
}

func TestParseSingularQueryRequiredOnComparisonSide(t *testing.T) {
	mustFail(t, "$[?@.*==1]")
	mustFail(t, "$[?@..a==1]")
	mustParse(t, "$[?@.a==1]")
	mustParse(t, "$[?@.a[0]==1]")
}

func TestParseFunctionCallWellTypedness(t *testing.T) {
	mustParse(t, `$[?length(@.a)==1]`)
	mustParse(t, `$[?count(@.*)==1]`)
	mustParse(t, `$[?match(@.a,'b.*')]`)
	mustParse(t, `$[?search(@.a,'b.*')]`)
	mustParse(t, `$[?value(@.a)==1]`)
}

func TestParseUnknownFunctionIsSyntaxError(t *testing.T) {
	mustFail(t, `$[?nope(@.a)]`)
}

func TestParseWrongArgCountIsSyntaxError(t *testing.T) {
	mustFail(t, `$[?length(@.a,@.b)]`)
	mustFail(t, `$[?length()]`)
}

func TestParseValueTypeFunctionCannotStandAlone(t *testing.T) {
	mustFail(t, `$[?length(@.a)]`)
}

func TestParseLogicalFunctionCanStandAlone(t *testing.T) {
	mustParse(t, `$[?match(@.a,'x')]`)
}

func TestParseNestedFunctionCallArgument(t *testing.T) {
	mustParse(t, `$[?length(value(@.a))==1]`)
}

func TestParseNonSingularQueryArgumentToValueTypeParam(t *testing.T) {
	mustFail(t, `$[?length(@.*)==1]`)
}

func TestParseAbsoluteQueryInFilter(t *testing.T) {
	mustParse(t, `$[?@.a==$.b]`)
}

func TestParseStringLiteralUnescaping(t *testing.T) {
	q := mustParse(t, `$[?@.a=="hi\nthere"]`)
	right := q.Segments()[0].Selectors()[0].Filter().CompareRight()
	str, ok := right.Literal().(value.String)
	if !ok {
		t.Fatalf("got %T, want value.String", right.Literal())
	}
	if string(str) != "hi\nthere" {
		t.Fatalf("got %q, want %q", str, "hi\nthere")
	}
}

func TestParseUnclosedBracket(t *testing.T) {
	mustFail(t, "$[0")
	mustFail(t, "$['a'")
}

func TestParseUnclosedParen(t *testing.T) {
	mustFail(t, "$[?(@.a]")
}

func TestParseTrailingGarbage(t *testing.T) {
	mustFail(t, "$.a extra")
}

func TestParseEmptyBracket(t *testing.T) {
	mustFail(t, "$[]")
}
