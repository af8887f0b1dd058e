package functions

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"go.pathkit.dev/jsonpath/internal/node"
	"go.pathkit.dev/jsonpath/internal/value"
)

func mustDecode(t *testing.T, s string) value.Value {
	t.Helper()
	v, err := value.DecodeBytes([]byte(s))
	if err != nil {
		t.Fatalf("DecodeBytes(%q): %v", s, err)
	}
	return v
}

func TestRegistryLookupBuiltins(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"length", "count", "match", "search", "value"} {
		if _, ok := r.Lookup(name); !ok {
			t.Errorf("expected builtin %q to be registered", name)
		}
	}
	if _, ok := r.Lookup("nope"); ok {
		t.Error("expected unregistered function to be absent")
	}
}

func TestLengthString(t *testing.T) {
	r := NewRegistry()
	fn, _ := r.Lookup("length")
	// U+1F600 is one Unicode scalar value, two UTF-16 code units.
	got, err := fn.Call([]Result{ValueResult(mustDecode(t, `"😀"`))})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	n, ok := got.Value.(value.Number)
	if !ok {
		t.Fatalf("result = %T, want Number", got.Value)
	}
	if i, _ := n.Int64(); i != 1 {
		t.Errorf("length(\"😀\") = %v, want 1", i)
	}
}

func TestLengthArrayAndObject(t *testing.T) {
	r := NewRegistry()
	fn, _ := r.Lookup("length")

	got, err := fn.Call([]Result{ValueResult(mustDecode(t, `[1,2,3]`))})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if i, _ := got.Value.(value.Number).Int64(); i != 3 {
		t.Errorf("length([1,2,3]) = %v, want 3", i)
	}

	got, err = fn.Call([]Result{ValueResult(mustDecode(t, `{"a":1,"b":2}`))})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if i, _ := got.Value.(value.Number).Int64(); i != 2 {
		t.Errorf("length({a,b}) = %v, want 2", i)
	}
}

func TestLengthNothingAndWrongKind(t *testing.T) {
	r := NewRegistry()
	fn, _ := r.Lookup("length")

	got, err := fn.Call([]Result{NothingResult()})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if got.Value != nil {
		t.Errorf("length(Nothing) = %v, want Nothing", got.Value)
	}

	got, err = fn.Call([]Result{ValueResult(mustDecode(t, `true`))})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if got.Value != nil {
		t.Errorf("length(true) = %v, want Nothing", got.Value)
	}
}

func TestCount(t *testing.T) {
	r := NewRegistry()
	fn, _ := r.Lookup("count")

	got, err := fn.Call([]Result{NodesResult(node.Nodelist{{}, {}, {}})})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if i, _ := got.Value.(value.Number).Int64(); i != 3 {
		t.Errorf("count(3 nodes) = %v, want 3", i)
	}
}

func TestValueFunc(t *testing.T) {
	r := NewRegistry()
	fn, _ := r.Lookup("value")

	v := mustDecode(t, `42`)
	got, err := fn.Call([]Result{NodesResult(node.Nodelist{{Value: v}})})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if got.Value != v {
		t.Errorf("value(singleton) = %v, want %v", got.Value, v)
	}

	got, err = fn.Call([]Result{NodesResult(node.Nodelist{{Value: v}, {Value: v}})})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if got.Value != nil {
		t.Error("value(2 nodes) should be Nothing")
	}
}

func TestMatchAnchored(t *testing.T) {
	r := NewRegistry()
	fn, _ := r.Lookup("match")

	got, err := fn.Call([]Result{
		ValueResult(mustDecode(t, `"abc"`)),
		ValueResult(mustDecode(t, `"a.c"`)),
	})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if !got.Logical {
		t.Error("match(\"abc\", \"a.c\") should be true (full match)")
	}

	got, err = fn.Call([]Result{
		ValueResult(mustDecode(t, `"xabcy"`)),
		ValueResult(mustDecode(t, `"abc"`)),
	})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if got.Logical {
		t.Error("match(\"xabcy\", \"abc\") should be false (not full match)")
	}
}

func TestMatchLeftmostFirstAlternationStillFullMatches(t *testing.T) {
	r := NewRegistry()
	fn, _ := r.Lookup("match")

	// Go's regexp is leftmost-first: an unanchored FindStringIndex for
	// "a|ab" against "ab" returns the shorter "a" match. match() must
	// still report true, since "ab" as a whole matches the pattern.
	got, err := fn.Call([]Result{
		ValueResult(mustDecode(t, `"ab"`)),
		ValueResult(mustDecode(t, `"a|ab"`)),
	})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if !got.Logical {
		t.Error(`match("ab", "a|ab") should be true (full match via the longer alternative)`)
	}
}

func TestSearchSubstring(t *testing.T) {
	r := NewRegistry()
	fn, _ := r.Lookup("search")

	got, err := fn.Call([]Result{
		ValueResult(mustDecode(t, `"xabcy"`)),
		ValueResult(mustDecode(t, `"abc"`)),
	})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if !got.Logical {
		t.Error("search(\"xabcy\", \"abc\") should be true")
	}
}

func TestMatchNonStringIsFalseNotError(t *testing.T) {
	r := NewRegistry()
	fn, _ := r.Lookup("match")

	got, err := fn.Call([]Result{
		ValueResult(mustDecode(t, `42`)),
		ValueResult(mustDecode(t, `"4."`)),
	})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if got.Logical {
		t.Error("match on a non-string subject should be false")
	}
}

func TestMatchNothingIsFalse(t *testing.T) {
	r := NewRegistry()
	fn, _ := r.Lookup("match")

	got, err := fn.Call([]Result{NothingResult(), ValueResult(mustDecode(t, `"a"`))})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if got.Logical {
		t.Error("match(Nothing, pattern) should be false")
	}
}

func TestRegexTimeoutOption(t *testing.T) {
	r := NewRegistry(WithRegexTimeout(10 * time.Millisecond))
	fn, _ := r.Lookup("match")
	_, err := fn.Call([]Result{
		ValueResult(mustDecode(t, `"abc"`)),
		ValueResult(mustDecode(t, `"abc"`)),
	})
	if err != nil {
		t.Fatalf("Call with short timeout on trivial pattern: %v", err)
	}
}

func TestLengthUUIDString(t *testing.T) {
	r := NewRegistry()
	fn, _ := r.Lookup("length")

	id := uuid.New().String()
	got, err := fn.Call([]Result{ValueResult(value.String(id))})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if i, _ := got.Value.(value.Number).Int64(); i != 36 {
		t.Errorf("length(%q) = %v, want 36", id, i)
	}
}

func TestMatchUUIDPattern(t *testing.T) {
	r := NewRegistry()
	fn, _ := r.Lookup("match")

	id := uuid.New().String()
	const uuidPattern = `[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`

	got, err := fn.Call([]Result{
		ValueResult(value.String(id)),
		ValueResult(value.String(uuidPattern)),
	})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if !got.Logical {
		t.Errorf("match(%q, canonical UUID pattern) should be true", id)
	}
}

func TestSearchUUIDSubstring(t *testing.T) {
	r := NewRegistry()
	fn, _ := r.Lookup("search")

	id := uuid.New().String()
	prefixed := "urn:uuid:" + id

	got, err := fn.Call([]Result{
		ValueResult(value.String(prefixed)),
		ValueResult(value.String(id)),
	})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if !got.Logical {
		t.Errorf("search(%q, %q) should be true", prefixed, id)
	}
}

func TestResultConversions(t *testing.T) {
	nl := node.Nodelist{{Value: mustDecode(t, `1`)}}
	r := NodesResult(nl)
	if !r.AsLogical() {
		t.Error("non-empty NodesType should convert to true")
	}
	if r.AsValue() == nil {
		t.Error("singleton NodesType should convert to its value")
	}

	empty := NodesResult(nil)
	if empty.AsLogical() {
		t.Error("empty NodesType should convert to false")
	}
	if empty.AsValue() != nil {
		t.Error("empty NodesType should convert to Nothing")
	}
}
