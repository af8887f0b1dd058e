package value

import "testing"

func mustDecode(t *testing.T, s string) Value {
	t.Helper()
	v, err := DecodeBytes([]byte(s))
	if err != nil {
		t.Fatalf("DecodeBytes(%q): %v", s, err)
	}
	return v
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"same_number", "13", "13.0", true},
		{"number_vs_string", "13", `"13"`, false},
		{"different_kinds_bool_number", "true", "1", false},
		{"equal_strings", `"x"`, `"x"`, true},
		{"equal_nulls", "null", "null", true},
		{"equal_arrays", "[1,2,3]", "[1,2,3]", true},
		{"unequal_arrays_order", "[1,2,3]", "[3,2,1]", false},
		{"equal_objects_key_order_irrelevant", `{"a":1,"b":2}`, `{"b":2,"a":1}`, true},
		{"unequal_objects_missing_key", `{"a":1}`, `{"a":1,"b":2}`, false},
		{"nested_structural_equality", `{"a":[1,{"c":true}]}`, `{"a":[1,{"c":true}]}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := mustDecode(t, tt.a)
			b := mustDecode(t, tt.b)
			if got := Equal(a, b); got != tt.want {
				t.Errorf("Equal(%s, %s) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestEqualNothingIsNilInterface(t *testing.T) {
	if !Equal(nil, nil) {
		t.Error("Equal(nil, nil) should be true (Nothing == Nothing)")
	}
	if Equal(nil, Null{}) {
		t.Error("Equal(nil, Null{}) should be false (Nothing != null)")
	}
}

func TestLess(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"numbers", "1", "2", true},
		{"numbers_reverse", "2", "1", false},
		{"strings", `"a"`, `"b"`, true},
		{"bools_false_lt_true", "false", "true", true},
		{"bools_true_not_lt_false", "true", "false", false},
		{"different_kinds", "1", `"1"`, false},
		{"arrays_never_less", "[1]", "[2]", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := mustDecode(t, tt.a)
			b := mustDecode(t, tt.b)
			if got := Less(a, b); got != tt.want {
				t.Errorf("Less(%s, %s) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
