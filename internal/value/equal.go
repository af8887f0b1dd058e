package value

// Equal implements RFC 9535 Table 11's "==" semantics for two JSON
// values. A nil Value stands for Nothing: Nothing equals only Nothing.
// Values of different kinds are never equal.
//
// Generalized from scalar comparison to full structural equality on
// arrays and objects, as RFC 9535 §2.3.5.2.2 requires.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if a.Kind() != b.Kind() {
		return false
	}

	switch av := a.(type) {
	case Null:
		return true
	case Bool:
		bv := b.(Bool)
		return av == bv
	case String:
		bv := b.(String)
		return av == bv
	case Number:
		bv := b.(Number)
		return numbersEqual(av, bv)
	case Array:
		bv := b.(Array)
		return arraysEqual(av, bv)
	case *Object:
		bv := b.(*Object)
		return objectsEqual(av, bv)
	default:
		return false
	}
}

func numbersEqual(a, b Number) bool {
	if ai, aok := a.Int64(); aok {
		if bi, bok := b.Int64(); bok {
			return ai == bi
		}
	}
	af, aerr := a.Float64()
	bf, berr := b.Float64()
	if aerr != nil || berr != nil {
		return false
	}
	return af == bf
}

func arraysEqual(a, b Array) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func objectsEqual(a, b *Object) bool {
	if a.Len() != b.Len() {
		return false
	}
	ok := true
	a.Range(func(name string, av Value) bool {
		bv, present := b.Get(name)
		if !present || !Equal(av, bv) {
			ok = false
			return false
		}
		return true
	})
	return ok
}

// Less implements RFC 9535 Table 11's "<" semantics. It is false for
// any pairing not explicitly defined as true (different kinds, null,
// arrays, objects).
func Less(a, b Value) bool {
	if a == nil || b == nil {
		return false
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case Number:
		bv := b.(Number)
		af, aerr := av.Float64()
		bf, berr := bv.Float64()
		if aerr != nil || berr != nil {
			return false
		}
		return af < bf
	case String:
		bv := b.(String)
		return av < bv
	case Bool:
		bv := b.(Bool)
		return !bool(av) && bool(bv)
	default:
		return false
	}
}
