package jsonpath

import (
	"io"

	"go.pathkit.dev/jsonpath/internal/value"
)

// Value is an immutable JSON value: one of Null, Bool, Number, String,
// Array, or *Object. It is the contract the engine evaluates queries
// against (§6's "external JSON library" interface), implemented here
// directly rather than left abstract, since a usable library needs a
// concrete decoder.
type Value = value.Value

type (
	Null   = value.Null
	Bool   = value.Bool
	Number = value.Number
	String = value.String
	Array  = value.Array
	Object = value.Object
)

// NewObject builds an empty, order-preserving Object.
func NewObject() *Object { return value.NewObject() }

// NumberFromInt64 builds a Number from an exact integer.
func NumberFromInt64(n int64) Number { return value.NumberFromInt64(n) }

// NumberFromFloat64 builds a Number from a double-precision value.
func NumberFromFloat64(f float64) Number { return value.NumberFromFloat64(f) }

// Decode reads exactly one JSON value, preserving object member
// order, which query results must reflect deterministically.
func Decode(r io.Reader) (Value, error) {
	return value.Decode(r)
}

// DecodeBytes decodes a JSON document held entirely in memory.
func DecodeBytes(data []byte) (Value, error) {
	return value.DecodeBytes(data)
}
