package value

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrMalformed indicates the JSON input is structurally invalid.
var ErrMalformed = errors.New("value: malformed JSON input")

// Decode reads exactly one JSON value from r, preserving object member
// order, by walking encoding/json's token stream directly instead of
// unmarshaling into map[string]any (which makes no order guarantee),
// building an order-preserving Object as it goes.
func Decode(r io.Reader) (Value, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("value: reading token: %w", err)
	}

	v, err := decodeValue(dec, tok)
	if err != nil {
		return nil, err
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after document", ErrMalformed)
	}

	return v, nil
}

// DecodeBytes decodes a JSON document held entirely in memory.
func DecodeBytes(data []byte) (Value, error) {
	return Decode(bytes.NewReader(data))
}

func decodeValue(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		default:
			return nil, fmt.Errorf("%w: unexpected delimiter %q", ErrMalformed, t)
		}
	case json.Number:
		return NewNumber(t), nil
	case string:
		return String(t), nil
	case bool:
		return Bool(t), nil
	case nil:
		return Null{}, nil
	default:
		return nil, fmt.Errorf("%w: unexpected token %v", ErrMalformed, tok)
	}
}

func decodeObject(dec *json.Decoder) (Value, error) {
	obj := NewObject()
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("value: reading object member: %w", err)
		}
		if d, ok := tok.(json.Delim); ok && d == '}' {
			return obj, nil
		}

		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: object key is not a string", ErrMalformed)
		}

		valueTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("value: reading object value: %w", err)
		}
		v, err := decodeValue(dec, valueTok)
		if err != nil {
			return nil, err
		}
		obj.Set(key, v)
	}
}

func decodeArray(dec *json.Decoder) (Value, error) {
	arr := make(Array, 0)
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("value: reading array element: %w", err)
		}
		if d, ok := tok.(json.Delim); ok && d == ']' {
			return arr, nil
		}
		v, err := decodeValue(dec, tok)
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
}
