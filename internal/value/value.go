// Package value is the dynamic value model used by the reference codec.
//
// Values are schema-free: a struct is an Object keyed by field name, and a
// union is either a decoded Variant or, on input, an Object with exactly one
// key naming the variant ({"RunRequest": {...}}). Both render the same in
// canonical JSON.
//
// Key constraints:
//   - NO floats and NO null; integers are int64
//   - Object keys iterate in RFC 8785 order via SortedKeys
package value

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"unicode/utf16"
)

// Value is a sealed interface: only Bool, Int, String, Array, Object and
// Variant implement it.
type Value interface {
	value()
}

// Bool is a boolean.
type Bool bool

func (Bool) value() {}

// Int is an integer. Range checks against a wire type happen at encode time.
type Int int64

func (Int) value() {}

// String is a UTF-8 string.
type String string

func (String) value() {}

// Array is an ordered list of values.
type Array []Value

func (Array) value() {}

// Object maps struct field names to values. Use SortedKeys for
// deterministic iteration.
type Object map[string]Value

func (Object) value() {}

// Variant is one alternative of a union, named by its declaration.
type Variant struct {
	Name  string
	Value Value
}

func (Variant) value() {}

// Pair is a key-value pair for ordered Object construction.
type Pair struct {
	Key   string
	Value Value
}

// O is shorthand for Pair.
// Example: NewObject(O("key", String("a")), O("val", String("b")))
func O(key string, v Value) Pair {
	return Pair{Key: key, Value: v}
}

// NewObject builds an Object from pairs.
func NewObject(pairs ...Pair) Object {
	obj := make(Object, len(pairs))
	for _, p := range pairs {
		obj[p.Key] = p.Value
	}
	return obj
}

// SortedKeys returns keys in RFC 8785 canonical order (UTF-16 code units).
func (obj Object) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysRFC8785)
	return keys
}

// compareKeysRFC8785 compares strings by UTF-16 code units. Go's string
// comparison uses UTF-8 bytes, which orders some keys differently.
func compareKeysRFC8785(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))
	return slices.Compare(a16, b16)
}

// FromAny converts a decoded JSON or YAML document into a Value. Numbers
// must be integral.
func FromAny(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return nil, fmt.Errorf("null is not a value")
	case Value:
		return val, nil
	case bool:
		return Bool(val), nil
	case string:
		return String(val), nil
	case int:
		return Int(val), nil
	case int64:
		return Int(val), nil
	case uint64:
		if val > 1<<63-1 {
			return nil, fmt.Errorf("integer %d out of range", val)
		}
		return Int(val), nil
	case float64:
		if val != float64(int64(val)) {
			return nil, fmt.Errorf("floats are not values: %v", val)
		}
		return Int(int64(val)), nil
	case json.Number:
		i, err := val.Int64()
		if err != nil {
			return nil, fmt.Errorf("floats are not values: %s", val)
		}
		return Int(i), nil
	case []any:
		arr := make(Array, len(val))
		for i, elem := range val {
			e, err := FromAny(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			arr[i] = e
		}
		return arr, nil
	case map[string]any:
		obj := make(Object, len(val))
		for k, elem := range val {
			e, err := FromAny(elem)
			if err != nil {
				return nil, fmt.Errorf("[%q]: %w", k, err)
			}
			obj[k] = e
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}

// FromJSON parses a JSON document into a Value.
func FromJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("parse JSON value: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("parse JSON value: trailing data")
	}
	return FromAny(raw)
}
