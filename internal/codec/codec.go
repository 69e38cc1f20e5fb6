// Package codec encodes and decodes dynamic values against a compiled
// schema. It follows the generated code byte for byte and reports the same
// wire.EncodeError and wire.DecodeError values, so it serves as the oracle
// for emitted codecs and as the engine behind the encode and decode
// commands.
package codec

import (
	"errors"
	"fmt"

	"github.com/roach88/wiregen/internal/ir"
	"github.com/roach88/wiregen/internal/value"
	"github.com/roach88/wiregen/internal/wire"
)

var (
	ErrNoDecl         = errors.New("codec: no such declaration")
	ErrTypeMismatch   = errors.New("codec: value does not match type")
	ErrMissingField   = errors.New("codec: missing field")
	ErrUnknownField   = errors.New("codec: unknown field")
	ErrUnknownVariant = errors.New("codec: unknown variant")
)

// Encode writes v as the declaration named decl. Aliases are followed.
func Encode(s *ir.Schema, decl string, v value.Value) ([]byte, error) {
	d, ok := s.LookupResolved(decl)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrNoDecl, decl)
	}
	var b wire.Buffer
	if err := EncodeTo(&b, s, d, v); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// EncodeTo appends v as d to b. On failure b is left as it was.
func EncodeTo(b *wire.Buffer, s *ir.Schema, d *ir.Decl, v value.Value) error {
	e := encoder{schema: s}
	return e.decl(b, d, v)
}

// Decode reads exactly one d from data. Trailing bytes are an error.
func Decode(s *ir.Schema, decl string, data []byte) (value.Value, error) {
	d, ok := s.LookupResolved(decl)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrNoDecl, decl)
	}
	c := wire.NewCursor(data)
	v, err := DecodeFrom(c, s, d)
	if err != nil {
		return nil, err
	}
	if n := c.Remaining(); n > 0 {
		return nil, &wire.DecodeError{
			Type:   d.Name,
			Offset: c.Offset(),
			Err:    fmt.Errorf("%w (%d)", wire.ErrTrailingBytes, n),
		}
	}
	return v, nil
}

// DecodeFrom reads one d from c. On failure c is left where it was.
func DecodeFrom(c *wire.Cursor, s *ir.Schema, d *ir.Decl) (value.Value, error) {
	dec := decoder{schema: s}
	return dec.decl(c, d)
}

type encoder struct {
	schema *ir.Schema
}

func (e encoder) decl(b *wire.Buffer, d *ir.Decl, v value.Value) (err error) {
	mark := b.Len()
	defer func() {
		if err != nil {
			b.Truncate(mark)
		}
	}()

	if st, ok := d.Struct(); ok {
		return e.structFields(b, d.Name, st, v)
	}
	u, _ := d.Union()
	name, payload, err := variantOf(d.Name, v)
	if err != nil {
		return err
	}
	tag, vd, err := e.variant(d.Name, u, name)
	if err != nil {
		return err
	}
	b.WriteUint8(tag)
	return e.decl(b, vd, payload)
}

func (e encoder) structFields(b *wire.Buffer, decl string, st *ir.Struct, v value.Value) error {
	obj, ok := v.(value.Object)
	if !ok {
		return mismatch(decl, "object", v)
	}
	for _, key := range obj.SortedKeys() {
		if !hasField(st, key) {
			return &wire.EncodeError{Type: decl, Err: fmt.Errorf("%w %q", ErrUnknownField, key)}
		}
	}
	for _, f := range st.Fields {
		fv, ok := obj[f.Name]
		if !ok {
			return &wire.EncodeError{Type: decl, Err: fmt.Errorf("%w %q", ErrMissingField, f.Name)}
		}
		if err := e.typ(b, f.Type, fv); err != nil {
			return err
		}
	}
	return nil
}

// variant finds the 1-based tag and declaration for a variant name. Both the
// written name and the declaration an alias resolves to are accepted.
func (e encoder) variant(union string, u *ir.Union, name string) (uint8, *ir.Decl, error) {
	resolved := e.schema.VariantNames(u)
	for i, ref := range u.Variants {
		if ref.Name != name && resolved[i] != name {
			continue
		}
		d, ok := e.schema.LookupResolved(ref.Name)
		if !ok {
			break
		}
		return uint8(i + 1), d, nil
	}
	return 0, nil, &wire.EncodeError{Type: union, Err: fmt.Errorf("%w %q", ErrUnknownVariant, name)}
}

func (e encoder) typ(b *wire.Buffer, t ir.Type, v value.Value) (err error) {
	switch t := t.(type) {
	case ir.Array:
		arr, ok := v.(value.Array)
		if !ok {
			return mismatch("array", "array", v)
		}
		if len(arr) > wire.MaxArrayLen {
			return &wire.EncodeError{Type: "array", Err: wire.ErrArrayTooLong}
		}
		mark := b.Len()
		defer func() {
			if err != nil {
				b.Truncate(mark)
			}
		}()
		b.WriteUint8(uint8(len(arr)))
		for _, elem := range arr {
			if err := e.typ(b, t.Elem, elem); err != nil {
				return err
			}
		}
		return nil
	case ir.Ref:
		r, err := e.schema.Resolve(t)
		if err != nil {
			return err
		}
		if r.IsPrimitive() {
			return primitive(b, r.Primitive, v)
		}
		return e.decl(b, r.Decl, v)
	}
	return fmt.Errorf("codec: unexpected type %T", t)
}

func primitive(b *wire.Buffer, p ir.Primitive, v value.Value) error {
	switch p {
	case ir.Boolean:
		x, ok := v.(value.Bool)
		if !ok {
			return mismatch(string(p), "boolean", v)
		}
		b.WriteBoolean(bool(x))
		return nil
	case ir.Uint8, ir.Uint16:
		x, ok := v.(value.Int)
		if !ok {
			return mismatch(string(p), "integer", v)
		}
		limit := value.Int(1<<8 - 1)
		if p == ir.Uint16 {
			limit = 1<<16 - 1
		}
		if x < 0 || x > limit {
			return &wire.EncodeError{Type: string(p), Err: fmt.Errorf("%w: %d", wire.ErrOutOfRange, x)}
		}
		if p == ir.Uint8 {
			b.WriteUint8(uint8(x))
		} else {
			b.WriteUint16(uint16(x))
		}
		return nil
	case ir.String:
		x, ok := v.(value.String)
		if !ok {
			return mismatch(string(p), "string", v)
		}
		return b.WriteString(string(x))
	}
	return fmt.Errorf("codec: unknown primitive %q", p)
}

// variantOf accepts a Variant or an object with a single key naming the
// variant.
func variantOf(union string, v value.Value) (string, value.Value, error) {
	switch x := v.(type) {
	case value.Variant:
		if x.Value == nil {
			return "", nil, &wire.EncodeError{Type: union, Err: fmt.Errorf("%w %q", wire.ErrNoVariant, x.Name)}
		}
		return x.Name, x.Value, nil
	case value.Object:
		if len(x) != 1 {
			return "", nil, &wire.EncodeError{
				Type: union,
				Err:  fmt.Errorf("%w: union object needs exactly one key, got %d", ErrTypeMismatch, len(x)),
			}
		}
		for name, payload := range x {
			return name, payload, nil
		}
	}
	return "", nil, mismatch(union, "variant", v)
}

type decoder struct {
	schema *ir.Schema
}

func (dec decoder) decl(c *wire.Cursor, d *ir.Decl) (v value.Value, err error) {
	off := c.Offset()
	defer func() {
		if err != nil {
			c.Rewind(off)
		}
	}()

	if st, ok := d.Struct(); ok {
		obj := make(value.Object, len(st.Fields))
		for _, f := range st.Fields {
			if obj[f.Name], err = dec.typ(c, f.Type); err != nil {
				return nil, err
			}
		}
		return obj, nil
	}

	u, _ := d.Union()
	if c.Remaining() < 1 {
		return nil, &wire.DecodeError{Type: d.Name, Offset: off, Err: wire.ErrShortInput}
	}
	tag, _ := c.ReadUint8()
	if tag == 0 || int(tag) > len(u.Variants) {
		return nil, &wire.DecodeError{Type: d.Name, Offset: off, Err: fmt.Errorf("%w %d", wire.ErrUnknownTag, tag)}
	}
	vd, ok := dec.schema.LookupResolved(u.Variants[tag-1].Name)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrNoDecl, u.Variants[tag-1].Name)
	}
	payload, err := dec.decl(c, vd)
	if err != nil {
		return nil, err
	}
	return value.Variant{Name: vd.Name, Value: payload}, nil
}

func (dec decoder) typ(c *wire.Cursor, t ir.Type) (v value.Value, err error) {
	switch t := t.(type) {
	case ir.Array:
		off := c.Offset()
		defer func() {
			if err != nil {
				c.Rewind(off)
			}
		}()
		n, err := c.ReadUint8()
		if err != nil {
			return nil, err
		}
		arr := make(value.Array, n)
		for i := range arr {
			if arr[i], err = dec.typ(c, t.Elem); err != nil {
				return nil, err
			}
		}
		return arr, nil
	case ir.Ref:
		r, err := dec.schema.Resolve(t)
		if err != nil {
			return nil, err
		}
		if !r.IsPrimitive() {
			return dec.decl(c, r.Decl)
		}
		switch r.Primitive {
		case ir.Boolean:
			x, err := c.ReadBoolean()
			return value.Bool(x), err
		case ir.Uint8:
			x, err := c.ReadUint8()
			return value.Int(x), err
		case ir.Uint16:
			x, err := c.ReadUint16()
			return value.Int(x), err
		case ir.String:
			x, err := c.ReadString()
			return value.String(x), err
		}
		return nil, fmt.Errorf("codec: unknown primitive %q", r.Primitive)
	}
	return nil, fmt.Errorf("codec: unexpected type %T", t)
}

func hasField(st *ir.Struct, name string) bool {
	for _, f := range st.Fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

func mismatch(typ, want string, got value.Value) error {
	return &wire.EncodeError{Type: typ, Err: fmt.Errorf("%w: want %s, got %s", ErrTypeMismatch, want, KindOf(got))}
}

// KindOf names the shape of v for diagnostics.
func KindOf(v value.Value) string {
	switch v.(type) {
	case value.Bool:
		return "boolean"
	case value.Int:
		return "integer"
	case value.String:
		return "string"
	case value.Array:
		return "array"
	case value.Object:
		return "object"
	case value.Variant:
		return "variant"
	case nil:
		return "null"
	}
	return fmt.Sprintf("%T", v)
}
