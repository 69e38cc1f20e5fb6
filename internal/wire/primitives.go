package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"unicode/utf8"
)

const (
	// MaxStringLen is the largest byte length a uint16 prefix can carry.
	MaxStringLen = 1<<16 - 1

	// MaxArrayLen is the largest element count a uint8 prefix can carry.
	MaxArrayLen = 1<<8 - 1
)

var (
	ErrShortInput    = errors.New("wire: unexpected end of input")
	ErrUnknownTag    = errors.New("wire: unknown union tag")
	ErrInvalidBool   = errors.New("wire: invalid boolean byte")
	ErrInvalidUTF8   = errors.New("wire: invalid UTF-8")
	ErrStringTooLong = errors.New("wire: string longer than 65535 bytes")
	ErrArrayTooLong  = errors.New("wire: array longer than 255 elements")
	ErrTrailingBytes = errors.New("wire: trailing bytes after message")
	ErrNoVariant     = errors.New("wire: union has no variant set")
	ErrOutOfRange    = errors.New("wire: integer out of range")
)

// EncodeError reports a value that cannot be represented on the wire.
type EncodeError struct {
	Type string
	Err  error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode %s: %v", e.Type, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// DecodeError reports input that does not hold a complete, valid value.
// Offset is where the offending read started.
type DecodeError struct {
	Type   string
	Offset int
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s at offset %d: %v", e.Type, e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Buffer is an append-only, growable encode target. The zero value is ready
// to use. A failed Write leaves the buffer as it was before the call.
type Buffer struct {
	buf []byte
}

// NewBuffer returns a Buffer with the given initial capacity.
func NewBuffer(capacity int) *Buffer {
	return &Buffer{buf: make([]byte, 0, capacity)}
}

// Bytes returns the encoded bytes. The slice aliases the buffer until the
// next write.
func (b *Buffer) Bytes() []byte { return b.buf }

// Len returns the number of encoded bytes.
func (b *Buffer) Len() int { return len(b.buf) }

// Reset empties the buffer, keeping its capacity.
func (b *Buffer) Reset() { b.buf = b.buf[:0] }

// Truncate discards all but the first n bytes.
func (b *Buffer) Truncate(n int) {
	if n < 0 || n > len(b.buf) {
		panic("wire: truncation out of range")
	}
	b.buf = b.buf[:n]
}

// rollback truncates to mark when *err is set. Deferred by every composite
// write.
func (b *Buffer) rollback(mark int, err *error) {
	if *err != nil {
		b.buf = b.buf[:mark]
	}
}

func (b *Buffer) WriteBoolean(v bool) {
	if v {
		b.buf = append(b.buf, 1)
	} else {
		b.buf = append(b.buf, 0)
	}
}

func (b *Buffer) WriteUint8(v uint8) {
	b.buf = append(b.buf, v)
}

func (b *Buffer) WriteUint16(v uint16) {
	b.buf = binary.BigEndian.AppendUint16(b.buf, v)
}

// WriteString writes a uint16 byte length followed by the UTF-8 bytes.
func (b *Buffer) WriteString(v string) error {
	if len(v) > MaxStringLen {
		return &EncodeError{Type: "string", Err: ErrStringTooLong}
	}
	if !utf8.ValidString(v) {
		return &EncodeError{Type: "string", Err: ErrInvalidUTF8}
	}
	b.WriteUint16(uint16(len(v)))
	b.buf = append(b.buf, v...)
	return nil
}

func writeBooleanElem(b *Buffer, v *bool) error {
	b.WriteBoolean(*v)
	return nil
}

func writeUint8Elem(b *Buffer, v *uint8) error {
	b.WriteUint8(*v)
	return nil
}

func writeUint16Elem(b *Buffer, v *uint16) error {
	b.WriteUint16(*v)
	return nil
}

func writeStringElem(b *Buffer, v *string) error {
	return b.WriteString(*v)
}

// writeArray writes a uint8 count followed by each element.
func writeArray[T any](b *Buffer, items []T, elem func(*Buffer, *T) error) (err error) {
	if len(items) > MaxArrayLen {
		return &EncodeError{Type: "array", Err: ErrArrayTooLong}
	}
	defer b.rollback(b.Len(), &err)
	b.WriteUint8(uint8(len(items)))
	for i := range items {
		if err = elem(b, &items[i]); err != nil {
			return err
		}
	}
	return nil
}

// noVariant reports a union value whose tag does not select a payload.
func noVariant(union string, tag uint8) error {
	return &EncodeError{Type: union, Err: fmt.Errorf("%w (tag %d)", ErrNoVariant, tag)}
}

// Cursor reads values from a byte slice in encode order. A failed Read
// leaves the offset where the call began.
type Cursor struct {
	data []byte
	off  int
}

func NewCursor(data []byte) *Cursor {
	return &Cursor{data: data}
}

// Offset returns the number of bytes consumed.
func (c *Cursor) Offset() int { return c.off }

// Remaining returns the number of bytes not yet consumed.
func (c *Cursor) Remaining() int { return len(c.data) - c.off }

// Rewind moves the cursor back to an earlier offset.
func (c *Cursor) Rewind(off int) {
	if off < 0 || off > c.off {
		panic("wire: rewind out of range")
	}
	c.off = off
}

// restore rewinds to off when *err is set. Deferred by every composite read.
func (c *Cursor) restore(off int, err *error) {
	if *err != nil {
		c.off = off
	}
}

func (c *Cursor) take(typ string, n int) ([]byte, error) {
	if c.Remaining() < n {
		return nil, &DecodeError{Type: typ, Offset: c.off, Err: ErrShortInput}
	}
	p := c.data[c.off : c.off+n]
	c.off += n
	return p, nil
}

func (c *Cursor) ReadBoolean() (bool, error) {
	p, err := c.take("boolean", 1)
	if err != nil {
		return false, err
	}
	switch p[0] {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}
	c.off--
	return false, &DecodeError{Type: "boolean", Offset: c.off, Err: fmt.Errorf("%w 0x%02x", ErrInvalidBool, p[0])}
}

func (c *Cursor) ReadUint8() (uint8, error) {
	p, err := c.take("uint8", 1)
	if err != nil {
		return 0, err
	}
	return p[0], nil
}

func (c *Cursor) ReadUint16() (uint16, error) {
	p, err := c.take("uint16", 2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(p), nil
}

// ReadString reads a uint16 byte length followed by that many UTF-8 bytes.
func (c *Cursor) ReadString() (s string, err error) {
	defer c.restore(c.off, &err)
	p, err := c.take("string", 2)
	if err != nil {
		return "", err
	}
	n := int(binary.BigEndian.Uint16(p))
	if p, err = c.take("string", n); err != nil {
		return "", err
	}
	if !utf8.Valid(p) {
		return "", &DecodeError{Type: "string", Offset: c.off - n, Err: ErrInvalidUTF8}
	}
	return string(p), nil
}

// readArray reads a uint8 count followed by that many elements. An empty
// array decodes as an empty, non-nil slice so it compares equal to the
// value that was encoded.
func readArray[T any](c *Cursor, elem func(*Cursor) (T, error)) (items []T, err error) {
	defer c.restore(c.off, &err)
	n, err := c.ReadUint8()
	if err != nil {
		return nil, err
	}
	out := make([]T, n)
	for i := range out {
		if out[i], err = elem(c); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// readTag reads a union discriminant.
func (c *Cursor) readTag(union string) (uint8, error) {
	p, err := c.take(union, 1)
	if err != nil {
		return 0, err
	}
	return p[0], nil
}

// unknownTag reports the discriminant just read as naming no variant.
func (c *Cursor) unknownTag(union string, tag uint8) error {
	c.off--
	return &DecodeError{Type: union, Offset: c.off, Err: fmt.Errorf("%w %d", ErrUnknownTag, tag)}
}

// expectEnd fails if input remains after a whole message.
func (c *Cursor) expectEnd(typ string) error {
	if n := c.Remaining(); n > 0 {
		return &DecodeError{Type: typ, Offset: c.off, Err: fmt.Errorf("%w (%d)", ErrTrailingBytes, n)}
	}
	return nil
}
