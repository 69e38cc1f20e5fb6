// Package wire implements the canonical wire format shared by every target.
//
//	boolean       1 byte, 0x00 or 0x01
//	uint8         1 byte
//	uint16        2 bytes, big-endian
//	string        uint16 byte length + UTF-8 bytes (max 65535)
//	array<T>      uint8 count + elements (max 255)
//	struct        fields in declared order, no tags
//	tagged union  1-based variant index byte + variant encoding
//
// The Go emitter copies primitives.go into every generated package with only
// the package clause changed (see Runtime). It must import only the standard
// library and must not reference other files in this package.
package wire
