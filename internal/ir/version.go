package ir

// Version constants for the wire format and the generator.
const (
	// WireVersion identifies the fixed-width wire format iteration.
	WireVersion = "1"

	// GeneratorVersion is the wiregen release.
	GeneratorVersion = "0.1.0"
)
