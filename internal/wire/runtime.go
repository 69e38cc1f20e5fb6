package wire

import (
	_ "embed"
	"fmt"
	"strings"
)

//go:embed primitives.go
var primitivesSource string

// Runtime returns the source of primitives.go with its package clause
// replaced by pkg, ready to be placed after a file header.
func Runtime(pkg string) (string, error) {
	const clause = "package wire\n"
	i := strings.Index(primitivesSource, clause)
	if i < 0 {
		return "", fmt.Errorf("wire: runtime source has no package clause")
	}
	return "package " + pkg + "\n" + primitivesSource[i+len(clause):], nil
}
