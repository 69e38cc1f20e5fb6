package harness

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Suite is a set of encode/decode vectors for one schema.
type Suite struct {
	// Name identifies the suite and names its golden file.
	Name string `yaml:"name"`

	// Description explains what the suite covers.
	Description string `yaml:"description"`

	// Schema is the schema file the cases are checked against. Relative
	// paths are resolved against the suite file's directory by Load.
	Schema string `yaml:"schema"`

	Cases []Case `yaml:"cases"`
}

// Case is one vector. Which fields are set decides what is checked:
//
//   - value and hex: value encodes to hex and hex decodes back to value
//   - value and encode_error: encoding fails with a message containing it
//   - hex and decode_error: decoding fails with a message containing it
type Case struct {
	Name string `yaml:"name"`

	// Decl is the declaration (or alias) the value is encoded as.
	Decl string `yaml:"decl"`

	// Value is the expected value in its JSON shape. Unions are objects
	// with a single key naming the variant.
	Value any `yaml:"value,omitempty"`

	// Hex is the expected encoding. Whitespace is ignored.
	Hex string `yaml:"hex,omitempty"`

	EncodeError string `yaml:"encode_error,omitempty"`
	DecodeError string `yaml:"decode_error,omitempty"`
}

// Case kinds.
const (
	KindRoundTrip   = "round_trip"
	KindEncodeError = "encode_error"
	KindDecodeError = "decode_error"
)

// Kind reports which check the case describes.
func (c *Case) Kind() string {
	switch {
	case c.EncodeError != "":
		return KindEncodeError
	case c.DecodeError != "":
		return KindDecodeError
	}
	return KindRoundTrip
}

// Bytes decodes Hex.
func (c *Case) Bytes() ([]byte, error) {
	return hex.DecodeString(strings.Join(strings.Fields(c.Hex), ""))
}

// Load reads and parses a suite file. Unknown fields are rejected and the
// schema path is resolved relative to the suite file.
func Load(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read suite file: %w", err)
	}

	var suite Suite
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&suite); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if suite.Schema != "" && !filepath.IsAbs(suite.Schema) {
		suite.Schema = filepath.Join(filepath.Dir(path), suite.Schema)
	}

	if err := validateSuite(&suite); err != nil {
		return nil, fmt.Errorf("invalid suite: %w", err)
	}
	return &suite, nil
}

func validateSuite(s *Suite) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Schema == "" {
		return fmt.Errorf("schema is required")
	}
	if _, err := os.Stat(s.Schema); os.IsNotExist(err) {
		return fmt.Errorf("schema file not found: %s", s.Schema)
	}
	if len(s.Cases) == 0 {
		return fmt.Errorf("cases list is required and must be non-empty")
	}

	seen := make(map[string]bool, len(s.Cases))
	for i := range s.Cases {
		if err := validateCase(i, &s.Cases[i]); err != nil {
			return err
		}
		if seen[s.Cases[i].Name] {
			return fmt.Errorf("cases[%d]: duplicate name %q", i, s.Cases[i].Name)
		}
		seen[s.Cases[i].Name] = true
	}
	return nil
}

func validateCase(i int, c *Case) error {
	if c.Name == "" {
		return fmt.Errorf("cases[%d]: name is required", i)
	}
	if c.Decl == "" {
		return fmt.Errorf("cases[%d]: decl is required", i)
	}
	if c.EncodeError != "" && c.DecodeError != "" {
		return fmt.Errorf("cases[%d]: encode_error and decode_error are exclusive", i)
	}
	if c.Hex != "" {
		if _, err := c.Bytes(); err != nil {
			return fmt.Errorf("cases[%d]: hex: %w", i, err)
		}
	}

	switch c.Kind() {
	case KindRoundTrip:
		if c.Value == nil {
			return fmt.Errorf("cases[%d]: value is required", i)
		}
		if c.Hex == "" {
			return fmt.Errorf("cases[%d]: hex is required", i)
		}
	case KindEncodeError:
		if c.Value == nil {
			return fmt.Errorf("cases[%d]: value is required for encode_error", i)
		}
		if c.Hex != "" {
			return fmt.Errorf("cases[%d]: hex is not allowed with encode_error", i)
		}
	case KindDecodeError:
		// An empty hex decodes empty input.
		if c.Value != nil {
			return fmt.Errorf("cases[%d]: value is not allowed with decode_error", i)
		}
	}
	return nil
}
