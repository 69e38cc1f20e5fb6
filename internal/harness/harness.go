package harness

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/wiregen/internal/codec"
	"github.com/roach88/wiregen/internal/compiler"
	"github.com/roach88/wiregen/internal/ir"
	"github.com/roach88/wiregen/internal/value"
	"github.com/roach88/wiregen/internal/wire"
)

// Run compiles the suite's schema and checks every case against the
// reference codec. An error is returned only when the schema cannot be
// compiled; case mismatches are reported in the Result.
func Run(suite *Suite) (*Result, error) {
	schema, err := compiler.CompileFile(suite.Schema)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return RunSchema(schema, suite)
}

// RunSchema checks the suite's cases against an already compiled schema.
func RunSchema(schema *ir.Schema, suite *Suite) (*Result, error) {
	fp, err := ir.Fingerprint(schema)
	if err != nil {
		return nil, err
	}

	result := NewResult(suite.Name)
	result.Fingerprint = fp
	for i := range suite.Cases {
		c := &suite.Cases[i]
		cr, errs := runCase(schema, c)
		for _, e := range errs {
			result.AddError(fmt.Sprintf("%s: %s", c.Name, e))
		}
		result.Cases = append(result.Cases, cr)
	}
	return result, nil
}

func runCase(schema *ir.Schema, c *Case) (CaseResult, []string) {
	cr := CaseResult{Name: c.Name, Decl: c.Decl}
	var errs []string
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Sprintf(format, args...))
	}

	switch c.Kind() {
	case KindRoundTrip:
		want, err := value.FromAny(c.Value)
		if err != nil {
			fail("value: %v", err)
			break
		}
		wantHex := strings.Join(strings.Fields(c.Hex), "")

		data, err := codec.Encode(schema, c.Decl, want)
		if err != nil {
			fail("encode: %v", err)
		} else {
			cr.Hex = hex.EncodeToString(data)
			if cr.Hex != strings.ToLower(wantHex) {
				fail("encode: got %s, want %s", cr.Hex, wantHex)
			}
		}

		in, _ := c.Bytes()
		got, err := codec.Decode(schema, c.Decl, in)
		if err != nil {
			fail("decode: %v", err)
			break
		}
		cr.decoded = got
		if cr.Value, err = value.MarshalCanonical(got); err != nil {
			fail("decode: %v", err)
			break
		}
		if !value.Equal(got, want) {
			wantJSON, _ := value.MarshalCanonical(want)
			fail("decode: got %s, want %s", cr.Value, wantJSON)
		}
		if n, err := firstWholePrefix(schema, c.Decl, in); n > 0 {
			fail("decode: %d-byte prefix: got %v, want %v", n, err, wire.ErrShortInput)
		}

	case KindEncodeError:
		v, err := value.FromAny(c.Value)
		if err != nil {
			fail("value: %v", err)
			break
		}
		data, err := codec.Encode(schema, c.Decl, v)
		if err == nil {
			fail("encode: got %x, want error containing %q", data, c.EncodeError)
			break
		}
		cr.Error = err.Error()
		if !strings.Contains(cr.Error, c.EncodeError) {
			fail("encode: error %q does not contain %q", cr.Error, c.EncodeError)
		}

	case KindDecodeError:
		in, _ := c.Bytes()
		v, err := codec.Decode(schema, c.Decl, in)
		if err == nil {
			got, _ := value.MarshalCanonical(v)
			fail("decode: got %s, want error containing %q", got, c.DecodeError)
			break
		}
		cr.Error = err.Error()
		if !strings.Contains(cr.Error, c.DecodeError) {
			fail("decode: error %q does not contain %q", cr.Error, c.DecodeError)
		}
	}

	cr.Pass = len(errs) == 0
	return cr, errs
}

// firstWholePrefix returns the length of the first strict prefix of data
// that does not fail as truncated input, or 0 if every one does.
func firstWholePrefix(schema *ir.Schema, decl string, data []byte) (int, error) {
	for i := 1; i < len(data); i++ {
		if _, err := codec.Decode(schema, decl, data[:i]); !errors.Is(err, wire.ErrShortInput) {
			return i, err
		}
	}
	return 0, nil
}
