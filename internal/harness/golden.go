package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/wiregen/internal/value"
)

// Snapshot renders a result as canonical JSON. The fingerprint is left out
// so snapshots survive comment and alias edits to the schema.
func Snapshot(result *Result) ([]byte, error) {
	cases := make(value.Array, len(result.Cases))
	for i, c := range result.Cases {
		obj := value.NewObject(
			value.O("name", value.String(c.Name)),
			value.O("decl", value.String(c.Decl)),
			value.O("pass", value.Bool(c.Pass)),
		)
		if c.Hex != "" {
			obj["hex"] = value.String(c.Hex)
		}
		if c.decoded != nil {
			obj["value"] = c.decoded
		}
		if c.Error != "" {
			obj["error"] = value.String(c.Error)
		}
		cases[i] = obj
	}
	return value.MarshalCanonical(value.NewObject(
		value.O("suite", value.String(result.Suite)),
		value.O("pass", value.Bool(result.Pass)),
		value.O("cases", cases),
	))
}

// RunWithGolden runs a suite and compares its snapshot against
// testdata/golden/{suite.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, suite *Suite) (*Result, error) {
	t.Helper()

	result, err := Run(suite)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, suite.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against a golden file without
// re-running the suite.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	snapshot, err := Snapshot(result)
	if err != nil {
		return err
	}
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, snapshot)
	return nil
}
