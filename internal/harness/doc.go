// Package harness checks conformance vectors against the reference codec.
//
// A vector suite is a YAML file naming a schema and a list of cases:
//
//	name: smash
//	description: "Vectors for the browser terminal protocol"
//	schema: ../smash.d.ts
//	cases:
//	  - name: pair
//	    decl: Pair
//	    value: { key: a, val: b }
//	    hex: "0001 61 0001 62"
//	  - name: unknown tag
//	    decl: ClientMessage
//	    hex: "04"
//	    decode_error: "unknown union tag 4"
//	  - name: exit code too large
//	    decl: Exit
//	    value: { exitCode: 65536 }
//	    encode_error: "integer out of range"
//
// A case with value and hex is a round trip: the value must encode to
// exactly those bytes and the bytes must decode back to an equal value.
// Unions are written as an object with one key naming the variant.
//
// # Usage
//
//	suite, err := harness.Load("testdata/vectors/smash.yaml")
//	if err != nil {
//	    return err
//	}
//	result, err := harness.Run(suite)
//	if err != nil {
//	    return err
//	}
//	for _, msg := range result.Errors {
//	    fmt.Println(msg)
//	}
//
// Snapshots of results (see RunWithGolden) are canonical JSON, so the same
// suite always produces the same bytes.
package harness
