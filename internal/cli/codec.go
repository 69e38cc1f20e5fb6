package cli

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/spf13/cobra"

	"github.com/roach88/wiregen/internal/codec"
	"github.com/roach88/wiregen/internal/value"
)

// EncodeResult is the JSON payload of the encode command.
type EncodeResult struct {
	Decl string `json:"decl"`
	Hex  string `json:"hex"`
}

// DecodeResult is the JSON payload of the decode command.
type DecodeResult struct {
	Decl  string          `json:"decl"`
	Value json.RawMessage `json:"value"`
}

// NewEncodeCommand creates the encode command.
func NewEncodeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "encode <schema-file> <decl> <json-value>",
		Short: "Encode a JSON value and print the bytes as hex",
		Long: `Encode a JSON value as the named declaration and print the message in
lowercase hex.

Structs are JSON objects keyed by field name. A union value is an object with
exactly one key naming the variant. Aliases may be used as the declaration.`,
		Example: `  wiregen encode smash.d.ts Pair '{"key":"a","val":"b"}'
  wiregen encode smash.d.ts Msg '{"Hello":{}}'`,
		Args:          usageArgs(cobra.ExactArgs(3)),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEncode(rootOpts, args[0], args[1], args[2], cmd)
		},
	}
}

// NewDecodeCommand creates the decode command.
func NewDecodeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "decode <schema-file> <decl> <hex>",
		Short: "Decode hex bytes and print the value as canonical JSON",
		Long: `Decode a hex encoded message as the named declaration and print the value
as canonical JSON. Whitespace in the hex is ignored. The input must hold
exactly one message.`,
		Example: `  wiregen decode smash.d.ts Pair 000161000162
  wiregen decode smash.d.ts Msg "02 00"`,
		Args:          usageArgs(cobra.ExactArgs(3)),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(rootOpts, args[0], args[1], args[2], cmd)
		},
	}
}

func runEncode(opts *RootOptions, schemaPath, decl, input string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)
	log := opts.Logger(cmd, "").With().Str("decl", decl).Logger()

	schema, err := compileSchema(schemaPath, cmd.ErrOrStderr(), log)
	if err != nil {
		return err
	}

	v, err := value.FromJSON([]byte(input))
	if err != nil {
		return codecFailure(formatter, "parse value", err)
	}
	data, err := codec.Encode(schema, decl, v)
	if err != nil {
		return codecFailure(formatter, "encode", err)
	}
	log.Debug().Int("bytes", len(data)).Msg("encoded")

	if formatter.Format == "json" {
		return formatter.Success(EncodeResult{Decl: decl, Hex: hex.EncodeToString(data)})
	}
	fmt.Fprintln(formatter.Writer, hex.EncodeToString(data))
	return nil
}

func runDecode(opts *RootOptions, schemaPath, decl, input string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)
	log := opts.Logger(cmd, "").With().Str("decl", decl).Logger()

	schema, err := compileSchema(schemaPath, cmd.ErrOrStderr(), log)
	if err != nil {
		return err
	}

	data, err := parseHex(input)
	if err != nil {
		return codecFailure(formatter, "parse hex", err)
	}
	v, err := codec.Decode(schema, decl, data)
	if err != nil {
		return codecFailure(formatter, "decode", err)
	}
	out, err := value.MarshalCanonical(v)
	if err != nil {
		return codecFailure(formatter, "render value", err)
	}
	log.Debug().Int("bytes", len(data)).Msg("decoded")

	if formatter.Format == "json" {
		return formatter.Success(DecodeResult{Decl: decl, Value: out})
	}
	fmt.Fprintf(formatter.Writer, "%s\n", out)
	return nil
}

// parseHex decodes hex digits, ignoring whitespace.
func parseHex(s string) ([]byte, error) {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	return hex.DecodeString(s)
}

// codecFailure reports a value or byte error. JSON mode writes an error
// response; text mode leaves printing to Execute.
func codecFailure(formatter *OutputFormatter, message string, err error) error {
	if formatter.Format == "json" {
		_ = formatter.Error(ErrCodeCodec, err.Error(), nil)
		return &ExitError{Code: ExitFailure, Message: message, Err: err, Reported: true}
	}
	return WrapExitError(ExitFailure, message, err)
}
