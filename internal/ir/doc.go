// Package ir provides the schema intermediate representation for wiregen.
//
// A Schema is an ordered list of named declarations (structs and tagged
// unions) plus a table of transparent aliases. Front-ends build a Schema
// through the eager constructors (NewArray, NewStruct, NewUnion, AddDecl,
// AddAlias), then Validate checks the whole-schema invariants. Emitters only
// ever see a validated Schema and never mutate it.
//
// This package imports nothing internal. Every other internal package imports
// ir, so it stays the foundational layer.
//
// Key constraints:
//   - Array elements and union variants are Refs, one level only
//   - Field and variant order fixes the wire layout
//   - Aliases are resolved by name and never emitted
package ir
