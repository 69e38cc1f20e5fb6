package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// DomainSchema separates schema fingerprints from any other hash of the same
// bytes. The version suffix allows a future layout change.
const DomainSchema = "wiregen/schema/v1"

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// layoutDecl is the wire-relevant description of one declaration. Struct
// field order in these types is fixed, so json.Marshal output is
// deterministic.
type layoutDecl struct {
	Name     string        `json:"name"`
	Kind     Kind          `json:"kind"`
	Fields   []layoutField `json:"fields,omitempty"`
	Variants []string      `json:"variants,omitempty"`
}

type layoutField struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Array bool   `json:"array,omitempty"`
}

// Layout describes the wire layout of a validated schema: declarations in
// order, field order with alias-resolved types, and variant order. Positions,
// docs and alias names are not part of it.
func Layout(s *Schema) ([]byte, error) {
	decls := make([]layoutDecl, 0, len(s.decls))
	for _, d := range s.decls {
		ld := layoutDecl{Name: d.Name, Kind: d.Body.Kind()}
		switch body := d.Body.(type) {
		case *Struct:
			for _, f := range body.Fields {
				r, err := s.Resolve(fieldRef(f.Type))
				if err != nil {
					return nil, fmt.Errorf("layout %s.%s: %w", d.Name, f.Name, err)
				}
				_, isArray := f.Type.(Array)
				ld.Fields = append(ld.Fields, layoutField{Name: f.Name, Type: r.Name(), Array: isArray})
			}
		case *Union:
			ld.Variants = s.VariantNames(body)
		}
		decls = append(decls, ld)
	}
	return json.Marshal(decls)
}

// Fingerprint returns the hex SHA-256 of the schema's wire layout. Two peers
// built from schemas with equal fingerprints agree on every byte.
func Fingerprint(s *Schema) (string, error) {
	layout, err := Layout(s)
	if err != nil {
		return "", fmt.Errorf("Fingerprint: %w", err)
	}
	return hashWithDomain(DomainSchema, layout), nil
}
