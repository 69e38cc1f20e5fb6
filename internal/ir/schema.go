package ir

import "strings"

// NewArray wraps elem in an Array. Only a Ref may be an element.
func NewArray(elem Type, pos Pos) (Array, error) {
	ref, ok := elem.(Ref)
	if !ok {
		return Array{}, &Error{Code: ErrNestedType, Kind: "ArrayType", Pos: pos,
			Message: "array element must be a named type"}
	}
	return Array{Elem: ref}, nil
}

// NewStruct builds a struct body. Fields must be non-empty and their names
// unique, also after ExportedName.
func NewStruct(fields []Field, pos Pos) (*Struct, error) {
	if len(fields) == 0 {
		return nil, Errorf(ErrEmptyBody, pos, "struct has no fields")
	}
	seen := make(map[string]string, len(fields))
	for _, f := range fields {
		if !IsIdent(f.Name) || !isLetter(f.Name[0]) {
			return nil, Errorf(ErrInvalidName, f.Pos, "invalid field name %q", f.Name)
		}
		switch f.Type.(type) {
		case Ref, Array:
		default:
			return nil, Errorf(ErrNestedType, f.Pos, "field %s has unsupported type %s", f.Name, f.Type)
		}
		key := ExportedName(f.Name)
		if prev, ok := seen[key]; ok {
			if prev == f.Name {
				return nil, Errorf(ErrDuplicateField, f.Pos, "duplicate field %q", f.Name)
			}
			return nil, Errorf(ErrDuplicateField, f.Pos, "field %q collides with %q", f.Name, prev)
		}
		seen[key] = f.Name
	}
	return &Struct{Fields: fields}, nil
}

// NewUnion builds a union body. Variants must be non-empty Refs.
func NewUnion(variants []Type, pos Pos) (*Union, error) {
	if len(variants) == 0 {
		return nil, Errorf(ErrEmptyBody, pos, "union has no variants")
	}
	refs := make([]Ref, 0, len(variants))
	for _, v := range variants {
		ref, ok := v.(Ref)
		if !ok {
			return nil, &Error{Code: ErrNestedType, Kind: "ArrayType", Pos: pos,
				Message: "union variant must be a named type"}
		}
		refs = append(refs, ref)
	}
	return &Union{Variants: refs}, nil
}

// Schema is the ordered set of declarations and aliases read from one source
// file. Build it with AddDecl and AddAlias, then call Validate.
type Schema struct {
	File string

	decls   []*Decl
	aliases []*Alias
	byName  map[string]*Decl
	alias   map[string]*Alias
}

// NewSchema returns an empty schema for the named source file.
func NewSchema(file string) *Schema {
	return &Schema{
		File:   file,
		byName: make(map[string]*Decl),
		alias:  make(map[string]*Alias),
	}
}

// AddDecl appends a declaration in source order.
func (s *Schema) AddDecl(d *Decl) error {
	if err := s.checkName(d.Name, d.Pos); err != nil {
		return err
	}
	if d.Name[0] < 'A' || d.Name[0] > 'Z' {
		return &Error{Code: ErrInvalidName, Decl: d.Name, Pos: d.Pos,
			Message: "declaration name must start with an upper-case letter"}
	}
	if IsReserved(d.Name) {
		return &Error{Code: ErrReservedName, Decl: d.Name, Pos: d.Pos,
			Message: "name is reserved by the generated runtime"}
	}
	if d.Body == nil {
		return &Error{Code: ErrEmptyBody, Decl: d.Name, Pos: d.Pos, Message: "declaration has no body"}
	}
	s.decls = append(s.decls, d)
	s.byName[d.Name] = d
	return nil
}

// AddAlias records a transparent rename. Primitive names cannot be redefined.
func (s *Schema) AddAlias(a *Alias) error {
	if err := s.checkName(a.Name, a.Pos); err != nil {
		return err
	}
	if _, ok := LookupPrimitive(a.Name); ok {
		return &Error{Code: ErrAliasCycle, Decl: a.Name, Pos: a.Pos,
			Message: "alias redefines a primitive type"}
	}
	s.aliases = append(s.aliases, a)
	s.alias[a.Name] = a
	return nil
}

func (s *Schema) checkName(name string, pos Pos) error {
	if !IsIdent(name) {
		return Errorf(ErrInvalidName, pos, "invalid name %q", name)
	}
	if _, ok := s.byName[name]; ok {
		return &Error{Code: ErrDuplicateDecl, Decl: name, Pos: pos, Message: "duplicate declaration"}
	}
	if _, ok := s.alias[name]; ok {
		return &Error{Code: ErrDuplicateDecl, Decl: name, Pos: pos, Message: "duplicate declaration"}
	}
	return nil
}

// Decls returns the declarations in source order.
func (s *Schema) Decls() []*Decl {
	out := make([]*Decl, len(s.decls))
	copy(out, s.decls)
	return out
}

// Aliases returns the aliases in source order.
func (s *Schema) Aliases() []*Alias {
	out := make([]*Alias, len(s.aliases))
	copy(out, s.aliases)
	return out
}

// Lookup finds a declaration by name. Aliases are not followed.
func (s *Schema) Lookup(name string) (*Decl, bool) {
	d, ok := s.byName[name]
	return d, ok
}

// LookupResolved finds a declaration by name, following aliases.
func (s *Schema) LookupResolved(name string) (*Decl, bool) {
	r, err := s.Resolve(Ref{Name: name})
	if err != nil || r.Decl == nil {
		return nil, false
	}
	return r.Decl, true
}

// Resolve follows aliases from ref to a primitive or a declaration.
func (s *Schema) Resolve(ref Ref) (Resolved, error) {
	var chain []string
	cur := ref
	for {
		if p, ok := LookupPrimitive(cur.Name); ok {
			return Resolved{Primitive: p}, nil
		}
		if d, ok := s.byName[cur.Name]; ok {
			return Resolved{Decl: d}, nil
		}
		a, ok := s.alias[cur.Name]
		if !ok {
			return Resolved{}, Errorf(ErrUnresolved, ref.Pos, "unresolved reference %q", cur.Name)
		}
		for _, seen := range chain {
			if seen == a.Name {
				return Resolved{}, Errorf(ErrAliasCycle, a.Pos, "alias cycle: %s -> %s",
					strings.Join(chain, " -> "), a.Name)
			}
		}
		chain = append(chain, a.Name)
		cur = a.Target
	}
}

// VariantNames returns the declaration name each variant resolves to,
// falling back to the written name when it does not resolve.
func (s *Schema) VariantNames(u *Union) []string {
	out := make([]string, len(u.Variants))
	for i, v := range u.Variants {
		out[i] = v.Name
		if r, err := s.Resolve(v); err == nil && r.Decl != nil {
			out[i] = r.Decl.Name
		}
	}
	return out
}

func isLetter(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}
