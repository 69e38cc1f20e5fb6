package ir

import "fmt"

// Validate checks the whole-schema invariants and returns every violation
// found (it does not fail fast). An empty list means the schema may be
// emitted.
//
// Checks, in order:
//  1. every alias resolves without a cycle
//  2. every field and variant reference resolves
//  3. union variants name declarations, each at most once
//  4. generated identifiers do not collide
//  5. every declaration has a finite value (no by-value struct recursion)
func Validate(s *Schema) ErrorList {
	v := &validator{schema: s, seen: make(map[string]bool)}

	for _, a := range s.aliases {
		if _, err := s.Resolve(Ref{Name: a.Name, Pos: a.Pos}); err != nil {
			v.add(a.Name, err)
		}
	}

	for _, d := range s.decls {
		switch body := d.Body.(type) {
		case *Struct:
			v.checkStruct(d, body)
		case *Union:
			v.checkUnion(d, body)
		}
	}

	v.checkCollisions()

	if len(v.errs) == 0 {
		v.errs = append(v.errs, checkRecursion(s)...)
	}
	return v.errs
}

type validator struct {
	schema *Schema
	errs   ErrorList
	seen   map[string]bool
}

func (v *validator) add(decl string, err error) {
	e, ok := err.(*Error)
	if !ok {
		e = &Error{Message: err.Error()}
	}
	if e.Decl == "" {
		e.Decl = decl
	}
	key := fmt.Sprintf("%s|%s|%s", e.Code, e.Pos, e.Message)
	if v.seen[key] {
		return
	}
	v.seen[key] = true
	v.errs = append(v.errs, e)
}

func (v *validator) checkStruct(d *Decl, s *Struct) {
	for _, f := range s.Fields {
		ref := fieldRef(f.Type)
		if ref.Pos == (Pos{}) {
			ref.Pos = f.Pos
		}
		if _, err := v.schema.Resolve(ref); err != nil {
			v.add(d.Name, err)
		}
	}
}

func (v *validator) checkUnion(d *Decl, u *Union) {
	byDecl := make(map[string]Ref, len(u.Variants))
	for _, ref := range u.Variants {
		if ref.Pos == (Pos{}) {
			ref.Pos = d.Pos
		}
		r, err := v.schema.Resolve(ref)
		if err != nil {
			v.add(d.Name, err)
			continue
		}
		if r.IsPrimitive() {
			v.add(d.Name, Errorf(ErrPrimitiveVariant, ref.Pos,
				"variant %s is the primitive %s, not a declaration", ref.Name, r.Primitive))
			continue
		}
		if prev, ok := byDecl[r.Decl.Name]; ok {
			v.add(d.Name, Errorf(ErrDuplicateVariant, ref.Pos,
				"variant %s repeats %s", ref.Name, prev.Name))
			continue
		}
		byDecl[r.Decl.Name] = ref
	}
}

func (v *validator) checkCollisions() {
	for _, target := range []struct {
		lang  string
		names func(*Decl) []string
	}{
		{"Go", v.schema.GoNames},
		{"TypeScript", v.schema.TSNames},
	} {
		owner := make(map[string]*Decl)
		for _, d := range v.schema.decls {
			for i, name := range target.names(d) {
				// index 0 is the declaration itself, checked by AddDecl
				if i > 0 && IsReserved(name) {
					v.add(d.Name, Errorf(ErrNameCollision, d.Pos,
						"generated %s identifier %s is reserved", target.lang, name))
					continue
				}
				if prev, ok := owner[name]; ok && prev != d {
					v.add(d.Name, Errorf(ErrNameCollision, d.Pos,
						"generated %s identifier %s collides with %s", target.lang, name, prev.Name))
					continue
				}
				owner[name] = d
			}
		}
	}
}

// fieldRef returns the reference a field type depends on.
func fieldRef(t Type) Ref {
	switch t := t.(type) {
	case Ref:
		return t
	case Array:
		return t.Elem
	}
	return Ref{}
}
