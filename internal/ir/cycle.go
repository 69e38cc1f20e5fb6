package ir

import (
	"slices"
	"strings"
)

// checkRecursion reports declarations whose values would be infinite.
//
// The algorithm:
//  1. Build the by-value graph: struct -> struct for every field that is a
//     plain Ref to a struct. Arrays may be empty and unions are stored
//     behind a pointer, so neither adds an edge.
//  2. Use Tarjan's algorithm to find strongly connected components; each
//     SCC with more than one node or a self-loop is a recursive struct.
//  3. Compute the finitely constructible declarations as a least fixed
//     point: a struct is constructible when all its by-value declaration
//     fields are, a union when any variant is. Anything left over that was
//     not already reported is uninhabited.
//
// Assumes every reference resolves.
func checkRecursion(s *Schema) ErrorList {
	var errs ErrorList
	reported := make(map[string]bool)

	graph := buildValueGraph(s)
	for _, scc := range tarjanSCC(s, graph) {
		if len(scc) == 1 && !slices.Contains(graph[scc[0]], scc[0]) {
			continue
		}
		path := reconstructCyclePath(scc, graph)
		head, _ := s.Lookup(path[0])
		errs = append(errs, &Error{
			Code:    ErrRecursiveStruct,
			Decl:    head.Name,
			Pos:     head.Pos,
			Message: "struct contains itself by value: " + strings.Join(path, " -> "),
		})
		for _, name := range scc {
			reported[name] = true
		}
	}

	ok := inhabited(s)
	for _, d := range s.decls {
		if !ok[d.Name] && !reported[d.Name] {
			errs = append(errs, &Error{
				Code:    ErrUninhabited,
				Decl:    d.Name,
				Pos:     d.Pos,
				Message: "every value of this type contains itself",
			})
		}
	}
	return errs
}

// valueGraph maps a struct name to the structs it embeds by value.
type valueGraph map[string][]string

func buildValueGraph(s *Schema) valueGraph {
	graph := make(valueGraph)
	for _, d := range s.decls {
		st, ok := d.Struct()
		if !ok {
			continue
		}
		graph[d.Name] = []string{}
		for _, f := range st.Fields {
			ref, ok := f.Type.(Ref)
			if !ok {
				continue
			}
			r, err := s.Resolve(ref)
			if err != nil || r.Decl == nil {
				continue
			}
			if _, isStruct := r.Decl.Struct(); isStruct {
				graph[d.Name] = append(graph[d.Name], r.Decl.Name)
			}
		}
	}
	return graph
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
// Nodes are visited in declaration order so results are deterministic.
func tarjanSCC(s *Schema, graph valueGraph) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for _, d := range s.decls {
		if _, inGraph := graph[d.Name]; !inGraph {
			continue
		}
		if _, visited := indices[d.Name]; !visited {
			strongConnect(d.Name)
		}
	}
	return sccs
}

// reconstructCyclePath walks edges inside an SCC from its last-popped node
// (the component root) back to itself.
func reconstructCyclePath(scc []string, graph valueGraph) []string {
	members := make(map[string]bool, len(scc))
	for _, n := range scc {
		members[n] = true
	}

	start := scc[len(scc)-1]
	path := []string{start}
	visited := map[string]bool{start: true}
	current := start
	for {
		next := ""
		for _, w := range graph[current] {
			if w == start {
				next = w
				break
			}
			if members[w] && !visited[w] && next == "" {
				next = w
			}
		}
		if next == "" {
			break
		}
		path = append(path, next)
		if next == start {
			break
		}
		visited[next] = true
		current = next
	}
	return path
}

// inhabited returns the set of declarations with at least one finite value.
func inhabited(s *Schema) map[string]bool {
	ok := make(map[string]bool, len(s.decls))
	for changed := true; changed; {
		changed = false
		for _, d := range s.decls {
			if ok[d.Name] {
				continue
			}
			if constructible(s, d, ok) {
				ok[d.Name] = true
				changed = true
			}
		}
	}
	return ok
}

func constructible(s *Schema, d *Decl, ok map[string]bool) bool {
	switch body := d.Body.(type) {
	case *Struct:
		for _, f := range body.Fields {
			ref, isRef := f.Type.(Ref)
			if !isRef {
				continue
			}
			r, err := s.Resolve(ref)
			if err != nil {
				return false
			}
			if r.Decl != nil && !ok[r.Decl.Name] {
				return false
			}
		}
		return true
	case *Union:
		for _, v := range body.Variants {
			r, err := s.Resolve(v)
			if err == nil && r.Decl != nil && ok[r.Decl.Name] {
				return true
			}
		}
	}
	return false
}
