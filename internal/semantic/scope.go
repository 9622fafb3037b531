package semantic

import "github.com/valc-lang/valc/internal/types"

// scope is one lexical scope: a (Go, unordered) map of names to their
// resolved VariableDefinition, plus a link to the enclosing scope. Lookup
// walks outward per spec §4.3.
type scope struct {
	symbols map[string]*types.Definition
	outer   *scope
}

func newScope(outer *scope) *scope {
	return &scope{symbols: make(map[string]*types.Definition), outer: outer}
}

// define binds name in this scope, shadowing any outer binding. Returns
// false if name is already bound in this (not an outer) scope — a
// duplicate declaration.
func (s *scope) define(def *types.Definition) bool {
	if _, exists := s.symbols[def.Name]; exists {
		return false
	}
	s.symbols[def.Name] = def
	return true
}

// resolve looks up name in this scope and, failing that, every enclosing
// scope.
func (s *scope) resolve(name string) (*types.Definition, bool) {
	for cur := s; cur != nil; cur = cur.outer {
		if def, ok := cur.symbols[name]; ok {
			return def, true
		}
	}
	return nil, false
}
