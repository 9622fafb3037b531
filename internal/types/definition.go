package types

import "github.com/valc-lang/valc/internal/token"

// Definition is a VariableDefinition: the semantic-pass record bound to a
// name in scope. is_writable is true iff introduced by let or as a non-this
// function parameter; is_external is true for declare function forms.
type Definition struct {
	Location   token.Position
	Name       string
	Kind       Kind
	IsWritable bool
	IsExternal bool
	Decorators []string
}

// DecoratorSet preserves insertion order while deduplicating decorator
// names, matching spec's "ordered set of names" definition.
type DecoratorSet struct {
	names []string
	seen  map[string]bool
}

// NewDecoratorSet builds a DecoratorSet from names, in order, collapsing
// duplicates onto their first occurrence.
func NewDecoratorSet(names []string) *DecoratorSet {
	ds := &DecoratorSet{seen: make(map[string]bool, len(names))}
	for _, n := range names {
		ds.Add(n)
	}
	return ds
}

// Add appends name unless already present.
func (ds *DecoratorSet) Add(name string) {
	if ds.seen == nil {
		ds.seen = make(map[string]bool)
	}
	if ds.seen[name] {
		return
	}
	ds.seen[name] = true
	ds.names = append(ds.names, name)
}

// Has reports whether name was added to the set.
func (ds *DecoratorSet) Has(name string) bool {
	if ds == nil {
		return false
	}
	return ds.seen[name]
}

// Names returns the ordered, deduplicated decorator names.
func (ds *DecoratorSet) Names() []string {
	if ds == nil {
		return nil
	}
	return ds.names
}
