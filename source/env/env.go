// Package env implements the scope chain and variable store of
// SPEC_FULL.md §4.3: a name->Variable map per scope with an optional
// parent link, walked for lookup and assignment, and acted on directly
// for declaration.
package env

import (
	"github.com/pscript-run/pscript/source/object"
	"github.com/pscript-run/pscript/source/perr"
)

// Variable is a named cell holding one object.Value.
type Variable struct {
	Name  string
	Value object.Value
}

// Scope holds the variables declared directly within it, plus an optional
// link to the enclosing scope. A Scope with a nil parent is the global
// scope.
type Scope struct {
	vars   map[string]*Variable
	parent *Scope
}

// NewScope creates a scope whose parent is parent (nil for the global
// scope).
func NewScope(parent *Scope) *Scope {
	return &Scope{vars: make(map[string]*Variable), parent: parent}
}

// Parent returns s's enclosing scope, or nil if s is the global scope.
func (s *Scope) Parent() *Scope { return s.parent }

// Lookup walks the parent chain starting at s and returns the nearest
// Variable named name.
func (s *Scope) Lookup(name string) (*Variable, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Declare binds name to v in s, the current scope only. If name already
// exists in s (not an ancestor), its previous value is freed through h and
// the Variable's slot is overwritten in place ("shadow by reassignment");
// the *Variable reference itself is preserved for any existing aliases.
func (s *Scope) Declare(h *object.Heap, name string, v object.Value) *Variable {
	if existing, ok := s.vars[name]; ok {
		h.Free(existing.Value)
		existing.Value = v
		return existing
	}
	variable := &Variable{Name: name, Value: v}
	s.vars[name] = variable
	return variable
}

// Assign walks the parent chain to find name and overwrites its value in
// place, freeing the previous payload through h first. Returns a
// NameError if name is not declared anywhere in the chain.
func (s *Scope) Assign(h *object.Heap, name string, v object.Value) error {
	variable, ok := s.Lookup(name)
	if !ok {
		return perr.Name(nil, "assignment to undeclared variable %q", name)
	}
	h.Free(variable.Value)
	variable.Value = v
	return nil
}

// Free releases the pool allocation of every variable declared directly
// in s (not its ancestors), for use when a scope is torn down at the end
// of a block.
func (s *Scope) Free(h *object.Heap) {
	for _, v := range s.vars {
		h.Free(v.Value)
	}
}
