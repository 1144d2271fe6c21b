// Package ast defines the abstract syntax tree interface the evaluator
// consumes. The grammar and parser that produce real trees are outside
// this repository's scope (see SPEC_FULL.md §6.2); Node is the contract a
// host's parser must satisfy, and Tree is a minimal, dependency-free
// implementation used by this repository's own tests and by any embedder
// that has not wired in a real PEG parser yet.
package ast

import "strconv"

// Node is a read-only view onto one node of a parsed script. name is the
// grammar rule that produced the node, possibly rewritten by a parser-side
// optimisation pass; OriginalName preserves the pre-optimisation rule name
// so the evaluator can match either. TokenText is the node's own token
// slice (empty for nodes that are pure containers of children).
type Node interface {
	Name() string
	OriginalName() string
	Children() []Node
	TokenText() string
	TokenInt() (int64, error)
	TokenFloat() (float64, error)
}

// Tree is a minimal Node implementation: a rule name, an optional original
// name (defaults to Name when not set via WithOriginalName), a token text
// slice, and an ordered list of children.
type Tree struct {
	name         string
	originalName string
	token        string
	children     []Node
}

// New builds a Tree node named name with the given children.
func New(name string, children ...Node) *Tree {
	return &Tree{name: name, originalName: name, children: children}
}

// WithToken attaches a token text slice to the node (for literals and bare
// identifiers) and returns the node for chaining.
func (t *Tree) WithToken(text string) *Tree {
	t.token = text
	return t
}

// WithOriginalName overrides the pre-optimisation rule name, for nodes that
// simulate a grammar optimisation pass having renamed them.
func (t *Tree) WithOriginalName(name string) *Tree {
	t.originalName = name
	return t
}

func (t *Tree) Name() string         { return t.name }
func (t *Tree) OriginalName() string { return t.originalName }
func (t *Tree) Children() []Node     { return t.children }
func (t *Tree) TokenText() string    { return t.token }

func (t *Tree) TokenInt() (int64, error) {
	return strconv.ParseInt(t.token, 10, 64)
}

func (t *Tree) TokenFloat() (float64, error) {
	return strconv.ParseFloat(t.token, 64)
}

// Is reports whether node's current or original rule name equals name, per
// the evaluator's "match either" dispatch rule (SPEC_FULL.md §4.4).
func Is(node Node, name string) bool {
	return node.Name() == name || node.OriginalName() == name
}
