// Package evaluator implements the tree-walking interpreter of
// SPEC_FULL.md §4.4: a single recursive Eval(node, scope, namespacePrefix)
// procedure dispatching on the AST node's grammar-rule name (matching
// either its current or pre-optimisation name, per §6.2).
package evaluator

import (
	"github.com/pscript-run/pscript/source/ast"
)

// child returns the first direct child of node whose Name or
// OriginalName equals name, or nil if there is none.
func child(node ast.Node, name string) ast.Node {
	for _, c := range node.Children() {
		if ast.Is(c, name) {
			return c
		}
	}
	return nil
}

// children returns every direct child of node whose Name or OriginalName
// equals name, in order.
func children(node ast.Node, name string) []ast.Node {
	var out []ast.Node
	for _, c := range node.Children() {
		if ast.Is(c, name) {
			out = append(out, c)
		}
	}
	return out
}
