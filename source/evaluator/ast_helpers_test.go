package evaluator

import "github.com/pscript-run/pscript/source/ast"

// These helpers build hand-rolled ASTs matching the node-shape conventions
// evaluator.go/expressions.go/calls.go/loops.go dispatch on, since no
// parser is wired into this repository (SPEC_FULL.md §1/§6.2).

func ident(name string) *ast.Tree { return ast.New("identifier").WithToken(name) }

func lit(token string) *ast.Tree { return ast.New("operand").WithToken(token) }

func expr(n ast.Node) *ast.Tree { return ast.New("expression", n) }

func op(symbol string) *ast.Tree { return ast.New("operator").WithToken(symbol) }

func arg(n ast.Node) *ast.Tree { return ast.New("argument", expr(n)) }

func argList(args ...ast.Node) *ast.Tree { return ast.New("argument_list", args...) }

func nsList(idents ...ast.Node) *ast.Tree { return ast.New("namespace_list", idents...) }

func callFn(name string, args ...ast.Node) *ast.Tree {
	return ast.New("call_expression", ident(name), argList(args...))
}

func memberCall(receiver string, method string, args ...ast.Node) *ast.Tree {
	return ast.New("call_expression", nsList(ident(receiver)), ident(method), argList(args...))
}

func printStmt(n ast.Node) *ast.Tree { return callFn("__print", arg(n)) }
