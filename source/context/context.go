// Package context implements the execution context of SPEC_FULL.md §4.5:
// the bundle of every side-effecting resource the evaluator needs — the
// memory pool, the global scope, the function and struct tables, the call
// stack, the retained imported scripts, and the I/O streams bound to the
// __print/__readln builtins. It is passed explicitly through every call
// into the evaluator; there is no package-level mutable state.
package context

import (
	"bufio"
	"io"

	"github.com/pscript-run/pscript/source/ast"
	"github.com/pscript-run/pscript/source/env"
	"github.com/pscript-run/pscript/source/object"
	"github.com/pscript-run/pscript/source/pool"
)

// Member describes one field of a struct description: its name and the
// default Value evaluated once, eagerly, at struct-definition time.
type Member struct {
	Name    string
	Default object.Value
}

// StructDef is a struct description: an ordered list of members, each
// with a name and a snapshotted default value.
type StructDef struct {
	Name    string
	Members []Member
}

// FunctionDef is a user function: its qualified name, its parameters (by
// name only — parsed parameter types are not checked), and its body node.
type FunctionDef struct {
	Name     string
	NSPrefix string // the import namespace this function was declared under, "" at top level
	Params   []string
	Body     ast.Node
	Extern   bool // true for `extern fn` declarations: recorded, never called
}

// Frame is a call-stack record pushed on entry to a user function and
// popped on exit. Return-value propagation out of the frame's body is
// threaded through Go's own control flow (a sentinel error the evaluator
// unwinds to on `return`) rather than polled from a field here, per
// SPEC_FULL.md §9's recommendation.
type Frame struct {
	Fn    *FunctionDef
	Scope *env.Scope
}

// Imported retains one imported script's source text and parsed AST root,
// because AST nodes (as produced by a real parser) typically reference
// slices of their source buffer — the buffer must outlive them.
type Imported struct {
	Path   string
	Source string
	Root   ast.Node
}

// Streams bundles the abstract output sink and input source the
// __print/__readln builtins are bound to (SPEC_FULL.md §6.3).
type Streams struct {
	Out io.Writer
	In  *bufio.Reader
}

// ParseFunc turns already-read script source into an AST root. The core
// never implements a parser itself (SPEC_FULL.md §1); a host supplies one
// so that `import` can parse the modules it loads.
type ParseFunc func(source string) (ast.Node, error)

// Context bundles every resource execute/Eval need.
type Context struct {
	Pool    *pool.Pool
	Heap    *object.Heap
	Global  *env.Scope
	Funcs   map[string]*FunctionDef
	Structs map[string]*StructDef

	CallStack []*Frame

	Imports []*Imported
	BaseDir string // working directory `import` resolves pscript-modules/ against

	Streams Streams
	Parse   ParseFunc

	// Debug is an optional plain io.Writer for ad hoc trace output; the
	// core has no structured-logging dependency (SPEC_FULL.md §10.5). No
	// package in this repository writes to it.
	Debug io.Writer
}

// New creates a Context with a pool of the given arena size, bound to the
// given streams. BaseDir defaults to "." and Parse is left nil; while it is
// nil, every `import` fails with an IOError, so callers that need `import`
// to work must set ctx.Parse to a real parser entry point.
func New(arenaSize int, streams Streams) *Context {
	p := pool.New(arenaSize)
	return &Context{
		Pool:    p,
		Heap:    object.NewHeap(p),
		Global:  env.NewScope(nil),
		Funcs:   make(map[string]*FunctionDef),
		Structs: make(map[string]*StructDef),
		BaseDir: ".",
		Streams: streams,
	}
}

// CurrentFrame returns the topmost call frame, or nil if the call stack is
// empty (top-level script execution runs with no frame; a `return` there
// ends the script, see evaluator.Run).
func (c *Context) CurrentFrame() *Frame {
	if len(c.CallStack) == 0 {
		return nil
	}
	return c.CallStack[len(c.CallStack)-1]
}

// PushFrame pushes f onto the call stack.
func (c *Context) PushFrame(f *Frame) { c.CallStack = append(c.CallStack, f) }

// PopFrame pops and returns the topmost call frame.
func (c *Context) PopFrame() {
	c.CallStack = c.CallStack[:len(c.CallStack)-1]
}
