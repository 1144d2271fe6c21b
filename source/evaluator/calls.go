package evaluator

import (
	"strings"

	"github.com/pscript-run/pscript/source/ast"
	"github.com/pscript-run/pscript/source/context"
	"github.com/pscript-run/pscript/source/env"
	"github.com/pscript-run/pscript/source/object"
	"github.com/pscript-run/pscript/source/perr"
)

// builtin is a core function implemented directly in Go, not as a
// user-defined script function (SPEC_FULL.md §4.4.3).
type builtin func(ctx *context.Context, args []object.Value) (object.Value, error)

var builtins = map[string]builtin{
	"__print":  builtinPrint,
	"__readln": builtinReadln,
}

func builtinPrint(ctx *context.Context, args []object.Value) (object.Value, error) {
	// args are rvalue temporaries built solely for this call; once
	// stringified they are stored nowhere else, so every pool-backed one is
	// freed on the way out.
	defer func() {
		for _, a := range args {
			ctx.Heap.Free(a)
		}
	}()
	parts := make([]string, len(args))
	for i, a := range args {
		s, err := ctx.Heap.Stringify(a)
		if err != nil {
			return object.Value{}, err
		}
		parts[i] = s
	}
	if _, err := ctx.Streams.Out.Write([]byte(strings.Join(parts, " ") + "\n")); err != nil {
		return object.Value{}, perr.IO(nil, "write to output stream: %v", err)
	}
	return object.NullValue(), nil
}

func builtinReadln(ctx *context.Context, args []object.Value) (object.Value, error) {
	if len(args) != 0 {
		return object.Value{}, perr.Arity(nil, "__readln takes no arguments, got %d", len(args))
	}
	if ctx.Streams.In == nil {
		return object.Value{}, perr.IO(nil, "no input stream bound")
	}
	line, err := ctx.Streams.In.ReadString('\n')
	if err != nil && line == "" {
		return object.Value{}, perr.IO(nil, "read from input stream: %v", err)
	}
	line = strings.TrimRight(line, "\r\n")
	return ctx.Heap.NewString(line)
}

// evalCall implements call_expression dispatch in the priority order
// SPEC_FULL.md §4.4 lays out: a core builtin by name; else, if a
// namespace_list prefix is present and its first segment resolves to an
// existing variable, a member-function call on that variable's value (see
// §4.4.1); else a qualified-function-table lookup (namespace_list as a
// module path, or the caller's own import namespace, or the bare global
// name); else NameError.
func evalCall(ctx *context.Context, node ast.Node, scope *env.Scope, nsPrefix string) (object.Value, error) {
	identNode := child(node, "identifier")
	if identNode == nil {
		return object.Value{}, perr.Parse(node, "call expression missing function name")
	}
	name := identNode.TokenText()
	argListNode := child(node, "argument_list")

	if fn, ok := builtins[name]; ok {
		args, err := evalArgs(ctx, argListNode, scope, nsPrefix)
		if err != nil {
			return object.Value{}, err
		}
		return fn(ctx, args)
	}

	var segs []string
	if nsListNode := child(node, "namespace_list"); nsListNode != nil {
		for _, seg := range children(nsListNode, "identifier") {
			segs = append(segs, seg.TokenText())
		}
	}

	if len(segs) > 0 {
		if variable, ok := scope.Lookup(segs[0]); ok {
			args, err := evalArgs(ctx, argListNode, scope, nsPrefix)
			if err != nil {
				return object.Value{}, err
			}
			return evalMemberCall(ctx, &Place{variable: variable}, name, args)
		}
	}

	fnDef, ok := lookupFunc(ctx, segs, name, nsPrefix)
	if !ok {
		return object.Value{}, perr.Name(identNode, "undefined function %q", name)
	}
	args, err := evalArgs(ctx, argListNode, scope, nsPrefix)
	if err != nil {
		return object.Value{}, err
	}
	return callFunction(ctx, fnDef, args, identNode)
}

// lookupFunc resolves a called name against an explicit module-path prefix
// (for qualified `a.b.foo()` calls into an import), then the caller's own
// import namespace, then the unqualified global table.
func lookupFunc(ctx *context.Context, segs []string, name, nsPrefix string) (*context.FunctionDef, bool) {
	if len(segs) > 0 {
		qualified := strings.Join(segs, ".") + "." + name
		if def, ok := ctx.Funcs[qualified]; ok {
			return def, true
		}
	}
	if nsPrefix != "" {
		if def, ok := ctx.Funcs[nsPrefix+name]; ok {
			return def, true
		}
	}
	def, ok := ctx.Funcs[name]
	return def, ok
}

// callFunction pushes a call frame, runs fn's body, and pops the frame.
// Per SPEC_FULL.md §4.3, a function-call frame's scope parents directly to
// the global scope, never to the caller's scope — the deliberate isolation
// that distinguishes call frames from nested block scopes.
func callFunction(ctx *context.Context, fn *context.FunctionDef, args []object.Value, tok ast.Node) (object.Value, error) {
	if fn.Extern {
		return object.Value{}, perr.Name(tok, "function %q has no native implementation", fn.Name)
	}
	if len(args) != len(fn.Params) {
		return object.Value{}, perr.Arity(tok, "function %q takes %d arguments, got %d", fn.Name, len(fn.Params), len(args))
	}
	frameScope := env.NewScope(ctx.Global)
	for i, p := range fn.Params {
		frameScope.Declare(ctx.Heap, p, args[i])
	}
	frame := &context.Frame{Fn: fn, Scope: frameScope}
	ctx.PushFrame(frame)
	_, err := Eval(ctx, fn.Body, frameScope, fn.NSPrefix)
	ctx.PopFrame()

	// Body ran to completion with no `return`: result stays null.
	result := object.NullValue()
	if rs, ok := err.(*returnSignal); ok {
		result = rs.value
		err = nil
	}
	frameScope.Free(ctx.Heap)
	if err != nil {
		return object.Value{}, err
	}
	return result, nil
}

// evalMemberCall implements the builtin list and string member functions
// (SPEC_FULL.md §4.4.1). place is resolved against the live variable, not
// a clone-on-read rvalue, so `.append` mutates the variable the caller
// holds.
func evalMemberCall(ctx *context.Context, place *Place, method string, args []object.Value) (object.Value, error) {
	recv := place.Get()
	switch recv.Tag {
	case object.ListTag:
		list, err := ctx.Heap.List(recv)
		if err != nil {
			return object.Value{}, err
		}
		switch method {
		case "append":
			if len(args) != 1 {
				return object.Value{}, perr.Arity(nil, "list.append takes 1 argument, got %d", len(args))
			}
			list.Elements = append(list.Elements, args[0])
			return object.NullValue(), nil
		case "size":
			if len(args) != 0 {
				return object.Value{}, perr.Arity(nil, "list.size takes no arguments, got %d", len(args))
			}
			return object.IntValue(int64(len(list.Elements))), nil
		default:
			return object.Value{}, perr.Name(nil, "list has no member function %q", method)
		}

	case object.StringTag:
		switch method {
		case "format":
			return ctx.Heap.Format(recv, args)
		case "parse_int":
			if len(args) != 0 {
				return object.Value{}, perr.Arity(nil, "string.parse_int takes no arguments, got %d", len(args))
			}
			return ctx.Heap.ParseInt(recv)
		case "parse_float":
			if len(args) != 0 {
				return object.Value{}, perr.Arity(nil, "string.parse_float takes no arguments, got %d", len(args))
			}
			return ctx.Heap.ParseFloat(recv)
		default:
			return object.Value{}, perr.Name(nil, "string has no member function %q", method)
		}

	default:
		return object.Value{}, perr.Type(nil, "cannot call member function on %s", recv.Tag)
	}
}
