package evaluator

import (
	"github.com/pscript-run/pscript/source/ast"
	"github.com/pscript-run/pscript/source/context"
	"github.com/pscript-run/pscript/source/env"
	"github.com/pscript-run/pscript/source/object"
	"github.com/pscript-run/pscript/source/perr"
)

// evalExpr dispatches every expression-shaped node that isn't itself one of
// the statement/control-flow forms Eval already special-cases.
func evalExpr(ctx *context.Context, node ast.Node, scope *env.Scope, nsPrefix string) (object.Value, error) {
	switch {
	case ast.Is(node, "op_expression"):
		return evalOpExpression(ctx, node, scope, nsPrefix)
	case ast.Is(node, "constructor_expression"):
		return evalConstructor(ctx, node, scope, nsPrefix)
	case ast.Is(node, "list_expression"):
		return evalListExpr(ctx, node, scope, nsPrefix)
	case ast.Is(node, "index_expression"):
		return evalIndexExpr(ctx, node, scope, nsPrefix)
	case ast.Is(node, "access_expression"):
		return evalAccessExpr(ctx, node, scope, nsPrefix)
	case ast.Is(node, "call_expression"):
		return evalCall(ctx, node, scope, nsPrefix)
	case ast.Is(node, "atom"):
		return evalAtom(ctx, node, scope, nsPrefix)
	case ast.Is(node, "operand"):
		return evalOperand(ctx, node, scope)
	case ast.Is(node, "identifier"):
		v, ok := scope.Lookup(node.TokenText())
		if !ok {
			return object.Value{}, perr.Name(node, "undeclared variable %q", node.TokenText())
		}
		return ctx.Heap.Clone(v.Value)
	default:
		return object.Value{}, perr.Parse(node, "cannot evaluate node %q", node.Name())
	}
}

// evalOperand evaluates a literal or bare-identifier leaf. String literals
// carry their surrounding quotes in the token text; everything else is
// tried as bool, null, int, float, and finally an identifier lookup, in
// that order.
func evalOperand(ctx *context.Context, node ast.Node, scope *env.Scope) (object.Value, error) {
	tok := node.TokenText()
	switch tok {
	case "true":
		return object.BoolValue(true), nil
	case "false":
		return object.BoolValue(false), nil
	case "null":
		return object.NullValue(), nil
	}
	if len(tok) >= 2 && tok[0] == '"' && tok[len(tok)-1] == '"' {
		return ctx.Heap.NewString(tok[1 : len(tok)-1])
	}
	if i, err := node.TokenInt(); err == nil {
		return object.IntValue(i), nil
	}
	if f, err := node.TokenFloat(); err == nil {
		return object.FloatValue(f), nil
	}
	variable, ok := scope.Lookup(tok)
	if !ok {
		return object.Value{}, perr.Name(node, "undeclared variable %q", tok)
	}
	return ctx.Heap.Clone(variable.Value)
}

// evalAtom unwraps a parenthesised expression or applies a prefixed unary
// operator to the wrapped operand (SPEC_FULL.md §4.4's atom rule). Unary
// `-` is the only unary operator the value model supports.
func evalAtom(ctx *context.Context, node ast.Node, scope *env.Scope, nsPrefix string) (object.Value, error) {
	if u := child(node, "unary_operator"); u != nil {
		var target ast.Node
		for _, c := range node.Children() {
			if !ast.Is(c, "unary_operator") {
				target = c
				break
			}
		}
		if target == nil {
			return object.Value{}, perr.Parse(node, "unary operator missing operand")
		}
		v, err := Eval(ctx, target, scope, nsPrefix)
		if err != nil {
			return object.Value{}, err
		}
		return ctx.Heap.Neg(v)
	}
	if e := child(node, "expression"); e != nil {
		return Eval(ctx, e, scope, nsPrefix)
	}
	if len(node.Children()) == 1 {
		return Eval(ctx, node.Children()[0], scope, nsPrefix)
	}
	return object.NullValue(), nil
}

// evalOpExpression implements SPEC_FULL.md §4.2/§4.4's operator dispatch:
// lhs op rhs, with the assignment family resolving lhs to an lvalue and
// mutating it in place rather than evaluating it as an rvalue.
func evalOpExpression(ctx *context.Context, node ast.Node, scope *env.Scope, nsPrefix string) (object.Value, error) {
	kids := node.Children()
	if len(kids) != 3 {
		return object.Value{}, perr.Parse(node, "malformed operator expression")
	}
	lhsNode, opNode, rhsNode := kids[0], kids[1], kids[2]
	op := opNode.TokenText()

	switch op {
	case "=", "+=", "-=", "*=", "/=":
		place, err := resolvePlace(ctx, lhsNode, scope, nsPrefix)
		if err != nil {
			return object.Value{}, err
		}
		rhs, err := Eval(ctx, rhsNode, scope, nsPrefix)
		if err != nil {
			return object.Value{}, err
		}
		newVal := rhs
		if op != "=" {
			// old is the place's own live value; place.Set frees it below
			// once newVal has taken its slot, so it must not be freed here.
			// rhs, by contrast, is a freshly evaluated temporary that is
			// fully consumed by the arithmetic below and is not the value
			// ending up in the place, so it is freed once read.
			old := place.Get()
			switch op {
			case "+=":
				newVal, err = ctx.Heap.Add(old, rhs)
			case "-=":
				newVal, err = ctx.Heap.Sub(old, rhs)
			case "*=":
				newVal, err = ctx.Heap.Mul(old, rhs)
			case "/=":
				newVal, err = ctx.Heap.Div(old, rhs)
			}
			ctx.Heap.Free(rhs)
			if err != nil {
				return object.Value{}, err
			}
		}
		if err := place.Set(ctx.Heap, newVal); err != nil {
			return object.Value{}, err
		}
		return newVal, nil

	default:
		lhs, err := Eval(ctx, lhsNode, scope, nsPrefix)
		if err != nil {
			return object.Value{}, err
		}
		rhs, err := Eval(ctx, rhsNode, scope, nsPrefix)
		if err != nil {
			ctx.Heap.Free(lhs)
			return object.Value{}, err
		}
		// lhs and rhs are rvalue temporaries evaluated solely for this
		// operator and stored nowhere, so both are freed once the operator
		// result (a distinct value, or a plain bool) has been computed
		// (`_examples/original_source/src/pscript/value.cpp:113-121`'s
		// destructor-frees-temporaries discipline).
		result, opErr := evalBinaryOp(ctx, opNode, op, lhs, rhs)
		ctx.Heap.Free(lhs)
		ctx.Heap.Free(rhs)
		return result, opErr
	}
}

func evalBinaryOp(ctx *context.Context, opNode ast.Node, op string, lhs, rhs object.Value) (object.Value, error) {
	switch op {
	case "+":
		return ctx.Heap.Add(lhs, rhs)
	case "-":
		return ctx.Heap.Sub(lhs, rhs)
	case "*":
		return ctx.Heap.Mul(lhs, rhs)
	case "/":
		return ctx.Heap.Div(lhs, rhs)
	case "==":
		eq, err := ctx.Heap.Equal(lhs, rhs)
		return object.BoolValue(eq), err
	case "!=":
		eq, err := ctx.Heap.Equal(lhs, rhs)
		return object.BoolValue(!eq), err
	case "<":
		c, err := ctx.Heap.Compare(lhs, rhs)
		return object.BoolValue(c < 0), err
	case ">":
		c, err := ctx.Heap.Compare(lhs, rhs)
		return object.BoolValue(c > 0), err
	case "<=":
		c, err := ctx.Heap.Compare(lhs, rhs)
		return object.BoolValue(c <= 0), err
	case ">=":
		c, err := ctx.Heap.Compare(lhs, rhs)
		return object.BoolValue(c >= 0), err
	default:
		return object.Value{}, perr.Parse(opNode, "unknown operator %q", op)
	}
}

// evalArgs evaluates every argument_list->argument->expression child as an
// rvalue, in order. A nil argListNode yields no arguments.
func evalArgs(ctx *context.Context, argListNode ast.Node, scope *env.Scope, nsPrefix string) ([]object.Value, error) {
	if argListNode == nil {
		return nil, nil
	}
	var out []object.Value
	for _, arg := range children(argListNode, "argument") {
		expr := child(arg, "expression")
		if expr == nil {
			continue
		}
		v, err := Eval(ctx, expr, scope, nsPrefix)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// lookupStruct resolves a struct type name, trying the current import
// namespace first and falling back to the unqualified global name.
func lookupStruct(ctx *context.Context, name, nsPrefix string) (*context.StructDef, bool) {
	if nsPrefix != "" {
		if def, ok := ctx.Structs[nsPrefix+name]; ok {
			return def, true
		}
	}
	def, ok := ctx.Structs[name]
	return def, ok
}

// evalConstructor implements positional-then-default struct construction
// (SPEC_FULL.md §9): supplied arguments fill members left to right; members
// beyond the argument count take their snapshotted default. Supplying more
// arguments than the struct has members is an ArityError.
func evalConstructor(ctx *context.Context, node ast.Node, scope *env.Scope, nsPrefix string) (object.Value, error) {
	identNode := child(node, "identifier")
	if identNode == nil {
		return object.Value{}, perr.Parse(node, "constructor missing struct name")
	}
	name := identNode.TokenText()
	def, ok := lookupStruct(ctx, name, nsPrefix)
	if !ok {
		return object.Value{}, perr.Name(identNode, "undeclared struct %q", name)
	}
	args, err := evalArgs(ctx, child(node, "argument_list"), scope, nsPrefix)
	if err != nil {
		return object.Value{}, err
	}
	if len(args) > len(def.Members) {
		return object.Value{}, perr.Arity(node, "struct %s takes at most %d fields, got %d", def.Name, len(def.Members), len(args))
	}
	order := make([]string, len(def.Members))
	fields := make(map[string]object.Value, len(def.Members))
	for i, m := range def.Members {
		order[i] = m.Name
		if i < len(args) {
			fields[m.Name] = args[i]
			continue
		}
		cloned, err := ctx.Heap.Clone(m.Default)
		if err != nil {
			return object.Value{}, err
		}
		fields[m.Name] = cloned
	}
	return ctx.Heap.NewStruct(def.Name, order, fields)
}

// evalListExpr implements list-literal construction.
func evalListExpr(ctx *context.Context, node ast.Node, scope *env.Scope, nsPrefix string) (object.Value, error) {
	elems, err := evalArgs(ctx, child(node, "argument_list"), scope, nsPrefix)
	if err != nil {
		return object.Value{}, err
	}
	return ctx.Heap.NewList(elems)
}

// evalIndexExpr implements `xs[i]` as an rvalue: resolve the place, then
// clone what it holds so the caller cannot mutate the list through the
// result.
func evalIndexExpr(ctx *context.Context, node ast.Node, scope *env.Scope, nsPrefix string) (object.Value, error) {
	place, err := resolveIndexPlace(ctx, node, scope, nsPrefix)
	if err != nil {
		return object.Value{}, err
	}
	return ctx.Heap.Clone(place.Get())
}

// evalAccessExpr implements `a->b->c` as an rvalue.
func evalAccessExpr(ctx *context.Context, node ast.Node, scope *env.Scope, nsPrefix string) (object.Value, error) {
	place, err := resolveAccessPlace(ctx, node, scope, nsPrefix)
	if err != nil {
		return object.Value{}, err
	}
	return ctx.Heap.Clone(place.Get())
}
