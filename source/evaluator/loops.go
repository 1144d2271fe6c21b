package evaluator

import (
	"github.com/pscript-run/pscript/source/ast"
	"github.com/pscript-run/pscript/source/context"
	"github.com/pscript-run/pscript/source/env"
	"github.com/pscript-run/pscript/source/object"
	"github.com/pscript-run/pscript/source/perr"
)

// evalForManual implements `for(let i = a; cond; step) body`
// (SPEC_FULL.md §4.4's supplemented for-loop, not present in the read portion
// of the original reference implementation). The declaration's variable
// lives in a single loop-scope that persists across iterations; the body
// runs in a fresh child scope each iteration, per the spec's "new inner
// scope each iteration" requirement.
func evalForManual(ctx *context.Context, node ast.Node, scope *env.Scope, nsPrefix string) (object.Value, error) {
	init := child(node, "declaration")
	condNode := child(node, "expression")
	step := child(node, "step")
	body := child(node, "compound")
	if init == nil || condNode == nil || body == nil {
		return object.Value{}, perr.Parse(node, "for missing declaration, condition, or body")
	}
	loopScope := env.NewScope(scope)
	defer loopScope.Free(ctx.Heap)

	if _, err := Eval(ctx, init, loopScope, nsPrefix); err != nil {
		return object.Value{}, err
	}

	for {
		cond, err := Eval(ctx, condNode, loopScope, nsPrefix)
		if err != nil {
			return object.Value{}, err
		}
		if cond.Tag != object.BoolTag {
			return object.Value{}, perr.Type(node, "for condition must be bool, got %s", cond.Tag)
		}
		if !cond.B {
			break
		}
		bodyScope := env.NewScope(loopScope)
		v, err := Eval(ctx, body, bodyScope, nsPrefix)
		bodyScope.Free(ctx.Heap)
		if err != nil {
			return v, err
		}
		if step != nil && len(step.Children()) > 0 {
			if _, err := Eval(ctx, step.Children()[0], loopScope, nsPrefix); err != nil {
				return object.Value{}, err
			}
		}
	}
	return object.NullValue(), nil
}

// evalForEach implements `for(let x : iterable) body`: iterable must
// evaluate to a list; x is bound fresh in a per-iteration scope to a clone
// of each element in turn.
func evalForEach(ctx *context.Context, node ast.Node, scope *env.Scope, nsPrefix string) (object.Value, error) {
	ident := child(node, "identifier")
	iterNode := child(node, "expression")
	body := child(node, "compound")
	if ident == nil || iterNode == nil || body == nil {
		return object.Value{}, perr.Parse(node, "for-each missing identifier, iterable, or body")
	}
	iterable, err := Eval(ctx, iterNode, scope, nsPrefix)
	if err != nil {
		return object.Value{}, err
	}
	if iterable.Tag != object.ListTag {
		return object.Value{}, perr.Type(node, "for-each iterable must be list, got %s", iterable.Tag)
	}
	list, err := ctx.Heap.List(iterable)
	if err != nil {
		return object.Value{}, err
	}
	// Snapshot the element slice: the body may mutate the same list
	// (e.g. append to it) and iteration must not observe that.
	elements := append([]object.Value(nil), list.Elements...)
	// iterable is a clone evaluated solely to drive this loop (Eval never
	// hands back the caller's own list); its top-level allocation is
	// abandoned the moment its elements are snapshotted, so it is freed
	// here rather than leaking for the lifetime of the interpreter.
	ctx.Heap.Free(iterable)
	for _, elem := range elements {
		cloned, err := ctx.Heap.Clone(elem)
		// elem itself was only ever reachable through the now-freed
		// iterable container; once re-cloned for the loop variable it too
		// is a spent temporary.
		ctx.Heap.Free(elem)
		if err != nil {
			return object.Value{}, err
		}
		iterScope := env.NewScope(scope)
		iterScope.Declare(ctx.Heap, ident.TokenText(), cloned)
		v, err := Eval(ctx, body, iterScope, nsPrefix)
		iterScope.Free(ctx.Heap)
		if err != nil {
			return v, err
		}
	}
	return object.NullValue(), nil
}
