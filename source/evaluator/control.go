package evaluator

import (
	"github.com/pscript-run/pscript/source/ast"
	"github.com/pscript-run/pscript/source/context"
	"github.com/pscript-run/pscript/source/object"
)

// returnSignal is the control-flow value a `return` statement unwinds
// with: an ordinary Go error as far as every intermediate compound,
// if/while/for body is concerned (they all already stop and propagate on
// any non-nil error), caught only by the function call that owns the
// frame being returned from (SPEC_FULL.md §9's early-return recommendation
// in place of polling a frame field after every statement).
type returnSignal struct {
	value object.Value
}

func (r *returnSignal) Error() string { return "return outside of a function call" }

// Run evaluates root as a top-level script: a `return` at top level (no
// enclosing call frame) simply ends evaluation with that value, rather
// than surfacing returnSignal as a real error.
func Run(ctx *context.Context, root ast.Node) (object.Value, error) {
	v, err := Eval(ctx, root, ctx.Global, "")
	if rs, ok := err.(*returnSignal); ok {
		return rs.value, nil
	}
	return v, err
}
