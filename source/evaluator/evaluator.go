package evaluator

import (
	"github.com/pscript-run/pscript/source/ast"
	"github.com/pscript-run/pscript/source/context"
	"github.com/pscript-run/pscript/source/env"
	"github.com/pscript-run/pscript/source/object"
	"github.com/pscript-run/pscript/source/perr"
)

// Eval is the evaluator's single recursive procedure. It dispatches on
// node's grammar-rule name (SPEC_FULL.md §4.4) and threads the current
// scope and the namespace_prefix used to qualify top-level function/struct
// names during an import.
func Eval(ctx *context.Context, node ast.Node, scope *env.Scope, nsPrefix string) (object.Value, error) {
	switch {
	case ast.Is(node, "script"), ast.Is(node, "content"), ast.Is(node, "compound"), ast.Is(node, "statement"):
		return evalBlock(ctx, node, scope, nsPrefix)

	case ast.Is(node, "expression"):
		if len(node.Children()) == 0 {
			return object.NullValue(), nil
		}
		return Eval(ctx, node.Children()[0], scope, nsPrefix)

	case ast.Is(node, "declaration"):
		return evalDeclaration(ctx, node, scope, nsPrefix)

	case ast.Is(node, "function"):
		return object.NullValue(), evalFunctionDef(ctx, node, nsPrefix)

	case ast.Is(node, "struct"):
		return object.NullValue(), evalStructDef(ctx, node, nsPrefix)

	case ast.Is(node, "import"):
		return object.NullValue(), evalImport(ctx, node)

	case ast.Is(node, "namespace_decl"):
		return object.NullValue(), evalNamespaceDecl(ctx, node, nsPrefix)

	case ast.Is(node, "return"):
		return evalReturn(ctx, node, scope, nsPrefix)

	case ast.Is(node, "if"):
		return evalIf(ctx, node, scope, nsPrefix)

	case ast.Is(node, "while"):
		return evalWhile(ctx, node, scope, nsPrefix)

	case ast.Is(node, "for_manual"):
		return evalForManual(ctx, node, scope, nsPrefix)

	case ast.Is(node, "for_each"):
		return evalForEach(ctx, node, scope, nsPrefix)

	case ast.Is(node, "for"):
		// A plain "for" node carries exactly one of the two subtrees as
		// its single child (SPEC_FULL.md §4.4's "the source AST carries
		// both for_manual and for_each subtrees").
		if len(node.Children()) == 0 {
			return object.NullValue(), nil
		}
		return Eval(ctx, node.Children()[0], scope, nsPrefix)

	default:
		return evalExpr(ctx, node, scope, nsPrefix)
	}
}

// evalBlock iterates a node's children in source order, stopping as soon as
// one of them yields an error — including the returnSignal a `return`
// unwinds with — and propagating it upward unchanged.
// script/content/compound/statement nodes never introduce a
// new scope themselves — only the control structures that wrap them do.
func evalBlock(ctx *context.Context, node ast.Node, scope *env.Scope, nsPrefix string) (object.Value, error) {
	var last object.Value
	for _, c := range node.Children() {
		v, err := Eval(ctx, c, scope, nsPrefix)
		if err != nil {
			// A returnSignal propagates unchanged: every statement after
			// the one that returned is skipped (SPEC_FULL.md §8's
			// return-short-circuit invariant).
			return v, err
		}
		last = v
	}
	return last, nil
}

func evalDeclaration(ctx *context.Context, node ast.Node, scope *env.Scope, nsPrefix string) (object.Value, error) {
	ident := child(node, "identifier")
	initializer := child(node, "expression")
	if ident == nil || initializer == nil {
		return object.Value{}, perr.Parse(node, "declaration missing identifier or initializer")
	}
	v, err := Eval(ctx, initializer, scope, nsPrefix)
	if err != nil {
		return object.Value{}, err
	}
	scope.Declare(ctx.Heap, ident.TokenText(), v)
	return object.NullValue(), nil
}

func evalFunctionDef(ctx *context.Context, node ast.Node, nsPrefix string) error {
	ident := child(node, "identifier")
	if ident == nil {
		return perr.Parse(node, "function declaration missing name")
	}
	var params []string
	if plist := child(node, "parameter_list"); plist != nil {
		for _, p := range children(plist, "parameter") {
			if pid := child(p, "identifier"); pid != nil {
				params = append(params, pid.TokenText())
			}
		}
	}
	body := child(node, "compound")
	fn := &context.FunctionDef{
		Name:     nsPrefix + ident.TokenText(),
		NSPrefix: nsPrefix,
		Params:   params,
		Body:     body,
		Extern:   body == nil,
	}
	ctx.Funcs[fn.Name] = fn
	return nil
}

func evalStructDef(ctx *context.Context, node ast.Node, nsPrefix string) error {
	ident := child(node, "identifier")
	if ident == nil {
		return perr.Parse(node, "struct declaration missing name")
	}
	def := &context.StructDef{Name: nsPrefix + ident.TokenText()}
	if items := child(node, "struct_items"); items != nil {
		for _, item := range children(items, "struct_item") {
			name := child(item, "identifier")
			if name == nil {
				continue
			}
			var def_val object.Value = object.NullValue()
			if initializer := child(item, "struct_initializer"); initializer != nil {
				if expr := child(initializer, "expression"); expr != nil {
					// Defaults are evaluated eagerly in global scope at
					// definition time and snapshotted (SPEC_FULL.md §9).
					v, err := Eval(ctx, expr, ctx.Global, "")
					if err != nil {
						return err
					}
					def_val = v
				}
			}
			def.Members = append(def.Members, context.Member{Name: name.TokenText(), Default: def_val})
		}
	}
	ctx.Structs[def.Name] = def
	return nil
}

func evalReturn(ctx *context.Context, node ast.Node, scope *env.Scope, nsPrefix string) (object.Value, error) {
	v := object.NullValue()
	if len(node.Children()) > 0 {
		expr := node.Children()[0]
		var err error
		v, err = Eval(ctx, expr, scope, nsPrefix)
		if err != nil {
			return object.Value{}, err
		}
	}
	return v, &returnSignal{value: v}
}

func evalIf(ctx *context.Context, node ast.Node, scope *env.Scope, nsPrefix string) (object.Value, error) {
	condNode := child(node, "expression")
	if condNode == nil {
		return object.Value{}, perr.Parse(node, "if missing condition")
	}
	cond, err := Eval(ctx, condNode, scope, nsPrefix)
	if err != nil {
		return object.Value{}, err
	}
	if cond.Tag != object.BoolTag {
		return object.Value{}, perr.Type(node, "if condition must be bool, got %s", cond.Tag)
	}
	local := env.NewScope(scope)
	defer local.Free(ctx.Heap)
	if cond.B {
		if compound := child(node, "compound"); compound != nil {
			return Eval(ctx, compound, local, nsPrefix)
		}
		return object.NullValue(), nil
	}
	if elseNode := child(node, "else"); elseNode != nil {
		if compound := child(elseNode, "compound"); compound != nil {
			return Eval(ctx, compound, local, nsPrefix)
		}
	}
	return object.NullValue(), nil
}

func evalWhile(ctx *context.Context, node ast.Node, scope *env.Scope, nsPrefix string) (object.Value, error) {
	condNode := child(node, "expression")
	compound := child(node, "compound")
	if condNode == nil || compound == nil {
		return object.Value{}, perr.Parse(node, "while missing condition or body")
	}
	for {
		cond, err := Eval(ctx, condNode, scope, nsPrefix)
		if err != nil {
			return object.Value{}, err
		}
		if cond.Tag != object.BoolTag {
			return object.Value{}, perr.Type(node, "while condition must be bool, got %s", cond.Tag)
		}
		if !cond.B {
			break
		}
		local := env.NewScope(scope)
		v, err := Eval(ctx, compound, local, nsPrefix)
		local.Free(ctx.Heap)
		if err != nil {
			return v, err
		}
	}
	return object.NullValue(), nil
}
