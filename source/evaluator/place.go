package evaluator

import (
	"github.com/pscript-run/pscript/source/ast"
	"github.com/pscript-run/pscript/source/context"
	"github.com/pscript-run/pscript/source/env"
	"github.com/pscript-run/pscript/source/object"
	"github.com/pscript-run/pscript/source/perr"
)

// Place is a resolved lvalue: a location that can be read without cloning
// (so in-place mutation through a builtin member function is visible) and
// written back to with the old payload freed first (SPEC_FULL.md §4.4.2).
// Exactly one of the three backing kinds is populated.
type Place struct {
	variable *env.Variable

	list  *object.List
	index int

	strct *object.Struct
	field string
}

// Get reads the place's current, live (uncloned) value.
func (p *Place) Get() object.Value {
	switch {
	case p.variable != nil:
		return p.variable.Value
	case p.list != nil:
		return p.list.Elements[p.index]
	case p.strct != nil:
		return p.strct.Fields[p.field]
	default:
		return object.NullValue()
	}
}

// Set overwrites the place's value, freeing whatever it previously held.
func (p *Place) Set(h *object.Heap, v object.Value) error {
	switch {
	case p.variable != nil:
		h.Free(p.variable.Value)
		p.variable.Value = v
		return nil
	case p.list != nil:
		h.Free(p.list.Elements[p.index])
		p.list.Elements[p.index] = v
		return nil
	case p.strct != nil:
		old, ok := p.strct.Fields[p.field]
		if !ok {
			return perr.Field(nil, "struct %s has no field %q", p.strct.Name, p.field)
		}
		h.Free(old)
		p.strct.Fields[p.field] = v
		return nil
	default:
		return perr.Name(nil, "cannot assign to this expression")
	}
}

// resolvePlace resolves node to an lvalue. node must be an identifier (or
// an operand, whose token is then looked up as a variable name),
// index_expression, or access_expression (SPEC_FULL.md §4.4.2); any other
// shape is a ParseError.
func resolvePlace(ctx *context.Context, node ast.Node, scope *env.Scope, nsPrefix string) (*Place, error) {
	switch {
	case ast.Is(node, "identifier") || ast.Is(node, "operand"):
		name := node.TokenText()
		v, ok := scope.Lookup(name)
		if !ok {
			return nil, perr.Name(node, "undeclared variable %q", name)
		}
		return &Place{variable: v}, nil

	case ast.Is(node, "index_expression"):
		return resolveIndexPlace(ctx, node, scope, nsPrefix)

	case ast.Is(node, "access_expression"):
		return resolveAccessPlace(ctx, node, scope, nsPrefix)

	default:
		return nil, perr.Parse(node, "expression is not assignable")
	}
}

func resolveIndexPlace(ctx *context.Context, node ast.Node, scope *env.Scope, nsPrefix string) (*Place, error) {
	baseIdent := child(node, "identifier")
	idxExpr := child(node, "expression")
	if baseIdent == nil || idxExpr == nil {
		return nil, perr.Parse(node, "index expression missing base or index")
	}
	variable, ok := scope.Lookup(baseIdent.TokenText())
	if !ok {
		return nil, perr.Name(baseIdent, "undeclared variable %q", baseIdent.TokenText())
	}
	if variable.Value.Tag != object.ListTag {
		return nil, perr.Type(node, "cannot index into %s", variable.Value.Tag)
	}
	list, err := ctx.Heap.List(variable.Value)
	if err != nil {
		return nil, err
	}
	idxVal, err := Eval(ctx, idxExpr, scope, nsPrefix)
	if err != nil {
		return nil, err
	}
	if idxVal.Tag != object.IntTag {
		return nil, perr.Type(node, "list index must be int, got %s", idxVal.Tag)
	}
	i := int(idxVal.I)
	if i < 0 || i >= len(list.Elements) {
		return nil, perr.Index(node, "list index %d out of range [0, %d)", i, len(list.Elements))
	}
	return &Place{list: list, index: i}, nil
}

// resolveAccessPlace resolves a chain `a->b->c`: the leading identifier
// names a struct-valued variable, every subsequent identifier child names
// a field to descend into, and the last one is the place itself.
func resolveAccessPlace(ctx *context.Context, node ast.Node, scope *env.Scope, nsPrefix string) (*Place, error) {
	idents := children(node, "identifier")
	if len(idents) < 2 {
		return nil, perr.Parse(node, "access expression needs a base and at least one field")
	}
	variable, ok := scope.Lookup(idents[0].TokenText())
	if !ok {
		return nil, perr.Name(idents[0], "undeclared variable %q", idents[0].TokenText())
	}
	if variable.Value.Tag != object.StructTag {
		return nil, perr.Type(node, "cannot access field of %s", variable.Value.Tag)
	}
	strct, err := ctx.Heap.Struct(variable.Value)
	if err != nil {
		return nil, err
	}
	for _, fieldNode := range idents[1 : len(idents)-1] {
		fv, err := strct.Get(fieldNode.TokenText())
		if err != nil {
			return nil, err
		}
		if fv.Tag != object.StructTag {
			return nil, perr.Type(fieldNode, "cannot access field of %s", fv.Tag)
		}
		strct, err = ctx.Heap.Struct(fv)
		if err != nil {
			return nil, err
		}
	}
	last := idents[len(idents)-1].TokenText()
	if _, err := strct.Get(last); err != nil {
		return nil, err
	}
	return &Place{strct: strct, field: last}, nil
}
