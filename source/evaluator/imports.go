package evaluator

import (
	"github.com/pscript-run/pscript/source/ast"
	"github.com/pscript-run/pscript/source/context"
	"github.com/pscript-run/pscript/source/module"
	"github.com/pscript-run/pscript/source/perr"
)

// evalImport implements `import a.b.c.NAME` (SPEC_FULL.md §6.4): resolve
// and read the module file, parse it with the host-supplied parser, run
// its top level in the global scope under the dotted namespace prefix so
// its functions and structs are registered as "a.b.c.NAME.fn", and retain
// the parsed root so its source buffer stays alive for as long as any AST
// node within it is reachable.
func evalImport(ctx *context.Context, node ast.Node) error {
	var segs []string
	for _, f := range children(node, "module_folder") {
		segs = append(segs, f.TokenText())
	}
	nameNode := child(node, "module_name")
	if nameNode == nil {
		return perr.Parse(node, "import missing module name")
	}
	name := nameNode.TokenText()

	path, source, err := module.Load(ctx.BaseDir, segs, name)
	if err != nil {
		return err
	}
	if ctx.Parse == nil {
		return perr.IO(nameNode, "no parser configured to load module %s", path)
	}
	root, err := ctx.Parse(source)
	if err != nil {
		return err
	}
	ctx.Imports = append(ctx.Imports, &context.Imported{Path: path, Source: source, Root: root})

	prefix := module.Prefix(segs, name)
	_, err = Eval(ctx, root, ctx.Global, prefix)
	return err
}

// evalNamespaceDecl implements `namespace NAME { content }`
// (`_examples/original_source/src/pscript/context.cpp:98`'s
// `namespace_decl <- 'namespace ' identifier space brace_open content
// brace_close`): unlike import, it names an inline block already present in
// the same source, so there is no file to load — content is evaluated
// directly, in global scope, under a qualified namespace prefix, exactly as
// an import's body is (SPEC_FULL.md §9).
func evalNamespaceDecl(ctx *context.Context, node ast.Node, nsPrefix string) error {
	ident := child(node, "identifier")
	content := child(node, "content")
	if ident == nil || content == nil {
		return perr.Parse(node, "namespace declaration missing name or body")
	}
	prefix := nsPrefix + ident.TokenText() + "."
	_, err := Eval(ctx, content, ctx.Global, prefix)
	return err
}
