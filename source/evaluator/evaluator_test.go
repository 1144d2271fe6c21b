package evaluator

import (
	"bufio"
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/pscript-run/pscript/source/ast"
	"github.com/pscript-run/pscript/source/context"
)

func newTestContext(out *bytes.Buffer, in string) *context.Context {
	streams := context.Streams{Out: out, In: bufio.NewReader(strings.NewReader(in))}
	return context.New(1<<16, streams)
}

func runScript(t *testing.T, script ast.Node) (string, error) {
	t.Helper()
	var out bytes.Buffer
	ctx := newTestContext(&out, "")
	_, err := Run(ctx, script)
	return out.String(), err
}

// Scenario 1: arithmetic and shadowing.
func TestScenarioArithmeticAndShadowing(t *testing.T) {
	script := ast.New("script",
		ast.New("declaration", ident("x"), expr(lit("1"))),
		ast.New("op_expression", lit("x"), op("+="), lit("2")),
		printStmt(lit("x")),
	)
	out, err := runScript(t, script)
	if err != nil {
		t.Fatal(err)
	}
	if out != "3\n" {
		t.Fatalf("got %q, want %q", out, "3\n")
	}
}

// Scenario 2: conditional and comparison.
func TestScenarioConditional(t *testing.T) {
	script := ast.New("script",
		ast.New("declaration", ident("n"), expr(lit("5"))),
		ast.New("if",
			expr(ast.New("op_expression", lit("n"), op(">"), lit("3"))),
			ast.New("compound", printStmt(lit("1"))),
			ast.New("else", ast.New("compound", printStmt(lit("0")))),
		),
	)
	out, err := runScript(t, script)
	if err != nil {
		t.Fatal(err)
	}
	if out != "1\n" {
		t.Fatalf("got %q, want %q", out, "1\n")
	}
}

// Scenario 3: function with return.
func TestScenarioFunctionReturn(t *testing.T) {
	fn := ast.New("function",
		ident("sq"),
		ast.New("parameter_list", ast.New("parameter", ident("x"))),
		ast.New("compound", ast.New("return", ast.New("op_expression", lit("x"), op("*"), lit("x")))),
	)
	script := ast.New("script",
		fn,
		printStmt(callFn("sq", arg(lit("7")))),
	)
	out, err := runScript(t, script)
	if err != nil {
		t.Fatal(err)
	}
	if out != "49\n" {
		t.Fatalf("got %q, want %q", out, "49\n")
	}
}

// Scenario 4: list append/size/index.
func TestScenarioListAppendSizeIndex(t *testing.T) {
	script := ast.New("script",
		ast.New("declaration", ident("xs"), expr(ast.New("list_expression", argList(arg(lit("10")), arg(lit("20")))))),
		memberCall("xs", "append", arg(lit("30"))),
		printStmt(memberCall("xs", "size")),
		printStmt(ast.New("index_expression", ident("xs"), expr(lit("2")))),
	)
	out, err := runScript(t, script)
	if err != nil {
		t.Fatal(err)
	}
	if out != "3\n30\n" {
		t.Fatalf("got %q, want %q", out, "3\n30\n")
	}
}

// Scenario 5: struct with defaults and member assignment.
func TestScenarioStructDefaultsAndAssignment(t *testing.T) {
	structDef := ast.New("struct", ident("P"), ast.New("struct_items",
		ast.New("struct_item", ident("a"), ast.New("struct_initializer", expr(lit("1")))),
		ast.New("struct_item", ident("b"), ast.New("struct_initializer", expr(lit("2")))),
	))
	script := ast.New("script",
		structDef,
		ast.New("declaration", ident("p"), expr(ast.New("constructor_expression", ident("P"), argList(arg(lit("10")))))),
		ast.New("op_expression", ast.New("access_expression", ident("p"), ident("b")), op("+="), lit("5")),
		printStmt(ast.New("access_expression", ident("p"), ident("a"))),
		printStmt(ast.New("access_expression", ident("p"), ident("b"))),
	)
	out, err := runScript(t, script)
	if err != nil {
		t.Fatal(err)
	}
	if out != "10\n7\n" {
		t.Fatalf("got %q, want %q", out, "10\n7\n")
	}
}

// Scenario 6: for-each over a list.
func TestScenarioForEach(t *testing.T) {
	script := ast.New("script",
		ast.New("declaration", ident("xs"), expr(ast.New("list_expression", argList(arg(lit("1")), arg(lit("2")), arg(lit("3")))))),
		ast.New("declaration", ident("s"), expr(lit("0"))),
		ast.New("for_each", ident("v"), expr(lit("xs")),
			ast.New("compound", ast.New("op_expression", lit("s"), op("+="), lit("v"))),
		),
		printStmt(lit("s")),
	)
	out, err := runScript(t, script)
	if err != nil {
		t.Fatal(err)
	}
	if out != "6\n" {
		t.Fatalf("got %q, want %q", out, "6\n")
	}
}

// Function-call frames parent to the global scope only: a function cannot
// see a variable declared in another function's local (non-global)
// frame scope, even when that function is its caller.
func TestFunctionScopeIsolation(t *testing.T) {
	peek := ast.New("function", ident("peek"), ast.New("parameter_list"),
		ast.New("compound", ast.New("return", lit("secret"))),
	)
	caller := ast.New("function", ident("caller"), ast.New("parameter_list"),
		ast.New("compound",
			ast.New("declaration", ident("secret"), expr(lit("1"))),
			ast.New("return", callFn("peek")),
		),
	)
	script := ast.New("script", peek, caller, printStmt(callFn("caller")))
	_, err := runScript(t, script)
	if err == nil {
		t.Fatal("expected a NameError: callee must not see the caller's local variable")
	}
}

// Return short-circuits sibling statement execution within the same
// function body.
func TestReturnShortCircuitsSiblingStatements(t *testing.T) {
	fn := ast.New("function", ident("f"), ast.New("parameter_list"),
		ast.New("compound",
			ast.New("return", lit("1")),
			printStmt(lit("2")), // must never run
		),
	)
	script := ast.New("script", fn, printStmt(callFn("f")))
	out, err := runScript(t, script)
	if err != nil {
		t.Fatal(err)
	}
	if out != "1\n" {
		t.Fatalf("got %q, want only the return value printed once: %q", out, "1\n")
	}
}

// A top-level `return` (no enclosing call frame) simply ends the script
// rather than surfacing the internal return-control-flow signal as an
// error.
func TestTopLevelReturnEndsScriptCleanly(t *testing.T) {
	script := ast.New("script",
		printStmt(lit("1")),
		ast.New("return", lit("0")),
		printStmt(lit("2")), // must never run
	)
	out, err := runScript(t, script)
	if err != nil {
		t.Fatal(err)
	}
	if out != "1\n" {
		t.Fatalf("got %q, want %q", out, "1\n")
	}
}

// Declaring the same name twice in one scope frees the previous binding's
// pool allocation (shadow-by-reassignment), even for pool-backed values.
func TestShadowingFreesOldStringAllocation(t *testing.T) {
	var buf bytes.Buffer
	ctx := newTestContext(&buf, "")
	before := ctx.Pool.FreeLeafSizes()

	script := ast.New("script",
		ast.New("declaration", ident("s"), expr(lit(`"first"`))),
		ast.New("declaration", ident("s"), expr(lit(`"second"`))),
		printStmt(lit("s")),
	)
	if _, err := Run(ctx, script); err != nil {
		t.Fatal(err)
	}
	if out := buf.String(); out != "second\n" {
		t.Fatalf("got %q, want %q", out, "second\n")
	}

	v, ok := ctx.Global.Lookup("s")
	if !ok {
		t.Fatal("expected s to be declared")
	}
	ctx.Heap.Free(v.Value)

	after := ctx.Pool.FreeLeafSizes()
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("expected the shadowed \"first\" allocation to have been freed; before=%v after=%v", before, after)
	}
}

// While loops re-evaluate their condition before each iteration and give
// each iteration a fresh body scope, while mutating the shared loop
// variable through an op_expression lvalue.
func TestWhileLoop(t *testing.T) {
	script := ast.New("script",
		ast.New("declaration", ident("i"), expr(lit("0"))),
		ast.New("declaration", ident("sum"), expr(lit("0"))),
		ast.New("while",
			expr(ast.New("op_expression", lit("i"), op("<"), lit("3"))),
			ast.New("compound",
				ast.New("op_expression", lit("sum"), op("+="), lit("i")),
				ast.New("op_expression", lit("i"), op("+="), lit("1")),
			),
		),
		printStmt(lit("sum")),
	)
	out, err := runScript(t, script)
	if err != nil {
		t.Fatal(err)
	}
	if out != "3\n" {
		t.Fatalf("got %q, want %q", out, "3\n")
	}
}

// A namespace_decl runs its nested content inline (no file load) under a
// qualified prefix, exactly like an import's body.
func TestNamespaceDecl(t *testing.T) {
	ns := ast.New("namespace_decl", ident("ns"), ast.New("content",
		ast.New("function", ident("greet"), ast.New("parameter_list"),
			ast.New("compound", ast.New("return", lit("42"))),
		),
	))
	script := ast.New("script", ns, printStmt(callFn("ns.greet")))
	out, err := runScript(t, script)
	if err != nil {
		t.Fatal(err)
	}
	if out != "42\n" {
		t.Fatalf("got %q, want %q", out, "42\n")
	}
}

// __print frees each pool-backed argument once it has been stringified: the
// pool must return to its pre-call shape once the call returns.
func TestPrintFreesStringArgument(t *testing.T) {
	var out bytes.Buffer
	ctx := newTestContext(&out, "")
	before := ctx.Pool.FreeLeafSizes()

	script := ast.New("script", printStmt(lit(`"hello"`)))
	if _, err := Run(ctx, script); err != nil {
		t.Fatal(err)
	}

	after := ctx.Pool.FreeLeafSizes()
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("expected the pool fully reclaimed after print, before=%v after=%v", before, after)
	}
}

// String concatenation frees both operands once the (separately allocated)
// result has been produced; only the result's own allocation should remain
// live afterward.
func TestStringConcatFreesOperands(t *testing.T) {
	var out bytes.Buffer
	ctx := newTestContext(&out, "")
	before := ctx.Pool.FreeLeafSizes()

	script := ast.New("script",
		ast.New("declaration", ident("s"), expr(ast.New("op_expression", lit(`"a"`), op("+"), lit(`"b"`)))),
	)
	if _, err := Run(ctx, script); err != nil {
		t.Fatal(err)
	}

	v, ok := ctx.Global.Lookup("s")
	if !ok {
		t.Fatal("expected s to be declared")
	}
	ctx.Heap.Free(v.Value)

	after := ctx.Pool.FreeLeafSizes()
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("expected only s's own allocation to have been live; before=%v after=%v", before, after)
	}
}

// for-each frees its cloned iterable's container once its elements are
// snapshotted, and frees each snapshotted element once re-cloned for the
// loop variable, leaving only the original list's own allocations live.
func TestForEachFreesIterableAndElements(t *testing.T) {
	var out bytes.Buffer
	ctx := newTestContext(&out, "")
	before := ctx.Pool.FreeLeafSizes()

	script := ast.New("script",
		ast.New("declaration", ident("xs"), expr(ast.New("list_expression",
			argList(arg(lit(`"a"`)), arg(lit(`"b"`)))))),
		ast.New("for_each", ident("v"), expr(lit("xs")),
			ast.New("compound", printStmt(lit("v"))),
		),
	)
	if _, err := Run(ctx, script); err != nil {
		t.Fatal(err)
	}

	xs, ok := ctx.Global.Lookup("xs")
	if !ok {
		t.Fatal("expected xs to be declared")
	}
	list, err := ctx.Heap.List(xs.Value)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range list.Elements {
		ctx.Heap.Free(e)
	}
	ctx.Heap.Free(xs.Value)

	after := ctx.Pool.FreeLeafSizes()
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("expected only xs's own allocations to have been live; before=%v after=%v", before, after)
	}
}

// __readln reads one line from the bound input stream.
func TestReadln(t *testing.T) {
	var out bytes.Buffer
	ctx := newTestContext(&out, "hello\n")
	script := ast.New("script",
		ast.New("declaration", ident("line"), expr(callFn("__readln"))),
		printStmt(lit("line")),
	)
	if _, err := Run(ctx, script); err != nil {
		t.Fatal(err)
	}
	if out.String() != "hello\n" {
		t.Fatalf("got %q, want %q", out.String(), "hello\n")
	}
}
