// Command pscript runs a pscript source file, or starts an interactive
// REPL when invoked with no arguments, grounded on the teacher's
// hub-driven main.go entry point.
package main

import (
	"fmt"
	"os"

	"github.com/pscript-run/pscript/source/context"
	"github.com/pscript-run/pscript/source/evaluator"
	"github.com/pscript-run/pscript/source/repl"
)

// arenaSize is the default memory-pool size for the process's single
// interpreter instance.
const arenaSize = 1 << 20

func main() {
	streams := repl.NewStreams(os.Stdin, os.Stdout)
	ctx := context.New(arenaSize, streams)
	ctx.BaseDir = "."

	if len(os.Args) > 1 {
		runFile(ctx, os.Args[1])
		return
	}
	repl.Start(ctx, os.Stdout)
}

func runFile(ctx *context.Context, path string) {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "IOError:", err)
		os.Exit(1)
	}
	if ctx.Parse == nil {
		fmt.Fprintln(os.Stderr, "no parser configured: this build only exercises the evaluator core")
		os.Exit(1)
	}
	root, err := ctx.Parse(string(source))
	if err != nil {
		fmt.Fprintln(os.Stderr, "ParseError:", err)
		os.Exit(1)
	}
	if _, err := evaluator.Run(ctx, root); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
