// Package repl drives an interactive pscript session, grounded on the
// teacher's hub/readline REPL loop: read a line, hand it to the
// interpreter, print whatever it produced or any error, repeat.
package repl

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/lmorg/readline"

	"github.com/pscript-run/pscript/source/context"
	"github.com/pscript-run/pscript/source/evaluator"
)

const prompt = "pscript> "

// Start runs the REPL against ctx until the user enters "quit" or "exit",
// or the line reader reports an error (EOF, Ctrl-D, Ctrl-C).
// ctx.Parse must already be set by the caller; a nil Parse func makes every
// line fail with a clear error rather than panicking.
func Start(ctx *context.Context, out io.Writer) {
	rline := readline.NewInstance()
	rline.SetPrompt(prompt)

	for {
		line, err := rline.Readline()
		if err != nil { // Ctrl-D / Ctrl-C
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			return
		}

		if ctx.Parse == nil {
			fmt.Fprintln(out, "no parser configured: this build only exercises the evaluator core")
			continue
		}

		root, err := ctx.Parse(line)
		if err != nil {
			fmt.Fprintln(out, "ParseError:", err)
			continue
		}
		v, err := evaluator.Run(ctx, root)
		if err != nil {
			fmt.Fprintln(out, err)
			continue
		}
		s, err := ctx.Heap.Stringify(v)
		if err != nil {
			fmt.Fprintln(out, err)
			continue
		}
		fmt.Fprintln(out, s)
	}
}

// NewStreams builds the context.Streams bound to a script's I/O, used by
// both file-execution and REPL modes.
func NewStreams(in io.Reader, out io.Writer) context.Streams {
	return context.Streams{Out: out, In: bufio.NewReader(in)}
}
