// Package perr defines the error taxonomy raised by the interpreter core.
//
// Every kind here corresponds to one of the error categories in the
// language specification: a script that triggers one of them aborts the
// current evaluation and unwinds to the top-level entry point. There is
// no try/catch in the language itself.
package perr

import "fmt"

// Kind names one of the interpreter's error categories.
type Kind string

const (
	ParseError   Kind = "ParseError"
	NameError    Kind = "NameError"
	TypeError    Kind = "TypeError"
	ArityError   Kind = "ArityError"
	IndexError   Kind = "IndexError"
	FieldError   Kind = "FieldError"
	IOError      Kind = "IOError"
	OutOfMemory  Kind = "OutOfMemory"
	OutOfRange   Kind = "OutOfRange"
)

// Tokener is the minimal slice of ast.Node an error needs in order to quote
// the offending token in its message. Kept separate from the ast package to
// avoid an import cycle (ast has no need to know about perr).
type Tokener interface {
	TokenText() string
}

// Error is the single error type raised by every package in the core.
type Error struct {
	Kind    Kind
	Message string
	Token   string // the offending token's text, if known; "" otherwise
}

func (e *Error) Error() string {
	if e.Token == "" {
		return string(e.Kind) + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s (at %q)", e.Kind, e.Message, e.Token)
}

// Is reports whether err is a *Error of the given kind, for use with
// errors.Is-style checks in tests.
func Is(err error, kind Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == kind
}

func new(kind Kind, tok Tokener, format string, args ...any) *Error {
	e := &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
	if tok != nil {
		e.Token = tok.TokenText()
	}
	return e
}

func Name(tok Tokener, format string, args ...any) *Error   { return new(NameError, tok, format, args...) }
func Type(tok Tokener, format string, args ...any) *Error   { return new(TypeError, tok, format, args...) }
func Arity(tok Tokener, format string, args ...any) *Error  { return new(ArityError, tok, format, args...) }
func Index(tok Tokener, format string, args ...any) *Error  { return new(IndexError, tok, format, args...) }
func Field(tok Tokener, format string, args ...any) *Error  { return new(FieldError, tok, format, args...) }
func IO(tok Tokener, format string, args ...any) *Error     { return new(IOError, tok, format, args...) }
func Parse(tok Tokener, format string, args ...any) *Error  { return new(ParseError, tok, format, args...) }

// OOM reports that the pool could not satisfy an allocation. It carries no
// token because allocation failures are not tied to a specific AST node.
func OOM(format string, args ...any) *Error {
	return &Error{Kind: OutOfMemory, Message: fmt.Sprintf(format, args...)}
}

// OutOfRangeErr reports an invalid byte pointer into the pool.
func OutOfRangeErr(format string, args ...any) *Error {
	return &Error{Kind: OutOfRange, Message: fmt.Sprintf(format, args...)}
}
