/*
Package rerr collects the error taxonomy that every stage of the pipeline
reports through: lexing, parsing, standardizing, and the CSE machine.

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package rerr

import (
	"fmt"

	"github.com/ravindusw/rpal-interpreter/internal/token"
)

// Kind distinguishes the stage and, for runtime failures, the specific
// condition that raised an error.
type Kind int

const (
	Lex Kind = iota
	Parse
	Standardize
	UnboundIdentifier
	TypeError
	ArityError
	IndexError
	DivByZero
	BuiltinError
)

func (k Kind) String() string {
	switch k {
	case Lex:
		return "LexError"
	case Parse:
		return "ParseError"
	case Standardize:
		return "StandardizeError"
	case UnboundIdentifier:
		return "UnboundIdentifier"
	case TypeError:
		return "TypeError"
	case ArityError:
		return "ArityError"
	case IndexError:
		return "IndexError"
	case DivByZero:
		return "DivByZero"
	case BuiltinError:
		return "BuiltinError"
	}
	return "Error"
}

// Error is the single error type produced by the pipeline. Span carries the
// source position for Lex/Parse/Standardize errors; runtime errors carry
// the Standardized Tree span of the node involved where the machine has one
// at hand (unbound identifiers, conditional guards, closure arity), and the
// zero Span otherwise.
type Error struct {
	Kind Kind
	Msg  string
	Span token.Span // zero value if not applicable
}

func (e *Error) Error() string {
	if e.Span != (token.Span{}) {
		return fmt.Sprintf("%s at %s: %s", e.Kind, e.Span, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// IsRuntime reports whether a Kind belongs to the RuntimeError family
// (as opposed to LexError/ParseError/StandardizeError).
func (k Kind) IsRuntime() bool {
	return k >= UnboundIdentifier
}

// Lexf builds a LexError at a given span.
func Lexf(span token.Span, format string, args ...interface{}) *Error {
	return &Error{Kind: Lex, Span: span, Msg: fmt.Sprintf(format, args...)}
}

// Parsef builds a ParseError at a given span.
func Parsef(span token.Span, format string, args ...interface{}) *Error {
	return &Error{Kind: Parse, Span: span, Msg: fmt.Sprintf(format, args...)}
}

// Standardizef builds a StandardizeError, signalling an internal invariant
// violation (the parser should never hand the standardizer a malformed AST).
func Standardizef(span token.Span, format string, args ...interface{}) *Error {
	return &Error{Kind: Standardize, Span: span, Msg: fmt.Sprintf(format, args...)}
}

// Runtimef builds a RuntimeError of the given kind at the given ST span.
func Runtimef(kind Kind, span token.Span, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Span: span, Msg: fmt.Sprintf(format, args...)}
}
