/*
Package driver wires the four pipeline stages — scanner, parser,
standardizer, CSE machine — together and exposes the handful of run modes
the command line offers: evaluate a program, or dump its AST/Standardized
Tree without running it.

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package driver

import (
	"io"

	"github.com/npillmayer/schuko/tracing"
	"github.com/ravindusw/rpal-interpreter/internal/ast"
	"github.com/ravindusw/rpal-interpreter/internal/cse"
	"github.com/ravindusw/rpal-interpreter/internal/parser"
	"github.com/ravindusw/rpal-interpreter/internal/st"
	"github.com/ravindusw/rpal-interpreter/internal/standardize"
	"github.com/ravindusw/rpal-interpreter/internal/trace"
	"github.com/ravindusw/rpal-interpreter/internal/value"
)

func tracer() tracing.Trace {
	return trace.Select("rpal.driver")
}

// Mode selects what Run does with a parsed program.
type Mode int

const (
	// ModeEvaluate runs the program to completion and prints nothing by
	// itself beyond what the program's own Print calls emit.
	ModeEvaluate Mode = iota
	// ModeDumpAST prints the parsed AST instead of evaluating it.
	ModeDumpAST
	// ModeDumpST prints the Standardized Tree instead of evaluating it.
	ModeDumpST
)

// Options configures a single Run.
type Options struct {
	Mode Mode
	Out  io.Writer // Print output sink, and dump target for ModeDumpAST/ModeDumpST

	// ControlStackOut/ValueStackOut, if non-nil, receive one line per CSE
	// rule application: the serialized Control stack / value Stack after
	// that step. The optional "Trace dump" external collaborator.
	ControlStackOut io.Writer
	ValueStackOut   io.Writer
}

// Run executes source through as much of the pipeline as Mode requires.
func Run(source string, opts Options) (value.Value, error) {
	a, err := parser.Parse(source)
	if err != nil {
		return value.Value{}, err
	}
	if opts.Mode == ModeDumpAST {
		io.WriteString(opts.Out, ast.Dump(a))
		return value.Value{}, nil
	}

	tracer().Debugf("parsed AST:\n%s", ast.Dump(a))
	s, err := standardize.Standardize(a)
	if err != nil {
		return value.Value{}, err
	}
	if opts.Mode == ModeDumpST {
		io.WriteString(opts.Out, st.Dump(s))
		return value.Value{}, nil
	}

	tracer().Debugf("standardized tree:\n%s", st.Dump(s))
	return cse.EvalTraced(s, opts.Out, opts.ControlStackOut, opts.ValueStackOut)
}
