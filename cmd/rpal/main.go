/*
Command rpal is the command-line front end for the interpreter: it reads a
source file, runs it through the scan/parse/standardize/evaluate pipeline,
and reports errors with the pipeline stage that raised them.

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package main

import (
	"os"

	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/pterm/pterm"
	"github.com/ravindusw/rpal-interpreter/internal/driver"
	"github.com/ravindusw/rpal-interpreter/internal/rerr"
	"github.com/spf13/cobra"
)

// exit codes distinguish the pipeline stage a failure came from, so a
// caller scripting against rpal can tell a syntax error from a runtime one
// without scraping stderr text.
const (
	exitOK = iota
	exitUsage
	exitLex
	exitParse
	exitStandardize
	exitRuntime
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var astMode, stMode, verbose bool

	root := &cobra.Command{
		Use:   "rpal <path>",
		Short: "Evaluate an RPAL program",
		Args:  cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, cmdArgs []string) error {
			gtrace.SyntaxTracer = gologadapter.New()
			if verbose {
				gtrace.SyntaxTracer.SetTraceLevel(tracing.LevelDebug)
			} else {
				gtrace.SyntaxTracer.SetTraceLevel(tracing.LevelError)
			}
			src, err := os.ReadFile(cmdArgs[0])
			if err != nil {
				return err
			}
			mode := driver.ModeEvaluate
			switch {
			case astMode:
				mode = driver.ModeDumpAST
			case stMode:
				mode = driver.ModeDumpST
			}
			_, err = driver.Run(string(src), driver.Options{Mode: mode, Out: cmd.OutOrStdout()})
			return err
		},
	}
	root.Flags().BoolVar(&astMode, "ast", false, "print the parsed AST instead of evaluating")
	root.Flags().BoolVar(&stMode, "st", false, "print the Standardized Tree instead of evaluating")
	root.Flags().BoolVarP(&verbose, "verbose", "v", false, "trace each pipeline stage to stderr")
	root.SetArgs(args)

	if err := root.Execute(); err != nil {
		return reportError(err)
	}
	return exitOK
}

func reportError(err error) int {
	rerrs, ok := err.(*rerr.Error)
	if !ok {
		pterm.Error.Println(err.Error())
		return exitUsage
	}
	pterm.Error.Printfln("%s: %s", rerrs.Kind, rerrs.Error())
	switch {
	case rerrs.Kind == rerr.Lex:
		return exitLex
	case rerrs.Kind == rerr.Parse:
		return exitParse
	case rerrs.Kind == rerr.Standardize:
		return exitStandardize
	case rerrs.Kind.IsRuntime():
		return exitRuntime
	}
	return exitUsage
}
