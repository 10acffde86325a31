package driver

import (
	"bytes"
	"testing"
)

// end-to-end scenarios: each checks that running a complete program
// through the full pipeline produces the expected line on the Print sink.
func TestEndToEndScenarios(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"sum", "let x = 5 in let y = 10 in Print(x + y)", "15\n"},
		// the bare "rec factorial n = ... in ..." form has no production in
		// the grammar without an enclosing let; read as shorthand for it.
		{"recursive-factorial", "let rec factorial n = n eq 0 -> 1 | n * factorial (n - 1) in Print(factorial 5)", "120\n"},
		{"tuple-order", "let tuple = (1, 2, 3) in Print(Order tuple)", "3\n"},
		{"nested-where", "Print(sqr_sum) where sqr_sum = x**2 + y**2 where x = 3 where y = 4", "25\n"},
		{"simultaneous-defs", "let x = 1 and y = 2 and z = 3 in Print((x, y, z))", "(1, 2, 3)\n"},
		{"function-form", "let Inc x = x + 1 in Print(Inc 5)", "6\n"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var out bytes.Buffer
			if _, err := Run(c.src, Options{Mode: ModeEvaluate, Out: &out}); err != nil {
				t.Fatalf("Run(%q): %v", c.src, err)
			}
			if out.String() != c.want {
				t.Fatalf("got %q, want %q", out.String(), c.want)
			}
		})
	}
}

func TestDumpASTMode(t *testing.T) {
	var out bytes.Buffer
	if _, err := Run("1 + 2", Options{Mode: ModeDumpAST, Out: &out}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Len() == 0 {
		t.Fatalf("expected non-empty AST dump")
	}
}

func TestDumpSTMode(t *testing.T) {
	var out bytes.Buffer
	if _, err := Run("1 + 2", Options{Mode: ModeDumpST, Out: &out}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Len() == 0 {
		t.Fatalf("expected non-empty ST dump")
	}
}

func TestTraceDumpStreams(t *testing.T) {
	var sink, control, values bytes.Buffer
	if _, err := Run("1 + 2", Options{
		Mode:            ModeEvaluate,
		Out:             &sink,
		ControlStackOut: &control,
		ValueStackOut:   &values,
	}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if control.Len() == 0 {
		t.Fatalf("expected non-empty control-stack trace")
	}
	if values.Len() == 0 {
		t.Fatalf("expected non-empty value-stack trace")
	}
}
