package cse

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ravindusw/rpal-interpreter/internal/parser"
	"github.com/ravindusw/rpal-interpreter/internal/standardize"
	"github.com/ravindusw/rpal-interpreter/internal/value"
)

func run(t *testing.T, src string) (value.Value, string) {
	t.Helper()
	a, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	s, err := standardize.Standardize(a)
	if err != nil {
		t.Fatalf("Standardize(%q): %v", src, err)
	}
	var out bytes.Buffer
	v, err := Eval(s, &out)
	if err != nil {
		t.Fatalf("Eval(%q): %v", src, err)
	}
	return v, out.String()
}

func TestEvalArithmetic(t *testing.T) {
	v, _ := run(t, "1 + 2 * 3")
	if v.Kind != value.IntV || v.Int != 7 {
		t.Fatalf("got %v, want 7", v)
	}
}

func TestEvalPowerRightAssoc(t *testing.T) {
	v, _ := run(t, "2 ** 3 ** 2") // 2 ** (3 ** 2) = 2 ** 9 = 512
	if v.Int != 512 {
		t.Fatalf("got %v, want 512", v)
	}
}

func TestEvalLet(t *testing.T) {
	v, _ := run(t, "let x = 5 in x * x")
	if v.Int != 25 {
		t.Fatalf("got %v, want 25", v)
	}
}

func TestEvalLambdaApplication(t *testing.T) {
	v, _ := run(t, "(fn x y . x + y) 3 4")
	if v.Int != 7 {
		t.Fatalf("got %v, want 7", v)
	}
}

func TestEvalConditional(t *testing.T) {
	v, _ := run(t, "1 gr 2 -> 100 | 200")
	if v.Int != 200 {
		t.Fatalf("got %v, want 200", v)
	}
}

func TestEvalTupleFormationAndSelection(t *testing.T) {
	v, _ := run(t, "(1, 2, 3) 2")
	if v.Int != 2 {
		t.Fatalf("got %v, want 2", v)
	}
}

func TestEvalTupleIndexOutOfBounds(t *testing.T) {
	a, err := parser.Parse("(1, 2, 3) 5")
	if err != nil {
		t.Fatal(err)
	}
	s, err := standardize.Standardize(a)
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	if _, err := Eval(s, &out); err == nil {
		t.Fatalf("expected IndexError for out-of-bounds tuple selection")
	}
}

func TestEvalDivByZero(t *testing.T) {
	a, err := parser.Parse("1 / 0")
	if err != nil {
		t.Fatal(err)
	}
	s, err := standardize.Standardize(a)
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	if _, err := Eval(s, &out); err == nil {
		t.Fatalf("expected DivByZero error")
	}
}

func TestEvalRecFactorial(t *testing.T) {
	v, _ := run(t, "let rec fact n = n eq 0 -> 1 | n * fact (n - 1) in fact 5")
	if v.Int != 120 {
		t.Fatalf("got %v, want 120", v)
	}
}

func TestEvalPrintBuiltin(t *testing.T) {
	_, out := run(t, "Print 42")
	if out != "42\n" {
		t.Fatalf("got %q, want %q", out, "42\n")
	}
}

func TestEvalStringComparison(t *testing.T) {
	cases := []struct {
		src  string
		want bool
	}{
		{"'ab' ls 'ac'", true},
		{"'ac' ls 'ab'", false},
		{"'ab' le 'ab'", true},
		{"'ac' gr 'ab'", true},
		{"'ab' gr 'ac'", false},
		{"'ab' ge 'ab'", true},
		{"'ab' eq 'ab'", true},
		{"'ab' ne 'ac'", true},
	}
	for _, c := range cases {
		v, _ := run(t, c.src)
		if v.Kind != value.BoolV || v.Bool != c.want {
			t.Errorf("%s: got %v, want %v", c.src, v, c.want)
		}
	}
}

func TestEvalConcBuiltin(t *testing.T) {
	v, _ := run(t, "'ab' @ Conc 'cd'")
	if v.Kind != value.StrV || v.Str != "abcd" {
		t.Fatalf("got %v, want abcd", v)
	}
}

func TestEvalOrderAndNull(t *testing.T) {
	v, _ := run(t, "Order (1, 2, 3)")
	if v.Int != 3 {
		t.Fatalf("got %v, want 3", v)
	}
	v, _ = run(t, "Null nil")
	if v.Kind != value.BoolV || !v.Bool {
		t.Fatalf("got %v, want true", v)
	}
}

func TestEvalAndSimultaneousDefs(t *testing.T) {
	v, _ := run(t, "let a = 1 and b = 2 in a + b")
	if v.Int != 3 {
		t.Fatalf("got %v, want 3", v)
	}
}

func TestEvalTuplePatternBinding(t *testing.T) {
	v, _ := run(t, "let x, y = 1, 2 in x + y")
	if v.Int != 3 {
		t.Fatalf("got %v, want 3", v)
	}
}

func TestEvalUnboundIdentifier(t *testing.T) {
	a, err := parser.Parse("undefined_name")
	if err != nil {
		t.Fatal(err)
	}
	s, err := standardize.Standardize(a)
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	_, err = Eval(s, &out)
	if err == nil || !strings.Contains(err.Error(), "unbound") {
		t.Fatalf("expected unbound identifier error, got %v", err)
	}
}
