package parser

import (
	"testing"

	"github.com/ravindusw/rpal-interpreter/internal/ast"
)

func parseOrFatal(t *testing.T, src string) *ast.Node {
	t.Helper()
	n, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", src, err)
	}
	return n
}

func TestParseDeterminismByStructuralHash(t *testing.T) {
	const src = "let rec fact n = n eq 0 -> 1 | n * fact (n - 1) in Print (fact 5)"
	a := parseOrFatal(t, src)
	b := parseOrFatal(t, src)
	ha, err := ast.StructuralHash(a)
	if err != nil {
		t.Fatalf("StructuralHash(a): %v", err)
	}
	hb, err := ast.StructuralHash(b)
	if err != nil {
		t.Fatalf("StructuralHash(b): %v", err)
	}
	if ha != hb {
		t.Fatalf("parsing %q twice gave different structural hashes: %s vs %s", src, ha, hb)
	}
}

func TestParseLetIn(t *testing.T) {
	n := parseOrFatal(t, "let x = 5 in x")
	if n.Kind != ast.Let {
		t.Fatalf("got kind %v, want let", n.Kind)
	}
	bind := n.Children[0]
	if bind.Kind != ast.Bind || bind.Children[0].Name != "x" {
		t.Errorf("unexpected bind: %s", ast.Dump(bind))
	}
}

func TestParseLambda(t *testing.T) {
	n := parseOrFatal(t, "fn x y . x + y")
	if n.Kind != ast.Lambda {
		t.Fatalf("got kind %v, want lambda", n.Kind)
	}
	if len(n.Children) != 3 { // x, y, body
		t.Fatalf("want 3 children, got %d: %s", len(n.Children), ast.Dump(n))
	}
}

func TestParseArithPrecedence(t *testing.T) {
	n := parseOrFatal(t, "1 + 2 * 3")
	if n.Kind != ast.Arith || n.Op != "+" {
		t.Fatalf("want top-level +, got %s", ast.Dump(n))
	}
	rhs := n.Children[1]
	if rhs.Kind != ast.Arith || rhs.Op != "*" {
		t.Errorf("want right child *, got %s", ast.Dump(rhs))
	}
}

func TestParsePowerRightAssoc(t *testing.T) {
	n := parseOrFatal(t, "2 ** 3 ** 4")
	if n.Op != "**" {
		t.Fatalf("want **, got %s", ast.Dump(n))
	}
	if n.Children[0].Kind != ast.IntLit || n.Children[0].IntVal != 2 {
		t.Errorf("left should stay the leaf 2: %s", ast.Dump(n))
	}
	rhs := n.Children[1]
	if rhs.Op != "**" {
		t.Errorf("right assoc: want nested **, got %s", ast.Dump(rhs))
	}
}

func TestParseConditional(t *testing.T) {
	n := parseOrFatal(t, "n eq 0 -> 1 | n")
	if n.Kind != ast.Cond {
		t.Fatalf("want Cond, got %s", ast.Dump(n))
	}
	if n.Children[0].Kind != ast.Compare || n.Children[0].Op != "eq" {
		t.Errorf("want eq compare guard, got %s", ast.Dump(n.Children[0]))
	}
}

func TestParseCompareAliases(t *testing.T) {
	n := parseOrFatal(t, "a >= b")
	if n.Kind != ast.Compare || n.Op != "ge" {
		t.Fatalf("want ge compare, got %s", ast.Dump(n))
	}
}

func TestParseTuple(t *testing.T) {
	n := parseOrFatal(t, "1, 2, 3")
	if n.Kind != ast.Tau || len(n.Children) != 3 {
		t.Fatalf("want tau of 3, got %s", ast.Dump(n))
	}
}

func TestParseApplication(t *testing.T) {
	n := parseOrFatal(t, "Print x y")
	if n.Kind != ast.Gamma {
		t.Fatalf("want gamma, got %s", ast.Dump(n))
	}
	// left-assoc: (Print x) y
	inner := n.Children[0]
	if inner.Kind != ast.Gamma {
		t.Errorf("want left-assoc nested gamma, got %s", ast.Dump(n))
	}
}

func TestParseFunctionForm(t *testing.T) {
	n := parseOrFatal(t, "let f x y = x + y in f 1 2")
	def := n.Children[0]
	if def.Kind != ast.FnForm {
		t.Fatalf("want function_form, got %s", ast.Dump(def))
	}
	if def.Children[0].Name != "f" || len(def.Children) != 4 { // f, x, y, body
		t.Errorf("unexpected function_form shape: %s", ast.Dump(def))
	}
}

func TestParseWhere(t *testing.T) {
	n := parseOrFatal(t, "x where x = 1")
	if n.Kind != ast.Where {
		t.Fatalf("want where, got %s", ast.Dump(n))
	}
}

func TestParseWithinAndRec(t *testing.T) {
	n := parseOrFatal(t, "let rec f = g within h = g in f")
	def := n.Children[0]
	if def.Kind != ast.Within {
		t.Fatalf("want within, got %s", ast.Dump(def))
	}
}

func TestParseStringLiteral(t *testing.T) {
	n := parseOrFatal(t, `'abc'`)
	if n.Kind != ast.StrLit || n.StrVal != "abc" {
		t.Fatalf("want StrLit abc, got %s", ast.Dump(n))
	}
}

func TestParseUnaryMinus(t *testing.T) {
	n := parseOrFatal(t, "-5 + 1")
	if n.Kind != ast.Arith || n.Op != "+" {
		t.Fatalf("want top-level +, got %s", ast.Dump(n))
	}
	neg := n.Children[0]
	if neg.Kind != ast.Arith || neg.Op != "neg" {
		t.Errorf("want neg on left, got %s", ast.Dump(neg))
	}
}

func TestParseErrorUnexpectedToken(t *testing.T) {
	if _, err := Parse("let = 1 in x"); err == nil {
		t.Fatalf("expected a parse error")
	}
}

func TestParseErrorTrailingInput(t *testing.T) {
	if _, err := Parse("1 2 )"); err == nil {
		t.Fatalf("expected a parse error for trailing ')'")
	}
}
