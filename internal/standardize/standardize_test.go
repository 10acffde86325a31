package standardize

import (
	"reflect"
	"strings"
	"testing"

	"github.com/ravindusw/rpal-interpreter/internal/ast"
	"github.com/ravindusw/rpal-interpreter/internal/parser"
	"github.com/ravindusw/rpal-interpreter/internal/st"
)

func standardizeSrc(t *testing.T, src string) *st.Node {
	t.Helper()
	a, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", src, err)
	}
	s, err := Standardize(a)
	if err != nil {
		t.Fatalf("Standardize(%q) failed: %v", src, err)
	}
	return s
}

// TestFreeVariablePreservation checks Testable Property #4: FV(AST) equals
// FV(ST) for every well-formed program, i.e. standardization must not
// change which names a program reads from its surrounding environment.
func TestFreeVariablePreservation(t *testing.T) {
	cases := []string{
		"let x = 1 in x + y",
		"fn x . x + y + z",
		"let f x = x + n in f 1",
		"let rec fact n = n eq 0 -> 1 | n * fact (n - 1) in fact m",
		"x where y = 1",
		"let a = 1 and b = a in a + b + c",
		"let x = 1 within y = x + 1 in y + z",
		"x @ Conc y",
		"(1, x, y)",
	}
	for _, src := range cases {
		a, err := parser.Parse(src)
		if err != nil {
			t.Fatalf("Parse(%q): %v", src, err)
		}
		s, err := Standardize(a)
		if err != nil {
			t.Fatalf("Standardize(%q): %v", src, err)
		}
		astFV := ast.FreeVariables(a)
		stFV := st.FreeVariables(s)
		if !reflect.DeepEqual(astFV, stFV) {
			t.Errorf("%q: FV(AST)=%v, FV(ST)=%v", src, astFV, stFV)
		}
	}
}

func TestStandardizeLetBecomesGammaLambda(t *testing.T) {
	s := standardizeSrc(t, "let x = 1 in x")
	if s.Kind != st.Gamma {
		t.Fatalf("want gamma at top, got %s", st.Dump(s))
	}
	lam := s.Children[0]
	if lam.Kind != st.Lambda || lam.Param().Name != "x" {
		t.Errorf("want lambda(x, ...), got %s", st.Dump(s))
	}
}

func TestStandardizeWhereSameShapeAsLet(t *testing.T) {
	a := standardizeSrc(t, "let x = 1 in x")
	b := standardizeSrc(t, "x where x = 1")
	if st.Dump(a) != st.Dump(b) {
		t.Errorf("let and where should standardize identically:\n%s\nvs\n%s", st.Dump(a), st.Dump(b))
	}
}

func TestStandardizeMultiParamLambdaCurries(t *testing.T) {
	s := standardizeSrc(t, "fn x y . x")
	if s.Kind != st.Lambda || s.Param().Name != "x" {
		t.Fatalf("want outer lambda(x), got %s", st.Dump(s))
	}
	inner := s.Body()
	if inner.Kind != st.Lambda || inner.Param().Name != "y" {
		t.Errorf("want inner lambda(y), got %s", st.Dump(s))
	}
}

func TestStandardizeFunctionFormCurriesLikeLambda(t *testing.T) {
	a := standardizeSrc(t, "let f x y = x in f")
	// f's bound value should be a 2-deep curried lambda, same as "fn x y . x"
	bound := a.Children[1] // gamma(lambda(f,body), VALUE)
	if bound.Kind != st.Lambda || bound.Param().Name != "x" {
		t.Fatalf("want curried lambda value for function_form, got %s", st.Dump(a))
	}
}

func TestStandardizeRecBuildsYStar(t *testing.T) {
	s := standardizeSrc(t, "let f = rec g in f")
	value := s.Children[1] // gamma(Y*, lambda(f, g))
	if value.Kind != st.Gamma || value.Children[0].Kind != st.YStar {
		t.Fatalf("want gamma(Y*, ...), got %s", st.Dump(s))
	}
}

func TestStandardizeAtRewritesToNestedGamma(t *testing.T) {
	s := standardizeSrc(t, "a @ Conc b")
	if s.Kind != st.Gamma {
		t.Fatalf("want gamma, got %s", st.Dump(s))
	}
	inner := s.Children[0]
	if inner.Kind != st.Gamma || inner.Children[0].Name != "Conc" {
		t.Errorf("want gamma(gamma(Conc,a),b), got %s", st.Dump(s))
	}
}

func TestStandardizeWithinCombinesDefs(t *testing.T) {
	s := standardizeSrc(t, "let h = g within f = g in f")
	if !strings.Contains(st.Dump(s), "<ID:g>") {
		t.Errorf("expected inner binding reference preserved: %s", st.Dump(s))
	}
}

func TestStandardizeAndDefsBuildsTuple(t *testing.T) {
	s := standardizeSrc(t, "let a = 1 and b = 2 in a")
	pattern := s.Children[0].Param()
	if pattern.Kind != st.Tau || len(pattern.Children) != 2 {
		t.Fatalf("want tau pattern of 2, got %s", st.Dump(pattern))
	}
}

func TestStandardizeRejectsBareDefinition(t *testing.T) {
	// A Bind node can never reach standardize() directly from a
	// syntactically valid program, but guard the invariant regardless.
	bare := &ast.Node{Kind: ast.Bind, Children: []*ast.Node{
		{Kind: ast.Ident, Name: "x"},
		{Kind: ast.IntLit, IntVal: 1},
	}}
	if _, err := Standardize(bare); err == nil {
		t.Fatalf("Standardize(bare Bind) should fail")
	}
	// A nil tree standardizes to nil without error.
	if _, err := Standardize(nil); err != nil {
		t.Fatalf("Standardize(nil) should be a no-op, got %v", err)
	}
}
