package scan

import (
	"testing"

	"github.com/ravindusw/rpal-interpreter/internal/token"
)

func kinds(toks []token.Token) []token.Kind {
	ks := make([]token.Kind, len(toks))
	for i, t := range toks {
		ks[i] = t.Kind
	}
	return ks
}

func TestScanBasic(t *testing.T) {
	toks, err := Scan("let x = 5 in Print(x)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []token.Kind{
		token.Keyword, token.Identifier, token.Operator, token.Integer, token.Keyword,
		token.Identifier, token.Punctuation, token.Identifier, token.Punctuation, token.EndOfFile,
	}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(got), len(want), toks)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %v, want %v (%v)", i, got[i], want[i], toks[i])
		}
	}
}

func TestScanKeywordVsIdentifier(t *testing.T) {
	toks, err := Scan("let letter = 1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if toks[0].Kind != token.Keyword {
		t.Errorf("expected 'let' to be a keyword")
	}
	if toks[1].Kind != token.Identifier {
		t.Errorf("expected 'letter' to be an identifier, got %v", toks[1])
	}
}

func TestScanMultiCharOperators(t *testing.T) {
	toks, err := Scan("a -> b | c >= d ** e")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var ops []string
	for _, tk := range toks {
		if tk.Kind == token.Operator {
			ops = append(ops, tk.Lexeme)
		}
	}
	want := []string{"->", "|", ">=", "**"}
	if len(ops) != len(want) {
		t.Fatalf("got ops %v, want %v", ops, want)
	}
	for i := range want {
		if ops[i] != want[i] {
			t.Errorf("op %d: got %q, want %q", i, ops[i], want[i])
		}
	}
}

func TestScanLineComment(t *testing.T) {
	toks, err := Scan("x // a comment\n+ y")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(toks) != 4 { // x, +, y, EOF
		t.Fatalf("comment not discarded: %v", toks)
	}
}

func TestScanString(t *testing.T) {
	toks, err := Scan(`'hello\n world'`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if toks[0].Kind != token.String {
		t.Fatalf("expected string token, got %v", toks[0])
	}
	if got, want := Unquote(toks[0].Lexeme), "hello\n world"; got != want {
		t.Errorf("Unquote() = %q, want %q", got, want)
	}
}

func TestScanUnterminatedString(t *testing.T) {
	_, err := Scan("'unterminated")
	if err == nil {
		t.Fatalf("expected LexError for unterminated string")
	}
}

func TestScanUnterminatedStringAtNewline(t *testing.T) {
	_, err := Scan("'nope\nmore")
	if err == nil {
		t.Fatalf("expected LexError for string crossing a newline")
	}
}

func TestScanTotality(t *testing.T) {
	inputs := []string{
		"",
		"let x = 5 in Print(x)",
		"rec f n = n eq 0 -> 1 | n * f (n - 1)",
		"1 + 2 * 3 ** 4",
		"(1, 2, 3)",
	}
	for _, in := range inputs {
		toks, err := Scan(in)
		if err != nil {
			t.Fatalf("Scan(%q) failed: %v", in, err)
			continue
		}
		if len(toks) == 0 || toks[len(toks)-1].Kind != token.EndOfFile {
			t.Errorf("Scan(%q) did not end in EndOfFile: %v", in, toks)
		}
	}
}
