/*
Package scan implements the RPAL scanner: a hand-written lexer over the
lexical grammar described by the language core. It recognizes lexeme
categories in a fixed priority order at every input position and produces
a finite token.Token sequence terminated by an EndOfFile token.

A DFA-based generator (the teacher module reaches for timtadh/lexmachine
elsewhere in the pack) is deliberately not used here: RPAL's lexical rule
for strings requires a hard priority break — once the scanner commits to
lexing a string literal it must not fall through to operator lexing on
failure, it must report LexError. A single combined-DFA lexer matches the
longest run across all patterns simultaneously and cannot express "commit
to this category, then fail hard" without contorting the grammar, so the
scanner is written by hand instead, as the core explicitly calls for.

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package scan

import (
	"strings"

	"github.com/npillmayer/schuko/tracing"
	"github.com/ravindusw/rpal-interpreter/internal/rerr"
	"github.com/ravindusw/rpal-interpreter/internal/token"
	"github.com/ravindusw/rpal-interpreter/internal/trace"
)

func tracer() tracing.Trace {
	return trace.Select("rpal.scan")
}

// operatorChars is the set of characters that may occur in a maximal-munch
// operator run.
const operatorChars = "+-*<>&.@/:=~|$!#%^_[]{}\"'?"

// Scan converts source text into a finite token sequence, terminated by an
// EndOfFile token. It fails fast with a *rerr.Error on the first malformed
// lexeme.
func Scan(source string) ([]token.Token, error) {
	s := &scanner{src: source}
	var toks []token.Token
	for {
		tok, err := s.next()
		if err != nil {
			tracer().Errorf("scan error: %v", err)
			return nil, err
		}
		tracer().Debugf("scanned %v", tok)
		toks = append(toks, tok)
		if tok.Kind == token.EndOfFile {
			return toks, nil
		}
	}
}

type scanner struct {
	src string
	pos int
}

func (s *scanner) eof() bool {
	return s.pos >= len(s.src)
}

func (s *scanner) peek() byte {
	if s.eof() {
		return 0
	}
	return s.src[s.pos]
}

func (s *scanner) peekAt(off int) byte {
	if s.pos+off >= len(s.src) {
		return 0
	}
	return s.src[s.pos+off]
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || isDigit(c) || c == '_'
}

func isOperatorChar(c byte) bool {
	return strings.IndexByte(operatorChars, c) >= 0
}

// next scans and returns the single next token, skipping whitespace and
// comments first.
func (s *scanner) next() (token.Token, error) {
	s.skipTrivia()
	start := s.pos
	if s.eof() {
		return token.Token{Kind: token.EndOfFile, Span: token.Span{From: start, To: start}}, nil
	}
	c := s.peek()
	switch {
	case isLetter(c):
		return s.scanIdentifier(), nil
	case isDigit(c):
		return s.scanInteger(), nil
	case c == '"' || c == '\'':
		return s.scanString()
	case c == '(' || c == ')' || c == ';' || c == ',':
		s.pos++
		return token.Token{Kind: token.Punctuation, Lexeme: string(c), Span: token.Span{From: start, To: s.pos}}, nil
	case isOperatorChar(c):
		return s.scanOperator(), nil
	default:
		s.pos++
		return token.Token{}, rerr.Lexf(token.Span{From: start, To: s.pos}, "unrecognized character %q", c)
	}
}

// skipTrivia discards whitespace and '//' line comments.
func (s *scanner) skipTrivia() {
	for !s.eof() {
		c := s.peek()
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			s.pos++
		case c == '/' && s.peekAt(1) == '/':
			for !s.eof() && s.peek() != '\n' {
				s.pos++
			}
		default:
			return
		}
	}
}

func (s *scanner) scanIdentifier() token.Token {
	start := s.pos
	for !s.eof() && isIdentChar(s.peek()) {
		s.pos++
	}
	lexeme := s.src[start:s.pos]
	kind := token.Identifier
	if token.Keywords[lexeme] {
		kind = token.Keyword
	}
	return token.Token{Kind: kind, Lexeme: lexeme, Span: token.Span{From: start, To: s.pos}}
}

func (s *scanner) scanInteger() token.Token {
	start := s.pos
	for !s.eof() && isDigit(s.peek()) {
		s.pos++
	}
	return token.Token{Kind: token.Integer, Lexeme: s.src[start:s.pos], Span: token.Span{From: start, To: s.pos}}
}

// scanString consumes a quote-delimited string literal, recognizing the
// escape sequences \t \n \\ \" \'. The returned lexeme is the exact source
// substring, delimiters included; decoding of escapes is left to whoever
// builds an AST string-literal node from the token.
func (s *scanner) scanString() (token.Token, error) {
	start := s.pos
	quote := s.peek()
	s.pos++ // consume opening quote
	for {
		if s.eof() {
			return token.Token{}, rerr.Lexf(token.Span{From: start, To: s.pos}, "unterminated string literal")
		}
		c := s.peek()
		if c == '\\' {
			if s.pos+1 >= len(s.src) {
				return token.Token{}, rerr.Lexf(token.Span{From: start, To: s.pos}, "unterminated string literal")
			}
			next := s.peekAt(1)
			switch next {
			case 't', 'n', '\\', '"', '\'':
				s.pos += 2
				continue
			default:
				return token.Token{}, rerr.Lexf(token.Span{From: s.pos, To: s.pos + 2}, "invalid escape sequence \\%c", next)
			}
		}
		if c == quote {
			s.pos++ // consume closing quote
			return token.Token{Kind: token.String, Lexeme: s.src[start:s.pos], Span: token.Span{From: start, To: s.pos}}, nil
		}
		if c == '\n' {
			return token.Token{}, rerr.Lexf(token.Span{From: start, To: s.pos}, "unterminated string literal")
		}
		s.pos++
	}
}

// scanOperator consumes a maximal run of characters drawn from
// operatorChars, except that '->'…-producing runs are still single tokens
// by virtue of maximal munch; no further special-casing is required since
// '>=', '<=' and '**' are already single runs of operator characters.
func (s *scanner) scanOperator() token.Token {
	start := s.pos
	for !s.eof() && isOperatorChar(s.peek()) {
		s.pos++
	}
	return token.Token{Kind: token.Operator, Lexeme: s.src[start:s.pos], Span: token.Span{From: start, To: s.pos}}
}

// Unquote decodes an RPAL string literal's escapes and strips its
// delimiters, given the literal's raw source lexeme (as produced by Scan).
func Unquote(lexeme string) string {
	if len(lexeme) < 2 {
		return lexeme
	}
	inner := lexeme[1 : len(lexeme)-1]
	var b strings.Builder
	for i := 0; i < len(inner); i++ {
		c := inner[i]
		if c == '\\' && i+1 < len(inner) {
			i++
			switch inner[i] {
			case 't':
				b.WriteByte('\t')
			case 'n':
				b.WriteByte('\n')
			case '\\':
				b.WriteByte('\\')
			case '"':
				b.WriteByte('"')
			case '\'':
				b.WriteByte('\'')
			default:
				b.WriteByte(inner[i])
			}
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}
