/*
Package parser implements a recursive-descent parser for RPAL, one
procedure per grammar non-terminal, following the teacher's style of
building each result directly as a returned subtree rather than pushing
onto an explicit parse stack.

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package parser

import (
	"strconv"

	"github.com/npillmayer/schuko/tracing"
	"github.com/ravindusw/rpal-interpreter/internal/ast"
	"github.com/ravindusw/rpal-interpreter/internal/rerr"
	"github.com/ravindusw/rpal-interpreter/internal/scan"
	"github.com/ravindusw/rpal-interpreter/internal/token"
	"github.com/ravindusw/rpal-interpreter/internal/trace"
)

func tracer() tracing.Trace {
	return trace.Select("rpal.parser")
}

// Parse scans and parses a complete RPAL program, returning its AST.
func Parse(source string) (*ast.Node, error) {
	toks, err := scan.Scan(source)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	e, err := p.parseE()
	if err != nil {
		return nil, err
	}
	if !p.at(token.EndOfFile) {
		return nil, rerr.Parsef(p.cur().Span, "unexpected trailing input %q", p.cur().Lexeme)
	}
	return e, nil
}

type parser struct {
	toks []token.Token
	pos  int
}

func (p *parser) cur() token.Token {
	return p.toks[p.pos]
}

func (p *parser) at(kind token.Kind) bool {
	return p.cur().Kind == kind
}

func (p *parser) atKeyword(word string) bool {
	return p.cur().IsKeyword(word)
}

func (p *parser) atOperator(lexeme string) bool {
	return p.cur().IsOperator(lexeme)
}

func (p *parser) atPunct(lexeme string) bool {
	return p.cur().IsPunct(lexeme)
}

func (p *parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	tracer().Debugf("consumed %v", t)
	return t
}

func (p *parser) expectKeyword(word string) (token.Token, error) {
	if !p.atKeyword(word) {
		return token.Token{}, rerr.Parsef(p.cur().Span, "expected keyword %q, found %q", word, p.cur().Lexeme)
	}
	return p.advance(), nil
}

func (p *parser) expectOperator(lexeme string) (token.Token, error) {
	if !p.atOperator(lexeme) {
		return token.Token{}, rerr.Parsef(p.cur().Span, "expected %q, found %q", lexeme, p.cur().Lexeme)
	}
	return p.advance(), nil
}

func (p *parser) expectPunct(lexeme string) (token.Token, error) {
	if !p.atPunct(lexeme) {
		return token.Token{}, rerr.Parsef(p.cur().Span, "expected %q, found %q", lexeme, p.cur().Lexeme)
	}
	return p.advance(), nil
}

func (p *parser) expectIdent() (token.Token, error) {
	if !p.at(token.Identifier) {
		return token.Token{}, rerr.Parsef(p.cur().Span, "expected an identifier, found %q", p.cur().Lexeme)
	}
	return p.advance(), nil
}

// --- E ----------------------------------------------------------------

func (p *parser) parseE() (*ast.Node, error) {
	switch {
	case p.atKeyword("let"):
		start := p.advance().Span
		d, err := p.parseD()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectKeyword("in"); err != nil {
			return nil, err
		}
		e, err := p.parseE()
		if err != nil {
			return nil, err
		}
		return ast.New(ast.Let, start, d, e), nil
	case p.atKeyword("fn"):
		start := p.advance().Span
		var vbs []*ast.Node
		for !p.atOperator(".") {
			vb, err := p.parseVb()
			if err != nil {
				return nil, err
			}
			vbs = append(vbs, vb)
		}
		if len(vbs) == 0 {
			return nil, rerr.Parsef(p.cur().Span, "'fn' requires at least one bound variable")
		}
		if _, err := p.expectOperator("."); err != nil {
			return nil, err
		}
		e, err := p.parseE()
		if err != nil {
			return nil, err
		}
		return ast.New(ast.Lambda, start, append(vbs, e)...), nil
	default:
		return p.parseEw()
	}
}

// parseEw parses 'where'-qualified expressions. Chained bare 'where'
// clauses ("E where D1 where D2") associate left — ((E where D1) where
// D2) — so each successive definition's scope extends over everything to
// its left, matching the textbook sqr_sum-via-nested-where idiom. Since a
// Db's own '=' right-hand side is ordinarily full E (and so would greedily
// swallow a trailing 'where' meant for this loop), each chained Dr's value
// is parsed at T level here — excluding 'let'/'fn'/'where' at that
// position — so the outer loop, not the inner bind, claims the next
// 'where'.
func (p *parser) parseEw() (*ast.Node, error) {
	t, err := p.parseT()
	if err != nil {
		return nil, err
	}
	for p.atKeyword("where") {
		span := p.advance().Span
		dr, err := p.parseDrChained()
		if err != nil {
			return nil, err
		}
		t = ast.New(ast.Where, span, t, dr)
	}
	return t, nil
}

func (p *parser) parseDrChained() (*ast.Node, error) {
	if p.atKeyword("rec") {
		span := p.advance().Span
		db, err := p.parseDbChained()
		if err != nil {
			return nil, err
		}
		return ast.New(ast.Rec, span, db), nil
	}
	return p.parseDbChained()
}

// parseDbChained mirrors parseDb but parses a binding's right-hand side at
// T level rather than full E, so a chained 'where' clause following it
// belongs to the enclosing parseEw loop instead of being absorbed here.
func (p *parser) parseDbChained() (*ast.Node, error) {
	if p.atPunct("(") {
		p.advance()
		d, err := p.parseD()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectPunct(")"); err != nil {
			return nil, err
		}
		return d, nil
	}
	nameTok, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	switch {
	case p.atOperator("="):
		span := p.advance().Span
		e, err := p.parseT()
		if err != nil {
			return nil, err
		}
		return ast.New(ast.Bind, span, ast.NewIdent(nameTok.Lexeme, nameTok.Span), e), nil
	case p.atPunct(","):
		ids := []*ast.Node{ast.NewIdent(nameTok.Lexeme, nameTok.Span)}
		for p.atPunct(",") {
			p.advance()
			idTok, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			ids = append(ids, ast.NewIdent(idTok.Lexeme, idTok.Span))
		}
		span, err := p.expectOperator("=")
		if err != nil {
			return nil, err
		}
		e, err := p.parseT()
		if err != nil {
			return nil, err
		}
		return ast.New(ast.Bind, span, ast.New(ast.Comma, nameTok.Span, ids...), e), nil
	default:
		var vbs []*ast.Node
		for !p.atOperator("=") {
			if p.at(token.EndOfFile) {
				return nil, rerr.Parsef(p.cur().Span, "unterminated function-form definition for %q", nameTok.Lexeme)
			}
			vb, err := p.parseVb()
			if err != nil {
				return nil, err
			}
			vbs = append(vbs, vb)
		}
		if len(vbs) == 0 {
			return nil, rerr.Parsef(p.cur().Span, "function-form definition for %q requires at least one parameter", nameTok.Lexeme)
		}
		span := p.advance().Span // '='
		e, err := p.parseT()
		if err != nil {
			return nil, err
		}
		children := append([]*ast.Node{ast.NewIdent(nameTok.Lexeme, nameTok.Span)}, vbs...)
		children = append(children, e)
		return ast.New(ast.FnForm, span, children...), nil
	}
}

// --- T / Ta / Tc --------------------------------------------------------

func (p *parser) parseT() (*ast.Node, error) {
	first, err := p.parseTa()
	if err != nil {
		return nil, err
	}
	list := []*ast.Node{first}
	for p.atPunct(",") {
		p.advance()
		next, err := p.parseTa()
		if err != nil {
			return nil, err
		}
		list = append(list, next)
	}
	if len(list) > 1 {
		return ast.New(ast.Tau, first.Span, list...), nil
	}
	return first, nil
}

func (p *parser) parseTa() (*ast.Node, error) {
	left, err := p.parseTc()
	if err != nil {
		return nil, err
	}
	for p.atKeyword("aug") {
		span := p.advance().Span
		right, err := p.parseTc()
		if err != nil {
			return nil, err
		}
		left = ast.New(ast.Aug, span, left, right)
	}
	return left, nil
}

func (p *parser) parseTc() (*ast.Node, error) {
	b, err := p.parseB()
	if err != nil {
		return nil, err
	}
	if p.atOperator("->") {
		span := p.advance().Span
		then, err := p.parseTc()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectOperator("|"); err != nil {
			return nil, err
		}
		els, err := p.parseTc()
		if err != nil {
			return nil, err
		}
		return ast.New(ast.Cond, span, b, then, els), nil
	}
	return b, nil
}

// --- B / Bt / Bs / Bp ----------------------------------------------------

func (p *parser) parseB() (*ast.Node, error) {
	left, err := p.parseBt()
	if err != nil {
		return nil, err
	}
	for p.atKeyword("or") {
		span := p.advance().Span
		right, err := p.parseBt()
		if err != nil {
			return nil, err
		}
		left = ast.New(ast.Or, span, left, right)
	}
	return left, nil
}

func (p *parser) parseBt() (*ast.Node, error) {
	left, err := p.parseBs()
	if err != nil {
		return nil, err
	}
	for p.atOperator("&") {
		span := p.advance().Span
		right, err := p.parseBs()
		if err != nil {
			return nil, err
		}
		left = ast.New(ast.And, span, left, right)
	}
	return left, nil
}

func (p *parser) parseBs() (*ast.Node, error) {
	if p.atKeyword("not") {
		span := p.advance().Span
		b, err := p.parseBp()
		if err != nil {
			return nil, err
		}
		return ast.New(ast.Not, span, b), nil
	}
	return p.parseBp()
}

var compareAliases = map[string]string{
	"gr": "gr", ">": "gr",
	"ge": "ge", ">=": "ge",
	"ls": "ls", "<": "ls",
	"le": "le", "<=": "le",
	"eq": "eq",
	"ne": "ne",
}

func (p *parser) compareOp() (string, bool) {
	t := p.cur()
	if t.Kind == token.Keyword || t.Kind == token.Operator {
		if op, ok := compareAliases[t.Lexeme]; ok {
			return op, true
		}
	}
	return "", false
}

func (p *parser) parseBp() (*ast.Node, error) {
	left, err := p.parseA()
	if err != nil {
		return nil, err
	}
	if op, ok := p.compareOp(); ok {
		span := p.advance().Span
		right, err := p.parseA()
		if err != nil {
			return nil, err
		}
		return ast.NewOp(ast.Compare, op, span, left, right), nil
	}
	return left, nil
}

// --- A / At / Af / Ap / R -------------------------------------------------

func (p *parser) parseA() (*ast.Node, error) {
	var left *ast.Node
	var err error
	switch {
	case p.atOperator("-"):
		span := p.advance().Span
		operand, err2 := p.parseAt()
		if err2 != nil {
			return nil, err2
		}
		left = ast.NewOp(ast.Arith, "neg", span, operand)
	case p.atOperator("+"):
		p.advance()
		left, err = p.parseAt()
		if err != nil {
			return nil, err
		}
	default:
		left, err = p.parseAt()
		if err != nil {
			return nil, err
		}
	}
	for p.atOperator("+") || p.atOperator("-") {
		opTok := p.advance()
		right, err := p.parseAt()
		if err != nil {
			return nil, err
		}
		left = ast.NewOp(ast.Arith, opTok.Lexeme, opTok.Span, left, right)
	}
	return left, nil
}

func (p *parser) parseAt() (*ast.Node, error) {
	left, err := p.parseAf()
	if err != nil {
		return nil, err
	}
	for p.atOperator("*") || p.atOperator("/") {
		opTok := p.advance()
		right, err := p.parseAf()
		if err != nil {
			return nil, err
		}
		left = ast.NewOp(ast.Arith, opTok.Lexeme, opTok.Span, left, right)
	}
	return left, nil
}

func (p *parser) parseAf() (*ast.Node, error) {
	left, err := p.parseAp()
	if err != nil {
		return nil, err
	}
	if p.atOperator("**") {
		span := p.advance().Span
		right, err := p.parseAf()
		if err != nil {
			return nil, err
		}
		return ast.NewOp(ast.Arith, "**", span, left, right), nil
	}
	return left, nil
}

func (p *parser) parseAp() (*ast.Node, error) {
	left, err := p.parseR()
	if err != nil {
		return nil, err
	}
	for p.atOperator("@") {
		span := p.advance().Span
		idTok, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		right, err := p.parseR()
		if err != nil {
			return nil, err
		}
		left = ast.New(ast.At, span, left, ast.NewIdent(idTok.Lexeme, idTok.Span), right)
	}
	return left, nil
}

func (p *parser) parseR() (*ast.Node, error) {
	left, err := p.parseRn()
	if err != nil {
		return nil, err
	}
	for p.startsRn() {
		right, err := p.parseRn()
		if err != nil {
			return nil, err
		}
		left = ast.New(ast.Gamma, right.Span, left, right)
	}
	return left, nil
}

func (p *parser) startsRn() bool {
	t := p.cur()
	switch t.Kind {
	case token.Identifier, token.Integer, token.String:
		return true
	case token.Keyword:
		return t.Lexeme == "true" || t.Lexeme == "false" || t.Lexeme == "nil" || t.Lexeme == "dummy"
	case token.Punctuation:
		return t.Lexeme == "("
	}
	return false
}

func (p *parser) parseRn() (*ast.Node, error) {
	t := p.cur()
	switch {
	case t.Kind == token.Identifier:
		p.advance()
		return ast.NewIdent(t.Lexeme, t.Span), nil
	case t.Kind == token.Integer:
		p.advance()
		n, err := strconv.ParseInt(t.Lexeme, 10, 64)
		if err != nil {
			return nil, rerr.Parsef(t.Span, "malformed integer literal %q", t.Lexeme)
		}
		return ast.NewInt(n, t.Span), nil
	case t.Kind == token.String:
		p.advance()
		return ast.NewStr(scan.Unquote(t.Lexeme), t.Span), nil
	case t.IsKeyword("true"):
		p.advance()
		return ast.New(ast.True, t.Span), nil
	case t.IsKeyword("false"):
		p.advance()
		return ast.New(ast.False, t.Span), nil
	case t.IsKeyword("nil"):
		p.advance()
		return ast.New(ast.Nil, t.Span), nil
	case t.IsKeyword("dummy"):
		p.advance()
		return ast.New(ast.Dummy, t.Span), nil
	case t.IsPunct("("):
		p.advance()
		e, err := p.parseE()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectPunct(")"); err != nil {
			return nil, err
		}
		return e, nil
	}
	return nil, rerr.Parsef(t.Span, "expected an expression, found %q", t.Lexeme)
}

// --- D / Da / Dr / Db ----------------------------------------------------

func (p *parser) parseD() (*ast.Node, error) {
	left, err := p.parseDa()
	if err != nil {
		return nil, err
	}
	if p.atKeyword("within") {
		span := p.advance().Span
		right, err := p.parseD()
		if err != nil {
			return nil, err
		}
		return ast.New(ast.Within, span, left, right), nil
	}
	return left, nil
}

func (p *parser) parseDa() (*ast.Node, error) {
	first, err := p.parseDr()
	if err != nil {
		return nil, err
	}
	list := []*ast.Node{first}
	for p.atKeyword("and") {
		p.advance()
		next, err := p.parseDr()
		if err != nil {
			return nil, err
		}
		list = append(list, next)
	}
	if len(list) > 1 {
		return ast.New(ast.AndDefs, first.Span, list...), nil
	}
	return first, nil
}

func (p *parser) parseDr() (*ast.Node, error) {
	if p.atKeyword("rec") {
		span := p.advance().Span
		db, err := p.parseDb()
		if err != nil {
			return nil, err
		}
		return ast.New(ast.Rec, span, db), nil
	}
	return p.parseDb()
}

func (p *parser) parseDb() (*ast.Node, error) {
	if p.atPunct("(") {
		p.advance()
		d, err := p.parseD()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectPunct(")"); err != nil {
			return nil, err
		}
		return d, nil
	}
	nameTok, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	switch {
	case p.atOperator("="):
		span := p.advance().Span
		e, err := p.parseE()
		if err != nil {
			return nil, err
		}
		return ast.New(ast.Bind, span, ast.NewIdent(nameTok.Lexeme, nameTok.Span), e), nil
	case p.atPunct(","):
		ids := []*ast.Node{ast.NewIdent(nameTok.Lexeme, nameTok.Span)}
		for p.atPunct(",") {
			p.advance()
			idTok, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			ids = append(ids, ast.NewIdent(idTok.Lexeme, idTok.Span))
		}
		span, err := p.expectOperator("=")
		if err != nil {
			return nil, err
		}
		e, err := p.parseE()
		if err != nil {
			return nil, err
		}
		return ast.New(ast.Bind, span, ast.New(ast.Comma, nameTok.Span, ids...), e), nil
	default:
		var vbs []*ast.Node
		for !p.atOperator("=") {
			if p.at(token.EndOfFile) {
				return nil, rerr.Parsef(p.cur().Span, "unterminated function-form definition for %q", nameTok.Lexeme)
			}
			vb, err := p.parseVb()
			if err != nil {
				return nil, err
			}
			vbs = append(vbs, vb)
		}
		if len(vbs) == 0 {
			return nil, rerr.Parsef(p.cur().Span, "function-form definition for %q requires at least one parameter", nameTok.Lexeme)
		}
		span := p.advance().Span // '='
		e, err := p.parseE()
		if err != nil {
			return nil, err
		}
		children := append([]*ast.Node{ast.NewIdent(nameTok.Lexeme, nameTok.Span)}, vbs...)
		children = append(children, e)
		return ast.New(ast.FnForm, span, children...), nil
	}
}

func (p *parser) parseVb() (*ast.Node, error) {
	if p.at(token.Identifier) {
		t := p.advance()
		return ast.NewIdent(t.Lexeme, t.Span), nil
	}
	if p.atPunct("(") {
		span := p.advance().Span
		if p.atPunct(")") {
			p.advance()
			return ast.New(ast.EmptyVB, span), nil
		}
		vl, err := p.parseVl()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectPunct(")"); err != nil {
			return nil, err
		}
		return vl, nil
	}
	return nil, rerr.Parsef(p.cur().Span, "expected a bound variable, found %q", p.cur().Lexeme)
}

func (p *parser) parseVl() (*ast.Node, error) {
	first, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	ids := []*ast.Node{ast.NewIdent(first.Lexeme, first.Span)}
	for p.atPunct(",") {
		p.advance()
		idTok, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		ids = append(ids, ast.NewIdent(idTok.Lexeme, idTok.Span))
	}
	if len(ids) > 1 {
		return ast.New(ast.Comma, first.Span, ids...), nil
	}
	return ids[0], nil
}
