/*
Package st defines the Standardized Tree: the result of rewriting an AST so
that lambda application (gamma/lambda) is its only binding construct. The
CSE machine walks this tree directly; it never sees let, where, within,
and, rec or function_form.

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package st

import (
	"bytes"
	"fmt"

	"github.com/ravindusw/rpal-interpreter/internal/token"
)

// Kind enumerates the node labels that can appear in a Standardized Tree.
// Apart from YStar, it is a subset of ast.Kind: every construct the
// standardizer eliminates (Let, Where, Within, AndDefs, Rec, FnForm, Bind,
// Comma-as-LHS) has no counterpart here.
type Kind int

const (
	Gamma Kind = iota
	Lambda
	Ident
	IntLit
	StrLit
	True
	False
	Nil
	Dummy
	Tau
	Aug
	Cond
	Or
	And
	Not
	Compare
	Arith
	At
	YStar   // the fixed-point combinator, grounded on Rec's standard rewrite
	EmptyVB // the nullary lambda parameter pattern, "()"
)

func (k Kind) String() string {
	switch k {
	case Gamma:
		return "gamma"
	case Lambda:
		return "lambda"
	case True:
		return "true"
	case False:
		return "false"
	case Nil:
		return "nil"
	case Dummy:
		return "dummy"
	case Tau:
		return "tau"
	case Aug:
		return "aug"
	case Cond:
		return "->"
	case Or:
		return "or"
	case And:
		return "&"
	case Not:
		return "not"
	case At:
		return "@"
	case YStar:
		return "Y*"
	case EmptyVB:
		return "()"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Node is a Standardized Tree node, shaped identically to ast.Node so that
// the standardizer is a straightforward structural rewrite rather than a
// change of representation.
type Node struct {
	Kind     Kind
	Op       string // operator symbol, for Compare and Arith nodes
	Name     string // identifier name, for Ident leaves and params
	IntVal   int64
	StrVal   string
	Children []*Node
	Span     token.Span
}

func New(kind Kind, span token.Span, children ...*Node) *Node {
	return &Node{Kind: kind, Children: children, Span: span}
}

func NewIdent(name string, span token.Span) *Node {
	return &Node{Kind: Ident, Name: name, Span: span}
}

func NewInt(v int64, span token.Span) *Node {
	return &Node{Kind: IntLit, IntVal: v, Span: span}
}

func NewStr(v string, span token.Span) *Node {
	return &Node{Kind: StrLit, StrVal: v, Span: span}
}

func NewOp(kind Kind, op string, span token.Span, children ...*Node) *Node {
	return &Node{Kind: kind, Op: op, Children: children, Span: span}
}

// NewLambda returns a single-parameter lambda node. Multi-parameter RPAL
// lambdas are curried into a chain of these by the standardizer; a
// tuple-pattern parameter is represented by param.Kind == Tau or EmptyVB.
func NewLambda(param, body *Node, span token.Span) *Node {
	return &Node{Kind: Lambda, Children: []*Node{param, body}, Span: span}
}

func (n *Node) Param() *Node { return n.Children[0] }
func (n *Node) Body() *Node  { return n.Children[1] }

// Label renders a node's head symbol, mirroring ast.Node.Label.
func (n *Node) Label() string {
	if n == nil {
		return "<nil>"
	}
	switch n.Kind {
	case Compare, Arith:
		return n.Op
	case Ident:
		return fmt.Sprintf("<ID:%s>", n.Name)
	case IntLit:
		return fmt.Sprintf("<INT:%d>", n.IntVal)
	case StrLit:
		return fmt.Sprintf("<STR:%s>", n.StrVal)
	case True:
		return "<true>"
	case False:
		return "<false>"
	case Nil:
		return "<nil>"
	case Dummy:
		return "<dummy>"
	}
	return n.Kind.String()
}

func (n *Node) IsLeaf() bool {
	return n == nil || len(n.Children) == 0
}

// Dump renders the tree using the same pre-order dot-indented format as
// ast.Dump, so -ast and -st output are visually comparable.
func Dump(root *Node) string {
	var b bytes.Buffer
	dump(&b, root, 0)
	return b.String()
}

func dump(b *bytes.Buffer, n *Node, depth int) {
	if n == nil {
		return
	}
	for i := 0; i < depth; i++ {
		b.WriteByte('.')
	}
	b.WriteString(n.Label())
	b.WriteByte('\n')
	for _, c := range n.Children {
		dump(b, c, depth+1)
	}
}

// FreeVariables computes the set of names referenced in the tree that are
// not bound by an enclosing Lambda — the ST's only binder. Used to check
// the free-variable-preservation invariant against ast.FreeVariables(AST):
// standardization must not change which names a program reads from its
// surrounding environment.
func FreeVariables(n *Node) map[string]bool {
	fv := map[string]bool{}
	freeVars(n, map[string]bool{}, fv)
	return fv
}

func freeVars(n *Node, bound map[string]bool, fv map[string]bool) {
	if n == nil {
		return
	}
	switch n.Kind {
	case Ident:
		if !bound[n.Name] {
			fv[n.Name] = true
		}
		return
	case Lambda:
		inner := make(map[string]bool, len(bound))
		for k := range bound {
			inner[k] = true
		}
		for _, name := range ParamNames(n.Param()) {
			inner[name] = true
		}
		freeVars(n.Body(), inner, fv)
		return
	}
	for _, c := range n.Children {
		freeVars(c, bound, fv)
	}
}

// ParamNames flattens a (possibly tuple) lambda parameter pattern into its
// constituent names, in left-to-right binding order. EmptyVB yields none.
func ParamNames(param *Node) []string {
	switch param.Kind {
	case Ident:
		return []string{param.Name}
	case Tau:
		var names []string
		for _, c := range param.Children {
			names = append(names, ParamNames(c)...)
		}
		return names
	case EmptyVB:
		return nil
	}
	return nil
}
