/*
Package ast defines the Abstract Syntax Tree produced by the parser and
consumed by the standardizer.

Rather than the first-child/next-sibling layout historically used to
describe RPAL parse trees, nodes here are a tagged variant with an owned
child slice (see the module's design notes): this makes tree walking and
rewriting (the standardizer's job) a matter of ordinary slice indexing
instead of sibling-chain traversal, without changing any observable
semantics.

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package ast

import (
	"bytes"
	"fmt"

	"github.com/cnf/structhash"
	"github.com/ravindusw/rpal-interpreter/internal/token"
)

// Kind labels a Node. The enumerated set here, together with fixed arities
// per kind, is exactly the set the parser is allowed to emit.
type Kind int

const (
	Let Kind = iota
	Lambda
	Where
	Tau
	Aug
	Cond // "->"
	Or
	And // "&" (boolean conjunction)
	Not
	Compare  // gr, ge, ls, le, eq, ne — operator symbol held in Node.Op
	Arith    // +, -, *, /, **, neg — operator symbol held in Node.Op
	At       // "@"
	Gamma    // function application
	FnForm   // function_form
	Ident    // identifier:<name>
	IntLit   // integer:<n>
	StrLit   // string:<s>
	True
	False
	Nil
	Dummy
	Within
	AndDefs  // "and" (simultaneous definitions)
	Rec
	EmptyVB  // "()" — the empty-tuple bound-variable pattern
	Comma    // ","  — tuple pattern or tau/Vl list
	Bind     // "="  — X = E, used only inside D/Da/Dr/Db before standardization
)

func (k Kind) String() string {
	switch k {
	case Let:
		return "let"
	case Lambda:
		return "lambda"
	case Where:
		return "where"
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
	case Gamma:
		return "gamma"
	case FnForm:
		return "function_form"
	case True:
		return "true"
	case False:
		return "false"
	case Nil:
		return "nil"
	case Dummy:
		return "dummy"
	case Within:
		return "within"
	case AndDefs:
		return "and"
	case Rec:
		return "rec"
	case EmptyVB:
		return "()"
	case Comma:
		return ","
	case Bind:
		return "="
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Node is a single AST node: a Kind, an optional leaf payload, and an
// ordered child list.
type Node struct {
	Kind     Kind
	Op       string  // operator symbol, for Compare and Arith nodes
	Name     string  // identifier name, for Ident nodes
	IntVal   int64   // literal value, for IntLit nodes
	StrVal   string  // decoded literal value, for StrLit nodes
	Children []*Node
	Span     token.Span `hash:"-"` // source position, irrelevant to structural equality
}

// New creates a Node with the given kind and children.
func New(kind Kind, span token.Span, children ...*Node) *Node {
	return &Node{Kind: kind, Children: children, Span: span}
}

// NewIdent creates an Ident leaf.
func NewIdent(name string, span token.Span) *Node {
	return &Node{Kind: Ident, Name: name, Span: span}
}

// NewInt creates an IntLit leaf.
func NewInt(v int64, span token.Span) *Node {
	return &Node{Kind: IntLit, IntVal: v, Span: span}
}

// NewStr creates a StrLit leaf.
func NewStr(v string, span token.Span) *Node {
	return &Node{Kind: StrLit, StrVal: v, Span: span}
}

// NewOp creates a Compare or Arith node carrying an operator symbol.
func NewOp(kind Kind, op string, span token.Span, children ...*Node) *Node {
	return &Node{Kind: kind, Op: op, Children: children, Span: span}
}

// Label renders the node's head symbol as it is printed by Dump: the
// operator symbol for Compare/Arith nodes, the <ID:..>/<INT:..>/<STR:..>/
// <true>/<false>/<nil>/<dummy> forms for leaves, the kind name otherwise.
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

// IsLeaf reports whether n has no children.
func (n *Node) IsLeaf() bool {
	return n == nil || len(n.Children) == 0
}

// Dump renders the tree in the pre-order, dot-indented format described by
// the module's tree-printing contract: one node per line, preceded by a
// run of '.' characters equal to its depth.
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
// not bound by an enclosing Lambda, Let or Where within the tree itself
// (including the names its Bind, FnForm, Within, AndDefs or Rec
// definitions introduce). It underlies the free-variable-preservation property the
// standardizer must hold (FV(AST) == FV(ST)).
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
		inner := cloneSet(bound)
		for _, vb := range n.Children[:len(n.Children)-1] {
			bindPattern(vb, inner)
		}
		freeVars(n.Children[len(n.Children)-1], inner, fv)
		return
	case Let:
		d, body := n.Children[0], n.Children[1]
		inner := cloneSet(bound)
		for name := range definedNames(d) {
			inner[name] = true
		}
		collectDefFreeVars(d, bound, fv)
		freeVars(body, inner, fv)
		return
	case Where:
		body, d := n.Children[0], n.Children[1]
		inner := cloneSet(bound)
		for name := range definedNames(d) {
			inner[name] = true
		}
		collectDefFreeVars(d, bound, fv)
		freeVars(body, inner, fv)
		return
	}
	for _, c := range n.Children {
		freeVars(c, bound, fv)
	}
}

func bindPattern(vb *Node, bound map[string]bool) {
	if vb == nil {
		return
	}
	switch vb.Kind {
	case Ident:
		bound[vb.Name] = true
	case Comma:
		for _, id := range vb.Children {
			bindPattern(id, bound)
		}
	case EmptyVB:
		// binds nothing
	}
}

// definedNames returns the set of names a definitions-subtree (Bind,
// FnForm, Rec, AndDefs, Within) introduces into its surrounding scope.
func definedNames(d *Node) map[string]bool {
	names := map[string]bool{}
	if d == nil {
		return names
	}
	switch d.Kind {
	case Bind:
		bindPattern(d.Children[0], names)
	case FnForm:
		names[d.Children[0].Name] = true
	case Rec:
		return definedNames(d.Children[0])
	case AndDefs:
		for _, c := range d.Children {
			for name := range definedNames(c) {
				names[name] = true
			}
		}
	case Within:
		return definedNames(d.Children[1])
	}
	return names
}

// collectDefFreeVars walks the right-hand sides of a definitions-subtree,
// resolving identifiers against outerBound (the scope visible before this
// definition) except where RPAL's scoping rules extend visibility (rec's
// self-reference, within's second part seeing the first's bindings).
func collectDefFreeVars(d *Node, outerBound map[string]bool, fv map[string]bool) {
	if d == nil {
		return
	}
	switch d.Kind {
	case Bind:
		freeVars(d.Children[1], outerBound, fv)
	case FnForm:
		params := cloneSet(outerBound)
		for _, vb := range d.Children[1 : len(d.Children)-1] {
			bindPattern(vb, params)
		}
		freeVars(d.Children[len(d.Children)-1], params, fv)
	case Rec:
		inner := cloneSet(outerBound)
		for name := range definedNames(d.Children[0]) {
			inner[name] = true
		}
		collectDefFreeVars(d.Children[0], inner, fv)
	case AndDefs:
		for _, c := range d.Children {
			collectDefFreeVars(c, outerBound, fv)
		}
	case Within:
		first, second := d.Children[0], d.Children[1]
		collectDefFreeVars(first, outerBound, fv)
		scope := cloneSet(outerBound)
		for name := range definedNames(first) {
			scope[name] = true
		}
		collectDefFreeVars(second, scope, fv)
	}
}

// StructuralHash digests a tree by its Kind/Op/Name/IntVal/StrVal/Children
// shape, ignoring source position, for the parser-determinism property:
// parsing the same input twice must yield matching digests.
func StructuralHash(n *Node) (string, error) {
	return structhash.Hash(n, 1)
}

func cloneSet(s map[string]bool) map[string]bool {
	c := make(map[string]bool, len(s))
	for k := range s {
		c[k] = true
	}
	return c
}
