/*
Package standardize rewrites an AST into a Standardized Tree by applying
the core's eight local rewrite rules — let, where, function_form currying,
multi-parameter lambda currying, within, and (simultaneous definition),
rec (fixed point via Y*), and at (infix application) — bottom-up, until
lambda application is the tree's only binder.

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package standardize

import (
	"github.com/npillmayer/schuko/tracing"
	"github.com/ravindusw/rpal-interpreter/internal/ast"
	"github.com/ravindusw/rpal-interpreter/internal/rerr"
	"github.com/ravindusw/rpal-interpreter/internal/st"
	"github.com/ravindusw/rpal-interpreter/internal/token"
	"github.com/ravindusw/rpal-interpreter/internal/trace"
)

func tracer() tracing.Trace {
	return trace.Select("rpal.standardize")
}

// Standardize rewrites a parsed AST into its Standardized Tree.
func Standardize(root *ast.Node) (*st.Node, error) {
	tracer().Debugf("standardizing:\n%s", ast.Dump(root))
	out, err := standardize(root)
	if err != nil {
		return nil, err
	}
	tracer().Debugf("standardized to:\n%s", st.Dump(out))
	return out, nil
}

func standardize(n *ast.Node) (*st.Node, error) {
	if n == nil {
		return nil, nil
	}
	switch n.Kind {
	case ast.Ident:
		return st.NewIdent(n.Name, n.Span), nil
	case ast.IntLit:
		return st.NewInt(n.IntVal, n.Span), nil
	case ast.StrLit:
		return st.NewStr(n.StrVal, n.Span), nil
	case ast.True:
		return st.New(st.True, n.Span), nil
	case ast.False:
		return st.New(st.False, n.Span), nil
	case ast.Nil:
		return st.New(st.Nil, n.Span), nil
	case ast.Dummy:
		return st.New(st.Dummy, n.Span), nil
	case ast.EmptyVB:
		return st.New(st.EmptyVB, n.Span), nil
	case ast.Comma:
		return standardizeChildren(st.Tau, n)
	case ast.Gamma:
		return standardizeChildren(st.Gamma, n)
	case ast.Tau:
		return standardizeChildren(st.Tau, n)
	case ast.Aug:
		return standardizeChildren(st.Aug, n)
	case ast.Cond:
		return standardizeChildren(st.Cond, n)
	case ast.Or:
		return standardizeChildren(st.Or, n)
	case ast.And:
		return standardizeChildren(st.And, n)
	case ast.Not:
		return standardizeChildren(st.Not, n)
	case ast.Compare:
		return standardizeOp(st.Compare, n)
	case ast.Arith:
		return standardizeOp(st.Arith, n)

	case ast.At:
		// rule 8: a @ n b  =>  gamma(gamma(n, a), b)
		a, err := standardize(n.Children[0])
		if err != nil {
			return nil, err
		}
		id, err := standardize(n.Children[1])
		if err != nil {
			return nil, err
		}
		b, err := standardize(n.Children[2])
		if err != nil {
			return nil, err
		}
		return st.New(st.Gamma, n.Span, st.New(st.Gamma, n.Span, id, a), b), nil

	case ast.Lambda:
		return standardizeLambda(n.Children[:len(n.Children)-1], n.Children[len(n.Children)-1], n.Span)

	case ast.Let:
		// rule 1: let D in E  =>  gamma(lambda(X, E'), V)
		pattern, value, err := standardizeDef(n.Children[0])
		if err != nil {
			return nil, err
		}
		body, err := standardize(n.Children[1])
		if err != nil {
			return nil, err
		}
		return st.New(st.Gamma, n.Span, st.NewLambda(pattern, body, n.Span), value), nil

	case ast.Where:
		// rule 2: E where D  =>  gamma(lambda(X, E'), V), same shape as let
		pattern, value, err := standardizeDef(n.Children[1])
		if err != nil {
			return nil, err
		}
		body, err := standardize(n.Children[0])
		if err != nil {
			return nil, err
		}
		return st.New(st.Gamma, n.Span, st.NewLambda(pattern, body, n.Span), value), nil

	default:
		return nil, rerr.Standardizef(n.Span, "%s cannot appear outside a definition", n.Kind)
	}
}

func standardizeChildren(kind st.Kind, n *ast.Node) (*st.Node, error) {
	children := make([]*st.Node, len(n.Children))
	for i, c := range n.Children {
		sc, err := standardize(c)
		if err != nil {
			return nil, err
		}
		children[i] = sc
	}
	return st.New(kind, n.Span, children...), nil
}

func standardizeOp(kind st.Kind, n *ast.Node) (*st.Node, error) {
	children := make([]*st.Node, len(n.Children))
	for i, c := range n.Children {
		sc, err := standardize(c)
		if err != nil {
			return nil, err
		}
		children[i] = sc
	}
	return st.NewOp(kind, n.Op, n.Span, children...), nil
}

// standardizeLambda curries a multi-parameter lambda into nested
// single-parameter lambdas (rule 4; rule 3's function_form currying reduces
// to the same code path once its name/body are peeled off in
// standardizeDef).
func standardizeLambda(vbs []*ast.Node, body *ast.Node, span token.Span) (*st.Node, error) {
	sBody, err := standardize(body)
	if err != nil {
		return nil, err
	}
	for i := len(vbs) - 1; i >= 0; i-- {
		param, err := vbToParam(vbs[i])
		if err != nil {
			return nil, err
		}
		sBody = st.NewLambda(param, sBody, span)
	}
	return sBody, nil
}

// vbToParam converts a parsed bound-variable pattern (a plain identifier, a
// parenthesized tuple-of-identifiers, or the empty pattern "()") into its
// Standardized Tree form as a lambda parameter.
func vbToParam(vb *ast.Node) (*st.Node, error) {
	switch vb.Kind {
	case ast.Ident:
		return st.NewIdent(vb.Name, vb.Span), nil
	case ast.EmptyVB:
		return st.New(st.EmptyVB, vb.Span), nil
	case ast.Comma:
		children := make([]*st.Node, len(vb.Children))
		for i, c := range vb.Children {
			if c.Kind != ast.Ident {
				return nil, rerr.Standardizef(c.Span, "tuple parameter components must be identifiers")
			}
			children[i] = st.NewIdent(c.Name, c.Span)
		}
		return st.New(st.Tau, vb.Span, children...), nil
	}
	return nil, rerr.Standardizef(vb.Span, "invalid bound-variable pattern")
}

// standardizeDef reduces any definitions-subtree (Bind, FnForm, Rec,
// AndDefs, Within) to a single (pattern, value) equation — pattern is the
// name, or tuple-of-names, that the enclosing let/where binds; value is the
// Standardized Tree expression it is bound to.
func standardizeDef(d *ast.Node) (*st.Node, *st.Node, error) {
	switch d.Kind {
	case ast.Bind:
		pattern, err := bindPatternToST(d.Children[0])
		if err != nil {
			return nil, nil, err
		}
		value, err := standardize(d.Children[1])
		if err != nil {
			return nil, nil, err
		}
		return pattern, value, nil

	case ast.FnForm:
		// rule 3: f x1 .. xn = E  =>  f = lambda(x1, lambda(x2, .., E))
		name := d.Children[0]
		vbs := d.Children[1 : len(d.Children)-1]
		body := d.Children[len(d.Children)-1]
		value, err := standardizeLambda(vbs, body, d.Span)
		if err != nil {
			return nil, nil, err
		}
		return st.NewIdent(name.Name, name.Span), value, nil

	case ast.Rec:
		// rule 7: rec X = E  =>  X = gamma(Y*, lambda(X, E))
		pattern, value, err := standardizeDef(d.Children[0])
		if err != nil {
			return nil, nil, err
		}
		if pattern.Kind != st.Ident {
			return nil, nil, rerr.Standardizef(d.Span, "rec requires a single bound name, not a tuple pattern")
		}
		fix := st.New(st.Gamma, d.Span,
			st.New(st.YStar, d.Span),
			st.NewLambda(pattern, value, d.Span))
		return pattern, fix, nil

	case ast.AndDefs:
		// rule 6: simultaneous definitions bind as one tuple equation, so
		// every right-hand side sees the pre-'and' environment.
		patterns := make([]*st.Node, len(d.Children))
		values := make([]*st.Node, len(d.Children))
		for i, c := range d.Children {
			p, v, err := standardizeDef(c)
			if err != nil {
				return nil, nil, err
			}
			patterns[i] = p
			values[i] = v
		}
		return st.New(st.Tau, d.Span, patterns...), st.New(st.Tau, d.Span, values...), nil

	case ast.Within:
		// rule 5: (X1=E1) within (X2=E2)  =>  X2 = let X1=E1 in E2
		p1, v1, err := standardizeDef(d.Children[0])
		if err != nil {
			return nil, nil, err
		}
		p2, v2, err := standardizeDef(d.Children[1])
		if err != nil {
			return nil, nil, err
		}
		combined := st.New(st.Gamma, d.Span, st.NewLambda(p1, v2, d.Span), v1)
		return p2, combined, nil
	}
	return nil, nil, rerr.Standardizef(d.Span, "%s is not a definition", d.Kind)
}

// bindPatternToST converts the left-hand side of a plain "X = E" or
// "X1,X2,.. = E" binding into its Standardized Tree pattern form.
func bindPatternToST(lhs *ast.Node) (*st.Node, error) {
	switch lhs.Kind {
	case ast.Ident:
		return st.NewIdent(lhs.Name, lhs.Span), nil
	case ast.Comma:
		children := make([]*st.Node, len(lhs.Children))
		for i, c := range lhs.Children {
			if c.Kind != ast.Ident {
				return nil, rerr.Standardizef(c.Span, "tuple binding components must be identifiers")
			}
			children[i] = st.NewIdent(c.Name, c.Span)
		}
		return st.New(st.Tau, lhs.Span, children...), nil
	}
	return nil, rerr.Standardizef(lhs.Span, "invalid binding pattern")
}
