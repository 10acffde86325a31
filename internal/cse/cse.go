/*
Package cse implements the Control-Stack-Environment abstract machine: the
final stage of the pipeline, which evaluates a Standardized Tree against a
primitive environment of built-in functions.

The machine keeps two explicit stacks — Control (what remains to be
processed) and Stack (the values produced so far) — plus a current
Environment pointer, and processes Control one item at a time until it is
empty, at which point Stack holds exactly the program's result. Entering a
closure body pushes an environment-restoration marker onto Control right
behind it, so returning from a call is just another item reaching the top
of Control rather than a separate call/return mechanism; this is the
classical CSE formulation (as opposed to a tree-walking evaluator that
recurses through Go's own call stack) and is what lets eta/Y* recursion
(rules 12-13) be expressed as ordinary control items rather than special
cases in an interpreter loop.

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package cse

import (
	"fmt"
	"io"
	"strings"

	"github.com/emirpasic/gods/stacks/arraystack"
	"github.com/npillmayer/schuko/tracing"
	"github.com/ravindusw/rpal-interpreter/internal/rerr"
	"github.com/ravindusw/rpal-interpreter/internal/st"
	"github.com/ravindusw/rpal-interpreter/internal/trace"
	"github.com/ravindusw/rpal-interpreter/internal/value"
)

func tracer() tracing.Trace {
	return trace.Select("rpal.cse")
}

// control items ----------------------------------------------------------

type nodeItem struct{ n *st.Node }
type envMarker struct{ env *value.Env }
type opMarker struct {
	kind  st.Kind
	op    string
	arity int
}
type tauMarker struct{ n int }
type augMarker struct{}
type condMarker struct{ then, els *st.Node }
type applyMarker struct{}
type pendingApply struct{ arg value.Value }

// Machine is one run of the CSE abstract machine.
type Machine struct {
	control *arraystack.Stack
	stack   *arraystack.Stack
	env     *value.Env
	envSeq  int
	out     io.Writer

	// controlTrace/valueTrace, when non-nil, receive one line per rule
	// application: the serialized Control and Stack after that step.
	controlTrace io.Writer
	valueTrace   io.Writer
}

// Eval runs the CSE machine over a Standardized Tree and returns its
// result value.
func Eval(root *st.Node, out io.Writer) (value.Value, error) {
	return EvalTraced(root, out, nil, nil)
}

// EvalTraced runs the CSE machine exactly like Eval, additionally emitting
// the serialized Control and Stack to controlOut/valueOut after every rule
// application, as the optional trace-dump collaborator. Either writer may
// be nil to skip that stream.
func EvalTraced(root *st.Node, out, controlOut, valueOut io.Writer) (value.Value, error) {
	m := &Machine{
		control: arraystack.New(),
		stack:   arraystack.New(),
	}
	m.out = out
	m.controlTrace = controlOut
	m.valueTrace = valueOut
	m.env = primitiveEnv(m)
	m.control.Push(nodeItem{root})

	for !m.control.Empty() {
		raw, _ := m.control.Pop()
		if err := m.step(raw); err != nil {
			return value.Value{}, err
		}
		m.emitTrace()
	}
	raw, ok := m.stack.Pop()
	if !ok {
		return value.Value{}, rerr.Runtimef(rerr.BuiltinError, st.Node{}.Span, "machine terminated with an empty stack")
	}
	v := raw.(value.Value)
	if !m.stack.Empty() {
		return value.Value{}, rerr.Runtimef(rerr.BuiltinError, st.Node{}.Span, "machine terminated with %d leftover stack values", m.stack.Size()+1)
	}
	return v, nil
}

func (m *Machine) pushV(v value.Value) { m.stack.Push(v) }

func (m *Machine) popV() (value.Value, error) {
	raw, ok := m.stack.Pop()
	if !ok {
		return value.Value{}, rerr.Runtimef(rerr.BuiltinError, st.Node{}.Span, "stack underflow")
	}
	return raw.(value.Value), nil
}

func (m *Machine) pushC(items ...interface{}) {
	for _, it := range items {
		m.control.Push(it)
	}
}

// step processes one control item.
func (m *Machine) step(item interface{}) error {
	switch it := item.(type) {
	case nodeItem:
		return m.evalNode(it.n)
	case envMarker:
		m.env = it.env
		return nil
	case opMarker:
		return m.doOp(it)
	case tauMarker:
		return m.doTau(it.n)
	case augMarker:
		return m.doAug()
	case condMarker:
		cond, err := m.popV()
		if err != nil {
			return err
		}
		if cond.Kind != value.BoolV {
			return rerr.Runtimef(rerr.TypeError, it.then.Span, "conditional guard is not a truth value")
		}
		if cond.Bool {
			m.pushC(nodeItem{it.then})
		} else {
			m.pushC(nodeItem{it.els})
		}
		return nil
	case applyMarker:
		arg, err := m.popV()
		if err != nil {
			return err
		}
		fn, err := m.popV()
		if err != nil {
			return err
		}
		return m.apply(fn, arg)
	case pendingApply:
		fn, err := m.popV()
		if err != nil {
			return err
		}
		return m.apply(fn, it.arg)
	}
	return rerr.Runtimef(rerr.BuiltinError, st.Node{}.Span, "unrecognized control item %T", item)
}

// R1, R2: identifiers/literals push directly; lambda closes over env.
func (m *Machine) evalNode(n *st.Node) error {
	switch n.Kind {
	case st.Ident:
		v, ok := m.env.Lookup(n.Name)
		if !ok {
			return rerr.Runtimef(rerr.UnboundIdentifier, n.Span, "unbound identifier %q", n.Name)
		}
		m.pushV(v)
		return nil
	case st.IntLit:
		m.pushV(value.Int(n.IntVal))
		return nil
	case st.StrLit:
		m.pushV(value.Str(n.StrVal))
		return nil
	case st.True:
		m.pushV(value.Bool(true))
		return nil
	case st.False:
		m.pushV(value.Bool(false))
		return nil
	case st.Nil:
		m.pushV(value.Nil())
		return nil
	case st.Dummy:
		m.pushV(value.Dummy())
		return nil
	case st.Lambda:
		m.pushV(value.FromClosure(&value.Closure{Param: n.Param(), Body: n.Body(), Env: m.env}))
		return nil
	case st.YStar:
		// R12: Y* applied to a closure wraps it as an eta value; the
		// wrapping itself happens in apply() once Y*'s argument arrives.
		m.pushV(value.Value{Kind: value.BuiltinV, Builtin: yStarBuiltin})
		return nil
	case st.Gamma:
		m.pushC(applyMarker{}, nodeItem{n.Children[1]}, nodeItem{n.Children[0]})
		return nil
	case st.Tau:
		items := make([]interface{}, 0, len(n.Children)+1)
		items = append(items, tauMarker{len(n.Children)})
		for i := len(n.Children) - 1; i >= 0; i-- {
			items = append(items, nodeItem{n.Children[i]})
		}
		m.pushC(items...)
		return nil
	case st.Aug:
		m.pushC(augMarker{}, nodeItem{n.Children[1]}, nodeItem{n.Children[0]})
		return nil
	case st.Cond:
		m.pushC(condMarker{then: n.Children[1], els: n.Children[2]}, nodeItem{n.Children[0]})
		return nil
	case st.Or, st.And:
		m.pushC(opMarker{kind: n.Kind, arity: 2}, nodeItem{n.Children[1]}, nodeItem{n.Children[0]})
		return nil
	case st.Not:
		m.pushC(opMarker{kind: n.Kind, arity: 1}, nodeItem{n.Children[0]})
		return nil
	case st.Compare:
		m.pushC(opMarker{kind: n.Kind, op: n.Op, arity: 2}, nodeItem{n.Children[1]}, nodeItem{n.Children[0]})
		return nil
	case st.Arith:
		if n.Op == "neg" {
			m.pushC(opMarker{kind: n.Kind, op: n.Op, arity: 1}, nodeItem{n.Children[0]})
			return nil
		}
		m.pushC(opMarker{kind: n.Kind, op: n.Op, arity: 2}, nodeItem{n.Children[1]}, nodeItem{n.Children[0]})
		return nil
	}
	return rerr.Runtimef(rerr.BuiltinError, n.Span, "cannot evaluate control structure %s", n.Kind)
}

// apply implements R3 (built-in), R4/R11 (closure, single or tuple
// parameter) and R13 (eta) — the behaviors R10's tuple-selection rule also
// funnels through, since selecting tuple[n] is itself a function
// application of a tuple value to an integer.
func (m *Machine) apply(fn, arg value.Value) error {
	switch fn.Kind {
	case value.BuiltinV:
		return m.applyBuiltin(fn.Builtin, arg)
	case value.ClosureV:
		newEnv := value.NewEnv(fn.Closure.Env, m.nextEnvIndex())
		if err := value.BindParam(newEnv, fn.Closure.Param, arg); err != nil {
			return rerr.Runtimef(rerr.ArityError, fn.Closure.Body.Span, "%v", err)
		}
		m.pushC(envMarker{m.env}, nodeItem{fn.Closure.Body})
		m.env = newEnv
		return nil
	case value.EtaV:
		// R13: self-binding then delegate to the wrapped closure.
		newEnv := value.NewEnv(fn.Closure.Env, m.nextEnvIndex())
		if err := value.BindParam(newEnv, fn.Closure.Param, fn); err != nil {
			return rerr.Runtimef(rerr.ArityError, fn.Closure.Body.Span, "%v", err)
		}
		m.pushC(envMarker{m.env}, pendingApply{arg: arg}, nodeItem{fn.Closure.Body})
		m.env = newEnv
		return nil
	case value.TupleV:
		if arg.Kind != value.IntV {
			return rerr.Runtimef(rerr.TypeError, st.Node{}.Span, "tuple selection index must be an integer")
		}
		idx := arg.Int
		if idx < 1 || int(idx) > len(fn.Elems) {
			return rerr.Runtimef(rerr.IndexError, st.Node{}.Span, "tuple index %d out of bounds (tuple has %d elements)", idx, len(fn.Elems))
		}
		m.pushV(fn.Elems[idx-1])
		return nil
	}
	return rerr.Runtimef(rerr.TypeError, st.Node{}.Span, "%v is not applicable", fn)
}

func (m *Machine) nextEnvIndex() int {
	m.envSeq++
	return m.envSeq
}

// R6, R7: binary and unary operators, evaluated once both operands are
// values on the stack.
func (m *Machine) doOp(it opMarker) error {
	if it.arity == 1 {
		v, err := m.popV()
		if err != nil {
			return err
		}
		switch it.kind {
		case st.Not:
			if v.Kind != value.BoolV {
				return rerr.Runtimef(rerr.TypeError, st.Node{}.Span, "'not' requires a truth value")
			}
			m.pushV(value.Bool(!v.Bool))
			return nil
		case st.Arith: // neg
			if v.Kind != value.IntV {
				return rerr.Runtimef(rerr.TypeError, st.Node{}.Span, "unary '-' requires an integer")
			}
			m.pushV(value.Int(-v.Int))
			return nil
		}
	}
	b, err := m.popV()
	if err != nil {
		return err
	}
	a, err := m.popV()
	if err != nil {
		return err
	}
	switch it.kind {
	case st.Or:
		if a.Kind != value.BoolV || b.Kind != value.BoolV {
			return rerr.Runtimef(rerr.TypeError, st.Node{}.Span, "'or' requires truth values")
		}
		m.pushV(value.Bool(a.Bool || b.Bool))
		return nil
	case st.And:
		if a.Kind != value.BoolV || b.Kind != value.BoolV {
			return rerr.Runtimef(rerr.TypeError, st.Node{}.Span, "'&' requires truth values")
		}
		m.pushV(value.Bool(a.Bool && b.Bool))
		return nil
	case st.Compare:
		return m.doCompare(it.op, a, b)
	case st.Arith:
		return m.doArith(it.op, a, b)
	}
	return rerr.Runtimef(rerr.BuiltinError, st.Node{}.Span, "unknown operator kind")
}

func (m *Machine) doArith(op string, a, b value.Value) error {
	if a.Kind != value.IntV || b.Kind != value.IntV {
		return rerr.Runtimef(rerr.TypeError, st.Node{}.Span, "arithmetic operator %q requires integers", op)
	}
	switch op {
	case "+":
		m.pushV(value.Int(a.Int + b.Int))
	case "-":
		m.pushV(value.Int(a.Int - b.Int))
	case "*":
		m.pushV(value.Int(a.Int * b.Int))
	case "/":
		if b.Int == 0 {
			return rerr.Runtimef(rerr.DivByZero, st.Node{}.Span, "division by zero")
		}
		m.pushV(value.Int(a.Int / b.Int))
	case "**":
		m.pushV(value.Int(ipow(a.Int, b.Int)))
	default:
		return rerr.Runtimef(rerr.BuiltinError, st.Node{}.Span, "unknown arithmetic operator %q", op)
	}
	return nil
}

func ipow(base, exp int64) int64 {
	if exp < 0 {
		return 0
	}
	r := int64(1)
	for ; exp > 0; exp-- {
		r *= base
	}
	return r
}

func (m *Machine) doCompare(op string, a, b value.Value) error {
	if a.Kind == value.IntV && b.Kind == value.IntV {
		var r bool
		switch op {
		case "gr":
			r = a.Int > b.Int
		case "ge":
			r = a.Int >= b.Int
		case "ls":
			r = a.Int < b.Int
		case "le":
			r = a.Int <= b.Int
		case "eq":
			r = a.Int == b.Int
		case "ne":
			r = a.Int != b.Int
		}
		m.pushV(value.Bool(r))
		return nil
	}
	if a.Kind == value.StrV && b.Kind == value.StrV {
		var r bool
		switch op {
		case "gr":
			r = a.Str > b.Str
		case "ge":
			r = a.Str >= b.Str
		case "ls":
			r = a.Str < b.Str
		case "le":
			r = a.Str <= b.Str
		case "eq":
			r = a.Str == b.Str
		case "ne":
			r = a.Str != b.Str
		}
		m.pushV(value.Bool(r))
		return nil
	}
	if op == "eq" || op == "ne" {
		eq := valuesEqual(a, b)
		if op == "ne" {
			eq = !eq
		}
		m.pushV(value.Bool(eq))
		return nil
	}
	return rerr.Runtimef(rerr.TypeError, st.Node{}.Span, "comparison %q requires integers or strings (or eq/ne on any comparable values)", op)
}

func valuesEqual(a, b value.Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case value.IntV:
		return a.Int == b.Int
	case value.StrV:
		return a.Str == b.Str
	case value.BoolV:
		return a.Bool == b.Bool
	case value.NilV, value.DummyV:
		return true
	case value.TupleV:
		if len(a.Elems) != len(b.Elems) {
			return false
		}
		for i := range a.Elems {
			if !valuesEqual(a.Elems[i], b.Elems[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// R9: tuple formation.
func (m *Machine) doTau(n int) error {
	elems := make([]value.Value, n)
	for i := n - 1; i >= 0; i-- {
		v, err := m.popV()
		if err != nil {
			return err
		}
		elems[i] = v
	}
	m.pushV(value.Tuple(elems))
	return nil
}

// emitTrace writes the current Control and Stack, one line each, to the
// trace-dump streams (spec's §6 "Trace dump" external collaborator). A nil
// stream is skipped entirely, so tracing costs nothing when unused.
func (m *Machine) emitTrace() {
	if m.controlTrace != nil {
		fmt.Fprintln(m.controlTrace, formatStack(m.control, formatControlItem))
	}
	if m.valueTrace != nil {
		fmt.Fprintln(m.valueTrace, formatStack(m.stack, formatStackItem))
	}
}

func formatStack(s *arraystack.Stack, format func(interface{}) string) string {
	items := s.Values() // gods returns values from top to bottom
	parts := make([]string, len(items))
	for i, it := range items {
		parts[len(items)-1-i] = format(it)
	}
	return strings.Join(parts, " ")
}

func formatControlItem(item interface{}) string {
	switch it := item.(type) {
	case nodeItem:
		return it.n.Label()
	case envMarker:
		return fmt.Sprintf("env_marker(%d)", it.env.Index)
	case opMarker:
		if it.op != "" {
			return it.op
		}
		return it.kind.String()
	case tauMarker:
		return fmt.Sprintf("tau:%d", it.n)
	case augMarker:
		return "aug"
	case condMarker:
		return "beta"
	case applyMarker:
		return "gamma"
	case pendingApply:
		return "pending_apply"
	}
	return fmt.Sprintf("%v", item)
}

func formatStackItem(item interface{}) string {
	if v, ok := item.(value.Value); ok {
		return v.String()
	}
	if em, ok := item.(envMarker); ok {
		return fmt.Sprintf("env_marker(%d)", em.env.Index)
	}
	return fmt.Sprintf("%v", item)
}

func (m *Machine) doAug() error {
	b, err := m.popV()
	if err != nil {
		return err
	}
	a, err := m.popV()
	if err != nil {
		return err
	}
	switch a.Kind {
	case value.NilV:
		m.pushV(value.Tuple([]value.Value{b}))
	case value.TupleV:
		elems := make([]value.Value, len(a.Elems)+1)
		copy(elems, a.Elems)
		elems[len(a.Elems)] = b
		m.pushV(value.Tuple(elems))
	default:
		return rerr.Runtimef(rerr.TypeError, st.Node{}.Span, "'aug' requires a tuple or nil on its left")
	}
	return nil
}
