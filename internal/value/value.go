/*
Package value defines the CSE machine's runtime value representation (a
tagged union over Int/Str/Bool/Tuple/Nil/Dummy/Closure/Eta/Builtin) together
with the lexical Environment tree closures capture. Environment and Value
live in one package, mirroring the teacher's runtime package, which bundles
its scope table and memory-frame stack together rather than splitting them
across packages with a dependency cycle between them.

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package value

import (
	"fmt"
	"strings"

	"github.com/ravindusw/rpal-interpreter/internal/st"
)

// Kind tags the variant a Value holds.
type Kind int

const (
	IntV Kind = iota
	StrV
	BoolV
	TupleV
	NilV
	DummyV
	ClosureV
	EtaV
	BuiltinV
)

func (k Kind) String() string {
	switch k {
	case IntV:
		return "int"
	case StrV:
		return "string"
	case BoolV:
		return "bool"
	case TupleV:
		return "tuple"
	case NilV:
		return "nil"
	case DummyV:
		return "dummy"
	case ClosureV:
		return "function"
	case EtaV:
		return "function"
	case BuiltinV:
		return "function"
	}
	return "?"
}

// Value is RPAL's one runtime datum shape. Only the field matching Kind is
// meaningful.
type Value struct {
	Kind    Kind
	Int     int64
	Str     string
	Bool    bool
	Elems   []Value
	Closure *Closure
	Builtin *Builtin
}

// Closure pairs an unevaluated lambda body with the environment it closed
// over. Eta is set when Y* (rule 12) has wrapped the closure for a
// rec-binding; applying such a value follows the eta rule (R13).
type Closure struct {
	Param *st.Node
	Body  *st.Node
	Env   *Env
	Eta   bool
}

// Builtin is a primitive function implemented in Go rather than RPAL.
// Builtins of Arity > 1 are applied one argument at a time, exactly like
// user closures; Partial accumulates arguments already supplied.
type Builtin struct {
	Name    string
	Arity   int
	Fn      func(args []Value) (Value, error)
	Partial []Value
}

func Int(v int64) Value  { return Value{Kind: IntV, Int: v} }
func Str(v string) Value { return Value{Kind: StrV, Str: v} }
func Bool(v bool) Value  { return Value{Kind: BoolV, Bool: v} }
func Nil() Value         { return Value{Kind: NilV} }
func Dummy() Value       { return Value{Kind: DummyV} }
func Tuple(elems []Value) Value {
	return Value{Kind: TupleV, Elems: elems}
}
func FromClosure(c *Closure) Value {
	if c.Eta {
		return Value{Kind: EtaV, Closure: c}
	}
	return Value{Kind: ClosureV, Closure: c}
}
func FromBuiltin(b *Builtin) Value {
	return Value{Kind: BuiltinV, Builtin: b}
}

// String renders a Value the way the Print builtin does: tuples
// parenthesized and comma-separated, strings unquoted, booleans lowercase.
func (v Value) String() string {
	switch v.Kind {
	case IntV:
		return fmt.Sprintf("%d", v.Int)
	case StrV:
		return v.Str
	case BoolV:
		if v.Bool {
			return "true"
		}
		return "false"
	case NilV:
		return "nil"
	case DummyV:
		return "dummy"
	case TupleV:
		parts := make([]string, len(v.Elems))
		for i, e := range v.Elems {
			parts[i] = e.String()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case ClosureV:
		return "[function]"
	case EtaV:
		return "[function]"
	case BuiltinV:
		return fmt.Sprintf("[function %s]", v.Builtin.Name)
	}
	return "?"
}

// Env is one frame of the lexical environment tree. Index numbers frames in
// creation order (e0 is the primitive environment) purely for the
// env_marker labels of the trace dump; lookup never consults it.
type Env struct {
	Parent *Env
	Vars   map[string]Value
	Index  int
}

func NewEnv(parent *Env, index int) *Env {
	return &Env{Parent: parent, Vars: map[string]Value{}, Index: index}
}

// Lookup searches this frame and its ancestors for name.
func (e *Env) Lookup(name string) (Value, bool) {
	for env := e; env != nil; env = env.Parent {
		if v, ok := env.Vars[name]; ok {
			return v, true
		}
	}
	return Value{}, false
}

func (e *Env) Bind(name string, v Value) {
	e.Vars[name] = v
}

// Bind a list of positional names to a tuple's elements (for tuple-pattern
// lambda parameters), or a single name to a value.
func BindParam(env *Env, param *st.Node, arg Value) error {
	switch param.Kind {
	case st.Ident:
		env.Bind(param.Name, arg)
		return nil
	case st.EmptyVB:
		return nil
	case st.Tau:
		names := st.ParamNames(param)
		if arg.Kind != TupleV || len(arg.Elems) != len(names) {
			return fmt.Errorf("cannot bind tuple pattern of %d names to %v", len(names), arg)
		}
		for i, name := range names {
			env.Bind(name, arg.Elems[i])
		}
		return nil
	}
	return fmt.Errorf("invalid parameter pattern kind %v", param.Kind)
}
