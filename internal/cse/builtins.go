package cse

import (
	"fmt"
	"strconv"

	"github.com/ravindusw/rpal-interpreter/internal/rerr"
	"github.com/ravindusw/rpal-interpreter/internal/st"
	"github.com/ravindusw/rpal-interpreter/internal/value"
)

// applyBuiltin implements R3: built-ins are applied one argument at a time,
// exactly like user closures, accumulating a Partial argument list until
// Arity is reached.
func (m *Machine) applyBuiltin(b *value.Builtin, arg value.Value) error {
	args := make([]value.Value, len(b.Partial)+1)
	copy(args, b.Partial)
	args[len(b.Partial)] = arg
	if len(args) < b.Arity {
		m.pushV(value.FromBuiltin(&value.Builtin{Name: b.Name, Arity: b.Arity, Fn: b.Fn, Partial: args}))
		return nil
	}
	result, err := b.Fn(args)
	if err != nil {
		return rerr.Runtimef(rerr.BuiltinError, st.Node{}.Span, "%s: %v", b.Name, err)
	}
	m.pushV(result)
	return nil
}

// yStarBuiltin is the fixed-point combinator the standardizer's rec-rule
// (rule 7) applies to a lambda: Y*(lambda(X,E)) wraps that closure as an
// eta value, so applying it later re-binds X to itself (rule 13).
var yStarBuiltin = &value.Builtin{
	Name:  "Y*",
	Arity: 1,
	Fn: func(args []value.Value) (value.Value, error) {
		c := args[0]
		if c.Kind != value.ClosureV {
			return value.Value{}, fmt.Errorf("Y* requires a function, got %s", c.Kind)
		}
		eta := *c.Closure
		eta.Eta = true
		return value.FromClosure(&eta), nil
	},
}

func primitiveEnv(m *Machine) *value.Env {
	e0 := value.NewEnv(nil, 0)
	bind := func(name string, arity int, fn func(args []value.Value) (value.Value, error)) {
		e0.Bind(name, value.FromBuiltin(&value.Builtin{Name: name, Arity: arity, Fn: fn}))
	}

	bind("Print", 1, func(args []value.Value) (value.Value, error) {
		fmt.Fprintln(m.out, args[0].String())
		return value.Dummy(), nil
	})
	bind("Stem", 1, func(args []value.Value) (value.Value, error) {
		s, err := wantStr(args[0], "Stem")
		if err != nil {
			return value.Value{}, err
		}
		if len(s) == 0 {
			return value.Str(""), nil
		}
		return value.Str(s[:1]), nil
	})
	bind("Stern", 1, func(args []value.Value) (value.Value, error) {
		s, err := wantStr(args[0], "Stern")
		if err != nil {
			return value.Value{}, err
		}
		if len(s) == 0 {
			return value.Str(""), nil
		}
		return value.Str(s[1:]), nil
	})
	bind("Conc", 2, func(args []value.Value) (value.Value, error) {
		a, err := wantStr(args[0], "Conc")
		if err != nil {
			return value.Value{}, err
		}
		b, err := wantStr(args[1], "Conc")
		if err != nil {
			return value.Value{}, err
		}
		return value.Str(a + b), nil
	})
	bind("Order", 1, func(args []value.Value) (value.Value, error) {
		switch args[0].Kind {
		case value.TupleV:
			return value.Int(int64(len(args[0].Elems))), nil
		case value.NilV:
			return value.Int(0), nil
		}
		return value.Value{}, fmt.Errorf("Order requires a tuple, got %s", args[0].Kind)
	})
	bind("Null", 1, func(args []value.Value) (value.Value, error) {
		switch args[0].Kind {
		case value.TupleV:
			return value.Bool(len(args[0].Elems) == 0), nil
		case value.NilV:
			return value.Bool(true), nil
		case value.StrV:
			return value.Bool(len(args[0].Str) == 0), nil
		}
		return value.Value{}, fmt.Errorf("Null requires a tuple or string, got %s", args[0].Kind)
	})
	bind("Isinteger", 1, predicate(func(v value.Value) bool { return v.Kind == value.IntV }))
	bind("Isstring", 1, predicate(func(v value.Value) bool { return v.Kind == value.StrV }))
	bind("Istuple", 1, predicate(func(v value.Value) bool { return v.Kind == value.TupleV || v.Kind == value.NilV }))
	bind("Isdummy", 1, predicate(func(v value.Value) bool { return v.Kind == value.DummyV }))
	bind("Istruthvalue", 1, predicate(func(v value.Value) bool { return v.Kind == value.BoolV }))
	bind("Isfunction", 1, predicate(func(v value.Value) bool {
		return v.Kind == value.ClosureV || v.Kind == value.EtaV || v.Kind == value.BuiltinV
	}))
	bind("ItoS", 1, func(args []value.Value) (value.Value, error) {
		if args[0].Kind != value.IntV {
			return value.Value{}, fmt.Errorf("ItoS requires an integer, got %s", args[0].Kind)
		}
		return value.Str(strconv.FormatInt(args[0].Int, 10)), nil
	})

	return e0
}

func predicate(p func(value.Value) bool) func([]value.Value) (value.Value, error) {
	return func(args []value.Value) (value.Value, error) {
		return value.Bool(p(args[0])), nil
	}
}

func wantStr(v value.Value, who string) (string, error) {
	if v.Kind != value.StrV {
		return "", fmt.Errorf("%s requires a string, got %s", who, v.Kind)
	}
	return v.Str, nil
}
