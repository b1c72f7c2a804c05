// Package builtins implements the native function registry consulted by
// the evaluator, the compiler, and the virtual machine for name
// resolution and dispatch.
package builtins

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/loxcraft/loxcraft/lang/value"
)

// Registry is the builtin function table. It keeps two indices, a sorted
// name->index map and an index->record slice, so the compiler can emit a
// GetBuiltin(index) that stays stable across compilations.
type Registry struct {
	byIndex []*value.Builtin
	byName  map[string]int
}

// New builds the standard registry. Output-producing builtins (print,
// println) write to w.
func New(w io.Writer) *Registry {
	defs := []*value.Builtin{
		{Name: "print", Arity: 1, Fn: printFn(w)},
		{Name: "println", Arity: -1, Fn: printlnFn(w)},
		{Name: "len", Arity: 1, Fn: lenFn},
		{Name: "substr", Arity: 3, Fn: substrFn},
		{Name: "start_with", Arity: 2, Fn: startWithFn},
		{Name: "typeis", Arity: 1, Fn: typeisFn},
		{Name: "type", Arity: 1, Fn: typeFn},
		{Name: "append", Arity: -1, Fn: appendFn},
		{Name: "intval", Arity: 1, Fn: intvalFn},
		{Name: "is_str", Arity: 1, Fn: isStrFn},
		{Name: "is_number", Arity: 1, Fn: isNumberFn},
		{Name: "strval", Arity: 1, Fn: strvalFn},
		{Name: "trim", Arity: 1, Fn: trimFn},
	}
	slices.SortFunc(defs, func(a, b *value.Builtin) int { return strings.Compare(a.Name, b.Name) })

	r := &Registry{byIndex: defs, byName: make(map[string]int, len(defs))}
	for i, d := range defs {
		r.byName[d.Name] = i
	}
	return r
}

// GetIndex returns the index of the builtin named name, or (-1, false) if
// there is no such builtin.
func (r *Registry) GetIndex(name string) (int, bool) {
	i, ok := r.byName[name]
	if !ok {
		return -1, false
	}
	return i, true
}

// GetByIndex returns the builtin at i, the counterpart to GetIndex used by
// GetBuiltin opcode dispatch.
func (r *Registry) GetByIndex(i int) *value.Builtin {
	if i < 0 || i >= len(r.byIndex) {
		return nil
	}
	return r.byIndex[i]
}

// GetName returns the name of the builtin at index i.
func (r *Registry) GetName(i int) string {
	if b := r.GetByIndex(i); b != nil {
		return b.Name
	}
	return ""
}

// Len returns the number of registered builtins.
func (r *Registry) Len() int { return len(r.byIndex) }

// Call checks arity and invokes the builtin at index i.
func (r *Registry) Call(i int, args []value.Value) (value.Value, error) {
	b := r.GetByIndex(i)
	if b == nil {
		return nil, fmt.Errorf("no such builtin at index %d", i)
	}
	return CallBuiltin(b, args)
}

// CallBuiltin checks arity and invokes b directly.
func CallBuiltin(b *value.Builtin, args []value.Value) (value.Value, error) {
	if b.Arity >= 0 && len(args) != b.Arity {
		return nil, fmt.Errorf("%s: expected %d argument(s), got %d", b.Name, b.Arity, len(args))
	}
	return b.Fn(args)
}

func printFn(w io.Writer) value.BuiltinFunc {
	return func(args []value.Value) (value.Value, error) {
		fmt.Fprint(w, args[0].String())
		return value.Nil, nil
	}
}

func printlnFn(w io.Writer) value.BuiltinFunc {
	return func(args []value.Value) (value.Value, error) {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = a.String()
		}
		fmt.Fprintln(w, strings.Join(parts, " "))
		return value.Nil, nil
	}
}

func lenFn(args []value.Value) (value.Value, error) {
	switch v := args[0].(type) {
	case value.String:
		return value.Number(len(v)), nil
	case *value.Array:
		return value.Number(v.Len()), nil
	case *value.Hash:
		return value.Number(v.Len()), nil
	default:
		return value.Nil, nil
	}
}

func substrFn(args []value.Value) (value.Value, error) {
	s, ok := args[0].(value.String)
	if !ok {
		return value.Nil, nil
	}
	start, sOk := asIndex(args[1])
	end, eOk := asIndex(args[2])
	if !sOk || !eOk {
		return value.Nil, nil
	}
	str := string(s)
	if end <= 0 || int(end) > len(str) {
		end = int64(len(str))
	}
	if int(start) < 0 || int64(start) > int64(len(str)) || int64(start) > end {
		return value.String(""), nil
	}
	return value.String(str[start:end]), nil
}

func startWithFn(args []value.Value) (value.Value, error) {
	s, ok1 := args[0].(value.String)
	prefix, ok2 := args[1].(value.String)
	if !ok1 || !ok2 {
		return value.Boolean(false), nil
	}
	return value.Boolean(strings.HasPrefix(string(s), string(prefix))), nil
}

func typeisFn(args []value.Value) (value.Value, error) {
	return value.String(args[0].Type()), nil
}

func typeFn(args []value.Value) (value.Value, error) {
	switch args[0].(type) {
	case value.String:
		return value.String("string"), nil
	case value.Number, value.Index:
		return value.String("number"), nil
	case value.Boolean:
		return value.String("boolean"), nil
	case *value.Array:
		return value.String("array"), nil
	case *value.Hash, *value.ClassInstance, *value.Class:
		return value.String("object"), nil
	case *value.Function, *value.Builtin, *value.CompiledFunction, *value.Closure:
		return value.String("function"), nil
	default:
		return value.String("nil"), nil
	}
}

func appendFn(args []value.Value) (value.Value, error) {
	if len(args) == 0 {
		return value.Nil, nil
	}
	arr, ok := args[0].(*value.Array)
	if !ok {
		return value.Nil, nil
	}
	arr.SetElems(append(append([]value.Value{}, arr.Elems()...), args[1:]...))
	return arr, nil
}

func intvalFn(args []value.Value) (value.Value, error) {
	switch v := args[0].(type) {
	case value.Number:
		return value.Index(int64(v)), nil
	case value.Index:
		return v, nil
	case value.String:
		n, err := strconv.ParseFloat(strings.TrimSpace(string(v)), 64)
		if err != nil {
			return value.Nil, nil
		}
		return value.Index(int64(n)), nil
	default:
		return value.Nil, nil
	}
}

// isStrFn preserves the original implementation's quirk: it inspects the
// first character of the value's printable form for a quote mark rather
// than checking the value's kind. Do not "fix" this without downstream
// tests confirming the intent (spec.md §9 open question (c)).
func isStrFn(args []value.Value) (value.Value, error) {
	s := args[0].String()
	if len(s) == 0 {
		return value.Boolean(false), nil
	}
	return value.Boolean(s[0] == '"' || s[0] == '\''), nil
}

func isNumberFn(args []value.Value) (value.Value, error) {
	v, err := intvalFn(args)
	if err != nil {
		return nil, err
	}
	return value.Boolean(!value.IsNil(v)), nil
}

func strvalFn(args []value.Value) (value.Value, error) {
	return value.String(args[0].String()), nil
}

func trimFn(args []value.Value) (value.Value, error) {
	s, ok := args[0].(value.String)
	if !ok {
		return value.Nil, nil
	}
	return value.String(strings.TrimSpace(string(s))), nil
}

func asIndex(v value.Value) (int64, bool) {
	switch n := v.(type) {
	case value.Number:
		return int64(n), true
	case value.Index:
		return int64(n), true
	default:
		return 0, false
	}
}

// Names returns every builtin name, sorted.
func (r *Registry) Names() []string {
	names := make([]string, len(r.byIndex))
	for i, b := range r.byIndex {
		names[i] = b.Name
	}
	sort.Strings(names)
	return names
}
