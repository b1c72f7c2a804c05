package evaluator

import (
	"fmt"
	"math"
	"strings"

	"github.com/loxcraft/loxcraft/lang/ast"
	"github.com/loxcraft/loxcraft/lang/builtins"
	"github.com/loxcraft/loxcraft/lang/environment"
	"github.com/loxcraft/loxcraft/lang/value"
)

func (e *Evaluator) evalExpr(expr ast.Expr, env *environment.Environment) (value.Value, error) {
	switch x := expr.(type) {
	case *ast.NumberLit:
		return value.Number(x.Value), nil
	case *ast.StringLit:
		return value.String(x.Value), nil
	case *ast.BoolLit:
		return value.Boolean(x.Value), nil
	case *ast.NilLit:
		return value.Nil, nil

	case *ast.ArrayLit:
		elems, err := e.evalArgs(x.Elems, env)
		if err != nil {
			return nil, err
		}
		return value.NewArray(elems), nil

	case *ast.HashLit:
		h := value.NewHash(len(x.Entries))
		for _, ent := range x.Entries {
			k, err := e.evalExpr(ent.Key, env)
			if err != nil {
				return nil, err
			}
			v, err := e.evalExpr(ent.Value, env)
			if err != nil {
				return nil, err
			}
			h.Set(k, v)
		}
		return h, nil

	case *ast.IdentExpr:
		return e.evalIdent(x.Name, env)

	case *ast.ThisExpr:
		inst, ok := env.GetCurrentClass()
		if !ok {
			return nil, e.errorf("'this' used outside a method")
		}
		ci, ok := inst.(*value.ClassInstance)
		if !ok {
			return nil, e.errorf("'this' is not a class instance")
		}
		return ci.GetField(x.Field), nil

	case *ast.GroupingExpr:
		return e.evalExpr(x.X, env)

	case *ast.PrefixExpr:
		return e.evalPrefix(x, env)

	case *ast.InfixExpr:
		return e.evalInfix(x, env)

	case *ast.PrintExpr:
		return e.evalPrint(x, env)

	case *ast.IndexExpr:
		return e.evalIndex(x, env)

	case *ast.IfExpr:
		return e.evalIf(x, env)

	case *ast.FunctionExpr:
		return &value.Function{Params: x.Params, Body: x.Body, Env: env}, nil

	case *ast.CallExpr:
		return e.evalCall(x, env)

	case *ast.ClassInitExpr:
		return e.evalClassInit(x, env)

	case *ast.ClassCallExpr:
		return e.evalClassCall(x, env)

	case *ast.ClassGetExpr:
		return e.evalClassGet(x, env)

	case *ast.ThisCallExpr:
		return e.evalThisCall(x, env)

	default:
		return nil, e.errorf("cannot evaluate expression of type %T", expr)
	}
}

func (e *Evaluator) evalIdent(name string, env *environment.Environment) (value.Value, error) {
	if i, ok := e.builtins.GetIndex(name); ok {
		return e.builtins.GetByIndex(i), nil
	}
	if v, ok := env.Get(name); ok {
		return v, nil
	}
	return nil, e.errorf("undefined variable '%s'", name)
}

func (e *Evaluator) evalPrefix(x *ast.PrefixExpr, env *environment.Environment) (value.Value, error) {
	right, err := e.evalExpr(x.Right, env)
	if err != nil {
		return nil, err
	}
	switch x.Op {
	case "-":
		n, ok := right.(value.Number)
		if !ok {
			return nil, e.errorf("operand of unary '-' must be a number, got %s", right.Type())
		}
		return -n, nil
	case "+":
		n, ok := right.(value.Number)
		if !ok {
			return nil, e.errorf("operand of unary '+' must be a number, got %s", right.Type())
		}
		return n, nil
	case "!":
		switch v := right.(type) {
		case value.Boolean:
			return !v, nil
		case value.Number:
			return value.Boolean(v == 0), nil
		default:
			if value.IsNil(v) {
				return value.Boolean(true), nil
			}
			if s, ok := v.(value.String); ok {
				return value.Boolean(len(s) == 0), nil
			}
			return value.Boolean(false), nil
		}
	default:
		return nil, e.errorf("unknown prefix operator %q", x.Op)
	}
}

func (e *Evaluator) evalInfix(x *ast.InfixExpr, env *environment.Environment) (value.Value, error) {
	left, err := e.evalExpr(x.Left, env)
	if err != nil {
		return nil, err
	}
	right, err := e.evalExpr(x.Right, env)
	if err != nil {
		return nil, err
	}

	switch x.Op {
	case "==":
		return value.Boolean(equalsRule(left, right)), nil
	case "!=":
		return value.Boolean(!equalsRule(left, right)), nil
	case "&&":
		lb, lok := left.(value.Boolean)
		rb, rok := right.(value.Boolean)
		if !lok || !rok {
			return nil, e.errorf("'&&' requires boolean operands, got %s and %s", left.Type(), right.Type())
		}
		return value.Boolean(bool(lb) && bool(rb)), nil
	case "||":
		lb, lok := left.(value.Boolean)
		rb, rok := right.(value.Boolean)
		if !lok || !rok {
			return nil, e.errorf("'||' requires boolean operands, got %s and %s", left.Type(), right.Type())
		}
		return value.Boolean(bool(lb) || bool(rb)), nil
	case "+":
		if ls, ok := left.(value.String); ok {
			if rs, ok := right.(value.String); ok {
				return ls + rs, nil
			}
		}
		return e.numericInfix("+", left, right)
	case "-", "*", "/":
		return e.numericInfix(x.Op, left, right)
	case "%":
		ln, lok := left.(value.Number)
		rn, rok := right.(value.Number)
		if !lok || !rok {
			return nil, e.errorf("'%%' requires number operands, got %s and %s", left.Type(), right.Type())
		}
		return value.Number(math.Mod(float64(ln), float64(rn))), nil
	case "<", "<=", ">", ">=":
		ln, lok := left.(value.Number)
		rn, rok := right.(value.Number)
		if !lok || !rok {
			return nil, e.errorf("'%s' requires number operands, got %s and %s", x.Op, left.Type(), right.Type())
		}
		return value.Boolean(compareNumbers(x.Op, float64(ln), float64(rn))), nil
	default:
		return nil, e.errorf("unknown infix operator %q", x.Op)
	}
}

func (e *Evaluator) numericInfix(op string, left, right value.Value) (value.Value, error) {
	ln, lok := left.(value.Number)
	rn, rok := right.(value.Number)
	if !lok || !rok {
		return nil, e.errorf("'%s' requires number operands, got %s and %s", op, left.Type(), right.Type())
	}
	switch op {
	case "+":
		return ln + rn, nil
	case "-":
		return ln - rn, nil
	case "*":
		return ln * rn, nil
	case "/":
		return ln / rn, nil
	default:
		return nil, e.errorf("unknown numeric operator %q", op)
	}
}

func compareNumbers(op string, l, r float64) bool {
	switch op {
	case "<":
		return l < r
	case "<=":
		return l <= r
	case ">":
		return l > r
	case ">=":
		return l >= r
	default:
		return false
	}
}

// equalsRule implements `==`/`!=`: structural comparison within matching
// Number/Boolean/String/Nil kinds, false across mismatched kinds (rather
// than value.Equal's reference rule for Hash/Array/ClassInstance, which is
// used by `switch` but not by the infix operators).
func equalsRule(a, b value.Value) bool {
	switch x := a.(type) {
	case value.Number:
		y, ok := b.(value.Number)
		return ok && x == y
	case value.Boolean:
		y, ok := b.(value.Boolean)
		return ok && x == y
	case value.String:
		y, ok := b.(value.String)
		return ok && x == y
	default:
		if value.IsNil(a) {
			return value.IsNil(b)
		}
		return false
	}
}

func (e *Evaluator) evalPrint(x *ast.PrintExpr, env *environment.Environment) (value.Value, error) {
	args, err := e.evalArgs(x.Args, env)
	if err != nil {
		return nil, err
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	fmt.Fprint(e.out, strings.Join(parts, ""))
	return value.Nil, nil
}

func (e *Evaluator) evalIndex(x *ast.IndexExpr, env *environment.Environment) (value.Value, error) {
	target, err := e.evalExpr(x.Target, env)
	if err != nil {
		return nil, err
	}
	idx, err := e.evalExpr(x.Index, env)
	if err != nil {
		return nil, err
	}

	switch t := target.(type) {
	case *value.Array:
		i, ok := asInt(idx)
		if !ok {
			return nil, e.errorf("array index must be a number, got %s", idx.Type())
		}
		if i < 0 || i >= t.Len() {
			return nil, e.errorf("array index %d out of range (len %d)", i, t.Len())
		}
		return t.Get(i), nil
	case *value.Hash:
		v, ok := t.Get(idx)
		if !ok {
			return value.Nil, nil
		}
		return v, nil
	case value.String:
		i, ok := asInt(idx)
		if !ok {
			return nil, e.errorf("string index must be a number, got %s", idx.Type())
		}
		if i < 0 || i >= len(t) {
			return nil, e.errorf("string index %d out of range (len %d)", i, len(t))
		}
		return value.String(t[i : i+1]), nil
	default:
		return nil, e.errorf("cannot index into %s", target.Type())
	}
}

func asInt(v value.Value) (int, bool) {
	switch n := v.(type) {
	case value.Number:
		return int(n), true
	case value.Index:
		return int(n), true
	default:
		return 0, false
	}
}

func (e *Evaluator) evalIf(x *ast.IfExpr, env *environment.Environment) (value.Value, error) {
	cond, err := e.evalExpr(x.Cond, env)
	if err != nil {
		return nil, err
	}
	if value.Truthy(cond) {
		return e.execBlock(x.Then, environment.NewChild(env))
	}
	for _, ei := range x.ElseIfs {
		c, err := e.evalExpr(ei.Cond, env)
		if err != nil {
			return nil, err
		}
		if value.Truthy(c) {
			return e.execBlock(ei.Then, environment.NewChild(env))
		}
	}
	if x.Else != nil {
		return e.execBlock(x.Else, environment.NewChild(env))
	}
	return value.Nil, nil
}

func (e *Evaluator) evalCall(x *ast.CallExpr, env *environment.Environment) (value.Value, error) {
	callee, err := e.evalExpr(x.Callee, env)
	if err != nil {
		return nil, err
	}
	args, err := e.evalArgs(x.Args, env)
	if err != nil {
		return nil, err
	}
	switch fn := callee.(type) {
	case *value.Builtin:
		v, err := builtins.CallBuiltin(fn, args)
		if err != nil {
			return nil, e.errorf("%s", err.Error())
		}
		return v, nil
	case *value.Function:
		return e.callFunction(fn, args)
	default:
		return nil, e.errorf("cannot call a value of type %s", callee.Type())
	}
}

func (e *Evaluator) evalClassInit(x *ast.ClassInitExpr, env *environment.Environment) (value.Value, error) {
	clsVal, err := e.evalIdent(x.ClassName, env)
	if err != nil {
		return nil, err
	}
	cls, ok := clsVal.(*value.Class)
	if !ok {
		return nil, e.errorf("'%s' is not a class", x.ClassName)
	}
	inst := value.NewClassInstance(cls)

	defEnv, _ := cls.Env.(*environment.Environment)
	fieldEnv := environment.NewChild(defEnv)
	fieldEnv.SetCurrentClass(inst)
	for _, f := range cls.Fields {
		v, err := e.evalExpr(f.Init, fieldEnv)
		if err != nil {
			return nil, err
		}
		inst.SetField(f.Name, v)
	}

	args, err := e.evalArgs(x.Args, env)
	if err != nil {
		return nil, err
	}
	if initVal, ok := inst.GetMethod("init"); ok {
		if _, err := e.callMethod(inst, initVal.(*value.Function), args); err != nil {
			return nil, err
		}
	}
	return inst, nil
}

func (e *Evaluator) evalClassCall(x *ast.ClassCallExpr, env *environment.Environment) (value.Value, error) {
	recv, err := e.evalExpr(x.Receiver, env)
	if err != nil {
		return nil, err
	}
	inst, ok := recv.(*value.ClassInstance)
	if !ok {
		return nil, e.errorf("cannot call method '%s' on %s", x.Method, recv.Type())
	}
	methodVal, ok := inst.GetMethod(x.Method)
	if !ok {
		return nil, e.errorf("undefined method '%s' on %s", x.Method, inst.ClassName)
	}
	args, err := e.evalArgs(x.Args, env)
	if err != nil {
		return nil, err
	}
	return e.callMethod(inst, methodVal.(*value.Function), args)
}

func (e *Evaluator) evalClassGet(x *ast.ClassGetExpr, env *environment.Environment) (value.Value, error) {
	recv, err := e.evalExpr(x.Receiver, env)
	if err != nil {
		return nil, err
	}
	inst, ok := recv.(*value.ClassInstance)
	if !ok {
		return nil, e.errorf("cannot read field '%s' on %s", x.Field, recv.Type())
	}
	return inst.GetField(x.Field), nil
}

func (e *Evaluator) evalThisCall(x *ast.ThisCallExpr, env *environment.Environment) (value.Value, error) {
	instVal, ok := env.GetCurrentClass()
	if !ok {
		return nil, e.errorf("'this' used outside a method")
	}
	inst := instVal.(*value.ClassInstance)
	methodVal, ok := inst.GetMethod(x.Method)
	if !ok {
		return nil, e.errorf("undefined method '%s' on %s", x.Method, inst.ClassName)
	}
	args, err := e.evalArgs(x.Args, env)
	if err != nil {
		return nil, err
	}
	return e.callMethod(inst, methodVal.(*value.Function), args)
}
