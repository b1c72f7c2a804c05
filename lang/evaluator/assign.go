package evaluator

import (
	"math"

	"github.com/loxcraft/loxcraft/lang/ast"
	"github.com/loxcraft/loxcraft/lang/environment"
	"github.com/loxcraft/loxcraft/lang/value"
)

// evalAssign resolves Op into the value to store (applying the compound
// read-op-write sugar when Op isn't plain "="), then writes it through
// whichever storage Target addresses.
func (e *Evaluator) evalAssign(s *ast.AssignStmt, env *environment.Environment) (value.Value, error) {
	rhs, err := e.evalExpr(s.Value, env)
	if err != nil {
		return nil, err
	}

	switch target := s.Target.(type) {
	case *ast.IdentExpr:
		newVal, err := e.applyCompound(s.Op, func() (value.Value, error) { return e.evalIdent(target.Name, env) }, rhs)
		if err != nil {
			return nil, err
		}
		env.Set(target.Name, newVal)
		return newVal, nil

	case *ast.ThisExpr:
		instVal, ok := env.GetCurrentClass()
		if !ok {
			return nil, e.errorf("'this' used outside a method")
		}
		inst := instVal.(*value.ClassInstance)
		newVal, err := e.applyCompound(s.Op, func() (value.Value, error) { return inst.GetField(target.Field), nil }, rhs)
		if err != nil {
			return nil, err
		}
		inst.SetField(target.Field, newVal)
		return newVal, nil

	case *ast.ClassGetExpr:
		recv, err := e.evalExpr(target.Receiver, env)
		if err != nil {
			return nil, err
		}
		inst, ok := recv.(*value.ClassInstance)
		if !ok {
			return nil, e.errorf("cannot assign field '%s' on %s", target.Field, recv.Type())
		}
		newVal, err := e.applyCompound(s.Op, func() (value.Value, error) { return inst.GetField(target.Field), nil }, rhs)
		if err != nil {
			return nil, err
		}
		inst.SetField(target.Field, newVal)
		return newVal, nil

	case *ast.IndexExpr:
		recv, err := e.evalExpr(target.Target, env)
		if err != nil {
			return nil, err
		}
		key, err := e.evalExpr(target.Index, env)
		if err != nil {
			return nil, err
		}
		switch t := recv.(type) {
		case *value.Hash:
			newVal, err := e.applyCompound(s.Op, func() (value.Value, error) {
				v, _ := t.Get(key)
				return v, nil
			}, rhs)
			if err != nil {
				return nil, err
			}
			t.Set(key, newVal)
			return newVal, nil
		case *value.Array:
			i, ok := asInt(key)
			if !ok {
				return nil, e.errorf("array index must be a number, got %s", key.Type())
			}
			newVal, err := e.applyCompound(s.Op, func() (value.Value, error) { return t.Get(i), nil }, rhs)
			if err != nil {
				return nil, err
			}
			t.Set(i, newVal)
			return newVal, nil
		default:
			return nil, e.errorf("cannot assign into %s", recv.Type())
		}

	default:
		return nil, e.errorf("invalid assignment target %T", s.Target)
	}
}

// applyCompound resolves "=" to rhs directly, or reads the target's
// current value via current and combines it with rhs via the arithmetic
// named by op (e.g. "+=" -> "+").
func (e *Evaluator) applyCompound(op string, current func() (value.Value, error), rhs value.Value) (value.Value, error) {
	if op == "=" {
		return rhs, nil
	}
	cur, err := current()
	if err != nil {
		return nil, err
	}
	arith := op[:len(op)-1] // "+=" -> "+"
	if arith == "+" {
		if ls, ok := cur.(value.String); ok {
			if rs, ok := rhs.(value.String); ok {
				return ls + rs, nil
			}
		}
	}
	if arith == "%" {
		ln, lok := cur.(value.Number)
		rn, rok := rhs.(value.Number)
		if !lok || !rok {
			return nil, e.errorf("'%%=' requires number operands, got %s and %s", cur.Type(), rhs.Type())
		}
		return value.Number(math.Mod(float64(ln), float64(rn))), nil
	}
	return e.numericInfix(arith, cur, rhs)
}
