package evaluator

import (
	"fmt"

	"github.com/loxcraft/loxcraft/lang/ast"
	"github.com/loxcraft/loxcraft/lang/environment"
	"github.com/loxcraft/loxcraft/lang/value"
)

// execStmt runs a single statement. A non-nil returned value.Value is
// always a value.ReturnValue unwinding toward the nearest function call;
// "statement completed normally" is (nil, nil).
func (e *Evaluator) execStmt(stmt ast.Stmt, env *environment.Environment) (value.Value, error) {
	switch s := stmt.(type) {
	case *ast.BlankStmt:
		return nil, nil

	case *ast.VarStmt:
		v, err := e.evalExpr(s.Init, env)
		if err != nil {
			return nil, err
		}
		env.SetStore(s.Name, v)
		return nil, nil

	case *ast.ExprStmt:
		v, err := e.evalExpr(s.X, env)
		if err != nil {
			return nil, err
		}
		if rv, ok := v.(value.ReturnValue); ok {
			return rv, nil
		}
		return nil, nil

	case *ast.BlockStmt:
		return e.execBlock(s, environment.NewChild(env))

	case *ast.ReturnStmt:
		v := value.Value(value.Nil)
		if s.Value != nil {
			var err error
			v, err = e.evalExpr(s.Value, env)
			if err != nil {
				return nil, err
			}
		}
		return value.ReturnValue{Value: v}, nil

	case *ast.FunctionStmt:
		env.SetStore(s.Name, &value.Function{Name: s.Name, Params: s.Params, Body: s.Body, Env: env})
		return nil, nil

	case *ast.WhileStmt:
		return e.execWhile(s, env)

	case *ast.ForStmt:
		return e.execFor(s, env)

	case *ast.ForInStmt:
		return e.execForIn(s, env)

	case *ast.SwitchStmt:
		return e.execSwitch(s, env)

	case *ast.ClassStmt:
		return e.execClassStmt(s, env)

	case *ast.ImportStmt:
		// Imports are resolved ahead of evaluation by lang/importer; by
		// the time a Program reaches the evaluator its imported
		// statements have already been spliced in, so this is a no-op.
		return nil, nil

	case *ast.AssertStmt:
		return nil, e.execAssert(s, env)

	case *ast.AssignStmt:
		_, err := e.evalAssign(s, env)
		return nil, err

	default:
		return nil, e.errorf("cannot evaluate statement of type %T", stmt)
	}
}

func (e *Evaluator) execWhile(s *ast.WhileStmt, env *environment.Environment) (value.Value, error) {
	for {
		cond, err := e.evalExpr(s.Cond, env)
		if err != nil {
			return nil, err
		}
		if !value.Truthy(cond) {
			return nil, nil
		}
		v, err := e.execBlock(s.Body, environment.NewChild(env))
		if err != nil {
			return nil, err
		}
		if v != nil {
			return v, nil
		}
	}
}

func (e *Evaluator) execFor(s *ast.ForStmt, env *environment.Environment) (value.Value, error) {
	loopEnv := environment.NewChild(env)
	if s.Init != nil {
		if _, err := e.execStmt(s.Init, loopEnv); err != nil {
			return nil, err
		}
	}
	for {
		if s.Cond != nil {
			cond, err := e.evalExpr(s.Cond, loopEnv)
			if err != nil {
				return nil, err
			}
			if !value.Truthy(cond) {
				return nil, nil
			}
		}
		v, err := e.execBlock(s.Body, environment.NewChild(loopEnv))
		if err != nil {
			return nil, err
		}
		if v != nil {
			return v, nil
		}
		if s.Step != nil {
			if _, err := e.execStmt(s.Step, loopEnv); err != nil {
				return nil, err
			}
		}
	}
}

func (e *Evaluator) execForIn(s *ast.ForInStmt, env *environment.Environment) (value.Value, error) {
	iter, err := e.evalExpr(s.Iter, env)
	if err != nil {
		return nil, err
	}

	var keys []value.Value
	switch it := iter.(type) {
	case *value.Hash:
		keys = it.Keys()
	case *value.Array:
		for i := 0; i < it.Len(); i++ {
			keys = append(keys, it.Get(i))
		}
	default:
		return nil, e.errorf("for-in requires an array or hash, got %s", iter.Type())
	}

	for _, k := range keys {
		bodyEnv := environment.NewChild(env)
		bodyEnv.SetStore(s.VarName, k)
		v, err := e.execBlock(s.Body, bodyEnv)
		if err != nil {
			return nil, err
		}
		if v != nil {
			return v, nil
		}
	}
	return nil, nil
}

func (e *Evaluator) execSwitch(s *ast.SwitchStmt, env *environment.Environment) (value.Value, error) {
	tag, err := e.evalExpr(s.Tag, env)
	if err != nil {
		return nil, err
	}
	for _, c := range s.Cases {
		cv, err := e.evalExpr(c.Value, env)
		if err != nil {
			return nil, err
		}
		if value.Equal(tag, cv) {
			return e.execStmtList(c.Body, environment.NewChild(env))
		}
	}
	if s.Default != nil {
		return e.execStmtList(s.Default, environment.NewChild(env))
	}
	return nil, nil
}

func (e *Evaluator) execStmtList(stmts []ast.Stmt, env *environment.Environment) (value.Value, error) {
	for _, stmt := range stmts {
		v, err := e.execStmt(stmt, env)
		if err != nil {
			return nil, err
		}
		if v != nil {
			return v, nil
		}
	}
	return nil, nil
}

func (e *Evaluator) execClassStmt(s *ast.ClassStmt, env *environment.Environment) (value.Value, error) {
	methods := make(map[string]*value.Function, len(s.Methods))
	for _, m := range s.Methods {
		methods[m.Name] = &value.Function{Name: m.Name, Params: m.Params, Body: m.Body, Env: env}
	}
	fields := make([]value.FieldInit, len(s.Fields))
	for i, f := range s.Fields {
		fields[i] = value.FieldInit{Name: f.Name, Init: f.Init}
	}
	cls := &value.Class{Name: s.Name, Fields: fields, Methods: methods, Env: env}
	env.SetStore(s.Name, cls)
	return nil, nil
}

func (e *Evaluator) execAssert(s *ast.AssertStmt, env *environment.Environment) error {
	cond, err := e.evalExpr(s.Cond, env)
	if err != nil {
		return err
	}
	if value.Truthy(cond) {
		return nil
	}
	msg := "assertion failed"
	if s.Message != nil {
		mv, err := e.evalExpr(s.Message, env)
		if err != nil {
			return err
		}
		msg = mv.String()
	}
	fmt.Fprintln(e.out, msg)
	return e.errorf("%s", msg)
}
