// Package evaluator implements the tree-walk interpreter: a recursive
// walker over lang/ast that carries a lang/environment cursor and produces
// lang/value results, consulting lang/builtins for native functions.
package evaluator

import (
	"fmt"
	"io"

	"github.com/loxcraft/loxcraft/lang/ast"
	"github.com/loxcraft/loxcraft/lang/builtins"
	"github.com/loxcraft/loxcraft/lang/environment"
	"github.com/loxcraft/loxcraft/lang/value"
)

// Evaluator walks a Program, reading and writing through an Environment
// tree and dispatching builtin calls through a Registry.
type Evaluator struct {
	builtins  *builtins.Registry
	out       io.Writer
	callStack []string
}

// New returns an Evaluator whose builtins write to out (print/println).
func New(reg *builtins.Registry, out io.Writer) *Evaluator {
	return &Evaluator{builtins: reg, out: out}
}

// Run executes every top-level statement of prog against env. When
// printTopLevel is set (the `evaluate` CLI entry point), the value each
// top-level expression statement produces is printed on its own line; the
// `run` entry point passes false, so only explicit `print`/`println` calls
// are visible.
func (e *Evaluator) Run(prog *ast.Program, env *environment.Environment, printTopLevel bool) error {
	for _, stmt := range prog.Stmts {
		if printTopLevel {
			if es, ok := stmt.(*ast.ExprStmt); ok {
				if _, isPrint := es.X.(*ast.PrintExpr); isPrint {
					if _, err := e.evalExpr(es.X, env); err != nil {
						return err
					}
					continue
				}
				v, err := e.evalExpr(es.X, env)
				if err != nil {
					return err
				}
				fmt.Fprintln(e.out, v.String())
				continue
			}
		}
		if _, err := e.execStmt(stmt, env); err != nil {
			return err
		}
	}
	return nil
}

func (e *Evaluator) pushFrame(name string) { e.callStack = append(e.callStack, name) }
func (e *Evaluator) popFrame()             { e.callStack = e.callStack[:len(e.callStack)-1] }

func (e *Evaluator) errorf(format string, args ...any) error {
	return newRuntimeError(e.callStack, format, args...)
}

// execBlock runs stmts in child, returning a non-nil value.ReturnValue
// when a `return` unwound out of the block, so callers that sit between
// the block and the enclosing function (if/while/for/switch bodies) can
// keep propagating it outward.
func (e *Evaluator) execBlock(block *ast.BlockStmt, child *environment.Environment) (value.Value, error) {
	for _, stmt := range block.Stmts {
		v, err := e.execStmt(stmt, child)
		if err != nil {
			return nil, err
		}
		if v != nil {
			return v, nil
		}
	}
	return nil, nil
}

// callFunction invokes fn with args in a fresh child of its closure
// environment. Missing trailing arguments default to Nil.
func (e *Evaluator) callFunction(fn *value.Function, args []value.Value) (value.Value, error) {
	parent, _ := fn.Env.(*environment.Environment)
	callEnv := environment.NewChild(parent)
	bindParams(callEnv, fn.Params, args)

	name := fn.Name
	if name == "" {
		name = "anonymous"
	}
	e.pushFrame(name)
	defer e.popFrame()

	result, err := e.execBlock(fn.Body, callEnv)
	if err != nil {
		return nil, err
	}
	if rv, ok := result.(value.ReturnValue); ok {
		return rv.Value, nil
	}
	return value.Nil, nil
}

// callMethod invokes a class method with `this` bound to instance.
func (e *Evaluator) callMethod(instance *value.ClassInstance, fn *value.Function, args []value.Value) (value.Value, error) {
	parent, _ := fn.Env.(*environment.Environment)
	callEnv := environment.NewChild(parent)
	callEnv.SetCurrentClass(instance)
	bindParams(callEnv, fn.Params, args)

	e.pushFrame(instance.ClassName + "." + fn.Name)
	defer e.popFrame()

	result, err := e.execBlock(fn.Body, callEnv)
	if err != nil {
		return nil, err
	}
	if rv, ok := result.(value.ReturnValue); ok {
		return rv.Value, nil
	}
	return value.Nil, nil
}

func bindParams(env *environment.Environment, params []string, args []value.Value) {
	for i, p := range params {
		v := value.Value(value.Nil)
		if i < len(args) {
			v = args[i]
		}
		env.SetStore(p, v)
	}
}

func (e *Evaluator) evalArgs(exprs []ast.Expr, env *environment.Environment) ([]value.Value, error) {
	args := make([]value.Value, len(exprs))
	for i, a := range exprs {
		v, err := e.evalExpr(a, env)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}
