package compiler

import (
	"github.com/loxcraft/loxcraft/lang/ast"
	"github.com/loxcraft/loxcraft/lang/value"
)

// compileExpr lowers expr so it leaves exactly one value on the stack.
func (c *Compiler) compileExpr(expr ast.Expr) error {
	switch x := expr.(type) {
	case *ast.IdentExpr:
		sym, ok := c.table().Resolve(x.Name)
		if !ok {
			return c.errorf("undefined variable %q", x.Name)
		}
		c.resolveLoad(sym)
		return nil

	case *ast.NumberLit:
		c.emit(LoadConstant, c.addConstant(value.Number(x.Value)))
		return nil

	case *ast.StringLit:
		c.emit(LoadConstant, c.addConstant(value.String(x.Value)))
		return nil

	case *ast.BoolLit:
		c.emit(LoadConstant, c.addConstant(value.Boolean(x.Value)))
		return nil

	case *ast.NilLit:
		c.emit(LoadConstant, c.addConstant(value.Nil))
		return nil

	case *ast.ArrayLit:
		for _, e := range x.Elems {
			if err := c.compileExpr(e); err != nil {
				return err
			}
		}
		c.emit(MakeArray, len(x.Elems))
		return nil

	case *ast.HashLit:
		for _, entry := range x.Entries {
			if err := c.compileExpr(entry.Key); err != nil {
				return err
			}
			if err := c.compileExpr(entry.Value); err != nil {
				return err
			}
		}
		c.emit(MakeHash, len(x.Entries))
		return nil

	case *ast.GroupingExpr:
		return c.compileExpr(x.X)

	case *ast.PrefixExpr:
		if err := c.compileExpr(x.Right); err != nil {
			return err
		}
		switch x.Op {
		case "-":
			c.emit(Negative, 0)
		case "!":
			c.emit(Not, 0)
		case "+":
			// unary plus is a number-identity check at runtime; no opcode
			// needed beyond the operand already on the stack.
		default:
			return c.errorf("compiler: unknown prefix operator %q", x.Op)
		}
		return nil

	case *ast.InfixExpr:
		return c.compileInfixExpr(x)

	case *ast.PrintExpr:
		for _, a := range x.Args {
			if err := c.compileExpr(a); err != nil {
				return err
			}
		}
		c.emit(Print, len(x.Args))
		c.emit(LoadConstant, c.addConstant(value.Nil))
		return nil

	case *ast.IndexExpr:
		if err := c.compileExpr(x.Target); err != nil {
			return err
		}
		if err := c.compileExpr(x.Index); err != nil {
			return err
		}
		c.emit(Index, 0)
		return nil

	case *ast.IfExpr:
		return c.compileIfExpr(x)

	case *ast.FunctionExpr:
		return c.compileFunctionLiteral("", x.Params, x.Body)

	case *ast.CallExpr:
		if err := c.compileExpr(x.Callee); err != nil {
			return err
		}
		for _, a := range x.Args {
			if err := c.compileExpr(a); err != nil {
				return err
			}
		}
		c.emit(Call, len(x.Args))
		return nil

	case *ast.ClassInitExpr:
		return c.compileClassInit(x)

	case *ast.ClassCallExpr:
		if err := c.compileExpr(x.Receiver); err != nil {
			return err
		}
		c.emit(GetMethod, c.addConstant(value.String(x.Method)))
		for _, a := range x.Args {
			if err := c.compileExpr(a); err != nil {
				return err
			}
		}
		c.emit(Call, len(x.Args))
		return nil

	case *ast.ClassGetExpr:
		if err := c.compileExpr(x.Receiver); err != nil {
			return err
		}
		c.emit(GetField, c.addConstant(value.String(x.Field)))
		return nil

	case *ast.ThisExpr:
		c.emit(GetLocal, 0)
		c.emit(GetField, c.addConstant(value.String(x.Field)))
		return nil

	case *ast.ThisCallExpr:
		c.emit(GetLocal, 0)
		c.emit(GetMethod, c.addConstant(value.String(x.Method)))
		for _, a := range x.Args {
			if err := c.compileExpr(a); err != nil {
				return err
			}
		}
		c.emit(Call, len(x.Args))
		return nil

	default:
		return c.errorf("compiler: unhandled expression %T", expr)
	}
}

func (c *Compiler) compileClassInit(x *ast.ClassInitExpr) error {
	sym, ok := c.table().Resolve(x.ClassName)
	if !ok {
		return c.errorf("undefined class %q", x.ClassName)
	}
	c.resolveLoad(sym)
	for _, a := range x.Args {
		if err := c.compileExpr(a); err != nil {
			return err
		}
	}
	c.emit(NewInstance, len(x.Args))
	return nil
}

func (c *Compiler) compileInfixExpr(x *ast.InfixExpr) error {
	// && and || short-circuit: the right side only runs when needed.
	switch x.Op {
	case "&&":
		if err := c.compileExpr(x.Left); err != nil {
			return err
		}
		jumpFalse := c.emit(JumpIfFalse, -1)
		if err := c.compileExpr(x.Right); err != nil {
			return err
		}
		jumpEnd := c.emit(Jump, -1)
		c.at(jumpFalse).Operand = c.pos()
		c.emit(LoadConstant, c.addConstant(value.Boolean(false)))
		c.at(jumpEnd).Operand = c.pos()
		return nil
	case "||":
		if err := c.compileExpr(x.Left); err != nil {
			return err
		}
		jumpFalse := c.emit(JumpIfFalse, -1)
		c.emit(LoadConstant, c.addConstant(value.Boolean(true)))
		jumpEnd := c.emit(Jump, -1)
		c.at(jumpFalse).Operand = c.pos()
		if err := c.compileExpr(x.Right); err != nil {
			return err
		}
		c.at(jumpEnd).Operand = c.pos()
		return nil
	}

	if err := c.compileExpr(x.Left); err != nil {
		return err
	}
	if err := c.compileExpr(x.Right); err != nil {
		return err
	}
	switch x.Op {
	case "+":
		c.emit(Add, 0)
	case "-":
		c.emit(Minus, 0)
	case "*":
		c.emit(Multiply, 0)
	case "/":
		c.emit(Divide, 0)
	case "%":
		c.emit(Mod, 0)
	case "<":
		c.emit(LessThan, 0)
	case ">":
		c.emit(GreaterThan, 0)
	case "<=":
		c.emit(GreaterThan, 0)
		c.emit(Not, 0)
	case ">=":
		c.emit(LessThan, 0)
		c.emit(Not, 0)
	case "==":
		c.emit(EqualEqual, 0)
	case "!=":
		c.emit(NotEqual, 0)
	default:
		return c.errorf("compiler: unknown infix operator %q", x.Op)
	}
	return nil
}

func (c *Compiler) compileIfExpr(x *ast.IfExpr) error {
	var endJumps []int

	if err := c.compileExpr(x.Cond); err != nil {
		return err
	}
	nextJump := c.emit(JumpIfFalse, -1)
	if err := c.compileStmtList(x.Then.Stmts); err != nil {
		return err
	}
	c.emit(LoadConstant, c.addConstant(value.Nil))
	endJumps = append(endJumps, c.emit(Jump, -1))
	c.at(nextJump).Operand = c.pos()

	for _, ei := range x.ElseIfs {
		if err := c.compileExpr(ei.Cond); err != nil {
			return err
		}
		nextJump = c.emit(JumpIfFalse, -1)
		if err := c.compileStmtList(ei.Then.Stmts); err != nil {
			return err
		}
		c.emit(LoadConstant, c.addConstant(value.Nil))
		endJumps = append(endJumps, c.emit(Jump, -1))
		c.at(nextJump).Operand = c.pos()
	}

	if x.Else != nil {
		if err := c.compileStmtList(x.Else.Stmts); err != nil {
			return err
		}
	}
	c.emit(LoadConstant, c.addConstant(value.Nil))

	for _, j := range endJumps {
		c.at(j).Operand = c.pos()
	}
	return nil
}
