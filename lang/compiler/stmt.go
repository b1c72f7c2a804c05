package compiler

import (
	"github.com/loxcraft/loxcraft/lang/ast"
	"github.com/loxcraft/loxcraft/lang/symtable"
	"github.com/loxcraft/loxcraft/lang/value"
)

func (c *Compiler) compileStmt(stmt ast.Stmt) error {
	switch s := stmt.(type) {
	case *ast.BlankStmt:
		return nil

	case *ast.VarStmt:
		return c.compileVarStmt(s)

	case *ast.ExprStmt:
		// A print statement leaves nothing on the stack, so it needs no
		// placeholder result and no Pop.
		if pe, ok := s.X.(*ast.PrintExpr); ok {
			for _, a := range pe.Args {
				if err := c.compileExpr(a); err != nil {
					return err
				}
			}
			c.emit(Print, len(pe.Args))
			return nil
		}
		if err := c.compileExpr(s.X); err != nil {
			return err
		}
		c.emit(Pop, 0)
		return nil

	case *ast.BlockStmt:
		return c.compileStmtList(s.Stmts)

	case *ast.ReturnStmt:
		if s.Value != nil {
			if err := c.compileExpr(s.Value); err != nil {
				return err
			}
		} else {
			c.emit(LoadConstant, c.addConstant(value.Nil))
		}
		c.emit(ReturnValue, 0)
		return nil

	case *ast.FunctionStmt:
		return c.compileFunctionStmt(s)

	case *ast.WhileStmt:
		return c.compileWhileStmt(s)

	case *ast.ForStmt:
		return c.compileForStmt(s)

	case *ast.ForInStmt:
		return c.compileForInStmt(s)

	case *ast.SwitchStmt:
		return c.compileSwitchStmt(s)

	case *ast.ClassStmt:
		return c.compileClassStmt(s)

	case *ast.ImportStmt:
		// Already spliced into the program by lang/importer before
		// compilation starts.
		return nil

	case *ast.AssertStmt:
		return c.compileAssertStmt(s)

	case *ast.AssignStmt:
		return c.compileAssignStmt(s)

	default:
		return c.errorf("compiler: unhandled statement %T", stmt)
	}
}

func (c *Compiler) compileStmtList(stmts []ast.Stmt) error {
	for _, s := range stmts {
		if err := c.compileStmt(s); err != nil {
			return err
		}
	}
	return nil
}

// compileVarStmt allocates the next slot in the current function's symbol
// table (Global at the top level, Local inside a function) and stores the
// initializer's value into it.
func (c *Compiler) compileVarStmt(s *ast.VarStmt) error {
	if s.Init != nil {
		if err := c.compileExpr(s.Init); err != nil {
			return err
		}
	} else {
		c.emit(LoadConstant, c.addConstant(value.Nil))
	}
	sym := c.table().Define(s.Name)
	return c.resolveStore(sym)
}

// compileFunctionStmt defines the function's name in the enclosing scope
// before compiling its body, so a reference to the name from sibling or
// recursive code resolves correctly.
func (c *Compiler) compileFunctionStmt(s *ast.FunctionStmt) error {
	sym := c.table().Define(s.Name)
	if err := c.compileFunctionLiteral(s.Name, s.Params, s.Body); err != nil {
		return err
	}
	return c.resolveStore(sym)
}

// compileFunctionLiteral compiles params/body into an isolated scope and
// leaves a Closure value on the stack.
func (c *Compiler) compileFunctionLiteral(name string, params []string, body *ast.BlockStmt) error {
	fn, freeSymbols, err := c.buildFunction(name, params, body, false)
	if err != nil {
		return err
	}
	constIdx := c.addConstant(fn)
	for _, free := range freeSymbols {
		c.resolveLoad(free)
	}
	c.emit2(Closure, constIdx, len(freeSymbols))
	return nil
}

// compileMethodLiteral compiles a class method, reserving local slot 0 for
// `this` ahead of the declared parameters, and returns the resulting
// CompiledFunction directly (no Closure instruction is emitted: methods
// are invoked through GetMethod/BoundMethod, not loaded as values, so any
// variables the method closes over besides `this` are not captured - a
// known limitation of compiling classes outside the tree-walk evaluator).
func (c *Compiler) compileMethodLiteral(name string, params []string, body *ast.BlockStmt) (*value.CompiledFunction, error) {
	fn, _, err := c.buildFunction(name, params, body, true)
	return fn, err
}

func (c *Compiler) buildFunction(name string, params []string, body *ast.BlockStmt, method bool) (*value.CompiledFunction, []symtable.Symbol, error) {
	c.enterScope()
	if name != "" {
		c.table().DefineFunctionName(name)
	}
	if method {
		c.table().Define("this")
	}
	for _, p := range params {
		c.table().Define(p)
	}
	if err := c.compileStmtList(body.Stmts); err != nil {
		c.leaveScope()
		return nil, nil, err
	}
	if !endsWithReturn(body.Stmts) {
		c.emit(LoadConstant, c.addConstant(value.Nil))
		c.emit(ReturnValue, 0)
	}

	numLocals := c.table().NumDefinitions()
	freeSymbols := append([]symtable.Symbol(nil), c.table().FreeSymbols...)
	startIP, _ := c.leaveScope()

	numParams := len(params)
	if method {
		numParams++
	}
	fn := &value.CompiledFunction{
		Name:          fnDisplayName(name),
		StartIP:       startIP,
		NumLocals:     numLocals,
		NumParameters: numParams,
	}
	return fn, freeSymbols, nil
}

func fnDisplayName(name string) string {
	if name == "" {
		return "anonymous"
	}
	return name
}

func endsWithReturn(stmts []ast.Stmt) bool {
	if len(stmts) == 0 {
		return false
	}
	_, ok := stmts[len(stmts)-1].(*ast.ReturnStmt)
	return ok
}

func (c *Compiler) compileWhileStmt(s *ast.WhileStmt) error {
	loopStart := c.pos()
	if err := c.compileExpr(s.Cond); err != nil {
		return err
	}
	jumpEnd := c.emit(JumpIfFalse, -1)
	if err := c.compileStmtList(s.Body.Stmts); err != nil {
		return err
	}
	c.emit(Jump, loopStart)
	c.at(jumpEnd).Operand = c.pos()
	return nil
}

func (c *Compiler) compileForStmt(s *ast.ForStmt) error {
	if s.Init != nil {
		if err := c.compileStmt(s.Init); err != nil {
			return err
		}
	}
	loopStart := c.pos()
	jumpEnd := -1
	if s.Cond != nil {
		if err := c.compileExpr(s.Cond); err != nil {
			return err
		}
		jumpEnd = c.emit(JumpIfFalse, -1)
	}
	if err := c.compileStmtList(s.Body.Stmts); err != nil {
		return err
	}
	if s.Step != nil {
		if err := c.compileStmt(s.Step); err != nil {
			return err
		}
	}
	c.emit(Jump, loopStart)
	if jumpEnd != -1 {
		c.at(jumpEnd).Operand = c.pos()
	}
	return nil
}

// compileForInStmt lowers to an index-counted while loop over the
// evaluated iterable's `len`, since the VM has no dedicated iterator
// protocol. This targets Array iteration; Hash for-in (key iteration) is
// a tree-walk-evaluator-only feature, a known gap of the bytecode backend.
func (c *Compiler) compileForInStmt(s *ast.ForInStmt) error {
	lenIdx, ok := c.builtins.GetIndex("len")
	if !ok {
		return c.errorf("compiler: builtin %q not registered", "len")
	}

	if err := c.compileExpr(s.Iter); err != nil {
		return err
	}
	iterSym := c.table().Define(" for-in.iter")
	if err := c.resolveStore(iterSym); err != nil {
		return err
	}

	c.emit(LoadConstant, c.addConstant(value.Number(0)))
	idxSym := c.table().Define(" for-in.idx")
	if err := c.resolveStore(idxSym); err != nil {
		return err
	}

	varSym := c.table().Define(s.VarName)

	loopStart := c.pos()
	c.resolveLoad(idxSym)
	c.emit(GetBuiltin, lenIdx)
	c.resolveLoad(iterSym)
	c.emit(Call, 1)
	c.emit(LessThan, 0)
	jumpEnd := c.emit(JumpIfFalse, -1)

	c.resolveLoad(iterSym)
	c.resolveLoad(idxSym)
	c.emit(Index, 0)
	if err := c.resolveStore(varSym); err != nil {
		return err
	}

	if err := c.compileStmtList(s.Body.Stmts); err != nil {
		return err
	}

	c.resolveLoad(idxSym)
	c.emit(LoadConstant, c.addConstant(value.Number(1)))
	c.emit(Add, 0)
	if err := c.resolveStore(idxSym); err != nil {
		return err
	}
	c.emit(Jump, loopStart)
	c.at(jumpEnd).Operand = c.pos()
	return nil
}

func (c *Compiler) compileSwitchStmt(s *ast.SwitchStmt) error {
	if err := c.compileExpr(s.Tag); err != nil {
		return err
	}
	tagSym := c.table().Define(" switch.tag")
	if err := c.resolveStore(tagSym); err != nil {
		return err
	}

	var endJumps []int
	for _, cc := range s.Cases {
		c.resolveLoad(tagSym)
		if err := c.compileExpr(cc.Value); err != nil {
			return err
		}
		c.emit(EqualEqual, 0)
		nextCase := c.emit(JumpIfFalse, -1)
		if err := c.compileStmtList(cc.Body); err != nil {
			return err
		}
		endJumps = append(endJumps, c.emit(Jump, -1))
		c.at(nextCase).Operand = c.pos()
	}
	if err := c.compileStmtList(s.Default); err != nil {
		return err
	}
	for _, j := range endJumps {
		c.at(j).Operand = c.pos()
	}
	return nil
}

// compileClassStmt synthesizes a field-initializer CompiledFunction (local
// slot 0 is `this`, no declared parameters) and compiles each method with
// `this` bound the same way, then stores a *value.CompiledClass constant
// under the class's name.
func (c *Compiler) compileClassStmt(s *ast.ClassStmt) error {
	sym := c.table().Define(s.Name)

	c.enterScope()
	c.table().Define("this")
	for _, f := range s.Fields {
		c.emit(GetLocal, 0)
		if f.Init != nil {
			if err := c.compileExpr(f.Init); err != nil {
				c.leaveScope()
				return err
			}
		} else {
			c.emit(LoadConstant, c.addConstant(value.Nil))
		}
		c.emit(SetField, c.addConstant(value.String(f.Name)))
	}
	c.emit(LoadConstant, c.addConstant(value.Nil))
	c.emit(ReturnValue, 0)
	fieldNumLocals := c.table().NumDefinitions()
	fieldStartIP, _ := c.leaveScope()
	fieldInitFn := &value.CompiledFunction{
		Name:          s.Name + ".<fields>",
		StartIP:       fieldStartIP,
		NumLocals:     fieldNumLocals,
		NumParameters: 1,
	}

	methods := make(map[string]*value.CompiledFunction, len(s.Methods))
	for _, m := range s.Methods {
		fn, err := c.compileMethodLiteral(s.Name+"."+m.Name, m.Params, m.Body)
		if err != nil {
			return err
		}
		methods[m.Name] = fn
	}

	cls := &value.CompiledClass{Name: s.Name, FieldInitFn: fieldInitFn, Methods: methods}
	c.emit(LoadConstant, c.addConstant(cls))
	return c.resolveStore(sym)
}

// compileAssertStmt emits Assert with a placeholder operand (the jump
// target past the failure path), patched once the optional message and
// Exit(3) have been compiled.
func (c *Compiler) compileAssertStmt(s *ast.AssertStmt) error {
	if err := c.compileExpr(s.Cond); err != nil {
		return err
	}
	assertPos := c.emit(Assert, -1)
	if s.Message != nil {
		if err := c.compileExpr(s.Message); err != nil {
			return err
		}
	} else {
		c.emit(LoadConstant, c.addConstant(value.String("assertion failed")))
	}
	c.emit(Print, 1)
	c.emit(Exit, 3)
	c.at(assertPos).Operand = c.pos()
	return nil
}

func (c *Compiler) compileAssignStmt(s *ast.AssignStmt) error {
	switch target := s.Target.(type) {
	case *ast.IdentExpr:
		return c.compileIdentAssign(target, s.Op, s.Value)
	case *ast.ThisExpr:
		return c.compileThisAssign(target, s.Op, s.Value)
	case *ast.ClassGetExpr:
		return c.compileClassGetAssign(target, s.Op, s.Value)
	case *ast.IndexExpr:
		return c.compileIndexAssign(target, s.Op, s.Value)
	default:
		return c.errorf("compiler: invalid assignment target %T", s.Target)
	}
}

func (c *Compiler) compileIdentAssign(target *ast.IdentExpr, op string, rhs ast.Expr) error {
	sym, ok := c.table().Resolve(target.Name)
	if !ok {
		return c.errorf("undefined variable %q", target.Name)
	}
	if op == "=" {
		if err := c.compileExpr(rhs); err != nil {
			return err
		}
		return c.resolveStore(sym)
	}
	c.resolveLoad(sym)
	if err := c.compileExpr(rhs); err != nil {
		return err
	}
	c.emit(compoundOp(op), 0)
	return c.resolveStore(sym)
}

func (c *Compiler) compileThisAssign(target *ast.ThisExpr, op string, rhs ast.Expr) error {
	nameIdx := c.addConstant(value.String(target.Field))
	c.emit(GetLocal, 0)
	if op == "=" {
		if err := c.compileExpr(rhs); err != nil {
			return err
		}
		c.emit(SetField, nameIdx)
		return nil
	}
	c.emit(Dup, 0)
	c.emit(GetField, nameIdx)
	if err := c.compileExpr(rhs); err != nil {
		return err
	}
	c.emit(compoundOp(op), 0)
	c.emit(SetField, nameIdx)
	return nil
}

func (c *Compiler) compileClassGetAssign(target *ast.ClassGetExpr, op string, rhs ast.Expr) error {
	nameIdx := c.addConstant(value.String(target.Field))
	if err := c.compileExpr(target.Receiver); err != nil {
		return err
	}
	if op == "=" {
		if err := c.compileExpr(rhs); err != nil {
			return err
		}
		c.emit(SetField, nameIdx)
		return nil
	}
	c.emit(Dup, 0)
	c.emit(GetField, nameIdx)
	if err := c.compileExpr(rhs); err != nil {
		return err
	}
	c.emit(compoundOp(op), 0)
	c.emit(SetField, nameIdx)
	return nil
}

func (c *Compiler) compileIndexAssign(target *ast.IndexExpr, op string, rhs ast.Expr) error {
	if err := c.compileExpr(target.Target); err != nil {
		return err
	}
	if err := c.compileExpr(target.Index); err != nil {
		return err
	}
	if op == "=" {
		if err := c.compileExpr(rhs); err != nil {
			return err
		}
		c.emit(SetIndex, 0)
		return nil
	}
	c.emit(Dup2, 0)
	c.emit(Index, 0)
	if err := c.compileExpr(rhs); err != nil {
		return err
	}
	c.emit(compoundOp(op), 0)
	c.emit(SetIndex, 0)
	return nil
}

// compoundOp maps a "+=" style operator to the arithmetic opcode applied
// between the current value and the right-hand side.
func compoundOp(op string) Opcode {
	switch op {
	case "+=":
		return Add
	case "-=":
		return Minus
	case "*=":
		return Multiply
	case "/=":
		return Divide
	case "%=":
		return Mod
	default:
		return Add
	}
}
