package value

import (
	"fmt"

	"github.com/loxcraft/loxcraft/lang/ast"
)

// ReturnValue wraps a value being unwound out of a function body by the
// tree-walk evaluator; it is never observed by user code.
type ReturnValue struct {
	Value Value
}

func (r ReturnValue) String() string { return r.Value.String() }
func (ReturnValue) Type() string     { return "return" }

// BuiltinFunc is the native implementation of a Builtin.
type BuiltinFunc func(args []Value) (Value, error)

// Builtin is a native function. Arity -1 means variadic.
type Builtin struct {
	Name  string
	Arity int
	Fn    BuiltinFunc
}

func (b *Builtin) String() string { return fmt.Sprintf("<builtin %s>", b.Name) }
func (*Builtin) Type() string     { return "builtin" }

// Function is a user-defined function or method, closing over the
// environment in which it was declared. Env is typed `any` rather than
// *environment.Environment to avoid a value<->environment import cycle; the
// evaluator is the only code that type-asserts it back.
type Function struct {
	Name   string
	Params []string
	Body   *ast.BlockStmt
	Env    any
}

func (f *Function) String() string {
	name := f.Name
	if name == "" {
		name = "anonymous"
	}
	return fmt.Sprintf("<function %s>", name)
}
func (*Function) Type() string { return "function" }

// Class is a class declaration: field initializers plus named methods.
// Env is the environment the class was declared in (typed `any` for the
// same reason as Function.Env), used to evaluate field initializers and
// as the closure environment for methods with no more specific binding.
type Class struct {
	Name    string
	Fields  []FieldInit
	Methods map[string]*Function
	Env     any
}

// FieldInit is one `var name = expr;` member of a class body.
type FieldInit struct {
	Name string
	Init ast.Expr
}

func (c *Class) String() string { return fmt.Sprintf("<class %s>", c.Name) }
func (*Class) Type() string     { return "class" }

// ClassInstance is a live object created by `new C(...)`. Fields and
// Methods are independently mutable reference cells so that `this`
// mutates the same instance observed by the caller, even across nested
// method calls.
type ClassInstance struct {
	ClassName string
	Fields    *Cell[map[string]Value]
	Methods   *Cell[map[string]Value]
}

// NewClassInstance allocates an instance of class c with its field
// initializers not yet evaluated (the caller fills Fields).
func NewClassInstance(c *Class) *ClassInstance {
	methods := make(map[string]Value, len(c.Methods))
	for name, fn := range c.Methods {
		methods[name] = fn
	}
	return &ClassInstance{
		ClassName: c.Name,
		Fields:    NewCell(make(map[string]Value)),
		Methods:   NewCell(methods),
	}
}

func (ci *ClassInstance) String() string { return fmt.Sprintf("<instance %s>", ci.ClassName) }
func (*ClassInstance) Type() string      { return "instance" }

// GetField reads a field, defaulting to Nil when absent.
func (ci *ClassInstance) GetField(name string) Value {
	if v, ok := ci.Fields.Get()[name]; ok {
		return v
	}
	return Nil
}

// SetField writes a field through the shared Fields cell.
func (ci *ClassInstance) SetField(name string, v Value) {
	ci.Fields.Get()[name] = v
}

// GetMethod looks up a method by name.
func (ci *ClassInstance) GetMethod(name string) (Value, bool) {
	v, ok := ci.Methods.Get()[name]
	return v, ok
}

// CompiledFunction is the bytecode-compiler's output for one function body:
// a contiguous range of instructions in the owning Bytecode's flat
// instruction vector.
type CompiledFunction struct {
	Name          string
	StartIP       int
	NumLocals     int
	NumParameters int
}

func (cf *CompiledFunction) String() string {
	return fmt.Sprintf("<compiled-function %s>", cf.Name)
}
func (*CompiledFunction) Type() string { return "compiled-function" }

// Closure pairs a CompiledFunction with the free-variable tuple captured at
// the point it was created; this is the VM's callable value.
type Closure struct {
	Fn   *CompiledFunction
	Free []Value
}

func (c *Closure) String() string { return fmt.Sprintf("<closure %s>", c.Fn.Name) }
func (*Closure) Type() string     { return "closure" }

// CompiledClass is the bytecode compiler's counterpart to Class: methods
// (including the synthetic field-initializer run by NewInstance) are
// CompiledFunctions rather than tree-walk Functions, each compiled with
// an implicit `this` bound to local slot 0.
type CompiledClass struct {
	Name        string
	FieldInitFn *CompiledFunction
	Methods     map[string]*CompiledFunction
}

func (cc *CompiledClass) String() string { return fmt.Sprintf("<class %s>", cc.Name) }
func (*CompiledClass) Type() string      { return "class" }

// NewCompiledClassInstance allocates an instance of a bytecode-compiled
// class with its fields not yet populated; the VM runs c.FieldInitFn
// against the new instance immediately after calling this.
func NewCompiledClassInstance(c *CompiledClass) *ClassInstance {
	methods := make(map[string]Value, len(c.Methods))
	for name, fn := range c.Methods {
		methods[name] = fn
	}
	return &ClassInstance{
		ClassName: c.Name,
		Fields:    NewCell(make(map[string]Value)),
		Methods:   NewCell(methods),
	}
}

// BoundMethod pairs a ClassInstance with one of its CompiledFunction
// methods; Call(n) unpacks it by prepending Instance to the call's
// locals, since every compiled method's local 0 is `this`.
type BoundMethod struct {
	Instance *ClassInstance
	Fn       *CompiledFunction
}

func (bm *BoundMethod) String() string {
	return fmt.Sprintf("<bound-method %s.%s>", bm.Instance.ClassName, bm.Fn.Name)
}
func (*BoundMethod) Type() string { return "bound-method" }
