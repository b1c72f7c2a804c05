// Package machine implements the stack-based virtual machine (C13) that
// executes a lang/compiler Bytecode program: a value stack, a globals
// array, a frame stack modeled on the closure/frame split from the
// "Writing a Compiler in Go" Monkey VM (the same lineage the symbol
// table's Global/Local/Free/Builtin/Function scopes and the Closure(i,
// num_free) opcode come from), and the native builtins registry.
package machine

import (
	"fmt"
	"io"
	"math"

	"github.com/loxcraft/loxcraft/lang/builtins"
	"github.com/loxcraft/loxcraft/lang/compiler"
	"github.com/loxcraft/loxcraft/lang/value"
)

// defaultMaxFrames is the call-stack depth New uses when called without a
// configured limit (tests, and any embedder that doesn't care to tune it).
const defaultMaxFrames = 1024

// Machine is a single bytecode execution. It is not safe for concurrent
// use; the core is single-threaded by design.
type Machine struct {
	constants    []value.Value
	instructions []compiler.Instruction

	globals []value.Value

	stack []value.Value
	sp    int

	frames      []*frame
	framesIndex int
	framePool   *framePool

	builtins *builtins.Registry
	out      io.Writer
}

// New returns a Machine ready to Run bc, with call-stack depth and frame
// pool capacity defaulting to defaultMaxFrames. globalsSize and stackSize
// follow internal/config's LOXCRAFT_GLOBALS_SIZE / LOXCRAFT_STACK_SIZE,
// defaulting generously (≥ 65536 for globals, per spec.md §4.9).
func New(bc *compiler.Bytecode, reg *builtins.Registry, out io.Writer, globalsSize, stackSize int) *Machine {
	return NewWithLimits(bc, reg, out, globalsSize, stackSize, defaultMaxFrames, defaultMaxFrames)
}

// NewWithLimits is New with the call-stack depth (LOXCRAFT_MAX_CALL_DEPTH)
// and frame pool capacity (LOXCRAFT_FRAME_POOL_SIZE) also configurable,
// the way cmd/loxcraft wires a loaded internal/config.Config through.
func NewWithLimits(bc *compiler.Bytecode, reg *builtins.Registry, out io.Writer, globalsSize, stackSize, maxCallDepth, framePoolSize int) *Machine {
	main := &value.Closure{
		Fn: &value.CompiledFunction{Name: "<main>", StartIP: bc.EntryPoint},
	}
	m := &Machine{
		constants:    bc.Constants,
		instructions: bc.Instructions,
		globals:      make([]value.Value, globalsSize),
		stack:        make([]value.Value, stackSize),
		frames:       make([]*frame, maxCallDepth),
		framePool:    newFramePool(framePoolSize),
		builtins:     reg,
		out:          out,
	}
	m.frames[0] = &frame{cl: main, ip: main.Fn.StartIP, basePointer: 0}
	m.framesIndex = 1
	return m
}

// Global returns the current value of global slot i, used by tests to
// inspect the outcome of a run without re-exposing the whole stack.
func (m *Machine) Global(i int) value.Value {
	if i < 0 || i >= len(m.globals) {
		return value.Nil
	}
	return m.globals[i]
}

func (m *Machine) currentFrame() *frame { return m.frames[m.framesIndex-1] }

func (m *Machine) pushFrame(f *frame) error {
	if m.framesIndex >= len(m.frames) {
		return panicf("call stack exceeded depth %d", len(m.frames))
	}
	m.frames[m.framesIndex] = f
	m.framesIndex++
	return nil
}

func (m *Machine) popFrame() *frame {
	m.framesIndex--
	f := m.frames[m.framesIndex]
	m.frames[m.framesIndex] = nil
	m.framePool.put(f)
	return f
}

func (m *Machine) push(v value.Value) error {
	if m.sp >= len(m.stack) {
		return panicf("stack overflow")
	}
	m.stack[m.sp] = v
	m.sp++
	return nil
}

func (m *Machine) pop() value.Value {
	m.sp--
	v := m.stack[m.sp]
	m.stack[m.sp] = nil
	return v
}

func (m *Machine) top() value.Value { return m.stack[m.sp-1] }

// Run executes the program to completion. A user Exit(code) or a failed
// Assert without a patched target surfaces as *ExitError; any other
// unrecoverable condition surfaces as *PanicError.
func (m *Machine) Run() error {
	for {
		f := m.currentFrame()
		if f.ip >= len(m.instructions) {
			return nil
		}
		if err := m.step(f); err != nil {
			return err
		}
	}
}

// step executes the single instruction at f.ip (the current frame), which
// the caller has already confirmed is in range.
func (m *Machine) step(f *frame) error {
	insn := m.instructions[f.ip]
	f.ip++

	switch insn.Op {
	case compiler.LoadConstant:
		if err := m.push(m.constants[insn.Operand]); err != nil {
			return err
		}

	case compiler.Pop:
		m.pop()

	case compiler.Dup:
		if err := m.push(m.top()); err != nil {
			return err
		}

	case compiler.Dup2:
		a, b := m.stack[m.sp-2], m.stack[m.sp-1]
		if err := m.push(a); err != nil {
			return err
		}
		if err := m.push(b); err != nil {
			return err
		}

	case compiler.Add, compiler.Minus, compiler.Multiply, compiler.Divide, compiler.Mod:
		if err := m.execArith(insn.Op); err != nil {
			return err
		}

	case compiler.LessThan, compiler.GreaterThan, compiler.EqualEqual, compiler.NotEqual:
		if err := m.execCompare(insn.Op); err != nil {
			return err
		}

	case compiler.Negative:
		v := m.pop()
		n, ok := v.(value.Number)
		if !ok {
			return m.push(value.Nil)
		}
		if err := m.push(-n); err != nil {
			return err
		}

	case compiler.Not:
		v := m.pop()
		if err := m.push(value.Boolean(!value.Truthy(v))); err != nil {
			return err
		}

	case compiler.Print:
		n := insn.Operand
		parts := make([]value.Value, n)
		for i := n - 1; i >= 0; i-- {
			parts[i] = m.pop()
		}
		for _, p := range parts {
			fmt.Fprint(m.out, p.String())
		}

	case compiler.GetGlobal:
		if err := m.push(m.globals[insn.Operand]); err != nil {
			return err
		}

	case compiler.SetGlobal:
		m.globals[insn.Operand] = m.pop()

	case compiler.GetLocal:
		if err := m.push(m.stack[f.basePointer+insn.Operand]); err != nil {
			return err
		}

	case compiler.SetLocal:
		m.stack[f.basePointer+insn.Operand] = m.pop()

	case compiler.GetFree:
		if err := m.push(f.cl.Free[insn.Operand]); err != nil {
			return err
		}

	case compiler.GetBuiltin:
		b := m.builtins.GetByIndex(insn.Operand)
		if err := m.push(b); err != nil {
			return err
		}

	case compiler.CurrentClosure:
		if err := m.push(f.cl); err != nil {
			return err
		}

	case compiler.Closure:
		if err := m.execClosure(insn.Operand, insn.Operand2); err != nil {
			return err
		}

	case compiler.Call:
		if err := m.execCall(insn.Operand); err != nil {
			return err
		}

	case compiler.Jump:
		f.ip = insn.Operand

	case compiler.JumpIfFalse:
		if !value.Truthy(m.pop()) {
			f.ip = insn.Operand
		}

	case compiler.ReturnValue:
		rv := m.pop()
		frame := m.popFrame()
		m.sp = frame.basePointer - 1
		if err := m.push(rv); err != nil {
			return err
		}

	case compiler.Return:
		frame := m.popFrame()
		m.sp = frame.basePointer - 1
		if err := m.push(value.Nil); err != nil {
			return err
		}

	case compiler.Assert:
		if !value.Truthy(m.pop()) {
			return nil // fall through into the compiler's Print+Exit failure path
		}
		f.ip = insn.Operand

	case compiler.Exit:
		return &ExitError{Code: insn.Operand}

	case compiler.MakeArray:
		n := insn.Operand
		elems := make([]value.Value, n)
		for i := n - 1; i >= 0; i-- {
			elems[i] = m.pop()
		}
		if err := m.push(value.NewArray(elems)); err != nil {
			return err
		}

	case compiler.MakeHash:
		n := insn.Operand
		h := value.NewHash(n)
		pairs := make([][2]value.Value, n)
		for i := n - 1; i >= 0; i-- {
			v := m.pop()
			k := m.pop()
			pairs[i] = [2]value.Value{k, v}
		}
		for _, p := range pairs {
			h.Set(p[0], p[1])
		}
		if err := m.push(h); err != nil {
			return err
		}

	case compiler.Index:
		key := m.pop()
		container := m.pop()
		v, err := indexInto(container, key)
		if err != nil {
			return err
		}
		if err := m.push(v); err != nil {
			return err
		}

	case compiler.SetIndex:
		v := m.pop()
		key := m.pop()
		container := m.pop()
		setIndex(container, key, v)

	case compiler.NewInstance:
		if err := m.execNewInstance(insn.Operand); err != nil {
			return err
		}

	case compiler.GetField:
		inst, err := m.popInstance()
		if err != nil {
			return err
		}
		name := string(m.constants[insn.Operand].(value.String))
		if err := m.push(inst.GetField(name)); err != nil {
			return err
		}

	case compiler.SetField:
		v := m.pop()
		inst, err := m.popInstance()
		if err != nil {
			return err
		}
		name := string(m.constants[insn.Operand].(value.String))
		inst.SetField(name, v)

	case compiler.GetMethod:
		inst, err := m.popInstance()
		if err != nil {
			return err
		}
		name := string(m.constants[insn.Operand].(value.String))
		methodVal, ok := inst.GetMethod(name)
		if !ok {
			return panicf("undefined method %q on %s", name, inst.ClassName)
		}
		fn, ok := methodVal.(*value.CompiledFunction)
		if !ok {
			return panicf("method %q on %s is not compiled", name, inst.ClassName)
		}
		if err := m.push(&value.BoundMethod{Instance: inst, Fn: fn}); err != nil {
			return err
		}

	default:
		return panicf("unimplemented opcode %s", insn.Op)
	}
	return nil
}

func (m *Machine) popInstance() (*value.ClassInstance, error) {
	v := m.pop()
	inst, ok := v.(*value.ClassInstance)
	if !ok {
		return nil, panicf("expected instance, got %s", v.Type())
	}
	return inst, nil
}

func (m *Machine) execArith(op compiler.Opcode) error {
	right := m.pop()
	left := m.pop()
	ln, lok := left.(value.Number)
	rn, rok := right.(value.Number)
	if !lok || !rok {
		return m.push(value.Nil)
	}
	var result value.Number
	switch op {
	case compiler.Add:
		result = ln + rn
	case compiler.Minus:
		result = ln - rn
	case compiler.Multiply:
		result = ln * rn
	case compiler.Divide:
		result = ln / rn
	case compiler.Mod:
		result = value.Number(math.Mod(float64(ln), float64(rn)))
	}
	return m.push(result)
}

func (m *Machine) execCompare(op compiler.Opcode) error {
	right := m.pop()
	left := m.pop()

	if op == compiler.EqualEqual {
		return m.push(value.Boolean(equalsStrict(left, right)))
	}
	if op == compiler.NotEqual {
		return m.push(value.Boolean(!equalsStrict(left, right)))
	}

	ln, lok := left.(value.Number)
	rn, rok := right.(value.Number)
	if !lok || !rok {
		return m.push(value.Boolean(false))
	}
	switch op {
	case compiler.LessThan:
		return m.push(value.Boolean(ln < rn))
	case compiler.GreaterThan:
		return m.push(value.Boolean(ln > rn))
	default:
		return panicf("unreachable comparison opcode %s", op)
	}
}

// equalsStrict mirrors the evaluator's equalsRule: structural equality
// within matching Number/Boolean/String/Nil kinds, false across mismatched
// kinds. Kept as an independent copy rather than importing lang/evaluator,
// which would create a machine<->evaluator dependency neither needs.
func equalsStrict(a, b value.Value) bool {
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

func indexInto(container, key value.Value) (value.Value, error) {
	switch c := container.(type) {
	case *value.Array:
		i, ok := asInt(key)
		if !ok {
			return value.Nil, nil
		}
		return c.Get(i), nil
	case *value.Hash:
		v, ok := c.Get(key)
		if !ok {
			return value.Nil, nil
		}
		return v, nil
	case value.String:
		i, ok := asInt(key)
		if !ok || i < 0 || i >= len(c) {
			return value.Nil, nil
		}
		return value.String(c[i]), nil
	default:
		return value.Nil, nil
	}
}

func setIndex(container, key, v value.Value) {
	switch c := container.(type) {
	case *value.Array:
		if i, ok := asInt(key); ok {
			c.Set(i, v)
		}
	case *value.Hash:
		c.Set(key, v)
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

// execClosure pops numFree values as the free-variable tuple, pairs them
// with the CompiledFunction constant at constIdx, and pushes the resulting
// Closure value (it does not call it — Call does that).
func (m *Machine) execClosure(constIdx, numFree int) error {
	fn, ok := m.constants[constIdx].(*value.CompiledFunction)
	if !ok {
		return panicf("constant %d is not a compiled function", constIdx)
	}
	free := make([]value.Value, numFree)
	for i := numFree - 1; i >= 0; i-- {
		free[i] = m.pop()
	}
	return m.push(&value.Closure{Fn: fn, Free: free})
}

// execCall pops numArgs arguments and the callee beneath them, then
// dispatches on the callee's kind: a Builtin is invoked directly and its
// result pushed; a Closure or BoundMethod pushes a new frame whose base
// pointer marks where its parameters begin on the stack.
func (m *Machine) execCall(numArgs int) error {
	calleeIdx := m.sp - 1 - numArgs
	callee := m.stack[calleeIdx]

	switch fn := callee.(type) {
	case *value.Builtin:
		args := append([]value.Value(nil), m.stack[calleeIdx+1:m.sp]...)
		result, err := m.builtins.Call(indexOfBuiltin(m.builtins, fn), args)
		if err != nil {
			return panicf("%s", err.Error())
		}
		m.sp = calleeIdx
		return m.push(result)

	case *value.Closure:
		if numArgs != fn.Fn.NumParameters {
			return panicf("%s: expected %d argument(s), got %d", fn.Fn.Name, fn.Fn.NumParameters, numArgs)
		}
		basePointer := calleeIdx + 1
		m.sp = basePointer + fn.Fn.NumLocals
		return m.pushFrame(m.framePool.get(fn, basePointer))

	case *value.BoundMethod:
		if numArgs != fn.Fn.NumParameters-1 {
			return panicf("%s: expected %d argument(s), got %d", fn.Fn.Name, fn.Fn.NumParameters-1, numArgs)
		}
		// Shift the args up one slot to make room for `this` as local 0,
		// ahead of them, matching every compiled method's parameter
		// layout (this, then the declared parameters).
		basePointer := calleeIdx + 1
		for i := m.sp - 1; i >= calleeIdx+1; i-- {
			m.stack[i+1] = m.stack[i]
		}
		m.stack[basePointer] = fn.Instance
		closure := &value.Closure{Fn: fn.Fn}
		m.sp = basePointer + fn.Fn.NumLocals
		return m.pushFrame(m.framePool.get(closure, basePointer))

	default:
		return panicf("not callable: %s", callee.Type())
	}
}

func (m *Machine) execNewInstance(numArgs int) error {
	calleeIdx := m.sp - 1 - numArgs
	classVal, ok := m.stack[calleeIdx].(*value.CompiledClass)
	if !ok {
		return panicf("not a class: %s", m.stack[calleeIdx].Type())
	}
	args := append([]value.Value(nil), m.stack[calleeIdx+1:m.sp]...)
	m.sp = calleeIdx

	inst := value.NewCompiledClassInstance(classVal)

	if err := m.runInline(&value.BoundMethod{Instance: inst, Fn: classVal.FieldInitFn}, nil); err != nil {
		return err
	}
	if initFn, ok := classVal.Methods["init"]; ok {
		if err := m.runInline(&value.BoundMethod{Instance: inst, Fn: initFn}, args); err != nil {
			return err
		}
	}
	return m.push(inst)
}

// runInline calls a BoundMethod to completion (used for the synthetic
// field initializer and the constructor during NewInstance) by pushing
// its frame and resuming the ordinary dispatch loop until that frame
// returns, discarding the produced value.
func (m *Machine) runInline(bm *value.BoundMethod, args []value.Value) error {
	if err := m.push(bm); err != nil {
		return err
	}
	for _, a := range args {
		if err := m.push(a); err != nil {
			return err
		}
	}
	targetDepth := m.framesIndex
	if err := m.execCall(len(args)); err != nil {
		return err
	}
	for m.framesIndex > targetDepth {
		f := m.currentFrame()
		if f.ip >= len(m.instructions) {
			return panicf("compiled function ran off the end of the program")
		}
		if err := m.step(f); err != nil {
			return err
		}
	}
	m.pop() // discard the call's return value
	return nil
}

func indexOfBuiltin(reg *builtins.Registry, b *value.Builtin) int {
	i, _ := reg.GetIndex(b.Name)
	return i
}
