package compiler

import "github.com/loxcraft/loxcraft/lang/value"

// Instruction is one decoded slot of the flat instruction vector. Operand
// is the primary numeric operand (constant/global/local/free/builtin
// index, jump target, call argument count, exit code); Operand2 is used
// only by Closure, which needs both a constant index and a free-variable
// count.
type Instruction struct {
	Op       Opcode
	Operand  int
	Operand2 int
}

// Bytecode is the compiler's output: a single flat instruction vector
// (function bodies are appended as they finish compiling, each recording
// its own start offset in a *value.CompiledFunction constant) plus the
// constant pool LoadConstant indexes into. EntryPoint is where execution
// of the top-level program begins, since function bodies compiled while
// walking the top level may have been appended ahead of it.
type Bytecode struct {
	Instructions []Instruction
	Constants    []value.Value
	EntryPoint   int

	// GlobalNames lists every name bound at global scope, sorted, for the
	// `dump` entry point's symbol table listing.
	GlobalNames []string
}
