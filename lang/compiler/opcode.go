// Package compiler lowers an AST into a flat instruction vector plus a
// constant pool, using lang/symtable to resolve Global/Local/Free/Builtin/
// Function references, in the teacher's compile-to-bytecode style.
package compiler

import "fmt"

// Opcode is a tagged instruction in the VM's linear program.
type Opcode uint8

const ( //nolint:revive
	LoadConstant Opcode = iota
	Pop
	Dup  // x -> x x, used to avoid re-evaluating a compound assignment's target
	Dup2 // x y -> x y x y, same for two-operand (container, key) targets

	Add
	Minus
	Multiply
	Divide
	Mod

	LessThan
	GreaterThan
	EqualEqual
	NotEqual

	Negative
	Not

	Print

	GetGlobal
	SetGlobal
	GetLocal
	SetLocal
	GetFree
	GetBuiltin
	CurrentClosure

	Call
	Closure

	Jump
	JumpIfFalse

	ReturnValue
	Return

	Assert
	Exit

	MakeArray
	MakeHash
	Index
	SetIndex

	NewInstance
	GetField
	SetField
	GetMethod
)

var opcodeNames = [...]string{
	LoadConstant:   "LoadConstant",
	Pop:            "Pop",
	Dup:            "Dup",
	Dup2:           "Dup2",
	Add:            "Add",
	Minus:          "Minus",
	Multiply:       "Multiply",
	Divide:         "Divide",
	Mod:            "Mod",
	LessThan:       "LessThan",
	GreaterThan:    "GreaterThan",
	EqualEqual:     "EqualEqual",
	NotEqual:       "NotEqual",
	Negative:       "Negative",
	Not:            "Not",
	Print:          "Print",
	GetGlobal:      "GetGlobal",
	SetGlobal:      "SetGlobal",
	GetLocal:       "GetLocal",
	SetLocal:       "SetLocal",
	GetFree:        "GetFree",
	GetBuiltin:     "GetBuiltin",
	CurrentClosure: "CurrentClosure",
	Call:           "Call",
	Closure:        "Closure",
	Jump:           "Jump",
	JumpIfFalse:    "JumpIfFalse",
	ReturnValue:    "ReturnValue",
	Return:         "Return",
	Assert:         "Assert",
	Exit:           "Exit",
	MakeArray:      "MakeArray",
	MakeHash:       "MakeHash",
	Index:          "Index",
	SetIndex:       "SetIndex",
	NewInstance:    "NewInstance",
	GetField:       "GetField",
	SetField:       "SetField",
	GetMethod:      "GetMethod",
}

func (op Opcode) String() string {
	if int(op) < len(opcodeNames) && opcodeNames[op] != "" {
		return opcodeNames[op]
	}
	return fmt.Sprintf("OPCODE(%d)", op)
}

// hasOperand reports whether op is followed by an int operand in the
// instruction stream. Closure is the one opcode that takes two.
func hasOperand(op Opcode) bool {
	switch op {
	case LoadConstant, GetGlobal, SetGlobal, GetLocal, SetLocal, GetFree,
		GetBuiltin, Call, Jump, JumpIfFalse, Assert, Exit, Print,
		MakeArray, MakeHash, NewInstance:
		return true
	case Closure:
		return true // two operands: constant index, num_free; see Instruction
	default:
		return false
	}
}
