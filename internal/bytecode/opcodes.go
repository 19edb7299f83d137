// Package bytecode implements Atlas's 34-opcode stack ISA: the Chunk
// container (instructions, constant pool, debug-span table) and the
// versioned `.atb` binary wire format.
package bytecode

// Op identifies a single bytecode instruction. Values are grouped by
// category per the original's byte layout so a disassembler dump reads
// in blocks: 0x01-0x0F constants, 0x10-0x1F variables, 0x20-0x2F
// arithmetic, 0x30-0x3F comparison, 0x40-0x4F logic, 0x50-0x5F control
// flow, 0x60-0x6F functions, 0x70-0x7F arrays, 0x80-0x8F stack, 0xFF halt.
type Op byte

const (
	// Constants
	OpConstant Op = 0x01 + iota
	OpNull
	OpTrue
	OpFalse
)

const (
	// Variables
	OpGetLocal Op = 0x10 + iota
	OpSetLocal
	OpGetGlobal
	OpSetGlobal
)

const (
	// Arithmetic
	OpAdd Op = 0x20 + iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpNegate
)

const (
	// Comparison
	OpEqual Op = 0x30 + iota
	OpNotEqual
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual
)

const (
	// Logic
	OpNot Op = 0x40 + iota
	OpAnd
	OpOr
)

const (
	// Control flow
	OpJump Op = 0x50 + iota
	OpJumpIfFalse
	OpLoop
)

const (
	// Functions
	OpCall Op = 0x60 + iota
	OpReturn
)

const (
	// Arrays
	OpArray Op = 0x70 + iota
	OpGetIndex
	OpSetIndex
)

const (
	// Stack
	OpPop Op = 0x80 + iota
	OpDup
)

// OpHalt stops execution; it is the VM's top-level return-to-host marker.
const OpHalt Op = 0xFF

var names = map[Op]string{
	OpConstant: "Constant", OpNull: "Null", OpTrue: "True", OpFalse: "False",
	OpGetLocal: "GetLocal", OpSetLocal: "SetLocal", OpGetGlobal: "GetGlobal", OpSetGlobal: "SetGlobal",
	OpAdd: "Add", OpSub: "Sub", OpMul: "Mul", OpDiv: "Div", OpMod: "Mod", OpNegate: "Negate",
	OpEqual: "Equal", OpNotEqual: "NotEqual", OpLess: "Less", OpLessEqual: "LessEqual",
	OpGreater: "Greater", OpGreaterEqual: "GreaterEqual",
	OpNot: "Not", OpAnd: "And", OpOr: "Or",
	OpJump: "Jump", OpJumpIfFalse: "JumpIfFalse", OpLoop: "Loop",
	OpCall: "Call", OpReturn: "Return",
	OpArray: "Array", OpGetIndex: "GetIndex", OpSetIndex: "SetIndex",
	OpPop: "Pop", OpDup: "Dup",
	OpHalt: "Halt",
}

func (op Op) String() string {
	if s, ok := names[op]; ok {
		return s
	}
	return "Unknown"
}

// operandWidth returns the number of operand bytes following the opcode
// byte itself. Nothing in the module calls it.
func (op Op) operandWidth() int {
	switch op {
	case OpConstant, OpGetLocal, OpSetLocal, OpGetGlobal, OpSetGlobal, OpArray:
		return 2
	case OpJump, OpJumpIfFalse, OpLoop:
		return 2
	case OpCall:
		return 1
	default:
		return 0
	}
}
