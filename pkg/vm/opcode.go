package vm

// Opcode is the two low decimal digits of an instruction word.
type Opcode uint8

const (
	OpAdd         Opcode = 1  // dst = src1 + src2
	OpMul         Opcode = 2  // dst = src1 * src2
	OpInput       Opcode = 3  // dst = pop(input), suspends when input is empty
	OpOutput      Opcode = 4  // push(output, src1)
	OpJumpIfTrue  Opcode = 5  // if src1 != 0 { pc = src2 }
	OpJumpIfFalse Opcode = 6  // if src1 == 0 { pc = src2 }
	OpLessThan    Opcode = 7  // dst = src1 < src2
	OpEquals      Opcode = 8  // dst = src1 == src2
	OpAdjustBase  Opcode = 9  // relative base += src1
	OpHalt        Opcode = 99 // stop
)

// Valid reports whether o is part of the instruction set.
func (o Opcode) Valid() bool {
	switch o {
	case OpAdd, OpMul, OpInput, OpOutput, OpJumpIfTrue, OpJumpIfFalse,
		OpLessThan, OpEquals, OpAdjustBase, OpHalt:
		return true
	}
	return false
}

// Params returns the number of parameter words following the opcode.
func (o Opcode) Params() int {
	switch o {
	case OpAdd, OpMul, OpLessThan, OpEquals:
		return 3
	case OpJumpIfTrue, OpJumpIfFalse:
		return 2
	case OpInput, OpOutput, OpAdjustBase:
		return 1
	default:
		return 0
	}
}

// WritesTo returns the 1-based index of the destination parameter, or 0 when
// the instruction does not write memory.
func (o Opcode) WritesTo() int {
	switch o {
	case OpAdd, OpMul, OpLessThan, OpEquals:
		return 3
	case OpInput:
		return 1
	default:
		return 0
	}
}

// String returns the assembler mnemonic of an opcode.
func (o Opcode) String() string {
	switch o {
	case OpAdd:
		return "ADD"
	case OpMul:
		return "MUL"
	case OpInput:
		return "IN"
	case OpOutput:
		return "OUT"
	case OpJumpIfTrue:
		return "JNZ"
	case OpJumpIfFalse:
		return "JZ"
	case OpLessThan:
		return "LT"
	case OpEquals:
		return "EQ"
	case OpAdjustBase:
		return "ARB"
	case OpHalt:
		return "HALT"
	default:
		return "UNKNOWN"
	}
}

// OpcodeFromString returns the opcode for the given mnemonic.
func OpcodeFromString(s string) (Opcode, bool) {
	switch s {
	case "ADD":
		return OpAdd, true
	case "MUL":
		return OpMul, true
	case "IN":
		return OpInput, true
	case "OUT":
		return OpOutput, true
	case "JNZ", "JT":
		return OpJumpIfTrue, true
	case "JZ", "JF":
		return OpJumpIfFalse, true
	case "LT":
		return OpLessThan, true
	case "EQ":
		return OpEquals, true
	case "ARB":
		return OpAdjustBase, true
	case "HALT":
		return OpHalt, true
	default:
		return 0, false
	}
}
