package vm

import "fmt"

// Mode is a parameter addressing mode.
type Mode uint8

const (
	ModePosition  Mode = 0 // Parameter is an address
	ModeImmediate Mode = 1 // Parameter is the value
	ModeRelative  Mode = 2 // Parameter plus relative base is an address
)

// String returns the name of a mode.
func (m Mode) String() string {
	switch m {
	case ModePosition:
		return "position"
	case ModeImmediate:
		return "immediate"
	case ModeRelative:
		return "relative"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

// MaxParams is the largest parameter count of any opcode.
const MaxParams = 3

// Instruction is a decoded instruction word.
//
// Layout of the word, in decimal digits:
//
//	... C B A O O
//	    │ │ │ └─┴── opcode
//	    │ │ └────── mode of parameter 1
//	    │ └──────── mode of parameter 2
//	    └────────── mode of parameter 3
type Instruction struct {
	Word   int64
	Opcode Opcode
	Modes  [MaxParams]Mode
}

// Decode splits an instruction word into its opcode and parameter modes.
//
// Only the mode digits of parameters the opcode actually uses are checked;
// a digit other than 0, 1 or 2 yields ErrInvalidOpcode, as does an unknown
// opcode. A word whose destination parameter is immediate yields
// ErrInvalidDestination.
func Decode(word int64) (Instruction, error) {
	inst := Instruction{Word: word}
	if word < 0 {
		return inst, fmt.Errorf("%w: %d", ErrInvalidOpcode, word)
	}

	inst.Opcode = Opcode(word % 100)
	if !inst.Opcode.Valid() {
		return inst, fmt.Errorf("%w: %d", ErrInvalidOpcode, word)
	}

	modes := word / 100
	for i := 0; i < inst.Opcode.Params(); i++ {
		digit := modes % 10
		modes /= 10
		if digit > int64(ModeRelative) {
			return inst, fmt.Errorf("%w: mode digit %d for parameter %d in %d", ErrInvalidOpcode, digit, i+1, word)
		}
		inst.Modes[i] = Mode(digit)
	}

	if dst := inst.Opcode.WritesTo(); dst > 0 && inst.Modes[dst-1] == ModeImmediate {
		return inst, fmt.Errorf("%w: parameter %d in %d", ErrInvalidDestination, dst, word)
	}
	return inst, nil
}

// Mode returns the addressing mode of the 1-based parameter n.
func (i Instruction) Mode(n int) Mode {
	return i.Modes[n-1]
}

// Width returns the number of words the instruction occupies.
func (i Instruction) Width() int64 {
	return int64(1 + i.Opcode.Params())
}

// Encode builds an instruction word from an opcode and parameter modes.
func Encode(op Opcode, modes ...Mode) int64 {
	word := int64(op)
	scale := int64(100)
	for _, m := range modes {
		word += int64(m) * scale
		scale *= 10
	}
	return word
}

// String returns the mnemonic of the instruction.
func (i Instruction) String() string {
	return i.Opcode.String()
}
