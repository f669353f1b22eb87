package vm

import (
	"bytes"
	"fmt"
)

// Disassemble converts a memory image to assembly source.
//
// The sweep is linear: every word that decodes to an instruction whose
// parameters fit in memory, and that re-encodes to the same word, is printed
// as an instruction; anything else is printed as a DATA word. The output is
// accepted by the assembler and reproduces mem exactly.
func Disassemble(mem Memory) string {
	var buf bytes.Buffer

	buf.WriteString("; Disassembled from Intcode memory image\n")
	buf.WriteString(fmt.Sprintf("; %d words\n\n", len(mem)))

	for addr := int64(0); addr < int64(len(mem)); {
		text, width := disassembleAt(mem, addr)
		buf.WriteString(fmt.Sprintf("%04d: %s\n", addr, text))
		addr += width
	}

	return buf.String()
}

func disassembleAt(mem Memory, addr int64) (string, int64) {
	word := mem[addr]
	inst, err := Decode(word)
	if err != nil || addr+inst.Width() > int64(len(mem)) || Encode(inst.Opcode, inst.Modes[:inst.Opcode.Params()]...) != word {
		return fmt.Sprintf("%-5s %d", "DATA", word), 1
	}

	opName := inst.Opcode.String()
	if inst.Opcode.Params() == 0 {
		return opName, 1
	}

	var ops bytes.Buffer
	for n := 1; n <= inst.Opcode.Params(); n++ {
		if n > 1 {
			ops.WriteString(", ")
		}
		ops.WriteString(FormatOperand(inst.Mode(n), mem[addr+int64(n)]))
	}
	return fmt.Sprintf("%-5s %s", opName, ops.String()), inst.Width()
}

// FormatOperand renders a raw parameter word in assembler syntax:
// [n] for position, #n for immediate and [rb+n] for relative.
func FormatOperand(m Mode, raw int64) string {
	switch m {
	case ModeImmediate:
		return fmt.Sprintf("#%d", raw)
	case ModeRelative:
		if raw < 0 {
			return fmt.Sprintf("[rb%d]", raw)
		}
		return fmt.Sprintf("[rb+%d]", raw)
	default:
		return fmt.Sprintf("[%d]", raw)
	}
}
