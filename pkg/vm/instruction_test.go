package vm

import (
	"errors"
	"testing"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		word   int64
		opcode Opcode
		modes  [MaxParams]Mode
	}{
		{1, OpAdd, [MaxParams]Mode{ModePosition, ModePosition, ModePosition}},
		{1002, OpMul, [MaxParams]Mode{ModePosition, ModeImmediate, ModePosition}},
		{21101, OpAdd, [MaxParams]Mode{ModeImmediate, ModeImmediate, ModeRelative}},
		{203, OpInput, [MaxParams]Mode{ModeRelative}},
		{104, OpOutput, [MaxParams]Mode{ModeImmediate}},
		{1205, OpJumpIfTrue, [MaxParams]Mode{ModeRelative, ModeImmediate}},
		{109, OpAdjustBase, [MaxParams]Mode{ModeImmediate}},
		{99, OpHalt, [MaxParams]Mode{}},
		{1099, OpHalt, [MaxParams]Mode{}},
	}

	for _, tt := range tests {
		t.Run(tt.opcode.String(), func(t *testing.T) {
			inst, err := Decode(tt.word)
			if err != nil {
				t.Fatalf("Decode(%d) failed: %v", tt.word, err)
			}
			if inst.Opcode != tt.opcode {
				t.Errorf("expected opcode %v, got %v", tt.opcode, inst.Opcode)
			}
			if inst.Modes != tt.modes {
				t.Errorf("expected modes %v, got %v", tt.modes, inst.Modes)
			}
		})
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		word int64
		want error
	}{
		{0, ErrInvalidOpcode},
		{10, ErrInvalidOpcode},
		{98, ErrInvalidOpcode},
		{-99, ErrInvalidOpcode},
		{301, ErrInvalidOpcode},
		{304, ErrInvalidOpcode},
		{10001, ErrInvalidDestination},
		{103, ErrInvalidDestination},
		{11107, ErrInvalidDestination},
	}

	for _, tt := range tests {
		if _, err := Decode(tt.word); !errors.Is(err, tt.want) {
			t.Errorf("Decode(%d): expected %v, got %v", tt.word, tt.want, err)
		}
	}
}

func TestEncode(t *testing.T) {
	if got := Encode(OpAdd, ModeImmediate, ModeImmediate, ModeRelative); got != 21101 {
		t.Errorf("expected 21101, got %d", got)
	}
	if got := Encode(OpHalt); got != 99 {
		t.Errorf("expected 99, got %d", got)
	}
	if got := Encode(OpOutput, ModeRelative); got != 204 {
		t.Errorf("expected 204, got %d", got)
	}
}

func TestOpcode_Table(t *testing.T) {
	tests := []struct {
		op     Opcode
		params int
		dst    int
		name   string
	}{
		{OpAdd, 3, 3, "ADD"},
		{OpMul, 3, 3, "MUL"},
		{OpInput, 1, 1, "IN"},
		{OpOutput, 1, 0, "OUT"},
		{OpJumpIfTrue, 2, 0, "JNZ"},
		{OpJumpIfFalse, 2, 0, "JZ"},
		{OpLessThan, 3, 3, "LT"},
		{OpEquals, 3, 3, "EQ"},
		{OpAdjustBase, 1, 0, "ARB"},
		{OpHalt, 0, 0, "HALT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.op.Params() != tt.params {
				t.Errorf("expected %d params, got %d", tt.params, tt.op.Params())
			}
			if tt.op.WritesTo() != tt.dst {
				t.Errorf("expected destination %d, got %d", tt.dst, tt.op.WritesTo())
			}
			if tt.op.String() != tt.name {
				t.Errorf("expected name %s, got %s", tt.name, tt.op.String())
			}
			back, ok := OpcodeFromString(tt.name)
			if !ok || back != tt.op {
				t.Errorf("OpcodeFromString(%s) = %v, %v", tt.name, back, ok)
			}
		})
	}

	if _, ok := OpcodeFromString("NOP"); ok {
		t.Error("expected NOP to be unknown")
	}
}
