// Package compiler assembles Intcode assembly source into a memory image.
//
// The syntax is the one vm.Disassemble prints:
//
//	; sum inputs until a zero is read
//	loop:   IN    [value]
//	        JZ    [value], #done
//	        ADD   [value], [total], [total]
//	        JNZ   #1, #loop
//	done:   OUT   [total]
//	        HALT
//	value:  DATA  0
//	total:  DATA  0
//
// Operands are [n] (position), #n (immediate) and [rb+n] or [rb-n]
// (relative). Anywhere n appears a label may be used instead; it stands for
// the label's address. DATA emits raw words, label addresses and the bytes of
// "quoted strings". A leading "0004:" address prefix is ignored.
package compiler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/akhildatla/intcode/pkg/vm"
)

// Error definitions
var (
	ErrUnknownOpcode  = errors.New("unknown opcode")
	ErrOperandCount   = errors.New("wrong number of operands")
	ErrOperandType    = errors.New("invalid operand")
	ErrUndefinedLabel = errors.New("undefined label")
)

const dataDirective = "DATA"

// Compile assembles source code into a memory image.
func Compile(source string) (vm.Memory, error) {
	parser := NewParser(source)
	asmProgram, err := parser.Parse()
	if err != nil {
		return nil, err
	}

	compiler := &Compiler{
		code:   vm.Memory{},
		labels: make(map[string]int64),
	}

	return compiler.compile(asmProgram)
}

// Compiler compiles parsed assembly to a memory image.
type Compiler struct {
	code   vm.Memory
	labels map[string]int64
}

func (c *Compiler) compile(program *AsmProgram) (vm.Memory, error) {
	// First pass: lay out addresses so forward label references resolve.
	addrs := make([]int64, len(program.Instructions)+1)
	for i, inst := range program.Instructions {
		width, err := instructionWidth(inst)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", inst.Line, err)
		}
		addrs[i+1] = addrs[i] + width
	}
	for name, idx := range program.Labels {
		c.labels[name] = addrs[idx]
	}

	for _, inst := range program.Instructions {
		if err := c.compileInstruction(inst); err != nil {
			return nil, fmt.Errorf("line %d: %w", inst.Line, err)
		}
	}

	return c.code, nil
}

func instructionWidth(inst AsmInstruction) (int64, error) {
	mnemonic := strings.ToUpper(inst.Opcode)
	if mnemonic == dataDirective {
		var width int64
		for _, op := range inst.Operands {
			if op.Type == OperandString {
				width += int64(len(op.StrVal))
			} else {
				width++
			}
		}
		return width, nil
	}

	opcode, ok := vm.OpcodeFromString(mnemonic)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownOpcode, inst.Opcode)
	}
	return int64(1 + opcode.Params()), nil
}

func (c *Compiler) compileInstruction(inst AsmInstruction) error {
	mnemonic := strings.ToUpper(inst.Opcode)
	if mnemonic == dataDirective {
		return c.compileData(inst)
	}

	opcode, _ := vm.OpcodeFromString(mnemonic)
	if len(inst.Operands) != opcode.Params() {
		return fmt.Errorf("%w: %s takes %d, got %d", ErrOperandCount, opcode, opcode.Params(), len(inst.Operands))
	}

	modes := make([]vm.Mode, len(inst.Operands))
	values := make([]int64, len(inst.Operands))
	for i, op := range inst.Operands {
		switch op.Type {
		case OperandPosition:
			modes[i] = vm.ModePosition
		case OperandImmediate:
			modes[i] = vm.ModeImmediate
		case OperandRelative:
			modes[i] = vm.ModeRelative
		default:
			return fmt.Errorf("%w: operand %d of %s must be [n], #n or [rb+n]", ErrOperandType, i+1, opcode)
		}

		v, err := c.resolve(op)
		if err != nil {
			return err
		}
		values[i] = v
	}

	if dst := opcode.WritesTo(); dst > 0 && modes[dst-1] == vm.ModeImmediate {
		return fmt.Errorf("%w: operand %d of %s", vm.ErrInvalidDestination, dst, opcode)
	}

	c.code = append(c.code, vm.Encode(opcode, modes...))
	c.code = append(c.code, values...)
	return nil
}

func (c *Compiler) compileData(inst AsmInstruction) error {
	for i, op := range inst.Operands {
		switch op.Type {
		case OperandString:
			for j := 0; j < len(op.StrVal); j++ {
				c.code = append(c.code, int64(op.StrVal[j]))
			}
		case OperandBare:
			v, err := c.resolve(op)
			if err != nil {
				return err
			}
			c.code = append(c.code, v)
		default:
			return fmt.Errorf("%w: DATA operand %d must be a number, label or string", ErrOperandType, i+1)
		}
	}
	return nil
}

func (c *Compiler) resolve(op Operand) (int64, error) {
	if op.Label == "" {
		return op.IntVal, nil
	}
	addr, ok := c.labels[op.Label]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUndefinedLabel, op.Label)
	}
	return addr, nil
}
