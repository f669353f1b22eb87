package compiler

import (
	"fmt"
	"strconv"
	"strings"
)

// OperandType represents the type of an operand.
type OperandType uint8

const (
	OperandPosition  OperandType = iota // [n]
	OperandImmediate                    // #n
	OperandRelative                     // [rb+n]
	OperandBare                         // n (DATA only)
	OperandString                       // "text" (DATA only)
)

// Operand represents an instruction operand. When Label is set the value is
// the label's address, resolved by the compiler.
type Operand struct {
	Type   OperandType
	IntVal int64
	Label  string
	StrVal string
}

// AsmInstruction represents a parsed instruction or DATA directive.
type AsmInstruction struct {
	Opcode   string
	Operands []Operand
	Line     int
}

// AsmProgram represents a parsed assembly program.
type AsmProgram struct {
	Instructions []AsmInstruction
	Labels       map[string]int // label -> instruction index
}

// Parser parses Intcode assembly source.
type Parser struct {
	tokens  []Token
	pos     int
	program *AsmProgram
}

// NewParser creates a new parser for the given input.
func NewParser(input string) *Parser {
	lexer := NewLexer(input)
	tokens := lexer.Tokenize()
	return &Parser{
		tokens: tokens,
		pos:    0,
		program: &AsmProgram{
			Instructions: []AsmInstruction{},
			Labels:       make(map[string]int),
		},
	}
}

// Parse parses the entire input and returns the program.
func (p *Parser) Parse() (*AsmProgram, error) {
	for p.pos < len(p.tokens) {
		tok := p.tokens[p.pos]

		switch tok.Type {
		case TokenEOF:
			return p.program, nil

		case TokenNewline:
			p.pos++

		case TokenInt:
			// Address prefix as printed by the disassembler ("0004:").
			if p.peek(1).Type != TokenColon {
				return nil, fmt.Errorf("line %d: unexpected integer %s", tok.Line, tok.Value)
			}
			p.pos += 2

		case TokenIdent:
			if p.peek(1).Type == TokenColon {
				if _, dup := p.program.Labels[tok.Value]; dup {
					return nil, fmt.Errorf("line %d: duplicate label %s", tok.Line, tok.Value)
				}
				p.program.Labels[tok.Value] = len(p.program.Instructions)
				p.pos += 2
				continue
			}

			inst, err := p.parseInstruction()
			if err != nil {
				return nil, err
			}
			p.program.Instructions = append(p.program.Instructions, inst)

		case TokenIllegal:
			return nil, fmt.Errorf("line %d: unexpected character %q", tok.Line, tok.Value)

		default:
			return nil, fmt.Errorf("line %d: unexpected token: %s", tok.Line, tok.Value)
		}
	}

	return p.program, nil
}

func (p *Parser) peek(offset int) Token {
	if p.pos+offset >= len(p.tokens) {
		return Token{Type: TokenEOF}
	}
	return p.tokens[p.pos+offset]
}

func (p *Parser) parseInstruction() (AsmInstruction, error) {
	inst := AsmInstruction{
		Opcode:   p.tokens[p.pos].Value,
		Line:     p.tokens[p.pos].Line,
		Operands: []Operand{},
	}
	p.pos++ // Consume opcode

	// Parse operands until newline or EOF
	for p.pos < len(p.tokens) {
		tok := p.tokens[p.pos]

		if tok.Type == TokenNewline || tok.Type == TokenEOF {
			break
		}

		if tok.Type == TokenComma {
			p.pos++
			continue
		}

		operand, err := p.parseOperand()
		if err != nil {
			return inst, err
		}
		inst.Operands = append(inst.Operands, operand)
	}

	return inst, nil
}

func (p *Parser) parseOperand() (Operand, error) {
	tok := p.tokens[p.pos]

	switch tok.Type {
	case TokenHash:
		p.pos++
		return p.parseValue(OperandImmediate)

	case TokenLBracket:
		p.pos++
		var (
			op  Operand
			err error
		)
		if next := p.tokens[p.pos]; next.Type == TokenIdent && strings.EqualFold(next.Value, "rb") {
			p.pos++
			op, err = p.parseRelativeOffset()
		} else {
			op, err = p.parseValue(OperandPosition)
		}
		if err != nil {
			return Operand{}, err
		}
		if closing := p.tokens[p.pos]; closing.Type != TokenRBracket {
			return Operand{}, fmt.Errorf("line %d: expected ], got %q", closing.Line, closing.Value)
		}
		p.pos++
		return op, nil

	case TokenInt, TokenIdent:
		return p.parseValue(OperandBare)

	case TokenString:
		p.pos++
		return Operand{Type: OperandString, StrVal: tok.Value}, nil

	case TokenIllegal:
		return Operand{}, fmt.Errorf("line %d: unexpected character %q", tok.Line, tok.Value)

	default:
		return Operand{}, fmt.Errorf("line %d: unexpected token: %s", tok.Line, tok.Value)
	}
}

// parseRelativeOffset parses what follows "rb" inside brackets: nothing,
// "+n", "+label" or a signed integer.
func (p *Parser) parseRelativeOffset() (Operand, error) {
	switch tok := p.tokens[p.pos]; tok.Type {
	case TokenRBracket:
		return Operand{Type: OperandRelative}, nil
	case TokenPlus:
		p.pos++
		return p.parseValue(OperandRelative)
	case TokenInt:
		if !strings.HasPrefix(tok.Value, "-") {
			return Operand{}, fmt.Errorf("line %d: expected + or - after rb, got %s", tok.Line, tok.Value)
		}
		return p.parseValue(OperandRelative)
	default:
		return Operand{}, fmt.Errorf("line %d: unexpected token after rb: %s", tok.Line, tok.Value)
	}
}

// parseValue parses an integer literal or a label reference.
func (p *Parser) parseValue(typ OperandType) (Operand, error) {
	tok := p.tokens[p.pos]

	switch tok.Type {
	case TokenInt:
		intVal, err := strconv.ParseInt(tok.Value, 10, 64)
		if err != nil {
			return Operand{}, fmt.Errorf("line %d: invalid integer: %s", tok.Line, tok.Value)
		}
		p.pos++
		return Operand{Type: typ, IntVal: intVal}, nil

	case TokenIdent:
		p.pos++
		return Operand{Type: typ, Label: tok.Value}, nil

	default:
		return Operand{}, fmt.Errorf("line %d: expected integer or label, got %q", tok.Line, tok.Value)
	}
}
