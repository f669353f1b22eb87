package compiler

import (
	"testing"
)

func TestLexer_BasicTokens(t *testing.T) {
	input := `ADD [4], #3, [rb+2]`

	lexer := NewLexer(input)
	tokens := lexer.Tokenize()

	expected := []TokenType{
		TokenIdent,
		TokenLBracket, TokenInt, TokenRBracket, TokenComma,
		TokenHash, TokenInt, TokenComma,
		TokenLBracket, TokenIdent, TokenPlus, TokenInt, TokenRBracket,
		TokenEOF,
	}
	if len(tokens) != len(expected) {
		t.Fatalf("expected %d tokens, got %d", len(expected), len(tokens))
	}

	for i, tok := range tokens {
		if tok.Type != expected[i] {
			t.Errorf("token %d: expected %v, got %v", i, expected[i], tok.Type)
		}
	}
}

func TestLexer_Numbers(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"42", "42"},
		{"-42", "-42"},
		{"0", "0"},
		{"0004", "0004"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			lexer := NewLexer(tt.input)
			tokens := lexer.Tokenize()

			if tokens[0].Type != TokenInt {
				t.Fatalf("expected TokenInt, got %v", tokens[0].Type)
			}
			if tokens[0].Value != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, tokens[0].Value)
			}
		})
	}
}

func TestLexer_RelativeNegative(t *testing.T) {
	tokens := NewLexer("[rb-1]").Tokenize()

	expected := []TokenType{TokenLBracket, TokenIdent, TokenInt, TokenRBracket, TokenEOF}
	for i, tok := range tokens {
		if tok.Type != expected[i] {
			t.Errorf("token %d: expected %v, got %v", i, expected[i], tok.Type)
		}
	}
	if tokens[2].Value != "-1" {
		t.Errorf("expected -1, got %q", tokens[2].Value)
	}
}

func TestLexer_Strings(t *testing.T) {
	input := `DATA "hello world"`

	tokens := NewLexer(input).Tokenize()

	if tokens[1].Type != TokenString {
		t.Errorf("expected TokenString, got %v", tokens[1].Type)
	}
	if tokens[1].Value != "hello world" {
		t.Errorf("expected 'hello world', got %q", tokens[1].Value)
	}
}

func TestLexer_Comments(t *testing.T) {
	input := `IN [0] ; read a value
OUT [0]`

	tokens := NewLexer(input).Tokenize()

	identCount := 0
	for _, tok := range tokens {
		if tok.Type == TokenIdent {
			identCount++
		}
	}

	if identCount != 2 {
		t.Errorf("expected 2 identifiers, got %d", identCount)
	}
}

func TestLexer_TokenLine(t *testing.T) {
	input := `start: IN [0]
OUT [0]
HALT`

	tokens := NewLexer(input).Tokenize()

	if tokens[0].Line != 1 {
		t.Errorf("expected line 1, got %d", tokens[0].Line)
	}

	for _, tok := range tokens {
		if tok.Type == TokenIdent && tok.Value == "HALT" {
			if tok.Line != 3 {
				t.Errorf("expected HALT on line 3, got %d", tok.Line)
			}
			break
		}
	}
}

func TestLexer_IllegalCharacter(t *testing.T) {
	tokens := NewLexer("OUT @[1]").Tokenize()

	expected := []TokenType{TokenIdent, TokenIllegal, TokenLBracket, TokenInt, TokenRBracket, TokenEOF}
	if len(tokens) != len(expected) {
		t.Fatalf("expected %d tokens, got %d", len(expected), len(tokens))
	}
	for i, tok := range tokens {
		if tok.Type != expected[i] {
			t.Errorf("token %d: expected %v, got %v", i, expected[i], tok.Type)
		}
	}
	if tokens[1].Value != "@" {
		t.Errorf("expected illegal token value @, got %q", tokens[1].Value)
	}
}
