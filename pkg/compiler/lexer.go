package compiler

import (
	"unicode"
)

// TokenType represents the type of a token.
type TokenType uint8

const (
	TokenEOF TokenType = iota
	TokenNewline
	TokenIdent    // Mnemonics, labels, rb
	TokenInt      // Integer literals
	TokenString   // "quoted strings" (DATA only)
	TokenComma    // ,
	TokenColon    // : (labels and address prefixes)
	TokenHash     // # (immediate)
	TokenLBracket // [
	TokenRBracket // ]
	TokenPlus     // + (relative offsets)
	TokenIllegal  // Any character the assembler does not recognize
)

// String returns the string representation of a token type.
func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "EOF"
	case TokenNewline:
		return "NEWLINE"
	case TokenIdent:
		return "IDENT"
	case TokenInt:
		return "INT"
	case TokenString:
		return "STRING"
	case TokenComma:
		return "COMMA"
	case TokenColon:
		return "COLON"
	case TokenHash:
		return "HASH"
	case TokenLBracket:
		return "LBRACKET"
	case TokenRBracket:
		return "RBRACKET"
	case TokenPlus:
		return "PLUS"
	case TokenIllegal:
		return "ILLEGAL"
	default:
		return "UNKNOWN"
	}
}

// Token represents a lexical token.
type Token struct {
	Type  TokenType
	Value string
	Line  int
}

// Lexer tokenizes Intcode assembly source.
type Lexer struct {
	input  string
	pos    int
	line   int
	tokens []Token
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	return &Lexer{
		input:  input,
		pos:    0,
		line:   1,
		tokens: []Token{},
	}
}

// Tokenize tokenizes the entire input and returns the tokens.
func (l *Lexer) Tokenize() []Token {
	for l.pos < len(l.input) {
		l.skipWhitespace()
		if l.pos >= len(l.input) {
			break
		}

		ch := l.input[l.pos]

		switch {
		case ch == '\n':
			l.emit(TokenNewline, "\n")
			l.line++
			l.pos++

		case ch == ';':
			// Comment - skip to end of line
			for l.pos < len(l.input) && l.input[l.pos] != '\n' {
				l.pos++
			}

		case ch == ',':
			l.emit(TokenComma, ",")
			l.pos++

		case ch == ':':
			l.emit(TokenColon, ":")
			l.pos++

		case ch == '#':
			l.emit(TokenHash, "#")
			l.pos++

		case ch == '[':
			l.emit(TokenLBracket, "[")
			l.pos++

		case ch == ']':
			l.emit(TokenRBracket, "]")
			l.pos++

		case ch == '+':
			l.emit(TokenPlus, "+")
			l.pos++

		case ch == '"':
			l.scanString()

		case ch == '-' || unicode.IsDigit(rune(ch)):
			l.scanNumber()

		case unicode.IsLetter(rune(ch)) || ch == '_' || ch == '.':
			l.scanIdent()

		default:
			l.emit(TokenIllegal, string(ch))
			l.pos++
		}
	}

	l.emit(TokenEOF, "")
	return l.tokens
}

func (l *Lexer) emit(typ TokenType, value string) {
	l.tokens = append(l.tokens, Token{Type: typ, Value: value, Line: l.line})
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch == ' ' || ch == '\t' || ch == '\r' {
			l.pos++
		} else {
			break
		}
	}
}

func (l *Lexer) scanString() {
	l.pos++ // Skip opening quote
	start := l.pos

	for l.pos < len(l.input) && l.input[l.pos] != '"' && l.input[l.pos] != '\n' {
		l.pos++
	}

	l.emit(TokenString, l.input[start:l.pos])

	if l.pos < len(l.input) && l.input[l.pos] == '"' {
		l.pos++ // Skip closing quote
	}
}

func (l *Lexer) scanNumber() {
	start := l.pos

	// Handle negative sign
	if l.input[l.pos] == '-' {
		l.pos++
	}

	for l.pos < len(l.input) && unicode.IsDigit(rune(l.input[l.pos])) {
		l.pos++
	}

	l.emit(TokenInt, l.input[start:l.pos])
}

func (l *Lexer) scanIdent() {
	start := l.pos
	l.pos++

	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if unicode.IsLetter(rune(ch)) || unicode.IsDigit(rune(ch)) || ch == '_' || ch == '.' {
			l.pos++
		} else {
			break
		}
	}

	l.emit(TokenIdent, l.input[start:l.pos])
}
