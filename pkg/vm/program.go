package vm

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseError reports a program token that is not a signed decimal integer.
type ParseError struct {
	Index int    // Zero-based token position
	Token string // Offending token text
	Err   error  // Underlying strconv error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse program: token %d %q: %v", e.Index, e.Token, e.Err)
}

// Unwrap lets errors.Is match both ErrParse and the strconv cause.
func (e *ParseError) Unwrap() []error {
	return []error{ErrParse, e.Err}
}

// ParseProgram parses comma-separated signed integers into a memory image.
// Whitespace around the whole text and around each token is ignored.
func ParseProgram(text string) (Memory, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &ParseError{Index: 0, Token: "", Err: strconv.ErrSyntax}
	}

	fields := strings.Split(text, ",")
	mem := make(Memory, len(fields))
	for i, field := range fields {
		tok := strings.TrimSpace(field)
		v, err := strconv.ParseInt(tok, 10, 64)
		if err != nil {
			return nil, &ParseError{Index: i, Token: tok, Err: err}
		}
		mem[i] = v
	}
	return mem, nil
}

// FormatProgram renders a memory image back to its comma-separated text form.
func FormatProgram(mem Memory) string {
	var sb strings.Builder
	buf := make([]byte, 0, 20)
	for i, v := range mem {
		if i > 0 {
			sb.WriteByte(',')
		}
		buf = strconv.AppendInt(buf[:0], v, 10)
		sb.Write(buf)
	}
	return sb.String()
}

// Parse parses program text and returns a VM loaded with it.
func Parse(text string) (*VM, error) {
	mem, err := ParseProgram(text)
	if err != nil {
		return nil, err
	}
	return NewVM(mem), nil
}
