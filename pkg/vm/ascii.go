package vm

import "strings"

// MaxASCII is the largest output value ReadASCII treats as a character.
const MaxASCII = 255

// AddASCII queues the bytes of line followed by a newline.
func (vm *VM) AddASCII(line string) {
	for i := 0; i < len(line); i++ {
		vm.input.push(int64(line[i]))
	}
	vm.input.push('\n')
}

// ReadASCII drains pending output. Values in 0..MaxASCII are collected as
// text; the first value outside that range is returned as value with ok set,
// and draining stops there so later output stays queued.
func (vm *VM) ReadASCII() (text string, value int64, ok bool) {
	var sb strings.Builder
	for {
		v, more := vm.output.pop()
		if !more {
			return sb.String(), 0, false
		}
		if v < 0 || v > MaxASCII {
			return sb.String(), v, true
		}
		sb.WriteByte(byte(v))
	}
}
