package vm

// Memory is the VM's tape of 64-bit cells.
//
// A Memory is owned by exactly one VM at a time. Callers that want to run the
// same image more than once keep a template and hand each VM its own Clone.
type Memory []int64

// Clone returns an independent deep copy of the memory.
func (m Memory) Clone() Memory {
	if m == nil {
		return nil
	}
	out := make(Memory, len(m))
	copy(out, m)
	return out
}

// Read returns the cell at addr, or 0 when addr is outside the tape.
func (m Memory) Read(addr int64) int64 {
	if addr < 0 || addr >= int64(len(m)) {
		return 0
	}
	return m[addr]
}

// grow extends the tape with zeroed cells so that addr is addressable.
func (m *Memory) grow(addr int64) {
	n := int64(len(*m))
	if addr < n {
		return
	}
	if addr < int64(cap(*m)) {
		*m = (*m)[:addr+1]
		clear((*m)[n:])
		return
	}
	grown := make(Memory, addr+1, growCap(n, addr+1))
	copy(grown, *m)
	*m = grown
}

// Write stores value at addr, growing the tape with zeroes first if needed.
// addr must not be negative.
func (m *Memory) Write(addr, value int64) {
	if addr < 0 {
		panic("vm: write to negative address")
	}
	m.grow(addr)
	(*m)[addr] = value
}

// growCap doubles small tapes and adds a quarter to large ones.
func growCap(old, need int64) int64 {
	c := old * 2
	if old > 4096 {
		c = old + old/4
	}
	if c < need {
		c = need
	}
	return c
}
