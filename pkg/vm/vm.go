// Package vm implements the Intcode virtual machine.
//
// The VM is a stored-program interpreter with:
//   - a growable tape of int64 cells holding both code and data
//   - position, immediate and relative addressing
//   - FIFO input and output queues
//   - suspension when an input instruction finds the input queue empty
//
// Basic usage:
//
//	v, err := vm.Parse("3,0,4,0,99")
//	v.AddInput(7)
//	status, err := v.Execute()
//	out, ok := v.GetOutput()
//
// Interactive usage:
//
//	for {
//	    status, err := v.Execute()
//	    if err != nil {
//	        return err
//	    }
//	    for _, out := range v.Outputs() {
//	        ...
//	    }
//	    if status == vm.StatusDone {
//	        break
//	    }
//	    v.AddInput(next())
//	}
package vm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Error definitions
var (
	ErrParse              = errors.New("invalid program text")
	ErrInvalidOpcode      = errors.New("invalid opcode")
	ErrInvalidDestination = errors.New("immediate mode destination")
	ErrNegativeAddress    = errors.New("negative address")

	// Resource limit errors (exported for embed package)
	ErrInstructionLimit = errors.New("instruction limit exceeded")
	ErrMemoryLimit      = errors.New("memory limit exceeded")
)

// DefaultMemoryLimit is the memory size, in cells, a VM may grow to unless
// SetMemoryLimit says otherwise.
const DefaultMemoryLimit = 1 << 28

// ExecError is a fatal fault raised while executing an instruction.
type ExecError struct {
	PC   int64 // Address of the faulting instruction
	Word int64 // Instruction word at PC
	Err  error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("pc %d (word %d): %v", e.PC, e.Word, e.Err)
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

// Status is the outcome of an Execute call that did not fail.
type Status uint8

const (
	StatusDone        Status = iota // Halt instruction reached
	StatusInputNeeded               // Input instruction found the input queue empty
)

// String returns the name of a status.
func (s Status) String() string {
	switch s {
	case StatusDone:
		return "done"
	case StatusInputNeeded:
		return "input needed"
	default:
		return "unknown"
	}
}

// VM represents the virtual machine.
type VM struct {
	mem    Memory
	pc     int64 // Program counter
	base   int64 // Relative base
	input  queue
	output queue

	// fault latches the first fatal error; Execute keeps returning it.
	fault error

	// Resource limits
	maxSteps  int64
	stepCount int64
	memLimit  int64

	// Context for cancellation
	ctx context.Context

	// Observability - execution statistics
	stats        ExecutionStats
	statsEnabled bool
}

// NewVM creates a VM that takes ownership of mem.
func NewVM(mem Memory) *VM {
	return &VM{mem: mem, memLimit: DefaultMemoryLimit}
}

// Clone returns an independent copy of the VM, including memory, counters,
// pending input and undrained output. Limits and context are shared settings
// and are copied too; statistics start fresh.
func (vm *VM) Clone() *VM {
	c := &VM{
		mem:      vm.mem.Clone(),
		pc:       vm.pc,
		base:     vm.base,
		input:    vm.input.clone(),
		output:   vm.output.clone(),
		fault:    vm.fault,
		maxSteps: vm.maxSteps,
		memLimit: vm.memLimit,
		ctx:      vm.ctx,
	}
	if vm.statsEnabled {
		c.EnableStats()
	}
	return c
}

// SetMaxSteps limits the number of instructions a single Execute call may run.
// Zero means unlimited.
func (vm *VM) SetMaxSteps(n int64) {
	vm.maxSteps = n
}

// SetMemoryLimit caps memory growth at n cells. A program write at or beyond
// the cap is a fatal ErrMemoryLimit fault. Zero or less restores
// DefaultMemoryLimit.
func (vm *VM) SetMemoryLimit(n int64) {
	if n <= 0 {
		n = DefaultMemoryLimit
	}
	vm.memLimit = n
}

// MemoryLimit returns the memory cap in cells.
func (vm *VM) MemoryLimit() int64 {
	return vm.memLimit
}

// SetContext sets the context for cancellation/timeout.
func (vm *VM) SetContext(ctx context.Context) {
	vm.ctx = ctx
}

// EnableStats enables execution statistics collection.
func (vm *VM) EnableStats() {
	vm.statsEnabled = true
	vm.stats = ExecutionStats{
		OpCounts: make(map[string]int64),
	}
}

// Stats returns the statistics accumulated since EnableStats.
// Returns nil if stats were not enabled.
func (vm *VM) Stats() *ExecutionStats {
	if !vm.statsEnabled {
		return nil
	}
	return &vm.stats
}

// Read returns the memory cell at addr, or 0 if addr is outside memory.
func (vm *VM) Read(addr int64) int64 {
	return vm.mem.Read(addr)
}

// Write stores value at addr, growing memory as needed.
// It panics if addr is negative.
func (vm *VM) Write(addr, value int64) {
	vm.mem.Write(addr, value)
}

// Len returns the current memory length.
func (vm *VM) Len() int {
	return len(vm.mem)
}

// Memory returns a copy of the current memory.
func (vm *VM) Memory() Memory {
	return vm.mem.Clone()
}

// PC returns the program counter.
func (vm *VM) PC() int64 {
	return vm.pc
}

// RelativeBase returns the relative base.
func (vm *VM) RelativeBase() int64 {
	return vm.base
}

// Halted reports whether the program counter rests on a halt instruction.
func (vm *VM) Halted() bool {
	return Opcode(vm.mem.Read(vm.pc)%100) == OpHalt
}

// Err returns the latched fatal error, if any.
func (vm *VM) Err() error {
	return vm.fault
}

// AddInput appends a value to the input queue.
func (vm *VM) AddInput(v int64) {
	vm.input.push(v)
}

// AddInputs appends values to the input queue in order.
func (vm *VM) AddInputs(vs ...int64) {
	for _, v := range vs {
		vm.input.push(v)
	}
}

// PendingInputs returns the number of queued input values.
func (vm *VM) PendingInputs() int {
	return vm.input.len()
}

// GetOutput removes and returns the oldest output value.
// ok is false if no output is pending.
func (vm *VM) GetOutput() (v int64, ok bool) {
	return vm.output.pop()
}

// Outputs drains and returns all pending output values.
func (vm *VM) Outputs() []int64 {
	return vm.output.drain()
}

// Execute runs from the current program counter until the program halts or
// needs input that is not queued.
//
// On StatusInputNeeded the program counter still points at the input
// instruction, so adding input and calling Execute again resumes there.
// On StatusDone the program counter stays on the halt instruction.
//
// The status is meaningless when err is non-nil. ErrInstructionLimit and
// context errors leave the machine runnable; any other error is a fault that
// every later call returns again.
func (vm *VM) Execute() (Status, error) {
	if vm.fault != nil {
		return StatusDone, vm.fault
	}

	// Start timing if stats enabled
	var startTime time.Time
	if vm.statsEnabled {
		startTime = time.Now()
		defer func() {
			vm.stats.ExecutionTimeNs += time.Since(startTime).Nanoseconds()
			if n := len(vm.mem); n > vm.stats.PeakMemory {
				vm.stats.PeakMemory = n
			}
		}()
	}

	vm.stepCount = 0
	for {
		// Context cancellation check
		if vm.ctx != nil {
			select {
			case <-vm.ctx.Done():
				return StatusDone, vm.ctx.Err()
			default:
			}
		}

		status, running, err := vm.step()
		if err != nil {
			vm.fault = &ExecError{PC: vm.pc, Word: vm.mem.Read(vm.pc), Err: err}
			return StatusDone, vm.fault
		}
		if !running {
			if status == StatusInputNeeded && vm.statsEnabled {
				vm.stats.Suspensions++
			}
			return status, nil
		}

		// Resource limit check
		if vm.maxSteps > 0 && vm.stepCount >= vm.maxSteps {
			return StatusDone, ErrInstructionLimit
		}
	}
}

// step decodes and executes the instruction at pc. running is false when the
// machine stopped on a halt or on an unsatisfied input instruction.
func (vm *VM) step() (status Status, running bool, err error) {
	inst, err := Decode(vm.mem.Read(vm.pc))
	if err != nil {
		return StatusDone, false, err
	}

	switch inst.Opcode {
	case OpHalt:
		return StatusDone, false, nil

	case OpInput:
		if vm.input.len() == 0 {
			return StatusInputNeeded, false, nil
		}
	}

	vm.stepCount++
	if vm.statsEnabled {
		vm.stats.StepsExecuted++
		vm.stats.OpCounts[inst.Opcode.String()]++
	}

	next := vm.pc + inst.Width()

	switch inst.Opcode {
	case OpAdd, OpMul, OpLessThan, OpEquals:
		a, err := vm.load(inst, 1)
		if err != nil {
			return StatusDone, false, err
		}
		b, err := vm.load(inst, 2)
		if err != nil {
			return StatusDone, false, err
		}
		dst, err := vm.address(inst, 3)
		if err != nil {
			return StatusDone, false, err
		}
		var v int64
		switch inst.Opcode {
		case OpAdd:
			v = a + b
		case OpMul:
			v = a * b
		case OpLessThan:
			v = boolToInt(a < b)
		case OpEquals:
			v = boolToInt(a == b)
		}
		vm.mem.Write(dst, v)

	case OpInput:
		dst, err := vm.address(inst, 1)
		if err != nil {
			return StatusDone, false, err
		}
		v, _ := vm.input.pop()
		vm.mem.Write(dst, v)

	case OpOutput:
		v, err := vm.load(inst, 1)
		if err != nil {
			return StatusDone, false, err
		}
		vm.output.push(v)

	case OpJumpIfTrue, OpJumpIfFalse:
		cond, err := vm.load(inst, 1)
		if err != nil {
			return StatusDone, false, err
		}
		if (cond != 0) == (inst.Opcode == OpJumpIfTrue) {
			target, err := vm.load(inst, 2)
			if err != nil {
				return StatusDone, false, err
			}
			if target < 0 {
				return StatusDone, false, fmt.Errorf("%w: jump to %d", ErrNegativeAddress, target)
			}
			next = target
		}

	case OpAdjustBase:
		v, err := vm.load(inst, 1)
		if err != nil {
			return StatusDone, false, err
		}
		vm.base += v
	}

	vm.pc = next
	return StatusDone, true, nil
}

// load returns the operand value of the 1-based parameter n.
func (vm *VM) load(inst Instruction, n int) (int64, error) {
	raw := vm.mem.Read(vm.pc + int64(n))
	switch inst.Mode(n) {
	case ModeImmediate:
		return raw, nil
	case ModeRelative:
		raw += vm.base
	}
	if raw < 0 {
		return 0, fmt.Errorf("%w: parameter %d reads %d", ErrNegativeAddress, n, raw)
	}
	return vm.mem.Read(raw), nil
}

// address returns the target address of the 1-based destination parameter n.
// Decode has already rejected immediate destinations.
func (vm *VM) address(inst Instruction, n int) (int64, error) {
	addr := vm.mem.Read(vm.pc + int64(n))
	if inst.Mode(n) == ModeRelative {
		addr += vm.base
	}
	if addr < 0 {
		return 0, fmt.Errorf("%w: parameter %d writes %d", ErrNegativeAddress, n, addr)
	}
	if addr >= vm.memLimit {
		return 0, fmt.Errorf("%w: parameter %d writes %d, limit %d cells", ErrMemoryLimit, n, addr, vm.memLimit)
	}
	return addr, nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
