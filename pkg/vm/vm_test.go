package vm

import (
	"context"
	"errors"
	"testing"

	"github.com/akhildatla/intcode/internal/testutil"
)

func mustParse(t *testing.T, text string) *VM {
	t.Helper()
	v, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return v
}

func runToHalt(t *testing.T, v *VM) {
	t.Helper()
	status, err := v.Execute()
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if status != StatusDone {
		t.Fatalf("expected %v, got %v", StatusDone, status)
	}
}

// ===== Arithmetic and memory =====

func TestVM_PositionModeAdd(t *testing.T) {
	v := mustParse(t, "1,0,0,0,99")
	runToHalt(t, v)
	testutil.AssertInt64s(t, []int64{2, 0, 0, 0, 99}, v.Memory())
}

func TestVM_FinalMemory(t *testing.T) {
	tests := []struct {
		program  string
		expected []int64
	}{
		{"2,3,0,3,99", []int64{2, 3, 0, 6, 99}},
		{"2,4,4,5,99,0", []int64{2, 4, 4, 5, 99, 9801}},
		{"1,1,1,4,99,5,6,0,99", []int64{30, 1, 1, 4, 2, 5, 6, 0, 99}},
		{"1,9,10,3,2,3,11,0,99,30,40,50", []int64{3500, 9, 10, 70, 2, 3, 11, 0, 99, 30, 40, 50}},
		{"1002,4,3,4,33", []int64{1002, 4, 3, 4, 99}},
		{"1101,100,-1,4,0", []int64{1101, 100, -1, 4, 99}},
	}

	for _, tt := range tests {
		t.Run(tt.program, func(t *testing.T) {
			v := mustParse(t, tt.program)
			runToHalt(t, v)
			testutil.AssertInt64s(t, tt.expected, v.Memory())
		})
	}
}

func TestVM_PatchBeforeRun(t *testing.T) {
	template, err := ParseProgram("1,0,0,3,99")
	if err != nil {
		t.Fatalf("ParseProgram failed: %v", err)
	}

	v := NewVM(template.Clone())
	v.Write(1, 4)
	v.Write(2, 4)
	runToHalt(t, v)

	testutil.AssertInt64Equal(t, 198, v.Read(3))
	testutil.AssertInt64Equal(t, 3, template[3])
}

func TestVM_LargeNumbers(t *testing.T) {
	tests := []struct {
		program  string
		expected int64
	}{
		{"1102,34915192,34915192,7,4,7,99,0", 1219070632396864},
		{"104,1125899906842624,99", 1125899906842624},
	}

	for _, tt := range tests {
		t.Run(tt.program, func(t *testing.T) {
			v := mustParse(t, tt.program)
			runToHalt(t, v)
			testutil.AssertInt64s(t, []int64{tt.expected}, v.Outputs())
		})
	}
}

// ===== Relative mode and growth =====

func TestVM_Quine(t *testing.T) {
	v := mustParse(t, testutil.Quine)
	runToHalt(t, v)

	expected, _ := ParseProgram(testutil.Quine)
	testutil.AssertInt64s(t, expected, v.Outputs())
}

func TestVM_RelativeDestination(t *testing.T) {
	v := mustParse(t, "109,10,21101,3,4,0,204,0,99")
	runToHalt(t, v)

	testutil.AssertInt64s(t, []int64{7}, v.Outputs())
	if v.Len() != 11 {
		t.Errorf("expected memory to grow to 11 cells, got %d", v.Len())
	}
	testutil.AssertInt64Equal(t, 10, v.RelativeBase())
}

func TestVM_RelativeInput(t *testing.T) {
	v := mustParse(t, "109,-3,203,10,204,10,99")
	v.AddInput(42)
	runToHalt(t, v)

	testutil.AssertInt64Equal(t, 42, v.Read(7))
	testutil.AssertInt64s(t, []int64{42}, v.Outputs())
}

func TestVM_ReadBeyondMemory(t *testing.T) {
	v := mustParse(t, "4,1000,99")
	runToHalt(t, v)

	testutil.AssertInt64s(t, []int64{0}, v.Outputs())
	if v.Len() != 3 {
		t.Errorf("reads must not grow memory, got length %d", v.Len())
	}
}

// ===== I/O and suspension =====

func TestVM_Echo(t *testing.T) {
	v := mustParse(t, testutil.Echo)
	v.AddInput(7)
	runToHalt(t, v)

	out, ok := v.GetOutput()
	if !ok || out != 7 {
		t.Errorf("expected output 7, got %d (ok=%v)", out, ok)
	}
	if _, ok := v.GetOutput(); ok {
		t.Error("expected output queue to be empty")
	}
}

func TestVM_Comparisons(t *testing.T) {
	tests := []struct {
		name     string
		program  string
		input    int64
		expected int64
	}{
		{"eq position hit", testutil.EqualsEight, 8, 1},
		{"eq position miss", testutil.EqualsEight, 7, 0},
		{"lt immediate hit", testutil.LessThanEight, 3, 1},
		{"lt immediate miss", testutil.LessThanEight, 8, 0},
		{"compare below", testutil.Compare8, 7, 999},
		{"compare equal", testutil.Compare8, 8, 1000},
		{"compare above", testutil.Compare8, 9, 1001},
		{"jump position zero", "3,12,6,12,15,1,13,14,13,4,13,99,-1,0,1,9", 0, 0},
		{"jump position nonzero", "3,12,6,12,15,1,13,14,13,4,13,99,-1,0,1,9", 5, 1},
		{"jump immediate zero", "3,3,1105,-1,9,1101,0,0,12,4,12,99,1", 0, 0},
		{"jump immediate nonzero", "3,3,1105,-1,9,1101,0,0,12,4,12,99,1", 5, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := mustParse(t, tt.program)
			v.AddInput(tt.input)
			runToHalt(t, v)
			testutil.AssertInt64s(t, []int64{tt.expected}, v.Outputs())
		})
	}
}

func TestVM_SuspendLeavesStateUntouched(t *testing.T) {
	v := mustParse(t, testutil.Echo)
	before := v.Memory()

	status, err := v.Execute()
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if status != StatusInputNeeded {
		t.Fatalf("expected %v, got %v", StatusInputNeeded, status)
	}
	testutil.AssertInt64Equal(t, 0, v.PC())
	testutil.AssertInt64s(t, before, v.Memory())

	// Re-entering without input suspends again at the same place.
	status, err = v.Execute()
	if err != nil || status != StatusInputNeeded {
		t.Fatalf("expected repeated suspension, got %v, %v", status, err)
	}
	testutil.AssertInt64Equal(t, 0, v.PC())

	v.AddInput(11)
	runToHalt(t, v)
	testutil.AssertInt64s(t, []int64{11}, v.Outputs())
}

func TestVM_SplitInputMatchesUpfrontInput(t *testing.T) {
	inputs := []int64{5, 7, -2, 30, 0}

	upfront := mustParse(t, testutil.Accumulate)
	upfront.AddInputs(inputs...)
	runToHalt(t, upfront)
	want := upfront.Outputs()

	split := mustParse(t, testutil.Accumulate)
	var got []int64
	for _, in := range inputs {
		status, err := split.Execute()
		if err != nil {
			t.Fatalf("Execute failed: %v", err)
		}
		if status != StatusInputNeeded {
			t.Fatalf("expected %v before input %d, got %v", StatusInputNeeded, in, status)
		}
		got = append(got, split.Outputs()...)
		split.AddInput(in)
	}
	runToHalt(t, split)
	got = append(got, split.Outputs()...)

	testutil.AssertInt64s(t, []int64{40}, want)
	testutil.AssertInt64s(t, want, got)
}

func TestVM_HaltIsSticky(t *testing.T) {
	v := mustParse(t, "104,1,99")
	runToHalt(t, v)
	pc := v.PC()

	runToHalt(t, v)
	testutil.AssertInt64Equal(t, pc, v.PC())
	testutil.AssertInt64s(t, []int64{1}, v.Outputs())
	if !v.Halted() {
		t.Error("expected Halted to report true")
	}
}

func TestVM_Clone(t *testing.T) {
	v := mustParse(t, testutil.Accumulate)
	v.AddInput(3)
	if _, err := v.Execute(); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	c := v.Clone()
	c.AddInputs(4, 0)
	runToHalt(t, c)
	testutil.AssertInt64s(t, []int64{7}, c.Outputs())

	v.AddInputs(10, 0)
	runToHalt(t, v)
	testutil.AssertInt64s(t, []int64{13}, v.Outputs())
}

// ===== Faults =====

func TestVM_Faults(t *testing.T) {
	tests := []struct {
		name    string
		program string
		want    error
	}{
		{"unknown opcode", "42,0,0,0,99", ErrInvalidOpcode},
		{"negative word", "-1,99", ErrInvalidOpcode},
		{"bad mode digit", "301,0,0,0,99", ErrInvalidOpcode},
		{"immediate destination", "11101,1,1,0,99", ErrInvalidDestination},
		{"immediate input destination", "103,0,99", ErrInvalidDestination},
		{"negative read", "4,-1,99", ErrNegativeAddress},
		{"negative write", "1101,1,1,-5,99", ErrNegativeAddress},
		{"negative relative read", "109,-4,204,0,99", ErrNegativeAddress},
		{"negative jump", "1105,1,-3,99", ErrNegativeAddress},
		{"huge write", "1101,1,1,4611686018427387904,99", ErrMemoryLimit},
		{"write past default limit", "1101,1,1,268435456,99", ErrMemoryLimit},
		{"huge relative input", "109,9000000000000000000,203,0,99", ErrMemoryLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := mustParse(t, tt.program)
			v.AddInput(1)

			_, err := v.Execute()
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}

			var execErr *ExecError
			if !errors.As(err, &execErr) {
				t.Fatalf("expected *ExecError, got %T", err)
			}

			// The fault is latched.
			_, again := v.Execute()
			if again != err {
				t.Errorf("expected latched error %v, got %v", err, again)
			}
			if v.Err() != err {
				t.Errorf("Err() = %v, want %v", v.Err(), err)
			}
		})
	}
}

func TestVM_FaultReportsPC(t *testing.T) {
	v := mustParse(t, "1101,40,2,4,99")
	_, err := v.Execute()

	var execErr *ExecError
	if !errors.As(err, &execErr) {
		t.Fatalf("expected *ExecError, got %v", err)
	}
	testutil.AssertInt64Equal(t, 4, execErr.PC)
	testutil.AssertInt64Equal(t, 42, execErr.Word)
}

func TestVM_WriteNegativePanics(t *testing.T) {
	v := NewVM(nil)
	defer func() {
		if recover() == nil {
			t.Error("expected panic on negative write")
		}
	}()
	v.Write(-1, 5)
}

// ===== Resource limits =====

func TestVM_StepLimit(t *testing.T) {
	v := mustParse(t, "1105,1,0")
	v.SetMaxSteps(100)

	_, err := v.Execute()
	if !errors.Is(err, ErrInstructionLimit) {
		t.Fatalf("expected ErrInstructionLimit, got %v", err)
	}
	if v.Err() != nil {
		t.Errorf("step limit must not latch a fault, got %v", v.Err())
	}

	// The limit applies per call, so the machine can be resumed.
	_, err = v.Execute()
	if !errors.Is(err, ErrInstructionLimit) {
		t.Fatalf("expected ErrInstructionLimit on resume, got %v", err)
	}
}

func TestVM_MemoryLimit(t *testing.T) {
	v := mustParse(t, "1101,1,1,100,99")
	if v.MemoryLimit() != DefaultMemoryLimit {
		t.Errorf("expected default limit %d, got %d", DefaultMemoryLimit, v.MemoryLimit())
	}

	v.SetMemoryLimit(100)
	_, err := v.Execute()
	if !errors.Is(err, ErrMemoryLimit) {
		t.Fatalf("expected ErrMemoryLimit, got %v", err)
	}
	if v.Len() != 5 {
		t.Errorf("memory must not grow on a refused write, got length %d", v.Len())
	}

	v = mustParse(t, "1101,1,1,100,99")
	v.SetMemoryLimit(101)
	runToHalt(t, v)
	testutil.AssertInt64Equal(t, 2, v.Read(100))

	v.SetMemoryLimit(0)
	testutil.AssertInt64Equal(t, DefaultMemoryLimit, v.MemoryLimit())
	testutil.AssertInt64Equal(t, DefaultMemoryLimit, v.Clone().MemoryLimit())
}

func TestVM_StepLimitNotHit(t *testing.T) {
	v := mustParse(t, testutil.Quine)
	v.SetMaxSteps(10000)
	runToHalt(t, v)
}

func TestVM_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	v := mustParse(t, "1105,1,0")
	v.SetContext(ctx)

	_, err := v.Execute()
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

// ===== Stats =====

func TestVM_StatsDisabled(t *testing.T) {
	v := mustParse(t, "99")
	runToHalt(t, v)
	if v.Stats() != nil {
		t.Error("expected nil stats when not enabled")
	}
}

func TestVM_Stats(t *testing.T) {
	v := mustParse(t, testutil.Echo)
	v.EnableStats()

	if _, err := v.Execute(); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	v.AddInput(3)
	runToHalt(t, v)

	stats := v.Stats()
	testutil.AssertInt64Equal(t, 2, stats.StepsExecuted)
	testutil.AssertInt64Equal(t, 1, stats.Suspensions)
	testutil.AssertInt64Equal(t, 1, stats.OpCounts["IN"])
	testutil.AssertInt64Equal(t, 1, stats.OpCounts["OUT"])
	if stats.PeakMemory != 5 {
		t.Errorf("expected peak memory 5, got %d", stats.PeakMemory)
	}

	df := stats.Frame()
	if df.NRows() != 2 {
		t.Errorf("expected 2 rows, got %d", df.NRows())
	}
	if got := df.Series[0].Value(0); got != "IN" {
		t.Errorf("expected first op IN, got %v", got)
	}
}
