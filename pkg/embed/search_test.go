package embed

import (
	"context"
	"errors"
	"testing"

	"github.com/akhildatla/intcode/internal/testutil"
	"github.com/akhildatla/intcode/pkg/vm"
)

// nounVerb patches cells 1 and 2 from a candidate index, five values each.
func nounVerb(i int, m *vm.VM) error {
	m.Write(1, int64(i/5))
	m.Write(2, int64(i%5))
	return nil
}

func TestSearch_LowestAccepted(t *testing.T) {
	image := mustImage(t, "1,0,0,0,99")

	for _, parallelism := range []int{1, 4, 0} {
		idx, result, err := Search(context.Background(), image, 25, nounVerb,
			func(i int, r *Result) bool { return r.Memory.Read(0) == 100 },
			WithParallelism(parallelism),
		)
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}
		if idx != 4 {
			t.Errorf("parallelism %d: expected index 4, got %d", parallelism, idx)
		}
		testutil.AssertInt64s(t, []int64{100, 0, 4, 0, 99}, result.Memory)
	}
}

func TestSearch_NotFound(t *testing.T) {
	image := mustImage(t, "1,0,0,0,99")

	_, _, err := Search(context.Background(), image, 25, nounVerb,
		func(i int, r *Result) bool { return r.Memory.Read(0) == -1 },
	)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSearch_FaultingCandidatesRejected(t *testing.T) {
	image := mustImage(t, "1,0,0,0,99")

	idx, _, err := Search(context.Background(), image, 3,
		func(i int, m *vm.VM) error {
			m.Write(0, int64(i))
			return nil
		},
		func(i int, r *Result) bool { return true },
	)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if idx != 1 {
		t.Errorf("expected index 1, got %d", idx)
	}
}

func TestSearch_PrepareError(t *testing.T) {
	boom := errors.New("boom")

	_, _, err := Search(context.Background(), mustImage(t, "99"), 10,
		func(i int, m *vm.VM) error { return boom },
		func(i int, r *Result) bool { return true },
	)
	if !errors.Is(err, boom) {
		t.Errorf("expected prepare error, got %v", err)
	}
}

func TestSearch_Inputs(t *testing.T) {
	idx, result, err := Search(context.Background(), mustImage(t, testutil.Echo), 5,
		func(i int, m *vm.VM) error {
			m.AddInput(int64(i * 10))
			return nil
		},
		func(i int, r *Result) bool {
			last, ok := r.Last()
			return ok && last >= 30
		},
	)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if idx != 3 {
		t.Errorf("expected index 3, got %d", idx)
	}
	testutil.AssertInt64s(t, []int64{30}, result.Outputs)
}

func TestSearch_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := Search(ctx, mustImage(t, "99"), 10, nil,
		func(i int, r *Result) bool { return true },
	)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestSearch_Empty(t *testing.T) {
	_, _, err := Search(context.Background(), mustImage(t, "99"), 0, nil,
		func(i int, r *Result) bool { return true },
	)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
