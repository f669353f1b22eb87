package embed

import (
	"context"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/akhildatla/intcode/pkg/vm"
)

// PrepareFunc readies candidate i before it runs, typically by patching
// memory or queueing input.
type PrepareFunc func(i int, machine *vm.VM) error

// AcceptFunc reports whether candidate i produced the wanted result.
type AcceptFunc func(i int, result *Result) bool

// Search runs candidates 0..n-1 of image concurrently and returns the lowest
// accepted index with its result.
//
// Candidates that fault or hit a limit are rejected rather than failing the
// search. An error from prepare, or cancellation of ctx, stops the search.
// Candidates above an already accepted index are skipped.
//
// Example, finding the noun and verb that leave 19690720 in cell 0:
//
//	i, _, err := embed.Search(ctx, image, 10000,
//	    func(i int, m *vm.VM) error {
//	        m.Write(1, int64(i/100))
//	        m.Write(2, int64(i%100))
//	        return nil
//	    },
//	    func(i int, r *embed.Result) bool { return r.Memory.Read(0) == 19690720 },
//	)
func Search(ctx context.Context, image vm.Memory, n int, prepare PrepareFunc, accept AcceptFunc, opts ...Option) (int, *Result, error) {
	if n <= 0 {
		return -1, nil, ErrNotFound
	}
	options := buildOptions(opts)

	limit := options.Parallelism
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	results := make([]*Result, n)
	var best atomic.Int64
	best.Store(int64(n))

	for i := 0; i < n; i++ {
		if gctx.Err() != nil || int64(i) > best.Load() {
			break
		}

		i := i
		g.Go(func() error {
			result, err := runCandidate(gctx, image, i, prepare, options)
			if err != nil {
				return err
			}
			if result == nil || !accept(i, result) {
				return nil
			}

			results[i] = result
			for {
				cur := best.Load()
				if int64(i) >= cur || best.CompareAndSwap(cur, int64(i)) {
					return nil
				}
			}
		})
	}

	if err := g.Wait(); err != nil {
		return -1, nil, err
	}
	if err := ctx.Err(); err != nil {
		return -1, nil, err
	}

	if idx := int(best.Load()); idx < n {
		return idx, results[idx], nil
	}
	return -1, nil, ErrNotFound
}

// runCandidate returns a nil result for candidates that failed to run.
func runCandidate(ctx context.Context, image vm.Memory, i int, prepare PrepareFunc, options *Options) (*Result, error) {
	machine, err := newMachine(image, options)
	if err != nil {
		return nil, err
	}
	feed(machine, options)
	if prepare != nil {
		if err := prepare(i, machine); err != nil {
			return nil, err
		}
	}

	runOptions := *options
	runOptions.Context = ctx
	runCtx, cancel := runContext(&runOptions)
	defer cancel()
	machine.SetContext(runCtx)

	status, err := machine.Execute()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, nil
	}

	return &Result{
		Outputs: machine.Outputs(),
		Memory:  machine.Memory(),
		Status:  status,
		Stats:   machine.Stats(),
	}, nil
}
