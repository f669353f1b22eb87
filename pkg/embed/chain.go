package embed

import (
	"fmt"

	"github.com/akhildatla/intcode/pkg/vm"
)

// Chain runs one machine per phase setting, wiring each machine's output to
// the next machine's input, and returns the last value the final machine
// produced.
//
// Every machine first receives its phase setting; the first machine then
// receives seed. With feedback the final machine's output is routed back to
// the first and the machines take turns until all of them halt. Input
// options are ignored; limits apply to each machine separately.
func Chain(image vm.Memory, phases []int64, seed int64, feedback bool, opts ...Option) (int64, error) {
	if len(phases) == 0 {
		return 0, ErrNoPhases
	}
	options := buildOptions(opts)

	ctx, cancel := runContext(options)
	defer cancel()

	machines := make([]*vm.VM, len(phases))
	for i, phase := range phases {
		machine, err := newMachine(image, options)
		if err != nil {
			return 0, err
		}
		machine.SetContext(ctx)
		machine.AddInput(phase)
		machines[i] = machine
	}
	machines[0].AddInput(seed)

	var (
		last int64
		seen bool
	)
	for {
		progressed := false
		waiting := false

		for i, machine := range machines {
			if machine.Halted() {
				continue
			}

			status, err := machine.Execute()
			if err != nil {
				return 0, fmt.Errorf("machine %d: %w", i, mapError(err))
			}
			if status == vm.StatusInputNeeded {
				waiting = true
			}

			outs := machine.Outputs()
			if len(outs) == 0 {
				continue
			}
			progressed = true

			next := i + 1
			if next == len(machines) {
				last, seen = outs[len(outs)-1], true
				if !feedback {
					continue
				}
				next = 0
			}
			machines[next].AddInputs(outs...)
		}

		if !waiting || !feedback {
			break
		}
		if !progressed {
			return 0, ErrDeadlock
		}
	}

	if !seen {
		return 0, ErrNoOutput
	}
	return last, nil
}
