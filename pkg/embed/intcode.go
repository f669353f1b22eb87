// Package embed provides the Go embedding API for Intcode.
//
// Pass program text, get its outputs back.
//
// Basic usage:
//
//	result, err := embed.Run("3,9,8,9,10,9,4,9,99,-1,8", embed.WithInputs(8))
//	// result.Outputs == []int64{1}
//
// Patched runs, limits and statistics are configured with options:
//
//	result, err := embed.RunFile("day02.txt",
//	    embed.WithPatch(1, 12),
//	    embed.WithPatch(2, 2),
//	    embed.WithMaxInstructions(1_000_000),
//	    embed.WithMaxMemory(1<<20),
//	    embed.WithTimeout(5*time.Second),
//	)
//	// result.Memory[0] holds the answer
package embed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/akhildatla/intcode/pkg/loader"
	"github.com/akhildatla/intcode/pkg/vm"
)

// Common errors
var (
	ErrTimeout          = errors.New("execution timeout exceeded")
	ErrInstructionLimit = errors.New("instruction limit exceeded")
	ErrMemoryLimit      = errors.New("memory limit exceeded")
	ErrInvalidPatch     = errors.New("invalid patch address")
	ErrDeadlock         = errors.New("every machine is waiting for input")
	ErrNoPhases         = errors.New("chain needs at least one phase")
	ErrNoOutput         = errors.New("program produced no output")
	ErrNotFound         = errors.New("no candidate accepted")
)

// Result is the outcome of a run.
type Result struct {
	// Outputs holds every value the program produced, in order.
	Outputs []int64

	// Memory is the final memory image.
	Memory vm.Memory

	// Status is StatusDone when the program halted, or StatusInputNeeded
	// when it stopped waiting for input that was never supplied.
	Status vm.Status

	// Stats is set when WithStats was given.
	Stats *vm.ExecutionStats
}

// Last returns the final output value.
func (r *Result) Last() (int64, bool) {
	if len(r.Outputs) == 0 {
		return 0, false
	}
	return r.Outputs[len(r.Outputs)-1], true
}

// Patch overwrites one memory cell before a run.
type Patch struct {
	Addr, Value int64
}

// Options configures execution behavior.
type Options struct {
	// Inputs are queued before the program starts.
	Inputs []int64

	// ASCII lines are queued after Inputs, each byte then a newline.
	ASCII []string

	// Patches are applied to a copy of the image before the run.
	Patches []Patch

	// MaxInstructions limits the number of instructions executed.
	// Zero means unlimited.
	MaxInstructions int64

	// MaxMemory caps memory growth in cells.
	// Zero means vm.DefaultMemoryLimit.
	MaxMemory int64

	// Timeout sets maximum execution time. Zero means no timeout.
	Timeout time.Duration

	// Context for cancellation. If nil, context.Background() is used.
	Context context.Context

	// Stats enables execution statistics.
	Stats bool

	// Column selects the image column when RunFile reads a tabular file.
	Column string

	// Parallelism bounds the number of machines Search runs at once.
	// Zero means GOMAXPROCS.
	Parallelism int
}

// Option is a functional option for configuring execution.
type Option func(*Options)

// WithInputs queues input values.
func WithInputs(values ...int64) Option {
	return func(o *Options) {
		o.Inputs = append(o.Inputs, values...)
	}
}

// WithASCII queues lines of ASCII input.
func WithASCII(lines ...string) Option {
	return func(o *Options) {
		o.ASCII = append(o.ASCII, lines...)
	}
}

// WithPatch overwrites one memory cell before the run.
func WithPatch(addr, value int64) Option {
	return func(o *Options) {
		o.Patches = append(o.Patches, Patch{Addr: addr, Value: value})
	}
}

// WithMaxInstructions sets instruction limit.
func WithMaxInstructions(n int64) Option {
	return func(o *Options) {
		o.MaxInstructions = n
	}
}

// WithMaxMemory sets the memory limit in cells.
func WithMaxMemory(cells int64) Option {
	return func(o *Options) {
		o.MaxMemory = cells
	}
}

// WithTimeout sets execution timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.Timeout = d
	}
}

// WithContext sets the context for cancellation.
func WithContext(ctx context.Context) Option {
	return func(o *Options) {
		o.Context = ctx
	}
}

// WithStats enables execution statistics on the result.
func WithStats() Option {
	return func(o *Options) {
		o.Stats = true
	}
}

// WithColumn selects the image column for tabular files.
func WithColumn(name string) Option {
	return func(o *Options) {
		o.Column = name
	}
}

// WithParallelism bounds concurrent machines in Search.
func WithParallelism(n int) Option {
	return func(o *Options) {
		o.Parallelism = n
	}
}

func buildOptions(opts []Option) *Options {
	options := &Options{
		Context: context.Background(),
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.Context == nil {
		options.Context = context.Background()
	}
	return options
}

// Run parses program text and runs it to completion.
func Run(program string, opts ...Option) (*Result, error) {
	image, err := vm.ParseProgram(program)
	if err != nil {
		return nil, err
	}
	return RunMemory(image, opts...)
}

// RunFile loads a program image from path and runs it.
func RunFile(path string, opts ...Option) (*Result, error) {
	options := buildOptions(opts)

	image, err := loader.Load(path, loader.WithColumn(options.Column))
	if err != nil {
		return nil, err
	}
	return RunMemory(image, opts...)
}

// RunManifest runs the program a YAML manifest describes. Options given
// here are applied after the manifest's own settings.
func RunManifest(path string, opts ...Option) (*Result, error) {
	m, err := loader.LoadManifest(path)
	if err != nil {
		return nil, err
	}

	image, err := m.Image()
	if err != nil {
		return nil, err
	}

	base := []Option{
		WithInputs(m.Inputs...),
		WithASCII(m.ASCII...),
		WithMaxInstructions(m.MaxSteps),
		WithMaxMemory(m.MaxMemory),
		WithTimeout(m.Timeout),
	}
	return RunMemory(image, append(base, opts...)...)
}

// RunMemory runs a copy of image. The image itself is not modified.
//
// A program that stops waiting for input is not an error: the result
// carries StatusInputNeeded and whatever output was produced.
func RunMemory(image vm.Memory, opts ...Option) (*Result, error) {
	options := buildOptions(opts)

	machine, err := newMachine(image, options)
	if err != nil {
		return nil, err
	}
	feed(machine, options)

	ctx, cancel := runContext(options)
	defer cancel()
	machine.SetContext(ctx)

	status, err := machine.Execute()
	if err != nil {
		return nil, mapError(err)
	}

	return &Result{
		Outputs: machine.Outputs(),
		Memory:  machine.Memory(),
		Status:  status,
		Stats:   machine.Stats(),
	}, nil
}

// newMachine patches a copy of image and applies limits. Inputs are left
// to the caller so Chain can queue phase settings first.
func newMachine(image vm.Memory, options *Options) (*vm.VM, error) {
	limit := options.MaxMemory
	if limit <= 0 {
		limit = vm.DefaultMemoryLimit
	}

	mem := image.Clone()
	for _, p := range options.Patches {
		if p.Addr < 0 {
			return nil, fmt.Errorf("%w: %d", ErrInvalidPatch, p.Addr)
		}
		if p.Addr >= limit {
			return nil, fmt.Errorf("%w: patch at %d, limit %d cells", ErrMemoryLimit, p.Addr, limit)
		}
		mem.Write(p.Addr, p.Value)
	}

	machine := vm.NewVM(mem)
	machine.SetMaxSteps(options.MaxInstructions)
	machine.SetMemoryLimit(limit)
	if options.Stats {
		machine.EnableStats()
	}
	return machine, nil
}

func feed(machine *vm.VM, options *Options) {
	machine.AddInputs(options.Inputs...)
	for _, line := range options.ASCII {
		machine.AddASCII(line)
	}
}

func runContext(options *Options) (context.Context, context.CancelFunc) {
	if options.Timeout > 0 {
		return context.WithTimeout(options.Context, options.Timeout)
	}
	return context.WithCancel(options.Context)
}

// mapError maps VM errors to embed package errors.
func mapError(err error) error {
	switch {
	case errors.Is(err, vm.ErrInstructionLimit):
		return ErrInstructionLimit
	case errors.Is(err, vm.ErrMemoryLimit):
		return ErrMemoryLimit
	case errors.Is(err, context.DeadlineExceeded):
		return ErrTimeout
	}
	return err
}
