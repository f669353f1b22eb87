// Package repl runs an Intcode program interactively: each line typed is
// queued as program input and the program runs until it needs more.
package repl

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/akhildatla/intcode/pkg/vm"
)

const (
	promptASCII   = "ascii> "
	promptNumeric = "num> "

	// maxDump bounds the cells a single .mem command prints.
	maxDump = 1024
)

// Mode represents how input lines and output values are translated.
type Mode int

const (
	ModeASCII   Mode = iota // Lines are sent as characters, output printed as text
	ModeNumeric             // Lines are comma or space separated integers
)

// String returns the name of a mode.
func (m Mode) String() string {
	if m == ModeNumeric {
		return "numeric"
	}
	return "ascii"
}

// REPL provides an interactive session around one program.
type REPL struct {
	mode    Mode
	image   vm.Memory
	vm      *vm.VM
	history []string
	done    bool
}

// New creates a REPL for a program image. The image is not modified.
func New(image vm.Memory) *REPL {
	r := &REPL{
		mode:    ModeASCII,
		image:   image.Clone(),
		history: []string{},
	}
	r.reset()
	return r
}

// SetMode sets the input mode.
func (r *REPL) SetMode(mode Mode) {
	r.mode = mode
}

// Start runs the program until it first needs input and then loops reading
// lines from in until EOF or .quit.
func (r *REPL) Start(in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)

	fmt.Fprintln(out, "Intcode REPL")
	fmt.Fprintln(out, "Type '.help' for available commands, '.quit' to exit")
	fmt.Fprintln(out)

	r.resume(out)

	for !r.done {
		if r.mode == ModeNumeric {
			fmt.Fprint(out, promptNumeric)
		} else {
			fmt.Fprint(out, promptASCII)
		}

		if !scanner.Scan() {
			break
		}

		line := scanner.Text()
		if strings.HasPrefix(strings.TrimSpace(line), ".") {
			r.handleCommand(line, out)
			continue
		}
		r.eval(line, out)
	}
}

func (r *REPL) handleCommand(line string, out io.Writer) {
	parts := strings.Fields(line)

	switch parts[0] {
	case ".quit", ".exit", ".q":
		fmt.Fprintln(out, "Goodbye!")
		r.done = true

	case ".help", ".h", ".?":
		r.printHelp(out)

	case ".mode":
		if len(parts) < 2 {
			fmt.Fprintf(out, "Current mode: %s\n", r.mode)
			return
		}
		switch parts[1] {
		case "ascii":
			r.mode = ModeASCII
			fmt.Fprintln(out, "Switched to ascii mode")
		case "numeric":
			r.mode = ModeNumeric
			fmt.Fprintln(out, "Switched to numeric mode")
		default:
			fmt.Fprintln(out, "Unknown mode. Use 'ascii' or 'numeric'")
		}

	case ".mem":
		r.dumpMemory(parts[1:], out)

	case ".stats":
		r.printStats(out)

	case ".state":
		fmt.Fprintf(out, "pc=%d rb=%d mem=%d inputs=%d halted=%v\n",
			r.vm.PC(), r.vm.RelativeBase(), r.vm.Len(), r.vm.PendingInputs(), r.vm.Halted())
		if err := r.vm.Err(); err != nil {
			fmt.Fprintf(out, "fault: %v\n", err)
		}

	case ".history":
		for i, cmd := range r.history {
			fmt.Fprintf(out, "%3d: %s\n", i+1, cmd)
		}

	case ".reset":
		r.reset()
		fmt.Fprintln(out, "Program reset")
		r.resume(out)

	default:
		fmt.Fprintf(out, "Unknown command: %s (type .help)\n", parts[0])
	}
}

func (r *REPL) eval(line string, out io.Writer) {
	if r.vm.Halted() {
		fmt.Fprintln(out, "Program halted; use .reset to start over")
		return
	}

	if r.mode == ModeNumeric {
		values, err := parseValues(line)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		if len(values) == 0 {
			return
		}
		r.vm.AddInputs(values...)
	} else {
		r.vm.AddASCII(line)
	}

	r.history = append(r.history, line)
	r.resume(out)
}

// resume runs the program until it halts, faults or needs input, printing
// whatever it produced.
func (r *REPL) resume(out io.Writer) {
	status, err := r.vm.Execute()
	r.printOutput(out)

	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}
	if status == vm.StatusDone {
		fmt.Fprintln(out, "Program halted")
	}
}

func (r *REPL) printOutput(out io.Writer) {
	if r.mode == ModeNumeric {
		for _, v := range r.vm.Outputs() {
			fmt.Fprintf(out, "=> %d\n", v)
		}
		return
	}

	for {
		text, value, ok := r.vm.ReadASCII()
		fmt.Fprint(out, text)
		if !ok {
			return
		}
		if text != "" && !strings.HasSuffix(text, "\n") {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "=> %d\n", value)
	}
}

func (r *REPL) dumpMemory(args []string, out io.Writer) {
	if len(args) == 0 {
		fmt.Fprintln(out, "Usage: .mem <addr> [count]")
		return
	}

	addr, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || addr < 0 {
		fmt.Fprintf(out, "Error: invalid address %q\n", args[0])
		return
	}

	count := int64(1)
	if len(args) > 1 {
		count, err = strconv.ParseInt(args[1], 10, 64)
		if err != nil || count < 1 {
			fmt.Fprintf(out, "Error: invalid count %q\n", args[1])
			return
		}
		if count > maxDump {
			fmt.Fprintf(out, "Error: count %d exceeds %d cells\n", count, maxDump)
			return
		}
	}

	for i := int64(0); i < count; i++ {
		fmt.Fprintf(out, "%04d: %d\n", addr+i, r.vm.Read(addr+i))
	}
}

func (r *REPL) printStats(out io.Writer) {
	stats := r.vm.Stats()
	fmt.Fprintf(out, "Steps:       %d\n", stats.StepsExecuted)
	fmt.Fprintf(out, "Suspensions: %d\n", stats.Suspensions)
	fmt.Fprintf(out, "Peak memory: %d\n", stats.PeakMemory)

	fmt.Fprint(out, stats.Frame().Table())
}

func (r *REPL) reset() {
	r.vm = vm.NewVM(r.image.Clone())
	r.vm.EnableStats()
}

// parseValues splits a line on commas and whitespace into integers.
func parseValues(line string) ([]int64, error) {
	fields := strings.FieldsFunc(line, func(c rune) bool {
		return c == ',' || c == ' ' || c == '\t'
	})

	values := make([]int64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", f)
		}
		values = append(values, v)
	}
	return values, nil
}

func (r *REPL) printHelp(out io.Writer) {
	help := `
Intcode REPL Commands:
  .help, .h, .?          Show this help message
  .quit, .exit, .q       Exit the REPL
  .mode [ascii|numeric]  Show or set input mode
  .mem <addr> [count]    Show memory cells (at most 1024)
  .stats                 Show execution statistics
  .state                 Show program counter, relative base and memory size
  .history               Show input history
  .reset                 Restart the program from its original image

Any other line is sent to the program as input:
  ascii mode     the characters of the line followed by a newline
  numeric mode   comma or space separated integers
`
	fmt.Fprint(out, help)
}
