// Package main provides the CLI entry point for the Intcode toolchain.
//
// Usage:
//
//	intcode run -i 1 day09.txt            # Run a program with input 1
//	intcode run -ascii -a WALK day21.txt  # Send a line of ASCII input
//	intcode run -p 1=12 -p 2=2 -v day02.txt
//	intcode run -manifest run.yaml        # Run from a YAML manifest
//	intcode asm -o prog.txt program.asm   # Assemble to program text
//	intcode disasm day09.txt              # Disassemble a program
//	intcode fmt program.csv               # Print any image as program text
//	intcode repl day25.txt                # Interactive session
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/akhildatla/intcode/pkg/compiler"
	"github.com/akhildatla/intcode/pkg/embed"
	"github.com/akhildatla/intcode/pkg/loader"
	"github.com/akhildatla/intcode/pkg/repl"
	"github.com/akhildatla/intcode/pkg/vm"
)

// Version info set by GoReleaser via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ErrWaitingForInput is returned by run when the program stops for input
// that was never supplied.
var ErrWaitingForInput = errors.New("program is waiting for input")

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	if len(args) < 1 {
		return printUsage(stdout)
	}

	cmd := args[0]

	switch cmd {
	case "run":
		return runCommand(args[1:], stdout)
	case "asm":
		return asmCommand(args[1:], stdout)
	case "disasm":
		return disasmCommand(args[1:], stdout)
	case "fmt":
		return fmtCommand(args[1:], stdout)
	case "repl":
		return replCommand(args[1:], stdin, stdout)
	case "version":
		fmt.Fprintf(stdout, "intcode version %s\n", version)
		if commit != "none" {
			fmt.Fprintf(stdout, "  commit: %s\n", commit)
		}
		if date != "unknown" {
			fmt.Fprintf(stdout, "  built:  %s\n", date)
		}
		return nil
	case "help", "-h", "--help":
		return printUsage(stdout)
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

// stringList collects a repeatable string flag.
type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, ",")
}

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func runCommand(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(out)
	inputs := fs.String("i", "", "comma-separated input values")
	var asciiLines, patches stringList
	fs.Var(&asciiLines, "a", "line of ASCII input (repeatable)")
	fs.Var(&patches, "p", "memory patch addr=value applied before the run (repeatable)")
	maxSteps := fs.Int64("max-steps", 0, "instruction limit (0 = unlimited)")
	maxMemory := fs.Int64("max-memory", 0, "memory limit in cells (0 = default)")
	timeout := fs.Duration("timeout", 0, "execution timeout (0 = none)")
	showStats := fs.Bool("stats", false, "print execution statistics")
	asciiOut := fs.Bool("ascii", false, "print output values 0-255 as text")
	manifest := fs.String("manifest", "", "YAML run manifest")
	column := fs.String("column", "", "image column for .csv, .json and .parquet files")
	verbose := fs.Bool("v", false, "verbose output")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() < 1 && *manifest == "" {
		return fmt.Errorf("usage: intcode run [flags] <program>")
	}

	var opts []embed.Option
	if *inputs != "" {
		values, err := vm.ParseProgram(*inputs)
		if err != nil {
			return fmt.Errorf("parsing -i: %w", err)
		}
		opts = append(opts, embed.WithInputs(values...))
	}
	opts = append(opts, embed.WithASCII(asciiLines...))
	for _, p := range patches {
		addr, value, err := parsePatch(p)
		if err != nil {
			return err
		}
		opts = append(opts, embed.WithPatch(addr, value))
	}
	if *maxSteps > 0 {
		opts = append(opts, embed.WithMaxInstructions(*maxSteps))
	}
	if *maxMemory > 0 {
		opts = append(opts, embed.WithMaxMemory(*maxMemory))
	}
	if *timeout > 0 {
		opts = append(opts, embed.WithTimeout(*timeout))
	}
	if *showStats {
		opts = append(opts, embed.WithStats())
	}
	opts = append(opts, embed.WithColumn(*column))

	var (
		result *embed.Result
		err    error
	)
	if *manifest != "" {
		if *verbose {
			fmt.Fprintf(out, "Manifest: %s\n", *manifest)
		}
		result, err = embed.RunManifest(*manifest, opts...)
	} else {
		path := fs.Arg(0)
		if *verbose {
			fmt.Fprintf(out, "Executing: %s\n", path)
			if len(patches) > 0 {
				fmt.Fprintf(out, "Patches: %s\n", patches.String())
			}
		}
		result, err = embed.RunFile(path, opts...)
	}
	if err != nil {
		return err
	}

	if *asciiOut {
		printASCII(out, result.Outputs)
	} else {
		for _, v := range result.Outputs {
			fmt.Fprintf(out, "%d\n", v)
		}
	}

	if *verbose {
		fmt.Fprintf(out, "Status: %s, %d outputs, mem[0]=%d\n",
			result.Status, len(result.Outputs), result.Memory.Read(0))
	}
	if result.Stats != nil {
		printStats(out, result.Stats)
	}

	if result.Status == vm.StatusInputNeeded {
		return ErrWaitingForInput
	}
	return nil
}

func parsePatch(s string) (addr, value int64, err error) {
	a, v, ok := strings.Cut(s, "=")
	if !ok {
		return 0, 0, fmt.Errorf("invalid patch %q: want addr=value", s)
	}
	addr, err = strconv.ParseInt(strings.TrimSpace(a), 10, 64)
	if err != nil || addr < 0 {
		return 0, 0, fmt.Errorf("invalid patch address %q", a)
	}
	value, err = strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid patch value %q", v)
	}
	return addr, value, nil
}

// printASCII writes values 0..255 as characters and anything else as a
// number on its own line.
func printASCII(out io.Writer, values []int64) {
	var sb strings.Builder
	for _, v := range values {
		if v >= 0 && v <= vm.MaxASCII {
			sb.WriteByte(byte(v))
			continue
		}
		if sb.Len() > 0 && !strings.HasSuffix(sb.String(), "\n") {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%d\n", v)
	}
	fmt.Fprint(out, sb.String())
}

func printStats(out io.Writer, stats *vm.ExecutionStats) {
	fmt.Fprintln(out, "--- stats ---")
	fmt.Fprintf(out, "Steps:       %d\n", stats.StepsExecuted)
	fmt.Fprintf(out, "Suspensions: %d\n", stats.Suspensions)
	fmt.Fprintf(out, "Time:        %s\n", time.Duration(stats.ExecutionTimeNs))
	fmt.Fprintf(out, "Peak memory: %d\n", stats.PeakMemory)

	fmt.Fprint(out, stats.Frame().Table())
}

func asmCommand(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("asm", flag.ContinueOnError)
	fs.SetOutput(out)
	output := fs.String("o", "", "output file (default: stdout)")
	verbose := fs.Bool("v", false, "verbose output")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() < 1 {
		return fmt.Errorf("usage: intcode asm [-o output.txt] <file.asm>")
	}

	inputPath := fs.Arg(0)
	source, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("reading source: %w", err)
	}

	mem, err := compiler.Compile(string(source))
	if err != nil {
		return fmt.Errorf("assembling: %w", err)
	}

	text := vm.FormatProgram(mem) + "\n"
	if *output == "" {
		fmt.Fprint(out, text)
		return nil
	}

	if err := os.WriteFile(*output, []byte(text), 0644); err != nil {
		return fmt.Errorf("writing program: %w", err)
	}
	if *verbose {
		fmt.Fprintf(out, "Assembled %d words: %s\n", len(mem), *output)
	} else {
		fmt.Fprintf(out, "Assembled: %s\n", *output)
	}
	return nil
}

func disasmCommand(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("disasm", flag.ContinueOnError)
	fs.SetOutput(out)
	output := fs.String("o", "", "output file (default: stdout)")
	column := fs.String("column", "", "image column for tabular files")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() < 1 {
		return fmt.Errorf("usage: intcode disasm [-o output.asm] <program>")
	}

	mem, err := loader.Load(fs.Arg(0), loader.WithColumn(*column))
	if err != nil {
		return err
	}

	asm := vm.Disassemble(mem)

	if *output != "" {
		if err := os.WriteFile(*output, []byte(asm), 0644); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
		fmt.Fprintf(out, "Disassembled to: %s\n", *output)
	} else {
		fmt.Fprint(out, asm)
	}

	return nil
}

func fmtCommand(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("fmt", flag.ContinueOnError)
	fs.SetOutput(out)
	column := fs.String("column", "", "image column for tabular files")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() < 1 {
		return fmt.Errorf("usage: intcode fmt <program>")
	}

	mem, err := loader.Load(fs.Arg(0), loader.WithColumn(*column))
	if err != nil {
		return err
	}

	fmt.Fprintln(out, vm.FormatProgram(mem))
	return nil
}

func replCommand(args []string, in io.Reader, out io.Writer) error {
	fs := flag.NewFlagSet("repl", flag.ContinueOnError)
	fs.SetOutput(out)
	numeric := fs.Bool("numeric", false, "start in numeric mode (default: ascii mode)")
	column := fs.String("column", "", "image column for tabular files")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() < 1 {
		return fmt.Errorf("usage: intcode repl <program>")
	}

	mem, err := loader.Load(fs.Arg(0), loader.WithColumn(*column))
	if err != nil {
		return err
	}

	r := repl.New(mem)
	if *numeric {
		r.SetMode(repl.ModeNumeric)
	}

	r.Start(in, out)
	return nil
}

func printUsage(out io.Writer) error {
	fmt.Fprintln(out, `Intcode - interpreter and toolchain for Intcode programs

Usage:
  intcode <command> [arguments]

Commands:
  run <program>         Run a program and print its output
  asm <file.asm>        Assemble source to program text
  disasm <program>      Disassemble a program
  fmt <program>         Print a program image as comma-separated text
  repl <program>        Start an interactive session
  version               Print version information
  help                  Show this help message

Programs are plain comma-separated text, or a .csv, .json or .parquet file
whose -column column holds the memory image. CSV and Parquet default to the
first column; JSON objects with more than one key need -column.

Run Options:
  -i <values>           Comma-separated input values
  -a <line>             Line of ASCII input (repeatable)
  -p <addr=value>       Patch memory before the run (repeatable)
  -max-steps <n>        Instruction limit
  -max-memory <cells>   Memory limit (default 268435456 cells)
  -timeout <duration>   Execution timeout
  -stats                Print execution statistics
  -ascii                Print output values 0-255 as text
  -manifest <file>      Run from a YAML manifest
  -column <name>        Image column for tabular files
  -v                    Verbose output

Asm Options:
  -o <file>             Output file (default: stdout)
  -v                    Verbose output

Disasm Options:
  -o <file>             Output file (default: stdout)
  -column <name>        Image column for tabular files

REPL Options:
  -numeric              Start in numeric mode (default: ascii mode)
  -column <name>        Image column for tabular files

Examples:
  intcode run -i 5 day05.txt
  intcode run -p 1=12 -p 2=2 -v day02.txt
  intcode run -ascii -a "NOT A J" -a WALK day21.txt
  intcode asm -o program.txt program.asm
  intcode disasm day09.txt
  intcode repl day25.txt`)
	return nil
}
