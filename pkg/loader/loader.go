// Package loader reads Intcode memory images from files.
//
// Plain text files hold the usual single line of comma-separated integers.
// Tabular files (.csv, .json, .parquet) are loaded with dataframe-go and the
// image is taken from one column, top to bottom. CSV and Parquet default to
// the first column; JSON needs the column named unless objects have one key:
//
//	image, err := loader.Load("day09.txt")
//	image, err := loader.Load("program.csv", loader.WithColumn("word"))
package loader

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	dataframe "github.com/rocketlaunchr/dataframe-go"

	"github.com/akhildatla/intcode/pkg/vm"
)

// Error definitions
var (
	ErrColumnNotFound = errors.New("column not found")
	ErrColumnRequired = errors.New("column must be named")
	ErrNotInteger     = errors.New("cell is not an integer")
	ErrEmptyImage     = errors.New("empty program image")
)

// Options configures how a program image is read.
type Options struct {
	// Column names the column holding the image in tabular formats.
	// Empty means the first column, which JSON only allows for single-key
	// objects.
	Column string
}

// Option is a functional option for configuring loading.
type Option func(*Options)

// WithColumn selects the column of a tabular file that holds the image.
func WithColumn(name string) Option {
	return func(o *Options) {
		o.Column = name
	}
}

// Load reads a memory image, choosing the format from the file extension.
// Unknown extensions are read as program text.
func Load(path string, opts ...Option) (vm.Memory, error) {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return LoadCSV(path, options.Column)
	case ".json":
		return LoadJSON(path, options.Column)
	case ".parquet":
		return LoadParquet(path, options.Column)
	default:
		return LoadText(path)
	}
}

// LoadText reads a file containing comma-separated program text.
func LoadText(path string) (vm.Memory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	mem, err := vm.ParseProgram(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return mem, nil
}

// frameImage extracts the memory image from one column of a frame.
func frameImage(df *dataframe.DataFrame, column string) (vm.Memory, error) {
	if df == nil || len(df.Series) == 0 {
		return nil, ErrEmptyImage
	}

	series := df.Series[0]
	if column != "" {
		idx, err := df.NameToColumn(column)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, column)
		}
		series = df.Series[idx]
	}

	n := series.NRows()
	if n == 0 {
		return nil, ErrEmptyImage
	}

	mem := make(vm.Memory, n)
	for row := 0; row < n; row++ {
		v, err := cellInt64(series.Value(row))
		if err != nil {
			return nil, fmt.Errorf("column %s row %d: %w", series.Name(), row, err)
		}
		mem[row] = v
	}
	return mem, nil
}

func cellInt64(cell interface{}) (int64, error) {
	switch v := cell.(type) {
	case int64:
		return v, nil
	case float64:
		if v != math.Trunc(v) || v < math.MinInt64 || v >= math.MaxInt64 {
			return 0, fmt.Errorf("%w: %v", ErrNotInteger, v)
		}
		return int64(v), nil
	case string:
		return parseCell(v)
	case fmt.Stringer:
		// json.Number and similar decoder types.
		return parseCell(v.String())
	default:
		return 0, fmt.Errorf("%w: %v", ErrNotInteger, cell)
	}
}

func parseCell(s string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrNotInteger, s)
	}
	return n, nil
}
