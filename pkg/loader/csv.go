package loader

import (
	"context"
	"os"

	"github.com/rocketlaunchr/dataframe-go/imports"

	"github.com/akhildatla/intcode/pkg/vm"
)

// LoadCSV reads a CSV file with a header row and returns the named column
// (or the first column) as a memory image.
func LoadCSV(path, column string) (vm.Memory, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	ctx := context.Background()
	df, err := imports.LoadFromCSV(ctx, file, imports.CSVLoadOptions{
		InferDataTypes: true,
	})
	if err != nil {
		return nil, err
	}

	return frameImage(df, column)
}
