package loader

import (
	"context"

	"github.com/rocketlaunchr/dataframe-go/imports"
	"github.com/xitongsys/parquet-go-source/local"

	"github.com/akhildatla/intcode/pkg/vm"
)

// LoadParquet reads a Parquet file and returns the named column (or the
// first column) as a memory image.
func LoadParquet(path, column string) (vm.Memory, error) {
	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return nil, err
	}
	defer fr.Close()

	ctx := context.Background()
	df, err := imports.LoadFromParquet(ctx, fr)
	if err != nil {
		return nil, err
	}

	return frameImage(df, column)
}
