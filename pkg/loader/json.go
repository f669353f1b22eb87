package loader

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/rocketlaunchr/dataframe-go/imports"

	"github.com/akhildatla/intcode/pkg/vm"
)

// LoadJSON reads a JSON array of objects and returns the named field as a
// memory image:
//
//	[{"word": 1}, {"word": 0}, {"word": 0}, {"word": 0}, {"word": 99}]
//
// Object keys have no stable column order, so column may be empty only when
// the objects have a single key; otherwise ErrColumnRequired is returned.
//
// JSON numbers may pass through float64, so words beyond 2^53 should use the
// text or CSV formats.
func LoadJSON(path, column string) (vm.Memory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if len(data) == 0 {
		return nil, ErrEmptyImage
	}

	ctx := context.Background()
	df, err := imports.LoadFromJSON(ctx, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	if column == "" && df != nil && len(df.Series) > 1 {
		return nil, fmt.Errorf("%w: JSON objects have %d keys", ErrColumnRequired, len(df.Series))
	}

	return frameImage(df, column)
}
