package vm

import (
	"sort"

	dataframe "github.com/rocketlaunchr/dataframe-go"
)

// ExecutionStats contains metrics about VM execution for observability.
type ExecutionStats struct {
	StepsExecuted   int64            // Instructions executed, halts and suspended reads excluded
	Suspensions     int64            // Execute calls that ended with StatusInputNeeded
	ExecutionTimeNs int64            // Wall time spent inside Execute
	PeakMemory      int              // Largest memory length observed at the end of Execute
	OpCounts        map[string]int64 // Count of each opcode executed
}

// Frame returns the per-opcode counts as a two-column DataFrame ("op",
// "count") sorted by mnemonic.
func (s *ExecutionStats) Frame() *dataframe.DataFrame {
	names := make([]string, 0, len(s.OpCounts))
	for name := range s.OpCounts {
		names = append(names, name)
	}
	sort.Strings(names)

	ops := make([]interface{}, len(names))
	counts := make([]interface{}, len(names))
	for i, name := range names {
		ops[i] = name
		counts[i] = s.OpCounts[name]
	}

	return dataframe.NewDataFrame(
		dataframe.NewSeriesString("op", nil, ops...),
		dataframe.NewSeriesInt64("count", nil, counts...),
	)
}
