// Package history materializes point-in-time rolling-window snapshots
// of author percentiles and curator efficiencies. Snapshots are
// append-only: once a (subject, post, window) row exists it is never
// recomputed, so a snapshot always reflects what was known when the
// anchoring post appeared.
package history

import (
	"sort"

	"steem-curation-lab/internal/domain"
)

// Compute summarizes a window population. The median is the lower
// median: the element at index (n-1)/2 of the ascending-sorted values,
// so Compute is deterministic for even-sized populations. An empty
// population yields zeroed stats with Count 0.
func Compute(values []float64) domain.WindowStats {
	n := len(values)
	if n == 0 {
		return domain.WindowStats{}
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}

	return domain.WindowStats{
		Count:  n,
		Min:    sorted[0],
		Max:    sorted[n-1],
		Avg:    sum / float64(n),
		Median: sorted[(n-1)/2],
	}
}
