package percentile

import "sort"

// Ranks assigns each value its day-relative percentile: for a
// population of N values, percentile = floor(countStrictlyLess * 100 / N).
// Equal values receive equal percentiles. For N distinct ascending
// values v1..vN this reduces to floor((k-1)/N * 100), so the range is
// 0 (lowest) to at most 99 (highest).
func Ranks(values []float64) []int {
	n := len(values)
	if n == 0 {
		return nil
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	result := make([]int, n)
	for i, v := range values {
		// countStrictlyLess via binary search on the sorted copy.
		less := sort.SearchFloat64s(sorted, v)
		result[i] = less * 100 / n
	}
	return result
}
