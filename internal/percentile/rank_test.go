package percentile

import "testing"

func TestRanks_DistinctValues(t *testing.T) {
	// Five posts valued {5,1,4,2,3}: ascending ranks 5,1,4,2,3 →
	// percentiles floor((rank-1)/5*100).
	values := []float64{5, 1, 4, 2, 3}
	want := []int{80, 0, 60, 20, 40}

	got := Ranks(values)
	if len(got) != len(want) {
		t.Fatalf("expected %d ranks, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("value %f: expected percentile %d, got %d", values[i], want[i], got[i])
		}
	}
}

func TestRanks_TopNeverReaches100(t *testing.T) {
	for _, n := range []int{1, 2, 10, 100} {
		values := make([]float64, n)
		for i := range values {
			values[i] = float64(i)
		}
		got := Ranks(values)
		for i, p := range got {
			if p < 0 || p > 99 {
				t.Errorf("n=%d: percentile out of range at %d: %d", n, i, p)
			}
		}
	}
}

func TestRanks_TiesShareRank(t *testing.T) {
	values := []float64{1, 2, 2, 3}
	got := Ranks(values)

	if got[1] != got[2] {
		t.Errorf("equal values must share a percentile: got %d and %d", got[1], got[2])
	}
	// Ties take the rank of the first element of the group.
	if got[1] != 25 {
		t.Errorf("expected tied percentile 25, got %d", got[1])
	}
	if got[0] != 0 || got[3] != 75 {
		t.Errorf("unexpected boundary percentiles: %v", got)
	}
}

func TestRanks_SinglePost(t *testing.T) {
	got := Ranks([]float64{7.5})
	if len(got) != 1 || got[0] != 0 {
		t.Errorf("single post must rank 0, got %v", got)
	}
}

func TestRanks_Empty(t *testing.T) {
	if got := Ranks(nil); got != nil {
		t.Errorf("expected nil for empty population, got %v", got)
	}
}
