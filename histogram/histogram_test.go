package histogram

import "testing"

func TestBucketingPowersOfTwo(t *testing.T) {
	h := New()
	h.Add(0)
	h.Add(1)
	h.Add(2)
	h.Add(1023)

	if h.Count() != 4 {
		t.Fatalf("count got %d want 4", h.Count())
	}
}

func TestPercentileMonotone(t *testing.T) {
	h := New()
	for _, v := range []uint64{1, 2, 4, 8, 16, 32, 64, 128, 256, 512} {
		h.Add(v)
	}

	prev := h.Percentile(0.1)
	for _, p := range []float64{0.2, 0.5, 0.75, 0.9, 0.99, 1.0} {
		cur := h.Percentile(p)
		if cur < prev {
			t.Fatalf("percentile not monotone: p=%v got %d < prev %d", p, cur, prev)
		}
		prev = cur
	}
}

func TestPercentileEmptyIsZero(t *testing.T) {
	h := New()
	if h.Percentile(0.5) != 0 {
		t.Fatalf("expected 0 on empty histogram")
	}
}

func TestPercentileUpperBoundOfBucket(t *testing.T) {
	h := New()
	h.Add(5) // bucket 2: [4,8) -> upper bound 8
	if got := h.Percentile(1.0); got != 8 {
		t.Fatalf("got %d want 8", got)
	}
}
