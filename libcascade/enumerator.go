package libcascade

import "iter"

// Successors yields, in ascending order, every b in [1, maxVal] such that (a, b, n) is a valid triple.
// A maxVal <= 0 selects IndexBound(n), which makes the enumeration exhaustive for a and n.
//
// Each range over the returned sequence recomputes from scratch.
func (c *Cascade) Successors(a, n, maxVal int) iter.Seq[int] {
	if maxVal <= 0 {
		maxVal = c.IndexBound(n)
	}
	return func(yield func(int) bool) {
		for b := 1; b <= maxVal; b++ {
			if c.IsValidTriple(a, b, n) && !yield(b) {
				return
			}
		}
	}
}

// CountSuccessors returns the number of valid b for a at position n.
func (c *Cascade) CountSuccessors(a, n int) int {
	count := 0
	for range c.Successors(a, n, 0) {
		count++
	}
	return count
}

// Successors enumerates successors under the default cascade.
func Successors(a, n, maxVal int) iter.Seq[int] {
	return Default.Successors(a, n, maxVal)
}

// CountSuccessors counts successors under the default cascade.
func CountSuccessors(a, n int) int {
	return Default.CountSuccessors(a, n)
}
