package libcascade

import (
	"fmt"
	"slices"
	"strings"

	"github.com/fine-structures/coralia/gocascade"
	"github.com/plan-systems/klog"
)

// maxListedMissing is the most missing values a coverage failure will enumerate.
const maxListedMissing = 10

// CheckInjectivity verifies no value appears twice.
func CheckInjectivity(seq gocascade.Sequence) gocascade.CheckResult {
	res := gocascade.CheckResult{
		Name: gocascade.CheckInjectivity,
	}

	firstAt := make(map[int]int, len(seq))
	var dupeVal, dupeI, dupeJ int
	for j, Sj := range seq {
		if i, seen := firstAt[Sj]; seen {
			if res.Violations == 0 {
				dupeVal, dupeI, dupeJ = Sj, i, j
			}
			res.Violations++
			continue
		}
		firstAt[Sj] = j
	}

	if res.Violations > 0 {
		res.Message = fmt.Sprintf("value %d appears at indices %d and %d (%d duplicates total)", dupeVal, dupeI, dupeJ, res.Violations)
		return res
	}
	res.Passed = true
	res.Message = fmt.Sprintf("all %d values distinct", len(seq))
	return res
}

// CheckCoverage verifies every value is positive, the minimum is 1, and the value set is exactly {1..max}.
func CheckCoverage(seq gocascade.Sequence) gocascade.CheckResult {
	res := gocascade.CheckResult{
		Name: gocascade.CheckCoverage,
	}

	if len(seq) == 0 {
		res.Violations = 1
		res.Message = "empty sequence"
		return res
	}

	for i, Si := range seq {
		if Si <= 0 {
			res.Violations = 1
			res.Message = fmt.Sprintf("non-positive value %d at index %d", Si, i)
			return res
		}
	}

	if minVal := seq.Min(); minVal != 1 {
		res.Violations = 1
		res.Message = fmt.Sprintf("minimum value is %d, expected 1", minVal)
		return res
	}

	maxVal := seq.Max()
	distinct := slices.Compact(slices.Sorted(slices.Values(seq)))

	// walk the sorted distinct values, listing at most maxListedMissing of the holes
	var missing []int
	numMissing := maxVal - len(distinct)
	expect := 1
	for _, v := range distinct {
		for ; expect < v && len(missing) < maxListedMissing; expect++ {
			missing = append(missing, expect)
		}
		expect = v + 1
	}

	if numMissing > 0 {
		res.Violations = numMissing
		if numMissing <= maxListedMissing {
			res.Message = fmt.Sprintf("missing values in 1..%d: %v", maxVal, missing)
		} else {
			res.Message = fmt.Sprintf("%d values missing in 1..%d", numMissing, maxVal)
		}
		return res
	}

	res.Passed = true
	res.Message = fmt.Sprintf("values cover 1..%d", maxVal)
	return res
}

// CheckCascade verifies every consecutive pair forms a valid triple at its position.
func (c *Cascade) CheckCascade(seq gocascade.Sequence) gocascade.CheckResult {
	res := gocascade.CheckResult{
		Name: gocascade.CheckCascade,
	}

	var first gocascade.Triple
	for n := 1; n < len(seq); n++ {
		t := gocascade.Triple{A: seq[n-1], B: seq[n], N: n}
		if !c.IsValid(t) {
			if res.Violations == 0 {
				first = t
			}
			res.Violations++
		}
	}

	if res.Violations > 0 {
		res.Message = fmt.Sprintf("%d invalid triples, first %v (gap %d, threshold %d, bound %d)",
			res.Violations, first, first.Gap(), c.Threshold(first.A, first.B, first.N), c.IndexBound(first.N))
		return res
	}
	res.Passed = true
	res.Message = fmt.Sprintf("all %d consecutive triples valid", maxi(len(seq)-1, 0))
	return res
}

// CheckMinimality verifies that no term could have been replaced by a smaller unused value that
// also forms a valid triple with its predecessor.
//
// No value above IndexBound(n) can be valid at n, so the scan at n stops there and this is
// O(len(seq) * IndexBound(len(seq))) regardless of how large the terms are.
func (c *Cascade) CheckMinimality(seq gocascade.Sequence) gocascade.CheckResult {
	res := gocascade.CheckResult{
		Name: gocascade.CheckMinimality,
	}

	maxCandidate := c.IndexBound(len(seq))
	used := newUsedSet(mini(seq.Max(), maxCandidate) + 1)
	var first gocascade.Triple
	firstTerm := 0

	for n, Sn := range seq {
		if n > 0 {
			prev := seq[n-1]
			hi := mini(Sn, c.IndexBound(n)+1)
			for v := 1; v < hi; v++ {
				if !used.Has(v) && c.IsValidTriple(prev, v, n) {
					if res.Violations == 0 {
						first = gocascade.Triple{A: prev, B: v, N: n}
						firstTerm = Sn
					}
					res.Violations++
					break
				}
			}
		}
		if Sn <= maxCandidate {
			used.TryAdd(Sn)
		}
	}

	if res.Violations > 0 {
		res.Message = fmt.Sprintf("%d non-minimal terms, first at position %d: %d was chosen but %v is valid and unused",
			res.Violations, first.N, firstTerm, first)
		return res
	}
	res.Passed = true
	res.Message = fmt.Sprintf("all %d terms minimal", len(seq))
	return res
}

// VerifyAll runs every check (minimality unless opts.SkipMinimality) and logs each outcome.
// A failing check does not stop the checks that follow it.
func (c *Cascade) VerifyAll(seq gocascade.Sequence, opts gocascade.VerifyOpts) gocascade.Report {
	report := gocascade.Report{
		Checks: make([]gocascade.CheckResult, 0, 4),
	}

	report.Checks = append(report.Checks,
		CheckInjectivity(seq),
		CheckCoverage(seq),
		c.CheckCascade(seq),
	)
	if !opts.SkipMinimality {
		report.Checks = append(report.Checks, c.CheckMinimality(seq))
	}

	report.Passed = true
	for _, res := range report.Checks {
		if res.Passed {
			klog.Infof("PASS %-12s %s", res.Name, res.Message)
		} else {
			klog.Warningf("FAIL %-12s %s", res.Name, res.Message)
			report.Passed = false
		}
	}
	return report
}

// VerifyAll verifies seq under the default cascade and returns the aggregate result.
func VerifyAll(seq gocascade.Sequence, skipMinimality bool) bool {
	report := Default.VerifyAll(seq, gocascade.VerifyOpts{
		SkipMinimality: skipMinimality,
	})
	return report.Passed
}

// FormatReport renders a report as one line per check plus a summary line.
func FormatReport(report gocascade.Report) string {
	var b strings.Builder
	passed := 0
	for _, res := range report.Checks {
		status := "FAIL"
		if res.Passed {
			status = "PASS"
			passed++
		}
		fmt.Fprintf(&b, "%s  %-12s %s\n", status, res.Name, res.Message)
	}
	fmt.Fprintf(&b, "%d/%d checks passed\n", passed, len(report.Checks))
	return b.String()
}
