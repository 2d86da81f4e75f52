package libcascade

import (
	"context"
	"iter"
	"runtime"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/fine-structures/coralia/gocascade"
	"github.com/plan-systems/klog"
	"golang.org/x/sync/errgroup"
)

// AllTriples yields every valid triple (a, b, n) for 1 <= n <= maxN and a, b in [1, IndexBound(n)],
// ordered by n, then a, then b.
//
// This is the unrestricted search: it is not tied to any generated sequence.
func (c *Cascade) AllTriples(maxN int) iter.Seq[gocascade.Triple] {
	return func(yield func(gocascade.Triple) bool) {
		for n := 1; n <= maxN; n++ {
			bound := c.IndexBound(n)
			for a := 1; a <= bound; a++ {
				for b := 1; b <= bound; b++ {
					if c.IsValidTriple(a, b, n) && !yield(gocascade.Triple{A: a, B: b, N: n}) {
						return
					}
				}
			}
		}
	}
}

// CountTriples returns the number of triples AllTriples(maxN) yields.
func (c *Cascade) CountTriples(maxN int) int {
	count := 0
	for range c.AllTriples(maxN) {
		count++
	}
	return count
}

// AllTriples enumerates triples under the default cascade.
func AllTriples(maxN int) iter.Seq[gocascade.Triple] {
	return Default.AllTriples(maxN)
}

// indexTally holds the statistics of a single index n.  Indices are independent of each other.
type indexTally struct {
	n              int
	total          int
	withCorrection int
	gaps           map[int]int
	successors     []int // successors[a-1] is the successor count of a at n
}

func (c *Cascade) tallyIndex(n int) *indexTally {
	bound := c.IndexBound(n)
	tally := &indexTally{
		n:          n,
		gaps:       make(map[int]int),
		successors: make([]int, bound),
	}
	for a := 1; a <= bound; a++ {
		for b := 1; b <= bound; b++ {
			if !c.IsValidTriple(a, b, n) {
				continue
			}
			t := gocascade.Triple{A: a, B: b, N: n}
			tally.total++
			tally.gaps[t.Gap()]++
			tally.successors[a-1]++
			if t.HasCorrectionMod(c.params.CorrectionModulus) {
				tally.withCorrection++
			}
		}
	}
	return tally
}

// analysis merges indexTallies, in ascending n, into ordered histograms.
type analysis struct {
	maxN           int
	total          int
	withCorrection int
	gaps           *treemap.Map // gap => int
	perIndex       *treemap.Map // n => int
	successors     *treemap.Map // a => *gocascade.SuccessorSummary
}

func newAnalysis(maxN int) *analysis {
	return &analysis{
		maxN:       maxN,
		gaps:       treemap.NewWithIntComparator(),
		perIndex:   treemap.NewWithIntComparator(),
		successors: treemap.NewWithIntComparator(),
	}
}

func (an *analysis) merge(tally *indexTally) {
	an.total += tally.total
	an.withCorrection += tally.withCorrection
	an.perIndex.Put(tally.n, tally.total)

	for gap, count := range tally.gaps {
		prev, _ := an.gaps.Get(gap)
		if prev == nil {
			prev = 0
		}
		an.gaps.Put(gap, prev.(int)+count)
	}

	for ai, count := range tally.successors {
		a := ai + 1
		var sum *gocascade.SuccessorSummary
		if val, found := an.successors.Get(a); found {
			sum = val.(*gocascade.SuccessorSummary)
		} else {
			sum = &gocascade.SuccessorSummary{A: a, Min: count, Max: count}
			an.successors.Put(a, sum)
		}
		sum.Indices++
		sum.Total += count
		sum.Min = mini(sum.Min, count)
		sum.Max = maxi(sum.Max, count)
	}
}

func exportBins(m *treemap.Map) []gocascade.Bin {
	bins := make([]gocascade.Bin, 0, m.Size())
	itr := m.Iterator()
	for itr.Next() {
		bins = append(bins, gocascade.Bin{
			Key:   itr.Key().(int),
			Count: itr.Value().(int),
		})
	}
	return bins
}

func (an *analysis) result() *gocascade.AnalysisResult {
	res := &gocascade.AnalysisResult{
		MaxN:           an.maxN,
		TotalTriples:   an.total,
		WithCorrection: an.withCorrection,
		Gaps:           exportBins(an.gaps),
		PerIndex:       exportBins(an.perIndex),
		Successors:     make([]gocascade.SuccessorSummary, 0, an.successors.Size()),
	}
	itr := an.successors.Iterator()
	for itr.Next() {
		res.Successors = append(res.Successors, *itr.Value().(*gocascade.SuccessorSummary))
	}
	return res
}

// Analyze aggregates statistics over every valid triple with 1 <= n <= maxN.
func (c *Cascade) Analyze(maxN int) *gocascade.AnalysisResult {
	an := newAnalysis(maxN)
	for n := 1; n <= maxN; n++ {
		an.merge(c.tallyIndex(n))
	}
	klog.V(2).Infof("analyzed %d triples through n=%d", an.total, maxN)
	return an.result()
}

// AnalyzeParallel computes the same result as Analyze, tallying indices on up to the given number
// of workers (workers <= 0 uses GOMAXPROCS).  It stops early if ctx is cancelled.
func (c *Cascade) AnalyzeParallel(ctx context.Context, maxN, workers int) (*gocascade.AnalysisResult, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	tallies := make([]*indexTally, max(maxN, 0))

	grp, ctx := errgroup.WithContext(ctx)
	grp.SetLimit(workers)
	for n := 1; n <= maxN; n++ {
		grp.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			tallies[n-1] = c.tallyIndex(n)
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}

	an := newAnalysis(maxN)
	for _, tally := range tallies {
		an.merge(tally)
	}
	klog.V(2).Infof("analyzed %d triples through n=%d on %d workers", an.total, maxN, workers)
	return an.result(), nil
}

// Analyze aggregates triple statistics under the default cascade.
func Analyze(maxN int) *gocascade.AnalysisResult {
	return Default.Analyze(maxN)
}
