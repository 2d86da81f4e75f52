package libcascade

import (
	"iter"

	"github.com/fine-structures/coralia/gocascade"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

// Generate returns the first numTerms terms of the sequence defined by c.
// Term 0 is 1; each following term is the smallest unused value forming a valid triple with its
// predecessor.  A non-positive numTerms yields an empty sequence.
//
// If a position has no admissible candidate up to SearchFactor*numTerms, a *gocascade.ExhaustionError is returned.
func (c *Cascade) Generate(numTerms int) (gocascade.Sequence, error) {
	if numTerms <= 0 {
		return gocascade.Sequence{}, nil
	}

	seq := make(gocascade.Sequence, 0, numTerms)
	it := c.NewTermIter(numTerms)
	for it.Next() {
		seq = append(seq, it.Term())
	}
	if err := it.Err(); err != nil {
		return nil, err
	}

	klog.V(2).Infof("generated %d terms (max term %d)", len(seq), seq.Max())
	return seq, nil
}

// Term returns the term at the given zero-based index by regenerating the prefix up to it.
func (c *Cascade) Term(index int) (int, error) {
	if index < 0 {
		return 0, errors.Wrapf(gocascade.ErrInvalidArgument, "negative index %d", index)
	}
	seq, err := c.Generate(index + 1)
	if err != nil {
		return 0, err
	}
	return seq[index], nil
}

// Generate builds numTerms terms under the default cascade.
func Generate(numTerms int) (gocascade.Sequence, error) {
	return Default.Generate(numTerms)
}

// Term returns the term at index under the default cascade.
func Term(index int) (int, error) {
	return Default.Term(index)
}

// TermIter produces the sequence one term at a time.
//
// Its state (previous term, used values, position) persists across calls to Next, so a TermIter
// cannot be restarted; make a new one via Cascade.NewTermIter.
type TermIter struct {
	cascade  *Cascade
	maxTerms int // <= 0 denotes unbounded
	used     *usedSet
	index    int // index of the current term, -1 before the first Next
	prev     int
	term     int
	err      error
}

// NewTermIter returns an iterator over at most maxTerms terms; maxTerms <= 0 means no limit.
func (c *Cascade) NewTermIter(maxTerms int) *TermIter {
	hint := maxTerms
	if hint <= 0 {
		hint = 1024
	}
	return &TermIter{
		cascade:  c,
		maxTerms: maxTerms,
		used:     newUsedSet(c.IndexBound(hint)),
		index:    -1,
	}
}

// NewTermIter returns an iterator under the default cascade.
func NewTermIter(maxTerms int) *TermIter {
	return Default.NewTermIter(maxTerms)
}

// Next advances to the next term, returning false when maxTerms terms have been produced or an
// error occurred (see Err).
func (it *TermIter) Next() bool {
	if it.err != nil {
		return false
	}
	n := it.index + 1
	if it.maxTerms > 0 && n >= it.maxTerms {
		return false
	}

	if n == 0 {
		it.commit(0, 1)
		return true
	}

	bound := it.searchBound(n)
	limit := mini(bound, it.cascade.IndexBound(n))
	if limit > 0 {
		for b := range it.cascade.Successors(it.prev, n, limit) {
			if !it.used.Has(b) {
				it.commit(n, b)
				return true
			}
		}
	}

	it.err = &gocascade.ExhaustionError{
		Position: n,
		Previous: it.prev,
		Bound:    bound,
	}
	klog.Errorf("cascade generation failed: %v", it.err)
	return false
}

func (it *TermIter) commit(n, term int) {
	it.used.TryAdd(term)
	it.index = n
	it.prev = term
	it.term = term
}

func (it *TermIter) searchBound(n int) int {
	factor := it.cascade.params.SearchFactor
	if it.maxTerms > 0 {
		return factor * it.maxTerms
	}
	return factor * (n + 1)
}

// Term returns the term produced by the last successful Next.
func (it *TermIter) Term() int {
	return it.term
}

// Index returns the zero-based index of the current term.
func (it *TermIter) Index() int {
	return it.index
}

// Err returns the error that stopped iteration, if any.
func (it *TermIter) Err() error {
	return it.err
}

// All yields (index, term) pairs until the iterator stops.  Check Err afterwards.
func (it *TermIter) All() iter.Seq2[int, int] {
	return func(yield func(int, int) bool) {
		for it.Next() {
			if !yield(it.index, it.term) {
				return
			}
		}
	}
}
