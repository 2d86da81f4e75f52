package libcascade

import (
	"math"

	"github.com/fine-structures/coralia/gocascade"
)

// Cascade evaluates the cascade-triple constraint for a fixed set of Params.
//
// A Cascade holds no mutable state and is safe for concurrent use.
type Cascade struct {
	params gocascade.Params
}

// Default is the Cascade built from gocascade.DefaultParams.
var Default = MustNewCascade(gocascade.DefaultParams)

// NewCascade returns a Cascade for the given params or ErrBadParam if they are invalid.
func NewCascade(params gocascade.Params) (*Cascade, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Cascade{
		params: params,
	}, nil
}

func MustNewCascade(params gocascade.Params) *Cascade {
	c, err := NewCascade(params)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Cascade) Params() gocascade.Params {
	return c.params
}

// IndexBound is the largest value any term at position n may take.
func (c *Cascade) IndexBound(n int) int {
	return c.params.BoundScale*n + c.params.BoundOffset
}

// Correction returns δ(a, b, n): floor(log2(min(a,b)+1)) when a+b is a multiple of the correction
// modulus and 0 otherwise.  n does not participate.
func (c *Cascade) Correction(a, b, n int) int {
	if (a+b)%c.params.CorrectionModulus != 0 {
		return 0
	}
	return int(math.Floor(math.Log2(float64(mini(a, b) + 1))))
}

// Threshold returns the largest gap allowed for the triple (a, b, n): ceil(sqrt(n+1)) + δ(a, b, n).
func (c *Cascade) Threshold(a, b, n int) int {
	return int(math.Ceil(math.Sqrt(float64(n+1)))) + c.Correction(a, b, n)
}

// IsValidTriple reports if b may follow a at position n.
func (c *Cascade) IsValidTriple(a, b, n int) bool {
	if a == b {
		return false
	}
	if maxi(a, b) > c.IndexBound(n) {
		return false
	}
	return absi(a-b) <= c.Threshold(a, b, n)
}

// IsValid is IsValidTriple for a Triple value.
func (c *Cascade) IsValid(t gocascade.Triple) bool {
	return c.IsValidTriple(t.A, t.B, t.N)
}

// IsValidTriple evaluates the default cascade constraint.
func IsValidTriple(a, b, n int) bool {
	return Default.IsValidTriple(a, b, n)
}

// Correction evaluates the default cascade correction δ(a, b, n).
func Correction(a, b, n int) int {
	return Default.Correction(a, b, n)
}

// Threshold evaluates the default allowed gap for (a, b, n).
func Threshold(a, b, n int) int {
	return Default.Threshold(a, b, n)
}

func mini(a, b int) int {
	if a < b {
		return a
	} else {
		return b
	}
}

func maxi(a, b int) int {
	if a > b {
		return a
	} else {
		return b
	}
}

func absi(a int) int {
	if a < 0 {
		return -a
	}
	return a
}
