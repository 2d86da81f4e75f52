package gocascade

// Predicate decides whether b may follow a at the 1-based position n.
type Predicate interface {
	IsValidTriple(a, b, n int) bool
}

// Params are the constants of the cascade constraint.
//
// A triple (a, b, n) is valid when a != b, max(a, b) <= BoundScale*n + BoundOffset, and
// |a-b| <= ceil(sqrt(n+1)) + δ, where δ = floor(log2(min(a, b)+1)) if (a+b) is a multiple of
// CorrectionModulus and 0 otherwise.
type Params struct {
	BoundScale        int `yaml:"bound_scale"`
	BoundOffset       int `yaml:"bound_offset"`
	CorrectionModulus int `yaml:"correction_modulus"`

	// SearchFactor times the term count is the largest candidate the generator will try.
	SearchFactor int `yaml:"search_factor"`
}

// DefaultParams are the parameters C(n) is defined with.
var DefaultParams = Params{
	BoundScale:        2,
	BoundOffset:       2,
	CorrectionModulus: 3,
	SearchFactor:      10,
}

// Triple is an immutable cascade triple: previous term A, candidate term B, and the position N being filled.
type Triple struct {
	A int
	B int
	N int
}

// Sequence is an ordered list of terms; index 0 of a generated sequence is always 1.
type Sequence []int

// CheckResult is the outcome of one global property check.
type CheckResult struct {
	Name       string
	Passed     bool
	Violations int
	Message    string
}

// Check names, in the order VerifyAll runs them.
const (
	CheckInjectivity = "injectivity"
	CheckCoverage    = "coverage"
	CheckCascade     = "cascade"
	CheckMinimality  = "minimality"
)

// Report collects the CheckResults of a verification run.
// Passed is the AND of every check that was run.
type Report struct {
	Checks []CheckResult
	Passed bool
}

// VerifyOpts selects which checks VerifyAll runs.
type VerifyOpts struct {
	SkipMinimality bool
}

// Bin is one entry of an ordered histogram.
type Bin struct {
	Key   int
	Count int
}

// SuccessorSummary aggregates, for a fixed previous term A, the number of valid successors over
// every index N where A is within the index bound.
type SuccessorSummary struct {
	A       int
	Indices int
	Min     int
	Max     int
	Total   int
}

// Mean returns the mean successor count over the indices summarized.
func (s SuccessorSummary) Mean() float64 {
	if s.Indices == 0 {
		return 0
	}
	return float64(s.Total) / float64(s.Indices)
}

// AnalysisResult holds aggregate statistics over every valid triple with 1 <= n <= MaxN.
// It is rebuilt in full by each analysis call.
type AnalysisResult struct {
	MaxN           int
	TotalTriples   int
	WithCorrection int
	Gaps           []Bin // gap => count, ascending by gap
	PerIndex       []Bin // n => count, ascending by n
	Successors     []SuccessorSummary
}

// CatalogOpts specifies params for opening a sequence Catalog
type CatalogOpts struct {
	DbPathName string // omit for in-memory db
	ReadOnly   bool   // open in read-only mode
}

// PrintOpts specifies how a sequence is written as text.
type PrintOpts struct {
	Sep string // "," or "\n"
}

// DefaultPrintOpts writes one term per line.
var DefaultPrintOpts = PrintOpts{
	Sep: "\n",
}
