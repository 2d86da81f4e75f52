package pycascade

import (
	"sync"

	"github.com/fine-structures/coralia/gocascade"
	"github.com/fine-structures/coralia/libcascade"
	"github.com/fine-structures/coralia/libcascade/catalog"
	"github.com/go-python/gpython/py"
	"github.com/pkg/errors"
)

var (
	LIB_VERSION = "v1.2026.1"
)

var (
	pyCatalogType   = py.NewType("Catalog", "a store of named sequences and distinct cascade triples")
	pyWorkspaceType = py.NewType("Workspace", "collects catalogs opened by a script so they close with it")
)

const kWorkspaceAttr = "_Workspace"

func intArg(obj py.Object) (int, error) {
	val, err := py.GetInt(obj)
	if err != nil {
		return 0, err
	}
	return int(val), nil
}

// intArgs parses exactly len(dst) int args.
func intArgs(args py.Tuple, dst ...*int) error {
	if len(args) != len(dst) {
		return py.ExceptionNewf(py.TypeError, "expected %d int arguments (got %d)", len(dst), len(args))
	}
	for i, arg := range args {
		val, err := intArg(arg)
		if err != nil {
			return err
		}
		*dst[i] = val
	}
	return nil
}

func exportSequence(seq gocascade.Sequence) py.Object {
	items := make([]py.Object, len(seq))
	for i, Si := range seq {
		items[i] = py.Int(Si)
	}
	return py.NewListFromItems(items)
}

func importSequence(obj py.Object) (gocascade.Sequence, error) {
	var items []py.Object
	switch v := obj.(type) {
	case *py.List:
		items = v.Items
	case py.Tuple:
		items = v
	default:
		return nil, py.ExceptionNewf(py.TypeError, "expected list or tuple of ints (got %v)", obj.Type().Name)
	}

	seq := make(gocascade.Sequence, len(items))
	for i, item := range items {
		val, err := intArg(item)
		if err != nil {
			return nil, err
		}
		seq[i] = val
	}
	return seq, nil
}

func exportError(err error) error {
	switch {
	case errors.Is(err, gocascade.ErrInvalidArgument):
		return py.ExceptionNewf(py.ValueError, "%v", err)
	case errors.Is(err, gocascade.ErrNotFound):
		return py.ExceptionNewf(py.KeyError, "%v", err)
	case errors.Is(err, gocascade.ErrReadOnly):
		return py.ExceptionNewf(py.PermissionError, "%v", err)
	case errors.Is(err, gocascade.ErrClosed):
		return py.ExceptionNewf(py.ValueError, "%v", err)
	}
	return py.ExceptionNewf(py.RuntimeError, "%v", err)
}

func py_IsValidTriple(module py.Object, args py.Tuple) (py.Object, error) {
	var a, b, n int
	if err := intArgs(args, &a, &b, &n); err != nil {
		return nil, err
	}
	return py.NewBool(libcascade.IsValidTriple(a, b, n)), nil
}

func py_Correction(module py.Object, args py.Tuple) (py.Object, error) {
	var a, b, n int
	if err := intArgs(args, &a, &b, &n); err != nil {
		return nil, err
	}
	return py.Int(libcascade.Correction(a, b, n)), nil
}

func py_Threshold(module py.Object, args py.Tuple) (py.Object, error) {
	var a, b, n int
	if err := intArgs(args, &a, &b, &n); err != nil {
		return nil, err
	}
	return py.Int(libcascade.Threshold(a, b, n)), nil
}

// Arg 1 (int): a
// Arg 2 (int): n
// Arg 3 (int, optional): maxVal
func py_Successors(module py.Object, args py.Tuple) (py.Object, error) {
	var a, n, maxVal int
	var err error
	if len(args) == 3 {
		err = intArgs(args, &a, &n, &maxVal)
	} else {
		err = intArgs(args, &a, &n)
	}
	if err != nil {
		return nil, err
	}

	var items []py.Object
	for b := range libcascade.Successors(a, n, maxVal) {
		items = append(items, py.Int(b))
	}
	return py.NewListFromItems(items), nil
}

func py_CountSuccessors(module py.Object, args py.Tuple) (py.Object, error) {
	var a, n int
	if err := intArgs(args, &a, &n); err != nil {
		return nil, err
	}
	return py.Int(libcascade.CountSuccessors(a, n)), nil
}

func py_Generate(module py.Object, args py.Tuple) (py.Object, error) {
	var numTerms int
	if err := intArgs(args, &numTerms); err != nil {
		return nil, err
	}
	seq, err := libcascade.Generate(numTerms)
	if err != nil {
		return nil, exportError(err)
	}
	return exportSequence(seq), nil
}

func py_Term(module py.Object, args py.Tuple) (py.Object, error) {
	var index int
	if err := intArgs(args, &index); err != nil {
		return nil, err
	}
	term, err := libcascade.Term(index)
	if err != nil {
		return nil, exportError(err)
	}
	return py.Int(term), nil
}

func parseVerifyArgs(args py.Tuple) (gocascade.Sequence, gocascade.VerifyOpts, error) {
	var opts gocascade.VerifyOpts
	var seqObj, skipObj py.Object
	err := py.ParseTuple(args, "O|O", &seqObj, &skipObj)
	if err != nil {
		return nil, opts, err
	}
	seq, err := importSequence(seqObj)
	if err != nil {
		return nil, opts, err
	}
	if skipObj != nil {
		skip, err := py.MakeBool(skipObj)
		if err != nil {
			return nil, opts, err
		}
		opts.SkipMinimality = skip == py.True
	}
	return seq, opts, nil
}

// Arg 1 (list): sequence
// Arg 2 (bool, optional): skip the minimality check
func py_Verify(module py.Object, args py.Tuple) (py.Object, error) {
	seq, opts, err := parseVerifyArgs(args)
	if err != nil {
		return nil, err
	}
	report := libcascade.Default.VerifyAll(seq, opts)
	return py.NewBool(report.Passed), nil
}

// VerifyReport is Verify but returns {"passed": bool, "checks": [{"name", "passed", "violations", "message"}, ...]}
func py_VerifyReport(module py.Object, args py.Tuple) (py.Object, error) {
	seq, opts, err := parseVerifyArgs(args)
	if err != nil {
		return nil, err
	}
	report := libcascade.Default.VerifyAll(seq, opts)

	checks := make([]py.Object, len(report.Checks))
	for i, res := range report.Checks {
		checks[i] = py.StringDict{
			"name":       py.String(res.Name),
			"passed":     py.NewBool(res.Passed),
			"violations": py.Int(res.Violations),
			"message":    py.String(res.Message),
		}
	}
	return py.StringDict{
		"passed": py.NewBool(report.Passed),
		"checks": py.NewListFromItems(checks),
	}, nil
}

func exportBins(bins []gocascade.Bin) py.Object {
	items := make([]py.Object, len(bins))
	for i, bin := range bins {
		items[i] = py.Tuple{py.Int(bin.Key), py.Int(bin.Count)}
	}
	return py.NewListFromItems(items)
}

// Analyze returns the AnalysisResult for max index n as a dict; histograms are lists of (key, count) tuples.
func py_Analyze(module py.Object, args py.Tuple) (py.Object, error) {
	var maxN int
	if err := intArgs(args, &maxN); err != nil {
		return nil, err
	}
	res := libcascade.Analyze(maxN)

	succ := make([]py.Object, len(res.Successors))
	for i, sum := range res.Successors {
		succ[i] = py.StringDict{
			"a":       py.Int(sum.A),
			"indices": py.Int(sum.Indices),
			"min":     py.Int(sum.Min),
			"max":     py.Int(sum.Max),
			"total":   py.Int(sum.Total),
			"mean":    py.Float(sum.Mean()),
		}
	}

	return py.StringDict{
		"max_n":           py.Int(res.MaxN),
		"total":           py.Int(res.TotalTriples),
		"with_correction": py.Int(res.WithCorrection),
		"gaps":            exportBins(res.Gaps),
		"per_index":       exportBins(res.PerIndex),
		"successors":      py.NewListFromItems(succ),
	}, nil
}

type Workspace struct {
	mu       sync.Mutex
	catalogs map[*catalog.Catalog]struct{}
}

func (ws *Workspace) Type() *py.Type {
	return pyWorkspaceType
}

func (ws *Workspace) attach(cat *catalog.Catalog) {
	ws.mu.Lock()
	ws.catalogs[cat] = struct{}{}
	ws.mu.Unlock()
}

func (ws *Workspace) detach(cat *catalog.Catalog) {
	ws.mu.Lock()
	delete(ws.catalogs, cat)
	ws.mu.Unlock()
}

// Close closes every catalog still open.
func (ws *Workspace) Close() {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	for cat := range ws.catalogs {
		cat.Close()
	}
	ws.catalogs = make(map[*catalog.Catalog]struct{})
}

func getWorkspace(module py.Object) *Workspace {
	wsObj, _ := py.GetAttrString(module, kWorkspaceAttr)
	if wsObj == nil {
		wsObj = &Workspace{
			catalogs: make(map[*catalog.Catalog]struct{}),
		}
		py.SetAttrString(module, kWorkspaceAttr, wsObj)
	}
	return wsObj.(*Workspace)
}

type pyCatalog struct {
	*catalog.Catalog
	ws *Workspace
}

func (cat *pyCatalog) Type() *py.Type {
	return pyCatalogType
}

// Arg 1 (str): db pathname ("" for in-memory)
// Arg 2 (bool, optional): read-only
func py_OpenCatalog(module py.Object, args py.Tuple) (py.Object, error) {
	var pathObj, readOnlyObj py.Object
	if err := py.ParseTuple(args, "s|O", &pathObj, &readOnlyObj); err != nil {
		return nil, err
	}
	opts := gocascade.CatalogOpts{
		DbPathName: string(pathObj.(py.String)),
	}
	if readOnlyObj != nil {
		readOnly, err := py.MakeBool(readOnlyObj)
		if err != nil {
			return nil, err
		}
		opts.ReadOnly = readOnly == py.True
	}

	cat, err := catalog.OpenCatalog(opts)
	if err != nil {
		return nil, exportError(err)
	}

	ws := getWorkspace(module)
	ws.attach(cat)
	return &pyCatalog{cat, ws}, nil
}

func py_Catalog_PutSequence(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(*pyCatalog)
	var nameObj, seqObj py.Object
	if err := py.ParseTuple(args, "sO", &nameObj, &seqObj); err != nil {
		return nil, err
	}
	seq, err := importSequence(seqObj)
	if err != nil {
		return nil, err
	}
	runID, err := cat.PutSequence(string(nameObj.(py.String)), seq)
	if err != nil {
		return nil, exportError(err)
	}
	return py.String(runID.String()), nil
}

func py_Catalog_GetSequence(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(*pyCatalog)
	var nameObj py.Object
	if err := py.ParseTuple(args, "s", &nameObj); err != nil {
		return nil, err
	}
	rec, err := cat.GetSequence(string(nameObj.(py.String)))
	if err != nil {
		return nil, exportError(err)
	}
	return exportSequence(rec.Terms), nil
}

func py_Catalog_Names(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(*pyCatalog)
	names, err := cat.SequenceNames()
	if err != nil {
		return nil, exportError(err)
	}
	items := make([]py.Object, len(names))
	for i, name := range names {
		items[i] = py.String(name)
	}
	return py.NewListFromItems(items), nil
}

func py_Catalog_Close(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(*pyCatalog)
	cat.ws.detach(cat.Catalog)
	if err := cat.Close(); err != nil {
		return nil, exportError(err)
	}
	return py.None, nil
}

func init() {

	/////////////////////////////////
	// Catalog
	{
		pyCatalogType.Dict["PutSequence"] = py.MustNewMethod("PutSequence", py_Catalog_PutSequence, 0, "stores a sequence under a name, returning the run ID")
		pyCatalogType.Dict["GetSequence"] = py.MustNewMethod("GetSequence", py_Catalog_GetSequence, 0, "loads a named sequence")
		pyCatalogType.Dict["Names"] = py.MustNewMethod("Names", py_Catalog_Names, 0, "lists stored sequence names")
		pyCatalogType.Dict["Close"] = py.MustNewMethod("Close", py_Catalog_Close, 0, "")
	}

	{
		methods := []*py.Method{
			py.MustNewMethod("IsValidTriple", py_IsValidTriple, 0, "IsValidTriple(a, b, n) -> bool"),
			py.MustNewMethod("Correction", py_Correction, 0, "Correction(a, b, n) -> int"),
			py.MustNewMethod("Threshold", py_Threshold, 0, "Threshold(a, b, n) -> int"),
			py.MustNewMethod("Successors", py_Successors, 0, "Successors(a, n[, maxVal]) -> list"),
			py.MustNewMethod("CountSuccessors", py_CountSuccessors, 0, "CountSuccessors(a, n) -> int"),
			py.MustNewMethod("Generate", py_Generate, 0, "Generate(numTerms) -> list"),
			py.MustNewMethod("Term", py_Term, 0, "Term(index) -> int"),
			py.MustNewMethod("Verify", py_Verify, 0, "Verify(seq[, skipMinimality]) -> bool"),
			py.MustNewMethod("VerifyReport", py_VerifyReport, 0, "VerifyReport(seq[, skipMinimality]) -> dict"),
			py.MustNewMethod("Analyze", py_Analyze, 0, "Analyze(maxN) -> dict"),
			py.MustNewMethod("OpenCatalog", py_OpenCatalog, 0, "OpenCatalog(pathname[, readOnly]) -> Catalog"),
		}

		globals := py.StringDict{
			"LIB_VERSION":        py.String(LIB_VERSION),
			"BOUND_SCALE":        py.Int(gocascade.DefaultParams.BoundScale),
			"BOUND_OFFSET":       py.Int(gocascade.DefaultParams.BoundOffset),
			"CORRECTION_MODULUS": py.Int(gocascade.DefaultParams.CorrectionModulus),
			"SEARCH_FACTOR":      py.Int(gocascade.DefaultParams.SearchFactor),
		}

		py.RegisterModule(&py.ModuleImpl{
			Info: py.ModuleInfo{
				Name: "_pycascade",
				Doc:  "cascade triple sequence gpython module",
			},
			Methods: methods,
			Globals: globals,
			OnContextClosed: func(m *py.Module) {
				wsObj, _ := py.GetAttrString(m, kWorkspaceAttr)
				if wsObj != nil {
					wsObj.(*Workspace).Close()
				}
			},
		})
	}
}
