package pycascade_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-python/gpython/py"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fine-structures/coralia/pycascade"
	_ "github.com/go-python/gpython/stdlib"
)

// runScript runs src as a python file and returns its module globals.
func runScript(t *testing.T, src string) py.StringDict {
	t.Helper()

	pathname := filepath.Join(t.TempDir(), "script.py")
	require.NoError(t, os.WriteFile(pathname, []byte(src), 0644))

	ctx := py.NewContext(py.DefaultContextOpts())
	defer func() {
		ctx.Close()
		<-ctx.Done()
	}()

	module, err := pycascade.RunScript(ctx, pathname)
	if err != nil {
		py.TracebackDump(err)
	}
	require.NoError(t, err)
	return module.Globals
}

func TestPredicate(t *testing.T) {
	g := runScript(t, `
import _pycascade as pc
valid = pc.IsValidTriple(4, 8, 3)
invalid = pc.IsValidTriple(5, 8, 3)
corr = pc.Correction(3, 6, 5)
thresh = pc.Threshold(3, 6, 5)
succ = pc.Successors(4, 3)
capped = pc.Successors(4, 3, 5)
count = pc.CountSuccessors(1, 1)
`)
	assert.Equal(t, py.True, g["valid"])
	assert.Equal(t, py.False, g["invalid"])
	assert.Equal(t, py.Int(2), g["corr"])
	assert.Equal(t, py.Int(5), g["thresh"])
	assert.Equal(t, py.NewListFromItems([]py.Object{py.Int(2), py.Int(3), py.Int(5), py.Int(6), py.Int(8)}), g["succ"])
	assert.Equal(t, py.NewListFromItems([]py.Object{py.Int(2), py.Int(3), py.Int(5)}), g["capped"])
	assert.Equal(t, py.Int(2), g["count"])
}

func TestGenerateAndVerify(t *testing.T) {
	g := runScript(t, `
import _pycascade as pc
seq = pc.Generate(10)
tenth = pc.Term(9)
ok = pc.Verify(seq)
bad = pc.Verify([1, 3, 2])
skipped = pc.Verify([1, 3, 2], True)
report = pc.VerifyReport([1, 3, 2])
failed = [c["name"] for c in report["checks"] if not c["passed"]]
try:
    pc.Term(-1)
    neg = "no error"
except ValueError:
    neg = "ValueError"
`)
	items := make([]py.Object, 10)
	for i := range items {
		items[i] = py.Int(i + 1)
	}
	assert.Equal(t, py.NewListFromItems(items), g["seq"])
	assert.Equal(t, py.Int(10), g["tenth"])
	assert.Equal(t, py.True, g["ok"])
	assert.Equal(t, py.False, g["bad"])
	assert.Equal(t, py.True, g["skipped"])
	assert.Equal(t, py.NewListFromItems([]py.Object{py.String("minimality")}), g["failed"])
	assert.Equal(t, py.String("ValueError"), g["neg"])
}

func TestAnalyzeAndCatalog(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cat")
	g := runScript(t, `
import _pycascade as pc
res = pc.Analyze(1)
total = res["total"]
gaps = res["gaps"]
cat = pc.OpenCatalog("`+dbPath+`")
run_id = cat.PutSequence("first", pc.Generate(5))
names = cat.Names()
loaded = cat.GetSequence("first")
cat.Close()
closed = ""
try:
    cat.GetSequence("first")
except ValueError:
    closed = "ValueError"
`)
	assert.Equal(t, py.Int(10), g["total"])
	assert.Equal(t, py.NewListFromItems([]py.Object{
		py.Tuple{py.Int(1), py.Int(6)},
		py.Tuple{py.Int(2), py.Int(4)},
	}), g["gaps"])
	assert.Len(t, string(g["run_id"].(py.String)), 36)
	assert.Equal(t, py.NewListFromItems([]py.Object{py.String("first")}), g["names"])
	assert.Equal(t, py.NewListFromItems([]py.Object{py.Int(1), py.Int(2), py.Int(3), py.Int(4), py.Int(5)}), g["loaded"])
	assert.Equal(t, py.String("ValueError"), g["closed"])
}
