package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fine-structures/coralia/gocascade"
	"github.com/fine-structures/coralia/libcascade"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the cascade command line with args and returns what it printed.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestGenerateCmd(t *testing.T) {
	out, err := run(t, "generate", "--terms", "5", "--sep", "comma")
	require.NoError(t, err)
	assert.Equal(t, "1,2,3,4,5\n", out)

	out, err = run(t, "generate", "-n", "3")
	require.NoError(t, err)
	assert.Equal(t, "1\n2\n3\n", out)

	out, err = run(t, "generate", "--index", "9")
	require.NoError(t, err)
	assert.Equal(t, "10\n", out)

	_, err = run(t, "generate", "--sep", "tab")
	assert.ErrorIs(t, err, gocascade.ErrInvalidArgument)

	_, err = run(t, "generate", "--terms", "5", "--index", "2")
	assert.Error(t, err)
}

func TestGenerateThenVerifyFile(t *testing.T) {
	pathname := filepath.Join(t.TempDir(), "c50.txt")

	out, err := run(t, "generate", "--terms", "50", "--out", pathname)
	require.NoError(t, err)
	assert.Empty(t, out)

	seq, err := libcascade.ReadSequenceFile(pathname)
	require.NoError(t, err)
	assert.Len(t, seq, 50)

	out, err = run(t, "verify", "--input", pathname)
	require.NoError(t, err)
	assert.Equal(t, "all 4 checks passed\n", out)

	out, err = run(t, "verify", "--input", pathname, "--verbose")
	require.NoError(t, err)
	assert.Contains(t, out, "50 terms, max 50")
	assert.Contains(t, out, "4/4 checks passed")
}

func TestVerifyFailure(t *testing.T) {
	pathname := filepath.Join(t.TempDir(), "bad.txt")
	require.NoError(t, os.WriteFile(pathname, []byte("1,3,2\n"), 0644))

	out, err := run(t, "verify", "--input", pathname)
	require.ErrorIs(t, err, gocascade.ErrVerifyFailed)
	assert.Contains(t, out, "FAIL")
	assert.Contains(t, out, gocascade.CheckMinimality)
	assert.NotContains(t, out, gocascade.CheckInjectivity)

	_, err = run(t, "verify", "--input", pathname, "--skip-minimality")
	require.NoError(t, err)

	_, err = run(t, "verify", "--input", filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, gocascade.ErrVerifyFailed)
}

func TestVerifyGenerated(t *testing.T) {
	out, err := run(t, "verify")
	require.NoError(t, err)
	assert.Equal(t, "all 4 checks passed\n", out)

	out, err = run(t, "verify", "--terms", "200", "--skip-minimality")
	require.NoError(t, err)
	assert.Equal(t, "all 3 checks passed\n", out)
}

func TestCatalogRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "catalog")

	_, err := run(t, "generate", "--terms", "40", "--catalog", dir)
	require.NoError(t, err)
	_, err = run(t, "generate", "--terms", "12", "--catalog", dir, "--name", "short")
	require.NoError(t, err)

	out, err := run(t, "verify", "--catalog", dir, "--name", "c40", "--verbose")
	require.NoError(t, err)
	assert.Contains(t, out, "verifying c40 (run ")
	assert.Contains(t, out, "40 terms, max 40")

	_, err = run(t, "verify", "--catalog", dir, "--name", "nope")
	assert.ErrorIs(t, err, gocascade.ErrNotFound)

	_, err = run(t, "verify", "--catalog", dir)
	assert.Error(t, err)
}

func TestAnalyzeCmds(t *testing.T) {
	out, err := run(t, "analyze", "successors", "--a", "1", "--n", "1")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "a=1 n=1 bound=4: 2 successors", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "2\tgap 1\t"))
	assert.True(t, strings.HasPrefix(lines[2], "3\tgap 2\t"))

	out, err = run(t, "analyze", "triples", "--max-n", "1", "--count")
	require.NoError(t, err)
	assert.Equal(t, "10\n", out)

	out, err = run(t, "analyze", "triples", "--max-n", "1")
	require.NoError(t, err)
	lines = strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 11)
	assert.Equal(t, "n,a,b,gap", lines[0])

	serial, err := run(t, "analyze", "stats", "--max-n", "6")
	require.NoError(t, err)
	assert.Contains(t, serial, "triples through n=6:")

	parallel, err := run(t, "analyze", "stats", "--max-n", "6", "--workers", "3")
	require.NoError(t, err)
	assert.Equal(t, serial, parallel)

	_, err = run(t, "analyze", "stats", "--max-n", "0")
	assert.ErrorIs(t, err, gocascade.ErrInvalidArgument)
}

func TestAnalyzeTriplesIntoCatalog(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "catalog")

	first, err := run(t, "analyze", "triples", "--max-n", "3", "--catalog", dir)
	require.NoError(t, err)

	// adding the same triples again changes nothing
	second, err := run(t, "analyze", "triples", "--max-n", "3", "--catalog", dir)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	res := libcascade.Analyze(3)
	for _, bin := range res.PerIndex {
		assert.Contains(t, first, fmt.Sprintf("%d\t%d\n", bin.Key, bin.Count))
	}
}

func TestConfigParams(t *testing.T) {
	dir := t.TempDir()

	tight := filepath.Join(dir, "tight.yaml")
	require.NoError(t, os.WriteFile(tight, []byte("bound_scale: 1\nbound_offset: 0\n"), 0644))

	_, err := run(t, "generate", "--terms", "5", "--config", tight)
	require.ErrorIs(t, err, gocascade.ErrExhausted)

	var exErr *gocascade.ExhaustionError
	require.ErrorAs(t, err, &exErr)
	assert.Equal(t, 1, exErr.Position)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("correction_modulus: 0\n"), 0644))
	_, err = run(t, "generate", "--config", bad)
	assert.ErrorIs(t, err, gocascade.ErrBadParam)

	_, err = run(t, "generate", "--config", filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestPyCmd(t *testing.T) {
	pathname := filepath.Join(t.TempDir(), "check.py")
	require.NoError(t, os.WriteFile(pathname, []byte(`
import _pycascade as pc
seq = pc.Generate(20)
if not pc.Verify(seq):
    raise ValueError("generated sequence failed verification")
`), 0644))

	out, err := run(t, "py", pathname)
	require.NoError(t, err)
	assert.Contains(t, out, "execution complete")
}
