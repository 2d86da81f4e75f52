package catalog_test

import (
	"path/filepath"
	"testing"

	"github.com/fine-structures/coralia/gocascade"
	"github.com/fine-structures/coralia/libcascade"
	"github.com/fine-structures/coralia/libcascade/catalog"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequences(t *testing.T) {
	pathname := filepath.Join(t.TempDir(), "TestSequences")

	cat, err := catalog.OpenCatalog(gocascade.CatalogOpts{DbPathName: pathname})
	require.NoError(t, err)

	seq, err := libcascade.Generate(64)
	require.NoError(t, err)

	runID, err := cat.PutSequence("c64", seq)
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, runID)

	_, err = cat.PutSequence("short", gocascade.Sequence{1, 2, 3})
	require.NoError(t, err)
	_, err = cat.PutSequence("short", gocascade.Sequence{1, 2})
	require.NoError(t, err)
	assert.Equal(t, int64(2), cat.NumSequences())

	_, err = cat.PutSequence("", seq)
	require.ErrorIs(t, err, gocascade.ErrInvalidArgument)

	_, err = cat.GetSequence("nope")
	require.ErrorIs(t, err, gocascade.ErrNotFound)
	require.NoError(t, cat.Close())

	// reopen read-only: everything persisted
	cat, err = catalog.OpenCatalog(gocascade.CatalogOpts{DbPathName: pathname, ReadOnly: true})
	require.NoError(t, err)
	defer cat.Close()

	rec, err := cat.GetSequence("c64")
	require.NoError(t, err)
	assert.Equal(t, seq, rec.Terms)
	assert.Equal(t, runID, rec.RunID)
	assert.False(t, rec.Created.IsZero())

	rec, err = cat.GetSequence("short")
	require.NoError(t, err)
	assert.Equal(t, gocascade.Sequence{1, 2}, rec.Terms)

	names, err := cat.SequenceNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"c64", "short"}, names)
	assert.Equal(t, int64(2), cat.NumSequences())

	_, err = cat.PutSequence("more", seq)
	require.ErrorIs(t, err, gocascade.ErrReadOnly)
	_, err = cat.TryAddTriple(gocascade.Triple{A: 1, B: 2, N: 1})
	require.ErrorIs(t, err, gocascade.ErrReadOnly)
}

func TestTriples(t *testing.T) {
	cat, err := catalog.OpenCatalog(gocascade.CatalogOpts{})
	require.NoError(t, err)
	defer cat.Close()

	for tr := range libcascade.AllTriples(3) {
		added, err := cat.TryAddTriple(tr)
		require.NoError(t, err)
		require.True(t, added)

		added, err = cat.TryAddTriple(tr)
		require.NoError(t, err)
		require.False(t, added)
	}

	res := libcascade.Analyze(3)
	for _, bin := range res.PerIndex {
		assert.Equal(t, int64(bin.Count), cat.NumTriples(bin.Key))
	}
	assert.Zero(t, cat.NumTriples(0))
	assert.Zero(t, cat.NumTriples(99))

	triples, err := cat.Triples(1)
	require.NoError(t, err)
	require.Len(t, triples, 10)
	assert.Equal(t, gocascade.Triple{A: 1, B: 2, N: 1}, triples[0])
	assert.Equal(t, gocascade.Triple{A: 4, B: 3, N: 1}, triples[9])

	_, err = cat.TryAddTriple(gocascade.Triple{A: -1, B: 2, N: 1})
	require.ErrorIs(t, err, gocascade.ErrInvalidArgument)

	// key fields are 32 bits; larger values must not alias smaller ones
	_, err = cat.TryAddTriple(gocascade.Triple{A: 1 + 1<<32, B: 2, N: 1})
	require.ErrorIs(t, err, gocascade.ErrInvalidArgument)
	_, err = cat.TryAddTriple(gocascade.Triple{A: 1, B: 2, N: 1 << 32})
	require.ErrorIs(t, err, gocascade.ErrInvalidArgument)
	assert.Equal(t, int64(10), cat.NumTriples(1))

	triples, err = cat.Triples(1 << 32)
	require.NoError(t, err)
	assert.Empty(t, triples)
}

func TestUseAfterClose(t *testing.T) {
	cat, err := catalog.OpenCatalog(gocascade.CatalogOpts{})
	require.NoError(t, err)

	_, err = cat.PutSequence("c3", gocascade.Sequence{1, 2, 3})
	require.NoError(t, err)
	require.NoError(t, cat.Close())
	require.NoError(t, cat.Close())

	_, err = cat.GetSequence("c3")
	require.ErrorIs(t, err, gocascade.ErrClosed)
	_, err = cat.SequenceNames()
	require.ErrorIs(t, err, gocascade.ErrClosed)
	_, err = cat.PutSequence("c4", gocascade.Sequence{1, 2, 3, 4})
	require.ErrorIs(t, err, gocascade.ErrClosed)
	_, err = cat.TryAddTriple(gocascade.Triple{A: 1, B: 2, N: 1})
	require.ErrorIs(t, err, gocascade.ErrClosed)
	_, err = cat.Triples(1)
	require.ErrorIs(t, err, gocascade.ErrClosed)
	assert.Equal(t, int64(1), cat.NumSequences())
}

func TestOpenErrors(t *testing.T) {
	_, err := catalog.OpenCatalog(gocascade.CatalogOpts{ReadOnly: true})
	require.ErrorIs(t, err, gocascade.ErrInvalidArgument)
}

func TestCatalogState(t *testing.T) {
	state := catalog.CatalogState{
		MajorVers:    2026,
		MinorVers:    1,
		NumSequences: 3,
		NumTriples:   []uint64{0, 10, 300},
	}
	buf, err := state.Marshal()
	require.NoError(t, err)

	var got catalog.CatalogState
	require.NoError(t, got.Unmarshal(buf))
	assert.Equal(t, state, got)

	require.ErrorIs(t, got.Unmarshal(buf[:3]), gocascade.ErrBadEncoding)
}
