package gocascade

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTripleDerived(t *testing.T) {
	assert.Equal(t, 3, Triple{A: 7, B: 4, N: 5}.Gap())
	assert.Equal(t, 3, Triple{A: 4, B: 7, N: 5}.Gap())

	assert.True(t, Triple{A: 1, B: 2, N: 5}.HasCorrection())
	assert.False(t, Triple{A: 1, B: 3, N: 5}.HasCorrection())
	assert.True(t, Triple{A: 1, B: 3, N: 5}.HasCorrectionMod(4))
	assert.False(t, Triple{A: 1, B: 3, N: 5}.HasCorrectionMod(0))

	var b strings.Builder
	Triple{A: 3, B: 6, N: 5}.WriteAsString(&b)
	assert.Equal(t, "5,3,6,3", b.String())
}

func TestSequenceEnc(t *testing.T) {
	S1 := Sequence{1, 2, 3, 64, 65, -1234, 8765432311}

	for _, scrap := range [][]byte{make([]byte, 0, 4), make([]byte, 0, 200)} {
		enc := S1.AppendLSM(scrap)

		var dec Sequence
		require.NoError(t, dec.InitFromLSM(enc))
		require.Equal(t, S1, dec)
	}

	var dec Sequence
	enc := Sequence{1 << 40}.AppendLSM(nil)
	err := dec.InitFromLSM(enc[:len(enc)-1])
	require.ErrorIs(t, err, ErrBadEncoding)
}

func TestSequenceHelpers(t *testing.T) {
	S := Sequence{3, 1, 4, 1, 5}

	assert.Equal(t, 5, S.Max())
	assert.Equal(t, 1, S.Min())
	assert.Equal(t, 0, Sequence{}.Max())
	assert.Equal(t, []int{2, 3, 3, 4}, S.Gaps())

	assert.True(t, Sequence{3, 1}.IsPrefixOf(S))
	assert.True(t, Sequence{}.IsPrefixOf(S))
	assert.False(t, Sequence{3, 2}.IsPrefixOf(S))
	assert.False(t, append(S.Clone(), 9).IsPrefixOf(S))

	c := S.Clone()
	c[0] = 99
	assert.Equal(t, 3, S[0])
}

func TestParseParams(t *testing.T) {
	p, err := ParseParams([]byte("search_factor: 20\nbound_offset: 3\n"))
	require.NoError(t, err)
	assert.Equal(t, Params{BoundScale: 2, BoundOffset: 3, CorrectionModulus: 3, SearchFactor: 20}, p)

	_, err = ParseParams([]byte("correction_modulus: 0\n"))
	require.ErrorIs(t, err, ErrBadParam)

	_, err = ParseParams([]byte("bound_scale: [\n"))
	require.ErrorIs(t, err, ErrBadParam)

	p, err = LoadParams("")
	require.NoError(t, err)
	assert.Equal(t, DefaultParams, p)
}

func TestExhaustionError(t *testing.T) {
	var err error = &ExhaustionError{Position: 1, Previous: 1, Bound: 20}
	assert.ErrorIs(t, err, ErrExhausted)
	assert.Contains(t, err.Error(), "position 1")
}
