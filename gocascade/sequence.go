package gocascade

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// IsPrefixOf returns true if every term of seq equals the term at the same index in target.
func (seq Sequence) IsPrefixOf(target Sequence) bool {
	if len(seq) > len(target) {
		return false
	}
	for i, Si := range seq {
		if Si != target[i] {
			return false
		}
	}
	return true
}

// Max returns the largest term, or 0 for an empty sequence.
func (seq Sequence) Max() int {
	maxVal := 0
	for i, Si := range seq {
		if i == 0 || Si > maxVal {
			maxVal = Si
		}
	}
	return maxVal
}

// Min returns the smallest term, or 0 for an empty sequence.
func (seq Sequence) Min() int {
	minVal := 0
	for i, Si := range seq {
		if i == 0 || Si < minVal {
			minVal = Si
		}
	}
	return minVal
}

// Clone returns a copy that shares no storage with seq.
func (seq Sequence) Clone() Sequence {
	if seq == nil {
		return nil
	}
	return append(Sequence(make([]int, 0, len(seq))), seq...)
}

// Gaps returns |seq[i+1]-seq[i]| for each consecutive pair.
func (seq Sequence) Gaps() []int {
	if len(seq) < 2 {
		return nil
	}
	gaps := make([]int, len(seq)-1)
	for i := range gaps {
		gaps[i] = Triple{A: seq[i], B: seq[i+1], N: i + 1}.Gap()
	}
	return gaps
}

// AppendLSM appends a varint binary encoding of seq to out.
func (seq Sequence) AppendLSM(out []byte) []byte {
	var scrap [binary.MaxVarintLen64]byte
	for _, Si := range seq {
		n := binary.PutVarint(scrap[:], int64(Si))
		out = append(out, scrap[:n]...)
	}
	return out
}

// InitFromLSM assigns this Sequence from an encoding made by AppendLSM().
func (seq *Sequence) InitFromLSM(in []byte) error {
	out := (*seq)[:0]
	rdr := bytes.NewReader(in)
	for rdr.Len() > 0 {
		term, err := binary.ReadVarint(rdr)
		if err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return errors.Wrapf(ErrBadEncoding, "truncated after %d terms", len(out))
			}
			return errors.Wrap(ErrBadEncoding, err.Error())
		}
		out = append(out, int(term))
	}
	*seq = out
	return nil
}
