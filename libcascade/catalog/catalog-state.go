package catalog

import (
	"github.com/fine-structures/coralia/gocascade"
	"github.com/gogo/protobuf/proto"
	"github.com/pkg/errors"
)

const (
	kMajorVers = 2026
	kMinorVers = 1
)

// CatalogState is the bookkeeping persisted under gCatalogStateKey.
type CatalogState struct {
	MajorVers    uint64
	MinorVers    uint64
	NumSequences uint64
	NumTriples   []uint64 // NumTriples[n] is the number of distinct triples added for index n
}

func (state *CatalogState) Marshal() ([]byte, error) {
	buf := proto.NewBuffer(make([]byte, 0, 32+8*len(state.NumTriples)))
	for _, v := range []uint64{
		state.MajorVers,
		state.MinorVers,
		state.NumSequences,
		uint64(len(state.NumTriples)),
	} {
		if err := buf.EncodeVarint(v); err != nil {
			return nil, err
		}
	}
	for _, count := range state.NumTriples {
		if err := buf.EncodeVarint(count); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func (state *CatalogState) Unmarshal(in []byte) error {
	buf := proto.NewBuffer(in)

	var fields [4]uint64
	for i := range fields {
		v, err := buf.DecodeVarint()
		if err != nil {
			return errors.Wrap(gocascade.ErrBadEncoding, "catalog state header")
		}
		fields[i] = v
	}
	state.MajorVers = fields[0]
	state.MinorVers = fields[1]
	state.NumSequences = fields[2]

	numIndices := fields[3]
	if numIndices > uint64(len(in)) {
		return errors.Wrap(gocascade.ErrBadEncoding, "catalog state triple counts")
	}
	state.NumTriples = make([]uint64, numIndices)
	for i := range state.NumTriples {
		v, err := buf.DecodeVarint()
		if err != nil {
			return errors.Wrap(gocascade.ErrBadEncoding, "catalog state triple counts")
		}
		state.NumTriples[i] = v
	}
	return nil
}
