package catalog

import (
	"encoding/binary"
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/fine-structures/coralia/gocascade"
	"github.com/gogo/protobuf/proto"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

/***

Catalog database format:

	gCatalogStateKey                  => CatalogState

	's', name                         => SequenceRecord: RunID (raw bytes), Created (varint unix ms), Terms (raw bytes of Sequence.AppendLSM)

	't', n (uint32), a (uint32), b (uint32) => nil (set membership of distinct cascade triples)

Triple keys are big endian so a prefix scan of 't', n visits the triples of index n in (a, b) order.

***/

var (
	gCatalogStateKey = []byte{0x00, 0x00, 0x01}
)

const (
	kSequencePrefix = 's'
	kTriplePrefix   = 't'
)

// SequenceRecord is a named sequence stored in a Catalog.
type SequenceRecord struct {
	Name    string
	RunID   uuid.UUID
	Created time.Time
	Terms   gocascade.Sequence
}

// Catalog is a db wrapper for named sequences and a set of distinct cascade triples.
type Catalog struct {
	mu         sync.Mutex
	readOnly   bool
	stateDirty bool
	state      CatalogState
	db         *badger.DB
}

// OpenCatalog opens (or creates) the catalog at opts.DbPathName; an empty path opens an in-memory catalog.
func OpenCatalog(opts gocascade.CatalogOpts) (*Catalog, error) {
	cat := &Catalog{
		readOnly: opts.ReadOnly,
	}

	dbOpts := badger.DefaultOptions(opts.DbPathName)
	dbOpts.ReadOnly = opts.ReadOnly
	dbOpts.DetectConflicts = false // not needed so disable for performance
	dbOpts.Logger = nil
	dbOpts.MetricsEnabled = false

	// Badger for windows currently does not support read-only mode
	if runtime.GOOS == "windows" {
		dbOpts.ReadOnly = false
	}

	if len(opts.DbPathName) == 0 {
		if opts.ReadOnly {
			return nil, errors.Wrap(gocascade.ErrInvalidArgument, "DbPathName must be specified for read-only catalog")
		}
		dbOpts.InMemory = true
	}

	var err error
	cat.db, err = badger.Open(dbOpts)
	if err != nil {
		return nil, errors.Wrapf(err, "opening catalog %q", opts.DbPathName)
	}

	err = cat.loadState()
	if errors.Is(err, badger.ErrKeyNotFound) {
		err = nil
		cat.stateDirty = !cat.readOnly
		cat.state = CatalogState{
			MajorVers: kMajorVers,
			MinorVers: kMinorVers,
		}
	}
	if err == nil && (cat.state.MajorVers != kMajorVers || cat.state.MinorVers != kMinorVers) {
		err = errors.Wrapf(gocascade.ErrCatalogVersion, "found v%d.%d", cat.state.MajorVers, cat.state.MinorVers)
	}
	if err != nil {
		cat.Close()
		return nil, err
	}

	klog.V(1).Infof("opened catalog %q (%d sequences)", opts.DbPathName, cat.state.NumSequences)
	return cat, nil
}

func (cat *Catalog) loadState() error {
	return cat.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(gCatalogStateKey)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return cat.state.Unmarshal(val)
		})
	})
}

func (cat *Catalog) flushState() error {
	if !cat.stateDirty || cat.readOnly {
		return nil
	}
	err := cat.db.Update(func(txn *badger.Txn) error {
		stateBuf, err := cat.state.Marshal()
		if err != nil {
			return err
		}
		return txn.Set(gCatalogStateKey, stateBuf)
	})
	if err == nil {
		cat.stateDirty = false
	}
	return err
}

// Close flushes the catalog state and closes the db.
func (cat *Catalog) Close() error {
	cat.mu.Lock()
	defer cat.mu.Unlock()

	if cat.db == nil {
		return nil
	}
	err := cat.flushState()
	if closeErr := cat.db.Close(); err == nil {
		err = closeErr
	}
	cat.db = nil
	klog.V(1).Info("closed catalog")
	return err
}

func (cat *Catalog) IsReadOnly() bool {
	return cat.readOnly
}

// NumSequences returns the number of distinct sequence names stored.
func (cat *Catalog) NumSequences() int64 {
	cat.mu.Lock()
	defer cat.mu.Unlock()
	return int64(cat.state.NumSequences)
}

// NumTriples returns the number of distinct triples added for index n; an out of bounds index returns 0.
func (cat *Catalog) NumTriples(n int) int64 {
	cat.mu.Lock()
	defer cat.mu.Unlock()
	if n < 0 || n >= len(cat.state.NumTriples) {
		return 0
	}
	return int64(cat.state.NumTriples[n])
}

// checkOpen returns ErrClosed once Close has been called; cat.mu must be held.
func (cat *Catalog) checkOpen() error {
	if cat.db == nil {
		return gocascade.ErrClosed
	}
	return nil
}

// fitsKey reports whether v can be stored in a 32-bit key field.
func fitsKey(v int) bool {
	return v >= 0 && uint64(v) <= math.MaxUint32
}

func formSequenceKey(name string) []byte {
	key := make([]byte, 0, 1+len(name))
	key = append(key, kSequencePrefix)
	return append(key, name...)
}

func formTripleKey(t gocascade.Triple) []byte {
	var key [13]byte
	key[0] = kTriplePrefix
	binary.BigEndian.PutUint32(key[1:], uint32(t.N))
	binary.BigEndian.PutUint32(key[5:], uint32(t.A))
	binary.BigEndian.PutUint32(key[9:], uint32(t.B))
	return key[:]
}

// PutSequence stores seq under name (replacing any previous sequence of that name) and returns the
// run ID stamped on the record.
func (cat *Catalog) PutSequence(name string, seq gocascade.Sequence) (uuid.UUID, error) {
	if cat.readOnly {
		return uuid.Nil, gocascade.ErrReadOnly
	}
	if name == "" {
		return uuid.Nil, errors.Wrap(gocascade.ErrInvalidArgument, "empty sequence name")
	}

	runID := uuid.New()
	buf := proto.NewBuffer(make([]byte, 0, 32+4*len(seq)))
	if err := buf.EncodeRawBytes(runID[:]); err != nil {
		return uuid.Nil, err
	}
	if err := buf.EncodeVarint(uint64(time.Now().UnixMilli())); err != nil {
		return uuid.Nil, err
	}
	if err := buf.EncodeRawBytes(seq.AppendLSM(nil)); err != nil {
		return uuid.Nil, err
	}

	cat.mu.Lock()
	defer cat.mu.Unlock()
	if err := cat.checkOpen(); err != nil {
		return uuid.Nil, err
	}

	key := formSequenceKey(name)
	isNew := false
	err := cat.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			isNew = true
		} else if err != nil {
			return err
		}
		return txn.Set(key, buf.Bytes())
	})
	if err != nil {
		return uuid.Nil, errors.Wrapf(err, "storing sequence %q", name)
	}
	if isNew {
		cat.state.NumSequences++
		cat.stateDirty = true
	}

	klog.V(1).Infof("stored sequence %q (%d terms, run %v)", name, len(seq), runID)
	return runID, nil
}

// GetSequence loads the sequence stored under name, returning ErrNotFound if there is none.
func (cat *Catalog) GetSequence(name string) (SequenceRecord, error) {
	rec := SequenceRecord{
		Name: name,
	}

	cat.mu.Lock()
	defer cat.mu.Unlock()
	if err := cat.checkOpen(); err != nil {
		return rec, err
	}

	var val []byte
	err := cat.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(formSequenceKey(name))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return rec, errors.Wrapf(gocascade.ErrNotFound, "sequence %q", name)
	}
	if err != nil {
		return rec, err
	}

	buf := proto.NewBuffer(val)
	runID, err := buf.DecodeRawBytes(false)
	if err != nil || len(runID) != len(rec.RunID) {
		return rec, errors.Wrapf(gocascade.ErrBadEncoding, "sequence %q run ID", name)
	}
	copy(rec.RunID[:], runID)

	created, err := buf.DecodeVarint()
	if err != nil {
		return rec, errors.Wrapf(gocascade.ErrBadEncoding, "sequence %q timestamp", name)
	}
	rec.Created = time.UnixMilli(int64(created))

	terms, err := buf.DecodeRawBytes(false)
	if err != nil {
		return rec, errors.Wrapf(gocascade.ErrBadEncoding, "sequence %q terms", name)
	}
	if err = rec.Terms.InitFromLSM(terms); err != nil {
		return rec, errors.Wrapf(err, "sequence %q", name)
	}
	return rec, nil
}

// SequenceNames returns the names of all stored sequences in ascending order.
func (cat *Catalog) SequenceNames() ([]string, error) {
	cat.mu.Lock()
	defer cat.mu.Unlock()
	if err := cat.checkOpen(); err != nil {
		return nil, err
	}

	var names []string
	err := cat.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{
			PrefetchValues: false,
			Prefix:         []byte{kSequencePrefix},
		})
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			names = append(names, string(it.Item().Key()[1:]))
		}
		return nil
	})
	return names, err
}

// TryAddTriple adds t if it is not already present, returning true if it was added.
func (cat *Catalog) TryAddTriple(t gocascade.Triple) (bool, error) {
	if cat.readOnly {
		return false, gocascade.ErrReadOnly
	}
	if !fitsKey(t.N) || !fitsKey(t.A) || !fitsKey(t.B) {
		return false, errors.Wrapf(gocascade.ErrInvalidArgument, "triple %v is outside 0..%d", t, uint64(math.MaxUint32))
	}

	cat.mu.Lock()
	defer cat.mu.Unlock()
	if err := cat.checkOpen(); err != nil {
		return false, err
	}

	key := formTripleKey(t)
	added := false
	err := cat.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return nil // already in the db
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		added = true
		return txn.Set(key, nil)
	})
	if err != nil {
		return false, err
	}

	if added {
		for len(cat.state.NumTriples) <= t.N {
			cat.state.NumTriples = append(cat.state.NumTriples, 0)
		}
		cat.state.NumTriples[t.N]++
		cat.stateDirty = true
	}
	return added, nil
}

// Triples returns the stored triples of index n, ordered by (a, b).
func (cat *Catalog) Triples(n int) ([]gocascade.Triple, error) {
	if !fitsKey(n) {
		return nil, nil
	}

	cat.mu.Lock()
	defer cat.mu.Unlock()
	if err := cat.checkOpen(); err != nil {
		return nil, err
	}

	var prefix [5]byte
	prefix[0] = kTriplePrefix
	binary.BigEndian.PutUint32(prefix[1:], uint32(n))

	var triples []gocascade.Triple
	err := cat.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{
			PrefetchValues: false,
			Prefix:         prefix[:],
		})
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			key := it.Item().Key()
			if len(key) != 13 {
				return errors.Wrapf(gocascade.ErrBadEncoding, "triple key % x", key)
			}
			triples = append(triples, gocascade.Triple{
				N: int(binary.BigEndian.Uint32(key[1:])),
				A: int(binary.BigEndian.Uint32(key[5:])),
				B: int(binary.BigEndian.Uint32(key[9:])),
			})
		}
		return nil
	})
	return triples, err
}
