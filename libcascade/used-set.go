package libcascade

// usedSet is a bitset of positive values, grown on demand.
type usedSet struct {
	words []uint64
	count int
}

func newUsedSet(capacityHint int) *usedSet {
	if capacityHint < 64 {
		capacityHint = 64 // prevent rapid resizing
	}
	return &usedSet{
		words: make([]uint64, 0, (capacityHint+63)/64),
	}
}

func (set *usedSet) Has(v int) bool {
	if v < 0 {
		return false
	}
	wi := v >> 6
	if wi >= len(set.words) {
		return false
	}
	return set.words[wi]&(1<<(uint(v)&63)) != 0
}

// TryAdd marks v as used, returning false if it already was.
func (set *usedSet) TryAdd(v int) bool {
	if v < 0 || set.Has(v) {
		return false
	}
	wi := v >> 6
	for wi >= len(set.words) {
		set.words = append(set.words, 0)
	}
	set.words[wi] |= 1 << (uint(v) & 63)
	set.count++
	return true
}

func (set *usedSet) Len() int {
	return set.count
}
