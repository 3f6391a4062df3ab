package freq

import (
	"github.com/nao1215/modelcount/internal/model"
)

const (
	// InitialBuckets is the bucket count a fresh table starts with.
	// It is a power of two so that bucket selection can mask instead of
	// divide; every doubling preserves that property.
	InitialBuckets = 4096

	// loadFactorNum/loadFactorDen express the 3/4 growth threshold.
	// The table doubles before an insertion would push
	// size/bucket_count to or beyond this ratio.
	loadFactorNum = 3
	loadFactorDen = 4

	// FNV-1a 64-bit parameters.
	fnvOffsetBasis uint64 = 1469598103934665603
	fnvPrime       uint64 = 1099511628211
)

// entry is a single distinct value and its occurrence count.
// Entries hashing to the same bucket form a singly-linked chain.
type entry struct {
	key   string
	count uint64
	next  *entry
}

// Table counts occurrences of distinct string values.
// The zero value is not usable; create tables with New.
type Table struct {
	buckets []*entry
	size    int
}

// New creates an empty table with the initial bucket capacity.
func New() *Table {
	return &Table{
		buckets: make([]*entry, InitialBuckets),
	}
}

// hashString is FNV-1a over the bytes of s.
//
// The hash choice and constants are a compatibility contract with the C
// model_count tool: bucket placement matches it bit for bit.
func hashString(s string) uint64 {
	h := fnvOffsetBasis
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= fnvPrime
	}
	return h
}

// Increment records one occurrence of value, creating its entry on first
// sight. The occurrence counter is a plain uint64 and wraps silently on
// overflow.
func (t *Table) Increment(value string) {
	t.add(value, 1)
}

// add records n occurrences of value.
func (t *Table) add(value string, n uint64) {
	if t.size*loadFactorDen >= len(t.buckets)*loadFactorNum {
		t.grow()
	}

	idx := hashString(value) & uint64(len(t.buckets)-1)
	for e := t.buckets[idx]; e != nil; e = e.next {
		if e.key == value {
			e.count += n
			return
		}
	}

	t.buckets[idx] = &entry{key: value, count: n, next: t.buckets[idx]}
	t.size++
}

// grow doubles the bucket array and relinks every entry into it.
// Entries are moved, not copied; keys are never re-allocated.
func (t *Table) grow() {
	next := make([]*entry, len(t.buckets)*2)
	for _, e := range t.buckets {
		for e != nil {
			tail := e.next
			idx := hashString(e.key) & uint64(len(next)-1)
			e.next = next[idx]
			next[idx] = e
			e = tail
		}
	}
	t.buckets = next
}

// Len returns the number of distinct values stored.
func (t *Table) Len() int {
	return t.size
}

// Get returns the stored count for value and whether value has been seen.
func (t *Table) Get(value string) (uint64, bool) {
	idx := hashString(value) & uint64(len(t.buckets)-1)
	for e := t.buckets[idx]; e != nil; e = e.next {
		if e.key == value {
			return e.count, true
		}
	}
	return 0, false
}

// Merge folds every entry of other into t. Counts for values present in
// both tables are summed. other is left unchanged.
func (t *Table) Merge(other *Table) {
	for _, e := range other.buckets {
		for ; e != nil; e = e.next {
			t.add(e.key, e.count)
		}
	}
}

// Pairs flattens the table into a slice of value/count pairs.
// The order is unspecified; callers sort for presentation.
func (t *Table) Pairs() []model.ValueCount {
	pairs := make([]model.ValueCount, 0, t.size)
	for _, e := range t.buckets {
		for ; e != nil; e = e.next {
			pairs = append(pairs, model.ValueCount{Value: e.key, Count: e.count})
		}
	}
	return pairs
}
