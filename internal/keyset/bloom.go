package keyset

import (
	"bytes"
	"sort"

	"golang.org/x/exp/rand"

	"github.com/arkilian/loadgen/internal/bloom"
)

// Bloom is the sequence-plus-approximate-filter variant. Membership is O(1)
// amortized with a tunable false-positive rate, which empty point queries
// tolerate: a false positive causes one extra probe draw, never an invalid
// line. The filter does not support removal, so Remove rebuilds it from the
// surviving keys, O(n) per delete.
type Bloom struct {
	keys   [][]byte
	filter *bloom.Filter
	hint   int
	sorted bool
}

// NewBloom creates a bloom-filtered key set sized for capacityHint keys at
// ~1% false positives.
func NewBloom(capacityHint int) *Bloom {
	hint := max(capacityHint, 1)
	return &Bloom{
		keys:   make([][]byte, 0, hint),
		filter: bloom.NewWithEstimates(hint, bloomTargetFPR),
		hint:   hint,
		sorted: true,
	}
}

func (b *Bloom) Len() int {
	return len(b.keys)
}

func (b *Bloom) Empty() bool {
	return len(b.keys) == 0
}

func (b *Bloom) Push(key []byte) {
	if b.sorted && len(b.keys) > 0 && bytes.Compare(key, b.keys[len(b.keys)-1]) < 0 {
		b.sorted = false
	}
	b.keys = append(b.keys, key)
	b.filter.Add(key)
}

func (b *Bloom) Remove(i int) []byte {
	key := b.keys[i]
	b.keys = append(b.keys[:i], b.keys[i+1:]...)
	b.rebuild()
	return key
}

func (b *Bloom) rebuild() {
	b.filter.Reset()
	for _, k := range b.keys {
		b.filter.Add(k)
	}
}

func (b *Bloom) Get(i int) []byte {
	if i < 0 || i >= len(b.keys) {
		return nil
	}
	return b.keys[i]
}

func (b *Bloom) Random(rng *rand.Rand) []byte {
	return b.keys[rng.Intn(len(b.keys))]
}

// Contains may return a false positive, never a false negative.
func (b *Bloom) Contains(key []byte) bool {
	return b.filter.Contains(key)
}

func (b *Bloom) Sort() {
	if b.sorted {
		return
	}
	sort.Slice(b.keys, func(x, y int) bool {
		return bytes.Compare(b.keys[x], b.keys[y]) < 0
	})
	b.sorted = true
}
