package keyset

import (
	"bytes"
	"sort"

	"golang.org/x/exp/rand"
)

// Indexed is the sequence-plus-index-map variant. A key-to-position map gives
// O(1) amortized push, remove, and membership. Remove swaps the last key
// into the hole and truncates, fixing the moved key's map entry, which
// breaks sortedness. Push silently drops keys that are already present;
// this de-duplication guarantee is unique to this variant.
type Indexed struct {
	keys   [][]byte
	index  map[string]int
	sorted bool
}

// NewIndexed creates an index-map key set with the given capacity hint.
func NewIndexed(capacityHint int) *Indexed {
	return &Indexed{
		keys:   make([][]byte, 0, max(capacityHint, 0)),
		index:  make(map[string]int, max(capacityHint, 0)),
		sorted: true,
	}
}

func (x *Indexed) Len() int {
	return len(x.keys)
}

func (x *Indexed) Empty() bool {
	return len(x.keys) == 0
}

func (x *Indexed) Push(key []byte) {
	k := string(key)
	if _, dup := x.index[k]; dup {
		return
	}
	if x.sorted && len(x.keys) > 0 && bytes.Compare(key, x.keys[len(x.keys)-1]) < 0 {
		x.sorted = false
	}
	x.index[k] = len(x.keys)
	x.keys = append(x.keys, key)
}

func (x *Indexed) Remove(i int) []byte {
	key := x.keys[i]
	last := len(x.keys) - 1
	delete(x.index, string(key))
	if i != last {
		x.keys[i] = x.keys[last]
		x.index[string(x.keys[i])] = i
		// Swap-remove reorders the tail.
		x.sorted = false
	}
	x.keys = x.keys[:last]
	return key
}

func (x *Indexed) Get(i int) []byte {
	if i < 0 || i >= len(x.keys) {
		return nil
	}
	return x.keys[i]
}

func (x *Indexed) Random(rng *rand.Rand) []byte {
	return x.keys[rng.Intn(len(x.keys))]
}

func (x *Indexed) Contains(key []byte) bool {
	_, ok := x.index[string(key)]
	return ok
}

func (x *Indexed) Sort() {
	if x.sorted {
		return
	}
	sort.Slice(x.keys, func(a, b int) bool {
		return bytes.Compare(x.keys[a], x.keys[b]) < 0
	})
	for i, k := range x.keys {
		x.index[string(k)] = i
	}
	x.sorted = true
}
