package keyset

import (
	"bytes"
	"sort"

	"golang.org/x/exp/rand"
)

// Hashed is the sequence-plus-side-set variant: a multiset of key counts
// rides alongside the sequence for O(1) average membership, at the cost of
// double storage and double mutation on push/remove. Duplicate keys may
// coexist; the multiset counts them.
type Hashed struct {
	keys   [][]byte
	counts map[string]int
	sorted bool
}

// NewHashed creates a hashed key set with the given capacity hint.
func NewHashed(capacityHint int) *Hashed {
	return &Hashed{
		keys:   make([][]byte, 0, max(capacityHint, 0)),
		counts: make(map[string]int, max(capacityHint, 0)),
		sorted: true,
	}
}

func (h *Hashed) Len() int {
	return len(h.keys)
}

func (h *Hashed) Empty() bool {
	return len(h.keys) == 0
}

func (h *Hashed) Push(key []byte) {
	if h.sorted && len(h.keys) > 0 && bytes.Compare(key, h.keys[len(h.keys)-1]) < 0 {
		h.sorted = false
	}
	h.keys = append(h.keys, key)
	h.counts[string(key)]++
}

func (h *Hashed) Remove(i int) []byte {
	key := h.keys[i]
	h.keys = append(h.keys[:i], h.keys[i+1:]...)
	k := string(key)
	if h.counts[k] <= 1 {
		delete(h.counts, k)
	} else {
		h.counts[k]--
	}
	return key
}

func (h *Hashed) Get(i int) []byte {
	if i < 0 || i >= len(h.keys) {
		return nil
	}
	return h.keys[i]
}

func (h *Hashed) Random(rng *rand.Rand) []byte {
	return h.keys[rng.Intn(len(h.keys))]
}

func (h *Hashed) Contains(key []byte) bool {
	return h.counts[string(key)] > 0
}

func (h *Hashed) Sort() {
	if h.sorted {
		return
	}
	sort.Slice(h.keys, func(a, b int) bool {
		return bytes.Compare(h.keys[a], h.keys[b]) < 0
	})
	h.sorted = true
}
