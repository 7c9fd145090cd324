package keyset

import (
	"bytes"
	"sort"

	"golang.org/x/exp/rand"
)

// Slice is the plain-sequence variant. Remove shifts the tail down so index
// order (and sortedness) is preserved; Contains scans linearly.
type Slice struct {
	keys   [][]byte
	sorted bool
}

// NewSlice creates a plain-sequence key set with the given capacity hint.
func NewSlice(capacityHint int) *Slice {
	return &Slice{
		keys:   make([][]byte, 0, max(capacityHint, 0)),
		sorted: true,
	}
}

func (s *Slice) Len() int {
	return len(s.keys)
}

func (s *Slice) Empty() bool {
	return len(s.keys) == 0
}

func (s *Slice) Push(key []byte) {
	if s.sorted && len(s.keys) > 0 && bytes.Compare(key, s.keys[len(s.keys)-1]) < 0 {
		s.sorted = false
	}
	s.keys = append(s.keys, key)
}

func (s *Slice) Remove(i int) []byte {
	key := s.keys[i]
	// Ordered removal keeps the sorted flag valid.
	s.keys = append(s.keys[:i], s.keys[i+1:]...)
	return key
}

func (s *Slice) Get(i int) []byte {
	if i < 0 || i >= len(s.keys) {
		return nil
	}
	return s.keys[i]
}

func (s *Slice) Random(rng *rand.Rand) []byte {
	return s.keys[rng.Intn(len(s.keys))]
}

func (s *Slice) Contains(key []byte) bool {
	for _, k := range s.keys {
		if bytes.Equal(k, key) {
			return true
		}
	}
	return false
}

func (s *Slice) Sort() {
	if s.sorted {
		return
	}
	sort.Slice(s.keys, func(a, b int) bool {
		return bytes.Compare(s.keys[a], s.keys[b]) < 0
	})
	s.sorted = true
}
