// Package keyset tracks the currently-valid keys of one workload section.
// It answers the questions the sequencer asks while resolving operations:
// how many keys are live, fetch by index, fetch at random, remove by index,
// membership, and a stably sorted view for range queries.
//
// Several strategies trade memory and CPU differently; all satisfy the same
// contract and are selected per section from the section's operation mix.
package keyset

import (
	"golang.org/x/exp/rand"
)

// KeySet tracks the live keys of a section.
//
// Push is O(1) amortized. Remove invalidates index ordering. Sort is lazy
// and idempotent: it re-sorts only when a push broke ascending order, so
// many inserts between range queries amortize to one sort.
type KeySet interface {
	// Len returns the number of live keys.
	Len() int

	// Empty reports whether no keys are live.
	Empty() bool

	// Push makes key valid. The de-duplicating variant silently drops keys
	// that are already present.
	Push(key []byte)

	// Remove removes and returns the key at position i.
	Remove(i int) []byte

	// Get returns the key at position i, or nil if out of range.
	Get(i int) []byte

	// Random returns a uniformly random live key. Panics if empty; the
	// sequencer guarantees a non-empty set before sampling.
	Random(rng *rand.Rand) []byte

	// Contains reports whether key is live. The bloom variant may report a
	// false positive, never a false negative.
	Contains(key []byte) bool

	// Sort establishes ascending byte order for subsequent Get/Random
	// access. Idempotent; no-op when already sorted.
	Sort()
}

// Strategy selects a KeySet implementation.
type Strategy string

const (
	// StrategyAuto picks a variant from the section's operation mix.
	StrategyAuto Strategy = "auto"
	// StrategySlice is a plain sequence: O(n) remove and membership, no
	// extra memory. Cheapest when the section has few deletes and no
	// membership tests.
	StrategySlice Strategy = "slice"
	// StrategyHashed adds a side multiset for O(1) average membership at
	// the cost of double storage and double mutation.
	StrategyHashed Strategy = "hashed"
	// StrategyBloom adds an approximate membership filter (~1% false
	// positives). Removal rebuilds the filter wholesale, O(n) per delete.
	StrategyBloom Strategy = "bloom"
	// StrategyIndexed keeps a key-to-position map with swap-remove: O(1)
	// amortized push, remove, and membership. De-duplicates on Push.
	StrategyIndexed Strategy = "indexed"
)

// bloomTargetFPR is tolerable for empty point queries, where a false
// positive only costs one extra probe draw.
const bloomTargetFPR = 0.01

// SectionProfile describes the parts of a section's operation mix that
// drive strategy selection.
type SectionProfile struct {
	CapacityHint         int
	HasDeletes           bool
	HasEmptyPointQueries bool
	AllowDuplicateKeys   bool
}

// ForSection constructs the key set for one section. StrategyAuto picks:
// the indexed variant when duplicates must collapse, the hashed variant
// when deletes and membership tests both occur (the bloom rebuild would be
// paid per delete), the bloom variant when only membership tests occur, and
// the plain slice otherwise.
func ForSection(strategy Strategy, p SectionProfile) KeySet {
	if strategy == StrategyAuto || strategy == "" {
		switch {
		case !p.AllowDuplicateKeys:
			strategy = StrategyIndexed
		case p.HasEmptyPointQueries && p.HasDeletes:
			strategy = StrategyHashed
		case p.HasEmptyPointQueries:
			strategy = StrategyBloom
		default:
			strategy = StrategySlice
		}
	}

	switch strategy {
	case StrategyHashed:
		return NewHashed(p.CapacityHint)
	case StrategyBloom:
		return NewBloom(p.CapacityHint)
	case StrategyIndexed:
		return NewIndexed(p.CapacityHint)
	default:
		return NewSlice(p.CapacityHint)
	}
}
