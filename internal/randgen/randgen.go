// Package randgen produces fixed-length random byte strings for workload
// keys and values. A single seeded generator is owned by one run; it is
// threaded explicitly through every call that needs randomness and must not
// be shared across goroutines without external synchronization.
package randgen

import (
	"golang.org/x/exp/rand"
)

// alphanumericAlphabet is the full key/value alphabet. Keys and values are
// drawn uniformly from it, so emitted lines never need escaping.
const alphanumericAlphabet = `ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789`

// Generator draws alphanumeric byte strings from a seeded PRNG.
type Generator struct {
	rng *rand.Rand
}

// New creates a Generator seeded with the given seed. The same seed always
// yields the same sequence of strings.
func New(seed uint64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// NewFromRand wraps an existing PRNG. Used where the caller owns the seed
// lifecycle (e.g. per-section streams in parallel generation).
func NewFromRand(rng *rand.Rand) *Generator {
	return &Generator{rng: rng}
}

// Rand exposes the underlying PRNG for uniform index draws.
func (g *Generator) Rand() *rand.Rand {
	return g.rng
}

// Bytes returns a freshly allocated string of exactly n alphanumeric bytes.
func (g *Generator) Bytes(n int) []byte {
	b := make([]byte, n)
	g.Fill(b)
	return b
}

// Fill overwrites b with alphanumeric bytes drawn uniformly from the alphabet.
func (g *Generator) Fill(b []byte) {
	for i := range b {
		b[i] = alphanumericAlphabet[g.rng.Intn(len(alphanumericAlphabet))]
	}
}

// Intn returns a uniform int in [0, n). n must be > 0.
func (g *Generator) Intn(n int) int {
	return g.rng.Intn(n)
}
