package bloom

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilter_AddContains(t *testing.T) {
	f := NewWithEstimates(1000, 0.01)

	for i := 0; i < 1000; i++ {
		f.Add([]byte(fmt.Sprintf("item-%d", i)))
	}
	for i := 0; i < 1000; i++ {
		assert.True(t, f.Contains([]byte(fmt.Sprintf("item-%d", i))),
			"no false negatives allowed")
	}
	assert.Equal(t, uint64(1000), f.Count())
}

func TestFilter_FalsePositiveRateNearTarget(t *testing.T) {
	f := NewWithEstimates(1000, 0.01)
	for i := 0; i < 1000; i++ {
		f.Add([]byte(fmt.Sprintf("item-%d", i)))
	}

	falsePositives := 0
	probes := 10000
	for i := 0; i < probes; i++ {
		if f.Contains([]byte(fmt.Sprintf("absent-%d", i))) {
			falsePositives++
		}
	}
	// 1% target with generous slack.
	assert.Less(t, float64(falsePositives)/float64(probes), 0.03)
	assert.Less(t, f.FalsePositiveRate(), 0.02)
}

func TestFilter_Reset(t *testing.T) {
	f := NewWithEstimates(100, 0.01)
	f.Add([]byte("gone"))
	f.Reset()
	assert.False(t, f.Contains([]byte("gone")))
	assert.Equal(t, uint64(0), f.Count())
}

func TestOptimalParameters(t *testing.T) {
	bits, hashes := OptimalParameters(1000, 0.01)
	assert.Greater(t, bits, 9000, "roughly 9.6 bits per item at 1%% FPR")
	assert.Less(t, bits, 11000)
	assert.GreaterOrEqual(t, hashes, 6)
	assert.LessOrEqual(t, hashes, 8)

	// Degenerate inputs fall back to sane defaults.
	bits, hashes = OptimalParameters(0, -1)
	assert.GreaterOrEqual(t, bits, 64)
	assert.GreaterOrEqual(t, hashes, 1)
}
