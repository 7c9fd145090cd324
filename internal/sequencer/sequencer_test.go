package sequencer

import (
	"bytes"
	"regexp"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arkilian/loadgen/internal/emitter"
	"github.com/arkilian/loadgen/internal/errors"
	"github.com/arkilian/loadgen/internal/randgen"
	"github.com/arkilian/loadgen/internal/spec"
)

func generate(t *testing.T, w *spec.WorkloadSpec, seed uint64) (string, error) {
	t.Helper()
	require.NoError(t, w.Validate())

	var buf bytes.Buffer
	em := emitter.New(&buf, 0)
	seq := New(Options{AllowDuplicateKeys: true})
	err := seq.Run(w, randgen.New(seed), em)
	return buf.String(), err
}

func oneSection(groups ...spec.Group) *spec.WorkloadSpec {
	return &spec.WorkloadSpec{Sections: []spec.Section{{
		Groups:          groups,
		KeySpace:        spec.KeySpaceAlphanumeric,
		KeyDistribution: spec.KeyDistributionUniform,
	}}}
}

func lines(out string) []string {
	return strings.Split(strings.TrimSuffix(out, "\n"), "\n")
}

func TestRun_SingleInsert(t *testing.T) {
	out, err := generate(t, oneSection(spec.Group{
		Inserts: &spec.Inserts{Amount: 1, KeyLen: 4, ValLen: 4},
	}), 1)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`\AI [A-Za-z0-9]{4} [A-Za-z0-9]{4}\n\z`), out)
}

func TestRun_OperationCountMatchesLines(t *testing.T) {
	w := oneSection(
		spec.Group{
			Inserts:      &spec.Inserts{Amount: 200, KeyLen: 8, ValLen: 8},
			Updates:      &spec.Updates{Amount: 50, ValLen: 8},
			PointQueries: &spec.PointQueries{Amount: 40},
		},
		spec.Group{
			Deletes:           &spec.Deletes{Amount: 30},
			EmptyPointQueries: &spec.EmptyPointQueries{Amount: 25, KeyLen: 8},
			RangeQueries:      &spec.RangeQueries{Amount: 10, Selectivity: 0.3},
		},
	)
	out, err := generate(t, w, 99)
	require.NoError(t, err)
	assert.Equal(t, w.OperationCount(), len(lines(out)))
}

func TestRun_BytesCountExactForInsertOnly(t *testing.T) {
	w := oneSection(spec.Group{
		Inserts: &spec.Inserts{Amount: 1000, KeyLen: 16, ValLen: 32},
	})
	out, err := generate(t, w, 5)
	require.NoError(t, err)
	assert.Equal(t, w.BytesCount(), len(out))
}

func TestRun_DeletesExceedingKeysFails(t *testing.T) {
	_, err := generate(t, oneSection(spec.Group{
		Inserts: &spec.Inserts{Amount: 3, KeyLen: 4, ValLen: 4},
		Deletes: &spec.Deletes{Amount: 5},
	}), 1)
	require.Error(t, err)
	assert.True(t, errors.IsSpecError(err))
	assert.Equal(t, errors.CodeDeletesExceedKeys, errors.GetCode(err))
	assert.Contains(t, err.Error(), "section 0")
}

func TestRun_NonInsertGroupOnEmptyKeySetFails(t *testing.T) {
	_, err := generate(t, oneSection(spec.Group{
		PointQueries: &spec.PointQueries{Amount: 1},
	}), 1)
	require.Error(t, err)
	assert.True(t, errors.IsSpecError(err))
	assert.Equal(t, errors.CodeEmptyKeySet, errors.GetCode(err))
}

func TestRun_SeedInsertRunsFirst(t *testing.T) {
	w := oneSection(spec.Group{
		Inserts:      &spec.Inserts{Amount: 5, KeyLen: 4, ValLen: 4},
		PointQueries: &spec.PointQueries{Amount: 3},
	})
	out, err := generate(t, w, 7)
	require.NoError(t, err)

	got := lines(out)
	require.Len(t, got, 8)
	assert.True(t, strings.HasPrefix(got[0], "I "), "seed insert must come first")

	inserts := 0
	for _, l := range got {
		if strings.HasPrefix(l, "I ") {
			inserts++
		}
	}
	assert.Equal(t, 5, inserts, "seed insert counts against the declared amount")
}

func TestRun_FixedKindOrderWithinGroup(t *testing.T) {
	// Deletes live in the second group so the key set is populated at its
	// entry; within that group the kinds must come out in fixed order.
	w := oneSection(
		spec.Group{Inserts: &spec.Inserts{Amount: 10, KeyLen: 4, ValLen: 4}},
		spec.Group{
			Inserts:           &spec.Inserts{Amount: 5, KeyLen: 4, ValLen: 4},
			Updates:           &spec.Updates{Amount: 5, ValLen: 4},
			Deletes:           &spec.Deletes{Amount: 3},
			PointQueries:      &spec.PointQueries{Amount: 4},
			EmptyPointQueries: &spec.EmptyPointQueries{Amount: 2, KeyLen: 4},
			RangeQueries:      &spec.RangeQueries{Amount: 2, Selectivity: 0.5},
		},
	)
	out, err := generate(t, w, 3)
	require.NoError(t, err)

	var kinds []byte
	for _, l := range lines(out) {
		kinds = append(kinds, l[0])
	}
	assert.Equal(t, "IIIIIIIIII"+"IIIIIUUUUUDDDPPPPPPRR", string(kinds))
}

func TestRun_UpdatesReferenceLiveKeys(t *testing.T) {
	w := oneSection(spec.Group{
		Inserts: &spec.Inserts{Amount: 50, KeyLen: 6, ValLen: 6},
		Updates: &spec.Updates{Amount: 30, ValLen: 6},
	})
	out, err := generate(t, w, 11)
	require.NoError(t, err)

	live := map[string]bool{}
	for _, l := range lines(out) {
		fields := strings.Fields(l)
		switch fields[0] {
		case "I":
			live[fields[1]] = true
		case "U":
			assert.True(t, live[fields[1]], "update key %q never inserted", fields[1])
		}
	}
}

func TestRun_DeletedKeysAreLiveAndDistinct(t *testing.T) {
	w := oneSection(
		spec.Group{Inserts: &spec.Inserts{Amount: 20, KeyLen: 8, ValLen: 4}},
		spec.Group{Deletes: &spec.Deletes{Amount: 20}},
	)
	out, err := generate(t, w, 13)
	require.NoError(t, err)

	inserted := map[string]bool{}
	deleted := map[string]bool{}
	for _, l := range lines(out) {
		fields := strings.Fields(l)
		switch fields[0] {
		case "I":
			inserted[fields[1]] = true
		case "D":
			assert.True(t, inserted[fields[1]], "deleted key was never inserted")
			assert.False(t, deleted[fields[1]], "key deleted twice")
			deleted[fields[1]] = true
		}
	}
	assert.Len(t, deleted, 20)
}

func TestRun_EmptyPointQueryKeysNeverLive(t *testing.T) {
	// Short probe keys make accidental collisions plausible enough to
	// exercise the reject-and-retry loop.
	w := oneSection(
		spec.Group{Inserts: &spec.Inserts{Amount: 500, KeyLen: 3, ValLen: 4}},
		spec.Group{EmptyPointQueries: &spec.EmptyPointQueries{Amount: 200, KeyLen: 3}},
	)
	out, err := generate(t, w, 17)
	require.NoError(t, err)

	live := map[string]bool{}
	for _, l := range lines(out) {
		fields := strings.Fields(l)
		switch fields[0] {
		case "I":
			live[fields[1]] = true
		case "P":
			assert.False(t, live[fields[1]],
				"empty point query hit live key %q", fields[1])
		}
	}
}

func TestRun_RangeQuerySpansSelectivity(t *testing.T) {
	w := oneSection(
		spec.Group{Inserts: &spec.Inserts{Amount: 1000, KeyLen: 8, ValLen: 8}},
		spec.Group{RangeQueries: &spec.RangeQueries{Amount: 1, Selectivity: 0.5}},
	)
	out, err := generate(t, w, 23)
	require.NoError(t, err)

	got := lines(out)
	var inserted []string
	for _, l := range got[:1000] {
		inserted = append(inserted, strings.Fields(l)[1])
	}
	sort.Strings(inserted)
	pos := make(map[string]int, len(inserted))
	for i, k := range inserted {
		pos[k] = i
	}

	rq := strings.Fields(got[1000])
	require.Equal(t, "R", rq[0])
	key1, key2 := rq[1], rq[2]
	assert.LessOrEqual(t, key1, key2)

	i1, ok1 := pos[key1]
	i2, ok2 := pos[key2]
	require.True(t, ok1 && ok2, "range bounds must be live keys")
	assert.Equal(t, 500, i2-i1, "bounds must span floor(0.5*1000) keys")
}

func TestRun_RangeQueryFullSelectivity(t *testing.T) {
	w := oneSection(
		spec.Group{Inserts: &spec.Inserts{Amount: 10, KeyLen: 6, ValLen: 4}},
		spec.Group{RangeQueries: &spec.RangeQueries{Amount: 1, Selectivity: 1.0}},
	)
	out, err := generate(t, w, 29)
	require.NoError(t, err)

	got := lines(out)
	var inserted []string
	for _, l := range got[:10] {
		inserted = append(inserted, strings.Fields(l)[1])
	}
	sort.Strings(inserted)

	rq := strings.Fields(got[10])
	assert.Equal(t, inserted[0], rq[1], "full range starts at the minimum key")
	assert.Equal(t, inserted[len(inserted)-1], rq[2], "full range ends at the maximum key")
}

func TestRun_ReproducibleBySeed(t *testing.T) {
	w := oneSection(spec.Group{
		Inserts:      &spec.Inserts{Amount: 100, KeyLen: 8, ValLen: 8},
		Updates:      &spec.Updates{Amount: 20, ValLen: 8},
		RangeQueries: &spec.RangeQueries{Amount: 5, Selectivity: 0.2},
	})

	out1, err := generate(t, w, 31)
	require.NoError(t, err)
	out2, err := generate(t, w, 31)
	require.NoError(t, err)
	assert.Equal(t, out1, out2)

	out3, err := generate(t, w, 32)
	require.NoError(t, err)
	assert.NotEqual(t, out1, out3)
}

func TestRun_SectionsAreIndependent(t *testing.T) {
	// Distinct key lengths per section prove queries never cross sections.
	w := &spec.WorkloadSpec{Sections: []spec.Section{
		{
			Groups: []spec.Group{{
				Inserts: &spec.Inserts{Amount: 20, KeyLen: 4, ValLen: 4},
			}},
			KeySpace:        spec.KeySpaceAlphanumeric,
			KeyDistribution: spec.KeyDistributionUniform,
		},
		{
			Groups: []spec.Group{{
				Inserts:      &spec.Inserts{Amount: 20, KeyLen: 6, ValLen: 4},
				PointQueries: &spec.PointQueries{Amount: 10},
			}},
			KeySpace:        spec.KeySpaceAlphanumeric,
			KeyDistribution: spec.KeyDistributionUniform,
		},
	}}

	out, err := generate(t, w, 37)
	require.NoError(t, err)

	for _, l := range lines(out) {
		fields := strings.Fields(l)
		if fields[0] == "P" {
			assert.Len(t, fields[1], 6, "point query must use section 2 keys")
		}
	}
}

func TestRun_DedupCollapsesRepeatedKeys(t *testing.T) {
	// With duplicates disallowed the indexed variant is forced; repeated
	// keys collapse, so the live count stays at the distinct count.
	w := oneSection(
		spec.Group{Inserts: &spec.Inserts{Amount: 2000, KeyLen: 2, ValLen: 2}},
		spec.Group{Deletes: &spec.Deletes{Amount: 100}},
	)

	var buf bytes.Buffer
	em := emitter.New(&buf, 0)
	seq := New(Options{AllowDuplicateKeys: false})
	err := seq.Run(w, randgen.New(41), em)
	require.NoError(t, err)

	deleted := map[string]bool{}
	for _, l := range lines(buf.String()) {
		fields := strings.Fields(l)
		if fields[0] == "D" {
			assert.False(t, deleted[fields[1]], "dedup set cannot delete a key twice")
			deleted[fields[1]] = true
		}
	}
}
