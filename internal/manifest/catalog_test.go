package manifest

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestCatalog(t *testing.T) *SQLiteCatalog {
	t.Helper()
	c, err := NewCatalog(filepath.Join(t.TempDir(), "manifest.db"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestCatalog_RegisterAndGet(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()

	rec := &RunRecord{
		RunID:      "run-1",
		SpecPath:   "/specs/mixed.json",
		OutputPath: "/out/mixed.txt",
		Seed:       42,
		Operations: 1234,
		Bytes:      98765,
		Duration:   1500 * time.Millisecond,
	}
	require.NoError(t, c.RegisterRun(ctx, rec))

	got, err := c.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, rec.SpecPath, got.SpecPath)
	assert.Equal(t, rec.OutputPath, got.OutputPath)
	assert.Equal(t, rec.Seed, got.Seed)
	assert.Equal(t, rec.Operations, got.Operations)
	assert.Equal(t, rec.Bytes, got.Bytes)
	assert.Equal(t, rec.Duration, got.Duration)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestCatalog_GetMissingRun(t *testing.T) {
	c := openTestCatalog(t)
	_, err := c.GetRun(context.Background(), "no-such-run")
	assert.Error(t, err)
}

func TestCatalog_DuplicateRunIDRejected(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()

	rec := &RunRecord{RunID: "dup", SpecPath: "a", OutputPath: "b"}
	require.NoError(t, c.RegisterRun(ctx, rec))
	assert.Error(t, c.RegisterRun(ctx, rec))
}

func TestCatalog_ListRunsNewestFirst(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, c.RegisterRun(ctx, &RunRecord{
			RunID:      string(rune('a' + i)),
			SpecPath:   "spec",
			OutputPath: "out",
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}))
	}

	recs, err := c.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "c", recs[0].RunID)
	assert.Equal(t, "b", recs[1].RunID)
}

func TestCatalog_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.db")
	ctx := context.Background()

	c1, err := NewCatalog(path)
	require.NoError(t, err)
	require.NoError(t, c1.RegisterRun(ctx, &RunRecord{
		RunID: "persisted", SpecPath: "s", OutputPath: "o",
	}))
	require.NoError(t, c1.Close())

	c2, err := NewCatalog(path)
	require.NoError(t, err)
	defer c2.Close()
	got, err := c2.GetRun(ctx, "persisted")
	require.NoError(t, err)
	assert.Equal(t, "s", got.SpecPath)
}
