package sequencer

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/arkilian/loadgen/internal/emitter"
	"github.com/arkilian/loadgen/internal/errors"
	"github.com/arkilian/loadgen/internal/randgen"
	"github.com/arkilian/loadgen/internal/spec"
)

// ParallelOptions configure parallel generation.
type ParallelOptions struct {
	Options

	// Workers is the number of concurrent section workers. Values < 1 mean 1.
	Workers int

	// Seed is the base seed. Section i draws from an independent stream
	// seeded with Seed+i, so each parallel run of the same spec is
	// deterministic. The streams differ from a serial run of the same seed.
	Seed uint64

	// SpillDir holds per-section spill files. Empty uses the OS temp dir.
	SpillDir string

	// BufferSize is the per-section emitter buffer size.
	BufferSize int
}

// RunParallel generates sections concurrently and merges their output into
// out in section order. Sections share no state (keys never cross section
// boundaries), which makes this the one safe partitioning axis; operations
// within a section depend on mutable key-set state and stay serial.
func RunParallel(w *spec.WorkloadSpec, opts ParallelOptions, out io.Writer) error {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	spillDir := opts.SpillDir
	if spillDir == "" {
		spillDir = os.TempDir()
	}

	type result struct {
		path string
		err  error
	}
	results := make([]result, len(w.Sections))

	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)

	for si := range w.Sections {
		wg.Add(1)
		go func(si int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[si].path, results[si].err = runSectionToSpill(
				&w.Sections[si], si, opts, spillDir)
		}(si)
	}
	wg.Wait()

	// Merge in section order; clean up every spill even on failure.
	var firstErr error
	for si := range results {
		r := results[si]
		if r.err != nil {
			if firstErr == nil {
				firstErr = r.err
			}
			continue
		}
		if firstErr == nil {
			firstErr = appendSpill(out, r.path)
		}
		os.Remove(r.path)
	}
	return firstErr
}

func runSectionToSpill(sec *spec.Section, si int, opts ParallelOptions, spillDir string) (string, error) {
	f, err := os.CreateTemp(spillDir, fmt.Sprintf("loadgen-section-%d-*.spill", si))
	if err != nil {
		return "", errors.NewIOError(errors.CodeOpenFailed, "creating section spill file", err)
	}
	defer f.Close()

	gen := randgen.New(opts.Seed + uint64(si))
	em := emitter.New(f, opts.BufferSize)
	seq := New(opts.Options)

	if err := seq.RunSection(sec, si, gen, em); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	if err := em.Flush(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	if opts.Stats != nil {
		opts.Stats.AddBytes(em.BytesWritten())
	}
	return f.Name(), nil
}

func appendSpill(out io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.NewIOError(errors.CodeOpenFailed, "opening section spill file", err)
	}
	defer f.Close()
	if _, err := io.Copy(out, f); err != nil {
		return errors.NewIOError(errors.CodeWriteFailed, "merging section output", err)
	}
	return nil
}
