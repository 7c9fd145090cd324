// Package app wires the loadgen components into runnable commands: spec
// loading, pre-flight sizing, generation, the run manifest, and optional
// artifact upload.
package app

import (
	"context"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/arkilian/loadgen/internal/config"
	"github.com/arkilian/loadgen/internal/emitter"
	"github.com/arkilian/loadgen/internal/keyset"
	"github.com/arkilian/loadgen/internal/manifest"
	"github.com/arkilian/loadgen/internal/observability"
	"github.com/arkilian/loadgen/internal/randgen"
	"github.com/arkilian/loadgen/internal/sequencer"
	"github.com/arkilian/loadgen/internal/sink"
	"github.com/arkilian/loadgen/internal/spec"
)

// App holds the long-lived collaborators of a loadgen invocation.
type App struct {
	cfg      *config.Config
	catalog  manifest.Catalog
	uploader *sink.S3Uploader
}

// New creates an App from the resolved configuration, opening the manifest
// catalog and S3 client as configured.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{cfg: cfg}

	if cfg.Manifest.Enabled {
		cat, err := manifest.NewCatalog(cfg.Manifest.Path)
		if err != nil {
			return nil, err
		}
		a.catalog = cat
	}

	if cfg.S3.Enabled {
		up, err := sink.NewS3Uploader(ctx, sink.S3Config{
			Bucket:       cfg.S3.Bucket,
			Region:       cfg.S3.Region,
			Endpoint:     cfg.S3.Endpoint,
			UsePathStyle: cfg.S3.UsePathStyle,
		})
		if err != nil {
			return nil, err
		}
		a.uploader = up
	}

	return a, nil
}

// Close releases the App's resources.
func (a *App) Close() {
	if a.catalog != nil {
		a.catalog.Close()
	}
}

// Generate produces workloads for the spec file or directory at specPath.
// A directory is walked recursively; every spec document in it yields one
// output file named after the spec's stem.
func (a *App) Generate(ctx context.Context, specPath string) error {
	fi, err := os.Stat(specPath)
	if err != nil {
		return err
	}

	if !fi.IsDir() {
		return a.generateOne(ctx, specPath)
	}

	return filepath.WalkDir(specPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !spec.IsSpecFile(path) {
			return nil
		}
		return a.generateOne(ctx, path)
	})
}

func (a *App) generateOne(ctx context.Context, specPath string) error {
	log.Printf("generating workload for %s", specPath)

	w, err := spec.LoadFile(specPath)
	if err != nil {
		return err
	}

	ops := w.OperationCount()
	expected := w.BytesCount()
	log.Printf("pre-flight: %d operations, %d bytes expected", ops, expected)

	seed := a.cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	outPath := a.outputPath(specPath)
	fileSink, err := sink.NewFile(outPath)
	if err != nil {
		return err
	}
	var out sink.Sink = fileSink
	if a.cfg.Compress {
		out = sink.NewSnappy(fileSink)
	}

	stats := observability.NewRunStats()
	opts := sequencer.Options{
		Strategy:           keyset.Strategy(a.cfg.KeySetStrategy),
		AllowDuplicateKeys: a.cfg.AllowDuplicateKeys,
		Stats:              stats,
	}
	bufSize := a.cfg.BufferSizeKB * 1024

	if a.cfg.Parallel.Enabled {
		err = sequencer.RunParallel(w, sequencer.ParallelOptions{
			Options:    opts,
			Workers:    a.cfg.Parallel.Workers,
			Seed:       uint64(seed),
			SpillDir:   a.cfg.Parallel.SpillDir,
			BufferSize: bufSize,
		}, out)
	} else {
		em := emitter.New(out, bufSize)
		err = sequencer.New(opts).Run(w, randgen.New(uint64(seed)), em)
		if err == nil {
			stats.AddBytes(em.BytesWritten())
		}
	}
	if err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	summary := stats.Summarize()
	log.Printf("run %s: %d operations, %d bytes in %s, output %s",
		summary.RunID, summary.Operations, summary.Bytes, summary.Duration, outPath)

	if a.catalog != nil {
		rec := &manifest.RunRecord{
			RunID:      summary.RunID,
			SpecPath:   specPath,
			OutputPath: outPath,
			Seed:       seed,
			Operations: summary.Operations,
			Bytes:      summary.Bytes,
			Duration:   summary.Duration,
		}
		if err := a.catalog.RegisterRun(ctx, rec); err != nil {
			return err
		}
	}

	if a.uploader != nil {
		object := filepath.Base(outPath)
		if a.cfg.S3.Prefix != "" {
			object = strings.TrimSuffix(a.cfg.S3.Prefix, "/") + "/" + object
		}
		if err := a.uploader.Upload(ctx, outPath, object); err != nil {
			return err
		}
		log.Printf("uploaded %s to s3://%s/%s", outPath, a.cfg.S3.Bucket, object)
	}

	return nil
}

// outputPath derives the workload file path from the spec path: the spec's
// stem plus .txt (.txt.sz when compressing), in OutputDir when set,
// otherwise next to the spec.
func (a *App) outputPath(specPath string) string {
	base := filepath.Base(specPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	name := stem + ".txt"
	if a.cfg.Compress {
		name += ".sz"
	}
	dir := a.cfg.OutputDir
	if dir == "" {
		dir = filepath.Dir(specPath)
	}
	return filepath.Join(dir, name)
}
