// Package main implements the loadgen binary: it expands declarative
// workload specifications into operation streams for benchmarking
// key-value storage engines.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/arkilian/loadgen/internal/app"
	"github.com/arkilian/loadgen/internal/config"
	"github.com/arkilian/loadgen/internal/schema"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	var (
		configFile  string
		specPath    string
		outputDir   string
		dataDir     string
		seed        int64
		strategy    string
		compress    bool
		parallel    bool
		noManifest  bool
		printSchema bool
		showVersion bool
		showHelp    bool
	)

	flag.StringVar(&configFile, "config", "", "Path to configuration file (YAML or JSON)")
	flag.StringVar(&specPath, "spec", "", "Workload spec file or directory of spec files")
	flag.StringVar(&outputDir, "out", "", "Output directory for generated workloads")
	flag.StringVar(&dataDir, "data-dir", "", "Base directory for tool state")
	flag.Int64Var(&seed, "seed", 0, "Random seed (0 seeds from the clock)")
	flag.StringVar(&strategy, "keyset", "", "Key-set strategy: auto, slice, hashed, bloom, indexed")
	flag.BoolVar(&compress, "compress", false, "Write snappy-compressed output")
	flag.BoolVar(&parallel, "parallel", false, "Generate sections in parallel")
	flag.BoolVar(&noManifest, "no-manifest", false, "Skip recording the run in the manifest")
	flag.BoolVar(&printSchema, "schema", false, "Print the workload spec JSON schema and exit")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showHelp, "help", false, "Show help message")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "loadgen - workload synthesis for key-value storage engines\n\n")
		fmt.Fprintf(os.Stderr, "Usage: loadgen [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  loadgen --spec workload.json --out ./workloads\n")
		fmt.Fprintf(os.Stderr, "  loadgen --spec ./specs --seed 42 --parallel\n")
		fmt.Fprintf(os.Stderr, "  loadgen --schema > workload-spec.schema.json\n")
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  LOADGEN_SEED              Random seed\n")
		fmt.Fprintf(os.Stderr, "  LOADGEN_OUTPUT_DIR        Output directory\n")
		fmt.Fprintf(os.Stderr, "  LOADGEN_KEYSET_STRATEGY   Key-set strategy\n")
		fmt.Fprintf(os.Stderr, "  LOADGEN_S3_BUCKET         Bucket for artifact upload\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("loadgen version %s (commit: %s)\n", version, commit)
		os.Exit(0)
	}

	if printSchema {
		s, err := schema.Generate()
		if err != nil {
			log.Fatalf("Failed to generate schema: %v", err)
		}
		fmt.Println(s)
		os.Exit(0)
	}

	if specPath == "" {
		flag.Usage()
		log.Fatal("--spec is required")
	}

	cfg, err := loadConfig(configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Command-line flags override file and environment settings.
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if seed != 0 {
		cfg.Seed = seed
	}
	if strategy != "" {
		cfg.KeySetStrategy = strategy
	}
	if compress {
		cfg.Compress = true
	}
	if parallel {
		cfg.Parallel.Enabled = true
	}
	if noManifest {
		cfg.Manifest.Enabled = false
	}

	cfg.Resolve()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("Failed to create directories: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer a.Close()

	if err := a.Generate(ctx, specPath); err != nil {
		log.Fatalf("Generation failed: %v", err)
	}
}

func loadConfig(configFile string) (*config.Config, error) {
	var cfg *config.Config
	if configFile != "" {
		loaded, err := config.LoadFromFile(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = config.DefaultConfig()
	}
	config.LoadFromEnv(cfg)
	return cfg, nil
}
