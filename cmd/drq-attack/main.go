package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"

	"github.com/haukened/drq-attack/internal/drq/common/clock"
	"github.com/haukened/drq-attack/internal/drq/common/log"
	"github.com/haukened/drq-attack/internal/drq/common/progress"
	"github.com/haukened/drq-attack/internal/drq/common/utils"
	"github.com/haukened/drq-attack/internal/drq/config"
	"github.com/haukened/drq-attack/internal/drq/domain"
	"github.com/haukened/drq-attack/internal/drq/repos/patterns"
	"github.com/haukened/drq-attack/internal/drq/repos/patterns/bloom"
	"github.com/haukened/drq-attack/internal/drq/repos/patterns/parsers"
	"github.com/haukened/drq-attack/internal/drq/repos/stats"
	"github.com/haukened/drq-attack/internal/drq/services/attacker"
	"github.com/haukened/drq-attack/internal/drq/services/attacker/lru"
	"github.com/haukened/drq-attack/internal/drq/services/campaign"
	"github.com/haukened/drq-attack/internal/drq/services/generator"
)

const (
	// Version information
	version = "0.4.0"
	appName = "drq-attack"

	// selectionStream is the PCG stream used to pick random targets.
	selectionStream = 0x7a76
)

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// Application holds everything one campaign needs.
type Application struct {
	config  *config.AppConfig
	mode    domain.Mode
	store   *patterns.Store
	targets []string
	runner  *campaign.Runner
	cache   attacker.WindowCache
	stdout  io.Writer
	logger  log.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run is main without the process globals; it returns the exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	flags, err := config.ParseArgs(args, stderr)
	if config.IsHelp(err) {
		return exitOK
	}
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", appName, err)
		return exitUsage
	}
	if flags.Version {
		fmt.Fprintf(stdout, "%s %s\n", appName, version)
		return exitOK
	}

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(stderr, "Configuration error: %v\n", err)
		return exitUsage
	}

	if err := log.Configure(cfg.Env, cfg.LogLevel, cfg.Quiet, cfg.Verbose); err != nil {
		fmt.Fprintf(stderr, "Logging configuration error: %v\n", err)
		return exitUsage
	}

	log.Info(map[string]any{
		"version": version,
		"mode":    cfg.Mode,
		"size":    cfg.Size,
		"split":   cfg.Split,
		"threads": cfg.Threads,
		"file":    cfg.PatternFile,
	}, "Starting DRQ pattern attack")

	app, err := buildApplication(cfg, stdout, stderr)
	if err != nil {
		log.Error(map[string]any{"error": err.Error()}, "Failed to build application")
		return exitUsage
	}

	if err := app.Run(ctx); err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			log.Warn(nil, "Campaign interrupted")
		case errors.Is(err, domain.ErrTargetMissing):
			log.Error(map[string]any{"error": err.Error()}, "Something went wrong: attack result does not contain its target")
		default:
			log.Error(map[string]any{"error": err.Error()}, "Campaign failed")
		}
		return exitFailure
	}
	return exitOK
}

// buildApplication loads the pattern database and wires the campaign.
func buildApplication(cfg *config.AppConfig, stdout, stderr io.Writer) (*Application, error) {
	logger := log.GetLogger()

	mode, err := domain.NewMode(cfg.Mode)
	if err != nil {
		return nil, err
	}
	variant, err := attacker.ParseVariant(cfg.DFBVariant)
	if err != nil {
		return nil, err
	}

	store, err := loadStore(cfg, logger, stderr)
	if err != nil {
		return nil, err
	}

	clientSize, err := store.Partition(cfg.Split, patterns.SeededRand(cfg.Split))
	if err != nil {
		return nil, fmt.Errorf("failed to partition pattern database: %w", err)
	}
	logger.Info(map[string]any{
		"budget":           cfg.Split,
		"client_hosts":     clientSize,
		"client_targets":   store.Client().TargetCount(),
		"database_hosts":   store.Full().UniverseSize(),
		"database_targets": store.Full().TargetCount(),
	}, "Client database ready")

	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}

	targets, err := campaign.ChooseTargets(store.Client(), campaign.Selection{
		Target: utils.CanonicalHostname(cfg.Target),
		All:    cfg.All,
		Count:  cfg.Count,
	}, rand.New(rand.NewPCG(seed, selectionStream)), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to choose targets: %w", err)
	}

	cache, err := lru.New(cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create window cache: %w", err)
	}

	var ticker progress.Ticker = progress.Nop{}
	if !cfg.Quiet {
		ticker = progress.New(stderr, len(targets), progress.TerminalWidth())
	}

	runner, err := campaign.New(campaign.Options{
		Threads:  cfg.Threads,
		NewPair:  pairFactory(cfg, mode, variant, store, clientSize, cache, logger),
		Progress: ticker,
		Logger:   logger,
		Clock:    clock.RealClock{},
		Seed:     seed,
	})
	if err != nil {
		return nil, err
	}

	return &Application{
		config:  cfg,
		mode:    mode,
		store:   store,
		targets: targets,
		runner:  runner,
		cache:   cache,
		stdout:  stdout,
		logger:  logger,
	}, nil
}

// loadStore parses the pattern file into a Bloom-backed store.
func loadStore(cfg *config.AppConfig, logger log.Logger, stderr io.Writer) (*patterns.Store, error) {
	var ticker progress.Ticker = progress.Nop{}
	if !cfg.Quiet {
		lines, err := countLines(cfg.PatternFile)
		if err != nil {
			return nil, err
		}
		ticker = progress.New(stderr, lines, progress.TerminalWidth())
	}

	f, err := os.Open(cfg.PatternFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open pattern file: %w", err)
	}
	defer f.Close()

	logger.Info(map[string]any{"file": cfg.PatternFile}, "Parsing pattern file")
	pats, err := parsers.ParsePatternFile(f, logger, ticker)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", cfg.PatternFile, err)
	}
	store, err := patterns.Load(pats, patterns.Options{
		Factory: bloom.NewFactory(),
		FPRate:  cfg.BloomFPRate,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}
	logger.Info(map[string]any{
		"patterns":  store.Full().TargetCount(),
		"hostnames": store.Full().UniverseSize(),
	}, "Pattern database loaded")
	return store, nil
}

func countLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open pattern file: %w", err)
	}
	defer f.Close()
	return parsers.CountLines(f)
}

// pairFactory builds one worker's generator (client view) and attacker (full view).
func pairFactory(cfg *config.AppConfig, mode domain.Mode, variant attacker.Variant, store *patterns.Store, clientSize int, cache attacker.WindowCache, logger log.Logger) campaign.PairFactory {
	return func(rng *rand.Rand) (campaign.Pair, error) {
		g, err := generator.New(generator.Options{
			Source:      store.Client(),
			PaddingSize: cfg.Size,
			Strategy:    mode.Strategy(),
			Shape:       mode.Shape(),
			Rand:        rng,
			Logger:      logger,
		})
		if err != nil {
			return campaign.Pair{}, err
		}
		a, err := attacker.New(attacker.Options{
			Source:       store.Full(),
			Shape:        mode.Shape(),
			Variant:      variant,
			UniverseSize: clientSize,
			Cache:        cache,
			Logger:       logger,
		})
		if err != nil {
			return campaign.Pair{}, err
		}
		return campaign.Pair{Generator: g, Attacker: a}, nil
	}
}

// Run attacks every chosen target, validates the results and reports them.
// When a worker fails, the surviving partitions are still validated and
// reported, but no statistics files are written.
func (app *Application) Run(ctx context.Context) error {
	app.logger.Info(map[string]any{
		"mode":    app.mode.String(),
		"targets": len(app.targets),
	}, "Beginning attack")

	results, runErr := app.runner.Run(ctx, app.targets)
	if runErr != nil && len(results) == 0 {
		return runErr
	}
	if err := campaign.Validate(results); err != nil {
		return err
	}

	lengthOf := app.store.Full().PatternLength
	if !app.config.Quiet {
		if err := campaign.Report(app.stdout, results, lengthOf); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}

	if hits, misses, _ := app.cache.Stats(); hits+misses > 0 {
		app.logger.Debug(map[string]any{"hits": hits, "misses": misses, "entries": app.cache.Len()}, "Length window cache")
	}

	if !app.config.Stat && !app.config.Verbose {
		return runErr
	}
	acc := stats.FromResults(results, lengthOf)
	if err := stats.WriteSummary(app.stdout, acc); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	if !app.config.Stat || runErr != nil {
		return runErr
	}
	writer := stats.FileWriter{
		Root:        app.config.OutputDir,
		Mode:        int(app.mode),
		PaddingSize: app.config.Size,
		Split:       app.config.Split,
	}
	paths, err := writer.WriteAll(acc)
	if err != nil {
		return fmt.Errorf("failed to write statistics: %w", err)
	}
	app.logger.Info(map[string]any{"dir": writer.Dir(), "files": len(paths), "trials": acc.Trials()}, "Statistics written")
	return nil
}
