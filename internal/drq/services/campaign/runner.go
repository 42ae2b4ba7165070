// Package campaign drives generate→attack trials over a target list.
package campaign

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"golang.org/x/sync/errgroup"

	"github.com/haukened/drq-attack/internal/drq/common/clock"
	"github.com/haukened/drq-attack/internal/drq/common/log"
	"github.com/haukened/drq-attack/internal/drq/common/progress"
	"github.com/haukened/drq-attack/internal/drq/domain"
)

// Results maps each attempted target to the attacker's answer for it.
type Results map[string]domain.AttackResult

// Options configures a Runner. Seed 0 picks a random seed per run.
type Options struct {
	Threads  int
	NewPair  PairFactory
	Progress progress.Ticker
	Logger   log.Logger
	Clock    clock.Clock
	Seed     uint64
}

// Runner fans trials out over a fixed number of workers.
type Runner struct {
	threads  int
	newPair  PairFactory
	progress progress.Ticker
	logger   log.Logger
	clock    clock.Clock
	seed     uint64
}

type trial struct {
	target string
	result domain.AttackResult
}

// New validates opts and fills defaults.
func New(opts Options) (*Runner, error) {
	if opts.NewPair == nil {
		return nil, errors.New("campaign: nil pair factory")
	}
	if opts.Threads < 1 {
		opts.Threads = 1
	}
	if opts.Progress == nil {
		opts.Progress = progress.Nop{}
	}
	if opts.Logger == nil {
		opts.Logger = log.NewNoopLogger()
	}
	if opts.Clock == nil {
		opts.Clock = clock.RealClock{}
	}
	return &Runner{
		threads:  opts.Threads,
		newPair:  opts.NewPair,
		progress: opts.Progress,
		logger:   opts.Logger,
		clock:    opts.Clock,
		seed:     opts.Seed,
	}, nil
}

// Run attacks every target once.
//
// Behavior:
// - targets are split into contiguous, near-equal partitions, one per worker
// - each worker builds its own pair from a PRNG seeded with (seed, worker index)
// - each worker sends on its own buffered channel; channels are drained after all workers finish
// - a failing worker loses its own partition; the other partitions' results are
//   returned together with the first worker error
// - a cancelled ctx stops every worker between trials and no results are returned
func (r *Runner) Run(ctx context.Context, targets []string) (Results, error) {
	start := r.clock.Now()
	workers := min(r.threads, len(targets))
	if workers == 0 {
		return Results{}, nil
	}
	seed := r.seed
	if seed == 0 {
		seed = rand.Uint64()
	}

	var g errgroup.Group
	channels := make([]chan trial, workers)
	failed := make([]bool, workers)
	for i := 0; i < workers; i++ {
		part := partition(targets, workers, i)
		ch := make(chan trial, len(part))
		channels[i] = ch
		rng := rand.New(rand.NewPCG(seed, uint64(i)))
		g.Go(func() error {
			defer close(ch)
			if err := r.work(ctx, rng, part, ch); err != nil {
				failed[i] = true
				return fmt.Errorf("worker %d: %w", i, err)
			}
			return nil
		})
	}
	werr := g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := make(Results, len(targets))
	lost := 0
	for i, ch := range channels {
		if failed[i] {
			lost += len(partition(targets, workers, i))
			continue
		}
		for t := range ch {
			results[t.target] = t.result
		}
	}
	if werr != nil {
		r.logger.Warn(map[string]any{
			"targets": len(results),
			"lost":    lost,
			"error":   werr.Error(),
		}, "campaign partition failed")
		return results, werr
	}
	r.logger.Info(map[string]any{
		"targets": len(results),
		"workers": workers,
		"seed":    seed,
		"elapsed": r.clock.Since(start).String(),
	}, "campaign finished")
	return results, nil
}

func (r *Runner) work(ctx context.Context, rng *rand.Rand, targets []string, out chan<- trial) error {
	pair, err := r.newPair(rng)
	if err != nil {
		return fmt.Errorf("failed to build generator/attacker pair: %w", err)
	}
	for _, target := range targets {
		if err := ctx.Err(); err != nil {
			return err
		}
		q, err := pair.Generator.Generate(target)
		if err != nil {
			return fmt.Errorf("generate %q: %w", target, err)
		}
		res, err := pair.Attacker.Attack(q)
		if err != nil {
			return fmt.Errorf("attack %q: %w", target, err)
		}
		out <- trial{target: target, result: res}
		r.progress.Tick()
	}
	return nil
}

// partition returns the i-th of n contiguous slices of targets; sizes differ by at most one.
func partition(targets []string, n, i int) []string {
	lo := i * len(targets) / n
	hi := (i + 1) * len(targets) / n
	return targets[lo:hi]
}
