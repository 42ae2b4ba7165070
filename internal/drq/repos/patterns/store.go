// Package patterns holds the in-memory pattern database: target → co-occurrence
// pattern, indexed by pattern length and by member host, with a deterministic
// client-visible partition.
package patterns

import (
	"fmt"
	"math/rand/v2"

	"github.com/haukened/drq-attack/internal/drq/common/log"
	"github.com/haukened/drq-attack/internal/drq/domain"
)

// partitionStream is the PCG stream used by SeededRand.
const partitionStream = 0x5eed

// DefaultFPRate is the Bloom filter false-positive target when none is configured.
const DefaultFPRate = 0.01

// Store owns the full (attacker) view and the client (generator) view.
// It is populated once, partitioned once, then only read.
type Store struct {
	full    *View
	client  *View
	sealed  bool
	factory BloomFactory
	fpRate  float64
	logger  log.Logger
}

// Options configures a Store. A nil Factory disables the Bloom prefilter.
type Options struct {
	Factory       BloomFactory
	FPRate        float64
	ExpectedHosts uint64
	Logger        log.Logger
}

// New returns an empty store. Until Partition is called the client view is the full view.
func New(opts Options) *Store {
	if opts.FPRate <= 0 || opts.FPRate >= 1 {
		opts.FPRate = DefaultFPRate
	}
	if opts.Logger == nil {
		opts.Logger = log.NewNoopLogger()
	}
	s := &Store{factory: opts.Factory, fpRate: opts.FPRate, logger: opts.Logger}
	s.full = newView(s.newFilter(opts.ExpectedHosts))
	s.client = s.full
	return s
}

// Load builds a store from parsed patterns, sizing the Bloom filter for them.
func Load(pats []domain.Pattern, opts Options) (*Store, error) {
	if opts.ExpectedHosts == 0 {
		for _, p := range pats {
			opts.ExpectedHosts += uint64(p.Len())
		}
	}
	s := New(opts)
	for _, p := range pats {
		if err := s.AddTarget(p); err != nil {
			return nil, fmt.Errorf("failed to add pattern for %q: %w", p.Target(), err)
		}
	}
	return s, nil
}

func (s *Store) newFilter(capacity uint64) BloomFilter {
	if s.factory == nil {
		return nil
	}
	return s.factory.New(capacity, s.fpRate)
}

// AddTarget registers p under its target.
func (s *Store) AddTarget(p domain.Pattern) error {
	if s.sealed {
		return domain.ErrStoreSealed
	}
	if err := p.Validate(); err != nil {
		return err
	}
	if s.full.IsValidTarget(p.Target()) {
		return fmt.Errorf("%w: %q", domain.ErrDuplicateTarget, p.Target())
	}
	s.full.add(p)
	return nil
}

// Full returns the attacker-visible view of the whole database.
func (s *Store) Full() *View { return s.full }

// Client returns the generator-visible view.
func (s *Store) Client() *View { return s.client }

// SeededRand returns the deterministic random source Partition expects for budget.
func SeededRand(budget int) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(budget), partitionStream))
}

// Partition derives the client view from a hostname budget and seals the store.
//
// Behavior:
// - budget -1 (or the full universe size) makes the client view the full view
// - targets are shuffled with rng, then accepted greedily while the number of
//   distinct hosts covered stays within budget; overshooting patterns are skipped
// - the realized client universe size is returned and may be below budget
//
// Calling Partition again rebuilds the client view from the full view.
func (s *Store) Partition(budget int, rng *rand.Rand) (int, error) {
	total := s.full.UniverseSize()
	switch {
	case budget == -1 || budget == total:
		s.client = s.full
		s.sealed = true
		s.logger.Debug(map[string]any{"budget": budget, "hosts": total}, "client view is full view")
		return total, nil
	case budget == 0 || budget < -1:
		return 0, fmt.Errorf("%w: %d", domain.ErrInvalidBudget, budget)
	case budget > total:
		return 0, fmt.Errorf("%w: budget %d, hostnames %d", domain.ErrBudgetExceedsUniverse, budget, total)
	}

	order := s.full.Targets()
	rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

	client := newView(s.newFilter(uint64(budget)))
	skipped := 0
	for _, target := range order {
		if client.UniverseSize() == budget {
			break
		}
		p := s.full.patterns[target]
		fresh := 0
		for _, h := range p.Hosts() {
			if !client.universe.Has(h) {
				fresh++
			}
		}
		if client.UniverseSize()+fresh > budget {
			skipped++
			continue
		}
		client.add(p)
	}

	s.client = client
	s.sealed = true
	s.logger.Debug(map[string]any{
		"budget":  budget,
		"hosts":   client.UniverseSize(),
		"targets": client.TargetCount(),
		"skipped": skipped,
	}, "client view partitioned")
	return client.UniverseSize(), nil
}
