// Package generator builds padded range queries for a target.
//
// A generator is the composition of a padding strategy, which lays out the
// ordered list of blocks, and a shape, which decides how much of that block
// structure the observer gets to see.
package generator

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/haukened/drq-attack/internal/drq/common/log"
	"github.com/haukened/drq-attack/internal/drq/domain"
)

// padFunc returns the ordered blocks for p; block 0 holds the target.
type padFunc func(g *Generator, p domain.Pattern) ([]domain.HostSet, error)

// shapeFunc reshapes an ordered block list into what the observer sees.
type shapeFunc func(rng *rand.Rand, blocks []domain.HostSet) domain.RangeQuery

// Options configures a Generator.
type Options struct {
	Source      PatternSource
	PaddingSize int
	Strategy    domain.Strategy
	Shape       domain.Shape
	Rand        *rand.Rand
	Logger      log.Logger
}

// Generator produces range queries. It owns its PRNG and is therefore not safe
// for concurrent use; campaign workers each build their own.
type Generator struct {
	source PatternSource
	size   int
	pad    padFunc
	shape  shapeFunc
	rng    *rand.Rand
	logger log.Logger
}

// New validates opts and selects the strategy/shape pair.
func New(opts Options) (*Generator, error) {
	if opts.Source == nil {
		return nil, errors.New("generator: nil pattern source")
	}
	if opts.PaddingSize < 1 {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidPadding, opts.PaddingSize)
	}
	pad, err := padFor(opts.Strategy)
	if err != nil {
		return nil, err
	}
	shape, err := shapeFor(opts.Shape)
	if err != nil {
		return nil, err
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if opts.Logger == nil {
		opts.Logger = log.NewNoopLogger()
	}
	return &Generator{
		source: opts.Source,
		size:   opts.PaddingSize,
		pad:    pad,
		shape:  shape,
		rng:    opts.Rand,
		logger: opts.Logger,
	}, nil
}

// Generate builds the range query for target.
func (g *Generator) Generate(target string) (domain.RangeQuery, error) {
	p, ok := g.source.Pattern(target)
	if !ok {
		return domain.RangeQuery{}, fmt.Errorf("%w: %q", domain.ErrUnknownTarget, target)
	}
	blocks, err := g.pad(g, p)
	if err != nil {
		return domain.RangeQuery{}, fmt.Errorf("failed to pad %q: %w", target, err)
	}
	return g.shape(g.rng, blocks), nil
}

// PaddingSize returns N, the number of hostnames per block.
func (g *Generator) PaddingSize() int { return g.size }

func padFor(s domain.Strategy) (padFunc, error) {
	switch s {
	case domain.StrategyBasic:
		return basicPadding, nil
	case domain.StrategyPattern:
		return patternPadding, nil
	default:
		return nil, fmt.Errorf("generator: unsupported strategy %s", s)
	}
}

func shapeFor(s domain.Shape) (shapeFunc, error) {
	switch s {
	case domain.ShapeNDB:
		return flatten, nil
	case domain.ShapeDFB:
		return firstBlock, nil
	case domain.ShapeFDB:
		return allBlocks, nil
	default:
		return nil, fmt.Errorf("generator: unsupported shape %s", s)
	}
}

// shuffled returns a shuffled copy of hosts.
func shuffled(rng *rand.Rand, hosts []string) []string {
	out := make([]string, len(hosts))
	copy(out, hosts)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}
