package generator

import (
	"math/rand/v2"

	"github.com/haukened/drq-attack/internal/drq/domain"
)

// flatten merges every block: the observer sees one set.
func flatten(_ *rand.Rand, blocks []domain.HostSet) domain.RangeQuery {
	return domain.RangeQuery{
		Shape:  domain.ShapeNDB,
		Blocks: []domain.HostSet{union(blocks)},
	}
}

// firstBlock keeps the target's block apart and merges the rest.
func firstBlock(_ *rand.Rand, blocks []domain.HostSet) domain.RangeQuery {
	head := domain.HostSet{}
	if len(blocks) > 0 {
		head = blocks[0]
	}
	tail := domain.HostSet{}
	if len(blocks) > 1 {
		tail = union(blocks[1:])
	}
	return domain.RangeQuery{Shape: domain.ShapeDFB, Blocks: []domain.HostSet{head, tail}}
}

// allBlocks keeps every block, target's block first, the others shuffled.
func allBlocks(rng *rand.Rand, blocks []domain.HostSet) domain.RangeQuery {
	out := make([]domain.HostSet, len(blocks))
	copy(out, blocks)
	if len(out) > 1 {
		rest := out[1:]
		rng.Shuffle(len(rest), func(i, j int) { rest[i], rest[j] = rest[j], rest[i] })
	}
	return domain.RangeQuery{Shape: domain.ShapeFDB, Blocks: out}
}

func union(blocks []domain.HostSet) domain.HostSet {
	if len(blocks) == 0 {
		return domain.HostSet{}
	}
	return blocks[0].Union(blocks[1:]...)
}
