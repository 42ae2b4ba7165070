package generator

import (
	"github.com/haukened/drq-attack/internal/drq/domain"
)

// basicPadding emits one block per pattern element: the target first, the
// other elements in random order, each joined by N-1 uniformly drawn decoys.
// Decoys are distinct within a block and may repeat across blocks.
func basicPadding(g *Generator, p domain.Pattern) ([]domain.HostSet, error) {
	elements := append([]string{p.Target()}, shuffled(g.rng, p.Others())...)
	blocks := make([]domain.HostSet, 0, len(elements))
	short := 0
	for _, e := range elements {
		block := domain.NewHostSet(e)
		decoys, err := g.source.RandomHosts(g.rng, g.size-1, block)
		if err != nil {
			return nil, err
		}
		if len(decoys) < g.size-1 {
			short++
		}
		block.Add(decoys...)
		blocks = append(blocks, block)
	}
	if short > 0 {
		g.logger.Debug(map[string]any{
			"target":       p.Target(),
			"short_blocks": short,
			"padding":      g.size,
		}, "universe too small for requested padding")
	}
	return blocks, nil
}
