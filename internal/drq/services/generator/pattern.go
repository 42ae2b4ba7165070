package generator

import (
	"github.com/haukened/drq-attack/internal/drq/domain"
)

// patternPadding hides the target among N-1 real patterns of the same length.
//
// Each pattern becomes a track: its target in block 0, the rest of its elements
// in blocks 1..L-1 in random order. Block i is the union of every track's
// i-th element. When fewer than N-1 same-length patterns exist, the missing
// tracks are built from two shorter patterns whose lengths sum to L, or come
// as close to L as the unused patterns allow. When no pair is left the query
// carries fewer decoys.
func patternPadding(g *Generator, p domain.Pattern) ([]domain.HostSet, error) {
	length := p.Len()
	used := domain.NewHostSet(p.Target())
	tracks := make([][]string, 0, g.size)
	tracks = append(tracks, g.track(p))

	decoys, err := g.source.RandomHostsByLength(g.rng, length, g.size-1, used)
	if err != nil {
		return nil, err
	}
	for _, d := range decoys {
		dp, ok := g.source.Pattern(d)
		if !ok {
			continue
		}
		used.Add(d)
		tracks = append(tracks, g.track(dp))
	}

	for missing := g.size - len(tracks); missing > 0; missing-- {
		t, ok := g.pairTrack(length, used)
		if !ok {
			g.logger.Debug(map[string]any{
				"target":  p.Target(),
				"length":  length,
				"tracks":  len(tracks),
				"padding": g.size,
			}, "not enough same-length patterns, using fewer decoys")
			break
		}
		tracks = append(tracks, t)
	}

	blocks := make([]domain.HostSet, length)
	for i := range blocks {
		blocks[i] = make(domain.HostSet, len(tracks))
	}
	for _, t := range tracks {
		for i, h := range t {
			blocks[i].Add(h)
		}
	}
	return blocks, nil
}

// track lays out p with its target first and the other elements shuffled.
func (g *Generator) track(p domain.Pattern) []string {
	return append([]string{p.Target()}, shuffled(g.rng, p.Others())...)
}

// pairTrack builds one track from two unused patterns whose lengths sum to
// length. When no such pair is left it takes the pair with the largest sum
// below length; that track then has no element in the trailing blocks.
// Splits of one sum are tried in random order.
func (g *Generator) pairTrack(length int, used domain.HostSet) ([]string, bool) {
	present := make([]bool, length)
	for l := 1; l < length; l++ {
		present[l] = len(g.source.TargetsWithLength(l)) > 0
	}
	for total := length; total >= 2; total-- {
		if t, ok := g.pairTrackSum(total, present, used); ok {
			return t, true
		}
	}
	return nil, false
}

// pairTrackSum builds a track of exactly total hosts from two unused patterns.
// present[l] reports whether any pattern has length l.
func (g *Generator) pairTrackSum(total int, present []bool, used domain.HostSet) ([]string, bool) {
	splits := make([]int, 0, total)
	for first := 1; first < total; first++ {
		if present[first] && present[total-first] {
			splits = append(splits, first)
		}
	}
	g.rng.Shuffle(len(splits), func(i, j int) { splits[i], splits[j] = splits[j], splits[i] })

	for _, first := range splits {
		a, _ := g.source.RandomHostsByLength(g.rng, first, 1, used)
		if len(a) == 0 {
			continue
		}
		exclude := used.Union(domain.NewHostSet(a[0]))
		b, _ := g.source.RandomHostsByLength(g.rng, total-first, 1, exclude)
		if len(b) == 0 {
			continue
		}
		pa, okA := g.source.Pattern(a[0])
		pb, okB := g.source.Pattern(b[0])
		if !okA || !okB {
			continue
		}
		used.Add(a[0], b[0])
		t := g.track(pa)
		return append(t, shuffled(g.rng, pb.Hosts())...), true
	}
	return nil, false
}
