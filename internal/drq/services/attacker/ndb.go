package attacker

import "github.com/haukened/drq-attack/internal/drq/domain"

// attackNDB accepts c iff pattern(c) ⊆ observed. Observed hosts pass the
// source's membership filter before the index is touched; hits per target are
// then counted through the host→targets index.
func attackNDB(a *Attacker, q domain.RangeQuery) domain.HostSet {
	observed := q.Blocks[0]
	hits := make(map[string]int)
	for h := range observed {
		if !a.source.MightContain(h) {
			continue
		}
		for _, t := range a.source.TargetsContaining(h) {
			hits[t]++
		}
	}
	out := make(domain.HostSet)
	for t, n := range hits {
		if n == a.source.PatternLength(t) {
			out.Add(t)
		}
	}
	return out
}
