package attacker

import "github.com/haukened/drq-attack/internal/drq/domain"

// attackDFBSubset accepts head elements whose pattern is covered by head ∪ tail.
func attackDFBSubset(a *Attacker, q domain.RangeQuery) domain.HostSet {
	return a.dfb(q, Window{Min: 1, Max: a.source.MaxPatternLength()})
}

// attackDFBWindow is attackDFBSubset restricted to pattern lengths inside the
// window estimated from |head| and |tail|.
func attackDFBWindow(a *Attacker, q domain.RangeQuery) domain.HostSet {
	w := a.window(q.Blocks[0].Len(), q.Blocks[1].Len())
	a.logger.Debug(map[string]any{
		"head": q.Blocks[0].Len(),
		"tail": q.Blocks[1].Len(),
		"min":  w.Min,
		"max":  w.Max,
	}, "estimated pattern length window")
	return a.dfb(q, w)
}

func (a *Attacker) dfb(q domain.RangeQuery, w Window) domain.HostSet {
	head, tail := q.Blocks[0], q.Blocks[1]
	out := make(domain.HostSet)
	for c := range head {
		p, ok := a.source.Pattern(c)
		if !ok || !w.Contains(p.Len()) {
			continue
		}
		if covered(p, head, tail) {
			out.Add(c)
		}
	}
	return out
}

func (a *Attacker) window(head, tail int) Window {
	key := WindowKey{Head: head, Tail: tail, Universe: a.universe, MaxLen: a.source.MaxPatternLength()}
	if a.cache != nil {
		if w, ok := a.cache.Get(key); ok {
			return w
		}
	}
	w := EstimateWindow(key.Head, key.Tail, key.Universe, key.MaxLen)
	if a.cache != nil {
		a.cache.Put(key, w)
	}
	return w
}
