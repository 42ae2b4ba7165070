package attacker

import "github.com/haukened/drq-attack/internal/drq/domain"

// attackFDB accepts c from block 0 iff its pattern has exactly one element per
// block and the non-target elements can be matched one-to-one onto blocks
// 1..k-1 (element e may take block b iff b contains e).
func attackFDB(a *Attacker, q domain.RangeQuery) domain.HostSet {
	blocks := q.Blocks
	out := make(domain.HostSet)
	for c := range blocks[0] {
		p, ok := a.source.Pattern(c)
		if !ok || p.Len() != len(blocks) {
			continue
		}
		if perfectMatching(p.Others(), blocks[1:]) {
			out.Add(c)
		}
	}
	return out
}

// perfectMatching reports whether every element can be assigned its own block
// and every block receives an element. Augmenting paths (Kuhn); patterns are
// short so the quadratic bound does not matter.
func perfectMatching(elements []string, blocks []domain.HostSet) bool {
	if len(elements) != len(blocks) {
		return false
	}
	owner := make([]int, len(blocks))
	for i := range owner {
		owner[i] = -1
	}
	var augment func(e int, seen []bool) bool
	augment = func(e int, seen []bool) bool {
		for b, block := range blocks {
			if seen[b] || !block.Has(elements[e]) {
				continue
			}
			seen[b] = true
			if owner[b] == -1 || augment(owner[b], seen) {
				owner[b] = e
				return true
			}
		}
		return false
	}
	for e := range elements {
		if !augment(e, make([]bool, len(blocks))) {
			return false
		}
	}
	return true
}
