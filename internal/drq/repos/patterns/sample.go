package patterns

import (
	"math/rand/v2"

	"github.com/haukened/drq-attack/internal/drq/domain"
)

// sample draws up to count distinct entries of pool that are not in exclude.
// pool must not contain duplicates.
//
// Small draws use index rejection; large draws, or draws where rejection keeps
// hitting excluded entries, fall back to shuffling the filtered pool.
func sample(rng *rand.Rand, pool []string, count int, exclude domain.HostSet) []string {
	if count <= 0 || len(pool) == 0 {
		return nil
	}

	if count*2 < len(pool) {
		out := make([]string, 0, count)
		seen := make(map[int]struct{}, count)
		for attempts := 0; len(out) < count && attempts < 4*len(pool); attempts++ {
			i := rng.IntN(len(pool))
			if _, dup := seen[i]; dup {
				continue
			}
			seen[i] = struct{}{}
			if exclude.Has(pool[i]) {
				continue
			}
			out = append(out, pool[i])
		}
		if len(out) == count {
			return out
		}
	}

	candidates := make([]string, 0, len(pool))
	for _, h := range pool {
		if !exclude.Has(h) {
			candidates = append(candidates, h)
		}
	}
	rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	if len(candidates) > count {
		candidates = candidates[:count]
	}
	return candidates
}
