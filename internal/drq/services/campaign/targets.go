package campaign

import (
	"fmt"
	"math/rand/v2"

	"github.com/haukened/drq-attack/internal/drq/common/log"
	"github.com/haukened/drq-attack/internal/drq/domain"
)

// Selection says which targets a campaign attacks: a single Target, All
// targets, or otherwise Count random ones.
type Selection struct {
	Target string
	All    bool
	Count  int
}

// ChooseTargets resolves sel against the client view.
// Random targets are drawn without replacement; a Count above the number of
// targets is capped with a warning.
func ChooseTargets(src TargetSource, sel Selection, rng *rand.Rand, logger log.Logger) ([]string, error) {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	switch {
	case sel.Target != "":
		if !src.IsValidTarget(sel.Target) {
			return nil, fmt.Errorf("%w: %q", domain.ErrUnknownTarget, sel.Target)
		}
		return []string{sel.Target}, nil
	case sel.All:
		return src.Targets(), nil
	}

	if sel.Count < 0 {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidCount, sel.Count)
	}
	pool := src.Targets()
	if sel.Count > len(pool) {
		logger.Warn(map[string]any{"requested": sel.Count, "available": len(pool)}, "fewer targets available than requested")
	}
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	return pool[:min(sel.Count, len(pool))], nil
}
