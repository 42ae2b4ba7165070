package campaign

import (
	"math/rand/v2"

	"github.com/haukened/drq-attack/internal/drq/domain"
)

// Generator produces the range query a client would send for target.
type Generator interface {
	Generate(target string) (domain.RangeQuery, error)
}

// Attacker recovers candidate targets from an observed query.
type Attacker interface {
	Attack(q domain.RangeQuery) (domain.AttackResult, error)
}

// Pair is one worker's matched generator and attacker.
type Pair struct {
	Generator Generator
	Attacker  Attacker
}

// PairFactory builds a fresh pair drawing randomness from rng. It is called
// once per worker.
type PairFactory func(rng *rand.Rand) (Pair, error)

// TargetSource is the client view targets are chosen from.
type TargetSource interface {
	IsValidTarget(host string) bool
	Targets() []string
}
