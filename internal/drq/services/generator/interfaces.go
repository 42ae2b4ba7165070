package generator

import (
	"math/rand/v2"

	"github.com/haukened/drq-attack/internal/drq/domain"
)

// PatternSource is the client-visible slice of the pattern store a generator reads.
// *patterns.View satisfies it.
type PatternSource interface {
	Pattern(target string) (domain.Pattern, bool)
	TargetsWithLength(length int) []string
	RandomHosts(rng *rand.Rand, count int, exclude domain.HostSet) ([]string, error)
	RandomHostsByLength(rng *rand.Rand, length, count int, exclude domain.HostSet) ([]string, error)
}
