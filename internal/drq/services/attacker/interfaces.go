package attacker

import "github.com/haukened/drq-attack/internal/drq/domain"

// PatternSource is the attacker's full background knowledge.
// *patterns.View satisfies it.
type PatternSource interface {
	Pattern(target string) (domain.Pattern, bool)
	PatternLength(target string) int
	IsValidTarget(host string) bool
	TargetsContaining(host string) []string
	MightContain(host string) bool
	UniverseSize() int
	MaxPatternLength() int
}

// WindowKey identifies one length-window estimate.
type WindowKey struct {
	Head     int
	Tail     int
	Universe int
	MaxLen   int
}

// WindowCache memoizes length-window estimates. Implementations must be safe
// for concurrent use.
type WindowCache interface {
	Get(key WindowKey) (Window, bool)
	Put(key WindowKey, w Window)
	Len() int
	Stats() (hits, misses, evictions uint64)
}
