package patterns

import (
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/haukened/drq-attack/internal/drq/domain"
)

// View is one read-only window on the pattern database. The store keeps a full
// view for the attacker and a client view for the generator.
//
// Slices keep insertion order so that seeded sampling is reproducible for a
// given input file. A View is safe for concurrent reads once the store is sealed.
type View struct {
	patterns map[string]domain.Pattern
	targets  []string
	byLength map[int][]string
	index    map[string][]string // host → targets whose pattern contains it
	universe domain.HostSet
	hosts    []string
	maxLen   int
	filter   BloomFilter
}

func newView(filter BloomFilter) *View {
	return &View{
		patterns: make(map[string]domain.Pattern),
		byLength: make(map[int][]string),
		index:    make(map[string][]string),
		universe: make(domain.HostSet),
		filter:   filter,
	}
}

// add registers a validated, not yet present pattern.
func (v *View) add(p domain.Pattern) {
	target := p.Target()
	v.patterns[target] = p
	v.targets = append(v.targets, target)
	v.byLength[p.Len()] = append(v.byLength[p.Len()], target)
	if p.Len() > v.maxLen {
		v.maxLen = p.Len()
	}
	for _, h := range p.Hosts() {
		v.index[h] = append(v.index[h], target)
		if v.universe.Has(h) {
			continue
		}
		v.universe.Add(h)
		v.hosts = append(v.hosts, h)
		if v.filter != nil {
			v.filter.Add([]byte(h))
		}
	}
}

// Pattern returns the pattern registered for target.
func (v *View) Pattern(target string) (domain.Pattern, bool) {
	p, ok := v.patterns[target]
	return p, ok
}

// PatternLength returns the pattern length of target, or 0 if target is unknown.
func (v *View) PatternLength(target string) int {
	if p, ok := v.patterns[target]; ok {
		return p.Len()
	}
	return 0
}

// IsValidTarget reports whether a pattern is registered for host.
func (v *View) IsValidTarget(host string) bool {
	_, ok := v.patterns[host]
	return ok
}

// Targets returns a copy of all targets in insertion order.
func (v *View) Targets() []string {
	out := make([]string, len(v.targets))
	copy(out, v.targets)
	return out
}

// TargetCount returns the number of registered targets.
func (v *View) TargetCount() int { return len(v.targets) }

// TargetsWithLength returns a copy of all targets whose pattern has length hosts.
func (v *View) TargetsWithLength(length int) []string {
	src := v.byLength[length]
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// TargetsContaining returns the targets whose pattern contains host.
// The returned slice is shared and must not be modified.
func (v *View) TargetsContaining(host string) []string {
	return v.index[host]
}

// MightContain is the membership test for hosts seen on the wire. With a
// Bloom filter the filter answers alone, so a true result may be a false
// positive; without one the answer is exact.
func (v *View) MightContain(host string) bool {
	if v.filter != nil {
		return v.filter.MightContain([]byte(host))
	}
	return v.universe.Has(host)
}

// UniverseSize returns the number of distinct hostnames in the view.
func (v *View) UniverseSize() int { return len(v.hosts) }

// MaxPatternLength returns the longest pattern length in the view.
func (v *View) MaxPatternLength() int { return v.maxLen }

// Lengths returns every pattern length present, ascending.
func (v *View) Lengths() []int {
	out := make([]int, 0, len(v.byLength))
	for l := range v.byLength {
		out = append(out, l)
	}
	sort.Ints(out)
	return out
}

// RandomTarget picks a target uniformly. ok is false for an empty view.
func (v *View) RandomTarget(rng *rand.Rand) (target string, ok bool) {
	if len(v.targets) == 0 {
		return "", false
	}
	return v.targets[rng.IntN(len(v.targets))], true
}

// RandomHosts samples up to count distinct hostnames from the universe, skipping exclude.
// Fewer than count are returned when the pool is too small.
func (v *View) RandomHosts(rng *rand.Rand, count int, exclude domain.HostSet) ([]string, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidCount, count)
	}
	return sample(rng, v.hosts, count, exclude), nil
}

// RandomHostsByLength samples up to count distinct targets whose pattern length
// equals length, skipping exclude.
func (v *View) RandomHostsByLength(rng *rand.Rand, length, count int, exclude domain.HostSet) ([]string, error) {
	if length <= 0 {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidLength, length)
	}
	if count < 0 {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidCount, count)
	}
	return sample(rng, v.byLength[length], count, exclude), nil
}
