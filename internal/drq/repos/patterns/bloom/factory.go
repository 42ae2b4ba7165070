// Package bloom provides the universe prefilter for pattern views.
package bloom

import (
	bitsbloom "github.com/bits-and-blooms/bloom/v3"

	"github.com/haukened/drq-attack/internal/drq/repos/patterns"
)

type factory struct {
	sizer patterns.BloomSizer
}

// NewFactory returns a BloomFactory that sizes filters from capacity and FP rate.
func NewFactory() patterns.BloomFactory { return factory{sizer: NewSizer()} }

// New constructs a filter sized for capacity hostnames at fpRate.
func (f factory) New(capacity uint64, fpRate float64) patterns.BloomFilter {
	m, k := f.sizer.Size(capacity, fpRate)
	return &filter{bf: bitsbloom.New(uint(m), uint(k))}
}
