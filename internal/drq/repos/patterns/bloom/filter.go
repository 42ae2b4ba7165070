package bloom

import (
	"sync"

	bitsbloom "github.com/bits-and-blooms/bloom/v3"

	"github.com/haukened/drq-attack/internal/drq/repos/patterns"
)

// filter wraps a bits-and-blooms filter. Adds are serialized; views only add
// while the store is being populated, before any concurrent reader exists.
type filter struct {
	mu sync.Mutex
	bf *bitsbloom.BloomFilter
}

func (f *filter) Add(key []byte) {
	f.mu.Lock()
	f.bf.Add(key)
	f.mu.Unlock()
}

func (f *filter) MightContain(key []byte) bool {
	return f.bf.Test(key)
}

var _ patterns.BloomFilter = (*filter)(nil)
