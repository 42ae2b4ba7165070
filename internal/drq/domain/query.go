package domain

import "fmt"

// RangeQuery is what a passive observer sees in place of a single lookup.
// Blocks holds one set for ShapeNDB, (head, tail) for ShapeDFB and one set per
// pattern element for ShapeFDB, with the target's block first.
type RangeQuery struct {
	Shape  Shape
	Blocks []HostSet
}

// Validate checks that the block count matches the shape.
func (q RangeQuery) Validate() error {
	switch q.Shape {
	case ShapeNDB:
		if len(q.Blocks) != 1 {
			return fmt.Errorf("%w: ndb query has %d blocks, want 1", ErrMalformedQuery, len(q.Blocks))
		}
	case ShapeDFB:
		if len(q.Blocks) != 2 {
			return fmt.Errorf("%w: dfb query has %d blocks, want 2", ErrMalformedQuery, len(q.Blocks))
		}
	case ShapeFDB:
		if len(q.Blocks) == 0 {
			return fmt.Errorf("%w: fdb query has no blocks", ErrMalformedQuery)
		}
	default:
		return fmt.Errorf("%w: unknown shape %s", ErrMalformedQuery, q.Shape)
	}
	for i, b := range q.Blocks {
		if b == nil {
			return fmt.Errorf("%w: block %d is nil", ErrMalformedQuery, i)
		}
	}
	return nil
}

// Head returns the first block.
func (q RangeQuery) Head() HostSet {
	if len(q.Blocks) == 0 {
		return HostSet{}
	}
	return q.Blocks[0]
}

// Tail returns the union of every block after the first.
func (q RangeQuery) Tail() HostSet {
	if len(q.Blocks) <= 1 {
		return HostSet{}
	}
	return q.Blocks[1].Union(q.Blocks[2:]...)
}

// Flat returns the union of all blocks.
func (q RangeQuery) Flat() HostSet {
	if len(q.Blocks) == 0 {
		return HostSet{}
	}
	return q.Blocks[0].Union(q.Blocks[1:]...)
}

// Size returns the number of hostnames summed over blocks.
func (q RangeQuery) Size() int {
	n := 0
	for _, b := range q.Blocks {
		n += len(b)
	}
	return n
}

// AttackResult is the set of candidate targets consistent with an observed query.
type AttackResult struct {
	Candidates HostSet
}

// NewAttackResult wraps candidates, never returning a nil set.
func NewAttackResult(candidates HostSet) AttackResult {
	if candidates == nil {
		candidates = HostSet{}
	}
	return AttackResult{Candidates: candidates}
}

// Len returns the number of candidates.
func (r AttackResult) Len() int { return len(r.Candidates) }

// Contains reports whether target is a candidate.
func (r AttackResult) Contains(target string) bool { return r.Candidates.Has(target) }
