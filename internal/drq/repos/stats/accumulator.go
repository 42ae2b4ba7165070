// Package stats aggregates candidate-set sizes per campaign and writes them out.
package stats

import (
	"sort"

	"github.com/haukened/drq-attack/internal/drq/domain"
)

// Accumulator counts how often each candidate-set size k was observed, overall
// and per pattern length. It is built once per campaign by a single goroutine.
type Accumulator struct {
	overall  map[int]int
	byLength map[int]map[int]int
	sums     map[int]int
	trials   int
	total    int
}

// NewAccumulator returns an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{
		overall:  make(map[int]int),
		byLength: make(map[int]map[int]int),
		sums:     make(map[int]int),
	}
}

// FromResults builds an accumulator from per-target results. lengthOf returns
// the pattern length of a target.
func FromResults(results map[string]domain.AttackResult, lengthOf func(target string) int) *Accumulator {
	acc := NewAccumulator()
	for target, res := range results {
		acc.Record(lengthOf(target), res.Len())
	}
	return acc
}

// Record adds one trial of a target with the given pattern length whose attack
// returned size candidates.
func (a *Accumulator) Record(length, size int) {
	a.overall[size]++
	perLen, ok := a.byLength[length]
	if !ok {
		perLen = make(map[int]int)
		a.byLength[length] = perLen
	}
	perLen[size]++
	a.sums[length] += size
	a.total += size
	a.trials++
}

// Overall returns a copy of the size → count table across all lengths.
func (a *Accumulator) Overall() map[int]int { return clone(a.overall) }

// ByLength returns a copy of the size → count table for one pattern length.
func (a *Accumulator) ByLength(length int) map[int]int { return clone(a.byLength[length]) }

// Lengths returns every recorded pattern length, ascending.
func (a *Accumulator) Lengths() []int {
	out := make([]int, 0, len(a.byLength))
	for l := range a.byLength {
		out = append(out, l)
	}
	sort.Ints(out)
	return out
}

// Trials returns the number of recorded trials.
func (a *Accumulator) Trials() int { return a.trials }

// Mean returns the mean candidate-set size for length, or across all trials
// when length is 0. Lengths without trials yield 0.
func (a *Accumulator) Mean(length int) float64 {
	if length == 0 {
		if a.trials == 0 {
			return 0
		}
		return float64(a.total) / float64(a.trials)
	}
	n := a.Samples(length)
	if n == 0 {
		return 0
	}
	return float64(a.sums[length]) / float64(n)
}

// Samples returns the number of trials recorded for length.
func (a *Accumulator) Samples(length int) int {
	n := 0
	for _, c := range a.byLength[length] {
		n += c
	}
	return n
}

func clone(m map[int]int) map[int]int {
	out := make(map[int]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// maxKey returns the largest key of m, or 0 when m is empty.
func maxKey(m map[int]int) int {
	hi := 0
	for k := range m {
		if k > hi {
			hi = k
		}
	}
	return hi
}
