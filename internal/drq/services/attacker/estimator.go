package attacker

import "math"

// windowZ is how many standard deviations of slack the upper bound allows.
const windowZ = 4.0

// Window is an inclusive range of plausible pattern lengths.
type Window struct {
	Min int
	Max int
}

// Contains reports whether length lies in the window.
func (w Window) Contains(length int) bool {
	return length >= w.Min && length <= w.Max
}

// EstimateWindow bounds the pattern length L of a target whose basic-padded
// query showed head hostnames in the first block and tail in the rest.
//
// Every block holds at most head hostnames, so L >= 1 + ceil(tail/head).
// The upper bound is the largest L for which tail is still plausible: the tail
// is modeled as (L-1)*head uniform draws from universe hostnames, and L is kept
// while mean - windowZ*stddev of the distinct count does not exceed tail+1.
// Both bounds are clamped to [1, maxLen] when maxLen is positive.
func EstimateWindow(head, tail, universe, maxLen int) Window {
	lo := 1
	if head > 0 && tail > 0 {
		lo = 1 + (tail+head-1)/head
	}
	if maxLen > 0 && lo > maxLen {
		return Window{Min: lo, Max: lo}
	}
	if head <= 0 || universe <= 0 {
		return Window{Min: lo, Max: max(lo, maxLen)}
	}

	limit := maxLen
	if limit <= 0 {
		// without a known maximum, stop once the tail would saturate the universe
		limit = lo + 1 + universe/head
	}
	hi := lo
	for l := lo + 1; l <= limit; l++ {
		mean, sd := occupancy(float64(universe), float64((l-1)*head))
		if mean-windowZ*sd > float64(tail+1) {
			break
		}
		hi = l
	}
	return Window{Min: lo, Max: hi}
}

// occupancy returns the mean and standard deviation of the number of distinct
// values seen after m uniform draws from u values.
func occupancy(u, m float64) (mean, sd float64) {
	if u <= 1 {
		return math.Min(u, m), 0
	}
	q1 := math.Pow(1-1/u, m)
	q2 := math.Pow(1-2/u, m)
	mean = u * (1 - q1)
	variance := u*(u-1)*q2 + u*q1 - u*u*q1*q1
	if variance < 0 {
		variance = 0
	}
	return mean, math.Sqrt(variance)
}
