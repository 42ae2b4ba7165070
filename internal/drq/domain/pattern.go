package domain

import (
	"fmt"
	"strings"
)

// Pattern is the set of hostnames that co-occur when a target is resolved.
// It always contains the target itself.
//
// Notes:
// - Hosts are expected to be canonical (normalization handled by the parser).
// - Hosts keeps first-seen order with the target first, so tracks built from a
//   pattern are reproducible for a given input.
type Pattern struct {
	target string
	hosts  []string
	set    HostSet
}

// NewPattern builds the pattern for target. Empty and duplicate queries are dropped.
func NewPattern(target string, queries ...string) (Pattern, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return Pattern{}, fmt.Errorf("%w: empty target", ErrEmptyPattern)
	}
	p := Pattern{
		target: target,
		hosts:  make([]string, 0, len(queries)+1),
		set:    make(HostSet, len(queries)+1),
	}
	p.add(target)
	for _, q := range queries {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		p.add(q)
	}
	return p, nil
}

func (p *Pattern) add(host string) {
	if p.set.Has(host) {
		return
	}
	p.set.Add(host)
	p.hosts = append(p.hosts, host)
}

// Target returns the hostname the pattern belongs to.
func (p Pattern) Target() string { return p.target }

// Len returns the number of distinct hostnames including the target.
func (p Pattern) Len() int { return len(p.hosts) }

// Contains reports whether host is part of the pattern.
func (p Pattern) Contains(host string) bool { return p.set.Has(host) }

// Hosts returns a copy of all hostnames, target first.
func (p Pattern) Hosts() []string {
	out := make([]string, len(p.hosts))
	copy(out, p.hosts)
	return out
}

// Others returns a copy of every hostname except the target.
func (p Pattern) Others() []string {
	if len(p.hosts) <= 1 {
		return nil
	}
	out := make([]string, len(p.hosts)-1)
	copy(out, p.hosts[1:])
	return out
}

// Validate checks the non-empty and target-membership invariants.
func (p Pattern) Validate() error {
	if len(p.hosts) == 0 {
		return ErrEmptyPattern
	}
	if p.target == "" || !p.set.Has(p.target) {
		return fmt.Errorf("%w: %q", ErrTargetNotInPattern, p.target)
	}
	return nil
}
