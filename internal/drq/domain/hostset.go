package domain

import "sort"

// HostSet is an unordered set of canonical hostnames.
type HostSet map[string]struct{}

// NewHostSet returns a set holding hosts.
func NewHostSet(hosts ...string) HostSet {
	s := make(HostSet, len(hosts))
	s.Add(hosts...)
	return s
}

// Add inserts hosts into the set.
func (s HostSet) Add(hosts ...string) {
	for _, h := range hosts {
		s[h] = struct{}{}
	}
}

// Has reports whether host is a member.
func (s HostSet) Has(host string) bool {
	_, ok := s[host]
	return ok
}

// Len returns the number of members.
func (s HostSet) Len() int { return len(s) }

// Clone returns an independent copy.
func (s HostSet) Clone() HostSet {
	c := make(HostSet, len(s))
	for h := range s {
		c[h] = struct{}{}
	}
	return c
}

// Union returns a new set containing the members of s and all others.
func (s HostSet) Union(others ...HostSet) HostSet {
	size := len(s)
	for _, o := range others {
		size += len(o)
	}
	u := make(HostSet, size)
	for h := range s {
		u[h] = struct{}{}
	}
	for _, o := range others {
		for h := range o {
			u[h] = struct{}{}
		}
	}
	return u
}

// ContainsAll reports whether every host is a member.
func (s HostSet) ContainsAll(hosts []string) bool {
	for _, h := range hosts {
		if _, ok := s[h]; !ok {
			return false
		}
	}
	return true
}

// Sorted returns the members in lexical order.
func (s HostSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for h := range s {
		out = append(out, h)
	}
	sort.Strings(out)
	return out
}
