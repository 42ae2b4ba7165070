// Package attacker recovers candidate targets from observed range queries.
//
// There is one attack per block shape. Each accepts a candidate c when the
// known pattern of c is consistent with what was observed; the true target is
// always consistent with a query generated for it, so results never miss it.
package attacker

import (
	"errors"
	"fmt"
	"strings"

	"github.com/haukened/drq-attack/internal/drq/common/log"
	"github.com/haukened/drq-attack/internal/drq/domain"
)

// Variant selects the distinguishable-first-block acceptance rule.
type Variant uint8

const (
	// VariantSubset accepts head elements whose pattern is covered by head ∪ tail.
	VariantSubset Variant = iota
	// VariantLengthWindow additionally requires the pattern length to fall in
	// the window estimated from the observed block sizes.
	VariantLengthWindow
)

// String returns a stable string representation of the variant.
func (v Variant) String() string {
	switch v {
	case VariantSubset:
		return "subset"
	case VariantLengthWindow:
		return "window"
	default:
		return fmt.Sprintf("Variant(%d)", v)
	}
}

// ParseVariant converts "subset" or "window" into a Variant.
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "subset":
		return VariantSubset, nil
	case "window":
		return VariantLengthWindow, nil
	default:
		return 0, fmt.Errorf("unsupported dfb variant: %q", s)
	}
}

// Options configures an Attacker.
//
// UniverseSize is the number of hostnames the generator draws decoys from; it
// defaults to the source's universe and is only used by VariantLengthWindow.
// A nil Cache disables memoization of window estimates.
type Options struct {
	Source       PatternSource
	Shape        domain.Shape
	Variant      Variant
	UniverseSize int
	Cache        WindowCache
	Logger       log.Logger
}

// Attacker inverts one generator shape. It holds no per-query state and is
// safe for concurrent use when its source and cache are.
type Attacker struct {
	source   PatternSource
	shape    domain.Shape
	variant  Variant
	universe int
	cache    WindowCache
	logger   log.Logger
	attack   func(a *Attacker, q domain.RangeQuery) domain.HostSet
}

// New validates opts and selects the attack for the shape.
func New(opts Options) (*Attacker, error) {
	if opts.Source == nil {
		return nil, errors.New("attacker: nil pattern source")
	}
	a := &Attacker{
		source:   opts.Source,
		shape:    opts.Shape,
		variant:  opts.Variant,
		universe: opts.UniverseSize,
		cache:    opts.Cache,
		logger:   opts.Logger,
	}
	if a.universe <= 0 {
		a.universe = opts.Source.UniverseSize()
	}
	if a.logger == nil {
		a.logger = log.NewNoopLogger()
	}
	switch opts.Shape {
	case domain.ShapeNDB:
		a.attack = attackNDB
	case domain.ShapeDFB:
		switch opts.Variant {
		case VariantSubset:
			a.attack = attackDFBSubset
		case VariantLengthWindow:
			a.attack = attackDFBWindow
		default:
			return nil, fmt.Errorf("attacker: unsupported dfb variant %s", opts.Variant)
		}
	case domain.ShapeFDB:
		a.attack = attackFDB
	default:
		return nil, fmt.Errorf("attacker: unsupported shape %s", opts.Shape)
	}
	return a, nil
}

// Attack returns every candidate consistent with q. It fails only when q is
// malformed or does not have the shape this attacker inverts; an empty
// candidate set is a valid result.
func (a *Attacker) Attack(q domain.RangeQuery) (domain.AttackResult, error) {
	if err := q.Validate(); err != nil {
		return domain.AttackResult{}, err
	}
	if q.Shape != a.shape {
		return domain.AttackResult{}, fmt.Errorf("%w: got %s query, attacker expects %s", domain.ErrMalformedQuery, q.Shape, a.shape)
	}
	return domain.NewAttackResult(a.attack(a, q)), nil
}

// Shape returns the query shape this attacker inverts.
func (a *Attacker) Shape() domain.Shape { return a.shape }

// covered reports whether every host of p is in one of sets.
func covered(p domain.Pattern, sets ...domain.HostSet) bool {
	for _, h := range p.Hosts() {
		found := false
		for _, s := range sets {
			if s.Has(h) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
