package campaign

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/haukened/drq-attack/internal/drq/domain"
)

// Validate checks that every target is among its own candidates. Targets are
// checked in sorted order; the error names the first failing target and how
// many were correct before it.
func Validate(results Results) error {
	correct := 0
	for _, target := range sortedTargets(results) {
		if !results[target].Contains(target) {
			return fmt.Errorf("%w: %q (previously checked %d correct results)", domain.ErrTargetMissing, target, correct)
		}
		correct++
	}
	return nil
}

// Report writes one block per target: the target, how many candidates the
// attacker returned and the target's pattern length.
func Report(w io.Writer, results Results, lengthOf func(target string) int) error {
	rule := strings.Repeat("=", 30)
	for _, target := range sortedTargets(results) {
		_, err := fmt.Fprintf(w, "target:      %s\ncandidates:  %d\npattern len: %d\n%s\n",
			target, results[target].Len(), lengthOf(target), rule)
		if err != nil {
			return err
		}
	}
	return nil
}

func sortedTargets(results Results) []string {
	out := make([]string, 0, len(results))
	for t := range results {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
