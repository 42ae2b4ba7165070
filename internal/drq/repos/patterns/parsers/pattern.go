// Package parsers reads co-occurrence pattern files into domain patterns.
package parsers

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/miekg/dns"

	"github.com/haukened/drq-attack/internal/drq/common/log"
	"github.com/haukened/drq-attack/internal/drq/common/progress"
	"github.com/haukened/drq-attack/internal/drq/common/utils"
	"github.com/haukened/drq-attack/internal/drq/domain"
)

// maxLineBytes bounds a single pattern line; long CDN-heavy pages exceed bufio's default.
const maxLineBytes = 1 << 20

// ParsePatternFile parses lines of the form
//
//	target[:port]:query1[:port],query2[:port],...
//
// into patterns, one per line, in file order.
//
// Behavior:
// - Blank lines and lines starting with '#' are skipped
// - Every name is canonicalized (port and leading "www." removed, lowercased, IDNA to ASCII)
// - Names that are not valid domain names are skipped; a line with an invalid target is skipped whole
// - A line without ':', or with only a target port, yields a pattern holding only its target
// - A target seen on an earlier line is an error carrying the line number
//
// tick, if non-nil, is advanced once per line read.
func ParsePatternFile(r io.Reader, logger log.Logger, tick progress.Ticker) ([]domain.Pattern, error) {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	if tick == nil {
		tick = progress.Nop{}
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	seen := make(map[string]int)
	out := make([]domain.Pattern, 0, 256)
	skipped := 0
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		tick.Tick()
		line := strings.TrimSpace(strings.TrimPrefix(scanner.Text(), "\uFEFF"))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		rawTarget, rawQueries := splitLine(line)
		target := utils.CanonicalHostname(rawTarget)
		if !validHostname(target) {
			logger.Debug(map[string]any{"line": lineNum, "raw": rawTarget}, "skip_invalid_target")
			skipped++
			continue
		}
		if first, dup := seen[target]; dup {
			return nil, fmt.Errorf("line %d: %w: %q (first seen on line %d)", lineNum, domain.ErrDuplicateTarget, target, first)
		}

		queries := make([]string, 0, len(rawQueries))
		for _, raw := range rawQueries {
			if strings.TrimSpace(raw) == "" {
				continue
			}
			name := utils.CanonicalHostname(raw)
			if !validHostname(name) {
				logger.Debug(map[string]any{"line": lineNum, "raw": raw}, "skip_invalid_query")
				continue
			}
			queries = append(queries, name)
		}

		p, err := domain.NewPattern(target, queries...)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		seen[target] = lineNum
		out = append(out, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read pattern file: %w", err)
	}

	logSummary(logger, out, skipped)
	return out, nil
}

// splitLine separates the target from its query list. An all-digit field right
// after the target is its port and is dropped; "target:port" has no queries.
func splitLine(line string) (string, []string) {
	target, rest, found := strings.Cut(line, ":")
	if !found {
		return target, nil
	}
	port, after, ok := strings.Cut(rest, ":")
	switch {
	case ok && isPort(port):
		rest = after
	case !ok && isPort(strings.TrimSpace(rest)):
		return target, nil
	}
	return target, strings.Split(rest, ",")
}

func isPort(s string) bool {
	if s == "" || len(s) > 5 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func validHostname(name string) bool {
	if name == "" {
		return false
	}
	_, ok := dns.IsDomainName(name)
	return ok
}

func logSummary(logger log.Logger, pats []domain.Pattern, skipped int) {
	hosts := make(domain.HostSet)
	for _, p := range pats {
		hosts.Add(p.Hosts()...)
	}
	avg := 0.0
	if len(pats) > 0 {
		avg = float64(hosts.Len()) / float64(len(pats))
	}
	logger.Debug(map[string]any{
		"patterns":      len(pats),
		"hostnames":     hosts.Len(),
		"avg_queries":   avg,
		"skipped_lines": skipped,
	}, "pattern file parsed")
}

// CountLines returns the number of lines in r, for sizing a progress bar.
func CountLines(r io.Reader) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	n := 0
	for scanner.Scan() {
		n++
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("failed to count lines: %w", err)
	}
	return n, nil
}
