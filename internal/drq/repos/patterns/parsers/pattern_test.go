package parsers

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukened/drq-attack/internal/drq/common/log"
	"github.com/haukened/drq-attack/internal/drq/domain"
)

type recordingLogger struct {
	mu    sync.Mutex
	debug []string
	last  map[string]any
}

func (l *recordingLogger) Info(map[string]any, string)  {}
func (l *recordingLogger) Error(map[string]any, string) {}
func (l *recordingLogger) Warn(map[string]any, string)  {}
func (l *recordingLogger) Debug(fields map[string]any, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.debug = append(l.debug, msg)
	l.last = fields
}

type countingTicker struct{ n int }

func (c *countingTicker) Tick() { c.n++ }

func hostsOf(pats []domain.Pattern) [][]string {
	out := make([][]string, len(pats))
	for i, p := range pats {
		out[i] = p.Hosts()
	}
	return out
}

func TestParsePatternFile_Basics(t *testing.T) {
	input := `
# crawled 2014-03-01
www.A.com:443:x.com:80,www.y.com,
b.com:x.com,z.com.
solo.org
c.net:c.net,X.COM
d.org:443
`
	logger := &recordingLogger{}
	ticks := &countingTicker{}
	got, err := ParsePatternFile(bytes.NewBufferString(input), logger, ticks)
	require.NoError(t, err)

	assert.Equal(t, [][]string{
		{"a.com", "x.com", "y.com"},
		{"b.com", "x.com", "z.com"},
		{"solo.org"},
		{"c.net", "x.com"},
		{"d.org"},
	}, hostsOf(got))
	assert.Equal(t, "a.com", got[0].Target())
	assert.Equal(t, 7, ticks.n, "every line ticks, including blanks and comments")

	require.NotEmpty(t, logger.debug)
	assert.Equal(t, "pattern file parsed", logger.debug[len(logger.debug)-1])
	assert.Equal(t, 5, logger.last["patterns"])
	assert.Equal(t, 8, logger.last["hostnames"])
	assert.Equal(t, 0, logger.last["skipped_lines"])
}

func TestParsePatternFile_SkipsInvalidNames(t *testing.T) {
	input := "bad..target:x.com\na.com:x..com,y.com,  ,z.com\n"
	logger := &recordingLogger{}
	got, err := ParsePatternFile(strings.NewReader(input), logger, nil)
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, []string{"a.com", "y.com", "z.com"}, got[0].Hosts())
	assert.Contains(t, logger.debug, "skip_invalid_target")
	assert.Contains(t, logger.debug, "skip_invalid_query")
	assert.Equal(t, 1, logger.last["skipped_lines"])
}

func TestParsePatternFile_Internationalized(t *testing.T) {
	got, err := ParsePatternFile(strings.NewReader("bücher.de:cdn.bücher.de\n"), nil, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"xn--bcher-kva.de", "cdn.xn--bcher-kva.de"}, got[0].Hosts())
}

func TestParsePatternFile_DuplicateTarget(t *testing.T) {
	input := "a.com:x.com\n# c\nwww.a.com:443:y.com\n"
	_, err := ParsePatternFile(strings.NewReader(input), log.NewNoopLogger(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDuplicateTarget)
	assert.Contains(t, err.Error(), "line 3")
	assert.Contains(t, err.Error(), "line 1")
}

func TestParsePatternFile_EmptyInput(t *testing.T) {
	got, err := ParsePatternFile(strings.NewReader("\n# only comments\n\n"), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParsePatternFile_LongLine(t *testing.T) {
	var b strings.Builder
	b.WriteString("big.com:")
	for i := 0; i < 10000; i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString("h")
		b.WriteString(strings.Repeat("x", i%7))
		b.WriteString(".example.org")
	}
	got, err := ParsePatternFile(strings.NewReader(b.String()), nil, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 8, got[0].Len())
}

func TestSplitLine(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		target  string
		queries []string
	}{
		{name: "plain", line: "a.com:x.com,y.com", target: "a.com", queries: []string{"x.com", "y.com"}},
		{name: "target port", line: "a.com:8080:x.com", target: "a.com", queries: []string{"x.com"}},
		{name: "query port", line: "a.com:x.com:80,y.com", target: "a.com", queries: []string{"x.com:80", "y.com"}},
		{name: "no colon", line: "a.com", target: "a.com", queries: nil},
		{name: "target port only", line: "a.com:443", target: "a.com", queries: nil},
		{name: "target port, empty queries", line: "a.com:443:", target: "a.com", queries: []string{""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, queries := splitLine(tt.line)
			assert.Equal(t, tt.target, target)
			assert.Equal(t, tt.queries, queries)
		})
	}
}

func TestCountLines(t *testing.T) {
	n, err := CountLines(strings.NewReader("a\n\nb\nc"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	n, err = CountLines(strings.NewReader(""))
	require.NoError(t, err)
	assert.Zero(t, n)
}
