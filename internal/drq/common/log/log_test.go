package log

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

type testLogger struct {
	entries []string
}

func (l *testLogger) Info(_ map[string]any, msg string)  { l.entries = append(l.entries, "INFO:"+msg) }
func (l *testLogger) Error(_ map[string]any, msg string) { l.entries = append(l.entries, "ERROR:"+msg) }
func (l *testLogger) Debug(_ map[string]any, msg string) { l.entries = append(l.entries, "DEBUG:"+msg) }
func (l *testLogger) Warn(_ map[string]any, msg string)  { l.entries = append(l.entries, "WARN:"+msg) }

// The four leveled methods are the whole Logger contract.
var _ Logger = (*testLogger)(nil)

func TestActualZapLogger(t *testing.T) {
	Debug(map[string]any{"pattern_len": 3, "target": "example.com"}, "test debug")
	Info(nil, "test info")
	Warn(nil, "test warn")
	Error(nil, "test error")
}

func TestSetLoggerAndGlobalLogging(t *testing.T) {
	orig := GetLogger()
	defer SetLogger(orig)

	tlog := &testLogger{}
	SetLogger(tlog)

	Info(nil, "info msg")
	Error(nil, "error msg")
	Debug(nil, "debug msg")
	Warn(nil, "warn msg")

	assert.Equal(t, []string{
		"INFO:info msg",
		"ERROR:error msg",
		"DEBUG:debug msg",
		"WARN:warn msg",
	}, tlog.entries)
}

func TestConfigure(t *testing.T) {
	orig := GetLogger()
	defer SetLogger(orig)

	require.NoError(t, Configure("dev", "debug", false, false))
	require.NoError(t, Configure("prod", "INFO", false, false))

	err := Configure("prod", "loud", false, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestResolveLevel(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		quiet   bool
		verbose bool
		want    zapcore.Level
	}{
		{name: "plain info", level: "info", want: zapcore.InfoLevel},
		{name: "quiet raises info", level: "info", quiet: true, want: zapcore.WarnLevel},
		{name: "quiet keeps error", level: "error", quiet: true, want: zapcore.ErrorLevel},
		{name: "verbose lowers warn", level: "warn", verbose: true, want: zapcore.DebugLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveLevel(tt.level, tt.quiet, tt.verbose)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNoopLogger(t *testing.T) {
	l := NewNoopLogger()
	l.Info(map[string]any{"k": "v"}, "ignored")
	l.Error(nil, "ignored")
	l.Debug(nil, "ignored")
	l.Warn(nil, "ignored")
}
