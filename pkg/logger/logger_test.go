package logger

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tiktoksync/pkg/config"
)

func newBufferLogger(buf *bytes.Buffer) *zerologLogger {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	zlog := zerolog.New(buf).Level(zerolog.DebugLevel)
	return &zerologLogger{logger: &zlog, fields: make(map[string]interface{})}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.LoggingConfig
		wantErr bool
	}{
		{name: "info level", cfg: &config.LoggingConfig{Level: "info"}},
		{name: "debug level", cfg: &config.LoggingConfig{Level: "debug"}},
		{name: "invalid level", cfg: &config.LoggingConfig{Level: "loud"}, wantErr: true},
		{name: "file output", cfg: &config.LoggingConfig{Level: "info", File: filepath.Join(t.TempDir(), "logs", "sync.log")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, l)
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zerolog.Level
		wantErr  bool
	}{
		{"debug", zerolog.DebugLevel, false},
		{"INFO", zerolog.InfoLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"disabled", zerolog.Disabled, false},
		{"", zerolog.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			level, err := parseLogLevel(tt.level)
			assert.Equal(t, tt.wantErr, err != nil)
			assert.Equal(t, tt.expected, level)
		})
	}
}

func TestFieldChaining(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf)

	l.WithField("run_id", "abc").
		WithFields(map[string]interface{}{"count": 3, "skipped": true}).
		Info("chained fields")

	out := buf.String()
	assert.Contains(t, out, "chained fields")
	assert.Contains(t, out, `"run_id":"abc"`)
	assert.Contains(t, out, `"count":3`)
	assert.Contains(t, out, `"skipped":true`)
}

func TestWithFieldDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf)

	_ = l.WithField("child", "yes")
	l.Info("parent")

	assert.NotContains(t, buf.String(), "child")
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf)

	assert.Same(t, l, l.WithError(nil))

	l.WithError(errors.New("boom")).Error("failed")
	assert.Contains(t, buf.String(), `"error":"boom"`)
}

func TestFieldTypes(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf)

	l.InfoWithFields("typed", map[string]interface{}{
		"int64":    int64(7),
		"duration": 2 * time.Second,
		"strings":  []string{"a", "b"},
		"custom":   struct{ Name string }{Name: "x"},
	})

	out := buf.String()
	assert.Contains(t, out, `"int64":7`)
	assert.Contains(t, out, `"strings":["a","b"]`)
	assert.Contains(t, out, `"custom":{"Name":"x"}`)
}

func TestLogRequest(t *testing.T) {
	tl := NewTestLogger()

	LogRequest(tl, "GET", "https://example.com", 200, time.Millisecond)
	LogRequest(tl, "GET", "https://example.com", 404, time.Millisecond)
	LogRequest(tl, "POST", "https://example.com", 503, time.Millisecond)

	assert.Len(t, tl.GetMessagesByLevel("DEBUG"), 1)
	assert.Len(t, tl.GetMessagesByLevel("WARN"), 1)
	assert.Len(t, tl.GetMessagesByLevel("ERROR"), 1)
}

func TestTestLoggerSharesBuffer(t *testing.T) {
	tl := NewTestLogger()

	tl.WithField("run_id", "r1").WithError(errors.New("bad")).Error("step failed")
	tl.Info("plain")

	msgs := tl.GetMessages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "r1", msgs[0].Fields["run_id"])
	assert.EqualError(t, msgs[0].Error, "bad")
	assert.True(t, tl.HasMessage("plain"))
	assert.True(t, tl.HasError())
	assert.True(t, strings.Contains(tl.String(), "[ERROR] step failed"))
}

func TestGlobalLogger(t *testing.T) {
	require.NoError(t, Initialize(&config.LoggingConfig{Level: "debug"}))
	l := GetLogger()
	require.NotNil(t, l)
	assert.Same(t, l, GetLogger())
}
