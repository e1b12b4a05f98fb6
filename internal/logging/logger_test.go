// Package logging tests for structured logging.
package logging

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var entries []map[string]interface{}
	scanner := bufio.NewScanner(buf)
	for scanner.Scan() {
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry), "line: %s", scanner.Text())
		entries = append(entries, entry)
	}
	return entries
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{" warn ", LevelWarn},
		{"error", LevelError},
		{"verbose", LevelInfo},
		{"", LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), "ParseLevel(%q)", tt.in)
	}
}

func TestLogger_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Name: "test", Out: &buf, Level: LevelDebug, JSON: true})

	l.Info("idea added", map[string]interface{}{"idea_id": "abc"})
	l.Error("update failed", errors.New("database is locked"), map[string]interface{}{"video_id": "v1"})

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)

	assert.Equal(t, "idea added", entries[0]["@message"])
	assert.Equal(t, "info", entries[0]["@level"])
	assert.Equal(t, "abc", entries[0]["idea_id"])

	assert.Equal(t, "error", entries[1]["@level"])
	assert.Equal(t, "database is locked", entries[1]["error"])
	assert.Equal(t, "v1", entries[1]["video_id"])
}

func TestLogger_minLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Out: &buf, Level: LevelWarn, JSON: true})

	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "shown", entries[0]["@message"])
}

func TestLogger_mergedContext(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Out: &buf, Level: LevelInfo, JSON: true})

	l.Info("merged",
		map[string]interface{}{"a": 1, "b": "first"},
		map[string]interface{}{"b": "second"})

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.EqualValues(t, 1, entries[0]["a"])
	assert.Equal(t, "second", entries[0]["b"])
}

func TestLogger_Named(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Name: "planner", Out: &buf, Level: LevelInfo, JSON: true}).Named("ideas")

	l.Info("loaded")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "planner.ideas", entries[0]["@module"])
}

func TestNewNull(t *testing.T) {
	l := NewNull()
	assert.NotPanics(t, func() {
		l.Info("nothing")
		l.Error("nothing", errors.New("x"))
	})
}

func TestInit_idempotent(t *testing.T) {
	global = nil
	once = sync.Once{}

	var buf1, buf2 bytes.Buffer
	Init(Options{Out: &buf1, Level: LevelInfo, JSON: true})
	first := Get()
	Init(Options{Out: &buf2, Level: LevelDebug, JSON: true})

	assert.Same(t, first, Get())

	Info("global entry")
	assert.Contains(t, buf1.String(), "global entry")
	assert.Empty(t, buf2.String())
}
