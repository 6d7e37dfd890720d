package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZerologLoggerMethods(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	l := New("test")
	require.NotNil(t, l)
	l.Debugf("debug %d", 1)
	l.Debugw("debug", map[string]any{"k": 1})
	l.Infof("info %s", "test")
	l.Warnf("warn")
	l.Errorf("error")
}

func TestZerologLoggerComponentField(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithOptions("travel", Options{Level: "debug", Format: "json", Out: &buf})
	l.Infof("cache miss: key=%s", "a|b")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "travel", rec["component"])
	assert.Equal(t, "info", rec["level"])
	assert.Equal(t, "cache miss: key=a|b", rec["message"])
}

func TestZerologLoggerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithOptions("x", Options{Level: "warn", Out: &buf})
	l.Infof("hidden")
	assert.Zero(t, buf.Len())
	l.Warnf("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestOrNop(t *testing.T) {
	assert.IsType(t, NopLogger{}, OrNop(nil))
	l := New("x")
	assert.Same(t, l, OrNop(l))
}
