package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", DEBUG, false},
		{"INFO", INFO, false},
		{"", INFO, false},
		{"warning", WARN, false},
		{"Error", ERROR, false},
		{"loud", INFO, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, JSON, f)

	f, err = ParseFormat("text")
	require.NoError(t, err)
	assert.Equal(t, Text, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LogConfig{Level: WARN, Format: Text})

	l.Info("hidden")
	l.Debug("hidden too")
	assert.Empty(t, buf.String())

	l.Warn("shown")
	assert.Contains(t, buf.String(), "shown")

	buf.Reset()
	l.Progress("always", nil)
	assert.Contains(t, buf.String(), "always")
}

func TestLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LogConfig{Level: DEBUG, Format: JSON})

	l.Error("Service failed", errors.New("boom"), map[string]interface{}{"service": "AmazonRDS"})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "Service failed: boom", entry["message"])
	data, ok := entry["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "AmazonRDS", data["service"])
}

func TestServiceHelpers(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LogConfig{Level: INFO, Format: JSON})

	l.ServiceStart("AmazonRedshift", "https://example.test/index.csv")
	l.ServiceError("AmazonRedshift", errors.New("download failed"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Processing service")
	assert.Contains(t, lines[1], "download failed")
}
