package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlagLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		silent   bool
		verbose  bool
		expected string
	}{
		{"defaults to info", false, false, "info"},
		{"silent maps to error", true, false, "error"},
		{"verbose maps to debug", false, true, "debug"},
		{"verbose wins over silent", true, true, "debug"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, FlagLevel(tt.silent, tt.verbose))
		})
	}
}

func TestNewHandler(t *testing.T) {
	t.Parallel()

	t.Run("error level suppresses info records", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		handler := NewHandler("error", &buf)
		require.NotNil(t, handler)

		logger := slog.New(handler)
		logger.Info("quiet")
		assert.Empty(t, buf.String())

		logger.Error("loud")
		assert.Contains(t, buf.String(), "loud")
	})

	t.Run("debug level enables debug records", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		handler := NewHandler("debug", &buf)
		assert.True(t, handler.Enabled(context.Background(), slog.LevelDebug))
	})

	t.Run("nil writer falls back to stderr", func(t *testing.T) {
		t.Parallel()
		assert.NotNil(t, NewHandler("info", nil))
	})
}
