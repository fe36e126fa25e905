package logger

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestSetLevel(t *testing.T) {
	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"bogus", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run("level "+tt.level, func(t *testing.T) {
			SetLevel(tt.level)
			require.Equal(t, tt.want, zerolog.GlobalLevel())
		})
	}
}

func TestSetJSON(t *testing.T) {
	require.NotPanics(t, func() {
		SetJSON()
		Log.Info().Msg("json output")
	})
}
