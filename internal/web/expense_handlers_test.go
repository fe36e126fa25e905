package web

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  decimal.Decimal
	}{
		{"plain", "4.50", decimal.NewFromFloat(4.5)},
		{"integer", "100", decimal.NewFromInt(100)},
		{"whitespace", "  7.25  ", decimal.NewFromFloat(7.25)},
		{"negative passes through", "-3", decimal.NewFromInt(-3)},
		{"garbage becomes zero", "abc", decimal.Zero},
		{"empty becomes zero", "", decimal.Zero},
		{"double dot becomes zero", "5.5.5", decimal.Zero},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseAmount(tt.input)
			require.True(t, got.Equal(tt.want), "got %s want %s", got, tt.want)
		})
	}
}

func TestParseDate(t *testing.T) {
	t.Parallel()

	t.Run("parses form date", func(t *testing.T) {
		got := parseDate("2024-03-05")
		require.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), got)
	})

	t.Run("empty defaults to now", func(t *testing.T) {
		got := parseDate("")
		require.WithinDuration(t, time.Now(), got, time.Minute)
	})

	t.Run("invalid defaults to now", func(t *testing.T) {
		got := parseDate("05/03/2024")
		require.WithinDuration(t, time.Now(), got, time.Minute)
	})
}
