package web

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestRenderTotalsChart(t *testing.T) {
	t.Parallel()

	t.Run("renders a PNG", func(t *testing.T) {
		totals := map[string]decimal.Decimal{
			"Food":      decimal.NewFromFloat(16.5),
			"Transport": decimal.NewFromFloat(2.5),
		}

		png, err := renderTotalsChart(totals, "Spending by category")
		require.NoError(t, err)
		require.NotEmpty(t, png)
		// PNG magic bytes.
		require.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png[:4])
	})

	t.Run("no totals is an error", func(t *testing.T) {
		_, err := renderTotalsChart(nil, "Empty")
		require.Error(t, err)
	})
}
