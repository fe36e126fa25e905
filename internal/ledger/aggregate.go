// Package ledger provides aggregation over a user's expenses.
package ledger

import (
	"github.com/shopspring/decimal"

	"gitlab.com/kyawswar/ledger-chat/internal/models"
)

// Summary holds expense totals grouped by category and by calendar month.
// Both maps partition the same grand total.
type Summary struct {
	CategoryTotals map[string]decimal.Decimal
	MonthlyTotals  map[string]decimal.Decimal
}

// Aggregate sums expense amounts by category and by calendar month.
// Expenses without a category fall under models.UncategorizedLabel; month
// keys are "2006-01" derived from the expense date in UTC.
func Aggregate(expenses []models.Expense) Summary {
	summary := Summary{
		CategoryTotals: make(map[string]decimal.Decimal),
		MonthlyTotals:  make(map[string]decimal.Decimal),
	}

	for _, exp := range expenses {
		category := exp.Category
		if category == "" {
			category = models.UncategorizedLabel
		}
		summary.CategoryTotals[category] = summary.CategoryTotals[category].Add(exp.Amount)

		month := exp.SpentAt.UTC().Format(models.MonthKeyFormat)
		summary.MonthlyTotals[month] = summary.MonthlyTotals[month].Add(exp.Amount)
	}

	return summary
}

// GrandTotal sums all expense amounts.
func GrandTotal(expenses []models.Expense) decimal.Decimal {
	total := decimal.Zero
	for _, exp := range expenses {
		total = total.Add(exp.Amount)
	}
	return total
}
