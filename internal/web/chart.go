package web

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/go-analyze/charts"
	"github.com/shopspring/decimal"

	"gitlab.com/kyawswar/ledger-chat/internal/ledger"
	"gitlab.com/kyawswar/ledger-chat/internal/models"
)

type chartsViewModel struct {
	HasExpenses bool
	Summary     ledger.Summary
}

func (s *Server) charts(w http.ResponseWriter, r *http.Request, session *models.Session) {
	expenses, err := s.expenses.ListByUser(r.Context(), session.UserID)
	if err != nil {
		s.serverError(w, "charts failed", err)
		return
	}
	s.render(w, "charts.html", chartsViewModel{
		HasExpenses: len(expenses) > 0,
		Summary:     ledger.Aggregate(expenses),
	})
}

func (s *Server) chartPNG(w http.ResponseWriter, r *http.Request, session *models.Session) {
	expenses, err := s.expenses.ListByUser(r.Context(), session.UserID)
	if err != nil {
		s.serverError(w, "chart failed", err)
		return
	}

	summary := ledger.Aggregate(expenses)
	var totals map[string]decimal.Decimal
	var title string
	switch r.URL.Query().Get("kind") {
	case "monthly":
		totals, title = summary.MonthlyTotals, "Spending by month"
	default:
		totals, title = summary.CategoryTotals, "Spending by category"
	}

	png, err := renderTotalsChart(totals, title)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

// renderTotalsChart creates a pie chart of the given totals.
// Returns PNG image as bytes.
func renderTotalsChart(totals map[string]decimal.Decimal, title string) ([]byte, error) {
	if len(totals) == 0 {
		return nil, fmt.Errorf("no expenses to chart")
	}

	labels := make([]string, 0, len(totals))
	for label := range totals {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	values := make([]float64, 0, len(labels))
	for _, label := range labels {
		values = append(values, totals[label].InexactFloat64())
	}

	p, err := charts.PieRender(
		values,
		charts.TitleOptionFunc(charts.TitleOption{Text: title}),
		charts.LegendLabelsOptionFunc(labels),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create chart: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}

	return buf, nil
}
