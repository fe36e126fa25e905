package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"gitlab.com/kyawswar/ledger-chat/internal/ledger"
	"gitlab.com/kyawswar/ledger-chat/internal/models"
	"gitlab.com/kyawswar/ledger-chat/internal/repository"
)

type dashboardViewModel struct {
	Username string
	Expenses []models.Expense
	Summary  ledger.Summary
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request, session *models.Session) {
	expenses, err := s.expenses.ListByUser(r.Context(), session.UserID)
	if err != nil {
		s.serverError(w, "dashboard failed", err)
		return
	}
	s.render(w, "dashboard.html", dashboardViewModel{
		Username: session.Username,
		Expenses: expenses,
		Summary:  ledger.Aggregate(expenses),
	})
}

func (s *Server) addExpense(w http.ResponseWriter, r *http.Request, session *models.Session) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}
	expense := &models.Expense{
		UserID:   session.UserID,
		Title:    r.PostFormValue("title"),
		Amount:   parseAmount(r.PostFormValue("amount")),
		Category: r.PostFormValue("category"),
		SpentAt:  parseDate(r.PostFormValue("date")),
	}
	if err := s.expenses.Create(r.Context(), expense); err != nil {
		s.serverError(w, "add expense failed", err)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

func (s *Server) deleteExpense(w http.ResponseWriter, r *http.Request, session *models.Session) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err == nil {
		// Scoped to the owner: a foreign id silently deletes nothing.
		if err := s.expenses.Delete(r.Context(), id, session.UserID); err != nil {
			s.serverError(w, "delete expense failed", err)
			return
		}
	}
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

func (s *Server) editExpenseForm(w http.ResponseWriter, r *http.Request, session *models.Session) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}
	expense, err := s.expenses.GetByIDAndUser(r.Context(), id, session.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Redirect(w, r, "/dashboard", http.StatusFound)
			return
		}
		s.serverError(w, "edit form failed", err)
		return
	}
	s.render(w, "edit_expense.html", struct{ Expense *models.Expense }{Expense: expense})
}

func (s *Server) editExpense(w http.ResponseWriter, r *http.Request, session *models.Session) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || r.ParseForm() != nil {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}
	expense := &models.Expense{
		ID:       id,
		UserID:   session.UserID,
		Title:    r.PostFormValue("title"),
		Amount:   parseAmount(r.PostFormValue("amount")),
		Category: r.PostFormValue("category"),
		SpentAt:  parseDate(r.PostFormValue("date")),
	}
	if err := s.expenses.Update(r.Context(), expense); err != nil {
		s.serverError(w, "edit expense failed", err)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

// parseAmount coerces form input to a decimal. Unparseable input becomes
// zero rather than an error; the ledger accepts whatever the form sent.
func parseAmount(input string) decimal.Decimal {
	amount, err := decimal.NewFromString(strings.TrimSpace(input))
	if err != nil {
		return decimal.Zero
	}
	return amount
}

// parseDate reads a yyyy-mm-dd form value, defaulting to now.
func parseDate(input string) time.Time {
	if input == "" {
		return time.Now()
	}
	date, err := time.Parse("2006-01-02", input)
	if err != nil {
		return time.Now()
	}
	return date
}
