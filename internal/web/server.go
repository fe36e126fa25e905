// Package web provides the HTTP surface: auth pages, the expense
// dashboard and the chat page.
package web

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"time"

	"gitlab.com/kyawswar/ledger-chat/internal/auth"
	"gitlab.com/kyawswar/ledger-chat/internal/chat"
	"gitlab.com/kyawswar/ledger-chat/internal/logger"
	"gitlab.com/kyawswar/ledger-chat/internal/models"
	"gitlab.com/kyawswar/ledger-chat/internal/repository"
)

//go:embed templates/*.html
var templateFS embed.FS

// SessionCookieName is the name of the session cookie.
const SessionCookieName = "session"

// Server holds dependencies for the HTTP handlers.
type Server struct {
	auth         *auth.Service
	expenses     *repository.ExpenseRepository
	hub          *chat.Hub
	tmpl         *template.Template
	sessionTTL   time.Duration
	cookieSecure bool
}

// NewServer creates a Server with parsed templates.
func NewServer(authSvc *auth.Service, expenses *repository.ExpenseRepository, hub *chat.Hub, sessionTTL time.Duration, cookieSecure bool) (*Server, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Server{
		auth:         authSvc,
		expenses:     expenses,
		hub:          hub,
		tmpl:         tmpl,
		sessionTTL:   sessionTTL,
		cookieSecure: cookieSecure,
	}, nil
}

// Routes registers all handlers on the mux.
func (s *Server) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/login", http.StatusFound)
	})
	mux.HandleFunc("GET /register", s.registerForm)
	mux.HandleFunc("POST /register", s.register)
	mux.HandleFunc("GET /login", s.loginForm)
	mux.HandleFunc("POST /login", s.login)
	mux.HandleFunc("GET /logout", s.requireAuth(s.logout))
	mux.HandleFunc("GET /dashboard", s.requireAuth(s.dashboard))
	mux.HandleFunc("POST /expenses/add", s.requireAuth(s.addExpense))
	mux.HandleFunc("GET /expenses/delete/{id}", s.requireAuth(s.deleteExpense))
	mux.HandleFunc("GET /expenses/edit/{id}", s.requireAuth(s.editExpenseForm))
	mux.HandleFunc("POST /expenses/edit/{id}", s.requireAuth(s.editExpense))
	mux.HandleFunc("GET /expenses/charts", s.requireAuth(s.charts))
	mux.HandleFunc("GET /expenses/chart.png", s.requireAuth(s.chartPNG))
	mux.HandleFunc("GET /chat", s.requireAuth(s.chatPage))
	mux.HandleFunc("GET /ws", s.requireAuth(s.websocket))
}

// requireAuth gates a handler behind a valid session. Unauthenticated
// requests are redirected to the login page, never errored.
func (s *Server) requireAuth(next func(http.ResponseWriter, *http.Request, *models.Session)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil || cookie.Value == "" {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		session, err := s.auth.SessionByToken(r.Context(), cookie.Value)
		if err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				logger.Log.Error().Err(err).Msg("session lookup failed")
			}
			s.clearSessionCookie(w)
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next(w, r, session)
	}
}

func (s *Server) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.sessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		logger.Log.Error().Err(err).Str("template", name).Msg("template render failed")
	}
}

func (s *Server) serverError(w http.ResponseWriter, context string, err error) {
	logger.Log.Error().Err(err).Msg(context)
	http.Error(w, "Server error. Try again later.", http.StatusInternalServerError)
}

// Logging wraps a handler with request logging.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
