package web

import (
	"errors"
	"net/http"

	"gitlab.com/kyawswar/ledger-chat/internal/auth"
	"gitlab.com/kyawswar/ledger-chat/internal/models"
	"gitlab.com/kyawswar/ledger-chat/internal/repository"
)

type formViewModel struct {
	Error string
}

func (s *Server) registerForm(w http.ResponseWriter, _ *http.Request) {
	s.render(w, "register.html", formViewModel{})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.render(w, "register.html", formViewModel{Error: "Invalid form submission"})
		return
	}

	_, err := s.auth.Register(r.Context(),
		r.PostFormValue("username"),
		r.PostFormValue("email"),
		r.PostFormValue("password"))
	switch {
	case err == nil:
		http.Redirect(w, r, "/login", http.StatusFound)
	case errors.Is(err, auth.ErrMissingFields):
		s.render(w, "register.html", formViewModel{Error: "All fields are required"})
	case errors.Is(err, repository.ErrUsernameTaken):
		s.render(w, "register.html", formViewModel{Error: "Username already taken"})
	case errors.Is(err, repository.ErrEmailTaken):
		s.render(w, "register.html", formViewModel{Error: "Email already registered"})
	default:
		s.serverError(w, "registration failed", err)
	}
}

func (s *Server) loginForm(w http.ResponseWriter, r *http.Request) {
	// Already logged in? Straight to the dashboard.
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		if _, err := s.auth.SessionByToken(r.Context(), cookie.Value); err == nil {
			http.Redirect(w, r, "/dashboard", http.StatusFound)
			return
		}
	}
	s.render(w, "login.html", formViewModel{})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.render(w, "login.html", formViewModel{Error: "Invalid form submission"})
		return
	}

	session, err := s.auth.Login(r.Context(),
		r.PostFormValue("identifier"),
		r.PostFormValue("password"))
	switch {
	case err == nil:
		s.setSessionCookie(w, session.Token)
		http.Redirect(w, r, "/dashboard", http.StatusFound)
	case errors.Is(err, auth.ErrInvalidCredentials):
		s.render(w, "login.html", formViewModel{Error: "Invalid username or password"})
	default:
		s.serverError(w, "login failed", err)
	}
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request, session *models.Session) {
	if err := s.auth.Logout(r.Context(), session.Token); err != nil {
		s.serverError(w, "logout failed", err)
		return
	}
	s.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (s *Server) chatPage(w http.ResponseWriter, _ *http.Request, session *models.Session) {
	s.render(w, "chat.html", struct{ Username string }{Username: session.Username})
}

func (s *Server) websocket(w http.ResponseWriter, r *http.Request, session *models.Session) {
	s.hub.ServeWS(w, r, session.Username)
}
