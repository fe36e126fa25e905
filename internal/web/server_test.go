package web

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gitlab.com/kyawswar/ledger-chat/internal/auth"
	"gitlab.com/kyawswar/ledger-chat/internal/chat"
	"gitlab.com/kyawswar/ledger-chat/internal/database"
	"gitlab.com/kyawswar/ledger-chat/internal/repository"
)

func setupWebTest(t *testing.T) (*httptest.Server, *http.Client) {
	t.Helper()

	tx := database.TestTx(t)
	authSvc := auth.NewService(
		repository.NewUserRepository(tx),
		repository.NewSessionRepository(tx),
		time.Hour,
	)

	hub := chat.NewHub(context.Background(), repository.NewMessageRepository(tx), nil, nil)
	go hub.Run()
	t.Cleanup(hub.Stop)

	srv, err := NewServer(authSvc, repository.NewExpenseRepository(tx), hub, time.Hour, false)
	require.NoError(t, err)

	mux := http.NewServeMux()
	srv.Routes(mux)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return ts, &http.Client{Jar: jar}
}

func postForm(t *testing.T, client *http.Client, url string, form url.Values) *http.Response {
	t.Helper()
	resp, err := client.PostForm(url, form)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestRegisterLoginDashboardFlow(t *testing.T) {
	ts, client := setupWebTest(t)

	// Register redirects to the login page.
	resp := postForm(t, client, ts.URL+"/register", url.Values{
		"username": {"bob"},
		"email":    {"bob@example.com"},
		"password": {"hunter22"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "/login", resp.Request.URL.Path)

	// Login lands on the dashboard.
	resp = postForm(t, client, ts.URL+"/login", url.Values{
		"identifier": {"bob"},
		"password":   {"hunter22"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "/dashboard", resp.Request.URL.Path)
	require.Contains(t, readBody(t, resp), "Welcome, bob")

	// Adding an expense shows it on the dashboard with its aggregates.
	resp = postForm(t, client, ts.URL+"/expenses/add", url.Values{
		"title":    {"Coffee"},
		"amount":   {"4.5"},
		"category": {"Food"},
		"date":     {"2024-03-05"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := readBody(t, resp)
	require.Contains(t, body, "Coffee")
	require.Contains(t, body, "Food: 4.50")
	require.Contains(t, body, "2024-03: 4.50")
}

func TestRegisterConflictRerendersForm(t *testing.T) {
	ts, client := setupWebTest(t)

	form := url.Values{
		"username": {"carol"},
		"email":    {"carol@example.com"},
		"password": {"pw"},
	}
	postForm(t, client, ts.URL+"/register", form)

	resp := postForm(t, client, ts.URL+"/register", form)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "/register", resp.Request.URL.Path)
	require.Contains(t, readBody(t, resp), "Username already taken")
}

func TestLoginFailureIsGeneric(t *testing.T) {
	ts, client := setupWebTest(t)

	resp := postForm(t, client, ts.URL+"/login", url.Values{
		"identifier": {"ghost"},
		"password":   {"whatever"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, readBody(t, resp), "Invalid username or password")
}

func TestUnauthenticatedRedirectsToLogin(t *testing.T) {
	ts, client := setupWebTest(t)

	for _, path := range []string{"/dashboard", "/expenses/charts", "/chat"} {
		resp, err := client.Get(ts.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, "/login", resp.Request.URL.Path, "path %s", path)
	}
}

func TestLogoutEndsSession(t *testing.T) {
	ts, client := setupWebTest(t)

	postForm(t, client, ts.URL+"/register", url.Values{
		"username": {"dana"},
		"email":    {"dana@example.com"},
		"password": {"pw123"},
	})
	postForm(t, client, ts.URL+"/login", url.Values{
		"identifier": {"dana"},
		"password":   {"pw123"},
	})

	resp, err := client.Get(ts.URL + "/logout")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, "/login", resp.Request.URL.Path)

	resp, err = client.Get(ts.URL + "/dashboard")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, "/login", resp.Request.URL.Path)
}
