package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"sardinha/internal/core"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	tokens := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "tok123"})
	client, err := NewClient(srv.URL, tokens, time.Second)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	if _, err := NewClient("  ", nil, 0); err == nil {
		t.Fatal("expected error for empty base URL")
	}
}

func TestBearerAndContentTypeAttached(t *testing.T) {
	var gotAuth, gotType string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		json.NewEncoder(w).Encode([]core.Profile{})
	})

	if _, err := client.ListProfiles(context.Background()); err != nil {
		t.Fatalf("list profiles: %v", err)
	}
	if gotAuth != "Bearer tok123" {
		t.Fatalf("Authorization = %q, want Bearer tok123", gotAuth)
	}
	if gotType != "application/json" {
		t.Fatalf("Content-Type = %q", gotType)
	}
}

func TestNonSuccessStatusIsTyped(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
	})

	_, err := client.ListProfiles(context.Background())
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d", statusErr.StatusCode)
	}
	if errors.Is(err, ErrUnauthorized) {
		t.Fatal("500 must not match ErrUnauthorized")
	}
}

func TestUnauthorizedMatchesSentinel(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.ListProfiles(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestNotFoundMatchesSentinel(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.ListProfiles(context.Background())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if errors.Is(err, ErrUnauthorized) {
		t.Fatal("404 must not match ErrUnauthorized")
	}
}

func TestTimeoutPropagates(t *testing.T) {
	blocked := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-blocked
	}))
	t.Cleanup(func() {
		close(blocked)
		srv.Close()
	})

	client, err := NewClient(srv.URL, nil, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.ListProfiles(context.Background()); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestAddExpensePostsToProfile(t *testing.T) {
	var gotPath string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method + " " + r.URL.Path
		var e core.Expense
		json.NewDecoder(r.Body).Decode(&e)
		e.ID = "e_remote"
		e.ProfileID = "p1"
		json.NewEncoder(w).Encode(e)
	})

	created, err := client.AddExpense(context.Background(), "p1", core.Expense{
		Value: 42, Date: "2025-06-01", Category: "fixos",
	})
	if err != nil {
		t.Fatalf("add expense: %v", err)
	}
	if gotPath != "POST /api/expenses/p1" {
		t.Fatalf("path = %q", gotPath)
	}
	if created.ID != "e_remote" || created.Value != 42 {
		t.Fatalf("unexpected created expense: %+v", created)
	}
}

func TestMonthExpensesQuery(t *testing.T) {
	var gotQuery string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		json.NewEncoder(w).Encode([]core.Expense{})
	})

	if _, err := client.MonthExpenses(context.Background(), "Pessoal", "2025-06"); err != nil {
		t.Fatalf("month expenses: %v", err)
	}
	if gotQuery != "month=2025-06&profile=Pessoal" {
		t.Fatalf("query = %q", gotQuery)
	}
}

func TestProfileByNameFallsBackToDefaults(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"id": "p1", "name": "Pessoal", "income": 5000})
	})

	detail, err := client.ProfileByName(context.Background(), "Pessoal")
	if err != nil {
		t.Fatalf("profile by name: %v", err)
	}
	if len(detail.Categories) != core.MinCategories {
		t.Fatalf("expected default categories, got %+v", detail.Categories)
	}
	if detail.Income == nil || *detail.Income != 5000 {
		t.Fatalf("income not decoded: %+v", detail.Profile)
	}
}
