package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"sardinha/internal/core"
	"sardinha/internal/remote"
)

// stubService implements Service in memory, without failover semantics.
type stubService struct {
	profiles   []core.Profile
	categories map[string][]core.Category
	expenses   map[string][]core.Expense
	offline    bool
	err        error
	nextID     int
}

func newStubService() *stubService {
	return &stubService{
		categories: map[string][]core.Category{},
		expenses:   map[string][]core.Expense{},
	}
}

func (s *stubService) id(prefix string) string {
	s.nextID++
	return fmt.Sprintf("%s_%d", prefix, s.nextID)
}

func (s *stubService) ListProfiles(ctx context.Context) ([]core.Profile, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.profiles, nil
}

func (s *stubService) CreateProfile(ctx context.Context, name string) (core.Profile, error) {
	if s.err != nil {
		return core.Profile{}, s.err
	}
	p := core.Profile{ID: s.id("p"), Name: name}
	s.profiles = append(s.profiles, p)
	return p, nil
}

func (s *stubService) ProfileByName(ctx context.Context, name string) (core.ProfileDetail, error) {
	if s.err != nil {
		return core.ProfileDetail{}, s.err
	}
	for _, p := range s.profiles {
		if p.Name == name {
			cats := s.categories[p.ID]
			if len(cats) == 0 {
				cats = core.DefaultCategories()
			}
			return core.ProfileDetail{Profile: p, Categories: cats}, nil
		}
	}
	return core.ProfileDetail{}, core.ErrProfileNotFound
}

func (s *stubService) UpdateIncome(ctx context.Context, profileID string, income float64) (core.Profile, error) {
	for i := range s.profiles {
		if s.profiles[i].ID == profileID {
			s.profiles[i].Income = &income
			return s.profiles[i], nil
		}
	}
	return core.Profile{}, core.ErrProfileNotFound
}

func (s *stubService) SaveCategories(ctx context.Context, profileID string, cats []core.Category) error {
	s.categories[profileID] = cats
	return nil
}

func (s *stubService) ListBudgets(ctx context.Context, profileID string) ([]core.Budget, error) {
	budgets := []core.Budget{}
	for _, c := range s.categories[profileID] {
		budgets = append(budgets, core.Budget{ID: s.id("b"), ProfileID: profileID, Category: c.Key, Label: c.Label, Percent: c.Percent})
	}
	return budgets, nil
}

func (s *stubService) ListExpenses(ctx context.Context, profileID string) ([]core.Expense, error) {
	return s.expenses[profileID], nil
}

func (s *stubService) MonthExpenses(ctx context.Context, profileName, month string) ([]core.Expense, error) {
	detail, err := s.ProfileByName(ctx, profileName)
	if err != nil {
		return nil, err
	}
	out := []core.Expense{}
	for _, e := range s.expenses[detail.ID] {
		if e.Month() == month {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *stubService) AddExpense(ctx context.Context, profileID string, e core.Expense) (core.Expense, error) {
	e.ID = s.id("e")
	e.ProfileID = profileID
	s.expenses[profileID] = append(s.expenses[profileID], e)
	return e, nil
}

func (s *stubService) UpdateExpense(ctx context.Context, expenseID string, patch core.ExpensePatch) (core.Expense, error) {
	for profileID := range s.expenses {
		for i, e := range s.expenses[profileID] {
			if e.ID == expenseID {
				s.expenses[profileID][i] = patch.Apply(e)
				return s.expenses[profileID][i], nil
			}
		}
	}
	return core.Expense{}, core.ErrExpenseNotFound
}

func (s *stubService) DeleteExpense(ctx context.Context, expenseID string) error {
	for profileID := range s.expenses {
		for i, e := range s.expenses[profileID] {
			if e.ID == expenseID {
				s.expenses[profileID] = append(s.expenses[profileID][:i], s.expenses[profileID][i+1:]...)
				return nil
			}
		}
	}
	return core.ErrExpenseNotFound
}

func (s *stubService) Offline() bool { return s.offline }

func (s *stubService) GoOffline(ctx context.Context) error { s.offline = true; return nil }

func (s *stubService) GoOnline(ctx context.Context) error { s.offline = false; return nil }

func newTestServer(svc Service) *Server {
	return NewServer(":0", svc, nil)
}

func doRequest(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(newStubService())

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := doRequest(t, srv, http.MethodGet, path, "")
		if rec.Code != http.StatusOK {
			t.Errorf("%s = %d, want 200", path, rec.Code)
		}
	}
}

func TestSecurityHeadersApplied(t *testing.T) {
	srv := newTestServer(newStubService())

	rec := doRequest(t, srv, http.MethodGet, "/api/profiles", "")
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q", got)
	}
}

func TestCreateProfile(t *testing.T) {
	svc := newStubService()
	srv := newTestServer(svc)

	rec := doRequest(t, srv, http.MethodPost, "/api/profiles", `{"name":"Pessoal"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create = %d, body %s", rec.Code, rec.Body)
	}
	var created core.Profile
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Name != "Pessoal" || created.ID == "" {
		t.Fatalf("unexpected profile: %+v", created)
	}

	// Same name again, case-insensitively, is a conflict.
	rec = doRequest(t, srv, http.MethodPost, "/api/profiles", `{"name":"pessoal"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate = %d, want 409", rec.Code)
	}

	rec = doRequest(t, srv, http.MethodPost, "/api/profiles", `{"name":"  "}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("blank name = %d, want 422", rec.Code)
	}

	rec = doRequest(t, srv, http.MethodPost, "/api/profiles", `{nope`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed body = %d, want 400", rec.Code)
	}
}

func TestProfileByName(t *testing.T) {
	svc := newStubService()
	svc.profiles = []core.Profile{{ID: "p_1", Name: "Pessoal"}}
	srv := newTestServer(svc)

	rec := doRequest(t, srv, http.MethodGet, "/api/profiles/Pessoal", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get = %d", rec.Code)
	}
	var detail core.ProfileDetail
	if err := json.Unmarshal(rec.Body.Bytes(), &detail); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(detail.Categories) != core.MinCategories {
		t.Fatalf("expected default categories, got %d", len(detail.Categories))
	}

	rec = doRequest(t, srv, http.MethodGet, "/api/profiles/Outro", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing profile = %d, want 404", rec.Code)
	}
}

func TestUpdateIncome(t *testing.T) {
	svc := newStubService()
	svc.profiles = []core.Profile{{ID: "p_1", Name: "Pessoal"}}
	srv := newTestServer(svc)

	rec := doRequest(t, srv, http.MethodPut, "/api/profiles/p_1/income", `{"income":5000}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update = %d, body %s", rec.Code, rec.Body)
	}

	rec = doRequest(t, srv, http.MethodPut, "/api/profiles/p_1/income", `{"income":-1}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("negative income = %d, want 422", rec.Code)
	}

	rec = doRequest(t, srv, http.MethodPut, "/api/profiles/nope/income", `{"income":10}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing profile = %d, want 404", rec.Code)
	}
}

func TestSaveCategoriesValidation(t *testing.T) {
	svc := newStubService()
	svc.profiles = []core.Profile{{ID: "p_1", Name: "Pessoal"}}
	srv := newTestServer(svc)

	valid, _ := json.Marshal(map[string]any{"categories": core.DefaultCategories()})
	rec := doRequest(t, srv, http.MethodPut, "/api/profiles/p_1/categories", string(valid))
	if rec.Code != http.StatusOK {
		t.Fatalf("valid set = %d, body %s", rec.Code, rec.Body)
	}

	// Sum is 99, not 100.
	bad := core.DefaultCategories()
	bad[0].Percent--
	badBody, _ := json.Marshal(map[string]any{"categories": bad})
	rec = doRequest(t, srv, http.MethodPut, "/api/profiles/p_1/categories", string(badBody))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("bad sum = %d, want 422", rec.Code)
	}

	// Floor violation on prazeres keeps the sum at 100.
	floored := core.DefaultCategories()
	floored[3].Percent = 0
	floored[0].Percent += 5
	flooredBody, _ := json.Marshal(map[string]any{"categories": floored})
	rec = doRequest(t, srv, http.MethodPut, "/api/profiles/p_1/categories", string(flooredBody))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("floor violation = %d, want 422", rec.Code)
	}
}

func TestExpenseLifecycle(t *testing.T) {
	svc := newStubService()
	svc.profiles = []core.Profile{{ID: "p_1", Name: "Pessoal"}}
	srv := newTestServer(svc)

	rec := doRequest(t, srv, http.MethodPost, "/api/expenses/p_1",
		`{"value":50,"date":"2025-06-10","description":"mercado","category":"fixos"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create = %d, body %s", rec.Code, rec.Body)
	}
	var created core.Expense
	_ = json.Unmarshal(rec.Body.Bytes(), &created)

	rec = doRequest(t, srv, http.MethodPost, "/api/expenses/p_1",
		`{"value":0,"date":"2025-06-10","category":"fixos"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("zero value = %d, want 422", rec.Code)
	}

	rec = doRequest(t, srv, http.MethodPut, "/api/expenses/"+created.ID, `{"value":75}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update = %d, body %s", rec.Code, rec.Body)
	}
	var updated core.Expense
	_ = json.Unmarshal(rec.Body.Bytes(), &updated)
	if updated.Value != 75 || updated.Description != "mercado" {
		t.Fatalf("patch not applied: %+v", updated)
	}

	rec = doRequest(t, srv, http.MethodGet, "/api/expenses?profile=Pessoal&month=2025-06", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("month list = %d", rec.Code)
	}
	var listed []core.Expense
	_ = json.Unmarshal(rec.Body.Bytes(), &listed)
	if len(listed) != 1 {
		t.Fatalf("month list has %d entries, want 1", len(listed))
	}

	rec = doRequest(t, srv, http.MethodDelete, "/api/expenses/"+created.ID, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete = %d", rec.Code)
	}
	rec = doRequest(t, srv, http.MethodDelete, "/api/expenses/"+created.ID, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete = %d, want 404", rec.Code)
	}
}

// A month-less query would filter on the empty bucket and read as an
// empty dataset, so it is rejected rather than answered.
func TestMonthExpensesRequiresValidMonth(t *testing.T) {
	svc := newStubService()
	svc.profiles = []core.Profile{{ID: "p_1", Name: "Pessoal"}}
	svc.expenses["p_1"] = []core.Expense{
		{ID: "e_1", ProfileID: "p_1", Value: 50, Date: "2025-06-10", Category: "fixos"},
	}
	srv := newTestServer(svc)

	for _, path := range []string{
		"/api/expenses?profile=Pessoal",
		"/api/expenses?profile=Pessoal&month=junho",
		"/api/expenses?profile=Pessoal&month=2025-13",
	} {
		rec := doRequest(t, srv, http.MethodGet, path, "")
		if rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("%s = %d, want 422", path, rec.Code)
		}
	}

	rec := doRequest(t, srv, http.MethodGet, "/api/expenses?profile=Pessoal&month=2025-06", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("valid month = %d, body %s", rec.Code, rec.Body)
	}
}

func TestMonthReport(t *testing.T) {
	svc := newStubService()
	income := 5000.0
	svc.profiles = []core.Profile{{ID: "p_1", Name: "Pessoal", Income: &income}}
	svc.expenses["p_1"] = []core.Expense{
		{ID: "e_1", ProfileID: "p_1", Value: 2500, Date: "2025-06-05", Category: "fixos"},
	}
	srv := newTestServer(svc)

	rec := doRequest(t, srv, http.MethodGet, "/api/report?profile=Pessoal&month=2025-06", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("report = %d, body %s", rec.Code, rec.Body)
	}
	var report core.MonthReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.Income != 5000 || report.TotalSpent != 2500 {
		t.Fatalf("report totals: %+v", report)
	}
	for _, c := range report.Categories {
		if c.Key != "fixos" {
			continue
		}
		if c.Budget != 2000 || c.Balance != -500 || c.Status != core.StatusDanger {
			t.Fatalf("fixos row: %+v", c)
		}
	}

	rec = doRequest(t, srv, http.MethodGet, "/api/report?month=2025-06", "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("missing profile = %d, want 422", rec.Code)
	}
}

func TestOfflineToggle(t *testing.T) {
	svc := newStubService()
	srv := newTestServer(svc)

	rec := doRequest(t, srv, http.MethodGet, "/api/offline", "")
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != `{"offline":false}` {
		t.Fatalf("initial state: %d %s", rec.Code, rec.Body)
	}

	rec = doRequest(t, srv, http.MethodPut, "/api/offline", `{"offline":true}`)
	if rec.Code != http.StatusOK || !svc.offline {
		t.Fatalf("go offline: %d, svc.offline=%v", rec.Code, svc.offline)
	}

	rec = doRequest(t, srv, http.MethodPut, "/api/offline", `{"offline":false}`)
	if rec.Code != http.StatusOK || svc.offline {
		t.Fatalf("go online: %d, svc.offline=%v", rec.Code, svc.offline)
	}
}

func TestBackupRoundTripOverHTTP(t *testing.T) {
	svc := newStubService()
	income := 4200.0
	svc.profiles = []core.Profile{{ID: "p_1", Name: "Pessoal", Income: &income}}
	svc.expenses["p_1"] = []core.Expense{
		{ID: "e_1", ProfileID: "p_1", Value: 100, Date: "2025-06-01", Category: "fixos"},
	}
	srv := newTestServer(svc)

	rec := doRequest(t, srv, http.MethodGet, "/api/backup?current=Pessoal", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("export = %d, body %s", rec.Code, rec.Body)
	}

	restored := newStubService()
	srv2 := newTestServer(restored)
	rec2 := doRequest(t, srv2, http.MethodPost, "/api/backup", rec.Body.String())
	if rec2.Code != http.StatusNoContent {
		t.Fatalf("import = %d, body %s", rec2.Code, rec2.Body)
	}
	if len(restored.profiles) != 1 || restored.profiles[0].Name != "Pessoal" {
		t.Fatalf("profiles not restored: %+v", restored.profiles)
	}
	if len(restored.expenses[restored.profiles[0].ID]) != 1 {
		t.Fatalf("expenses not restored")
	}
}

func TestUpstreamStatusPassesThrough(t *testing.T) {
	svc := newStubService()
	svc.err = &remote.StatusError{StatusCode: http.StatusUnauthorized}
	srv := newTestServer(svc)

	rec := doRequest(t, srv, http.MethodGet, "/api/profiles", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 passthrough", rec.Code)
	}
	var envelope map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("error envelope not JSON: %v", err)
	}
	if envelope["error"] == "" {
		t.Fatal("error envelope missing message")
	}
}
