// Package remote is the HTTP client for the hosted budgeting API. Every
// call attaches a fresh bearer credential and runs under a bounded
// timeout; non-success statuses surface as typed errors.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"sardinha/internal/core"
)

// DefaultTimeout bounds a single remote call when no override is given.
const DefaultTimeout = 10 * time.Second

// ErrUnauthorized marks a rejected credential. Callers must never treat
// it as a connectivity problem.
var ErrUnauthorized = errors.New("unauthorized")

// ErrNotFound marks a resource the remote does not know.
var ErrNotFound = errors.New("not found")

// StatusError is a non-success HTTP response from the remote API.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("remote API returned %d: %s", e.StatusCode, e.Body)
}

func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     oauth2.TokenSource
	timeout    time.Duration
}

// NewClient builds a client for the API at baseURL. tokens may be nil for
// unauthenticated use; timeout <= 0 falls back to DefaultTimeout.
func NewClient(baseURL string, tokens oauth2.TokenSource, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("remote API base URL is required")
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		tokens:     tokens,
		timeout:    timeout,
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.tokens != nil {
		tok, err := c.tokens.Token()
		if err != nil {
			return fmt.Errorf("fetch credential: %w", err)
		}
		tok.SetAuthHeader(req)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) ListProfiles(ctx context.Context) ([]core.Profile, error) {
	var profiles []core.Profile
	if err := c.do(ctx, http.MethodGet, "/api/profiles", nil, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

func (c *Client) CreateProfile(ctx context.Context, name string) (core.Profile, error) {
	var profile core.Profile
	payload := map[string]string{"name": name}
	if err := c.do(ctx, http.MethodPost, "/api/profiles", payload, &profile); err != nil {
		return core.Profile{}, err
	}
	return profile, nil
}

func (c *Client) ProfileByName(ctx context.Context, name string) (core.ProfileDetail, error) {
	var detail core.ProfileDetail
	if err := c.do(ctx, http.MethodGet, "/api/profiles/"+url.PathEscape(name), nil, &detail); err != nil {
		return core.ProfileDetail{}, err
	}
	if len(detail.Categories) == 0 {
		detail.Categories = core.DefaultCategories()
	}
	return detail, nil
}

func (c *Client) UpdateIncome(ctx context.Context, profileID string, income float64) (core.Profile, error) {
	var profile core.Profile
	payload := map[string]float64{"income": income}
	path := fmt.Sprintf("/api/profiles/%s/income", url.PathEscape(profileID))
	if err := c.do(ctx, http.MethodPut, path, payload, &profile); err != nil {
		return core.Profile{}, err
	}
	if profile.ID == "" {
		// some deployments answer with an empty body on update
		profile = core.Profile{ID: profileID, Income: &income}
	}
	return profile, nil
}

func (c *Client) SaveCategories(ctx context.Context, profileID string, cats []core.Category) error {
	payload := map[string]any{"categories": cats}
	path := fmt.Sprintf("/api/profiles/%s/categories", url.PathEscape(profileID))
	return c.do(ctx, http.MethodPut, path, payload, nil)
}

func (c *Client) ListBudgets(ctx context.Context, profileID string) ([]core.Budget, error) {
	var budgets []core.Budget
	if err := c.do(ctx, http.MethodGet, "/api/budgets/"+url.PathEscape(profileID), nil, &budgets); err != nil {
		return nil, err
	}
	return budgets, nil
}

func (c *Client) ListExpenses(ctx context.Context, profileID string) ([]core.Expense, error) {
	var expenses []core.Expense
	if err := c.do(ctx, http.MethodGet, "/api/expenses/"+url.PathEscape(profileID), nil, &expenses); err != nil {
		return nil, err
	}
	return expenses, nil
}

func (c *Client) MonthExpenses(ctx context.Context, profileName, month string) ([]core.Expense, error) {
	q := url.Values{"profile": {profileName}, "month": {month}}
	var expenses []core.Expense
	if err := c.do(ctx, http.MethodGet, "/api/expenses?"+q.Encode(), nil, &expenses); err != nil {
		return nil, err
	}
	return expenses, nil
}

func (c *Client) AddExpense(ctx context.Context, profileID string, e core.Expense) (core.Expense, error) {
	var created core.Expense
	path := "/api/expenses/" + url.PathEscape(profileID)
	if err := c.do(ctx, http.MethodPost, path, e, &created); err != nil {
		return core.Expense{}, err
	}
	return created, nil
}

func (c *Client) UpdateExpense(ctx context.Context, expenseID string, patch core.ExpensePatch) (core.Expense, error) {
	var updated core.Expense
	path := "/api/expenses/" + url.PathEscape(expenseID)
	if err := c.do(ctx, http.MethodPut, path, patch, &updated); err != nil {
		return core.Expense{}, err
	}
	return updated, nil
}

func (c *Client) DeleteExpense(ctx context.Context, expenseID string) error {
	return c.do(ctx, http.MethodDelete, "/api/expenses/"+url.PathEscape(expenseID), nil, nil)
}
