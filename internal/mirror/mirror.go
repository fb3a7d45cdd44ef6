// Package mirror emulates the remote budgeting API against the local
// store, so every operation keeps working without a network. Collections
// are partitioned per authenticated user; the key layout matches the
// exported backup format of earlier releases.
package mirror

import (
	"context"
	"fmt"
	"strings"

	"sardinha/internal/core"
	"sardinha/internal/localstore"
)

// Namespace scopes every mirror collection in the local store.
const Namespace = "org_financeiro"

type Mirror struct {
	store  *localstore.Store
	userID string
}

// New returns a mirror serving the collections owned by userID.
func New(store *localstore.Store, userID string) *Mirror {
	return &Mirror{store: store, userID: userID}
}

func (m *Mirror) profilesKey() string {
	return fmt.Sprintf("profiles_%s", m.userID)
}

func (m *Mirror) budgetsKey(profileID string) string {
	return fmt.Sprintf("budgets_%s_%s", m.userID, profileID)
}

func (m *Mirror) expensesKey(profileID string) string {
	return fmt.Sprintf("expenses_%s_%s", m.userID, profileID)
}

func (m *Mirror) ListProfiles(ctx context.Context) ([]core.Profile, error) {
	profiles := []core.Profile{}
	m.store.Get(ctx, Namespace, m.profilesKey(), &profiles)
	return profiles, nil
}

// CreateProfile appends a profile with a fresh identifier. Duplicate
// names are allowed here; callers guard before dispatching.
func (m *Mirror) CreateProfile(ctx context.Context, name string) (core.Profile, error) {
	if strings.TrimSpace(name) == "" {
		return core.Profile{}, core.ErrEmptyProfileName
	}
	profiles, _ := m.ListProfiles(ctx)
	profile := core.Profile{ID: NewID("p"), Name: name}
	profiles = append(profiles, profile)
	if err := m.store.Set(ctx, Namespace, m.profilesKey(), profiles); err != nil {
		return core.Profile{}, fmt.Errorf("save profiles: %w", err)
	}
	return profile, nil
}

// ProfileByName resolves a profile and its category allocation. Profiles
// without saved budgets fall back to the method's default allocation.
func (m *Mirror) ProfileByName(ctx context.Context, name string) (core.ProfileDetail, error) {
	profiles, _ := m.ListProfiles(ctx)
	for _, p := range profiles {
		if p.Name != name {
			continue
		}
		budgets, err := m.ListBudgets(ctx, p.ID)
		if err != nil {
			return core.ProfileDetail{}, err
		}
		detail := core.ProfileDetail{Profile: p, Categories: core.DefaultCategories()}
		if len(budgets) > 0 {
			detail.Categories = categoriesFromBudgets(budgets)
		}
		return detail, nil
	}
	return core.ProfileDetail{}, core.ErrProfileNotFound
}

func (m *Mirror) UpdateIncome(ctx context.Context, profileID string, income float64) (core.Profile, error) {
	profiles, _ := m.ListProfiles(ctx)
	for i := range profiles {
		if profiles[i].ID != profileID {
			continue
		}
		profiles[i].Income = &income
		if err := m.store.Set(ctx, Namespace, m.profilesKey(), profiles); err != nil {
			return core.Profile{}, fmt.Errorf("save profiles: %w", err)
		}
		return profiles[i], nil
	}
	return core.Profile{}, core.ErrProfileNotFound
}

func (m *Mirror) ListBudgets(ctx context.Context, profileID string) ([]core.Budget, error) {
	budgets := []core.Budget{}
	m.store.Get(ctx, Namespace, m.budgetsKey(profileID), &budgets)
	return budgets, nil
}

// SaveCategories replaces the profile's budget rows with a freshly
// generated set; prior row identifiers are discarded, not preserved.
func (m *Mirror) SaveCategories(ctx context.Context, profileID string, cats []core.Category) error {
	budgets := make([]core.Budget, 0, len(cats))
	for _, c := range cats {
		budgets = append(budgets, core.Budget{
			ID:        NewID("b"),
			ProfileID: profileID,
			Category:  c.Key,
			Label:     c.Label,
			Percent:   c.Percent,
		})
	}
	if err := m.store.Set(ctx, Namespace, m.budgetsKey(profileID), budgets); err != nil {
		return fmt.Errorf("save budgets: %w", err)
	}
	return nil
}

func (m *Mirror) ListExpenses(ctx context.Context, profileID string) ([]core.Expense, error) {
	expenses := []core.Expense{}
	m.store.Get(ctx, Namespace, m.expensesKey(profileID), &expenses)
	return expenses, nil
}

// MonthExpenses lists a named profile's expenses bucketed to one month.
func (m *Mirror) MonthExpenses(ctx context.Context, profileName, month string) ([]core.Expense, error) {
	detail, err := m.ProfileByName(ctx, profileName)
	if err != nil {
		return nil, err
	}
	all, err := m.ListExpenses(ctx, detail.ID)
	if err != nil {
		return nil, err
	}
	scoped := make([]core.Expense, 0, len(all))
	for _, e := range all {
		if e.Month() == month {
			scoped = append(scoped, e)
		}
	}
	return scoped, nil
}

func (m *Mirror) AddExpense(ctx context.Context, profileID string, e core.Expense) (core.Expense, error) {
	expenses, err := m.ListExpenses(ctx, profileID)
	if err != nil {
		return core.Expense{}, err
	}
	e.ID = NewID("e")
	e.ProfileID = profileID
	expenses = append(expenses, e)
	if err := m.store.Set(ctx, Namespace, m.expensesKey(profileID), expenses); err != nil {
		return core.Expense{}, fmt.Errorf("save expenses: %w", err)
	}
	return e, nil
}

// UpdateExpense patches an expense by identifier. Identifiers do not
// encode ownership, so every profile's collection is scanned.
func (m *Mirror) UpdateExpense(ctx context.Context, expenseID string, patch core.ExpensePatch) (core.Expense, error) {
	profiles, _ := m.ListProfiles(ctx)
	for _, p := range profiles {
		expenses, err := m.ListExpenses(ctx, p.ID)
		if err != nil {
			return core.Expense{}, err
		}
		for i := range expenses {
			if expenses[i].ID != expenseID {
				continue
			}
			expenses[i] = patch.Apply(expenses[i])
			if err := m.store.Set(ctx, Namespace, m.expensesKey(p.ID), expenses); err != nil {
				return core.Expense{}, fmt.Errorf("save expenses: %w", err)
			}
			return expenses[i], nil
		}
	}
	return core.Expense{}, core.ErrExpenseNotFound
}

func (m *Mirror) DeleteExpense(ctx context.Context, expenseID string) error {
	profiles, _ := m.ListProfiles(ctx)
	for _, p := range profiles {
		expenses, err := m.ListExpenses(ctx, p.ID)
		if err != nil {
			return err
		}
		for i := range expenses {
			if expenses[i].ID != expenseID {
				continue
			}
			expenses = append(expenses[:i], expenses[i+1:]...)
			if err := m.store.Set(ctx, Namespace, m.expensesKey(p.ID), expenses); err != nil {
				return fmt.Errorf("save expenses: %w", err)
			}
			return nil
		}
	}
	return core.ErrExpenseNotFound
}

func categoriesFromBudgets(budgets []core.Budget) []core.Category {
	cats := make([]core.Category, 0, len(budgets))
	for _, b := range budgets {
		label := b.Label
		if label == "" {
			// Rows written before labels were stored only carry the key.
			label = b.Category
		}
		cats = append(cats, core.Category{Key: b.Category, Label: label, Percent: b.Percent})
	}
	return cats
}
