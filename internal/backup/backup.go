// Package backup serializes the whole dataset of one user into a single
// portable document and restores it again. Record identifiers are
// deliberately left out: a document imported into a fresh store gets new
// ids, and exporting it again yields the same document.
package backup

import (
	"context"
	"fmt"
	"sort"

	"sardinha/internal/core"
)

// Service is the slice of the data layer backup needs.
type Service interface {
	ListProfiles(ctx context.Context) ([]core.Profile, error)
	CreateProfile(ctx context.Context, name string) (core.Profile, error)
	ProfileByName(ctx context.Context, name string) (core.ProfileDetail, error)
	UpdateIncome(ctx context.Context, profileID string, income float64) (core.Profile, error)
	SaveCategories(ctx context.Context, profileID string, cats []core.Category) error
	ListExpenses(ctx context.Context, profileID string) ([]core.Expense, error)
	AddExpense(ctx context.Context, profileID string, e core.Expense) (core.Expense, error)
	DeleteExpense(ctx context.Context, expenseID string) error
}

// ExpenseEntry is one expense without its record id.
type ExpenseEntry struct {
	Value       float64 `json:"value"`
	Date        string  `json:"date"`
	Description string  `json:"description,omitempty"`
	Category    string  `json:"category"`
	Recurring   bool    `json:"recurring,omitempty"`
}

// ProfileState holds everything belonging to one profile.
type ProfileState struct {
	Income          *float64                  `json:"income,omitempty"`
	Categories      []core.Category           `json:"categories"`
	ExpensesByMonth map[string][]ExpenseEntry `json:"expensesByMonth"`
}

// Document is the backup format, keyed by profile name.
type Document struct {
	Profiles       []string                `json:"profiles"`
	CurrentProfile string                  `json:"currentProfile"`
	ProfileData    map[string]ProfileState `json:"profileData"`
}

// Export walks every profile and snapshots income, categories and
// expenses bucketed by month.
func Export(ctx context.Context, svc Service, currentProfile string) (Document, error) {
	profiles, err := svc.ListProfiles(ctx)
	if err != nil {
		return Document{}, fmt.Errorf("list profiles: %w", err)
	}

	doc := Document{
		CurrentProfile: currentProfile,
		ProfileData:    make(map[string]ProfileState, len(profiles)),
	}

	for _, p := range profiles {
		detail, err := svc.ProfileByName(ctx, p.Name)
		if err != nil {
			return Document{}, fmt.Errorf("load profile %q: %w", p.Name, err)
		}
		expenses, err := svc.ListExpenses(ctx, p.ID)
		if err != nil {
			return Document{}, fmt.Errorf("list expenses for %q: %w", p.Name, err)
		}

		state := ProfileState{
			Income:          detail.Income,
			Categories:      detail.Categories,
			ExpensesByMonth: map[string][]ExpenseEntry{},
		}
		for _, e := range expenses {
			month := e.Month()
			state.ExpensesByMonth[month] = append(state.ExpensesByMonth[month], ExpenseEntry{
				Value:       e.Value,
				Date:        e.Date,
				Description: e.Description,
				Category:    e.Category,
				Recurring:   e.Recurring,
			})
		}

		doc.Profiles = append(doc.Profiles, p.Name)
		doc.ProfileData[p.Name] = state
	}

	return doc, nil
}

// Import restores every profile in the document. A profile whose name
// already exists is reused and its expenses replaced by the document's,
// so importing the same document twice leaves a single copy of
// everything. Months are restored in sorted order so repeated imports
// produce the same expense ordering.
func Import(ctx context.Context, svc Service, doc Document) error {
	existing, err := svc.ListProfiles(ctx)
	if err != nil {
		return fmt.Errorf("list profiles: %w", err)
	}
	byName := make(map[string]core.Profile, len(existing))
	for _, p := range existing {
		if _, ok := byName[p.Name]; !ok {
			byName[p.Name] = p
		}
	}

	for _, name := range doc.Profiles {
		state, ok := doc.ProfileData[name]
		if !ok {
			return fmt.Errorf("document lists profile %q without data", name)
		}

		profile, found := byName[name]
		if found {
			old, err := svc.ListExpenses(ctx, profile.ID)
			if err != nil {
				return fmt.Errorf("list expenses for %q: %w", name, err)
			}
			for _, e := range old {
				if err := svc.DeleteExpense(ctx, e.ID); err != nil {
					return fmt.Errorf("clear expenses for %q: %w", name, err)
				}
			}
		} else {
			profile, err = svc.CreateProfile(ctx, name)
			if err != nil {
				return fmt.Errorf("create profile %q: %w", name, err)
			}
		}
		if state.Income != nil {
			if _, err := svc.UpdateIncome(ctx, profile.ID, *state.Income); err != nil {
				return fmt.Errorf("restore income for %q: %w", name, err)
			}
		}
		if len(state.Categories) > 0 {
			if err := svc.SaveCategories(ctx, profile.ID, state.Categories); err != nil {
				return fmt.Errorf("restore categories for %q: %w", name, err)
			}
		}

		months := make([]string, 0, len(state.ExpensesByMonth))
		for month := range state.ExpensesByMonth {
			months = append(months, month)
		}
		sort.Strings(months)

		for _, month := range months {
			for _, entry := range state.ExpensesByMonth[month] {
				e := core.Expense{
					Value:       entry.Value,
					Date:        entry.Date,
					Description: entry.Description,
					Category:    entry.Category,
					Recurring:   entry.Recurring,
				}
				if _, err := svc.AddExpense(ctx, profile.ID, e); err != nil {
					return fmt.Errorf("restore expense for %q: %w", name, err)
				}
			}
		}
	}
	return nil
}
