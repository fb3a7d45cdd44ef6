package core

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidValue     = errors.New("invalid value")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidMonth     = errors.New("invalid month")
	ErrEmptyCategory    = errors.New("empty category")
	ErrEmptyProfileName = errors.New("empty profile name")
	ErrProfileNotFound  = errors.New("profile not found")
	ErrExpenseNotFound  = errors.New("expense not found")
)

type (
	// Profile is one budget owner. Income stays nil until onboarding
	// completes; profiles are never deleted in-session.
	Profile struct {
		ID     string   `json:"id"`
		Name   string   `json:"name"`
		Income *float64 `json:"income"`
	}

	// ProfileDetail is a profile together with its category allocation.
	ProfileDetail struct {
		Profile
		Categories []Category `json:"categories"`
	}

	// Category is one percentage-based budget bucket.
	Category struct {
		Key     string `json:"key"`
		Label   string `json:"label"`
		Percent int    `json:"percent"`
	}

	// Budget is a persisted (profile, category, percent) allocation row.
	// Label keeps the display name so the category set survives a save
	// and reload cycle intact.
	Budget struct {
		ID        string `json:"id"`
		ProfileID string `json:"profileId"`
		Category  string `json:"category"`
		Label     string `json:"label,omitempty"`
		Percent   int    `json:"percent"`
	}

	// Expense is a single recorded spend event. Date is a calendar day in
	// YYYY-MM-DD form; its YYYY-MM prefix buckets the expense into a month.
	Expense struct {
		ID          string  `json:"id"`
		ProfileID   string  `json:"profileId"`
		Value       float64 `json:"value"`
		Date        string  `json:"date"`
		Description string  `json:"description"`
		Category    string  `json:"category"`
		Recurring   bool    `json:"recurring"`
	}

	// ExpensePatch carries the mutable expense fields for an
	// update-by-identifier operation. Nil fields are left unchanged.
	ExpensePatch struct {
		Value       *float64 `json:"value,omitempty"`
		Date        *string  `json:"date,omitempty"`
		Description *string  `json:"description,omitempty"`
		Category    *string  `json:"category,omitempty"`
		Recurring   *bool    `json:"recurring,omitempty"`
	}
)

// Month returns the YYYY-MM bucket of the expense date, or "" when the
// date is too short to carry one.
func (e Expense) Month() string {
	if len(e.Date) < 7 {
		return ""
	}
	return e.Date[:7]
}

// ValidateMonth checks that s is a real YYYY-MM month.
func ValidateMonth(s string) error {
	if _, err := time.Parse("2006-01", s); err != nil {
		return ErrInvalidMonth
	}
	return nil
}

func (e Expense) Validate() error {
	if e.Value <= 0 {
		return ErrInvalidValue
	}
	if _, err := time.Parse("2006-01-02", e.Date); err != nil {
		return ErrInvalidDate
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

// Apply returns a copy of e with the non-nil patch fields replaced.
// Last write wins; expenses are never versioned.
func (p ExpensePatch) Apply(e Expense) Expense {
	if p.Value != nil {
		e.Value = *p.Value
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Category != nil {
		e.Category = *p.Category
	}
	if p.Recurring != nil {
		e.Recurring = *p.Recurring
	}
	return e
}
