package core

import (
	"errors"
	"testing"
)

func TestValidateCategoriesDefaults(t *testing.T) {
	if err := ValidateCategories(DefaultCategories()); err != nil {
		t.Fatalf("default allocation should validate, got %v", err)
	}
}

func TestValidateCategoriesPercentSum(t *testing.T) {
	cats := DefaultCategories()
	cats[0].Percent = 39
	if err := ValidateCategories(cats); !errors.Is(err, ErrPercentSum) {
		t.Fatalf("expected ErrPercentSum, got %v", err)
	}
}

func TestValidateCategoriesMinimumCount(t *testing.T) {
	cats := DefaultCategories()[:5]
	cats[0].Percent = 85 // re-balance to 100 so only the count fails
	if err := ValidateCategories(cats); !errors.Is(err, ErrMinimumCategories) {
		t.Fatalf("expected ErrMinimumCategories, got %v", err)
	}
}

func TestValidateCategoriesFloor(t *testing.T) {
	cats := DefaultCategories()
	// prazeres has a 5% floor; steal it into fixos keeping the sum at 100
	for i := range cats {
		switch cats[i].Key {
		case "prazeres":
			cats[i].Percent = 0
		case "fixos":
			cats[i].Percent = 45
		}
	}
	err := ValidateCategories(cats)
	var minErr *MinimumPercentError
	if !errors.As(err, &minErr) {
		t.Fatalf("expected MinimumPercentError, got %v", err)
	}
	if minErr.Category.Key != "prazeres" || minErr.Floor != 5 {
		t.Fatalf("unexpected floor violation: %+v", minErr)
	}
}

func TestCategoryKey(t *testing.T) {
	cases := []struct{ label, key string }{
		{"Delivery", "delivery"},
		{"Custos Fixos", "custos_fixos"},
		{"  Pet   Shop  ", "pet_shop"},
		{"Viagem\tAnual", "viagem_anual"},
	}
	for _, tc := range cases {
		if got := CategoryKey(tc.label); got != tc.key {
			t.Fatalf("CategoryKey(%q) = %q, want %q", tc.label, got, tc.key)
		}
	}
}

func TestAddCategory(t *testing.T) {
	cats, err := AddCategory(DefaultCategories(), "Pet Shop")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	last := cats[len(cats)-1]
	if last.Key != "pet_shop" || last.Label != "Pet Shop" || last.Percent != 0 {
		t.Fatalf("unexpected new category: %+v", last)
	}

	if _, err := AddCategory(cats, "pet shop"); !errors.Is(err, ErrDuplicateCategory) {
		t.Fatalf("expected ErrDuplicateCategory for case-insensitive duplicate, got %v", err)
	}
	if _, err := AddCategory(cats, "   "); !errors.Is(err, ErrEmptyCategory) {
		t.Fatalf("expected ErrEmptyCategory, got %v", err)
	}
}

func TestRemoveCategory(t *testing.T) {
	cats, err := AddCategory(DefaultCategories(), "Extra")
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	if _, err := RemoveCategory(cats, "fixos"); !errors.Is(err, ErrCategoryAllocated) {
		t.Fatalf("expected ErrCategoryAllocated for funded category, got %v", err)
	}
	if _, err := RemoveCategory(cats, "nope"); !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound, got %v", err)
	}

	trimmed, err := RemoveCategory(cats, "extra")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(trimmed) != len(DefaultCategories()) {
		t.Fatalf("expected %d categories, got %d", len(DefaultCategories()), len(trimmed))
	}
	for _, c := range trimmed {
		if c.Key == "extra" {
			t.Fatal("removed category still present")
		}
	}
}
