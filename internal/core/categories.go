package core

import (
	"errors"
	"fmt"
	"strings"
)

// MinCategories is the number of essential buckets of the Investidor
// Sardinha method; a category set may grow but never shrink below it.
const MinCategories = 6

// DefaultCategories is the method's standard allocation.
func DefaultCategories() []Category {
	return []Category{
		{Key: "fixos", Label: "Custos Fixos", Percent: 40},
		{Key: "conforto", Label: "Conforto", Percent: 20},
		{Key: "metas", Label: "Metas", Percent: 5},
		{Key: "prazeres", Label: "Prazeres", Percent: 5},
		{Key: "liberdade", Label: "Liberdade Financeira", Percent: 25},
		{Key: "conhecimento", Label: "Conhecimento", Percent: 5},
	}
}

// percentFloors holds the editorial minimums: prazer é inegociável, and
// liberdade/conhecimento should never be zeroed out.
var percentFloors = map[string]int{
	"prazeres":     5,
	"liberdade":    5,
	"conhecimento": 5,
}

// PercentFloor returns the minimum percent allowed for a category key.
func PercentFloor(key string) int {
	return percentFloors[key]
}

var (
	ErrPercentSum        = errors.New("category percents must sum to 100")
	ErrMinimumCategories = fmt.Errorf("at least %d categories are required", MinCategories)
	ErrDuplicateCategory = errors.New("category already exists")
	ErrCategoryNotFound  = errors.New("category not found")
	ErrCategoryAllocated = errors.New("category percent must be zero before removal")
)

// MinimumPercentError reports a category allocated below its floor.
type MinimumPercentError struct {
	Category Category
	Floor    int
}

func (e *MinimumPercentError) Error() string {
	return fmt.Sprintf("minimum percent for %s is %d%%", e.Category.Label, e.Floor)
}

// ValidateCategories checks a category set against the method's rules:
// percents sum to exactly 100, at least MinCategories buckets remain, and
// no bucket sits below its floor.
func ValidateCategories(cats []Category) error {
	if len(cats) < MinCategories {
		return ErrMinimumCategories
	}
	sum := 0
	for _, c := range cats {
		sum += c.Percent
	}
	if sum != 100 {
		return ErrPercentSum
	}
	for _, c := range cats {
		if floor := PercentFloor(c.Key); c.Percent < floor {
			return &MinimumPercentError{Category: c, Floor: floor}
		}
	}
	return nil
}

// CategoryKey derives a stable key from a display label: lowercased, with
// whitespace runs collapsed to a single underscore.
func CategoryKey(label string) string {
	return strings.Join(strings.Fields(strings.ToLower(label)), "_")
}

// AddCategory appends a new zero-percent category derived from label.
// Labels are unique per profile, compared case-insensitively.
func AddCategory(cats []Category, label string) ([]Category, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, ErrEmptyCategory
	}
	for _, c := range cats {
		if strings.EqualFold(c.Label, label) {
			return nil, ErrDuplicateCategory
		}
	}
	out := make([]Category, len(cats), len(cats)+1)
	copy(out, cats)
	return append(out, Category{Key: CategoryKey(label), Label: label, Percent: 0}), nil
}

// RemoveCategory drops the category with the given key. Only categories
// at zero percent may be removed, so allocated budget is never silently
// discarded.
func RemoveCategory(cats []Category, key string) ([]Category, error) {
	for i, c := range cats {
		if c.Key != key {
			continue
		}
		if c.Percent != 0 {
			return nil, ErrCategoryAllocated
		}
		out := make([]Category, 0, len(cats)-1)
		out = append(out, cats[:i]...)
		return append(out, cats[i+1:]...), nil
	}
	return nil, ErrCategoryNotFound
}
