package core

import (
	"errors"
	"testing"
)

func TestExpenseValidate(t *testing.T) {
	good := Expense{Value: 12.5, Date: "2025-06-01", Category: "fixos", Description: "luz"}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name string
		e    Expense
		want error
	}{
		{"zero value", Expense{Value: 0, Date: "2025-06-01", Category: "fixos"}, ErrInvalidValue},
		{"negative value", Expense{Value: -3, Date: "2025-06-01", Category: "fixos"}, ErrInvalidValue},
		{"bad date", Expense{Value: 1, Date: "junho", Category: "fixos"}, ErrInvalidDate},
		{"no category", Expense{Value: 1, Date: "2025-06-01", Category: " "}, ErrEmptyCategory},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.e.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestExpenseMonth(t *testing.T) {
	if m := (Expense{Date: "2025-06-15"}).Month(); m != "2025-06" {
		t.Fatalf("month = %q, want 2025-06", m)
	}
	if m := (Expense{Date: "bad"}).Month(); m != "" {
		t.Fatalf("month = %q, want empty for malformed date", m)
	}
}

func TestExpensePatchApply(t *testing.T) {
	orig := Expense{ID: "e_1", ProfileID: "p_1", Value: 10, Date: "2025-06-01", Description: "a", Category: "fixos"}

	value := 20.0
	recurring := true
	patched := ExpensePatch{Value: &value, Recurring: &recurring}.Apply(orig)

	if patched.Value != 20 || !patched.Recurring {
		t.Fatalf("patch not applied: %+v", patched)
	}
	if patched.ID != "e_1" || patched.ProfileID != "p_1" || patched.Date != "2025-06-01" || patched.Category != "fixos" {
		t.Fatalf("untouched fields changed: %+v", patched)
	}
}
