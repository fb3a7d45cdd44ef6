package amqp

import (
	"testing"

	"sardinha/internal/core"
)

func TestExpenseSyncMessageRoundTrip(t *testing.T) {
	msg := NewExpenseSyncMessage(OpCreate, "uid1", "Pessoal", core.Expense{
		ID: "e_1", ProfileID: "p_1", Value: 12.5, Date: "2025-06-01", Category: "fixos",
	})

	raw, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := ExpenseSyncMessageFromJSON(raw)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Op != OpCreate || got.ProfileName != "Pessoal" || got.Expense.Value != 12.5 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestExpenseSyncMessageFromJSONRejectsGarbage(t *testing.T) {
	if _, err := ExpenseSyncMessageFromJSON([]byte("{nope")); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}
