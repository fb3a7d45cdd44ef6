// Package worker replays expense mutations recorded while offline
// against the remote API.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"sardinha/internal/amqp"
	"sardinha/internal/core"
	"sardinha/internal/remote"
)

// RemoteAPI is the slice of the remote client the worker needs.
type RemoteAPI interface {
	ProfileByName(ctx context.Context, name string) (core.ProfileDetail, error)
	AddExpense(ctx context.Context, profileID string, e core.Expense) (core.Expense, error)
	UpdateExpense(ctx context.Context, expenseID string, patch core.ExpensePatch) (core.Expense, error)
	DeleteExpense(ctx context.Context, expenseID string) error
}

type SyncWorker struct {
	remote RemoteAPI
	logger *slog.Logger
}

func NewSyncWorker(remote RemoteAPI, logger *slog.Logger) *SyncWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &SyncWorker{remote: remote, logger: logger}
}

// Handle replays one queued mutation. Returning an error requeues the
// message, so only transient failures should propagate; a message for an
// expense the remote no longer knows is treated as already applied.
func (w *SyncWorker) Handle(ctx context.Context, msg *amqp.ExpenseSyncMessage) error {
	w.logger.Info("Replaying expense mutation",
		"op", msg.Op,
		"profile", msg.ProfileName,
		"expense_id", msg.Expense.ID)

	switch msg.Op {
	case amqp.OpCreate:
		return w.replayCreate(ctx, msg)
	case amqp.OpUpdate:
		return w.replayUpdate(ctx, msg)
	case amqp.OpDelete:
		return w.replayDelete(ctx, msg)
	default:
		w.logger.Error("Dropping sync message with unknown operation", "op", msg.Op)
		return nil
	}
}

func (w *SyncWorker) replayCreate(ctx context.Context, msg *amqp.ExpenseSyncMessage) error {
	detail, err := w.remote.ProfileByName(ctx, msg.ProfileName)
	if err != nil {
		return fmt.Errorf("resolve profile %q: %w", msg.ProfileName, err)
	}

	// The mirror id means nothing to the remote side; let it assign one.
	e := msg.Expense
	e.ID = ""
	created, err := w.remote.AddExpense(ctx, detail.ID, e)
	if err != nil {
		return fmt.Errorf("replay create: %w", err)
	}

	w.logger.Info("Replayed expense creation",
		"profile", msg.ProfileName,
		"remote_id", created.ID)
	return nil
}

func (w *SyncWorker) replayUpdate(ctx context.Context, msg *amqp.ExpenseSyncMessage) error {
	e := msg.Expense
	patch := core.ExpensePatch{
		Value:       &e.Value,
		Date:        &e.Date,
		Description: &e.Description,
		Category:    &e.Category,
		Recurring:   &e.Recurring,
	}
	if _, err := w.remote.UpdateExpense(ctx, e.ID, patch); err != nil {
		if errors.Is(err, remote.ErrNotFound) {
			w.logger.Info("Skipping update for expense unknown to the remote", "expense_id", e.ID)
			return nil
		}
		return fmt.Errorf("replay update %s: %w", e.ID, err)
	}
	return nil
}

func (w *SyncWorker) replayDelete(ctx context.Context, msg *amqp.ExpenseSyncMessage) error {
	if err := w.remote.DeleteExpense(ctx, msg.Expense.ID); err != nil {
		if errors.Is(err, remote.ErrNotFound) {
			w.logger.Info("Skipping delete for expense unknown to the remote", "expense_id", msg.Expense.ID)
			return nil
		}
		return fmt.Errorf("replay delete %s: %w", msg.Expense.ID, err)
	}
	return nil
}
