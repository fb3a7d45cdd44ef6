// Package dispatcher is the single entry point for all data access. It
// routes each operation either to the remote API or to the offline
// mirror, failing over automatically when the network breaks and
// persisting the chosen mode across sessions.
package dispatcher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"sardinha/internal/amqp"
	"sardinha/internal/cache"
	"sardinha/internal/core"
	"sardinha/internal/localstore"
	"sardinha/internal/mirror"
	"sardinha/internal/remote"
)

// Service is the closed set of data operations the app performs, matched
// exhaustively by type rather than by route string. Both the remote
// client and the offline mirror implement it.
type Service interface {
	ListProfiles(ctx context.Context) ([]core.Profile, error)
	CreateProfile(ctx context.Context, name string) (core.Profile, error)
	ProfileByName(ctx context.Context, name string) (core.ProfileDetail, error)
	UpdateIncome(ctx context.Context, profileID string, income float64) (core.Profile, error)
	SaveCategories(ctx context.Context, profileID string, cats []core.Category) error
	ListBudgets(ctx context.Context, profileID string) ([]core.Budget, error)
	ListExpenses(ctx context.Context, profileID string) ([]core.Expense, error)
	MonthExpenses(ctx context.Context, profileName, month string) ([]core.Expense, error)
	AddExpense(ctx context.Context, profileID string, e core.Expense) (core.Expense, error)
	UpdateExpense(ctx context.Context, expenseID string, patch core.ExpensePatch) (core.Expense, error)
	DeleteExpense(ctx context.Context, expenseID string) error
}

// Publisher enqueues offline-recorded expense mutations for later replay.
type Publisher interface {
	PublishExpenseSync(ctx context.Context, msg *amqp.ExpenseSyncMessage) error
}

const offlineFlagKey = "offline_mode"

const (
	cacheSize = 16
	cacheTTL  = 30 * time.Second
)

type Dispatcher struct {
	remote Service
	mirror Service
	store  *localstore.Store
	userID string
	logger *slog.Logger

	publisher Publisher // optional

	profiles *cache.LRU[[]core.Profile]
	budgets  *cache.LRU[[]core.Budget]

	mu      sync.RWMutex
	offline bool
}

// New builds a dispatcher over the two backends. The persisted offline
// flag is restored from the store; publisher may be nil when no sync
// queue is configured.
func New(remoteSvc, mirrorSvc Service, store *localstore.Store, userID string, publisher Publisher, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dispatcher{
		remote:    remoteSvc,
		mirror:    mirrorSvc,
		store:     store,
		userID:    userID,
		logger:    logger,
		publisher: publisher,
		profiles:  cache.NewLRU[[]core.Profile](cacheSize, cacheTTL),
		budgets:   cache.NewLRU[[]core.Budget](cacheSize, cacheTTL),
	}
	store.Get(context.Background(), mirror.Namespace, offlineFlagKey, &d.offline)
	return d
}

// Offline reports the current mode.
func (d *Dispatcher) Offline() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.offline
}

// GoOffline switches to the offline mirror and persists the choice.
func (d *Dispatcher) GoOffline(ctx context.Context) error {
	return d.setOffline(ctx, true)
}

// GoOnline switches back to the network. Only an explicit call leaves
// offline mode; no automatic probing happens.
func (d *Dispatcher) GoOnline(ctx context.Context) error {
	return d.setOffline(ctx, false)
}

func (d *Dispatcher) setOffline(ctx context.Context, offline bool) error {
	d.mu.Lock()
	d.offline = offline
	d.mu.Unlock()
	d.invalidate()
	if err := d.store.Set(ctx, mirror.Namespace, offlineFlagKey, offline); err != nil {
		return err
	}
	d.logger.Info("Switched data mode", "offline", offline)
	return nil
}

// failover decides whether a failed remote call falls back to the
// mirror. Credential rejections never do: failing over would mask an
// auth problem as a connectivity problem.
func (d *Dispatcher) failover(ctx context.Context, op string, err error) bool {
	if errors.Is(err, remote.ErrUnauthorized) {
		return false
	}
	d.logger.Warn("Remote call failed, switching to offline mode", "operation", op, "error", err)
	if serr := d.setOffline(ctx, true); serr != nil {
		d.logger.Error("Failed to persist offline flag", "error", serr)
	}
	return true
}

func (d *Dispatcher) invalidate() {
	d.profiles.Purge()
	d.budgets.Purge()
}

func (d *Dispatcher) publishSync(ctx context.Context, op amqp.Operation, profileName string, e core.Expense) {
	if d.publisher == nil {
		return
	}
	msg := amqp.NewExpenseSyncMessage(op, d.userID, profileName, e)
	if err := d.publisher.PublishExpenseSync(ctx, msg); err != nil {
		d.logger.Warn("Failed to enqueue expense sync", "op", op, "error", err)
	}
}

// profileNameFor resolves the owning profile's name for sync messages;
// the remote side addresses profiles by name, not by mirror id.
func (d *Dispatcher) profileNameFor(ctx context.Context, profileID string) string {
	profiles, err := d.mirror.ListProfiles(ctx)
	if err != nil {
		return ""
	}
	for _, p := range profiles {
		if p.ID == profileID {
			return p.Name
		}
	}
	return ""
}

const profilesCacheKey = "profiles"

func (d *Dispatcher) ListProfiles(ctx context.Context) ([]core.Profile, error) {
	if !d.Offline() {
		if cached, ok := d.profiles.Get(profilesCacheKey); ok {
			return cached, nil
		}
		profiles, err := d.remote.ListProfiles(ctx)
		if err == nil {
			d.profiles.Set(profilesCacheKey, profiles)
			return profiles, nil
		}
		if !d.failover(ctx, "list_profiles", err) {
			return nil, err
		}
	}
	return d.mirror.ListProfiles(ctx)
}

func (d *Dispatcher) CreateProfile(ctx context.Context, name string) (core.Profile, error) {
	d.invalidate()
	if !d.Offline() {
		profile, err := d.remote.CreateProfile(ctx, name)
		if err == nil {
			return profile, nil
		}
		if !d.failover(ctx, "create_profile", err) {
			return core.Profile{}, err
		}
	}
	return d.mirror.CreateProfile(ctx, name)
}

func (d *Dispatcher) ProfileByName(ctx context.Context, name string) (core.ProfileDetail, error) {
	if !d.Offline() {
		detail, err := d.remote.ProfileByName(ctx, name)
		if err == nil {
			return detail, nil
		}
		if !d.failover(ctx, "profile_by_name", err) {
			return core.ProfileDetail{}, err
		}
	}
	return d.mirror.ProfileByName(ctx, name)
}

func (d *Dispatcher) UpdateIncome(ctx context.Context, profileID string, income float64) (core.Profile, error) {
	d.invalidate()
	if !d.Offline() {
		profile, err := d.remote.UpdateIncome(ctx, profileID, income)
		if err == nil {
			return profile, nil
		}
		if !d.failover(ctx, "update_income", err) {
			return core.Profile{}, err
		}
	}
	return d.mirror.UpdateIncome(ctx, profileID, income)
}

func (d *Dispatcher) SaveCategories(ctx context.Context, profileID string, cats []core.Category) error {
	d.invalidate()
	if !d.Offline() {
		err := d.remote.SaveCategories(ctx, profileID, cats)
		if err == nil {
			return nil
		}
		if !d.failover(ctx, "save_categories", err) {
			return err
		}
	}
	return d.mirror.SaveCategories(ctx, profileID, cats)
}

func (d *Dispatcher) ListBudgets(ctx context.Context, profileID string) ([]core.Budget, error) {
	if !d.Offline() {
		if cached, ok := d.budgets.Get(profileID); ok {
			return cached, nil
		}
		budgets, err := d.remote.ListBudgets(ctx, profileID)
		if err == nil {
			d.budgets.Set(profileID, budgets)
			return budgets, nil
		}
		if !d.failover(ctx, "list_budgets", err) {
			return nil, err
		}
	}
	return d.mirror.ListBudgets(ctx, profileID)
}

func (d *Dispatcher) ListExpenses(ctx context.Context, profileID string) ([]core.Expense, error) {
	if !d.Offline() {
		expenses, err := d.remote.ListExpenses(ctx, profileID)
		if err == nil {
			return expenses, nil
		}
		if !d.failover(ctx, "list_expenses", err) {
			return nil, err
		}
	}
	return d.mirror.ListExpenses(ctx, profileID)
}

func (d *Dispatcher) MonthExpenses(ctx context.Context, profileName, month string) ([]core.Expense, error) {
	if !d.Offline() {
		expenses, err := d.remote.MonthExpenses(ctx, profileName, month)
		if err == nil {
			return expenses, nil
		}
		if !d.failover(ctx, "month_expenses", err) {
			return nil, err
		}
	}
	return d.mirror.MonthExpenses(ctx, profileName, month)
}

func (d *Dispatcher) AddExpense(ctx context.Context, profileID string, e core.Expense) (core.Expense, error) {
	if !d.Offline() {
		created, err := d.remote.AddExpense(ctx, profileID, e)
		if err == nil {
			return created, nil
		}
		if !d.failover(ctx, "add_expense", err) {
			return core.Expense{}, err
		}
	}
	created, err := d.mirror.AddExpense(ctx, profileID, e)
	if err != nil {
		return core.Expense{}, err
	}
	d.publishSync(ctx, amqp.OpCreate, d.profileNameFor(ctx, profileID), created)
	return created, nil
}

func (d *Dispatcher) UpdateExpense(ctx context.Context, expenseID string, patch core.ExpensePatch) (core.Expense, error) {
	if !d.Offline() {
		updated, err := d.remote.UpdateExpense(ctx, expenseID, patch)
		if err == nil {
			return updated, nil
		}
		if !d.failover(ctx, "update_expense", err) {
			return core.Expense{}, err
		}
	}
	updated, err := d.mirror.UpdateExpense(ctx, expenseID, patch)
	if err != nil {
		return core.Expense{}, err
	}
	d.publishSync(ctx, amqp.OpUpdate, d.profileNameFor(ctx, updated.ProfileID), updated)
	return updated, nil
}

func (d *Dispatcher) DeleteExpense(ctx context.Context, expenseID string) error {
	if !d.Offline() {
		err := d.remote.DeleteExpense(ctx, expenseID)
		if err == nil {
			return nil
		}
		if !d.failover(ctx, "delete_expense", err) {
			return err
		}
	}
	if err := d.mirror.DeleteExpense(ctx, expenseID); err != nil {
		return err
	}
	d.publishSync(ctx, amqp.OpDelete, "", core.Expense{ID: expenseID})
	return nil
}
