// Package ledger holds the financial state machine: monthly rollover,
// expense posting, balance arithmetic and the invite lifecycle that turns a
// personal account into a shared one.
package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/brohem/BudgedBuddy/internal/core"
	applog "github.com/brohem/BudgedBuddy/internal/log"
	"github.com/brohem/BudgedBuddy/internal/store"
)

// Engine applies the budgeting invariants to a single account. All
// operations mutate the account in place; persistence is the caller's job.
type Engine struct {
	store store.AccountStore
	log   *applog.Logger
}

func NewEngine(st store.AccountStore, logger *applog.Logger) *Engine {
	return &Engine{store: st, log: logger.WithComponent(applog.ComponentLedger)}
}

// Ensure loads the account or seeds a fresh personal one for seedMember.
// A seeded account carries Version 0 and is materialized by the first Save.
// Existing accounts pick up seedMember only if absent.
func (e *Engine) Ensure(ctx context.Context, id, seedMember string, now time.Time) (*core.Account, error) {
	a, err := e.store.Load(ctx, id)
	if errors.Is(err, core.ErrNotFound) {
		e.log.InfoContext(ctx, "Seeding new personal account", applog.FieldAccountID, id)
		return core.NewAccount(id, seedMember, now), nil
	}
	if err != nil {
		return nil, err
	}
	a.AddMember(seedMember)
	return a, nil
}

// ApplyMonthlyRollover credits the top-up amount once per calendar month.
// Months are compared together with their year, so a January top-up does not
// suppress the following January. Reports whether a credit was applied.
func (e *Engine) ApplyMonthlyRollover(a *core.Account, today core.Date) bool {
	if !a.LastTopup.IsZero() && a.LastTopup.SameMonth(today) {
		return false
	}
	a.Balance = a.Balance.Add(a.Topup)
	a.LastTopup = today
	return true
}

// SetBudget sets allocation, top-up and balance to amount and stamps the
// top-up date, regardless of prior state.
func (e *Engine) SetBudget(a *core.Account, amount decimal.Decimal, today core.Date) error {
	if amount.IsNegative() {
		return core.ErrInvalidAmount
	}
	a.Allocation = amount
	a.Topup = amount
	a.Balance = amount
	a.LastTopup = today
	return nil
}

// SetTopup changes only the monthly top-up amount.
func (e *Engine) SetTopup(a *core.Account, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return core.ErrInvalidAmount
	}
	a.Topup = amount
	return nil
}

// PostExpense deducts a non-negative amount and appends the entry.
func (e *Engine) PostExpense(a *core.Account, amount decimal.Decimal, description string, today core.Date) error {
	if amount.IsNegative() {
		return core.ErrInvalidAmount
	}
	a.Balance = a.Balance.Sub(amount)
	a.Expenses = append(a.Expenses, core.Expense{
		Amount:      amount,
		Description: description,
		Date:        today,
	})
	return nil
}

// PostQuickExpense applies a signed quick entry. The amount is expected to
// be zero or negative; the stored expense keeps the absolute value.
func (e *Engine) PostQuickExpense(a *core.Account, signedAmount decimal.Decimal, description string, today core.Date) error {
	if signedAmount.IsPositive() {
		return core.ErrInvalidAmount
	}
	if description == "" {
		description = core.QuickEntryDescription
	}
	a.Balance = a.Balance.Add(signedAmount)
	a.Expenses = append(a.Expenses, core.Expense{
		Amount:      signedAmount.Abs(),
		Description: description,
		Date:        today,
	})
	return nil
}

// History returns expenses from the last sinceDays days, today inclusive,
// in chronological order.
func (e *Engine) History(a *core.Account, sinceDays int, today core.Date) ([]core.Expense, error) {
	if sinceDays < 0 {
		return nil, core.ErrInvalidArgument
	}
	return a.ExpensesSince(today.AddDays(-sinceDays)), nil
}

// Clear resets the account to its initial empty state with seedMember as
// the sole member.
func (e *Engine) Clear(a *core.Account, seedMember string) {
	a.Reset(seedMember)
}
