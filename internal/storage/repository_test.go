package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brohem/BudgedBuddy/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err, "failed to open test database")
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSaveAndLoadAccount(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	a := core.NewAccount("+15551000000", "+15551000000", time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC))
	a.Allocation = decimal.RequireFromString("1000")
	a.Balance = decimal.RequireFromString("950.50")
	a.Topup = decimal.RequireFromString("1000")
	a.LastTopup = core.NewDate(2025, 4, 1)
	a.AddMember("+15552000000")
	a.AddInvite("+15553000000")
	a.Expenses = append(a.Expenses,
		core.Expense{Amount: decimal.RequireFromString("49.50"), Description: "groceries", Date: core.NewDate(2025, 4, 2)},
		core.Expense{Amount: decimal.RequireFromString("12"), Description: "coffee", Date: core.NewDate(2025, 4, 3)},
	)

	require.NoError(t, repo.Save(ctx, a))
	assert.Equal(t, int64(1), a.Version)

	got, err := repo.Load(ctx, a.ID)
	require.NoError(t, err)

	assert.Equal(t, []string{"+15551000000", "+15552000000"}, got.Members)
	assert.Equal(t, []string{"+15553000000"}, got.PendingInvites)
	assert.True(t, got.Allocation.Equal(a.Allocation), "allocation mismatch: %s", got.Allocation)
	assert.True(t, got.Balance.Equal(a.Balance), "balance mismatch: %s", got.Balance)
	assert.Equal(t, "2025-04-01", got.LastTopup.String())
	assert.Equal(t, int64(1), got.Version)
	require.Len(t, got.Expenses, 2)
	assert.Equal(t, "groceries", got.Expenses[0].Description)
	assert.Equal(t, "2025-04-03", got.Expenses[1].Date.String())
}

func TestLoadMissingAccount(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.Load(context.Background(), "+nope")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestSaveNilLastTopup(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	a := core.NewAccount("+15551000000", "+15551000000", time.Now())
	require.NoError(t, repo.Save(ctx, a))

	got, err := repo.Load(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, got.LastTopup.IsZero(), "last topup should stay unset")
}

func TestSaveVersionConflict(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	a := core.NewAccount("+15551000000", "+15551000000", time.Now())
	require.NoError(t, repo.Save(ctx, a))

	first, err := repo.Load(ctx, a.ID)
	require.NoError(t, err)
	second, err := repo.Load(ctx, a.ID)
	require.NoError(t, err)

	first.Balance = decimal.RequireFromString("-10")
	require.NoError(t, repo.Save(ctx, first))
	assert.Equal(t, int64(2), first.Version)

	second.Balance = decimal.RequireFromString("20")
	assert.ErrorIs(t, repo.Save(ctx, second), core.ErrConflict)
}

func TestSaveUpdateMissingAccount(t *testing.T) {
	repo := newTestRepo(t)

	a := core.NewAccount("+15551000000", "+15551000000", time.Now())
	a.Version = 4 // pretends to be a stored account
	assert.ErrorIs(t, repo.Save(context.Background(), a), core.ErrNotFound)
}

func TestMembershipIndex(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	a := core.NewAccount("+15551000000", "+15551000000", time.Now())
	a.AddMember("+15552000000")
	require.NoError(t, repo.Save(ctx, a))

	id, err := repo.FindAccountByMember(ctx, "+15552000000")
	require.NoError(t, err)
	assert.Equal(t, a.ID, id)

	_, err = repo.FindAccountByMember(ctx, "+15559999999")
	assert.ErrorIs(t, err, core.ErrNotFound)

	// Dropping the member must drop the index row in the same write.
	loaded, err := repo.Load(ctx, a.ID)
	require.NoError(t, err)
	loaded.RemoveMember("+15552000000")
	require.NoError(t, repo.Save(ctx, loaded))

	_, err = repo.FindAccountByMember(ctx, "+15552000000")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestDualMembershipRejected(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := core.NewAccount("+15551000000", "+15551000000", time.Now())
	require.NoError(t, repo.Save(ctx, first))

	second := core.NewAccount("+15552000000", "+15552000000", time.Now())
	require.NoError(t, repo.Save(ctx, second))

	loaded, err := repo.Load(ctx, second.ID)
	require.NoError(t, err)
	loaded.AddMember("+15551000000") // already a member of first
	assert.ErrorIs(t, repo.Save(ctx, loaded), core.ErrConflict)
}

func TestFindAccountByInviteCreationOrder(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	older := core.NewAccount("+15551000000", "+15551000000", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	older.AddInvite("+15553000000")
	require.NoError(t, repo.Save(ctx, older))

	newer := core.NewAccount("+15552000000", "+15552000000", time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))
	newer.AddInvite("+15553000000")
	require.NoError(t, repo.Save(ctx, newer))

	got, err := repo.FindAccountByInvite(ctx, "+15553000000")
	require.NoError(t, err)
	assert.Equal(t, older.ID, got.ID)

	_, err = repo.FindAccountByInvite(ctx, "+15554000000")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestDeleteAccount(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	a := core.NewAccount("+15551000000", "+15551000000", time.Now())
	a.AddInvite("+15553000000")
	a.Expenses = append(a.Expenses, core.Expense{
		Amount: decimal.RequireFromString("5"), Description: "snack", Date: core.NewDate(2025, 4, 1),
	})
	require.NoError(t, repo.Save(ctx, a))

	require.NoError(t, repo.Delete(ctx, a.ID))

	_, err := repo.Load(ctx, a.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
	_, err = repo.FindAccountByMember(ctx, "+15551000000")
	assert.ErrorIs(t, err, core.ErrNotFound)
	_, err = repo.FindAccountByInvite(ctx, "+15553000000")
	assert.ErrorIs(t, err, core.ErrNotFound)

	assert.NoError(t, repo.Delete(ctx, a.ID), "deleting a missing account is a no-op")
}

func TestExpensesFullReplace(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	a := core.NewAccount("+15551000000", "+15551000000", time.Now())
	a.Expenses = append(a.Expenses, core.Expense{
		Amount: decimal.RequireFromString("5"), Description: "one", Date: core.NewDate(2025, 4, 1),
	})
	require.NoError(t, repo.Save(ctx, a))

	loaded, err := repo.Load(ctx, a.ID)
	require.NoError(t, err)
	loaded.Reset(loaded.Members[0])
	require.NoError(t, repo.Save(ctx, loaded))

	got, err := repo.Load(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Expenses, "clear must wipe persisted expenses")
}
