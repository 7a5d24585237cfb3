package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/brohem/BudgedBuddy/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository is the durable AccountStore. Every Save is a single
// transaction replacing the full account document and its index rows, with
// an optimistic version check against concurrent writers.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Load(ctx context.Context, id string) (*core.Account, error) {
	var (
		a          = core.Account{ID: id}
		allocation string
		balance    string
		topup      string
		lastTopup  sql.NullString
		createdAt  string
	)
	row := r.db.QueryRowContext(ctx,
		`SELECT allocation, balance, topup, last_topup, version, created_at FROM accounts WHERE id = ?`, id)
	if err := row.Scan(&allocation, &balance, &topup, &lastTopup, &a.Version, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("load account %s: %w", id, err)
	}

	var err error
	if a.Allocation, err = decimal.NewFromString(allocation); err != nil {
		return nil, fmt.Errorf("decode allocation for %s: %w", id, err)
	}
	if a.Balance, err = decimal.NewFromString(balance); err != nil {
		return nil, fmt.Errorf("decode balance for %s: %w", id, err)
	}
	if a.Topup, err = decimal.NewFromString(topup); err != nil {
		return nil, fmt.Errorf("decode topup for %s: %w", id, err)
	}
	if lastTopup.Valid {
		if a.LastTopup, err = core.ParseDate(lastTopup.String); err != nil {
			return nil, fmt.Errorf("decode last_topup for %s: %w", id, err)
		}
	}
	if a.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("decode created_at for %s: %w", id, err)
	}

	if a.Members, err = r.stringList(ctx,
		`SELECT identity FROM members WHERE account_id = ? ORDER BY position`, id); err != nil {
		return nil, fmt.Errorf("load members for %s: %w", id, err)
	}
	if a.PendingInvites, err = r.stringList(ctx,
		`SELECT identity FROM invites WHERE account_id = ? ORDER BY position`, id); err != nil {
		return nil, fmt.Errorf("load invites for %s: %w", id, err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT amount, description, entry_date FROM expenses WHERE account_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("load expenses for %s: %w", id, err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			amount string
			e      core.Expense
			day    string
		)
		if err := rows.Scan(&amount, &e.Description, &day); err != nil {
			return nil, fmt.Errorf("scan expense for %s: %w", id, err)
		}
		if e.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("decode expense amount for %s: %w", id, err)
		}
		if e.Date, err = core.ParseDate(day); err != nil {
			return nil, fmt.Errorf("decode expense date for %s: %w", id, err)
		}
		a.Expenses = append(a.Expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses for %s: %w", id, err)
	}

	return &a, nil
}

func (r *SQLiteRepository) Save(ctx context.Context, a *core.Account) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	var lastTopup any
	if !a.LastTopup.IsZero() {
		lastTopup = a.LastTopup.String()
	}

	newVersion := a.Version + 1
	if a.Version == 0 {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO accounts (id, allocation, balance, topup, last_topup, version, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			a.ID, a.Allocation.String(), a.Balance.String(), a.Topup.String(),
			lastTopup, newVersion, a.CreatedAt.UTC().Format(time.RFC3339Nano))
		if err != nil {
			if isConstraintError(err) {
				return core.ErrConflict
			}
			return fmt.Errorf("insert account %s: %w", a.ID, err)
		}
	} else {
		res, err := tx.ExecContext(ctx,
			`UPDATE accounts SET allocation = ?, balance = ?, topup = ?, last_topup = ?, version = ?
			 WHERE id = ? AND version = ?`,
			a.Allocation.String(), a.Balance.String(), a.Topup.String(),
			lastTopup, newVersion, a.ID, a.Version)
		if err != nil {
			return fmt.Errorf("update account %s: %w", a.ID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("update account %s: %w", a.ID, err)
		}
		if n == 0 {
			var exists int
			if err := tx.QueryRowContext(ctx,
				`SELECT COUNT(1) FROM accounts WHERE id = ?`, a.ID).Scan(&exists); err != nil {
				return fmt.Errorf("check account %s: %w", a.ID, err)
			}
			if exists == 0 {
				return core.ErrNotFound
			}
			return core.ErrConflict
		}
	}

	if err := r.replaceRows(ctx, tx, a.ID, "members", a.Members); err != nil {
		return err
	}
	if err := r.replaceRows(ctx, tx, a.ID, "invites", a.PendingInvites); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM expenses WHERE account_id = ?`, a.ID); err != nil {
		return fmt.Errorf("clear expenses for %s: %w", a.ID, err)
	}
	for i, e := range a.Expenses {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO expenses (account_id, amount, description, entry_date, position) VALUES (?, ?, ?, ?, ?)`,
			a.ID, e.Amount.String(), e.Description, e.Date.String(), i)
		if err != nil {
			return fmt.Errorf("insert expense for %s: %w", a.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save for %s: %w", a.ID, err)
	}
	a.Version = newVersion
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM expenses WHERE account_id = ?`,
		`DELETE FROM invites WHERE account_id = ?`,
		`DELETE FROM members WHERE account_id = ?`,
		`DELETE FROM accounts WHERE id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			return fmt.Errorf("delete account %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete for %s: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) FindAccountByMember(ctx context.Context, identity string) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx,
		`SELECT account_id FROM members WHERE identity = ?`, identity).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", core.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("find account for %s: %w", identity, err)
	}
	return id, nil
}

func (r *SQLiteRepository) FindAccountByInvite(ctx context.Context, identity string) (*core.Account, error) {
	var id string
	err := r.db.QueryRowContext(ctx,
		`SELECT i.account_id FROM invites i
		 JOIN accounts a ON a.id = i.account_id
		 WHERE i.identity = ?
		 ORDER BY a.created_at, a.id
		 LIMIT 1`, identity).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find invite for %s: %w", identity, err)
	}
	return r.Load(ctx, id)
}

func (r *SQLiteRepository) stringList(ctx context.Context, query, id string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// replaceRows rewrites the members or invites rows for one account. A member
// insert hitting the identity primary key means the identity already belongs
// to another account, which callers surface as a conflict.
func (r *SQLiteRepository) replaceRows(ctx context.Context, tx *sql.Tx, accountID, table string, identities []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE account_id = ?`, accountID); err != nil {
		return fmt.Errorf("clear %s for %s: %w", table, accountID, err)
	}
	for i, identity := range identities {
		var err error
		if table == "members" {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO members (identity, account_id, position) VALUES (?, ?, ?)`,
				identity, accountID, i)
		} else {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO invites (account_id, identity, position) VALUES (?, ?, ?)`,
				accountID, identity, i)
		}
		if err != nil {
			if isConstraintError(err) {
				return core.ErrConflict
			}
			return fmt.Errorf("insert %s row for %s: %w", table, accountID, err)
		}
	}
	return nil
}

func isConstraintError(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "constraint")
}
