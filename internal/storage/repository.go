package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/glabrego/lemmer-cli/internal/account"
	"github.com/glabrego/lemmer-cli/internal/lemmy"
)

// Repository persists the account registry in sqlite. The singleton
// current-account invariant is enforced inside transactions, so readers
// never observe two current rows.
type Repository struct {
	db *sql.DB
}

func NewRepository(path string) (*Repository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *Repository) Init(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS accounts (
  id INTEGER NOT NULL,
  instance TEXT NOT NULL,
  name TEXT NOT NULL,
  jwt TEXT NOT NULL,
  default_listing_type TEXT NOT NULL,
  default_sort_type TEXT NOT NULL,
  current INTEGER NOT NULL DEFAULT 0,
  PRIMARY KEY (id, instance)
);
`
	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (r *Repository) List(ctx context.Context) ([]account.Account, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, instance, name, jwt, default_listing_type, default_sort_type, current
FROM accounts
ORDER BY instance, name
`)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []account.Account
	for rows.Next() {
		var acct account.Account
		var listing, sort string
		var current int
		if err := rows.Scan(
			&acct.ID,
			&acct.Instance,
			&acct.Name,
			&acct.Token,
			&listing,
			&sort,
			&current,
		); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		acct.DefaultListing = lemmy.ListingType(listing)
		acct.DefaultSort = lemmy.SortType(sort)
		acct.Current = current != 0
		accounts = append(accounts, acct)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return accounts, nil
}

// Insert stores the account as current, demoting any other current row in
// the same transaction. An existing (id, instance) row is replaced.
func (r *Repository) Insert(ctx context.Context, acct account.Account) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `UPDATE accounts SET current = 0 WHERE current = 1`); err != nil {
		return fmt.Errorf("demote current account: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
INSERT INTO accounts (id, instance, name, jwt, default_listing_type, default_sort_type, current)
VALUES (?, ?, ?, ?, ?, ?, 1)
ON CONFLICT(id, instance) DO UPDATE SET
  name=excluded.name,
  jwt=excluded.jwt,
  default_listing_type=excluded.default_listing_type,
  default_sort_type=excluded.default_sort_type,
  current=1
`,
		acct.ID,
		acct.Instance,
		acct.Name,
		acct.Token,
		string(acct.DefaultListing),
		string(acct.DefaultSort),
	)
	if err != nil {
		return fmt.Errorf("insert account %d@%s: %w", acct.ID, acct.Instance, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Update rewrites the stored profile fields without touching the current
// flag.
func (r *Repository) Update(ctx context.Context, acct account.Account) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE accounts
SET name = ?, jwt = ?, default_listing_type = ?, default_sort_type = ?
WHERE id = ? AND instance = ?
`,
		acct.Name,
		acct.Token,
		string(acct.DefaultListing),
		string(acct.DefaultSort),
		acct.ID,
		acct.Instance,
	)
	if err != nil {
		return fmt.Errorf("update account %d@%s: %w", acct.ID, acct.Instance, err)
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, key account.Key) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM accounts WHERE id = ? AND instance = ?`,
		key.ID, key.Instance,
	)
	if err != nil {
		return fmt.Errorf("delete account %d@%s: %w", key.ID, key.Instance, err)
	}
	return nil
}

func (r *Repository) SetCurrent(ctx context.Context, key account.Key) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `UPDATE accounts SET current = 0 WHERE current = 1`); err != nil {
		return fmt.Errorf("demote current account: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE accounts SET current = 1 WHERE id = ? AND instance = ?`,
		key.ID, key.Instance,
	); err != nil {
		return fmt.Errorf("promote account %d@%s: %w", key.ID, key.Instance, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (r *Repository) RemoveCurrent(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `UPDATE accounts SET current = 0 WHERE current = 1`)
	if err != nil {
		return fmt.Errorf("demote current account: %w", err)
	}
	return nil
}
