package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/glabrego/lemmer-cli/internal/account"
	"github.com/glabrego/lemmer-cli/internal/lemmy"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "lemmer.db")
	repo, err := NewRepository(dbPath)
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	if err := repo.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return repo
}

func countCurrent(t *testing.T, accounts []account.Account) int {
	t.Helper()
	n := 0
	for _, a := range accounts {
		if a.Current {
			n++
		}
	}
	return n
}

func TestRepository_InsertAndList(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	acct := account.Account{
		ID:             7,
		Name:           "ada",
		Instance:       "a.example",
		Token:          "jwt-1",
		DefaultListing: lemmy.ListingLocal,
		DefaultSort:    lemmy.SortActive,
	}
	if err := repo.Insert(ctx, acct); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	accounts, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(accounts) != 1 {
		t.Fatalf("accounts = %d, want 1", len(accounts))
	}

	got := accounts[0]
	if got.ID != 7 || got.Name != "ada" || got.Instance != "a.example" || got.Token != "jwt-1" {
		t.Fatalf("stored account = %+v", got)
	}
	if got.DefaultListing != lemmy.ListingLocal || got.DefaultSort != lemmy.SortActive {
		t.Fatalf("stored defaults = %q/%q", got.DefaultListing, got.DefaultSort)
	}
	if !got.Current {
		t.Fatal("a freshly inserted account must be current")
	}
}

func TestRepository_InsertDemotesPreviousCurrent(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	if err := repo.Insert(ctx, account.Account{ID: 1, Name: "ada", Instance: "a.example"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := repo.Insert(ctx, account.Account{ID: 2, Name: "bob", Instance: "b.example"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	accounts, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if n := countCurrent(t, accounts); n != 1 {
		t.Fatalf("current rows = %d, want exactly 1", n)
	}
	for _, a := range accounts {
		if a.Current && a.Name != "bob" {
			t.Fatalf("current account = %q, want bob", a.Name)
		}
	}
}

func TestRepository_InsertSameKeyUpserts(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	if err := repo.Insert(ctx, account.Account{ID: 1, Name: "ada", Instance: "a.example", Token: "old"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := repo.Insert(ctx, account.Account{ID: 1, Name: "ada", Instance: "a.example", Token: "new"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	accounts, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(accounts) != 1 {
		t.Fatalf("accounts = %d, want 1 after re-login", len(accounts))
	}
	if accounts[0].Token != "new" {
		t.Fatalf("token = %q, want refreshed token", accounts[0].Token)
	}
}

func TestRepository_SetCurrentMovesFlag(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	if err := repo.Insert(ctx, account.Account{ID: 1, Name: "ada", Instance: "a.example"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := repo.Insert(ctx, account.Account{ID: 2, Name: "bob", Instance: "b.example"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	if err := repo.SetCurrent(ctx, account.Key{ID: 1, Instance: "a.example"}); err != nil {
		t.Fatalf("SetCurrent: %v", err)
	}

	accounts, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if n := countCurrent(t, accounts); n != 1 {
		t.Fatalf("current rows = %d, want exactly 1", n)
	}
	for _, a := range accounts {
		if a.Current && a.Name != "ada" {
			t.Fatalf("current account = %q, want ada", a.Name)
		}
	}
}

func TestRepository_RemoveCurrent(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	if err := repo.Insert(ctx, account.Account{ID: 1, Name: "ada", Instance: "a.example"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := repo.RemoveCurrent(ctx); err != nil {
		t.Fatalf("RemoveCurrent: %v", err)
	}

	accounts, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if n := countCurrent(t, accounts); n != 0 {
		t.Fatalf("current rows = %d, want 0 after logout", n)
	}
	if len(accounts) != 1 {
		t.Fatal("logout must not delete the account row")
	}
}

func TestRepository_UpdateKeepsCurrentFlag(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	if err := repo.Insert(ctx, account.Account{ID: 1, Name: "ada", Instance: "a.example", Token: "t1"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	update := account.Account{
		ID:             1,
		Name:           "ada_renamed",
		Instance:       "a.example",
		Token:          "t1",
		DefaultListing: lemmy.ListingAll,
		DefaultSort:    lemmy.SortHot,
	}
	if err := repo.Update(ctx, update); err != nil {
		t.Fatalf("Update: %v", err)
	}

	accounts, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	got := accounts[0]
	if got.Name != "ada_renamed" || got.DefaultListing != lemmy.ListingAll || got.DefaultSort != lemmy.SortHot {
		t.Fatalf("updated account = %+v", got)
	}
	if !got.Current {
		t.Fatal("Update must not clear the current flag")
	}
}

func TestRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	if err := repo.Insert(ctx, account.Account{ID: 1, Name: "ada", Instance: "a.example"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := repo.Delete(ctx, account.Key{ID: 1, Instance: "a.example"}); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	accounts, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(accounts) != 0 {
		t.Fatalf("accounts = %v, want none", accounts)
	}
}

func TestRepository_SameIDDifferentInstanceCoexist(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	if err := repo.Insert(ctx, account.Account{ID: 1, Name: "ada", Instance: "a.example"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := repo.Insert(ctx, account.Account{ID: 1, Name: "ada", Instance: "b.example"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	accounts, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(accounts) != 2 {
		t.Fatalf("accounts = %d, want 2 distinct (id, instance) rows", len(accounts))
	}
}
