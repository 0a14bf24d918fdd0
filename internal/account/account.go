// Package account owns the durable multi-account registry and exposes the
// active account as an observable value. Controllers hold read-only
// snapshots; every mutation funnels through the Store.
package account

import "github.com/glabrego/lemmer-cli/internal/lemmy"

// Account is one stored login. ID is the server-assigned person id, which
// is only unique per instance, so accounts are keyed by (ID, Instance).
type Account struct {
	ID             int64
	Name           string
	Instance       string
	Token          string
	DefaultListing lemmy.ListingType
	DefaultSort    lemmy.SortType
	Current        bool
}

// Key identifies an account across instances.
type Key struct {
	ID       int64
	Instance string
}

func (a Account) Key() Key {
	return Key{ID: a.ID, Instance: a.Instance}
}
