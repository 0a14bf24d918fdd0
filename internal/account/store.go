package account

import (
	"context"
	"fmt"
	"sync"
)

// Repository is the durable side of the registry. Implementations must
// keep the at-most-one-current invariant transactionally.
type Repository interface {
	List(ctx context.Context) ([]Account, error)
	Insert(ctx context.Context, acct Account) error
	Update(ctx context.Context, acct Account) error
	Delete(ctx context.Context, key Key) error
	SetCurrent(ctx context.Context, key Key) error
	RemoveCurrent(ctx context.Context) error
}

// Change is pushed to subscribers after every mutation. Current is nil
// when no account is active.
type Change struct {
	Accounts []Account
	Current  *Account
}

// Store keeps an in-memory mirror of the repository and notifies
// subscribers synchronously with each mutation. Subscriber channels are
// coalescing: a slow consumer sees the latest snapshot, not every
// intermediate one.
type Store struct {
	repo Repository

	mu       sync.Mutex
	accounts []Account
	subs     map[int]chan Change
	nextSub  int
}

func NewStore(ctx context.Context, repo Repository) (*Store, error) {
	accounts, err := repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}
	return &Store{
		repo:     repo,
		accounts: accounts,
		subs:     make(map[int]chan Change),
	}, nil
}

// Accounts returns a copy of the registry.
func (s *Store) Accounts() []Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Account(nil), s.accounts...)
}

// Current returns the active account, if any.
func (s *Store) Current() (Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentLocked()
}

// Subscribe registers for change notifications. The returned channel
// immediately carries the current snapshot. Call cancel to unsubscribe.
func (s *Store) Subscribe() (<-chan Change, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan Change, 1)
	ch <- s.changeLocked()
	s.subs[id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// SetCurrent activates the account with the given key, demoting any other
// current account first. Unknown keys are a no-op.
func (s *Store) SetCurrent(ctx context.Context, key Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexLocked(key) < 0 {
		return nil
	}
	if err := s.repo.SetCurrent(ctx, key); err != nil {
		return fmt.Errorf("set current account: %w", err)
	}
	for i := range s.accounts {
		s.accounts[i].Current = s.accounts[i].Key() == key
	}
	s.notifyLocked()
	return nil
}

// RemoveCurrent demotes the active account without deleting it, leaving
// no account current. Used for logout.
func (s *Store) RemoveCurrent(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.RemoveCurrent(ctx); err != nil {
		return fmt.Errorf("remove current account: %w", err)
	}
	for i := range s.accounts {
		s.accounts[i].Current = false
	}
	s.notifyLocked()
	return nil
}

// Insert adds an account and makes it current. Re-login to an existing
// (id, instance) pair replaces the stored record, refreshing the token.
func (s *Store) Insert(ctx context.Context, acct Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct.Current = true
	if err := s.repo.Insert(ctx, acct); err != nil {
		return fmt.Errorf("insert account: %w", err)
	}

	for i := range s.accounts {
		s.accounts[i].Current = false
	}
	if i := s.indexLocked(acct.Key()); i >= 0 {
		s.accounts[i] = acct
	} else {
		s.accounts = append(s.accounts, acct)
	}
	s.notifyLocked()
	return nil
}

// Delete removes an account permanently. A deleted current account leaves
// no account current; no other account is silently promoted.
func (s *Store) Delete(ctx context.Context, key Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(key)
	if i < 0 {
		return nil
	}
	if err := s.repo.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	s.accounts = append(s.accounts[:i], s.accounts[i+1:]...)
	s.notifyLocked()
	return nil
}

// Update replaces the stored fields for an existing account. The current
// flag is not touched here; activation changes go through SetCurrent,
// Insert or RemoveCurrent.
func (s *Store) Update(ctx context.Context, acct Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(acct.Key())
	if i < 0 {
		return nil
	}
	acct.Current = s.accounts[i].Current
	if err := s.repo.Update(ctx, acct); err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	s.accounts[i] = acct
	s.notifyLocked()
	return nil
}

func (s *Store) currentLocked() (Account, bool) {
	for _, a := range s.accounts {
		if a.Current {
			return a, true
		}
	}
	return Account{}, false
}

func (s *Store) indexLocked(key Key) int {
	for i, a := range s.accounts {
		if a.Key() == key {
			return i
		}
	}
	return -1
}

func (s *Store) changeLocked() Change {
	change := Change{Accounts: append([]Account(nil), s.accounts...)}
	if cur, ok := s.currentLocked(); ok {
		change.Current = &cur
	}
	return change
}

func (s *Store) notifyLocked() {
	change := s.changeLocked()
	for _, ch := range s.subs {
		select {
		case ch <- change:
		default:
			// Replace the stale pending snapshot with the latest one.
			select {
			case <-ch:
			default:
			}
			ch <- change
		}
	}
}
