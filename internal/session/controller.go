// Package session bootstraps server-side state for the active account:
// it rebinds the API host when the account's instance changes, loads the
// site, reconciles drifted profile fields into the stored account, and
// tracks the unread-notification count.
package session

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/glabrego/lemmer-cli/internal/account"
	"github.com/glabrego/lemmer-cli/internal/lemmy"
	"github.com/glabrego/lemmer-cli/internal/request"
)

type API interface {
	GetSite(ctx context.Context, auth string) (lemmy.GetSiteResponse, error)
	GetUnreadCount(ctx context.Context, auth string) (lemmy.UnreadCountResponse, error)
	SaveUserSettings(ctx context.Context, form lemmy.SaveUserSettings) (lemmy.LoginResponse, error)
}

// Binder rebinds the process-wide API host to an instance.
type Binder interface {
	SetInstance(instance string)
}

type Accounts interface {
	Current() (account.Account, bool)
	Subscribe() (<-chan account.Change, func())
	Update(ctx context.Context, acct account.Account) error
}

// sessionKey is the distinct-until-changed key of the account stream: a
// re-login that only refreshes the token must not re-trigger the site
// fetch.
type sessionKey struct {
	id       int64
	instance string
}

// Controller drives the site bootstrap state machine off the account
// stream. Site and unread-count fetches each carry a sequence number so
// a superseded response cannot overwrite a newer envelope.
type Controller struct {
	api             API
	binder          Binder
	accounts        Accounts
	defaultInstance string
	log             zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	started   bool
	lastKey   *sessionKey
	site      request.State[lemmy.GetSiteResponse]
	siteSeq   uint64
	unread    request.State[lemmy.UnreadCountResponse]
	unreadSeq uint64

	updates chan struct{}
}

// NewController wires the bootstrap to the account stream.
// defaultInstance is the configured instance used while logged out; it
// falls back to lemmy.DefaultInstance when empty.
func NewController(api API, binder Binder, accounts Accounts, defaultInstance string, log zerolog.Logger) *Controller {
	if defaultInstance == "" {
		defaultInstance = lemmy.DefaultInstance
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		api:             api,
		binder:          binder,
		accounts:        accounts,
		defaultInstance: defaultInstance,
		log:             log.With().Str("controller", "session").Logger(),
		ctx:             ctx,
		cancel:          cancel,
		site:            request.NewEmpty[lemmy.GetSiteResponse](),
		unread:          request.NewEmpty[lemmy.UnreadCountResponse](),
		updates:         make(chan struct{}, 1),
	}

	sub, unsub := accounts.Subscribe()
	go func() {
		defer unsub()
		for {
			select {
			case change, ok := <-sub:
				if !ok {
					return
				}
				c.onAccountChange(change.Current)
			case <-ctx.Done():
				return
			}
		}
	}()
	return c
}

func (c *Controller) Close() {
	c.cancel()
}

func (c *Controller) Updates() <-chan struct{} {
	return c.updates
}

func (c *Controller) Site() request.State[lemmy.GetSiteResponse] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.site
}

func (c *Controller) UnreadCounts() request.State[lemmy.UnreadCountResponse] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unread
}

// UnreadCountTotal is mentions + replies + private messages, or 0 while
// logged out or before the first successful fetch.
func (c *Controller) UnreadCountTotal() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if counts, ok := c.unread.Value(); ok {
		return counts.Total()
	}
	return 0
}

// EnableDownvotes reports the instance policy, defaulting to true until
// the site is known.
func (c *Controller) EnableDownvotes() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if site, ok := c.site.Value(); ok {
		return site.SiteView.LocalSite.EnableDownvotes
	}
	return true
}

func (c *Controller) ShowAvatars() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if site, ok := c.site.Value(); ok && site.MyUser != nil {
		return site.MyUser.LocalUserView.LocalUser.ShowAvatars
	}
	return true
}

// Reload re-runs the bootstrap fetch for the active account without
// waiting for a change event. Manual retry after a Failure.
func (c *Controller) Reload() {
	var acct *account.Account
	if cur, ok := c.accounts.Current(); ok {
		acct = &cur
	}
	go c.load(acct)
}

// ReloadUnreadCounts refetches only the unread counters.
func (c *Controller) ReloadUnreadCounts() {
	var acct *account.Account
	if cur, ok := c.accounts.Current(); ok {
		acct = &cur
	}
	go c.loadUnreadCounts(acct)
}

// SaveSettings pushes changed user settings, then refetches the site so
// the stored account converges on the server-confirmed values. Returns
// false when no account is active.
func (c *Controller) SaveSettings(form lemmy.SaveUserSettings) bool {
	acct, ok := c.accounts.Current()
	if !ok {
		return false
	}
	form.Auth = acct.Token
	go func() {
		if _, err := c.api.SaveUserSettings(c.ctx, form); err != nil {
			c.log.Warn().Err(err).Msg("save user settings failed")
			return
		}
		c.load(&acct)
	}()
	return true
}

// onAccountChange reacts only to a distinct (id, instance) pair. A nil
// account is a distinct state of its own (logged out).
func (c *Controller) onAccountChange(current *account.Account) {
	c.mu.Lock()
	var key *sessionKey
	if current != nil {
		key = &sessionKey{id: current.ID, instance: current.Instance}
	}
	if c.started && sameKey(c.lastKey, key) {
		c.mu.Unlock()
		return
	}
	c.started = true
	c.lastKey = key
	c.mu.Unlock()

	go c.load(current)
}

func (c *Controller) load(acct *account.Account) {
	instance := c.defaultInstance
	auth := ""
	if acct != nil {
		instance = acct.Instance
		auth = acct.Token
	}
	c.binder.SetInstance(instance)
	c.log.Debug().Str("instance", instance).Msg("loading site")

	c.mu.Lock()
	c.siteSeq++
	seq := c.siteSeq
	c.site = request.NewLoading[lemmy.GetSiteResponse]()
	c.signalLocked()
	c.mu.Unlock()

	res, err := c.api.GetSite(c.ctx, auth)

	c.mu.Lock()
	if seq == c.siteSeq {
		if err != nil {
			c.log.Warn().Err(err).Str("instance", instance).Msg("site load failed")
			c.site = request.NewFailure[lemmy.GetSiteResponse](err)
		} else {
			c.site = request.NewSuccess(res)
		}
		c.signalLocked()
	}
	c.mu.Unlock()

	if err == nil && acct != nil && res.MyUser != nil {
		c.reconcileAccount(*acct, res.MyUser.LocalUserView)
	}

	c.loadUnreadCounts(acct)
}

// reconcileAccount writes the server-confirmed profile fields back into
// the stored account, but only when at least one field actually drifted.
func (c *Controller) reconcileAccount(acct account.Account, luv lemmy.LocalUserView) {
	drifted := acct.Name != luv.Person.Name ||
		acct.DefaultListing != luv.LocalUser.DefaultListingType ||
		acct.DefaultSort != luv.LocalUser.DefaultSortType
	if !drifted {
		return
	}

	acct.Name = luv.Person.Name
	acct.DefaultListing = luv.LocalUser.DefaultListingType
	acct.DefaultSort = luv.LocalUser.DefaultSortType

	c.log.Info().Int64("id", acct.ID).Str("instance", acct.Instance).Msg("syncing drifted profile fields")
	if err := c.accounts.Update(c.ctx, acct); err != nil {
		c.log.Error().Err(err).Msg("account update failed")
	}
}

func (c *Controller) loadUnreadCounts(acct *account.Account) {
	c.mu.Lock()
	c.unreadSeq++
	seq := c.unreadSeq
	if acct == nil {
		c.unread = request.NewEmpty[lemmy.UnreadCountResponse]()
		c.signalLocked()
		c.mu.Unlock()
		return
	}
	c.unread = request.NewLoading[lemmy.UnreadCountResponse]()
	c.signalLocked()
	auth := acct.Token
	c.mu.Unlock()

	counts, err := c.api.GetUnreadCount(c.ctx, auth)

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.unreadSeq {
		return
	}
	if err != nil {
		c.log.Warn().Err(err).Msg("unread count fetch failed")
		c.unread = request.NewFailure[lemmy.UnreadCountResponse](err)
	} else {
		c.unread = request.NewSuccess(counts)
	}
	c.signalLocked()
}

func (c *Controller) signalLocked() {
	select {
	case c.updates <- struct{}{}:
	default:
	}
}

func sameKey(a, b *sessionKey) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
