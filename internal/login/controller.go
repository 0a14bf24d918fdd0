// Package login resolves a candidate instance, authenticates, version-
// checks the site and materializes a new stored account.
package login

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/glabrego/lemmer-cli/internal/account"
	"github.com/glabrego/lemmer-cli/internal/lemmy"
)

// API is the slice of the client the login flow needs. The client is
// built fresh for the candidate instance, not taken from the bound host.
type API interface {
	Login(ctx context.Context, form lemmy.Login) (lemmy.LoginResponse, error)
	GetSite(ctx context.Context, auth string) (lemmy.GetSiteResponse, error)
}

type Accounts interface {
	Insert(ctx context.Context, acct account.Account) error
}

// Controller runs the multi-step login sequence. The loading flag spans
// the whole sequence and guards double submission; it resets on every
// exit path.
type Controller struct {
	accounts Accounts
	dial     func(instance string) API
	log      zerolog.Logger

	mu      sync.Mutex
	loading bool
	err     error
}

func NewController(accounts Accounts, log zerolog.Logger) *Controller {
	return &Controller{
		accounts: accounts,
		log:      log.With().Str("controller", "login").Logger(),
		dial: func(instance string) API {
			return lemmy.NewInstanceClient(instance, nil)
		},
	}
}

func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Err returns the rejection of the last attempt, nil after a success.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Login walks Authenticating → SiteFetching → VersionChecking and, when
// every gate passes, inserts the new account as current. A second call
// while one is in flight is ignored.
func (c *Controller) Login(ctx context.Context, instance string, creds lemmy.Login) error {
	c.mu.Lock()
	if c.loading {
		c.mu.Unlock()
		return nil
	}
	c.loading = true
	c.err = nil
	c.mu.Unlock()

	err := c.run(ctx, normalizeInstance(instance), creds)

	c.mu.Lock()
	c.loading = false
	c.err = err
	c.mu.Unlock()
	return err
}

func (c *Controller) run(ctx context.Context, instance string, creds lemmy.Login) error {
	api := c.dial(instance)

	c.log.Debug().Str("instance", instance).Msg("authenticating")
	loginRes, err := api.Login(ctx, creds)
	if err != nil {
		var status *lemmy.StatusError
		if errors.As(err, &status) {
			// The host answered; the credentials were refused.
			return &IncorrectLoginError{Cause: err}
		}
		return &NotLemmyInstanceError{Instance: instance, Cause: err}
	}
	if loginRes.JWT == nil || *loginRes.JWT == "" {
		return &IncorrectLoginError{}
	}
	token := *loginRes.JWT

	c.log.Debug().Str("instance", instance).Msg("fetching site")
	siteRes, err := api.GetSite(ctx, token)
	if err != nil {
		return &FailedLoadingUserDataError{Cause: err}
	}
	if siteRes.MyUser == nil {
		return &FailedLoadingUserDataError{}
	}

	if lemmy.CompareVersions(siteRes.Version, lemmy.MinimumVersion) < 0 {
		c.log.Info().Str("version", siteRes.Version).Msg("server version below minimum")
		return &ServerVersionOutdatedError{Version: siteRes.Version}
	}

	luv := siteRes.MyUser.LocalUserView
	acct := account.Account{
		ID:             luv.Person.ID,
		Name:           luv.Person.Name,
		Instance:       instance,
		Token:          token,
		DefaultListing: luv.LocalUser.DefaultListingType,
		DefaultSort:    luv.LocalUser.DefaultSortType,
		Current:        true,
	}
	if err := c.accounts.Insert(ctx, acct); err != nil {
		return err
	}

	c.log.Info().Str("instance", instance).Str("name", acct.Name).Msg("logged in")
	return nil
}

// normalizeInstance reduces user input like "https://lemmy.ml/" to a bare
// hostname.
func normalizeInstance(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}
	if i := strings.IndexByte(s, '/'); i >= 0 {
		s = s[:i]
	}
	return s
}
