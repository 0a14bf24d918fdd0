// Package feed manages the filtered, sorted, paginated post listing:
// refresh to page 1, append deduplicated next pages, and optimistic
// per-item mutations reconciled with the server's response.
package feed

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/glabrego/lemmer-cli/internal/account"
	"github.com/glabrego/lemmer-cli/internal/lemmy"
	"github.com/glabrego/lemmer-cli/internal/paginate"
	"github.com/glabrego/lemmer-cli/internal/request"
)

// API is the slice of the instance client this controller uses.
// *lemmy.Host satisfies it and snapshots the bound client per call.
type API interface {
	GetPosts(ctx context.Context, form lemmy.GetPosts) (lemmy.GetPostsResponse, error)
	LikePost(ctx context.Context, form lemmy.CreatePostLike) (lemmy.PostResponse, error)
	SavePost(ctx context.Context, form lemmy.SavePost) (lemmy.PostResponse, error)
	DeletePost(ctx context.Context, form lemmy.DeletePost) (lemmy.PostResponse, error)
	BlockCommunity(ctx context.Context, form lemmy.BlockCommunity) (lemmy.BlockCommunityResponse, error)
	BlockPerson(ctx context.Context, form lemmy.BlockPerson) (lemmy.BlockPersonResponse, error)
}

// Accounts is the read-only view of the session store the feed needs.
type Accounts interface {
	Current() (account.Account, bool)
	Subscribe() (<-chan account.Change, func())
}

// Controller owns the feed listing. All state lives behind mu and is
// published to the UI through coalescing update signals. A fetch carries
// a sequence number; completions for a superseded sequence are dropped,
// so a slow stale response can never clobber fresher state.
type Controller struct {
	api      API
	accounts Accounts
	log      zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	filter      Filter
	posts       []lemmy.PostView
	fetching    request.State[lemmy.GetPostsResponse]
	fetchSeq    uint64
	fetchCancel context.CancelFunc

	blockCommunity request.State[lemmy.BlockCommunityResponse]
	blockPerson    request.State[lemmy.BlockPersonResponse]

	updates chan struct{}
}

func NewController(api API, accounts Accounts, log zerolog.Logger) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		api:      api,
		accounts: accounts,
		log:      log.With().Str("controller", "feed").Logger(),
		ctx:      ctx,
		cancel:   cancel,
		filter:   DefaultFilter(),
		fetching: request.NewEmpty[lemmy.GetPostsResponse](),
		updates:  make(chan struct{}, 1),
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

// Close cancels any in-flight fetches and stops the account watcher.
func (c *Controller) Close() {
	c.cancel()
}

// Updates signals after every state change; the latest signal coalesces.
func (c *Controller) Updates() <-chan struct{} {
	return c.updates
}

func (c *Controller) Filter() Filter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

func (c *Controller) Posts() []lemmy.PostView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]lemmy.PostView(nil), c.posts...)
}

func (c *Controller) Fetching() request.State[lemmy.GetPostsResponse] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetching
}

func (c *Controller) BlockCommunityResult() request.State[lemmy.BlockCommunityResponse] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.blockCommunity
}

func (c *Controller) BlockPersonResult() request.State[lemmy.BlockPersonResponse] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.blockPerson
}

// UpdateFilter applies a new filter. Any change to sort or listing type
// lands on page 1 regardless of what the caller passed.
func (c *Controller) UpdateFilter(f Filter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if f.Type != c.filter.Type || f.Sort != c.filter.Sort {
		f.Page = 1
	}
	if f.Page < 1 {
		f.Page = 1
	}
	c.filter = f
	c.startFetchLocked()
}

// Refresh reloads page 1 under the current filter, discarding any
// in-flight page fetch.
func (c *Controller) Refresh() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter = c.filter.FirstPage()
	c.startFetchLocked()
}

// NextPage advances the listing. While a fetch is loading this is a
// no-op; after a failure it retries the same page; only after a success
// does the page number move forward.
func (c *Controller) NextPage() {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.fetching.Phase() {
	case request.Loading:
	case request.Failure:
		c.startFetchLocked()
	default:
		c.filter = c.filter.NextPage()
		c.startFetchLocked()
	}
}

func (c *Controller) onAccountChange(current *account.Account) {
	c.mu.Lock()
	defer c.mu.Unlock()

	filter := DefaultFilter()
	if current != nil {
		if current.DefaultListing != "" {
			filter.Type = current.DefaultListing
		}
		if current.DefaultSort != "" {
			filter.Sort = current.DefaultSort
		}
	}
	c.filter = filter
	c.startFetchLocked()
}

// startFetchLocked supersedes any in-flight page fetch: the sequence
// number advances and the old fetch's context is cancelled.
func (c *Controller) startFetchLocked() {
	c.fetchSeq++
	seq := c.fetchSeq
	if c.fetchCancel != nil {
		c.fetchCancel()
	}
	ctx, cancel := context.WithCancel(c.ctx)
	c.fetchCancel = cancel

	c.fetching = request.NewLoading[lemmy.GetPostsResponse]()
	filter := c.filter
	auth := c.auth()
	c.signalLocked()

	c.log.Debug().
		Str("type", string(filter.Type)).
		Str("sort", string(filter.Sort)).
		Int("page", filter.Page).
		Msg("fetching posts")

	go func() {
		res, err := c.api.GetPosts(ctx, lemmy.GetPosts{
			Type: filter.Type,
			Sort: filter.Sort,
			Page: filter.Page,
			Auth: auth,
		})

		c.mu.Lock()
		defer c.mu.Unlock()
		if seq != c.fetchSeq {
			return
		}
		if err != nil {
			c.log.Warn().Err(err).Int("page", filter.Page).Msg("posts fetch failed")
			c.fetching = request.NewFailure[lemmy.GetPostsResponse](err)
			c.signalLocked()
			return
		}

		c.fetching = request.NewSuccess(res)
		if filter.Page == 1 {
			c.posts = res.Posts
		} else {
			c.posts = paginate.AppendUnique(c.posts, res.Posts, postID)
		}
		c.signalLocked()
	}()
}

// LikePost requests the toggled vote for the post. Returns false when no
// account is active, signalling the caller to redirect to login.
func (c *Controller) LikePost(pv lemmy.PostView, vote lemmy.VoteType) bool {
	acct, ok := c.accounts.Current()
	if !ok {
		return false
	}
	go func() {
		res, err := c.api.LikePost(c.ctx, lemmy.CreatePostLike{
			PostID: pv.Post.ID,
			Score:  lemmy.NewVote(pv.MyVote, vote),
			Auth:   acct.Token,
		})
		if err != nil {
			c.log.Warn().Err(err).Int64("post", pv.Post.ID).Msg("like post failed")
			return
		}
		c.replacePost(res.PostView)
	}()
	return true
}

// SavePost toggles the saved flag server-side.
func (c *Controller) SavePost(pv lemmy.PostView) bool {
	acct, ok := c.accounts.Current()
	if !ok {
		return false
	}
	go func() {
		res, err := c.api.SavePost(c.ctx, lemmy.SavePost{
			PostID: pv.Post.ID,
			Save:   !pv.Saved,
			Auth:   acct.Token,
		})
		if err != nil {
			c.log.Warn().Err(err).Int64("post", pv.Post.ID).Msg("save post failed")
			return
		}
		c.replacePost(res.PostView)
	}()
	return true
}

// DeletePost toggles deletion of the viewer's own post.
func (c *Controller) DeletePost(pv lemmy.PostView) bool {
	acct, ok := c.accounts.Current()
	if !ok {
		return false
	}
	go func() {
		res, err := c.api.DeletePost(c.ctx, lemmy.DeletePost{
			PostID:  pv.Post.ID,
			Deleted: !pv.Post.Deleted,
			Auth:    acct.Token,
		})
		if err != nil {
			c.log.Warn().Err(err).Int64("post", pv.Post.ID).Msg("delete post failed")
			return
		}
		c.replacePost(res.PostView)
	}()
	return true
}

func (c *Controller) BlockCommunity(community lemmy.Community) bool {
	acct, ok := c.accounts.Current()
	if !ok {
		return false
	}
	c.mu.Lock()
	c.blockCommunity = request.NewLoading[lemmy.BlockCommunityResponse]()
	c.signalLocked()
	c.mu.Unlock()

	go func() {
		res, err := c.api.BlockCommunity(c.ctx, lemmy.BlockCommunity{
			CommunityID: community.ID,
			Block:       true,
			Auth:        acct.Token,
		})
		c.mu.Lock()
		defer c.mu.Unlock()
		if err != nil {
			c.blockCommunity = request.NewFailure[lemmy.BlockCommunityResponse](err)
		} else {
			c.blockCommunity = request.NewSuccess(res)
		}
		c.signalLocked()
	}()
	return true
}

func (c *Controller) BlockPerson(person lemmy.Person) bool {
	acct, ok := c.accounts.Current()
	if !ok {
		return false
	}
	c.mu.Lock()
	c.blockPerson = request.NewLoading[lemmy.BlockPersonResponse]()
	c.signalLocked()
	c.mu.Unlock()

	go func() {
		res, err := c.api.BlockPerson(c.ctx, lemmy.BlockPerson{
			PersonID: person.ID,
			Block:    true,
			Auth:     acct.Token,
		})
		c.mu.Lock()
		defer c.mu.Unlock()
		if err != nil {
			c.blockPerson = request.NewFailure[lemmy.BlockPersonResponse](err)
		} else {
			c.blockPerson = request.NewSuccess(res)
		}
		c.signalLocked()
	}()
	return true
}

// replacePost swaps in the server's authoritative view of the post; the
// local copy is never patched field by field.
func (c *Controller) replacePost(pv lemmy.PostView) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if paginate.Replace(c.posts, pv, postID) {
		c.signalLocked()
	}
}

func (c *Controller) auth() string {
	if acct, ok := c.accounts.Current(); ok {
		return acct.Token
	}
	return ""
}

func (c *Controller) signalLocked() {
	select {
	case c.updates <- struct{}{}:
	default:
	}
}

func postID(pv lemmy.PostView) int64 {
	return pv.Post.ID
}
