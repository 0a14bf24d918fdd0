package feed

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/glabrego/lemmer-cli/internal/account"
	"github.com/glabrego/lemmer-cli/internal/lemmy"
	"github.com/glabrego/lemmer-cli/internal/request"
)

type fakeAccounts struct {
	mu   sync.Mutex
	acct *account.Account
	ch   chan account.Change
}

func newFakeAccounts(acct *account.Account) *fakeAccounts {
	return &fakeAccounts{acct: acct}
}

func (f *fakeAccounts) Current() (account.Account, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.acct == nil {
		return account.Account{}, false
	}
	return *f.acct, true
}

func (f *fakeAccounts) Subscribe() (<-chan account.Change, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ch = make(chan account.Change, 4)
	f.ch <- account.Change{Current: f.acct}
	return f.ch, func() {}
}

func (f *fakeAccounts) push(acct *account.Account) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acct = acct
	f.ch <- account.Change{Current: acct}
}

type fakeAPI struct {
	mu        sync.Mutex
	pages     map[int][]lemmy.PostView
	err       error
	block     chan struct{}
	blockPage int
	calls     []lemmy.GetPosts

	likeResp   lemmy.PostResponse
	likeCalls  []lemmy.CreatePostLike
	saveResp   lemmy.PostResponse
	saveCalls  []lemmy.SavePost
	deleteResp lemmy.PostResponse
	blockCalls int
}

func (f *fakeAPI) GetPosts(ctx context.Context, form lemmy.GetPosts) (lemmy.GetPostsResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, form)
	block, blockPage := f.block, f.blockPage
	err := f.err
	posts := append([]lemmy.PostView(nil), f.pages[form.Page]...)
	f.mu.Unlock()

	if block != nil && form.Page == blockPage {
		select {
		case <-block:
		case <-ctx.Done():
			return lemmy.GetPostsResponse{}, ctx.Err()
		}
	}
	if err != nil {
		return lemmy.GetPostsResponse{}, err
	}
	return lemmy.GetPostsResponse{Posts: posts}, nil
}

func (f *fakeAPI) LikePost(ctx context.Context, form lemmy.CreatePostLike) (lemmy.PostResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.likeCalls = append(f.likeCalls, form)
	return f.likeResp, nil
}

func (f *fakeAPI) SavePost(ctx context.Context, form lemmy.SavePost) (lemmy.PostResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saveCalls = append(f.saveCalls, form)
	return f.saveResp, nil
}

func (f *fakeAPI) DeletePost(ctx context.Context, form lemmy.DeletePost) (lemmy.PostResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.deleteResp, nil
}

func (f *fakeAPI) BlockCommunity(ctx context.Context, form lemmy.BlockCommunity) (lemmy.BlockCommunityResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blockCalls++
	return lemmy.BlockCommunityResponse{Blocked: form.Block}, nil
}

func (f *fakeAPI) BlockPerson(ctx context.Context, form lemmy.BlockPerson) (lemmy.BlockPersonResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blockCalls++
	return lemmy.BlockPersonResponse{Blocked: form.Block}, nil
}

func (f *fakeAPI) getPostsCalls() []lemmy.GetPosts {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]lemmy.GetPosts(nil), f.calls...)
}

func post(id int64, name string) lemmy.PostView {
	return lemmy.PostView{Post: lemmy.Post{ID: id, Name: name}}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func postIDs(posts []lemmy.PostView) []int64 {
	ids := make([]int64, len(posts))
	for i, p := range posts {
		ids[i] = p.Post.ID
	}
	return ids
}

func TestController_InitialFetchUsesAccountDefaults(t *testing.T) {
	api := &fakeAPI{pages: map[int][]lemmy.PostView{1: {post(1, "a")}}}
	accounts := newFakeAccounts(&account.Account{
		ID:             1,
		Instance:       "a.example",
		Token:          "token-1",
		DefaultListing: lemmy.ListingAll,
		DefaultSort:    lemmy.SortHot,
	})

	c := NewController(api, accounts, zerolog.Nop())
	defer c.Close()

	waitFor(t, "initial fetch", func() bool {
		return c.Fetching().Phase() == request.Success
	})

	filter := c.Filter()
	if filter.Type != lemmy.ListingAll || filter.Sort != lemmy.SortHot || filter.Page != 1 {
		t.Fatalf("filter = %+v, want account defaults on page 1", filter)
	}

	calls := api.getPostsCalls()
	if len(calls) == 0 || calls[0].Auth != "token-1" {
		t.Fatalf("calls = %+v, want an authenticated fetch", calls)
	}
}

func TestController_RefreshReplacesFirstPage(t *testing.T) {
	api := &fakeAPI{pages: map[int][]lemmy.PostView{1: {post(1, "a"), post(2, "b")}}}
	accounts := newFakeAccounts(nil)

	c := NewController(api, accounts, zerolog.Nop())
	defer c.Close()

	waitFor(t, "initial fetch", func() bool { return len(c.Posts()) == 2 })

	api.mu.Lock()
	api.pages[1] = []lemmy.PostView{post(3, "c")}
	api.mu.Unlock()

	c.Refresh()

	waitFor(t, "refreshed listing", func() bool {
		posts := c.Posts()
		return len(posts) == 1 && posts[0].Post.ID == 3
	})
}

func TestController_NextPageAppendsDeduped(t *testing.T) {
	api := &fakeAPI{pages: map[int][]lemmy.PostView{
		1: {post(1, "a"), post(2, "b")},
		2: {post(2, "b again"), post(3, "c")},
	}}
	accounts := newFakeAccounts(nil)

	c := NewController(api, accounts, zerolog.Nop())
	defer c.Close()

	waitFor(t, "initial fetch", func() bool { return len(c.Posts()) == 2 })

	c.NextPage()

	waitFor(t, "second page", func() bool { return len(c.Posts()) == 3 })

	ids := postIDs(c.Posts())
	for i, want := range []int64{1, 2, 3} {
		if ids[i] != want {
			t.Fatalf("post ids = %v, want [1 2 3]", ids)
		}
	}
	if c.Posts()[1].Post.Name != "b" {
		t.Fatal("the first-seen copy of a duplicate id must win")
	}
	if c.Filter().Page != 2 {
		t.Fatalf("page = %d, want 2", c.Filter().Page)
	}
}

func TestController_NextPageWhileLoadingIsNoop(t *testing.T) {
	api := &fakeAPI{pages: map[int][]lemmy.PostView{
		1: {post(1, "a")},
		2: {post(2, "b")},
	}}
	accounts := newFakeAccounts(nil)

	c := NewController(api, accounts, zerolog.Nop())
	defer c.Close()

	waitFor(t, "initial fetch", func() bool {
		return c.Fetching().Phase() == request.Success
	})

	release := make(chan struct{})
	api.mu.Lock()
	api.block = release
	api.blockPage = 2
	api.mu.Unlock()

	c.NextPage()
	waitFor(t, "page 2 in flight", func() bool { return c.Filter().Page == 2 })

	before := len(api.getPostsCalls())
	c.NextPage()
	c.NextPage()

	if c.Filter().Page != 2 {
		t.Fatalf("page = %d, want 2 while a fetch is loading", c.Filter().Page)
	}
	if got := len(api.getPostsCalls()); got != before {
		t.Fatalf("fetch calls = %d, want %d (no fetch while loading)", got, before)
	}

	close(release)
	waitFor(t, "page 2 landed", func() bool { return len(c.Posts()) == 2 })
}

func TestController_NextPageAfterFailureRetriesSamePage(t *testing.T) {
	api := &fakeAPI{pages: map[int][]lemmy.PostView{
		1: {post(1, "a")},
		2: {post(2, "b")},
	}}
	accounts := newFakeAccounts(nil)

	c := NewController(api, accounts, zerolog.Nop())
	defer c.Close()

	waitFor(t, "initial fetch", func() bool {
		return c.Fetching().Phase() == request.Success
	})

	api.mu.Lock()
	api.err = errors.New("instance unreachable")
	api.mu.Unlock()

	c.NextPage()
	waitFor(t, "failed page 2", func() bool {
		return c.Fetching().Phase() == request.Failure
	})

	api.mu.Lock()
	api.err = nil
	api.mu.Unlock()

	c.NextPage()
	waitFor(t, "retried page 2", func() bool { return len(c.Posts()) == 2 })

	if c.Filter().Page != 2 {
		t.Fatalf("page = %d, want 2 (retry must not advance)", c.Filter().Page)
	}
	calls := api.getPostsCalls()
	last := calls[len(calls)-1]
	if last.Page != 2 {
		t.Fatalf("retried page = %d, want 2", last.Page)
	}
}

func TestController_UpdateFilterSortChangeResetsPage(t *testing.T) {
	api := &fakeAPI{pages: map[int][]lemmy.PostView{1: {post(1, "a")}, 2: {post(2, "b")}}}
	accounts := newFakeAccounts(nil)

	c := NewController(api, accounts, zerolog.Nop())
	defer c.Close()

	waitFor(t, "initial fetch", func() bool {
		return c.Fetching().Phase() == request.Success
	})
	c.NextPage()
	waitFor(t, "page 2", func() bool { return c.Filter().Page == 2 && c.Fetching().Phase() == request.Success })

	next := c.Filter()
	next.Sort = lemmy.SortHot
	next.Page = 7
	c.UpdateFilter(next)

	if got := c.Filter(); got.Page != 1 || got.Sort != lemmy.SortHot {
		t.Fatalf("filter = %+v, want sort change to land on page 1", got)
	}
	waitFor(t, "refetch under new sort", func() bool {
		calls := api.getPostsCalls()
		last := calls[len(calls)-1]
		return last.Sort == lemmy.SortHot && last.Page == 1
	})
}

func TestController_StaleFetchIsDropped(t *testing.T) {
	api := &fakeAPI{pages: map[int][]lemmy.PostView{
		1: {post(1, "a")},
		2: {post(9, "late")},
	}}
	accounts := newFakeAccounts(nil)

	c := NewController(api, accounts, zerolog.Nop())
	defer c.Close()

	waitFor(t, "initial fetch", func() bool { return len(c.Posts()) == 1 })

	release := make(chan struct{})
	api.mu.Lock()
	api.block = release
	api.blockPage = 2
	api.mu.Unlock()

	c.NextPage()
	waitFor(t, "page 2 in flight", func() bool { return c.Filter().Page == 2 })

	c.Refresh()
	waitFor(t, "refresh landed", func() bool {
		return c.Filter().Page == 1 && c.Fetching().Phase() == request.Success
	})

	close(release)
	time.Sleep(50 * time.Millisecond)

	ids := postIDs(c.Posts())
	if len(ids) != 1 || ids[0] != 1 {
		t.Fatalf("posts = %v, want the superseded page 2 response dropped", ids)
	}
}

func TestController_LikePostTogglesVote(t *testing.T) {
	liked := post(1, "a")
	liked.MyVote = 1

	api := &fakeAPI{pages: map[int][]lemmy.PostView{1: {liked}}}
	serverView := post(1, "a (edited)")
	serverView.MyVote = 0
	api.likeResp = lemmy.PostResponse{PostView: serverView}

	accounts := newFakeAccounts(&account.Account{ID: 1, Instance: "a.example", Token: "token-1"})

	c := NewController(api, accounts, zerolog.Nop())
	defer c.Close()

	waitFor(t, "initial fetch", func() bool { return len(c.Posts()) == 1 })

	if !c.LikePost(c.Posts()[0], lemmy.Upvote) {
		t.Fatal("LikePost should accept when an account is active")
	}

	waitFor(t, "server view replacing the post", func() bool {
		posts := c.Posts()
		return len(posts) == 1 && posts[0].Post.Name == "a (edited)" && posts[0].MyVote == 0
	})

	api.mu.Lock()
	defer api.mu.Unlock()
	if len(api.likeCalls) != 1 {
		t.Fatalf("like calls = %d, want 1", len(api.likeCalls))
	}
	if got := api.likeCalls[0]; got.Score != 0 || got.Auth != "token-1" {
		t.Fatalf("like form = %+v, want score 0 (upvote again clears)", got)
	}
}

func TestController_SavePostTogglesSavedFlag(t *testing.T) {
	saved := post(1, "a")
	saved.Saved = true

	api := &fakeAPI{pages: map[int][]lemmy.PostView{1: {saved}}}
	api.saveResp = lemmy.PostResponse{PostView: post(1, "a")}
	accounts := newFakeAccounts(&account.Account{ID: 1, Instance: "a.example", Token: "token-1"})

	c := NewController(api, accounts, zerolog.Nop())
	defer c.Close()

	waitFor(t, "initial fetch", func() bool { return len(c.Posts()) == 1 })

	if !c.SavePost(c.Posts()[0]) {
		t.Fatal("SavePost should accept when an account is active")
	}

	waitFor(t, "unsave request", func() bool {
		api.mu.Lock()
		defer api.mu.Unlock()
		return len(api.saveCalls) == 1
	})

	api.mu.Lock()
	defer api.mu.Unlock()
	if api.saveCalls[0].Save {
		t.Fatal("saving an already saved post must request save=false")
	}
}

func TestController_MutationsRequireLogin(t *testing.T) {
	api := &fakeAPI{pages: map[int][]lemmy.PostView{1: {post(1, "a")}}}
	accounts := newFakeAccounts(nil)

	c := NewController(api, accounts, zerolog.Nop())
	defer c.Close()

	waitFor(t, "initial fetch", func() bool { return len(c.Posts()) == 1 })

	pv := c.Posts()[0]
	if c.LikePost(pv, lemmy.Upvote) {
		t.Error("LikePost should refuse when logged out")
	}
	if c.SavePost(pv) {
		t.Error("SavePost should refuse when logged out")
	}
	if c.DeletePost(pv) {
		t.Error("DeletePost should refuse when logged out")
	}
	if c.BlockCommunity(lemmy.Community{ID: 1}) {
		t.Error("BlockCommunity should refuse when logged out")
	}
	if c.BlockPerson(lemmy.Person{ID: 1}) {
		t.Error("BlockPerson should refuse when logged out")
	}

	api.mu.Lock()
	defer api.mu.Unlock()
	if len(api.likeCalls) != 0 || len(api.saveCalls) != 0 || api.blockCalls != 0 {
		t.Fatal("logged-out mutations must not reach the server")
	}
}

func TestController_AccountChangeResetsFilter(t *testing.T) {
	api := &fakeAPI{pages: map[int][]lemmy.PostView{1: {post(1, "a")}, 2: {post(2, "b")}}}
	accounts := newFakeAccounts(nil)

	c := NewController(api, accounts, zerolog.Nop())
	defer c.Close()

	waitFor(t, "initial fetch", func() bool {
		return c.Fetching().Phase() == request.Success
	})
	c.NextPage()
	waitFor(t, "page 2", func() bool { return c.Filter().Page == 2 && c.Fetching().Phase() == request.Success })

	accounts.push(&account.Account{
		ID:             2,
		Instance:       "b.example",
		Token:          "token-2",
		DefaultListing: lemmy.ListingSubscribed,
		DefaultSort:    lemmy.SortNew,
	})

	waitFor(t, "filter reset to new account defaults", func() bool {
		f := c.Filter()
		return f.Type == lemmy.ListingSubscribed && f.Sort == lemmy.SortNew && f.Page == 1
	})
}

func TestController_BlockCommunityPublishesResult(t *testing.T) {
	api := &fakeAPI{pages: map[int][]lemmy.PostView{}}
	accounts := newFakeAccounts(&account.Account{ID: 1, Instance: "a.example", Token: "token-1"})

	c := NewController(api, accounts, zerolog.Nop())
	defer c.Close()

	if !c.BlockCommunity(lemmy.Community{ID: 8}) {
		t.Fatal("BlockCommunity should accept when an account is active")
	}

	waitFor(t, "block result", func() bool {
		res, ok := c.BlockCommunityResult().Value()
		return ok && res.Blocked
	})
}
