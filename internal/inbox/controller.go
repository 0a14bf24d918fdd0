// Package inbox coordinates the three independently paginated inbox
// sub-feeds (replies, mentions, private messages) behind one shared
// unread-only filter. Each sub-feed has its own envelope, pagination
// cursor and supersession state; a failure in one never blocks the
// others.
package inbox

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/glabrego/lemmer-cli/internal/account"
	"github.com/glabrego/lemmer-cli/internal/lemmy"
	"github.com/glabrego/lemmer-cli/internal/paginate"
	"github.com/glabrego/lemmer-cli/internal/request"
)

type API interface {
	GetReplies(ctx context.Context, form lemmy.GetInbox) (lemmy.GetRepliesResponse, error)
	GetPersonMentions(ctx context.Context, form lemmy.GetInbox) (lemmy.GetPersonMentionsResponse, error)
	GetPrivateMessages(ctx context.Context, form lemmy.GetInbox) (lemmy.PrivateMessagesResponse, error)
	LikeComment(ctx context.Context, form lemmy.CreateCommentLike) (lemmy.CommentResponse, error)
	SaveComment(ctx context.Context, form lemmy.SaveComment) (lemmy.CommentResponse, error)
	MarkCommentReplyAsRead(ctx context.Context, form lemmy.MarkCommentReplyAsRead) (lemmy.CommentReplyResponse, error)
	MarkPersonMentionAsRead(ctx context.Context, form lemmy.MarkPersonMentionAsRead) (lemmy.PersonMentionResponse, error)
	MarkPrivateMessageAsRead(ctx context.Context, form lemmy.MarkPrivateMessageAsRead) (lemmy.PrivateMessageResponse, error)
	MarkAllAsRead(ctx context.Context, form lemmy.MarkAllAsRead) (lemmy.GetRepliesResponse, error)
	CreatePrivateMessage(ctx context.Context, form lemmy.CreatePrivateMessage) (lemmy.PrivateMessageResponse, error)
}

type Accounts interface {
	Current() (account.Account, bool)
	Subscribe() (<-chan account.Change, func())
}

type Controller struct {
	api      API
	accounts Accounts
	log      zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	filter Filter

	replies          []lemmy.CommentReplyView
	fetchingReplies  request.State[lemmy.GetRepliesResponse]
	repliesSeq       uint64
	repliesCancel    context.CancelFunc
	mentions         []lemmy.PersonMentionView
	fetchingMentions request.State[lemmy.GetPersonMentionsResponse]
	mentionsSeq      uint64
	mentionsCancel   context.CancelFunc
	messages         []lemmy.PrivateMessageView
	fetchingMessages request.State[lemmy.PrivateMessagesResponse]
	messagesSeq      uint64
	messagesCancel   context.CancelFunc

	createMessage request.State[lemmy.PrivateMessageResponse]

	updates chan struct{}
}

func NewController(api API, accounts Accounts, log zerolog.Logger) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		api:              api,
		accounts:         accounts,
		log:              log.With().Str("controller", "inbox").Logger(),
		ctx:              ctx,
		cancel:           cancel,
		filter:           DefaultFilter(),
		fetchingReplies:  request.NewEmpty[lemmy.GetRepliesResponse](),
		fetchingMentions: request.NewEmpty[lemmy.GetPersonMentionsResponse](),
		fetchingMessages: request.NewEmpty[lemmy.PrivateMessagesResponse](),
		createMessage:    request.NewEmpty[lemmy.PrivateMessageResponse](),
		updates:          make(chan struct{}, 1),
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

func (c *Controller) Filter() Filter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

func (c *Controller) Replies() []lemmy.CommentReplyView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]lemmy.CommentReplyView(nil), c.replies...)
}

func (c *Controller) Mentions() []lemmy.PersonMentionView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]lemmy.PersonMentionView(nil), c.mentions...)
}

func (c *Controller) Messages() []lemmy.PrivateMessageView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]lemmy.PrivateMessageView(nil), c.messages...)
}

func (c *Controller) FetchingReplies() request.State[lemmy.GetRepliesResponse] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetchingReplies
}

func (c *Controller) FetchingMentions() request.State[lemmy.GetPersonMentionsResponse] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetchingMentions
}

func (c *Controller) FetchingMessages() request.State[lemmy.PrivateMessagesResponse] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetchingMessages
}

func (c *Controller) CreateMessageResult() request.State[lemmy.PrivateMessageResponse] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.createMessage
}

// UpdateUnreadOnly flips the cross-cutting unread filter: all three pages
// reset to 1 and all three sub-feeds refetch.
func (c *Controller) UpdateUnreadOnly(unreadOnly bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter = c.filter.WithUnreadOnly(unreadOnly)
	c.fetchRepliesLocked()
	c.fetchMentionsLocked()
	c.fetchMessagesLocked()
}

func (c *Controller) ReloadReplies() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter.RepliesPage = 1
	c.fetchRepliesLocked()
}

func (c *Controller) NextRepliesPage() {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.fetchingReplies.Phase() {
	case request.Loading:
	case request.Failure:
		c.fetchRepliesLocked()
	default:
		c.filter.RepliesPage++
		c.fetchRepliesLocked()
	}
}

func (c *Controller) ReloadMentions() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter.MentionsPage = 1
	c.fetchMentionsLocked()
}

func (c *Controller) NextMentionsPage() {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.fetchingMentions.Phase() {
	case request.Loading:
	case request.Failure:
		c.fetchMentionsLocked()
	default:
		c.filter.MentionsPage++
		c.fetchMentionsLocked()
	}
}

func (c *Controller) ReloadMessages() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter.MessagesPage = 1
	c.fetchMessagesLocked()
}

func (c *Controller) NextMessagesPage() {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.fetchingMessages.Phase() {
	case request.Loading:
	case request.Failure:
		c.fetchMessagesLocked()
	default:
		c.filter.MessagesPage++
		c.fetchMessagesLocked()
	}
}

func (c *Controller) onAccountChange(current *account.Account) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if current == nil {
		c.replies, c.mentions, c.messages = nil, nil, nil
		c.fetchingReplies = request.NewEmpty[lemmy.GetRepliesResponse]()
		c.fetchingMentions = request.NewEmpty[lemmy.GetPersonMentionsResponse]()
		c.fetchingMessages = request.NewEmpty[lemmy.PrivateMessagesResponse]()
		c.signalLocked()
		return
	}
	c.filter = DefaultFilter().WithUnreadOnly(c.filter.UnreadOnly)
	c.fetchRepliesLocked()
	c.fetchMentionsLocked()
	c.fetchMessagesLocked()
}

func (c *Controller) fetchRepliesLocked() {
	c.repliesSeq++
	seq := c.repliesSeq
	if c.repliesCancel != nil {
		c.repliesCancel()
	}
	ctx, cancel := context.WithCancel(c.ctx)
	c.repliesCancel = cancel

	form := lemmy.GetInbox{
		UnreadOnly: c.filter.UnreadOnly,
		Sort:       lemmy.CommentSortNew,
		Page:       c.filter.RepliesPage,
		Auth:       c.auth(),
	}
	c.fetchingReplies = request.NewLoading[lemmy.GetRepliesResponse]()
	c.signalLocked()

	go func() {
		res, err := c.api.GetReplies(ctx, form)

		c.mu.Lock()
		defer c.mu.Unlock()
		if seq != c.repliesSeq {
			return
		}
		if err != nil {
			c.log.Warn().Err(err).Int("page", form.Page).Msg("replies fetch failed")
			c.fetchingReplies = request.NewFailure[lemmy.GetRepliesResponse](err)
			c.signalLocked()
			return
		}
		c.fetchingReplies = request.NewSuccess(res)
		if form.Page == 1 {
			c.replies = res.Replies
		} else {
			c.replies = paginate.AppendUnique(c.replies, res.Replies, replyID)
		}
		c.signalLocked()
	}()
}

func (c *Controller) fetchMentionsLocked() {
	c.mentionsSeq++
	seq := c.mentionsSeq
	if c.mentionsCancel != nil {
		c.mentionsCancel()
	}
	ctx, cancel := context.WithCancel(c.ctx)
	c.mentionsCancel = cancel

	form := lemmy.GetInbox{
		UnreadOnly: c.filter.UnreadOnly,
		Sort:       lemmy.CommentSortNew,
		Page:       c.filter.MentionsPage,
		Auth:       c.auth(),
	}
	c.fetchingMentions = request.NewLoading[lemmy.GetPersonMentionsResponse]()
	c.signalLocked()

	go func() {
		res, err := c.api.GetPersonMentions(ctx, form)

		c.mu.Lock()
		defer c.mu.Unlock()
		if seq != c.mentionsSeq {
			return
		}
		if err != nil {
			c.log.Warn().Err(err).Int("page", form.Page).Msg("mentions fetch failed")
			c.fetchingMentions = request.NewFailure[lemmy.GetPersonMentionsResponse](err)
			c.signalLocked()
			return
		}
		c.fetchingMentions = request.NewSuccess(res)
		if form.Page == 1 {
			c.mentions = res.Mentions
		} else {
			c.mentions = paginate.AppendUnique(c.mentions, res.Mentions, mentionID)
		}
		c.signalLocked()
	}()
}

func (c *Controller) fetchMessagesLocked() {
	c.messagesSeq++
	seq := c.messagesSeq
	if c.messagesCancel != nil {
		c.messagesCancel()
	}
	ctx, cancel := context.WithCancel(c.ctx)
	c.messagesCancel = cancel

	form := lemmy.GetInbox{
		UnreadOnly: c.filter.UnreadOnly,
		Sort:       lemmy.CommentSortNew,
		Page:       c.filter.MessagesPage,
		Auth:       c.auth(),
	}
	c.fetchingMessages = request.NewLoading[lemmy.PrivateMessagesResponse]()
	c.signalLocked()

	go func() {
		res, err := c.api.GetPrivateMessages(ctx, form)

		c.mu.Lock()
		defer c.mu.Unlock()
		if seq != c.messagesSeq {
			return
		}
		if err != nil {
			c.log.Warn().Err(err).Int("page", form.Page).Msg("messages fetch failed")
			c.fetchingMessages = request.NewFailure[lemmy.PrivateMessagesResponse](err)
			c.signalLocked()
			return
		}
		c.fetchingMessages = request.NewSuccess(res)
		if form.Page == 1 {
			c.messages = res.PrivateMessages
		} else {
			c.messages = paginate.AppendUnique(c.messages, res.PrivateMessages, messageID)
		}
		c.signalLocked()
	}()
}

// LikeReply requests the toggled vote on a reply's comment; the matching
// reply is replaced with the server-confirmed comment state.
func (c *Controller) LikeReply(view lemmy.CommentReplyView, vote lemmy.VoteType) bool {
	acct, ok := c.accounts.Current()
	if !ok {
		return false
	}
	go func() {
		res, err := c.api.LikeComment(c.ctx, lemmy.CreateCommentLike{
			CommentID: view.Comment.ID,
			Score:     lemmy.NewVote(view.MyVote, vote),
			Auth:      acct.Token,
		})
		if err != nil {
			c.log.Warn().Err(err).Int64("comment", view.Comment.ID).Msg("like reply failed")
			return
		}
		c.applyCommentToReplies(res.CommentView)
	}()
	return true
}

func (c *Controller) SaveReply(view lemmy.CommentReplyView) bool {
	acct, ok := c.accounts.Current()
	if !ok {
		return false
	}
	go func() {
		res, err := c.api.SaveComment(c.ctx, lemmy.SaveComment{
			CommentID: view.Comment.ID,
			Save:      !view.Saved,
			Auth:      acct.Token,
		})
		if err != nil {
			c.log.Warn().Err(err).Int64("comment", view.Comment.ID).Msg("save reply failed")
			return
		}
		c.applyCommentToReplies(res.CommentView)
	}()
	return true
}

func (c *Controller) LikeMention(view lemmy.PersonMentionView, vote lemmy.VoteType) bool {
	acct, ok := c.accounts.Current()
	if !ok {
		return false
	}
	go func() {
		res, err := c.api.LikeComment(c.ctx, lemmy.CreateCommentLike{
			CommentID: view.Comment.ID,
			Score:     lemmy.NewVote(view.MyVote, vote),
			Auth:      acct.Token,
		})
		if err != nil {
			c.log.Warn().Err(err).Int64("comment", view.Comment.ID).Msg("like mention failed")
			return
		}
		c.applyCommentToMentions(res.CommentView)
	}()
	return true
}

func (c *Controller) SaveMention(view lemmy.PersonMentionView) bool {
	acct, ok := c.accounts.Current()
	if !ok {
		return false
	}
	go func() {
		res, err := c.api.SaveComment(c.ctx, lemmy.SaveComment{
			CommentID: view.Comment.ID,
			Save:      !view.Saved,
			Auth:      acct.Token,
		})
		if err != nil {
			c.log.Warn().Err(err).Int64("comment", view.Comment.ID).Msg("save mention failed")
			return
		}
		c.applyCommentToMentions(res.CommentView)
	}()
	return true
}

func (c *Controller) MarkReplyAsRead(view lemmy.CommentReplyView) bool {
	acct, ok := c.accounts.Current()
	if !ok {
		return false
	}
	go func() {
		res, err := c.api.MarkCommentReplyAsRead(c.ctx, lemmy.MarkCommentReplyAsRead{
			CommentReplyID: view.CommentReply.ID,
			Read:           !view.CommentReply.Read,
			Auth:           acct.Token,
		})
		if err != nil {
			c.log.Warn().Err(err).Int64("reply", view.CommentReply.ID).Msg("mark reply read failed")
			return
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		if paginate.Replace(c.replies, res.CommentReplyView, replyID) {
			c.signalLocked()
		}
	}()
	return true
}

func (c *Controller) MarkMentionAsRead(view lemmy.PersonMentionView) bool {
	acct, ok := c.accounts.Current()
	if !ok {
		return false
	}
	go func() {
		res, err := c.api.MarkPersonMentionAsRead(c.ctx, lemmy.MarkPersonMentionAsRead{
			PersonMentionID: view.PersonMention.ID,
			Read:            !view.PersonMention.Read,
			Auth:            acct.Token,
		})
		if err != nil {
			c.log.Warn().Err(err).Int64("mention", view.PersonMention.ID).Msg("mark mention read failed")
			return
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		if paginate.Replace(c.mentions, res.PersonMentionView, mentionID) {
			c.signalLocked()
		}
	}()
	return true
}

func (c *Controller) MarkMessageAsRead(view lemmy.PrivateMessageView) bool {
	acct, ok := c.accounts.Current()
	if !ok {
		return false
	}
	go func() {
		res, err := c.api.MarkPrivateMessageAsRead(c.ctx, lemmy.MarkPrivateMessageAsRead{
			PrivateMessageID: view.PrivateMessage.ID,
			Read:             !view.PrivateMessage.Read,
			Auth:             acct.Token,
		})
		if err != nil {
			c.log.Warn().Err(err).Int64("message", view.PrivateMessage.ID).Msg("mark message read failed")
			return
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		if paginate.Replace(c.messages, res.PrivateMessageView, messageID) {
			c.signalLocked()
		}
	}()
	return true
}

// MarkAllAsRead flips every item's read flag locally once the server
// confirms the aggregate action. This is the one sanctioned bulk local
// mutation: the confirmation covers the whole inbox, not single items.
func (c *Controller) MarkAllAsRead() bool {
	acct, ok := c.accounts.Current()
	if !ok {
		return false
	}
	go func() {
		if _, err := c.api.MarkAllAsRead(c.ctx, lemmy.MarkAllAsRead{Auth: acct.Token}); err != nil {
			c.log.Warn().Err(err).Msg("mark all as read failed")
			return
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		for i := range c.replies {
			c.replies[i].CommentReply.Read = true
		}
		for i := range c.mentions {
			c.mentions[i].PersonMention.Read = true
		}
		for i := range c.messages {
			c.messages[i].PrivateMessage.Read = true
		}
		c.signalLocked()
	}()
	return true
}

// CreateMessage sends a private message and tracks the request envelope
// for the compose screen.
func (c *Controller) CreateMessage(recipientID int64, content string) bool {
	acct, ok := c.accounts.Current()
	if !ok {
		return false
	}
	c.mu.Lock()
	c.createMessage = request.NewLoading[lemmy.PrivateMessageResponse]()
	c.signalLocked()
	c.mu.Unlock()

	go func() {
		res, err := c.api.CreatePrivateMessage(c.ctx, lemmy.CreatePrivateMessage{
			Content:     content,
			RecipientID: recipientID,
			Auth:        acct.Token,
		})
		c.mu.Lock()
		defer c.mu.Unlock()
		if err != nil {
			c.log.Warn().Err(err).Int64("recipient", recipientID).Msg("create message failed")
			c.createMessage = request.NewFailure[lemmy.PrivateMessageResponse](err)
		} else {
			c.createMessage = request.NewSuccess(res)
		}
		c.signalLocked()
	}()
	return true
}

// applyCommentToReplies merges the server-confirmed comment state into
// the reply that carries it. The reply envelope row itself (read flag,
// ids) is untouched; everything the comment response owns is replaced.
func (c *Controller) applyCommentToReplies(cv lemmy.CommentView) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.replies {
		if c.replies[i].Comment.ID == cv.Comment.ID {
			c.replies[i].Comment = cv.Comment
			c.replies[i].Creator = cv.Creator
			c.replies[i].Counts = cv.Counts
			c.replies[i].Saved = cv.Saved
			c.replies[i].MyVote = cv.MyVote
			c.signalLocked()
			return
		}
	}
}

func (c *Controller) applyCommentToMentions(cv lemmy.CommentView) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.mentions {
		if c.mentions[i].Comment.ID == cv.Comment.ID {
			c.mentions[i].Comment = cv.Comment
			c.mentions[i].Creator = cv.Creator
			c.mentions[i].Counts = cv.Counts
			c.mentions[i].Saved = cv.Saved
			c.mentions[i].MyVote = cv.MyVote
			c.signalLocked()
			return
		}
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

func replyID(v lemmy.CommentReplyView) int64 {
	return v.CommentReply.ID
}

func mentionID(v lemmy.PersonMentionView) int64 {
	return v.PersonMention.ID
}

func messageID(v lemmy.PrivateMessageView) int64 {
	return v.PrivateMessage.ID
}
