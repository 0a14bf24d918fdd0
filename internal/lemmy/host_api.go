package lemmy

import "context"

// Host forwards the API surface to the currently bound client. Each call
// snapshots the binding once, so a whole operation runs against a single
// instance even if the host is rebound mid-flight.

func (h *Host) GetSite(ctx context.Context, auth string) (GetSiteResponse, error) {
	return h.Client().GetSite(ctx, auth)
}

func (h *Host) GetPost(ctx context.Context, form GetPost) (GetPostResponse, error) {
	return h.Client().GetPost(ctx, form)
}

func (h *Host) GetPosts(ctx context.Context, form GetPosts) (GetPostsResponse, error) {
	return h.Client().GetPosts(ctx, form)
}

func (h *Host) GetPersonDetails(ctx context.Context, form GetPersonDetails) (GetPersonDetailsResponse, error) {
	return h.Client().GetPersonDetails(ctx, form)
}

func (h *Host) GetReplies(ctx context.Context, form GetInbox) (GetRepliesResponse, error) {
	return h.Client().GetReplies(ctx, form)
}

func (h *Host) GetPersonMentions(ctx context.Context, form GetInbox) (GetPersonMentionsResponse, error) {
	return h.Client().GetPersonMentions(ctx, form)
}

func (h *Host) GetPrivateMessages(ctx context.Context, form GetInbox) (PrivateMessagesResponse, error) {
	return h.Client().GetPrivateMessages(ctx, form)
}

func (h *Host) GetUnreadCount(ctx context.Context, auth string) (UnreadCountResponse, error) {
	return h.Client().GetUnreadCount(ctx, auth)
}

func (h *Host) CreatePost(ctx context.Context, form CreatePost) (PostResponse, error) {
	return h.Client().CreatePost(ctx, form)
}

func (h *Host) CreateComment(ctx context.Context, form CreateComment) (CommentResponse, error) {
	return h.Client().CreateComment(ctx, form)
}

func (h *Host) LikePost(ctx context.Context, form CreatePostLike) (PostResponse, error) {
	return h.Client().LikePost(ctx, form)
}

func (h *Host) LikeComment(ctx context.Context, form CreateCommentLike) (CommentResponse, error) {
	return h.Client().LikeComment(ctx, form)
}

func (h *Host) SavePost(ctx context.Context, form SavePost) (PostResponse, error) {
	return h.Client().SavePost(ctx, form)
}

func (h *Host) SaveComment(ctx context.Context, form SaveComment) (CommentResponse, error) {
	return h.Client().SaveComment(ctx, form)
}

func (h *Host) DeletePost(ctx context.Context, form DeletePost) (PostResponse, error) {
	return h.Client().DeletePost(ctx, form)
}

func (h *Host) BlockCommunity(ctx context.Context, form BlockCommunity) (BlockCommunityResponse, error) {
	return h.Client().BlockCommunity(ctx, form)
}

func (h *Host) BlockPerson(ctx context.Context, form BlockPerson) (BlockPersonResponse, error) {
	return h.Client().BlockPerson(ctx, form)
}

func (h *Host) MarkCommentReplyAsRead(ctx context.Context, form MarkCommentReplyAsRead) (CommentReplyResponse, error) {
	return h.Client().MarkCommentReplyAsRead(ctx, form)
}

func (h *Host) MarkPersonMentionAsRead(ctx context.Context, form MarkPersonMentionAsRead) (PersonMentionResponse, error) {
	return h.Client().MarkPersonMentionAsRead(ctx, form)
}

func (h *Host) MarkPrivateMessageAsRead(ctx context.Context, form MarkPrivateMessageAsRead) (PrivateMessageResponse, error) {
	return h.Client().MarkPrivateMessageAsRead(ctx, form)
}

func (h *Host) MarkAllAsRead(ctx context.Context, form MarkAllAsRead) (GetRepliesResponse, error) {
	return h.Client().MarkAllAsRead(ctx, form)
}

func (h *Host) CreatePrivateMessage(ctx context.Context, form CreatePrivateMessage) (PrivateMessageResponse, error) {
	return h.Client().CreatePrivateMessage(ctx, form)
}

func (h *Host) SaveUserSettings(ctx context.Context, form SaveUserSettings) (LoginResponse, error) {
	return h.Client().SaveUserSettings(ctx, form)
}
