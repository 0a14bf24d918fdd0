package lemmy

import (
	"net/url"
	"strconv"
)

// Request forms. Mutation forms serialize to the JSON body; listing forms
// encode to query parameters. Authenticated forms carry the bearer token in
// the auth field, unauthenticated calls leave it empty.

type Login struct {
	UsernameOrEmail string `json:"username_or_email"`
	Password        string `json:"password"`
}

type GetPosts struct {
	Type ListingType
	Sort SortType
	Page int
	Auth string
}

func (f GetPosts) query() url.Values {
	q := make(url.Values)
	if f.Type != "" {
		q.Set("type_", string(f.Type))
	}
	if f.Sort != "" {
		q.Set("sort", string(f.Sort))
	}
	q.Set("page", strconv.Itoa(max(f.Page, 1)))
	setAuth(q, f.Auth)
	return q
}

type GetPost struct {
	ID   int64
	Auth string
}

func (f GetPost) query() url.Values {
	q := make(url.Values)
	q.Set("id", strconv.FormatInt(f.ID, 10))
	setAuth(q, f.Auth)
	return q
}

type GetPersonDetails struct {
	PersonID int64
	Page     int
	Auth     string
}

func (f GetPersonDetails) query() url.Values {
	q := make(url.Values)
	q.Set("person_id", strconv.FormatInt(f.PersonID, 10))
	q.Set("page", strconv.Itoa(max(f.Page, 1)))
	setAuth(q, f.Auth)
	return q
}

// GetInbox is the shared query shape of the three inbox listings.
type GetInbox struct {
	UnreadOnly bool
	Sort       CommentSortType
	Page       int
	Auth       string
}

func (f GetInbox) query() url.Values {
	q := make(url.Values)
	q.Set("unread_only", strconv.FormatBool(f.UnreadOnly))
	if f.Sort != "" {
		q.Set("sort", string(f.Sort))
	}
	q.Set("page", strconv.Itoa(max(f.Page, 1)))
	setAuth(q, f.Auth)
	return q
}

type CreatePost struct {
	Name        string `json:"name"`
	CommunityID int64  `json:"community_id"`
	URL         string `json:"url,omitempty"`
	Body        string `json:"body,omitempty"`
	Auth        string `json:"auth"`
}

type CreateComment struct {
	Content  string `json:"content"`
	PostID   int64  `json:"post_id"`
	ParentID *int64 `json:"parent_id,omitempty"`
	Auth     string `json:"auth"`
}

type CreatePostLike struct {
	PostID int64  `json:"post_id"`
	Score  int    `json:"score"`
	Auth   string `json:"auth"`
}

type CreateCommentLike struct {
	CommentID int64  `json:"comment_id"`
	Score     int    `json:"score"`
	Auth      string `json:"auth"`
}

type SavePost struct {
	PostID int64  `json:"post_id"`
	Save   bool   `json:"save"`
	Auth   string `json:"auth"`
}

type SaveComment struct {
	CommentID int64  `json:"comment_id"`
	Save      bool   `json:"save"`
	Auth      string `json:"auth"`
}

type DeletePost struct {
	PostID  int64  `json:"post_id"`
	Deleted bool   `json:"deleted"`
	Auth    string `json:"auth"`
}

type BlockCommunity struct {
	CommunityID int64  `json:"community_id"`
	Block       bool   `json:"block"`
	Auth        string `json:"auth"`
}

type BlockPerson struct {
	PersonID int64  `json:"person_id"`
	Block    bool   `json:"block"`
	Auth     string `json:"auth"`
}

type MarkCommentReplyAsRead struct {
	CommentReplyID int64  `json:"comment_reply_id"`
	Read           bool   `json:"read"`
	Auth           string `json:"auth"`
}

type MarkPersonMentionAsRead struct {
	PersonMentionID int64  `json:"person_mention_id"`
	Read            bool   `json:"read"`
	Auth            string `json:"auth"`
}

type MarkPrivateMessageAsRead struct {
	PrivateMessageID int64  `json:"private_message_id"`
	Read             bool   `json:"read"`
	Auth             string `json:"auth"`
}

type MarkAllAsRead struct {
	Auth string `json:"auth"`
}

type CreatePrivateMessage struct {
	Content     string `json:"content"`
	RecipientID int64  `json:"recipient_id"`
	Auth        string `json:"auth"`
}

type SaveUserSettings struct {
	DefaultSortType    *SortType    `json:"default_sort_type,omitempty"`
	DefaultListingType *ListingType `json:"default_listing_type,omitempty"`
	ShowAvatars        *bool        `json:"show_avatars,omitempty"`
	Auth               string       `json:"auth"`
}

func setAuth(q url.Values, auth string) {
	if auth != "" {
		q.Set("auth", auth)
	}
}
