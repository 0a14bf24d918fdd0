package lemmy

// ListingType selects which communities a listing draws from.
type ListingType string

const (
	ListingAll        ListingType = "All"
	ListingLocal      ListingType = "Local"
	ListingSubscribed ListingType = "Subscribed"
)

// SortType orders a post listing.
type SortType string

const (
	SortActive       SortType = "Active"
	SortHot          SortType = "Hot"
	SortNew          SortType = "New"
	SortOld          SortType = "Old"
	SortTopDay       SortType = "TopDay"
	SortTopWeek      SortType = "TopWeek"
	SortMostComments SortType = "MostComments"
)

// CommentSortType orders comment listings; the inbox always uses New.
type CommentSortType string

const CommentSortNew CommentSortType = "New"

type Person struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	ActorID string `json:"actor_id"`
	Banned  bool   `json:"banned"`
}

type Community struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Title   string `json:"title"`
	ActorID string `json:"actor_id"`
}

type CommunityView struct {
	Community Community `json:"community"`
	Blocked   bool      `json:"blocked"`
}

type Post struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	URL         string `json:"url,omitempty"`
	Body        string `json:"body,omitempty"`
	CreatorID   int64  `json:"creator_id"`
	CommunityID int64  `json:"community_id"`
	Deleted     bool   `json:"deleted"`
	Published   string `json:"published"`
}

type PostAggregates struct {
	PostID    int64 `json:"post_id"`
	Comments  int64 `json:"comments"`
	Score     int64 `json:"score"`
	Upvotes   int64 `json:"upvotes"`
	Downvotes int64 `json:"downvotes"`
}

// PostView is a post together with the viewer-specific fields the server
// resolves per request. Score fields are owned by the server; the client
// never recomputes them.
type PostView struct {
	Post      Post           `json:"post"`
	Creator   Person         `json:"creator"`
	Community Community      `json:"community"`
	Counts    PostAggregates `json:"counts"`
	Saved     bool           `json:"saved"`
	Read      bool           `json:"read"`
	MyVote    int            `json:"my_vote"`
}

type Comment struct {
	ID        int64  `json:"id"`
	CreatorID int64  `json:"creator_id"`
	PostID    int64  `json:"post_id"`
	Content   string `json:"content"`
	Deleted   bool   `json:"deleted"`
	Published string `json:"published"`
}

type CommentAggregates struct {
	CommentID int64 `json:"comment_id"`
	Score     int64 `json:"score"`
	Upvotes   int64 `json:"upvotes"`
	Downvotes int64 `json:"downvotes"`
}

type CommentView struct {
	Comment Comment           `json:"comment"`
	Creator Person            `json:"creator"`
	Post    Post              `json:"post"`
	Counts  CommentAggregates `json:"counts"`
	Saved   bool              `json:"saved"`
	MyVote  int               `json:"my_vote"`
}

type CommentReply struct {
	ID          int64  `json:"id"`
	RecipientID int64  `json:"recipient_id"`
	CommentID   int64  `json:"comment_id"`
	Read        bool   `json:"read"`
	Published   string `json:"published"`
}

type CommentReplyView struct {
	CommentReply CommentReply      `json:"comment_reply"`
	Comment      Comment           `json:"comment"`
	Creator      Person            `json:"creator"`
	Post         Post              `json:"post"`
	Counts       CommentAggregates `json:"counts"`
	Saved        bool              `json:"saved"`
	MyVote       int               `json:"my_vote"`
}

type PersonMention struct {
	ID          int64  `json:"id"`
	RecipientID int64  `json:"recipient_id"`
	CommentID   int64  `json:"comment_id"`
	Read        bool   `json:"read"`
	Published   string `json:"published"`
}

type PersonMentionView struct {
	PersonMention PersonMention     `json:"person_mention"`
	Comment       Comment           `json:"comment"`
	Creator       Person            `json:"creator"`
	Post          Post              `json:"post"`
	Counts        CommentAggregates `json:"counts"`
	Saved         bool              `json:"saved"`
	MyVote        int               `json:"my_vote"`
}

type PrivateMessage struct {
	ID          int64  `json:"id"`
	CreatorID   int64  `json:"creator_id"`
	RecipientID int64  `json:"recipient_id"`
	Content     string `json:"content"`
	Read        bool   `json:"read"`
	Published   string `json:"published"`
}

type PrivateMessageView struct {
	PrivateMessage PrivateMessage `json:"private_message"`
	Creator        Person         `json:"creator"`
	Recipient      Person         `json:"recipient"`
}

type LocalUser struct {
	ID                 int64       `json:"id"`
	PersonID           int64       `json:"person_id"`
	DefaultSortType    SortType    `json:"default_sort_type"`
	DefaultListingType ListingType `json:"default_listing_type"`
	ShowAvatars        bool        `json:"show_avatars"`
}

type LocalUserView struct {
	LocalUser LocalUser `json:"local_user"`
	Person    Person    `json:"person"`
}

type MyUserInfo struct {
	LocalUserView LocalUserView `json:"local_user_view"`
}

type Site struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type LocalSite struct {
	EnableDownvotes bool `json:"enable_downvotes"`
}

type SiteView struct {
	Site      Site      `json:"site"`
	LocalSite LocalSite `json:"local_site"`
}

type GetSiteResponse struct {
	SiteView SiteView    `json:"site_view"`
	MyUser   *MyUserInfo `json:"my_user,omitempty"`
	Version  string      `json:"version"`
}

type PersonAggregates struct {
	PostCount    int64 `json:"post_count"`
	CommentCount int64 `json:"comment_count"`
}

type PersonView struct {
	Person Person           `json:"person"`
	Counts PersonAggregates `json:"counts"`
}

type GetPersonDetailsResponse struct {
	PersonView PersonView    `json:"person_view"`
	Posts      []PostView    `json:"posts"`
	Comments   []CommentView `json:"comments"`
}

type GetPostsResponse struct {
	Posts []PostView `json:"posts"`
}

type PostResponse struct {
	PostView PostView `json:"post_view"`
}

type GetPostResponse struct {
	PostView      PostView      `json:"post_view"`
	CommunityView CommunityView `json:"community_view"`
}

type CommentResponse struct {
	CommentView CommentView `json:"comment_view"`
}

type CommentReplyResponse struct {
	CommentReplyView CommentReplyView `json:"comment_reply_view"`
}

type GetRepliesResponse struct {
	Replies []CommentReplyView `json:"replies"`
}

type GetPersonMentionsResponse struct {
	Mentions []PersonMentionView `json:"mentions"`
}

type PersonMentionResponse struct {
	PersonMentionView PersonMentionView `json:"person_mention_view"`
}

type PrivateMessagesResponse struct {
	PrivateMessages []PrivateMessageView `json:"private_messages"`
}

type PrivateMessageResponse struct {
	PrivateMessageView PrivateMessageView `json:"private_message_view"`
}

type UnreadCountResponse struct {
	Replies         int64 `json:"replies"`
	Mentions        int64 `json:"mentions"`
	PrivateMessages int64 `json:"private_messages"`
}

// Total is the badge count shown next to the inbox.
func (u UnreadCountResponse) Total() int64 {
	return u.Replies + u.Mentions + u.PrivateMessages
}

type LoginResponse struct {
	JWT *string `json:"jwt,omitempty"`
}

type BlockCommunityResponse struct {
	CommunityView CommunityView `json:"community_view"`
	Blocked       bool          `json:"blocked"`
}

type BlockPersonResponse struct {
	PersonView PersonView `json:"person_view"`
	Blocked    bool       `json:"blocked"`
}
