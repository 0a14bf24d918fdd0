package inbox

// Filter is shared by the three inbox sub-feeds. The unread-only flag is
// cross-cutting: flipping it resets every page to 1. Each sub-feed's page
// advances independently.
type Filter struct {
	UnreadOnly   bool
	RepliesPage  int
	MentionsPage int
	MessagesPage int
}

func DefaultFilter() Filter {
	return Filter{UnreadOnly: true, RepliesPage: 1, MentionsPage: 1, MessagesPage: 1}
}

func (f Filter) WithUnreadOnly(unreadOnly bool) Filter {
	return Filter{UnreadOnly: unreadOnly, RepliesPage: 1, MentionsPage: 1, MessagesPage: 1}
}
