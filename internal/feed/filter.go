package feed

import "github.com/glabrego/lemmer-cli/internal/lemmy"

const (
	DefaultSort    = lemmy.SortActive
	DefaultListing = lemmy.ListingLocal
)

// Filter is the immutable query shape of the feed. Changing anything but
// the page resets the page to 1; pages only advance through NextPage.
type Filter struct {
	Type lemmy.ListingType
	Sort lemmy.SortType
	Page int
}

func DefaultFilter() Filter {
	return Filter{Type: DefaultListing, Sort: DefaultSort, Page: 1}
}

func (f Filter) FirstPage() Filter {
	f.Page = 1
	return f
}

func (f Filter) NextPage() Filter {
	f.Page++
	return f
}

func (f Filter) WithSort(sort lemmy.SortType) Filter {
	f.Sort = sort
	f.Page = 1
	return f
}

func (f Filter) WithType(listing lemmy.ListingType) Filter {
	f.Type = listing
	f.Page = 1
	return f
}
