// Package paginate holds the merge rules shared by the paginated
// listings: appends keep first-seen order and never introduce a
// duplicate id, since consecutive pages can overlap when the server's
// listing shifts underneath the client.
package paginate

// AppendUnique appends the items of more whose id is not already present
// in existing. Existing items keep their position.
func AppendUnique[T any](existing, more []T, id func(T) int64) []T {
	seen := make(map[int64]struct{}, len(existing))
	for _, item := range existing {
		seen[id(item)] = struct{}{}
	}

	out := existing
	for _, item := range more {
		key := id(item)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}

// Replace swaps the item with the same id for the given one, returning
// whether a match was found. Position is preserved.
func Replace[T any](items []T, updated T, id func(T) int64) bool {
	key := id(updated)
	for i := range items {
		if id(items[i]) == key {
			items[i] = updated
			return true
		}
	}
	return false
}
