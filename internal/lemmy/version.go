package lemmy

import (
	"strconv"
	"strings"
)

// MinimumVersion is the oldest server release this client supports.
// Older instances are rejected at login rather than failing later on a
// missing endpoint.
const MinimumVersion = "0.18.0"

// CompareVersions compares dotted release strings numerically segment by
// segment, returning -1, 0 or 1. Missing segments count as zero; a
// non-numeric segment falls back to string comparison.
func CompareVersions(a, b string) int {
	as := strings.Split(strings.TrimSpace(a), ".")
	bs := strings.Split(strings.TrimSpace(b), ".")

	for i := 0; i < len(as) || i < len(bs); i++ {
		av, bv := segment(as, i), segment(bs, i)

		an, aerr := strconv.Atoi(av)
		bn, berr := strconv.Atoi(bv)
		if aerr == nil && berr == nil {
			if an != bn {
				if an < bn {
					return -1
				}
				return 1
			}
			continue
		}
		if cmp := strings.Compare(av, bv); cmp != 0 {
			return cmp
		}
	}
	return 0
}

func segment(parts []string, i int) string {
	if i >= len(parts) {
		return "0"
	}
	return parts[i]
}
