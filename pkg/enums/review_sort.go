package enums

import "strings"

// ReviewSort selects the ordering of a product's review listing.
type ReviewSort string

const (
	ReviewSortNewest     ReviewSort = "newest"
	ReviewSortOldest     ReviewSort = "oldest"
	ReviewSortRatingDesc ReviewSort = "rating_desc"
	ReviewSortRatingAsc  ReviewSort = "rating_asc"
	ReviewSortHelpful    ReviewSort = "helpful"
)

var validReviewSorts = []ReviewSort{
	ReviewSortNewest,
	ReviewSortOldest,
	ReviewSortRatingDesc,
	ReviewSortRatingAsc,
	ReviewSortHelpful,
}

func (s ReviewSort) String() string {
	return string(s)
}

func (s ReviewSort) IsValid() bool {
	for _, candidate := range validReviewSorts {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseReviewSort never fails: unknown or empty values mean newest first.
// The date directions "ASC" and "DESC" map to oldest and newest.
func ParseReviewSort(value string) ReviewSort {
	normalized := ReviewSort(strings.ToLower(strings.TrimSpace(value)))
	switch normalized {
	case "asc":
		return ReviewSortOldest
	case "desc":
		return ReviewSortNewest
	}
	if normalized.IsValid() {
		return normalized
	}
	return ReviewSortNewest
}
