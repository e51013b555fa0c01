package service

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"showcatalog/internal/domain"
)

// missingPremiere orders undated shows after every dated one in descending order.
var missingPremiere = time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)

var premiereLayouts = []string{"2006-01-02", "2006-01", "2006"}

// ParseSortKey maps a query value to a SortKey, defaulting to rating when empty.
// Unknown values are passed through and leave the order untouched in SortShows.
func ParseSortKey(s string) domain.SortKey {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return domain.SortRating
	}
	return domain.SortKey(s)
}

func premiereTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return missingPremiere
	}
	for _, layout := range premiereLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return missingPremiere
}

// SortShows returns a sorted copy of shows. All orderings are stable.
func SortShows(shows []domain.Show, key domain.SortKey) []domain.Show {
	sorted := slices.Clone(shows)

	switch key {
	case domain.SortRating:
		slices.SortStableFunc(sorted, func(a, b domain.Show) int {
			return cmp.Compare(b.Rating, a.Rating)
		})
	case domain.SortName:
		// Collators keep internal buffers and are not safe for concurrent use.
		col := collate.New(language.English)
		slices.SortStableFunc(sorted, func(a, b domain.Show) int {
			return col.CompareString(a.Name, b.Name)
		})
	case domain.SortPremiered:
		slices.SortStableFunc(sorted, func(a, b domain.Show) int {
			return premiereTime(b.Premiered).Compare(premiereTime(a.Premiered))
		})
	}

	return sorted
}
