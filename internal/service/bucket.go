package service

import (
	"showcatalog/internal/domain"
)

// Bucketize groups shows by genre. A show lands in one bucket per genre it carries,
// keyed by the genre's upstream spelling. Each bucket is rating-sorted on its own and
// cut to limit; TotalCount keeps the size before the cut.
//
// When only is non-empty, buckets are built for those genres alone (case-insensitive).
func Bucketize(shows []domain.Show, limit int, only []string) map[string]domain.GenreBucket {
	if limit <= 0 {
		limit = DefaultLimit
	}
	allowed := genreSet(only)

	grouped := make(map[string][]domain.Show)
	for _, show := range shows {
		seen := make(map[string]struct{}, len(show.Genres))
		for _, g := range show.Genres {
			if _, dup := seen[g]; dup {
				continue
			}
			seen[g] = struct{}{}
			if len(allowed) > 0 {
				if _, ok := allowed[normalizeGenre(g)]; !ok {
					continue
				}
			}
			grouped[g] = append(grouped[g], show)
		}
	}

	buckets := make(map[string]domain.GenreBucket, len(grouped))
	for g, members := range grouped {
		members = SortShows(members, domain.SortRating)
		total := len(members)
		if total > limit {
			members = members[:limit]
		}
		buckets[g] = domain.GenreBucket{
			Genre:      g,
			Items:      members,
			HasMore:    total > limit,
			TotalCount: total,
		}
	}
	return buckets
}
