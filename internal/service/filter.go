package service

import (
	"strings"

	"showcatalog/internal/domain"
)

// normalizeGenre is the single place genre names are folded for comparison.
func normalizeGenre(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// hasAnyGenre reports whether show carries at least one genre of wanted (folded names).
func hasAnyGenre(show domain.Show, wanted map[string]struct{}) bool {
	for _, g := range show.Genres {
		if _, ok := wanted[normalizeGenre(g)]; ok {
			return true
		}
	}
	return false
}

func genreSet(genres []string) map[string]struct{} {
	set := make(map[string]struct{}, len(genres))
	for _, g := range genres {
		if n := normalizeGenre(g); n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}

// FilterByGenres keeps shows sharing at least one genre with genres, ignoring case.
// An empty genres list keeps everything. Order is preserved.
func FilterByGenres(shows []domain.Show, genres []string) []domain.Show {
	wanted := genreSet(genres)
	if len(wanted) == 0 {
		return append([]domain.Show(nil), shows...)
	}

	filtered := make([]domain.Show, 0, len(shows))
	for _, show := range shows {
		if hasAnyGenre(show, wanted) {
			filtered = append(filtered, show)
		}
	}
	return filtered
}
