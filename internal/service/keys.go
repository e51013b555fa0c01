package service

import (
	"net/url"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"showcatalog/internal/domain"
)

// MinSearchLength is the shortest trimmed query that triggers an upstream search.
const MinSearchLength = 2

// IsSearchQuery reports whether q is long enough to be sent to the search endpoint.
func IsSearchQuery(q string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(q)) >= MinSearchLength
}

// NormalizeParams resolves defaults and the effective mode. The requested p.Mode is
// ignored: a query of at least MinSearchLength runes searches, and a shorter one is
// dropped and the request is served as a browse.
func NormalizeParams(p domain.QueryParams, defaultLimit int) domain.QueryParams {
	if defaultLimit <= 0 {
		defaultLimit = DefaultLimit
	}

	out := domain.QueryParams{
		Mode:   domain.ModeBrowse,
		Sort:   p.Sort,
		Offset: p.Offset,
		Limit:  p.Limit,
	}

	if q := strings.TrimSpace(p.SearchQuery); IsSearchQuery(q) {
		out.Mode = domain.ModeSearch
		out.SearchQuery = q
	}
	if out.Sort == "" {
		out.Sort = domain.SortRating
	}
	if out.Offset < 0 {
		out.Offset = 0
	}
	if out.Limit <= 0 {
		out.Limit = defaultLimit
	}

	seen := make(map[string]struct{}, len(p.Genres))
	for _, g := range p.Genres {
		g = strings.TrimSpace(g)
		if g == "" {
			continue
		}
		folded := normalizeGenre(g)
		if _, dup := seen[folded]; dup {
			continue
		}
		seen[folded] = struct{}{}
		out.Genres = append(out.Genres, g)
	}

	return out
}

// CacheKey derives the cache key of normalized params. Genre order and case, and query
// case, do not affect the key. Browse keys include the page window; search keys only
// carry the limit, which bounds bucket width, so every page of a search shares an entry.
func CacheKey(p domain.QueryParams) string {
	genres := "all"
	if len(p.Genres) > 0 {
		folded := make([]string, 0, len(p.Genres))
		for _, g := range p.Genres {
			folded = append(folded, normalizeGenre(g))
		}
		slices.Sort(folded)
		folded = slices.Compact(folded)
		genres = strings.Join(folded, ",")
	}

	query := "none"
	if p.SearchQuery != "" {
		query = url.QueryEscape(strings.ToLower(p.SearchQuery))
	}

	parts := []string{string(p.Mode), genres, query, string(p.Sort)}
	if p.Mode == domain.ModeSearch {
		parts = append(parts, "limit="+strconv.Itoa(p.Limit))
	} else {
		parts = append(parts, strconv.Itoa(p.Offset), strconv.Itoa(p.Limit))
	}
	return strings.Join(parts, ":")
}

// wantsBuckets reports whether a response should carry per-genre buckets: global
// searches and any request spanning several genres.
func wantsBuckets(p domain.QueryParams) bool {
	if len(p.Genres) > 1 {
		return true
	}
	return p.Mode == domain.ModeSearch && len(p.Genres) == 0
}
