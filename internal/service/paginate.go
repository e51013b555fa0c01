package service

import (
	"strconv"
	"strings"

	"showcatalog/internal/domain"
)

// DefaultLimit is the page size used when a request does not carry a usable limit.
const DefaultLimit = 20

// Paginate returns shows[offset:offset+limit] clamped to the list, with hasMore and
// nextCursor describing the remainder.
func Paginate(shows []domain.Show, offset, limit int) *domain.CatalogPage {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	// offset+limit may overflow int; only compare against the remainder.
	total := len(shows)
	start := min(offset, total)
	remaining := total - start
	size := min(limit, remaining)

	items := make([]domain.Show, size)
	copy(items, shows[start:start+size])

	page := &domain.CatalogPage{
		Items:      items,
		HasMore:    limit < remaining,
		TotalCount: total,
	}
	if page.HasMore {
		page.NextCursor = EncodeCursor(offset + limit)
	}
	return page
}

// Unpaged returns every show with hasMore=false; used for search results.
func Unpaged(shows []domain.Show) *domain.CatalogPage {
	items := make([]domain.Show, len(shows))
	copy(items, shows)
	return &domain.CatalogPage{
		Items:      items,
		TotalCount: len(items),
	}
}

// EncodeCursor renders the opaque cursor for the next offset.
func EncodeCursor(offset int) string {
	return strconv.Itoa(offset)
}

// DecodeCursor returns the offset a cursor points at. Empty or malformed cursors mean 0.
func DecodeCursor(cursor string) int {
	n, err := strconv.Atoi(strings.TrimSpace(cursor))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
