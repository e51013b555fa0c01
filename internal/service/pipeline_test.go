package service

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"showcatalog/internal/domain"
)

func show(id int, name string, rating float64, genres ...string) domain.Show {
	return domain.Show{ID: id, Name: name, Rating: rating, Genres: genres}
}

func ids(shows []domain.Show) []int {
	out := make([]int, 0, len(shows))
	for _, s := range shows {
		out = append(out, s.ID)
	}
	return out
}

func TestFilterByGenres(t *testing.T) {
	shows := []domain.Show{
		show(1, "A", 5, "Drama", "Crime"),
		show(2, "B", 5, "comedy"),
		show(3, "C", 5),
		show(4, "D", 5, "COMEDY", "Family"),
	}

	tests := []struct {
		name   string
		genres []string
		want   []int
	}{
		{"no filter keeps all", nil, []int{1, 2, 3, 4}},
		{"blank genres keep all", []string{" ", ""}, []int{1, 2, 3, 4}},
		{"case-insensitive match", []string{"Comedy"}, []int{2, 4}},
		{"union of genres keeps order", []string{"family", "Drama"}, []int{1, 4}},
		{"no match", []string{"Western"}, []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(FilterByGenres(shows, tt.genres)))
		})
	}
}

func TestFilterByGenres_SingleShowProperty(t *testing.T) {
	s := show(1, "A", 5, "Science-Fiction", "Drama")
	for _, g := range []string{"Science-Fiction", "science-fiction", "DRAMA"} {
		assert.Len(t, FilterByGenres([]domain.Show{s}, []string{g}), 1, g)
	}
	for _, g := range []string{"Science", "Dram", "Comedy"} {
		assert.Empty(t, FilterByGenres([]domain.Show{s}, []string{g}), g)
	}
}

func TestSortShows_RatingDescendingStable(t *testing.T) {
	shows := []domain.Show{
		show(1, "A", 7.0),
		show(2, "B", 9.1),
		show(3, "C", 7.0),
		show(4, "D", 8.5),
		show(5, "E", 7.0),
	}

	sorted := SortShows(shows, domain.SortRating)

	assert.Equal(t, []int{2, 4, 1, 3, 5}, ids(sorted))
	assert.Equal(t, []int{1, 2, 3, 4, 5}, ids(shows), "input must not be mutated")
}

func TestSortShows_NameLocaleAware(t *testing.T) {
	shows := []domain.Show{
		show(1, "zebra", 0),
		show(2, "Émile", 0),
		show(3, "apple", 0),
		show(4, "Banana", 0),
		show(5, "Eagle", 0),
	}

	sorted := SortShows(shows, domain.SortName)

	names := make([]string, 0, len(sorted))
	for _, s := range sorted {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"apple", "Banana", "Eagle", "Émile", "zebra"}, names)
}

func TestSortShows_PremieredDescendingMissingLast(t *testing.T) {
	shows := []domain.Show{
		{ID: 1, Premiered: ""},
		{ID: 2, Premiered: "2013-06-24"},
		{ID: 3, Premiered: "not-a-date"},
		{ID: 4, Premiered: "2019-01-01"},
		{ID: 5, Premiered: "1999"},
	}

	sorted := SortShows(shows, domain.SortPremiered)

	assert.Equal(t, []int{4, 2, 5, 1, 3}, ids(sorted))
}

func TestSortShows_UnknownKeyIsIdentity(t *testing.T) {
	shows := []domain.Show{show(3, "C", 1), show(1, "A", 9), show(2, "B", 5)}

	assert.Equal(t, []int{3, 1, 2}, ids(SortShows(shows, domain.SortKey("popularity"))))
}

func TestParseSortKey(t *testing.T) {
	assert.Equal(t, domain.SortRating, ParseSortKey(""))
	assert.Equal(t, domain.SortName, ParseSortKey(" Name "))
	assert.Equal(t, domain.SortKey("weird"), ParseSortKey("weird"))
}

func TestPaginate_WindowLength(t *testing.T) {
	shows := make([]domain.Show, 7)
	for i := range shows {
		shows[i] = show(i, fmt.Sprint(i), 0)
	}

	for offset := 0; offset <= 9; offset++ {
		for limit := 1; limit <= 9; limit++ {
			page := Paginate(shows, offset, limit)
			want := min(limit, max(0, len(shows)-offset))
			require.Len(t, page.Items, want, "offset=%d limit=%d", offset, limit)
			assert.Equal(t, offset+limit < len(shows), page.HasMore, "offset=%d limit=%d", offset, limit)
			assert.Equal(t, len(shows), page.TotalCount)
			if page.HasMore {
				assert.Equal(t, EncodeCursor(offset+limit), page.NextCursor)
			} else {
				assert.Empty(t, page.NextCursor)
			}
		}
	}
}

func TestPaginate_HugeWindow(t *testing.T) {
	shows := []domain.Show{show(1, "a", 0), show(2, "b", 0), show(3, "c", 0)}

	tests := []struct {
		name    string
		offset  int
		limit   int
		wantIDs []int
	}{
		{"max limit", 1, math.MaxInt, []int{2, 3}},
		{"max offset", math.MaxInt, 20, []int{}},
		{"both max", math.MaxInt, math.MaxInt, []int{}},
		{"max limit from start", 0, math.MaxInt, []int{1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var page *domain.CatalogPage
			require.NotPanics(t, func() { page = Paginate(shows, tt.offset, tt.limit) })
			assert.Equal(t, tt.wantIDs, ids(page.Items))
			assert.False(t, page.HasMore)
			assert.Empty(t, page.NextCursor)
			assert.Equal(t, 3, page.TotalCount)
		})
	}
}

func TestPaginate_EmptyAndDefaults(t *testing.T) {
	page := Paginate(nil, 0, 0)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.False(t, page.HasMore)
	assert.Zero(t, page.TotalCount)

	shows := make([]domain.Show, 25)
	page = Paginate(shows, -3, 0)
	assert.Len(t, page.Items, DefaultLimit)
	assert.True(t, page.HasMore)
	assert.Equal(t, "20", page.NextCursor)
}

func TestUnpaged(t *testing.T) {
	shows := []domain.Show{show(1, "A", 1), show(2, "B", 2)}
	page := Unpaged(shows)

	assert.Equal(t, []int{1, 2}, ids(page.Items))
	assert.False(t, page.HasMore)
	assert.Equal(t, 2, page.TotalCount)
	assert.Empty(t, page.NextCursor)
}

func TestCursorRoundTrip(t *testing.T) {
	assert.Equal(t, 40, DecodeCursor(EncodeCursor(40)))
	assert.Equal(t, 0, DecodeCursor(""))
	assert.Equal(t, 0, DecodeCursor("abc"))
	assert.Equal(t, 0, DecodeCursor("-5"))
	assert.Equal(t, 12, DecodeCursor(" 12 "))
}

func TestBucketize(t *testing.T) {
	shows := []domain.Show{
		show(1, "A", 6.0, "Drama", "Crime", "Thriller"),
		show(2, "B", 9.0, "Drama"),
		show(3, "C", 7.5, "Crime", "Drama"),
		show(4, "D", 8.0, "Comedy"),
	}

	buckets := Bucketize(shows, 2, nil)

	require.Len(t, buckets, 4)

	drama := buckets["Drama"]
	assert.Equal(t, "Drama", drama.Genre)
	assert.Equal(t, []int{2, 3}, ids(drama.Items))
	assert.True(t, drama.HasMore)
	assert.Equal(t, 3, drama.TotalCount)

	crime := buckets["Crime"]
	assert.Equal(t, []int{3, 1}, ids(crime.Items))
	assert.False(t, crime.HasMore)
	assert.Equal(t, 2, crime.TotalCount)

	// A show with three genres lands in exactly three buckets.
	memberships := 0
	for _, b := range Bucketize(shows, 10, nil) {
		for _, s := range b.Items {
			if s.ID == 1 {
				memberships++
			}
		}
	}
	assert.Equal(t, 3, memberships)

	pairs := 0
	for _, s := range shows {
		pairs += len(s.Genres)
	}
	total := 0
	for _, b := range buckets {
		total += b.TotalCount
	}
	assert.GreaterOrEqual(t, total, pairs)
}

func TestBucketize_RestrictedToRequestedGenres(t *testing.T) {
	shows := []domain.Show{
		show(1, "A", 6.0, "Drama", "Crime"),
		show(2, "B", 9.0, "Comedy", "Family"),
	}

	buckets := Bucketize(shows, 5, []string{"drama", "COMEDY"})

	require.Len(t, buckets, 2)
	assert.Contains(t, buckets, "Drama")
	assert.Contains(t, buckets, "Comedy")
}

func TestBucketize_DuplicateGenreOnShowCountsOnce(t *testing.T) {
	buckets := Bucketize([]domain.Show{show(1, "A", 1, "Drama", "Drama")}, 5, nil)

	require.Contains(t, buckets, "Drama")
	assert.Equal(t, 1, buckets["Drama"].TotalCount)
}
