package domain

// Image holds the poster URLs published for a show.
type Image struct {
	Medium   string `json:"medium"`
	Original string `json:"original"`
}

// Country identifies the country a network broadcasts from.
type Country struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// Network is the broadcaster of a show.
type Network struct {
	Name    string   `json:"name"`
	Country *Country `json:"country,omitempty"`
}

// Schedule describes when new episodes air.
type Schedule struct {
	Time string   `json:"time"`
	Days []string `json:"days"`
}

// Show is the canonical catalog item every pipeline stage operates on.
// Rating is always set (0 when the upstream has none) so rating sorts never
// have to deal with a missing value.
type Show struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Summary      string    `json:"summary"`
	Image        *Image    `json:"image"`
	Genres       []string  `json:"genres"`
	Rating       float64   `json:"rating"`
	Premiered    string    `json:"premiered,omitempty"`
	Status       string    `json:"status"`
	Language     string    `json:"language"`
	Runtime      *int      `json:"runtime,omitempty"`
	Network      *Network  `json:"network,omitempty"`
	Schedule     *Schedule `json:"schedule,omitempty"`
	OfficialSite string    `json:"officialSite,omitempty"`
}

// RawRating is the upstream rating envelope; Average is null for unrated shows.
type RawRating struct {
	Average *float64 `json:"average"`
}

// RawShow matches the JSON record published by the upstream catalog provider.
type RawShow struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Summary      *string   `json:"summary"`
	Image        *Image    `json:"image"`
	Genres       []string  `json:"genres"`
	Rating       RawRating `json:"rating"`
	Premiered    string    `json:"premiered"`
	Status       string    `json:"status"`
	Language     string    `json:"language"`
	Runtime      *int      `json:"runtime"`
	Network      *Network  `json:"network"`
	Schedule     *Schedule `json:"schedule"`
	OfficialSite string    `json:"officialSite"`
}

// Mode selects between genre browsing and free-text search.
type Mode string

const (
	ModeBrowse Mode = "browse"
	ModeSearch Mode = "search"
)

// SortKey names one of the supported orderings.
type SortKey string

const (
	SortRating    SortKey = "rating"
	SortName      SortKey = "name"
	SortPremiered SortKey = "premiered"
)

// QueryParams is a catalog request after HTTP decoding.
// Mode is advisory: the effective mode is derived from SearchQuery alone.
type QueryParams struct {
	Mode        Mode
	Genres      []string
	SearchQuery string
	Sort        SortKey
	Offset      int
	Limit       int
}

// GenreBucket is a genre-scoped slice of results with its own window.
type GenreBucket struct {
	Genre      string `json:"genre"`
	Items      []Show `json:"shows"`
	HasMore    bool   `json:"hasMore"`
	TotalCount int    `json:"totalCount"`
}

// CatalogPage is the payload returned for a catalog query and stored in the cache.
// Values are shared between cache hits and must not be mutated once built.
type CatalogPage struct {
	Items        []Show                 `json:"items"`
	HasMore      bool                   `json:"hasMore"`
	TotalCount   int                    `json:"totalCount"`
	NextCursor   string                 `json:"nextCursor,omitempty"`
	GenreResults map[string]GenreBucket `json:"genreResults,omitempty"`
}
