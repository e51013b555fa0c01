package tvmaze

import "showcatalog/internal/domain"

// searchHit is one element of the /search/shows response.
type searchHit struct {
	Score float64        `json:"score"`
	Show  domain.RawShow `json:"show"`
}

func unwrapHits(hits []searchHit) []domain.RawShow {
	shows := make([]domain.RawShow, 0, len(hits))
	for _, h := range hits {
		shows = append(shows, h.Show)
	}
	return shows
}
