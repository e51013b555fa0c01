package service

import (
	"math"
	"regexp"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"showcatalog/internal/domain"
)

// NoSummary replaces missing or empty summaries.
const NoSummary = "No summary available"

const (
	SummaryModeStrip = "strip"
	SummaryModeHTML  = "html"
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// SummarySanitizer turns an upstream summary into plain text.
type SummarySanitizer func(string) string

// StripTags removes every <...> token. Entities and malformed markup are left as-is.
func StripTags(s string) string {
	return tagPattern.ReplaceAllString(s, "")
}

// HTMLText parses s as an HTML fragment and returns its text content with entities decoded.
func HTMLText(s string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return StripTags(s)
	}
	return strings.TrimSpace(doc.Text())
}

// SanitizerFor maps a summaryMode setting to a sanitizer. Unknown modes use StripTags.
func SanitizerFor(mode string) SummarySanitizer {
	if strings.EqualFold(strings.TrimSpace(mode), SummaryModeHTML) {
		return HTMLText
	}
	return StripTags
}

// Transformer maps raw upstream records onto the canonical Show model.
type Transformer struct {
	sanitize SummarySanitizer
}

// NewTransformer returns a Transformer using sanitize for summaries (StripTags when nil).
func NewTransformer(sanitize SummarySanitizer) *Transformer {
	if sanitize == nil {
		sanitize = StripTags
	}
	return &Transformer{sanitize: sanitize}
}

// Normalize never fails: missing optional fields stay empty and required ones get defaults.
func (t *Transformer) Normalize(raw domain.RawShow) domain.Show {
	show := domain.Show{
		ID:           raw.ID,
		Name:         raw.Name,
		Summary:      NoSummary,
		Genres:       []string{},
		Premiered:    raw.Premiered,
		Status:       raw.Status,
		Language:     raw.Language,
		OfficialSite: raw.OfficialSite,
	}

	if raw.Summary != nil {
		if s := t.sanitize(*raw.Summary); s != "" {
			show.Summary = s
		}
	}
	if avg := raw.Rating.Average; avg != nil && !math.IsNaN(*avg) && !math.IsInf(*avg, 0) {
		show.Rating = *avg
	}
	if len(raw.Genres) > 0 {
		show.Genres = slices.Clone(raw.Genres)
	}
	if raw.Image != nil {
		img := *raw.Image
		show.Image = &img
	}
	if raw.Runtime != nil {
		runtime := *raw.Runtime
		show.Runtime = &runtime
	}
	if raw.Network != nil {
		network := *raw.Network
		if raw.Network.Country != nil {
			country := *raw.Network.Country
			network.Country = &country
		}
		show.Network = &network
	}
	if raw.Schedule != nil {
		show.Schedule = &domain.Schedule{
			Time: raw.Schedule.Time,
			Days: slices.Clone(raw.Schedule.Days),
		}
	}

	return show
}

// NormalizeAll maps records in order.
func (t *Transformer) NormalizeAll(raws []domain.RawShow) []domain.Show {
	shows := make([]domain.Show, 0, len(raws))
	for _, raw := range raws {
		shows = append(shows, t.Normalize(raw))
	}
	return shows
}
