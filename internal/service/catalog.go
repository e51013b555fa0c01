package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"showcatalog/internal/domain"
	"showcatalog/internal/domain/genre"
)

const (
	DefaultBrowseTTL = 1800 * time.Second
	DefaultSearchTTL = 900 * time.Second
)

const (
	endpointAll    = "all"
	endpointSearch = "search"
)

// Service turns the provider's coarse listing and search calls into filtered, sorted,
// paginated and cached catalog pages.
type Service struct {
	provider     Provider
	cache        Cache
	genres       GenreRegistry
	transformer  *Transformer
	browseTTL    time.Duration
	searchTTL    time.Duration
	defaultLimit int
	metrics      *Metrics
	flights      singleflight.Group
}

// QueryResult is a catalog page plus how it was produced.
type QueryResult struct {
	Page     *domain.CatalogPage
	Params   domain.QueryParams
	CacheKey string
	CacheHit bool
}

// Option configures a Service.
type Option func(*Service)

// WithGenreRegistry replaces the embedded genre table.
func WithGenreRegistry(r GenreRegistry) Option {
	return func(s *Service) {
		if r != nil {
			s.genres = r
		}
	}
}

// WithTTLs overrides the browse and search cache lifetimes. Non-positive values are ignored.
func WithTTLs(browse, search time.Duration) Option {
	return func(s *Service) {
		if browse > 0 {
			s.browseTTL = browse
		}
		if search > 0 {
			s.searchTTL = search
		}
	}
}

// WithDefaultLimit sets the page size used when a request has none.
func WithDefaultLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.defaultLimit = n
		}
	}
}

// WithSummarySanitizer changes how upstream summaries are turned into text.
func WithSummarySanitizer(fn SummarySanitizer) Option {
	return func(s *Service) {
		s.transformer = NewTransformer(fn)
	}
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// NewService creates a catalog service reading from provider and caching into cache.
func NewService(cache Cache, provider Provider, opts ...Option) *Service {
	s := &Service{
		provider:     provider,
		cache:        cache,
		genres:       genre.Default(),
		transformer:  NewTransformer(nil),
		browseTTL:    DefaultBrowseTTL,
		searchTTL:    DefaultSearchTTL,
		defaultLimit: DefaultLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// logger derives from the global logger on every call so reloaded log settings apply.
func (s *Service) logger() *zerolog.Logger {
	l := log.Logger.With().Str("module", "catalog").Logger()
	return &l
}

// Provider returns the upstream provider.
func (s *Service) Provider() Provider {
	return s.provider
}

// TTL returns the cache lifetime applied to results of mode.
func (s *Service) TTL(mode domain.Mode) time.Duration {
	if mode == domain.ModeSearch {
		return s.searchTTL
	}
	return s.browseTTL
}

// Ping checks upstream reachability. It says nothing about cache or pipeline health.
func (s *Service) Ping(ctx context.Context) error {
	return s.provider.Ping(ctx)
}

// Search runs a global search bucketed by genre. Unlike Query it rejects short text.
func (s *Service) Search(ctx context.Context, query string, limit int) (*QueryResult, error) {
	if !IsSearchQuery(query) {
		return nil, ErrQueryTooShort
	}
	return s.Query(ctx, domain.QueryParams{
		Mode:        domain.ModeSearch,
		SearchQuery: query,
		Limit:       limit,
	})
}

// Query serves a catalog request, from the cache when a live entry exists.
// Concurrent misses on the same key share a single pipeline run.
func (s *Service) Query(ctx context.Context, params domain.QueryParams) (*QueryResult, error) {
	p := NormalizeParams(params, s.defaultLimit)

	if err := s.validateGenres(p.Genres); err != nil {
		return nil, err
	}

	key := CacheKey(p)
	if page, ok := s.cache.Get(key); ok {
		s.metrics.cacheHit()
		s.logger().Trace().Str("key", key).Msg("catalog cache hit")
		return &QueryResult{Page: page, Params: p, CacheKey: key, CacheHit: true}, nil
	}
	s.metrics.cacheMiss()

	leader := false
	v, err, shared := s.flights.Do(key, func() (any, error) {
		leader = true
		// The shared run must not be cut short by whichever caller started it.
		page, err := s.run(context.WithoutCancel(ctx), p)
		if err != nil {
			return nil, err
		}
		ttl := s.TTL(p.Mode)
		s.cache.Put(key, page, ttl)
		s.metrics.cacheSize(s.cache.Len())
		s.logger().Debug().Str("key", key).Dur("ttl", ttl).Int("total", page.TotalCount).Msg("catalog cache filled")
		return page, nil
	})
	if shared && !leader {
		s.metrics.coalesced()
	}
	if err != nil {
		s.logger().Error().Err(err).
			Str("mode", string(p.Mode)).
			Strs("genres", p.Genres).
			Str("query", p.SearchQuery).
			Str("sort", string(p.Sort)).
			Int("offset", p.Offset).
			Int("limit", p.Limit).
			Msg("catalog pipeline failed")
		return nil, err
	}

	return &QueryResult{Page: v.(*domain.CatalogPage), Params: p, CacheKey: key}, nil
}

func (s *Service) validateGenres(genres []string) error {
	for _, g := range genres {
		if s.genres.IsValid(g) {
			continue
		}
		suggestion, _ := s.genres.Suggest(g)
		return &InvalidGenreError{Genre: g, Suggestion: suggestion}
	}
	return nil
}

// run executes fetch -> transform -> filter -> sort -> (bucketize | paginate).
func (s *Service) run(ctx context.Context, p domain.QueryParams) (page *domain.CatalogPage, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			page = nil
			err = s.pipelineError(p, fmt.Errorf("panic: %v", r))
		}
		s.metrics.pipeline(start, err)
	}()

	raws, err := s.fetch(ctx, p)
	if err != nil {
		return nil, s.pipelineError(p, err)
	}

	shows := s.transformer.NormalizeAll(raws)
	shows = FilterByGenres(shows, p.Genres)
	shows = SortShows(shows, p.Sort)

	if p.Mode == domain.ModeSearch {
		page = Unpaged(shows)
	} else {
		page = Paginate(shows, p.Offset, p.Limit)
	}
	if wantsBuckets(p) {
		page.GenreResults = Bucketize(shows, p.Limit, p.Genres)
	}

	return page, nil
}

// fetch picks the upstream endpoint. Genre filtering never reaches the upstream.
func (s *Service) fetch(ctx context.Context, p domain.QueryParams) ([]domain.RawShow, error) {
	start := time.Now()
	if p.Mode == domain.ModeSearch {
		raws, err := s.provider.Search(ctx, p.SearchQuery)
		s.metrics.upstream(endpointSearch, start, err)
		return raws, err
	}

	raws, err := s.provider.FetchAll(ctx)
	s.metrics.upstream(endpointAll, start, err)
	return raws, err
}

func (s *Service) pipelineError(p domain.QueryParams, err error) *PipelineError {
	return &PipelineError{
		Mode:   p.Mode,
		Genres: append([]string(nil), p.Genres...),
		Query:  strings.TrimSpace(p.SearchQuery),
		Err:    err,
	}
}
