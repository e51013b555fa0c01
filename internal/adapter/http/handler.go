package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"showcatalog/internal/domain"
	"showcatalog/internal/domain/genre"
	"showcatalog/internal/service"
)

const healthTimeout = 10 * time.Second

// GenreLister exposes the genre table views served by /catalog/genres.
type GenreLister interface {
	Names() []string
	Descriptors() []genre.Descriptor
	Dashboard() []genre.Descriptor
}

// Handler handles HTTP requests for the catalog API.
type Handler struct {
	service *service.Service
	genres  GenreLister
}

// NewHandler creates a new Handler with the given service and genre table.
func NewHandler(svc *service.Service, genres GenreLister) *Handler {
	if genres == nil {
		genres = genre.Default()
	}
	return &Handler{
		service: svc,
		genres:  genres,
	}
}

// moduleLogger is resolved per use so reloaded log settings apply.
func moduleLogger() *zerolog.Logger {
	l := log.Logger.With().Str("module", "http").Logger()
	return &l
}

// Routes mounts the catalog endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/health", h.Health)
	r.Route("/catalog", func(r chi.Router) {
		r.Get("/items", h.Items)
		r.Get("/items/{genre}", h.ItemsByGenre)
		r.Get("/search", h.Search)
		r.Get("/genres", h.Genres)
	})
}

// Items serves browse and search listings.
func (h *Handler) Items(w http.ResponseWriter, r *http.Request) {
	params, err := parseQueryParams(r.URL.Query())
	if err != nil {
		RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.query(w, r, params)
}

// ItemsByGenre serves a listing scoped to the genre in the path.
func (h *Handler) ItemsByGenre(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(chi.URLParam(r, "genre"))
	if err != nil || strings.TrimSpace(name) == "" {
		RespondError(w, http.StatusBadRequest, "genre is required")
		return
	}

	values := r.URL.Query()
	values.Del("genre")
	values.Del("genres")
	params, err := parseQueryParams(values)
	if err != nil {
		RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	params.Genres = []string{name}
	h.query(w, r, params)
}

// Search serves a global search bucketed by genre.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	limit, err := parseNonNegative(values, "limit")
	if err != nil {
		RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.Search(r.Context(), values.Get("q"), limit)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondCacheable(w, r, result.Page, result.CacheHit)
}

// Genres lists the genre table. view selects names (default), descriptors or the
// dashboard subset.
func (h *Handler) Genres(w http.ResponseWriter, r *http.Request) {
	switch view := strings.ToLower(r.URL.Query().Get("view")); view {
	case "", "names":
		RespondJSON(w, http.StatusOK, h.genres.Names())
	case "descriptors":
		RespondJSON(w, http.StatusOK, h.genres.Descriptors())
	case "dashboard":
		RespondJSON(w, http.StatusOK, h.genres.Dashboard())
	default:
		RespondError(w, http.StatusBadRequest, fmt.Sprintf("unknown view %q", view))
	}
}

// Health checks that the upstream provider is reachable.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := h.service.Ping(ctx); err != nil {
		moduleLogger().Warn().Err(err).Str("provider", h.service.Provider().ID()).Msg("Health check failed")
		RespondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) query(w http.ResponseWriter, r *http.Request, params domain.QueryParams) {
	result, err := h.service.Query(r.Context(), params)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondCacheable(w, r, result.Page, result.CacheHit)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	var genreErr *service.InvalidGenreError
	switch {
	case errors.As(err, &genreErr):
		RespondJSON(w, http.StatusBadRequest, ErrorResponse{Error: genreErr.Error(), Suggestion: genreErr.Suggestion})
	case errors.Is(err, service.ErrQueryTooShort):
		RespondError(w, http.StatusBadRequest, fmt.Sprintf("search query must be at least %d characters", service.MinSearchLength))
	case errors.Is(err, service.ErrUpstreamUnavailable):
		RespondError(w, http.StatusBadGateway, "upstream catalog unavailable")
	default:
		RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// parseQueryParams validates mode but the service routes on the length of q.
func parseQueryParams(values url.Values) (domain.QueryParams, error) {
	var p domain.QueryParams

	switch mode := domain.Mode(strings.ToLower(values.Get("mode"))); mode {
	case "", domain.ModeBrowse, domain.ModeSearch:
		p.Mode = mode
	default:
		return p, fmt.Errorf("unknown mode %q", mode)
	}

	p.Genres = append(p.Genres, values["genre"]...)
	for _, list := range values["genres"] {
		p.Genres = append(p.Genres, strings.Split(list, ",")...)
	}

	p.SearchQuery = values.Get("q")
	p.Sort = service.ParseSortKey(values.Get("sort"))

	offset, err := parseNonNegative(values, "offset")
	if err != nil {
		return p, err
	}
	if cursor := values.Get("cursor"); cursor != "" {
		offset = service.DecodeCursor(cursor)
	}
	p.Offset = offset

	if p.Limit, err = parseNonNegative(values, "limit"); err != nil {
		return p, err
	}
	return p, nil
}

func parseNonNegative(values url.Values, name string) (int, error) {
	raw := strings.TrimSpace(values.Get(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", name)
	}
	return n, nil
}
