package service

import (
	"errors"
	"fmt"
	"strings"

	"showcatalog/internal/domain"
)

var (
	ErrInvalidGenre        = errors.New("invalid genre")
	ErrQueryTooShort       = errors.New("search query too short")
	ErrUpstreamUnavailable = errors.New("upstream catalog unavailable")
	ErrPipelineFailure     = errors.New("catalog pipeline failed")
)

// InvalidGenreError reports a genre outside the registry, with the closest known name.
type InvalidGenreError struct {
	Genre      string
	Suggestion string
}

func (e *InvalidGenreError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("invalid genre: %s (did you mean %s?)", e.Genre, e.Suggestion)
	}
	return fmt.Sprintf("invalid genre: %s", e.Genre)
}

func (e *InvalidGenreError) Is(target error) bool {
	return target == ErrInvalidGenre
}

// UpstreamError is returned by providers on transport failures and non-2xx responses.
type UpstreamError struct {
	Provider   string
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s returned status %d", e.Provider, e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("%s %s request failed: %v", e.Provider, e.Endpoint, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstreamUnavailable
}

// PipelineError carries the request context of a failed pipeline run.
type PipelineError struct {
	Mode   domain.Mode
	Genres []string
	Query  string
	Err    error
}

func (e *PipelineError) Error() string {
	genres := "all"
	if len(e.Genres) > 0 {
		genres = strings.Join(e.Genres, ",")
	}
	return fmt.Sprintf("catalog pipeline failed (mode=%s genres=%s query=%q): %v", e.Mode, genres, e.Query, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

func (e *PipelineError) Is(target error) bool {
	return target == ErrPipelineFailure
}
