package service

import (
	"context"
	"time"

	"showcatalog/internal/domain"
)

// Provider defines the interface for an upstream catalog provider.
type Provider interface {
	// ID returns the unique identifier of the provider (e.g., "tvmaze").
	ID() string

	// FetchAll returns the first page of the provider's full listing.
	FetchAll(ctx context.Context) ([]domain.RawShow, error)

	// Search runs a free-text search and returns the matching records without scores.
	Search(ctx context.Context, query string) ([]domain.RawShow, error)

	// Ping checks that the provider is reachable.
	Ping(ctx context.Context) error
}

// Cache stores finished catalog pages.
type Cache interface {
	Get(key string) (*domain.CatalogPage, bool)
	Put(key string, page *domain.CatalogPage, ttl time.Duration)
	Len() int
}

// GenreRegistry is the subset of the genre table the pipeline validates against.
type GenreRegistry interface {
	IsValid(name string) bool
	Suggest(name string) (string, bool)
}
