package void

import (
	"context"

	"showcatalog/internal/domain"
)

const ID = "void"

// Provider is an offline provider with an empty catalog.
type Provider struct{}

// NewProvider creates a new void provider instance.
func NewProvider() *Provider {
	return &Provider{}
}

// ID returns the unique identifier for this provider.
func (p *Provider) ID() string {
	return ID
}

// FetchAll returns an empty listing and no error.
func (p *Provider) FetchAll(_ context.Context) ([]domain.RawShow, error) {
	return []domain.RawShow{}, nil
}

// Search returns no matches and no error.
func (p *Provider) Search(_ context.Context, _ string) ([]domain.RawShow, error) {
	return []domain.RawShow{}, nil
}

// Ping always succeeds.
func (p *Provider) Ping(_ context.Context) error {
	return nil
}
