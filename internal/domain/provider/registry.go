package provider

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"showcatalog/internal/domain/provider/tvmaze"
	"showcatalog/internal/domain/provider/void"
	"showcatalog/internal/service"
)

// Options carries the settings shared by network-backed providers.
type Options struct {
	BaseURL string
	Timeout time.Duration
}

type factory func(Options) service.Provider

// Add new providers here when implementing them.
var factories = map[string]factory{
	tvmaze.ID: func(o Options) service.Provider {
		return tvmaze.NewClient(tvmaze.WithBaseURL(o.BaseURL), tvmaze.WithTimeout(o.Timeout))
	},
	void.ID: func(Options) service.Provider {
		return void.NewProvider()
	},
}

// New instantiates the provider registered under name.
func New(name string, opts Options) (service.Provider, error) {
	f, ok := factories[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown provider %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return f(opts), nil
}

// Names lists the registered provider identifiers.
func Names() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
