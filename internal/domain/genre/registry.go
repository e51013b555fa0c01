package genre

import (
	_ "embed"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"gopkg.in/yaml.v3"
)

//go:embed genres.yaml
var defaultTable []byte

// Descriptor describes one genre of the closed catalog set.
type Descriptor struct {
	Name       string `yaml:"name" json:"name"`
	IsFeatured bool   `yaml:"featured" json:"isFeatured"`
	Popularity int    `yaml:"popularity" json:"popularity"`
}

type table struct {
	Genres []Descriptor `yaml:"genres"`
}

// Registry is an immutable lookup table over the known genres.
type Registry struct {
	byName    map[string]Descriptor
	byFold    map[string]Descriptor
	names     []string
	sorted    []Descriptor
	dashboard []Descriptor
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the registry built from the embedded genre table.
func Default() *Registry {
	defaultOnce.Do(func() {
		r, err := Load(defaultTable)
		if err != nil {
			panic(fmt.Sprintf("genre: embedded table is invalid: %v", err))
		}
		defaultRegistry = r
	})
	return defaultRegistry
}

// Load parses a YAML genre table.
func Load(data []byte) (*Registry, error) {
	var t table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse genre table: %w", err)
	}
	if len(t.Genres) == 0 {
		return nil, errors.New("genre table is empty")
	}

	r := &Registry{
		byName: make(map[string]Descriptor, len(t.Genres)),
		byFold: make(map[string]Descriptor, len(t.Genres)),
	}
	for _, d := range t.Genres {
		d.Name = strings.TrimSpace(d.Name)
		if d.Name == "" {
			return nil, errors.New("genre table contains an empty name")
		}
		folded := strings.ToLower(d.Name)
		if _, dup := r.byFold[folded]; dup {
			return nil, fmt.Errorf("duplicate genre %q", d.Name)
		}
		r.byName[d.Name] = d
		r.byFold[folded] = d
		r.sorted = append(r.sorted, d)
	}

	slices.SortFunc(r.sorted, func(a, b Descriptor) int { return strings.Compare(a.Name, b.Name) })
	for _, d := range r.sorted {
		r.names = append(r.names, d.Name)
		if d.IsFeatured {
			r.dashboard = append(r.dashboard, d)
		}
	}
	// Stable so equal popularity keeps alphabetical order.
	slices.SortStableFunc(r.dashboard, func(a, b Descriptor) int { return b.Popularity - a.Popularity })

	return r, nil
}

// IsValid reports whether name is exactly one of the registered genres.
func (r *Registry) IsValid(name string) bool {
	_, ok := r.byName[name]
	return ok
}

// Find looks a genre up ignoring case.
func (r *Registry) Find(name string) (Descriptor, bool) {
	d, ok := r.byFold[strings.ToLower(strings.TrimSpace(name))]
	return d, ok
}

// Names returns every genre name in alphabetical order.
func (r *Registry) Names() []string {
	return slices.Clone(r.names)
}

// Descriptors returns every descriptor in alphabetical order.
func (r *Registry) Descriptors() []Descriptor {
	return slices.Clone(r.sorted)
}

// Dashboard returns featured genres, most popular first.
func (r *Registry) Dashboard() []Descriptor {
	return slices.Clone(r.dashboard)
}

// Suggest returns the registered genre closest to name, if any is close enough.
func (r *Registry) Suggest(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}
	if d, ok := r.Find(name); ok {
		return d.Name, true
	}

	ranks := fuzzy.RankFindNormalizedFold(name, r.names)
	if len(ranks) == 0 {
		return "", false
	}
	sort.Sort(ranks)
	return ranks[0].Target, true
}
