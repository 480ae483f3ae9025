package templates

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry maps selections to manifests. It is built once and never
// modified afterwards, so lookups need no locking.
type Registry struct {
	baseURL   string
	manifests map[Selection]*Manifest
	features  map[string]string
}

// RegistryOption configures NewRegistry
type RegistryOption func(*registryOptions)

type registryOptions struct {
	baseURL string
}

// WithBaseURL overrides the catalog base URL, e.g. to point at a mirror
func WithBaseURL(u string) RegistryOption {
	return func(o *registryOptions) {
		if u != "" {
			o.baseURL = u
		}
	}
}

// NewRegistry builds a registry from a catalog, validating every manifest
func NewRegistry(c *Catalog, opts ...RegistryOption) (*Registry, error) {
	o := registryOptions{baseURL: c.BaseURL}
	for _, opt := range opts {
		opt(&o)
	}

	r := &Registry{
		baseURL:   o.baseURL,
		manifests: make(map[Selection]*Manifest),
		features:  make(map[string]string),
	}

	for name, feature := range c.Features {
		featureName := strings.ToUpper(strings.TrimSpace(name))
		if featureName == "" {
			return nil, fmt.Errorf("feature name is required")
		}
		r.features[featureName] = feature.Description

		for _, tmpl := range feature.Templates {
			m, err := r.buildManifest(Feature(featureName), tmpl)
			if err != nil {
				return nil, fmt.Errorf("feature %s: %w", featureName, err)
			}
			sel := Selection{Feature: featureName, Stack: m.Kind.Stack(), Variant: m.Kind.Variant()}
			if _, exists := r.manifests[sel]; exists {
				return nil, fmt.Errorf("template %s already registered", sel)
			}
			r.manifests[sel] = m
		}
	}

	return r, nil
}

func (r *Registry) buildManifest(feature Feature, tmpl CatalogTemplate) (*Manifest, error) {
	if !tmpl.Kind.Valid() {
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidManifest, tmpl.Kind)
	}

	m := &Manifest{
		Feature:         feature,
		Kind:            tmpl.Kind,
		Description:     tmpl.Description,
		DestinationRoot: tmpl.Destination,
		Entries:         make(map[string]string, len(tmpl.Files)),
	}
	for rel, src := range tmpl.Files {
		u, err := resolveSource(r.baseURL, src)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", tmpl.Kind, rel, err)
		}
		m.Entries[rel] = u
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Resolve returns a fresh copy of the manifest registered for sel
func (r *Registry) Resolve(sel Selection) (*Manifest, error) {
	m, ok := r.manifests[sel.normalize()]
	if !ok {
		return nil, &UnknownSelectionError{Selection: sel}
	}
	return m.Clone(), nil
}

// Features returns the registered feature names sorted
func (r *Registry) Features() []string {
	out := make([]string, 0, len(r.features))
	for f := range r.features {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// FeatureDescription returns the catalog description for a feature
func (r *Registry) FeatureDescription(feature string) string {
	return r.features[strings.ToUpper(strings.TrimSpace(feature))]
}

// Stacks returns the stacks available for a feature sorted
func (r *Registry) Stacks(feature string) []string {
	feature = strings.ToUpper(strings.TrimSpace(feature))
	seen := make(map[string]bool)
	var out []string
	for sel := range r.manifests {
		if sel.Feature == feature && !seen[sel.Stack] {
			seen[sel.Stack] = true
			out = append(out, sel.Stack)
		}
	}
	sort.Strings(out)
	return out
}

// Variants returns the variants available for a feature and stack sorted
func (r *Registry) Variants(feature, stack string) []string {
	key := Selection{Feature: feature, Stack: stack}.normalize()
	var out []string
	for sel := range r.manifests {
		if sel.Feature == key.Feature && sel.Stack == key.Stack {
			out = append(out, sel.Variant)
		}
	}
	sort.Strings(out)
	return out
}

// Selections returns every registered selection sorted
func (r *Registry) Selections() []Selection {
	out := make([]Selection, 0, len(r.manifests))
	for sel := range r.manifests {
		out = append(out, sel)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Feature != out[j].Feature {
			return out[i].Feature < out[j].Feature
		}
		if out[i].Stack != out[j].Stack {
			return out[i].Stack < out[j].Stack
		}
		return out[i].Variant < out[j].Variant
	})
	return out
}

// BaseURL returns the base URL relative sources were resolved against
func (r *Registry) BaseURL() string {
	return r.baseURL
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
	defaultErr      error
)

// DefaultRegistry returns the registry built from the embedded catalog
func DefaultRegistry() (*Registry, error) {
	defaultOnce.Do(func() {
		defaultRegistry, defaultErr = NewRegistry(BuiltinCatalog())
	})
	return defaultRegistry, defaultErr
}

// Load returns the default registry, or a registry over the embedded
// catalog with a different base URL when baseURL is set
func Load(baseURL string) (*Registry, error) {
	if baseURL == "" {
		return DefaultRegistry()
	}
	return NewRegistry(BuiltinCatalog(), WithBaseURL(baseURL))
}
