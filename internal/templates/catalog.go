package templates

import (
	_ "embed"
	"fmt"
	"net/url"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var builtinCatalog []byte

// Catalog is the on-disk description of every published template
type Catalog struct {
	BaseURL  string                    `yaml:"base_url"`
	Features map[string]CatalogFeature `yaml:"features"`
}

// CatalogFeature lists the templates published for one feature
type CatalogFeature struct {
	Description string            `yaml:"description"`
	Templates   []CatalogTemplate `yaml:"templates"`
}

// CatalogTemplate describes one template. Files maps destination relative
// paths to source paths, resolved against the catalog base URL unless they
// are absolute URLs themselves.
type CatalogTemplate struct {
	Kind        Kind              `yaml:"kind"`
	Description string            `yaml:"description"`
	Destination string            `yaml:"destination"`
	Files       map[string]string `yaml:"files"`
}

// ParseCatalog decodes catalog YAML
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse template catalog: %w", err)
	}
	if len(c.Features) == 0 {
		return nil, fmt.Errorf("template catalog declares no features")
	}
	return &c, nil
}

// BuiltinCatalog returns the catalog compiled into the binary
func BuiltinCatalog() *Catalog {
	c, err := ParseCatalog(builtinCatalog)
	if err != nil {
		panic(fmt.Sprintf("templates: embedded catalog is invalid: %v", err))
	}
	return c
}

// resolveSource turns a catalog source path into an absolute URL
func resolveSource(baseURL, src string) (string, error) {
	if u, err := url.Parse(src); err == nil && u.Scheme != "" {
		return src, nil
	}
	if baseURL == "" {
		return "", fmt.Errorf("source %q is relative but no base URL is set", src)
	}
	return url.JoinPath(strings.TrimSuffix(baseURL, "/"), strings.Split(src, "/")...)
}
