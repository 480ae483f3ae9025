package templates

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// Selection is the triple a user picks to choose a template
type Selection struct {
	Feature string
	Stack   string
	Variant string
}

func (s Selection) String() string {
	return fmt.Sprintf("%s %s/%s", s.Feature, s.Stack, s.Variant)
}

func (s Selection) normalize() Selection {
	return Selection{
		Feature: strings.ToUpper(strings.TrimSpace(s.Feature)),
		Stack:   strings.ToUpper(strings.TrimSpace(s.Stack)),
		Variant: strings.ToLower(strings.TrimSpace(s.Variant)),
	}
}

// Manifest is the resolved set of files for one scaffold run.
// Entries maps a slash-separated relative path to its source URL.
type Manifest struct {
	Feature         Feature
	Kind            Kind
	Description     string
	DestinationRoot string
	Entries         map[string]string
}

// Substitutable reports whether relPath receives the API key
func (m *Manifest) Substitutable(relPath string) bool {
	return m.Kind.Substitutable(relPath)
}

// RelPaths returns the entry paths sorted
func (m *Manifest) RelPaths() []string {
	paths := make([]string, 0, len(m.Entries))
	for p := range m.Entries {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// SubstitutablePaths returns the sorted entry paths that receive the API key
func (m *Manifest) SubstitutablePaths() []string {
	var out []string
	for _, p := range m.RelPaths() {
		if m.Substitutable(p) {
			out = append(out, p)
		}
	}
	return out
}

// Clone returns a deep copy
func (m *Manifest) Clone() *Manifest {
	c := *m
	c.Entries = make(map[string]string, len(m.Entries))
	for k, v := range m.Entries {
		c.Entries[k] = v
	}
	return &c
}

// Validate checks the structural rules every manifest must satisfy
func (m *Manifest) Validate() error {
	if !m.Kind.Valid() {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidManifest, m.Kind)
	}
	if strings.TrimSpace(m.DestinationRoot) == "" {
		return fmt.Errorf("%w: destination root is required", ErrInvalidManifest)
	}
	if len(m.Entries) == 0 {
		return fmt.Errorf("%w: %s has no entries", ErrInvalidManifest, m.Kind)
	}
	for rel, src := range m.Entries {
		if err := ValidateRelPath(rel); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidManifest, err)
		}
		u, err := url.Parse(src)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: %s has invalid source URL %q", ErrInvalidManifest, rel, src)
		}
	}
	return nil
}

// ValidateRelPath rejects empty, absolute and escaping relative paths
func ValidateRelPath(rel string) error {
	if strings.TrimSpace(rel) == "" {
		return fmt.Errorf("relative path is empty")
	}
	slashed := strings.ReplaceAll(rel, "\\", "/")
	if path.IsAbs(slashed) || filepath.IsAbs(rel) || filepath.VolumeName(rel) != "" {
		return fmt.Errorf("relative path %q is absolute", rel)
	}
	for _, seg := range strings.Split(slashed, "/") {
		if seg == ".." {
			return fmt.Errorf("relative path %q leaves the destination root", rel)
		}
	}
	return nil
}

// JoinWithin joins rel to root and ensures the result stays on or below root
func JoinWithin(root, rel string) (string, error) {
	if err := ValidateRelPath(rel); err != nil {
		return "", err
	}
	full := filepath.Clean(filepath.Join(root, filepath.FromSlash(rel)))
	cleanRoot := filepath.Clean(root)

	// Ensure the resolved path is still within root
	if full != cleanRoot && !strings.HasPrefix(full, strings.TrimSuffix(cleanRoot, string(filepath.Separator))+string(filepath.Separator)) {
		return "", fmt.Errorf("relative path %q attempts to write outside %s", rel, root)
	}
	return full, nil
}
