// Package materialize fetches every file of a template manifest and writes
// it under the manifest's destination root.
//
// Entries are fetched concurrently. The first failure cancels the shared
// context so in-flight siblings stop, and the error names the failing entry.
// Files written before the failure stay on disk unless the materializer was
// built WithAtomicCommit, in which case nothing is written until every entry
// has been fetched.
package materialize

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/woolball-xyz/woolball-cli/internal/fetch"
	"github.com/woolball-xyz/woolball-cli/internal/templates"
)

// Placeholder is replaced with the API key in substitutable files
const Placeholder = "{{API_KEY}}"

const (
	dirMode  os.FileMode = 0o755
	fileMode os.FileMode = 0o644
)

// ProgressFunc is called once per written file. Calls are serialized.
type ProgressFunc func(relPath string)

// Materializer writes manifests to disk
type Materializer struct {
	fetcher     fetch.Fetcher
	logger      *zap.Logger
	concurrency int
	atomic      bool
	progress    ProgressFunc
	progressMu  sync.Mutex
}

// Option configures a Materializer
type Option func(*Materializer)

// WithLogger sets the logger. The API key is never logged.
func WithLogger(l *zap.Logger) Option {
	return func(m *Materializer) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithConcurrency bounds the number of entries processed at once; n <= 0
// means one goroutine per entry
func WithConcurrency(n int) Option {
	return func(m *Materializer) {
		m.concurrency = n
	}
}

// WithAtomicCommit defers all writes until every entry has been fetched
func WithAtomicCommit() Option {
	return func(m *Materializer) {
		m.atomic = true
	}
}

// WithProgress registers a callback fired after each file is written
func WithProgress(fn ProgressFunc) Option {
	return func(m *Materializer) {
		m.progress = fn
	}
}

// New creates a Materializer that downloads through f
func New(f fetch.Fetcher, opts ...Option) *Materializer {
	if f == nil {
		panic("materialize: Fetcher must not be nil")
	}
	m := &Materializer{
		fetcher: f,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// File is one written manifest entry
type File struct {
	RelPath string
	Path    string
}

// Result maps each manifest relative path to the absolute path written
type Result struct {
	Root  string
	Paths map[string]string
}

// Sorted returns the written files ordered by relative path
func (r *Result) Sorted() []File {
	files := make([]File, 0, len(r.Paths))
	for rel, p := range r.Paths {
		files = append(files, File{RelPath: rel, Path: p})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].RelPath < files[j].RelPath })
	return files
}

// Substitute replaces the first occurrence of Placeholder with secret.
// Content without the placeholder is returned unchanged.
func Substitute(content []byte, secret string) []byte {
	return bytes.Replace(content, []byte(Placeholder), []byte(secret), 1)
}

// Materialize creates the destination root, fetches every entry, applies
// the API key to substitutable entries and writes the files
func (m *Materializer) Materialize(ctx context.Context, manifest *templates.Manifest, secret string) (*Result, error) {
	if err := manifest.Validate(); err != nil {
		return nil, err
	}

	root, err := filepath.Abs(manifest.DestinationRoot)
	if err != nil {
		return nil, &FilesystemError{Op: "resolve", Path: manifest.DestinationRoot, Err: err}
	}
	if err := os.MkdirAll(root, dirMode); err != nil {
		return nil, &FilesystemError{Op: "mkdir", Path: root, Err: err}
	}

	logger := m.logger.With(zap.String("kind", string(manifest.Kind)), zap.String("root", root))
	logger.Debug("materializing",
		zap.Int("entries", len(manifest.Entries)),
		zap.Bool("atomic", m.atomic),
		zap.Int("concurrency", m.concurrency),
	)

	var paths map[string]string
	if m.atomic {
		paths, err = m.materializeStaged(ctx, logger, root, manifest, secret)
	} else {
		paths, err = m.materializeDirect(ctx, logger, root, manifest, secret)
	}
	if err != nil {
		logger.Warn("materialization failed", zap.Error(err))
		return nil, err
	}

	logger.Info("materialized", zap.Int("files", len(paths)))
	return &Result{Root: root, Paths: paths}, nil
}

// materializeDirect writes each entry as soon as it is fetched
func (m *Materializer) materializeDirect(ctx context.Context, logger *zap.Logger, root string, manifest *templates.Manifest, secret string) (map[string]string, error) {
	g, gctx := m.group(ctx)

	var mu sync.Mutex
	paths := make(map[string]string, len(manifest.Entries))

	for _, rel := range manifest.RelPaths() {
		rel := rel
		src := manifest.Entries[rel]
		substitute := manifest.Substitutable(rel)

		g.Go(func() error {
			content, err := m.fetchEntry(gctx, logger, rel, src, substitute, secret)
			if err != nil {
				return err
			}
			// A sibling already failed; do not add more files to a failed run
			if err := gctx.Err(); err != nil {
				return &EntryError{RelPath: rel, Err: err}
			}
			p, err := m.writeEntry(logger, root, rel, content)
			if err != nil {
				return err
			}

			mu.Lock()
			paths[rel] = p
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

// materializeStaged fetches every entry into memory and writes only after
// all fetches succeeded
func (m *Materializer) materializeStaged(ctx context.Context, logger *zap.Logger, root string, manifest *templates.Manifest, secret string) (map[string]string, error) {
	g, gctx := m.group(ctx)

	var mu sync.Mutex
	staged := make(map[string][]byte, len(manifest.Entries))

	for _, rel := range manifest.RelPaths() {
		rel := rel
		src := manifest.Entries[rel]
		substitute := manifest.Substitutable(rel)

		g.Go(func() error {
			content, err := m.fetchEntry(gctx, logger, rel, src, substitute, secret)
			if err != nil {
				return err
			}
			mu.Lock()
			staged[rel] = content
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	paths := make(map[string]string, len(staged))
	for _, rel := range manifest.RelPaths() {
		p, err := m.writeEntry(logger, root, rel, staged[rel])
		if err != nil {
			return nil, err
		}
		paths[rel] = p
	}
	return paths, nil
}

func (m *Materializer) group(ctx context.Context) (*errgroup.Group, context.Context) {
	g, gctx := errgroup.WithContext(ctx)
	if m.concurrency > 0 {
		g.SetLimit(m.concurrency)
	}
	return g, gctx
}

func (m *Materializer) fetchEntry(ctx context.Context, logger *zap.Logger, rel, src string, substitute bool, secret string) ([]byte, error) {
	content, err := m.fetcher.Fetch(ctx, src)
	if err != nil {
		return nil, &EntryError{RelPath: rel, Err: err}
	}

	if substitute {
		if !bytes.Contains(content, []byte(Placeholder)) {
			logger.Warn("placeholder not found, writing file unchanged", zap.String("file", rel))
			return content, nil
		}
		content = Substitute(content, secret)
	}

	logger.Debug("fetched entry",
		zap.String("file", rel),
		zap.String("url", src),
		zap.Int("bytes", len(content)),
		zap.Bool("substituted", substitute),
	)
	return content, nil
}

func (m *Materializer) writeEntry(logger *zap.Logger, root, rel string, content []byte) (string, error) {
	p, err := templates.JoinWithin(root, rel)
	if err != nil {
		return "", &EntryError{RelPath: rel, Err: &FilesystemError{Op: "resolve", Path: rel, Err: err}}
	}

	// Nested entries need their parent directories first
	if err := os.MkdirAll(filepath.Dir(p), dirMode); err != nil {
		return "", &EntryError{RelPath: rel, Err: &FilesystemError{Op: "mkdir", Path: filepath.Dir(p), Err: err}}
	}
	if err := os.WriteFile(p, content, fileMode); err != nil {
		return "", &EntryError{RelPath: rel, Err: &FilesystemError{Op: "write", Path: p, Err: err}}
	}

	logger.Debug("wrote entry", zap.String("file", rel), zap.String("path", p))
	m.report(rel)
	return p, nil
}

func (m *Materializer) report(rel string) {
	if m.progress == nil {
		return
	}
	m.progressMu.Lock()
	defer m.progressMu.Unlock()
	m.progress(rel)
}
