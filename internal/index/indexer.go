package index

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"deflens/internal/crawler"
	"deflens/internal/defs"
	"deflens/internal/env"
	"deflens/internal/graph"
)

// Sources names where definition documents come from. Files keep their
// configured order and come before documents found under Dirs.
type Sources struct {
	Files []string
	Dirs  []string
}

// DocumentReport summarises one folded document.
type DocumentReport struct {
	Name  string      `json:"name"`
	Path  string      `json:"path"`
	Stats graph.Stats `json:"stats"`
}

// Report describes a completed build.
type Report struct {
	Documents []DocumentReport `json:"documents"`
	Total     graph.Stats      `json:"total"`
	Entries   int              `json:"entries"`
}

// Encode writes the report as indented JSON.
func (r *Report) Encode(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(r); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

// Indexer orchestrates loading the knowledge base and building the
// association table.
type Indexer struct {
	crawler  *crawler.Crawler
	validate bool
	workers  int
	logger   *slog.Logger
}

type Option func(*Indexer)

// WithValidation checks every document against the definition schema.
func WithValidation(on bool) Option {
	return func(i *Indexer) { i.validate = on }
}

// WithWorkers bounds concurrent document reads.
func WithWorkers(n int) Option {
	return func(i *Indexer) {
		if n > 0 {
			i.workers = n
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(i *Indexer) {
		if l != nil {
			i.logger = l
		}
	}
}

// NewIndexer creates a new indexer.
func NewIndexer(c *crawler.Crawler, opts ...Option) *Indexer {
	i := &Indexer{
		crawler: c,
		workers: 4,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Collect resolves sources into the ordered list of document paths.
func (i *Indexer) Collect(src Sources) ([]string, error) {
	paths := append([]string(nil), src.Files...)
	for _, dir := range src.Dirs {
		err := i.crawler.ScanDir(dir, func(path string) error {
			paths = append(paths, path)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
	}
	return paths, nil
}

// Load reads, parses and sanitizes the documents concurrently. The result
// keeps the order of paths.
func (i *Indexer) Load(ctx context.Context, paths []string) ([]*defs.Document, error) {
	docs := make([]*defs.Document, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(i.workers)
	for n, path := range paths {
		n, path := n, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			doc, err := defs.LoadFile(path, i.validate)
			if err != nil {
				return err
			}
			doc.Root = defs.Sanitize(doc.Root)
			docs[n] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

// Build loads every source and folds the documents, in order, against the
// live root. The returned table is read-only.
func (i *Indexer) Build(ctx context.Context, root env.Object, src Sources) (*graph.Table, *Report, error) {
	paths, err := i.Collect(src)
	if err != nil {
		return nil, nil, err
	}
	docs, err := i.Load(ctx, paths)
	if err != nil {
		return nil, nil, err
	}

	b := graph.NewBuilder()
	report := &Report{}
	for _, doc := range docs {
		stats := b.Add(doc.Root, root)
		report.Documents = append(report.Documents, DocumentReport{Name: doc.Name, Path: doc.Path, Stats: stats})
		i.logger.Debug("folded definitions", "name", doc.Name, "path", doc.Path,
			"recorded", stats.Recorded, "overwritten", stats.Overwritten, "missing", stats.Missing)
	}
	table := b.Build()
	report.Total = table.Stats()
	report.Entries = table.Len()

	i.logger.Info("association table built",
		"documents", len(docs), "entries", report.Entries, "overwritten", report.Total.Overwritten)
	return table, report, nil
}
