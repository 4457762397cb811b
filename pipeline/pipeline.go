// CLAUDE:SUMMARY Two-phase build orchestration — parallel extraction, asset hashing, in-place substitution, manifest write.
// Package pipeline drives a full asset-revisioning build: it discovers the
// HTML documents under a root, runs the extraction pass on each (in
// parallel, into one shared dependency graph), content-hashes every
// referenced asset, then runs the substitution pass and overwrites each
// document in place. The finished build is recorded in a SQLite manifest.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/net/html"

	"github.com/hazyhaar/revgraph/depgraph"
	"github.com/hazyhaar/revgraph/hashver"
	"github.com/hazyhaar/revgraph/idgen"
	"github.com/hazyhaar/revgraph/pipeline/internal/store"
	"github.com/hazyhaar/revgraph/rewrite"
)

// Pipeline is one configured build environment.
type Pipeline struct {
	cfg    *Config
	logger *slog.Logger
	store  *store.Store
	newID  idgen.Generator
}

// New creates a Pipeline. The manifest database is opened (and created)
// immediately; the root must exist.
func New(cfg *Config, logger *slog.Logger) (*Pipeline, error) {
	cfg.defaults()
	if cfg.Root == "" {
		return nil, fmt.Errorf("pipeline: root not configured")
	}
	abs, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("pipeline: root: %w", err)
	}
	cfg.Root = abs
	info, err := os.Stat(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("pipeline: root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("pipeline: root %s is not a directory", cfg.Root)
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("pipeline: manifest: %w", err)
	}
	return &Pipeline{
		cfg:    cfg,
		logger: logger,
		store:  st,
		newID:  idgen.Prefixed("bld_", idgen.Default),
	}, nil
}

// Close closes the manifest database.
func (p *Pipeline) Close() error {
	return p.store.Close()
}

// Report summarises one build.
type Report struct {
	BuildID   string        `json:"build_id,omitempty"`
	Root      string        `json:"root"`
	Documents int           `json:"documents"`
	Assets    int           `json:"assets"`
	Edges     int           `json:"edges"`
	Duration  time.Duration `json:"duration_ns"`
}

// document is the per-file working state carried between the two phases.
type document struct {
	path  string
	rw    *rewrite.Rewriter
	tree  *html.Node
	marks []rewrite.Mark
}

// Build runs the full two-phase build and records it in the manifest.
func (p *Pipeline) Build(ctx context.Context) (*Report, error) {
	started := time.Now()

	docs, g, err := p.extractAll(ctx)
	if err != nil {
		return nil, err
	}

	// Hash and materialize every referenced asset. This happens strictly
	// after all extractions: substitution below relies on the versioner
	// having a stable answer for every edge target.
	v := hashver.New(p.cfg.HashLen)
	edges := g.Edges()
	seen := make(map[string]bool)
	var assets []store.Asset
	for _, e := range edges {
		if seen[e.To] {
			continue
		}
		seen[e.To] = true
		hashed, err := v.Materialize(e.To)
		if err != nil {
			return nil, fmt.Errorf("pipeline: %w", err)
		}
		assets = append(assets, store.Asset{Path: e.To, HashedPath: hashed})
	}

	// Substitution phase: rewrite marked attributes and overwrite each
	// document at its original location.
	for _, d := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := d.rw.Substitute(d.marks, v.HashedPath); err != nil {
			return nil, fmt.Errorf("pipeline: %w", err)
		}
		var buf bytes.Buffer
		if err := html.Render(&buf, d.tree); err != nil {
			return nil, fmt.Errorf("pipeline: render %s: %w", d.path, err)
		}
		if err := os.WriteFile(d.path, buf.Bytes(), 0o644); err != nil {
			return nil, fmt.Errorf("pipeline: write %s: %w", d.path, err)
		}
	}

	report := &Report{
		BuildID:   p.newID(),
		Root:      p.cfg.Root,
		Documents: len(docs),
		Assets:    len(assets),
		Edges:     len(edges),
		Duration:  time.Since(started),
	}

	storeEdges := make([]store.Edge, len(edges))
	for i, e := range edges {
		storeEdges[i] = store.Edge{FromPath: e.From, ToPath: e.To}
	}
	build := &store.Build{
		ID:         report.BuildID,
		Root:       report.Root,
		Documents:  report.Documents,
		Assets:     report.Assets,
		Edges:      report.Edges,
		StartedAt:  started.UnixMilli(),
		FinishedAt: time.Now().UnixMilli(),
	}
	if err := p.store.InsertBuild(ctx, build, assets, storeEdges); err != nil {
		return nil, fmt.Errorf("pipeline: record build: %w", err)
	}

	p.logger.Info("build complete",
		"build_id", report.BuildID,
		"documents", report.Documents,
		"assets", report.Assets,
		"edges", report.Edges,
		"duration", report.Duration)
	return report, nil
}

// Analyze runs the extraction phase only and reports what a build would
// touch. Nothing is hashed, rewritten or recorded.
func (p *Pipeline) Analyze(ctx context.Context) (*Report, error) {
	started := time.Now()
	docs, g, err := p.extractAll(ctx)
	if err != nil {
		return nil, err
	}
	edges := g.Edges()
	seen := make(map[string]bool)
	for _, e := range edges {
		seen[e.To] = true
	}
	return &Report{
		Root:      p.cfg.Root,
		Documents: len(docs),
		Assets:    len(seen),
		Edges:     len(edges),
		Duration:  time.Since(started),
	}, nil
}

// extractAll finds the documents under the root and runs the extraction
// pass on each with bounded parallelism. The graph supports concurrent
// edge insertion; everything else is per-document state.
func (p *Pipeline) extractAll(ctx context.Context) ([]*document, *depgraph.Graph, error) {
	paths, err := p.findDocuments()
	if err != nil {
		return nil, nil, err
	}

	g := depgraph.New(p.cfg.Root)
	docs := make([]*document, len(paths))
	errs := make([]error, len(paths))

	sem := make(chan struct{}, p.cfg.Workers)
	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int, path string) {
			defer wg.Done()
			defer func() { <-sem }()
			if err := ctx.Err(); err != nil {
				errs[idx] = err
				return
			}
			docs[idx], errs[idx] = p.extractOne(path, g)
		}(i, path)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, nil, fmt.Errorf("pipeline: extract %s: %w", paths[i], err)
		}
	}
	return docs, g, nil
}

func (p *Pipeline) extractOne(path string, g *depgraph.Graph) (*document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	tree, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	rw := rewrite.New(g.Get(path), g)
	marks := rw.Extract(tree)
	p.logger.Debug("extracted", "document", path, "marked_elements", len(marks))
	return &document{path: path, rw: rw, tree: tree, marks: marks}, nil
}

// findDocuments walks the root and returns document paths in sorted
// (walk) order, filtered by the configured extensions. Content-addressed
// copies left by a previous build are not documents: rewriting one in
// place would break the name/digest match it exists for.
func (p *Pipeline) findDocuments() ([]string, error) {
	var paths []string
	err := filepath.WalkDir(p.cfg.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		for _, want := range p.cfg.Extensions {
			if ext == want {
				prior, err := hashver.IsHashedCopy(path, p.cfg.HashLen)
				if err != nil {
					return err
				}
				if !prior {
					paths = append(paths, path)
				}
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("pipeline: scan %s: %w", p.cfg.Root, err)
	}
	return paths, nil
}
