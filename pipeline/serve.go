// CLAUDE:SUMMARY Manifest queries and the preview HTTP server for a built root.
package pipeline

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hazyhaar/revgraph/pipeline/internal/store"
	"github.com/hazyhaar/revgraph/shield"
)

// Stats is the manifest view of the most recent build.
type Stats struct {
	Build  *store.Build  `json:"build"`
	Assets []store.Asset `json:"assets,omitempty"`
	Edges  []store.Edge  `json:"edges,omitempty"`
}

// Stats returns the latest recorded build with its assets and edges.
// A manifest with no builds yet yields a Stats with a nil Build.
func (p *Pipeline) Stats(ctx context.Context) (*Stats, error) {
	b, err := p.store.LatestBuild(ctx)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return &Stats{}, nil
	}
	assets, err := p.store.BuildAssets(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	edges, err := p.store.BuildEdges(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	return &Stats{Build: b, Assets: assets, Edges: edges}, nil
}

// Router builds the preview router: the built root as static files plus a
// small JSON API over the manifest.
func (p *Pipeline) Router() chi.Router {
	r := chi.NewRouter()
	for _, mw := range shield.PreviewStack(p.logger) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, 200, map[string]string{"status": "ok"})
	})

	r.Get("/api/build", func(w http.ResponseWriter, req *http.Request) {
		stats, err := p.Stats(req.Context())
		if err != nil {
			shield.GetLogger(req.Context()).Error("manifest query failed", "error", err)
			writeError(w, 500, err)
			return
		}
		writeJSON(w, 200, stats)
	})

	r.Get("/api/build/dependents", func(w http.ResponseWriter, req *http.Request) {
		asset := req.URL.Query().Get("asset")
		if asset == "" {
			writeJSON(w, 400, map[string]string{"error": "asset query parameter required"})
			return
		}
		b, err := p.store.LatestBuild(req.Context())
		if err != nil {
			shield.GetLogger(req.Context()).Error("manifest query failed", "error", err)
			writeError(w, 500, err)
			return
		}
		if b == nil {
			writeJSON(w, 404, map[string]string{"error": "no builds recorded"})
			return
		}
		docs, err := p.store.Dependents(req.Context(), b.ID, asset)
		if err != nil {
			shield.GetLogger(req.Context()).Error("dependents query failed", "error", err, "asset", asset)
			writeError(w, 500, err)
			return
		}
		writeJSON(w, 200, map[string]any{"asset": asset, "dependents": docs})
	})

	r.Handle("/*", http.FileServer(http.Dir(p.cfg.Root)))
	return r
}

// Serve runs the preview server until ctx is cancelled.
func (p *Pipeline) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           p.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		p.logger.Info("preview server starting", "addr", addr, "root", p.cfg.Root)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
