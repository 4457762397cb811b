// CLAUDE:SUMMARY Extraction pass — walks the tree once, classifies attribute values, registers dependency edges.
package rewrite

import (
	"os"

	"golang.org/x/net/html"

	"github.com/hazyhaar/revgraph/depgraph"
	"github.com/hazyhaar/revgraph/urlref"
)

// Mark records one element and the attribute names on it that qualified as
// dependency-bearing during extraction. Substitution rewrites exactly these
// attributes, in this order, and nothing else.
type Mark struct {
	El    *html.Node
	Attrs []string
}

// Rewriter runs the two passes for a single document against the shared
// dependency graph. Doc is the document's own graph node; its path is the
// base for resolving relative references.
type Rewriter struct {
	Doc   *depgraph.Node
	Graph *depgraph.Graph

	// Exists gates whether a resolved path becomes a dependency.
	// Nil means "regular file on disk".
	Exists func(abs string) bool
}

// New creates a Rewriter for the document node doc.
func New(doc *depgraph.Node, g *depgraph.Graph) *Rewriter {
	return &Rewriter{Doc: doc, Graph: g}
}

func (r *Rewriter) exists(abs string) bool {
	if r.Exists != nil {
		return r.Exists(abs)
	}
	info, err := os.Stat(abs)
	return err == nil && info.Mode().IsRegular()
}

// Classify resolves a raw attribute value to the absolute path of a local
// file, or reports that the value is not a local dependency. Pure: no edge
// registration, no tree mutation. Remote URLs, data URIs and fragment-only
// values all fail here, either at parse or at the existence gate.
func (r *Rewriter) Classify(value string) (string, bool) {
	ref, ok := urlref.Parse(value)
	if !ok {
		return "", false
	}
	abs := r.Doc.Resolve(ref.Path)
	if !r.exists(abs) {
		return "", false
	}
	return abs, true
}

// Extract walks the tree in document order and returns the mark list.
// Every classified local path has its dependency edge registered before
// Extract returns, so substitution never needs the filesystem to decide
// what was a dependency. Running Extract twice on an unmodified tree
// yields an identical mark list.
func (r *Rewriter) Extract(root *html.Node) []Mark {
	var marks []Mark
	walkElements(root, func(el *html.Node) {
		var qualified []string
		for _, entry := range handlerTable {
			value, ok := getAttr(el, entry.name)
			if !ok {
				continue
			}
			switch entry.kind {
			case KindURL:
				abs, ok := r.Classify(value)
				if !ok {
					continue
				}
				r.Doc.DependOn(r.Graph.Get(abs))
				qualified = append(qualified, entry.name)
			case KindSrcSet:
				any := false
				for _, e := range splitSrcSet(value) {
					abs, ok := r.Classify(e.url)
					if !ok {
						continue
					}
					r.Doc.DependOn(r.Graph.Get(abs))
					any = true
				}
				if any {
					qualified = append(qualified, entry.name)
				}
			}
		}
		if len(qualified) > 0 {
			marks = append(marks, Mark{El: el, Attrs: qualified})
		}
	})
	return marks
}

// walkElements visits every element node in document order.
func walkElements(root *html.Node, fn func(*html.Node)) {
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && len(n.Attr) > 0 {
			fn(n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
}
