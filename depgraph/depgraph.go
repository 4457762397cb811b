// CLAUDE:SUMMARY Project-wide file dependency graph with get-or-create nodes and concurrent edge insertion.
// Package depgraph models the project-wide dependency graph of a build:
// one node per absolute file path, directed edges "document depends on asset".
// Node creation and edge insertion are safe for concurrent use so that
// extraction may run in parallel across documents.
package depgraph

import (
	"path/filepath"
	"sort"
	"sync"
)

// Graph holds all nodes of one build, keyed by absolute path.
type Graph struct {
	root string

	mu    sync.Mutex
	nodes map[string]*Node
}

// Node is a single file in the graph. Path is absolute and cleaned.
type Node struct {
	Path  string
	graph *Graph

	mu    sync.Mutex
	edges map[string]*Node
}

// New creates an empty graph. root is the build root used to resolve
// root-relative references ("/img/x.png").
func New(root string) *Graph {
	return &Graph{
		root:  filepath.Clean(root),
		nodes: make(map[string]*Node),
	}
}

// Root returns the build root the graph resolves against.
func (g *Graph) Root() string { return g.root }

// Get returns the node for the given absolute path, creating it if needed.
func (g *Graph) Get(path string) *Node {
	path = filepath.Clean(path)
	g.mu.Lock()
	defer g.mu.Unlock()
	if n, ok := g.nodes[path]; ok {
		return n
	}
	n := &Node{Path: path, graph: g, edges: make(map[string]*Node)}
	g.nodes[path] = n
	return n
}

// Nodes returns all node paths, sorted.
func (g *Graph) Nodes() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	paths := make([]string, 0, len(g.nodes))
	for p := range g.nodes {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Edge is one directed dependency, From document to To asset.
type Edge struct {
	From string
	To   string
}

// Edges returns every edge in the graph, sorted by (From, To).
func (g *Graph) Edges() []Edge {
	g.mu.Lock()
	nodes := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		nodes = append(nodes, n)
	}
	g.mu.Unlock()

	var edges []Edge
	for _, n := range nodes {
		for _, to := range n.Dependencies() {
			edges = append(edges, Edge{From: n.Path, To: to})
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
	return edges
}

// Resolve turns a reference found inside this node's file into an absolute
// path. Root-relative references ("/x") resolve against the graph root,
// everything else against the node's own directory. Absolute filesystem
// paths pass through cleaned.
func (n *Node) Resolve(ref string) string {
	if ref == "" {
		return ""
	}
	if filepath.IsAbs(ref) {
		// In attribute context a leading slash means site-root relative.
		return filepath.Join(n.graph.root, ref)
	}
	return filepath.Join(filepath.Dir(n.Path), ref)
}

// DependOn records the edge n → other. Re-adding an existing edge is a no-op.
func (n *Node) DependOn(other *Node) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.edges[other.Path] = other
}

// DependsOn reports whether an edge n → path was recorded.
func (n *Node) DependsOn(path string) bool {
	path = filepath.Clean(path)
	n.mu.Lock()
	defer n.mu.Unlock()
	_, ok := n.edges[path]
	return ok
}

// Dependencies returns the paths this node depends on, sorted.
func (n *Node) Dependencies() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	paths := make([]string, 0, len(n.edges))
	for p := range n.edges {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
