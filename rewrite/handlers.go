// CLAUDE:SUMMARY Fixed table of dependency-bearing attributes and the srcset entry grammar.
// Package rewrite is the two-phase extract/substitute engine over parsed
// HTML trees: extraction finds attributes referencing local files and
// registers dependency edges; substitution rewrites exactly those
// attributes to their content-hashed form.
package rewrite

import (
	"strings"

	"golang.org/x/net/html"
)

// AttrKind selects how an attribute's value is classified and rewritten.
type AttrKind int

const (
	// KindURL is a single-reference attribute (href, src).
	KindURL AttrKind = iota
	// KindSrcSet is a comma-separated list of URL + descriptor entries.
	KindSrcSet
)

type tableEntry struct {
	name string
	kind AttrKind
}

// handlerTable lists the recognized attributes. Order is significant: it is
// the per-element evaluation order during extraction, which fixes the order
// of attribute names inside each Mark and keeps repeated extractions
// identical. See the WHATWG attribute index for the URL-bearing set.
var handlerTable = []tableEntry{
	{"href", KindURL},
	{"src", KindURL},
	{"poster", KindURL},
	{"srcset", KindSrcSet},
	{"data-srcset", KindSrcSet},
}

// kindOf looks up the kind for a recognized attribute name. Marked names
// always come from handlerTable, so the lookup cannot miss for them.
func kindOf(name string) (AttrKind, bool) {
	for _, e := range handlerTable {
		if e.name == name {
			return e.kind, true
		}
	}
	return 0, false
}

// srcsetEntry is one candidate of a srcset-style list: a URL token and its
// opaque descriptor suffix ("1x", "480w", possibly empty).
type srcsetEntry struct {
	url  string
	desc string
}

// splitSrcSet splits a srcset value on commas. Each entry's first
// whitespace-delimited token is its URL; the rest is the descriptor,
// preserved verbatim. Empty entries are skipped.
func splitSrcSet(value string) []srcsetEntry {
	var entries []srcsetEntry
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		url := part
		desc := ""
		if i := strings.IndexFunc(part, isSpaceRune); i >= 0 {
			url = part[:i]
			desc = strings.TrimSpace(part[i:])
		}
		entries = append(entries, srcsetEntry{url: url, desc: desc})
	}
	return entries
}

// joinSrcSet reassembles entries with a single comma separator and no
// extraneous whitespace.
func joinSrcSet(entries []srcsetEntry) string {
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.desc == "" {
			parts = append(parts, e.url)
			continue
		}
		parts = append(parts, e.url+" "+e.desc)
	}
	return strings.Join(parts, ",")
}

func isSpaceRune(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\f':
		return true
	}
	return false
}

// getAttr returns the value of an attribute on a node.
func getAttr(n *html.Node, key string) (string, bool) {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}

// setAttr overwrites the value of an existing attribute in place.
func setAttr(n *html.Node, key, value string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = value
			return
		}
	}
}
