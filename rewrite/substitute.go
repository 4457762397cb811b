// CLAUDE:SUMMARY Substitution pass — rewrites exactly the marked attributes to their hashed filenames.
package rewrite

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hazyhaar/revgraph/urlref"
)

// HashedURL maps the absolute path of a local asset to the absolute path of
// its content-addressed copy. An error is fatal for the whole document: it
// means the hashing collaborator disagrees with what extraction accepted.
type HashedURL func(abs string) (string, error)

// Substitute consumes the mark list produced by Extract, in order, and
// rewrites each marked attribute in place. It never re-runs classification:
// which references were dependencies was settled during extraction and is
// read back from the graph. Unmarked attributes are untouched.
func (r *Rewriter) Substitute(marks []Mark, hashed HashedURL) error {
	for _, m := range marks {
		for _, name := range m.Attrs {
			kind, ok := kindOf(name)
			if !ok {
				return fmt.Errorf("rewrite: %s: mark for unknown attribute %q", r.Doc.Path, name)
			}
			value, ok := getAttr(m.El, name)
			if !ok {
				return fmt.Errorf("rewrite: %s: marked attribute %q vanished from element", r.Doc.Path, name)
			}

			var rewritten string
			var err error
			switch kind {
			case KindURL:
				rewritten, err = r.rewriteURL(value, hashed)
			case KindSrcSet:
				rewritten, err = r.rewriteSrcSet(value, hashed)
			}
			if err != nil {
				return fmt.Errorf("rewrite: %s: attribute %q: %w", r.Doc.Path, name, err)
			}
			setAttr(m.El, name, rewritten)
		}
	}
	return nil
}

// rewriteURL replaces the path portion of a single-reference value with its
// hashed form. The trailing query/fragment portion is reassembled
// byte-identically. A marked value that no longer parses or resolves is an
// invariant violation, not a skip.
func (r *Rewriter) rewriteURL(value string, hashed HashedURL) (string, error) {
	ref, ok := urlref.Parse(value)
	if !ok {
		return "", fmt.Errorf("marked value %q no longer parses", value)
	}
	abs := r.Doc.Resolve(ref.Path)
	if !r.Doc.DependsOn(abs) {
		return "", fmt.Errorf("marked value %q has no recorded dependency edge", value)
	}
	hashedAbs, err := hashed(abs)
	if err != nil {
		return "", err
	}
	return swapBase(ref.Path, hashedAbs) + ref.Trailing, nil
}

// rewriteSrcSet rewrites every entry whose URL was recorded as a dependency
// and drops the rest. Descriptors of surviving entries are preserved
// verbatim and relative order is kept. At least one entry must survive:
// the attribute was only marked because one resolved.
func (r *Rewriter) rewriteSrcSet(value string, hashed HashedURL) (string, error) {
	var kept []srcsetEntry
	for _, e := range splitSrcSet(value) {
		ref, ok := urlref.Parse(e.url)
		if !ok {
			continue
		}
		abs := r.Doc.Resolve(ref.Path)
		if !r.Doc.DependsOn(abs) {
			continue
		}
		hashedAbs, err := hashed(abs)
		if err != nil {
			return "", err
		}
		kept = append(kept, srcsetEntry{
			url:  swapBase(ref.Path, hashedAbs) + ref.Trailing,
			desc: e.desc,
		})
	}
	if len(kept) == 0 {
		return "", fmt.Errorf("marked list %q lost all entries", value)
	}
	return joinSrcSet(kept), nil
}

// swapBase replaces the final segment of the original reference path with
// the basename of the hashed copy, keeping the reference's own directory
// prefix (relative or root-relative) intact.
func swapBase(refPath, hashedAbs string) string {
	base := filepath.Base(hashedAbs)
	if i := strings.LastIndexByte(refPath, '/'); i >= 0 {
		return refPath[:i+1] + base
	}
	return base
}
