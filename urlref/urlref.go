// CLAUDE:SUMMARY Splits attribute values into a path portion and an untouchable query/fragment tail.
// Package urlref decomposes raw HTML attribute values into the path portion
// that may become a local dependency and the trailing query/fragment portion
// that must survive rewriting byte for byte.
package urlref

// Ref is the decomposition of a single candidate resource reference.
// Path never contains '?', '#', whitespace or ')'. Trailing is everything
// from the first '?' or '#' onwards, possibly empty.
type Ref struct {
	Path     string
	Trailing string
}

// String reassembles the reference exactly as it was parsed.
func (r Ref) String() string {
	return r.Path + r.Trailing
}

// Parse reports whether s is a candidate resource reference and, if so,
// returns its (path, trailing) split. The path is the longest non-empty
// prefix free of '?', '#', whitespace and ')'. A non-empty remainder must
// start with '?' or '#' and may not contain whitespace or ')' anywhere,
// otherwise the whole value is rejected.
//
// Remote URLs still parse here; they are excluded later by the
// file-existence check, not by syntax.
func Parse(s string) (Ref, bool) {
	i := 0
	for i < len(s) && !stopByte(s[i]) {
		i++
	}
	if i == 0 {
		return Ref{}, false
	}

	trailing := s[i:]
	if trailing != "" {
		if trailing[0] != '?' && trailing[0] != '#' {
			return Ref{}, false
		}
		for j := 0; j < len(trailing); j++ {
			c := trailing[j]
			if c == ')' || isSpace(c) {
				return Ref{}, false
			}
		}
	}

	return Ref{Path: s[:i], Trailing: trailing}, true
}

func stopByte(c byte) bool {
	return c == '?' || c == '#' || c == ')' || isSpace(c)
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f':
		return true
	}
	return false
}
