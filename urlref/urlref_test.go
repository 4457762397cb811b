package urlref

import "testing"

func TestParse_PlainPath(t *testing.T) {
	// WHAT: A bare path splits with an empty (not absent) trailing portion.
	// WHY: Substitution reassembles Path+Trailing; trailing must be "".
	ref, ok := Parse("img/pic.jpg")
	if !ok {
		t.Fatal("expected match")
	}
	if ref.Path != "img/pic.jpg" || ref.Trailing != "" {
		t.Errorf("got (%q, %q)", ref.Path, ref.Trailing)
	}
}

func TestParse_QueryAndFragment(t *testing.T) {
	// WHAT: Query and fragment land in Trailing, untouched.
	// WHY: Rewriting must only ever replace the path portion.
	ref, ok := Parse("pic.jpg?v=1#frag")
	if !ok {
		t.Fatal("expected match")
	}
	if ref.Path != "pic.jpg" {
		t.Errorf("path = %q", ref.Path)
	}
	if ref.Trailing != "?v=1#frag" {
		t.Errorf("trailing = %q", ref.Trailing)
	}
	if ref.String() != "pic.jpg?v=1#frag" {
		t.Errorf("round trip = %q", ref.String())
	}
}

func TestParse_FragmentOnly(t *testing.T) {
	// WHAT: "#frag" has no path portion and is not a candidate.
	// WHY: Anchor-only links never become dependencies.
	if _, ok := Parse("#top"); ok {
		t.Error("fragment-only value matched")
	}
}

func TestParse_EmptyAndWhitespace(t *testing.T) {
	// WHAT: Empty and whitespace-only values do not match.
	// WHY: The path prefix must be non-empty.
	for _, s := range []string{"", " ", "\t\n"} {
		if _, ok := Parse(s); ok {
			t.Errorf("%q matched", s)
		}
	}
}

func TestParse_RejectsDirtyTrailing(t *testing.T) {
	// WHAT: Whitespace or ')' after the path rejects the whole value.
	// WHY: Such values are not a single clean reference.
	for _, s := range []string{"a.png extra", "a.png?x y", "a.png?x)", "a.png#f rag"} {
		if _, ok := Parse(s); ok {
			t.Errorf("%q matched", s)
		}
	}
}

func TestParse_RemoteIsSyntacticallyCandidate(t *testing.T) {
	// WHAT: An absolute remote URL still parses at this layer.
	// WHY: Scheme rejection happens via file existence, not syntax.
	ref, ok := Parse("http://example.com/style.css")
	if !ok {
		t.Fatal("expected match")
	}
	if ref.Path != "http://example.com/style.css" {
		t.Errorf("path = %q", ref.Path)
	}
}

func TestParse_TrailingMayRepeatDelimiters(t *testing.T) {
	// WHAT: Extra '?' and '#' inside the trailing portion are allowed.
	// WHY: The split happens at the first delimiter only.
	ref, ok := Parse("a.js?x=1?y=2#a#b")
	if !ok {
		t.Fatal("expected match")
	}
	if ref.Path != "a.js" || ref.Trailing != "?x=1?y=2#a#b" {
		t.Errorf("got (%q, %q)", ref.Path, ref.Trailing)
	}
}
