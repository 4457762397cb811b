package hashver

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestHashedPath_Shape(t *testing.T) {
	// WHAT: The digest lands between the stem and the extension.
	// WHY: Rewritten references must keep their extension for MIME sniffing.
	dir := t.TempDir()
	path := writeFile(t, dir, "pic.jpg", "fake image bytes")

	v := New(8)
	hashed, err := v.HashedPath(path)
	if err != nil {
		t.Fatal(err)
	}
	base := filepath.Base(hashed)
	if !strings.HasPrefix(base, "pic.") || !strings.HasSuffix(base, ".jpg") {
		t.Errorf("hashed name = %q", base)
	}
	if len(base) != len("pic.")+8+len(".jpg") {
		t.Errorf("hashed name = %q, want 8 digest chars", base)
	}
	if filepath.Dir(hashed) != dir {
		t.Errorf("hashed copy left the directory: %q", hashed)
	}
}

func TestHashedPath_StableAndContentSensitive(t *testing.T) {
	// WHAT: Same content hashes identically; different content differs.
	// WHY: Content addressing is the whole point of the versioned name.
	dir := t.TempDir()
	a := writeFile(t, dir, "a.css", "body{}")
	b := writeFile(t, dir, "b.css", "body{}")
	c := writeFile(t, dir, "c.css", "html{}")

	v := New(8)
	ha, _ := v.HashedPath(a)
	hb, _ := v.HashedPath(b)
	hc, _ := v.HashedPath(c)

	digest := func(p string) string { return strings.Split(filepath.Base(p), ".")[1] }
	if digest(ha) != digest(hb) {
		t.Errorf("same content, different digests: %q vs %q", ha, hb)
	}
	if digest(ha) == digest(hc) {
		t.Errorf("different content, same digest: %q vs %q", ha, hc)
	}
}

func TestHashedPath_Cached(t *testing.T) {
	// WHAT: A second call answers from cache even if the file changed.
	// WHY: All documents in one build must agree on an asset's name.
	dir := t.TempDir()
	path := writeFile(t, dir, "app.js", "v1")

	v := New(8)
	first, err := v.HashedPath(path)
	if err != nil {
		t.Fatal(err)
	}
	writeFile(t, dir, "app.js", "v2 changed underneath")
	second, err := v.HashedPath(path)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("cache miss: %q then %q", first, second)
	}
}

func TestHashedPath_MissingFile(t *testing.T) {
	// WHAT: A missing file is an error, not a silent skip.
	// WHY: Extraction already accepted the path; disagreement is fatal.
	v := New(8)
	if _, err := v.HashedPath(filepath.Join(t.TempDir(), "gone.png")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestMaterialize(t *testing.T) {
	// WHAT: Materialize writes the hashed copy with identical content.
	// WHY: The rewritten HTML points at the copy, so it must exist.
	dir := t.TempDir()
	path := writeFile(t, dir, "main.css", ".x{color:red}")

	v := New(8)
	hashed, err := v.Materialize(path)
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(hashed)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != ".x{color:red}" {
		t.Errorf("copy content = %q", data)
	}

	// Second call is a no-op, not an error.
	if _, err := v.Materialize(path); err != nil {
		t.Errorf("repeat materialize: %v", err)
	}
}

func TestHashedPath_OversizeLengthUsesFullDigest(t *testing.T) {
	// WHAT: A configured length past the digest's 64 hex chars is clamped.
	// WHY: Config files set hash_len freely; the whole digest is the most
	// we can fold in, never an out-of-range slice.
	dir := t.TempDir()
	path := writeFile(t, dir, "pic.jpg", "fake image bytes")

	v := New(100)
	hashed, err := v.HashedPath(path)
	if err != nil {
		t.Fatal(err)
	}
	base := filepath.Base(hashed)
	if len(base) != len("pic.")+64+len(".jpg") {
		t.Errorf("hashed name = %q, want full 64-char digest", base)
	}
}

func TestHashedPath_FixpointOnHashedCopy(t *testing.T) {
	// WHAT: A file already carrying its own digest hashes to itself.
	// WHY: A rebuild over prior output must not stack digests onto
	// content-addressed copies.
	dir := t.TempDir()
	path := writeFile(t, dir, "main.css", ".x{color:red}")

	hashed, err := New(8).Materialize(path)
	if err != nil {
		t.Fatal(err)
	}
	// Fresh Versioner so the answer comes from the name, not the cache.
	again, err := New(8).HashedPath(hashed)
	if err != nil {
		t.Fatal(err)
	}
	if again != hashed {
		t.Errorf("hashed copy moved: %q -> %q", hashed, again)
	}
}

func TestIsHashedCopy(t *testing.T) {
	// WHAT: Detection requires the name segment to match the file's digest.
	// WHY: A hex-looking segment alone ("v2.deadbeef.css") must not hide a
	// real source file from the build.
	dir := t.TempDir()
	orig := writeFile(t, dir, "page.html", "<html></html>")

	hashed, err := New(8).Materialize(orig)
	if err != nil {
		t.Fatal(err)
	}
	if ok, err := IsHashedCopy(hashed, 8); err != nil || !ok {
		t.Errorf("materialized copy not detected: ok=%v err=%v", ok, err)
	}
	if ok, err := IsHashedCopy(orig, 8); err != nil || ok {
		t.Errorf("original flagged as copy: ok=%v err=%v", ok, err)
	}

	impostor := writeFile(t, dir, "v2.aaaaaaaa.css", "body{}")
	if ok, err := IsHashedCopy(impostor, 8); err != nil || ok {
		t.Errorf("hex-looking name flagged as copy: ok=%v err=%v", ok, err)
	}
}

func TestHashedName_NoExtension(t *testing.T) {
	// WHAT: Extension-less files get the digest appended.
	// WHY: Assets like "LICENSE" or "favicon" still need stable names.
	if got := hashedName("LICENSE", "a1b2c3d4"); got != "LICENSE.a1b2c3d4" {
		t.Errorf("got %q", got)
	}
}
