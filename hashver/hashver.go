// CLAUDE:SUMMARY Content-hash versioning of asset files — BLAKE3 digest folded into the filename.
// Package hashver produces content-addressed filenames for build assets.
// A file pic.jpg whose BLAKE3 digest starts with a1b2c3d4 becomes
// pic.a1b2c3d4.jpg; the digest length is configurable. Answers are cached
// per path so every document referencing an asset sees the same name.
package hashver

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/zeebo/blake3"
)

const (
	// DefaultHashLen is the number of hex digits folded into the filename.
	DefaultHashLen = 8
	// maxHashLen is the full hex length of a BLAKE3-256 digest.
	maxHashLen = 64
)

// clampHashLen keeps a configured digest length inside the digest's actual
// bounds. Oversize values silently use the whole digest.
func clampHashLen(n int) int {
	if n <= 0 {
		return DefaultHashLen
	}
	if n > maxHashLen {
		return maxHashLen
	}
	return n
}

// Versioner computes and caches hashed filenames. Safe for concurrent use.
type Versioner struct {
	hashLen int

	mu    sync.Mutex
	cache map[string]string // abs path -> hashed abs path
}

// New creates a Versioner. hashLen <= 0 selects DefaultHashLen; values past
// the digest's hex length use the whole digest.
func New(hashLen int) *Versioner {
	return &Versioner{
		hashLen: clampHashLen(hashLen),
		cache:   make(map[string]string),
	}
}

// HashedPath returns the content-addressed absolute path for the file at
// abs. The file is read and hashed on first call; later calls return the
// cached answer. Failing to read the file is an error: by the time this
// runs, extraction has already verified the path exists, so a read failure
// means the two phases observed different filesystem state.
func (v *Versioner) HashedPath(abs string) (string, error) {
	v.mu.Lock()
	if hashed, ok := v.cache[abs]; ok {
		v.mu.Unlock()
		return hashed, nil
	}
	v.mu.Unlock()

	digest, err := hashFile(abs)
	if err != nil {
		return "", fmt.Errorf("hashver: %s: %w", abs, err)
	}
	prefix := digest[:v.hashLen]

	// A file that already carries its own digest is its own hashed path.
	// This keeps rebuilds from stacking digests onto prior copies.
	base := filepath.Base(abs)
	hashed := abs
	if !carriesDigest(base, prefix) {
		hashed = filepath.Join(filepath.Dir(abs), hashedName(base, prefix))
	}

	v.mu.Lock()
	v.cache[abs] = hashed
	v.mu.Unlock()
	return hashed, nil
}

// Materialize ensures the hashed copy of abs exists on disk and returns its
// path. The copy is written next to the original; an existing copy is left
// alone (content-addressed names cannot go stale).
func (v *Versioner) Materialize(abs string) (string, error) {
	hashed, err := v.HashedPath(abs)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(hashed); err == nil {
		return hashed, nil
	}
	if err := copyFile(abs, hashed); err != nil {
		return "", fmt.Errorf("hashver: materialize %s: %w", hashed, err)
	}
	return hashed, nil
}

// IsHashedCopy reports whether the file at abs is a content-addressed copy
// made with the given digest length: the name segment before the final
// extension is hashLen hex digits equal to the file's own digest prefix.
// Reading or hashing the file is the only way to tell a digest segment from
// a coincidentally hex-looking name, so the file must be readable.
func IsHashedCopy(abs string, hashLen int) (bool, error) {
	hashLen = clampHashLen(hashLen)
	stem := strings.TrimSuffix(filepath.Base(abs), filepath.Ext(abs))
	i := strings.LastIndexByte(stem, '.')
	if i < 0 {
		return false, nil
	}
	seg := stem[i+1:]
	if len(seg) != hashLen || !isHexLower(seg) {
		return false, nil
	}
	digest, err := hashFile(abs)
	if err != nil {
		return false, fmt.Errorf("hashver: %s: %w", abs, err)
	}
	return seg == digest[:hashLen], nil
}

// hashedName inserts the digest before the final extension. Files without
// an extension get the digest appended ("LICENSE" -> "LICENSE.a1b2c3d4").
func hashedName(base, digest string) string {
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + "." + digest + ext
}

// carriesDigest reports whether base already ends in ".<digest>" before its
// extension, i.e. hashedName(base, digest) would be a no-op stacking.
func carriesDigest(base, digest string) bool {
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return strings.HasSuffix(stem, "."+digest)
}

func isHexLower(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := blake3.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
