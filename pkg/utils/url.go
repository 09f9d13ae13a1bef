package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"path"
	"strings"
)

// HashURL creates a SHA256 hash of a URL string.
// This is useful for creating consistent, safe keys for Redis.
func HashURL(rawURL string) string {
	h := sha256.New()
	h.Write([]byte(rawURL))
	return hex.EncodeToString(h.Sum(nil))
}

// MemorialSlug returns the last two path segments of a memorial URL
// ("7236403/archibald-mathies" → "7236403_archibald-mathies"), or "" when
// the URL has no memorial path. It names default output files.
func MemorialSlug(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	parts := strings.Split(strings.Trim(path.Clean(u.Path), "/"), "/")
	for i, p := range parts {
		if p == "memorial" && i+1 < len(parts) {
			return strings.Join(parts[i+1:], "_")
		}
	}
	return ""
}
