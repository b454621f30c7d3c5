package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// etagLength is the number of hex digits kept in an entity tag.
const etagLength = 16

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ETag returns a strong entity tag for a response body.
func ETag(body []byte) string {
	return `"` + Hash(body)[:etagLength] + `"`
}

// MatchesETag reports whether an If-None-Match header value matches etag.
// Weak comparison is used, as for GET and HEAD.
func MatchesETag(header, etag string) bool {
	header = strings.TrimSpace(header)
	if header == "" {
		return false
	}
	if header == "*" {
		return true
	}
	want := strings.TrimPrefix(etag, "W/")
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == want {
			return true
		}
	}
	return false
}
