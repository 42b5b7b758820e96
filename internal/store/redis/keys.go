package redis

import "fmt"

const (
	// KeyPrefixPage is the prefix for cached page keys
	KeyPrefixPage = "folio:page:"
	// KeyAllPages is the set of every path that has been cached
	KeyAllPages = "folio:pages:all"
	// KeyPrefixGeneration counts invalidations per path
	KeyPrefixGeneration = "folio:pagegen:"
)

// PageKey returns the Redis key for a cached page by path
func PageKey(path string) string {
	return KeyPrefixPage + path
}

// GenerationKey returns the invalidation counter key of a path
func GenerationKey(path string) string {
	return KeyPrefixGeneration + path
}

// AllPagesKey returns the key for the page index set
func AllPagesKey() string {
	return KeyAllPages
}

// ExtractPath extracts the page path from a Redis key
func ExtractPath(key string) (string, error) {
	if len(key) <= len(KeyPrefixPage) || key[:len(KeyPrefixPage)] != KeyPrefixPage {
		return "", fmt.Errorf("invalid page key: %s", key)
	}
	return key[len(KeyPrefixPage):], nil
}
