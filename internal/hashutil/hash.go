// Package hashutil computes and caches SHA-256 hashes of file contents for
// the malicious-hash detector, the Bun-attack-file detector, and the
// verified-file whitelist.
package hashutil

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"sync"
)

// Cache memoizes SHA-256 hashes by file path so that a file read once by one
// detector isn't re-hashed by another.
type Cache struct {
	mu    sync.Mutex
	hexes map[string]string
}

// NewCache returns an empty, ready-to-use Cache.
func NewCache() *Cache {
	return &Cache{hexes: make(map[string]string)}
}

// HashFile returns the lowercase hex SHA-256 digest of the file at path,
// reading and hashing it at most once per Cache instance.
func (c *Cache) HashFile(path string) (string, error) {
	c.mu.Lock()
	if h, ok := c.hexes[path]; ok {
		c.mu.Unlock()
		return h, nil
	}
	c.mu.Unlock()

	h, err := HashFileUncached(path)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.hexes[path] = h
	c.mu.Unlock()
	return h, nil
}

// HashFileUncached reads and hashes path without consulting any cache.
func HashFileUncached(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
