// Package cache keeps rendered page documents in memory so repeat requests
// skip template execution.
package cache

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/dgraph-io/ristretto/v2"
)

// DefaultMaxCost bounds the cache by total body bytes.
const DefaultMaxCost = 8 << 20

// Entry is a rendered document and its validator.
type Entry struct {
	Body []byte
	ETag string
}

// NewEntry wraps body and computes its weak ETag.
func NewEntry(body []byte) Entry {
	return Entry{Body: body, ETag: ETag(body)}
}

// ETag returns a weak validator derived from the sha256 of body.
func ETag(body []byte) string {
	sum := sha256.Sum256(body)
	return `W/"` + hex.EncodeToString(sum[:]) + `"`
}

// PageCache maps a route to its rendered Entry. A nil *PageCache is valid
// and never hits, which is how dev mode disables caching.
type PageCache struct {
	c *ristretto.Cache[string, Entry]
}

// New creates a cache holding at most maxCost bytes of page bodies.
func New(maxCost int64) (*PageCache, error) {
	if maxCost <= 0 {
		maxCost = DefaultMaxCost
	}
	c, err := ristretto.NewCache(&ristretto.Config[string, Entry]{
		NumCounters: 1e4,
		MaxCost:     maxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &PageCache{c: c}, nil
}

// Get returns the cached entry for key.
func (p *PageCache) Get(key string) (Entry, bool) {
	if p == nil {
		return Entry{}, false
	}
	return p.c.Get(key)
}

// Set stores e under key and waits until it is visible to Get.
func (p *PageCache) Set(key string, e Entry) {
	if p == nil {
		return
	}
	if p.c.Set(key, e, int64(len(e.Body))) {
		p.c.Wait()
	}
}

// Clear drops every entry.
func (p *PageCache) Clear() {
	if p == nil {
		return
	}
	p.c.Clear()
}

// Close stops the cache's background goroutines.
func (p *PageCache) Close() {
	if p == nil {
		return
	}
	p.c.Close()
}
