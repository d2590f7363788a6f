// Package cache holds completed relay replies keyed by their exact input.
package cache

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"golang.org/x/crypto/blake2b"
)

// ErrInvalidSize is returned when the cache is configured without capacity.
var ErrInvalidSize = errors.New("cache size must be positive")

// ReplyCache stores full reply texts with a fixed TTL.
// Cost is measured in bytes of reply text.
type ReplyCache struct {
	store *ristretto.Cache[string, string]
	ttl   time.Duration
}

// New creates a reply cache bounded to maxBytes.
func New(maxBytes int64, ttl time.Duration) (*ReplyCache, error) {
	if maxBytes <= 0 {
		return nil, ErrInvalidSize
	}

	store, err := ristretto.NewCache(&ristretto.Config[string, string]{
		NumCounters: 1e6,
		MaxCost:     maxBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}

	return &ReplyCache{store: store, ttl: ttl}, nil
}

// Key derives the cache key for a relay input. Each field is length-prefixed
// so that distinct tuples never hash the same input.
func Key(model, reasoningEffort, message string) string {
	h, _ := blake2b.New256(nil)
	var n [8]byte
	for _, field := range []string{model, reasoningEffort, message} {
		binary.BigEndian.PutUint64(n[:], uint64(len(field)))
		h.Write(n[:])
		h.Write([]byte(field))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached reply for key.
func (c *ReplyCache) Get(key string) (string, bool) {
	return c.store.Get(key)
}

// Set stores a reply. It reports false when the item was dropped.
// Writes are applied asynchronously; call Wait to observe them.
func (c *ReplyCache) Set(key, reply string) bool {
	cost := int64(len(reply)) + 1
	if c.ttl > 0 {
		return c.store.SetWithTTL(key, reply, cost, c.ttl)
	}
	return c.store.Set(key, reply, cost)
}

// Wait blocks until pending writes are applied.
func (c *ReplyCache) Wait() {
	c.store.Wait()
}

// Close stops the cache's background goroutines.
func (c *ReplyCache) Close() {
	c.store.Close()
}
