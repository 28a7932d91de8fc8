// Package cache provides in-memory caching of generated commit messages,
// keyed by the staged diff so repeated runs against unchanged staging
// skip the network entirely.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

const (
	// DefaultMaxEntries is the default maximum number of cached messages.
	DefaultMaxEntries = 100
	// DefaultTTL is the default time-to-live for cached messages.
	DefaultTTL = 1 * time.Hour
)

// Message is one cached generation result.
type Message struct {
	Text     string
	Provider string
}

// entry wraps a message with its expiry.
type entry struct {
	message   Message
	expiresAt time.Time
}

func (e *entry) expired() bool {
	return time.Now().After(e.expiresAt)
}

// Manager defines the interface for the message cache.
type Manager interface {
	Get(key string) (Message, bool)
	Set(key string, msg Message, ttl time.Duration)
	Delete(key string)
	Clear()
	Size() int
}

// MessageCache implements an in-memory LRU cache with TTL support.
type MessageCache struct {
	mu         sync.Mutex
	entries    map[string]*entry
	order      []string // access order for LRU eviction
	maxEntries int
	defaultTTL time.Duration
}

// NewMessageCache creates a message cache with the given limits.
func NewMessageCache(maxEntries int, defaultTTL time.Duration) *MessageCache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	return &MessageCache{
		entries:    make(map[string]*entry),
		order:      make([]string, 0, maxEntries),
		maxEntries: maxEntries,
		defaultTTL: defaultTTL,
	}
}

// Get retrieves a cached message. Expired entries are dropped on read.
func (c *MessageCache) Get(key string) (Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, exists := c.entries[key]
	if !exists {
		return Message{}, false
	}

	if e.expired() {
		c.deleteUnlocked(key)
		return Message{}, false
	}

	c.moveToEnd(key)
	return e.message, true
}

// Set stores a message with the given TTL. A zero ttl uses the default.
func (c *MessageCache) Set(key string, msg Message, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	if _, exists := c.entries[key]; exists {
		c.entries[key] = &entry{message: msg, expiresAt: time.Now().Add(ttl)}
		c.moveToEnd(key)
		return
	}

	if len(c.entries) >= c.maxEntries {
		c.evictOldest()
	}

	c.entries[key] = &entry{message: msg, expiresAt: time.Now().Add(ttl)}
	c.order = append(c.order, key)
}

// Delete removes a cached message.
func (c *MessageCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleteUnlocked(key)
}

// Clear removes all cached messages.
func (c *MessageCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
	c.order = make([]string, 0, c.maxEntries)
}

// Size returns the number of cached messages.
func (c *MessageCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// CleanExpired removes all expired entries and reports how many went.
func (c *MessageCache) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, e := range c.entries {
		if e.expired() {
			c.deleteUnlocked(key)
			removed++
		}
	}
	return removed
}

// deleteUnlocked removes an entry. Caller must hold the lock.
func (c *MessageCache) deleteUnlocked(key string) {
	delete(c.entries, key)
	c.removeFromOrder(key)
}

// evictOldest removes the least recently used entry. Caller must hold
// the lock.
func (c *MessageCache) evictOldest() {
	if len(c.order) == 0 {
		return
	}
	c.deleteUnlocked(c.order[0])
}

// moveToEnd marks a key most recently used. Caller must hold the lock.
func (c *MessageCache) moveToEnd(key string) {
	c.removeFromOrder(key)
	c.order = append(c.order, key)
}

// removeFromOrder drops a key from the order slice. Caller must hold
// the lock.
func (c *MessageCache) removeFromOrder(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

// GenerateKey derives the cache key for one generation: a SHA-256 over
// the diff content, the provider, and the model, so any change to the
// staged diff or the generation target misses.
func GenerateKey(diff, provider, model string) string {
	data := diff + "|" + provider + "|" + model
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
