package services

import (
	"sync"
	"time"
)

// sessionCache holds one in-memory value per portal session, created lazily.
type sessionCache[T any] struct {
	mu      sync.Mutex
	newItem func() T
	items   map[string]*cacheEntry[T]
}

type cacheEntry[T any] struct {
	item     T
	lastUsed time.Time
}

func newSessionCache[T any](newItem func() T) *sessionCache[T] {
	return &sessionCache[T]{newItem: newItem, items: make(map[string]*cacheEntry[T])}
}

func (c *sessionCache[T]) get(sessionID string) T {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.items[sessionID]
	if !ok {
		e = &cacheEntry[T]{item: c.newItem()}
		c.items[sessionID] = e
	}
	e.lastUsed = time.Now()
	return e.item
}

// peek returns the value without creating one.
func (c *sessionCache[T]) peek(sessionID string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.items[sessionID]
	if !ok {
		var zero T
		return zero, false
	}
	e.lastUsed = time.Now()
	return e.item, true
}

func (c *sessionCache[T]) put(sessionID string, item T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[sessionID] = &cacheEntry[T]{item: item, lastUsed: time.Now()}
}

func (c *sessionCache[T]) Forget(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, sessionID)
}

func (c *sessionCache[T]) ForgetIdle(cutoff time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for id, e := range c.items {
		if e.lastUsed.Before(cutoff) {
			delete(c.items, id)
			n++
		}
	}
	return n
}
