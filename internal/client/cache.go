package client

import (
	"strings"
	"sync"
	"time"
)

// key identifies a cached query: the resource path plus its filter values.
type key struct {
	path string
	args string
}

func newKey(path string, args ...string) key {
	return key{path: path, args: strings.Join(args, "\x00")}
}

func (k key) String() string { return k.path + "\x00" + k.args }

type entry struct {
	body    []byte
	expires time.Time
}

// cache holds raw response bodies. Invalidating a path bumps its generation
// so a fetch that started before the invalidation does not store stale data.
type cache struct {
	mu    sync.RWMutex
	ttl   time.Duration
	items map[key]entry
	gens  map[string]uint64
}

func newCache(ttl time.Duration) *cache {
	return &cache{ttl: ttl, items: map[key]entry{}, gens: map[string]uint64{}}
}

func (c *cache) get(k key) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.items[k]
	if !ok || time.Now().After(e.expires) {
		return nil, false
	}
	return e.body, true
}

func (c *cache) generation(path string) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gens[path]
}

// set stores body unless path was invalidated since gen was read.
func (c *cache) set(k key, body []byte, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[k.path] != gen {
		return
	}
	c.items[k] = entry{body: body, expires: time.Now().Add(c.ttl)}
}

// invalidate drops every entry under each path, whatever its filters.
func (c *cache) invalidate(paths ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range paths {
		c.gens[p]++
		for k := range c.items {
			if k.path == p {
				delete(c.items, k)
			}
		}
	}
}

func (c *cache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
