// Package cache holds expensive-to-reconstruct objects behind a key.
// The interactive shell stores parsed piece bags ([]canon.Piece) in it,
// keyed by pieces-file path; rotation tables and macro-tile cascades are
// not cached and are rebuilt on every solve. It plays the role the
// teacher codebase's object cache plays for GADDAGs and strategy files:
// a single map, load-on-miss, mutex-serialized, generalized here over
// interface{}.
package cache

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// loadFunc produces the object to cache on a miss.
type loadFunc func() (interface{}, error)

// Cache is a mutex-serialized, load-on-miss object store keyed by an
// arbitrary string (the shell uses pieces-file paths as keys).
type Cache struct {
	mu      sync.Mutex
	objects map[string]interface{}
}

// New returns an empty Cache.
func New() *Cache {
	return &Cache{objects: make(map[string]interface{})}
}

func (c *Cache) load(key string, load loadFunc) error {
	log.Debug().Str("key", key).Msg("loading into cache")
	obj, err := load()
	if err != nil {
		return err
	}
	c.objects[key] = obj
	return nil
}

// Get returns the cached object for key, calling load and storing its
// result on a miss. A load error is never cached: the next Get for the
// same key retries.
func (c *Cache) Get(key string, load loadFunc) (interface{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if obj, ok := c.objects[key]; ok {
		log.Debug().Str("key", key).Msg("getting obj from cache")
		return obj, nil
	}
	if err := c.load(key, load); err != nil {
		return nil, err
	}
	return c.objects[key], nil
}

// Invalidate drops key, forcing the next Get to reload it. The shell's
// `load` command invalidates the key of the path it is about to read,
// in case the file was edited on disk between runs.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.objects, key)
}

// Len reports how many objects are currently cached, surfaced by the
// shell's `stats` command.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.objects)
}
