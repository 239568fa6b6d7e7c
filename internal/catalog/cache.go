package catalog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/solatis/prospector/internal/types"
)

// DefinitionSource loads the stored field definitions of a workspace.
type DefinitionSource interface {
	ListFieldDefinitions(ctx context.Context, workspaceID string) ([]types.FieldDefinition, error)
}

// DefinitionCache memoises field definitions per workspace. The owner
// decides its lifetime; a zero ttl keeps entries until invalidated.
// Safe for concurrent use.
type DefinitionCache struct {
	src   DefinitionSource
	ttl   time.Duration
	now   func() time.Time
	group singleflight.Group

	mu      sync.RWMutex
	entries map[string]cacheEntry
	// gens counts invalidations per workspace and epoch counts resets. A
	// load only stores its result if neither moved while it ran.
	gens  map[string]uint64
	epoch uint64
}

type cacheEntry struct {
	defs    []types.FieldDefinition
	expires time.Time
}

// NewDefinitionCache creates a cache in front of src.
func NewDefinitionCache(src DefinitionSource, ttl time.Duration) *DefinitionCache {
	return &DefinitionCache{
		src:     src,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
		gens:    make(map[string]uint64),
	}
}

// Get returns the definitions of a workspace, loading them on a miss.
// Concurrent misses for one workspace share a single load. The shared load
// is not cancelled with any one caller's ctx; each caller still stops
// waiting when its own ctx is done.
func (c *DefinitionCache) Get(ctx context.Context, workspaceID string) ([]types.FieldDefinition, error) {
	if defs, ok := c.lookup(workspaceID); ok {
		return defs, nil
	}

	c.mu.RLock()
	gen, epoch := c.gens[workspaceID], c.epoch
	c.mu.RUnlock()

	loadCtx := context.WithoutCancel(ctx)
	key := fmt.Sprintf("%s\x00%d\x00%d", workspaceID, epoch, gen)
	ch := c.group.DoChan(key, func() (any, error) {
		if defs, ok := c.lookup(workspaceID); ok {
			return defs, nil
		}
		defs, err := c.src.ListFieldDefinitions(loadCtx, workspaceID)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		if c.gens[workspaceID] == gen && c.epoch == epoch {
			c.entries[workspaceID] = cacheEntry{defs: defs, expires: c.now().Add(c.ttl)}
		}
		c.mu.Unlock()
		return defs, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]types.FieldDefinition), nil
	}
}

// lookup returns a live cached entry.
func (c *DefinitionCache) lookup(workspaceID string) ([]types.FieldDefinition, bool) {
	c.mu.RLock()
	e, ok := c.entries[workspaceID]
	c.mu.RUnlock()
	if !ok || (c.ttl > 0 && !c.now().Before(e.expires)) {
		return nil, false
	}
	return e.defs, true
}

// Invalidate drops the cached definitions of one workspace. A load already
// in flight for it will not repopulate the entry.
func (c *DefinitionCache) Invalidate(workspaceID string) {
	c.mu.Lock()
	delete(c.entries, workspaceID)
	c.gens[workspaceID]++
	c.mu.Unlock()
}

// Reset drops every cached entry.
func (c *DefinitionCache) Reset() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.epoch++
	c.mu.Unlock()
}
