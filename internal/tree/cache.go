package tree

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ambercrest/portal-fm/internal/logging"
	"github.com/ambercrest/portal-fm/internal/models"
)

// Lister is the slice of the hierarchy API the cache needs: the full flat
// listing of one scope.
type Lister interface {
	ListScope(ctx context.Context, scope models.Scope) (*models.ScopeListing, error)
}

// Cache holds the last-built complete tree for the active scope.
//
// The snapshot is replaced wholesale on every rebuild; readers either see
// the previous complete tree or the new one, never a half-built state. There
// is no incremental patching: after any successful mutation or upload batch
// the caller rebuilds in full.
type Cache struct {
	client Lister
	logger *logging.Logger

	mu    sync.RWMutex
	scope models.Scope
	snap  *Snapshot
}

// NewCache creates an empty cache backed by the given lister.
func NewCache(client Lister, logger *logging.Logger) *Cache {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &Cache{
		client: client,
		logger: logger,
	}
}

// Rebuild fetches the full flat listing of the scope, builds a fresh
// snapshot off to the side, and swaps it in atomically. On failure the
// previous snapshot stays in place untouched.
func (c *Cache) Rebuild(ctx context.Context, scope models.Scope) error {
	listing, err := c.client.ListScope(ctx, scope)
	if err != nil {
		return fmt.Errorf("failed to list scope %s: %w", scope, err)
	}

	snap := Build(listing)

	for _, id := range snap.DanglingIDs {
		c.logger.Warn().Str("id", id).Str("scope", scope.String()).
			Msg("record references a parent missing from the listing; attached at root")
	}
	for _, id := range snap.CycleIDs {
		c.logger.Error().Str("id", id).Str("scope", scope.String()).
			Msg("folder is part of a parent cycle; reattached at root")
	}

	c.mu.Lock()
	c.scope = scope
	c.snap = snap
	c.mu.Unlock()

	c.logger.Debug().Str("scope", scope.String()).Int("nodes", snap.Len()).
		Msg("tree rebuilt")
	return nil
}

// Scope returns the scope of the current snapshot.
func (c *Cache) Scope() models.Scope {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.scope
}

// snapshot returns the current snapshot, which may be nil before the first
// rebuild.
func (c *Cache) snapshot() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// FindByPath resolves a slash-delimited path against the current snapshot by
// walking sibling names level by level. Empty segments are skipped, so
// "/Docs//Reports" and "Docs/Reports" resolve identically. The root path
// ("/" or "") has no node of its own and resolves to nothing.
//
// Duplicate sibling names are permitted in the tree; the first match in
// listing order wins.
func (c *Cache) FindByPath(path string) (*Node, bool) {
	snap := c.snapshot()
	if snap == nil {
		return nil, false
	}

	var segments []string
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	if len(segments) == 0 {
		return nil, false
	}

	level := snap.Roots
	var current *Node
	for _, seg := range segments {
		current = nil
		for _, n := range level {
			if n.Name == seg {
				current = n
				break
			}
		}
		if current == nil {
			return nil, false
		}
		level = current.Children
	}
	return current, true
}

// FindByID resolves a node id against the current snapshot via the index
// built during the rebuild.
func (c *Cache) FindByID(id string) (*Node, bool) {
	snap := c.snapshot()
	if snap == nil {
		return nil, false
	}
	return snap.FindByID(id)
}

// ChildrenOf returns the direct children of a folder id, or the scope-root
// entries when folderID is nil. This is the complete-tree materialization
// the current view derives from.
func (c *Cache) ChildrenOf(folderID *string) []*Node {
	snap := c.snapshot()
	if snap == nil {
		return nil
	}
	if folderID == nil {
		return snap.Roots
	}
	if n, ok := snap.FindByID(*folderID); ok && n.IsFolder() {
		return n.Children
	}
	return nil
}
