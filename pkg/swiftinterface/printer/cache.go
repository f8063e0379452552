package printer

import (
	"sync"

	"github.com/coreglyph/swiftsection/internal/swiftdemangle"
)

// nodeTextCacheSoftCap is the map size at which the cache is cleared in one
// shot, retaining its allocated buckets, rather than evicted piecemeal.
const nodeTextCacheSoftCap = 50000

// nodeTextCache memoizes swiftdemangle.Format over a node's structural key.
// It is a single mutex-guarded map; there is no per-entry eviction.
type nodeTextCache struct {
	mu sync.Mutex
	m  map[string]string
}

func newNodeTextCache() *nodeTextCache {
	return &nodeTextCache{m: make(map[string]string)}
}

func (c *nodeTextCache) format(n *swiftdemangle.Node) string {
	if n == nil {
		return ""
	}
	key := n.Key()

	c.mu.Lock()
	if text, ok := c.m[key]; ok {
		c.mu.Unlock()
		return text
	}
	c.mu.Unlock()

	text := swiftdemangle.Format(n)

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.m) >= nodeTextCacheSoftCap {
		clear(c.m)
	}
	c.m[key] = text
	return text
}
