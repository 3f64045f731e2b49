package matching

import (
	lru "github.com/hashicorp/golang-lru"
	"github.com/zeebo/blake3"
)

// DefaultBodyCacheSize bounds the number of decoded bodies kept in memory.
const DefaultBodyCacheSize = 512

// bodyTrees caches decoded bodies. Recorded bodies are compared against
// every incoming request, so each is decoded once per cache lifetime.
var bodyTrees = newTreeCache(DefaultBodyCacheSize)

type treeKey [32]byte

type treeEntry struct {
	node *Node
	err  error
}

type treeCache struct {
	entries *lru.Cache
}

func newTreeCache(size int) *treeCache {
	c, err := lru.New(size)
	if err != nil {
		// Only a non-positive size fails.
		c, _ = lru.New(DefaultBodyCacheSize)
	}
	return &treeCache{entries: c}
}

// tree returns the decoded form of body. Cached nodes are shared and must
// not be modified.
func (c *treeCache) tree(kind BodyKind, body []byte) (*Node, error) {
	key := cacheKey(kind, body)
	if v, ok := c.entries.Get(key); ok {
		e := v.(treeEntry)
		return e.node, e.err
	}
	node, err := decodeBody(kind, body)
	c.entries.Add(key, treeEntry{node: node, err: err})
	return node, err
}

func cacheKey(kind BodyKind, body []byte) treeKey {
	h := blake3.New()
	_, _ = h.Write([]byte{byte(kind)})
	_, _ = h.Write(body)
	var k treeKey
	copy(k[:], h.Sum(nil))
	return k
}

// SetBodyCacheSize replaces the decoded-body cache with one of the given size.
// It is not safe to call while matchers are running.
func SetBodyCacheSize(size int) {
	bodyTrees = newTreeCache(size)
}
