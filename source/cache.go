package source

import (
	"sync"
	"sync/atomic"
)

// Cache keeps decoded payloads in memory, evicting the least recently
// used ones once their total size exceeds the byte limit. Payloads larger
// than the limit are returned but never cached.
//
// Returned slices are shared between callers and must not be modified.
//
// Cache is safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	limit   int64
	used    int64
	entries map[string]*lruNode
	lru     lruList

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// CacheStats contains cache statistics.
type CacheStats struct {
	// Len is the number of cached payloads.
	Len int
	// Bytes is the size of the cached payloads.
	Bytes int64
	// Limit is the byte limit.
	Limit int64
	// Hits is the number of loads served from memory.
	Hits uint64
	// Misses is the number of loads that read the file.
	Misses uint64
	// Evictions is the number of evicted payloads.
	Evictions uint64
}

// NewCache creates a cache holding at most limit bytes.
func NewCache(limit int64) *Cache {
	return &Cache{
		limit:   limit,
		entries: make(map[string]*lruNode),
	}
}

// Load returns the decoded payload of path, reading it on a miss. The
// file is read under the cache lock, so concurrent loads of one path read
// it once.
func (c *Cache) Load(path string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n, ok := c.entries[path]; ok {
		c.hits.Add(1)
		c.lru.moveToFront(n)
		return n.data, nil
	}
	c.misses.Add(1)

	data, err := Load(path)
	if err != nil {
		return nil, err
	}
	size := int64(len(data))
	if size > c.limit {
		return data, nil
	}
	for c.used+size > c.limit {
		old := c.lru.removeOldest()
		delete(c.entries, old.path)
		c.used -= int64(len(old.data))
		c.evictions.Add(1)
	}
	c.entries[path] = c.lru.pushFront(path, data)
	c.used += size
	return data, nil
}

// Forget drops path from the cache. It reports whether it was cached.
func (c *Cache) Forget(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.entries[path]
	if !ok {
		return false
	}
	c.lru.unlink(n)
	delete(c.entries, path)
	c.used -= int64(len(n.data))
	return true
}

// Stats returns cache statistics.
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return CacheStats{
		Len:       len(c.entries),
		Bytes:     c.used,
		Limit:     c.limit,
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}

// lruNode is a cached payload in the LRU list.
type lruNode struct {
	path string
	data []byte
	prev *lruNode
	next *lruNode
}

// lruList is a doubly-linked list, most recently used first. Callers
// handle synchronization.
type lruList struct {
	head *lruNode
	tail *lruNode
}

func (l *lruList) pushFront(path string, data []byte) *lruNode {
	n := &lruNode{path: path, data: data}
	l.linkFront(n)
	return n
}

func (l *lruList) moveToFront(n *lruNode) {
	if n == l.head {
		return
	}
	l.unlink(n)
	l.linkFront(n)
}

// removeOldest unlinks the tail. The list must not be empty.
func (l *lruList) removeOldest() *lruNode {
	n := l.tail
	l.unlink(n)
	return n
}

func (l *lruList) linkFront(n *lruNode) {
	n.next = l.head
	if l.head != nil {
		l.head.prev = n
	}
	l.head = n
	if l.tail == nil {
		l.tail = n
	}
}

func (l *lruList) unlink(n *lruNode) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.tail = n.prev
	}
	n.prev = nil
	n.next = nil
}
