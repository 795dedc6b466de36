package cache

// Cache is a generic most-recently-used cache. It is not safe for concurrent use;
// InMemoryCache guards it with a mutex.
type Cache[TK comparable, TV any] interface {
	// Set inserts or updates key and marks it most recently used.
	Set(key TK, value TV)
	// Get returns the value of key and marks it most recently used.
	Get(key TK) (TV, bool)
	// Delete removes keys, if present.
	Delete(keys ...TK)
	// Count returns the number of entries.
	Count() int
	// Evict drops least recently used entries until the cache is within capacity.
	Evict()
}

type cacheEntry[TK, TV any] struct {
	data    TV
	dllNode *node[TK]
}

type mru[TK comparable, TV any] struct {
	lookup      map[TK]*cacheEntry[TK, TV]
	dll         *doublyLinkedList[TK]
	maxCapacity int
}

// NewCache creates a Cache holding at most maxCapacity entries.
func NewCache[TK comparable, TV any](maxCapacity int) Cache[TK, TV] {
	return &mru[TK, TV]{
		lookup:      make(map[TK]*cacheEntry[TK, TV]),
		dll:         newDoublyLinkedList[TK](),
		maxCapacity: maxCapacity,
	}
}

func (m *mru[TK, TV]) Set(key TK, value TV) {
	if v, ok := m.lookup[key]; ok {
		v.data = value
		m.dll.moveToHead(v.dllNode)
		return
	}
	m.lookup[key] = &cacheEntry[TK, TV]{data: value, dllNode: m.dll.addToHead(key)}
	m.Evict()
}

func (m *mru[TK, TV]) Get(key TK) (TV, bool) {
	v, ok := m.lookup[key]
	if !ok {
		var zero TV
		return zero, false
	}
	m.dll.moveToHead(v.dllNode)
	return v.data, true
}

func (m *mru[TK, TV]) Delete(keys ...TK) {
	for _, k := range keys {
		if v, ok := m.lookup[k]; ok {
			m.dll.delete(v.dllNode)
			delete(m.lookup, k)
		}
	}
}

func (m *mru[TK, TV]) Count() int {
	return len(m.lookup)
}

// Evict removes entries from the tail while the cache exceeds its capacity.
func (m *mru[TK, TV]) Evict() {
	for m.dll.count() > m.maxCapacity {
		id, ok := m.dll.deleteFromTail()
		if !ok {
			return
		}
		delete(m.lookup, id)
	}
}
