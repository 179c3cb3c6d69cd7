// Package cache holds small in-process TTL caches for computed views.
package cache

import (
	"container/list"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// LRU is a size-bounded cache whose entries also expire after a TTL.
type LRU[T any] struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	items   map[string]*list.Element
	order   *list.List
	group   singleflight.Group
	now     func() time.Time
	// gen changes on Delete and Purge; loads started under an older
	// generation are not stored.
	gen     uint64
	loading map[string]int
}

type entry[T any] struct {
	key       string
	value     T
	expiresAt time.Time
}

func NewLRU[T any](maxSize int, ttl time.Duration) *LRU[T] {
	if maxSize < 1 {
		maxSize = 1
	}
	return &LRU[T]{
		maxSize: maxSize,
		ttl:     ttl,
		items:   make(map[string]*list.Element),
		loading: make(map[string]int),
		order:   list.New(),
		now:     time.Now,
	}
}

func (c *LRU[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	elem, ok := c.items[key]
	if !ok {
		return zero, false
	}
	e := elem.Value.(*entry[T])
	if c.now().After(e.expiresAt) {
		c.remove(elem)
		return zero, false
	}
	c.order.MoveToFront(elem)
	return e.value, true
}

func (c *LRU[T]) Set(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set(key, value)
}

func (c *LRU[T]) set(key string, value T) {
	e := &entry[T]{key: key, value: value, expiresAt: c.now().Add(c.ttl)}
	if elem, ok := c.items[key]; ok {
		elem.Value = e
		c.order.MoveToFront(elem)
		return
	}
	c.items[key] = c.order.PushFront(e)
	if c.order.Len() > c.maxSize {
		c.remove(c.order.Back())
	}
}

// GetOrLoad returns the cached value or computes it once, even when several
// callers miss at the same time. Load errors are not cached.
func (c *LRU[T]) GetOrLoad(key string, load func() (T, error)) (T, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		gen := c.startLoad(key)
		v, err := load()
		c.finishLoad(key, v, err == nil, gen)
		return v, err
	})
	out, _ := v.(T)
	return out, err
}

func (c *LRU[T]) startLoad(key string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading[key]++
	return c.gen
}

// finishLoad stores value only if nothing was invalidated since gen.
func (c *LRU[T]) finishLoad(key string, value T, ok bool, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loading[key]--; c.loading[key] <= 0 {
		delete(c.loading, key)
	}
	if ok && c.gen == gen {
		c.set(key, value)
	}
}

// Delete drops key. A load of key already in flight will not be stored.
func (c *LRU[T]) Delete(key string) {
	c.mu.Lock()
	c.gen++
	if elem, ok := c.items[key]; ok {
		c.remove(elem)
	}
	c.mu.Unlock()
	c.group.Forget(key)
}

// Purge drops every entry and invalidates loads in flight.
func (c *LRU[T]) Purge() {
	c.mu.Lock()
	c.gen++
	keys := make([]string, 0, len(c.loading))
	for k := range c.loading {
		keys = append(keys, k)
	}
	c.items = make(map[string]*list.Element)
	c.order.Init()
	c.mu.Unlock()
	for _, k := range keys {
		c.group.Forget(k)
	}
}

// CleanExpired removes expired entries and returns how many went.
func (c *LRU[T]) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for elem := c.order.Back(); elem != nil; {
		prev := elem.Prev()
		if now.After(elem.Value.(*entry[T]).expiresAt) {
			c.remove(elem)
			removed++
		}
		elem = prev
	}
	return removed
}

func (c *LRU[T]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *LRU[T]) remove(elem *list.Element) {
	delete(c.items, elem.Value.(*entry[T]).key)
	c.order.Remove(elem)
}

// Cleaner is any cache that can drop its expired entries.
type Cleaner interface {
	CleanExpired() int
}

// Manager periodically cleans every registered cache.
type Manager struct {
	logger   *slog.Logger
	caches   []Cleaner
	stop     chan struct{}
	done     chan struct{}
	started  atomic.Bool
	stopOnce sync.Once
}

func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		logger: logger,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Register must be called before StartCleanup.
func (m *Manager) Register(c Cleaner) {
	m.caches = append(m.caches, c)
}

func (m *Manager) StartCleanup(interval time.Duration) {
	if m.started.Swap(true) {
		return
	}
	go m.loop(interval)
}

func (m *Manager) loop(interval time.Duration) {
	defer close(m.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			total := 0
			for _, c := range m.caches {
				total += c.CleanExpired()
			}
			if total > 0 {
				m.logger.Debug("Expired cache entries removed", "count", total)
			}
		case <-m.stop:
			return
		}
	}
}

// Stop ends the cleanup loop. Safe to call more than once, and before
// StartCleanup.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.stop)
	})
	if m.started.Load() {
		<-m.done
	}
}
