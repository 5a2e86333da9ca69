package polygon

import "sync"

// NameCache is an in-memory ticker -> company name mapping
// ⭐ SSOT: 종목명 캐싱은 이 구조체에서만
//
// It lives for the lifetime of one Client, grows monotonically and never
// evicts. A resolved company name is never replaced by a ticker-symbol
// fallback.
type NameCache struct {
	mu    sync.RWMutex
	names map[string]string
}

// NewNameCache creates an empty name cache
func NewNameCache() *NameCache {
	return &NameCache{names: make(map[string]string)}
}

// Get retrieves a cached name
func (c *NameCache) Get(ticker string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	name, ok := c.names[ticker]
	return name, ok
}

// Put stores a name for a ticker. A real company name always wins over a
// symbol fallback; the reverse update is rejected.
func (c *NameCache) Put(ticker, name string) bool {
	if ticker == "" || name == "" {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.names[ticker]; ok {
		// Never downgrade a resolved name to the bare symbol
		if existing != ticker && name == ticker {
			return false
		}
	}

	c.names[ticker] = name
	return true
}

// Len returns the number of cached names
func (c *NameCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.names)
}
