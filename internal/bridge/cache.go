package bridge

import "sync"

// responseCache stores raw endpoint responses for the duration of one
// cycle invocation.
//
// Within a single cycle, bindings sharing an endpoint key trigger at most
// one fetch. The cache is cleared unconditionally at the end of every
// cycle and before any forced resync; entries never outlive those
// boundaries. Slow and fast cycles share the cache, so access is
// mutex-guarded; a value observed across cycles is interchangeable because
// keys identify endpoints, not cycles.
type responseCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newResponseCache() *responseCache {
	return &responseCache{entries: make(map[string][]byte)}
}

// getOrFetch returns the cached response for key, fetching it first if the
// key is absent or bypass is true.
//
// A failed fetch never populates the cache; the error propagates to the
// caller and the next binding referencing the key fetches again.
func (c *responseCache) getOrFetch(key string, fetch func() ([]byte, error), bypass bool) ([]byte, error) {
	if !bypass {
		c.mu.Lock()
		body, ok := c.entries[key]
		c.mu.Unlock()
		if ok {
			return body, nil
		}
	}

	body, err := fetch()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = body
	c.mu.Unlock()
	return body, nil
}

// clear discards all cached responses.
func (c *responseCache) clear() {
	c.mu.Lock()
	c.entries = make(map[string][]byte)
	c.mu.Unlock()
}

// len reports the number of cached responses.
func (c *responseCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
