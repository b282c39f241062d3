package fold

// Cache memoizes results of an oracle. When the cache is full the
// oldest entry is evicted. Errors are not cached. Cache is not safe
// for concurrent use.
type Cache struct {
	Oracle
	size   int
	res    map[string]Result
	order  []string
	hits   int
	misses int
}

// NewCache creates a cache holding up to size results.
func NewCache(o Oracle, size int) *Cache {
	if size < 1 {
		panic("cache size should be >= 1")
	}
	return &Cache{
		Oracle: o,
		size:   size,
		res:    make(map[string]Result, size),
		order:  make([]string, 0, size),
	}
}

// Fold returns a cached result or calls the oracle.
func (c *Cache) Fold(rna string) (Result, error) {
	if r, ok := c.res[rna]; ok {
		c.hits++
		return r, nil
	}
	c.misses++
	r, err := c.Oracle.Fold(rna)
	if err != nil {
		return r, err
	}
	if len(c.order) == c.size {
		delete(c.res, c.order[0])
		c.order = c.order[1:]
	}
	c.res[rna] = r
	c.order = append(c.order, rna)
	return r, nil
}

// Stats returns the number of cache hits and misses.
func (c *Cache) Stats() (hits, misses int) {
	return c.hits, c.misses
}
