package download

// ClaimSet records file names already claimed during one run.
// It is owned by the run (not global) and is not safe for concurrent use;
// the crawl has exactly one thread of control.
type ClaimSet struct {
	names map[string]struct{}
}

// NewClaimSet returns an empty ClaimSet.
func NewClaimSet() *ClaimSet {
	return &ClaimSet{names: make(map[string]struct{})}
}

// Add records name as claimed.
func (c *ClaimSet) Add(name string) {
	c.names[name] = struct{}{}
}

// Has reports whether name was claimed.
func (c *ClaimSet) Has(name string) bool {
	_, ok := c.names[name]
	return ok
}

// Len returns the number of recorded names.
func (c *ClaimSet) Len() int {
	return len(c.names)
}
