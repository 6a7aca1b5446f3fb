package cpp

// hashIdent computes the djb2-xor hash of s, folded to its low 8 bits.
// Unified on the length-based form (spec.md §9 "Open questions / likely
// bugs ... Unify on the length-based form" — the original preprocessor
// variant took a NUL-terminated string and the calculator variant took
// a length; here there is exactly one implementation).
func hashIdent(s string) uint8 {
	var h uint32 = 5381
	for i := 0; i < len(s); i++ {
		h = (h * 33) ^ uint32(s[i])
	}
	return uint8(h)
}

type cacheEntry struct {
	s    string
	next *cacheEntry
}

// StringCache is a 256-bucket hashed intern table. Intern promotes the
// matching entry to the head of its bucket list (move-to-front); Lookup
// leaves the order unchanged. Returned strings
// are stable for the cache's lifetime since Go strings are immutable
// views and entries are never removed.
type StringCache struct {
	buckets [256]*cacheEntry
}

// NewStringCache creates an empty intern table.
func NewStringCache() *StringCache {
	return &StringCache{}
}

// Intern returns the cached copy of s, inserting it on first sight.
func (c *StringCache) Intern(s string) string {
	idx := hashIdent(s)
	var prev *cacheEntry
	for e := c.buckets[idx]; e != nil; e = e.next {
		if e.s == s {
			if prev != nil {
				// move-to-front
				prev.next = e.next
				e.next = c.buckets[idx]
				c.buckets[idx] = e
			}
			return e.s
		}
		prev = e
	}
	e := &cacheEntry{s: s, next: c.buckets[idx]}
	c.buckets[idx] = e
	return e.s
}

// Lookup reports whether s is already interned, without inserting it.
func (c *StringCache) Lookup(s string) (string, bool) {
	idx := hashIdent(s)
	for e := c.buckets[idx]; e != nil; e = e.next {
		if e.s == s {
			return e.s, true
		}
	}
	return "", false
}
