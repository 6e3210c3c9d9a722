package weave

import "github.com/TheBitDrifter/mask"

// matchCache is the World's inclusive-match cache (spec.md §4.5): it maps a
// query's requested TypeBundle to the sorted list of archetype indices whose
// schema is a superset of it. Entries are monotone-growing — archetypes are
// never destroyed, so a cached entry only ever gains members, always in
// archetype-creation order (spec.md's P6 and the "order is stable" note).
type matchCache struct {
	entries map[mask.Mask][]int
}

func newMatchCache() *matchCache {
	return &matchCache{entries: make(map[mask.Mask][]int)}
}

// lookup returns the cached match list for query, building it from scratch
// by scanning every archetype once on a first miss.
func (c *matchCache) lookup(query TypeBundle, archetypes []*Archetype) []int {
	key := query.key()
	if existing, ok := c.entries[key]; ok {
		return existing
	}
	matches := make([]int, 0, len(archetypes))
	for _, arch := range archetypes {
		if arch.Schema().Contains(query) {
			matches = append(matches, arch.Index())
		}
	}
	c.entries[key] = matches
	return matches
}

// observe is called whenever a new archetype is created: for every cached
// query whose requested set is a subset of the new archetype's schema, the
// new archetype index is appended (in index order, since it is always the
// highest index seen so far).
func (c *matchCache) observe(arch *Archetype) {
	for key, matches := range c.entries {
		if arch.Schema().bits.ContainsAll(key) {
			c.entries[key] = append(matches, arch.Index())
		}
	}
}
