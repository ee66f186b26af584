package validator

import (
	"math/rand/v2"
	"sort"
)

// Sample bounds a population for deep comparison. Populations within max
// are returned whole; larger ones yield a uniform random subset of
// exactly max members drawn without replacement. The result is always
// sorted so per-entity processing and reporting follow a fixed order.
//
// Sampling trades completeness for bounded cost on the triple-level stage
// only; population-level existence comparison is always exhaustive.
func Sample(pop Population, max int, rng *rand.Rand) []string {
	items := pop.Sorted()
	if max <= 0 || len(items) <= max {
		return items
	}

	picked := rng.Perm(len(items))[:max]
	sort.Ints(picked)
	out := make([]string, 0, max)
	for _, idx := range picked {
		out = append(out, items[idx])
	}
	return out
}
