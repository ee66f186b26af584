package rdf

import "sort"

// FilterSet is a set of predicate IRIs excluded from comparison. It is
// built once per run from configuration and treated as immutable for the
// run's duration. The same set must be applied to both stores or the
// resulting diff is meaningless.
type FilterSet map[string]struct{}

// NewFilterSet builds a filter set from predicate IRIs, ignoring empty
// strings.
func NewFilterSet(iris ...string) FilterSet {
	fs := make(FilterSet, len(iris))
	for _, iri := range iris {
		if iri != "" {
			fs[iri] = struct{}{}
		}
	}
	return fs
}

// Excludes reports whether the predicate IRI is filtered out. Membership
// is an exact string match.
func (fs FilterSet) Excludes(predicateIRI string) bool {
	_, ok := fs[predicateIRI]
	return ok
}

// IRIs returns the excluded predicate IRIs in sorted order.
func (fs FilterSet) IRIs() []string {
	out := make([]string, 0, len(fs))
	for iri := range fs {
		out = append(out, iri)
	}
	sort.Strings(out)
	return out
}
