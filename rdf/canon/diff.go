package canon

import "github.com/Kronmar-Bafu/lindasnext-migration-helper/rdf"

// Diff partitions two graphs into the triples they share and the triples
// unique to each side, under canonical blank-node identity. Every triple
// of a appears in exactly one of (shared, onlyA); symmetrically for b.
// The returned graphs carry canonical blank labels, so they serialize
// directly into exportable diff listings.
func Diff(a, b *rdf.Graph) (shared, onlyA, onlyB *rdf.Graph) {
	ca := Canonicalize(a).Graph()
	cb := Canonicalize(b).Graph()

	shared = rdf.NewGraph()
	onlyA = rdf.NewGraph()
	onlyB = rdf.NewGraph()

	for _, t := range ca.Triples() {
		if cb.Has(t) {
			shared.Add(t)
		} else {
			onlyA.Add(t)
		}
	}
	for _, t := range cb.Triples() {
		if !ca.Has(t) {
			onlyB.Add(t)
		}
	}
	return shared, onlyA, onlyB
}
