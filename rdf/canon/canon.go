// Package canon computes blank-node-label-independent canonical forms of
// RDF graphs, so two fetches of the same data with different blank node
// numberings compare equal and can be diffed triple by triple.
//
// The algorithm is iterative color refinement: every blank node starts
// with a hash of its grounded neighborhood (predicates plus non-blank
// neighbors), then repeatedly rehashes with its blank neighbors' colors
// until the partition into color classes stops changing. Remaining ties
// are broken by individuation: the member of the smallest ambiguous class
// whose forced distinction yields the lexicographically smallest
// serialization is distinguished, and refinement reruns. Both loops are
// bounded by the blank node count, so cyclic blank structures terminate.
//
// Automorphic blank nodes (structurally interchangeable) keep equality
// sound: every individuation choice yields the same canonical triple set.
// If the bounds are ever exhausted, leftover same-color nodes receive
// distinct ordinal labels, which can only make two isomorphic graphs
// compare unequal, never the reverse.
package canon

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash/fnv"
	"sort"
	"strings"

	"github.com/Kronmar-Bafu/lindasnext-migration-helper/rdf"
)

// Canonical is an immutable canonical view of a graph: every blank node
// label has been replaced by a structurally determined one. Built once per
// graph, consumed by equality checks and diffs.
type Canonical struct {
	graph  *rdf.Graph
	digest string
}

// Graph returns the relabeled graph. Callers must not mutate it.
func (c *Canonical) Graph() *rdf.Graph {
	return c.graph
}

// Digest returns a hex digest over the sorted canonical serialization.
// Two graphs are isomorphic iff their digests are equal (modulo hash
// collisions, which only ever produce false negatives by construction).
func (c *Canonical) Digest() string {
	return c.digest
}

// NTriples returns the sorted canonical N-Triples serialization.
func (c *Canonical) NTriples() string {
	return c.graph.NTriples()
}

// Equal reports whether two graphs are identical under canonical
// blank-node identity.
func Equal(a, b *rdf.Graph) bool {
	return Canonicalize(a).Digest() == Canonicalize(b).Digest()
}

type coloring map[rdf.Term]uint64

func (c coloring) clone() coloring {
	out := make(coloring, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Canonicalize computes the canonical form of g. Canonicalization is
// idempotent: applying it to an already-canonical graph reproduces the
// same canonical graph.
func Canonicalize(g *rdf.Graph) *Canonical {
	triples := g.Triples()
	bnodes := g.BlankNodes()

	if len(bnodes) == 0 {
		cg := rdf.NewGraph()
		cg.AddAll(g)
		return &Canonical{graph: cg, digest: digestOf(cg)}
	}

	maxRounds := len(bnodes) + 2
	colors := initialColoring(triples, bnodes)
	refine(triples, colors, maxRounds)

	// Tie-breaking: distinguish one member of the smallest ambiguous
	// class per step. Each step makes at least one node unique, so the
	// blank node count bounds the loop.
	for step := 0; step < len(bnodes); step++ {
		class := smallestAmbiguousClass(colors)
		if class == nil {
			break
		}
		var best coloring
		var bestSer string
		for _, member := range class {
			trial := colors.clone()
			trial[member] = mix(trial[member], "!")
			refine(triples, trial, maxRounds)
			ser := serializeColoring(triples, trial)
			if best == nil || ser < bestSer {
				best, bestSer = trial, ser
			}
		}
		colors = best
	}

	labels := canonicalLabels(bnodes, colors)
	cg := rdf.NewGraph()
	for _, t := range triples {
		if t.Subject.IsBlank() {
			t.Subject = rdf.NewBlank(labels[t.Subject])
		}
		if t.Object.IsBlank() {
			t.Object = rdf.NewBlank(labels[t.Object])
		}
		cg.Add(t)
	}
	return &Canonical{graph: cg, digest: digestOf(cg)}
}

// initialColoring hashes each blank node's grounded neighborhood:
// predicate and direction of every incident triple, plus the neighbor
// itself when it is not blank.
func initialColoring(triples []rdf.Triple, bnodes []rdf.Term) coloring {
	colors := make(coloring, len(bnodes))
	for _, b := range bnodes {
		colors[b] = hashStrings(signature(triples, nil, b))
	}
	return colors
}

// refine rehashes every blank node with its neighbors' colors until the
// color partition is stable or maxRounds is reached.
func refine(triples []rdf.Triple, colors coloring, maxRounds int) {
	for round := 0; round < maxRounds; round++ {
		next := make(coloring, len(colors))
		for b, c := range colors {
			sigs := signature(triples, colors, b)
			next[b] = hashStrings(append([]string{fmt.Sprintf("%016x", c)}, sigs...))
		}
		stable := samePartition(colors, next)
		for k, v := range next {
			colors[k] = v
		}
		if stable {
			return
		}
	}
}

// signature collects the sorted incident-edge descriptions of b. With a
// nil coloring, blank neighbors are anonymized; otherwise their current
// color stands in for them.
func signature(triples []rdf.Triple, colors coloring, b rdf.Term) []string {
	key := func(t rdf.Term) string {
		if !t.IsBlank() {
			return t.N3()
		}
		if colors == nil {
			return "~"
		}
		return fmt.Sprintf("~%016x", colors[t])
	}

	var sigs []string
	for _, t := range triples {
		if t.Subject == b {
			sigs = append(sigs, "o|"+t.Predicate.Value+"|"+key(t.Object))
		}
		if t.Object == b {
			sigs = append(sigs, "i|"+t.Predicate.Value+"|"+key(t.Subject))
		}
	}
	sort.Strings(sigs)
	return sigs
}

// samePartition reports whether two colorings induce the same grouping of
// blank nodes, i.e. the old→new color mapping is a bijection.
func samePartition(old, next coloring) bool {
	fwd := make(map[uint64]uint64, len(old))
	rev := make(map[uint64]uint64, len(old))
	for b, oc := range old {
		nc := next[b]
		if mapped, ok := fwd[oc]; ok && mapped != nc {
			return false
		}
		if mapped, ok := rev[nc]; ok && mapped != oc {
			return false
		}
		fwd[oc] = nc
		rev[nc] = oc
	}
	return true
}

// smallestAmbiguousClass returns the members of the lowest-valued color
// class holding more than one node, or nil when every class is a
// singleton. Members are sorted for deterministic iteration; the caller
// decides between them by trial serialization, not by this order.
func smallestAmbiguousClass(colors coloring) []rdf.Term {
	classes := make(map[uint64][]rdf.Term)
	for b, c := range colors {
		classes[c] = append(classes[c], b)
	}
	var pick []rdf.Term
	var pickColor uint64
	for c, members := range classes {
		if len(members) < 2 {
			continue
		}
		if pick == nil || c < pickColor {
			pick, pickColor = members, c
		}
	}
	if pick != nil {
		sort.Slice(pick, func(i, j int) bool { return pick[i].Compare(pick[j]) < 0 })
	}
	return pick
}

// serializeColoring renders the graph with color-derived blank labels,
// used only to compare individuation candidates.
func serializeColoring(triples []rdf.Triple, colors coloring) string {
	lines := make([]string, 0, len(triples))
	for _, t := range triples {
		if t.Subject.IsBlank() {
			t.Subject = rdf.NewBlank(fmt.Sprintf("h%016x", colors[t.Subject]))
		}
		if t.Object.IsBlank() {
			t.Object = rdf.NewBlank(fmt.Sprintf("h%016x", colors[t.Object]))
		}
		lines = append(lines, t.NTriples())
	}
	sort.Strings(lines)
	return strings.Join(lines, "\n")
}

// canonicalLabels assigns "c0".."cN" to blank nodes ordered by final
// color. Nodes still sharing a color after the bounded tie-break get
// distinct ordinals anyway; that degrades to a false mismatch rather than
// a false match or an unbounded loop.
func canonicalLabels(bnodes []rdf.Term, colors coloring) map[rdf.Term]string {
	ordered := make([]rdf.Term, len(bnodes))
	copy(ordered, bnodes)
	sort.Slice(ordered, func(i, j int) bool {
		ci, cj := colors[ordered[i]], colors[ordered[j]]
		if ci != cj {
			return ci < cj
		}
		return ordered[i].Compare(ordered[j]) < 0
	})
	labels := make(map[rdf.Term]string, len(ordered))
	for i, b := range ordered {
		labels[b] = fmt.Sprintf("c%d", i)
	}
	return labels
}

func hashStrings(parts []string) uint64 {
	h := fnv.New64a()
	for _, p := range parts {
		_, _ = h.Write([]byte(p))
		_, _ = h.Write([]byte{0})
	}
	return h.Sum64()
}

func mix(c uint64, salt string) uint64 {
	return hashStrings([]string{fmt.Sprintf("%016x", c), salt})
}

func digestOf(g *rdf.Graph) string {
	sum := sha256.Sum256([]byte(g.NTriples()))
	return hex.EncodeToString(sum[:])
}
