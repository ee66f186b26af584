package rdf

import (
	"io"
	"sort"
	"strings"
)

// Graph is an unordered set of triples scoped to one fetch. RDF triples
// are set-valued, so duplicate inserts collapse. Literal objects are run
// through NormalizeLiteral on entry so that every graph only ever holds
// NFC lexical forms.
//
// Graph is not safe for concurrent mutation; each comparison run builds
// its graphs from a single goroutine and treats them as immutable once
// handed to canonicalization or diffing.
type Graph struct {
	triples map[Triple]struct{}
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{triples: make(map[Triple]struct{})}
}

// Add inserts a triple, normalizing a literal object first. Duplicate
// triples are collapsed.
func (g *Graph) Add(t Triple) {
	t.Object = NormalizeLiteral(t.Object)
	g.triples[t] = struct{}{}
}

// AddAll inserts every triple of other into g.
func (g *Graph) AddAll(other *Graph) {
	if other == nil {
		return
	}
	for t := range other.triples {
		g.triples[t] = struct{}{}
	}
}

// Has reports whether the graph contains the triple (after literal
// normalization of the object, matching Add).
func (g *Graph) Has(t Triple) bool {
	t.Object = NormalizeLiteral(t.Object)
	_, ok := g.triples[t]
	return ok
}

// Len returns the number of distinct triples.
func (g *Graph) Len() int {
	return len(g.triples)
}

// Triples returns all triples in stable sorted order.
func (g *Graph) Triples() []Triple {
	out := make([]Triple, 0, len(g.triples))
	for t := range g.triples {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Compare(out[j]) < 0 })
	return out
}

// BlankNodes returns the distinct blank node terms appearing anywhere in
// the graph, in stable sorted order.
func (g *Graph) BlankNodes() []Term {
	seen := make(map[Term]struct{})
	for t := range g.triples {
		if t.Subject.IsBlank() {
			seen[t.Subject] = struct{}{}
		}
		if t.Object.IsBlank() {
			seen[t.Object] = struct{}{}
		}
	}
	out := make([]Term, 0, len(seen))
	for b := range seen {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Compare(out[j]) < 0 })
	return out
}

// NTriples serializes the graph as sorted N-Triples text, one triple per
// line with a trailing newline, empty string for an empty graph.
func (g *Graph) NTriples() string {
	ts := g.Triples()
	if len(ts) == 0 {
		return ""
	}
	var b strings.Builder
	for _, t := range ts {
		b.WriteString(t.NTriples())
		b.WriteByte('\n')
	}
	return b.String()
}

// WriteNTriples writes the sorted N-Triples serialization to w.
func (g *Graph) WriteNTriples(w io.Writer) error {
	_, err := io.WriteString(w, g.NTriples())
	return err
}
