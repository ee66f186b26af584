package rdf

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraphAddCollapsesDuplicates(t *testing.T) {
	g := NewGraph()
	triple := NewTriple(NewIRI("http://example.org/s"), NewIRI("http://example.org/p"), NewLiteral("v"))

	g.Add(triple)
	g.Add(triple)
	g.Add(triple)

	assert.Equal(t, 1, g.Len())
	assert.True(t, g.Has(triple))
}

func TestGraphAddNormalizesLiteralObjects(t *testing.T) {
	g := NewGraph()
	s := NewIRI("http://example.org/s")
	p := NewIRI("http://example.org/p")

	// NFD: "cafe" plus combining acute accent
	g.Add(NewTriple(s, p, NewLangLiteral("cafe\u0301", "en")))
	// NFC: precomposed e-acute
	g.Add(NewTriple(s, p, NewLangLiteral("café", "en")))

	assert.Equal(t, 1, g.Len(), "NFC and NFD spellings must collapse to one triple")
	assert.True(t, g.Has(NewTriple(s, p, NewLangLiteral("café", "en"))))
}

func TestGraphTriplesSorted(t *testing.T) {
	g := NewGraph()
	s := NewIRI("http://example.org/s")
	g.Add(NewTriple(s, NewIRI("http://example.org/b"), NewLiteral("2")))
	g.Add(NewTriple(s, NewIRI("http://example.org/a"), NewLiteral("1")))
	g.Add(NewTriple(s, NewIRI("http://example.org/a"), NewLiteral("0")))

	want := []Triple{
		NewTriple(s, NewIRI("http://example.org/a"), NewLiteral("0")),
		NewTriple(s, NewIRI("http://example.org/a"), NewLiteral("1")),
		NewTriple(s, NewIRI("http://example.org/b"), NewLiteral("2")),
	}
	if diff := cmp.Diff(want, g.Triples()); diff != "" {
		t.Errorf("Triples() order mismatch (-want +got):\n%s", diff)
	}
}

func TestGraphAddAll(t *testing.T) {
	a := NewGraph()
	b := NewGraph()
	s := NewIRI("http://example.org/s")
	p := NewIRI("http://example.org/p")
	a.Add(NewTriple(s, p, NewLiteral("1")))
	b.Add(NewTriple(s, p, NewLiteral("1")))
	b.Add(NewTriple(s, p, NewLiteral("2")))

	a.AddAll(b)
	assert.Equal(t, 2, a.Len())

	a.AddAll(nil)
	assert.Equal(t, 2, a.Len())
}

func TestGraphBlankNodes(t *testing.T) {
	g := NewGraph()
	s := NewIRI("http://example.org/s")
	p := NewIRI("http://example.org/p")
	g.Add(NewTriple(s, p, NewBlank("b1")))
	g.Add(NewTriple(NewBlank("b1"), p, NewBlank("b0")))
	g.Add(NewTriple(s, p, NewLiteral("ground")))

	bnodes := g.BlankNodes()
	require.Len(t, bnodes, 2)
	assert.Equal(t, "b0", bnodes[0].Value)
	assert.Equal(t, "b1", bnodes[1].Value)
}

func TestGraphNTriples(t *testing.T) {
	g := NewGraph()
	assert.Equal(t, "", g.NTriples())

	g.Add(NewTriple(NewIRI("http://example.org/s"), NewIRI("http://example.org/p"), NewLiteral("v")))
	out := g.NTriples()
	assert.Equal(t, `<http://example.org/s> <http://example.org/p> "v" .`+"\n", out)

	var sb strings.Builder
	require.NoError(t, g.WriteNTriples(&sb))
	assert.Equal(t, out, sb.String())
}
