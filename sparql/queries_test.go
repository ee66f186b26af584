package sparql

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Kronmar-Bafu/lindasnext-migration-helper/rdf"
)

const testGraph = "https://lindas.admin.ch/foen/ubd000502"

func TestFilterClause(t *testing.T) {
	tests := []struct {
		name   string
		filter rdf.FilterSet
		want   string
	}{
		{
			name:   "empty filter",
			filter: nil,
			want:   "",
		},
		{
			name:   "single predicate",
			filter: rdf.NewFilterSet("http://purl.org/dc/terms/modified"),
			want:   "FILTER (?p NOT IN (<http://purl.org/dc/terms/modified>))",
		},
		{
			name: "multiple predicates sorted",
			filter: rdf.NewFilterSet(
				"http://www.w3.org/ns/dcat#dateModified",
				"http://purl.org/dc/terms/modified",
			),
			want: "FILTER (?p NOT IN (<http://purl.org/dc/terms/modified>, <http://www.w3.org/ns/dcat#dateModified>))",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterClause(tt.filter))
		})
	}
}

func TestDiscoverByTypeQuery(t *testing.T) {
	q := DiscoverByTypeQuery(testGraph, "https://cube.link/Observation")
	assert.Equal(t,
		"SELECT DISTINCT ?item WHERE { GRAPH <"+testGraph+"> { ?item a <https://cube.link/Observation> . } }",
		q)
}

func TestEntityMetadataQuery(t *testing.T) {
	entity := "https://environment.ld.admin.ch/foen/ubd000502/cube"

	t.Run("without filter", func(t *testing.T) {
		q := EntityMetadataQuery(testGraph, entity, nil)
		assert.Equal(t,
			"CONSTRUCT { <"+entity+"> ?p ?o . } WHERE { GRAPH <"+testGraph+"> { <"+entity+"> ?p ?o . } }",
			q)
	})

	t.Run("with filter", func(t *testing.T) {
		filter := rdf.NewFilterSet("http://purl.org/dc/terms/modified")
		q := EntityMetadataQuery(testGraph, entity, filter)
		assert.Contains(t, q, "FILTER (?p NOT IN (<http://purl.org/dc/terms/modified>))")
		assert.Contains(t, q, "<"+entity+"> ?p ?o .")
	})

	t.Run("subject triples variant is unfiltered", func(t *testing.T) {
		assert.Equal(t, EntityMetadataQuery(testGraph, entity, nil), SubjectTriplesQuery(testGraph, entity))
	})
}

func TestDeepSubgraphQuery(t *testing.T) {
	entity := "https://environment.ld.admin.ch/foen/ubd000502/observation/0"
	q := DeepSubgraphQuery(testGraph, entity)

	assert.Contains(t, q, "<"+entity+"> (!<http://nodefault>)* ?bn .")
	assert.Contains(t, q, "FILTER (ISBLANK(?bn) || ?bn = <"+entity+">)")
	assert.Contains(t, q, "GRAPH <"+testGraph+">")
	assert.Contains(t, q, "CONSTRUCT { ?bn ?p ?o . }")
	assert.False(t, strings.Contains(q, "NOT IN"), "deep traversal must not exclude predicates")
}

func TestFullGraphQuery(t *testing.T) {
	t.Run("without filter", func(t *testing.T) {
		q := FullGraphQuery(testGraph, nil)
		assert.Equal(t, "CONSTRUCT { ?s ?p ?o } WHERE { GRAPH <"+testGraph+"> { ?s ?p ?o . } }", q)
	})

	t.Run("with filter", func(t *testing.T) {
		filter := rdf.NewFilterSet("http://schema.org/dateModified")
		q := FullGraphQuery(testGraph, filter)
		assert.Contains(t, q, "FILTER (?p NOT IN (<http://schema.org/dateModified>))")
	})
}

func TestQueryTextIdenticalAcrossStores(t *testing.T) {
	// Both stores must receive byte-identical query text for the same graph
	// and filter, otherwise the comparison compares queries, not data.
	filter := rdf.NewFilterSet(
		"http://purl.org/dc/terms/modified",
		"http://www.w3.org/ns/dcat#dateModified",
	)
	assert.Equal(t, FullGraphQuery(testGraph, filter), FullGraphQuery(testGraph, filter))
	assert.Equal(t, FilterClause(filter), FilterClause(filter))
}
