// Package sparql constructs query text for the two stores and executes it
// over the SPARQL protocol (HTTP GET with a query parameter). CONSTRUCT
// responses are requested as N-Triples, SELECT responses as
// application/sparql-results+json.
package sparql

import (
	"fmt"
	"strings"

	"github.com/Kronmar-Bafu/lindasnext-migration-helper/rdf"
)

// anyPredicate is a property-path trick: negating an IRI that occurs in
// no dataset makes "!<...>" match every predicate, so "(!<...>)*" walks
// any predicate any number of times.
const anyPredicate = "!<http://nodefault>"

// FilterClause renders the predicate-exclusion clause, or an empty string
// when the filter set is empty. IRIs are sorted so the same filter set
// always produces identical query text against both stores.
func FilterClause(filter rdf.FilterSet) string {
	if len(filter) == 0 {
		return ""
	}
	iris := filter.IRIs()
	for i, iri := range iris {
		iris[i] = "<" + iri + ">"
	}
	return fmt.Sprintf("FILTER (?p NOT IN (%s))", strings.Join(iris, ", "))
}

// DiscoverByTypeQuery returns the SELECT query fetching every entity IRI
// of the given rdf:type in the named graph. Deliberately unbounded: a
// capped page would hide population-level mismatches.
func DiscoverByTypeQuery(graphIRI, typeIRI string) string {
	return fmt.Sprintf(
		"SELECT DISTINCT ?item WHERE { GRAPH <%s> { ?item a <%s> . } }",
		graphIRI, typeIRI)
}

// EntityMetadataQuery returns the CONSTRUCT query fetching the triples
// with the entity as subject, minus the excluded predicates.
func EntityMetadataQuery(graphIRI, entityIRI string, filter rdf.FilterSet) string {
	return fmt.Sprintf(
		"CONSTRUCT { <%s> ?p ?o . } WHERE { GRAPH <%s> { <%s> ?p ?o . %s} }",
		entityIRI, graphIRI, entityIRI, clauseWithSpace(FilterClause(filter)))
}

// SubjectTriplesQuery returns the unfiltered CONSTRUCT query fetching the
// triples with the entity as subject.
func SubjectTriplesQuery(graphIRI, entityIRI string) string {
	return EntityMetadataQuery(graphIRI, entityIRI, nil)
}

// DeepSubgraphQuery returns the CONSTRUCT query fetching the entity's
// nested anonymous structure: every node reachable from the start IRI via
// any predicate chain, restricted to blank nodes (or the start node
// itself) so that unrelated grounded data reachable by coincidence stays
// out. No predicate filtering here — dropping traversal edges would
// corrupt blank-node structural identity.
func DeepSubgraphQuery(graphIRI, entityIRI string) string {
	return fmt.Sprintf(`CONSTRUCT { ?bn ?p ?o . } WHERE {
  GRAPH <%s> {
    <%s> (%s)* ?bn .
    ?bn ?p ?o .
    FILTER (ISBLANK(?bn) || ?bn = <%s>)
  }
}`, graphIRI, entityIRI, anyPredicate, entityIRI)
}

// FullGraphQuery returns the CONSTRUCT query fetching the whole named
// graph, minus the excluded predicates.
func FullGraphQuery(graphIRI string, filter rdf.FilterSet) string {
	return fmt.Sprintf(
		"CONSTRUCT { ?s ?p ?o } WHERE { GRAPH <%s> { ?s ?p ?o . %s} }",
		graphIRI, clauseWithSpace(FilterClause(filter)))
}

func clauseWithSpace(clause string) string {
	if clause == "" {
		return ""
	}
	return clause + " "
}
