// Package vocabulary provides the IRI constants the validator works with:
// the cube.link vocabulary that structures LINDAS datasets and the
// metadata predicates commonly excluded from comparison.
package vocabulary

// Core RDF namespaces.
const (
	RDFType = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"

	XSDString  = "http://www.w3.org/2001/XMLSchema#string"
	XSDInteger = "http://www.w3.org/2001/XMLSchema#integer"
	XSDDecimal = "http://www.w3.org/2001/XMLSchema#decimal"
	XSDDate    = "http://www.w3.org/2001/XMLSchema#date"
)

// cube.link vocabulary (https://cube.link/) used by LINDAS datasets.
const (
	CubeBase = "https://cube.link/"

	// CubeClass identifies dataset cubes: the typed entities whose
	// metadata is compared predicate-filtered and exhaustively.
	CubeClass = CubeBase + "Cube"

	// ObservationClass identifies observations: the large population
	// compared by sampled subject fetches.
	ObservationClass = CubeBase + "Observation"

	// ConstraintClass identifies SHACL constraint roots: entities with
	// nested anonymous structure compared via deep blank-node subgraphs.
	ConstraintClass = CubeBase + "Constraint"

	// ObservationSetClass links cubes to their observations.
	ObservationSetClass = CubeBase + "ObservationSet"
)

// Metadata predicates that legitimately differ between a source store and
// its migrated copy (sync timestamps), offered as excludable filters.
const (
	DCTermsModified    = "http://purl.org/dc/terms/modified"
	DCATDateModified   = "http://www.w3.org/ns/dcat#dateModified"
	SchemaDateModified = "http://schema.org/dateModified"
)

// DefaultFilterDefinitions maps human-readable filter labels to predicate
// IRIs. Configuration files may extend or override this mapping.
func DefaultFilterDefinitions() map[string]string {
	return map[string]string{
		"DCTERMS: modified":    DCTermsModified,
		"DCAT: dateModified":   DCATDateModified,
		"SCHEMA: dateModified": SchemaDateModified,
	}
}
