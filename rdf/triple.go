package rdf

// Triple is a single RDF statement. Subjects are IRIs or blank nodes,
// predicates are always IRIs, objects may be any term kind. Triples are
// immutable value types and comparable.
type Triple struct {
	Subject   Term
	Predicate Term
	Object    Term
}

// NewTriple constructs a triple from its three components.
func NewTriple(subject, predicate, object Term) Triple {
	return Triple{Subject: subject, Predicate: predicate, Object: object}
}

// NTriples renders the triple as one N-Triples line, terminator included,
// without a trailing newline.
func (t Triple) NTriples() string {
	return t.Subject.N3() + " " + t.Predicate.N3() + " " + t.Object.N3() + " ."
}

// Compare orders triples by subject, predicate, then object.
func (t Triple) Compare(o Triple) int {
	if c := t.Subject.Compare(o.Subject); c != 0 {
		return c
	}
	if c := t.Predicate.Compare(o.Predicate); c != 0 {
		return c
	}
	return t.Object.Compare(o.Object)
}

// HasBlank reports whether either end of the triple is a blank node.
func (t Triple) HasBlank() bool {
	return t.Subject.IsBlank() || t.Object.IsBlank()
}
