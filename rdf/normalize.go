package rdf

import "golang.org/x/text/unicode/norm"

// NormalizeLiteral returns the term with its lexical form rewritten to
// Unicode Normalization Form C. Language tag and datatype pass through
// unchanged; non-literal terms are returned as-is — IRIs are compared
// exactly as fetched.
//
// Stardog and GraphDB may serialize visually identical characters with
// different decompositions (precomposed "é" vs "e"+combining accent);
// without this step structurally identical data reads as a mismatch.
func NormalizeLiteral(t Term) Term {
	if t.Kind != KindLiteral {
		return t
	}
	if nfc := norm.NFC.String(t.Value); nfc != t.Value {
		t.Value = nfc
	}
	return t
}
