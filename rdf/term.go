// Package rdf provides the in-memory RDF data model used by the validator:
// a closed set of term variants (IRI, blank node, literal), triples, and a
// set-semantics graph container with N-Triples parsing and serialization.
package rdf

import (
	"fmt"
	"strings"
)

// Kind discriminates the closed set of RDF term variants.
type Kind int

const (
	// KindIRI is an absolute resource identifier, compared by exact
	// string equality.
	KindIRI Kind = iota

	// KindBlank is an anonymous node. Labels are fetch-local; identity
	// across graphs is only established structurally (see rdf/canon).
	KindBlank

	// KindLiteral is a lexical value with optional language tag or
	// datatype IRI.
	KindLiteral
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindIRI:
		return "iri"
	case KindBlank:
		return "blank"
	case KindLiteral:
		return "literal"
	default:
		return "unknown"
	}
}

// Term is a single RDF node. Terms are immutable value types: all fields
// are strings, so Term is comparable and usable as a map key.
//
// Field usage by kind:
//   - KindIRI: Value holds the IRI.
//   - KindBlank: Value holds the label without the "_:" prefix.
//   - KindLiteral: Value holds the lexical form; Lang and Datatype are
//     optional and mutually exclusive.
type Term struct {
	Kind     Kind
	Value    string
	Lang     string
	Datatype string
}

// NewIRI creates an IRI term.
func NewIRI(iri string) Term {
	return Term{Kind: KindIRI, Value: iri}
}

// NewBlank creates a blank node term from a label without the "_:" prefix.
func NewBlank(label string) Term {
	return Term{Kind: KindBlank, Value: label}
}

// NewLiteral creates a plain literal term.
func NewLiteral(lexical string) Term {
	return Term{Kind: KindLiteral, Value: lexical}
}

// NewLangLiteral creates a language-tagged literal term.
func NewLangLiteral(lexical, lang string) Term {
	return Term{Kind: KindLiteral, Value: lexical, Lang: lang}
}

// NewTypedLiteral creates a literal term with an explicit datatype IRI.
func NewTypedLiteral(lexical, datatype string) Term {
	return Term{Kind: KindLiteral, Value: lexical, Datatype: datatype}
}

// IsBlank reports whether the term is a blank node.
func (t Term) IsBlank() bool {
	return t.Kind == KindBlank
}

// IsLiteral reports whether the term is a literal.
func (t Term) IsLiteral() bool {
	return t.Kind == KindLiteral
}

// N3 renders the term in N-Triples syntax: <iri>, _:label, or a quoted
// literal with optional @lang or ^^<datatype> suffix.
func (t Term) N3() string {
	switch t.Kind {
	case KindIRI:
		return "<" + t.Value + ">"
	case KindBlank:
		return "_:" + t.Value
	case KindLiteral:
		s := `"` + escapeLiteral(t.Value) + `"`
		if t.Lang != "" {
			return s + "@" + t.Lang
		}
		if t.Datatype != "" {
			return s + "^^<" + t.Datatype + ">"
		}
		return s
	default:
		return fmt.Sprintf("?%q", t.Value)
	}
}

// Compare orders terms for stable serialization: by kind, then by value,
// language and datatype. Returns -1, 0 or +1.
func (t Term) Compare(o Term) int {
	if t.Kind != o.Kind {
		if t.Kind < o.Kind {
			return -1
		}
		return 1
	}
	if c := strings.Compare(t.Value, o.Value); c != 0 {
		return c
	}
	if c := strings.Compare(t.Lang, o.Lang); c != 0 {
		return c
	}
	return strings.Compare(t.Datatype, o.Datatype)
}

// escapeLiteral applies the N-Triples string escapes to a lexical form.
func escapeLiteral(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(&b, `\u%04X`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}
