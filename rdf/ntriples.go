package rdf

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	apperrors "github.com/Kronmar-Bafu/lindasnext-migration-helper/errors"
)

// ParseNTriples parses an N-Triples document into a fresh graph. Literal
// objects are NFC-normalized as they are inserted (Graph.Add). Empty lines
// and comment lines starting with '#' are skipped.
//
// The grammar covered is the N-Triples subset emitted by the SPARQL
// CONSTRUCT responses of Stardog and GraphDB: IRIs, blank node labels,
// and literals with string escapes, language tags or datatype IRIs.
func ParseNTriples(data []byte) (*Graph, error) {
	g := NewGraph()
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		t, err := parseTripleLine(line)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", apperrors.ErrParseFailed, lineNo, err)
		}
		g.Add(t)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrParseFailed, err)
	}
	return g, nil
}

type lineScanner struct {
	s   string
	pos int
}

func parseTripleLine(line string) (Triple, error) {
	ls := &lineScanner{s: line}

	subject, err := ls.readSubject()
	if err != nil {
		return Triple{}, err
	}
	ls.skipSpace()
	predicate, err := ls.readIRI()
	if err != nil {
		return Triple{}, err
	}
	ls.skipSpace()
	object, err := ls.readObject()
	if err != nil {
		return Triple{}, err
	}
	ls.skipSpace()
	if !ls.consume('.') {
		return Triple{}, fmt.Errorf("missing terminating '.'")
	}
	ls.skipSpace()
	if ls.pos != len(ls.s) {
		return Triple{}, fmt.Errorf("trailing content after '.'")
	}
	return NewTriple(subject, predicate, object), nil
}

func (ls *lineScanner) skipSpace() {
	for ls.pos < len(ls.s) && (ls.s[ls.pos] == ' ' || ls.s[ls.pos] == '\t') {
		ls.pos++
	}
}

func (ls *lineScanner) consume(c byte) bool {
	if ls.pos < len(ls.s) && ls.s[ls.pos] == c {
		ls.pos++
		return true
	}
	return false
}

func (ls *lineScanner) readSubject() (Term, error) {
	if strings.HasPrefix(ls.s[ls.pos:], "_:") {
		return ls.readBlank()
	}
	return ls.readIRI()
}

func (ls *lineScanner) readObject() (Term, error) {
	switch {
	case strings.HasPrefix(ls.s[ls.pos:], "_:"):
		return ls.readBlank()
	case ls.pos < len(ls.s) && ls.s[ls.pos] == '"':
		return ls.readLiteral()
	default:
		return ls.readIRI()
	}
}

func (ls *lineScanner) readIRI() (Term, error) {
	if !ls.consume('<') {
		return Term{}, fmt.Errorf("expected '<' at position %d", ls.pos)
	}
	end := strings.IndexByte(ls.s[ls.pos:], '>')
	if end < 0 {
		return Term{}, fmt.Errorf("unterminated IRI")
	}
	raw := ls.s[ls.pos : ls.pos+end]
	ls.pos += end + 1
	iri, err := unescape(raw)
	if err != nil {
		return Term{}, fmt.Errorf("bad IRI escape: %v", err)
	}
	return NewIRI(iri), nil
}

func (ls *lineScanner) readBlank() (Term, error) {
	ls.pos += 2 // "_:"
	start := ls.pos
	for ls.pos < len(ls.s) {
		c := ls.s[ls.pos]
		if c == ' ' || c == '\t' {
			break
		}
		ls.pos++
	}
	if ls.pos == start {
		return Term{}, fmt.Errorf("empty blank node label")
	}
	return NewBlank(ls.s[start:ls.pos]), nil
}

func (ls *lineScanner) readLiteral() (Term, error) {
	ls.pos++ // opening quote
	var b strings.Builder
	for {
		if ls.pos >= len(ls.s) {
			return Term{}, fmt.Errorf("unterminated literal")
		}
		c := ls.s[ls.pos]
		if c == '"' {
			ls.pos++
			break
		}
		if c == '\\' {
			r, n, err := decodeEscape(ls.s[ls.pos:])
			if err != nil {
				return Term{}, err
			}
			b.WriteRune(r)
			ls.pos += n
			continue
		}
		b.WriteByte(c)
		ls.pos++
	}

	lexical := b.String()
	switch {
	case ls.pos < len(ls.s) && ls.s[ls.pos] == '@':
		ls.pos++
		start := ls.pos
		for ls.pos < len(ls.s) && isLangChar(ls.s[ls.pos]) {
			ls.pos++
		}
		if ls.pos == start {
			return Term{}, fmt.Errorf("empty language tag")
		}
		return NewLangLiteral(lexical, ls.s[start:ls.pos]), nil
	case strings.HasPrefix(ls.s[ls.pos:], "^^"):
		ls.pos += 2
		dt, err := ls.readIRI()
		if err != nil {
			return Term{}, err
		}
		return NewTypedLiteral(lexical, dt.Value), nil
	default:
		return NewLiteral(lexical), nil
	}
}

func isLangChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '-'
}

// unescape resolves \uXXXX and \UXXXXXXXX sequences inside an IRI.
func unescape(s string) (string, error) {
	if !strings.Contains(s, `\`) {
		return s, nil
	}
	var b strings.Builder
	for i := 0; i < len(s); {
		if s[i] != '\\' {
			b.WriteByte(s[i])
			i++
			continue
		}
		r, n, err := decodeEscape(s[i:])
		if err != nil {
			return "", err
		}
		b.WriteRune(r)
		i += n
	}
	return b.String(), nil
}

// decodeEscape decodes one backslash escape at the start of s, returning
// the rune and the number of input bytes consumed.
func decodeEscape(s string) (rune, int, error) {
	if len(s) < 2 {
		return 0, 0, fmt.Errorf("dangling backslash")
	}
	switch s[1] {
	case 't':
		return '\t', 2, nil
	case 'b':
		return '\b', 2, nil
	case 'n':
		return '\n', 2, nil
	case 'r':
		return '\r', 2, nil
	case 'f':
		return '\f', 2, nil
	case '"':
		return '"', 2, nil
	case '\'':
		return '\'', 2, nil
	case '\\':
		return '\\', 2, nil
	case 'u':
		return decodeHexEscape(s, 4)
	case 'U':
		return decodeHexEscape(s, 8)
	default:
		return 0, 0, fmt.Errorf("unknown escape \\%c", s[1])
	}
}

func decodeHexEscape(s string, digits int) (rune, int, error) {
	if len(s) < 2+digits {
		return 0, 0, fmt.Errorf("truncated \\%c escape", s[1])
	}
	v, err := strconv.ParseUint(s[2:2+digits], 16, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("bad \\%c escape: %v", s[1], err)
	}
	r := rune(v)
	if !utf8.ValidRune(r) {
		return 0, 0, fmt.Errorf("escape \\%c%s is not a valid rune", s[1], s[2:2+digits])
	}
	return r, 2 + digits, nil
}
