package sparql

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Kronmar-Bafu/lindasnext-migration-helper/errors"
	"github.com/Kronmar-Bafu/lindasnext-migration-helper/rdf"
)

func TestNewClientValidation(t *testing.T) {
	tests := []struct {
		name     string
		cname    string
		endpoint string
		wantErr  error
	}{
		{"valid", "stardog/test", "https://lindas.admin.ch/query", nil},
		{"missing name", "", "https://lindas.admin.ch/query", apperrors.ErrMissingConfig},
		{"missing endpoint", "stardog/test", "", apperrors.ErrMissingConfig},
		{"relative url", "stardog/test", "not-a-url", apperrors.ErrInvalidConfig},
		{"schemeless url", "stardog/test", "lindas.admin.ch/query", apperrors.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewClient(tt.cname, tt.endpoint)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.cname, c.Name())
		})
	}
}

func TestClientConstruct(t *testing.T) {
	var gotQuery, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", AcceptNTriples)
		_, _ = w.Write([]byte(
			"<http://example.org/s> <http://example.org/p> \"v\" .\n" +
				"<http://example.org/s> <http://example.org/q> _:b0 .\n"))
	}))
	defer srv.Close()

	c, err := NewClient("stardog/test", srv.URL)
	require.NoError(t, err)

	query := FullGraphQuery("http://example.org/g", nil)
	g, err := c.Construct(context.Background(), query)
	require.NoError(t, err)

	assert.Equal(t, query, gotQuery, "query must arrive unmangled through URL escaping")
	assert.Equal(t, AcceptNTriples, gotAccept)
	assert.Equal(t, 2, g.Len())
	assert.True(t, g.Has(rdf.NewTriple(
		rdf.NewIRI("http://example.org/s"), rdf.NewIRI("http://example.org/p"), rdf.NewLiteral("v"))))
}

func TestClientConstructParseError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("this is not n-triples\n"))
	}))
	defer srv.Close()

	c, err := NewClient("graphdb/test", srv.URL)
	require.NoError(t, err)

	_, err = c.Construct(context.Background(), "CONSTRUCT { ?s ?p ?o } WHERE { ?s ?p ?o }")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrParseFailed)
	assert.True(t, apperrors.IsInvalid(err))
}

func TestClientConstructServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "MALFORMED QUERY: Lexical error", http.StatusBadRequest)
	}))
	defer srv.Close()

	c, err := NewClient("stardog/test", srv.URL)
	require.NoError(t, err)

	_, err = c.Construct(context.Background(), "CONSTRUCT broken")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrQueryFailed)
	assert.Contains(t, err.Error(), "400")
	assert.Contains(t, err.Error(), "MALFORMED QUERY")
}

func TestClientConstructUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // reject all connections

	c, err := NewClient("stardog/test", srv.URL)
	require.NoError(t, err)

	_, err = c.Construct(context.Background(), "CONSTRUCT { ?s ?p ?o } WHERE { ?s ?p ?o }")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrEndpointUnreachable)
	assert.True(t, apperrors.IsTransient(err))
}

func TestClientConstructTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer srv.Close()

	c, err := NewClient("stardog/test", srv.URL)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = c.Construct(ctx, "CONSTRUCT { ?s ?p ?o } WHERE { ?s ?p ?o }")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrQueryTimeout)
	assert.True(t, apperrors.IsTransient(err))
}

func TestClientSelect(t *testing.T) {
	var gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", AcceptSPARQLResultsJSON)
		_, _ = w.Write([]byte(`{
		  "head": { "vars": ["item", "label", "count", "node"] },
		  "results": { "bindings": [
		    {
		      "item":  { "type": "uri", "value": "http://example.org/obs/1" },
		      "label": { "type": "literal", "xml:lang": "de", "value": "Wald" },
		      "count": { "type": "typed-literal", "datatype": "http://www.w3.org/2001/XMLSchema#integer", "value": "3" },
		      "node":  { "type": "bnode", "value": "b0" }
		    },
		    {
		      "item": { "type": "uri", "value": "http://example.org/obs/2" }
		    }
		  ] }
		}`))
	}))
	defer srv.Close()

	c, err := NewClient("graphdb/test", srv.URL)
	require.NoError(t, err)

	bindings, err := c.Select(context.Background(), DiscoverByTypeQuery("http://example.org/g", "https://cube.link/Observation"))
	require.NoError(t, err)
	assert.Equal(t, AcceptSPARQLResultsJSON, gotAccept)
	require.Len(t, bindings, 2)

	assert.Equal(t, rdf.NewIRI("http://example.org/obs/1"), bindings[0]["item"])
	assert.Equal(t, rdf.NewLangLiteral("Wald", "de"), bindings[0]["label"])
	assert.Equal(t, rdf.NewTypedLiteral("3", "http://www.w3.org/2001/XMLSchema#integer"), bindings[0]["count"])
	assert.Equal(t, rdf.NewBlank("b0"), bindings[0]["node"])

	assert.Equal(t, rdf.NewIRI("http://example.org/obs/2"), bindings[1]["item"])
	_, ok := bindings[1]["label"]
	assert.False(t, ok, "unbound variables must be absent from the row")
}

func TestClientSelectBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	c, err := NewClient("graphdb/test", srv.URL)
	require.NoError(t, err)

	_, err = c.Select(context.Background(), "SELECT * WHERE { ?s ?p ?o }")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrParseFailed)
}

func TestClientSelectUnknownBindingType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"results":{"bindings":[{"item":{"type":"triple","value":"x"}}]}}`))
	}))
	defer srv.Close()

	c, err := NewClient("graphdb/test", srv.URL)
	require.NoError(t, err)

	_, err = c.Select(context.Background(), "SELECT * WHERE { ?s ?p ?o }")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown binding type "triple"`)
}

func TestClientRateLimit(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		_, _ = w.Write([]byte(""))
	}))
	defer srv.Close()

	c, err := NewClient("stardog/test", srv.URL, WithRateLimit(1000, 1))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := c.Construct(context.Background(), "CONSTRUCT { ?s ?p ?o } WHERE { ?s ?p ?o }")
		require.NoError(t, err)
	}
	assert.Equal(t, 3, calls)
}
