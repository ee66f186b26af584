package validator

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Kronmar-Bafu/lindasnext-migration-helper/errors"
	"github.com/Kronmar-Bafu/lindasnext-migration-helper/sparql"
)

func TestPopulationSetAlgebra(t *testing.T) {
	stardog := populationOf("a", "b", "c")
	graphdb := populationOf("b", "c", "d")

	assert.Equal(t, []string{"b", "c"}, stardog.Shared(graphdb).Sorted())
	assert.Equal(t, []string{"a"}, stardog.Minus(graphdb).Sorted())
	assert.Equal(t, []string{"d"}, graphdb.Minus(stardog).Sorted())

	empty := populationOf()
	assert.Empty(t, stardog.Shared(empty).Sorted())
	assert.Equal(t, []string{"a", "b", "c"}, stardog.Minus(empty).Sorted())
	assert.Empty(t, empty.Minus(stardog).Sorted())
}

func selectResponse(iris ...string) string {
	rows := make([]string, 0, len(iris))
	for _, iri := range iris {
		rows = append(rows, fmt.Sprintf(`{"item":{"type":"uri","value":"%s"}}`, iri))
	}
	return `{"results":{"bindings":[` + strings.Join(rows, ",") + `]}}`
}

func TestDiscover(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("query")
		assert.Contains(t, q, "SELECT DISTINCT ?item")
		assert.Contains(t, q, "<https://cube.link/Observation>")
		_, _ = w.Write([]byte(selectResponse(
			"http://example.org/obs/1",
			"http://example.org/obs/2",
			"http://example.org/obs/1", // stores may echo duplicates
		)))
	}))
	defer srv.Close()

	client, err := sparql.NewClient("stardog/test", srv.URL)
	require.NoError(t, err)

	pop, err := Discover(context.Background(), client, "http://example.org/g", "https://cube.link/Observation")
	require.NoError(t, err)
	assert.Equal(t, []string{"http://example.org/obs/1", "http://example.org/obs/2"}, pop.Sorted())
}

func TestDiscoverEmptyPopulation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"results":{"bindings":[]}}`))
	}))
	defer srv.Close()

	client, err := sparql.NewClient("graphdb/test", srv.URL)
	require.NoError(t, err)

	pop, err := Discover(context.Background(), client, "http://example.org/g", "https://cube.link/Cube")
	require.NoError(t, err)
	assert.Empty(t, pop)
}

func TestDiscoverMissingBinding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"results":{"bindings":[{"wrong":{"type":"uri","value":"http://example.org/x"}}]}}`))
	}))
	defer srv.Close()

	client, err := sparql.NewClient("stardog/test", srv.URL)
	require.NoError(t, err)

	_, err = Discover(context.Background(), client, "http://example.org/g", "https://cube.link/Cube")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrMissingBinding)
}

func TestDiscoverEndpointError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "repository unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client, err := sparql.NewClient("graphdb/test", srv.URL)
	require.NoError(t, err)

	_, err = Discover(context.Background(), client, "http://example.org/g", "https://cube.link/Cube")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrQueryFailed)
}
