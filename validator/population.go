// Package validator drives end-to-end comparison runs between a Stardog
// and a GraphDB copy of the same dataset: population discovery, sampling,
// per-entity subgraph comparison under canonical blank-node identity, and
// report aggregation.
package validator

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/Kronmar-Bafu/lindasnext-migration-helper/errors"
	"github.com/Kronmar-Bafu/lindasnext-migration-helper/sparql"
)

// Population is the set of entity IRIs of one rdf:type present in one
// store at one point in time. No structure beyond set membership.
type Population map[string]struct{}

// Sorted returns the member IRIs in sorted order.
func (p Population) Sorted() []string {
	out := make([]string, 0, len(p))
	for iri := range p {
		out = append(out, iri)
	}
	sort.Strings(out)
	return out
}

// Shared returns the intersection with another population.
func (p Population) Shared(other Population) Population {
	out := make(Population)
	for iri := range p {
		if _, ok := other[iri]; ok {
			out[iri] = struct{}{}
		}
	}
	return out
}

// Minus returns the members of p absent from other.
func (p Population) Minus(other Population) Population {
	out := make(Population)
	for iri := range p {
		if _, ok := other[iri]; !ok {
			out[iri] = struct{}{}
		}
	}
	return out
}

// Discover fetches the complete set of entity IRIs of the given type from
// one store. All matches are fetched, never a capped page: entities
// missing entirely from one store are a primary class of bug this tool
// exists to catch.
func Discover(ctx context.Context, client *sparql.Client, graphIRI, typeIRI string) (Population, error) {
	bindings, err := client.Select(ctx, sparql.DiscoverByTypeQuery(graphIRI, typeIRI))
	if err != nil {
		return nil, err
	}
	pop := make(Population, len(bindings))
	for _, b := range bindings {
		term, ok := b["item"]
		if !ok {
			return nil, apperrors.WrapInvalid(apperrors.ErrMissingBinding,
				"Discover", "Discover", "item binding extraction")
		}
		pop[term.Value] = struct{}{}
	}
	return pop, nil
}

// discoverBoth runs discovery against both stores concurrently. The two
// calls are independent reads of different systems.
func discoverBoth(ctx context.Context, stardog, graphdb *sparql.Client,
	pair GraphPair, typeIRI string, timeout time.Duration) (Population, Population, error) {

	var popStardog, popGraphDB Population
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		fctx, cancel := context.WithTimeout(gctx, timeout)
		defer cancel()
		var err error
		popStardog, err = Discover(fctx, stardog, pair.StardogGraph, typeIRI)
		return err
	})
	g.Go(func() error {
		fctx, cancel := context.WithTimeout(gctx, timeout)
		defer cancel()
		var err error
		popGraphDB, err = Discover(fctx, graphdb, pair.GraphDBGraph, typeIRI)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return popStardog, popGraphDB, nil
}
