package validator

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRand() *rand.Rand {
	return rand.New(rand.NewPCG(42, 7))
}

func populationOf(iris ...string) Population {
	pop := make(Population, len(iris))
	for _, iri := range iris {
		pop[iri] = struct{}{}
	}
	return pop
}

func TestSampleSmallPopulationReturnedWhole(t *testing.T) {
	pop := populationOf(
		"http://example.org/obs/2",
		"http://example.org/obs/0",
		"http://example.org/obs/1",
	)

	got := Sample(pop, 100, testRand())
	assert.Equal(t, []string{
		"http://example.org/obs/0",
		"http://example.org/obs/1",
		"http://example.org/obs/2",
	}, got)
}

func TestSampleExactBoundary(t *testing.T) {
	pop := populationOf("a", "b", "c")
	got := Sample(pop, 3, testRand())
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestSampleLargePopulation(t *testing.T) {
	pop := make(Population, 1000)
	for i := 0; i < 1000; i++ {
		pop[fmt.Sprintf("http://example.org/obs/%04d", i)] = struct{}{}
	}

	got := Sample(pop, 100, testRand())
	require.Len(t, got, 100)

	assert.True(t, sort.StringsAreSorted(got))

	seen := make(map[string]struct{}, len(got))
	for _, iri := range got {
		_, dup := seen[iri]
		assert.False(t, dup, "sample drew %s twice", iri)
		seen[iri] = struct{}{}
		_, member := pop[iri]
		assert.True(t, member, "sample drew %s outside the population", iri)
	}
}

func TestSampleDeterministicForSeed(t *testing.T) {
	pop := make(Population, 500)
	for i := 0; i < 500; i++ {
		pop[fmt.Sprintf("http://example.org/obs/%03d", i)] = struct{}{}
	}

	a := Sample(pop, 50, rand.New(rand.NewPCG(1, 2)))
	b := Sample(pop, 50, rand.New(rand.NewPCG(1, 2)))
	assert.Equal(t, a, b)
}

func TestSampleUnlimitedWhenMaxNonPositive(t *testing.T) {
	pop := populationOf("a", "b", "c", "d")
	assert.Len(t, Sample(pop, 0, testRand()), 4)
	assert.Len(t, Sample(pop, -1, testRand()), 4)
}
