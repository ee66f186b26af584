package rdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterSet(t *testing.T) {
	fs := NewFilterSet(
		"http://purl.org/dc/terms/modified",
		"http://www.w3.org/ns/dcat#dateModified",
		"",
		"http://purl.org/dc/terms/modified",
	)

	assert.True(t, fs.Excludes("http://purl.org/dc/terms/modified"))
	assert.True(t, fs.Excludes("http://www.w3.org/ns/dcat#dateModified"))
	assert.False(t, fs.Excludes("http://schema.org/dateModified"))
	assert.False(t, fs.Excludes(""))

	assert.Equal(t, []string{
		"http://purl.org/dc/terms/modified",
		"http://www.w3.org/ns/dcat#dateModified",
	}, fs.IRIs())
}

func TestFilterSetEmpty(t *testing.T) {
	fs := NewFilterSet()
	assert.False(t, fs.Excludes("http://purl.org/dc/terms/modified"))
	assert.Empty(t, fs.IRIs())

	var nilSet FilterSet
	assert.False(t, nilSet.Excludes("http://purl.org/dc/terms/modified"))
}
