// Package config loads and validates the validator configuration: the
// known endpoints per store kind, named dataset presets pairing two graph
// IRIs, the filter label definitions, and sampling limits. Configuration
// is loaded once per run and treated as immutable for its duration.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	apperrors "github.com/Kronmar-Bafu/lindasnext-migration-helper/errors"
	"github.com/Kronmar-Bafu/lindasnext-migration-helper/rdf"
	"github.com/Kronmar-Bafu/lindasnext-migration-helper/vocabulary"
)

// DefaultMaxSampleSize bounds per-entity deep comparison when a preset or
// flag does not override it.
const DefaultMaxSampleSize = 100

// Endpoint is one named SPARQL endpoint.
type Endpoint struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Preset pairs the two named-graph IRIs holding the same dataset in the
// two stores. Graph IRIs may differ: LINDAS renamed several graphs during
// migration.
type Preset struct {
	Name           string   `yaml:"name"`
	StardogGraph   string   `yaml:"st_graph"`
	GraphDBGraph   string   `yaml:"gdb_graph"`
	DefaultFilters []string `yaml:"default_filters,omitempty"`
}

// Sampling holds the deep-comparison sampling limits.
type Sampling struct {
	MaxSampleSize int `yaml:"max_sample_size"`
}

// Config represents the complete validator configuration.
type Config struct {
	StardogEndpoints []Endpoint        `yaml:"endpoints_stardog"`
	GraphDBEndpoints []Endpoint        `yaml:"endpoints_graphdb"`
	Presets          []Preset          `yaml:"presets"`
	FilterDefs       map[string]string `yaml:"filter_definitions,omitempty"`
	Sampling         Sampling          `yaml:"sampling,omitempty"`
}

// Load reads and validates a YAML configuration file, applying defaults
// for filter definitions and sampling.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.WrapFatal(err, "Config", "Load", "file reading")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, apperrors.WrapFatal(fmt.Errorf("%w: %v", apperrors.ErrInvalidConfig, err),
			"Config", "Load", "YAML decoding")
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.FilterDefs == nil {
		c.FilterDefs = vocabulary.DefaultFilterDefinitions()
	} else {
		for label, iri := range vocabulary.DefaultFilterDefinitions() {
			if _, ok := c.FilterDefs[label]; !ok {
				c.FilterDefs[label] = iri
			}
		}
	}
	if c.Sampling.MaxSampleSize == 0 {
		c.Sampling.MaxSampleSize = DefaultMaxSampleSize
	}
}

// Validate checks structural validity of the configuration.
func (c *Config) Validate() error {
	if len(c.StardogEndpoints) == 0 {
		return apperrors.WrapFatal(fmt.Errorf("%w: endpoints_stardog is empty",
			apperrors.ErrMissingConfig), "Config", "Validate", "endpoint validation")
	}
	if len(c.GraphDBEndpoints) == 0 {
		return apperrors.WrapFatal(fmt.Errorf("%w: endpoints_graphdb is empty",
			apperrors.ErrMissingConfig), "Config", "Validate", "endpoint validation")
	}
	for _, eps := range [][]Endpoint{c.StardogEndpoints, c.GraphDBEndpoints} {
		for _, ep := range eps {
			if ep.Name == "" || ep.URL == "" {
				return apperrors.WrapFatal(fmt.Errorf("%w: endpoint needs name and url",
					apperrors.ErrInvalidConfig), "Config", "Validate", "endpoint validation")
			}
		}
	}
	for _, p := range c.Presets {
		if p.Name == "" || p.StardogGraph == "" || p.GraphDBGraph == "" {
			return apperrors.WrapFatal(
				fmt.Errorf("%w: preset %q needs name, st_graph and gdb_graph",
					apperrors.ErrInvalidConfig, p.Name),
				"Config", "Validate", "preset validation")
		}
		for _, label := range p.DefaultFilters {
			if _, ok := c.FilterDefs[label]; !ok {
				return apperrors.WrapFatal(
					fmt.Errorf("%w: preset %q references %q", apperrors.ErrUnknownFilter, p.Name, label),
					"Config", "Validate", "preset validation")
			}
		}
	}
	if c.Sampling.MaxSampleSize < 1 {
		return apperrors.WrapFatal(fmt.Errorf("%w: max_sample_size must be >= 1",
			apperrors.ErrInvalidConfig), "Config", "Validate", "sampling validation")
	}
	return nil
}

// StardogEndpoint resolves a Stardog endpoint by name.
func (c *Config) StardogEndpoint(name string) (Endpoint, error) {
	return findEndpoint(c.StardogEndpoints, name, "stardog")
}

// GraphDBEndpoint resolves a GraphDB endpoint by name.
func (c *Config) GraphDBEndpoint(name string) (Endpoint, error) {
	return findEndpoint(c.GraphDBEndpoints, name, "graphdb")
}

func findEndpoint(eps []Endpoint, name, kind string) (Endpoint, error) {
	for _, ep := range eps {
		if ep.Name == name {
			return ep, nil
		}
	}
	return Endpoint{}, apperrors.WrapFatal(
		fmt.Errorf("%w: %s %q", apperrors.ErrUnknownEndpoint, kind, name),
		"Config", "findEndpoint", "endpoint lookup")
}

// Preset resolves a preset by name.
func (c *Config) Preset(name string) (Preset, error) {
	for _, p := range c.Presets {
		if p.Name == name {
			return p, nil
		}
	}
	return Preset{}, apperrors.WrapFatal(
		fmt.Errorf("%w: %q", apperrors.ErrUnknownPreset, name),
		"Config", "Preset", "preset lookup")
}

// ResolveFilters builds the excluded-predicate set from filter labels plus
// additional raw IRIs (the "additional URIs to exclude" escape hatch).
// Unknown labels are an error; empty extra entries are ignored.
func (c *Config) ResolveFilters(labels, extraIRIs []string) (rdf.FilterSet, error) {
	fs := rdf.NewFilterSet()
	for _, label := range labels {
		iri, ok := c.FilterDefs[label]
		if !ok {
			return nil, apperrors.WrapInvalid(
				fmt.Errorf("%w: %q", apperrors.ErrUnknownFilter, label),
				"Config", "ResolveFilters", "filter lookup")
		}
		fs[iri] = struct{}{}
	}
	for _, iri := range extraIRIs {
		if iri = strings.TrimSpace(iri); iri != "" {
			fs[iri] = struct{}{}
		}
	}
	return fs, nil
}
