package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
)

// CLIConfig holds command-line configuration.
type CLIConfig struct {
	ConfigPath   string
	Preset       string
	Mode         string
	StardogEnv   string
	GraphDBEnv   string
	StardogGraph string
	GraphDBGraph string
	Filters      string
	ExtraExclude string
	MaxSample    int
	QPS          float64
	OutDir       string
	MetricsAddr  string
	LogLevel     string
	LogFormat    string
	ShowVersion  bool
	ShowHelp     bool
	Validate     bool
}

func parseFlags() *CLIConfig {
	cfg := &CLIConfig{}

	flag.StringVar(&cfg.ConfigPath, "config",
		getEnv("LINDAS_VALIDATOR_CONFIG", "presets.yaml"),
		"Path to configuration file (env: LINDAS_VALIDATOR_CONFIG)")

	flag.StringVar(&cfg.Preset, "preset", "",
		"Dataset preset name from the configuration file")

	flag.StringVar(&cfg.Mode, "mode", "metadata",
		"Comparison mode: full-graph, metadata, observations, constraints")

	flag.StringVar(&cfg.StardogEnv, "stardog", "",
		"Stardog endpoint name from the configuration file")

	flag.StringVar(&cfg.GraphDBEnv, "graphdb", "",
		"GraphDB endpoint name from the configuration file")

	flag.StringVar(&cfg.StardogGraph, "stardog-graph", "",
		"Stardog graph IRI (manual input, overrides the preset)")

	flag.StringVar(&cfg.GraphDBGraph, "graphdb-graph", "",
		"GraphDB graph IRI (manual input, overrides the preset)")

	flag.StringVar(&cfg.Filters, "filters", "",
		"Comma-separated filter labels to exclude (default: preset defaults)")

	flag.StringVar(&cfg.ExtraExclude, "exclude", "",
		"Comma-separated additional predicate IRIs to exclude")

	flag.IntVar(&cfg.MaxSample, "max-sample",
		getEnvInt("LINDAS_VALIDATOR_MAX_SAMPLE", 0),
		"Max entities deep-compared in sampled modes, 0 = config default (env: LINDAS_VALIDATOR_MAX_SAMPLE)")

	flag.Float64Var(&cfg.QPS, "qps", 0,
		"Max SPARQL queries per second per endpoint, 0 = unlimited")

	flag.StringVar(&cfg.OutDir, "out",
		getEnv("LINDAS_VALIDATOR_OUT", "."),
		"Directory for report artifacts (env: LINDAS_VALIDATOR_OUT)")

	flag.StringVar(&cfg.MetricsAddr, "metrics-addr", "",
		"Listen address for Prometheus metrics during the run, empty to disable")

	flag.StringVar(&cfg.LogLevel, "log-level",
		getEnv("LINDAS_VALIDATOR_LOG_LEVEL", "info"),
		"Log level: debug, info, warn, error (env: LINDAS_VALIDATOR_LOG_LEVEL)")

	flag.StringVar(&cfg.LogFormat, "log-format",
		getEnv("LINDAS_VALIDATOR_LOG_FORMAT", "text"),
		"Log format: json, text (env: LINDAS_VALIDATOR_LOG_FORMAT)")

	flag.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	flag.BoolVar(&cfg.ShowHelp, "help", false, "Show help information")
	flag.BoolVar(&cfg.Validate, "validate", false, "Validate configuration and exit")

	flag.Usage = printDetailedHelp
	flag.Parse()

	return cfg
}

func validateFlags(cfg *CLIConfig) error {
	if cfg.ShowVersion || cfg.ShowHelp {
		return nil
	}

	if _, err := os.Stat(cfg.ConfigPath); err != nil {
		return fmt.Errorf("config file not found: %s", cfg.ConfigPath)
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, cfg.LogLevel) {
		return fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}

	validFormats := []string{"json", "text"}
	if !contains(validFormats, cfg.LogFormat) {
		return fmt.Errorf("invalid log format: %s", cfg.LogFormat)
	}

	if cfg.MaxSample < 0 {
		return fmt.Errorf("invalid max-sample: %d", cfg.MaxSample)
	}
	if cfg.QPS < 0 {
		return fmt.Errorf("invalid qps: %v", cfg.QPS)
	}

	if !cfg.Validate {
		if cfg.Preset == "" && (cfg.StardogGraph == "" || cfg.GraphDBGraph == "") {
			return fmt.Errorf("either -preset or both -stardog-graph and -graphdb-graph are required")
		}
	}

	return nil
}

func printDetailedHelp() {
	_, _ = fmt.Fprintf(os.Stderr, `%s - RDF Sync Validator

Compares a dataset served by a Stardog SPARQL endpoint against its
migrated copy on a GraphDB endpoint and reports whether they are
semantically identical.

Usage: %s [options]

Options:
`, appName, os.Args[0])
	flag.PrintDefaults()
	_, _ = fmt.Fprintf(os.Stderr, `
Exit codes:
  0  stores are in sync
  1  run failed
  2  mismatches or errored entities found
  3  no shared entities between the stores

Examples:
  # Compare cube metadata for a preset
  %s --preset="Forest Fire Prevention" --mode=metadata

  # Sampled observation check against specific environments
  %s --preset="Forest Fire Prevention" --mode=observations \
     --stardog="LINDAS PROD" --graphdb="LINDASnext PROD" --max-sample=250

  # Whole-graph comparison of manually named graphs
  %s --mode=full-graph \
     --stardog-graph=https://lindas.admin.ch/foen/example \
     --graphdb-graph=https://lindas.admin.ch/foen/example

Version: %s
`, os.Args[0], os.Args[0], os.Args[0], Version)
}

// Environment variable helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// Utility function to check if slice contains string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
