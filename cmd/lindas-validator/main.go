// Package main implements the entry point for the LINDAS migration
// validator. The validator compares a dataset served by a Stardog SPARQL
// endpoint against its migrated copy on a GraphDB endpoint and reports
// whether the two are semantically identical, modulo configured predicate
// exclusions and blank-node labeling.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Kronmar-Bafu/lindasnext-migration-helper/config"
	"github.com/Kronmar-Bafu/lindasnext-migration-helper/metric"
	"github.com/Kronmar-Bafu/lindasnext-migration-helper/rdf"
	"github.com/Kronmar-Bafu/lindasnext-migration-helper/sparql"
	"github.com/Kronmar-Bafu/lindasnext-migration-helper/validator"
)

// Build information constants
const (
	Version = "0.1.0"
	appName = "lindas-validator"
)

// Exit codes, also documented in -help.
const (
	exitInSync    = 0
	exitRunFailed = 1
	exitMismatch  = 2
	exitNoOverlap = 3
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	code, err := run()
	if err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(exitRunFailed)
	}
	os.Exit(code)
}

func run() (int, error) {
	cliCfg := parseFlags()
	if cliCfg.ShowHelp {
		printDetailedHelp()
		return exitInSync, nil
	}
	if cliCfg.ShowVersion {
		fmt.Printf("%s %s\n", appName, Version)
		return exitInSync, nil
	}
	if err := validateFlags(cliCfg); err != nil {
		return exitRunFailed, err
	}

	logger := setupLogger(cliCfg.LogLevel, cliCfg.LogFormat)
	slog.SetDefault(logger)

	cfg, err := config.Load(cliCfg.ConfigPath)
	if err != nil {
		return exitRunFailed, err
	}
	if cliCfg.Validate {
		logger.Info("configuration is valid", "path", cliCfg.ConfigPath)
		return exitInSync, nil
	}

	mode, err := validator.ModeFromString(cliCfg.Mode)
	if err != nil {
		return exitRunFailed, err
	}

	spec, err := buildRunSpec(cfg, cliCfg, mode)
	if err != nil {
		return exitRunFailed, err
	}

	metrics := metric.NewMetrics()
	registry := prometheus.NewRegistry()
	if err := metrics.Register(registry); err != nil {
		return exitRunFailed, err
	}
	if cliCfg.MetricsAddr != "" {
		go serveMetrics(cliCfg.MetricsAddr, registry, logger)
	}

	stardog, graphdb, err := buildClients(cfg, cliCfg, logger, metrics)
	if err != nil {
		return exitRunFailed, err
	}

	runner := validator.NewRunner(stardog, graphdb,
		validator.WithLogger(logger),
		validator.WithMetrics(metrics))

	rep, err := runner.Run(context.Background(), spec)
	if err != nil {
		return exitRunFailed, err
	}

	if err := writeArtifacts(cliCfg.OutDir, mode, rep); err != nil {
		return exitRunFailed, err
	}

	switch {
	case rep.State == validator.StateAborted:
		logger.Warn("no shared entities between the stores",
			"only_in_stardog", len(rep.OnlyInStardog),
			"only_in_graphdb", len(rep.OnlyInGraphDB))
		return exitNoOverlap, nil
	case rep.Matched():
		logger.Info("stores are in sync",
			"compared", len(rep.Results),
			"triples", rep.StardogUnion.Len())
		return exitInSync, nil
	default:
		logger.Warn("differences found",
			"mismatches", rep.MismatchCount(),
			"errors", rep.ErrorCount(),
			"only_in_stardog", len(rep.OnlyInStardog),
			"only_in_graphdb", len(rep.OnlyInGraphDB))
		return exitMismatch, nil
	}
}

func buildRunSpec(cfg *config.Config, cliCfg *CLIConfig, mode validator.Mode) (validator.RunSpec, error) {
	var preset config.Preset
	if cliCfg.Preset != "" {
		var err error
		preset, err = cfg.Preset(cliCfg.Preset)
		if err != nil {
			return validator.RunSpec{}, err
		}
	}

	pair := validator.GraphPair{
		StardogGraph: preset.StardogGraph,
		GraphDBGraph: preset.GraphDBGraph,
	}
	if cliCfg.StardogGraph != "" {
		pair.StardogGraph = cliCfg.StardogGraph
	}
	if cliCfg.GraphDBGraph != "" {
		pair.GraphDBGraph = cliCfg.GraphDBGraph
	}

	labels := splitList(cliCfg.Filters)
	if len(labels) == 0 {
		labels = preset.DefaultFilters
	}
	filter, err := cfg.ResolveFilters(labels, splitList(cliCfg.ExtraExclude))
	if err != nil {
		return validator.RunSpec{}, err
	}

	maxSample := cliCfg.MaxSample
	if maxSample == 0 {
		maxSample = cfg.Sampling.MaxSampleSize
	}

	return validator.RunSpec{
		Mode:      mode,
		Pair:      pair,
		Filter:    filter,
		MaxSample: maxSample,
	}, nil
}

func buildClients(cfg *config.Config, cliCfg *CLIConfig, logger *slog.Logger,
	metrics *metric.Metrics) (*sparql.Client, *sparql.Client, error) {

	stardogName := cliCfg.StardogEnv
	if stardogName == "" {
		stardogName = cfg.StardogEndpoints[0].Name
	}
	graphdbName := cliCfg.GraphDBEnv
	if graphdbName == "" {
		graphdbName = cfg.GraphDBEndpoints[0].Name
	}

	stardogEp, err := cfg.StardogEndpoint(stardogName)
	if err != nil {
		return nil, nil, err
	}
	graphdbEp, err := cfg.GraphDBEndpoint(graphdbName)
	if err != nil {
		return nil, nil, err
	}

	opts := []sparql.Option{
		sparql.WithLogger(logger),
		sparql.WithMetrics(metrics),
	}
	if cliCfg.QPS > 0 {
		opts = append(opts, sparql.WithRateLimit(cliCfg.QPS, 1))
	}

	stardog, err := sparql.NewClient("stardog/"+stardogEp.Name, stardogEp.URL, opts...)
	if err != nil {
		return nil, nil, err
	}
	graphdb, err := sparql.NewClient("graphdb/"+graphdbEp.Name, graphdbEp.URL, opts...)
	if err != nil {
		return nil, nil, err
	}
	return stardog, graphdb, nil
}

func serveMetrics(addr string, registry *prometheus.Registry, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metric.Handler(registry))
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger.Info("metrics listener starting", "addr", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Warn("metrics listener stopped", "error", err)
	}
}

// writeArtifacts writes the exportable report files: the CSV report, the
// per-side N-Triples sample data, the whole-graph diff listings, and the
// population discrepancy lists.
func writeArtifacts(dir string, mode validator.Mode, rep *validator.Report) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	prefix := mode.String()

	csvFile, err := os.Create(filepath.Join(dir, prefix+"_report.csv"))
	if err != nil {
		return err
	}
	defer func() { _ = csvFile.Close() }()
	if err := rep.WriteCSV(csvFile); err != nil {
		return err
	}

	graphs := map[string]*rdf.Graph{
		prefix + "_stardog.nt": rep.StardogUnion,
		prefix + "_graphdb.nt": rep.GraphDBUnion,
		"only_in_stardog.nt":   rep.DiffOnlyStardog,
		"only_in_graphdb.nt":   rep.DiffOnlyGraphDB,
	}
	for name, g := range graphs {
		if g == nil || g.Len() == 0 {
			continue
		}
		if err := writeGraph(filepath.Join(dir, name), g); err != nil {
			return err
		}
	}

	lists := map[string][]string{
		"only_in_stardog_iris.txt": rep.OnlyInStardog,
		"only_in_graphdb_iris.txt": rep.OnlyInGraphDB,
	}
	for name, iris := range lists {
		if len(iris) == 0 {
			continue
		}
		if err := os.WriteFile(filepath.Join(dir, name),
			[]byte(strings.Join(iris, "\n")+"\n"), 0o644); err != nil {
			return err
		}
	}
	return nil
}

func writeGraph(path string, g *rdf.Graph) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return g.WriteNTriples(f)
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
