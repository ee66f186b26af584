package validator

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/Kronmar-Bafu/lindasnext-migration-helper/errors"
	"github.com/Kronmar-Bafu/lindasnext-migration-helper/metric"
	"github.com/Kronmar-Bafu/lindasnext-migration-helper/rdf"
	"github.com/Kronmar-Bafu/lindasnext-migration-helper/rdf/canon"
	"github.com/Kronmar-Bafu/lindasnext-migration-helper/sparql"
	"github.com/Kronmar-Bafu/lindasnext-migration-helper/vocabulary"
)

// Fetch timeout tiers. Entity-level fetches are small; discovery and
// deep subgraphs carry more data; a whole graph can run to millions of
// triples. A timeout is run-fatal for that fetch, surfaced to the caller,
// never silently retried.
const (
	EntityFetchTimeout = 60 * time.Second
	DiscoveryTimeout   = 120 * time.Second
	DeepFetchTimeout   = 120 * time.Second
	FullGraphTimeout   = 300 * time.Second
)

// RunState tracks a comparison run through its state machine. The runner
// is the sole authority on run state; states only advance.
type RunState int

const (
	StateIdle RunState = iota
	StateDiscovering
	StatePopulationCompared
	// StateAborted is terminal: the shared-entity set was empty. Reported
	// distinctly from "all matched" and from "some mismatched".
	StateAborted
	StateSampling
	StateFetching
	StateComparing
	StateReporting
	StateDone
	// StateFailed is terminal: a discovery or whole-graph fetch error
	// aborted the run with nothing partial to report.
	StateFailed
)

// String returns the string representation of the RunState.
func (s RunState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDiscovering:
		return "discovering"
	case StatePopulationCompared:
		return "population_compared"
	case StateAborted:
		return "aborted"
	case StateSampling:
		return "sampling"
	case StateFetching:
		return "fetching"
	case StateComparing:
		return "comparing"
	case StateReporting:
		return "reporting"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Mode selects the fetch granularity of a run.
type Mode int

const (
	// ModeFullGraph compares the entire named graph as one implicit
	// entity, with predicate filtering.
	ModeFullGraph Mode = iota
	// ModeMetadata compares cube:Cube entities by their direct subject
	// triples, with predicate filtering, exhaustively.
	ModeMetadata
	// ModeObservations compares cube:Observation entities by their
	// direct subject triples, unfiltered, sampled.
	ModeObservations
	// ModeConstraints compares cube:Constraint entities by their deep
	// blank-node subgraphs, unfiltered, exhaustively.
	ModeConstraints
)

// String returns the string representation of the Mode.
func (m Mode) String() string {
	switch m {
	case ModeFullGraph:
		return "full-graph"
	case ModeMetadata:
		return "metadata"
	case ModeObservations:
		return "observations"
	case ModeConstraints:
		return "constraints"
	default:
		return "unknown"
	}
}

// ModeFromString parses a mode name as used on the command line.
func ModeFromString(s string) (Mode, error) {
	switch s {
	case "full-graph":
		return ModeFullGraph, nil
	case "metadata":
		return ModeMetadata, nil
	case "observations":
		return ModeObservations, nil
	case "constraints":
		return ModeConstraints, nil
	default:
		return 0, apperrors.WrapInvalid(
			fmt.Errorf("%w: unknown mode %q", apperrors.ErrInvalidConfig, s),
			"Mode", "ModeFromString", "mode parsing")
	}
}

// EntityType returns the rdf:type discovered for this mode, empty for
// full-graph mode.
func (m Mode) EntityType() string {
	switch m {
	case ModeMetadata:
		return vocabulary.CubeClass
	case ModeObservations:
		return vocabulary.ObservationClass
	case ModeConstraints:
		return vocabulary.ConstraintClass
	default:
		return ""
	}
}

// usesSampling reports whether the shared population is sampled before
// deep comparison. Only observations grow large enough to need it.
func (m Mode) usesSampling() bool {
	return m == ModeObservations
}

// usesFilter reports whether the excluded-predicate set applies. Deep
// subgraph traversal is never filtered: dropping blank-node linkage
// edges would corrupt structural identity.
func (m Mode) usesFilter() bool {
	return m == ModeFullGraph || m == ModeMetadata
}

// fetchTimeout returns the per-fetch timeout tier for this mode.
func (m Mode) fetchTimeout() time.Duration {
	switch m {
	case ModeFullGraph:
		return FullGraphTimeout
	case ModeConstraints:
		return DeepFetchTimeout
	default:
		return EntityFetchTimeout
	}
}

// GraphPair names the two graphs under comparison: the same dataset may
// live under different graph IRIs in the two stores.
type GraphPair struct {
	StardogGraph string
	GraphDBGraph string
}

// RunSpec parameterizes one comparison run.
type RunSpec struct {
	Mode      Mode
	Pair      GraphPair
	Filter    rdf.FilterSet
	MaxSample int
}

// Runner executes comparison runs. Construct one per run; state is reset
// on Run but a Runner is not safe for concurrent runs.
type Runner struct {
	stardog *sparql.Client
	graphdb *sparql.Client
	logger  *slog.Logger
	metrics *metric.Metrics
	rng     *rand.Rand
	state   RunState
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger sets the run logger.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) { r.logger = logger }
}

// WithMetrics enables Prometheus metric recording.
func WithMetrics(m *metric.Metrics) RunnerOption {
	return func(r *Runner) { r.metrics = m }
}

// WithRand sets the randomness source used for sampling. Tests inject a
// fixed seed; the default is entropy-seeded.
func WithRand(rng *rand.Rand) RunnerOption {
	return func(r *Runner) { r.rng = rng }
}

// NewRunner creates a runner over the two store clients.
func NewRunner(stardog, graphdb *sparql.Client, opts ...RunnerOption) *Runner {
	r := &Runner{
		stardog: stardog,
		graphdb: graphdb,
		logger:  slog.Default(),
		rng:     rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		state:   StateIdle,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// State returns the current run state.
func (r *Runner) State() RunState {
	return r.state
}

func (r *Runner) setState(s RunState) {
	r.logger.Debug("run state transition", "from", r.state.String(), "to", s.String())
	r.state = s
}

// Run executes one comparison run to a terminal state. Discovery and
// whole-graph errors fail the run with no partial report; per-entity
// errors are recorded in the report and processing continues — this is a
// report-all-mismatches tool, not a fail-fast one.
func (r *Runner) Run(ctx context.Context, spec RunSpec) (*Report, error) {
	r.state = StateIdle
	rep, err := r.run(ctx, spec)
	if r.metrics != nil {
		r.metrics.RecordRun(spec.Mode.String(), r.state.String())
	}
	return rep, err
}

func (r *Runner) run(ctx context.Context, spec RunSpec) (*Report, error) {
	rep := newReport(spec.Mode, spec.Pair)
	r.logger.Info("comparison run starting",
		"run_id", rep.RunID.String(),
		"mode", spec.Mode.String(),
		"stardog_graph", spec.Pair.StardogGraph,
		"graphdb_graph", spec.Pair.GraphDBGraph)

	if spec.Mode == ModeFullGraph {
		return r.runFullGraph(ctx, spec, rep)
	}
	return r.runPerEntity(ctx, spec, rep)
}

// runFullGraph treats the entire named graph as a single implicit entity.
func (r *Runner) runFullGraph(ctx context.Context, spec RunSpec, rep *Report) (*Report, error) {
	r.setState(StateFetching)
	gStardog, gGraphDB, err := r.fetchPair(ctx, spec, "")
	if err != nil {
		r.setState(StateFailed)
		return nil, err
	}
	rep.StardogUnion = gStardog
	rep.GraphDBUnion = gGraphDB

	r.setState(StateComparing)
	match := canon.Equal(gStardog, gGraphDB)
	rep.Results = append(rep.Results, EntityResult{
		IRI:         spec.Pair.StardogGraph,
		Match:       match,
		TripleCount: gStardog.Len(),
	})
	if !match {
		_, onlyStardog, onlyGraphDB := canon.Diff(gStardog, gGraphDB)
		rep.DiffOnlyStardog = onlyStardog
		rep.DiffOnlyGraphDB = onlyGraphDB
	}
	if r.metrics != nil {
		r.metrics.RecordEntity(spec.Mode.String(), rep.Results[0].Outcome())
	}

	r.finalize(rep, StateDone)
	return rep, nil
}

// runPerEntity discovers and compares a typed population entity by entity.
func (r *Runner) runPerEntity(ctx context.Context, spec RunSpec, rep *Report) (*Report, error) {
	r.setState(StateDiscovering)
	popStardog, popGraphDB, err := discoverBoth(ctx, r.stardog, r.graphdb,
		spec.Pair, spec.Mode.EntityType(), DiscoveryTimeout)
	if err != nil {
		r.setState(StateFailed)
		return nil, err
	}

	r.setState(StatePopulationCompared)
	shared := popStardog.Shared(popGraphDB)
	rep.OnlyInStardog = popStardog.Minus(popGraphDB).Sorted()
	rep.OnlyInGraphDB = popGraphDB.Minus(popStardog).Sorted()
	rep.SharedCount = len(shared)
	if len(rep.OnlyInStardog) > 0 || len(rep.OnlyInGraphDB) > 0 {
		r.logger.Warn("population mismatch",
			"run_id", rep.RunID.String(),
			"only_in_stardog", len(rep.OnlyInStardog),
			"only_in_graphdb", len(rep.OnlyInGraphDB))
	}

	if len(shared) == 0 {
		// Terminal right here: ABORTED follows POPULATION_COMPARED
		// directly, nothing gets sampled or fetched.
		r.logger.Warn("no shared entities, aborting deep comparison",
			"run_id", rep.RunID.String())
		rep.FinishedAt = time.Now()
		r.setState(StateAborted)
		rep.State = StateAborted
		return rep, nil
	}

	r.setState(StateSampling)
	var entities []string
	if spec.Mode.usesSampling() {
		entities = Sample(shared, spec.MaxSample, r.rng)
	} else {
		entities = shared.Sorted()
	}
	rep.SampledCount = len(entities)
	if rep.SampledCount < rep.SharedCount {
		r.logger.Info("sampling shared population",
			"run_id", rep.RunID.String(),
			"shared", rep.SharedCount,
			"sampled", rep.SampledCount)
	}

	r.setState(StateFetching)
	type fetched struct {
		iri      string
		stardog  *rdf.Graph
		graphdb  *rdf.Graph
		fetchErr error
	}
	pairs := make([]fetched, 0, len(entities))
	for _, iri := range entities {
		gStardog, gGraphDB, err := r.fetchPair(ctx, spec, iri)
		if err != nil {
			if ctx.Err() != nil {
				// The run itself was cancelled, not one entity.
				r.setState(StateFailed)
				return nil, err
			}
			r.logger.Warn("entity fetch failed",
				"run_id", rep.RunID.String(), "iri", iri, "error", err)
			pairs = append(pairs, fetched{iri: iri, fetchErr: err})
			continue
		}
		rep.StardogUnion.AddAll(gStardog)
		rep.GraphDBUnion.AddAll(gGraphDB)
		pairs = append(pairs, fetched{iri: iri, stardog: gStardog, graphdb: gGraphDB})
	}

	r.setState(StateComparing)
	for _, p := range pairs {
		var res EntityResult
		if p.fetchErr != nil {
			res = EntityResult{IRI: p.iri, Err: p.fetchErr.Error()}
		} else {
			res = EntityResult{
				IRI:         p.iri,
				Match:       canon.Equal(p.stardog, p.graphdb),
				TripleCount: p.stardog.Len(),
			}
		}
		rep.Results = append(rep.Results, res)
		if r.metrics != nil {
			r.metrics.RecordEntity(spec.Mode.String(), res.Outcome())
		}
	}

	r.finalize(rep, StateDone)
	return rep, nil
}

// fetchPair fetches one entity's subgraph (or the whole graph when iri is
// empty) from both stores concurrently, each under the mode's timeout.
func (r *Runner) fetchPair(ctx context.Context, spec RunSpec, iri string) (*rdf.Graph, *rdf.Graph, error) {
	var gStardog, gGraphDB *rdf.Graph
	g, gctx := errgroup.WithContext(ctx)

	fetch := func(client *sparql.Client, graphIRI string, out **rdf.Graph) func() error {
		return func() error {
			fctx, cancel := context.WithTimeout(gctx, spec.Mode.fetchTimeout())
			defer cancel()
			res, err := client.Construct(fctx, r.buildQuery(spec, graphIRI, iri))
			if err != nil {
				return err
			}
			if spec.Mode == ModeConstraints {
				res = pruneDeepSubgraph(res, iri)
			}
			*out = res
			return nil
		}
	}

	g.Go(fetch(r.stardog, spec.Pair.StardogGraph, &gStardog))
	g.Go(fetch(r.graphdb, spec.Pair.GraphDBGraph, &gGraphDB))
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return gStardog, gGraphDB, nil
}

func (r *Runner) buildQuery(spec RunSpec, graphIRI, iri string) string {
	switch spec.Mode {
	case ModeFullGraph:
		return sparql.FullGraphQuery(graphIRI, spec.Filter)
	case ModeMetadata:
		return sparql.EntityMetadataQuery(graphIRI, iri, spec.Filter)
	case ModeConstraints:
		return sparql.DeepSubgraphQuery(graphIRI, iri)
	default:
		return sparql.SubjectTriplesQuery(graphIRI, iri)
	}
}

// pruneDeepSubgraph drops triples whose subject is neither the start
// entity nor a blank node. The traversal query already restricts landing
// nodes, but store-side property-path handling differs enough between
// Stardog and GraphDB that stray grounded subjects must not corrupt the
// comparison.
func pruneDeepSubgraph(g *rdf.Graph, startIRI string) *rdf.Graph {
	out := rdf.NewGraph()
	start := rdf.NewIRI(startIRI)
	for _, t := range g.Triples() {
		if t.Subject == start || t.Subject.IsBlank() {
			out.Add(t)
		}
	}
	return out
}

func (r *Runner) finalize(rep *Report, terminal RunState) {
	r.setState(StateReporting)
	rep.FinishedAt = time.Now()
	r.setState(terminal)
	rep.State = terminal
	r.logger.Info("comparison run finished",
		"run_id", rep.RunID.String(),
		"state", terminal.String(),
		"shared", rep.SharedCount,
		"compared", len(rep.Results),
		"mismatches", rep.MismatchCount(),
		"errors", rep.ErrorCount(),
		"duration", rep.FinishedAt.Sub(rep.StartedAt))
}
