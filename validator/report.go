package validator

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/Kronmar-Bafu/lindasnext-migration-helper/metric"
	"github.com/Kronmar-Bafu/lindasnext-migration-helper/rdf"
)

// EntityResult records the outcome of one per-entity comparison. Results
// are appended in processing order and never mutated afterwards.
type EntityResult struct {
	IRI         string
	Match       bool
	TripleCount int
	Err         string // non-empty when this entity errored instead of comparing
}

// Outcome maps the result to its metric label.
func (er EntityResult) Outcome() string {
	switch {
	case er.Err != "":
		return metric.OutcomeError
	case er.Match:
		return metric.OutcomeMatch
	default:
		return metric.OutcomeMismatch
	}
}

// Report aggregates everything one comparison run produced. A report is
// only emitted for runs that reached a terminal state other than FAILED;
// discovery and whole-graph failures abort with nothing partial.
type Report struct {
	RunID      uuid.UUID
	Mode       Mode
	State      RunState
	Pair       GraphPair
	StartedAt  time.Time
	FinishedAt time.Time

	// Population findings: entities present in only one store. These
	// never reach deep comparison.
	OnlyInStardog []string
	OnlyInGraphDB []string
	SharedCount   int
	SampledCount  int

	// Per-entity findings, in processing order.
	Results []EntityResult

	// Union of all fetched entity subgraphs per side, exportable as
	// N-Triples sample data.
	StardogUnion *rdf.Graph
	GraphDBUnion *rdf.Graph

	// Whole-graph diff artifacts, populated in full-graph mode when the
	// graphs differ.
	DiffOnlyStardog *rdf.Graph
	DiffOnlyGraphDB *rdf.Graph
}

func newReport(mode Mode, pair GraphPair) *Report {
	return &Report{
		RunID:        uuid.New(),
		Mode:         mode,
		State:        StateIdle,
		Pair:         pair,
		StartedAt:    time.Now(),
		StardogUnion: rdf.NewGraph(),
		GraphDBUnion: rdf.NewGraph(),
	}
}

// Matched reports whether the run completed with both stores fully in
// sync: no population discrepancy, no mismatched entity, no errored
// entity.
func (r *Report) Matched() bool {
	if r.State != StateDone {
		return false
	}
	if len(r.OnlyInStardog) > 0 || len(r.OnlyInGraphDB) > 0 {
		return false
	}
	for _, res := range r.Results {
		if res.Err != "" || !res.Match {
			return false
		}
	}
	return true
}

// MismatchCount returns how many compared entities differed.
func (r *Report) MismatchCount() int {
	n := 0
	for _, res := range r.Results {
		if res.Err == "" && !res.Match {
			n++
		}
	}
	return n
}

// ErrorCount returns how many entities errored instead of comparing.
func (r *Report) ErrorCount() int {
	n := 0
	for _, res := range r.Results {
		if res.Err != "" {
			n++
		}
	}
	return n
}

// WriteCSV writes the tabular report: one row per compared entity.
func (r *Report) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"IRI", "Match", "Triples", "Error"}); err != nil {
		return err
	}
	for _, res := range r.Results {
		row := []string{
			res.IRI,
			strconv.FormatBool(res.Match),
			strconv.Itoa(res.TripleCount),
			res.Err,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
