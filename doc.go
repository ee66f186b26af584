// Package migrationhelper documents the LINDAS migration validator, a
// tool that checks whether a dataset served by a Stardog SPARQL endpoint
// and its migrated copy on a GraphDB endpoint are semantically identical.
//
// # What "identical" means here
//
// Two copies count as in sync when their triple sets are equal after
// normalization, independent of blank node labels and of Unicode
// composition of literals:
//
//   - Blank nodes are relabeled canonically (rdf/canon), so structurally
//     equal anonymous subgraphs compare equal no matter how each store
//     numbered them.
//   - Literal lexical forms are normalized to Unicode NFC on ingestion,
//     so composed and decomposed spellings of the same text compare
//     equal. IRIs are never normalized.
//   - Configured predicates (sync timestamps like dcterms:modified) can
//     be excluded from comparison; the same exclusion is applied to both
//     stores.
//
// # Comparison modes
//
// A run compares one named graph pair in one of four modes:
//
//   - full-graph: the entire named graph as a single unit
//   - metadata: every cube:Cube by its direct subject triples
//   - observations: a bounded random sample of cube:Observation subjects
//   - constraints: every cube:Constraint by its deep blank-node subgraph
//
// Per-entity modes first compare populations: entities present in only
// one store are reported without deep comparison, and an empty shared
// set aborts the run.
//
// # Layout
//
// rdf holds the term, triple and graph model plus the N-Triples codec;
// rdf/canon the canonicalization and diff; sparql the query builders and
// the protocol client; validator the run state machine and reporting;
// config the preset and endpoint configuration; cmd/lindas-validator the
// command-line entry point.
package migrationhelper
