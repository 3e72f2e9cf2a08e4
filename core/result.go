package core

import "time"

// QueryType identifies which retrieval strategy produced a result.
type QueryType string

const (
	QueryTypeGraph    QueryType = "graph"
	QueryTypeSemantic QueryType = "semantic"
	QueryTypeHybrid   QueryType = "hybrid"
	QueryTypeVerify   QueryType = "verify"
	QueryTypeError    QueryType = "error"
)

// Provenance tags an evidence snippet with the side of the store it came from.
type Provenance string

const (
	// ProvenanceStructured marks evidence from the relationship store.
	ProvenanceStructured Provenance = "structured"
	// ProvenanceSemantic marks evidence from the semantic index.
	ProvenanceSemantic Provenance = "semantic"
)

// Filters narrows a query to a subset of the corpus.
// StartDate and EndDate are inclusive "YYYY-MM-DD" bounds on episode publish
// dates; an empty field means no constraint.
type Filters struct {
	VideoID   string
	Podcast   string
	StartDate string
	EndDate   string
}

// HasDateRange reports whether both date bounds are set.
func (f *Filters) HasDateRange() bool {
	return f != nil && f.StartDate != "" && f.EndDate != ""
}

// Source is a citation record attached to an answer. Similarity is zero for
// sources derived from structured records.
type Source struct {
	VideoID    string
	Podcast    string
	Episode    string
	Speaker    string
	Date       string
	StartTime  float64
	EndTime    float64
	Text       string
	Similarity float32
}

// Snippet is one evidence excerpt handed to the answer synthesizer.
type Snippet struct {
	Provenance Provenance
	Text       string
}

// EvidenceBundle is the uniform intermediate produced by each strategy
// handler before synthesis. Statement is the generated structured query
// text, empty when the bundle has no graph side.
type EvidenceBundle struct {
	Context   []Snippet
	Sources   []Source
	Records   []map[string]any
	Statement string
}

// Empty reports whether the bundle carries no usable evidence.
func (b *EvidenceBundle) Empty() bool {
	return b == nil || (len(b.Context) == 0 && len(b.Records) == 0)
}

// QueryResult is the engine's output contract. The engine always returns a
// QueryResult, never an error: total failure is reported as Type ==
// QueryTypeError with the description in Answer.
//
// Verified is tri-state: nil means verification was not attempted or was
// indeterminate.
type QueryResult struct {
	Query      string
	Type       QueryType
	Answer     string
	Results    []map[string]any
	Sources    []Source
	Confidence float64
	Elapsed    time.Duration
	Statement  string
	Verified   *bool
}

// ClaimParse is the subject/predicate/object decomposition of a claim.
// Components the parser could not identify are empty strings.
type ClaimParse struct {
	Subject   string
	Predicate string
	Object    string
}

// VerificationVerdict is the tri-state outcome of claim verification.
// Verified nil means the claim could not be confirmed or refuted.
// A verdict is constructed once per claim and never mutated afterwards.
type VerificationVerdict struct {
	Verified              *bool
	Confidence            float64
	Reason                string
	SupportingEvidence    []string
	ContradictingEvidence []string
}

// Bool returns a pointer to b. Convenience for building tri-state values.
func Bool(b bool) *bool {
	return &b
}
