// Copyright 2026 Podgraph Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/podgraph/podgraph/ai"
	"github.com/podgraph/podgraph/core"
	"github.com/podgraph/podgraph/semantic"
	"github.com/podgraph/podgraph/storage"
)

const (
	// defaultMaxResults bounds semantic search result counts.
	defaultMaxResults = 10
	// branchContextCap bounds context snippets taken from each hybrid branch.
	branchContextCap = 5
	// evidenceHits is the semantic result count used during claim
	// verification.
	evidenceHits = 5
	// evidenceSnippetLen truncates semantic evidence strings for the
	// adjudication prompt.
	evidenceSnippetLen = 150

	// Confidence levels per strategy. Structured results are trusted,
	// semantic and blended results are not, and empty evidence means the
	// answer is an absence statement. Similarity scores deliberately do not
	// feed into these values.
	confidenceGraph = 0.9
	confidenceMixed = 0.5
	confidenceEmpty = 0.1
)

// Engine is the hybrid query engine: it classifies a question, routes it to
// the graph, semantic or hybrid retrieval strategy (or the claim verifier),
// synthesizes a grounded answer and assembles the result envelope.
//
// Answer never returns an error. Every failure inside the pipeline degrades
// locally (strategy downgrade, empty evidence, indeterminate verdict) and
// total failure is reported as a QueryTypeError result.
type Engine struct {
	graph      storage.GraphRepository
	index      *semantic.Index
	completer  ai.Completer
	logger     *slog.Logger
	maxResults int
}

// Option configures an Engine.
type Option func(*Engine) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// WithMaxResults sets the semantic search result count.
// Default is 10.
func WithMaxResults(n int) Option {
	return func(e *Engine) error {
		if n > 0 {
			e.maxResults = n
		}
		return nil
	}
}

// NewEngine creates a new query engine.
func NewEngine(
	graph storage.GraphRepository,
	index *semantic.Index,
	provider ai.AIProvider,
	opts ...Option,
) (*Engine, error) {
	if graph == nil {
		return nil, ErrGraphRepositoryRequired
	}
	if index == nil {
		return nil, ErrSemanticIndexRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	e := &Engine{
		graph:      graph,
		index:      index,
		completer:  provider.Completer(),
		logger:     slog.Default().With("component", "query-engine"),
		maxResults: defaultMaxResults,
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// Answer processes one natural-language query end to end and always returns
// a result, never an error. filters may be nil.
func (e *Engine) Answer(ctx context.Context, query string, filters *core.Filters) *core.QueryResult {
	start := time.Now()
	result := e.answer(ctx, query, filters)
	result.Query = query
	result.Elapsed = time.Since(start)
	return result
}

// Verify runs the claim-verification pipeline directly, bypassing intent
// classification.
func (e *Engine) Verify(ctx context.Context, claim string) *core.QueryResult {
	start := time.Now()
	result := e.verifyClaim(ctx, claim)
	result.Query = claim
	result.Elapsed = time.Since(start)
	return result
}

// AnswerAsync is the non-blocking form of Answer. The returned channel
// receives exactly one result and is then closed.
func (e *Engine) AnswerAsync(ctx context.Context, query string, filters *core.Filters) <-chan *core.QueryResult {
	out := make(chan *core.QueryResult, 1)
	go func() {
		defer close(out)
		out <- e.Answer(ctx, query, filters)
	}()
	return out
}

func (e *Engine) answer(ctx context.Context, query string, filters *core.Filters) *core.QueryResult {
	if err := ctx.Err(); err != nil {
		return errorResult(fmt.Errorf("latency budget exceeded: %w", err))
	}

	strategy := e.classify(ctx, query)
	e.logger.Info("query classified", "strategy", strategy)

	switch strategy {
	case StrategyGraph:
		bundle, err := e.runGraph(ctx, query)
		if err != nil {
			// Translation or execution failure is a downgrade, not an
			// error: rerun as hybrid and report the hybrid type.
			e.logger.Warn("graph strategy downgraded to hybrid", "err", err)
			return e.assemble(ctx, query, core.QueryTypeHybrid, e.runHybrid(ctx, query, filters), core.Bool(false))
		}
		return e.assemble(ctx, query, core.QueryTypeGraph, bundle, core.Bool(true))

	case StrategySemantic:
		bundle, err := e.runSemantic(ctx, query, filters)
		if err != nil {
			return errorResult(err)
		}
		return e.assemble(ctx, query, core.QueryTypeSemantic, bundle, core.Bool(false))

	case StrategyVerify:
		return e.verifyClaim(ctx, query)

	default:
		return e.assemble(ctx, query, core.QueryTypeHybrid, e.runHybrid(ctx, query, filters), core.Bool(false))
	}
}

// assemble synthesizes the answer and fills the result envelope for the
// non-verify strategies.
func (e *Engine) assemble(ctx context.Context, query string, queryType core.QueryType, bundle *core.EvidenceBundle, verified *bool) *core.QueryResult {
	if err := ctx.Err(); err != nil {
		return errorResult(fmt.Errorf("latency budget exceeded: %w", err))
	}

	answer := e.synthesize(ctx, query, bundle)

	confidence := confidenceMixed
	if queryType == core.QueryTypeGraph {
		confidence = confidenceGraph
	}
	if bundle.Empty() {
		confidence = confidenceEmpty
	}

	return &core.QueryResult{
		Type:       queryType,
		Answer:     answer,
		Results:    bundle.Records,
		Sources:    bundle.Sources,
		Confidence: confidence,
		Statement:  bundle.Statement,
		Verified:   verified,
	}
}

// errorResult converts an unrecoverable failure into the error-typed result
// envelope.
func errorResult(err error) *core.QueryResult {
	return &core.QueryResult{
		Type:       core.QueryTypeError,
		Answer:     fmt.Sprintf("An error occurred: %v", err),
		Confidence: 0,
	}
}
