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


// Package engine implements the hybrid query engine: intent classification,
// strategy routing, evidence merging, grounded answer synthesis and claim
// verification over a podcast knowledge graph.
//
// # Routing
//
// A query is classified into one of four strategies. Graph queries are
// translated into store statements; semantic queries run vector search over
// transcript passages; hybrid queries fan out to both concurrently and merge
// the evidence; verify queries run the claim-verification pipeline.
//
// Graph translation or execution failure is a downgrade, not an error: the
// engine reruns the query as hybrid and reports the hybrid type. The hybrid
// handler isolates its branches, so one side failing contributes an empty
// bundle rather than cancelling the other.
//
// # Failure contract
//
// Answer always returns a QueryResult, never an error. Component failures
// degrade locally — classification defaults to hybrid, synthesis falls back
// to a source-count message, adjudication falls back to an indeterminate
// verdict — and only unanticipated failures surface as an error-typed
// result.
//
// # Verification
//
// The claim verifier decomposes a claim into subject/predicate/object,
// checks the relationship store for each component, gathers semantic
// evidence and adjudicates a tri-state verdict with a conservative bias:
// when unsure it says "cannot verify" rather than affirming.
package engine
