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


// Package ai provides abstractions for the AI services used in Podgraph.
//
// This package defines interfaces for text embeddings and text completions.
// It follows the dependency inversion principle, allowing the query engine
// and ingestion pipeline to depend on abstractions rather than concrete
// implementations.
//
// The package is designed around three key interfaces:
//
//   - Embedder: Generates vector embeddings from text
//   - Completer: Issues text-completion calls (classification, translation,
//     synthesis, adjudication)
//   - AIProvider: Aggregates AI services for convenient initialization
//
// # Implementation Packages
//
// The ai package includes two implementation sub-packages:
//
//   - ai/openai: Production implementation using OpenAI-compatible APIs
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// Public constructors (openai.NewProvider, openai.NewCompleter, etc.) return
// INTERFACE types to enforce abstraction and prevent accidental coupling to
// concrete implementations. Test utility constructors (mock.NewMockCompleter,
// mock.NewMockEmbedder) return CONCRETE types to enable test assertions and
// behavior injection via function fields.
//
// # Usage Example
//
//	config := ai.NewConfig(ai.WithHost("http://localhost:11434"))
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	answer, err := provider.Completer().Complete(ctx, ai.CompletionRequest{
//	    System: "You are a query classifier. Respond with only one word.",
//	    Prompt: "Who appeared on both podcasts?",
//	})
package ai
