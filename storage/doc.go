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


// Package storage provides the storage abstraction layer for podgraph.
//
// This package defines repository interfaces that decouple storage
// implementation from the query engine. It allows for different storage
// backends (BadgerDB, in-memory, etc.) to be used interchangeably.
//
// # Constructor Return Type Pattern
//
// This package follows a strict "return interface" pattern for all public
// constructors to enforce abstraction and enable multiple storage backend
// implementations:
//
//	graph, err := badger.NewGraphRepository(path)  // returns storage.GraphRepository
//
// This design decision prioritizes:
//   - Abstraction: Prevents accidental coupling to BadgerDB specifics
//   - Swappability: Easy to add alternative backends (Neo4j, pgvector, etc.)
//   - Testing: Consumers can use in-memory implementations without modification
//
// Internal package constructors (newBackend, newGraphRepository, etc.) may
// return concrete types since they're only used within the implementation
// package.
//
// # Architecture
//
// The storage layer follows the Repository pattern:
//
//   - GraphRepository: typed entities and relationships plus statement execution
//   - PassageRepository: embedded transcript passages with similarity search
//
// # Usage
//
// Create repository instances backed by one database:
//
//	graph, passages, err := badger.NewRepositories("/path/to/db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer graph.Close()
//
// Use in tests with in-memory storage:
//
//	graph, passages, err := badger.NewMemoryRepositories()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer graph.Close()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation
// and timeout support. Pass context.Background() for operations
// without specific timeout requirements.
package storage
