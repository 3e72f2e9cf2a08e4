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

import "errors"

var (
	// ErrGraphRepositoryRequired indicates a nil graph repository was provided.
	ErrGraphRepositoryRequired = errors.New("graph repository is required")

	// ErrSemanticIndexRequired indicates a nil semantic index was provided.
	ErrSemanticIndexRequired = errors.New("semantic index is required")

	// ErrAIProviderRequired indicates a nil AI provider was provided.
	ErrAIProviderRequired = errors.New("ai provider is required")

	// ErrCannotTranslate indicates the query could not be turned into a
	// usable statement. This is a downgrade signal, not a terminal failure:
	// the engine reroutes to the hybrid strategy.
	ErrCannotTranslate = errors.New("query cannot be translated to a statement")
)
