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


// Package semantic provides similarity search over embedded transcript
// passages. It pairs an ai.Embedder with a storage.PassageRepository: texts
// are embedded on the way in, queries are embedded on the way out, and
// ranking happens by cosine similarity in the repository.
//
// Date-range constraints are handled by over-fetching and filtering locally,
// because publish dates are metadata rather than part of the vector space.
package semantic
