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


package podgraph

import (
	"log/slog"

	"github.com/podgraph/podgraph/ai"
	"github.com/podgraph/podgraph/ai/openai"
	"github.com/podgraph/podgraph/engine"
	"github.com/podgraph/podgraph/ingestion"
	"github.com/podgraph/podgraph/semantic"
	"github.com/podgraph/podgraph/storage"
	"github.com/podgraph/podgraph/storage/badger"
)

// Database bundles the storage backend, the repositories, the semantic index
// and the AI provider behind one open/close lifecycle.
type Database struct {
	backend  *badger.Backend
	graph    storage.GraphRepository
	passages storage.PassageRepository
	index    *semantic.Index
	provider ai.AIProvider
	logger   *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig *ai.Config
}

// WithAIConfig overrides the default AI configuration.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}

	graph, err := badger.NewGraphRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	passages, err := badger.NewPassageRepository(backend)
	if err != nil {
		graph.Close()
		backend.Close()
		return nil, err
	}

	provider, err := openai.NewProvider(options.aiConfig)
	if err != nil {
		passages.Close()
		graph.Close()
		backend.Close()
		return nil, err
	}

	return &Database{
		backend:  backend,
		graph:    graph,
		passages: passages,
		index:    semantic.NewIndex(passages, provider.Embedder()),
		provider: provider,
		logger:   slog.Default(),
	}, nil
}

func (db *Database) Close() error {
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}

	if err := db.passages.Close(); err != nil {
		db.logger.Error("error closing passage repository", "err", err)
		return err
	}
	if err := db.graph.Close(); err != nil {
		db.logger.Error("error closing graph repository", "err", err)
		return err
	}
	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) GraphRepository() storage.GraphRepository {
	return db.graph
}

func (db *Database) PassageRepository() storage.PassageRepository {
	return db.passages
}

func (db *Database) SemanticIndex() *semantic.Index {
	return db.index
}

func (db *Database) NewQueryEngine(opts ...engine.Option) (*engine.Engine, error) {
	return engine.NewEngine(db.graph, db.index, db.provider, opts...)
}

func (db *Database) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(db.graph, db.index, db.provider, opts...)
}
