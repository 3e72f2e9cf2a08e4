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


package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/podgraph/podgraph/ai"
	"github.com/podgraph/podgraph/core"
	"github.com/podgraph/podgraph/semantic"
	"github.com/podgraph/podgraph/storage"
)

const defaultMaxConcurrent = 2

// Pipeline turns transcripts into passages and graph records. It chunks a
// transcript, embeds the passages into the semantic index, extracts entities
// from each passage concurrently and populates the relationship store.
//
// Transcript runs are bounded by a counting admission gate: at most
// maxConcurrent IngestTranscript calls proceed at once, further callers
// block until a slot frees or their context expires. Per-passage extraction
// inside one run fans out over a shared worker pool.
type Pipeline struct {
	graph        storage.GraphRepository
	index        *semantic.Index
	extractor    *entityExtractor
	pool         *ants.Pool
	gate         chan struct{}
	chunkWords   int
	overlapWords int
	logger       *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for per-passage extraction.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		if p.pool != nil {
			p.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithMaxConcurrent sets how many transcript runs may proceed at once.
// Default is 2.
func WithMaxConcurrent(n int) Option {
	return func(p *Pipeline) error {
		if n < 1 {
			n = 1
		}
		p.gate = make(chan struct{}, n)
		return nil
	}
}

// WithChunking sets the passage word budget and overlap.
func WithChunking(maxWords, overlapWords int) Option {
	return func(p *Pipeline) error {
		if maxWords < 1 {
			return fmt.Errorf("chunk word budget must be positive, got %d", maxWords)
		}
		if overlapWords < 0 || overlapWords >= maxWords {
			return fmt.Errorf("overlap must be in [0, %d), got %d", maxWords, overlapWords)
		}
		p.chunkWords = maxWords
		p.overlapWords = overlapWords
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	graph storage.GraphRepository,
	index *semantic.Index,
	provider ai.AIProvider,
	opts ...Option,
) (*Pipeline, error) {
	if graph == nil {
		return nil, ErrGraphRepositoryRequired
	}
	if index == nil {
		return nil, ErrSemanticIndexRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		graph:        graph,
		index:        index,
		pool:         pool,
		gate:         make(chan struct{}, defaultMaxConcurrent),
		chunkWords:   defaultChunkWords,
		overlapWords: defaultOverlapWords,
		logger:       slog.Default().With("component", "ingestion"),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	extractor, err := newEntityExtractor(provider.Completer(), p.logger)
	if err != nil {
		p.Release()
		return nil, err
	}
	p.extractor = extractor

	return p, nil
}

// IngestTranscript runs the full pipeline for one transcript: admission,
// chunking, embedding, extraction and graph population. It is synchronous;
// per-passage extraction failures are collected and joined rather than
// aborting the run, so a flaky model call costs one passage's mentions, not
// the whole episode.
func (p *Pipeline) IngestTranscript(ctx context.Context, t *Transcript) error {
	if t == nil || len(t.Segments) == 0 {
		return ErrEmptyTranscript
	}
	if t.VideoID == "" {
		return ErrMissingVideoID
	}

	select {
	case p.gate <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-p.gate }()

	passages := chunkTranscript(t, p.chunkWords, p.overlapWords)
	if len(passages) == 0 {
		return ErrEmptyTranscript
	}
	p.logger.Info("ingesting transcript",
		"video_id", t.VideoID, "segments", len(t.Segments), "passages", len(passages))

	if _, err := p.index.Add(ctx, passages...); err != nil {
		return fmt.Errorf("indexing passages: %w", err)
	}

	episode, err := p.addEpisode(ctx, t)
	if err != nil {
		return err
	}

	// Fan extraction out over the pool, one task per passage
	extractions := make([]*extraction, len(passages))
	extractionErrs := make([]error, len(passages))

	var wg sync.WaitGroup
	for i := range passages {
		i := i
		wg.Add(1)
		submitErr := p.pool.Submit(func() {
			defer wg.Done()
			extractions[i], extractionErrs[i] = p.extractor.extract(ctx, passages[i].Text)
		})
		if submitErr != nil {
			wg.Done()
			extractionErrs[i] = submitErr
		}
	}
	wg.Wait()

	var errs []error
	for i, extractionErr := range extractionErrs {
		if extractionErr != nil {
			p.logger.Warn("passage extraction failed",
				"video_id", t.VideoID, "start", passages[i].StartTime, "err", extractionErr)
			errs = append(errs, extractionErr)
			continue
		}
		if err := p.populateGraph(ctx, episode, passages[i], extractions[i]); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// addEpisode writes the episode and podcast nodes and links them.
func (p *Pipeline) addEpisode(ctx context.Context, t *Transcript) (*core.Entity, error) {
	episode := &core.Entity{
		Type: core.EntityEpisode,
		Name: t.Episode,
		Props: map[string]string{
			"video_id": t.VideoID,
		},
	}
	if t.PublishDate != "" {
		episode.Props["publish_date"] = t.PublishDate
	}

	entities := []*core.Entity{episode}
	if t.Podcast != "" {
		entities = append(entities, &core.Entity{Type: core.EntityPodcast, Name: t.Podcast})
	}

	added, err := p.graph.AddEntities(ctx, entities...)
	if err != nil {
		return nil, fmt.Errorf("adding episode: %w", err)
	}
	episode = added[0]

	if t.Podcast != "" {
		_, err = p.graph.AddRelationships(ctx, &core.Relationship{
			Type:   core.RelBelongsTo,
			FromId: episode.Id,
			ToId:   added[1].Id,
		})
		if err != nil {
			return nil, fmt.Errorf("linking episode to podcast: %w", err)
		}
	}
	return episode, nil
}

// populateGraph writes one passage's extraction: guest appearances, typed
// mentions with sentiment and timestamp, and discussion topics.
func (p *Pipeline) populateGraph(ctx context.Context, episode *core.Entity, passage *core.Passage, x *extraction) error {
	timestamp := fmt.Sprintf("%.1f", passage.StartTime)

	var entities []*core.Entity
	var rels []*core.Relationship

	for _, guest := range x.Guests {
		person := &core.Entity{Type: core.EntityPerson, Name: guest}
		person.Id = core.IDFromContent(person.Tuple())
		entities = append(entities, person)
		rels = append(rels, &core.Relationship{
			Type:   core.RelAppearedOn,
			FromId: person.Id,
			ToId:   episode.Id,
		})
	}

	for _, mention := range x.Entities {
		entity := &core.Entity{
			Type: extractionTypes[normalizeType(mention.Type)],
			Name: mention.Name,
		}
		entity.Id = core.IDFromContent(entity.Tuple())
		entities = append(entities, entity)
		rels = append(rels, &core.Relationship{
			Type:   core.RelMentionedIn,
			FromId: entity.Id,
			ToId:   episode.Id,
			Props: map[string]string{
				"timestamp": timestamp,
				"sentiment": mention.Sentiment,
				"context":   mention.Context,
			},
		})
	}

	for _, topic := range x.Topics {
		node := &core.Entity{Type: core.EntityTopic, Name: topic}
		node.Id = core.IDFromContent(node.Tuple())
		entities = append(entities, node)
		rels = append(rels, &core.Relationship{
			Type:   core.RelDiscusses,
			FromId: episode.Id,
			ToId:   node.Id,
			Props:  map[string]string{"timestamp": timestamp},
		})
	}

	if len(entities) == 0 {
		return nil
	}
	if _, err := p.graph.AddEntities(ctx, entities...); err != nil {
		return fmt.Errorf("adding extracted entities: %w", err)
	}
	if _, err := p.graph.AddRelationships(ctx, rels...); err != nil {
		return fmt.Errorf("adding extracted relationships: %w", err)
	}
	return nil
}

// Release releases the worker pool. The pipeline should not be used after
// calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
