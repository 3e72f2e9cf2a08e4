package badger

import (
	"context"
	"errors"
	"testing"

	"github.com/podgraph/podgraph/core"
	"github.com/podgraph/podgraph/storage"
)

// seedGraph populates a small two-podcast graph used across tests.
func seedGraph(t *testing.T, graphRepo storage.GraphRepository) {
	t.Helper()
	ctx := context.Background()

	entities := []*core.Entity{
		{Type: core.EntityPodcast, Name: "The Tim Ferriss Show"},
		{Type: core.EntityPodcast, Name: "Lex Fridman Podcast"},
		{Type: core.EntityEpisode, Name: "Episode 100", Props: map[string]string{
			"publish_date": "2024-03-01", "video_id": "vid100",
		}},
		{Type: core.EntityEpisode, Name: "Episode 7", Props: map[string]string{
			"publish_date": "2024-05-10", "video_id": "vid7",
		}},
		{Type: core.EntityPerson, Name: "Naval Ravikant"},
		{Type: core.EntityPerson, Name: "Derek Sivers"},
		{Type: core.EntityTopic, Name: "artificial intelligence"},
		{Type: core.EntityBook, Name: "Siddhartha", Props: map[string]string{
			"author": "Hermann Hesse",
		}},
	}
	if _, err := graphRepo.AddEntities(ctx, entities...); err != nil {
		t.Fatalf("Failed to add entities: %v", err)
	}

	id := func(entityType, name string) core.ID {
		e := &core.Entity{Type: entityType, Name: name}
		return core.IDFromContent(e.Tuple())
	}

	rels := []*core.Relationship{
		{Type: core.RelBelongsTo, FromId: id(core.EntityEpisode, "Episode 100"), ToId: id(core.EntityPodcast, "The Tim Ferriss Show")},
		{Type: core.RelBelongsTo, FromId: id(core.EntityEpisode, "Episode 7"), ToId: id(core.EntityPodcast, "Lex Fridman Podcast")},
		{Type: core.RelAppearedOn, FromId: id(core.EntityPerson, "Naval Ravikant"), ToId: id(core.EntityEpisode, "Episode 100")},
		{Type: core.RelAppearedOn, FromId: id(core.EntityPerson, "Naval Ravikant"), ToId: id(core.EntityEpisode, "Episode 7")},
		{Type: core.RelAppearedOn, FromId: id(core.EntityPerson, "Derek Sivers"), ToId: id(core.EntityEpisode, "Episode 100")},
		{Type: core.RelDiscusses, FromId: id(core.EntityEpisode, "Episode 7"), ToId: id(core.EntityTopic, "artificial intelligence"), Props: map[string]string{
			"timestamp": "120",
		}},
		{Type: core.RelMentionedIn, FromId: id(core.EntityPerson, "Naval Ravikant"), ToId: id(core.EntityEpisode, "Episode 100"), Props: map[string]string{
			"sentiment": "positive", "context": "on leverage", "timestamp": "300",
		}},
		{Type: core.RelMentionedIn, FromId: id(core.EntityPerson, "Naval Ravikant"), ToId: id(core.EntityEpisode, "Episode 7"), Props: map[string]string{
			"sentiment": "neutral", "context": "on AI", "timestamp": "900",
		}},
		{Type: core.RelRecommendedBy, FromId: id(core.EntityBook, "Siddhartha"), ToId: id(core.EntityPerson, "Naval Ravikant")},
	}
	if _, err := graphRepo.AddRelationships(ctx, rels...); err != nil {
		t.Fatalf("Failed to add relationships: %v", err)
	}
}

func TestEntityMerge(t *testing.T) {
	graphRepo, passageRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { passageRepo.Close(); graphRepo.Close(); backend.Close() }()

	ctx := context.Background()

	first := &core.Entity{
		Type:  core.EntityEpisode,
		Name:  "Episode 42",
		Props: map[string]string{"video_id": "vid42"},
	}
	added, err := graphRepo.AddEntities(ctx, first)
	if err != nil {
		t.Fatalf("Failed to add entity: %v", err)
	}
	if added[0].Id == 0 {
		t.Fatal("Expected non-zero ID")
	}

	// Re-adding the same (Type, Name) merges props and keeps the ID
	second := &core.Entity{
		Type:  core.EntityEpisode,
		Name:  "Episode 42",
		Props: map[string]string{"publish_date": "2024-01-15"},
	}
	merged, err := graphRepo.AddEntities(ctx, second)
	if err != nil {
		t.Fatalf("Failed to re-add entity: %v", err)
	}
	if merged[0].Id != added[0].Id {
		t.Fatalf("Expected same ID, got %d and %d", added[0].Id, merged[0].Id)
	}

	got, err := graphRepo.GetEntity(ctx, added[0].Id)
	if err != nil {
		t.Fatalf("Failed to get entity: %v", err)
	}
	if got.Props["video_id"] != "vid42" || got.Props["publish_date"] != "2024-01-15" {
		t.Fatalf("Expected merged props, got %v", got.Props)
	}
}

func TestGetEntityNotFound(t *testing.T) {
	graphRepo, passageRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { passageRepo.Close(); graphRepo.Close(); backend.Close() }()

	_, err = graphRepo.GetEntity(context.Background(), 12345)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestEntityExists(t *testing.T) {
	graphRepo, passageRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { passageRepo.Close(); graphRepo.Close(); backend.Close() }()
	seedGraph(t, graphRepo)

	ctx := context.Background()

	// Case-insensitive exact match
	found, label, err := graphRepo.EntityExists(ctx, "naval ravikant", "")
	if err != nil {
		t.Fatalf("EntityExists failed: %v", err)
	}
	if !found || label != core.EntityPerson {
		t.Fatalf("Expected (true, Person), got (%v, %s)", found, label)
	}

	// Type hint mismatch
	found, _, err = graphRepo.EntityExists(ctx, "Naval Ravikant", core.EntityBook)
	if err != nil {
		t.Fatalf("EntityExists failed: %v", err)
	}
	if found {
		t.Fatal("Expected entity not to match Book type hint")
	}

	// Unknown name
	found, _, err = graphRepo.EntityExists(ctx, "Nobody Special", "")
	if err != nil {
		t.Fatalf("EntityExists failed: %v", err)
	}
	if found {
		t.Fatal("Expected entity not to exist")
	}
}

// A stored name that extends the queried name past a colon shares its index
// prefix but is a different entity. Exact match must reject it.
func TestEntityExistsRejectsPrefixName(t *testing.T) {
	graphRepo, passageRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { passageRepo.Close(); graphRepo.Close(); backend.Close() }()

	ctx := context.Background()
	_, err = graphRepo.AddEntities(ctx, &core.Entity{
		Type: core.EntityEpisode, Name: "Episode 42: The Future of AI",
	})
	if err != nil {
		t.Fatalf("Failed to add entity: %v", err)
	}

	found, _, err := graphRepo.EntityExists(ctx, "Episode 42", "")
	if err != nil {
		t.Fatalf("EntityExists failed: %v", err)
	}
	if found {
		t.Fatal("Expected no match for a name that only prefixes a stored entity")
	}

	found, label, err := graphRepo.EntityExists(ctx, "episode 42: the future of ai", "")
	if err != nil {
		t.Fatalf("EntityExists failed: %v", err)
	}
	if !found || label != core.EntityEpisode {
		t.Fatalf("Expected (true, Episode) for the full name, got (%v, %s)", found, label)
	}
}

func TestRelationshipExists(t *testing.T) {
	graphRepo, passageRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { passageRepo.Close(); graphRepo.Close(); backend.Close() }()
	seedGraph(t, graphRepo)

	ctx := context.Background()

	found, err := graphRepo.RelationshipExists(ctx, "Naval", core.RelAppearedOn, "Episode 7")
	if err != nil {
		t.Fatalf("RelationshipExists failed: %v", err)
	}
	if !found {
		t.Fatal("Expected appearance relationship to exist")
	}

	// Direction matters: episode did not appear on the person
	found, err = graphRepo.RelationshipExists(ctx, "Episode 7", core.RelAppearedOn, "Naval")
	if err != nil {
		t.Fatalf("RelationshipExists failed: %v", err)
	}
	if found {
		t.Fatal("Expected reversed relationship not to exist")
	}

	found, err = graphRepo.RelationshipExists(ctx, "Derek", core.RelAppearedOn, "Episode 7")
	if err != nil {
		t.Fatalf("RelationshipExists failed: %v", err)
	}
	if found {
		t.Fatal("Expected no appearance for Derek on Episode 7")
	}
}

func TestFindCommonGuests(t *testing.T) {
	graphRepo, passageRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { passageRepo.Close(); graphRepo.Close(); backend.Close() }()
	seedGraph(t, graphRepo)

	common, err := graphRepo.FindCommonGuests(context.Background(), "Tim Ferriss", "Lex Fridman")
	if err != nil {
		t.Fatalf("FindCommonGuests failed: %v", err)
	}
	if len(common) != 1 || common[0] != "Naval Ravikant" {
		t.Fatalf("Expected [Naval Ravikant], got %v", common)
	}
}

func TestSentimentTimeline(t *testing.T) {
	graphRepo, passageRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { passageRepo.Close(); graphRepo.Close(); backend.Close() }()
	seedGraph(t, graphRepo)

	ctx := context.Background()

	rows, err := graphRepo.SentimentTimeline(ctx, "Naval", "")
	if err != nil {
		t.Fatalf("SentimentTimeline failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected 2 mentions, got %d", len(rows))
	}
	// Ordered by publish date ascending
	if rows[0]["date"] != "2024-03-01" || rows[1]["date"] != "2024-05-10" {
		t.Fatalf("Expected chronological order, got %v then %v", rows[0]["date"], rows[1]["date"])
	}

	// Podcast filter
	rows, err = graphRepo.SentimentTimeline(ctx, "Naval", "Lex Fridman")
	if err != nil {
		t.Fatalf("SentimentTimeline failed: %v", err)
	}
	if len(rows) != 1 || rows[0]["sentiment"] != "neutral" {
		t.Fatalf("Expected one neutral mention on Lex Fridman, got %v", rows)
	}
}

func TestTraceConcept(t *testing.T) {
	graphRepo, passageRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { passageRepo.Close(); graphRepo.Close(); backend.Close() }()
	seedGraph(t, graphRepo)

	ctx := context.Background()

	rows, err := graphRepo.TraceConcept(ctx, "artificial", nil)
	if err != nil {
		t.Fatalf("TraceConcept failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("Expected 1 discussion, got %d", len(rows))
	}
	if rows[0]["podcast"] != "Lex Fridman Podcast" || rows[0]["video_id"] != "vid7" {
		t.Fatalf("Unexpected row: %v", rows[0])
	}

	// Podcast filter excludes the discussion
	rows, err = graphRepo.TraceConcept(ctx, "artificial", []string{"Tim Ferriss"})
	if err != nil {
		t.Fatalf("TraceConcept failed: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("Expected no rows with podcast filter, got %v", rows)
	}
}

func TestStatistics(t *testing.T) {
	graphRepo, passageRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { passageRepo.Close(); graphRepo.Close(); backend.Close() }()
	seedGraph(t, graphRepo)

	stats, err := graphRepo.Statistics(context.Background())
	if err != nil {
		t.Fatalf("Statistics failed: %v", err)
	}
	if stats["person_count"] != 2 {
		t.Fatalf("Expected 2 persons, got %d", stats["person_count"])
	}
	if stats["podcast_count"] != 2 {
		t.Fatalf("Expected 2 podcasts, got %d", stats["podcast_count"])
	}
	if stats["episode_count"] != 2 {
		t.Fatalf("Expected 2 episodes, got %d", stats["episode_count"])
	}
	if stats["relationship_count"] != 9 {
		t.Fatalf("Expected 9 relationships, got %d", stats["relationship_count"])
	}
}
