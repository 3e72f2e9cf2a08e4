package storage

import (
	"context"

	"github.com/podgraph/podgraph/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// GraphRepository is the relationship store: typed entities and typed
// directed relationships with properties. It answers the structured side of
// evidence gathering — existence checks, relationship checks and generated
// statements.
type GraphRepository interface {
	Repository

	// AddEntities adds or merges entities. Entities with Id == 0 get a
	// content-based ID derived from their (Type, Name) tuple; re-adding an
	// existing entity merges its Props.
	// Returns the entities with IDs and timestamps populated.
	AddEntities(ctx context.Context, entities ...*core.Entity) ([]*core.Entity, error)

	// AddRelationships adds directed relationships between existing entities.
	// Relationships with Id == 0 get a content-based ID.
	AddRelationships(ctx context.Context, rels ...*core.Relationship) ([]*core.Relationship, error)

	// GetEntity retrieves a single entity by ID.
	// Returns ErrNotFound if the entity doesn't exist.
	GetEntity(ctx context.Context, id core.ID) (*core.Entity, error)

	// FindEntitiesByName retrieves entities whose name contains the given
	// text, case-insensitively. typeHint, when non-empty, restricts the
	// match to one entity type.
	FindEntitiesByName(ctx context.Context, name, typeHint string) ([]*core.Entity, error)

	// EntityExists checks whether an entity with the given name exists
	// (case-insensitive exact match on name). Returns the entity's type
	// label when found, or "" when not.
	EntityExists(ctx context.Context, name, typeHint string) (bool, string, error)

	// RelationshipExists checks for a directed relationship of relType from
	// an entity matching subject to an entity matching object. Names match
	// case-insensitively by containment, mirroring how generated statements
	// match them.
	RelationshipExists(ctx context.Context, subject, relType, object string) (bool, error)

	// ExecuteStatement executes a structured query statement (see the
	// statement grammar in the badger implementation) and returns the
	// projected rows. Parameters referenced as $name are taken from params.
	ExecuteStatement(ctx context.Context, statement string, params map[string]any) ([]map[string]any, error)

	// FindCommonGuests returns names of persons who appeared on episodes of
	// both podcasts (matched case-insensitively by name containment).
	FindCommonGuests(ctx context.Context, podcast1, podcast2 string) ([]string, error)

	// SentimentTimeline returns mention rows (date, sentiment, context,
	// episode) for an entity, ordered by episode publish date. podcast,
	// when non-empty, restricts the timeline to one podcast.
	SentimentTimeline(ctx context.Context, entity, podcast string) ([]map[string]any, error)

	// TraceConcept returns rows (podcast, episode, date, video_id, timestamp)
	// for episodes discussing a topic, ordered chronologically. podcasts,
	// when non-empty, restricts to those podcast names.
	TraceConcept(ctx context.Context, concept string, podcasts []string) ([]map[string]any, error)

	// Statistics returns entity counts per type plus the total relationship
	// count, keyed like "person_count", "relationship_count".
	Statistics(ctx context.Context) (map[string]int, error)
}

// PassageFilter restricts a similarity search to passages matching the set
// fields exactly. A nil filter matches everything.
type PassageFilter struct {
	VideoID string
	Podcast string
}

// Matches reports whether the passage satisfies the filter.
func (f *PassageFilter) Matches(p *core.Passage) bool {
	if f == nil {
		return true
	}
	if f.VideoID != "" && p.VideoID != f.VideoID {
		return false
	}
	if f.Podcast != "" && p.Podcast != f.Podcast {
		return false
	}
	return true
}

// PassageRepository stores embedded transcript passages and answers
// nearest-neighbor queries over them. It is the vector side of the semantic
// index.
type PassageRepository interface {
	Repository

	// AddPassages adds passages to storage. Passages with Id == 0 get a
	// content-based ID derived from (VideoID, StartTime).
	// Returns the passages with IDs and timestamps populated.
	AddPassages(ctx context.Context, passages ...*core.Passage) ([]*core.Passage, error)

	// GetPassage retrieves a single passage by ID.
	// Returns ErrNotFound if the passage doesn't exist.
	GetPassage(ctx context.Context, id core.ID) (*core.Passage, error)

	// FindSimilar returns up to limit passages ranked by cosine similarity
	// to the given vector, most similar first. Passages without vectors and
	// passages excluded by the filter are skipped.
	FindSimilar(ctx context.Context, vector []float32, limit int, filter *PassageFilter) ([]*core.PassageMatch, error)

	// DeleteVideo removes all passages belonging to a video.
	// Returns the number of passages removed.
	DeleteVideo(ctx context.Context, videoID string) (int, error)

	// Count returns the total number of stored passages.
	Count(ctx context.Context) (int, error)
}
