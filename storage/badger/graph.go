package badger

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/podgraph/podgraph/core"
	"github.com/podgraph/podgraph/storage"
)

// GraphRepository implements storage.GraphRepository for BadgerDB.
type GraphRepository struct {
	backend *Backend
}

var _ storage.GraphRepository = (*GraphRepository)(nil)

// NewGraphRepository creates a new GraphRepository.
func NewGraphRepository(backend *Backend) (*GraphRepository, error) {
	return &GraphRepository{
		backend: backend,
	}, nil
}

// Close releases resources. GraphRepository has no resources to release.
func (r *GraphRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *GraphRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddEntities adds or merges entities. Re-adding an entity with the same
// (Type, Name) tuple merges its Props, with the new values winning.
func (r *GraphRepository) AddEntities(ctx context.Context, entities ...*core.Entity) ([]*core.Entity, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, entity := range entities {
			// Use content-based ID if not set
			if entity.Id == 0 {
				entity.Id = core.IDFromContent(entity.Tuple())
			}

			key := makeEntityKey(entity.Id)
			now := time.Now().UTC()

			old, err := readEntity(tx, key)
			if err != nil {
				return err
			}
			if old != nil {
				// Merge props into the existing record
				merged := make(map[string]string, len(old.Props)+len(entity.Props))
				for k, v := range old.Props {
					merged[k] = v
				}
				for k, v := range entity.Props {
					merged[k] = v
				}
				entity.Props = merged
				entity.InsertedAt = old.InsertedAt
			} else {
				entity.InsertedAt = now
			}
			entity.UpdatedAt = now

			if err := tx.Set(key, storage.MarshalEntity(entity)); err != nil {
				return err
			}

			// Store name and type indexes
			nameKey := makeEntityNameKey(entity.Name, entity.Id)
			if err := tx.Set(nameKey, storage.MarshalID(entity.Id)); err != nil {
				return err
			}
			typeKey := makeEntityTypeKey(entity.Type, entity.Id)
			if err := tx.Set(typeKey, storage.MarshalID(entity.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return entities, err
}

// AddRelationships adds directed relationships. Re-adding an identical
// relationship (same type, endpoints and props) is a no-op overwrite.
func (r *GraphRepository) AddRelationships(ctx context.Context, rels ...*core.Relationship) ([]*core.Relationship, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, rel := range rels {
			if rel.Id == 0 {
				rel.Id = core.IDFromContent(rel.Tuple())
			}
			rel.InsertedAt = time.Now().UTC()

			key := makeRelationshipKey(rel.Id)
			if err := tx.Set(key, storage.MarshalRelationship(rel)); err != nil {
				return err
			}

			// Store edge indexes for traversal in both directions
			fromKey := makeRelFromKey(rel.Type, rel.FromId, rel.Id)
			if err := tx.Set(fromKey, storage.MarshalID(rel.Id)); err != nil {
				return err
			}
			toKey := makeRelToKey(rel.Type, rel.ToId, rel.Id)
			if err := tx.Set(toKey, storage.MarshalID(rel.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return rels, err
}

// GetEntity retrieves a single entity by ID.
func (r *GraphRepository) GetEntity(ctx context.Context, id core.ID) (*core.Entity, error) {
	var result *core.Entity
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readEntity(tx, makeEntityKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// FindEntitiesByName retrieves entities whose name contains the given text,
// case-insensitively.
func (r *GraphRepository) FindEntitiesByName(ctx context.Context, name, typeHint string) ([]*core.Entity, error) {
	var results []*core.Entity
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		results, err = findEntitiesByName(tx, name, typeHint)
		return err
	}, false)
	return results, err
}

// EntityExists checks whether an entity with the given name exists, using a
// case-insensitive exact match on the name index.
func (r *GraphRepository) EntityExists(ctx context.Context, name, typeHint string) (bool, string, error) {
	var found bool
	var label string

	nameLower := strings.ToLower(name)
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		prefix := makePartialEntityNameKey(name)
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(prefix); iter.ValidForPrefix(prefix); iter.Next() {
			// The prefix scan also admits stored names that merely begin
			// with name + ":", so require equality on the indexed name.
			if nameFromIndexKey(iter.Item().Key()) != nameLower {
				continue
			}
			entity, err := readEntity(tx, makeEntityKey(idFromIndexKey(iter.Item().Key())))
			if err != nil {
				return err
			}
			if entity == nil {
				continue
			}
			if typeHint != "" && entity.Type != typeHint {
				continue
			}
			found = true
			label = entity.Type
			return nil
		}
		return nil
	}, false)

	return found, label, err
}

// RelationshipExists checks for a directed relationship of relType from an
// entity matching subject to an entity matching object.
func (r *GraphRepository) RelationshipExists(ctx context.Context, subject, relType, object string) (bool, error) {
	var found bool
	objectLower := strings.ToLower(object)

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		subjects, err := findEntitiesByName(tx, subject, "")
		if err != nil {
			return err
		}

		for _, subj := range subjects {
			rels, err := outgoingRels(tx, relType, subj.Id)
			if err != nil {
				return err
			}
			for _, rel := range rels {
				target, err := readEntity(tx, makeEntityKey(rel.ToId))
				if err != nil {
					return err
				}
				if target == nil {
					continue
				}
				if strings.Contains(strings.ToLower(target.Name), objectLower) {
					found = true
					return nil
				}
			}
		}
		return nil
	}, false)

	return found, err
}

// FindCommonGuests returns names of persons who appeared on episodes of both
// podcasts, sorted alphabetically.
func (r *GraphRepository) FindCommonGuests(ctx context.Context, podcast1, podcast2 string) ([]string, error) {
	var common []string

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		guests1, err := guestsOfPodcast(tx, podcast1)
		if err != nil {
			return err
		}
		guests2, err := guestsOfPodcast(tx, podcast2)
		if err != nil {
			return err
		}

		for name := range guests1 {
			if guests2[name] {
				common = append(common, name)
			}
		}
		return nil
	}, false)

	slices.Sort(common)
	return common, err
}

// SentimentTimeline returns mention rows for an entity ordered by episode
// publish date.
func (r *GraphRepository) SentimentTimeline(ctx context.Context, entity, podcast string) ([]map[string]any, error) {
	var rows []map[string]any
	podcastLower := strings.ToLower(podcast)

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		entities, err := findEntitiesByName(tx, entity, "")
		if err != nil {
			return err
		}

		for _, ent := range entities {
			mentions, err := outgoingRels(tx, core.RelMentionedIn, ent.Id)
			if err != nil {
				return err
			}
			for _, rel := range mentions {
				episode, err := readEntity(tx, makeEntityKey(rel.ToId))
				if err != nil {
					return err
				}
				if episode == nil {
					continue
				}

				podcastName, err := podcastOfEpisode(tx, episode.Id)
				if err != nil {
					return err
				}
				if podcast != "" && !strings.Contains(strings.ToLower(podcastName), podcastLower) {
					continue
				}

				rows = append(rows, map[string]any{
					"entity":    ent.Name,
					"episode":   episode.Name,
					"podcast":   podcastName,
					"date":      episode.Props["publish_date"],
					"sentiment": rel.Props["sentiment"],
					"context":   rel.Props["context"],
					"timestamp": rel.Props["timestamp"],
				})
			}
		}
		return nil
	}, false)

	sortRowsByString(rows, "date")
	return rows, err
}

// TraceConcept returns episode rows discussing a topic, ordered
// chronologically.
func (r *GraphRepository) TraceConcept(ctx context.Context, concept string, podcasts []string) ([]map[string]any, error) {
	var rows []map[string]any

	filters := make([]string, len(podcasts))
	for i, p := range podcasts {
		filters[i] = strings.ToLower(p)
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		topics, err := findEntitiesByName(tx, concept, core.EntityTopic)
		if err != nil {
			return err
		}

		for _, topic := range topics {
			discussions, err := incomingRels(tx, core.RelDiscusses, topic.Id)
			if err != nil {
				return err
			}
			for _, rel := range discussions {
				episode, err := readEntity(tx, makeEntityKey(rel.FromId))
				if err != nil {
					return err
				}
				if episode == nil {
					continue
				}

				podcastName, err := podcastOfEpisode(tx, episode.Id)
				if err != nil {
					return err
				}
				if len(filters) > 0 && !matchesAny(podcastName, filters) {
					continue
				}

				rows = append(rows, map[string]any{
					"topic":     topic.Name,
					"podcast":   podcastName,
					"episode":   episode.Name,
					"date":      episode.Props["publish_date"],
					"video_id":  episode.Props["video_id"],
					"timestamp": rel.Props["timestamp"],
				})
			}
		}
		return nil
	}, false)

	sortRowsByString(rows, "date")
	return rows, err
}

// Statistics returns entity counts per type and the total relationship count.
func (r *GraphRepository) Statistics(ctx context.Context) (map[string]int, error) {
	stats := make(map[string]int, len(core.EntityTypes)+1)

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, entityType := range core.EntityTypes {
			count, err := countKeys(tx, makePartialEntityTypeKey(entityType))
			if err != nil {
				return err
			}
			stats[strings.ToLower(entityType)+"_count"] = count
		}

		relCount, err := countKeys(tx, []byte(relationshipPrefix+":"))
		if err != nil {
			return err
		}
		stats["relationship_count"] = relCount
		return nil
	}, false)

	return stats, err
}

// Helper methods

// readEntity reads an entity from the transaction. Returns nil if missing.
func readEntity(tx *badger.Txn, key []byte) (*core.Entity, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var entity *core.Entity
	err = item.Value(func(val []byte) error {
		var err error
		entity, err = storage.UnmarshalEntity(val)
		return err
	})
	return entity, err
}

// readRelationship reads a relationship from the transaction. Returns nil if
// missing.
func readRelationship(tx *badger.Txn, key []byte) (*core.Relationship, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var rel *core.Relationship
	err = item.Value(func(val []byte) error {
		var err error
		rel, err = storage.UnmarshalRelationship(val)
		return err
	})
	return rel, err
}

// findEntitiesByName scans the name index for entities whose lowercased name
// contains the given text.
func findEntitiesByName(tx *badger.Txn, name, typeHint string) ([]*core.Entity, error) {
	nameLower := strings.ToLower(name)
	prefix := []byte(entityNamePrefix + ":")

	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = prefix
	iter := tx.NewIterator(opts)
	defer iter.Close()

	var results []*core.Entity
	for iter.Seek(prefix); iter.ValidForPrefix(prefix); iter.Next() {
		key := iter.Item().Key()
		if !strings.Contains(nameFromIndexKey(key), nameLower) {
			continue
		}

		entity, err := readEntity(tx, makeEntityKey(idFromIndexKey(key)))
		if err != nil {
			return nil, err
		}
		if entity == nil {
			continue
		}
		if typeHint != "" && entity.Type != typeHint {
			continue
		}
		results = append(results, entity)
	}
	return results, nil
}

// outgoingRels returns relationships of relType starting at fromID.
func outgoingRels(tx *badger.Txn, relType string, fromID core.ID) ([]*core.Relationship, error) {
	return scanRels(tx, makePartialRelFromKey(relType, fromID))
}

// incomingRels returns relationships of relType ending at toID.
func incomingRels(tx *badger.Txn, relType string, toID core.ID) ([]*core.Relationship, error) {
	return scanRels(tx, makePartialRelToKey(relType, toID))
}

func scanRels(tx *badger.Txn, prefix []byte) ([]*core.Relationship, error) {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = prefix
	iter := tx.NewIterator(opts)
	defer iter.Close()

	var results []*core.Relationship
	for iter.Seek(prefix); iter.ValidForPrefix(prefix); iter.Next() {
		rel, err := readRelationship(tx, makeRelationshipKey(idFromIndexKey(iter.Item().Key())))
		if err != nil {
			return nil, err
		}
		if rel != nil {
			results = append(results, rel)
		}
	}
	return results, nil
}

// guestsOfPodcast returns the set of person names that appeared on episodes
// of podcasts matching the given name.
func guestsOfPodcast(tx *badger.Txn, podcast string) (map[string]bool, error) {
	guests := make(map[string]bool)

	pods, err := findEntitiesByName(tx, podcast, core.EntityPodcast)
	if err != nil {
		return nil, err
	}

	for _, pod := range pods {
		episodes, err := incomingRels(tx, core.RelBelongsTo, pod.Id)
		if err != nil {
			return nil, err
		}
		for _, belongs := range episodes {
			appearances, err := incomingRels(tx, core.RelAppearedOn, belongs.FromId)
			if err != nil {
				return nil, err
			}
			for _, appeared := range appearances {
				person, err := readEntity(tx, makeEntityKey(appeared.FromId))
				if err != nil {
					return nil, err
				}
				if person != nil && person.Type == core.EntityPerson {
					guests[person.Name] = true
				}
			}
		}
	}
	return guests, nil
}

// podcastOfEpisode resolves the podcast an episode belongs to.
// Returns "" when the episode has no BELONGS_TO edge.
func podcastOfEpisode(tx *badger.Txn, episodeID core.ID) (string, error) {
	rels, err := outgoingRels(tx, core.RelBelongsTo, episodeID)
	if err != nil {
		return "", err
	}
	for _, rel := range rels {
		pod, err := readEntity(tx, makeEntityKey(rel.ToId))
		if err != nil {
			return "", err
		}
		if pod != nil {
			return pod.Name, nil
		}
	}
	return "", nil
}

// countKeys counts keys under a prefix without reading values.
func countKeys(tx *badger.Txn, prefix []byte) (int, error) {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = prefix
	iter := tx.NewIterator(opts)
	defer iter.Close()

	count := 0
	for iter.Seek(prefix); iter.ValidForPrefix(prefix); iter.Next() {
		count++
	}
	return count, nil
}

// matchesAny reports whether the lowercased name contains any of the
// lowercased filters.
func matchesAny(name string, filters []string) bool {
	nameLower := strings.ToLower(name)
	for _, f := range filters {
		if strings.Contains(nameLower, f) {
			return true
		}
	}
	return false
}

// sortRowsByString sorts rows ascending by a string-valued column.
func sortRowsByString(rows []map[string]any, column string) {
	slices.SortFunc(rows, func(a, b map[string]any) int {
		av, _ := a[column].(string)
		bv, _ := b[column].(string)
		return strings.Compare(av, bv)
	})
}
