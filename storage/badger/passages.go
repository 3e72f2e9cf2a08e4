package badger

import (
	"context"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/podgraph/podgraph/core"
	"github.com/podgraph/podgraph/storage"
)

// PassageRepository implements storage.PassageRepository for BadgerDB.
//
// Similarity search is a flat scan over all stored passages. That is linear
// in corpus size, but transcripts for a few hundred episodes stay well under
// a million passages and the scan avoids index maintenance entirely.
type PassageRepository struct {
	backend *Backend
}

var _ storage.PassageRepository = (*PassageRepository)(nil)

// NewPassageRepository creates a new PassageRepository.
func NewPassageRepository(backend *Backend) (*PassageRepository, error) {
	return &PassageRepository{
		backend: backend,
	}, nil
}

// Close releases resources. PassageRepository has no resources to release.
func (r *PassageRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *PassageRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddPassages adds passages to storage. Passages with Id == 0 get a
// content-based ID derived from (VideoID, StartTime), so re-ingesting a
// video overwrites its passages in place.
func (r *PassageRepository) AddPassages(ctx context.Context, passages ...*core.Passage) ([]*core.Passage, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, passage := range passages {
			if passage.Id == 0 {
				passage.Id = core.IDFromContent(fmt.Sprintf("(%s,%f)", passage.VideoID, passage.StartTime))
			}

			now := time.Now().UTC()
			passage.InsertedAt = now
			passage.UpdatedAt = now

			key := makePassageKey(passage.Id)
			if err := tx.Set(key, storage.MarshalPassage(passage)); err != nil {
				return err
			}

			videoKey := makePassageVideoKey(passage.VideoID, passage.Id)
			if err := tx.Set(videoKey, storage.MarshalID(passage.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return passages, err
}

// GetPassage retrieves a single passage by ID.
func (r *PassageRepository) GetPassage(ctx context.Context, id core.ID) (*core.Passage, error) {
	var result *core.Passage
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readPassage(tx, makePassageKey(id))
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

// FindSimilar returns up to limit passages ranked by cosine similarity to
// the given vector, most similar first.
func (r *PassageRepository) FindSimilar(ctx context.Context, vector []float32, limit int, filter *storage.PassageFilter) ([]*core.PassageMatch, error) {
	var results []*core.PassageMatch

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := []byte(passagePrefix + ":")
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(prefix); iter.ValidForPrefix(prefix); iter.Next() {
			var passage *core.Passage
			err := iter.Item().Value(func(val []byte) error {
				var err error
				passage, err = storage.UnmarshalPassage(val)
				return err
			})
			if err != nil {
				return err
			}
			if passage == nil || len(passage.Vector) == 0 {
				continue
			}
			if len(passage.Vector) != len(vector) {
				return fmt.Errorf("%w: query %d, stored %d",
					storage.ErrDimensionMismatch, len(vector), len(passage.Vector))
			}
			if !filter.Matches(passage) {
				continue
			}

			results = append(results, &core.PassageMatch{
				Passage:    passage,
				Similarity: cosineSimilarity(vector, passage.Vector),
			})
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}

	// Sort by similarity descending
	slices.SortFunc(results, func(a, b *core.PassageMatch) int {
		if a.Similarity > b.Similarity {
			return -1
		}
		if a.Similarity < b.Similarity {
			return 1
		}
		return 0
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// DeleteVideo removes all passages belonging to a video.
func (r *PassageRepository) DeleteVideo(ctx context.Context, videoID string) (int, error) {
	deleted := 0

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := makePartialPassageVideoKey(videoID)
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)

		var videoKeys [][]byte
		var ids []core.ID
		for iter.Seek(prefix); iter.ValidForPrefix(prefix); iter.Next() {
			key := iter.Item().KeyCopy(nil)
			videoKeys = append(videoKeys, key)
			ids = append(ids, idFromIndexKey(key))
		}
		// Close before deleting; badger forbids writes while iterating.
		iter.Close()

		for i, id := range ids {
			if err := tx.Delete(makePassageKey(id)); err != nil {
				return err
			}
			if err := tx.Delete(videoKeys[i]); err != nil {
				return err
			}
			deleted++
		}
		return tx.Commit()
	}, true)

	if err != nil {
		return 0, err
	}
	return deleted, nil
}

// Count returns the total number of stored passages.
func (r *PassageRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		count, err = countKeys(tx, []byte(passagePrefix+":"))
		return err
	}, false)
	return count, err
}

// readPassage reads a passage from the transaction. Returns nil if missing.
func readPassage(tx *badger.Txn, key []byte) (*core.Passage, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var passage *core.Passage
	err = item.Value(func(val []byte) error {
		var err error
		passage, err = storage.UnmarshalPassage(val)
		return err
	})
	return passage, err
}

// cosineSimilarity calculates cosine similarity between two vectors.
func cosineSimilarity(a, b []float32) float32 {
	var dot, normA, normB float32
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (sqrt32(normA) * sqrt32(normB))
}

func sqrt32(x float32) float32 {
	return float32(math.Sqrt(float64(x)))
}
