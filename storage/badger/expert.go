package badger

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/expertmatch/core"
	"github.com/poiesic/expertmatch/storage"
)

// ExpertRepository implements storage.ExpertRepository for BadgerDB.
type ExpertRepository struct {
	backend *Backend
	expSeq  *badger.Sequence
	wexSeq  *badger.Sequence
}

var _ storage.ExpertRepository = (*ExpertRepository)(nil)

// NewExpertRepository creates a new ExpertRepository.
func NewExpertRepository(backend *Backend) (*ExpertRepository, error) {
	expSeq, err := backend.GetSequence(expertIDSeq)
	if err != nil {
		return nil, err
	}
	wexSeq, err := backend.GetSequence(experienceIDSeq)
	if err != nil {
		expSeq.Release()
		return nil, err
	}

	return &ExpertRepository{
		backend: backend,
		expSeq:  expSeq,
		wexSeq:  wexSeq,
	}, nil
}

// Close releases the ID sequences.
func (r *ExpertRepository) Close() error {
	err := r.expSeq.Release()
	if relErr := r.wexSeq.Release(); relErr != nil && err == nil {
		err = relErr
	}
	return err
}

// WithTransaction delegates to the backend.
func (r *ExpertRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddExperts adds one or more experts to storage.
func (r *ExpertRepository) AddExperts(ctx context.Context, experts ...*core.Expert) ([]*core.Expert, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, expert := range experts {
			if expert.Id == 0 {
				nextID, err := nextSequenceID(r.expSeq)
				if err != nil {
					return err
				}
				expert.Id = nextID
			}

			expert.InsertedAt = time.Now().UTC()
			expert.UpdatedAt = expert.InsertedAt

			key := makeExpertKey(expert.Id)
			value := storage.MarshalExpert(expert)
			if err := tx.Set(key, value); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return experts, err
}

// UpdateExperts updates existing experts.
func (r *ExpertRepository) UpdateExperts(ctx context.Context, experts ...*core.Expert) ([]*core.Expert, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, expert := range experts {
			key := makeExpertKey(expert.Id)

			old, err := readExpert(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			expert.UpdatedAt = time.Now().UTC()

			value := storage.MarshalExpert(expert)
			if err := tx.Set(key, value); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return experts, err
}

// DeleteExperts removes experts by their IDs, cascading to their experiences.
func (r *ExpertRepository) DeleteExperts(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeExpertKey(id)

			expert, err := readExpert(tx, key)
			if err != nil {
				return err
			}
			if expert == nil {
				return storage.ErrNotFound
			}

			// Cascade: delete all experiences and their indices
			expIDs, err := readExperienceIDsByExpert(tx, id)
			if err != nil {
				return err
			}
			for _, expID := range expIDs {
				if err := r.deleteExperienceInTx(tx, expID); err != nil {
					return err
				}
			}

			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetExpert retrieves a single expert by ID.
func (r *ExpertRepository) GetExpert(ctx context.Context, id core.ID) (*core.Expert, error) {
	var result *core.Expert
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeExpertKey(id)
		var err error
		result, err = readExpert(tx, key)
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

// GetExperts retrieves multiple experts by their IDs.
func (r *ExpertRepository) GetExperts(ctx context.Context, ids ...core.ID) ([]*core.Expert, error) {
	var result []*core.Expert
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeExpertKey(id)
			expert, err := readExpert(tx, key)
			if err != nil {
				return err
			}
			if expert != nil {
				result = append(result, expert)
			}
		}
		return nil
	}, false)
	return result, err
}

// AddExperiences adds one or more experiences to storage.
func (r *ExpertRepository) AddExperiences(ctx context.Context, exps ...*core.Experience) ([]*core.Experience, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, exp := range exps {
			// Referenced expert must exist
			expert, err := readExpert(tx, makeExpertKey(exp.ExpertId))
			if err != nil {
				return err
			}
			if expert == nil {
				return storage.ErrNotFound
			}

			if exp.Id == 0 {
				nextID, err := nextSequenceID(r.wexSeq)
				if err != nil {
					return err
				}
				exp.Id = nextID
			}

			exp.InsertedAt = time.Now().UTC()
			exp.UpdatedAt = exp.InsertedAt

			// Store primary record
			key := makeExperienceKey(exp.Id)
			value := storage.MarshalExperience(exp)
			if err := tx.Set(key, value); err != nil {
				return err
			}

			// Update expert index
			expertKey := makeExperienceExpertKey(exp.ExpertId, exp.Id)
			if err := tx.Set(expertKey, storage.MarshalID(exp.Id)); err != nil {
				return err
			}

			// Update attribute index
			if err := updateAttrIndex(tx, exp); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return exps, err
}

// UpdateExperiences updates existing experiences and their indices.
func (r *ExpertRepository) UpdateExperiences(ctx context.Context, exps ...*core.Experience) ([]*core.Experience, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, exp := range exps {
			key := makeExperienceKey(exp.Id)

			old, err := readExperience(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			exp.UpdatedAt = time.Now().UTC()

			value := storage.MarshalExperience(exp)
			if err := tx.Set(key, value); err != nil {
				return err
			}

			// Update expert index if the owner changed
			if old.ExpertId != exp.ExpertId {
				oldKey := makeExperienceExpertKey(old.ExpertId, old.Id)
				if err := tx.Delete(oldKey); err != nil {
					return err
				}
				newKey := makeExperienceExpertKey(exp.ExpertId, exp.Id)
				if err := tx.Set(newKey, storage.MarshalID(exp.Id)); err != nil {
					return err
				}
			}

			// Update attribute index if attributes changed
			if !slices.Equal(old.AttributeIds, exp.AttributeIds) {
				if err := deleteAttrIndex(tx, old); err != nil {
					return err
				}
				if err := updateAttrIndex(tx, exp); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	}, true)

	return exps, err
}

// DeleteExperiences removes experiences by their IDs.
func (r *ExpertRepository) DeleteExperiences(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			if err := r.deleteExperienceInTx(tx, id); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetExperience retrieves a single experience by ID.
func (r *ExpertRepository) GetExperience(ctx context.Context, id core.ID) (*core.Experience, error) {
	var result *core.Experience
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeExperienceKey(id)
		var err error
		result, err = readExperience(tx, key)
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

// GetExperiencesByExpert retrieves all experiences for an expert, ordered by
// start date descending.
func (r *ExpertRepository) GetExperiencesByExpert(ctx context.Context, expertID core.ID) ([]*core.Experience, error) {
	var results []*core.Experience
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		expIDs, err := readExperienceIDsByExpert(tx, expertID)
		if err != nil {
			return err
		}
		for _, id := range expIDs {
			exp, err := readExperience(tx, makeExperienceKey(id))
			if err != nil {
				return err
			}
			if exp != nil {
				results = append(results, exp)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(results, func(a, b *core.Experience) int {
		if a.StartDate.After(b.StartDate) {
			return -1
		}
		if a.StartDate.Before(b.StartDate) {
			return 1
		}
		return 0
	})

	return results, nil
}

// GetExperiencesByAttributes retrieves the experiences associated with any of
// the given attribute IDs, deduplicated.
func (r *ExpertRepository) GetExperiencesByAttributes(ctx context.Context, attributeIDs ...core.ID) ([]*core.Experience, error) {
	var results []*core.Experience
	seen := make(map[core.ID]bool)

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, attrID := range attributeIDs {
			expIDs, err := scanCompositeIndex(tx, makePartialExperienceAttrKey(attrID))
			if err != nil {
				return err
			}
			for _, id := range expIDs {
				if seen[id] {
					continue
				}
				seen[id] = true

				exp, err := readExperience(tx, makeExperienceKey(id))
				if err != nil {
					return err
				}
				if exp != nil {
					results = append(results, exp)
				}
			}
		}
		return nil
	}, false)

	return results, err
}

// GetExpertGraphs loads experts together with their experiences and the
// attributes those experiences reference.
func (r *ExpertRepository) GetExpertGraphs(ctx context.Context, expertIDs ...core.ID) ([]*core.ExpertGraph, error) {
	var graphs []*core.ExpertGraph

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, expertID := range expertIDs {
			expert, err := readExpert(tx, makeExpertKey(expertID))
			if err != nil {
				return err
			}
			if expert == nil {
				continue
			}

			expIDs, err := readExperienceIDsByExpert(tx, expertID)
			if err != nil {
				return err
			}

			graph := &core.ExpertGraph{
				Expert:     expert,
				Attributes: make(map[core.ID]*core.Attribute),
			}
			for _, id := range expIDs {
				exp, err := readExperience(tx, makeExperienceKey(id))
				if err != nil {
					return err
				}
				if exp == nil {
					continue
				}
				graph.Experiences = append(graph.Experiences, exp)

				for _, attrID := range exp.AttributeIds {
					if _, ok := graph.Attributes[attrID]; ok {
						continue
					}
					attr, err := readAttribute(tx, makeAttributeKey(attrID))
					if err != nil {
						return err
					}
					if attr != nil {
						graph.Attributes[attrID] = attr
					}
				}
			}

			slices.SortFunc(graph.Experiences, func(a, b *core.Experience) int {
				if a.StartDate.After(b.StartDate) {
					return -1
				}
				if a.StartDate.Before(b.StartDate) {
					return 1
				}
				return 0
			})

			graphs = append(graphs, graph)
		}
		return nil
	}, false)

	return graphs, err
}

// Helper methods

// nextSequenceID returns the next non-zero ID from a sequence.
// BadgerDB sequences can return 0 on first call, so we skip it.
func nextSequenceID(seq *badger.Sequence) (core.ID, error) {
	next, err := seq.Next()
	if err != nil {
		return 0, err
	}
	if next == 0 {
		next, err = seq.Next()
		if err != nil {
			return 0, err
		}
	}
	return core.ID(next), nil
}

// deleteExperienceInTx removes an experience and its indices.
func (r *ExpertRepository) deleteExperienceInTx(tx *badger.Txn, id core.ID) error {
	key := makeExperienceKey(id)

	exp, err := readExperience(tx, key)
	if err != nil {
		return err
	}
	if exp == nil {
		return storage.ErrNotFound
	}

	// Delete from expert index
	expertKey := makeExperienceExpertKey(exp.ExpertId, exp.Id)
	if err := tx.Delete(expertKey); err != nil {
		return err
	}

	// Delete from attribute index
	if err := deleteAttrIndex(tx, exp); err != nil {
		return err
	}

	// Delete primary record
	return tx.Delete(key)
}

// readExpert reads an expert from the transaction.
func readExpert(tx *badger.Txn, key []byte) (*core.Expert, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var expert *core.Expert
	err = item.Value(func(val []byte) error {
		var err error
		expert, err = storage.UnmarshalExpert(val)
		return err
	})
	return expert, err
}

// readExperience reads an experience from the transaction.
func readExperience(tx *badger.Txn, key []byte) (*core.Experience, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var exp *core.Experience
	err = item.Value(func(val []byte) error {
		var err error
		exp, err = storage.UnmarshalExperience(val)
		return err
	})
	return exp, err
}

// readExperienceIDsByExpert scans the expert index for an expert's experience IDs.
func readExperienceIDsByExpert(tx *badger.Txn, expertID core.ID) ([]core.ID, error) {
	return scanCompositeIndex(tx, makePartialExperienceExpertKey(expertID))
}

// scanCompositeIndex collects the ID values stored under a partial composite key.
func scanCompositeIndex(tx *badger.Txn, startKey []byte) ([]core.ID, error) {
	var ids []core.ID

	iter := tx.NewIterator(badger.DefaultIteratorOptions)
	defer iter.Close()

	for iter.Seek(startKey); iter.Valid(); iter.Next() {
		key := iter.Item().Key()
		if len(key) < len(startKey) {
			break
		}
		if slices.Compare(key[:len(startKey)], startKey) != 0 {
			break
		}

		var id core.ID
		err := iter.Item().Value(func(val []byte) error {
			var err error
			id, err = storage.UnmarshalID(val)
			return err
		})
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, nil
}

// updateAttrIndex adds attribute index entries for an experience.
func updateAttrIndex(tx *badger.Txn, exp *core.Experience) error {
	if len(exp.AttributeIds) == 0 {
		return nil
	}
	for _, attrID := range exp.AttributeIds {
		key := makeExperienceAttrKey(attrID, exp.Id)
		value := storage.MarshalID(exp.Id)
		if err := tx.Set(key, value); err != nil {
			return err
		}
	}
	return nil
}

// deleteAttrIndex removes attribute index entries for an experience.
func deleteAttrIndex(tx *badger.Txn, exp *core.Experience) error {
	if len(exp.AttributeIds) == 0 {
		return nil
	}
	for _, attrID := range exp.AttributeIds {
		key := makeExperienceAttrKey(attrID, exp.Id)
		if err := tx.Delete(key); err != nil {
			return err
		}
	}
	return nil
}
