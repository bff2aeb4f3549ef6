package badger

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/expertmatch/core"
	"github.com/poiesic/expertmatch/storage"
)

// AttributeRepository implements storage.AttributeRepository for BadgerDB.
type AttributeRepository struct {
	backend *Backend
}

var _ storage.AttributeRepository = (*AttributeRepository)(nil)

// NewAttributeRepository creates a new AttributeRepository.
func NewAttributeRepository(backend *Backend) (*AttributeRepository, error) {
	return &AttributeRepository{
		backend: backend,
	}, nil
}

// Close releases resources. AttributeRepository has no resources to release.
func (r *AttributeRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *AttributeRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddAttributes adds one or more attributes to storage.
func (r *AttributeRepository) AddAttributes(ctx context.Context, attrs ...*core.Attribute) ([]*core.Attribute, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, attr := range attrs {
			// Use content-based ID if not set
			if attr.Id == 0 {
				attr.Id = core.IDFromContent(attr.Tuple())
			}

			// Set timestamps
			attr.InsertedAt = time.Now().UTC()
			attr.UpdatedAt = attr.InsertedAt

			// Store primary record
			key := makeAttributeKey(attr.Id)
			value := storage.MarshalAttribute(attr)
			if err := tx.Set(key, value); err != nil {
				return err
			}

			// Store tuple index
			tupleKey := makeAttributeTupleKey(attr.Type, attr.Name)
			if err := tx.Set(tupleKey, storage.MarshalID(attr.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return attrs, err
}

// UpdateAttributes updates existing attributes.
func (r *AttributeRepository) UpdateAttributes(ctx context.Context, attrs ...*core.Attribute) ([]*core.Attribute, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, attr := range attrs {
			key := makeAttributeKey(attr.Id)

			// Read old attribute to detect changes
			old, err := readAttribute(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			// Update timestamp
			attr.UpdatedAt = time.Now().UTC()

			// Store updated record
			value := storage.MarshalAttribute(attr)
			if err := tx.Set(key, value); err != nil {
				return err
			}

			// Update tuple index if name or type changed
			if old.Name != attr.Name || old.Type != attr.Type {
				oldTupleKey := makeAttributeTupleKey(old.Type, old.Name)
				if err := tx.Delete(oldTupleKey); err != nil {
					return err
				}
				newTupleKey := makeAttributeTupleKey(attr.Type, attr.Name)
				if err := tx.Set(newTupleKey, storage.MarshalID(attr.Id)); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	}, true)

	return attrs, err
}

// DeleteAttributes removes attributes by their IDs.
func (r *AttributeRepository) DeleteAttributes(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeAttributeKey(id)

			// Read attribute to get metadata for index cleanup
			attr, err := readAttribute(tx, key)
			if err != nil {
				return err
			}
			if attr == nil {
				return storage.ErrNotFound
			}

			// Delete from tuple index
			tupleKey := makeAttributeTupleKey(attr.Type, attr.Name)
			if err := tx.Delete(tupleKey); err != nil {
				return err
			}

			// Delete primary record
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetAttribute retrieves a single attribute by ID.
func (r *AttributeRepository) GetAttribute(ctx context.Context, id core.ID) (*core.Attribute, error) {
	var result *core.Attribute
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeAttributeKey(id)
		var err error
		result, err = readAttribute(tx, key)
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

// GetAttributes retrieves multiple attributes by their IDs.
func (r *AttributeRepository) GetAttributes(ctx context.Context, ids ...core.ID) ([]*core.Attribute, error) {
	var result []*core.Attribute
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeAttributeKey(id)
			attr, err := readAttribute(tx, key)
			if err != nil {
				return err
			}
			if attr != nil {
				result = append(result, attr)
			}
		}
		return nil
	}, false)
	return result, err
}

// FindAttributeByTypeAndName finds an attribute by its type and name tuple.
func (r *AttributeRepository) FindAttributeByTypeAndName(ctx context.Context, typ core.AttributeType, name string) (*core.Attribute, error) {
	var result *core.Attribute
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		// Look up ID from tuple index
		tupleKey := makeAttributeTupleKey(typ, name)
		item, err := tx.Get(tupleKey)
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}

		var attrID core.ID
		err = item.Value(func(val []byte) error {
			attrID, err = storage.UnmarshalID(val)
			return err
		})
		if err != nil {
			return err
		}

		// Look up full attribute
		attrKey := makeAttributeKey(attrID)
		result, err = readAttribute(tx, attrKey)
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

// GetOrCreateAttribute finds or creates an attribute by type and name.
func (r *AttributeRepository) GetOrCreateAttribute(ctx context.Context, typ core.AttributeType, name, summary string, vector []float32) (*core.Attribute, error) {
	// Try to find existing attribute
	attr, err := r.FindAttributeByTypeAndName(ctx, typ, name)
	if err == nil {
		return attr, nil
	}
	if err != storage.ErrNotFound {
		return nil, err
	}

	// Create new attribute
	newAttr := &core.Attribute{
		Name:      name,
		Type:      typ,
		Summary:   summary,
		Embedding: vector,
	}
	newAttr.Id = core.IDFromContent(newAttr.Tuple())

	// Try to add it (may fail due to race condition)
	added, err := r.AddAttributes(ctx, newAttr)
	if err != nil {
		// If add failed, try to find it again (someone else may have created it)
		attr, findErr := r.FindAttributeByTypeAndName(ctx, typ, name)
		if findErr == nil {
			return attr, nil
		}
		return nil, err
	}

	return added[0], nil
}

// ListAttributes retrieves all attributes of the given type.
// An empty type retrieves attributes of every type.
func (r *AttributeRepository) ListAttributes(ctx context.Context, typ core.AttributeType) ([]*core.Attribute, error) {
	var results []*core.Attribute
	err := r.forEachAttribute(func(attr *core.Attribute) error {
		if typ == "" || attr.Type == typ {
			results = append(results, attr)
		}
		return nil
	})
	return results, err
}

// FindAttributesWithoutEmbedding retrieves attributes that have no embedding
// vector, up to limit results.
func (r *AttributeRepository) FindAttributesWithoutEmbedding(ctx context.Context, limit int) ([]*core.Attribute, error) {
	var results []*core.Attribute
	err := r.forEachAttribute(func(attr *core.Attribute) error {
		if len(attr.Embedding) == 0 {
			results = append(results, attr)
			if limit > 0 && len(results) >= limit {
				return errStopIteration
			}
		}
		return nil
	})
	if err == errStopIteration {
		err = nil
	}
	return results, err
}

// FindSimilarAttributes finds attributes of the given type similar to the
// query vector via a full scan of the attribute records.
func (r *AttributeRepository) FindSimilarAttributes(ctx context.Context, vector []float32, typ core.AttributeType, minSimilarity float32, limit int) ([]*core.AttributeMatch, error) {
	var results []*core.AttributeMatch

	err := r.forEachAttribute(func(attr *core.Attribute) error {
		if attr.Type != typ {
			return nil
		}

		// Skip attributes without embeddings
		if len(attr.Embedding) == 0 {
			return nil
		}

		similarity := r.backend.cosineSimilarity(vector, attr.Embedding)

		// Filter by threshold
		if similarity >= minSimilarity {
			results = append(results, &core.AttributeMatch{
				Attribute:  attr,
				Similarity: similarity,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Sort by similarity descending, then by ID for a stable order
	slices.SortFunc(results, func(a, b *core.AttributeMatch) int {
		if a.Similarity > b.Similarity {
			return -1
		}
		if a.Similarity < b.Similarity {
			return 1
		}
		if a.Attribute.Id < b.Attribute.Id {
			return -1
		}
		if a.Attribute.Id > b.Attribute.Id {
			return 1
		}
		return 0
	})

	if len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

// Helper methods

// errStopIteration signals early termination of an attribute scan.
var errStopIteration = errors.New("stop iteration")

// forEachAttribute iterates over every stored attribute record.
func (r *AttributeRepository) forEachAttribute(fn func(*core.Attribute) error) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(attributeRecordPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()

			var attr *core.Attribute
			err := item.Value(func(val []byte) error {
				var err error
				attr, err = storage.UnmarshalAttribute(val)
				return err
			})
			if err != nil {
				return err
			}
			if attr == nil {
				continue
			}

			if err := fn(attr); err != nil {
				return err
			}
		}
		return nil
	}, false)
}

// readAttribute reads an attribute from the transaction.
func readAttribute(tx *badger.Txn, key []byte) (*core.Attribute, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var attr *core.Attribute
	err = item.Value(func(val []byte) error {
		var err error
		attr, err = storage.UnmarshalAttribute(val)
		return err
	})
	return attr, err
}
