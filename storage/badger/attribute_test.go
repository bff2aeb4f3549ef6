package badger

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/poiesic/expertmatch/core"
	"github.com/poiesic/expertmatch/storage"
)

func TestAttributeBasics(t *testing.T) {
	attrRepo, expertRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { expertRepo.Close(); attrRepo.Close(); backend.Close() }()

	ctx := context.Background()

	attr := &core.Attribute{
		Name:      "machine learning",
		Type:      core.AttributeTypeSkill,
		Summary:   "Skill: machine learning",
		Embedding: []float32{0.1, 0.2, 0.3},
	}

	added, err := attrRepo.AddAttributes(ctx, attr)
	if err != nil {
		t.Fatalf("Failed to add attribute: %v", err)
	}
	if len(added) != 1 {
		t.Fatalf("Expected 1 attribute, got %d", len(added))
	}
	if added[0].Id == 0 {
		t.Fatal("Expected non-zero ID")
	}
	if added[0].Id != core.IDFromContent("(skill,machine learning)") {
		t.Fatal("Expected content-based ID from the attribute tuple")
	}

	retrieved, err := attrRepo.GetAttribute(ctx, added[0].Id)
	if err != nil {
		t.Fatalf("Failed to get attribute: %v", err)
	}
	if retrieved.Name != "machine learning" {
		t.Fatalf("Expected 'machine learning', got '%s'", retrieved.Name)
	}

	found, err := attrRepo.FindAttributeByTypeAndName(ctx, core.AttributeTypeSkill, "machine learning")
	if err != nil {
		t.Fatalf("Failed to find attribute: %v", err)
	}
	if found.Id != added[0].Id {
		t.Fatalf("Expected ID %d, got %d", added[0].Id, found.Id)
	}

	// Same name under a different type is a different attribute
	_, err = attrRepo.FindAttributeByTypeAndName(ctx, core.AttributeTypeRole, "machine learning")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestGetOrCreateAttribute(t *testing.T) {
	attrRepo, expertRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { expertRepo.Close(); attrRepo.Close(); backend.Close() }()

	ctx := context.Background()

	vector := []float32{0.1, 0.2, 0.3}
	attr1, err := attrRepo.GetOrCreateAttribute(ctx, core.AttributeTypeAgency, "nasa", "Agency: nasa", vector)
	if err != nil {
		t.Fatalf("Failed to create attribute: %v", err)
	}

	attr2, err := attrRepo.GetOrCreateAttribute(ctx, core.AttributeTypeAgency, "nasa", "Agency: nasa", vector)
	if err != nil {
		t.Fatalf("Failed to get attribute: %v", err)
	}

	if attr1.Id != attr2.Id {
		t.Fatalf("Expected same attribute ID, got %d and %d", attr1.Id, attr2.Id)
	}
}

func TestUpdateAttributes(t *testing.T) {
	attrRepo, expertRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { expertRepo.Close(); attrRepo.Close(); backend.Close() }()

	ctx := context.Background()

	added, err := attrRepo.AddAttributes(ctx, &core.Attribute{
		Name: "python",
		Type: core.AttributeTypeSkill,
	})
	if err != nil {
		t.Fatalf("Failed to add attribute: %v", err)
	}

	added[0].Embedding = []float32{0.5, 0.5, 0.5}
	updated, err := attrRepo.UpdateAttributes(ctx, added[0])
	if err != nil {
		t.Fatalf("Failed to update attribute: %v", err)
	}
	if len(updated[0].Embedding) != 3 {
		t.Fatalf("Expected embedding to persist, got %v", updated[0].Embedding)
	}

	// Updating a missing attribute fails
	_, err = attrRepo.UpdateAttributes(ctx, &core.Attribute{Id: core.ID(999999), Name: "x", Type: core.AttributeTypeSkill})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestDeleteAttributes(t *testing.T) {
	attrRepo, expertRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { expertRepo.Close(); attrRepo.Close(); backend.Close() }()

	ctx := context.Background()

	added, err := attrRepo.AddAttributes(ctx, &core.Attribute{
		Name: "scrum",
		Type: core.AttributeTypeSkill,
	})
	if err != nil {
		t.Fatalf("Failed to add attribute: %v", err)
	}

	if err := attrRepo.DeleteAttributes(ctx, added[0].Id); err != nil {
		t.Fatalf("Failed to delete attribute: %v", err)
	}

	_, err = attrRepo.GetAttribute(ctx, added[0].Id)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}

	// Tuple index must be gone too
	_, err = attrRepo.FindAttributeByTypeAndName(ctx, core.AttributeTypeSkill, "scrum")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound for tuple lookup, got %v", err)
	}
}

func TestFindSimilarAttributes(t *testing.T) {
	attrRepo, expertRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { expertRepo.Close(); attrRepo.Close(); backend.Close() }()

	ctx := context.Background()

	_, err = attrRepo.AddAttributes(ctx,
		&core.Attribute{Name: "machine learning", Type: core.AttributeTypeSkill, Embedding: []float32{1, 0, 0}},
		&core.Attribute{Name: "deep learning", Type: core.AttributeTypeSkill, Embedding: []float32{0.9, 0.1, 0}},
		&core.Attribute{Name: "gardening", Type: core.AttributeTypeSkill, Embedding: []float32{0, 0, 1}},
		&core.Attribute{Name: "no embedding", Type: core.AttributeTypeSkill},
		&core.Attribute{Name: "machine learning", Type: core.AttributeTypeRole, Embedding: []float32{1, 0, 0}},
	)
	if err != nil {
		t.Fatalf("Failed to add attributes: %v", err)
	}

	matches, err := attrRepo.FindSimilarAttributes(ctx, []float32{1, 0, 0}, core.AttributeTypeSkill, 0.4, 10)
	if err != nil {
		t.Fatalf("Failed to find similar attributes: %v", err)
	}

	if len(matches) != 2 {
		t.Fatalf("Expected 2 matches, got %d", len(matches))
	}
	if matches[0].Attribute.Name != "machine learning" {
		t.Fatalf("Expected best match 'machine learning', got '%s'", matches[0].Attribute.Name)
	}
	if matches[0].Similarity < matches[1].Similarity {
		t.Fatal("Expected matches ordered by similarity descending")
	}
	for _, m := range matches {
		if m.Attribute.Type != core.AttributeTypeSkill {
			t.Fatalf("Expected only skill attributes, got %s", m.Attribute.Type)
		}
	}

	// Limit caps results
	limited, err := attrRepo.FindSimilarAttributes(ctx, []float32{1, 0, 0}, core.AttributeTypeSkill, 0.0, 1)
	if err != nil {
		t.Fatalf("Failed to find similar attributes: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("Expected 1 match with limit 1, got %d", len(limited))
	}

	// Dimension mismatch yields similarity 0, below any positive threshold
	mismatched, err := attrRepo.FindSimilarAttributes(ctx, []float32{1, 0}, core.AttributeTypeSkill, 0.1, 10)
	if err != nil {
		t.Fatalf("Failed to find similar attributes: %v", err)
	}
	if len(mismatched) != 0 {
		t.Fatalf("Expected no matches for mismatched dimensions, got %d", len(mismatched))
	}
}

func TestCosineSimilarityProperties(t *testing.T) {
	attrRepo, expertRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { expertRepo.Close(); attrRepo.Close(); backend.Close() }()

	ctx := context.Background()

	a := []float32{0.3, 0.8, 0.5}
	b := []float32{0.9, 0.1, 0.4}

	// Symmetric in its arguments
	ab := backend.cosineSimilarity(a, b)
	ba := backend.cosineSimilarity(b, a)
	if math.Abs(float64(ab-ba)) > 1e-7 {
		t.Fatalf("Expected symmetric similarity, got %v and %v", ab, ba)
	}

	// A vector compared with itself scores 1
	aa := backend.cosineSimilarity(a, a)
	if math.Abs(float64(aa)-1.0) > 1e-6 {
		t.Fatalf("Expected self similarity 1, got %v", aa)
	}

	// Zero-norm vectors score 0 on either side
	zero := []float32{0, 0, 0}
	if s := backend.cosineSimilarity(a, zero); s != 0 {
		t.Fatalf("Expected 0 for zero-norm argument, got %v", s)
	}
	if s := backend.cosineSimilarity(zero, a); s != 0 {
		t.Fatalf("Expected 0 for zero-norm probe, got %v", s)
	}

	// A stored zero-norm embedding never clears a positive threshold
	_, err = attrRepo.AddAttributes(ctx,
		&core.Attribute{Name: "degenerate", Type: core.AttributeTypeSkill, Embedding: []float32{0, 0, 0}},
	)
	if err != nil {
		t.Fatalf("Failed to add attribute: %v", err)
	}
	matches, err := attrRepo.FindSimilarAttributes(ctx, []float32{1, 0, 0}, core.AttributeTypeSkill, 0.1, 10)
	if err != nil {
		t.Fatalf("Failed to find similar attributes: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("Expected no matches for zero-norm embedding, got %d", len(matches))
	}
}

func TestFindAttributesWithoutEmbedding(t *testing.T) {
	attrRepo, expertRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { expertRepo.Close(); attrRepo.Close(); backend.Close() }()

	ctx := context.Background()

	_, err = attrRepo.AddAttributes(ctx,
		&core.Attribute{Name: "a", Type: core.AttributeTypeSkill, Embedding: []float32{1}},
		&core.Attribute{Name: "b", Type: core.AttributeTypeSkill},
		&core.Attribute{Name: "c", Type: core.AttributeTypeRole},
	)
	if err != nil {
		t.Fatalf("Failed to add attributes: %v", err)
	}

	missing, err := attrRepo.FindAttributesWithoutEmbedding(ctx, 0)
	if err != nil {
		t.Fatalf("Failed to find attributes: %v", err)
	}
	if len(missing) != 2 {
		t.Fatalf("Expected 2 attributes without embedding, got %d", len(missing))
	}

	capped, err := attrRepo.FindAttributesWithoutEmbedding(ctx, 1)
	if err != nil {
		t.Fatalf("Failed to find attributes: %v", err)
	}
	if len(capped) != 1 {
		t.Fatalf("Expected 1 attribute with limit 1, got %d", len(capped))
	}
}

func TestListAttributes(t *testing.T) {
	attrRepo, expertRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { expertRepo.Close(); attrRepo.Close(); backend.Close() }()

	ctx := context.Background()

	_, err = attrRepo.AddAttributes(ctx,
		&core.Attribute{Name: "nasa", Type: core.AttributeTypeAgency},
		&core.Attribute{Name: "python", Type: core.AttributeTypeSkill},
		&core.Attribute{Name: "go", Type: core.AttributeTypeSkill},
	)
	if err != nil {
		t.Fatalf("Failed to add attributes: %v", err)
	}

	skills, err := attrRepo.ListAttributes(ctx, core.AttributeTypeSkill)
	if err != nil {
		t.Fatalf("Failed to list attributes: %v", err)
	}
	if len(skills) != 2 {
		t.Fatalf("Expected 2 skills, got %d", len(skills))
	}

	all, err := attrRepo.ListAttributes(ctx, "")
	if err != nil {
		t.Fatalf("Failed to list attributes: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Expected 3 attributes, got %d", len(all))
	}
}
