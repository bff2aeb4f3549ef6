// Copyright 2025 Poiesic Systems
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

package expertmatch

import (
	"io"
	"log/slog"

	"github.com/poiesic/expertmatch/ai"
	"github.com/poiesic/expertmatch/ai/openai"
	"github.com/poiesic/expertmatch/ingestion"
	"github.com/poiesic/expertmatch/reembed"
	"github.com/poiesic/expertmatch/search"
	"github.com/poiesic/expertmatch/storage"
	"github.com/poiesic/expertmatch/storage/badger"
)

// Database wires the storage backend, repositories, and AI provider into a
// single handle the CLI and embedding applications work with.
type Database struct {
	backend       *badger.Backend
	attributeRepo storage.AttributeRepository
	expertRepo    storage.ExpertRepository
	provider      ai.AIProvider
	logger        *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig *ai.Config
	inMemory bool
}

// WithAIConfig sets the AI provider configuration.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithInMemoryStorage opens the backend in memory, without touching disk.
func WithInMemoryStorage() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	// Apply options
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	attributeRepo, err := badger.NewAttributeRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	expertRepo, err := badger.NewExpertRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	provider, err := openai.NewProvider(options.aiConfig)
	if err != nil {
		backend.Close()
		return nil, err
	}

	return &Database{
		backend:       backend,
		attributeRepo: attributeRepo,
		expertRepo:    expertRepo,
		provider:      provider,
		logger:        slog.Default(),
	}, nil
}

func (db *Database) Close() error {
	// Close AI provider first
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}

	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) AttributeRepository() storage.AttributeRepository {
	return db.attributeRepo
}

func (db *Database) ExpertRepository() storage.ExpertRepository {
	return db.expertRepo
}

func (db *Database) Provider() ai.AIProvider {
	return db.provider
}

func (db *Database) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(db.attributeRepo, db.expertRepo, db.provider, opts...)
}

func (db *Database) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(db.attributeRepo, db.expertRepo, db.provider, opts...)
}

// NewReembedder builds a taxonomy reembedder writing progress to the given
// writer. A nil config uses reembed defaults.
func (db *Database) NewReembedder(config *reembed.Config, progress io.Writer) *reembed.Reembedder {
	return reembed.NewReembedder(db.attributeRepo, db.provider.Embedder(), config, progress)
}
