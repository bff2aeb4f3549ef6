// Package ingestion registers experts and taxonomy attributes and keeps
// attribute embeddings current. Embeddings are computed by explicit
// operations here, never by storage-layer hooks: RegisterAttribute ensures
// an embedding at write time, and Backfill sweeps attributes whose
// embeddings are still missing using a worker pool.
package ingestion
