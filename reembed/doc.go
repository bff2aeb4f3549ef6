// Package reembed recomputes the embedding vectors of the attribute taxonomy
// after an embedding model change.
//
// The taxonomy is processed in batches with retry and exponential backoff on
// embedding calls, progress reporting, and vector normalization so stored
// vectors stay compatible with cosine similarity search.
package reembed
