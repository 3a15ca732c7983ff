// Package summary orchestrates AI summarization: source text resolution
// under a deadline, metadata fallback for thin content, deadline-guarded
// generation, and store-backed reuse keyed by a content hash.
package summary
