// Package textutil provides small pure text helpers shared across the
// search and summarization paths: tokenizing queries, bounding generator
// input, and counting words in generated summaries.
package textutil
