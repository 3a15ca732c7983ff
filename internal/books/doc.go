// Package books defines the catalog record model shared by the search,
// summarization, and audio paths: the Book record, the closed set of
// catalog sources with their priority ordering, completeness scoring,
// identity keys for duplicate grouping, and query interpretation.
package books
